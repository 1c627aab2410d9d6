package speccheck

import (
	"bufio"
	"encoding/hex"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"

	"github.com/mahdiidarabi/eddsa-speccheck/internal/log"
)

// ErrCorpus is returned when a corpus cannot be read or is malformed. It
// aborts a run before any verifier is invoked.
var ErrCorpus = errors.New("speccheck: malformed corpus")

// CorpusParser loads a corpus from a source.
type CorpusParser interface {
	// ParseCorpus reads the corpus at source. Malformed input yields an
	// error wrapping ErrCorpus.
	ParseCorpus(source string) (*Corpus, error)
}

// ParserForPath picks a parser from the file extension: .txt for the
// line-oriented format, .cbor for CBOR, JSON otherwise.
func ParserForPath(path string) CorpusParser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt":
		return &TextParser{}
	case ".cbor":
		return &CBORParser{}
	default:
		return &JSONParser{}
	}
}

// AutoParser dispatches on the file extension of each source.
type AutoParser struct{}

// ParseCorpus implements CorpusParser.
func (AutoParser) ParseCorpus(source string) (*Corpus, error) {
	return ParserForPath(source).ParseCorpus(source)
}

// JSONParser parses corpora stored as a JSON array of hex-encoded records.
type JSONParser struct {
	MessageField   string // Field name for the message (default: "message")
	PublicKeyField string // Field name for the public key (default: "pub_key")
	SignatureField string // Field name for the signature (default: "signature")
}

// ParseCorpus parses a JSON corpus file.
//
// Expected format:
//
//	[
//	  {"message": "hex", "pub_key": "hex", "signature": "hex"},
//	  ...
//	]
func (p *JSONParser) ParseCorpus(source string) (*Corpus, error) {
	file, err := os.Open(source)
	if err != nil {
		return nil, errors.Wrap(ErrCorpus, err.Error())
	}
	defer file.Close()
	return p.Parse(source, file)
}

// Parse reads a JSON corpus from r. The name is recorded as the corpus source.
func (p *JSONParser) Parse(name string, r io.Reader) (*Corpus, error) {
	dec := json.NewDecoder(r)
	var items []map[string]interface{}
	if err := dec.Decode(&items); err != nil {
		return nil, errors.Wrapf(ErrCorpus, "failed to parse JSON: %v", err)
	}
	if items == nil {
		return nil, errors.Wrap(ErrCorpus, "corpus must be a JSON array")
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.Wrap(ErrCorpus, "unexpected data after the JSON array")
	}

	messageField := p.MessageField
	if messageField == "" {
		messageField = "message"
	}
	publicKeyField := p.PublicKeyField
	if publicKeyField == "" {
		publicKeyField = "pub_key"
	}
	signatureField := p.SignatureField
	if signatureField == "" {
		signatureField = "signature"
	}

	corpus := &Corpus{Source: name, Vectors: make([]TestVector, 0, len(items))}
	for i, item := range items {
		var v TestVector
		var err error
		if v.Message, err = hexField(item, messageField, i); err != nil {
			return nil, err
		}
		if v.PublicKey, err = hexField(item, publicKeyField, i); err != nil {
			return nil, err
		}
		if v.Signature, err = hexField(item, signatureField, i); err != nil {
			return nil, err
		}
		corpus.Vectors = append(corpus.Vectors, v)
	}
	warnLengths(corpus)
	return corpus, nil
}

func hexField(item map[string]interface{}, field string, index int) ([]byte, error) {
	val, ok := item[field]
	if !ok {
		return nil, errors.Wrapf(ErrCorpus, "vector %d: missing %s field", index, field)
	}
	s, ok := val.(string)
	if !ok {
		return nil, errors.Wrapf(ErrCorpus, "vector %d: %s field must be a hex string, got %T", index, field, val)
	}
	b, err := decodeHex(s)
	if err != nil {
		return nil, errors.Wrapf(ErrCorpus, "vector %d: %s: %v", index, field, err)
	}
	return b, nil
}

// decodeHex accepts lowercase hex digits only: no prefix, no whitespace.
func decodeHex(s string) ([]byte, error) {
	for i := 0; i < len(s); i++ {
		if c := s[i]; !('0' <= c && c <= '9' || 'a' <= c && c <= 'f') {
			return nil, errors.Errorf("invalid character %q at offset %d", c, i)
		}
	}
	return hex.DecodeString(s)
}

// TextParser parses the line-oriented format used to feed C harnesses:
//
//	N
//	msg=<hex>
//	pbk=<hex>
//	sig=<hex>
//	...
//
// with N records of three lines each.
type TextParser struct{}

// ParseCorpus parses a text corpus file.
func (p *TextParser) ParseCorpus(source string) (*Corpus, error) {
	file, err := os.Open(source)
	if err != nil {
		return nil, errors.Wrap(ErrCorpus, err.Error())
	}
	defer file.Close()
	return p.Parse(source, file)
}

// Parse reads a text corpus from r.
func (p *TextParser) Parse(name string, r io.Reader) (*Corpus, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	var lines []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(ErrCorpus, "failed to read: %v", err)
	}
	if len(lines) == 0 {
		return nil, errors.Wrap(ErrCorpus, "empty text corpus")
	}

	n, err := strconv.Atoi(lines[0])
	if err != nil || n < 0 {
		return nil, errors.Wrapf(ErrCorpus, "invalid vector count %q", lines[0])
	}
	if len(lines)-1 != 3*n {
		return nil, errors.Wrapf(ErrCorpus, "header announces %d vectors, found %d lines", n, len(lines)-1)
	}

	corpus := &Corpus{Source: name, Vectors: make([]TestVector, 0, n)}
	for i := 0; i < n; i++ {
		rec := lines[1+3*i : 4+3*i]
		var v TestVector
		for j, dst := range []*[]byte{&v.Message, &v.PublicKey, &v.Signature} {
			key := []string{"msg", "pbk", "sig"}[j]
			value, ok := strings.CutPrefix(rec[j], key+"=")
			if !ok {
				return nil, errors.Wrapf(ErrCorpus, "vector %d: expected %s= line, got %q", i, key, rec[j])
			}
			if *dst, err = decodeHex(value); err != nil {
				return nil, errors.Wrapf(ErrCorpus, "vector %d: %s: %v", i, key, err)
			}
		}
		corpus.Vectors = append(corpus.Vectors, v)
	}
	warnLengths(corpus)
	return corpus, nil
}

// cborVector is the CBOR record layout written by WriteCBOR: raw byte strings
// under the same keys as the JSON format.
type cborVector struct {
	Message   []byte `cbor:"message"`
	PublicKey []byte `cbor:"pub_key"`
	Signature []byte `cbor:"signature"`
}

// CBORParser parses corpora stored as a CBOR array of byte-string records.
type CBORParser struct{}

// ParseCorpus parses a CBOR corpus file.
func (p *CBORParser) ParseCorpus(source string) (*Corpus, error) {
	data, err := os.ReadFile(source)
	if err != nil {
		return nil, errors.Wrap(ErrCorpus, err.Error())
	}
	return p.Parse(source, data)
}

// Parse decodes a CBOR corpus.
func (p *CBORParser) Parse(name string, data []byte) (*Corpus, error) {
	var records []map[string]interface{}
	if err := cbor.Unmarshal(data, &records); err != nil {
		return nil, errors.Wrapf(ErrCorpus, "failed to parse CBOR: %v", err)
	}
	if records == nil {
		return nil, errors.Wrap(ErrCorpus, "corpus must be a CBOR array")
	}
	corpus := &Corpus{Source: name, Vectors: make([]TestVector, 0, len(records))}
	for i, r := range records {
		var v TestVector
		var err error
		if v.Message, err = bytesField(r, "message", i); err != nil {
			return nil, err
		}
		if v.PublicKey, err = bytesField(r, "pub_key", i); err != nil {
			return nil, err
		}
		if v.Signature, err = bytesField(r, "signature", i); err != nil {
			return nil, err
		}
		corpus.Vectors = append(corpus.Vectors, v)
	}
	warnLengths(corpus)
	return corpus, nil
}

func bytesField(item map[string]interface{}, field string, index int) ([]byte, error) {
	val, ok := item[field]
	if !ok {
		return nil, errors.Wrapf(ErrCorpus, "vector %d: missing %s field", index, field)
	}
	b, ok := val.([]byte)
	if !ok {
		return nil, errors.Wrapf(ErrCorpus, "vector %d: %s field must be a byte string, got %T", index, field, val)
	}
	return b, nil
}

// warnLengths logs vectors whose key or signature has a non-standard size.
// They stay in the corpus; verifiers reject them.
func warnLengths(c *Corpus) {
	logger := log.Default().Module("corpus")
	for i, v := range c.Vectors {
		if !v.HasStandardLengths() {
			logger.Warn("vector has non-standard lengths",
				"source", c.Source,
				"index", i,
				"pub_key_len", len(v.PublicKey),
				"signature_len", len(v.Signature))
		}
	}
}
