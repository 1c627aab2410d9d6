package speccheck

import (
	"bufio"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"
)

type jsonVector struct {
	Message   string `json:"message"`
	PublicKey string `json:"pub_key"`
	Signature string `json:"signature"`
}

// WriteJSON writes c in the JSON corpus format.
func WriteJSON(w io.Writer, c *Corpus) error {
	records := make([]jsonVector, 0, c.Len())
	for _, v := range c.Vectors {
		records = append(records, jsonVector{
			Message:   hex.EncodeToString(v.Message),
			PublicKey: hex.EncodeToString(v.PublicKey),
			Signature: hex.EncodeToString(v.Signature),
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// WriteText writes c in the line-oriented text format.
func WriteText(w io.Writer, c *Corpus) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d", c.Len())
	for _, v := range c.Vectors {
		fmt.Fprintf(bw, "\nmsg=%x\npbk=%x\nsig=%x", v.Message, v.PublicKey, v.Signature)
	}
	bw.WriteString("\n")
	return bw.Flush()
}

// WriteCBOR writes c as a CBOR array of byte-string records.
func WriteCBOR(w io.Writer, c *Corpus) error {
	records := make([]cborVector, 0, c.Len())
	for _, v := range c.Vectors {
		records = append(records, cborVector{
			Message:   nonNil(v.Message),
			PublicKey: nonNil(v.PublicKey),
			Signature: nonNil(v.Signature),
		})
	}
	data, err := cbor.Marshal(records)
	if err != nil {
		return errors.Wrap(err, "failed to encode CBOR")
	}
	_, err = w.Write(data)
	return err
}

// nonNil keeps empty fields byte strings; cbor encodes a nil slice as null.
func nonNil(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}

// WriteCorpusFile writes c to path, choosing the format from the extension
// the same way ParserForPath does.
func WriteCorpusFile(path string, c *Corpus) error {
	write := WriteJSON
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt":
		write = WriteText
	case ".cbor":
		write = WriteCBOR
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "failed to create corpus file")
	}
	if err := write(f, c); err != nil {
		f.Close()
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return f.Close()
}
