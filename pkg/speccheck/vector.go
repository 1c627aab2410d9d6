package speccheck

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// TestVector is one (message, public key, signature) triple. Fields hold the
// decoded bytes exactly as they appeared in the corpus; lengths are not
// validated at load time.
type TestVector struct {
	Message   []byte // Signed message, any length
	PublicKey []byte // Encoded public key A, normally 32 bytes
	Signature []byte // R || S, normally 64 bytes
}

// HasStandardLengths reports whether the key and signature have the sizes
// Ed25519 defines.
func (v TestVector) HasStandardLengths() bool {
	return len(v.PublicKey) == 32 && len(v.Signature) == 64
}

// Corpus is an ordered set of test vectors. A vector is identified by its
// index in Vectors.
type Corpus struct {
	Source  string // Where the corpus was loaded from
	Vectors []TestVector
}

// NewCorpus returns a corpus over the given vectors.
func NewCorpus(source string, vectors ...TestVector) *Corpus {
	return &Corpus{Source: source, Vectors: vectors}
}

// Len returns the number of vectors.
func (c *Corpus) Len() int {
	return len(c.Vectors)
}

// Fingerprint returns a BLAKE3-256 digest of the corpus contents. Every field
// is length-prefixed, so two corpora share a fingerprint only if they hold
// the same vectors in the same order. The source name is not included.
func (c *Corpus) Fingerprint() [32]byte {
	h := blake3.New()
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], uint64(len(c.Vectors)))
	h.Write(n[:])
	for _, v := range c.Vectors {
		for _, field := range [][]byte{v.Message, v.PublicKey, v.Signature} {
			binary.BigEndian.PutUint64(n[:], uint64(len(field)))
			h.Write(n[:])
			h.Write(field)
		}
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// FingerprintHex returns Fingerprint as lowercase hex.
func (c *Corpus) FingerprintHex() string {
	fp := c.Fingerprint()
	return hex.EncodeToString(fp[:])
}
