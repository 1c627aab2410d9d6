package generator

import (
	"encoding/binary"
	"math"

	"golang.org/x/crypto/chacha20"
)

// rng is a deterministic byte stream. Every case starts from a fresh stream
// so that the corpus is reproducible case by case.
type rng struct {
	c *chacha20.Cipher
}

// newRNG seeds a ChaCha20 keystream with the little-endian bytes of pi
// repeated four times.
func newRNG() (*rng, error) {
	seed := make([]byte, chacha20.KeySize)
	for i := 0; i < 4; i++ {
		binary.LittleEndian.PutUint64(seed[8*i:], math.Float64bits(math.Pi))
	}
	c, err := chacha20.NewUnauthenticatedCipher(seed, make([]byte, chacha20.NonceSize))
	if err != nil {
		return nil, err
	}
	return &rng{c: c}, nil
}

func (r *rng) fill(b []byte) {
	for i := range b {
		b[i] = 0
	}
	r.c.XORKeyStream(b, b)
}

func (r *rng) bytes(n int) []byte {
	b := make([]byte, n)
	r.fill(b)
	return b
}

func (r *rng) uint64() uint64 {
	return binary.LittleEndian.Uint64(r.bytes(8))
}
