// Package scalar implements arithmetic modulo the prime order of the
// edwards25519 base point,
//
//	l = 2^252 + 27742317777372353535851937790883648493.
package scalar

import (
	"crypto/subtle"
	"math/big"

	"github.com/cronokirby/saferith"
	"github.com/pkg/errors"
)

// Size is the length of an encoded scalar.
const Size = 32

var (
	// ErrNonCanonical is returned by SetCanonicalBytes for encodings of
	// integers that are not below l.
	ErrNonCanonical = errors.New("scalar: non-canonical encoding")

	// ErrLength is returned when an encoding has the wrong size.
	ErrLength = errors.New("scalar: invalid encoding length")
)

// Order is the decimal representation of l.
const Order = "7237005577332262213973186563042994240857116359379907606001950938285454250989"

var (
	l       *saferith.Modulus
	natZero *saferith.Nat
)

func init() {
	order, ok := new(big.Int).SetString(Order, 10)
	if !ok {
		panic("scalar: invalid group order")
	}
	l = saferith.ModulusFromBytes(order.Bytes())
	natZero = new(saferith.Nat).Mod(new(saferith.Nat).SetUint64(0), l)
}

// Scalar is an integer modulo l. The zero value is the scalar 0.
type Scalar struct {
	n *saferith.Nat
}

// New returns a new zero scalar.
func New() *Scalar {
	return new(Scalar)
}

func (s *Scalar) nat() *saferith.Nat {
	if s.n == nil {
		return natZero
	}
	return s.n
}

// Set sets s = x and returns s.
func (s *Scalar) Set(x *Scalar) *Scalar {
	s.n = x.nat()
	return s
}

// SetUint64 sets s = x mod l and returns s.
func (s *Scalar) SetUint64(x uint64) *Scalar {
	s.n = new(saferith.Nat).Mod(new(saferith.Nat).SetUint64(x), l)
	return s
}

// SetReducedBytes sets s to the little-endian integer x reduced modulo l.
// Any length is accepted.
func (s *Scalar) SetReducedBytes(x []byte) *Scalar {
	s.n = new(saferith.Nat).Mod(new(saferith.Nat).SetBytes(reverse(x)), l)
	return s
}

// SetUniformBytes sets s to the 64-byte little-endian value x reduced modulo
// l. It is used to turn a SHA-512 digest into a challenge scalar.
func (s *Scalar) SetUniformBytes(x []byte) (*Scalar, error) {
	if len(x) != 64 {
		return nil, errors.Wrapf(ErrLength, "uniform input is %d bytes, want 64", len(x))
	}
	return s.SetReducedBytes(x), nil
}

// SetCanonicalBytes sets s = x, where x is a 32-byte little-endian encoding
// of an integer below l. Any other input is rejected and s is left unchanged.
func (s *Scalar) SetCanonicalBytes(x []byte) (*Scalar, error) {
	if len(x) != Size {
		return nil, errors.Wrapf(ErrLength, "scalar is %d bytes, want %d", len(x), Size)
	}
	reduced := new(Scalar).SetReducedBytes(x)
	if subtle.ConstantTimeCompare(reduced.Bytes(), x) != 1 {
		return nil, ErrNonCanonical
	}
	s.n = reduced.n
	return s, nil
}

// Bytes returns the canonical 32-byte little-endian encoding of s.
func (s *Scalar) Bytes() []byte {
	be := s.nat().Bytes()
	out := make([]byte, Size)
	for i := 0; i < len(be) && i < Size; i++ {
		out[i] = be[len(be)-1-i]
	}
	return out
}

// Add sets s = x + y mod l and returns s.
func (s *Scalar) Add(x, y *Scalar) *Scalar {
	s.n = new(saferith.Nat).ModAdd(x.nat(), y.nat(), l)
	return s
}

// Subtract sets s = x - y mod l and returns s.
func (s *Scalar) Subtract(x, y *Scalar) *Scalar {
	s.n = new(saferith.Nat).ModSub(x.nat(), y.nat(), l)
	return s
}

// Multiply sets s = x * y mod l and returns s.
func (s *Scalar) Multiply(x, y *Scalar) *Scalar {
	s.n = new(saferith.Nat).ModMul(x.nat(), y.nat(), l)
	return s
}

// Negate sets s = -x mod l and returns s.
func (s *Scalar) Negate(x *Scalar) *Scalar {
	s.n = new(saferith.Nat).ModNeg(x.nat(), l)
	return s
}

// Equal returns 1 if s and t are equal, and 0 otherwise.
func (s *Scalar) Equal(t *Scalar) int {
	return subtle.ConstantTimeCompare(s.Bytes(), t.Bytes())
}

// IsZero returns 1 if s == 0, and 0 otherwise.
func (s *Scalar) IsZero() int {
	return s.Equal(New())
}

func reverse(x []byte) []byte {
	out := make([]byte, len(x))
	for i := range x {
		out[len(x)-1-i] = x[i]
	}
	return out
}
