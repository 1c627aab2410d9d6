// Package field implements arithmetic modulo p = 2^255 - 19, the prime
// underlying Curve25519 and edwards25519.
//
// Elements are backed by saferith natural numbers and every operation returns
// the canonical representative in [0, p). Results are freshly allocated, so a
// receiver may alias any of the operands.
package field

import (
	"crypto/subtle"
	"math/big"

	"github.com/cronokirby/saferith"
	"github.com/pkg/errors"
)

// Size is the length of an encoded field element.
const Size = 32

// ErrDomain is returned when an operation is undefined for its input.
// Reaching it from verification code indicates an internal bug.
var ErrDomain = errors.New("field: domain error")

var (
	p            *saferith.Modulus
	pMinus5Over8 *saferith.Nat
	natZero      *saferith.Nat
	sqrtM1       *Element
)

func init() {
	pBig := new(big.Int).Lsh(big.NewInt(1), 255)
	pBig.Sub(pBig, big.NewInt(19))
	p = saferith.ModulusFromBytes(pBig.Bytes())
	natZero = new(saferith.Nat).Mod(new(saferith.Nat).SetUint64(0), p)

	// (p-5)/8 = 2^252 - 3
	e := new(big.Int).Lsh(big.NewInt(1), 252)
	e.Sub(e, big.NewInt(3))
	pMinus5Over8 = new(saferith.Nat).SetBytes(e.Bytes())

	// 2 is a non-residue, so 2^((p-1)/4) squares to -1. (p-1)/4 = 2^253 - 5.
	e = new(big.Int).Lsh(big.NewInt(1), 253)
	e.Sub(e, big.NewInt(5))
	sqrtM1 = new(Element).pow(new(Element).SetUint64(2), new(saferith.Nat).SetBytes(e.Bytes()))
}

// Element is an integer modulo p. The zero value is the element 0.
type Element struct {
	n *saferith.Nat
}

// New returns a new zero element.
func New() *Element {
	return new(Element)
}

// One returns a new element set to 1.
func One() *Element {
	return new(Element).SetUint64(1)
}

// SqrtM1 returns a new element set to a square root of -1.
func SqrtM1() *Element {
	return new(Element).Set(sqrtM1)
}

func (v *Element) nat() *saferith.Nat {
	if v.n == nil {
		return natZero
	}
	return v.n
}

// Set sets v = a and returns v.
func (v *Element) Set(a *Element) *Element {
	v.n = a.nat()
	return v
}

// SetUint64 sets v = x mod p and returns v.
func (v *Element) SetUint64(x uint64) *Element {
	v.n = new(saferith.Nat).Mod(new(saferith.Nat).SetUint64(x), p)
	return v
}

// SetBytes sets v to the little-endian integer x reduced modulo p. Any length
// is accepted; callers that need to reject non-canonical input compare Bytes
// against the original encoding.
func (v *Element) SetBytes(x []byte) *Element {
	be := make([]byte, len(x))
	for i := range x {
		be[len(x)-1-i] = x[i]
	}
	v.n = new(saferith.Nat).Mod(new(saferith.Nat).SetBytes(be), p)
	return v
}

// Bytes returns the canonical 32-byte little-endian encoding of v.
func (v *Element) Bytes() []byte {
	return littleEndian(v.nat())
}

// Add sets v = a + b and returns v.
func (v *Element) Add(a, b *Element) *Element {
	v.n = new(saferith.Nat).ModAdd(a.nat(), b.nat(), p)
	return v
}

// Subtract sets v = a - b and returns v.
func (v *Element) Subtract(a, b *Element) *Element {
	v.n = new(saferith.Nat).ModSub(a.nat(), b.nat(), p)
	return v
}

// Negate sets v = -a and returns v.
func (v *Element) Negate(a *Element) *Element {
	v.n = new(saferith.Nat).ModNeg(a.nat(), p)
	return v
}

// Multiply sets v = a * b and returns v.
func (v *Element) Multiply(a, b *Element) *Element {
	v.n = new(saferith.Nat).ModMul(a.nat(), b.nat(), p)
	return v
}

// Square sets v = a * a and returns v.
func (v *Element) Square(a *Element) *Element {
	return v.Multiply(a, a)
}

// Invert sets v = 1/z and returns v. Inverting zero fails with ErrDomain and
// leaves v unchanged.
func (v *Element) Invert(z *Element) (*Element, error) {
	if z.IsZero() == 1 {
		return nil, errors.Wrap(ErrDomain, "cannot invert zero")
	}
	v.n = new(saferith.Nat).ModInverse(z.nat(), p)
	return v, nil
}

// Pow sets v = a^e, where e is a little-endian exponent, and returns v.
func (v *Element) Pow(a *Element, e []byte) *Element {
	be := make([]byte, len(e))
	for i := range e {
		be[len(e)-1-i] = e[i]
	}
	return v.pow(a, new(saferith.Nat).SetBytes(be))
}

func (v *Element) pow(a *Element, e *saferith.Nat) *Element {
	v.n = new(saferith.Nat).Exp(a.nat(), e, p)
	return v
}

// Equal returns 1 if v and u are equal, and 0 otherwise. The comparison runs
// over the full encodings in constant time.
func (v *Element) Equal(u *Element) int {
	return subtle.ConstantTimeCompare(v.Bytes(), u.Bytes())
}

// IsZero returns 1 if v == 0, and 0 otherwise.
func (v *Element) IsZero() int {
	return v.Equal(New())
}

// IsNegative returns 1 if v is negative, and 0 otherwise. An element is
// negative when the low bit of its canonical encoding is set.
func (v *Element) IsNegative() int {
	return int(v.Bytes()[0] & 1)
}

// SqrtRatio sets r to the non-negative square root of u/v as described in
// RFC 8032, Section 5.1.3, and reports whether u/v is a square. When it is
// not, r is set to an unspecified value.
//
// If u is zero the result is zero and wasSquare is true.
func (r *Element) SqrtRatio(u, v *Element) (*Element, bool) {
	v3 := new(Element).Multiply(new(Element).Square(v), v)
	v7 := new(Element).Multiply(new(Element).Square(v3), v)

	// r = u * v^3 * (u * v^7)^((p-5)/8)
	uv7 := new(Element).Multiply(u, v7)
	cand := new(Element).Multiply(u, v3)
	cand.Multiply(cand, new(Element).pow(uv7, pMinus5Over8))

	check := new(Element).Multiply(v, new(Element).Square(cand))
	switch {
	case check.Equal(u) == 1:
	case check.Equal(new(Element).Negate(u)) == 1:
		cand.Multiply(cand, sqrtM1)
	default:
		r.Set(cand)
		return r, false
	}

	if cand.IsNegative() == 1 {
		cand.Negate(cand)
	}
	r.Set(cand)
	return r, true
}

// littleEndian encodes n, which must be below 2^256, as 32 little-endian bytes.
func littleEndian(n *saferith.Nat) []byte {
	be := n.Bytes()
	out := make([]byte, Size)
	for i := 0; i < len(be) && i < Size; i++ {
		out[i] = be[len(be)-1-i]
	}
	return out
}
