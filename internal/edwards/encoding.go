package edwards

import (
	"bytes"

	"github.com/pkg/errors"

	"github.com/mahdiidarabi/eddsa-speccheck/internal/field"
)

var (
	// ErrInvalidEncoding is returned when an encoding is not 32 bytes or does
	// not correspond to a point on the curve.
	ErrInvalidEncoding = errors.New("edwards25519: invalid point encoding")

	// ErrNonCanonical is returned by SetCanonicalBytes for encodings that
	// decode to a valid point but are not its canonical serialization, i.e.
	// y >= p or a set sign bit with x = 0.
	ErrNonCanonical = errors.New("edwards25519: non-canonical point encoding")
)

// SetBytes sets v = x, where x is a 32-byte encoding of v, and returns v.
//
// Decoding is permissive in the way RFC 8032, Section 5.1.3 leaves room for:
// a y coordinate at or above p is reduced, and a set sign bit on x = 0 is
// ignored. If x does not decode to a point, SetBytes returns nil and an error
// and v is left unchanged.
func (v *Point) SetBytes(x []byte) (*Point, error) {
	if len(x) != 32 {
		return nil, errors.Wrapf(ErrInvalidEncoding, "got %d bytes", len(x))
	}

	yb := make([]byte, 32)
	copy(yb, x)
	yb[31] &= 0x7f
	y := field.New().SetBytes(yb)

	// x^2 = (y^2 - 1) / (d*y^2 + 1)
	yy := field.New().Square(y)
	u := field.New().Subtract(yy, field.One())
	w := field.New().Add(field.New().Multiply(d, yy), field.One())
	xx, wasSquare := field.New().SqrtRatio(u, w)
	if !wasSquare {
		return nil, errors.Wrap(ErrInvalidEncoding, "x^2 is not a square")
	}

	// SqrtRatio returns the non-negative root.
	if int(x[31]>>7) == 1 {
		xx.Negate(xx)
	}

	p := new(Point)
	p.x.Set(xx)
	p.y.Set(y)
	p.z.Set(field.One())
	p.t.Multiply(xx, y)
	if !p.IsOnCurve() {
		return nil, errors.Wrap(ErrInvalidEncoding, "point is not on the curve")
	}
	return v.Set(p), nil
}

// SetCanonicalBytes is like SetBytes but also rejects any encoding that is
// not byte-for-byte the output of Bytes for the decoded point.
func (v *Point) SetCanonicalBytes(x []byte) (*Point, error) {
	p, err := new(Point).SetBytes(x)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(p.Bytes(), x) {
		return nil, ErrNonCanonical
	}
	return v.Set(p), nil
}

// Bytes returns the canonical 32-byte encoding of v: the little-endian y
// coordinate with the sign of x in the top bit.
func (v *Point) Bytes() []byte {
	zInv, err := field.New().Invert(&v.z)
	if err != nil {
		// Z is never zero for a point built by this package.
		panic(errors.WithMessage(err, "edwards25519: encoding point with Z = 0"))
	}
	x := field.New().Multiply(&v.x, zInv)
	y := field.New().Multiply(&v.y, zInv)

	out := y.Bytes()
	out[31] |= byte(x.IsNegative() << 7)
	return out
}
