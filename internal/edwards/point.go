// Package edwards implements the edwards25519 group: the twisted Edwards
// curve -x^2 + y^2 = 1 + d*x^2*y^2 over GF(2^255 - 19), its point encoding,
// and variable-time scalar multiplication.
//
// Points are held in extended coordinates (X:Y:Z:T) with x = X/Z, y = Y/Z and
// x*y = T/Z. Every operation computes its result before writing the receiver,
// so receivers may alias arguments.
//
// Nothing in this package is constant time. It is meant for verifying
// signatures over public data.
package edwards

import (
	"encoding/hex"

	"github.com/mahdiidarabi/eddsa-speccheck/internal/field"
	"github.com/mahdiidarabi/eddsa-speccheck/internal/scalar"
)

var (
	d, d2     *field.Element
	basepoint *Point
	eightTor  *Point
)

func init() {
	// d = -121665 / 121666
	inv, err := field.New().Invert(field.New().SetUint64(121666))
	if err != nil {
		panic(err)
	}
	d = field.New().Negate(field.New().SetUint64(121665))
	d.Multiply(d, inv)
	d2 = field.New().Add(d, d)

	// The base point is the point with y = 4/5 and non-negative x.
	enc, _ := hex.DecodeString(basepointHex)
	if basepoint, err = new(Point).SetCanonicalBytes(enc); err != nil {
		panic(err)
	}
	enc, _ = hex.DecodeString(eightTorsionHex)
	if eightTor, err = new(Point).SetCanonicalBytes(enc); err != nil {
		panic(err)
	}
}

const basepointHex = "5866666666666666666666666666666666666666666666666666666666666666"

// Point is a point on edwards25519. The zero value is NOT a valid point;
// use NewIdentityPoint or NewGeneratorPoint.
type Point struct {
	x, y, z, t field.Element
}

// NewIdentityPoint returns a new point set to the identity (0:1:1:0).
func NewIdentityPoint() *Point {
	v := new(Point)
	v.y.Set(field.One())
	v.z.Set(field.One())
	return v
}

// NewGeneratorPoint returns a new point set to the canonical base point B.
func NewGeneratorPoint() *Point {
	return new(Point).Set(basepoint)
}

// Set sets v = u and returns v.
func (v *Point) Set(u *Point) *Point {
	*v = *u
	return v
}

// Add sets v = p + q and returns v.
//
// Uses the unified add-2008-hwcd-3 formulas for a = -1, which are complete on
// the prime-order subgroup and also handle doubling and the small-order points.
func (v *Point) Add(p, q *Point) *Point {
	a := field.New().Multiply(field.New().Subtract(&p.y, &p.x), field.New().Subtract(&q.y, &q.x))
	b := field.New().Multiply(field.New().Add(&p.y, &p.x), field.New().Add(&q.y, &q.x))
	c := field.New().Multiply(field.New().Multiply(&p.t, d2), &q.t)
	zz := field.New().Multiply(&p.z, &q.z)
	dd := field.New().Add(zz, zz)

	e := field.New().Subtract(b, a)
	f := field.New().Subtract(dd, c)
	g := field.New().Add(dd, c)
	h := field.New().Add(b, a)

	v.x.Multiply(e, f)
	v.y.Multiply(g, h)
	v.t.Multiply(e, h)
	v.z.Multiply(f, g)
	return v
}

// Subtract sets v = p - q and returns v.
func (v *Point) Subtract(p, q *Point) *Point {
	return v.Add(p, new(Point).Negate(q))
}

// Negate sets v = -p and returns v.
func (v *Point) Negate(p *Point) *Point {
	v.x.Negate(&p.x)
	v.y.Set(&p.y)
	v.z.Set(&p.z)
	v.t.Negate(&p.t)
	return v
}

// Double sets v = p + p and returns v.
func (v *Point) Double(p *Point) *Point {
	return v.Add(p, p)
}

// MultByCofactor sets v = [8]p and returns v.
func (v *Point) MultByCofactor(p *Point) *Point {
	return v.Double(p).Double(v).Double(v)
}

// ScalarMult sets v = [s]p and returns v.
func (v *Point) ScalarMult(s *scalar.Scalar, p *Point) *Point {
	k := s.Bytes()
	q := new(Point).Set(p)
	acc := NewIdentityPoint()
	for i := 8*scalar.Size - 1; i >= 0; i-- {
		acc.Double(acc)
		if bit(k, i) == 1 {
			acc.Add(acc, q)
		}
	}
	return v.Set(acc)
}

// ScalarBaseMult sets v = [s]B and returns v.
func (v *Point) ScalarBaseMult(s *scalar.Scalar) *Point {
	return v.ScalarMult(s, basepoint)
}

// VarTimeDoubleScalarBaseMult sets v = [a]A + [b]B and returns v, sharing
// one doubling chain between both products (Straus-Shamir).
func (v *Point) VarTimeDoubleScalarBaseMult(a *scalar.Scalar, A *Point, b *scalar.Scalar) *Point {
	ak, bk := a.Bytes(), b.Bytes()
	pa := new(Point).Set(A)
	pb := new(Point).Set(basepoint)
	sum := new(Point).Add(pa, pb)

	acc := NewIdentityPoint()
	for i := 8*scalar.Size - 1; i >= 0; i-- {
		acc.Double(acc)
		switch ba, bb := bit(ak, i), bit(bk, i); {
		case ba == 1 && bb == 1:
			acc.Add(acc, sum)
		case ba == 1:
			acc.Add(acc, pa)
		case bb == 1:
			acc.Add(acc, pb)
		}
	}
	return v.Set(acc)
}

// Equal returns 1 if v and u represent the same affine point, and 0
// otherwise.
func (v *Point) Equal(u *Point) int {
	x1 := field.New().Multiply(&v.x, &u.z)
	x2 := field.New().Multiply(&u.x, &v.z)
	y1 := field.New().Multiply(&v.y, &u.z)
	y2 := field.New().Multiply(&u.y, &v.z)
	return x1.Equal(x2) & y1.Equal(y2)
}

// IsIdentity reports whether v is the neutral element.
func (v *Point) IsIdentity() bool {
	return v.Equal(NewIdentityPoint()) == 1
}

// IsSmallOrder reports whether v lies in the eight-torsion subgroup, that is
// whether [8]v is the identity.
func (v *Point) IsSmallOrder() bool {
	return new(Point).MultByCofactor(v).IsIdentity()
}

// IsOnCurve reports whether the coordinates of v satisfy both the projective
// curve equation (-X^2 + Y^2)Z^2 = Z^4 + d*X^2*Y^2 and X*Y = Z*T.
func (v *Point) IsOnCurve() bool {
	if v.z.IsZero() == 1 {
		return false
	}
	xx := field.New().Square(&v.x)
	yy := field.New().Square(&v.y)
	zz := field.New().Square(&v.z)

	lhs := field.New().Multiply(field.New().Subtract(yy, xx), zz)
	rhs := field.New().Square(zz)
	rhs.Add(rhs, field.New().Multiply(d, field.New().Multiply(xx, yy)))
	if lhs.Equal(rhs) != 1 {
		return false
	}

	xy := field.New().Multiply(&v.x, &v.y)
	zt := field.New().Multiply(&v.z, &v.t)
	return xy.Equal(zt) == 1
}

func bit(k []byte, i int) byte {
	return (k[i/8] >> uint(i%8)) & 1
}
