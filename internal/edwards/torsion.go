package edwards

// eightTorsionHex encodes a generator of the order-8 subgroup.
const eightTorsionHex = "c7176a703d4dd84fba3c0b760d10670f2a2053fa2c39ccc64ec7fd7792ac037a"

// Torsion returns a new point set to [i]T, where T is a fixed generator of
// the eight-torsion subgroup. Torsion(0) is the identity, Torsion(4) is the
// point of order 2, and the odd multiples have order 8.
func Torsion(i int) *Point {
	i = ((i % 8) + 8) % 8
	v := NewIdentityPoint()
	for j := 0; j < i; j++ {
		v.Add(v, eightTor)
	}
	return v
}

// EightTorsion returns all eight small-order points, indexed by their
// multiple of the generator.
func EightTorsion() []*Point {
	pts := make([]*Point, 8)
	for i := range pts {
		pts[i] = Torsion(i)
	}
	return pts
}
