// Package generator builds the edge-case Ed25519 corpus: fifteen signatures
// that sit on the boundaries where verifiers disagree (small-order and
// mixed-order keys and nonces, unreduced S, non-canonical point encodings).
//
// The generator is deterministic and uses filippo.io/edwards25519 for all
// group arithmetic, so it shares no code with the reference verifier it is
// meant to exercise.
package generator

import (
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"math/big"

	"filippo.io/edwards25519"
	"github.com/cronokirby/saferith"
	"github.com/pkg/errors"

	"github.com/mahdiidarabi/eddsa-speccheck/internal/log"
	"github.com/mahdiidarabi/eddsa-speccheck/internal/scalar"
)

// DefaultMaxAttempts bounds every message-grinding loop.
const DefaultMaxAttempts = 1 << 14

// ErrGrind is returned when no message satisfying a case's conditions was
// found within the attempt budget.
var ErrGrind = errors.New("generator: attempt budget exhausted")

// negZeroOrderTwo is the point (0, -1) encoded with y = p - 1 and the sign
// bit set. Decoders that accept a sign bit on x = 0 read it as the point of
// order two.
const negZeroOrderTwo = "ecffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff"

const eightTorsionGenerator = "c7176a703d4dd84fba3c0b760d10670f2a2053fa2c39ccc64ec7fd7792ac037a"

// Case is one generated vector.
type Case struct {
	Index       int
	Description string
	Message     []byte
	PublicKey   []byte
	Signature   []byte
}

// Generator produces the edge-case corpus.
type Generator struct {
	maxAttempts int
	logger      *log.Logger
}

// New returns a Generator with default settings.
func New() *Generator {
	return &Generator{
		maxAttempts: DefaultMaxAttempts,
		logger:      log.Default().Module("generator"),
	}
}

// WithMaxAttempts sets the per-loop attempt budget.
func (g *Generator) WithMaxAttempts(n int) *Generator {
	if n > 0 {
		g.maxAttempts = n
	}
	return g
}

// WithLogger sets the logger.
func (g *Generator) WithLogger(l *log.Logger) *Generator {
	if l != nil {
		g.logger = l
	}
	return g
}

type builder func(g *Generator) ([]Case, error)

// Generate returns the fifteen cases in corpus order.
//
//	0-1   S = 0, small A, small R
//	2-3   small A, mixed R
//	4-5   mixed A, small R
//	6-7   mixed A, mixed R
//	8     cofactored pass that pre-reducing 8k breaks
//	9     S + l
//	10    S + n*l, past the high-bits check
//	11-12 non-canonical R, hashed reserialized then raw
//	13-14 non-canonical A, hashed reserialized then raw
//
// Of every pair, the first vector passes only the cofactored equation and the
// second passes both, except 6-7 which are emitted the other way round.
func (g *Generator) Generate() ([]Case, error) {
	builders := []struct {
		name  string
		build builder
	}{
		{"zero S, small A, small R", (*Generator).zeroSmallSmall},
		{"small A, mixed R", (*Generator).nonZeroMixedSmall},
		{"mixed A, small R", (*Generator).nonZeroSmallMixed},
		{"mixed A, mixed R", (*Generator).nonZeroMixedMixed},
		{"pre-reduced scalar", (*Generator).preReducedScalar},
		{"large S", (*Generator).largeS},
		{"really large S", (*Generator).reallyLargeS},
		{"non-canonical R", (*Generator).nonCanonicalR},
		{"non-canonical A", (*Generator).nonCanonicalA},
	}

	var out []Case
	for _, b := range builders {
		cases, err := b.build(g)
		if err != nil {
			return nil, errors.WithMessagef(err, "failed to generate %q", b.name)
		}
		for _, c := range cases {
			c.Index = len(out)
			g.logger.Debug("generated case",
				"index", c.Index,
				"description", c.Description,
				"message", hex.EncodeToString(c.Message),
				"pub_key", hex.EncodeToString(c.PublicKey),
				"signature", hex.EncodeToString(c.Signature))
			out = append(out, c)
		}
	}
	return out, nil
}

// grind redraws msg until accept holds for it.
func (g *Generator) grind(r *rng, msg []byte, accept func() bool) error {
	for i := 0; !accept(); i++ {
		if i >= g.maxAttempts {
			return errors.Wrapf(ErrGrind, "after %d messages", g.maxAttempts)
		}
		r.fill(msg)
	}
	return nil
}

func (g *Generator) zeroSmallSmall() ([]Case, error) {
	r, err := newRNG()
	if err != nil {
		return nil, err
	}
	A := pickSmall(r.uint64())
	R := neg(A)
	S := edwards25519.NewScalar()
	msg := r.bytes(32)

	// R + [k]A = [k-1]A vanishes exactly when the cofactorless equation holds.
	cofactorless := func() bool {
		k := hram(msg, R.Bytes(), A.Bytes())
		return isIdentity(add(R, mul(k, A)))
	}

	if err := g.grind(r, msg, not(cofactorless)); err != nil {
		return nil, err
	}
	fail := newCase("S = 0, small A, small R; passes cofactored, fails cofactorless", msg, A.Bytes(), R, S)

	if err := g.grind(r, msg, cofactorless); err != nil {
		return nil, err
	}
	pass := newCase("S = 0, small A, small R; passes cofactored and cofactorless", msg, A.Bytes(), R, S)
	return []Case{fail, pass}, nil
}

func (g *Generator) nonZeroMixedSmall() ([]Case, error) {
	r, err := newRNG()
	if err != nil {
		return nil, err
	}
	s := reducedScalar(r.bytes(32))
	A := pickSmall(r.uint64())
	R := sub(edwards25519.NewIdentityPoint().ScalarBaseMult(s), A)
	msg := r.bytes(32)

	cofactorless := func() bool {
		k := hram(msg, R.Bytes(), A.Bytes())
		return isIdentity(add(neg(A), mul(k, A)))
	}

	if err := g.grind(r, msg, not(cofactorless)); err != nil {
		return nil, err
	}
	fail := newCase("S > 0, small A, mixed R; passes cofactored, fails cofactorless", msg, A.Bytes(), R, s)

	if err := g.grind(r, msg, cofactorless); err != nil {
		return nil, err
	}
	pass := newCase("S > 0, small A, mixed R; passes cofactored and cofactorless", msg, A.Bytes(), R, s)
	return []Case{fail, pass}, nil
}

func (g *Generator) nonZeroSmallMixed() ([]Case, error) {
	r, err := newRNG()
	if err != nil {
		return nil, err
	}
	a := reducedScalar(r.bytes(32))
	R := pickSmall(r.uint64())
	A := sub(edwards25519.NewIdentityPoint().ScalarBaseMult(a), R)
	msg := r.bytes(32)

	k := func() *edwards25519.Scalar { return hram(msg, R.Bytes(), A.Bytes()) }
	cofactorless := func() bool { return isIdentity(sub(R, mul(k(), R))) }

	if err := g.grind(r, msg, not(cofactorless)); err != nil {
		return nil, err
	}
	fail := newCase("S > 0, mixed A, small R; passes cofactored, fails cofactorless, leaks the private key",
		msg, A.Bytes(), R, edwards25519.NewScalar().Multiply(k(), a))

	if err := g.grind(r, msg, cofactorless); err != nil {
		return nil, err
	}
	pass := newCase("S > 0, mixed A, small R; passes cofactored and cofactorless, leaks the private key",
		msg, A.Bytes(), R, edwards25519.NewScalar().Multiply(k(), a))
	return []Case{fail, pass}, nil
}

func (g *Generator) nonZeroMixedMixed() ([]Case, error) {
	r, err := newRNG()
	if err != nil {
		return nil, err
	}
	a := reducedScalar(r.bytes(32))
	nonce := r.bytes(32)
	T := pickSmall(r.uint64())
	A := add(edwards25519.NewIdentityPoint().ScalarBaseMult(a), T)
	msg := r.bytes(32)

	var rs *edwards25519.Scalar
	var R *edwards25519.Point
	cofactorless := func() bool {
		rs = nonceScalar(nonce, msg)
		R = sub(edwards25519.NewIdentityPoint().ScalarBaseMult(rs), T)
		k := hram(msg, R.Bytes(), A.Bytes())
		return isIdentity(add(neg(T), mul(k, T)))
	}
	sig := func() *edwards25519.Scalar {
		k := hram(msg, R.Bytes(), A.Bytes())
		return edwards25519.NewScalar().MultiplyAdd(k, a, rs)
	}

	if err := g.grind(r, msg, not(cofactorless)); err != nil {
		return nil, err
	}
	fail := newCase("S > 0, mixed A, mixed R; passes cofactored, fails cofactorless", msg, A.Bytes(), R, sig())

	if err := g.grind(r, msg, cofactorless); err != nil {
		return nil, err
	}
	pass := newCase("S > 0, mixed A, mixed R; passes cofactored and cofactorless", msg, A.Bytes(), R, sig())
	return []Case{pass, fail}, nil
}

func (g *Generator) preReducedScalar() ([]Case, error) {
	r, err := newRNG()
	if err != nil {
		return nil, err
	}
	a := reducedScalar(r.bytes(32))
	nonce := r.bytes(32)
	T := pickSmall(r.uint64())
	A := add(edwards25519.NewIdentityPoint().ScalarBaseMult(a), T)
	msg := r.bytes(32)
	rs := nonceScalar(nonce, msg)
	R := edwards25519.NewIdentityPoint().ScalarBaseMult(rs)

	eight := smallScalar(8)
	k := func() *edwards25519.Scalar { return hram(msg, R.Bytes(), A.Bytes()) }

	// The cofactored equation only sees [8k]T = 0. Reducing 8k mod l first
	// leaves a multiple of T that survives unless (8k mod l) is a multiple
	// of T's order, and [k]T != 0 keeps the cofactorless equation failing.
	err = g.grind(r, msg, func() bool {
		kk := k()
		k8 := edwards25519.NewScalar().Multiply(eight, kk)
		return !isIdentity(mul(k8, T)) && !isIdentity(mul(kk, T))
	})
	if err != nil {
		return nil, err
	}
	S := edwards25519.NewScalar().MultiplyAdd(k(), a, rs)
	c := newCase("S > 0, mixed A, large order R; passes cofactored, fails pre-reduced cofactored and cofactorless",
		msg, A.Bytes(), R, S)
	return []Case{c}, nil
}

// honestSignature draws a key pair, nonce and message from r and returns a
// regular RFC 8032 style signature.
func honestSignature(r *rng) (msg []byte, A, R *edwards25519.Point, S *edwards25519.Scalar) {
	a := reducedScalar(r.bytes(32))
	nonce := r.bytes(32)
	A = edwards25519.NewIdentityPoint().ScalarBaseMult(a)
	msg = r.bytes(32)
	rs := nonceScalar(nonce, msg)
	R = edwards25519.NewIdentityPoint().ScalarBaseMult(rs)
	k := hram(msg, R.Bytes(), A.Bytes())
	S = edwards25519.NewScalar().MultiplyAdd(k, a, rs)
	return msg, A, R, S
}

func (g *Generator) largeS() ([]Case, error) {
	r, err := newRNG()
	if err != nil {
		return nil, err
	}
	msg, A, R, S := honestSignature(r)

	sPlusL := addOrder(natFromScalar(S))
	c := Case{
		Description: "S > l, large order A, large order R; equation holds, breaks strong unforgeability",
		Message:     msg,
		PublicKey:   A.Bytes(),
		Signature:   append(R.Bytes(), natBytes(sPlusL)...),
	}
	return []Case{c}, nil
}

func (g *Generator) reallyLargeS() ([]Case, error) {
	r, err := newRNG()
	if err != nil {
		return nil, err
	}
	msg, A, R, S := honestSignature(r)

	// Add l until one of the top three bits is set, which defeats
	// implementations that only check those bits in place of S < l.
	n := natFromScalar(S)
	for natBytes(n)[31]&0xe0 == 0 {
		n = addOrder(n)
	}
	c := Case{
		Description: "S much larger than l, large order A, large order R; passes high-bit checks, breaks strong unforgeability",
		Message:     msg,
		PublicKey:   A.Bytes(),
		Signature:   append(R.Bytes(), natBytes(n)...),
	}
	return []Case{c}, nil
}

func (g *Generator) nonCanonicalR() ([]Case, error) {
	r, err := newRNG()
	if err != nil {
		return nil, err
	}
	a := reducedScalar(r.bytes(32))
	rRaw, _ := hex.DecodeString(negZeroOrderTwo)
	R, err := new(edwards25519.Point).SetBytes(rRaw)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode non-canonical R")
	}
	T := pickSmall(r.uint64())
	A := sub(edwards25519.NewIdentityPoint().ScalarBaseMult(a), T)
	msg := r.bytes(32)

	reserialized := func() *edwards25519.Scalar { return hram(msg, R.Bytes(), A.Bytes()) }
	raw := func() *edwards25519.Scalar { return hram(msg, rRaw, A.Bytes()) }

	if err := g.grind(r, msg, func() bool { return isIdentity(sub(R, mul(reserialized(), T))) }); err != nil {
		return nil, err
	}
	first := Case{
		Description: "S > 0, mixed A, non-canonical small R; passes when R is reserialized before hashing",
		Message:     clone(msg),
		PublicKey:   A.Bytes(),
		Signature:   append(clone(rRaw), edwards25519.NewScalar().Multiply(reserialized(), a).Bytes()...),
	}

	if err := g.grind(r, msg, func() bool { return isIdentity(sub(R, mul(raw(), T))) }); err != nil {
		return nil, err
	}
	second := Case{
		Description: "S > 0, mixed A, non-canonical small R; passes when R is hashed as received",
		Message:     clone(msg),
		PublicKey:   A.Bytes(),
		Signature:   append(clone(rRaw), edwards25519.NewScalar().Multiply(raw(), a).Bytes()...),
	}
	return []Case{first, second}, nil
}

func (g *Generator) nonCanonicalA() ([]Case, error) {
	r, err := newRNG()
	if err != nil {
		return nil, err
	}
	s := reducedScalar(r.bytes(32))
	aRaw, _ := hex.DecodeString(negZeroOrderTwo)
	A, err := new(edwards25519.Point).SetBytes(aRaw)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode non-canonical A")
	}
	R := sub(edwards25519.NewIdentityPoint().ScalarBaseMult(s), A)
	msg := r.bytes(32)

	passes := func(k *edwards25519.Scalar) bool { return isIdentity(add(neg(A), mul(k, A))) }
	reserialized := func() bool { return passes(hram(msg, R.Bytes(), A.Bytes())) }
	raw := func() bool { return passes(hram(msg, R.Bytes(), aRaw)) }

	if err := g.grind(r, msg, func() bool { return reserialized() && !raw() }); err != nil {
		return nil, err
	}
	first := Case{
		Description: "S > 0, negative-zero non-canonical A, mixed R; passes cofactorless only when A is reserialized",
		Message:     clone(msg),
		PublicKey:   clone(aRaw),
		Signature:   append(R.Bytes(), s.Bytes()...),
	}

	if err := g.grind(r, msg, func() bool { return raw() && !reserialized() }); err != nil {
		return nil, err
	}
	second := Case{
		Description: "S > 0, negative-zero non-canonical A, mixed R; passes cofactorless only when A is hashed as received",
		Message:     clone(msg),
		PublicKey:   clone(aRaw),
		Signature:   append(R.Bytes(), s.Bytes()...),
	}
	return []Case{first, second}, nil
}

func newCase(desc string, msg, pub []byte, R *edwards25519.Point, S *edwards25519.Scalar) Case {
	return Case{
		Description: desc,
		Message:     clone(msg),
		PublicKey:   clone(pub),
		Signature:   append(R.Bytes(), S.Bytes()...),
	}
}

// pickSmall returns one of the seven non-identity eight-torsion points.
func pickSmall(idx uint64) *edwards25519.Point {
	return torsion(int((idx+1)%7) + 1)
}

func torsion(i int) *edwards25519.Point {
	enc, _ := hex.DecodeString(eightTorsionGenerator)
	T, err := new(edwards25519.Point).SetBytes(enc)
	if err != nil {
		panic(fmt.Sprintf("generator: invalid torsion generator: %v", err))
	}
	v := edwards25519.NewIdentityPoint()
	for j := 0; j < i; j++ {
		v.Add(v, T)
	}
	return v
}

// hram computes SHA-512(R || A || M) mod l over the given encodings.
func hram(msg, rEnc, aEnc []byte) *edwards25519.Scalar {
	h := sha512.New()
	h.Write(rEnc)
	h.Write(aEnc)
	h.Write(msg)
	k, err := edwards25519.NewScalar().SetUniformBytes(h.Sum(nil))
	if err != nil {
		panic(err)
	}
	return k
}

func nonceScalar(nonce, msg []byte) *edwards25519.Scalar {
	h := sha512.New()
	h.Write(nonce)
	h.Write(msg)
	k, err := edwards25519.NewScalar().SetUniformBytes(h.Sum(nil))
	if err != nil {
		panic(err)
	}
	return k
}

func reducedScalar(b []byte) *edwards25519.Scalar {
	wide := make([]byte, 64)
	copy(wide, b)
	s, err := edwards25519.NewScalar().SetUniformBytes(wide)
	if err != nil {
		panic(err)
	}
	return s
}

func smallScalar(x byte) *edwards25519.Scalar {
	b := make([]byte, 32)
	b[0] = x
	s, err := edwards25519.NewScalar().SetCanonicalBytes(b)
	if err != nil {
		panic(err)
	}
	return s
}

func add(p, q *edwards25519.Point) *edwards25519.Point {
	return edwards25519.NewIdentityPoint().Add(p, q)
}

func sub(p, q *edwards25519.Point) *edwards25519.Point {
	return edwards25519.NewIdentityPoint().Subtract(p, q)
}

func neg(p *edwards25519.Point) *edwards25519.Point {
	return edwards25519.NewIdentityPoint().Negate(p)
}

func mul(k *edwards25519.Scalar, p *edwards25519.Point) *edwards25519.Point {
	return edwards25519.NewIdentityPoint().ScalarMult(k, p)
}

func isIdentity(p *edwards25519.Point) bool {
	return p.Equal(edwards25519.NewIdentityPoint()) == 1
}

func not(f func() bool) func() bool {
	return func() bool { return !f() }
}

func clone(b []byte) []byte {
	return append([]byte(nil), b...)
}

// Non-reducing scalar helpers. The values built here are deliberately not
// below l, so they live outside both scalar types.

var orderNat = func() *saferith.Nat {
	l, ok := new(big.Int).SetString(scalar.Order, 10)
	if !ok {
		panic("generator: invalid group order")
	}
	return new(saferith.Nat).SetBytes(l.Bytes())
}()

func natFromScalar(s *edwards25519.Scalar) *saferith.Nat {
	return new(saferith.Nat).SetBytes(reverse(s.Bytes()))
}

func addOrder(n *saferith.Nat) *saferith.Nat {
	return new(saferith.Nat).Add(n, orderNat, 256)
}

// natBytes returns n as 32 little-endian bytes.
func natBytes(n *saferith.Nat) []byte {
	be := n.Bytes()
	out := make([]byte, 32)
	for i := 0; i < len(be) && i < 32; i++ {
		out[i] = be[len(be)-1-i]
	}
	return out
}

func reverse(b []byte) []byte {
	out := make([]byte, len(b))
	for i := range b {
		out[len(b)-1-i] = b[i]
	}
	return out
}
