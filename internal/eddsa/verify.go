// Package eddsa is the reference Ed25519 verifier. A Verifier checks
// signatures under a configurable Policy so that the differences between
// deployed implementations can be reproduced from one code base.
package eddsa

import (
	"crypto/sha512"

	"github.com/pkg/errors"

	"github.com/mahdiidarabi/eddsa-speccheck/internal/edwards"
	"github.com/mahdiidarabi/eddsa-speccheck/internal/scalar"
)

const (
	// PublicKeySize is the size of an encoded public key.
	PublicKeySize = 32
	// SignatureSize is the size of an encoded signature, R || S.
	SignatureSize = 64
)

// Rejection reasons returned by Check.
var (
	ErrLength     = errors.New("eddsa: invalid public key or signature length")
	ErrPublicKey  = errors.New("eddsa: invalid public key encoding")
	ErrSignatureR = errors.New("eddsa: invalid R encoding")
	ErrScalar     = errors.New("eddsa: S is not reduced")
	ErrSmallOrder = errors.New("eddsa: small-order point")
	ErrEquation   = errors.New("eddsa: verification equation does not hold")
)

// Verifier verifies Ed25519 signatures under a fixed Policy. It holds no
// mutable state and is safe for concurrent use.
type Verifier struct {
	policy Policy
}

// New returns a Verifier for the given policy.
func New(policy Policy) *Verifier {
	return &Verifier{policy: policy}
}

// Policy returns the policy v enforces.
func (v *Verifier) Policy() Policy {
	return v.policy
}

// Name returns the policy name.
func (v *Verifier) Name() string {
	return v.policy.Name
}

// Verify reports whether sig is a valid signature of msg by pub.
func (v *Verifier) Verify(pub, msg, sig []byte) bool {
	return v.Check(pub, msg, sig) == nil
}

// Check verifies sig over msg with pub and returns nil on acceptance. A
// rejection is reported as an error wrapping one of the Err* reasons above.
//
// Args:
//   - pub: 32-byte encoded public key A
//   - msg: message of any length
//   - sig: 64-byte signature R || S
//
// Returns:
//   - nil if the signature is accepted under v's policy, the reason otherwise
func (v *Verifier) Check(pub, msg, sig []byte) error {
	if len(pub) != PublicKeySize || len(sig) != SignatureSize {
		return errors.Wrapf(ErrLength, "public key %d bytes, signature %d bytes", len(pub), len(sig))
	}
	p := v.policy

	A, err := decodePoint(pub, p.CanonicalA)
	if err != nil {
		return errors.WithMessage(ErrPublicKey, err.Error())
	}
	R, err := decodePoint(sig[:32], p.CanonicalR)
	if err != nil {
		return errors.WithMessage(ErrSignatureR, err.Error())
	}
	S, err := scalar.New().SetCanonicalBytes(sig[32:])
	if err != nil {
		return errors.WithMessage(ErrScalar, err.Error())
	}

	if p.RejectSmallOrderA && A.IsSmallOrder() {
		return errors.WithMessage(ErrSmallOrder, "public key")
	}
	if p.RejectSmallOrderR && R.IsSmallOrder() {
		return errors.WithMessage(ErrSmallOrder, "R")
	}

	k := challenge(pub, sig[:32], msg, A, R, p.ReserializeHash)
	if !checkEquation(p.Equation, A, R, S, k) {
		return errors.WithMessage(ErrEquation, p.Equation.String())
	}
	return nil
}

func decodePoint(b []byte, canonical bool) (*edwards.Point, error) {
	if canonical {
		return new(edwards.Point).SetCanonicalBytes(b)
	}
	return new(edwards.Point).SetBytes(b)
}

// challenge computes k = SHA-512(R || A || M) mod l.
func challenge(pub, rBytes, msg []byte, A, R *edwards.Point, reserialize bool) *scalar.Scalar {
	if reserialize {
		rBytes, pub = R.Bytes(), A.Bytes()
	}
	h := sha512.New()
	h.Write(rBytes)
	h.Write(pub)
	h.Write(msg)
	return scalar.New().SetReducedBytes(h.Sum(nil))
}

func checkEquation(eq Equation, A, R *edwards.Point, S, k *scalar.Scalar) bool {
	minusA := new(edwards.Point).Negate(A)

	switch eq {
	case Cofactored:
		// [8]([S]B - [k]A - R) = 0
		rr := new(edwards.Point).VarTimeDoubleScalarBaseMult(k, minusA, S)
		rr.Subtract(rr, R)
		return rr.IsSmallOrder()

	case PreReducedCofactored:
		eight := scalar.New().SetUint64(8)
		k8 := scalar.New().Multiply(k, eight)
		s8 := scalar.New().Multiply(S, eight)
		lhs := new(edwards.Point).VarTimeDoubleScalarBaseMult(k8, minusA, s8)
		rhs := new(edwards.Point).MultByCofactor(R)
		return lhs.Equal(rhs) == 1

	default:
		rr := new(edwards.Point).VarTimeDoubleScalarBaseMult(k, minusA, S)
		return rr.Equal(R) == 1
	}
}
