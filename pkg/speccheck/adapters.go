package speccheck

import (
	stded25519 "crypto/ed25519"

	"github.com/hdevalence/ed25519consensus"
	xed25519 "golang.org/x/crypto/ed25519"

	"github.com/mahdiidarabi/eddsa-speccheck/internal/eddsa"
)

// ReferenceVerifier runs the built-in verifier under one policy.
type ReferenceVerifier struct {
	v *eddsa.Verifier
}

// NewReferenceVerifier returns a verifier enforcing policy.
func NewReferenceVerifier(policy eddsa.Policy) *ReferenceVerifier {
	return &ReferenceVerifier{v: eddsa.New(policy)}
}

// Name implements Verifier.
func (r *ReferenceVerifier) Name() string { return r.v.Name() }

// Verify implements Verifier. The reference verifier never errors.
func (r *ReferenceVerifier) Verify(pub, msg, sig []byte) (bool, error) {
	return r.v.Verify(pub, msg, sig), nil
}

// Policy returns the policy r enforces.
func (r *ReferenceVerifier) Policy() eddsa.Policy { return r.v.Policy() }

// Explain implements Explainer.
func (r *ReferenceVerifier) Explain(pub, msg, sig []byte) error {
	return r.v.Check(pub, msg, sig)
}

// Names of the external adapters in DefaultRegistry.
const (
	GoCryptoName        = "go-crypto-ed25519"
	XCryptoName         = "x-crypto-ed25519"
	ConsensusName       = "ed25519consensus"
	ConsensusStrictName = "ed25519consensus-strict"
)

// GoCryptoVerifier wraps crypto/ed25519. ed25519.Verify panics on a public
// key of the wrong size, so such keys are rejected up front.
func GoCryptoVerifier() Verifier {
	return Adapt(GoCryptoName, func(pub, msg, sig []byte) bool {
		if len(pub) != stded25519.PublicKeySize {
			return false
		}
		return stded25519.Verify(pub, msg, sig)
	})
}

// XCryptoVerifier wraps golang.org/x/crypto/ed25519.
func XCryptoVerifier() Verifier {
	return Adapt(XCryptoName, func(pub, msg, sig []byte) bool {
		if len(pub) != xed25519.PublicKeySize {
			return false
		}
		return xed25519.Verify(pub, msg, sig)
	})
}

// ConsensusVerifier wraps ed25519consensus, which implements ZIP 215.
func ConsensusVerifier() Verifier {
	return Adapt(ConsensusName, func(pub, msg, sig []byte) bool {
		if len(pub) != 32 || len(sig) != 64 {
			return false
		}
		return ed25519consensus.Verify(pub, msg, sig)
	})
}

// ConsensusStrictVerifier layers byte-level checks on ed25519consensus: A
// and R must be canonical and A must not be a small-order point.
func ConsensusStrictVerifier() Verifier {
	return Adapt(ConsensusStrictName, func(pub, msg, sig []byte) bool {
		if len(pub) != 32 || len(sig) != 64 {
			return false
		}
		if !isCanonicalPoint(pub) || !isCanonicalPoint(sig[:32]) || hasSmallOrder(pub) {
			return false
		}
		return ed25519consensus.Verify(pub, msg, sig)
	})
}

// DefaultRegistry returns a registry holding every reference policy followed
// by the external adapters.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, p := range eddsa.Profiles() {
		r.MustRegister(NewReferenceVerifier(p))
	}
	return r.MustRegister(
		GoCryptoVerifier(),
		XCryptoVerifier(),
		ConsensusVerifier(),
		ConsensusStrictVerifier(),
	)
}

// isCanonicalY reports whether the low 255 bits of p encode an integer below
// 2^255 - 19, using the succeed-fast check from "Taming the many EdDSAs".
func isCanonicalY(p []byte) bool {
	if p[0] < 237 {
		return true
	}
	for i := 1; i < 31; i++ {
		if p[i] != 255 {
			return true
		}
	}
	return (p[31] | 128) != 255
}

// isCanonicalPoint also rejects the two encodings with a sign bit on x = 0
// and a canonical y: (-0, 1) and (-0, p-1).
func isCanonicalPoint(p []byte) bool {
	if !isCanonicalY(p) {
		return false
	}
	if p[31] != 0x80 && p[31] != 0xff {
		return true
	}
	negZero := [][32]byte{
		{0x01, 31: 0x80},
		{0xec, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
			0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
			0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
			0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
	}
	for _, nz := range negZero {
		if string(p) == string(nz[:]) {
			return false
		}
	}
	return true
}

// smallOrderPrefixes are the libsodium blacklist entries, compared with the
// sign bit cleared.
var smallOrderPrefixes = [][32]byte{
	{},     // y = 0, order 4
	{0x01}, // identity
	{0x26, 0xe8, 0x95, 0x8f, 0xc2, 0xb2, 0x27, 0xb0, 0x45, 0xc3, 0xf4, 0x89, 0xf2, 0xef, 0x98, 0xf0,
		0xd5, 0xdf, 0xac, 0x05, 0xd3, 0xc6, 0x33, 0x39, 0xb1, 0x38, 0x02, 0x88, 0x6d, 0x53, 0xfc, 0x05},
	{0xc7, 0x17, 0x6a, 0x70, 0x3d, 0x4d, 0xd8, 0x4f, 0xba, 0x3c, 0x0b, 0x76, 0x0d, 0x10, 0x67, 0x0f,
		0x2a, 0x20, 0x53, 0xfa, 0x2c, 0x39, 0xcc, 0xc6, 0x4e, 0xc7, 0xfd, 0x77, 0x92, 0xac, 0x03, 0x7a},
	{0xec, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
		0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x7f},
	{0xed, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
		0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x7f},
	{0xee, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
		0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x7f},
}

func hasSmallOrder(p []byte) bool {
	for _, point := range smallOrderPrefixes {
		if string(p[:31]) == string(point[:31]) && p[31]&0x7f == point[31] {
			return true
		}
	}
	return false
}
