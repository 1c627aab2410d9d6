package speccheck

import (
	"testing"

	"github.com/pkg/errors"
)

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	always := Adapt("always", func(pub, msg, sig []byte) bool { return true })
	never := Adapt("never", func(pub, msg, sig []byte) bool { return false })

	if err := reg.Register(always); err != nil {
		t.Fatalf("Failed to register: %v", err)
	}
	if err := reg.Register(never); err != nil {
		t.Fatalf("Failed to register: %v", err)
	}

	if err := reg.Register(always); !errors.Is(err, ErrDuplicateVerifier) {
		t.Errorf("Expected ErrDuplicateVerifier, got %v", err)
	}
	if err := reg.Register(Adapt("", nil)); err == nil {
		t.Error("Expected error for an empty name")
	}

	names := reg.Names()
	if len(names) != 2 || names[0] != "always" || names[1] != "never" {
		t.Errorf("Unexpected names %v", names)
	}

	vs, err := reg.Lookup("never", "always")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if vs[0].Name() != "never" || vs[1].Name() != "always" {
		t.Error("Lookup should preserve the requested order")
	}

	if _, err := reg.Lookup("always", "sometimes"); !errors.Is(err, ErrUnknownVerifier) {
		t.Errorf("Expected ErrUnknownVerifier, got %v", err)
	}
}

func TestRegistry_MustRegisterPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected panic on duplicate registration")
		}
	}()
	v := Adapt("dup", func(pub, msg, sig []byte) bool { return true })
	NewRegistry().MustRegister(v, v)
}

func TestDefaultRegistry(t *testing.T) {
	names := DefaultRegistry().Names()
	if len(names) != len(expectedAccepts) {
		t.Fatalf("Expected %d verifiers, got %d: %v", len(expectedAccepts), len(names), names)
	}
	if names[0] != "reference" {
		t.Errorf("Expected the strict reference verifier first, got %s", names[0])
	}
	for _, name := range names {
		if _, ok := expectedAccepts[name]; !ok {
			t.Errorf("No expectations for verifier %s", name)
		}
	}
}

func TestAdapters_ShortInputsDoNotPanic(t *testing.T) {
	vs, _ := DefaultRegistry().Lookup()
	inputs := [][2][]byte{
		{nil, nil},
		{make([]byte, 31), make([]byte, 64)},
		{make([]byte, 32), make([]byte, 10)},
		{make([]byte, 33), make([]byte, 65)},
	}
	for _, v := range vs {
		for _, in := range inputs {
			ok, err := v.Verify(in[0], []byte("msg"), in[1])
			if err != nil || ok {
				t.Errorf("%s: expected plain rejection for lengths %d/%d, got %v, %v",
					v.Name(), len(in[0]), len(in[1]), ok, err)
			}
		}
	}
}

func TestIsCanonicalPoint(t *testing.T) {
	identity := make([]byte, 32)
	identity[0] = 1
	if !isCanonicalPoint(identity) {
		t.Error("Identity encoding should be canonical")
	}

	negZero := make([]byte, 32)
	negZero[0] = 1
	negZero[31] = 0x80
	if isCanonicalPoint(negZero) {
		t.Error("Identity with the sign bit set should not be canonical")
	}

	pPlusOne := make([]byte, 32)
	pPlusOne[0] = 0xee
	for i := 1; i < 31; i++ {
		pPlusOne[i] = 0xff
	}
	pPlusOne[31] = 0x7f
	if isCanonicalPoint(pPlusOne) {
		t.Error("y = p + 1 should not be canonical")
	}
	if !hasSmallOrder(pPlusOne) {
		t.Error("y = p + 1 encodes the identity and has small order")
	}
}

func TestReferenceVerifier_Policy(t *testing.T) {
	vs, err := DefaultRegistry().Lookup("libsodium", "zip215")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}

	sodium, ok := vs[0].(*ReferenceVerifier)
	if !ok {
		t.Fatalf("Expected a ReferenceVerifier, got %T", vs[0])
	}
	if p := sodium.Policy(); !p.RejectSmallOrderA || !p.RejectSmallOrderR || p.Name != "libsodium" {
		t.Errorf("Unexpected libsodium policy %+v", p)
	}

	zip, ok := vs[1].(*ReferenceVerifier)
	if !ok {
		t.Fatalf("Expected a ReferenceVerifier, got %T", vs[1])
	}
	if p := zip.Policy(); p.CanonicalA || p.CanonicalR {
		t.Errorf("zip215 should decode permissively, got %+v", p)
	}
}
