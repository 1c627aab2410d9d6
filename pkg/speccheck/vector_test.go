package speccheck

import "testing"

func TestCorpus_Fingerprint(t *testing.T) {
	a := TestVector{Message: []byte("a"), PublicKey: []byte("b"), Signature: []byte("c")}
	b := TestVector{Message: []byte("x"), PublicKey: []byte("y"), Signature: []byte("z")}

	c1 := NewCorpus("one", a, b)
	c2 := NewCorpus("two", a, b)
	if c1.Fingerprint() != c2.Fingerprint() {
		t.Error("Fingerprint should not depend on the source name")
	}

	if c1.Fingerprint() == NewCorpus("one", b, a).Fingerprint() {
		t.Error("Fingerprint should depend on vector order")
	}

	shifted := TestVector{Message: []byte("ab"), PublicKey: nil, Signature: []byte("c")}
	if NewCorpus("", a).Fingerprint() == NewCorpus("", shifted).Fingerprint() {
		t.Error("Moving a byte between fields should change the fingerprint")
	}

	if NewCorpus("").Fingerprint() == NewCorpus("", TestVector{}).Fingerprint() {
		t.Error("An empty vector should change the fingerprint")
	}

	if got := len(c1.FingerprintHex()); got != 64 {
		t.Errorf("Expected 64 hex characters, got %d", got)
	}
}
