package speccheck

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"

	"github.com/mahdiidarabi/eddsa-speccheck/internal/eddsa"
	"github.com/mahdiidarabi/eddsa-speccheck/internal/log"
)

func quietRunner() *Runner {
	return NewRunner().WithLogger(log.Discard())
}

func TestRunner_FixtureOutcomes(t *testing.T) {
	m, err := quietRunner().Run(context.Background(), filepath.Join(fixturesDir(), "cases.json"))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if m.Vectors != 10 {
		t.Fatalf("Expected 10 columns, got %d", m.Vectors)
	}
	for _, name := range m.Verifiers {
		accepts := expectedAccepts[name]
		for j := 0; j < m.Vectors; j++ {
			want := Reject
			if contains(accepts, j) {
				want = Accept
			}
			got, _ := m.Outcome(name, j)
			if got != want {
				t.Errorf("%s on vector %d: expected %s, got %s", name, j, want, got)
			}
		}
	}
}

func TestRunner_LiteralSmallOrderScenario(t *testing.T) {
	corpus := loadCases(t)
	ref := NewReferenceVerifier(eddsa.Strict)

	m, err := quietRunner().WithVerifiers(ref).RunCorpus(context.Background(), NewCorpus("literal", corpus.Vectors[:2]...))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if got, _ := m.Outcome("reference", 0); got != Accept {
		t.Errorf("Message 8c93...022b6: expected accept, got %s", got)
	}
	if got, _ := m.Outcome("reference", 1); got != Reject {
		t.Errorf("Message 2a66...080fc: expected reject, got %s", got)
	}
}

func TestRunner_ErrorsAreIsolated(t *testing.T) {
	corpus := loadCases(t)
	panicking := Adapt("panics", func(pub, msg, sig []byte) bool {
		if len(msg) == 0 {
			panic("empty message")
		}
		return true
	})
	failing := &errVerifier{}

	for _, workers := range []int{1, 4} {
		m, err := quietRunner().
			WithVerifiers(panicking, failing, NewReferenceVerifier(eddsa.Strict)).
			WithWorkers(workers).
			RunCorpus(context.Background(), corpus)
		if err != nil {
			t.Fatalf("workers=%d: run failed: %v", workers, err)
		}

		row, _ := m.Row("panics")
		for j, cell := range row {
			want := Accept
			if len(corpus.Vectors[j].Message) == 0 {
				want = Error
			}
			if cell.Outcome != want {
				t.Errorf("workers=%d: panics on vector %d: expected %s, got %s", workers, j, want, cell.Outcome)
			}
			if want == Error && cell.Err == nil {
				t.Errorf("workers=%d: error cell %d has no cause", workers, j)
			}
		}

		if got := m.Count("fails", Error); got != corpus.Len() {
			t.Errorf("workers=%d: expected %d error cells, got %d", workers, corpus.Len(), got)
		}
		if got := m.Count("reference", Accept); got != len(expectedAccepts["reference"]) {
			t.Errorf("workers=%d: reference accepted %d vectors", workers, got)
		}
	}
}

type errVerifier struct{}

func (errVerifier) Name() string { return "fails" }

func (errVerifier) Verify(pub, msg, sig []byte) (bool, error) {
	return false, errors.New("backend unavailable")
}

func TestRunner_ParallelMatchesSequential(t *testing.T) {
	corpus := loadCases(t)

	seq, err := quietRunner().RunCorpus(context.Background(), corpus)
	if err != nil {
		t.Fatalf("Sequential run failed: %v", err)
	}
	par, err := quietRunner().WithWorkers(8).RunCorpus(context.Background(), corpus)
	if err != nil {
		t.Fatalf("Parallel run failed: %v", err)
	}

	if seq.RunID == par.RunID {
		t.Error("Runs should have distinct IDs")
	}
	if seq.Fingerprint != par.Fingerprint {
		t.Error("Same corpus should have the same fingerprint")
	}
	for i := range seq.Cells {
		for j := range seq.Cells[i] {
			if seq.Cells[i][j].Outcome != par.Cells[i][j].Outcome {
				t.Errorf("Cell (%s, %d) differs: %s vs %s",
					seq.Verifiers[i], j, seq.Cells[i][j].Outcome, par.Cells[i][j].Outcome)
			}
		}
	}
}

func TestRunner_Disagreements(t *testing.T) {
	m, err := quietRunner().RunCorpus(context.Background(), loadCases(t))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// Honest signatures and plainly invalid vectors are unanimous.
	want := []int{0, 1, 8, 9}
	got := m.Disagreements()
	if len(got) != len(want) {
		t.Fatalf("Expected disagreements %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Expected disagreements %v, got %v", want, got)
			break
		}
	}
}

func TestRunner_Explain(t *testing.T) {
	corpus := loadCases(t)
	vs, err := DefaultRegistry().Lookup("reference", "libsodium", GoCryptoName)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}

	m, err := quietRunner().WithVerifiers(vs...).WithExplain(true).RunCorpus(context.Background(), corpus)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	ref, _ := m.Row("reference")
	if !errors.Is(ref[1].Reason, eddsa.ErrEquation) {
		t.Errorf("Vector 1: expected equation failure, got %v", ref[1].Reason)
	}
	if !errors.Is(ref[5].Reason, eddsa.ErrScalar) {
		t.Errorf("Vector 5: expected scalar failure, got %v", ref[5].Reason)
	}
	if !errors.Is(ref[6].Reason, eddsa.ErrLength) {
		t.Errorf("Vector 6: expected length failure, got %v", ref[6].Reason)
	}
	if !errors.Is(ref[9].Reason, eddsa.ErrPublicKey) {
		t.Errorf("Vector 9: expected public key failure, got %v", ref[9].Reason)
	}
	if ref[0].Reason != nil {
		t.Errorf("Accepted vector should have no reason, got %v", ref[0].Reason)
	}

	sodium, _ := m.Row("libsodium")
	if !errors.Is(sodium[0].Reason, eddsa.ErrSmallOrder) {
		t.Errorf("libsodium vector 0: expected small-order rejection, got %v", sodium[0].Reason)
	}

	goRow, _ := m.Row(GoCryptoName)
	for j, cell := range goRow {
		if cell.Reason != nil {
			t.Errorf("%s vector %d: adapters without Explain should carry no reason", GoCryptoName, j)
		}
	}
}

func TestRunner_NoExplainByDefault(t *testing.T) {
	m, err := quietRunner().RunCorpus(context.Background(), loadCases(t))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	for _, row := range m.Cells {
		for _, cell := range row {
			if cell.Reason != nil {
				t.Fatal("Reasons should only be recorded with WithExplain")
			}
		}
	}
}

func TestRunner_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, workers := range []int{1, 4} {
		_, err := quietRunner().WithWorkers(workers).RunCorpus(ctx, loadCases(t))
		if !errors.Is(err, context.Canceled) {
			t.Errorf("workers=%d: expected context.Canceled, got %v", workers, err)
		}
	}
}

func TestRunner_Errors(t *testing.T) {
	_, err := quietRunner().WithVerifiers().RunCorpus(context.Background(), loadCases(t))
	if !errors.Is(err, ErrNoVerifiers) {
		t.Errorf("Expected ErrNoVerifiers, got %v", err)
	}

	called := false
	spy := Adapt("spy", func(pub, msg, sig []byte) bool {
		called = true
		return true
	})
	_, err = quietRunner().WithVerifiers(spy).Run(context.Background(), filepath.Join(fixturesDir(), "malformed_hex.json"))
	if !errors.Is(err, ErrCorpus) {
		t.Errorf("Expected ErrCorpus, got %v", err)
	}
	if called {
		t.Error("No verifier should run on a malformed corpus")
	}
}

func TestResultMatrix_Lookups(t *testing.T) {
	m, err := quietRunner().RunCorpus(context.Background(), loadCases(t))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if _, ok := m.Row("missing"); ok {
		t.Error("Row should report unknown verifiers")
	}
	if _, ok := m.Outcome("reference", m.Vectors); ok {
		t.Error("Outcome should report out-of-range indices")
	}
	if m.Count("missing", Accept) != 0 {
		t.Error("Count of an unknown verifier should be zero")
	}
	if Accept.Symbol() != "V" || Reject.Symbol() != "X" || Error.Symbol() != "!" {
		t.Error("Unexpected outcome symbols")
	}
}
