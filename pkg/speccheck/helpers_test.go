package speccheck

import (
	"path/filepath"
	"runtime"
	"testing"
)

// fixturesDir returns the path to the fixtures directory (works regardless of test cwd).
func fixturesDir() string {
	_, f, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(f), "..", "..", "fixtures")
}

// loadCases parses fixtures/cases.json.
func loadCases(t *testing.T) *Corpus {
	t.Helper()
	corpus, err := AutoParser{}.ParseCorpus(filepath.Join(fixturesDir(), "cases.json"))
	if err != nil {
		t.Fatalf("Failed to parse cases.json: %v", err)
	}
	return corpus
}

// expectedAccepts lists, per verifier, the indices of fixtures/cases.json
// that it accepts. Every other vector is rejected.
var expectedAccepts = map[string][]int{
	"reference":         {0, 2, 3},
	"cofactored":        {0, 1, 2, 3, 8},
	"pre-reduced":       {2, 3},
	"zip215":            {0, 1, 2, 3, 8, 9},
	"go-stdlib":         {0, 2, 3, 9},
	"libsodium":         {2, 3},
	"reserialized":      {0, 2, 3, 9},
	GoCryptoName:        {0, 2, 3, 9},
	XCryptoName:         {0, 2, 3, 9},
	ConsensusName:       {0, 1, 2, 3, 8, 9},
	ConsensusStrictName: {2, 3},
}

func contains(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
