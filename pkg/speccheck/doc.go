// Package speccheck runs Ed25519 verifiers side by side over a corpus of
// test vectors and records, for every (verifier, vector) pair, whether the
// signature was accepted, rejected, or the verifier failed.
//
// Verifiers that agree on honest signatures routinely disagree on edge
// cases: small-order keys and nonces, non-canonical point encodings, S >= l,
// and the choice between the cofactored and cofactorless equations. The
// result matrix makes those disagreements visible.
//
// Basic Usage:
//
//	runner := speccheck.NewRunner()
//	matrix, err := runner.Run(ctx, "fixtures/cases.json")
//	// matrix.Disagreements() lists the vectors the verifiers split on.
//
// Selecting verifiers and adding your own:
//
//	reg := speccheck.DefaultRegistry()
//	reg.MustRegister(speccheck.Adapt("my-lib", mylib.Verify))
//	vs, _ := reg.Lookup("reference", "zip215", "my-lib")
//	runner = speccheck.NewRunner().WithVerifiers(vs...).WithWorkers(4)
//
// The reference rows come from a built-in verifier configured by
// eddsa.Policy; the remaining rows wrap crypto/ed25519,
// golang.org/x/crypto/ed25519 and github.com/hdevalence/ed25519consensus.
//
// Corpora are read as JSON (cases.json), the line-oriented text format
// (cases.txt) or CBOR, chosen by file extension.
package speccheck
