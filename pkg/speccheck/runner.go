package speccheck

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/mahdiidarabi/eddsa-speccheck/internal/log"
)

// Outcome is the verdict of one verifier on one vector.
type Outcome int

const (
	// Accept means the verifier reported a valid signature.
	Accept Outcome = iota
	// Reject means the verifier reported an invalid signature.
	Reject
	// Error means the verifier failed to produce a verdict.
	Error
)

func (o Outcome) String() string {
	switch o {
	case Accept:
		return "accept"
	case Reject:
		return "reject"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Symbol returns the report cell for o: V, X or !.
func (o Outcome) Symbol() string {
	switch o {
	case Accept:
		return "V"
	case Reject:
		return "X"
	default:
		return "!"
	}
}

// Cell is the result of one (verifier, vector) evaluation.
type Cell struct {
	Outcome Outcome
	// Err holds the cause of an Error outcome.
	Err error
	// Reason holds the rejection reason when explanations were requested
	// and the verifier implements Explainer.
	Reason error
}

// ResultMatrix holds one row per verifier and one column per vector.
type ResultMatrix struct {
	RunID       uuid.UUID
	Source      string
	Fingerprint string
	Verifiers   []string
	Vectors     int
	Cells       [][]Cell // Cells[verifier][vector]
	StartedAt   time.Time
	Elapsed     time.Duration
}

// Row returns the cells of the named verifier.
func (m *ResultMatrix) Row(name string) ([]Cell, bool) {
	for i, n := range m.Verifiers {
		if n == name {
			return m.Cells[i], true
		}
	}
	return nil, false
}

// Outcome returns the outcome of the named verifier on vector index.
func (m *ResultMatrix) Outcome(name string, index int) (Outcome, bool) {
	row, ok := m.Row(name)
	if !ok || index < 0 || index >= len(row) {
		return 0, false
	}
	return row[index].Outcome, true
}

// Disagreements returns, in ascending order, the indices of vectors on which
// at least two verifiers produced different outcomes.
func (m *ResultMatrix) Disagreements() []int {
	var out []int
	for j := 0; j < m.Vectors; j++ {
		for i := 1; i < len(m.Cells); i++ {
			if m.Cells[i][j].Outcome != m.Cells[0][j].Outcome {
				out = append(out, j)
				break
			}
		}
	}
	return out
}

// Count returns how many cells of the named verifier have outcome o.
func (m *ResultMatrix) Count(name string, o Outcome) int {
	row, _ := m.Row(name)
	n := 0
	for _, c := range row {
		if c.Outcome == o {
			n++
		}
	}
	return n
}

// ErrNoVerifiers is returned when a run has no verifier to evaluate.
var ErrNoVerifiers = errors.New("speccheck: no verifiers selected")

// Runner evaluates every selected verifier on every vector of a corpus.
type Runner struct {
	parser    CorpusParser
	verifiers []Verifier
	workers   int
	explain   bool
	logger    *log.Logger
}

// NewRunner creates a runner with default settings: format detection by
// file extension, every verifier of DefaultRegistry, one worker.
func NewRunner() *Runner {
	vs, _ := DefaultRegistry().Lookup()
	return &Runner{
		parser:    AutoParser{},
		verifiers: vs,
		workers:   1,
		logger:    log.Default().Module("runner"),
	}
}

// WithParser sets the corpus parser used by Run.
func (r *Runner) WithParser(parser CorpusParser) *Runner {
	r.parser = parser
	return r
}

// WithVerifiers replaces the verifier list. Rows follow the order given.
func (r *Runner) WithVerifiers(vs ...Verifier) *Runner {
	r.verifiers = vs
	return r
}

// WithWorkers sets how many cells are evaluated concurrently. Values below
// one mean one.
func (r *Runner) WithWorkers(n int) *Runner {
	if n < 1 {
		n = 1
	}
	r.workers = n
	return r
}

// WithExplain records rejection reasons for verifiers that implement
// Explainer.
func (r *Runner) WithExplain(explain bool) *Runner {
	r.explain = explain
	return r
}

// WithLogger sets the logger.
func (r *Runner) WithLogger(l *log.Logger) *Runner {
	if l != nil {
		r.logger = l
	}
	return r
}

// Run loads the corpus at path and evaluates it.
//
// Args:
//   - ctx: Context for cancellation.
//   - path: Corpus file (JSON, text or CBOR).
//
// Returns:
//   - The result matrix, or an error wrapping ErrCorpus if the corpus could
//     not be loaded.
func (r *Runner) Run(ctx context.Context, path string) (*ResultMatrix, error) {
	corpus, err := r.parser.ParseCorpus(path)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to load corpus")
	}
	return r.RunCorpus(ctx, corpus)
}

// RunCorpus evaluates an in-memory corpus. Every cell is evaluated, even
// after a verifier fails on an earlier vector; a verifier panic or error
// becomes an Error cell. Only cancellation of ctx aborts the run.
func (r *Runner) RunCorpus(ctx context.Context, corpus *Corpus) (*ResultMatrix, error) {
	if len(r.verifiers) == 0 {
		return nil, ErrNoVerifiers
	}

	m := &ResultMatrix{
		RunID:       uuid.New(),
		Source:      corpus.Source,
		Fingerprint: corpus.FingerprintHex(),
		Vectors:     corpus.Len(),
		Cells:       make([][]Cell, len(r.verifiers)),
		StartedAt:   time.Now(),
	}
	for i, v := range r.verifiers {
		m.Verifiers = append(m.Verifiers, v.Name())
		m.Cells[i] = make([]Cell, corpus.Len())
	}

	logger := r.logger.With("run_id", m.RunID.String())
	logger.Info("starting run",
		"source", corpus.Source,
		"fingerprint", m.Fingerprint,
		"vectors", corpus.Len(),
		"verifiers", len(r.verifiers),
		"workers", r.workers)

	eval := func(i, j int) {
		v := r.verifiers[i]
		cell := r.evaluate(v, corpus.Vectors[j])
		m.Cells[i][j] = cell
		if cell.Outcome == Error {
			logger.Warn("verifier error", "verifier", v.Name(), "vector", j, "err", cell.Err)
		} else {
			logger.Debug("cell", "verifier", v.Name(), "vector", j, "outcome", cell.Outcome.String())
		}
	}

	if r.workers <= 1 {
		for i := range r.verifiers {
			for j := range corpus.Vectors {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
				eval(i, j)
			}
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(r.workers)
	schedule:
		for i := range r.verifiers {
			for j := range corpus.Vectors {
				if gctx.Err() != nil {
					break schedule
				}
				i, j := i, j
				g.Go(func() error {
					eval(i, j)
					return nil
				})
			}
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	m.Elapsed = time.Since(m.StartedAt)
	logger.Info("run finished",
		"elapsed", m.Elapsed,
		"disagreements", len(m.Disagreements()))
	return m, nil
}

func (r *Runner) evaluate(v Verifier, tv TestVector) (cell Cell) {
	defer func() {
		if p := recover(); p != nil {
			cell = Cell{Outcome: Error, Err: errors.Errorf("verifier panicked: %v", p)}
		}
	}()

	ok, err := v.Verify(tv.PublicKey, tv.Message, tv.Signature)
	if err != nil {
		return Cell{Outcome: Error, Err: err}
	}
	if ok {
		return Cell{Outcome: Accept}
	}
	cell = Cell{Outcome: Reject}
	if ex, isExplainer := v.(Explainer); r.explain && isExplainer {
		cell.Reason = ex.Explain(tv.PublicKey, tv.Message, tv.Signature)
	}
	return cell
}
