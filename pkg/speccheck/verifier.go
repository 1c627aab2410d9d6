package speccheck

import (
	"sync"

	"github.com/pkg/errors"
)

// Verifier is one Ed25519 verification implementation under test.
type Verifier interface {
	// Name identifies the verifier in reports. Names are unique within a
	// Registry.
	Name() string

	// Verify reports whether sig is a valid signature of msg under pub. An
	// error means the implementation could not produce a verdict and is
	// recorded as an Error outcome, distinct from rejection.
	Verify(pub, msg, sig []byte) (bool, error)
}

// Explainer is implemented by verifiers that can say why they rejected a
// vector.
type Explainer interface {
	// Explain returns nil on acceptance and the rejection reason otherwise.
	Explain(pub, msg, sig []byte) error
}

type funcVerifier struct {
	name string
	fn   func(pub, msg, sig []byte) bool
}

func (f *funcVerifier) Name() string { return f.name }

func (f *funcVerifier) Verify(pub, msg, sig []byte) (bool, error) {
	return f.fn(pub, msg, sig), nil
}

// Adapt turns a plain verification function into a Verifier.
func Adapt(name string, fn func(pub, msg, sig []byte) bool) Verifier {
	return &funcVerifier{name: name, fn: fn}
}

var (
	// ErrDuplicateVerifier is returned when registering a name twice.
	ErrDuplicateVerifier = errors.New("speccheck: verifier already registered")
	// ErrUnknownVerifier is returned by Lookup for names not registered.
	ErrUnknownVerifier = errors.New("speccheck: unknown verifier")
)

// Registry holds named verifiers in registration order. It is safe for
// concurrent use.
type Registry struct {
	mu     sync.RWMutex
	order  []string
	byName map[string]Verifier
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Verifier)}
}

// Register adds v. It fails if a verifier with the same name exists.
func (r *Registry) Register(v Verifier) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := v.Name()
	if name == "" {
		return errors.New("speccheck: verifier name must not be empty")
	}
	if _, ok := r.byName[name]; ok {
		return errors.Wrap(ErrDuplicateVerifier, name)
	}
	r.order = append(r.order, name)
	r.byName[name] = v
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(vs ...Verifier) *Registry {
	for _, v := range vs {
		if err := r.Register(v); err != nil {
			panic(err)
		}
	}
	return r
}

// Lookup returns the named verifiers in the order given. With no names it
// returns every verifier in registration order.
func (r *Registry) Lookup(names ...string) ([]Verifier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(names) == 0 {
		names = r.order
	}
	out := make([]Verifier, 0, len(names))
	for _, name := range names {
		v, ok := r.byName[name]
		if !ok {
			return nil, errors.Wrap(ErrUnknownVerifier, name)
		}
		out = append(out, v)
	}
	return out, nil
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}
