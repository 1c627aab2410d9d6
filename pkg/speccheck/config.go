package speccheck

import (
	"os"

	"github.com/naoina/toml"
	"github.com/pkg/errors"
)

// Report formats understood by the CLI.
const (
	FormatTable    = "table"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
)

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config configures a conformance run.
type Config struct {
	// CorpusPath is the corpus file to load.
	CorpusPath string `toml:"corpus"`

	// Verifiers selects registry entries by name, in row order. Empty means
	// every registered verifier.
	Verifiers []string `toml:"verifiers"`

	// Workers controls how many cells are evaluated concurrently.
	Workers int `toml:"workers"`

	// Format is one of FormatTable, FormatMarkdown or FormatJSON.
	Format string `toml:"format"`

	// Color is one of ColorAuto, ColorAlways or ColorNever.
	Color string `toml:"color"`

	// Explain records rejection reasons from the reference verifiers.
	Explain bool `toml:"explain"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Workers: 1,
		Format:  FormatTable,
		Color:   ColorAuto,
	}
}

// LoadConfig reads a TOML file on top of DefaultConfig. Keys missing from the
// file keep their default values.
//
// Example:
//
//	corpus = "fixtures/cases.json"
//	verifiers = ["reference", "zip215", "go-crypto-ed25519"]
//	workers = 4
//	format = "markdown"
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "failed to read config")
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "failed to parse config %s", path)
	}
	return cfg, cfg.Validate()
}

// Validate checks field values.
func (c Config) Validate() error {
	switch c.Format {
	case FormatTable, FormatMarkdown, FormatJSON:
	default:
		return errors.Errorf("unknown report format %q", c.Format)
	}
	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return errors.Errorf("unknown color mode %q", c.Color)
	}
	if c.Workers < 1 {
		return errors.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	return nil
}

// NewRunner builds a runner for c, taking verifiers from reg.
func (c Config) NewRunner(reg *Registry) (*Runner, error) {
	vs, err := reg.Lookup(c.Verifiers...)
	if err != nil {
		return nil, err
	}
	return NewRunner().
		WithVerifiers(vs...).
		WithWorkers(c.Workers).
		WithExplain(c.Explain), nil
}
