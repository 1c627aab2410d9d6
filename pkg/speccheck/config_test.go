package speccheck

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "speccheck.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
corpus = "fixtures/cases.json"
verifiers = ["reference", "zip215"]
workers = 4
explain = true
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.CorpusPath != "fixtures/cases.json" {
		t.Errorf("Unexpected corpus %q", cfg.CorpusPath)
	}
	if len(cfg.Verifiers) != 2 || cfg.Verifiers[1] != "zip215" {
		t.Errorf("Unexpected verifiers %v", cfg.Verifiers)
	}
	if cfg.Workers != 4 || !cfg.Explain {
		t.Errorf("Unexpected workers/explain: %d %v", cfg.Workers, cfg.Explain)
	}
	if cfg.Format != FormatTable || cfg.Color != ColorAuto {
		t.Errorf("Missing keys should keep defaults, got format %q color %q", cfg.Format, cfg.Color)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	cases := map[string]string{
		"bad format":  `format = "yaml"`,
		"bad color":   `color = "sometimes"`,
		"bad workers": `workers = 0`,
		"bad syntax":  `workers = `,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadConfig(writeConfig(t, body)); err == nil {
				t.Error("Expected error")
			}
		})
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("Expected error for a missing file")
	}
}

func TestConfig_NewRunner(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Verifiers = []string{"zip215", ConsensusName}

	runner, err := cfg.NewRunner(DefaultRegistry())
	if err != nil {
		t.Fatalf("Failed to build runner: %v", err)
	}
	m, err := runner.WithLogger(quietRunner().logger).RunCorpus(context.Background(), loadCases(t))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(m.Verifiers) != 2 || m.Verifiers[0] != "zip215" {
		t.Errorf("Unexpected rows %v", m.Verifiers)
	}
	if len(m.Disagreements()) != 0 {
		t.Errorf("zip215 and ed25519consensus should agree, disagreements at %v", m.Disagreements())
	}

	cfg.Verifiers = []string{"nope"}
	if _, err := cfg.NewRunner(DefaultRegistry()); !errors.Is(err, ErrUnknownVerifier) {
		t.Errorf("Expected ErrUnknownVerifier, got %v", err)
	}
}
