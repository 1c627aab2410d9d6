package main

import (
	"os"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/mahdiidarabi/eddsa-speccheck/internal/report"
	"github.com/mahdiidarabi/eddsa-speccheck/pkg/speccheck"
)

var (
	corpusFlag = &cli.StringFlag{
		Name:    "corpus",
		Aliases: []string{"c"},
		Usage:   "corpus file (.json, .txt or .cbor)",
	}
	verifierFlag = &cli.StringSliceFlag{
		Name:  "verifier",
		Usage: "verifier to run, repeatable (default: all registered verifiers)",
	}
	workersFlag = &cli.IntFlag{
		Name:  "workers",
		Usage: "number of cells evaluated concurrently",
		Value: 1,
	}
	formatFlag = &cli.StringFlag{
		Name:  "format",
		Usage: "report format (table, markdown, json)",
		Value: speccheck.FormatTable,
	}
	colorFlag = &cli.StringFlag{
		Name:  "color",
		Usage: "colorize the table (auto, always, never)",
		Value: speccheck.ColorAuto,
	}
	configFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "TOML config file; command line flags take precedence",
	}
	explainFlag = &cli.BoolFlag{
		Name:  "explain",
		Usage: "print why the reference verifiers rejected each vector",
	}
	failOnDisagreementFlag = &cli.BoolFlag{
		Name:  "fail-on-disagreement",
		Usage: "exit with status 2 when verifiers disagree on any vector",
	}
)

var commandRun = &cli.Command{
	Name:      "run",
	Usage:     "run verifiers over a corpus and print the result matrix",
	ArgsUsage: "[ <corpus> ]",
	Description: `
Run every selected verifier on every vector of the corpus and print one row per
verifier and one column per vector: V for accept, X for reject, ! when the
verifier failed to produce a verdict.

The corpus may be given with --corpus, as the first argument, or in the config
file.
`,
	Flags: []cli.Flag{
		corpusFlag,
		verifierFlag,
		workersFlag,
		formatFlag,
		colorFlag,
		configFlag,
		explainFlag,
		failOnDisagreementFlag,
	},
	Action: func(ctx *cli.Context) error {
		cfg, err := loadRunConfig(ctx)
		if err != nil {
			return err
		}

		runner, err := cfg.NewRunner(speccheck.DefaultRegistry())
		if err != nil {
			return err
		}
		m, err := runner.Run(ctx.Context, cfg.CorpusPath)
		if err != nil {
			return err
		}

		out := ctx.App.Writer
		if out == os.Stdout {
			out = colorable.NewColorableStdout()
		}
		opts := report.Options{
			Format:  cfg.Format,
			Color:   useColor(cfg.Color),
			Explain: cfg.Explain,
		}
		if err := report.Write(out, m, opts); err != nil {
			return err
		}

		if n := len(m.Disagreements()); n > 0 && ctx.Bool(failOnDisagreementFlag.Name) {
			return cli.Exit(errors.Errorf("verifiers disagree on %d vectors", n), 2)
		}
		return nil
	},
}

// loadRunConfig starts from the config file, if any, and applies the flags
// that were set explicitly.
func loadRunConfig(ctx *cli.Context) (speccheck.Config, error) {
	cfg := speccheck.DefaultConfig()
	if path := ctx.String(configFlag.Name); path != "" {
		var err error
		if cfg, err = speccheck.LoadConfig(path); err != nil {
			return cfg, err
		}
	}

	if ctx.IsSet(corpusFlag.Name) {
		cfg.CorpusPath = ctx.String(corpusFlag.Name)
	} else if ctx.Args().Present() {
		cfg.CorpusPath = ctx.Args().First()
	}
	if ctx.IsSet(verifierFlag.Name) {
		cfg.Verifiers = ctx.StringSlice(verifierFlag.Name)
	}
	if ctx.IsSet(workersFlag.Name) {
		cfg.Workers = ctx.Int(workersFlag.Name)
	}
	if ctx.IsSet(formatFlag.Name) {
		cfg.Format = ctx.String(formatFlag.Name)
	}
	if ctx.IsSet(colorFlag.Name) {
		cfg.Color = ctx.String(colorFlag.Name)
	}
	if ctx.IsSet(explainFlag.Name) {
		cfg.Explain = ctx.Bool(explainFlag.Name)
	}

	if cfg.CorpusPath == "" {
		return cfg, errors.New("no corpus given, use --corpus or set corpus in the config file")
	}
	return cfg, cfg.Validate()
}

func useColor(mode string) bool {
	switch mode {
	case speccheck.ColorAlways:
		return true
	case speccheck.ColorNever:
		return false
	default:
		fd := os.Stdout.Fd()
		return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	}
}
