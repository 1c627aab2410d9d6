package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/mahdiidarabi/eddsa-speccheck/internal/generator"
	"github.com/mahdiidarabi/eddsa-speccheck/internal/log"
	"github.com/mahdiidarabi/eddsa-speccheck/pkg/speccheck"
)

var (
	outDirFlag = &cli.StringFlag{
		Name:     "out",
		Usage:    "directory the corpus files are written to",
		Required: true,
	}
	outFormatFlag = &cli.StringFlag{
		Name:  "format",
		Usage: "comma separated corpus formats to write (json, txt, cbor)",
		Value: "json",
	}
	maxAttemptsFlag = &cli.IntFlag{
		Name:  "max-attempts",
		Usage: "message grinding budget per case",
		Value: generator.DefaultMaxAttempts,
	}
)

var commandGenerate = &cli.Command{
	Name:  "generate",
	Usage: "generate the edge-case corpus",
	Description: `
Generate the deterministic edge-case corpus: small-order and mixed-order keys and
nonces, S >= l, and non-canonical R and A encodings. One file named cases.<ext>
is written per requested format, plus cases.md describing every vector.
`,
	Flags: []cli.Flag{
		outDirFlag,
		outFormatFlag,
		maxAttemptsFlag,
	},
	Action: func(ctx *cli.Context) error {
		formats, err := parseFormats(ctx.String(outFormatFlag.Name))
		if err != nil {
			return err
		}

		cases, err := generator.New().
			WithMaxAttempts(ctx.Int(maxAttemptsFlag.Name)).
			Generate()
		if err != nil {
			return err
		}

		dir := ctx.String(outDirFlag.Name)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(err, "failed to create output directory")
		}

		corpus := speccheck.NewCorpus("generated")
		for _, c := range cases {
			corpus.Vectors = append(corpus.Vectors, speccheck.TestVector{
				Message:   c.Message,
				PublicKey: c.PublicKey,
				Signature: c.Signature,
			})
		}

		logger := log.Default().Module("generate")
		for _, ext := range formats {
			path := filepath.Join(dir, "cases."+ext)
			if err := speccheck.WriteCorpusFile(path, corpus); err != nil {
				return err
			}
			logger.Info("wrote corpus", "path", path, "vectors", corpus.Len())
		}
		if err := writeDescriptions(filepath.Join(dir, "cases.md"), cases); err != nil {
			return err
		}

		fmt.Fprintf(ctx.App.Writer, "%d vectors, fingerprint %s\n", corpus.Len(), corpus.FingerprintHex())
		return nil
	},
}

func parseFormats(s string) ([]string, error) {
	var out []string
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		switch f {
		case "json", "txt", "cbor":
			out = append(out, f)
		case "":
		default:
			return nil, errors.Errorf("unknown corpus format %q", f)
		}
	}
	if len(out) == 0 {
		return nil, errors.New("no corpus format given")
	}
	return out, nil
}

func writeDescriptions(path string, cases []generator.Case) error {
	var b strings.Builder
	b.WriteString("| Case | Description |\n|---|---|\n")
	for _, c := range cases {
		fmt.Fprintf(&b, "| %d | %s |\n", c.Index, c.Description)
	}
	return errors.Wrap(os.WriteFile(path, []byte(b.String()), 0o644), "failed to write case descriptions")
}
