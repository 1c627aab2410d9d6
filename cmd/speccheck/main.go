package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/mahdiidarabi/eddsa-speccheck/internal/log"
)

// Git SHA1 commit hash of the release (set via linker flags)
var gitCommit = ""

var app *cli.App

func init() {
	app = &cli.App{
		Name:    "speccheck",
		Usage:   "compare Ed25519 verifiers on edge-case test vectors",
		Version: version(),
		Flags: []cli.Flag{
			verbosityFlag,
			logJSONFlag,
		},
		Before: setupLogging,
	}
	app.Commands = []*cli.Command{
		commandRun,
		commandGenerate,
		commandVerifiers,
	}
}

// Commonly used command line flags.
var (
	verbosityFlag = &cli.StringFlag{
		Name:  "verbosity",
		Usage: "log level (debug, info, warn, error)",
		Value: "warn",
	}
	logJSONFlag = &cli.BoolFlag{
		Name:  "log-json",
		Usage: "write logs as JSON even on a terminal",
	}
)

func version() string {
	if gitCommit == "" {
		return "dev"
	}
	if len(gitCommit) > 8 {
		return "dev-" + gitCommit[:8]
	}
	return "dev-" + gitCommit
}

func setupLogging(ctx *cli.Context) error {
	log.SetDefault(log.NewWithOptions(log.Options{
		Level: log.LevelFromString(ctx.String(verbosityFlag.Name)),
		JSON:  ctx.Bool(logJSONFlag.Name),
	}))
	return nil
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
