package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const (
	appName = "optioneer"
	version = "v1.2.0"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	rootCmd := &cobra.Command{
		Use:     appName,
		Short:   "Options strategy selection engine",
		Version: version,
		Long: `Optioneer decides which options strategy, if any, current market
conditions justify for an underlying - and explains why.

The engine is a pure, deterministic rule system: indicators, regime and
momentum classification, hard-stop validation, and per-family scoring fuse
into a single ranked decision. Stale inputs block all output.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newEvaluateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
