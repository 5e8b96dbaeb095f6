package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"optioneer/internal/config"
	"optioneer/internal/engine"
	"optioneer/internal/market"
	"optioneer/internal/selector"
	"optioneer/internal/strategy"
)

func newEvaluateCmd() *cobra.Command {
	var (
		inputPath  string
		configPath string
		mode       string
		forced     string
		nowFlag    string
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate a market snapshot into a strategy decision",
		Long: `Evaluate reads a snapshot fixture (bars, quote, market metrics, risk
events) from a JSON file, runs the full decision pipeline offline, and
renders the ranked strategy table with the decision and its reasons.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvaluate(inputPath, configPath, mode, forced, nowFlag, asJSON)
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "snapshot JSON file (required)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "engine config YAML (defaults compiled in)")
	cmd.Flags().StringVarP(&mode, "mode", "m", "auto", "selection mode: auto or manual")
	cmd.Flags().StringVarP(&forced, "strategy", "s", "", "forced strategy id (manual mode)")
	cmd.Flags().StringVar(&nowFlag, "now", "", "evaluation time, RFC3339 (default: wall clock)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit the decision as JSON")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func runEvaluate(inputPath, configPath, mode, forced, nowFlag string, asJSON bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	snap, err := loadSnapshot(inputPath)
	if err != nil {
		return err
	}

	now := time.Now()
	if nowFlag != "" {
		now, err = time.Parse(time.RFC3339, nowFlag)
		if err != nil {
			return fmt.Errorf("invalid --now %q: %w", nowFlag, err)
		}
	}

	selMode := selector.ModeAuto
	if mode == "manual" {
		selMode = selector.ModeManual
	}

	eng := engine.New(cfg, engine.WithLogger(log.Logger))
	decision, report, err := eng.Evaluate(snap.inputs(now), selMode, strategy.ID(forced))
	if err != nil {
		return err
	}

	if asJSON {
		out := struct {
			Decision *selector.Decision `json:"decision"`
			Report   *market.Report     `json:"report"`
		}{decision, report}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Print(renderDecision(decision, report))
	return nil
}

func renderDecision(dec *selector.Decision, rep *market.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s: regime %s (%.0f%%), stress %.0f, IV rank %.0f, momentum %s\n",
		rep.Symbol, rep.Regime, rep.RegimeConfidence, rep.StressLevel, rep.IVRank, rep.Momentum)

	switch dec.Outcome {
	case selector.OutcomeHardStopped:
		fmt.Fprintf(&b, "HARD STOPPED: %s\n", strings.Join(dec.HardStops, ", "))
		return b.String()
	case selector.OutcomeAutoWinner:
		fmt.Fprintf(&b, "SELECTED: %s (%.1f)\n", dec.Strategy, dec.Score)
	case selector.OutcomeNoViable:
		fmt.Fprintf(&b, "NO VIABLE STRATEGY (best %.1f)\n", dec.BestScore)
	case selector.OutcomeForced:
		fmt.Fprintf(&b, "FORCED: %s (%.1f, confidence %s)\n", dec.Strategy, dec.Score, dec.Confidence)
		for _, w := range dec.Warnings {
			fmt.Fprintf(&b, "  warning: %s\n", w)
		}
	}

	fmt.Fprintf(&b, "\n%-20s %7s %s\n", "strategy", "score", "viable")
	for _, s := range dec.Table {
		viable := " "
		if s.Viable {
			viable = "yes"
		} else if s.Informational {
			viable = "info"
		}
		fmt.Fprintf(&b, "%-20s %7.1f %s\n", s.Strategy, s.Value, viable)
	}

	if len(dec.Table) > 0 {
		fmt.Fprintf(&b, "\ntop pick reasoning:\n")
		for _, r := range dec.Table[0].Reasons {
			fmt.Fprintf(&b, "  - %s\n", r)
		}
	}
	return b.String()
}
