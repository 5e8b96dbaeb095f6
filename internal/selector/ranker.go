// Package selector ranks scored strategies into a final decision. The
// ranker is a small state machine (Idle → HardStopCheck → Scoring → Ranking
// → Decided) evaluated fresh per call; it holds no mutable state between
// evaluations and is safe for concurrent use.
package selector

import (
	"errors"
	"fmt"
	"sort"

	"optioneer/internal/config"
	"optioneer/internal/gates"
	"optioneer/internal/market"
	"optioneer/internal/strategy"
)

// Mode selects automatic ranking or a caller-forced strategy.
type Mode string

const (
	ModeAuto   Mode = "auto"
	ModeManual Mode = "manual"
)

// Outcome is the terminal decision variant.
type Outcome string

const (
	OutcomeAutoWinner  Outcome = "auto_winner"
	OutcomeNoViable    Outcome = "no_viable_strategy"
	OutcomeHardStopped Outcome = "hard_stopped"
	OutcomeForced      Outcome = "forced_result"
)

// Phase is one state of the ranking pass, kept in the decision trace for
// transparency.
type Phase string

const (
	PhaseIdle          Phase = "idle"
	PhaseHardStopCheck Phase = "hard_stop_check"
	PhaseScoring       Phase = "scoring"
	PhaseRanking       Phase = "ranking"
	PhaseDecided       Phase = "decided"
)

// ConfidenceTier annotates forced results.
type ConfidenceTier string

const (
	ConfidenceHigh     ConfidenceTier = "high"
	ConfidenceModerate ConfidenceTier = "moderate"
	ConfidenceLow      ConfidenceTier = "low"
)

// ErrUnknownStrategy is returned for a forced identifier not in the
// registry. This is caller misuse and the one condition that fails loudly.
var ErrUnknownStrategy = errors.New("unknown strategy")

// Decision is the engine's terminal output. Exactly one outcome is set; the
// full sorted table is retained wherever scoring ran.
type Decision struct {
	Outcome  Outcome          `json:"outcome"`
	Symbol   string           `json:"symbol"`
	Strategy strategy.ID      `json:"strategy,omitempty"`
	Score    float64          `json:"score,omitempty"`
	Table    []strategy.Score `json:"table,omitempty"`

	// HardStops carries the universal stop identifiers for OutcomeHardStopped.
	HardStops []string `json:"hard_stops,omitempty"`

	// BestScore is the top score when nothing met its threshold.
	BestScore float64 `json:"best_score,omitempty"`

	// Manual-mode annotations.
	Warnings    []string        `json:"warnings,omitempty"`
	Confidence  ConfidenceTier  `json:"confidence,omitempty"`
	Alternative *strategy.Score `json:"alternative,omitempty"`

	Trace []Phase `json:"trace,omitempty"`
}

// Ranker orchestrates hard-stop checking, scoring, and ranking over a
// read-only registry.
type Ranker struct {
	reg *strategy.Registry
	cfg *config.Config
}

// New builds a ranker over the registry.
func New(reg *strategy.Registry, cfg *config.Config) *Ranker {
	return &Ranker{reg: reg, cfg: cfg}
}

// Run produces the decision for one classified report and its universal
// hard-stop verdict. Manual mode requires a known forced identifier;
// universal hard stops block even a forced strategy.
func (r *Ranker) Run(rep *market.Report, uv gates.UniversalResult, mode Mode, forced strategy.ID) (*Decision, error) {
	trace := []Phase{PhaseIdle, PhaseHardStopCheck}

	var forcedProfile *strategy.Profile
	if mode == ModeManual {
		p, ok := r.reg.Lookup(forced)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, forced)
		}
		forcedProfile = p
	}

	if stopped := r.hardStopped(uv, mode, forcedProfile); stopped {
		return &Decision{
			Outcome:   OutcomeHardStopped,
			Symbol:    rep.Symbol,
			HardStops: uv.Reasons,
			Trace:     append(trace, PhaseDecided),
		}, nil
	}

	trace = append(trace, PhaseScoring)
	table := r.scoreAll(rep, uv)

	trace = append(trace, PhaseRanking)
	r.sortTable(table)

	trace = append(trace, PhaseDecided)
	if mode == ModeManual {
		return r.forcedDecision(rep, table, forcedProfile, trace), nil
	}
	return r.autoDecision(rep, table, trace), nil
}

// hardStopped decides whether the evaluation terminates before scoring.
// Fatal stops always terminate. Event stops terminate unless some strategy
// (in auto mode) or the forced strategy (in manual mode) is exempt.
func (r *Ranker) hardStopped(uv gates.UniversalResult, mode Mode, forcedProfile *strategy.Profile) bool {
	if uv.Clear() {
		return false
	}
	if uv.Fatal() {
		return true
	}
	if mode == ModeManual {
		return !uv.Exempt(forcedProfile)
	}
	for _, p := range r.reg.Profiles() {
		if uv.Exempt(p) {
			return false
		}
	}
	return true
}

// scoreAll scores every registered family. A non-exempt family under an
// event stop scores 0 with the stop reasons; a strategy-specific block
// scores 0 with its reason; a scorer panic is isolated to that family.
func (r *Ranker) scoreAll(rep *market.Report, uv gates.UniversalResult) []strategy.Score {
	table := make([]strategy.Score, 0, len(r.reg.Profiles()))
	for _, p := range r.reg.Profiles() {
		if !uv.Exempt(p) {
			table = append(table, strategy.Score{
				Strategy: p.ID,
				Value:    0,
				Reasons:  append([]string{"blocked by universal hard stop"}, uv.Reasons...),
			})
			continue
		}

		verdict := gates.ForStrategy(rep, p, r.cfg)
		switch {
		case verdict.Blocked:
			table = append(table, strategy.Score{
				Strategy: p.ID,
				Value:    0,
				Reasons:  []string{verdict.Reason},
			})
		case verdict.Informational:
			table = append(table, strategy.Score{
				Strategy:      p.ID,
				Value:         verdict.Score,
				Reasons:       []string{verdict.Reason},
				Informational: true,
			})
		default:
			table = append(table, r.safeScore(p, rep))
		}
	}
	return table
}

// safeScore isolates a panicking scorer so one broken family cannot abort
// the evaluation of the others.
func (r *Ranker) safeScore(p *strategy.Profile, rep *market.Report) (s strategy.Score) {
	defer func() {
		if rec := recover(); rec != nil {
			s = strategy.Score{
				Strategy: p.ID,
				Value:    0,
				Reasons:  []string{fmt.Sprintf("scorer error: %v", rec)},
			}
		}
	}()
	return r.reg.Score(p, rep)
}

// sortTable orders descending by score, breaking ties by the registry's
// fixed priority ordering, never by input order.
func (r *Ranker) sortTable(table []strategy.Score) {
	sort.Slice(table, func(i, j int) bool {
		if table[i].Value != table[j].Value {
			return table[i].Value > table[j].Value
		}
		return r.reg.Priority(table[i].Strategy) < r.reg.Priority(table[j].Strategy)
	})
}

func (r *Ranker) autoDecision(rep *market.Report, table []strategy.Score, trace []Phase) *Decision {
	for _, s := range table {
		if s.Viable && !s.Informational {
			return &Decision{
				Outcome:  OutcomeAutoWinner,
				Symbol:   rep.Symbol,
				Strategy: s.Strategy,
				Score:    s.Value,
				Table:    table,
				Trace:    trace,
			}
		}
	}

	best := 0.0
	if len(table) > 0 {
		best = table[0].Value
	}
	return &Decision{
		Outcome:   OutcomeNoViable,
		Symbol:    rep.Symbol,
		Table:     table,
		BestScore: best,
		Trace:     trace,
	}
}

// forcedDecision returns the requested strategy regardless of threshold,
// annotated with a confidence tier and, when it scored below threshold, the
// higher-scoring alternative.
func (r *Ranker) forcedDecision(rep *market.Report, table []strategy.Score, p *strategy.Profile, trace []Phase) *Decision {
	var forcedScore strategy.Score
	for _, s := range table {
		if s.Strategy == p.ID {
			forcedScore = s
			break
		}
	}

	dec := &Decision{
		Outcome:    OutcomeForced,
		Symbol:     rep.Symbol,
		Strategy:   p.ID,
		Score:      forcedScore.Value,
		Table:      table,
		Confidence: confidenceTier(forcedScore.Value, p.MinViable),
		Trace:      trace,
	}

	if forcedScore.Value < p.MinViable {
		dec.Warnings = append(dec.Warnings,
			fmt.Sprintf("score %.1f below %s minimum %.1f", forcedScore.Value, p.ID, p.MinViable))
		for i := range table {
			s := table[i]
			if s.Strategy != p.ID && s.Viable && !s.Informational {
				dec.Alternative = &s
				dec.Warnings = append(dec.Warnings,
					fmt.Sprintf("consider %s (%.1f)", s.Strategy, s.Value))
				break
			}
		}
	}
	return dec
}

func confidenceTier(score, minViable float64) ConfidenceTier {
	switch {
	case score >= 70:
		return ConfidenceHigh
	case score >= minViable:
		return ConfidenceModerate
	default:
		return ConfidenceLow
	}
}
