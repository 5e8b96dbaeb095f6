// Package engine wires the decision pipeline end to end: raw inputs →
// report → classification → hard stops → scoring → ranked decision. One
// Evaluate call is a single synchronous pass with zero I/O; the caller
// supplies the evaluation time so identical inputs always produce identical
// decisions. Engines are safe for concurrent use across symbols.
package engine

import (
	"github.com/rs/zerolog"

	"optioneer/internal/config"
	"optioneer/internal/gates"
	"optioneer/internal/market"
	"optioneer/internal/selector"
	"optioneer/internal/strategy"
	"optioneer/internal/telemetry"
)

// Engine evaluates market conditions into strategy decisions.
type Engine struct {
	cfg     *config.Config
	reg     *strategy.Registry
	ranker  *selector.Ranker
	custom  []market.CustomRegime
	log     zerolog.Logger
	metrics *telemetry.Metrics
}

// Option customizes engine construction.
type Option func(*Engine)

// WithLogger attaches a structured logger for evaluation events.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithMetrics attaches Prometheus counters.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithRegistry overrides the default strategy registry.
func WithRegistry(reg *strategy.Registry) Option {
	return func(e *Engine) { e.reg = reg }
}

// WithCustomRegimes registers extra regime rules between high_vol and range
// in the classification priority chain.
func WithCustomRegimes(rules ...market.CustomRegime) Option {
	return func(e *Engine) { e.custom = rules }
}

// New builds an engine over the configuration.
func New(cfg *config.Config, opts ...Option) *Engine {
	e := &Engine{
		cfg: cfg,
		log: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.reg == nil {
		e.reg = strategy.Default(cfg.Scoring)
	}
	e.ranker = selector.New(e.reg, cfg)
	return e
}

// Evaluate runs the full pipeline for one symbol. The returned report is
// the classified snapshot with the hard-stop reasons attached; callers may
// render it independently of the decision. The only error is an unknown
// forced strategy in manual mode.
func (e *Engine) Evaluate(in market.Inputs, mode selector.Mode, forced strategy.ID) (*selector.Decision, *market.Report, error) {
	rep := market.Classify(market.BuildRaw(in, e.cfg), e.custom)

	uv := gates.Universal(&rep, e.cfg)
	rep.NoTradeReasons = uv.Reasons

	decision, err := e.ranker.Run(&rep, uv, mode, forced)
	if err != nil {
		e.log.Error().Err(err).Str("symbol", in.Symbol).Str("mode", string(mode)).Msg("evaluation rejected")
		return nil, nil, err
	}

	e.record(&rep, decision)
	return decision, &rep, nil
}

func (e *Engine) record(rep *market.Report, dec *selector.Decision) {
	e.metrics.RecordEvaluation(string(dec.Outcome))

	event := e.log.Info().
		Str("symbol", rep.Symbol).
		Str("regime", string(rep.Regime)).
		Float64("stress", rep.StressLevel).
		Float64("iv_rank", rep.IVRank).
		Str("outcome", string(dec.Outcome))

	switch dec.Outcome {
	case selector.OutcomeHardStopped:
		e.metrics.RecordHardStops(dec.HardStops)
		event.Strs("hard_stops", dec.HardStops).Msg("evaluation hard-stopped")
	case selector.OutcomeAutoWinner:
		e.metrics.RecordWinner(string(dec.Strategy))
		event.Str("strategy", string(dec.Strategy)).Float64("score", dec.Score).Msg("strategy selected")
	case selector.OutcomeNoViable:
		event.Float64("best_score", dec.BestScore).Msg("no viable strategy")
	case selector.OutcomeForced:
		event.Str("strategy", string(dec.Strategy)).Float64("score", dec.Score).
			Str("confidence", string(dec.Confidence)).Msg("forced strategy evaluated")
	}
}
