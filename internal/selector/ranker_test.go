package selector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"optioneer/internal/config"
	"optioneer/internal/gates"
	"optioneer/internal/market"
	"optioneer/internal/strategy"
)

// trendReport is a healthy uptrend: bullish MACD, strong ADX, rich IV.
func trendReport() market.Report {
	raw := market.Report{
		Symbol:        "SPY",
		CurrentPrice:  105,
		DataOK:        true,
		BarCount:      40,
		RSI:           52,
		MACD:          market.SignalBullish,
		Bollinger:     market.BandMiddle,
		SMA20:         100,
		Support:       95,
		Resistance:    107,
		ADX:           28,
		TrendStrength: market.TrendStrong,
		IVRank:        55,
		HVIVRatio:     0.75,
		StressLevel:   42,
	}
	return market.Classify(raw, nil)
}

// calmReport is deliberately featureless so a profile with no polarity,
// bias, or hook scores exactly its base.
func calmReport() market.Report {
	return market.Report{
		Symbol:       "XYZ",
		CurrentPrice: 100,
		DataOK:       true,
		BarCount:     40,
		RSI:          50,
		MACD:         market.SignalNeutral,
		Bollinger:    market.BandMiddle,
		SMA20:        100,
		Regime:       market.RegimeRange,
		Momentum:     market.MomentumUnclear,
	}
}

func TestHardStopPrecedesScoring(t *testing.T) {
	cfg := config.Default()
	ranker := New(strategy.Default(cfg.Scoring), cfg)

	rep := trendReport()
	rep.Stale = true
	uv := gates.Universal(&rep, cfg)

	dec, err := ranker.Run(&rep, uv, ModeAuto, "")
	require.NoError(t, err)
	assert.Equal(t, OutcomeHardStopped, dec.Outcome)
	assert.Contains(t, dec.HardStops, gates.ReasonDataStale)
	assert.Empty(t, dec.Table, "no scores are computed after a hard stop")
	assert.NotContains(t, dec.Trace, PhaseScoring)
}

func TestHardStopBlocksForcedStrategy(t *testing.T) {
	cfg := config.Default()
	ranker := New(strategy.Default(cfg.Scoring), cfg)

	rep := trendReport()
	rep.DataOK = false
	rep.BarCount = 10
	uv := gates.Universal(&rep, cfg)

	dec, err := ranker.Run(&rep, uv, ModeManual, strategy.BullPutSpread)
	require.NoError(t, err)
	assert.Equal(t, OutcomeHardStopped, dec.Outcome)
	assert.Contains(t, dec.HardStops, gates.ReasonInsufficientHistory)
}

func TestViabilityThresholdBoundary(t *testing.T) {
	cfg := config.Default()
	rep := calmReport()
	uv := gates.Universal(&rep, cfg)

	edge := &strategy.Profile{ID: strategy.ID("edge"), Base: 35, MinViable: 35}
	dec, err := New(strategy.NewRegistry(cfg.Scoring, edge), cfg).Run(&rep, uv, ModeAuto, "")
	require.NoError(t, err)
	assert.Equal(t, OutcomeAutoWinner, dec.Outcome, "a score equal to the threshold is viable")
	assert.Equal(t, 35.0, dec.Score)

	under := &strategy.Profile{ID: strategy.ID("under"), Base: 34, MinViable: 35}
	dec, err = New(strategy.NewRegistry(cfg.Scoring, under), cfg).Run(&rep, uv, ModeAuto, "")
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoViable, dec.Outcome, "one point under the threshold is not")
	assert.Equal(t, 34.0, dec.BestScore)
	require.Len(t, dec.Table, 1)
}

func TestTieBreakIsRegistrationOrder(t *testing.T) {
	cfg := config.Default()
	rep := calmReport()
	uv := gates.Universal(&rep, cfg)

	zeta := &strategy.Profile{ID: strategy.ID("zeta"), Base: 50, MinViable: 35}
	alpha := &strategy.Profile{ID: strategy.ID("alpha"), Base: 50, MinViable: 35}
	ranker := New(strategy.NewRegistry(cfg.Scoring, zeta, alpha), cfg)

	first, err := ranker.Run(&rep, uv, ModeAuto, "")
	require.NoError(t, err)
	second, err := ranker.Run(&rep, uv, ModeAuto, "")
	require.NoError(t, err)

	assert.Equal(t, strategy.ID("zeta"), first.Strategy, "ties resolve by priority, not name or input order")
	assert.Equal(t, first, second)
}

func TestScorerPanicIsIsolated(t *testing.T) {
	cfg := config.Default()
	rep := calmReport()
	uv := gates.Universal(&rep, cfg)

	broken := &strategy.Profile{
		ID: strategy.ID("broken"), Base: 90, MinViable: 35,
		Hook: func(card *strategy.Scorecard, rep *market.Report) {
			panic("bad arithmetic")
		},
	}
	solid := &strategy.Profile{ID: strategy.ID("solid"), Base: 60, MinViable: 35}

	dec, err := New(strategy.NewRegistry(cfg.Scoring, broken, solid), cfg).Run(&rep, uv, ModeAuto, "")
	require.NoError(t, err)
	assert.Equal(t, OutcomeAutoWinner, dec.Outcome)
	assert.Equal(t, strategy.ID("solid"), dec.Strategy)

	require.Len(t, dec.Table, 2)
	failed := dec.Table[1]
	assert.Equal(t, strategy.ID("broken"), failed.Strategy)
	assert.Equal(t, 0.0, failed.Value)
	assert.Contains(t, failed.Reasons[0], "scorer error")
}

func TestEarningsWindowExemption(t *testing.T) {
	cfg := config.Default()
	ranker := New(strategy.Default(cfg.Scoring), cfg)

	rep := calmReport()
	rep.IVRank = 35
	rep.HVIVRatio = 1.3
	rep.ADX = 15
	date := rep.EvaluatedAt.AddDate(0, 0, 3)
	rep.Earnings = market.EventWindow{Date: &date, DaysUntil: 3, InWindow: true}
	uv := gates.Universal(&rep, cfg)
	require.True(t, uv.EarningsStop)

	dec, err := ranker.Run(&rep, uv, ModeAuto, "")
	require.NoError(t, err)
	assert.Equal(t, OutcomeAutoWinner, dec.Outcome)
	assert.Equal(t, strategy.EarningsStraddle, dec.Strategy)

	for _, s := range dec.Table {
		if s.Strategy == strategy.EarningsStraddle {
			continue
		}
		assert.Equal(t, 0.0, s.Value)
		assert.Contains(t, s.Reasons, "blocked by universal hard stop")
	}
}

func TestManualForcedBelowThreshold(t *testing.T) {
	cfg := config.Default()
	ranker := New(strategy.Default(cfg.Scoring), cfg)

	rep := trendReport()
	uv := gates.Universal(&rep, cfg)

	dec, err := ranker.Run(&rep, uv, ModeManual, strategy.BearCallSpread)
	require.NoError(t, err)
	assert.Equal(t, OutcomeForced, dec.Outcome)
	assert.Equal(t, strategy.BearCallSpread, dec.Strategy)
	assert.Less(t, dec.Score, 40.0)
	assert.Equal(t, ConfidenceLow, dec.Confidence)
	assert.NotEmpty(t, dec.Warnings, "a forced low score is returned, never silently")
	require.NotNil(t, dec.Alternative)
	assert.Equal(t, strategy.BullPutSpread, dec.Alternative.Strategy)
}

func TestManualForcedViable(t *testing.T) {
	cfg := config.Default()
	ranker := New(strategy.Default(cfg.Scoring), cfg)

	rep := trendReport()
	uv := gates.Universal(&rep, cfg)

	dec, err := ranker.Run(&rep, uv, ModeManual, strategy.BullPutSpread)
	require.NoError(t, err)
	assert.Equal(t, OutcomeForced, dec.Outcome)
	assert.Equal(t, ConfidenceHigh, dec.Confidence)
	assert.Empty(t, dec.Warnings)
	assert.Nil(t, dec.Alternative)
}

func TestManualUnknownStrategy(t *testing.T) {
	cfg := config.Default()
	ranker := New(strategy.Default(cfg.Scoring), cfg)

	rep := trendReport()
	uv := gates.Universal(&rep, cfg)

	dec, err := ranker.Run(&rep, uv, ModeManual, strategy.ID("wheel_of_fortune"))
	assert.Nil(t, dec)
	assert.ErrorIs(t, err, ErrUnknownStrategy)
}

func TestManualEventStopHonorsForcedExemption(t *testing.T) {
	cfg := config.Default()
	ranker := New(strategy.Default(cfg.Scoring), cfg)

	rep := calmReport()
	date := rep.EvaluatedAt.AddDate(0, 0, 2)
	rep.Earnings = market.EventWindow{Date: &date, DaysUntil: 2, InWindow: true}
	uv := gates.Universal(&rep, cfg)

	dec, err := ranker.Run(&rep, uv, ModeManual, strategy.IronCondor)
	require.NoError(t, err)
	assert.Equal(t, OutcomeHardStopped, dec.Outcome, "a forced non-exempt family stays blocked")

	dec, err = ranker.Run(&rep, uv, ModeManual, strategy.EarningsStraddle)
	require.NoError(t, err)
	assert.Equal(t, OutcomeForced, dec.Outcome)
}

func TestInformationalScoreNeverWins(t *testing.T) {
	cfg := config.Default()
	rep := calmReport()
	uv := gates.Universal(&rep, cfg)

	watch := &strategy.Profile{ID: strategy.ID("watch"), Base: 80, MinViable: 35, RequiresEquity: true}
	dec, err := New(strategy.NewRegistry(cfg.Scoring, watch), cfg).Run(&rep, uv, ModeAuto, "")
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoViable, dec.Outcome)
	require.Len(t, dec.Table, 1)
	assert.True(t, dec.Table[0].Informational)
	assert.Equal(t, cfg.Scoring.InformationalScore, dec.Table[0].Value)
}
