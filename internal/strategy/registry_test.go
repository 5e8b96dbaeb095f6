package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"optioneer/internal/config"
	"optioneer/internal/market"
)

// cleanUptrend is the reference scenario: mid RSI, bullish MACD, real trend,
// rich IV, calm stress.
func cleanUptrend() market.Report {
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
		HistoricalVol: 15,
		CurrentIV:     20,
		StressLevel:   42,
		RecentMovePct: 4,
	}
	return market.Classify(raw, nil)
}

func TestScenarioCleanUptrend(t *testing.T) {
	cfg := config.Default()
	reg := Default(cfg.Scoring)
	rep := cleanUptrend()
	require.Equal(t, market.RegimeTrend, rep.Regime)

	score := func(id ID) Score {
		p, ok := reg.Lookup(id)
		require.True(t, ok)
		return reg.Score(p, &rep)
	}

	bullPut := score(BullPutSpread)
	assert.Greater(t, bullPut.Value, 70.0, "bullish premium-selling thrives here")
	assert.True(t, bullPut.Viable)

	bearCall := score(BearCallSpread)
	assert.Less(t, bearCall.Value, 40.0, "bearish family fights the tape")

	bearPut := score(BearPutSpread)
	assert.Less(t, bearPut.Value, 40.0, "premium-buying pays rich IV against the trend")
}

func TestScoreReasonsExplainEveryAdjustment(t *testing.T) {
	cfg := config.Default()
	reg := Default(cfg.Scoring)
	rep := cleanUptrend()

	p, _ := reg.Lookup(BullPutSpread)
	score := reg.Score(p, &rep)

	require.NotEmpty(t, score.Reasons)
	assert.Contains(t, score.Reasons[0], "base score")
	// Every subsequent entry carries its signed delta.
	for _, r := range score.Reasons[1:] {
		assert.Regexp(t, `\([+-]\d+\)$`, r)
	}
}

func TestScoreClamping(t *testing.T) {
	cfg := config.Default()
	rep := cleanUptrend()

	boost := &Profile{
		ID: ID("maxed"), Base: 50, MinViable: 35,
		Hook: func(card *Scorecard, rep *market.Report) {
			card.Add(500, "absurd bonus")
		},
	}
	crush := &Profile{
		ID: ID("zeroed"), Base: 50, MinViable: 35,
		Hook: func(card *Scorecard, rep *market.Report) {
			card.Add(-500, "absurd penalty")
		},
	}
	reg := NewRegistry(cfg.Scoring, boost, crush)

	assert.Equal(t, 100.0, reg.Score(boost, &rep).Value)
	assert.Equal(t, 0.0, reg.Score(crush, &rep).Value)
}

func TestScoreDeterminism(t *testing.T) {
	cfg := config.Default()
	reg := Default(cfg.Scoring)
	rep := cleanUptrend()

	for _, p := range reg.Profiles() {
		a := reg.Score(p, &rep)
		b := reg.Score(p, &rep)
		assert.Equal(t, a, b, "%s must score identically on identical reports", p.ID)
	}
}

func TestScorersNeverMutateTheReport(t *testing.T) {
	cfg := config.Default()
	reg := Default(cfg.Scoring)
	rep := cleanUptrend()
	snapshot := rep

	for _, p := range reg.Profiles() {
		_ = reg.Score(p, &rep)
	}
	assert.Equal(t, snapshot, rep)
}

func TestEarningsStraddleNeedsCatalyst(t *testing.T) {
	cfg := config.Default()
	reg := Default(cfg.Scoring)

	rep := cleanUptrend()
	p, _ := reg.Lookup(EarningsStraddle)

	without := reg.Score(p, &rep)
	assert.False(t, without.Viable, "no catalyst, no trade")

	date := rep.EvaluatedAt.AddDate(0, 0, 3)
	rep.Earnings = market.EventWindow{Date: &date, DaysUntil: 3, InWindow: true}
	with := reg.Score(p, &rep)
	assert.Greater(t, with.Value, without.Value)
}

func TestRegistryOrderIsPriority(t *testing.T) {
	cfg := config.Default()
	reg := Default(cfg.Scoring)

	assert.Equal(t, 0, reg.Priority(CoveredCall))
	assert.Less(t, reg.Priority(IronCondor), reg.Priority(LongStraddle))
	assert.Equal(t, len(reg.Profiles()), reg.Priority(ID("nonexistent")))
}

func TestRegistryLookup(t *testing.T) {
	cfg := config.Default()
	reg := Default(cfg.Scoring)

	_, ok := reg.Lookup(BullCallSpread)
	assert.True(t, ok)
	_, ok = reg.Lookup(ID("wheel_of_fortune"))
	assert.False(t, ok)
}

func TestDefaultRegistryShape(t *testing.T) {
	cfg := config.Default()
	reg := Default(cfg.Scoring)
	require.Len(t, reg.Profiles(), 12)

	selling, buying := 0, 0
	for _, p := range reg.Profiles() {
		switch p.Polarity {
		case PremiumSelling:
			selling++
		case PremiumBuying:
			buying++
		}
		assert.GreaterOrEqual(t, p.Base, 40.0)
		assert.GreaterOrEqual(t, p.MinViable, 30.0)
	}
	assert.Equal(t, 6, selling)
	assert.Equal(t, 6, buying)
}
