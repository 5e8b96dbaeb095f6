package gates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"optioneer/internal/config"
	"optioneer/internal/market"
	"optioneer/internal/strategy"
)

func cleanReport() market.Report {
	now := time.Date(2026, 8, 28, 15, 0, 0, 0, time.UTC)
	return market.Report{
		Symbol:       "SPY",
		CurrentPrice: 100,
		DataOK:       true,
		BarCount:     40,
		IVRank:       50,
		LastUpdate:   now.Add(-time.Minute),
		EvaluatedAt:  now,
	}
}

func TestUniversalAllClear(t *testing.T) {
	cfg := config.Default()
	rep := cleanReport()

	res := Universal(&rep, cfg)
	assert.True(t, res.Clear())
	assert.False(t, res.Fatal())
	assert.Empty(t, res.Reasons)
	assert.Len(t, res.Checks, 4)
}

func TestUniversalStaleIsFatal(t *testing.T) {
	cfg := config.Default()
	rep := cleanReport()
	rep.Stale = true

	res := Universal(&rep, cfg)
	assert.True(t, res.Fatal())
	assert.Contains(t, res.Reasons, ReasonDataStale)
	assert.Contains(t, res.FatalReasons, ReasonDataStale)

	// Nothing is exempt from a fatal stop, not even an earnings strategy.
	p := &strategy.Profile{ID: strategy.EarningsStraddle, TargetsEarnings: true}
	assert.False(t, res.Exempt(p))
}

func TestUniversalInsufficientHistoryIsFatal(t *testing.T) {
	cfg := config.Default()
	rep := cleanReport()
	rep.DataOK = false
	rep.BarCount = 12

	res := Universal(&rep, cfg)
	assert.True(t, res.Fatal())
	assert.Contains(t, res.Reasons, ReasonInsufficientHistory)
}

func TestUniversalEarningsWindowExemption(t *testing.T) {
	cfg := config.Default()
	date := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	rep := cleanReport()
	rep.Earnings = market.EventWindow{Date: &date, DaysUntil: 3, InWindow: true}

	res := Universal(&rep, cfg)
	require.False(t, res.Fatal())
	assert.True(t, res.EarningsStop)
	assert.Contains(t, res.Reasons, ReasonEarningsWindow)

	plain := &strategy.Profile{ID: strategy.IronCondor, ShortLegs: true}
	tagged := &strategy.Profile{ID: strategy.EarningsStraddle, TargetsEarnings: true}
	assert.False(t, res.Exempt(plain))
	assert.True(t, res.Exempt(tagged), "earnings-targeting families are exempt")
}

func TestUniversalDividendWindowExemption(t *testing.T) {
	cfg := config.Default()
	date := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	rep := cleanReport()
	rep.Dividend = market.EventWindow{Date: &date, DaysUntil: 2, InWindow: true}

	res := Universal(&rep, cfg)
	require.False(t, res.Fatal())
	assert.True(t, res.DividendStop)

	shortLegs := &strategy.Profile{ID: strategy.BullPutSpread, ShortLegs: true}
	longOnly := &strategy.Profile{ID: strategy.LongStraddle}
	assert.False(t, res.Exempt(shortLegs), "short option legs carry assignment risk")
	assert.True(t, res.Exempt(longOnly), "dividend risk does not apply without short legs")
}

func TestForStrategyStrikeStackingBlock(t *testing.T) {
	cfg := config.Default()
	rep := cleanReport()
	rep.RangeBound = true
	rep.RangeBoundDays = 6

	p := &strategy.Profile{ID: strategy.CalendarSpread, StrikeStacking: true}
	v := ForStrategy(&rep, p, cfg)
	assert.True(t, v.Blocked)
	assert.Contains(t, v.Reason, "range-bound")

	rep.RangeBoundDays = 2
	v = ForStrategy(&rep, p, cfg)
	assert.False(t, v.Blocked, "short-lived ranges do not block")
}

func TestForStrategyCollateralFloor(t *testing.T) {
	cfg := config.Default()
	rep := cleanReport()
	rep.IVRank = 20

	p := &strategy.Profile{ID: strategy.CashSecuredPut, FullCollateral: true}
	v := ForStrategy(&rep, p, cfg)
	assert.True(t, v.Blocked)

	rep.IVRank = 30
	v = ForStrategy(&rep, p, cfg)
	assert.False(t, v.Blocked, "floor itself passes")
}

func TestForStrategyEquityPrerequisiteIsInformational(t *testing.T) {
	cfg := config.Default()
	rep := cleanReport()

	p := &strategy.Profile{ID: strategy.CoveredCall, RequiresEquity: true}
	v := ForStrategy(&rep, p, cfg)
	assert.False(t, v.Blocked)
	assert.True(t, v.Informational)
	assert.Equal(t, cfg.Scoring.InformationalScore, v.Score)
	assert.Contains(t, v.Reason, "acquire shares")

	rep.HoldsUnderlying = true
	v = ForStrategy(&rep, p, cfg)
	assert.False(t, v.Informational)
}
