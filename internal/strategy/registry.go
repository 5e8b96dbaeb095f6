package strategy

import (
	"fmt"

	"optioneer/internal/config"
	"optioneer/internal/market"
)

// Registry is the closed, ordered set of strategy profiles. Registration
// order is the deterministic tie-break priority at ranking time. The
// registry is read-only after construction and safe for concurrent use.
type Registry struct {
	ordered []*Profile
	index   map[ID]*Profile
	cfg     config.ScoringConfig
}

// NewRegistry builds a registry from profiles in priority order.
func NewRegistry(cfg config.ScoringConfig, profiles ...*Profile) *Registry {
	r := &Registry{
		ordered: profiles,
		index:   make(map[ID]*Profile, len(profiles)),
		cfg:     cfg,
	}
	for _, p := range profiles {
		r.index[p.ID] = p
	}
	return r
}

// Profiles returns the profiles in priority order.
func (r *Registry) Profiles() []*Profile {
	return r.ordered
}

// Lookup resolves a strategy identifier.
func (r *Registry) Lookup(id ID) (*Profile, bool) {
	p, ok := r.index[id]
	return p, ok
}

// Priority returns the tie-break rank of a strategy (lower wins).
func (r *Registry) Priority(id ID) int {
	for i, p := range r.ordered {
		if p.ID == id {
			return i
		}
	}
	return len(r.ordered)
}

// Score runs the shared template plus the family hook over the report and
// returns a fresh scored result. The report is never written to.
func (r *Registry) Score(p *Profile, rep *market.Report) Score {
	card := NewScorecard(p.Base)
	applyTemplate(card, rep, p, r.cfg)
	if p.Hook != nil {
		p.Hook(card, rep)
	}
	value := card.Value()
	return Score{
		Strategy: p.ID,
		Value:    value,
		Reasons:  card.Reasons(),
		Viable:   value >= p.MinViable,
	}
}

// Default returns the production registry. Order here is the deployment's
// documented tie-break priority: income structures first, then defined-risk
// spreads, then long-volatility structures.
func Default(cfg config.ScoringConfig) *Registry {
	return NewRegistry(cfg,
		&Profile{
			ID: CoveredCall, Polarity: PremiumSelling, Bias: BiasBullish,
			Base: 50, MinViable: 30, IVRankFloor: 45,
			ShortLegs: true, RequiresEquity: true,
			Hook: coveredCallHook,
		},
		&Profile{
			ID: CashSecuredPut, Polarity: PremiumSelling, Bias: BiasBullish,
			Base: 50, MinViable: 30, IVRankFloor: 50,
			ShortLegs: true, FullCollateral: true, TargetsReversal: true,
			Hook: cashSecuredPutHook,
		},
		&Profile{
			ID: IronCondor, Polarity: PremiumSelling, Bias: BiasNeutral,
			Base: 50, MinViable: 35, IVRankFloor: 55,
			ShortLegs: true,
			Hook: ironCondorHook,
		},
		&Profile{
			ID: BullPutSpread, Polarity: PremiumSelling, Bias: BiasBullish,
			Base: 50, MinViable: 35, IVRankFloor: 50,
			ShortLegs: true,
			Hook: bullPutSpreadHook,
		},
		&Profile{
			ID: BearCallSpread, Polarity: PremiumSelling, Bias: BiasBearish,
			Base: 50, MinViable: 35, IVRankFloor: 50,
			ShortLegs: true,
			Hook: bearCallSpreadHook,
		},
		&Profile{
			ID: ShortStrangle, Polarity: PremiumSelling, Bias: BiasNeutral,
			Base: 40, MinViable: 35, IVRankFloor: 70,
			ShortLegs: true,
			Hook: shortStrangleHook,
		},
		&Profile{
			ID: BullCallSpread, Polarity: PremiumBuying, Bias: BiasBullish,
			Base: 50, MinViable: 35, IVRankFloor: 30,
			Hook: breakoutHook(market.SignalBullish),
		},
		&Profile{
			ID: BearPutSpread, Polarity: PremiumBuying, Bias: BiasBearish,
			Base: 50, MinViable: 35, IVRankFloor: 30,
			Hook: breakoutHook(market.SignalBearish),
		},
		&Profile{
			ID: LongStraddle, Polarity: PremiumBuying, Bias: BiasVolatility,
			Base: 50, MinViable: 35, IVRankFloor: 25,
			Hook: coiledRangeHook,
		},
		&Profile{
			ID: LongStrangle, Polarity: PremiumBuying, Bias: BiasVolatility,
			Base: 50, MinViable: 35, IVRankFloor: 25,
			Hook: coiledRangeHook,
		},
		&Profile{
			ID: CalendarSpread, Polarity: PremiumBuying, Bias: BiasNeutral,
			Base: 50, MinViable: 35, IVRankFloor: 35,
			ShortLegs: true, StrikeStacking: true,
			Hook: calendarSpreadHook,
		},
		&Profile{
			ID: EarningsStraddle, Polarity: PremiumBuying, Bias: BiasVolatility,
			Base: 40, MinViable: 35, IVRankFloor: 40,
			TargetsEarnings: true, TargetsStress: true,
			Hook: earningsStraddleHook,
		},
	)
}

func coveredCallHook(card *Scorecard, rep *market.Report) {
	if rep.Bollinger == market.BandAboveUpper {
		card.Add(-4, "price stretched above the upper band: call-away risk")
	}
	if rep.Dividend.Date != nil && !rep.Dividend.InWindow {
		card.Add(4, "upcoming dividend adds to covered income")
	}
}

func cashSecuredPutHook(card *Scorecard, rep *market.Report) {
	if rep.Support <= 0 || rep.CurrentPrice <= 0 {
		return
	}
	distance := (rep.CurrentPrice - rep.Support) / rep.CurrentPrice * 100
	switch {
	case distance < 0:
		card.Add(-8, "price below support: catching a falling knife")
	case distance <= 2:
		card.Add(8, fmt.Sprintf("price %.1f%% above support: favorable entry", distance))
	}
}

func ironCondorHook(card *Scorecard, rep *market.Report) {
	if rep.RangeBound {
		card.Add(10, "range-bound tape suits short wings")
	}
	if rep.CurrentPrice > 0 && rep.Resistance > rep.Support {
		widthPct := (rep.Resistance - rep.Support) / rep.CurrentPrice * 100
		if widthPct >= 6 {
			card.Add(5, fmt.Sprintf("%.1f%% between support and resistance: room for strikes", widthPct))
		}
	}
}

func bullPutSpreadHook(card *Scorecard, rep *market.Report) {
	if rep.Support > 0 && rep.CurrentPrice > rep.Support*1.02 {
		card.Add(5, "cushion above support for the short put")
	}
}

func bearCallSpreadHook(card *Scorecard, rep *market.Report) {
	if rep.Resistance > 0 && rep.CurrentPrice < rep.Resistance*0.98 {
		card.Add(5, "headroom below resistance for the short call")
	}
}

func shortStrangleHook(card *Scorecard, rep *market.Report) {
	if rep.StressLevel < 40 {
		card.Add(6, fmt.Sprintf("calm tape (stress %.0f) for undefined risk", rep.StressLevel))
	} else if rep.StressLevel > 60 {
		card.Add(-10, fmt.Sprintf("stress %.0f too hot for undefined risk", rep.StressLevel))
	}
}

// breakoutHook rewards a fresh range break in the family's direction.
func breakoutHook(direction market.Signal) Hook {
	return func(card *Scorecard, rep *market.Report) {
		if rep.BrokeRange && rep.MACD == direction {
			card.Add(8, "fresh range break in the trade direction")
		}
	}
}

func coiledRangeHook(card *Scorecard, rep *market.Report) {
	if rep.RecentMovePct > 0 && rep.RecentMovePct < 3 {
		card.Add(6, fmt.Sprintf("compressed %.1f%% range primes an expansion", rep.RecentMovePct))
	}
	if rep.RangeBoundDays >= 3 {
		card.Add(5, fmt.Sprintf("%d quiet sessions: coiled spring", rep.RangeBoundDays))
	}
}

func calendarSpreadHook(card *Scorecard, rep *market.Report) {
	if rep.RangeBound {
		card.Add(6, "pinned price favors the calendar body")
	}
	if rep.IVRank >= 30 && rep.IVRank <= 60 {
		card.Add(4, fmt.Sprintf("mid IV rank %.0f leaves room for the back month", rep.IVRank))
	}
}

func earningsStraddleHook(card *Scorecard, rep *market.Report) {
	switch {
	case rep.Earnings.InWindow:
		card.Add(25, fmt.Sprintf("earnings catalyst in %d days", rep.Earnings.DaysUntil))
	case rep.Earnings.Date == nil || rep.Earnings.DaysUntil > 14:
		card.Add(-25, "no earnings catalyst in reach")
	}
}
