// Package strategy defines the strategy families, their scoring profiles,
// and the read-only registry the selector ranks over. Scorers are pure:
// score(report) -> (value, reasons). Shared polarity logic (premium-selling
// vs premium-buying adjustments) lives in one parameterized template that
// every family configures via data; per-family hooks add only what is unique
// to that structure.
package strategy

import "optioneer/internal/market"

// ID identifies a strategy family. The set is closed: new strategies are
// added by extending the registry, not by runtime introspection.
type ID string

const (
	CoveredCall      ID = "covered_call"
	CashSecuredPut   ID = "cash_secured_put"
	IronCondor       ID = "iron_condor"
	BullPutSpread    ID = "bull_put_spread"
	BearCallSpread   ID = "bear_call_spread"
	ShortStrangle    ID = "short_strangle"
	BullCallSpread   ID = "bull_call_spread"
	BearPutSpread    ID = "bear_put_spread"
	LongStraddle     ID = "long_straddle"
	LongStrangle     ID = "long_strangle"
	CalendarSpread   ID = "calendar_spread"
	EarningsStraddle ID = "earnings_straddle"
)

// Polarity determines the sign of IV-rank and HV/IV adjustments.
type Polarity string

const (
	PremiumSelling Polarity = "premium_selling"
	PremiumBuying  Polarity = "premium_buying"
)

// Bias is the directional posture a family profits from.
type Bias string

const (
	BiasBullish    Bias = "bullish"
	BiasBearish    Bias = "bearish"
	BiasNeutral    Bias = "neutral"
	BiasVolatility Bias = "volatility" // direction-agnostic, needs movement
)

// Hook adds family-specific adjustments after the shared template runs.
type Hook func(card *Scorecard, rep *market.Report)

// Profile is the scoring configuration for one family. Profiles are data:
// the template interprets them, families do not reimplement shared rules.
type Profile struct {
	ID       ID
	Polarity Polarity
	Bias     Bias

	Base      float64 // starting score before adjustments
	MinViable float64 // minimum score to be selectable

	// IVRankFloor is the IV-rank level this family considers rich (selling)
	// or the ceiling it considers cheap (buying).
	IVRankFloor float64

	ShortLegs       bool // has short option legs (dividend assignment risk)
	FullCollateral  bool // requires full cash collateral
	RequiresEquity  bool // requires an existing underlying position
	StrikeStacking  bool // offsetting positions at identical strikes
	TargetsEarnings bool // exempt from the earnings hard stop
	TargetsStress   bool // profits from elevated stress
	TargetsReversal bool // enters at oscillator extremes deliberately

	Hook Hook
}

// Score is one family's scored result. Ephemeral: discarded after ranking
// unless surfaced to the caller in the decision table.
type Score struct {
	Strategy      ID       `json:"strategy"`
	Value         float64  `json:"value"`
	Reasons       []string `json:"reasons"`
	Viable        bool     `json:"viable"`
	Informational bool     `json:"informational,omitempty"`
}
