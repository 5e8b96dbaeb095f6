// Package market defines the engine's value objects: raw inputs (bars,
// quotes, metrics, risk events) and the MarketConditionReport every
// downstream component reads. Reports are built once per evaluation through
// a two-stage pipeline: BuildRaw assembles measured fields, Classify derives
// regime/extremes/momentum. Nothing mutates a report after classification.
package market

import (
	"time"

	"optioneer/internal/indicators"
)

// Re-exported label types so callers need not import the indicator package.
type (
	Signal        = indicators.Signal
	BandPosition  = indicators.BandPosition
	TrendStrength = indicators.TrendStrength
)

// Re-exported label constants so callers need not import the indicator package.
const (
	SignalBullish = indicators.SignalBullish
	SignalBearish = indicators.SignalBearish
	SignalNeutral = indicators.SignalNeutral

	BandAboveUpper = indicators.BandAboveUpper
	BandMiddle     = indicators.BandMiddle
	BandBelowLower = indicators.BandBelowLower

	TrendWeak     = indicators.TrendWeak
	TrendModerate = indicators.TrendModerate
	TrendStrong   = indicators.TrendStrong
)

// PriceBar is one daily OHLCV bar. Bars are ordered oldest-first.
type PriceBar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// Quote is the live top-of-book snapshot. Its timestamp drives the
// staleness hard stop.
type Quote struct {
	Symbol    string    `json:"symbol"`
	Bid       float64   `json:"bid"`
	Ask       float64   `json:"ask"`
	Last      float64   `json:"last"`
	Timestamp time.Time `json:"timestamp"`
}

// MarketMetrics are option-surface figures supplied by the external
// market-metrics collaborator. The engine ingests them verbatim.
type MarketMetrics struct {
	IVRank       float64 `json:"iv_rank"`       // 0-100 percentile of IV in its 52w range
	IVPercentile float64 `json:"iv_percentile"` // 0-100
	CurrentIV    float64 `json:"current_iv"`    // annualized %
	Beta         float64 `json:"beta"`
}

// RiskEvents carries upcoming corporate events. Nil means no known event.
type RiskEvents struct {
	EarningsDate     *time.Time `json:"earnings_date,omitempty"`
	DividendExDate   *time.Time `json:"dividend_ex_date,omitempty"`
	DividendNextDate *time.Time `json:"dividend_next_date,omitempty"`
}

// Inputs bundles everything one evaluation consumes. Now is supplied by the
// caller so repeated evaluations of identical inputs stay byte-identical.
type Inputs struct {
	Symbol          string
	Bars            []PriceBar
	Quote           Quote
	Metrics         MarketMetrics
	Events          RiskEvents
	HoldsUnderlying bool
	Now             time.Time
}

// EventWindow describes one risk event relative to the evaluation time.
type EventWindow struct {
	Date      *time.Time `json:"date,omitempty"`
	DaysUntil int        `json:"days_until"`
	InWindow  bool       `json:"in_window"`
}
