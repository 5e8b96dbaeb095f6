// Package indicators computes the technical snapshot the report builder
// consumes: moving averages, oscillators, bands, trend strength, and
// support/resistance over a window of daily bars plus one live price.
//
// All functions are pure. Insufficient history yields a typed result with
// Valid=false and neutral values, never an error and never fabricated data.
package indicators

import (
	"math"

	talib "github.com/markcheno/go-talib"
)

// Fixed window lengths. These are part of the engine contract, not tunables.
const (
	SMAPeriod       = 20
	RSIPeriod       = 14
	MACDFast        = 12
	MACDSlow        = 26
	MACDSignalSpan  = 9
	BollingerPeriod = 20
	BollingerStdDev = 2.0
	ADXPeriod       = 14
	SRPeriod        = 20

	// MinBars is the minimum history for a valid snapshot.
	MinBars = 20
)

// Signal is a three-state direction label.
type Signal string

const (
	SignalBullish Signal = "bullish"
	SignalBearish Signal = "bearish"
	SignalNeutral Signal = "neutral"
)

// BandPosition locates the live price relative to the Bollinger bands.
type BandPosition string

const (
	BandAboveUpper BandPosition = "above_upper"
	BandMiddle     BandPosition = "middle"
	BandBelowLower BandPosition = "below_lower"
)

// TrendStrength buckets ADX into the labels strategies key off.
type TrendStrength string

const (
	TrendWeak     TrendStrength = "weak"
	TrendModerate TrendStrength = "moderate"
	TrendStrong   TrendStrength = "strong"
)

// Bar is one daily OHLCV bar, oldest-first ordering expected.
type Bar struct {
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// Snapshot aggregates every technical field of the report.
type Snapshot struct {
	Valid    bool
	BarCount int

	SMA20 float64

	RSI14 float64

	MACDLine   float64
	MACDSigVal float64
	MACDHist   float64
	MACD       Signal

	BollingerUpper  float64
	BollingerMiddle float64
	BollingerLower  float64
	Bollinger       BandPosition

	ADX   float64
	Trend TrendStrength

	Support    float64
	Resistance float64

	// RecentMovePct is the high-low range of the recent window as a % of the
	// live price.
	RecentMovePct float64
}

// Compute builds the full technical snapshot from bars plus the live price.
// The live price is substituted as the most recent point for the Bollinger
// window so band position reflects the current quote, not yesterday's close.
func Compute(bars []Bar, livePrice float64, recentBars int) Snapshot {
	snap := Snapshot{BarCount: len(bars)}
	if len(bars) < MinBars || livePrice <= 0 {
		snap.RSI14 = 50.0 // neutral when unknown
		snap.MACD = SignalNeutral
		snap.Bollinger = BandMiddle
		snap.Trend = TrendWeak
		return snap
	}
	snap.Valid = true

	closes := make([]float64, len(bars))
	highs := make([]float64, len(bars))
	lows := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
		highs[i] = b.High
		lows[i] = b.Low
	}

	snap.SMA20 = last(talib.Sma(closes, SMAPeriod))
	snap.RSI14 = rsi(closes)
	snap.MACDLine, snap.MACDSigVal, snap.MACDHist, snap.MACD = macd(closes)
	snap.BollingerUpper, snap.BollingerMiddle, snap.BollingerLower, snap.Bollinger = bollinger(closes, livePrice)
	snap.ADX, snap.Trend = adx(highs, lows, closes)
	snap.Support = last(talib.Min(lows, SRPeriod))
	snap.Resistance = last(talib.Max(highs, SRPeriod))
	snap.RecentMovePct = recentMove(highs, lows, livePrice, recentBars)

	return snap
}

func rsi(closes []float64) float64 {
	if len(closes) < RSIPeriod+1 {
		return 50.0
	}
	return last(talib.Rsi(closes, RSIPeriod))
}

func macd(closes []float64) (line, sig, hist float64, label Signal) {
	// MACD needs the slow EMA plus the signal EMA to settle.
	if len(closes) < MACDSlow+MACDSignalSpan {
		return 0, 0, 0, SignalNeutral
	}
	lines, sigs, hists := talib.Macd(closes, MACDFast, MACDSlow, MACDSignalSpan)
	line, sig, hist = last(lines), last(sigs), last(hists)
	switch {
	case hist > 0:
		label = SignalBullish
	case hist < 0:
		label = SignalBearish
	default:
		label = SignalNeutral
	}
	return line, sig, hist, label
}

func bollinger(closes []float64, livePrice float64) (upper, middle, lower float64, pos BandPosition) {
	// Substitute the live price as the final point of the band window.
	series := make([]float64, len(closes)+1)
	copy(series, closes)
	series[len(closes)] = livePrice

	uppers, middles, lowers := talib.BBands(series, BollingerPeriod, BollingerStdDev, BollingerStdDev, talib.SMA)
	upper, middle, lower = last(uppers), last(middles), last(lowers)

	switch {
	case livePrice > upper:
		pos = BandAboveUpper
	case livePrice < lower:
		pos = BandBelowLower
	default:
		pos = BandMiddle
	}
	return upper, middle, lower, pos
}

func adx(highs, lows, closes []float64) (float64, TrendStrength) {
	// Wilder smoothing needs roughly two periods of history to settle.
	if len(closes) < ADXPeriod*2+1 {
		return 0, TrendWeak
	}
	value := last(talib.Adx(highs, lows, closes, ADXPeriod))
	switch {
	case value > 25:
		return value, TrendStrong
	case value >= 20:
		return value, TrendModerate
	default:
		return value, TrendWeak
	}
}

func recentMove(highs, lows []float64, livePrice float64, window int) float64 {
	if window <= 0 || len(highs) < window || livePrice <= 0 {
		return 0
	}
	hi := math.Inf(-1)
	lo := math.Inf(1)
	for i := len(highs) - window; i < len(highs); i++ {
		hi = math.Max(hi, highs[i])
		lo = math.Min(lo, lows[i])
	}
	return (hi - lo) / livePrice * 100.0
}

func last(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	return series[len(series)-1]
}
