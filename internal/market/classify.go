package market

import "math"

// Regime is the coarse market-state classification used to bias scoring.
type Regime string

const (
	RegimeCrisis  Regime = "crisis"
	RegimeHighVol Regime = "high_vol"
	RegimeRange   Regime = "range"
	RegimeTrend   Regime = "trend"
)

// MomentumSignal distinguishes exhaustion from continuation at extremes.
type MomentumSignal string

const (
	MomentumReversalConfirmed MomentumSignal = "reversal_confirmed"
	MomentumExhaustion        MomentumSignal = "exhaustion"
	MomentumContinuation      MomentumSignal = "continuation"
	MomentumUnclear           MomentumSignal = "unclear"
)

// Classification rule thresholds. Ordering in classifyRegime is a correctness
// invariant: overlapping conditions are common (a crisis is often also
// technically range-bound) and the first match must win.
const (
	crisisStressFloor  = 80.0
	highVolIVRankFloor = 75.0
	trendADXFloor      = 20.0

	extremeWarningFlip = 3
)

// CustomRegime lets deployments register additional regimes between high_vol
// and range in the priority chain. Match returns whether the rule fires and
// the confidence (0-100) when it does.
type CustomRegime struct {
	Name  Regime
	Match func(*Report) (bool, float64)
}

// Classify runs the three derived-classification passes over a raw report
// and returns the classified copy. The input is not modified.
func Classify(raw Report, custom []CustomRegime) Report {
	rep := raw

	rep.Regime, rep.RegimeConfidence = classifyRegime(&rep, custom)
	rep.OverboughtWarnings, rep.OversoldWarnings = countExtremeWarnings(&rep)
	rep.Overbought = rep.OverboughtWarnings >= extremeWarningFlip
	rep.Oversold = rep.OversoldWarnings >= extremeWarningFlip
	rep.Momentum, rep.MomentumConfidence = classifyMomentum(&rep)

	return rep
}

// classifyRegime short-circuits on the first matching rule, highest severity
// first: crisis > high_vol > custom > range > trend.
func classifyRegime(rep *Report, custom []CustomRegime) (Regime, float64) {
	if rep.StressLevel >= crisisStressFloor {
		return RegimeCrisis, math.Min(100, rep.StressLevel)
	}
	if rep.IVRank >= highVolIVRankFloor {
		return RegimeHighVol, math.Min(100, rep.IVRank)
	}
	for _, c := range custom {
		if c.Match == nil {
			continue
		}
		if ok, conf := c.Match(rep); ok {
			return c.Name, clampPct(conf)
		}
	}
	if rep.RangeBound {
		return RegimeRange, math.Min(100, 55+8*float64(rep.RangeBoundDays))
	}
	if rep.ADX >= trendADXFloor {
		return RegimeTrend, math.Min(100, rep.ADX*2.5)
	}
	// Directionless and not compressed: treat as a weak range.
	return RegimeRange, 25
}

// countExtremeWarnings accumulates independent overbought/oversold rules so
// callers see signal strength, not just a boolean.
func countExtremeWarnings(rep *Report) (overbought, oversold int) {
	if rep.RSI > 70 {
		overbought++
	}
	if rep.RSI > 80 {
		overbought++
	}
	if rep.Bollinger == BandAboveUpper {
		overbought++
	}
	if rep.SMA20 > 0 && rep.CurrentPrice > rep.SMA20*1.05 {
		overbought++
	}

	if rep.RSI < 30 {
		oversold++
	}
	if rep.RSI < 20 {
		oversold++
	}
	if rep.Bollinger == BandBelowLower {
		oversold++
	}
	if rep.SMA20 > 0 && rep.CurrentPrice < rep.SMA20*0.95 {
		oversold++
	}
	return overbought, oversold
}

// classifyMomentum compares oscillator extremes against MACD direction to
// separate likely reversals from trends that persist despite extreme
// readings. Priority: reversal_confirmed > exhaustion > continuation >
// unclear.
func classifyMomentum(rep *Report) (MomentumSignal, float64) {
	rsiHigh := rep.RSI >= 70
	rsiLow := rep.RSI <= 30

	switch {
	case rep.OverboughtWarnings >= extremeWarningFlip && rep.MACD == SignalBearish:
		return MomentumReversalConfirmed, 80
	case rep.OversoldWarnings >= extremeWarningFlip && rep.MACD == SignalBullish:
		return MomentumReversalConfirmed, 80
	case rsiHigh && rep.MACD == SignalBearish:
		return MomentumExhaustion, 65
	case rsiLow && rep.MACD == SignalBullish:
		return MomentumExhaustion, 65
	case rsiHigh && rep.MACD == SignalBullish && rep.ADX >= 25:
		return MomentumContinuation, 60
	case rsiLow && rep.MACD == SignalBearish && rep.ADX >= 25:
		return MomentumContinuation, 60
	}
	return MomentumUnclear, 30
}

func clampPct(v float64) float64 {
	return math.Min(100, math.Max(0, v))
}
