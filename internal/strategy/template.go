package strategy

import (
	"fmt"
	"math"

	"optioneer/internal/config"
	"optioneer/internal/market"
)

// Scorecard accumulates additive adjustments with paired reason strings.
// Final values are clamped to [0, 100].
type Scorecard struct {
	value   float64
	reasons []string
}

// NewScorecard starts a card at the family's base score.
func NewScorecard(base float64) *Scorecard {
	return &Scorecard{
		value:   base,
		reasons: []string{fmt.Sprintf("base score %.0f", base)},
	}
}

// Add applies a signed adjustment and records why.
func (c *Scorecard) Add(delta float64, reason string) {
	c.value += delta
	c.reasons = append(c.reasons, fmt.Sprintf("%s (%+.0f)", reason, delta))
}

// Note records a reason without changing the score.
func (c *Scorecard) Note(reason string) {
	c.reasons = append(c.reasons, reason)
}

// Value returns the clamped score.
func (c *Scorecard) Value() float64 {
	return math.Min(100, math.Max(0, c.value))
}

// Reasons returns the accumulated explanation list.
func (c *Scorecard) Reasons() []string {
	return c.reasons
}

// applyTemplate runs the shared adjustment passes every family gets:
// volatility polarity, directional alignment, oscillator extremity, stress,
// regime, and momentum-signal context.
func applyTemplate(card *Scorecard, rep *market.Report, p *Profile, cfg config.ScoringConfig) {
	applyPolarity(card, rep, p, cfg)
	applyDirection(card, rep, p)
	applyExtremes(card, rep, p)
	applyStress(card, rep, p, cfg)
	applyRegime(card, rep, p)
	applyMomentum(card, rep, p)
}

func applyPolarity(card *Scorecard, rep *market.Report, p *Profile, cfg config.ScoringConfig) {
	switch p.Polarity {
	case PremiumSelling:
		switch {
		case rep.IVRank >= p.IVRankFloor:
			card.Add(15, fmt.Sprintf("IV rank %.0f clears %.0f floor: premium is rich", rep.IVRank, p.IVRankFloor))
		case rep.IVRank >= p.IVRankFloor-15:
			card.Add(6, fmt.Sprintf("IV rank %.0f near %.0f floor", rep.IVRank, p.IVRankFloor))
		case rep.IVRank < 30:
			card.Add(-12, fmt.Sprintf("IV rank %.0f: premium too thin to sell", rep.IVRank))
		}
		if rep.HVIVRatio > 0 && rep.HVIVRatio < cfg.RichHVIV {
			card.Add(10, fmt.Sprintf("HV/IV %.2f: options priced above realized movement", rep.HVIVRatio))
		} else if rep.HVIVRatio > cfg.CheapHVIV {
			card.Add(-10, fmt.Sprintf("HV/IV %.2f: realized movement exceeds implied", rep.HVIVRatio))
		}
		if rep.ADX < cfg.WeakADX {
			card.Add(8, fmt.Sprintf("ADX %.0f: weak trend favors time decay", rep.ADX))
		} else if rep.ADX > cfg.StrongADX {
			card.Add(-10, fmt.Sprintf("ADX %.0f: strong trend threatens short premium", rep.ADX))
		}

	case PremiumBuying:
		switch {
		case rep.IVRank <= p.IVRankFloor:
			card.Add(15, fmt.Sprintf("IV rank %.0f under %.0f: volatility is cheap", rep.IVRank, p.IVRankFloor))
		case rep.IVRank >= 60:
			card.Add(-12, fmt.Sprintf("IV rank %.0f: paying up for volatility", rep.IVRank))
		case rep.IVRank >= 50:
			card.Add(-8, fmt.Sprintf("IV rank %.0f: debit carries an IV premium", rep.IVRank))
		}
		if rep.HVIVRatio > cfg.CheapHVIV {
			card.Add(12, fmt.Sprintf("HV/IV %.2f: options underpriced vs realized movement", rep.HVIVRatio))
		} else if rep.HVIVRatio > 0 && rep.HVIVRatio < cfg.RichHVIV {
			card.Add(-10, fmt.Sprintf("HV/IV %.2f: rich options erode the debit", rep.HVIVRatio))
		}
		if rep.ADX > cfg.StrongADX {
			card.Add(10, fmt.Sprintf("ADX %.0f: real move underway to justify the debit", rep.ADX))
		} else if rep.ADX < cfg.WeakADX {
			card.Add(-8, fmt.Sprintf("ADX %.0f: no move to pay for", rep.ADX))
		}
	}
}

func applyDirection(card *Scorecard, rep *market.Report, p *Profile) {
	aboveSMA := rep.SMA20 > 0 && rep.CurrentPrice > rep.SMA20

	switch p.Bias {
	case BiasBullish:
		switch rep.MACD {
		case market.SignalBullish:
			card.Add(10, "MACD bullish aligns with bias")
		case market.SignalBearish:
			card.Add(-15, "MACD bearish against bullish bias")
		}
		if aboveSMA {
			card.Add(6, "price above SMA-20")
		} else if rep.SMA20 > 0 {
			card.Add(-8, "price below SMA-20 against bullish bias")
		}
	case BiasBearish:
		switch rep.MACD {
		case market.SignalBearish:
			card.Add(10, "MACD bearish aligns with bias")
		case market.SignalBullish:
			card.Add(-15, "MACD bullish against bearish bias")
		}
		if !aboveSMA && rep.SMA20 > 0 {
			card.Add(6, "price below SMA-20")
		} else if rep.SMA20 > 0 {
			card.Add(-8, "price above SMA-20 against bearish bias")
		}
	case BiasNeutral:
		if rep.MACD == market.SignalNeutral {
			card.Add(6, "no directional pressure")
		}
		if rep.TrendStrength == market.TrendStrong {
			card.Add(-8, "strong trend endangers a neutral structure")
		}
	case BiasVolatility:
		// Direction-agnostic: movement itself is scored by polarity and hooks.
	}
}

func applyExtremes(card *Scorecard, rep *market.Report, p *Profile) {
	extreme := rep.RSI > 70 || rep.RSI < 30
	if !extreme {
		return
	}
	if p.TargetsReversal {
		card.Add(6, fmt.Sprintf("RSI %.0f extreme supports a reversal entry", rep.RSI))
	} else {
		card.Add(-8, fmt.Sprintf("RSI %.0f at an extreme", rep.RSI))
	}
	if (rep.Overbought || rep.Oversold) && !p.TargetsReversal {
		card.Add(-5, "multiple extreme warnings active")
	}
}

func applyStress(card *Scorecard, rep *market.Report, p *Profile, cfg config.ScoringConfig) {
	if rep.StressLevel <= cfg.HighStress {
		return
	}
	if p.TargetsStress {
		card.Add(10, fmt.Sprintf("stress %.0f is the target condition", rep.StressLevel))
		return
	}
	card.Add(-12, fmt.Sprintf("stress %.0f above %.0f", rep.StressLevel, cfg.HighStress))
	if rep.StressLevel > 85 {
		card.Add(-5, "crisis-level stress")
	}
}

func applyRegime(card *Scorecard, rep *market.Report, p *Profile) {
	directional := p.Bias == BiasBullish || p.Bias == BiasBearish

	switch rep.Regime {
	case market.RegimeCrisis:
		if !p.TargetsStress {
			card.Add(-10, "crisis regime")
		}
	case market.RegimeHighVol:
		if p.Polarity == PremiumSelling {
			card.Add(6, "high-vol regime favors sellers")
		} else {
			card.Add(-6, "high-vol regime taxes buyers")
		}
	case market.RegimeRange:
		if p.Bias == BiasNeutral {
			card.Add(8, "range regime suits a neutral structure")
		} else if directional {
			card.Add(-4, "range regime offers no direction")
		}
	case market.RegimeTrend:
		switch {
		case directional && biasMatchesDirection(p.Bias, rep.MACD):
			card.Add(6, "trend regime supports the trade direction")
		case directional && opposesDirection(p.Bias, rep.MACD):
			card.Add(-8, "trend regime runs against the trade direction")
		case p.Bias == BiasNeutral:
			card.Add(-6, "trend regime endangers a neutral structure")
		}
	}
}

func biasMatchesDirection(b Bias, dir market.Signal) bool {
	return (b == BiasBullish && dir == market.SignalBullish) ||
		(b == BiasBearish && dir == market.SignalBearish)
}

func opposesDirection(b Bias, dir market.Signal) bool {
	return (b == BiasBullish && dir == market.SignalBearish) ||
		(b == BiasBearish && dir == market.SignalBullish)
}

func applyMomentum(card *Scorecard, rep *market.Report, p *Profile) {
	// Which way would a reversal point? Against the side showing extremes.
	reversalBias := BiasNeutral
	if rep.OverboughtWarnings > rep.OversoldWarnings {
		reversalBias = BiasBearish
	} else if rep.OversoldWarnings > rep.OverboughtWarnings {
		reversalBias = BiasBullish
	}

	switch rep.Momentum {
	case market.MomentumReversalConfirmed:
		if p.Bias == reversalBias {
			card.Add(6, "confirmed reversal aligns with bias")
		} else if p.TargetsReversal {
			card.Add(4, "confirmed reversal in progress")
		}
	case market.MomentumExhaustion:
		if p.Bias == reversalBias {
			card.Add(3, "exhaustion hints at a turn")
		}
	case market.MomentumContinuation:
		continuationBias := BiasBullish
		if reversalBias == BiasBullish { // oversold extremes continuing down
			continuationBias = BiasBearish
		}
		if p.Bias == continuationBias {
			card.Add(5, "extremes persisting with the trend")
		}
	}
}
