package market

import (
	"math"
	"time"

	"optioneer/internal/config"
	"optioneer/internal/indicators"
)

// Report is the central market-condition snapshot. BuildRaw fills the
// measured groups; Classify fills the derived group; the hard-stop validator
// fills NoTradeReasons. After that the report is read-only: scorers return
// fresh score/reason pairs and never write back.
type Report struct {
	// Identity / price
	Symbol       string    `json:"symbol"`
	CurrentPrice float64   `json:"current_price"`
	OpenPrice    float64   `json:"open_price"`
	EvaluatedAt  time.Time `json:"evaluated_at"`

	// Technical
	DataOK        bool          `json:"data_ok"`
	BarCount      int           `json:"bar_count"`
	RSI           float64       `json:"rsi"`
	MACD          Signal        `json:"macd"`
	Bollinger     BandPosition  `json:"bollinger"`
	SMA20         float64       `json:"sma_20"`
	Support       float64       `json:"support"`
	Resistance    float64       `json:"resistance"`
	ADX           float64       `json:"adx"`
	TrendStrength TrendStrength `json:"trend_strength"`

	// Volatility
	HistoricalVol float64 `json:"historical_vol"`
	CurrentIV     float64 `json:"current_iv"`
	IVRank        float64 `json:"iv_rank"`
	IVPercentile  float64 `json:"iv_percentile"`
	HVIVRatio     float64 `json:"hv_iv_ratio"`

	// Market state
	RangeBound     bool    `json:"range_bound"`
	RangeBoundDays int     `json:"range_bound_days"`
	StressLevel    float64 `json:"stress_level"`
	RecentMovePct  float64 `json:"recent_move_pct"`
	BrokeRange     bool    `json:"broke_range"`

	// Data quality
	Stale      bool      `json:"stale"`
	LastUpdate time.Time `json:"last_update"`

	// Risk events
	Earnings EventWindow `json:"earnings"`
	Dividend EventWindow `json:"dividend"`

	// Caller position context
	HoldsUnderlying bool `json:"holds_underlying"`

	// Derived classification (set by Classify)
	Regime             Regime         `json:"regime"`
	RegimeConfidence   float64        `json:"regime_confidence"`
	Momentum           MomentumSignal `json:"momentum"`
	MomentumConfidence float64        `json:"momentum_confidence"`
	OverboughtWarnings int            `json:"overbought_warnings"`
	OversoldWarnings   int            `json:"oversold_warnings"`
	Overbought         bool           `json:"overbought"`
	Oversold           bool           `json:"oversold"`

	// Decision support (set by the hard-stop validator)
	NoTradeReasons []string `json:"no_trade_reasons"`
}

// CanTrade reports whether no universal hard stop applies.
func (r *Report) CanTrade() bool {
	return len(r.NoTradeReasons) == 0
}

// BuildRaw assembles the measured report fields from raw inputs. It never
// fails: insufficient history yields DataOK=false with neutral indicator
// values, and the validator routes that to a no-trade path.
func BuildRaw(in Inputs, cfg *config.Config) Report {
	price := in.Quote.Last
	if price <= 0 {
		price = mid(in.Quote.Bid, in.Quote.Ask)
	}

	rep := Report{
		Symbol:          in.Symbol,
		CurrentPrice:    price,
		EvaluatedAt:     in.Now,
		BarCount:        len(in.Bars),
		CurrentIV:       in.Metrics.CurrentIV,
		IVRank:          in.Metrics.IVRank,
		IVPercentile:    in.Metrics.IVPercentile,
		HoldsUnderlying: in.HoldsUnderlying,
		LastUpdate:      in.Quote.Timestamp,
		Stale:           in.Now.Sub(in.Quote.Timestamp) > cfg.Data.MaxQuoteAge.Std(),
	}
	if len(in.Bars) > 0 {
		rep.OpenPrice = in.Bars[len(in.Bars)-1].Open
	}

	bars := make([]indicators.Bar, len(in.Bars))
	closes := make([]float64, len(in.Bars))
	for i, b := range in.Bars {
		bars[i] = indicators.Bar{Open: b.Open, High: b.High, Low: b.Low, Close: b.Close, Volume: b.Volume}
		closes[i] = b.Close
	}

	snap := indicators.Compute(bars, price, cfg.Data.RecentBars)
	rep.DataOK = snap.Valid && len(in.Bars) >= cfg.Data.MinBars
	rep.RSI = snap.RSI14
	rep.MACD = snap.MACD
	rep.Bollinger = snap.Bollinger
	rep.SMA20 = snap.SMA20
	rep.Support = snap.Support
	rep.Resistance = snap.Resistance
	rep.ADX = snap.ADX
	rep.TrendStrength = snap.Trend
	rep.RecentMovePct = snap.RecentMovePct

	if hv, ok := indicators.HistoricalVolatility(closes, cfg.Data.HVWindow); ok {
		rep.HistoricalVol = hv
	}
	rep.HVIVRatio = indicators.HVIVRatio(rep.HistoricalVol, rep.CurrentIV)

	rep.RangeBound, rep.RangeBoundDays = indicators.RangeBound(closes, cfg.Range.PointThreshold)
	if rep.DataOK {
		rep.BrokeRange = price > rep.Resistance || price < rep.Support
	}
	rep.StressLevel = indicators.StressComposite(rep.IVRank, rep.RecentMovePct, rep.BrokeRange, indicators.StressWeights{
		IVRank:              cfg.Stress.IVRankWeight,
		RecentMove:          cfg.Stress.RecentMoveWeight,
		Break:               cfg.Stress.BreakWeight,
		RecentMoveFullScale: cfg.Stress.RecentMoveFullScale,
	})

	rep.Earnings = eventWindow(in.Events.EarningsDate, in.Now, cfg.Risk.EarningsDangerDays)
	rep.Dividend = eventWindow(in.Events.DividendExDate, in.Now, cfg.Risk.DividendRiskDays)

	return rep
}

func eventWindow(date *time.Time, now time.Time, windowDays int) EventWindow {
	if date == nil {
		return EventWindow{}
	}
	days := int(math.Ceil(date.Sub(now).Hours() / 24))
	return EventWindow{
		Date:      date,
		DaysUntil: days,
		InWindow:  days >= 0 && days <= windowDays,
	}
}

func mid(bid, ask float64) float64 {
	if bid <= 0 || ask <= 0 {
		return 0
	}
	return (bid + ask) / 2
}
