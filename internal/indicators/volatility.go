package indicators

import (
	"math"

	talib "github.com/markcheno/go-talib"
)

// TradingDaysPerYear annualizes daily return volatility.
const TradingDaysPerYear = 252

// HistoricalVolatility returns annualized realized volatility in percent from
// a daily-return stdev over the trailing window. When fewer returns than the
// window are available it uses what exists, down to a floor of 10 returns;
// below that the result is not valid.
func HistoricalVolatility(closes []float64, window int) (float64, bool) {
	returns := dailyReturns(closes)
	if len(returns) < 10 {
		return 0, false
	}
	period := window
	if len(returns) < period {
		period = len(returns)
	}
	stdev := last(talib.StdDev(returns, period, 1.0))
	return stdev * math.Sqrt(TradingDaysPerYear) * 100.0, true
}

// HVIVRatio compares realized to implied volatility. Below ~0.8 options are
// rich (favor selling); above ~1.2 they are cheap (favor buying).
func HVIVRatio(historicalVol, currentIV float64) float64 {
	if currentIV <= 0 {
		return 0
	}
	return historicalVol / currentIV
}

// StressWeights weight the market-stress composite components.
type StressWeights struct {
	IVRank     float64
	RecentMove float64
	Break      float64

	// RecentMoveFullScale is the recent-move % that saturates its component.
	RecentMoveFullScale float64
}

// StressComposite fuses IV rank, the recent realized move, and a
// support/resistance break into a 0-100 stress score.
func StressComposite(ivRank, recentMovePct float64, brokeRange bool, w StressWeights) float64 {
	moveComponent := 0.0
	if w.RecentMoveFullScale > 0 {
		moveComponent = math.Min(100, recentMovePct/w.RecentMoveFullScale*100)
	}
	breakComponent := 0.0
	if brokeRange {
		breakComponent = 100.0
	}
	stress := ivRank*w.IVRank + moveComponent*w.RecentMove + breakComponent*w.Break
	return math.Min(100, math.Max(0, stress))
}

// RangeBound reports whether the last 3 closes span at most pointThreshold,
// and how many consecutive sessions that has held.
func RangeBound(closes []float64, pointThreshold float64) (bool, int) {
	const span = 3
	if len(closes) < span {
		return false, 0
	}

	days := 0
	for end := len(closes); end >= span; end-- {
		window := closes[end-span : end]
		hi, lo := window[0], window[0]
		for _, c := range window[1:] {
			hi = math.Max(hi, c)
			lo = math.Min(lo, c)
		}
		if hi-lo > pointThreshold {
			break
		}
		days++
	}
	return days > 0, days
}

func dailyReturns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] > 0 {
			returns = append(returns, closes[i]/closes[i-1]-1)
		}
	}
	return returns
}
