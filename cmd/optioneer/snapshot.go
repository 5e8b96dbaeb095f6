package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"optioneer/internal/market"
)

// snapshotFile is the on-disk fixture format for offline evaluation. Bar
// and event dates use plain YYYY-MM-DD; the quote timestamp is RFC3339.
type snapshotFile struct {
	Symbol          string        `json:"symbol"`
	HoldsUnderlying bool          `json:"holds_underlying"`
	Bars            []snapshotBar `json:"bars"`
	Quote           struct {
		Bid       float64   `json:"bid"`
		Ask       float64   `json:"ask"`
		Last      float64   `json:"last"`
		Timestamp time.Time `json:"timestamp"`
	} `json:"quote"`
	Metrics market.MarketMetrics `json:"metrics"`
	Events  struct {
		EarningsDate     string `json:"earnings_date,omitempty"`
		DividendExDate   string `json:"dividend_ex_date,omitempty"`
		DividendNextDate string `json:"dividend_next_date,omitempty"`
	} `json:"events"`
}

type snapshotBar struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

const dateLayout = "2006-01-02"

func loadSnapshot(path string) (*snapshotFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", path, err)
	}
	var snap snapshotFile
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot %s: %w", path, err)
	}
	if snap.Symbol == "" {
		return nil, fmt.Errorf("snapshot %s: symbol is required", path)
	}
	return &snap, nil
}

func (s *snapshotFile) inputs(now time.Time) market.Inputs {
	bars := make([]market.PriceBar, 0, len(s.Bars))
	for _, b := range s.Bars {
		date, _ := time.Parse(dateLayout, b.Date)
		bars = append(bars, market.PriceBar{
			Date: date, Open: b.Open, High: b.High, Low: b.Low, Close: b.Close, Volume: b.Volume,
		})
	}

	return market.Inputs{
		Symbol: s.Symbol,
		Bars:   bars,
		Quote: market.Quote{
			Symbol:    s.Symbol,
			Bid:       s.Quote.Bid,
			Ask:       s.Quote.Ask,
			Last:      s.Quote.Last,
			Timestamp: s.Quote.Timestamp,
		},
		Metrics: s.Metrics,
		Events: market.RiskEvents{
			EarningsDate:     parseDate(s.Events.EarningsDate),
			DividendExDate:   parseDate(s.Events.DividendExDate),
			DividendNextDate: parseDate(s.Events.DividendNextDate),
		},
		HoldsUnderlying: s.HoldsUnderlying,
		Now:             now,
	}
}

func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil
	}
	return &t
}
