// Package gates is the hard-stop validator. It inspects the market
// condition report for disqualifying conditions before any strategy is
// scored. Verdicts are data attached to the report (reason lists), never
// raised errors: the consuming layer always receives a decision to render.
//
// Two tiers: universal stops block everything (with narrow per-tag
// exemptions for event stops), strategy-specific stops block one family.
package gates

import (
	"fmt"

	"optioneer/internal/config"
	"optioneer/internal/market"
	"optioneer/internal/strategy"
)

// Machine-readable stop identifiers surfaced in NoTradeReasons.
const (
	ReasonDataStale           = "data_stale"
	ReasonInsufficientHistory = "insufficient_history"
	ReasonEarningsWindow      = "earnings_danger_window"
	ReasonDividendWindow      = "dividend_risk_window"
)

// Check records a single gate evaluation, pass or fail.
type Check struct {
	Name        string `json:"name"`
	Passed      bool   `json:"passed"`
	Reason      string `json:"reason,omitempty"` // stop identifier when failed
	Description string `json:"description"`
}

// UniversalResult is the universal-tier verdict. Fatal stops (staleness,
// missing history) block every strategy unconditionally. Event stops carry
// narrow exemptions: earnings-targeting families for the earnings stop,
// families without short option legs for the dividend stop.
type UniversalResult struct {
	Checks       []Check  `json:"checks"`
	Reasons      []string `json:"reasons"`       // every failed stop identifier
	FatalReasons []string `json:"fatal_reasons"` // stops nothing is exempt from
	EarningsStop bool     `json:"earnings_stop"`
	DividendStop bool     `json:"dividend_stop"`
}

// Clear reports whether no universal stop fired at all.
func (u *UniversalResult) Clear() bool {
	return len(u.Reasons) == 0
}

// Fatal reports whether a non-exemptible stop fired.
func (u *UniversalResult) Fatal() bool {
	return len(u.FatalReasons) > 0
}

// Universal evaluates the universal hard stops against the report.
func Universal(rep *market.Report, cfg *config.Config) UniversalResult {
	var res UniversalResult

	record := func(passed bool, name, reason, desc string) {
		res.Checks = append(res.Checks, Check{Name: name, Passed: passed, Reason: failReason(passed, reason), Description: desc})
		if !passed {
			res.Reasons = append(res.Reasons, reason)
		}
	}

	stalenessOK := !rep.Stale
	record(stalenessOK, "freshness", ReasonDataStale,
		fmt.Sprintf("quote age vs %s max (last update %s)", cfg.Data.MaxQuoteAge, rep.LastUpdate.Format("15:04:05")))
	if !stalenessOK {
		res.FatalReasons = append(res.FatalReasons, ReasonDataStale)
	}

	historyOK := rep.DataOK && rep.BarCount >= cfg.Data.MinBars
	record(historyOK, "history", ReasonInsufficientHistory,
		fmt.Sprintf("%d bars vs %d required", rep.BarCount, cfg.Data.MinBars))
	if !historyOK {
		res.FatalReasons = append(res.FatalReasons, ReasonInsufficientHistory)
	}

	earningsOK := !rep.Earnings.InWindow
	record(earningsOK, "earnings_window", ReasonEarningsWindow,
		earningsDesc(rep, cfg.Risk.EarningsDangerDays))
	res.EarningsStop = !earningsOK

	dividendOK := !rep.Dividend.InWindow
	record(dividendOK, "dividend_window", ReasonDividendWindow,
		dividendDesc(rep, cfg.Risk.DividendRiskDays))
	res.DividendStop = !dividendOK

	return res
}

// Exempt reports whether a family may still be scored despite the universal
// verdict. Fatal stops exempt nothing.
func (u *UniversalResult) Exempt(p *strategy.Profile) bool {
	if u.Fatal() {
		return false
	}
	if u.EarningsStop && !p.TargetsEarnings {
		return false
	}
	if u.DividendStop && p.ShortLegs {
		return false
	}
	return true
}

// StrategyVerdict is the strategy-specific tier result for one family.
type StrategyVerdict struct {
	Blocked       bool    `json:"blocked"`
	Informational bool    `json:"informational"`
	Score         float64 `json:"score,omitempty"` // informational score
	Reason        string  `json:"reason,omitempty"`
}

// ForStrategy evaluates the strategy-specific hard stops.
func ForStrategy(rep *market.Report, p *strategy.Profile, cfg *config.Config) StrategyVerdict {
	if p.StrikeStacking && rep.RangeBound && rep.RangeBoundDays >= cfg.Range.SustainedDays {
		return StrategyVerdict{
			Blocked: true,
			Reason: fmt.Sprintf("range-bound %d sessions (≥%d): stacking offsetting positions at identical strikes",
				rep.RangeBoundDays, cfg.Range.SustainedDays),
		}
	}
	if p.FullCollateral && rep.IVRank < cfg.Scoring.MinIVRankCashSecured {
		return StrategyVerdict{
			Blocked: true,
			Reason: fmt.Sprintf("IV rank %.0f below %.0f: premium cannot pay for full collateral",
				rep.IVRank, cfg.Scoring.MinIVRankCashSecured),
		}
	}
	if p.RequiresEquity && !rep.HoldsUnderlying {
		return StrategyVerdict{
			Informational: true,
			Score:         cfg.Scoring.InformationalScore,
			Reason:        "no underlying position held: acquire shares before writing calls",
		}
	}
	return StrategyVerdict{}
}

func earningsDesc(rep *market.Report, windowDays int) string {
	if rep.Earnings.Date == nil {
		return "no earnings date known"
	}
	return fmt.Sprintf("earnings in %d days vs %d-day danger window", rep.Earnings.DaysUntil, windowDays)
}

func dividendDesc(rep *market.Report, windowDays int) string {
	if rep.Dividend.Date == nil {
		return "no dividend ex-date known"
	}
	return fmt.Sprintf("dividend ex-date in %d days vs %d-day risk window", rep.Dividend.DaysUntil, windowDays)
}

func failReason(passed bool, reason string) string {
	if passed {
		return ""
	}
	return reason
}
