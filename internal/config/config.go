// Package config holds the engine configuration: data-quality windows,
// risk-event windows, stress composite weights, and scoring knobs. All values
// ship with compiled-in defaults; a YAML file may override any subset.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root engine configuration.
type Config struct {
	Data    DataConfig    `yaml:"data"`
	Risk    RiskConfig    `yaml:"risk"`
	Stress  StressConfig  `yaml:"stress"`
	Range   RangeConfig   `yaml:"range"`
	Scoring ScoringConfig `yaml:"scoring"`
}

// Duration wraps time.Duration so YAML files can say "5m" instead of
// nanosecond integers.
type Duration time.Duration

// UnmarshalYAML parses Go duration syntax.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	dur, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(dur)
	return nil
}

// Std returns the underlying time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

// DataConfig controls freshness and history requirements.
type DataConfig struct {
	MaxQuoteAge Duration `yaml:"max_quote_age"` // quotes older than this hard-stop everything
	MinBars     int      `yaml:"min_bars"`      // minimum daily bars for a valid report
	HVWindow    int      `yaml:"hv_window"`     // daily returns window for realized vol
	RecentBars  int      `yaml:"recent_bars"`   // lookback for the recent-move range
}

// RiskConfig controls the event hard-stop windows.
type RiskConfig struct {
	EarningsDangerDays int `yaml:"earnings_danger_days"`
	DividendRiskDays   int `yaml:"dividend_risk_days"`
}

// StressConfig weights the market-stress composite. Weights must sum to 1.
type StressConfig struct {
	IVRankWeight     float64 `yaml:"iv_rank_weight"`
	RecentMoveWeight float64 `yaml:"recent_move_weight"`
	BreakWeight      float64 `yaml:"break_weight"`

	// RecentMoveFullScale is the recent-move % that maps to a 100 component.
	RecentMoveFullScale float64 `yaml:"recent_move_full_scale"`
}

// RangeConfig controls range-bound detection.
type RangeConfig struct {
	PointThreshold float64 `yaml:"point_threshold"` // max high-low span of last 3 closes
	SustainedDays  int     `yaml:"sustained_days"`  // consecutive days before "sustained"
}

// ScoringConfig carries the cross-strategy scoring knobs that the polarity
// template reads. Per-family thresholds live in the strategy registry.
type ScoringConfig struct {
	MinIVRankCashSecured float64 `yaml:"min_iv_rank_cash_secured"` // CSP hard floor
	HighStress           float64 `yaml:"high_stress"`              // stress penalty trigger
	RichHVIV             float64 `yaml:"rich_hv_iv"`               // below = IV rich
	CheapHVIV            float64 `yaml:"cheap_hv_iv"`              // above = IV cheap
	StrongADX            float64 `yaml:"strong_adx"`
	WeakADX              float64 `yaml:"weak_adx"`
	InformationalScore   float64 `yaml:"informational_score"` // prerequisite-missing score
}

// Default returns the production configuration.
func Default() *Config {
	return &Config{
		Data: DataConfig{
			MaxQuoteAge: Duration(5 * time.Minute),
			MinBars:     20,
			HVWindow:    30,
			RecentBars:  5,
		},
		Risk: RiskConfig{
			EarningsDangerDays: 7,
			DividendRiskDays:   5,
		},
		Stress: StressConfig{
			IVRankWeight:        0.4,
			RecentMoveWeight:    0.3,
			BreakWeight:         0.3,
			RecentMoveFullScale: 10.0,
		},
		Range: RangeConfig{
			PointThreshold: 2.0,
			SustainedDays:  5,
		},
		Scoring: ScoringConfig{
			MinIVRankCashSecured: 30.0,
			HighStress:           70.0,
			RichHVIV:             0.8,
			CheapHVIV:            1.2,
			StrongADX:            25.0,
			WeakADX:              20.0,
			InformationalScore:   25.0,
		},
	}
}

// Load reads a YAML file over the defaults. A missing path returns defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects configurations the engine cannot evaluate safely.
func (c *Config) Validate() error {
	if c.Data.MinBars < 20 {
		return fmt.Errorf("min_bars %d below indicator minimum 20", c.Data.MinBars)
	}
	if c.Data.MaxQuoteAge <= 0 {
		return fmt.Errorf("max_quote_age must be positive, got %s", c.Data.MaxQuoteAge)
	}

	sum := c.Stress.IVRankWeight + c.Stress.RecentMoveWeight + c.Stress.BreakWeight
	const tolerance = 0.001
	if sum < 1.0-tolerance || sum > 1.0+tolerance {
		return fmt.Errorf("stress weights sum %.3f outside tolerance of 1.0", sum)
	}

	if c.Risk.EarningsDangerDays < 0 || c.Risk.DividendRiskDays < 0 {
		return fmt.Errorf("risk windows cannot be negative")
	}
	return nil
}
