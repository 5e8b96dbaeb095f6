package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 5*time.Minute, cfg.Data.MaxQuoteAge.Std())
	assert.Equal(t, 20, cfg.Data.MinBars)
	assert.Equal(t, 7, cfg.Risk.EarningsDangerDays)
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesSubset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "optioneer.yaml")
	body := `
data:
  max_quote_age: 2m
risk:
  earnings_danger_days: 10
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Minute, cfg.Data.MaxQuoteAge.Std())
	assert.Equal(t, 10, cfg.Risk.EarningsDangerDays)
	// Untouched sections keep their defaults.
	assert.Equal(t, 20, cfg.Data.MinBars)
	assert.Equal(t, 0.4, cfg.Stress.IVRankWeight)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/optioneer.yaml")
	assert.Error(t, err)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "optioneer.yaml")
	require.NoError(t, os.WriteFile(path, []byte("data:\n  max_quote_age: sometimes\n"), 0o644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "invalid duration")
}

func TestValidateStressWeights(t *testing.T) {
	cfg := Default()
	cfg.Stress.IVRankWeight = 0.5
	err := cfg.Validate()
	assert.ErrorContains(t, err, "stress weights")

	// Within the rounding tolerance is fine.
	cfg = Default()
	cfg.Stress.IVRankWeight = 0.4004
	assert.NoError(t, cfg.Validate())
}

func TestValidateMinBars(t *testing.T) {
	cfg := Default()
	cfg.Data.MinBars = 10
	assert.ErrorContains(t, cfg.Validate(), "min_bars")
}
