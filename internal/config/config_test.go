package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockRanker/internal/strategy"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultSymbols, cfg.Symbols)
	assert.Equal(t, "csv", cfg.DataSource.Type)
	assert.Equal(t, 14, cfg.Indicators.RSIWindow)
	assert.Equal(t, 0.2, cfg.Indicators.SARMaxStep)
	assert.Equal(t, 4, cfg.Scoring.TopN)
	assert.Equal(t, 12*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, strategy.DefaultParams(), cfg.StrategyParams())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
symbols: [ITC, SBIN]
data_source:
  type: yahoo
  yahoo_suffix: .NS
indicators:
  rsi_window: 10
scoring:
  mode: normalized
  top_n: 2
cache:
  ttl: 30m
`), 0o644))
	t.Setenv("TOP_N", "3")
	t.Setenv("SYMBOLS", "WIPRO, CIPLA")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"WIPRO", "CIPLA"}, cfg.Symbols)
	assert.Equal(t, "yahoo", cfg.DataSource.Type)
	assert.Equal(t, ".NS", cfg.DataSource.YahooSuffix)
	assert.Equal(t, 3, cfg.Scoring.TopN)
	assert.Equal(t, 30*time.Minute, cfg.Cache.TTL)

	p := cfg.StrategyParams()
	assert.Equal(t, 10, p.RSIWindow)
	assert.Equal(t, strategy.ModeNormalized, p.Mode)
	assert.Equal(t, 26, p.MACDLong)
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("symbols: [unclosed"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"unknown source", func(c *Config) { c.DataSource.Type = "ftp" }},
		{"unknown mode", func(c *Config) { c.Scoring.Mode = "zscore" }},
		{"negative top", func(c *Config) { c.Scoring.TopN = -1 }},
		{"half telegram", func(c *Config) { c.Telegram.BotToken = "x" }},
		{"bad sar", func(c *Config) { c.Indicators.SARMaxStep = 0.001 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
			require.NoError(t, err)
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
