package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockRanker/internal/collector"
	"StockRanker/internal/config"
)

func loadDefaults(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	return cfg
}

func TestRunFlags_Apply(t *testing.T) {
	cfg := loadDefaults(t)
	cfg.Telegram.BotToken, cfg.Telegram.ChatID = "t", "c"

	cmd := runCmd(func() *config.Config { return cfg })
	require.NoError(t, cmd.ParseFlags([]string{"--top", "2", "--mode", "normalized", "--demo"}))

	var flags runFlags
	flags.top, _ = cmd.Flags().GetInt("top")
	flags.mode, _ = cmd.Flags().GetString("mode")
	flags.demo, _ = cmd.Flags().GetBool("demo")
	require.NoError(t, flags.apply(cmd, cfg))

	assert.Equal(t, 2, cfg.Scoring.TopN)
	assert.Equal(t, "normalized", cfg.Scoring.Mode)
	assert.Equal(t, "mock", cfg.DataSource.Type)
	assert.Equal(t, "stock_analysis.html", cfg.Report.HTMLPath, "unset flag keeps config value")
	assert.Empty(t, cfg.Telegram.BotToken, "telegram stays off without --notify")
}

func TestRunFlags_ApplyRejectsBadMode(t *testing.T) {
	cfg := loadDefaults(t)
	cmd := runCmd(func() *config.Config { return cfg })
	require.NoError(t, cmd.ParseFlags([]string{"--mode", "weighted"}))

	err := runFlags{mode: "weighted"}.apply(cmd, cfg)
	assert.Error(t, err)
}

func TestBuildFetcher(t *testing.T) {
	cfg := loadDefaults(t)

	cfg.DataSource.Type = "csv"
	f, err := (&app{cfg: cfg}).buildFetcher()
	require.NoError(t, err)
	assert.IsType(t, &collector.CSVFetcher{}, f)

	cfg.DataSource.Type = "yahoo"
	f, err = (&app{cfg: cfg}).buildFetcher()
	require.NoError(t, err)
	assert.IsType(t, &collector.GuardedFetcher{}, f)

	cfg.Cache.RedisAddr = "127.0.0.1:6379"
	a := &app{cfg: cfg}
	f, err = a.buildFetcher()
	require.NoError(t, err)
	assert.IsType(t, &collector.CachedFetcher{}, f)
	assert.Equal(t, "yahoo", f.Name())
	require.NotNil(t, a.redis)
	a.redis.Close()

	cfg.DataSource.Type = "ftp"
	_, err = (&app{cfg: cfg}).buildFetcher()
	assert.Error(t, err)
}

func TestRunCommand_Demo(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("symbols: [AAA, BBB, CCC]\nlog:\n  level: error\n"), 0o644))
	htmlPath := filepath.Join(dir, "report.html")

	root := newRootCmd()
	root.SetArgs([]string{"--config", cfgPath, "run", "--demo", "--html", htmlPath})
	require.NoError(t, root.Execute())

	data, err := os.ReadFile(htmlPath)
	require.NoError(t, err)
	for _, sym := range []string{"AAA", "BBB", "CCC"} {
		assert.Contains(t, string(data), "Technical Indicators for "+sym)
	}
}
