package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"StockRanker/internal/calculator"
	"StockRanker/internal/strategy"
)

// Config holds all application configuration.
type Config struct {
	Symbols    []string `yaml:"symbols"`
	DataSource struct {
		Type          string  `yaml:"type"` // csv, yahoo or mock
		CSVDir        string  `yaml:"csv_dir"`
		YahooRange    string  `yaml:"yahoo_range"`
		YahooSuffix   string  `yaml:"yahoo_suffix"`
		RatePerSecond float64 `yaml:"rate_per_second"`
		Burst         int     `yaml:"burst"`
		Concurrency   int     `yaml:"concurrency"`
	} `yaml:"data_source"`
	Indicators struct {
		RSIWindow       int     `yaml:"rsi_window"`
		MACDShort       int     `yaml:"macd_short"`
		MACDLong        int     `yaml:"macd_long"`
		MACDSignal      int     `yaml:"macd_signal"`
		BollingerWindow int     `yaml:"bollinger_window"`
		BollingerK      float64 `yaml:"bollinger_k"`
		SARStep         float64 `yaml:"sar_step"`
		SARMaxStep      float64 `yaml:"sar_max_step"`
	} `yaml:"indicators"`
	Scoring struct {
		Mode    string `yaml:"mode"`
		TopN    int    `yaml:"top_n"`
		Workers int    `yaml:"workers"`
	} `yaml:"scoring"`
	Report struct {
		HTMLPath string `yaml:"html_path"`
	} `yaml:"report"`
	Cache struct {
		RedisAddr string        `yaml:"redis_addr"`
		TTL       time.Duration `yaml:"ttl"`
	} `yaml:"cache"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Schedule struct {
		DailyCron string `yaml:"daily_cron"`
	} `yaml:"schedule"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// DefaultSymbols is the universe used when none is configured.
var DefaultSymbols = []string{
	"ADANIENT", "AXISBANK", "BHARTIARTL", "CIPLA", "HINDALCO", "HINDUNILVR", "INFOSYS",
	"ITC", "MARUTI", "SBIN", "SUNPHARMA", "TATASTEEL", "WIPRO",
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("SYMBOLS"); v != "" {
		cfg.Symbols = splitList(v)
	}
	if v := os.Getenv("DATA_SOURCE"); v != "" {
		cfg.DataSource.Type = v
	}
	if v := os.Getenv("CSV_DIR"); v != "" {
		cfg.DataSource.CSVDir = v
	}
	if v := os.Getenv("SCORING_MODE"); v != "" {
		cfg.Scoring.Mode = v
	}
	if v := os.Getenv("TOP_N"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Scoring.TopN = n
		}
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Cache.RedisAddr = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("CRON_DAILY"); v != "" {
		cfg.Schedule.DailyCron = v
	}
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if len(c.Symbols) == 0 {
		c.Symbols = append([]string(nil), DefaultSymbols...)
	}
	if c.DataSource.Type == "" {
		c.DataSource.Type = "csv"
	}
	if c.DataSource.CSVDir == "" {
		c.DataSource.CSVDir = "data"
	}
	if c.DataSource.YahooRange == "" {
		c.DataSource.YahooRange = "1y"
	}
	if c.DataSource.RatePerSecond == 0 {
		c.DataSource.RatePerSecond = 2
	}
	if c.DataSource.Burst == 0 {
		c.DataSource.Burst = 1
	}
	if c.DataSource.Concurrency == 0 {
		c.DataSource.Concurrency = 4
	}

	ind := &c.Indicators
	if ind.RSIWindow == 0 {
		ind.RSIWindow = calculator.DefaultRSIWindow
	}
	if ind.MACDShort == 0 {
		ind.MACDShort = calculator.DefaultMACDShort
	}
	if ind.MACDLong == 0 {
		ind.MACDLong = calculator.DefaultMACDLong
	}
	if ind.MACDSignal == 0 {
		ind.MACDSignal = calculator.DefaultMACDSignal
	}
	if ind.BollingerWindow == 0 {
		ind.BollingerWindow = calculator.DefaultBollingerWindow
	}
	if ind.BollingerK == 0 {
		ind.BollingerK = calculator.DefaultBollingerK
	}
	if ind.SARStep == 0 {
		ind.SARStep = calculator.DefaultSARStep
	}
	if ind.SARMaxStep == 0 {
		ind.SARMaxStep = calculator.DefaultSARMaxStep
	}

	if c.Scoring.Mode == "" {
		c.Scoring.Mode = string(strategy.ModeParity)
	}
	if c.Scoring.TopN == 0 {
		c.Scoring.TopN = strategy.DefaultTopN
	}
	if c.Scoring.Workers == 0 {
		c.Scoring.Workers = 4
	}
	if c.Report.HTMLPath == "" {
		c.Report.HTMLPath = "stock_analysis.html"
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 12 * time.Hour
	}
	if c.Schedule.DailyCron == "" {
		c.Schedule.DailyCron = "0 30 18 * * 1-5"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// StrategyParams converts the indicator and scoring settings.
func (c *Config) StrategyParams() strategy.Params {
	ind := c.Indicators
	return strategy.Params{
		RSIWindow:       ind.RSIWindow,
		MACDShort:       ind.MACDShort,
		MACDLong:        ind.MACDLong,
		MACDSignal:      ind.MACDSignal,
		BollingerWindow: ind.BollingerWindow,
		BollingerK:      ind.BollingerK,
		SAR:             calculator.SARParams{Step: ind.SARStep, MaxStep: ind.SARMaxStep},
		Mode:            strategy.Mode(c.Scoring.Mode),
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch c.DataSource.Type {
	case "csv", "yahoo", "mock":
	default:
		return fmt.Errorf("data_source.type must be csv, yahoo or mock, got %q", c.DataSource.Type)
	}
	if len(c.Symbols) == 0 {
		return fmt.Errorf("symbols must not be empty")
	}
	if c.Scoring.TopN < 0 {
		return fmt.Errorf("scoring.top_n must not be negative")
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	if err := c.StrategyParams().Validate(); err != nil {
		return fmt.Errorf("indicators: %w", err)
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
