package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rustyeddy/candlebot/risk"
	"github.com/rustyeddy/candlebot/strategies"
	"gopkg.in/yaml.v3"
)

// Config represents the complete bot configuration
type Config struct {
	Strategy StrategyConfig `json:"strategy" yaml:"strategy"`
	Data     DataConfig     `json:"data" yaml:"data"`
	Live     LiveConfig     `json:"live" yaml:"live"`
	Journal  JournalConfig  `json:"journal" yaml:"journal"`
	Server   ServerConfig   `json:"server" yaml:"server"`
}

// StrategyConfig is fixed for the lifetime of a run.
type StrategyConfig struct {
	Name          string  `json:"name" yaml:"name"`
	Symbol        string  `json:"symbol" yaml:"symbol"`
	Timeframe     string  `json:"timeframe" yaml:"timeframe"`
	InitialEquity float64 `json:"initial_equity" yaml:"initial_equity"`

	StopLossPct     float64 `json:"sl_pct" yaml:"sl_pct"`
	TakeProfitPct   float64 `json:"tp_pct" yaml:"tp_pct"`
	TrailingStopPct float64 `json:"trailing_sl_pct,omitempty" yaml:"trailing_sl_pct,omitempty"`

	Fast      int     `json:"fast,omitempty" yaml:"fast,omitempty"`
	Slow      int     `json:"slow,omitempty" yaml:"slow,omitempty"`
	RSIPeriod int     `json:"rsi_period,omitempty" yaml:"rsi_period,omitempty"`
	RSILower  float64 `json:"rsi_lower,omitempty" yaml:"rsi_lower,omitempty"`
	RSIUpper  float64 `json:"rsi_upper,omitempty" yaml:"rsi_upper,omitempty"`
	ADXPeriod int     `json:"adx_period,omitempty" yaml:"adx_period,omitempty"`
	MinADX    float64 `json:"min_adx,omitempty" yaml:"min_adx,omitempty"`
}

// DataConfig controls where candles come from and where they are cached.
type DataConfig struct {
	Dir         string `json:"dir" yaml:"dir"`
	HistoryDays int    `json:"history_days" yaml:"history_days"`
	BaseURL     string `json:"base_url,omitempty" yaml:"base_url,omitempty"` // exchange REST endpoint
}

// LiveConfig controls the reconciliation loop.
type LiveConfig struct {
	Enabled  bool   `json:"enabled" yaml:"enabled"`
	Interval string `json:"interval" yaml:"interval"` // e.g. "10s"
	Backoff  string `json:"backoff" yaml:"backoff"`   // wait after a failed fetch
	Window   int    `json:"window" yaml:"window"`     // candles per fetch
}

// JournalConfig contains journaling parameters
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "csv", "sqlite" or "none"
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

type ServerConfig struct {
	Addr string `json:"addr" yaml:"addr"`
}

// RiskParams returns the exit thresholds.
func (s StrategyConfig) RiskParams() risk.Params {
	return risk.Params{
		StopLossPct:     s.StopLossPct,
		TakeProfitPct:   s.TakeProfitPct,
		TrailingStopPct: s.TrailingStopPct,
	}
}

// Params returns the strategy tunables.
func (s StrategyConfig) Params() strategies.Params {
	return strategies.Params{
		Fast:      s.Fast,
		Slow:      s.Slow,
		RSIPeriod: s.RSIPeriod,
		RSILower:  s.RSILower,
		RSIUpper:  s.RSIUpper,
		ADXPeriod: s.ADXPeriod,
		MinADX:    s.MinADX,
	}
}

// Build constructs the configured strategy.
func (s StrategyConfig) Build() (strategies.Strategy, error) {
	return strategies.ByName(s.Name, s.Params())
}

// IntervalDuration parses Interval.
func (l LiveConfig) IntervalDuration() (time.Duration, error) {
	return parseDuration("live.interval", l.Interval)
}

// BackoffDuration parses Backoff.
func (l LiveConfig) BackoffDuration() (time.Duration, error) {
	return parseDuration("live.backoff", l.Backoff)
}

func parseDuration(field, s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive", field)
	}
	return d, nil
}

// LoadFromFile loads configuration from a file (YAML, falling back to JSON)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		cfg = Default()
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// YAML returns the configuration as YAML, for recording alongside a run.
func (c *Config) YAML() []byte {
	b, err := yaml.Marshal(c)
	if err != nil {
		return nil
	}
	return b
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Strategy.Symbol == "" {
		return fmt.Errorf("strategy.symbol is required")
	}
	if c.Strategy.Timeframe == "" {
		return fmt.Errorf("strategy.timeframe is required")
	}
	if c.Strategy.InitialEquity <= 0 {
		return fmt.Errorf("strategy.initial_equity must be positive")
	}
	if err := c.Strategy.RiskParams().Validate(); err != nil {
		return fmt.Errorf("strategy.%w", err)
	}
	if _, err := c.Strategy.Build(); err != nil {
		return fmt.Errorf("strategy: %w", err)
	}
	if c.Data.Dir == "" {
		return fmt.Errorf("data.dir is required")
	}
	if c.Data.HistoryDays <= 0 {
		return fmt.Errorf("data.history_days must be positive")
	}
	if _, err := c.Live.IntervalDuration(); err != nil {
		return err
	}
	if _, err := c.Live.BackoffDuration(); err != nil {
		return err
	}
	if c.Live.Window < 2 {
		return fmt.Errorf("live.window must be at least 2")
	}
	switch c.Journal.Type {
	case "", "none":
	case "csv":
		if c.Journal.TradesFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal trades_file and equity_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'csv', 'sqlite' or 'none'")
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	sp := strategies.DefaultParams()
	rp := risk.DefaultParams()
	return &Config{
		Strategy: StrategyConfig{
			Name:          "trend-following",
			Symbol:        "BTC/USDT",
			Timeframe:     "1h",
			InitialEquity: 10000,
			StopLossPct:   rp.StopLossPct,
			TakeProfitPct: rp.TakeProfitPct,
			Fast:          sp.Fast,
			Slow:          sp.Slow,
			RSIPeriod:     sp.RSIPeriod,
			RSILower:      sp.RSILower,
			RSIUpper:      sp.RSIUpper,
		},
		Data: DataConfig{
			Dir:         "./data",
			HistoryDays: 30,
		},
		Live: LiveConfig{
			Enabled:  true,
			Interval: "10s",
			Backoff:  "10s",
			Window:   5,
		},
		Journal: JournalConfig{
			Type: "none",
		},
		Server: ServerConfig{
			Addr: ":5000",
		},
	}
}
