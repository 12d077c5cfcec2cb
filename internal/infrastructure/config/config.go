package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"
)

type FeedConfig struct {
	Enabled   bool   `toml:"enabled"`
	WsURL     string `toml:"ws_url"`
	Subscribe string `toml:"subscribe"`
}

type ExchangeConfig struct {
	Spot    FeedConfig `toml:"spot"`
	Futures FeedConfig `toml:"futures"`
}

type Config struct {
	App struct {
		LogLevel string `toml:"log_level"`
	} `toml:"app"`

	Pipeline struct {
		Buffer   int    `toml:"buffer"`
		Overflow string `toml:"overflow"` // "block" or "drop_oldest"
	} `toml:"pipeline"`

	Diff struct {
		IntervalSec int    `toml:"interval_sec"`
		Threshold   string `toml:"threshold"` // decimal string, e.g. "0.5"
		Absolute    bool   `toml:"absolute"`
	} `toml:"diff"`

	Exchange struct {
		Binance ExchangeConfig `toml:"binance"`
		Bybit   ExchangeConfig `toml:"bybit"`
		Kucoin  ExchangeConfig `toml:"kucoin"`
	} `toml:"exchange"`

	SQLite struct {
		Enabled bool   `toml:"enabled"`
		Path    string `toml:"path"`
	} `toml:"sqlite"`

	Postgres struct {
		Enabled bool   `toml:"enabled"`
		DSN     string `toml:"dsn"`
	} `toml:"postgres"`

	Redis struct {
		Enabled       bool   `toml:"enabled"`
		Addr          string `toml:"addr"`
		Password      string `toml:"password"`
		DB            int    `toml:"db"`
		Prefix        string `toml:"prefix"`
		TTLSeconds    int    `toml:"ttl_seconds"`
		SignalStream  string `toml:"signal_stream"`
		SignalChannel string `toml:"signal_channel"`
	} `toml:"redis"`
}

func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.App.LogLevel == "" {
		cfg.App.LogLevel = "info"
	}
	if cfg.Pipeline.Buffer <= 0 {
		cfg.Pipeline.Buffer = 1024
	}
	if cfg.Pipeline.Overflow == "" {
		cfg.Pipeline.Overflow = "block"
	}
	if cfg.Diff.IntervalSec <= 0 {
		cfg.Diff.IntervalSec = 5
	}
	if cfg.Diff.Threshold == "" {
		cfg.Diff.Threshold = "0.5"
	}
	if cfg.Redis.Prefix == "" {
		cfg.Redis.Prefix = "arbdiff"
	}
	if cfg.SQLite.Enabled && cfg.SQLite.Path == "" {
		cfg.SQLite.Path = "data/arbdiff.db"
	}
}

// ThresholdDecimal parses the configured divergence threshold.
func (c *Config) ThresholdDecimal() (decimal.Decimal, error) {
	return decimal.NewFromString(c.Diff.Threshold)
}

// EnabledFeed identifies one enabled (exchange, market) feed entry.
type EnabledFeed struct {
	Exchange string
	Market   string
	Feed     FeedConfig
}

func (c *Config) EnabledFeeds() []EnabledFeed {
	var out []EnabledFeed
	add := func(ex, mk string, fc FeedConfig) {
		if fc.Enabled {
			out = append(out, EnabledFeed{Exchange: ex, Market: mk, Feed: fc})
		}
	}
	add("binance", "spot", c.Exchange.Binance.Spot)
	add("binance", "futures", c.Exchange.Binance.Futures)
	add("bybit", "spot", c.Exchange.Bybit.Spot)
	add("bybit", "futures", c.Exchange.Bybit.Futures)
	add("kucoin", "spot", c.Exchange.Kucoin.Spot)
	add("kucoin", "futures", c.Exchange.Kucoin.Futures)
	return out
}

func validate(cfg *Config) error {
	switch cfg.Pipeline.Overflow {
	case "block", "drop_oldest":
	default:
		return fmt.Errorf("pipeline.overflow must be block or drop_oldest, got %q", cfg.Pipeline.Overflow)
	}

	th, err := cfg.ThresholdDecimal()
	if err != nil {
		return fmt.Errorf("diff.threshold %q: %w", cfg.Diff.Threshold, err)
	}
	if !th.IsPositive() {
		return errors.New("diff.threshold must be > 0")
	}

	feeds := cfg.EnabledFeeds()
	if len(feeds) == 0 {
		return errors.New("no exchange feeds enabled")
	}
	for _, f := range feeds {
		if strings.TrimSpace(f.Feed.WsURL) == "" {
			return fmt.Errorf("exchange.%s.%s.ws_url empty but enabled", f.Exchange, f.Market)
		}
	}

	if cfg.SQLite.Enabled && cfg.Postgres.Enabled {
		return errors.New("enable exactly one of sqlite or postgres")
	}
	if !cfg.SQLite.Enabled && !cfg.Postgres.Enabled {
		return errors.New("no storage backend enabled")
	}
	if cfg.Postgres.Enabled && strings.TrimSpace(cfg.Postgres.DSN) == "" {
		return errors.New("postgres.dsn empty but enabled")
	}
	if cfg.Redis.Enabled && strings.TrimSpace(cfg.Redis.Addr) == "" {
		return errors.New("redis.addr empty but enabled")
	}
	return nil
}
