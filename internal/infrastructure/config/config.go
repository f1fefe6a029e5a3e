package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	App struct {
		Addr     string `toml:"addr"`
		LogLevel string `toml:"log_level"`
	} `toml:"app"`

	// initial watch lists, as coins (BTC, not BTCUSDT)
	Symbols struct {
		Spot    []string `toml:"spot"`
		Futures []string `toml:"futures"`
	} `toml:"symbols"`

	Exchange struct {
		MEXC struct {
			SpotWsURL         string `toml:"spot_ws_url"`
			FuturesWsURL      string `toml:"futures_ws_url"`
			SpotRestURL       string `toml:"spot_rest_url"`
			FuturesRestURL    string `toml:"futures_rest_url"`
			SubscribeDelayMs  int    `toml:"subscribe_delay_ms"`
			ReconnectDelaySec int    `toml:"reconnect_delay_sec"`
			PingIntervalSec   int    `toml:"ping_interval_sec"`
			RestTimeoutSec    int    `toml:"rest_timeout_sec"`
		} `toml:"mexc"`
	} `toml:"exchange"`

	Hub struct {
		SendBuffer      int `toml:"send_buffer"`
		WriteTimeoutSec int `toml:"write_timeout_sec"`
		PingIntervalSec int `toml:"ping_interval_sec"`
	} `toml:"hub"`

	Mirror struct {
		QueueSize int `toml:"queue_size"`
	} `toml:"mirror"`

	// periodic console summary; every_sec < 0 disables it
	Report struct {
		EverySec int `toml:"every_sec"`
		Top      int `toml:"top"`
	} `toml:"report"`

	Redis struct {
		Enabled    bool   `toml:"enabled"`
		Addr       string `toml:"addr"`
		Password   string `toml:"password"`
		DB         int    `toml:"db"`
		Prefix     string `toml:"prefix"`
		TTLSeconds int    `toml:"ttl_seconds"`
		PriceChan  string `toml:"price_channel"`
	} `toml:"redis"`

	SQLite struct {
		Enabled bool   `toml:"enabled"`
		Path    string `toml:"path"`
	} `toml:"sqlite"`

	Postgres struct {
		Enabled bool   `toml:"enabled"`
		DSN     string `toml:"dsn"`
	} `toml:"postgres"`
}

var DefaultSpotWatchList = []string{
	"BTC", "ETH", "SOL", "BNB", "XRP", "DOGE", "ADA", "AVAX", "DOT", "LINK",
	"MATIC", "UNI", "ATOM", "LTC", "ARB", "NEAR", "OP", "SUI", "APT", "TRX",
	"INJ", "FTM", "SAND", "MANA", "AXS", "GALA", "ENJ", "CHZ", "FLOW", "ALGO",
	"AAVE", "MKR", "SNX", "CRV", "1INCH", "LDO", "RPL", "FXS", "BLUR", "PEPE",
	"SHIB", "FLOKI", "BONE", "ELON", "BABYDOGE",
}

var DefaultFuturesWatchList = []string{
	"BTC", "ETH", "SOL", "BNB", "XRP", "DOGE", "ADA", "AVAX", "DOT", "LINK",
	"MATIC", "UNI", "ATOM", "LTC", "ARB", "NEAR", "OP", "SUI", "APT", "TRX",
	"INJ", "FTM", "SAND", "MANA", "AXS", "GALA", "ENJ", "CHZ", "FLOW", "ALGO",
	"AAVE", "MKR", "SNX", "CRV", "1INCH", "LDO", "PEPE", "SHIB", "FLOKI",
}

// Load reads a TOML file. An empty path yields the defaults. Environment
// overrides (PORT, REDIS_ADDR, POSTGRES_DSN) are applied after the file.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	}
	applyEnv(&cfg)
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		cfg.App.Addr = ":" + port
	}
	if addr := strings.TrimSpace(os.Getenv("REDIS_ADDR")); addr != "" {
		cfg.Redis.Addr = addr
	}
	if dsn := strings.TrimSpace(os.Getenv("POSTGRES_DSN")); dsn != "" {
		cfg.Postgres.DSN = dsn
	}
}

func applyDefaults(cfg *Config) {
	if cfg.App.Addr == "" {
		cfg.App.Addr = ":8000"
	}
	if cfg.App.LogLevel == "" {
		cfg.App.LogLevel = "info"
	}
	if len(cfg.Symbols.Spot) == 0 {
		cfg.Symbols.Spot = DefaultSpotWatchList
	}
	if len(cfg.Symbols.Futures) == 0 {
		cfg.Symbols.Futures = DefaultFuturesWatchList
	}

	m := &cfg.Exchange.MEXC
	if m.SpotWsURL == "" {
		m.SpotWsURL = "wss://wbs.mexc.com/ws"
	}
	if m.FuturesWsURL == "" {
		m.FuturesWsURL = "wss://contract.mexc.com/edge"
	}
	if m.SpotRestURL == "" {
		m.SpotRestURL = "https://api.mexc.com"
	}
	if m.FuturesRestURL == "" {
		m.FuturesRestURL = "https://contract.mexc.com"
	}
	if m.SubscribeDelayMs <= 0 {
		m.SubscribeDelayMs = 30
	}
	if m.ReconnectDelaySec <= 0 {
		m.ReconnectDelaySec = 5
	}
	if m.PingIntervalSec <= 0 {
		m.PingIntervalSec = 15
	}
	if m.RestTimeoutSec <= 0 {
		m.RestTimeoutSec = 10
	}

	if cfg.Hub.SendBuffer <= 0 {
		cfg.Hub.SendBuffer = 256
	}
	if cfg.Hub.WriteTimeoutSec <= 0 {
		cfg.Hub.WriteTimeoutSec = 10
	}
	if cfg.Hub.PingIntervalSec <= 0 {
		cfg.Hub.PingIntervalSec = 30
	}
	if cfg.Mirror.QueueSize <= 0 {
		cfg.Mirror.QueueSize = 1024
	}
	if cfg.Report.EverySec == 0 {
		cfg.Report.EverySec = 60
	}
	if cfg.Report.Top <= 0 {
		cfg.Report.Top = 10
	}

	if cfg.Redis.Prefix == "" {
		cfg.Redis.Prefix = "mxarb"
	}
	if cfg.SQLite.Path == "" {
		cfg.SQLite.Path = "data/mxarb.db"
	}
}

func validate(cfg *Config) error {
	cfg.Symbols.Spot = normalizeSymbols(cfg.Symbols.Spot)
	cfg.Symbols.Futures = normalizeSymbols(cfg.Symbols.Futures)
	if len(cfg.Symbols.Spot) == 0 && len(cfg.Symbols.Futures) == 0 {
		return errors.New("symbols.spot and symbols.futures are both empty")
	}

	if cfg.Redis.Enabled && strings.TrimSpace(cfg.Redis.Addr) == "" {
		return errors.New("redis.addr empty but enabled")
	}
	if cfg.Postgres.Enabled && strings.TrimSpace(cfg.Postgres.DSN) == "" {
		return errors.New("postgres.dsn empty but enabled")
	}
	return nil
}

// ReportEvery is zero when the console summary is disabled.
func (c *Config) ReportEvery() time.Duration {
	if c.Report.EverySec < 0 {
		return 0
	}
	return time.Duration(c.Report.EverySec) * time.Second
}

func normalizeSymbols(in []string) []string {
	out := make([]string, 0, len(in))
	seen := map[string]struct{}{}
	for _, s := range in {
		u := strings.ToUpper(strings.TrimSpace(s))
		if u == "" {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}

func (c *Config) SubscribeDelay() time.Duration {
	return time.Duration(c.Exchange.MEXC.SubscribeDelayMs) * time.Millisecond
}

func (c *Config) ReconnectDelay() time.Duration {
	return time.Duration(c.Exchange.MEXC.ReconnectDelaySec) * time.Second
}

func (c *Config) PingInterval() time.Duration {
	return time.Duration(c.Exchange.MEXC.PingIntervalSec) * time.Second
}

func (c *Config) RestTimeout() time.Duration {
	return time.Duration(c.Exchange.MEXC.RestTimeoutSec) * time.Second
}
