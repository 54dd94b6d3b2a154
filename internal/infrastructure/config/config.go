package config

import (
	"errors"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	App struct {
		RefreshSecs        int    `toml:"refresh_secs"`
		SnapshotEveryMin   int    `toml:"snapshot_every_min"`
		RequestTimeoutSecs int    `toml:"request_timeout_secs"`
		RequestsPerSecond  int    `toml:"requests_per_second"`
		LogLevel           string `toml:"log_level"`
	} `toml:"app"`

	Symbols struct {
		Watched []string `toml:"watched"`
		Quote   string   `toml:"quote"`
	} `toml:"symbols"`

	Exchange struct {
		Binance struct {
			RestURL string `toml:"rest_url"`
			WsURL   string `toml:"ws_url"`
		} `toml:"binance"`

		Coinbase struct {
			RestURL string `toml:"rest_url"`
		} `toml:"coinbase"`
	} `toml:"exchange"`

	Stream struct {
		ReconnectBaseSecs int `toml:"reconnect_base_secs"`
		MaxReconnects     int `toml:"max_reconnects"`
	} `toml:"stream"`

	Proxy struct {
		FunctionsURL string `toml:"functions_url"`
	} `toml:"proxy"`

	Auth struct {
		PostgresDSN     string `toml:"postgres_dsn"`
		JWTSecret       string `toml:"jwt_secret"`
		SessionTTLMins  int    `toml:"session_ttl_mins"`
		Email           string `toml:"email"`
		Password        string `toml:"password"`
		RegisterMissing bool   `toml:"register_missing"`
	} `toml:"auth"`

	Redis struct {
		Enabled    bool   `toml:"enabled"`
		Addr       string `toml:"addr"`
		Password   string `toml:"password"`
		DB         int    `toml:"db"`
		Prefix     string `toml:"prefix"`
		TTLSeconds int    `toml:"ttl_seconds"`
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
	if cfg.App.RefreshSecs <= 0 {
		cfg.App.RefreshSecs = 30
	}
	if cfg.App.SnapshotEveryMin <= 0 {
		cfg.App.SnapshotEveryMin = 5
	}
	if cfg.App.RequestTimeoutSecs <= 0 {
		cfg.App.RequestTimeoutSecs = 5
	}
	if cfg.App.RequestsPerSecond <= 0 {
		cfg.App.RequestsPerSecond = 10
	}
	if cfg.Symbols.Quote == "" {
		cfg.Symbols.Quote = "USDT"
	}
	if cfg.Exchange.Binance.RestURL == "" {
		cfg.Exchange.Binance.RestURL = "https://api.binance.com"
	}
	if cfg.Exchange.Binance.WsURL == "" {
		cfg.Exchange.Binance.WsURL = "wss://stream.binance.com:9443"
	}
	if cfg.Exchange.Coinbase.RestURL == "" {
		cfg.Exchange.Coinbase.RestURL = "https://api.pro.coinbase.com"
	}
	if cfg.Stream.ReconnectBaseSecs <= 0 {
		cfg.Stream.ReconnectBaseSecs = 5
	}
	if cfg.Stream.MaxReconnects <= 0 {
		cfg.Stream.MaxReconnects = 5
	}
	if cfg.Auth.SessionTTLMins <= 0 {
		cfg.Auth.SessionTTLMins = 60
	}
}

func validate(cfg *Config) error {
	cfg.Symbols.Watched = normalizeSymbols(cfg.Symbols.Watched)
	if len(cfg.Symbols.Watched) == 0 {
		return errors.New("symbols.watched is empty")
	}
	cfg.Symbols.Quote = strings.ToUpper(strings.TrimSpace(cfg.Symbols.Quote))

	if cfg.Redis.Enabled && strings.TrimSpace(cfg.Redis.Addr) == "" {
		return errors.New("redis.addr empty but enabled")
	}
	if cfg.SQLite.Enabled && strings.TrimSpace(cfg.SQLite.Path) == "" {
		return errors.New("sqlite.path empty but enabled")
	}
	if cfg.Postgres.Enabled && strings.TrimSpace(cfg.Postgres.DSN) == "" {
		return errors.New("postgres.dsn empty but enabled")
	}
	// sessions must never be signed with an empty HMAC key
	if cfg.Auth.PostgresDSN != "" && strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		return errors.New("auth.jwt_secret empty but auth.postgres_dsn set")
	}
	if cfg.Auth.Email != "" && cfg.Auth.PostgresDSN == "" {
		return errors.New("auth.email set but auth.postgres_dsn empty")
	}
	return nil
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
