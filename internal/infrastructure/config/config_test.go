package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
[symbols]
watched = ["btc", "ETH", "btc", ""]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.App.RefreshSecs != 30 || cfg.App.SnapshotEveryMin != 5 {
		t.Fatalf("app defaults not applied: %+v", cfg.App)
	}
	if cfg.Symbols.Quote != "USDT" {
		t.Fatalf("quote = %s, want USDT default", cfg.Symbols.Quote)
	}
	if cfg.Exchange.Binance.RestURL == "" || cfg.Exchange.Binance.WsURL == "" {
		t.Fatalf("binance URL defaults missing: %+v", cfg.Exchange.Binance)
	}
	if cfg.Stream.ReconnectBaseSecs != 5 || cfg.Stream.MaxReconnects != 5 {
		t.Fatalf("stream defaults not applied: %+v", cfg.Stream)
	}

	// watched list normalized: upper-cased, deduped, blanks dropped
	want := []string{"BTC", "ETH"}
	if len(cfg.Symbols.Watched) != len(want) {
		t.Fatalf("watched = %v, want %v", cfg.Symbols.Watched, want)
	}
	for i := range want {
		if cfg.Symbols.Watched[i] != want[i] {
			t.Fatalf("watched[%d] = %s, want %s", i, cfg.Symbols.Watched[i], want[i])
		}
	}
}

func TestLoadRejectsEmptyWatchList(t *testing.T) {
	path := writeConfig(t, `
[symbols]
watched = []
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for empty watch list")
	}
}

func TestLoadRejectsAuthWithoutJWTSecret(t *testing.T) {
	path := writeConfig(t, `
[symbols]
watched = ["BTC"]

[auth]
postgres_dsn = "postgres://localhost/folio"
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for auth dsn without jwt secret")
	}
}

func TestLoadRejectsOperatorWithoutAuthStore(t *testing.T) {
	path := writeConfig(t, `
[symbols]
watched = ["BTC"]

[auth]
email = "ops@example.com"
password = "hunter2"
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for auth email without dsn")
	}
}

func TestLoadRejectsEnabledBackendWithoutTarget(t *testing.T) {
	path := writeConfig(t, `
[symbols]
watched = ["BTC"]

[sqlite]
enabled = true
path = ""
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for enabled sqlite without path")
	}
}
