package binance

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cryptofolio/internal/application"
	"cryptofolio/internal/infrastructure/exchange"
)

func TestTicker24h(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/ticker/24hr" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("symbol"); got != "BTCUSDT" {
			t.Errorf("symbol = %s, want BTCUSDT", got)
		}
		w.Write([]byte(`{"symbol":"BTCUSDT","lastPrice":"50000.5","priceChangePercent":"2.4","volume":"1200","quoteVolume":"60000000"}`))
	}))
	defer srv.Close()

	client := NewMarketClient(srv.URL, time.Second, 100)
	ticker, err := client.Ticker24h(context.Background(), "BTCUSDT")
	if err != nil {
		t.Fatal(err)
	}
	if ticker.LastPrice != 50000.5 || ticker.ChangePct != 2.4 {
		t.Fatalf("unexpected ticker: %+v", ticker)
	}
}

func TestAllPrices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"symbol":"BTCUSDT","price":"50000"},{"symbol":"ETHUSDT","price":"3000"}]`))
	}))
	defer srv.Close()

	client := NewMarketClient(srv.URL, time.Second, 100)
	prices, err := client.AllPrices(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(prices) != 2 {
		t.Fatalf("len = %d, want 2", len(prices))
	}
	if prices[0].Symbol != "BTCUSDT" || prices[0].Price != 50000 {
		t.Fatalf("unexpected row: %+v", prices[0])
	}
}

func TestRemoteErrorSurfacesMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":-1121,"msg":"Invalid symbol."}`))
	}))
	defer srv.Close()

	client := NewMarketClient(srv.URL, time.Second, 100)
	_, err := client.Ticker24h(context.Background(), "NOPE")
	if err == nil {
		t.Fatal("expected error")
	}

	var apiErr *exchange.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type = %T, want *exchange.APIError", err)
	}
	if apiErr.Status != http.StatusBadRequest || apiErr.Message != "Invalid symbol." {
		t.Fatalf("unexpected APIError: %+v", apiErr)
	}
}

func TestSlowResponseSurfacesTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()
	defer close(release)

	client := NewMarketClient(srv.URL, 30*time.Millisecond, 100)
	_, err := client.AllPrices(context.Background())
	if err == nil {
		t.Fatal("expected error from slow server")
	}
	if !errors.Is(err, application.ErrRequestTimeout) {
		t.Fatalf("error = %v, want ErrRequestTimeout kind", err)
	}
}

func TestSignedRequestSetsHeaderAndSignature(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-MBX-APIKEY"); got != "test-key" {
			t.Errorf("api key header = %s", got)
		}
		q := r.URL.Query()
		if q.Get("timestamp") == "" || q.Get("signature") == "" {
			t.Errorf("missing timestamp or signature: %s", r.URL.RawQuery)
		}
		w.Write([]byte(`{"balances":[]}`))
	}))
	defer srv.Close()

	client := NewAPIClient("test-key", "test-secret", srv.URL, time.Second)
	if _, err := client.signedRequest(context.Background(), http.MethodGet, "/api/v3/account", nil); err != nil {
		t.Fatal(err)
	}
}
