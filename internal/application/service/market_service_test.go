package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"cryptofolio/internal/application"
	"cryptofolio/internal/application/port"
)

type mockConverter struct{}

func (mockConverter) Symbol2Coin(symbol string) string {
	return strings.TrimSuffix(strings.ToUpper(symbol), "USDT")
}
func (mockConverter) Coin2Symbol(coin string) string { return strings.ToUpper(coin) + "USDT" }
func (mockConverter) SymbolSuffix() string           { return "USDT" }

type mockMarketAPI struct {
	tickers map[string]port.Ticker24h
	all     []port.Ticker24h
	fail    error
}

func (m *mockMarketAPI) Ticker24h(ctx context.Context, symbol string) (port.Ticker24h, error) {
	if m.fail != nil {
		return port.Ticker24h{}, m.fail
	}
	t, ok := m.tickers[symbol]
	if !ok {
		return port.Ticker24h{}, fmt.Errorf("unknown symbol %s", symbol)
	}
	return t, nil
}

func (m *mockMarketAPI) AllPrices(ctx context.Context) ([]port.SymbolPrice, error) {
	if m.fail != nil {
		return nil, m.fail
	}
	out := make([]port.SymbolPrice, 0, len(m.tickers))
	for sym, t := range m.tickers {
		out = append(out, port.SymbolPrice{Symbol: sym, Price: t.LastPrice})
	}
	return out, nil
}

func (m *mockMarketAPI) AllTickers(ctx context.Context) ([]port.Ticker24h, error) {
	if m.fail != nil {
		return nil, m.fail
	}
	return m.all, nil
}

func TestGetPricesPreservesInputOrder(t *testing.T) {
	api := &mockMarketAPI{tickers: map[string]port.Ticker24h{
		"BTCUSDT": {Symbol: "BTCUSDT", LastPrice: 100, ChangePct: 5, Volume: 10, QuoteVolume: 1000},
		"ETHUSDT": {Symbol: "ETHUSDT", LastPrice: 50, ChangePct: -2, Volume: 20, QuoteVolume: 900},
	}}
	svc := NewMarketService(api, mockConverter{})

	records, err := svc.GetPrices(context.Background(), []string{"BTC", "ETH"})
	if err != nil {
		t.Fatalf("GetPrices failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Symbol != "BTC" || records[1].Symbol != "ETH" {
		t.Fatalf("input order not preserved: %v", records)
	}
	if records[0].Change24h != 5 || records[1].Change24h != -2 {
		t.Fatalf("unexpected 24h changes: %+v", records)
	}
	if records[0].Price != 100 || records[1].Price != 50 {
		t.Fatalf("unexpected prices: %+v", records)
	}
	if records[0].Rank != 1 || records[1].Rank != 2 {
		t.Fatalf("unexpected ranks: %+v", records)
	}
	if records[0].Change1h != 5.0/24 {
		t.Fatalf("expected 1h approximation change24h/24, got %v", records[0].Change1h)
	}
}

func TestGetPricesFailsWhole(t *testing.T) {
	api := &mockMarketAPI{
		tickers: map[string]port.Ticker24h{
			"BTCUSDT": {Symbol: "BTCUSDT", LastPrice: 100},
		},
	}
	svc := NewMarketService(api, mockConverter{})

	// ETH is unknown: the whole batch must abort, no partial result
	records, err := svc.GetPrices(context.Background(), []string{"BTC", "ETH"})
	if err == nil {
		t.Fatal("expected error for unknown symbol")
	}
	if !errors.Is(err, application.ErrDataUnavailable) {
		t.Fatalf("expected ErrDataUnavailable, got %v", err)
	}
	if records != nil {
		t.Fatalf("expected no partial results, got %v", records)
	}
}

func moversFixture() []port.Ticker24h {
	all := make([]port.Ticker24h, 0, 40)
	for i := 0; i < 30; i++ {
		all = append(all, port.Ticker24h{
			Symbol:    fmt.Sprintf("C%02dUSDT", i),
			LastPrice: 1,
			ChangePct: float64(i) - 15, // -15 .. +14
		})
	}
	// non-quote pairs must be filtered out
	all = append(all, port.Ticker24h{Symbol: "BTCETH", ChangePct: 99})
	return all
}

func TestGetMarketMoversSortedAndCapped(t *testing.T) {
	svc := NewMarketService(&mockMarketAPI{all: moversFixture()}, mockConverter{})

	movers, err := svc.GetMarketMovers(context.Background())
	if err != nil {
		t.Fatalf("GetMarketMovers failed: %v", err)
	}
	if len(movers) != application.MoversLimit {
		t.Fatalf("expected %d movers, got %d", application.MoversLimit, len(movers))
	}
	for i := 1; i < len(movers); i++ {
		if math.Abs(movers[i].Change24h) > math.Abs(movers[i-1].Change24h) {
			t.Fatalf("movers not sorted by descending |change| at %d", i)
		}
	}
	for _, m := range movers {
		if m.Symbol == "BTCETH" {
			t.Fatal("non-quote pair leaked into movers")
		}
	}
}

func TestGetLosersNegativeOnlySortedAscending(t *testing.T) {
	svc := NewMarketService(&mockMarketAPI{all: moversFixture()}, mockConverter{})

	losers, err := svc.GetLosers(context.Background())
	if err != nil {
		t.Fatalf("GetLosers failed: %v", err)
	}
	if len(losers) > application.LosersLimit {
		t.Fatalf("losers cap exceeded: %d", len(losers))
	}
	for i, l := range losers {
		if l.Change24h >= 0 {
			t.Fatalf("non-negative change in losers: %+v", l)
		}
		if i > 0 && l.Change24h < losers[i-1].Change24h {
			t.Fatalf("losers not sorted ascending at %d", i)
		}
	}
}
