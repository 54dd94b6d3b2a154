package dashboard

import (
	"strings"
	"testing"

	"cryptofolio/internal/domain"
)

func rec(coin string, price float64) domain.PriceRecord {
	return domain.PriceRecord{Symbol: coin, Price: price, Exchange: "Binance"}
}

func TestStateKeepsWatchListOrder(t *testing.T) {
	st := NewState([]string{"btc", " ETH ", "", "SOL"})

	want := []string{"BTC", "ETH", "SOL"}
	got := st.Coins()
	if len(got) != len(want) {
		t.Fatalf("coins = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("coins[%d] = %s, want %s", i, got[i], want[i])
		}
	}

	st.Apply(rec("SOL", 150))
	st.Apply(rec("BTC", 50000))

	entries := st.Snapshot()
	if entries[0].Coin != "BTC" || entries[2].Coin != "SOL" {
		t.Fatalf("snapshot order = %v", entries)
	}
	if !entries[0].HasValue || entries[1].HasValue || !entries[2].HasValue {
		t.Fatalf("unexpected fill state: %+v", entries)
	}
}

func TestStateDirectionTracking(t *testing.T) {
	st := NewState([]string{"BTC"})

	if !st.Apply(rec("BTC", 100)) {
		t.Fatal("first apply should report change")
	}
	if st.Snapshot()[0].Direction != domain.DirectionSame {
		t.Fatal("first value should have no direction")
	}

	if !st.Apply(rec("BTC", 101)) {
		t.Fatal("price increase should report change")
	}
	if st.Snapshot()[0].Direction != domain.DirectionUp {
		t.Fatal("expected up direction")
	}

	if !st.Apply(rec("BTC", 99)) {
		t.Fatal("price decrease should report change")
	}
	if st.Snapshot()[0].Direction != domain.DirectionDown {
		t.Fatal("expected down direction")
	}

	if st.Apply(rec("BTC", 99)) {
		t.Fatal("unchanged price should not report change")
	}
}

func TestStateDropsUnwatchedAndInvalid(t *testing.T) {
	st := NewState([]string{"BTC"})

	if st.Apply(rec("DOGE", 0.1)) {
		t.Fatal("unwatched coin should be dropped")
	}
	if st.Apply(rec("BTC", 0)) {
		t.Fatal("zero price should be dropped")
	}
	if st.Apply(domain.PriceRecord{Symbol: "", Price: 1}) {
		t.Fatal("empty symbol should be dropped")
	}
}

func TestRenderShowsPlaceholdersAndValues(t *testing.T) {
	st := NewState([]string{"BTC", "ETH"})
	st.Apply(domain.PriceRecord{Symbol: "BTC", Price: 50000, Change24h: 2.4})

	line := NewFormatter().Render(st, RenderSnapshot)
	if !strings.Contains(line, "BTC") || !strings.Contains(line, "50000") {
		t.Fatalf("line missing BTC value: %q", line)
	}
	if !strings.Contains(line, "+2.40%") {
		t.Fatalf("line missing change: %q", line)
	}
	if !strings.Contains(line, "ETH") || !strings.Contains(line, "--") {
		t.Fatalf("line missing ETH placeholder: %q", line)
	}
	if strings.HasPrefix(line, "\r") {
		t.Fatal("snapshot render should not carriage-return")
	}

	live := NewFormatter().Render(st, RenderLive)
	if !strings.HasPrefix(live, "\r") {
		t.Fatal("live render should start with carriage return")
	}
}
