package exchange

import "testing"

func TestSymbol2Coin(t *testing.T) {
	c := NewCommonSymbolConverter("usdt")

	cases := []struct{ in, want string }{
		{"BTCUSDT", "BTC"},
		{"btcusdt", "BTC"},
		{"BTC", "BTC"},
		{" ethusdt ", "ETH"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := c.Symbol2Coin(tc.in); got != tc.want {
			t.Errorf("Symbol2Coin(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCoin2Symbol(t *testing.T) {
	c := NewCommonSymbolConverter("USDT")

	cases := []struct{ in, want string }{
		{"BTC", "BTCUSDT"},
		{"btc", "BTCUSDT"},
		{"BTCUSDT", "BTCUSDT"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := c.Coin2Symbol(tc.in); got != tc.want {
			t.Errorf("Coin2Symbol(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}

	if c.SymbolSuffix() != "USDT" {
		t.Fatalf("suffix = %s", c.SymbolSuffix())
	}
}
