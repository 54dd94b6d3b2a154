package domain

import "sort"

// Asset is one merged portfolio position. Balances reported by several
// exchanges under the same normalized symbol are summed into a single entry.
type Asset struct {
	Symbol  string
	Balance float64
	Value   float64 // in quote currency
}

// PortfolioSnapshot is recomputed fully on each request; nothing is persisted
// between calls.
type PortfolioSnapshot struct {
	Assets     []Asset
	TotalValue float64
}

// Add merges a balance into the snapshot: an existing symbol is summed in
// place, a new one is appended.
func (p *PortfolioSnapshot) Add(symbol string, balance, value float64) {
	for i := range p.Assets {
		if p.Assets[i].Symbol == symbol {
			p.Assets[i].Balance += balance
			p.Assets[i].Value += value
			return
		}
	}
	p.Assets = append(p.Assets, Asset{Symbol: symbol, Balance: balance, Value: value})
}

// Finalize computes the total and orders assets by descending value.
func (p *PortfolioSnapshot) Finalize() {
	p.TotalValue = 0
	for _, a := range p.Assets {
		p.TotalValue += a.Value
	}
	sort.SliceStable(p.Assets, func(i, j int) bool {
		return p.Assets[i].Value > p.Assets[j].Value
	})
}
