package domain

// Side of an order.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// OrderRequest is a transient one-shot order. No local order state is kept
// after submission.
type OrderRequest struct {
	Symbol   string // base coin, e.g. "BTC"
	Side     Side
	Quantity float64
	Price    float64
	Exchange string // optional; empty means the default exchange
}
