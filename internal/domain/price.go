package domain

// PriceRecord is an immutable snapshot of one symbol's market stats over a
// rolling 24h window. A new record replaces the old one per symbol; nothing
// historical is retained.
type PriceRecord struct {
	Symbol      string  // base coin, quote suffix stripped (e.g. "BTC")
	Price       float64 // last trade price in quote currency
	Change24h   float64 // 24h change, percent
	Volume24h   float64 // 24h base volume
	Exchange    string  // source exchange display name
	QuoteVolume float64 // 24h quote volume, used as market-cap proxy
	Rank        int     // position in the requested symbol list, 0 if unranked
	Change1h    float64 // approximate: Change24h / 24, not a real 1h window
}

// Direction represents the price movement direction
type Direction int

const (
	DirectionSame Direction = 0
	DirectionUp   Direction = +1
	DirectionDown Direction = -1
)

// PriceState holds the latest record for one symbol plus movement direction
// relative to the previously applied record. Last write wins; there is no
// ordering token reconciling a polled snapshot against a streamed tick.
type PriceState struct {
	Record    PriceRecord
	HasValue  bool
	Direction Direction
}

// Apply replaces the held record and recomputes the direction. Returns true
// when the visible state changed.
func (ps *PriceState) Apply(rec PriceRecord) bool {
	if !ps.HasValue {
		ps.Record = rec
		ps.HasValue = true
		ps.Direction = DirectionSame
		return true
	}

	prev := ps.Record.Price
	ps.Record = rec
	switch {
	case rec.Price > prev:
		ps.Direction = DirectionUp
	case rec.Price < prev:
		ps.Direction = DirectionDown
	default:
		ps.Direction = DirectionSame
		return false
	}
	return true
}
