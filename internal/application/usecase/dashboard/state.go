package dashboard

import (
	"strings"
	"sync"

	"cryptofolio/internal/domain"
)

// Entry is one rendered row: the latest record plus its movement direction.
type Entry struct {
	Coin      string
	Record    domain.PriceRecord
	HasValue  bool
	Direction domain.Direction
}

// State holds the latest per-coin price state in watch-list order. Poll and
// stream updates both land here; last write wins.
type State struct {
	mu sync.Mutex

	order []string
	coins map[string]*domain.PriceState
}

func NewState(coins []string) *State {
	order := make([]string, 0, len(coins))
	states := make(map[string]*domain.PriceState, len(coins))
	for _, coin := range coins {
		u := strings.ToUpper(strings.TrimSpace(coin))
		if u == "" {
			continue
		}
		order = append(order, u)
		states[u] = &domain.PriceState{}
	}
	return &State{order: order, coins: states}
}

func (s *State) Coins() []string {
	return s.order
}

// Apply routes one record to its coin slot. Records for coins outside the
// watch list are dropped. Returns whether the visible state changed.
func (s *State) Apply(rec domain.PriceRecord) bool {
	coin := strings.ToUpper(strings.TrimSpace(rec.Symbol))
	if coin == "" || rec.Price <= 0 {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ps := s.coins[coin]
	if ps == nil {
		return false
	}
	return ps.Apply(rec)
}

// Snapshot returns the rows in watch-list order.
func (s *State) Snapshot() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Entry, 0, len(s.order))
	for _, coin := range s.order {
		ps := s.coins[coin]
		out = append(out, Entry{
			Coin:      coin,
			Record:    ps.Record,
			HasValue:  ps.HasValue,
			Direction: ps.Direction,
		})
	}
	return out
}
