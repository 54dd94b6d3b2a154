package dashboard

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"cryptofolio/internal/application/event"
	"cryptofolio/internal/domain"
)

type fakeSource struct {
	mu      sync.Mutex
	records []domain.PriceRecord
	err     error
	calls   int
}

func (f *fakeSource) GetPrices(ctx context.Context, symbols []string) ([]domain.PriceRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

type fakeRankings struct {
	movers []domain.PriceRecord
	losers []domain.PriceRecord
}

func (f *fakeRankings) GetMarketMovers(ctx context.Context) ([]domain.PriceRecord, error) {
	return f.movers, nil
}

func (f *fakeRankings) GetLosers(ctx context.Context) ([]domain.PriceRecord, error) {
	return f.losers, nil
}

type fakePortfolio struct {
	mu     sync.Mutex
	snap   *domain.PortfolioSnapshot
	userID string
	calls  int
}

func (f *fakePortfolio) GetPortfolio(ctx context.Context, userID string) (*domain.PortfolioSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.userID = userID
	f.calls++
	return f.snap, nil
}

type captureSink struct {
	lines chan string
	snaps []string
	mu    sync.Mutex
}

func newCaptureSink() *captureSink {
	return &captureSink{lines: make(chan string, 64)}
}

func (s *captureSink) WriteLive(line string) error {
	select {
	case s.lines <- line:
	default:
	}
	return nil
}

func (s *captureSink) WriteSnapshot(ts time.Time, line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snaps = append(s.snaps, line)
	return nil
}

func (s *captureSink) NewLine() error { return nil }

func (s *captureSink) snapshots() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.snaps...)
}

type countingRepo struct {
	mu      sync.Mutex
	upserts int
}

func (r *countingRepo) UpsertLatestPrice(ctx context.Context, ex, symbol string, price float64, ts int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upserts++
	return nil
}
func (r *countingRepo) InsertSnapshot(ctx context.Context, ts int64, payload string) error { return nil }
func (r *countingRepo) InsertPortfolioValue(ctx context.Context, ts int64, userID string, total float64, payload string) error {
	return nil
}
func (r *countingRepo) InsertOrder(ctx context.Context, ts int64, exchange, symbol, side string, quantity, price float64, orderID string) error {
	return nil
}

func (r *countingRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.upserts
}

func TestRefreshAppliesRecords(t *testing.T) {
	source := &fakeSource{records: []domain.PriceRecord{
		{Symbol: "BTC", Price: 50000, Exchange: "Binance"},
		{Symbol: "ETH", Price: 3000, Exchange: "Binance"},
	}}
	repo := &countingRepo{}

	svc := NewService(ServiceDeps{
		Prices: source,
		Coins:  []string{"BTC", "ETH"},
		Sink:   newCaptureSink(),
		Repo:   repo,
	})
	svc.refresh(context.Background())

	entries := svc.st.Snapshot()
	if !entries[0].HasValue || entries[0].Record.Price != 50000 {
		t.Fatalf("BTC not applied: %+v", entries[0])
	}
	if repo.count() != 2 {
		t.Fatalf("upserts = %d, want 2", repo.count())
	}
}

func TestRefreshKeepsStateOnError(t *testing.T) {
	source := &fakeSource{records: []domain.PriceRecord{{Symbol: "BTC", Price: 50000}}}
	svc := NewService(ServiceDeps{
		Prices: source,
		Coins:  []string{"BTC"},
		Sink:   newCaptureSink(),
	})
	svc.refresh(context.Background())

	source.mu.Lock()
	source.err = errors.New("exchange down")
	source.mu.Unlock()
	svc.refresh(context.Background())

	entries := svc.st.Snapshot()
	if !entries[0].HasValue || entries[0].Record.Price != 50000 {
		t.Fatalf("state lost after failed refresh: %+v", entries[0])
	}
}

func TestSnapshotWritesRankings(t *testing.T) {
	sink := newCaptureSink()
	svc := NewService(ServiceDeps{
		Prices: &fakeSource{},
		Rankings: &fakeRankings{
			movers: []domain.PriceRecord{{Symbol: "SOL", Change24h: 12.5}},
			losers: []domain.PriceRecord{{Symbol: "ADA", Change24h: -8.1}},
		},
		Coins: []string{"BTC"},
		Sink:  sink,
	})
	svc.snapshot(context.Background(), time.Now())

	snaps := sink.snapshots()
	if len(snaps) != 2 {
		t.Fatalf("snapshot lines = %d, want watch list + rankings", len(snaps))
	}
	if !strings.Contains(snaps[1], "SOL") || !strings.Contains(snaps[1], "+12.50%") {
		t.Fatalf("movers missing from rankings line: %q", snaps[1])
	}
	if !strings.Contains(snaps[1], "ADA") || !strings.Contains(snaps[1], "-8.10%") {
		t.Fatalf("losers missing from rankings line: %q", snaps[1])
	}
}

func TestSnapshotWritesPortfolioForSignedInUser(t *testing.T) {
	sink := newCaptureSink()
	portfolio := &fakePortfolio{snap: &domain.PortfolioSnapshot{
		Assets:     []domain.Asset{{Symbol: "BTC", Balance: 0.5, Value: 25000}},
		TotalValue: 25000,
	}}

	svc := NewService(ServiceDeps{
		Prices:    &fakeSource{},
		Portfolio: portfolio,
		UserID:    "42",
		Coins:     []string{"BTC"},
		Sink:      sink,
	})
	svc.snapshot(context.Background(), time.Now())

	if portfolio.calls != 1 || portfolio.userID != "42" {
		t.Fatalf("portfolio calls=%d userID=%s, want 1/42", portfolio.calls, portfolio.userID)
	}
	snaps := sink.snapshots()
	last := snaps[len(snaps)-1]
	if !strings.Contains(last, "total=25000.00") || !strings.Contains(last, "BTC") {
		t.Fatalf("valuation missing from snapshot line: %q", last)
	}
}

func TestSnapshotSkipsPortfolioWithoutUser(t *testing.T) {
	sink := newCaptureSink()
	portfolio := &fakePortfolio{snap: &domain.PortfolioSnapshot{}}

	svc := NewService(ServiceDeps{
		Prices:    &fakeSource{},
		Portfolio: portfolio,
		Coins:     []string{"BTC"},
		Sink:      sink,
	})
	svc.snapshot(context.Background(), time.Now())

	if portfolio.calls != 0 {
		t.Fatalf("portfolio called %d times without a user", portfolio.calls)
	}
}

func TestRunDeliversStreamUpdates(t *testing.T) {
	source := &fakeSource{records: []domain.PriceRecord{{Symbol: "BTC", Price: 50000, Exchange: "Binance"}}}
	sink := newCaptureSink()
	bus := event.NewBus()

	svc := NewService(ServiceDeps{
		Prices: source,
		Bus:    bus,
		Coins:  []string{"BTC"},
		Sink:   sink,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	// wait for the initial live line before streaming
	select {
	case <-sink.lines:
	case <-time.After(2 * time.Second):
		t.Fatal("no initial live line")
	}

	bus.Publish(event.TopicPrice, domain.PriceRecord{Symbol: "BTC", Price: 51000, Exchange: "Binance"})

	deadline := time.After(2 * time.Second)
	for {
		select {
		case line := <-sink.lines:
			if strings.Contains(line, "51000") {
				cancel()
				if err := <-done; !errors.Is(err, context.Canceled) {
					t.Fatalf("Run() = %v, want context.Canceled", err)
				}
				return
			}
		case <-deadline:
			t.Fatal("stream update never rendered")
		}
	}
}
