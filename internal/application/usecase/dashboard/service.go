package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"cryptofolio/internal/application/event"
	"cryptofolio/internal/application/port"
	"cryptofolio/internal/domain"
)

// PriceSource is the polling side of the dashboard.
type PriceSource interface {
	GetPrices(ctx context.Context, symbols []string) ([]domain.PriceRecord, error)
}

// RankingSource serves the derived movers/losers tables.
type RankingSource interface {
	GetMarketMovers(ctx context.Context) ([]domain.PriceRecord, error)
	GetLosers(ctx context.Context) ([]domain.PriceRecord, error)
}

// PortfolioSource values the signed-in user's holdings across exchanges.
type PortfolioSource interface {
	GetPortfolio(ctx context.Context, userID string) (*domain.PortfolioSnapshot, error)
}

const busHandle = "dashboard"

type ServiceDeps struct {
	Prices           PriceSource
	Rankings         RankingSource   // optional
	Portfolio        PortfolioSource // optional, needs UserID
	UserID           string
	Bus              *event.Bus
	Coins            []string
	RefreshSecs      int
	SnapshotEveryMin int
	Sink             port.Sink
	Repo             port.Repository
}

// Service renders the watch list: a periodic REST refresh plus live stream
// updates merged into one state, with timestamped snapshot lines on top.
type Service struct {
	deps ServiceDeps
	st   *State
	fmt  *Formatter
}

func NewService(deps ServiceDeps) *Service {
	if deps.RefreshSecs <= 0 {
		deps.RefreshSecs = 30
	}
	if deps.SnapshotEveryMin <= 0 {
		deps.SnapshotEveryMin = 5
	}
	if deps.Repo == nil {
		deps.Repo = NewNoopRepo()
	}
	return &Service{
		deps: deps,
		st:   NewState(deps.Coins),
		fmt:  NewFormatter(),
	}
}

func (s *Service) Run(ctx context.Context) error {
	if s.deps.Prices == nil {
		return errors.New("no price source")
	}
	if len(s.st.Coins()) == 0 {
		return errors.New("no watched coins")
	}

	// stream updates land in the same channel the tickers drain
	updates := make(chan domain.PriceRecord, 1024)
	if s.deps.Bus != nil {
		s.deps.Bus.Subscribe(event.TopicPrice, busHandle, func(rec domain.PriceRecord) {
			select {
			case updates <- rec:
			default: // drop rather than block the stream reader
			}
		})
		defer s.deps.Bus.Unsubscribe(event.TopicPrice, busHandle)
	}

	refreshTicker := time.NewTicker(time.Duration(s.deps.RefreshSecs) * time.Second)
	defer refreshTicker.Stop()

	snapTicker := time.NewTicker(time.Duration(s.deps.SnapshotEveryMin) * time.Minute)
	defer snapTicker.Stop()

	// initial fill before the first tick; rankings and valuation render once
	// up front the same way a page load would show them
	s.refresh(ctx)
	_ = s.deps.Sink.WriteLive(s.fmt.Render(s.st, RenderLive))
	if s.deps.Rankings != nil || s.deps.Portfolio != nil {
		s.snapshot(ctx, time.Now())
	}

	for {
		select {
		case <-ctx.Done():
			_ = s.deps.Sink.NewLine()
			return ctx.Err()

		case <-refreshTicker.C:
			s.refresh(ctx)
			_ = s.deps.Sink.WriteLive(s.fmt.Render(s.st, RenderLive))

		case now := <-snapTicker.C:
			s.snapshot(ctx, now)

		case rec := <-updates:
			if s.st.Apply(rec) {
				_ = s.deps.Sink.WriteLive(s.fmt.Render(s.st, RenderLive))
			}
			if rec.Price > 0 {
				_ = s.deps.Repo.UpsertLatestPrice(ctx, rec.Exchange, rec.Symbol, rec.Price, time.Now().UnixMilli())
			}
		}
	}
}

// snapshot writes the timestamped lines: the watch list, the market
// movers/losers tables, and the portfolio valuation when a user is signed in.
// The valuation call also persists the portfolio value row through the
// aggregator's own repository.
func (s *Service) snapshot(ctx context.Context, now time.Time) {
	_ = s.deps.Sink.WriteSnapshot(now, s.fmt.Render(s.st, RenderSnapshot))
	_ = s.deps.Repo.InsertSnapshot(ctx, now.UnixMilli(), s.snapshotPayload())

	if s.deps.Rankings != nil {
		movers, err := s.deps.Rankings.GetMarketMovers(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("movers fetch failed")
		}
		losers, err := s.deps.Rankings.GetLosers(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("losers fetch failed")
		}
		if len(movers) > 0 || len(losers) > 0 {
			_ = s.deps.Sink.WriteSnapshot(now, s.fmt.RenderRankings(movers, losers))
		}
	}

	if s.deps.Portfolio != nil && s.deps.UserID != "" {
		snap, err := s.deps.Portfolio.GetPortfolio(ctx, s.deps.UserID)
		if err != nil {
			log.Warn().Err(err).Msg("portfolio valuation failed")
			return
		}
		_ = s.deps.Sink.WriteSnapshot(now, s.fmt.RenderPortfolio(snap))
	}
}

// refresh pulls a full REST snapshot and applies it row by row.
func (s *Service) refresh(ctx context.Context) {
	records, err := s.deps.Prices.GetPrices(ctx, s.st.Coins())
	if err != nil {
		log.Warn().Err(err).Msg("price refresh failed, keeping last values")
		return
	}
	now := time.Now().UnixMilli()
	for _, rec := range records {
		s.st.Apply(rec)
		if rec.Price > 0 {
			_ = s.deps.Repo.UpsertLatestPrice(ctx, rec.Exchange, rec.Symbol, rec.Price, now)
		}
	}
}

func (s *Service) snapshotPayload() string {
	entries := s.st.Snapshot()
	rows := make([]domain.PriceRecord, 0, len(entries))
	for _, e := range entries {
		if e.HasValue {
			rows = append(rows, e.Record)
		}
	}
	b, err := json.Marshal(rows)
	if err != nil {
		return "[]"
	}
	return string(b)
}
