package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"cryptofolio/internal/application"
	"cryptofolio/internal/application/port"
	"cryptofolio/internal/domain"
)

// MarketService aggregates one exchange's public ticker endpoints into
// normalized price records and derived rankings.
type MarketService struct {
	api       port.MarketAPI
	converter port.SymbolConverter
	exchange  string
}

func NewMarketService(api port.MarketAPI, converter port.SymbolConverter) *MarketService {
	return &MarketService{
		api:       api,
		converter: converter,
		exchange:  application.ExchangeBinance,
	}
}

// GetPrices issues one ticker-detail request per symbol plus one bulk price
// request, in parallel, and joins them by symbol. Output length equals input
// length and preserves input order. Any failure aborts the whole call.
func (s *MarketService) GetPrices(ctx context.Context, symbols []string) ([]domain.PriceRecord, error) {
	tickers := make([]port.Ticker24h, len(symbols))
	errs := make([]error, len(symbols)+1)

	var wg sync.WaitGroup
	for i, coin := range symbols {
		wg.Add(1)
		go func(i int, coin string) {
			defer wg.Done()
			t, err := s.api.Ticker24h(ctx, s.converter.Coin2Symbol(coin))
			if err != nil {
				errs[i] = err
				return
			}
			tickers[i] = t
		}(i, coin)
	}

	// bulk price table fetched alongside the per-symbol calls
	var bulk []port.SymbolPrice
	wg.Add(1)
	go func() {
		defer wg.Done()
		var err error
		bulk, err = s.api.AllPrices(ctx)
		errs[len(symbols)] = err
	}()
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("%w: %v", application.ErrDataUnavailable, err)
		}
	}

	// the bulk table is joined for cross-checking stream updates against the
	// same normalized symbol space
	priceBySymbol := make(map[string]float64, len(bulk))
	for _, p := range bulk {
		priceBySymbol[s.converter.Symbol2Coin(p.Symbol)] = p.Price
	}

	records := make([]domain.PriceRecord, len(symbols))
	for i, coin := range symbols {
		t := tickers[i]
		price := t.LastPrice
		if price == 0 {
			price = priceBySymbol[strings.ToUpper(coin)]
		}
		records[i] = domain.PriceRecord{
			Symbol:      coin,
			Price:       price,
			Change24h:   t.ChangePct,
			Volume24h:   t.Volume,
			Exchange:    s.exchange,
			QuoteVolume: t.QuoteVolume,
			Rank:        i + 1,
			Change1h:    t.ChangePct / 24, // approximation, not a real 1h window
		}
	}
	return records, nil
}

// GetMarketMovers returns the quote-denominated pairs ranked by descending
// absolute 24h change, capped at MoversLimit.
func (s *MarketService) GetMarketMovers(ctx context.Context) ([]domain.PriceRecord, error) {
	records, err := s.fetchAll(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(records, func(i, j int) bool {
		return math.Abs(records[i].Change24h) > math.Abs(records[j].Change24h)
	})
	if len(records) > application.MoversLimit {
		records = records[:application.MoversLimit]
	}
	return records, nil
}

// GetLosers returns only negative-change pairs sorted by most negative first,
// capped at LosersLimit.
func (s *MarketService) GetLosers(ctx context.Context) ([]domain.PriceRecord, error) {
	records, err := s.fetchAll(ctx)
	if err != nil {
		return nil, err
	}

	losers := records[:0]
	for _, r := range records {
		if r.Change24h < 0 {
			losers = append(losers, r)
		}
	}
	sort.SliceStable(losers, func(i, j int) bool {
		return losers[i].Change24h < losers[j].Change24h
	})
	if len(losers) > application.LosersLimit {
		losers = losers[:application.LosersLimit]
	}
	return losers, nil
}

// fetchAll pulls the full ticker set once and normalizes the
// quote-denominated pairs.
func (s *MarketService) fetchAll(ctx context.Context) ([]domain.PriceRecord, error) {
	tickers, err := s.api.AllTickers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", application.ErrDataUnavailable, err)
	}

	suffix := s.converter.SymbolSuffix()
	records := make([]domain.PriceRecord, 0, len(tickers))
	for _, t := range tickers {
		if !strings.HasSuffix(strings.ToUpper(t.Symbol), suffix) {
			continue
		}
		records = append(records, domain.PriceRecord{
			Symbol:      s.converter.Symbol2Coin(t.Symbol),
			Price:       t.LastPrice,
			Change24h:   t.ChangePct,
			Volume24h:   t.Volume,
			Exchange:    s.exchange,
			QuoteVolume: t.QuoteVolume,
			Change1h:    t.ChangePct / 24,
		})
	}
	return records, nil
}
