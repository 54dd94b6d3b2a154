package binance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"cryptofolio/internal/application"
	"cryptofolio/internal/application/event"
	"cryptofolio/internal/application/port"
	"cryptofolio/internal/domain"
)

// wsConn is the slice of *websocket.Conn the stream client uses; tests plug
// in fakes through the dialer.
type wsConn interface {
	ReadMessage() (int, []byte, error)
	SetReadDeadline(t time.Time) error
	SetPongHandler(h func(string) error)
	WriteControl(messageType int, data []byte, deadline time.Time) error
	Close() error
}

// DialFunc opens one websocket connection.
type DialFunc func(ctx context.Context, wsURL string) (wsConn, error)

func gorillaDial(ctx context.Context, wsURL string) (wsConn, error) {
	cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	conn, _, err := websocket.DefaultDialer.DialContext(cctx, wsURL, nil)
	return conn, err
}

// StreamConfig bounds the reconnect loop.
type StreamConfig struct {
	WsURL         string // e.g. wss://stream.binance.com:9443
	Coins         []string
	ReconnectBase time.Duration
	MaxReconnects int
}

// StreamClient maintains the single long-lived ticker stream connection and
// publishes normalized records on the event bus. On disconnect it retries
// with linearly increasing delay (base times attempt number) up to the
// attempt ceiling, then gives up silently; callers infer staleness from the
// absence of updates.
type StreamClient struct {
	cfg       StreamConfig
	bus       *event.Bus
	converter port.SymbolConverter

	dial  DialFunc
	sleep func(time.Duration)
}

func NewStreamClient(cfg StreamConfig, bus *event.Bus, converter port.SymbolConverter) *StreamClient {
	if cfg.ReconnectBase <= 0 {
		cfg.ReconnectBase = 5 * time.Second
	}
	if cfg.MaxReconnects <= 0 {
		cfg.MaxReconnects = 5
	}
	return &StreamClient{
		cfg:       cfg,
		bus:       bus,
		converter: converter,
		dial:      gorillaDial,
		sleep:     time.Sleep,
	}
}

// Bus exposes the subscriber registry.
func (s *StreamClient) Bus() *event.Bus { return s.bus }

type combinedMsg struct {
	Stream string    `json:"stream"`
	Data   tickerMsg `json:"data"`
}

// tickerMsg is the <symbol>@ticker payload subset we consume.
type tickerMsg struct {
	Symbol      string `json:"s"`
	Close       string `json:"c"`
	ChangePct   string `json:"P"`
	Volume      string `json:"v"`
	QuoteVolume string `json:"q"`
}

// Run drives the connection until ctx is cancelled or the attempt ceiling is
// reached. A successful connection resets the attempt counter.
func (s *StreamClient) Run(ctx context.Context) error {
	wsURL, err := combinedStreamURL(s.cfg.WsURL, s.cfg.Coins, s.converter)
	if err != nil {
		return err
	}

	attempt := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		conn, err := s.dial(ctx, wsURL)
		if err != nil {
			attempt++
			log.Error().Str("url", wsURL).Int("attempt", attempt).Err(err).Msg("stream dial failed")
			if attempt >= s.cfg.MaxReconnects {
				log.Warn().Msg("stream reconnect ceiling reached, giving up")
				return nil
			}
			s.sleep(s.cfg.ReconnectBase * time.Duration(attempt))
			continue
		}

		attempt = 0
		log.Info().Str("url", wsURL).Msg("stream connected")

		err = s.readLoop(ctx, conn)
		_ = conn.Close()

		if ctx.Err() != nil {
			return ctx.Err()
		}

		attempt++
		log.Warn().Int("attempt", attempt).Err(err).Msg("stream disconnected")
		if attempt >= s.cfg.MaxReconnects {
			log.Warn().Msg("stream reconnect ceiling reached, giving up")
			return nil
		}
		s.sleep(s.cfg.ReconnectBase * time.Duration(attempt))
	}
}

func (s *StreamClient) readLoop(ctx context.Context, conn wsConn) error {
	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	pingTicker := time.NewTicker(25 * time.Second)
	defer pingTicker.Stop()

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		for {
			_, b, err := conn.ReadMessage()
			if err != nil {
				errCh <- err
				return
			}
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			s.handleMessage(b)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errCh:
			return err
		case <-pingTicker.C:
			_ = conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(5*time.Second))
		}
	}
}

func (s *StreamClient) handleMessage(b []byte) {
	var msg combinedMsg
	if err := json.Unmarshal(b, &msg); err != nil {
		log.Error().Err(err).Msg("stream json unmarshal failed")
		return
	}

	sym := strings.ToUpper(strings.TrimSpace(msg.Data.Symbol))
	if sym == "" || msg.Data.Close == "" {
		return
	}

	price, _ := strconv.ParseFloat(msg.Data.Close, 64)
	change, _ := strconv.ParseFloat(msg.Data.ChangePct, 64)
	volume, _ := strconv.ParseFloat(msg.Data.Volume, 64)
	quote, _ := strconv.ParseFloat(msg.Data.QuoteVolume, 64)

	s.bus.Publish(event.TopicPrice, domain.PriceRecord{
		Symbol:      s.converter.Symbol2Coin(sym),
		Price:       price,
		Change24h:   change,
		Volume24h:   volume,
		Exchange:    application.ExchangeBinance,
		QuoteVolume: quote,
		Change1h:    change / 24,
	})
}

func combinedStreamURL(base string, coins []string, converter port.SymbolConverter) (string, error) {
	if base == "" {
		return "", errors.New("stream ws url empty")
	}

	streams := make([]string, 0, len(coins))
	for _, coin := range coins {
		coin = strings.TrimSpace(coin)
		if coin == "" {
			continue
		}
		symbol := strings.ToLower(converter.Coin2Symbol(coin))
		streams = append(streams, fmt.Sprintf("%s@ticker", symbol))
	}
	if len(streams) == 0 {
		return "", errors.New("no watched coins")
	}

	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	u.Path = "/stream"
	u.RawQuery = "streams=" + strings.Join(streams, "/")
	return u.String(), nil
}
