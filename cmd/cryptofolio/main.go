package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"cryptofolio/internal/application/usecase/dashboard"
	"cryptofolio/internal/domain"
	"cryptofolio/internal/infrastructure/config"
	"cryptofolio/internal/infrastructure/logger"
	"cryptofolio/internal/infrastructure/svc"

	"github.com/rs/zerolog/log"
)

func main() {
	logger.Setup()

	configPath := flag.String("config", "configs/config.toml", "path to config.toml")
	tradeSpec := flag.String("trade", "", "submit one limit order and exit: side:coin:qty:price[:exchange]")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("config", *configPath).Msg("load config failed")
	}
	logger.SetLevel(cfg.App.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sc, err := svc.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("service context initialization failed")
	}
	defer sc.Close()

	userID, err := sc.ResolveUser(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("operator sign-in failed")
	}

	if *tradeSpec != "" {
		order, err := parseOrderSpec(*tradeSpec)
		if err != nil {
			log.Fatal().Err(err).Str("trade", *tradeSpec).Msg("invalid trade spec")
		}
		orderID, err := sc.PortfolioService().ExecuteTrade(ctx, userID, order)
		if err != nil {
			log.Fatal().Err(err).Msg("trade failed")
		}
		log.Info().Str("orderID", orderID).Msg("trade submitted")
		return
	}

	// live price stream feeding the dashboard through the event bus
	go func() {
		if err := sc.StreamClient().Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("price stream exited")
		}
	}()

	dash := dashboard.NewService(sc.BuildDashboardDeps(userID))

	log.Info().
		Str("config", *configPath).
		Int("coins", len(cfg.Symbols.Watched)).
		Int("refresh_secs", cfg.App.RefreshSecs).
		Int("snapshot_every_min", cfg.App.SnapshotEveryMin).
		Bool("portfolio", userID != "").
		Msg("cryptofolio started")

	if err := dash.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("dashboard exited")
	}
}

// parseOrderSpec turns "buy:BTC:0.5:50000" (optionally ":Coinbase") into an
// order request.
func parseOrderSpec(spec string) (domain.OrderRequest, error) {
	parts := strings.Split(spec, ":")
	if len(parts) != 4 && len(parts) != 5 {
		return domain.OrderRequest{}, fmt.Errorf("want side:coin:qty:price[:exchange], got %q", spec)
	}

	side := domain.Side(strings.ToLower(parts[0]))
	if side != domain.SideBuy && side != domain.SideSell {
		return domain.OrderRequest{}, fmt.Errorf("side must be buy or sell, got %q", parts[0])
	}

	qty, err := strconv.ParseFloat(parts[2], 64)
	if err != nil || qty <= 0 {
		return domain.OrderRequest{}, fmt.Errorf("bad quantity %q", parts[2])
	}
	price, err := strconv.ParseFloat(parts[3], 64)
	if err != nil || price <= 0 {
		return domain.OrderRequest{}, fmt.Errorf("bad price %q", parts[3])
	}

	order := domain.OrderRequest{
		Symbol:   strings.ToUpper(parts[1]),
		Side:     side,
		Quantity: qty,
		Price:    price,
	}
	if len(parts) == 5 {
		order.Exchange = parts[4]
	}
	return order, nil
}
