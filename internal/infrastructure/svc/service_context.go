package svc

import (
	"context"
	"errors"
	"fmt"
	"time"

	redisclient "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"cryptofolio/internal/application"
	"cryptofolio/internal/application/event"
	"cryptofolio/internal/application/port"
	"cryptofolio/internal/application/service"
	"cryptofolio/internal/application/usecase/dashboard"
	"cryptofolio/internal/infrastructure/config"
	"cryptofolio/internal/infrastructure/exchange"
	"cryptofolio/internal/infrastructure/exchange/binance"
	"cryptofolio/internal/infrastructure/exchange/coinbase"
	"cryptofolio/internal/infrastructure/profile"
	"cryptofolio/internal/infrastructure/proxy"
	compositerepo "cryptofolio/internal/infrastructure/storage/composite"
	postgresrepo "cryptofolio/internal/infrastructure/storage/postgres"
	redisrepo "cryptofolio/internal/infrastructure/storage/redis"
	sqliterepo "cryptofolio/internal/infrastructure/storage/sqlite"
	"cryptofolio/internal/interfaces/console"
)

// ServiceContext owns every long-lived dependency of the process. It is the
// single place where configuration turns into wired components; nothing else
// constructs infrastructure.
type ServiceContext struct {
	Ctx    context.Context
	Config *config.Config

	// infrastructure layer (initialized first)
	converter    port.SymbolConverter
	marketClient *binance.MarketClient
	streamClient *binance.StreamClient
	bus          *event.Bus
	redisClient  *redisclient.Client
	redisRepo    *redisrepo.Repo
	sqliteRepo   *sqliterepo.Repo
	postgresRepo *postgresrepo.Repo
	repo         port.Repository

	profileStore *profile.Store
	tokens       *profile.TokenManager
	auth         *profile.Auth

	// output port
	Sink port.Sink

	// application components (depend on infrastructure)
	marketService    *service.MarketService
	portfolioService *service.PortfolioService

	// resource management
	closerChain []func() error
}

// New creates and initializes the ServiceContext. This is the single startup
// entry point; all dependency wiring happens here.
func New(ctx context.Context, cfg *config.Config) (*ServiceContext, error) {
	if len(cfg.Symbols.Watched) == 0 {
		return nil, ErrNoWatchedCoins
	}

	sc := &ServiceContext{
		Ctx:         ctx,
		Config:      cfg,
		converter:   exchange.NewCommonSymbolConverter(cfg.Symbols.Quote),
		bus:         event.NewBus(),
		Sink:        console.NewSink(),
		closerChain: make([]func() error, 0),
	}

	if err := sc.initializeComponents(); err != nil {
		_ = sc.Close()
		return nil, err
	}
	return sc, nil
}

// initializeComponents wires everything in dependency order.
func (sc *ServiceContext) initializeComponents() error {
	if err := sc.initializeStorage(); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageInitFailed, err)
	}

	cfg := sc.Config
	timeout := time.Duration(cfg.App.RequestTimeoutSecs) * time.Second

	sc.marketClient = binance.NewMarketClient(
		cfg.Exchange.Binance.RestURL,
		timeout,
		cfg.App.RequestsPerSecond,
	)
	sc.marketService = service.NewMarketService(sc.marketClient, sc.converter)

	sc.streamClient = binance.NewStreamClient(binance.StreamConfig{
		WsURL:         cfg.Exchange.Binance.WsURL,
		Coins:         cfg.Symbols.Watched,
		ReconnectBase: time.Duration(cfg.Stream.ReconnectBaseSecs) * time.Second,
		MaxReconnects: cfg.Stream.MaxReconnects,
	}, sc.bus, sc.converter)

	if err := sc.initProfiles(); err != nil {
		return err
	}
	sc.initPortfolio(timeout)

	log.Info().
		Int("coins", len(cfg.Symbols.Watched)).
		Msg("✓ All components initialized")
	return nil
}

// initializeStorage opens the configured backends and composes them into one
// repository. No backend enabled means a nil repo; callers fall back to noop.
func (sc *ServiceContext) initializeStorage() error {
	if sc.Config.Redis.Enabled {
		if err := sc.initRedis(); err != nil {
			return fmt.Errorf("redis initialization failed: %w", err)
		}
	}
	if sc.Config.SQLite.Enabled {
		if err := sc.initSQLite(); err != nil {
			return fmt.Errorf("sqlite initialization failed: %w", err)
		}
	}
	if sc.Config.Postgres.Enabled {
		if err := sc.initPostgres(); err != nil {
			return fmt.Errorf("postgres initialization failed: %w", err)
		}
	}

	var repos []port.Repository
	if sc.redisRepo != nil {
		repos = append(repos, sc.redisRepo)
	}
	if sc.sqliteRepo != nil {
		repos = append(repos, sc.sqliteRepo)
	}
	if sc.postgresRepo != nil {
		repos = append(repos, sc.postgresRepo)
	}
	if len(repos) > 0 {
		sc.repo = compositerepo.New(repos...)
	}
	return nil
}

func (sc *ServiceContext) initRedis() error {
	rdb := redisclient.NewClient(&redisclient.Options{
		Addr:     sc.Config.Redis.Addr,
		Password: sc.Config.Redis.Password,
		DB:       sc.Config.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(sc.Ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}

	sc.redisClient = rdb
	ttl := time.Duration(sc.Config.Redis.TTLSeconds) * time.Second
	sc.redisRepo = redisrepo.New(rdb, sc.Config.Redis.Prefix, ttl, "", "")

	sc.closerChain = append(sc.closerChain, func() error {
		log.Info().Msg("closing redis connection")
		return rdb.Close()
	})

	log.Info().
		Str("addr", sc.Config.Redis.Addr).
		Int("db", sc.Config.Redis.DB).
		Msg("✓ Redis initialized")
	return nil
}

func (sc *ServiceContext) initSQLite() error {
	repo, err := sqliterepo.New(sc.Config.SQLite.Path)
	if err != nil {
		return fmt.Errorf("sqlite repo creation failed: %w", err)
	}
	sc.sqliteRepo = repo

	sc.closerChain = append(sc.closerChain, func() error {
		log.Info().Msg("closing sqlite connection")
		return repo.Close()
	})

	log.Info().
		Str("path", sc.Config.SQLite.Path).
		Msg("✓ SQLite initialized")
	return nil
}

func (sc *ServiceContext) initPostgres() error {
	repo, err := postgresrepo.New(sc.Config.Postgres.DSN)
	if err != nil {
		return fmt.Errorf("postgres repo creation failed: %w", err)
	}
	sc.postgresRepo = repo

	sc.closerChain = append(sc.closerChain, func() error {
		log.Info().Msg("closing postgres connection")
		return repo.Close()
	})

	log.Info().Msg("✓ Postgres initialized")
	return nil
}

// initProfiles opens the profile store and session token manager. Both are
// optional: without an auth DSN the portfolio side runs without users.
func (sc *ServiceContext) initProfiles() error {
	if sc.Config.Auth.PostgresDSN == "" {
		log.Warn().Msg("auth.postgres_dsn not set, profile store disabled")
		return nil
	}

	store, err := profile.New(sc.Config.Auth.PostgresDSN)
	if err != nil {
		return fmt.Errorf("profile store creation failed: %w", err)
	}
	sc.profileStore = store
	sc.tokens = profile.NewTokenManager(
		sc.Config.Auth.JWTSecret,
		time.Duration(sc.Config.Auth.SessionTTLMins)*time.Minute,
	)
	sc.auth = profile.NewAuth(store, sc.tokens)

	sc.closerChain = append(sc.closerChain, func() error {
		log.Info().Msg("closing profile store")
		return store.Close()
	})

	log.Info().Msg("✓ Profile store initialized")
	return nil
}

// initPortfolio wires the per-exchange account and order clients.
func (sc *ServiceContext) initPortfolio(timeout time.Duration) {
	cfg := sc.Config

	var balanceProxy binance.BalanceProxy
	if cfg.Proxy.FunctionsURL != "" {
		balanceProxy = proxy.NewClient(cfg.Proxy.FunctionsURL, timeout)
		log.Info().Str("url", cfg.Proxy.FunctionsURL).Msg("✓ Balance proxy enabled")
	}

	deps := service.PortfolioServiceDeps{
		Prices:           sc.marketService,
		Converter:        sc.converter,
		WatchedCoins:     cfg.Symbols.Watched,
		BinanceBalances:  binance.NewAccountClient(cfg.Exchange.Binance.RestURL, timeout, balanceProxy),
		CoinbaseBalances: coinbase.NewAccountClient(cfg.Exchange.Coinbase.RestURL, timeout),
		BinanceOrders:    binance.NewOrderClient(cfg.Exchange.Binance.RestURL, timeout, sc.converter),
		CoinbaseOrders:   coinbase.NewOrderClient(cfg.Exchange.Coinbase.RestURL, timeout, sc.converter),
		Repo:             sc.repo,
	}
	if sc.profileStore != nil {
		deps.Credentials = sc.profileStore
	}
	sc.portfolioService = service.NewPortfolioService(deps)
}

// ResolveUser signs the configured operator in against the profile store and
// returns the profile id. Without auth configuration the process runs
// anonymously and the portfolio side stays off.
func (sc *ServiceContext) ResolveUser(ctx context.Context) (string, error) {
	if sc.auth == nil || sc.Config.Auth.Email == "" {
		return "", nil
	}

	email, password := sc.Config.Auth.Email, sc.Config.Auth.Password
	token, err := sc.auth.SignIn(ctx, email, password)
	if errors.Is(err, application.ErrAuthRequired) && sc.Config.Auth.RegisterMissing {
		if _, err = sc.auth.SignUp(ctx, email, password); err != nil {
			return "", fmt.Errorf("profile registration failed: %w", err)
		}
		token, err = sc.auth.SignIn(ctx, email, password)
	}
	if err != nil {
		return "", fmt.Errorf("sign-in failed: %w", err)
	}

	userID, err := sc.auth.CurrentUser(ctx, token)
	if err != nil {
		return "", err
	}

	sc.closerChain = append(sc.closerChain, func() error {
		log.Info().Msg("signing out session")
		return sc.auth.SignOut(context.Background(), token)
	})

	log.Info().Str("user", userID).Msg("✓ Signed in")
	return userID, nil
}

// BuildDashboardDeps assembles the dashboard use case dependencies. A
// non-empty userID switches the periodic portfolio valuation on.
func (sc *ServiceContext) BuildDashboardDeps(userID string) dashboard.ServiceDeps {
	deps := dashboard.ServiceDeps{
		Prices:           sc.marketService,
		Rankings:         sc.marketService,
		Bus:              sc.bus,
		Coins:            sc.Config.Symbols.Watched,
		RefreshSecs:      sc.Config.App.RefreshSecs,
		SnapshotEveryMin: sc.Config.App.SnapshotEveryMin,
		Sink:             sc.Sink,
		Repo:             sc.repo,
	}
	if userID != "" && sc.profileStore != nil {
		deps.Portfolio = sc.portfolioService
		deps.UserID = userID
	}
	return deps
}

func (sc *ServiceContext) MarketService() *service.MarketService {
	return sc.marketService
}

func (sc *ServiceContext) PortfolioService() *service.PortfolioService {
	return sc.portfolioService
}

func (sc *ServiceContext) StreamClient() *binance.StreamClient {
	return sc.streamClient
}

func (sc *ServiceContext) ProfileStore() *profile.Store {
	return sc.profileStore
}

func (sc *ServiceContext) Tokens() *profile.TokenManager {
	return sc.tokens
}

func (sc *ServiceContext) Auth() *profile.Auth {
	return sc.auth
}

// Close releases all resources in reverse initialization order. Call on
// process exit.
func (sc *ServiceContext) Close() error {
	for i := len(sc.closerChain) - 1; i >= 0; i-- {
		if err := sc.closerChain[i](); err != nil {
			log.Error().Err(err).Msg("error closing resource")
		}
	}
	return nil
}
