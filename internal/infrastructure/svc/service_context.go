package svc

import (
	"context"
	"fmt"
	"time"

	redisclient "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"mxarb/internal/application/port"
	"mxarb/internal/application/service"
	"mxarb/internal/application/usecase/monitor"
	"mxarb/internal/domain"
	"mxarb/internal/infrastructure/config"
	"mxarb/internal/infrastructure/exchange/mexc"
	"mxarb/internal/infrastructure/metrics"
	"mxarb/internal/infrastructure/pricefeed"
	"mxarb/internal/infrastructure/storage/composite"
	pgrepo "mxarb/internal/infrastructure/storage/postgres"
	redisrepo "mxarb/internal/infrastructure/storage/redis"
	sqliterepo "mxarb/internal/infrastructure/storage/sqlite"
	"mxarb/internal/infrastructure/subscription"
	"mxarb/internal/interfaces/console"
	"mxarb/internal/interfaces/httpapi"
	"mxarb/internal/interfaces/ws"
)

type ServiceContext struct {
	Ctx    context.Context
	Config *config.Config

	// storage, optional
	repo *composite.Repo

	// engine state
	Catalogue domain.Catalogue
	State     *monitor.State
	Router    *subscription.Router
	Hub       *ws.Hub

	Prices *service.PriceService
	mirror *service.MirrorService

	feeds    []monitor.FeedBinding
	reporter *monitor.Reporter
	Server   *httpapi.Server

	closerChain []func() error
}

// New builds every component in dependency order. The catalogue is fetched
// here, once.
func New(ctx context.Context, cfg *config.Config) (*ServiceContext, error) {
	sc := &ServiceContext{
		Ctx:         ctx,
		Config:      cfg,
		closerChain: make([]func() error, 0),
	}
	if err := sc.initializeComponents(); err != nil {
		_ = sc.Close()
		return nil, err
	}
	return sc, nil
}

func (sc *ServiceContext) initializeComponents() error {
	if err := sc.initializeStorage(); err != nil {
		return fmt.Errorf("%w: %w", ErrStorageInitFailed, err)
	}

	sc.initializeCatalogue()
	if sc.Catalogue.Empty() {
		return ErrEmptyCatalogue
	}

	sc.State = monitor.NewState()
	sc.Router = subscription.NewRouter()
	sc.Hub = ws.NewHub()

	if sc.repo.Len() > 0 {
		sc.mirror = service.NewMirrorService(sc.repo, sc.Config.Mirror.QueueSize)
		sc.Prices = service.NewPriceService(sc.State, sc.Hub, sc.mirror)
	} else {
		sc.Prices = service.NewPriceService(sc.State, sc.Hub, nil)
	}

	if err := sc.initializeFeeds(); err != nil {
		return err
	}
	sc.initializeServer()

	if every := sc.Config.ReportEvery(); every > 0 {
		sc.reporter = monitor.NewReporter(sc.Prices, monitor.NewFormatter(sc.Config.Report.Top), console.NewWriter(nil), every)
	}

	log.Info().
		Int("spot_catalogue", len(sc.Catalogue.Spot)).
		Int("futures_catalogue", len(sc.Catalogue.Futures)).
		Int("storage_backends", sc.repo.Len()).
		Msg("✓ All components initialized")
	return nil
}

func (sc *ServiceContext) initializeStorage() error {
	var repos []port.Repository

	if sc.Config.Redis.Enabled {
		r, err := sc.initRedis()
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		repos = append(repos, r)
	}
	if sc.Config.SQLite.Enabled {
		r, err := sc.initSQLite()
		if err != nil {
			return fmt.Errorf("sqlite: %w", err)
		}
		repos = append(repos, r)
	}
	if sc.Config.Postgres.Enabled {
		r, err := sc.initPostgres()
		if err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		repos = append(repos, r)
	}

	sc.repo = composite.New(repos...)
	return nil
}

func (sc *ServiceContext) initRedis() (*redisrepo.Repo, error) {
	rdb := redisclient.NewClient(&redisclient.Options{
		Addr:     sc.Config.Redis.Addr,
		Password: sc.Config.Redis.Password,
		DB:       sc.Config.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(sc.Ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	repo := redisrepo.New(rdb, sc.Config.Redis.Prefix, time.Duration(sc.Config.Redis.TTLSeconds)*time.Second, sc.Config.Redis.PriceChan)
	sc.closerChain = append(sc.closerChain, func() error {
		log.Info().Msg("closing redis connection")
		return repo.Close()
	})

	log.Info().Str("addr", sc.Config.Redis.Addr).Int("db", sc.Config.Redis.DB).Msg("✓ Redis initialized")
	return repo, nil
}

func (sc *ServiceContext) initSQLite() (*sqliterepo.Repo, error) {
	repo, err := sqliterepo.New(sc.Config.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("sqlite repo creation failed: %w", err)
	}
	sc.closerChain = append(sc.closerChain, func() error {
		log.Info().Msg("closing sqlite connection")
		return repo.Close()
	})

	log.Info().Str("path", sc.Config.SQLite.Path).Msg("✓ SQLite initialized")
	return repo, nil
}

func (sc *ServiceContext) initPostgres() (*pgrepo.Repo, error) {
	repo, err := pgrepo.New(sc.Config.Postgres.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres repo creation failed: %w", err)
	}
	sc.closerChain = append(sc.closerChain, func() error {
		log.Info().Msg("closing postgres connection")
		return repo.Close()
	})

	log.Info().Msg("✓ Postgres initialized")
	return repo, nil
}

func (sc *ServiceContext) initializeCatalogue() {
	m := sc.Config.Exchange.MEXC
	client := mexc.NewCatalogueClient(m.SpotRestURL, m.FuturesRestURL, sc.Config.RestTimeout())
	fallback := domain.NewCatalogue(sc.Config.Symbols.Spot, sc.Config.Symbols.Futures)

	var store port.CatalogueStore
	if sc.repo.Len() > 0 {
		store = sc.repo
	}
	sc.Catalogue = service.NewCatalogueService(client, store, fallback).Load(sc.Ctx)
}

func (sc *ServiceContext) initializeFeeds() error {
	m := sc.Config.Exchange.MEXC
	base := pricefeed.Params{
		SubscribeDelay: sc.Config.SubscribeDelay(),
		ReconnectDelay: sc.Config.ReconnectDelay(),
		PingInterval:   sc.Config.PingInterval(),
		Buffer:         1024,
	}

	sp := base
	sp.WsURL, sp.Catalogue, sp.Queue = m.SpotWsURL, sc.Catalogue.Set(domain.SideSpot), sc.Router.Spot
	spot, err := pricefeed.New(mexc.SpotFeedName, sp)
	if err != nil {
		return err
	}

	fp := base
	fp.WsURL, fp.Catalogue, fp.Queue = m.FuturesWsURL, sc.Catalogue.Set(domain.SideFutures), sc.Router.Futures
	futures, err := pricefeed.New(mexc.FuturesFeedName, fp)
	if err != nil {
		return err
	}

	sc.feeds = []monitor.FeedBinding{
		{Feed: spot, Coins: sc.Config.Symbols.Spot},
		{Feed: futures, Coins: sc.Config.Symbols.Futures},
	}
	return nil
}

func (sc *ServiceContext) initializeServer() {
	wsHandler := ws.NewHandler(sc.Hub, sc.Router, sc.Prices, sc.Catalogue, ws.Options{
		SendBuffer:   sc.Config.Hub.SendBuffer,
		WriteTimeout: time.Duration(sc.Config.Hub.WriteTimeoutSec) * time.Second,
		PingInterval: time.Duration(sc.Config.Hub.PingIntervalSec) * time.Second,
	})
	reg := metrics.NewRegistry(sc.Prices.Tracked)
	sc.Server = httpapi.NewServer(sc.Config.App.Addr, stats{sc}, wsHandler, metrics.Handler(reg))
}

// BuildMonitorServiceDeps returns the engine dependencies.
func (sc *ServiceContext) BuildMonitorServiceDeps() monitor.ServiceDeps {
	return monitor.ServiceDeps{
		Feeds:   sc.feeds,
		Handler: sc.Prices,
	}
}

// Run starts the engine, the optional mirror and reporter, and the HTTP
// server. It blocks until ctx is done or a component fails.
func (sc *ServiceContext) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return monitor.NewService(sc.BuildMonitorServiceDeps()).Run(gctx)
	})
	if sc.mirror != nil {
		g.Go(func() error { return sc.mirror.Run(gctx) })
	}
	if sc.reporter != nil {
		g.Go(func() error { return sc.reporter.Run(gctx) })
	}
	g.Go(func() error { return sc.Server.Run(gctx) })

	err := g.Wait()
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// Close releases resources in reverse order of creation.
func (sc *ServiceContext) Close() error {
	for i := len(sc.closerChain) - 1; i >= 0; i-- {
		if err := sc.closerChain[i](); err != nil {
			log.Error().Err(err).Msg("error closing resource")
		}
	}
	sc.closerChain = nil
	return nil
}

// stats feeds the HTTP status endpoints.
type stats struct{ sc *ServiceContext }

func (s stats) Tracked() int     { return s.sc.Prices.Tracked() }
func (s stats) Subscribers() int { return s.sc.Hub.Count() }
