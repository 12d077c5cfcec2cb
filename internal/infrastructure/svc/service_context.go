// Package svc wires configuration into concrete dependencies. Everything is
// constructed once at startup and passed explicitly; there is no global
// database handle or lazily initialized configuration.
package svc

import (
	"context"
	"fmt"
	"time"

	redisclient "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"arbdiff/internal/application/port"
	"arbdiff/internal/application/usecase/pipeline"
	"arbdiff/internal/domain/model"
	"arbdiff/internal/infrastructure/config"
	"arbdiff/internal/infrastructure/exchange/binance"
	"arbdiff/internal/infrastructure/exchange/bybit"
	"arbdiff/internal/infrastructure/exchange/kucoin"
	"arbdiff/internal/infrastructure/storage/postgres"
	redispub "arbdiff/internal/infrastructure/storage/redis"
	"arbdiff/internal/infrastructure/storage/sqlite"
)

type ServiceContext struct {
	Config *config.Config

	gateway   port.Gateway
	publisher port.Publisher
	feeds     []port.FeedConnector

	closerChain []func() error
}

// New builds the full dependency graph in order: storage, redis, feeds.
func New(ctx context.Context, cfg *config.Config) (*ServiceContext, error) {
	sc := &ServiceContext{Config: cfg}

	if err := sc.initGateway(); err != nil {
		_ = sc.Close()
		return nil, err
	}
	if cfg.Redis.Enabled {
		if err := sc.initRedis(ctx); err != nil {
			_ = sc.Close()
			return nil, err
		}
	}
	if err := sc.initFeeds(); err != nil {
		_ = sc.Close()
		return nil, err
	}
	return sc, nil
}

func (sc *ServiceContext) initGateway() error {
	switch {
	case sc.Config.SQLite.Enabled:
		gw, err := sqlite.New(sc.Config.SQLite.Path)
		if err != nil {
			return fmt.Errorf("sqlite gateway: %w", err)
		}
		sc.gateway = gw
		sc.closerChain = append(sc.closerChain, func() error {
			log.Info().Msg("closing sqlite")
			return gw.Close()
		})
		log.Info().Str("path", sc.Config.SQLite.Path).Msg("sqlite gateway ready")

	case sc.Config.Postgres.Enabled:
		gw, err := postgres.New(sc.Config.Postgres.DSN)
		if err != nil {
			return fmt.Errorf("postgres gateway: %w", err)
		}
		sc.gateway = gw
		sc.closerChain = append(sc.closerChain, func() error {
			log.Info().Msg("closing postgres")
			return gw.Close()
		})
		log.Info().Msg("postgres gateway ready")

	default:
		return ErrNoGateway
	}
	return nil
}

func (sc *ServiceContext) initRedis(ctx context.Context) error {
	rdb := redisclient.NewClient(&redisclient.Options{
		Addr:     sc.Config.Redis.Addr,
		Password: sc.Config.Redis.Password,
		DB:       sc.Config.Redis.DB,
	})

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pctx).Err(); err != nil {
		_ = rdb.Close()
		return fmt.Errorf("redis ping: %w", err)
	}

	ttl := time.Duration(sc.Config.Redis.TTLSeconds) * time.Second
	sc.publisher = redispub.New(rdb, sc.Config.Redis.Prefix, ttl,
		sc.Config.Redis.SignalStream, sc.Config.Redis.SignalChannel)
	sc.closerChain = append(sc.closerChain, func() error {
		log.Info().Msg("closing redis")
		return rdb.Close()
	})
	log.Info().Str("addr", sc.Config.Redis.Addr).Int("db", sc.Config.Redis.DB).Msg("redis publisher ready")
	return nil
}

func (sc *ServiceContext) initFeeds() error {
	for _, ef := range sc.Config.EnabledFeeds() {
		market := model.MarketSpot
		if ef.Market == "futures" {
			market = model.MarketFutures
		}
		switch ef.Exchange {
		case "binance":
			sc.feeds = append(sc.feeds, binance.NewFeed(ef.Feed.WsURL, market))
		case "bybit":
			sc.feeds = append(sc.feeds, bybit.NewFeed(ef.Feed.WsURL, ef.Feed.Subscribe, market))
		case "kucoin":
			sc.feeds = append(sc.feeds, kucoin.NewFeed(ef.Feed.WsURL, ef.Feed.Subscribe, market))
		default:
			log.Warn().Str("exchange", ef.Exchange).Msg("unknown exchange, skipping")
		}
	}
	if len(sc.feeds) == 0 {
		return ErrNoFeedsEnabled
	}
	return nil
}

// BuildPipelineDeps assembles the dependency set the pipeline service runs on.
func (sc *ServiceContext) BuildPipelineDeps() (pipeline.ServiceDeps, error) {
	threshold, err := sc.Config.ThresholdDecimal()
	if err != nil {
		return pipeline.ServiceDeps{}, err
	}
	return pipeline.ServiceDeps{
		Feeds:     sc.feeds,
		Gateway:   sc.gateway,
		Publisher: sc.publisher,
		Threshold: threshold,
		Absolute:  sc.Config.Diff.Absolute,
		Interval:  time.Duration(sc.Config.Diff.IntervalSec) * time.Second,
		Buffer:    sc.Config.Pipeline.Buffer,
		Overflow:  sc.Config.Pipeline.Overflow,
	}, nil
}

// Close releases resources in reverse initialization order.
func (sc *ServiceContext) Close() error {
	for i := len(sc.closerChain) - 1; i >= 0; i-- {
		if err := sc.closerChain[i](); err != nil {
			log.Error().Err(err).Msg("error closing resource")
		}
	}
	return nil
}
