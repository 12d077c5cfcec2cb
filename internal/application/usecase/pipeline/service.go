// Package pipeline wires feeds, normalization, the price cache and the diff
// engine into one runnable unit.
package pipeline

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"arbdiff/internal/application/cache"
	"arbdiff/internal/application/diff"
	"arbdiff/internal/application/normalize"
	"arbdiff/internal/application/port"
	"arbdiff/internal/domain/model"
)

// Overflow policies for the delivery channel.
const (
	OverflowBlock      = "block"
	OverflowDropOldest = "drop_oldest"
)

type ServiceDeps struct {
	Feeds     []port.FeedConnector
	Gateway   port.Gateway
	Publisher port.Publisher // optional

	Threshold decimal.Decimal
	Absolute  bool
	Interval  time.Duration

	Buffer   int
	Overflow string
}

type Service struct {
	deps    ServiceDeps
	cache   *cache.Cache
	updater *cache.Updater
	engine  *diff.Engine

	delivery chan model.Tick
	dropped  atomic.Int64
}

func NewService(deps ServiceDeps) *Service {
	if deps.Buffer <= 0 {
		deps.Buffer = 1024
	}
	c := cache.New()
	return &Service{
		deps:     deps,
		cache:    c,
		updater:  cache.NewUpdater(c, deps.Gateway, deps.Publisher),
		engine:   diff.NewEngine(c, deps.Gateway, deps.Publisher, deps.Threshold, deps.Absolute, deps.Interval),
		delivery: make(chan model.Tick, deps.Buffer),
	}
}

// Cache exposes the price cache for inspection.
func (s *Service) Cache() *cache.Cache { return s.cache }

// Dropped reports how many ticks the overflow policy has evicted.
func (s *Service) Dropped() int64 { return s.dropped.Load() }

// Run blocks until ctx is cancelled. All feed readers, the cache updater and
// the diff engine observe cancellation at their next suspension point.
func (s *Service) Run(ctx context.Context) error {
	if len(s.deps.Feeds) == 0 {
		return errors.New("no feeds")
	}

	for _, feed := range s.deps.Feeds {
		raw, err := feed.Connect(ctx)
		if err != nil {
			return err
		}
		go s.readFeed(ctx, feed, raw)
		log.Info().
			Str("platform", string(feed.Platform())).
			Str("market", string(feed.Market())).
			Msg("feed started")
	}

	go s.updater.Run(ctx, s.delivery)

	s.engine.Run(ctx)
	return ctx.Err()
}

func (s *Service) readFeed(ctx context.Context, feed port.FeedConnector, raw <-chan []byte) {
	p, m := feed.Platform(), feed.Market()
	for {
		select {
		case <-ctx.Done():
			return
		case b, ok := <-raw:
			if !ok {
				return
			}
			for _, t := range normalize.Normalize(p, m, b) {
				s.deliver(ctx, t)
			}
		}
	}
}

func (s *Service) deliver(ctx context.Context, t model.Tick) {
	if s.deps.Overflow != OverflowDropOldest {
		// backpressure: block the feed reader until the updater catches up
		select {
		case <-ctx.Done():
		case s.delivery <- t:
		}
		return
	}

	select {
	case s.delivery <- t:
		return
	default:
	}

	// full: evict the oldest queued tick, then retry once
	select {
	case <-s.delivery:
		n := s.dropped.Add(1)
		if n%1000 == 1 {
			log.Warn().Int64("dropped", n).Msg("delivery channel full, dropping oldest")
		}
	default:
	}
	select {
	case <-ctx.Done():
	case s.delivery <- t:
	default:
		s.dropped.Add(1)
	}
}
