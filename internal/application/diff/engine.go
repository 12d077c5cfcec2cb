// Package diff scans cache snapshots on a fixed interval and persists
// divergence signals.
package diff

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"arbdiff/internal/application/port"
	"arbdiff/internal/domain/model"
)

var hundred = decimal.NewFromInt(100)

// SnapshotSource is the read-only view of the price cache the engine needs.
type SnapshotSource interface {
	Snapshot() []*model.PriceRecord
}

type Engine struct {
	src       SnapshotSource
	gw        port.Gateway
	pub       port.Publisher // optional
	threshold decimal.Decimal
	absolute  bool
	interval  time.Duration
}

// NewEngine builds a diff engine. With absolute=false only the fixed slot
// ordering direction qualifies (rate > threshold, signed); with absolute=true
// divergence in either direction qualifies (|rate| > threshold). The stored
// diff and rate stay signed for the fixed (from, to) ordering in both modes.
func NewEngine(src SnapshotSource, gw port.Gateway, pub port.Publisher, threshold decimal.Decimal, absolute bool, interval time.Duration) *Engine {
	return &Engine{
		src:       src,
		gw:        gw,
		pub:       pub,
		threshold: threshold,
		absolute:  absolute,
		interval:  interval,
	}
}

// Run loops until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			e.ScanOnce(ctx, now.UTC())
		}
	}
}

// ScanOnce evaluates one full cycle over a cache snapshot. A persistence
// error on one pair never aborts the cycle.
func (e *Engine) ScanOnce(ctx context.Context, now time.Time) {
	for _, rec := range e.src.Snapshot() {
		for _, pair := range model.SlotPairs() {
			fromPrice := rec.Slots[pair.From]
			toPrice := rec.Slots[pair.To]
			// zero means "no data yet" for that slot
			if fromPrice.IsZero() || toPrice.IsZero() {
				continue
			}

			priceDiff := toPrice.Sub(fromPrice)
			priceDiffRate := priceDiff.Div(toPrice).Mul(hundred)

			qualifying := priceDiffRate
			if e.absolute {
				qualifying = priceDiffRate.Abs()
			}
			if !qualifying.GreaterThan(e.threshold) {
				continue
			}

			e.upsert(ctx, rec.Symbol, pair, priceDiff, priceDiffRate, fromPrice, toPrice, now)
		}
	}
}

func (e *Engine) upsert(ctx context.Context, symbol string, pair model.SlotPair, diff, rate, fromPrice, toPrice decimal.Decimal, now time.Time) {
	existing, err := e.gw.GetSignal(ctx, symbol, pair.From, pair.To)
	switch {
	case errors.Is(err, port.ErrNotFound):
		sig := &model.DiffSignal{
			Symbol:        symbol,
			FromSlot:      pair.From,
			ToSlot:        pair.To,
			PriceDiff:     diff,
			PriceDiffRate: rate,
			FromPrice:     fromPrice,
			ToPrice:       toPrice,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		id, err := e.gw.InsertSignal(ctx, sig)
		if err != nil {
			log.Warn().Err(err).Str("symbol", symbol).Msg("signal insert failed")
			return
		}
		sig.ID = id
		e.publish(ctx, sig)

	case err != nil:
		log.Warn().Err(err).Str("symbol", symbol).Msg("signal lookup failed")

	default:
		if _, err := e.gw.UpdateSignal(ctx, existing.ID, diff, rate, fromPrice, toPrice, now); err != nil {
			log.Warn().Err(err).Str("symbol", symbol).Msg("signal update failed")
			return
		}
		existing.PriceDiff = diff
		existing.PriceDiffRate = rate
		existing.FromPrice = fromPrice
		existing.ToPrice = toPrice
		existing.UpdatedAt = now
		e.publish(ctx, existing)
	}
}

func (e *Engine) publish(ctx context.Context, sig *model.DiffSignal) {
	log.Info().
		Str("symbol", sig.Symbol).
		Str("from", string(sig.FromSlot)).
		Str("to", string(sig.ToSlot)).
		Str("rate", sig.PriceDiffRate.String()).
		Msg("diff signal")

	if e.pub == nil {
		return
	}
	if err := e.pub.PublishSignal(ctx, sig); err != nil {
		log.Warn().Err(err).Str("symbol", sig.Symbol).Msg("signal publish failed")
	}
}
