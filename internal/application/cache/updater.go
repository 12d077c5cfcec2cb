package cache

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"arbdiff/internal/application/port"
	"arbdiff/internal/domain/model"
)

// Updater is the single consumer of the delivery channel. It serializes all
// cache writes and mirrors each one to durable storage best-effort: a failed
// gateway call is logged and corrected by the next tick, never rolled back.
type Updater struct {
	cache *Cache
	gw    port.Gateway
	pub   port.Publisher // optional
}

func NewUpdater(c *Cache, gw port.Gateway, pub port.Publisher) *Updater {
	return &Updater{cache: c, gw: gw, pub: pub}
}

func (u *Updater) Run(ctx context.Context, in <-chan model.Tick) {
	for {
		select {
		case <-ctx.Done():
			return
		case t, ok := <-in:
			if !ok {
				return
			}
			u.apply(ctx, t)
		}
	}
}

func (u *Updater) apply(ctx context.Context, t model.Tick) {
	slot, ok := t.Slot()
	if !ok {
		// unknown (platform, market) is fatal to this tick only
		log.Error().
			Str("platform", string(t.Platform)).
			Str("market", string(t.Market)).
			Str("symbol", t.Symbol).
			Msg("no slot for tick")
		return
	}

	now := time.Now().UTC()
	rec := u.cache.Upsert(t.Symbol, slot, t.Price, now)
	u.mirror(ctx, rec, slot, t, now)

	if u.pub != nil {
		if err := u.pub.PublishPrice(ctx, t.Symbol, slot, t.Price, t.ObservedAt); err != nil {
			log.Warn().Err(err).Str("symbol", t.Symbol).Msg("price publish failed")
		}
	}
}

// mirror writes the slot update through the gateway: get by symbol, then
// insert-if-absent or update-by-id.
func (u *Updater) mirror(ctx context.Context, rec *model.PriceRecord, slot model.Slot, t model.Tick, now time.Time) {
	existing, err := u.gw.GetPriceRecord(ctx, t.Symbol)
	switch {
	case errors.Is(err, port.ErrNotFound):
		if _, err := u.gw.InsertPriceRecord(ctx, rec); err != nil {
			log.Warn().Err(err).Str("symbol", t.Symbol).Msg("price insert failed")
		}
	case err != nil:
		log.Warn().Err(err).Str("symbol", t.Symbol).Msg("price lookup failed")
	default:
		if _, err := u.gw.UpdatePriceSlot(ctx, existing.ID, slot, t.Price, now); err != nil {
			log.Warn().Err(err).
				Str("symbol", t.Symbol).
				Str("slot", string(slot)).
				Msg("price slot update failed")
		}
	}
}
