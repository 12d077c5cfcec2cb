package cache

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"arbdiff/internal/domain/model"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

func TestUpsertSlotIsolation(t *testing.T) {
	c := New()
	now := time.Now().UTC()

	c.Upsert("BTCUSDT", model.SlotBinanceFutures, dec(t, "65000"), now)
	rec := c.Upsert("BTCUSDT", model.SlotBybitFutures, dec(t, "65400"), now.Add(time.Second))

	if !rec.Slots[model.SlotBinanceFutures].Equal(dec(t, "65000")) {
		t.Errorf("binance futures slot clobbered: %s", rec.Slots[model.SlotBinanceFutures])
	}
	if !rec.Slots[model.SlotBybitFutures].Equal(dec(t, "65400")) {
		t.Errorf("bybit futures slot = %s", rec.Slots[model.SlotBybitFutures])
	}
	if !rec.Slots[model.SlotKucoinFutures].IsZero() {
		t.Errorf("untouched slot should stay zero, got %s", rec.Slots[model.SlotKucoinFutures])
	}
}

func TestUpsertCreatesRecordOnce(t *testing.T) {
	c := New()
	created := time.Date(2024, 8, 6, 12, 0, 0, 0, time.UTC)
	later := created.Add(time.Minute)

	first := c.Upsert("ETHUSDT", model.SlotBinanceSpot, dec(t, "3200"), created)
	second := c.Upsert("ETHUSDT", model.SlotBinanceSpot, dec(t, "3201"), later)

	if c.Len() != 1 {
		t.Fatalf("expected one record, got %d", c.Len())
	}
	if !first.CreatedAt.Equal(created) || !second.CreatedAt.Equal(created) {
		t.Errorf("createdAt must not change on update")
	}
	if !second.UpdatedAt.Equal(later) {
		t.Errorf("updatedAt = %v, want %v", second.UpdatedAt, later)
	}
}

func TestSnapshotDoesNotAliasCacheState(t *testing.T) {
	c := New()
	now := time.Now().UTC()
	c.Upsert("BTCUSDT", model.SlotBinanceFutures, dec(t, "65000"), now)

	snap := c.Snapshot()
	if len(snap) != 1 {
		t.Fatalf("expected 1 record, got %d", len(snap))
	}
	snap[0].Slots[model.SlotBinanceFutures] = dec(t, "1")

	again := c.Snapshot()
	if !again[0].Slots[model.SlotBinanceFutures].Equal(dec(t, "65000")) {
		t.Error("mutating a snapshot leaked into the cache")
	}
}
