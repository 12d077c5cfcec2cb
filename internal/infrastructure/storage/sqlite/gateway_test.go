package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"arbdiff/internal/application/port"
	"arbdiff/internal/domain/model"
)

func newTestGateway(t *testing.T) *Gateway {
	t.Helper()
	g, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create gateway: %v", err)
	}
	t.Cleanup(func() { _ = g.Close() })
	return g
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

func TestPriceRecordRoundTrip(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()
	now := time.Date(2024, 8, 6, 12, 0, 0, 0, time.UTC)

	if _, err := g.GetPriceRecord(ctx, "BTCUSDT"); !errors.Is(err, port.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	rec := model.NewPriceRecord("BTCUSDT", now)
	rec.Slots[model.SlotBinanceFutures] = dec(t, "65000.123456789")
	id, err := g.InsertPriceRecord(ctx, rec)
	if err != nil {
		t.Fatalf("InsertPriceRecord failed: %v", err)
	}
	if id == 0 {
		t.Fatal("expected non-zero id")
	}

	got, err := g.GetPriceRecord(ctx, "BTCUSDT")
	if err != nil {
		t.Fatalf("GetPriceRecord failed: %v", err)
	}
	if got.ID != id {
		t.Errorf("id = %d, want %d", got.ID, id)
	}
	// TEXT storage keeps every digit
	if got.Slots[model.SlotBinanceFutures].String() != "65000.123456789" {
		t.Errorf("price = %s, want 65000.123456789", got.Slots[model.SlotBinanceFutures])
	}
	if !got.Slots[model.SlotKucoinFutures].IsZero() {
		t.Errorf("empty slot should read back zero, got %s", got.Slots[model.SlotKucoinFutures])
	}
}

func TestUpdatePriceSlotTouchesOnlyNamedColumn(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()
	now := time.Now().UTC()

	rec := model.NewPriceRecord("BTCUSDT", now)
	rec.Slots[model.SlotBinanceFutures] = dec(t, "65000")
	id, err := g.InsertPriceRecord(ctx, rec)
	if err != nil {
		t.Fatalf("InsertPriceRecord failed: %v", err)
	}

	n, err := g.UpdatePriceSlot(ctx, id, model.SlotBybitFutures, dec(t, "65400"), now.Add(time.Second))
	if err != nil {
		t.Fatalf("UpdatePriceSlot failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("affected rows = %d, want 1", n)
	}

	got, err := g.GetPriceRecord(ctx, "BTCUSDT")
	if err != nil {
		t.Fatalf("GetPriceRecord failed: %v", err)
	}
	if !got.Slots[model.SlotBinanceFutures].Equal(dec(t, "65000")) {
		t.Errorf("binance slot changed: %s", got.Slots[model.SlotBinanceFutures])
	}
	if !got.Slots[model.SlotBybitFutures].Equal(dec(t, "65400")) {
		t.Errorf("bybit slot = %s, want 65400", got.Slots[model.SlotBybitFutures])
	}
}

func TestUpdatePriceSlotRejectsUnknownSlot(t *testing.T) {
	g := newTestGateway(t)
	if _, err := g.UpdatePriceSlot(context.Background(), 1, model.Slot("HUOBI_SPOT"), dec(t, "1"), time.Now()); err == nil {
		t.Fatal("expected error for unknown slot")
	}
}

func TestSignalUpsertByKey(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()
	created := time.Date(2024, 8, 6, 12, 0, 0, 0, time.UTC)

	if _, err := g.GetSignal(ctx, "BTCUSDT", model.SlotBinanceFutures, model.SlotBybitFutures); !errors.Is(err, port.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	sig := &model.DiffSignal{
		Symbol:        "BTCUSDT",
		FromSlot:      model.SlotBinanceFutures,
		ToSlot:        model.SlotBybitFutures,
		PriceDiff:     dec(t, "400"),
		PriceDiffRate: dec(t, "0.6116"),
		FromPrice:     dec(t, "65000"),
		ToPrice:       dec(t, "65400"),
		CreatedAt:     created,
		UpdatedAt:     created,
	}
	id, err := g.InsertSignal(ctx, sig)
	if err != nil {
		t.Fatalf("InsertSignal failed: %v", err)
	}

	updated := created.Add(time.Minute)
	n, err := g.UpdateSignal(ctx, id, dec(t, "500"), dec(t, "0.7645"), dec(t, "65000"), dec(t, "65500"), updated)
	if err != nil {
		t.Fatalf("UpdateSignal failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("affected rows = %d, want 1", n)
	}

	got, err := g.GetSignal(ctx, "BTCUSDT", model.SlotBinanceFutures, model.SlotBybitFutures)
	if err != nil {
		t.Fatalf("GetSignal failed: %v", err)
	}
	if got.ID != id {
		t.Errorf("id = %d, want %d", got.ID, id)
	}
	if !got.PriceDiff.Equal(dec(t, "500")) || !got.ToPrice.Equal(dec(t, "65500")) {
		t.Errorf("update not applied: diff=%s to=%s", got.PriceDiff, got.ToPrice)
	}
	if !got.CreatedAt.Equal(created) || !got.UpdatedAt.Equal(updated) {
		t.Errorf("createdAt/updatedAt = %v/%v", got.CreatedAt, got.UpdatedAt)
	}
}

func TestSignalKeyIsUnique(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()
	now := time.Now().UTC()

	sig := &model.DiffSignal{
		Symbol:        "BTCUSDT",
		FromSlot:      model.SlotBinanceFutures,
		ToSlot:        model.SlotBybitFutures,
		PriceDiff:     dec(t, "400"),
		PriceDiffRate: dec(t, "0.61"),
		FromPrice:     dec(t, "65000"),
		ToPrice:       dec(t, "65400"),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if _, err := g.InsertSignal(ctx, sig); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	if _, err := g.InsertSignal(ctx, sig); err == nil {
		t.Fatal("duplicate (symbol, from, to) insert should violate the unique constraint")
	}
}
