package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"arbdiff/internal/application/port"
	"arbdiff/internal/domain/model"
)

type Gateway struct {
	db *sql.DB
}

func New(path string) (*Gateway, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		_ = os.MkdirAll(dir, 0o755)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	g := &Gateway{db: db}
	if err := g.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return g, nil
}

func (g *Gateway) Close() error { return g.db.Close() }

// Prices are TEXT so decimals round-trip without binary-float drift.
func (g *Gateway) migrate(ctx context.Context) error {
	_, err := g.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS arb_coin_price (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  symbol TEXT NOT NULL UNIQUE,
  binance_spot_price TEXT NOT NULL DEFAULT '0',
  binance_futures_price TEXT NOT NULL DEFAULT '0',
  bybit_spot_price TEXT NOT NULL DEFAULT '0',
  bybit_futures_price TEXT NOT NULL DEFAULT '0',
  kucoin_spot_price TEXT NOT NULL DEFAULT '0',
  kucoin_futures_price TEXT NOT NULL DEFAULT '0',
  created_at INTEGER NOT NULL,
  updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_coin_price_symbol ON arb_coin_price(symbol);

CREATE TABLE IF NOT EXISTS arb_diff_signal (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  symbol TEXT NOT NULL,
  from_slot TEXT NOT NULL,
  to_slot TEXT NOT NULL,
  price_diff TEXT NOT NULL,
  price_diff_rate TEXT NOT NULL,
  from_price TEXT NOT NULL,
  to_price TEXT NOT NULL,
  created_at INTEGER NOT NULL,
  updated_at INTEGER NOT NULL,
  UNIQUE(symbol, from_slot, to_slot)
);
CREATE INDEX IF NOT EXISTS idx_diff_signal_symbol ON arb_diff_signal(symbol);
`)
	return err
}

// One fixed statement per slot. Never build the column name from input.
var slotUpdates = map[model.Slot]string{
	model.SlotBinanceSpot:    `UPDATE arb_coin_price SET binance_spot_price = ?, updated_at = ? WHERE id = ?`,
	model.SlotBinanceFutures: `UPDATE arb_coin_price SET binance_futures_price = ?, updated_at = ? WHERE id = ?`,
	model.SlotBybitSpot:      `UPDATE arb_coin_price SET bybit_spot_price = ?, updated_at = ? WHERE id = ?`,
	model.SlotBybitFutures:   `UPDATE arb_coin_price SET bybit_futures_price = ?, updated_at = ? WHERE id = ?`,
	model.SlotKucoinSpot:     `UPDATE arb_coin_price SET kucoin_spot_price = ?, updated_at = ? WHERE id = ?`,
	model.SlotKucoinFutures:  `UPDATE arb_coin_price SET kucoin_futures_price = ?, updated_at = ? WHERE id = ?`,
}

func (g *Gateway) GetPriceRecord(ctx context.Context, symbol string) (*model.PriceRecord, error) {
	row := g.db.QueryRowContext(ctx, `
		SELECT id, symbol,
		       binance_spot_price, binance_futures_price,
		       bybit_spot_price, bybit_futures_price,
		       kucoin_spot_price, kucoin_futures_price,
		       created_at, updated_at
		FROM arb_coin_price WHERE symbol = ?
	`, symbol)

	var rec PriceRow
	var createdMs, updatedMs int64
	err := row.Scan(&rec.ID, &rec.Symbol,
		&rec.BinanceSpot, &rec.BinanceFutures,
		&rec.BybitSpot, &rec.BybitFutures,
		&rec.KucoinSpot, &rec.KucoinFutures,
		&createdMs, &updatedMs)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, port.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec.toModel(createdMs, updatedMs)
}

// PriceRow is the scan target for arb_coin_price rows.
type PriceRow struct {
	ID     int64
	Symbol string

	BinanceSpot    string
	BinanceFutures string
	BybitSpot      string
	BybitFutures   string
	KucoinSpot     string
	KucoinFutures  string
}

func (r PriceRow) toModel(createdMs, updatedMs int64) (*model.PriceRecord, error) {
	cols := map[model.Slot]string{
		model.SlotBinanceSpot:    r.BinanceSpot,
		model.SlotBinanceFutures: r.BinanceFutures,
		model.SlotBybitSpot:      r.BybitSpot,
		model.SlotBybitFutures:   r.BybitFutures,
		model.SlotKucoinSpot:     r.KucoinSpot,
		model.SlotKucoinFutures:  r.KucoinFutures,
	}
	slots := make(map[model.Slot]decimal.Decimal, len(cols))
	for slot, raw := range cols {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("parse %s price: %w", slot, err)
		}
		slots[slot] = d
	}
	return &model.PriceRecord{
		ID:        r.ID,
		Symbol:    r.Symbol,
		Slots:     slots,
		CreatedAt: time.UnixMilli(createdMs).UTC(),
		UpdatedAt: time.UnixMilli(updatedMs).UTC(),
	}, nil
}

func (g *Gateway) InsertPriceRecord(ctx context.Context, rec *model.PriceRecord) (int64, error) {
	res, err := g.db.ExecContext(ctx, `
		INSERT INTO arb_coin_price(
			symbol,
			binance_spot_price, binance_futures_price,
			bybit_spot_price, bybit_futures_price,
			kucoin_spot_price, kucoin_futures_price,
			created_at, updated_at
		) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.Symbol,
		rec.Slots[model.SlotBinanceSpot].String(), rec.Slots[model.SlotBinanceFutures].String(),
		rec.Slots[model.SlotBybitSpot].String(), rec.Slots[model.SlotBybitFutures].String(),
		rec.Slots[model.SlotKucoinSpot].String(), rec.Slots[model.SlotKucoinFutures].String(),
		rec.CreatedAt.UnixMilli(), rec.UpdatedAt.UnixMilli())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (g *Gateway) UpdatePriceSlot(ctx context.Context, id int64, slot model.Slot, price decimal.Decimal, updatedAt time.Time) (int64, error) {
	q, ok := slotUpdates[slot]
	if !ok {
		return 0, fmt.Errorf("unknown slot %q", slot)
	}
	res, err := g.db.ExecContext(ctx, q, price.String(), updatedAt.UnixMilli(), id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (g *Gateway) GetSignal(ctx context.Context, symbol string, from, to model.Slot) (*model.DiffSignal, error) {
	row := g.db.QueryRowContext(ctx, `
		SELECT id, symbol, from_slot, to_slot,
		       price_diff, price_diff_rate, from_price, to_price,
		       created_at, updated_at
		FROM arb_diff_signal WHERE symbol = ? AND from_slot = ? AND to_slot = ?
	`, symbol, string(from), string(to))
	return scanSignal(row)
}

func scanSignal(row *sql.Row) (*model.DiffSignal, error) {
	var sig model.DiffSignal
	var fromSlot, toSlot string
	var diffS, rateS, fromPriceS, toPriceS string
	var createdMs, updatedMs int64
	err := row.Scan(&sig.ID, &sig.Symbol, &fromSlot, &toSlot,
		&diffS, &rateS, &fromPriceS, &toPriceS,
		&createdMs, &updatedMs)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, port.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	sig.FromSlot = model.Slot(fromSlot)
	sig.ToSlot = model.Slot(toSlot)
	if sig.PriceDiff, err = decimal.NewFromString(diffS); err != nil {
		return nil, fmt.Errorf("parse price_diff: %w", err)
	}
	if sig.PriceDiffRate, err = decimal.NewFromString(rateS); err != nil {
		return nil, fmt.Errorf("parse price_diff_rate: %w", err)
	}
	if sig.FromPrice, err = decimal.NewFromString(fromPriceS); err != nil {
		return nil, fmt.Errorf("parse from_price: %w", err)
	}
	if sig.ToPrice, err = decimal.NewFromString(toPriceS); err != nil {
		return nil, fmt.Errorf("parse to_price: %w", err)
	}
	sig.CreatedAt = time.UnixMilli(createdMs).UTC()
	sig.UpdatedAt = time.UnixMilli(updatedMs).UTC()
	return &sig, nil
}

func (g *Gateway) InsertSignal(ctx context.Context, sig *model.DiffSignal) (int64, error) {
	res, err := g.db.ExecContext(ctx, `
		INSERT INTO arb_diff_signal(
			symbol, from_slot, to_slot,
			price_diff, price_diff_rate, from_price, to_price,
			created_at, updated_at
		) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, sig.Symbol, string(sig.FromSlot), string(sig.ToSlot),
		sig.PriceDiff.String(), sig.PriceDiffRate.String(),
		sig.FromPrice.String(), sig.ToPrice.String(),
		sig.CreatedAt.UnixMilli(), sig.UpdatedAt.UnixMilli())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (g *Gateway) UpdateSignal(ctx context.Context, id int64, diff, rate, fromPrice, toPrice decimal.Decimal, updatedAt time.Time) (int64, error) {
	res, err := g.db.ExecContext(ctx, `
		UPDATE arb_diff_signal
		SET price_diff = ?, price_diff_rate = ?, from_price = ?, to_price = ?, updated_at = ?
		WHERE id = ?
	`, diff.String(), rate.String(), fromPrice.String(), toPrice.String(), updatedAt.UnixMilli(), id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

var _ port.Gateway = (*Gateway)(nil)
