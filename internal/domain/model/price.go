package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tick is the canonical price event every exchange payload normalizes into.
// Price is always positive; a tick with no usable price is never produced.
type Tick struct {
	Platform   Platform
	Market     Market
	Symbol     string
	Price      decimal.Decimal
	ObservedAt int64 // unix ms
}

// Slot returns the price slot this tick updates.
func (t Tick) Slot() (Slot, bool) {
	return SlotFor(t.Platform, t.Market)
}

// PriceRecord holds the latest known price per slot for one symbol.
// A zero decimal in a slot means "no data yet"; real prices are always > 0.
type PriceRecord struct {
	ID        int64
	Symbol    string
	Slots     map[Slot]decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewPriceRecord creates a record with every slot at zero.
func NewPriceRecord(symbol string, now time.Time) *PriceRecord {
	slots := make(map[Slot]decimal.Decimal, len(slotOrder))
	for _, s := range slotOrder {
		slots[s] = decimal.Zero
	}
	return &PriceRecord{
		Symbol:    symbol,
		Slots:     slots,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy so snapshots never alias cache state.
func (r *PriceRecord) Clone() *PriceRecord {
	slots := make(map[Slot]decimal.Decimal, len(r.Slots))
	for k, v := range r.Slots {
		slots[k] = v
	}
	return &PriceRecord{
		ID:        r.ID,
		Symbol:    r.Symbol,
		Slots:     slots,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
