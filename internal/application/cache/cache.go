// Package cache holds the authoritative in-memory latest-price state.
// Exactly one updater goroutine writes it; the diff engine only reads
// snapshots.
package cache

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"arbdiff/internal/domain/model"
)

type Cache struct {
	mu      sync.Mutex
	records map[string]*model.PriceRecord
}

func New() *Cache {
	return &Cache{records: make(map[string]*model.PriceRecord)}
}

// Upsert sets exactly the named slot for symbol, creating the record with
// all slots at zero on first sight. Every other slot keeps its prior value.
// The returned record is a copy safe to hand to persistence.
func (c *Cache) Upsert(symbol string, slot model.Slot, price decimal.Decimal, now time.Time) *model.PriceRecord {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec := c.records[symbol]
	if rec == nil {
		rec = model.NewPriceRecord(symbol, now)
		c.records[symbol] = rec
	}
	rec.Slots[slot] = price
	rec.UpdatedAt = now
	return rec.Clone()
}

// Snapshot returns copies of every record. Each record is internally
// consistent; records across symbols may reflect different instants.
func (c *Cache) Snapshot() []*model.PriceRecord {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]*model.PriceRecord, 0, len(c.records))
	for _, rec := range c.records {
		out = append(out, rec.Clone())
	}
	return out
}

// Len reports the number of tracked symbols.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.records)
}
