package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DiffSignal records detected cross-slot price divergence for a symbol.
// Identity is (Symbol, FromSlot, ToSlot); a recomputation with the same key
// overwrites the existing row instead of inserting a duplicate.
type DiffSignal struct {
	ID            int64
	Symbol        string
	FromSlot      Slot
	ToSlot        Slot
	PriceDiff     decimal.Decimal // to - from
	PriceDiffRate decimal.Decimal // (to - from) / to * 100
	FromPrice     decimal.Decimal
	ToPrice       decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
