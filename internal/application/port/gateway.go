package port

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"arbdiff/internal/domain/model"
)

// ErrNotFound is returned by gateway lookups when no row matches.
var ErrNotFound = errors.New("not found")

// Gateway is the narrow durable-storage boundary. All operations may fail
// with transient I/O errors; callers log and move on, never retry.
type Gateway interface {
	GetPriceRecord(ctx context.Context, symbol string) (*model.PriceRecord, error)
	InsertPriceRecord(ctx context.Context, rec *model.PriceRecord) (int64, error)
	UpdatePriceSlot(ctx context.Context, id int64, slot model.Slot, price decimal.Decimal, updatedAt time.Time) (int64, error)

	GetSignal(ctx context.Context, symbol string, from, to model.Slot) (*model.DiffSignal, error)
	InsertSignal(ctx context.Context, sig *model.DiffSignal) (int64, error)
	UpdateSignal(ctx context.Context, id int64, diff, rate, fromPrice, toPrice decimal.Decimal, updatedAt time.Time) (int64, error)

	Close() error
}

// Publisher is an optional side-channel for downstream consumers that want
// push delivery next to the durable tables. Best-effort, same as Gateway.
type Publisher interface {
	PublishPrice(ctx context.Context, symbol string, slot model.Slot, price decimal.Decimal, ts int64) error
	PublishSignal(ctx context.Context, sig *model.DiffSignal) error
}
