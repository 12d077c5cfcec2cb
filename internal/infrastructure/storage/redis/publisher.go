package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"arbdiff/internal/application/port"
	"arbdiff/internal/domain/model"
)

// Publisher mirrors latest prices into a hash and pushes diff signals onto a
// stream plus a pub/sub channel for live consumers.
type Publisher struct {
	rdb          *redis.Client
	prefix       string
	ttl          time.Duration
	keyLatest    string
	signalStream string
	signalChan   string
}

func New(rdb *redis.Client, prefix string, ttl time.Duration, signalStream, signalChan string) *Publisher {
	if strings.TrimSpace(signalStream) == "" {
		signalStream = prefix + ":signals"
	}
	if strings.TrimSpace(signalChan) == "" {
		signalChan = prefix + ":signals:pub"
	}
	return &Publisher{
		rdb:          rdb,
		prefix:       prefix,
		ttl:          ttl,
		keyLatest:    prefix + ":latest",
		signalStream: signalStream,
		signalChan:   signalChan,
	}
}

type latestPrice struct {
	Slot   string `json:"slot"`
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
	Ts     int64  `json:"ts"`
}

func (p *Publisher) PublishPrice(ctx context.Context, symbol string, slot model.Slot, price decimal.Decimal, ts int64) error {
	if !price.IsPositive() {
		return nil
	}
	b, _ := json.Marshal(latestPrice{
		Slot:   string(slot),
		Symbol: symbol,
		Price:  price.String(),
		Ts:     ts,
	})

	// Hash: field = "BINANCE_FUTURES:BTCUSDT" -> json
	field := fmt.Sprintf("%s:%s", slot, symbol)
	pipe := p.rdb.Pipeline()
	pipe.HSet(ctx, p.keyLatest, field, string(b))
	if p.ttl > 0 {
		pipe.Expire(ctx, p.keyLatest, p.ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

type signalMsg struct {
	Symbol    string `json:"symbol"`
	FromSlot  string `json:"from_slot"`
	ToSlot    string `json:"to_slot"`
	PriceDiff string `json:"price_diff"`
	DiffRate  string `json:"price_diff_rate"`
	FromPrice string `json:"from_price"`
	ToPrice   string `json:"to_price"`
	UpdatedAt int64  `json:"updated_at"`
}

func (p *Publisher) PublishSignal(ctx context.Context, sig *model.DiffSignal) error {
	msg := signalMsg{
		Symbol:    sig.Symbol,
		FromSlot:  string(sig.FromSlot),
		ToSlot:    string(sig.ToSlot),
		PriceDiff: sig.PriceDiff.String(),
		DiffRate:  sig.PriceDiffRate.String(),
		FromPrice: sig.FromPrice.String(),
		ToPrice:   sig.ToPrice.String(),
		UpdatedAt: sig.UpdatedAt.UnixMilli(),
	}
	b, _ := json.Marshal(msg)

	_, err := p.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: p.signalStream,
		Values: map[string]any{
			"symbol":    msg.Symbol,
			"from_slot": msg.FromSlot,
			"to_slot":   msg.ToSlot,
			"rate":      msg.DiffRate,
			"payload":   string(b),
		},
	}).Result()
	if err != nil {
		return err
	}
	return p.rdb.Publish(ctx, p.signalChan, string(b)).Err()
}

var _ port.Publisher = (*Publisher)(nil)
