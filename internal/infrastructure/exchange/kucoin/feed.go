package kucoin

import (
	"context"
	"errors"
	"strings"

	"arbdiff/internal/domain/model"
	"arbdiff/internal/infrastructure/exchange"
)

// DefaultSubscribe requests instrument updates for all contracts.
const DefaultSubscribe = `{"id":1,"type":"subscribe","topic":"/contract/instrument:ALL","response":true}`

// Feed streams contract instrument frames. The endpoint URL carries the
// connect token KuCoin hands out, so it comes entirely from config.
type Feed struct {
	wsURL     string
	subscribe string
	market    model.Market
}

func NewFeed(wsURL, subscribe string, market model.Market) *Feed {
	subscribe = strings.TrimSpace(subscribe)
	if subscribe == "" {
		subscribe = DefaultSubscribe
	}
	return &Feed{
		wsURL:     strings.TrimSpace(wsURL),
		subscribe: subscribe,
		market:    market,
	}
}

func (f *Feed) Platform() model.Platform { return model.PlatformKucoin }
func (f *Feed) Market() model.Market     { return f.market }

func (f *Feed) Connect(ctx context.Context) (<-chan []byte, error) {
	if f.wsURL == "" {
		return nil, errors.New("kucoin ws_url empty")
	}
	out := make(chan []byte, 256)
	cfg := exchange.StreamConfig{
		Name:      string(model.PlatformKucoin) + "/" + string(f.market),
		URL:       f.wsURL,
		Subscribe: f.subscribe,
	}
	go func() {
		defer close(out)
		exchange.Stream(ctx, cfg, out)
	}()
	return out, nil
}
