package bybit

import (
	"context"
	"errors"
	"strings"

	"arbdiff/internal/domain/model"
	"arbdiff/internal/infrastructure/exchange"
)

// Feed streams ticker frames from the public linear/spot endpoints. Bybit
// requires an explicit subscribe request after connect; the payload comes
// from config so operators control the topic list.
type Feed struct {
	wsURL     string
	subscribe string
	market    model.Market
}

func NewFeed(wsURL, subscribe string, market model.Market) *Feed {
	return &Feed{
		wsURL:     strings.TrimSpace(wsURL),
		subscribe: strings.TrimSpace(subscribe),
		market:    market,
	}
}

func (f *Feed) Platform() model.Platform { return model.PlatformBybit }
func (f *Feed) Market() model.Market     { return f.market }

func (f *Feed) Connect(ctx context.Context) (<-chan []byte, error) {
	if f.subscribe == "" {
		return nil, errors.New("bybit subscribe payload empty")
	}
	out := make(chan []byte, 256)
	cfg := exchange.StreamConfig{
		Name:      string(model.PlatformBybit) + "/" + string(f.market),
		URL:       f.wsURL,
		Subscribe: f.subscribe,
	}
	go func() {
		defer close(out)
		exchange.Stream(ctx, cfg, out)
	}()
	return out, nil
}
