package binance

import (
	"context"
	"strings"

	"arbdiff/internal/domain/model"
	"arbdiff/internal/infrastructure/exchange"
)

// Feed streams miniTicker frames for one market.
// The all-market stream needs no subscribe message, the stream name is part
// of the URL (e.g. wss://fstream.binance.com/ws/!miniTicker@arr).
type Feed struct {
	wsURL  string
	market model.Market
}

func NewFeed(wsURL string, market model.Market) *Feed {
	return &Feed{wsURL: strings.TrimSpace(wsURL), market: market}
}

func (f *Feed) Platform() model.Platform { return model.PlatformBinance }
func (f *Feed) Market() model.Market     { return f.market }

func (f *Feed) Connect(ctx context.Context) (<-chan []byte, error) {
	out := make(chan []byte, 256)
	cfg := exchange.StreamConfig{
		Name: string(model.PlatformBinance) + "/" + string(f.market),
		URL:  f.wsURL,
	}
	go func() {
		defer close(out)
		exchange.Stream(ctx, cfg, out)
	}()
	return out, nil
}
