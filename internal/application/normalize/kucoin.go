package normalize

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"

	"arbdiff/internal/domain/model"
)

// Contract instrument messages carry numeric prices; decoding through
// json.Number keeps them exact instead of routing through float64.
type kucoinInstrumentData struct {
	Symbol    string      `json:"symbol"`
	MarkPrice json.Number `json:"markPrice"`
	Timestamp int64       `json:"timestamp"`
}

type kucoinInstrumentMsg struct {
	Topic   string               `json:"topic"`
	Type    string               `json:"type"`
	Subject string               `json:"subject"`
	Data    kucoinInstrumentData `json:"data"`
}

func kucoinTicks(m model.Market, payload []byte) []model.Tick {
	var msg kucoinInstrumentMsg
	if err := json.Unmarshal(payload, &msg); err != nil {
		return nil
	}
	// welcome / ack / pong frames have no data block
	if msg.Type != "message" {
		return nil
	}

	sym := strings.ToUpper(strings.TrimSpace(msg.Data.Symbol))
	if sym == "" {
		return nil
	}
	// KuCoin contract symbols append a trailing contract-type character
	// ("XBTUSDTM"); strip it so symbols line up with the other venues.
	sym = sym[:len(sym)-1]
	if sym == "" {
		return nil
	}

	pxs := msg.Data.MarkPrice.String()
	if pxs == "" {
		return nil
	}
	px, err := decimal.NewFromString(pxs)
	if err != nil || !px.IsPositive() {
		return nil
	}

	ts := msg.Data.Timestamp
	if ts <= 0 {
		ts = nowMillis()
	}
	return []model.Tick{{
		Platform:   model.PlatformKucoin,
		Market:     m,
		Symbol:     sym,
		Price:      px,
		ObservedAt: ts,
	}}
}
