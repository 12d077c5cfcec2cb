package normalize

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"

	"arbdiff/internal/domain/model"
)

// !miniTicker@arr frames carry an array of per-symbol events with string
// price fields.
type binanceMiniTicker struct {
	EventType string `json:"e"`
	EventTime int64  `json:"E"`
	Symbol    string `json:"s"`
	Close     string `json:"c"`
	Open      string `json:"o"`
	High      string `json:"h"`
	Low       string `json:"l"`
}

func binanceTicks(m model.Market, payload []byte) []model.Tick {
	var events []binanceMiniTicker
	if err := json.Unmarshal(payload, &events); err != nil {
		// single-event frames show up on non-array streams
		var one binanceMiniTicker
		if e := json.Unmarshal(payload, &one); e != nil {
			return nil
		}
		events = []binanceMiniTicker{one}
	}

	out := make([]model.Tick, 0, len(events))
	for _, ev := range events {
		sym := strings.ToUpper(strings.TrimSpace(ev.Symbol))
		pxs := strings.TrimSpace(ev.Close)
		if sym == "" || pxs == "" {
			continue
		}
		px, err := decimal.NewFromString(pxs)
		if err != nil || !px.IsPositive() {
			continue
		}
		ts := ev.EventTime
		if ts <= 0 {
			ts = nowMillis()
		}
		out = append(out, model.Tick{
			Platform:   model.PlatformBinance,
			Market:     m,
			Symbol:     sym,
			Price:      px,
			ObservedAt: ts,
		})
	}
	return out
}
