package normalize

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"

	"arbdiff/internal/domain/model"
)

type bybitTickerItem struct {
	Symbol    string `json:"symbol"`
	LastPrice string `json:"lastPrice"`
}

// data can be object OR array
type bybitDataList []bybitTickerItem

func (d *bybitDataList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*d = nil
		return nil
	}
	if b[0] == '[' {
		var arr []bybitTickerItem
		if err := json.Unmarshal(b, &arr); err != nil {
			return err
		}
		*d = arr
		return nil
	}
	var one bybitTickerItem
	if err := json.Unmarshal(b, &one); err != nil {
		return err
	}
	*d = bybitDataList{one}
	return nil
}

type bybitTickerMsg struct {
	Topic string        `json:"topic"`
	Type  string        `json:"type"`
	Ts    int64         `json:"ts"`
	Data  bybitDataList `json:"data"`

	Success *bool  `json:"success,omitempty"`
	RetMsg  string `json:"ret_msg,omitempty"`
	Op      string `json:"op,omitempty"`
}

func bybitTicks(m model.Market, payload []byte) []model.Tick {
	var msg bybitTickerMsg
	if err := json.Unmarshal(payload, &msg); err != nil {
		return nil
	}
	// subscribe ack, not a ticker
	if msg.Success != nil {
		return nil
	}

	out := make([]model.Tick, 0, len(msg.Data))
	for _, d := range msg.Data {
		sym := strings.ToUpper(strings.TrimSpace(d.Symbol))
		pxs := strings.TrimSpace(d.LastPrice)
		// delta frames may omit lastPrice entirely
		if sym == "" || pxs == "" {
			continue
		}
		px, err := decimal.NewFromString(pxs)
		if err != nil || !px.IsPositive() {
			continue
		}
		ts := msg.Ts
		if ts <= 0 {
			ts = nowMillis()
		}
		out = append(out, model.Tick{
			Platform:   model.PlatformBybit,
			Market:     m,
			Symbol:     sym,
			Price:      px,
			ObservedAt: ts,
		})
	}
	return out
}
