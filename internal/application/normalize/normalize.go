// Package normalize maps exchange-native ticker payloads into canonical
// ticks. Dispatch is by platform: the connector a payload arrived on already
// identifies its shape, so no structural guessing across shapes is needed.
package normalize

import (
	"time"

	"arbdiff/internal/domain/model"
)

// Normalize converts one raw payload into zero or more ticks. Malformed
// payloads, subscribe acks and ticks without a usable price all yield an
// empty slice; normalization failures are never fatal to the connector.
func Normalize(p model.Platform, m model.Market, payload []byte) []model.Tick {
	switch p {
	case model.PlatformBinance:
		return binanceTicks(m, payload)
	case model.PlatformBybit:
		return bybitTicks(m, payload)
	case model.PlatformKucoin:
		return kucoinTicks(m, payload)
	default:
		return nil
	}
}

func nowMillis() int64 { return time.Now().UnixMilli() }
