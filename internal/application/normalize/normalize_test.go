package normalize

import (
	"testing"

	"arbdiff/internal/domain/model"
)

func TestBinanceMiniTickerArray(t *testing.T) {
	payload := []byte(`[
		{"e":"24hrMiniTicker","E":1722976560000,"s":"BTCUSDT","c":"65000.1","o":"64000","h":"66000","l":"63000"},
		{"e":"24hrMiniTicker","E":1722976560000,"s":"ETHUSDT","c":"3200.55","o":"3100","h":"3300","l":"3000"}
	]`)

	ticks := Normalize(model.PlatformBinance, model.MarketFutures, payload)
	if len(ticks) != 2 {
		t.Fatalf("expected 2 ticks, got %d", len(ticks))
	}
	if ticks[0].Symbol != "BTCUSDT" || ticks[0].Price.String() != "65000.1" {
		t.Errorf("unexpected first tick: %s %s", ticks[0].Symbol, ticks[0].Price)
	}
	if ticks[0].Platform != model.PlatformBinance || ticks[0].Market != model.MarketFutures {
		t.Errorf("tick should carry the connector identity")
	}
	if ticks[0].ObservedAt != 1722976560000 {
		t.Errorf("expected event time, got %d", ticks[0].ObservedAt)
	}
}

func TestBinanceSkipsEventsWithoutPrice(t *testing.T) {
	payload := []byte(`[
		{"e":"24hrMiniTicker","E":1,"s":"BTCUSDT"},
		{"e":"24hrMiniTicker","E":1,"s":"ETHUSDT","c":"3200"}
	]`)
	ticks := Normalize(model.PlatformBinance, model.MarketFutures, payload)
	if len(ticks) != 1 || ticks[0].Symbol != "ETHUSDT" {
		t.Fatalf("expected only the priced event, got %v", ticks)
	}
}

func TestBybitTickerDelta(t *testing.T) {
	payload := []byte(`{"topic":"tickers.BTCUSDT","type":"delta","ts":1722976560000,
		"data":{"symbol":"BTCUSDT","lastPrice":"65400.5"}}`)

	ticks := Normalize(model.PlatformBybit, model.MarketFutures, payload)
	if len(ticks) != 1 {
		t.Fatalf("expected 1 tick, got %d", len(ticks))
	}
	if ticks[0].Price.String() != "65400.5" {
		t.Errorf("price = %s", ticks[0].Price)
	}
}

func TestBybitDataArray(t *testing.T) {
	payload := []byte(`{"topic":"tickers","type":"snapshot","ts":1,
		"data":[{"symbol":"BTCUSDT","lastPrice":"65000"},{"symbol":"ETHUSDT","lastPrice":"3200"}]}`)

	ticks := Normalize(model.PlatformBybit, model.MarketFutures, payload)
	if len(ticks) != 2 {
		t.Fatalf("expected 2 ticks, got %d", len(ticks))
	}
}

func TestBybitSubscribeAckDropped(t *testing.T) {
	payload := []byte(`{"success":true,"ret_msg":"","conn_id":"abc","op":"subscribe"}`)
	if ticks := Normalize(model.PlatformBybit, model.MarketFutures, payload); len(ticks) != 0 {
		t.Fatalf("ack should produce no ticks, got %d", len(ticks))
	}
}

func TestBybitDeltaWithoutLastPriceDropped(t *testing.T) {
	payload := []byte(`{"topic":"tickers.BTCUSDT","type":"delta","ts":1,
		"data":{"symbol":"BTCUSDT"}}`)
	if ticks := Normalize(model.PlatformBybit, model.MarketFutures, payload); len(ticks) != 0 {
		t.Fatalf("priceless delta should produce no ticks, got %d", len(ticks))
	}
}

func TestKucoinStripsTrailingContractChar(t *testing.T) {
	payload := []byte(`{"topic":"/contract/instrument:XBTUSDTM","type":"message","subject":"mark.index.price",
		"data":{"symbol":"XBTUSDTM","markPrice":65000.123456789,"timestamp":1722976560000}}`)

	ticks := Normalize(model.PlatformKucoin, model.MarketFutures, payload)
	if len(ticks) != 1 {
		t.Fatalf("expected 1 tick, got %d", len(ticks))
	}
	if ticks[0].Symbol != "XBTUSDT" {
		t.Errorf("symbol = %q, want XBTUSDT", ticks[0].Symbol)
	}
	// json.Number keeps the wire digits; no binary-float artifacts
	if ticks[0].Price.String() != "65000.123456789" {
		t.Errorf("price = %s, want 65000.123456789", ticks[0].Price)
	}
}

func TestKucoinWelcomeDropped(t *testing.T) {
	payload := []byte(`{"id":"hQvf8jkno","type":"welcome"}`)
	if ticks := Normalize(model.PlatformKucoin, model.MarketFutures, payload); len(ticks) != 0 {
		t.Fatalf("welcome should produce no ticks, got %d", len(ticks))
	}
}

func TestKucoinFundingRateMessageWithoutMarkPriceDropped(t *testing.T) {
	payload := []byte(`{"topic":"/contract/instrument:ALL","type":"message","subject":"funding.rate",
		"data":{"symbol":"IDUSDTM","granularity":60000,"fundingRate":-0.00088,"timestamp":1722976560000}}`)
	if ticks := Normalize(model.PlatformKucoin, model.MarketFutures, payload); len(ticks) != 0 {
		t.Fatalf("funding frame has no mark price, got %d ticks", len(ticks))
	}
}

func TestMalformedPayloadsYieldNoTicks(t *testing.T) {
	cases := [][]byte{
		[]byte(`not json`),
		[]byte(`{"s":"BTCUSDT","c":"abc"}`),
		[]byte(`[]`),
		nil,
	}
	for _, payload := range cases {
		for _, p := range []model.Platform{model.PlatformBinance, model.PlatformBybit, model.PlatformKucoin} {
			if ticks := Normalize(p, model.MarketFutures, payload); len(ticks) != 0 {
				t.Errorf("%s: malformed payload %q produced %d ticks", p, payload, len(ticks))
			}
		}
	}
}

func TestUnknownPlatformYieldsNoTicks(t *testing.T) {
	if ticks := Normalize(model.Platform("HUOBI"), model.MarketSpot, []byte(`{}`)); ticks != nil {
		t.Fatalf("unknown platform should yield nil, got %v", ticks)
	}
}
