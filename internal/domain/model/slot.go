package model

// Platform is a supported exchange venue.
type Platform string

const (
	PlatformBinance Platform = "BINANCE"
	PlatformBybit   Platform = "BYBIT"
	PlatformKucoin  Platform = "KUCOIN"
)

// Market is the trading venue kind within a platform.
type Market string

const (
	MarketSpot    Market = "spot"
	MarketFutures Market = "futures"
)

// Slot names one (platform, market) price field within a symbol's record.
type Slot string

const (
	SlotBinanceSpot    Slot = "BINANCE_SPOT"
	SlotBinanceFutures Slot = "BINANCE_FUTURES"
	SlotBybitSpot      Slot = "BYBIT_SPOT"
	SlotBybitFutures   Slot = "BYBIT_FUTURES"
	SlotKucoinSpot     Slot = "KUCOIN_SPOT"
	SlotKucoinFutures  Slot = "KUCOIN_FUTURES"
)

// slotOrder fixes the global slot ordering used for pairwise diff
// evaluation. Pairs are only ever evaluated in this order (i < j).
var slotOrder = []Slot{
	SlotBinanceSpot,
	SlotBinanceFutures,
	SlotBybitSpot,
	SlotBybitFutures,
	SlotKucoinSpot,
	SlotKucoinFutures,
}

// Slots returns all known slots in their fixed order.
func Slots() []Slot {
	out := make([]Slot, len(slotOrder))
	copy(out, slotOrder)
	return out
}

// SlotPair is an ordered (from, to) slot pairing.
type SlotPair struct {
	From Slot
	To   Slot
}

// SlotPairs enumerates every unordered pair of distinct slots exactly once,
// ordered by the fixed slot ordering.
func SlotPairs() []SlotPair {
	var out []SlotPair
	for i := 0; i < len(slotOrder); i++ {
		for j := i + 1; j < len(slotOrder); j++ {
			out = append(out, SlotPair{From: slotOrder[i], To: slotOrder[j]})
		}
	}
	return out
}

// SlotFor maps a (platform, market) identity to its slot. The second result
// is false for combinations outside the known set.
func SlotFor(p Platform, m Market) (Slot, bool) {
	switch p {
	case PlatformBinance:
		switch m {
		case MarketSpot:
			return SlotBinanceSpot, true
		case MarketFutures:
			return SlotBinanceFutures, true
		}
	case PlatformBybit:
		switch m {
		case MarketSpot:
			return SlotBybitSpot, true
		case MarketFutures:
			return SlotBybitFutures, true
		}
	case PlatformKucoin:
		switch m {
		case MarketSpot:
			return SlotKucoinSpot, true
		case MarketFutures:
			return SlotKucoinFutures, true
		}
	}
	return "", false
}
