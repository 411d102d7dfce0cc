package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OpenPosition is a read-only view of a trade currently open at the broker.
// It is fetched live on every request and never cached.
type OpenPosition struct {
	ID         string          // Broker trade ID
	Instrument Instrument      // Instrument the trade is open on
	OpenTime   time.Time       // When the broker filled the trade
	EntryPrice decimal.Decimal // Average fill price
	Side       OrderSide       // BUY for long trades, SELL for short
	Units      decimal.Decimal // Currently open units, signed like the broker reports them
}

// LatestOpened returns the most recently opened position.
//
// Positions sharing the same OpenTime are not ordered any further: whichever
// the broker listed first wins, and callers must not rely on which one that is.
func LatestOpened(positions []OpenPosition) (OpenPosition, bool) {
	if len(positions) == 0 {
		return OpenPosition{}, false
	}
	latest := positions[0]
	for _, p := range positions[1:] {
		if p.OpenTime.After(latest.OpenTime) {
			latest = p
		}
	}
	return latest, true
}
