package ports

import (
	"context"
	"encoding/json"
	"time"

	"signalBridge/internal/domain"
)

// OrderResult represents the essential details returned after the broker accepted an order.
type OrderResult struct {
	TransactionID string          // ID of the broker transaction that created the order
	OrderID       string          // Broker order ID, if the response carried one
	TradeID       string          // Trade opened by the fill (market orders) or the trade the order is attached to
	Raw           json.RawMessage // Broker response body, echoed back to the signal source
	Timestamp     time.Time       // Time the response was received
}

// BrokerGateway is the only way the bridge talks to the brokerage.
// Every call is a blocking remote request bounded by the implementation's timeout,
// and no call is ever retried: a blind retry of an order placement risks a duplicate fill.
type BrokerGateway interface {
	// PlaceMarketOrder sends a fill-or-kill market order, attaching stop-loss and
	// take-profit orders only when the intent carries them.
	PlaceMarketOrder(ctx context.Context, intent domain.OrderIntent) (*OrderResult, error)

	// ListOpenTrades returns the account's open trades on one instrument,
	// in whatever order the broker lists them.
	ListOpenTrades(ctx context.Context, instrument domain.Instrument) ([]domain.OpenPosition, error)

	// ReplaceStopLoss places a good-till-cancelled stop-loss order on a trade,
	// replacing any stop it already has.
	ReplaceStopLoss(ctx context.Context, req domain.StopReplacement) (*OrderResult, error)
}
