package domain

// OrderSide represents the direction of a signal or position (BUY or SELL).
type OrderSide string

const (
	Buy  OrderSide = "BUY"
	Sell OrderSide = "SELL"
)

// SignalType identifies what an inbound signal asks the bridge to do.
type SignalType string

const (
	SignalEntry     SignalType = "ENTRY"     // Open a new position at market
	SignalBreakeven SignalType = "BREAKEVEN" // Move the latest position's stop to its entry price
)

// TimeInForce is the broker order attribute controlling how long an order stays active.
type TimeInForce string

const (
	FillOrKill       TimeInForce = "FOK"
	GoodTillCanceled TimeInForce = "GTC"
)

// PricePrecision is the number of decimal places every price is sent with.
const PricePrecision = 5
