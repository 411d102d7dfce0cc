package domain

import "github.com/shopspring/decimal"

// OrderIntent is a market order the bridge has decided to send.
// Units are signed: positive opens a long, negative a short.
type OrderIntent struct {
	Instrument Instrument
	Units      int64
	StopLoss   *decimal.Decimal // nil when the signal carried no stop-loss
	TakeProfit *decimal.Decimal // nil when the signal carried no take-profit
}

// Side returns the direction implied by the sign of Units.
func (o OrderIntent) Side() OrderSide {
	if o.Units < 0 {
		return Sell
	}
	return Buy
}

// StopReplacement asks the broker to replace the protective stop of one trade.
type StopReplacement struct {
	TradeID string
	Price   decimal.Decimal
}

// FormatPrice renders a price with the fixed precision the broker expects.
func FormatPrice(p decimal.Decimal) string {
	return p.StringFixed(PricePrecision)
}

// NewOrderIntent signs size by side and rounds the protective prices to the broker precision.
func NewOrderIntent(instrument Instrument, side OrderSide, size int64, stopLoss, takeProfit *decimal.Decimal) OrderIntent {
	units := size
	if side == Sell {
		units = -size
	}
	return OrderIntent{
		Instrument: instrument,
		Units:      units,
		StopLoss:   roundPrice(stopLoss),
		TakeProfit: roundPrice(takeProfit),
	}
}

func roundPrice(p *decimal.Decimal) *decimal.Decimal {
	if p == nil {
		return nil
	}
	r := p.Round(PricePrecision)
	return &r
}
