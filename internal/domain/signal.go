package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// SignalPayload is the JSON body an alert posts to the webhook.
// Fields are kept loose here; NewSignal decides what is valid.
type SignalPayload struct {
	Type       string           `json:"type"`
	Side       string           `json:"side,omitempty"`
	Symbol     string           `json:"symbol"`
	Units      *int64           `json:"units,omitempty"`
	StopLoss   *decimal.Decimal `json:"sl,omitempty"`
	TakeProfit *decimal.Decimal `json:"tp,omitempty"`
}

// Signal is a validated trading instruction. Build it with NewSignal.
type Signal struct {
	Type       SignalType
	Side       OrderSide // ENTRY only
	Symbol     string    // Raw ticker as sent by the alert
	Size       int64     // ENTRY only, always > 0
	StopLoss   *decimal.Decimal
	TakeProfit *decimal.Decimal
}

// NewSignal validates a payload. Side and units are only required for ENTRY
// signals and are ignored otherwise. The symbol is kept raw; normalizing it is
// the interpreter's job.
func NewSignal(p SignalPayload) (Signal, error) {
	typ := SignalType(strings.ToUpper(strings.TrimSpace(p.Type)))
	sig := Signal{
		Type:       typ,
		Symbol:     p.Symbol,
		StopLoss:   p.StopLoss,
		TakeProfit: p.TakeProfit,
	}

	switch typ {
	case SignalEntry:
		side, err := parseSide(p.Side)
		if err != nil {
			return Signal{}, err
		}
		if p.Units == nil {
			return Signal{}, fmt.Errorf("%w: units is required for %s", ErrInvalidSignal, typ)
		}
		if *p.Units <= 0 {
			return Signal{}, fmt.Errorf("%w: units must be positive, got %d", ErrInvalidSignal, *p.Units)
		}
		sig.Side = side
		sig.Size = *p.Units
	case SignalBreakeven:
	default:
		return Signal{}, fmt.Errorf("%w: %q", ErrUnknownSignalType, p.Type)
	}

	if err := checkPrice("sl", p.StopLoss); err != nil {
		return Signal{}, err
	}
	if err := checkPrice("tp", p.TakeProfit); err != nil {
		return Signal{}, err
	}
	return sig, nil
}

func parseSide(raw string) (OrderSide, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "buy":
		return Buy, nil
	case "sell":
		return Sell, nil
	case "":
		return "", fmt.Errorf("%w: side is required for %s", ErrInvalidSignal, SignalEntry)
	default:
		return "", fmt.Errorf("%w: unsupported side %q", ErrInvalidSignal, raw)
	}
}

func checkPrice(field string, p *decimal.Decimal) error {
	if p != nil && !p.IsPositive() {
		return fmt.Errorf("%w: %s must be positive, got %s", ErrInvalidSignal, field, p.String())
	}
	return nil
}
