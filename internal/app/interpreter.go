package app

import (
	"fmt"

	"signalBridge/internal/domain"
)

// Action names the broker operation a signal was routed to.
type Action string

const (
	ActionEntry     Action = "entry"
	ActionBreakeven Action = "be"
)

// StatusNoOpenTrade is reported when a BREAKEVEN signal finds nothing to protect.
const StatusNoOpenTrade = "no open trade"

// planEntry turns an ENTRY signal into the market order to send.
func planEntry(sig domain.Signal) (domain.OrderIntent, error) {
	if sig.Side != domain.Buy && sig.Side != domain.Sell {
		return domain.OrderIntent{}, fmt.Errorf("%w: side %q", domain.ErrInvalidSignal, sig.Side)
	}
	if sig.Size <= 0 {
		return domain.OrderIntent{}, fmt.Errorf("%w: units must be positive, got %d", domain.ErrInvalidSignal, sig.Size)
	}
	instrument, err := domain.NormalizeSymbol(sig.Symbol)
	if err != nil {
		return domain.OrderIntent{}, err
	}
	return domain.NewOrderIntent(instrument, sig.Side, sig.Size, sig.StopLoss, sig.TakeProfit), nil
}

// planBreakeven picks the trade whose stop moves to its entry price.
// The latest opened trade wins; this approximates "the position the alert
// refers to" and can pick the wrong one if trades open or close concurrently.
func planBreakeven(positions []domain.OpenPosition) (domain.StopReplacement, bool) {
	latest, ok := domain.LatestOpened(positions)
	if !ok {
		return domain.StopReplacement{}, false
	}
	return domain.StopReplacement{TradeID: latest.ID, Price: latest.EntryPrice}, true
}
