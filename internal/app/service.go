package app

import (
	"context"
	"fmt"

	"signalBridge/internal/domain"
	"signalBridge/internal/ports"
)

// IntentValidator checks an order intent before it reaches the broker.
type IntentValidator interface {
	ValidateIntent(ctx context.Context, intent domain.OrderIntent) error
}

// Outcome summarizes what the bridge did with one signal.
type Outcome struct {
	Action      Action
	Status      string                  // Set when no broker mutation happened
	Order       *ports.OrderResult      // Broker answer, nil when Status is set
	Intent      *domain.OrderIntent     // ENTRY only
	Replacement *domain.StopReplacement // BREAKEVEN only, when a trade was found
}

// SignalService routes validated signals to exactly one broker operation.
// It holds no per-request state and is safe for concurrent use.
type SignalService struct {
	logger ports.Logger
	broker ports.BrokerGateway
	risk   IntentValidator
}

// NewSignalService creates a new signal service. risk may be nil to skip pre-trade checks.
func NewSignalService(logger ports.Logger, broker ports.BrokerGateway, risk IntentValidator) (*SignalService, error) {
	if logger == nil || broker == nil {
		return nil, fmt.Errorf("missing required dependencies for SignalService")
	}
	return &SignalService{logger: logger, broker: broker, risk: risk}, nil
}

// HandlePayload validates a raw webhook payload and handles the resulting signal.
func (s *SignalService) HandlePayload(ctx context.Context, p domain.SignalPayload) (*Outcome, error) {
	sig, err := domain.NewSignal(p)
	if err != nil {
		s.logger.Warn(ctx, "Signal rejected", map[string]interface{}{"type": p.Type, "symbol": p.Symbol, "reason": err.Error()})
		return nil, err
	}
	return s.Handle(ctx, sig)
}

// Handle routes one signal. Caller mistakes come back as domain errors,
// broker failures as ports errors, both unchanged and never retried.
func (s *SignalService) Handle(ctx context.Context, sig domain.Signal) (*Outcome, error) {
	switch sig.Type {
	case domain.SignalEntry:
		return s.handleEntry(ctx, sig)
	case domain.SignalBreakeven:
		return s.handleBreakeven(ctx, sig)
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownSignalType, sig.Type)
	}
}

func (s *SignalService) handleEntry(ctx context.Context, sig domain.Signal) (*Outcome, error) {
	intent, err := planEntry(sig)
	if err != nil {
		s.logger.Warn(ctx, "Entry signal rejected", map[string]interface{}{"symbol": sig.Symbol, "reason": err.Error()})
		return nil, err
	}
	if s.risk != nil {
		if err := s.risk.ValidateIntent(ctx, intent); err != nil {
			s.logger.Warn(ctx, "Entry blocked by risk limits", map[string]interface{}{"instrument": intent.Instrument.String(), "units": intent.Units, "reason": err.Error()})
			return nil, err
		}
	}

	fields := map[string]interface{}{"instrument": intent.Instrument.String(), "units": intent.Units}
	if intent.StopLoss != nil {
		fields["stopLoss"] = domain.FormatPrice(*intent.StopLoss)
	}
	if intent.TakeProfit != nil {
		fields["takeProfit"] = domain.FormatPrice(*intent.TakeProfit)
	}
	s.logger.Info(ctx, "Placing entry order", fields)

	res, err := s.broker.PlaceMarketOrder(ctx, intent)
	if err != nil {
		s.logger.Error(ctx, err, "Entry order failed", fields)
		return nil, err
	}
	return &Outcome{Action: ActionEntry, Order: res, Intent: &intent}, nil
}

func (s *SignalService) handleBreakeven(ctx context.Context, sig domain.Signal) (*Outcome, error) {
	instrument, err := domain.NormalizeSymbol(sig.Symbol)
	if err != nil {
		s.logger.Warn(ctx, "Breakeven signal rejected", map[string]interface{}{"symbol": sig.Symbol, "reason": err.Error()})
		return nil, err
	}

	positions, err := s.broker.ListOpenTrades(ctx, instrument)
	if err != nil {
		s.logger.Error(ctx, err, "Listing open trades failed", map[string]interface{}{"instrument": instrument.String()})
		return nil, err
	}

	repl, ok := planBreakeven(positions)
	if !ok {
		s.logger.Info(ctx, "No open trade to move to breakeven", map[string]interface{}{"instrument": instrument.String()})
		return &Outcome{Action: ActionBreakeven, Status: StatusNoOpenTrade}, nil
	}

	fields := map[string]interface{}{
		"instrument": instrument.String(),
		"tradeID":    repl.TradeID,
		"price":      domain.FormatPrice(repl.Price),
		"candidates": len(positions),
	}
	s.logger.Info(ctx, "Moving stop to breakeven", fields)

	res, err := s.broker.ReplaceStopLoss(ctx, repl)
	if err != nil {
		if _, rejected := ports.AsBrokerRejected(err); rejected {
			// The trade may have closed between the listing and this call.
			s.logger.Warn(ctx, "Breakeven stop rejected, trade may have closed meanwhile", fields)
		} else {
			s.logger.Error(ctx, err, "Breakeven stop failed", fields)
		}
		return nil, err
	}
	return &Outcome{Action: ActionBreakeven, Order: res, Replacement: &repl}, nil
}
