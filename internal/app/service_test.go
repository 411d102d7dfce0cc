package app

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signalBridge/internal/domain"
	"signalBridge/internal/ports"
	"signalBridge/internal/risk"
)

// Mock implementations
type mockLogger struct {
	mu        sync.Mutex
	debugMsgs []string
	infoMsgs  []string
	warnMsgs  []string
	errorMsgs []string
}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.debugMsgs = append(m.debugMsgs, msg)
}

func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.infoMsgs = append(m.infoMsgs, msg)
}

func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.warnMsgs = append(m.warnMsgs, msg)
}

func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorMsgs = append(m.errorMsgs, msg)
}

// mockBroker records every gateway call.
type mockBroker struct {
	mu sync.Mutex

	orderResult *ports.OrderResult
	orderErr    error
	trades      []domain.OpenPosition
	tradesErr   error
	replaceErr  error

	placed   []domain.OrderIntent
	listed   []domain.Instrument
	replaced []domain.StopReplacement
}

func (m *mockBroker) PlaceMarketOrder(ctx context.Context, intent domain.OrderIntent) (*ports.OrderResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.placed = append(m.placed, intent)
	if m.orderErr != nil {
		return nil, m.orderErr
	}
	if m.orderResult != nil {
		return m.orderResult, nil
	}
	return &ports.OrderResult{TransactionID: "1", Raw: json.RawMessage(`{"orderCreateTransaction":{"id":"1"}}`)}, nil
}

func (m *mockBroker) ListOpenTrades(ctx context.Context, instrument domain.Instrument) ([]domain.OpenPosition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listed = append(m.listed, instrument)
	if m.tradesErr != nil {
		return nil, m.tradesErr
	}
	var out []domain.OpenPosition
	for _, p := range m.trades {
		if p.Instrument == instrument {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockBroker) ReplaceStopLoss(ctx context.Context, req domain.StopReplacement) (*ports.OrderResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replaced = append(m.replaced, req)
	if m.replaceErr != nil {
		return nil, m.replaceErr
	}
	return &ports.OrderResult{OrderID: "77", TradeID: req.TradeID, Raw: json.RawMessage(`{}`)}, nil
}

func (m *mockBroker) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.placed) + len(m.listed) + len(m.replaced)
}

func newTestService(t *testing.T, broker *mockBroker, validator IntentValidator) (*SignalService, *mockLogger) {
	t.Helper()
	logger := &mockLogger{}
	svc, err := NewSignalService(logger, broker, validator)
	require.NoError(t, err)
	return svc, logger
}

func units(n int64) *int64 { return &n }

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestNewSignalService_MissingDeps(t *testing.T) {
	_, err := NewSignalService(nil, &mockBroker{}, nil)
	assert.Error(t, err)
	_, err = NewSignalService(&mockLogger{}, nil, nil)
	assert.Error(t, err)
}

func TestHandle_EntrySignedUnits(t *testing.T) {
	tests := []struct {
		name      string
		side      string
		wantUnits int64
	}{
		{name: "buy is long", side: "buy", wantUnits: 10000},
		{name: "sell is short", side: "sell", wantUnits: -10000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			broker := &mockBroker{}
			svc, _ := newTestService(t, broker, nil)

			out, err := svc.HandlePayload(context.Background(), domain.SignalPayload{
				Type:   "ENTRY",
				Side:   tt.side,
				Symbol: "SRC:GBPUSD",
				Units:  units(10000),
			})
			require.NoError(t, err)

			require.Len(t, broker.placed, 1)
			assert.Equal(t, tt.wantUnits, broker.placed[0].Units)
			assert.Equal(t, domain.Instrument("GBP_USD"), broker.placed[0].Instrument)
			assert.Empty(t, broker.listed)
			assert.Empty(t, broker.replaced)

			assert.Equal(t, ActionEntry, out.Action)
			require.NotNil(t, out.Order)
			require.NotNil(t, out.Intent)
			assert.Equal(t, tt.wantUnits, out.Intent.Units)
		})
	}
}

func TestHandle_EntryProtectivePrices(t *testing.T) {
	broker := &mockBroker{}
	svc, _ := newTestService(t, broker, nil)

	_, err := svc.HandlePayload(context.Background(), domain.SignalPayload{
		Type:       "ENTRY",
		Side:       "buy",
		Symbol:     "EUR/USD",
		Units:      units(1000),
		StopLoss:   price("1.23456"),
		TakeProfit: price("1.30000"),
	})
	require.NoError(t, err)

	require.Len(t, broker.placed, 1)
	intent := broker.placed[0]
	require.NotNil(t, intent.StopLoss)
	require.NotNil(t, intent.TakeProfit)
	assert.Equal(t, "1.23456", domain.FormatPrice(*intent.StopLoss))
	assert.Equal(t, "1.30000", domain.FormatPrice(*intent.TakeProfit))
}

func TestHandle_EntryInvalid(t *testing.T) {
	tests := []struct {
		name    string
		payload domain.SignalPayload
		wantErr error
	}{
		{name: "zero units", payload: domain.SignalPayload{Type: "ENTRY", Side: "buy", Symbol: "GBPUSD", Units: units(0)}, wantErr: domain.ErrInvalidSignal},
		{name: "negative units", payload: domain.SignalPayload{Type: "ENTRY", Side: "buy", Symbol: "GBPUSD", Units: units(-10)}, wantErr: domain.ErrInvalidSignal},
		{name: "missing units", payload: domain.SignalPayload{Type: "ENTRY", Side: "buy", Symbol: "GBPUSD"}, wantErr: domain.ErrInvalidSignal},
		{name: "missing side", payload: domain.SignalPayload{Type: "ENTRY", Symbol: "GBPUSD", Units: units(10)}, wantErr: domain.ErrInvalidSignal},
		{name: "empty symbol", payload: domain.SignalPayload{Type: "ENTRY", Side: "sell", Symbol: "", Units: units(10)}, wantErr: domain.ErrMalformedSymbol},
		{name: "unknown type", payload: domain.SignalPayload{Type: "EXIT", Symbol: "GBPUSD"}, wantErr: domain.ErrUnknownSignalType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			broker := &mockBroker{}
			svc, _ := newTestService(t, broker, nil)

			out, err := svc.HandlePayload(context.Background(), tt.payload)
			assert.Nil(t, out)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, broker.calls(), "no gateway call of any kind expected")
		})
	}
}

func TestHandle_UnknownTypeOnConstructedSignal(t *testing.T) {
	broker := &mockBroker{}
	svc, _ := newTestService(t, broker, nil)

	_, err := svc.Handle(context.Background(), domain.Signal{Type: "EXIT", Symbol: "GBPUSD"})
	assert.ErrorIs(t, err, domain.ErrUnknownSignalType)
	assert.Zero(t, broker.calls())
}

func TestHandle_EntryRiskLimits(t *testing.T) {
	broker := &mockBroker{}
	svc, logger := newTestService(t, broker, risk.NewRiskManager(risk.RiskConfig{MaxUnits: 5000}))

	_, err := svc.HandlePayload(context.Background(), domain.SignalPayload{Type: "ENTRY", Side: "buy", Symbol: "GBPUSD", Units: units(10000)})
	assert.ErrorIs(t, err, domain.ErrInvalidSignal)
	assert.Empty(t, broker.placed)
	assert.Contains(t, logger.warnMsgs, "Entry blocked by risk limits")
}

func TestHandle_SellEntryWithDefaultRiskManager(t *testing.T) {
	broker := &mockBroker{}
	svc, _ := newTestService(t, broker, risk.NewRiskManager(risk.RiskConfig{}))

	out, err := svc.HandlePayload(context.Background(), domain.SignalPayload{
		Type: "ENTRY", Side: "sell", Symbol: "GBPUSD", Units: units(10000), StopLoss: price("1.23456"), TakeProfit: price("1.30000"),
	})
	require.NoError(t, err)
	assert.Equal(t, ActionEntry, out.Action)

	require.Len(t, broker.placed, 1)
	placed := broker.placed[0]
	assert.Equal(t, int64(-10000), placed.Units)
	require.NotNil(t, placed.StopLoss)
	require.NotNil(t, placed.TakeProfit)
	assert.Equal(t, "1.23456", domain.FormatPrice(*placed.StopLoss))
	assert.Equal(t, "1.30000", domain.FormatPrice(*placed.TakeProfit))
}

func TestHandle_EntryBrokerUnavailable(t *testing.T) {
	brokerErr := fmt.Errorf("PlaceMarketOrder timed out: %w: %w", ports.ErrBrokerUnavailable, context.DeadlineExceeded)
	broker := &mockBroker{orderErr: brokerErr}
	svc, logger := newTestService(t, broker, nil)

	_, err := svc.HandlePayload(context.Background(), domain.SignalPayload{Type: "ENTRY", Side: "buy", Symbol: "GBPUSD", Units: units(1)})
	assert.ErrorIs(t, err, ports.ErrBrokerUnavailable)
	assert.Len(t, broker.placed, 1, "no retry expected")
	assert.Contains(t, logger.errorMsgs, "Entry order failed")
}

func TestHandle_EntryBrokerRejected(t *testing.T) {
	rej := &ports.BrokerRejectedError{StatusCode: 400, Code: "INSUFFICIENT_MARGIN", Message: "no margin"}
	broker := &mockBroker{orderErr: fmt.Errorf("PlaceMarketOrder failed: %w", rej)}
	svc, _ := newTestService(t, broker, nil)

	_, err := svc.HandlePayload(context.Background(), domain.SignalPayload{Type: "ENTRY", Side: "sell", Symbol: "GBPUSD", Units: units(1)})
	got, ok := ports.AsBrokerRejected(err)
	require.True(t, ok)
	assert.Equal(t, "INSUFFICIENT_MARGIN", got.Code)
	assert.Len(t, broker.placed, 1)
}

func TestHandle_BreakevenNoTrades(t *testing.T) {
	broker := &mockBroker{trades: []domain.OpenPosition{
		{ID: "5", Instrument: "EUR_USD", OpenTime: time.Now(), EntryPrice: decimal.RequireFromString("1.08")},
	}}
	svc, _ := newTestService(t, broker, nil)

	out, err := svc.HandlePayload(context.Background(), domain.SignalPayload{Type: "BREAKEVEN", Symbol: "SRC:GBPUSD"})
	require.NoError(t, err)

	assert.Equal(t, ActionBreakeven, out.Action)
	assert.Equal(t, StatusNoOpenTrade, out.Status)
	assert.Nil(t, out.Order)
	assert.Equal(t, []domain.Instrument{"GBP_USD"}, broker.listed)
	assert.Empty(t, broker.replaced, "no mutation expected")
	assert.Empty(t, broker.placed)
}

func TestHandle_BreakevenLatestTrade(t *testing.T) {
	t1 := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)
	broker := &mockBroker{trades: []domain.OpenPosition{
		{ID: "200", Instrument: "GBP_USD", OpenTime: t2, EntryPrice: decimal.RequireFromString("1.27012"), Side: domain.Buy},
		{ID: "100", Instrument: "GBP_USD", OpenTime: t1, EntryPrice: decimal.RequireFromString("1.26500"), Side: domain.Buy},
	}}
	svc, _ := newTestService(t, broker, nil)

	out, err := svc.HandlePayload(context.Background(), domain.SignalPayload{Type: "breakeven", Symbol: "GBPUSD"})
	require.NoError(t, err)

	require.Len(t, broker.replaced, 1)
	assert.Equal(t, "200", broker.replaced[0].TradeID)
	assert.True(t, broker.replaced[0].Price.Equal(decimal.RequireFromString("1.27012")), "stop must equal the entry price exactly")
	assert.Empty(t, broker.placed)

	assert.Equal(t, ActionBreakeven, out.Action)
	assert.Empty(t, out.Status)
	require.NotNil(t, out.Replacement)
	assert.Equal(t, "200", out.Replacement.TradeID)
}

func TestHandle_BreakevenTradeClosedMeanwhile(t *testing.T) {
	rej := &ports.BrokerRejectedError{StatusCode: 404, Code: "NO_SUCH_TRADE", Message: "The Trade specified does not exist"}
	broker := &mockBroker{
		trades:     []domain.OpenPosition{{ID: "9", Instrument: "GBP_USD", OpenTime: time.Now(), EntryPrice: decimal.NewFromInt(1)}},
		replaceErr: fmt.Errorf("ReplaceStopLoss failed: %w", rej),
	}
	svc, logger := newTestService(t, broker, nil)

	_, err := svc.HandlePayload(context.Background(), domain.SignalPayload{Type: "BREAKEVEN", Symbol: "GBPUSD"})
	_, ok := ports.AsBrokerRejected(err)
	assert.True(t, ok)
	assert.Contains(t, logger.warnMsgs, "Breakeven stop rejected, trade may have closed meanwhile")
	assert.Empty(t, logger.errorMsgs)
}

func TestHandle_BreakevenListFails(t *testing.T) {
	broker := &mockBroker{tradesErr: fmt.Errorf("ListOpenTrades failed: %w", ports.ErrBrokerUnavailable)}
	svc, _ := newTestService(t, broker, nil)

	_, err := svc.HandlePayload(context.Background(), domain.SignalPayload{Type: "BREAKEVEN", Symbol: "GBPUSD"})
	assert.ErrorIs(t, err, ports.ErrBrokerUnavailable)
	assert.Empty(t, broker.replaced)
}

func TestHandle_BreakevenMalformedSymbol(t *testing.T) {
	broker := &mockBroker{}
	svc, _ := newTestService(t, broker, nil)

	_, err := svc.HandlePayload(context.Background(), domain.SignalPayload{Type: "BREAKEVEN", Symbol: "FX:"})
	assert.ErrorIs(t, err, domain.ErrMalformedSymbol)
	assert.Zero(t, broker.calls())
}

func TestHandle_ConcurrentSignals(t *testing.T) {
	broker := &mockBroker{}
	svc, _ := newTestService(t, broker, nil)

	var wg sync.WaitGroup
	for i := 1; i <= 20; i++ {
		wg.Add(1)
		go func(n int64) {
			defer wg.Done()
			side := "buy"
			if n%2 == 0 {
				side = "sell"
			}
			_, err := svc.HandlePayload(context.Background(), domain.SignalPayload{Type: "ENTRY", Side: side, Symbol: "GBPUSD", Units: units(n)})
			assert.NoError(t, err)
		}(int64(i))
	}
	wg.Wait()

	assert.Len(t, broker.placed, 20)
	var sum int64
	for _, p := range broker.placed {
		sum += p.Units
	}
	// Odd sizes are long, even sizes short: 100 - 110.
	assert.Equal(t, int64(-10), sum)
}

func TestPlanBreakeven(t *testing.T) {
	_, ok := planBreakeven(nil)
	assert.False(t, ok)

	now := time.Now()
	repl, ok := planBreakeven([]domain.OpenPosition{
		{ID: "a", OpenTime: now.Add(-time.Minute), EntryPrice: decimal.RequireFromString("1.1")},
		{ID: "b", OpenTime: now, EntryPrice: decimal.RequireFromString("1.2")},
	})
	require.True(t, ok)
	assert.Equal(t, "b", repl.TradeID)
	assert.Equal(t, "1.20000", domain.FormatPrice(repl.Price))
}
