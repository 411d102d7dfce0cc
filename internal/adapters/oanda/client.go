package oanda

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"signalBridge/internal/domain"
	"signalBridge/internal/ports"
)

const (
	// Base URLs
	baseURLPractice = "https://api-fxpractice.oanda.com"
	baseURLLive     = "https://api-fxtrade.oanda.com"

	defaultTimeout  = 10 * time.Second
	maxResponseBody = 1 << 20
)

// Client implements the ports.BrokerGateway interface against the OANDA v20 REST API.
type Client struct {
	baseURL   string
	accountID string
	token     string // Bearer credential, never changed after New
	timeout   time.Duration
	http      *http.Client
	logger    ports.Logger
}

var _ ports.BrokerGateway = (*Client)(nil)

// Config holds configuration specific to the OANDA adapter.
type Config struct {
	APIToken   string
	AccountID  string
	Live       bool          // Trade against the live environment instead of practice
	BaseURL    string        // Overrides the environment URL when set (tests, proxies)
	Timeout    time.Duration // Bounds every call, defaults to 10s
	HTTPClient *http.Client  // Optional, a pooled client is created otherwise
	Logger     ports.Logger
}

// New creates a new OANDA client adapter.
func New(cfg Config) (*Client, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for OANDA client")
	}
	if cfg.APIToken == "" {
		return nil, fmt.Errorf("API token is required for OANDA client")
	}
	if cfg.AccountID == "" {
		return nil, fmt.Errorf("account ID is required for OANDA client")
	}

	baseURL := baseURLPractice
	if cfg.Live {
		baseURL = baseURLLive
	}
	if cfg.BaseURL != "" {
		baseURL = cfg.BaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}

	cfg.Logger.Info(context.Background(), "OANDA client configured", map[string]interface{}{"baseURL": baseURL, "accountID": cfg.AccountID, "timeout": timeout.String()})

	return &Client{
		baseURL:   baseURL,
		accountID: cfg.AccountID,
		token:     cfg.APIToken,
		timeout:   timeout,
		http:      httpClient,
		logger:    cfg.Logger,
	}, nil
}

// PlaceMarketOrder places a fill-or-kill market order with optional stop-loss and take-profit.
func (c *Client) PlaceMarketOrder(ctx context.Context, intent domain.OrderIntent) (*ports.OrderResult, error) {
	op := "PlaceMarketOrder"

	order := marketOrder{
		Type:         "MARKET",
		Instrument:   intent.Instrument.String(),
		Units:        strconv.FormatInt(intent.Units, 10),
		TimeInForce:  string(domain.FillOrKill),
		PositionFill: "DEFAULT",
	}
	if intent.StopLoss != nil {
		order.StopLossOnFill = &priceDetails{Price: domain.FormatPrice(*intent.StopLoss)}
	}
	if intent.TakeProfit != nil {
		order.TakeProfitOnFill = &priceDetails{Price: domain.FormatPrice(*intent.TakeProfit)}
	}

	data, status, err := c.do(ctx, op, http.MethodPost, c.accountPath("orders"), marketOrderRequest{Order: order})
	if err != nil {
		return nil, err
	}

	res, err := c.orderResult(ctx, op, status, data)
	if err != nil {
		return nil, err
	}
	c.logger.Info(ctx, op+" successful", map[string]interface{}{"instrument": order.Instrument, "units": order.Units, "transactionID": res.TransactionID, "tradeID": res.TradeID})
	return res, nil
}

// ListOpenTrades retrieves the account's open trades and keeps those on instrument.
func (c *Client) ListOpenTrades(ctx context.Context, instrument domain.Instrument) ([]domain.OpenPosition, error) {
	op := "ListOpenTrades"

	data, _, err := c.do(ctx, op, http.MethodGet, c.accountPath("openTrades"), nil)
	if err != nil {
		return nil, err
	}

	var resp openTradesResponse
	if err := sonic.Unmarshal(data, &resp); err != nil {
		return nil, c.handleError(ctx, fmt.Errorf("decode open trades: %w", err), op)
	}

	positions := make([]domain.OpenPosition, 0, len(resp.Trades))
	for _, t := range resp.Trades {
		if domain.Instrument(t.Instrument) != instrument {
			continue
		}
		positions = append(positions, translateTrade(t))
	}
	c.logger.Debug(ctx, op+" successful", map[string]interface{}{"instrument": instrument.String(), "total": len(resp.Trades), "matching": len(positions)})
	return positions, nil
}

// ReplaceStopLoss places a good-till-cancelled stop-loss order on an existing trade.
func (c *Client) ReplaceStopLoss(ctx context.Context, req domain.StopReplacement) (*ports.OrderResult, error) {
	op := "ReplaceStopLoss"

	order := stopLossOrder{
		Type:        "STOP_LOSS",
		TradeID:     req.TradeID,
		Price:       domain.FormatPrice(req.Price),
		TimeInForce: string(domain.GoodTillCanceled),
	}

	data, status, err := c.do(ctx, op, http.MethodPost, c.accountPath("orders"), stopLossOrderRequest{Order: order})
	if err != nil {
		return nil, err
	}

	res, err := c.orderResult(ctx, op, status, data)
	if err != nil {
		return nil, err
	}
	c.logger.Info(ctx, op+" successful", map[string]interface{}{"tradeID": order.TradeID, "price": order.Price, "orderID": res.OrderID})
	return res, nil
}

func (c *Client) accountPath(resource string) string {
	return "/v3/accounts/" + c.accountID + "/" + resource
}

// do performs one authenticated request. Any non-2xx answer comes back as a
// *ports.BrokerRejectedError; transport failures as ports.ErrBrokerUnavailable.
func (c *Client) do(ctx context.Context, op, method, path string, body interface{}) ([]byte, int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reqBody io.Reader
	if body != nil {
		payload, err := sonic.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: marshal request: %w", op, err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: new request: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept-Datetime-Format", "RFC3339")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug(ctx, op+": sending request", map[string]interface{}{"method": method, "path": path})

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, c.handleError(ctx, err, op)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, 0, c.handleError(ctx, fmt.Errorf("read response: %w", err), op)
	}

	if resp.StatusCode/100 != 2 {
		var e errorResponse
		_ = sonic.Unmarshal(data, &e)
		rej := &ports.BrokerRejectedError{StatusCode: resp.StatusCode, Code: e.ErrorCode, Message: e.ErrorMessage}
		if rej.Message == "" {
			rej.Message = strings.TrimSpace(string(data))
		}
		if rej.Code == "" {
			// Order endpoints put the reason in the reject transaction.
			var oc orderCreateResponse
			if sonic.Unmarshal(data, &oc) == nil && oc.OrderRejectTransaction != nil {
				rej.Code = oc.OrderRejectTransaction.RejectReason
			}
		}
		return nil, resp.StatusCode, c.rejected(ctx, rej, op)
	}
	return data, resp.StatusCode, nil
}

// orderResult decodes an order-creation response. A 2xx answer can still carry a
// cancel or reject transaction (a FOK order that could not fill, for instance).
func (c *Client) orderResult(ctx context.Context, op string, status int, data []byte) (*ports.OrderResult, error) {
	var resp orderCreateResponse
	if err := sonic.Unmarshal(data, &resp); err != nil {
		return nil, c.handleError(ctx, fmt.Errorf("decode order response: %w", err), op)
	}

	if t := resp.OrderRejectTransaction; t != nil {
		return nil, c.rejected(ctx, &ports.BrokerRejectedError{StatusCode: status, Code: t.RejectReason, Message: "order rejected"}, op)
	}
	if t := resp.OrderCancelTransaction; t != nil {
		return nil, c.rejected(ctx, &ports.BrokerRejectedError{StatusCode: status, Code: t.Reason, Message: "order cancelled"}, op)
	}
	if resp.ErrorMessage != "" {
		return nil, c.rejected(ctx, &ports.BrokerRejectedError{StatusCode: status, Code: resp.ErrorCode, Message: resp.ErrorMessage}, op)
	}

	res := &ports.OrderResult{Raw: data, Timestamp: time.Now()}
	if t := resp.OrderCreateTransaction; t != nil {
		res.TransactionID = t.ID
		res.OrderID = t.ID
		res.TradeID = t.TradeID
	}
	if t := resp.OrderFillTransaction; t != nil && t.TradeOpened != nil {
		res.TradeID = t.TradeOpened.TradeID
	}
	if res.TransactionID == "" {
		res.TransactionID = resp.LastTransactionID
	}
	return res, nil
}

func (c *Client) rejected(ctx context.Context, rej *ports.BrokerRejectedError, op string) error {
	c.logger.Warn(ctx, op+" rejected by broker", map[string]interface{}{"status": rej.StatusCode, "code": rej.Code, "message": rej.Message})
	return fmt.Errorf("%s failed: %w", op, rej)
}

// handleError translates transport and decoding failures into ports.ErrBrokerUnavailable.
func (c *Client) handleError(ctx context.Context, err error, operation string) error {
	fields := map[string]interface{}{"operation": operation, "originalError": err.Error()}

	var finalErr error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		finalErr = fmt.Errorf("%s timed out: %w: %w", operation, ports.ErrBrokerUnavailable, err)
	case errors.Is(err, context.Canceled):
		finalErr = fmt.Errorf("%s canceled: %w: %w", operation, ports.ErrBrokerUnavailable, err)
	default:
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrBrokerUnavailable, err)
	}

	c.logger.Error(ctx, err, fmt.Sprintf("%s failed", operation), fields)
	return finalErr
}

func translateTrade(t openTrade) domain.OpenPosition {
	side := domain.Buy
	if t.CurrentUnits.IsNegative() {
		side = domain.Sell
	}
	return domain.OpenPosition{
		ID:         t.ID,
		Instrument: domain.Instrument(t.Instrument),
		OpenTime:   t.OpenTime,
		EntryPrice: t.Price,
		Side:       side,
		Units:      t.CurrentUnits,
	}
}
