package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"signalBridge/internal/adapters/logger"
	"signalBridge/internal/domain"
)

// send_signal posts one alert to a running bridge, the way an alerting
// platform would. Useful for smoke tests against the practice account.
func main() {
	url := flag.String("url", "http://localhost:8080/signal", "webhook endpoint")
	token := flag.String("token", os.Getenv("WEBHOOK_TOKEN"), "webhook token (defaults to $WEBHOOK_TOKEN)")
	typ := flag.String("type", "ENTRY", "signal type: ENTRY or BREAKEVEN")
	side := flag.String("side", "", "buy or sell (ENTRY only)")
	symbol := flag.String("symbol", "", "instrument symbol, e.g. FX:EURUSD")
	units := flag.Int64("units", 0, "order size in units (ENTRY only)")
	sl := flag.String("sl", "", "stop-loss price (optional)")
	tp := flag.String("tp", "", "take-profit price (optional)")
	timeout := flag.Duration("timeout", 30*time.Second, "request timeout")
	flag.Parse()

	appLogger := logger.New(logger.Config{Level: logger.LevelInfo})
	defer func() { _ = appLogger.Sync() }()

	payload, err := buildPayload(*typ, *side, *symbol, *units, *sl, *tp)
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}
	body, err := sonic.Marshal(payload)
	if err != nil {
		log.Fatalf("FATAL: Failed to encode payload: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, *url, bytes.NewReader(body))
	if err != nil {
		log.Fatalf("FATAL: Failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if *token != "" {
		req.Header.Set("X-Webhook-Token", *token)
	}

	appLogger.Info(ctx, "Sending signal", map[string]interface{}{"url": *url, "payload": string(body), "requestID": req.Header.Get("X-Request-ID")})
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		appLogger.Error(ctx, err, "Request failed")
		_ = appLogger.Sync()
		os.Exit(1)
	}
	defer resp.Body.Close()

	out, _ := io.ReadAll(resp.Body)
	fmt.Printf("%s\n%s\n", resp.Status, strings.TrimSpace(string(out)))
	if resp.StatusCode/100 != 2 {
		_ = appLogger.Sync()
		os.Exit(1)
	}
}

func buildPayload(typ, side, symbol string, units int64, sl, tp string) (domain.SignalPayload, error) {
	p := domain.SignalPayload{Type: strings.ToUpper(typ), Side: side, Symbol: symbol}
	if symbol == "" {
		return p, fmt.Errorf("-symbol is required")
	}
	if units != 0 {
		p.Units = &units
	}
	var err error
	if p.StopLoss, err = parsePrice("sl", sl); err != nil {
		return p, err
	}
	if p.TakeProfit, err = parsePrice("tp", tp); err != nil {
		return p, err
	}
	return p, nil
}

func parsePrice(name, v string) (*decimal.Decimal, error) {
	if v == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return nil, fmt.Errorf("invalid -%s %q: %w", name, v, err)
	}
	return &d, nil
}
