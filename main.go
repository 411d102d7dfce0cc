package main

import (
	"context"
	"errors"
	"log" // Use standard log only for initial fatal errors before logger is set up
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"signalBridge/config"
	"signalBridge/internal/adapters/logger"
	"signalBridge/internal/adapters/oanda"
	"signalBridge/internal/adapters/webhook"
	"signalBridge/internal/app"
	"signalBridge/internal/risk"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}

	// 2. Initialize Logger
	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, File: cfg.LogFile})
	defer func() { _ = appLogger.Sync() }()
	appLogger.Info(context.Background(), "Logger initialized", map[string]interface{}{"level": cfg.LogLevel.String(), "file": cfg.LogFile})

	// 3. Initialize Broker Gateway (OANDA Adapter)
	broker, err := oanda.New(oanda.Config{
		APIToken:  cfg.APIToken,
		AccountID: cfg.AccountID,
		Live:      cfg.IsLive(),
		BaseURL:   cfg.BaseURL,
		Timeout:   cfg.BrokerTimeout,
		Logger:    appLogger,
	})
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize OANDA client")
		_ = appLogger.Sync()
		log.Fatalf("FATAL: Failed to initialize OANDA client: %v", err)
	}
	appLogger.Info(context.Background(), "OANDA client initialized", map[string]interface{}{"environment": cfg.Environment})

	// 4. Initialize Risk Manager
	riskManager := risk.NewRiskManager(risk.RiskConfig{MaxUnits: cfg.MaxUnits})
	appLogger.Info(context.Background(), "Risk manager initialized", map[string]interface{}{"maxUnits": riskManager.Config().MaxUnits})

	// 5. Initialize Application Service
	signalService, err := app.NewSignalService(appLogger, broker, riskManager)
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize signal service")
		_ = appLogger.Sync()
		log.Fatalf("FATAL: Failed to initialize signal service: %v", err)
	}

	// 6. Start the Webhook Server
	srv := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: webhook.NewRouter(webhook.RouterDeps{
			Signals: signalService,
			Logger:  appLogger,
			Token:   cfg.WebhookToken,
		}),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Broker calls are bounded by BrokerTimeout, twice for a breakeven.
		WriteTimeout: 2*cfg.BrokerTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		appLogger.Info(context.Background(), "Webhook server listening", map[string]interface{}{"addr": cfg.HTTPAddr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			appLogger.Error(context.Background(), err, "Webhook server exited with error")
			_ = appLogger.Sync()
			log.Fatalf("FATAL: Webhook server exited with error: %v", err)
		}
	case <-ctx.Done():
		appLogger.Info(context.Background(), "Shutdown signal received", map[string]interface{}{"timeout": cfg.ShutdownTimeout.String()})
	}

	// 7. Drain in-flight signals
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error(context.Background(), err, "Graceful shutdown failed")
	}

	appLogger.Info(context.Background(), "Application finished gracefully.")
}
