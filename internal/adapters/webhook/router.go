package webhook

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"signalBridge/internal/app"
	"signalBridge/internal/domain"
	"signalBridge/internal/ports"
)

// SignalHandler is what the endpoint hands decoded payloads to.
type SignalHandler interface {
	HandlePayload(ctx context.Context, p domain.SignalPayload) (*app.Outcome, error)
}

// RouterDeps carries everything the webhook router needs.
type RouterDeps struct {
	Signals SignalHandler
	Logger  ports.Logger
	Token   string // Shared secret callers must present
}

// NewRouter builds the webhook HTTP handler.
func NewRouter(d RouterDeps) http.Handler {
	h := &Handler{signals: d.Signals, logger: d.Logger}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(middleware.RealIP)
	r.Use(AccessLog(d.Logger))
	r.Use(middleware.Recoverer)

	r.Get("/", h.Ping)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.With(TokenAuth(d.Token, d.Logger)).Post("/signal", h.Signal)

	return r
}
