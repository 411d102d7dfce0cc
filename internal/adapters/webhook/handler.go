package webhook

import (
	"context"
	"net/http"

	"signalBridge/internal/domain"
	"signalBridge/internal/ports"
)

// Handler serves the webhook endpoints.
type Handler struct {
	signals SignalHandler
	logger  ports.Logger
}

// Ping answers liveness probes from the alerting platform.
func (h *Handler) Ping(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Signal decodes an alert and routes it through the interpreter.
func (h *Handler) Signal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := ports.RequestID(ctx)

	var p domain.SignalPayload
	if err := readJSON(w, r, &p); err != nil {
		h.logger.Warn(ctx, "Undecodable signal payload", map[string]interface{}{"reason": err.Error()})
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), RequestID: requestID})
		return
	}
	h.logger.Info(ctx, "Signal received", map[string]interface{}{"type": p.Type, "side": p.Side, "symbol": p.Symbol})

	// A sender that hangs up must not abort an order already on its way to
	// the broker; each broker call is bounded by the gateway timeout instead.
	out, err := h.signals.HandlePayload(context.WithoutCancel(ctx), p)
	if err != nil {
		status, body := errorStatus(err)
		body.RequestID = requestID
		writeJSON(w, status, body)
		return
	}
	writeJSON(w, http.StatusOK, outcomeResponse(out, requestID))
}
