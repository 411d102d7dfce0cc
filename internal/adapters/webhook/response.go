package webhook

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"signalBridge/internal/app"
	"signalBridge/internal/domain"
	"signalBridge/internal/ports"
)

const maxPayloadBytes = 64 << 10

// resultResponse is the body returned for a handled signal.
type resultResponse struct {
	Action    app.Action  `json:"action"`
	Result    interface{} `json:"result"`
	RequestID string      `json:"request_id,omitempty"`
}

// errorResponse is the body returned when a signal could not be handled.
type errorResponse struct {
	Error        string `json:"error"`
	BrokerStatus int    `json:"broker_status,omitempty"`
	BrokerCode   string `json:"broker_code,omitempty"`
	RequestID    string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func readJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPayloadBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON payload: %w", err)
	}
	return nil
}

// outcomeResponse echoes the broker's answer, or the status string when no
// order was sent.
func outcomeResponse(out *app.Outcome, requestID string) resultResponse {
	resp := resultResponse{Action: out.Action, RequestID: requestID}
	switch {
	case out.Order != nil && len(out.Order.Raw) > 0:
		resp.Result = json.RawMessage(out.Order.Raw)
	case out.Order != nil:
		resp.Result = out.Order
	default:
		resp.Result = out.Status
	}
	return resp
}

// errorStatus maps the error taxonomy onto HTTP: caller mistakes are 400,
// broker rejections 502, an unreachable broker 504.
func errorStatus(err error) (int, errorResponse) {
	body := errorResponse{Error: err.Error()}
	if rej, ok := ports.AsBrokerRejected(err); ok {
		body.BrokerStatus = rej.StatusCode
		body.BrokerCode = rej.Code
		return http.StatusBadGateway, body
	}
	switch {
	case errors.Is(err, ports.ErrBrokerUnavailable):
		return http.StatusGatewayTimeout, body
	case domain.IsCallerError(err):
		return http.StatusBadRequest, body
	default:
		return http.StatusInternalServerError, body
	}
}
