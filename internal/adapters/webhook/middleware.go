package webhook

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"signalBridge/internal/ports"
)

const requestIDHeader = "X-Request-ID"

// RequestID tags every request with a correlation ID, reusing a well-formed
// inbound X-Request-ID and generating a UUID otherwise.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(ports.WithRequestID(r.Context(), id)))
	})
}

// AccessLog writes one structured line per request.
func AccessLog(logger ports.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info(r.Context(), "HTTP request", map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   ww.Status(),
				"bytes":    ww.BytesWritten(),
				"remote":   r.RemoteAddr,
				"duration": time.Since(start).String(),
			})
		})
	}
}

// TokenAuth accepts the shared webhook secret from the X-Webhook-Token header,
// a Bearer Authorization header, or the token query parameter. Alerting
// platforms cannot always set headers, hence the query fallback.
func TokenAuth(token string, logger ports.Logger) func(http.Handler) http.Handler {
	want := []byte(token)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := presentedToken(r)
			if got == "" || subtle.ConstantTimeCompare([]byte(got), want) != 1 {
				logger.Warn(r.Context(), "Webhook authentication failed", map[string]interface{}{"remote": r.RemoteAddr, "tokenPresent": got != ""})
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized", RequestID: ports.RequestID(r.Context())})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func presentedToken(r *http.Request) string {
	if t := r.Header.Get("X-Webhook-Token"); t != "" {
		return t
	}
	authz := r.Header.Get("Authorization")
	parts := strings.SplitN(authz, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return r.URL.Query().Get("token")
}
