package ports

import (
	"errors"
	"fmt"
)

// ErrBrokerUnavailable is returned when the broker could not be reached or did not
// answer in time. Adapters wrap the underlying transport error with it.
var ErrBrokerUnavailable = errors.New("broker unavailable")

// BrokerRejectedError is returned when the broker answered but refused the request:
// a non-success HTTP status, an error payload, or a reject/cancel transaction.
type BrokerRejectedError struct {
	StatusCode int    // HTTP status of the broker response
	Code       string // Broker error code or reject reason, may be empty
	Message    string // Broker error message
}

func (e *BrokerRejectedError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("broker rejected request (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("broker rejected request (status %d, code %s): %s", e.StatusCode, e.Code, e.Message)
}

// AsBrokerRejected extracts a BrokerRejectedError from an error chain.
func AsBrokerRejected(err error) (*BrokerRejectedError, bool) {
	var rej *BrokerRejectedError
	if errors.As(err, &rej) {
		return rej, true
	}
	return nil, false
}
