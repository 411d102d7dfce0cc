package domain

import "errors"

// Signal interpretation errors. These describe caller mistakes, not system faults,
// and are reported back to the signal source rather than treated as failures.
var (
	ErrMalformedSymbol   = errors.New("malformed symbol")
	ErrInvalidSignal     = errors.New("invalid signal")
	ErrUnknownSignalType = errors.New("unknown signal type")
)

// IsCallerError reports whether err stems from a bad inbound signal.
func IsCallerError(err error) bool {
	return errors.Is(err, ErrMalformedSymbol) ||
		errors.Is(err, ErrInvalidSignal) ||
		errors.Is(err, ErrUnknownSignalType)
}
