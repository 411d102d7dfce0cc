package risk

import (
	"context"
	"fmt"

	"signalBridge/internal/domain"
)

// RiskConfig holds configuration for pre-trade checks
type RiskConfig struct {
	MaxUnits int64 // Largest absolute order size accepted, 0 disables the check
}

// RiskManager validates order intents before they are sent to the broker.
// It keeps no state between calls, so one instance is shared by all requests.
type RiskManager struct {
	config RiskConfig
}

// NewRiskManager creates a new risk manager instance
func NewRiskManager(config RiskConfig) *RiskManager {
	return &RiskManager{config: config}
}

// ValidateIntent checks an entry order against the configured limits.
// Violations wrap domain.ErrInvalidSignal: they are reported to the signal source.
// Protective price levels are left to the broker to judge.
//
// The zero-size check repeats what signal validation already enforces so the
// manager stays safe for intents built outside the signal path.
func (r *RiskManager) ValidateIntent(ctx context.Context, intent domain.OrderIntent) error {
	size := intent.Units
	if size < 0 {
		size = -size
	}
	if size == 0 {
		return fmt.Errorf("%w: order size is zero", domain.ErrInvalidSignal)
	}

	// Check order size
	if r.config.MaxUnits > 0 && size > r.config.MaxUnits {
		return fmt.Errorf("%w: order size %d exceeds maximum allowed %d", domain.ErrInvalidSignal, size, r.config.MaxUnits)
	}

	return nil
}

// Config returns the limits the manager enforces
func (r *RiskManager) Config() RiskConfig {
	return r.config
}
