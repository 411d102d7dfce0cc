package domain

import (
	"fmt"
	"strings"
)

// Instrument is the broker-native identifier of a tradable symbol (e.g. "GBP_USD").
type Instrument string

func (i Instrument) String() string {
	return string(i)
}

// NormalizeSymbol maps an alerting-platform ticker (e.g. "FX:GBPUSD", "EUR/USD")
// to the broker's instrument format.
//
// Six-character tickers are treated as fixed-width currency pairs and split 3/3.
// Anything else only has its "/" or "-" separators replaced; whether that is right for
// indices or longer CFD codes has not been verified against the broker.
func NormalizeSymbol(raw string) (Instrument, error) {
	s := strings.TrimSpace(raw)
	if i := strings.LastIndex(s, ":"); i >= 0 {
		s = s[i+1:]
	}
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return "", fmt.Errorf("%w: %q", ErrMalformedSymbol, raw)
	}

	if len(s) == 6 {
		return Instrument(s[:3] + "_" + s[3:]), nil
	}
	s = strings.NewReplacer("/", "_", "-", "_").Replace(s)
	return Instrument(s), nil
}
