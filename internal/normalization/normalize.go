// Package normalization converts raw, possibly malformed external values
// (percentages, ratios, currency amounts, identifiers) into validated
// canonical forms. All functions are pure.
package normalization

import (
	"math"
	"strings"
)

const (
	DefaultCurrency = "USD"
	DefaultLeverage = 100
	DefaultStatus   = "UNKNOWN"
)

// WinRatePct canonicalizes a win rate to the 0-100 percentage convention.
// Upstream stores are inconsistent: some keep 0-1 ratios, some 0-100
// percentages. Values in (1, 100] pass through, values in [0, 1] are scaled
// by 100, anything else is returned as-is for the caller to reject.
func WinRatePct(value float64) float64 {
	if value > 1 && value <= 100 {
		return value
	}
	if value >= 0 && value <= 1 {
		return value * 100
	}
	return value
}

// Money rounds a currency amount to 2 decimal places. Non-finite input
// collapses to 0.
func Money(value float64) float64 {
	if !isFinite(value) {
		return 0
	}
	return math.Round(value*100) / 100
}

// Price rounds a quote price to 5 decimal places.
func Price(value float64) float64 {
	return math.Round(value*100000) / 100000
}

// Volume rounds a lot size to 4 decimal places.
func Volume(value float64) float64 {
	return math.Round(value*10000) / 10000
}

// Leverage canonicalizes an account leverage value. Non-positive or
// non-finite values fall back to the default.
func Leverage(value float64) int {
	if !isFinite(value) || value <= 0 {
		return DefaultLeverage
	}
	return int(math.Round(value))
}

// Currency uppercases a currency code, defaulting when blank.
func Currency(code string) string {
	cleaned := strings.TrimSpace(code)
	if cleaned == "" {
		return DefaultCurrency
	}
	return strings.ToUpper(cleaned)
}

// Status uppercases an account status, defaulting when blank.
func Status(status string) string {
	cleaned := strings.TrimSpace(status)
	if cleaned == "" {
		return DefaultStatus
	}
	return strings.ToUpper(cleaned)
}

// Symbol canonicalizes a trading symbol.
func Symbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// Round2 rounds to 2 decimal places without any finiteness fallback.
func Round2(value float64) float64 {
	return math.Round(value*100) / 100
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// IsFinite reports whether v is a finite float64.
func IsFinite(v float64) bool {
	return isFinite(v)
}
