// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/waribei/unit-economics/pkg/constants"
)

// SafePositiveDivide returns numerator / denominator for strictly positive
// denominators. Zero and negative denominators yield 0 so that calculated
// metrics are never NaN or infinite.
func SafePositiveDivide(numerator, denominator float64) float64 {
	if denominator > 0 {
		return numerator / denominator
	}
	return 0
}

// ApplyPercentage applies a percentage to a value
func ApplyPercentage(value, percentage float64) float64 {
	return value * percentage / constants.PercentageMultiplier
}

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance float64) bool {
	return math.Abs(val1-val2) <= tolerance
}

// IsFinite reports whether val is neither NaN nor infinite.
func IsFinite(val float64) bool {
	return !math.IsNaN(val) && !math.IsInf(val, 0)
}
