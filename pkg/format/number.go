// Package format renders numbers for human-readable output.
package format

import (
	"fmt"
	"math"
	"strings"
)

// Amount returns a number with thousands separators and two decimals
// (e.g., "-1,234.56").
func Amount(amount float64) string {
	sign := ""
	if amount < 0 && formatPositive(math.Abs(amount)) != "0.00" {
		sign = "-"
	}
	return sign + formatPositive(math.Abs(amount))
}

// Percent returns a percentage with two decimals and a trailing percent sign
// (e.g., "-0.25 %").
func Percent(value float64) string {
	formatted := fmt.Sprintf("%.2f", value)
	if formatted == "-0.00" {
		formatted = "0.00"
	}
	return formatted + " %"
}

// SignedPercent is Percent with an explicit sign for positive values, used
// for deltas (e.g., "+0.50 %").
func SignedPercent(value float64) string {
	p := Percent(value)
	if !strings.HasPrefix(p, "-") && p != "0.00 %" {
		return "+" + p
	}
	return p
}

func formatPositive(value float64) string {
	formatted := fmt.Sprintf("%.2f", value)
	parts := strings.SplitN(formatted, ".", 2)
	intPart := parts[0]
	decPart := "00"
	if len(parts) == 2 {
		decPart = parts[1]
	}

	if len(intPart) > 3 {
		var builder strings.Builder
		for i, digit := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				builder.WriteByte(',')
			}
			builder.WriteRune(digit)
		}
		intPart = builder.String()
	}

	return intPart + "." + decPart
}
