package shared

import (
	"math"
	"strconv"
	"strings"
)

// ParseIntOrZero parses s as a base-10 integer, returning 0 on any failure.
// Partial numeric input from a form field must normalize, never error.
func ParseIntOrZero(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

// ParseFloatOrZero parses s as a decimal, returning 0 on any failure.
func ParseFloatOrZero(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// Round2 rounds to two decimal places. Applied only at the presentation
// boundary so intermediate arithmetic does not compound rounding error.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
