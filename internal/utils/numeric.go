package utils

import (
	"strconv"
	"strings"
)

// NumericValue extracts a float from a display string such as "$3,650" or
// "450 sqm" by stripping every character that is not a digit or a decimal
// point. Malformed or empty input yields 0 so callers can treat the value
// as "not priced" rather than failing.
func NumericValue(s string) float64 {
	var b strings.Builder
	dotSeen := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' && !dotSeen:
			dotSeen = true
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0
	}
	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0
	}
	return v
}

// RelativeDiff returns |a-b| relative to the larger of the two values.
// Returns 1 (maximum difference) when either value is non-positive, which
// disables band matching for unpriced records.
func RelativeDiff(a, b float64) float64 {
	if a <= 0 || b <= 0 {
		return 1
	}
	max := a
	if b > max {
		max = b
	}
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff / max
}
