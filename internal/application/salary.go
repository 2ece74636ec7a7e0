package application

import (
	"strconv"
	"strings"
)

// ParseSalaryLPA converts free form salary text into lakhs per annum.
// Monthly figures are annualised. Text without a number yields 0.
func ParseSalaryLPA(text string) float64 {
	lower := strings.ToLower(text)

	var digits strings.Builder
	for _, r := range lower {
		if (r >= '0' && r <= '9') || r == '.' {
			digits.WriteRune(r)
		}
	}

	value, ok := leadingFloat(digits.String())
	if !ok {
		return 0
	}

	switch {
	case strings.Contains(lower, "lpa"):
		return value
	case strings.Contains(lower, "/month"), strings.Contains(lower, "per month"):
		return value * 12 / 100000
	default:
		return value
	}
}

// leadingFloat parses the longest prefix of s that is a valid number.
func leadingFloat(s string) (float64, bool) {
	for end := len(s); end > 0; end-- {
		if v, err := strconv.ParseFloat(s[:end], 64); err == nil {
			return v, true
		}
	}
	return 0, false
}
