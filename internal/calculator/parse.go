package calculator

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// numberRe accepts an optional sign, digits and one '.' or ',' separator.
// Exponents, hex, NaN and Inf are rejected.
var numberRe = regexp.MustCompile(`^[+-]?(\d+([.,]\d*)?|[.,]\d+)$`)

// ParseNumber reads a decimal that may use a comma as the separator, e.g. "150,5".
func ParseNumber(text string) (float64, bool) {
	s := strings.TrimSpace(text)
	if !numberRe.MatchString(s) {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// ParseCount reads a piece count. Fractions are truncated toward zero;
// values that do not fit in an int are rejected.
func ParseCount(text string) (int, bool) {
	v, ok := ParseNumber(text)
	if !ok {
		return 0, false
	}
	v = math.Trunc(v)
	if v >= float64(math.MaxInt) || v < float64(math.MinInt) {
		return 0, false
	}
	return int(v), true
}
