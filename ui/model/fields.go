package model

import (
	"math"
	"strconv"
	"strings"
)

// ParseIntField parses an integer control field. Surrounding space, a "px"
// suffix and fractional input (rounded half away from zero) are accepted.
func ParseIntField(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if i, err := strconv.Atoi(s); err == nil {
		return i, true
	}
	// Accept "12px" and "12.6" as typed into the offset fields.
	s = strings.TrimSuffix(strings.ToLower(s), "px")
	f, ok := ParseFloatField(s)
	if !ok {
		return 0, false
	}
	if f < 0 {
		return int(f - 0.5), true
	}
	return int(f + 0.5), true
}

// ParseFloatField parses a finite float.
func ParseFloatField(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
