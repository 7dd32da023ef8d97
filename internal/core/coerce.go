package core

import (
	"math"
	"strconv"
	"strings"
)

// number coerces a form value. Blank, unparsable and non-finite input become 0.
func number(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// integer coerces a form value and rounds it half away from zero.
func integer(raw string) int {
	return int(math.Round(number(raw)))
}

func text(raw string) string { return strings.TrimSpace(raw) }
