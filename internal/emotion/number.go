package emotion

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/spf13/cast"
)

// toFloat coerces a decoded JSON/BSON value into a finite float64.
// nil, booleans, blank strings, NaN and infinities are rejected.
func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case nil, bool:
		return 0, false
	case string:
		if strings.TrimSpace(t) == "" {
			return 0, false
		}
		v = strings.TrimSpace(t)
	case json.Number:
		v = t.String()
	}

	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// toText returns v when it is a non-blank string.
func toText(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func overlap(aStart, aEnd, bStart, bEnd float64) float64 {
	return math.Max(0, math.Min(aEnd, bEnd)-math.Max(aStart, bStart))
}
