package provider

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ExtractValue normalizes a stat value from the formats sources produce.
//
// BDL returns JSON numbers (float64), minutes as "34:12" strings and
// nullable fields. CSV and HTML exports return strings, sometimes with a
// leading "+" on plus-minus or a trailing "%" on percentages. This handles
// all of them.
//
// Returns ok=false when the value is absent (nil, empty string) or cannot be
// read as a number. NaN and Inf parse as-is; callers decide what to do with
// them.
func ExtractValue(val interface{}) (float64, bool) {
	if val == nil {
		return 0, false
	}

	switch v := val.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		return parseNumeric(v)
	case map[string]interface{}:
		// Nested aggregates: try "total", "value", "average"
		for _, key := range []string{"total", "value", "average"} {
			if inner, exists := v[key]; exists && inner != nil {
				return ExtractValue(inner)
			}
		}
		return 0, false
	default:
		return 0, false
	}
}

// IsBlank reports whether a cell carries no value at all.
func IsBlank(val interface{}) bool {
	if val == nil {
		return true
	}
	if s, ok := val.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

func parseNumeric(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	// Minutes played: "34:12" -> 34.2
	if mins, secs, found := strings.Cut(s, ":"); found {
		m, err1 := strconv.ParseFloat(mins, 64)
		sec, err2 := strconv.ParseFloat(secs, 64)
		if err1 != nil || err2 != nil {
			return 0, false
		}
		return m + sec/60, true
	}
	s = strings.TrimPrefix(s, "+")
	pct := strings.HasSuffix(s, "%")
	s = strings.TrimSuffix(s, "%")
	if strings.HasPrefix(s, ".") {
		s = "0" + s
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if pct {
		f /= 100
	}
	return f, true
}
