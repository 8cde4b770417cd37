package importer

import (
	"math"
	"strconv"
	"strings"
)

// numericKeywords mark specification keys whose values are read as numbers.
var numericKeywords = []string{"rate", "frequency", "dpi", "size", "distance", "stages", "depth", "fps"}

// CoerceSpecValue types a specification value from its key name.
// The literals true and false become booleans. Keys containing a numeric
// keyword take a float when the value parses as one. Everything else stays a
// trimmed string. ok is false for empty values, which are left out of the
// specifications map.
func CoerceSpecValue(key, raw string) (value any, ok bool) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return nil, false
	}

	switch strings.ToLower(v) {
	case "true":
		return true, true
	case "false":
		return false, true
	}

	if hasNumericKeyword(key) {
		if f, err := strconv.ParseFloat(v, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return f, true
		}
	}
	return v, true
}

func hasNumericKeyword(key string) bool {
	k := strings.ToLower(key)
	for _, kw := range numericKeywords {
		if strings.Contains(k, kw) {
			return true
		}
	}
	return false
}

// CoerceBasicValue types a basic field from its name.
// Fields ending in _id become int64 or nil. is_active and is_new are true
// only for true, 1 or yes. Other fields are trimmed strings or nil.
func CoerceBasicValue(field, raw string) any {
	f := strings.ToLower(field)
	v := strings.TrimSpace(raw)

	switch {
	case strings.HasSuffix(f, "_id"):
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil
		}
		return id
	case f == "is_active" || f == "is_new":
		switch strings.ToLower(v) {
		case "true", "1", "yes":
			return true
		default:
			return false
		}
	default:
		if v == "" {
			return nil
		}
		return v
	}
}

// AsInt64 reads an integer id from a coerced or JSON-decoded value.
func AsInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int64(n), true
	default:
		return 0, false
	}
}
