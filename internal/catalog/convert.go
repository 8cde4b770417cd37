package catalog

// convert.go turns raw CSV cells into typed column values for the flat
// category tables and into pgtype values for query parameters.
//
// The ToPg* functions return Valid=false for empty or invalid input so the
// database stores NULL. CoerceColumn builds on them to produce plain Go values
// (float64, int64, bool, string) that serialize identically to what the
// store reads back, which is what the sync planner compares.

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
)

// numericRegex validates that a string is a valid numeric format after cleanup.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)

// ToPgText converts a string to pgtype.Text.
// Returns invalid if the string is empty or only whitespace.
func ToPgText(s string) pgtype.Text {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

// ToPgNumeric converts a string to pgtype.Numeric.
// Thousands separators are dropped, so a quoted "1,024" reads as 1024.
func ToPgNumeric(s string) pgtype.Numeric {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return pgtype.Numeric{Valid: false}
	}

	if !numericRegex.MatchString(s) {
		return pgtype.Numeric{Valid: false}
	}

	var n pgtype.Numeric
	if err := n.Scan(s); err != nil {
		return pgtype.Numeric{Valid: false}
	}
	return n
}

// ToPgBool converts a string to pgtype.Bool.
// Accepts true/false, yes/no, t/f, y/n, 1/0.
func ToPgBool(s string) pgtype.Bool {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return pgtype.Bool{Valid: false}
	}

	switch s {
	case "true", "t", "yes", "y", "1":
		return pgtype.Bool{Bool: true, Valid: true}
	case "false", "f", "no", "n", "0":
		return pgtype.Bool{Bool: false, Valid: true}
	default:
		return pgtype.Bool{Valid: false}
	}
}

// ToPgInt8 converts an optional id to pgtype.Int8.
func ToPgInt8(v *int64) pgtype.Int8 {
	if v == nil {
		return pgtype.Int8{Valid: false}
	}
	return pgtype.Int8{Int64: *v, Valid: true}
}

// NumericToFloat converts a pgtype.Numeric to float64.
// The second return is false for NULL or unrepresentable values.
func NumericToFloat(n pgtype.Numeric) (float64, bool) {
	if !n.Valid {
		return 0, false
	}
	f, err := n.Float64Value()
	if err != nil || !f.Valid {
		return 0, false
	}
	return f.Float64, true
}

// CleanCell removes common CSV artifacts from a cell value:
// surrounding whitespace, the Excel formula prefix (="...") and stray quotes.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	return strings.Trim(s, `"'`)
}

// CoerceColumn converts a raw cell to the Go value stored in a typed column.
// Empty input yields (nil, nil). Invalid input yields an error naming the type.
func CoerceColumn(col Column, raw string) (any, error) {
	raw = CleanCell(raw)
	if raw == "" {
		return nil, nil
	}

	switch col.Type {
	case ColumnNumeric:
		f, ok := NumericToFloat(ToPgNumeric(raw))
		if !ok {
			return nil, fmt.Errorf("invalid number %q", raw)
		}
		return f, nil
	case ColumnInteger:
		i, err := strconv.ParseInt(strings.ReplaceAll(raw, ",", ""), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", raw)
		}
		return i, nil
	case ColumnBool:
		b := ToPgBool(raw)
		if !b.Valid {
			return nil, fmt.Errorf("invalid boolean %q (use yes/no, true/false, or 1/0)", raw)
		}
		return b.Bool, nil
	default:
		return raw, nil
	}
}
