package importer

import (
	"fmt"
	"strings"
)

// MinPartNumberLength is the length below which a part number draws a warning.
const MinPartNumberLength = 3

var requiredFields = []string{"part_number", "category_id", "maker_id"}

// ValidateRow checks one parsed row. The diagnostics are advisory: they never
// stop later rows from being processed.
func ValidateRow(row ParsedRow) []Diagnostic {
	var diags []Diagnostic
	diag := func(field, msg string, sev Severity) {
		diags = append(diags, Diagnostic{RowIndex: row.RowIndex, Field: field, Message: msg, Severity: sev})
	}

	for _, field := range requiredFields {
		if isMissing(row, field) {
			diag(field, fmt.Sprintf("%s is required", field), SeverityError)
		}
	}

	if pn := row.PartNumber(); pn != "" && len([]rune(pn)) < MinPartNumberLength {
		diag("part_number", fmt.Sprintf("part_number %q is shorter than %d characters", pn, MinPartNumberLength), SeverityWarning)
	}

	for _, field := range []string{"category_id", "maker_id", "series_id"} {
		if isMissing(row, field) {
			continue
		}
		if _, ok := positiveID(row, field); ok {
			continue
		}
		sev := SeverityError
		if field == "series_id" {
			sev = SeverityWarning
		}
		diag(field, fmt.Sprintf("%s must be a positive integer (got %q)", field, strings.TrimSpace(row.OriginalRow[field])), sev)
	}

	return diags
}

// isMissing reports a field that is neither coerced nor present in the source.
func isMissing(row ParsedRow, field string) bool {
	if v, ok := row.BasicFields[field]; ok && v != nil {
		return false
	}
	return strings.TrimSpace(row.OriginalRow[field]) == ""
}

func positiveID(row ParsedRow, field string) (int64, bool) {
	id, ok := AsInt64(row.BasicFields[field])
	return id, ok && id > 0
}
