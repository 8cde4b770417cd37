// Package importer turns catalog CSV files into validated product rows and a
// reconciliation plan against what is already stored.
//
// The pipeline is a single pass over one file:
//
//	ParseCSV -> Classify -> resolve references and coerce values per row
//	-> ValidateRow per row -> Planner.Plan for the whole batch
//
// Nothing in this package writes products. Executing the plan belongs to the
// caller, which decides which operations are selected.
package importer

import "strings"

// Severity grades a diagnostic. Only errors affect a batch's success flag.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Diagnostic is one validation finding for a row, or for the whole file when
// RowIndex is 0.
type Diagnostic struct {
	RowIndex int      `json:"row"`
	Field    string   `json:"field"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// ParsedRow is one data line after classification and coercion.
// RowIndex is the 1-based position among non-blank lines, so the first data
// row is 2.
type ParsedRow struct {
	BasicFields    map[string]any    `json:"basicFields"`
	Specifications map[string]any    `json:"specifications"`
	OriginalRow    map[string]string `json:"originalRow"`
	RowIndex       int               `json:"rowIndex"`
}

// PartNumber returns the trimmed part number, or "" when absent.
func (r ParsedRow) PartNumber() string {
	s, _ := r.BasicFields["part_number"].(string)
	return strings.TrimSpace(s)
}

// ProcessingResult is the outcome of running one file through a processor.
type ProcessingResult struct {
	Success          bool         `json:"success"`
	Header           []string     `json:"header"`
	Data             []ParsedRow  `json:"data"`
	Errors           []Diagnostic `json:"errors"`
	Warnings         []Diagnostic `json:"warnings"`
	DetectedCategory string       `json:"detectedCategory,omitempty"`

	// SpecKeys are the specification columns the header carries, in
	// header order.
	SpecKeys []string `json:"specKeys,omitempty"`
}

func (r *ProcessingResult) add(d Diagnostic) {
	if d.Severity == SeverityError {
		r.Errors = append(r.Errors, d)
		return
	}
	r.Warnings = append(r.Warnings, d)
}

// RowsWithErrors returns the row indexes that carry at least one error.
func (r *ProcessingResult) RowsWithErrors() map[int]bool {
	rows := make(map[int]bool)
	for _, d := range r.Errors {
		if d.RowIndex > 0 {
			rows[d.RowIndex] = true
		}
	}
	return rows
}

func fileError(err error) *ProcessingResult {
	return &ProcessingResult{
		Success:  false,
		Data:     []ParsedRow{},
		Errors:   []Diagnostic{{RowIndex: 0, Field: "file", Message: err.Error(), Severity: SeverityError}},
		Warnings: []Diagnostic{},
	}
}
