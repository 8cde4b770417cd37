package templates

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/virex/internal/core"
	"github.com/JonMunkholm/virex/internal/importer"
)

func TestErrorAlert_EscapesContent(t *testing.T) {
	var b strings.Builder
	require.NoError(t, ErrorAlert(`<script>alert(1)</script>`, "Try again", "ERR000").Render(context.Background(), &b))

	html := b.String()
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
	assert.Contains(t, html, "Code: ERR000")
	assert.Contains(t, html, `role="alert"`)
}

func TestErrorAlert_OmitsEmptyParts(t *testing.T) {
	var b strings.Builder
	require.NoError(t, ErrorAlert("Busy", "", "").Render(context.Background(), &b))

	assert.NotContains(t, b.String(), "alert-action")
	assert.NotContains(t, b.String(), "alert-code")
}

func TestImportSummary(t *testing.T) {
	report := &core.ImportReport{
		Success: false,
		Summary: core.ImportSummary{TotalRows: 3, Inserted: 1, Updated: 1, Errors: 1},
		ProcessingResult: core.ProcessingReport{
			Success:          true,
			DetectedCategory: "Area Scan",
			Errors:           []importer.Diagnostic{},
			Warnings: []importer.Diagnostic{
				{RowIndex: 2, Field: "part_number", Message: `part_number "AB" is shorter than 3 characters`, Severity: importer.SeverityWarning},
			},
		},
		OperationErrors: []core.OperationError{
			{Row: 4, PartNumber: "X<1>", Type: importer.OpInsert, Error: "A product with this part number already exists (Code: DB001). Preview the import"},
		},
	}

	var b strings.Builder
	require.NoError(t, ImportSummary(report).Render(context.Background(), &b))
	html := b.String()

	assert.Contains(t, html, "Import completed with problems")
	assert.Contains(t, html, "Detected category: Area Scan")
	assert.Contains(t, html, "<dt>Inserted</dt><dd>1</dd>")
	assert.Contains(t, html, "Row 4, X&lt;1&gt; (INSERT)")
	assert.Contains(t, html, "Row 2, part_number:")
	assert.NotContains(t, html, "diagnostics-errors")
}

func TestImportSummary_TruncatesDiagnostics(t *testing.T) {
	var errs []importer.Diagnostic
	for i := 0; i < maxListedDiagnostics+5; i++ {
		errs = append(errs, importer.Diagnostic{RowIndex: i + 2, Field: "maker_id", Message: "maker_id is required", Severity: importer.SeverityError})
	}
	report := &core.ImportReport{ProcessingResult: core.ProcessingReport{Errors: errs}}

	var b strings.Builder
	require.NoError(t, ImportSummary(report).Render(context.Background(), &b))

	assert.Equal(t, maxListedDiagnostics, strings.Count(b.String(), "maker_id is required"))
	assert.Contains(t, b.String(), fmt.Sprintf("and %d more", 5))
}
