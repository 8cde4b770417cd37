// Package templates renders the HTMX fragments returned to the admin UI.
package templates

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/virex/internal/core"
	"github.com/JonMunkholm/virex/internal/importer"
)

// maxListedDiagnostics caps how many diagnostics a summary lists per severity.
const maxListedDiagnostics = 20

// ErrorAlert renders a dismissible error box with a support code.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<div class="alert alert-error" role="alert">`)
		fmt.Fprintf(&b, `<p class="alert-message">%s</p>`, templ.EscapeString(message))
		if action != "" {
			fmt.Fprintf(&b, `<p class="alert-action">%s</p>`, templ.EscapeString(action))
		}
		if code != "" {
			fmt.Fprintf(&b, `<p class="alert-code">Code: %s</p>`, templ.EscapeString(code))
		}
		b.WriteString(`<button type="button" class="alert-close" onclick="this.parentElement.remove()">&times;</button></div>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// ImportSummary renders the counts, failed writes and diagnostics of an
// executed import.
func ImportSummary(report *core.ImportReport) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder

		status, class := "Import completed", "import-summary success"
		if !report.Success {
			status, class = "Import completed with problems", "import-summary warning"
		}
		fmt.Fprintf(&b, `<section class="%s"><h3>%s</h3>`, class, status)
		if report.ProcessingResult.DetectedCategory != "" {
			fmt.Fprintf(&b, `<p class="detected">Detected category: %s</p>`, templ.EscapeString(report.ProcessingResult.DetectedCategory))
		}

		sum := report.Summary
		b.WriteString(`<dl class="import-counts">`)
		for _, c := range []struct {
			label string
			n     int
		}{
			{"Rows", sum.TotalRows},
			{"Inserted", sum.Inserted},
			{"Updated", sum.Updated},
			{"Skipped", sum.Skipped},
			{"Errors", sum.Errors},
		} {
			fmt.Fprintf(&b, `<dt>%s</dt><dd>%d</dd>`, c.label, c.n)
		}
		b.WriteString(`</dl>`)

		if len(report.OperationErrors) > 0 {
			b.WriteString(`<h4>Failed writes</h4><ul class="operation-errors">`)
			for _, e := range report.OperationErrors {
				fmt.Fprintf(&b, `<li>Row %d, %s (%s): %s</li>`,
					e.Row, templ.EscapeString(e.PartNumber), e.Type, templ.EscapeString(e.Error))
			}
			b.WriteString(`</ul>`)
		}

		writeDiagnostics(&b, "Errors", "diagnostics-errors", report.ProcessingResult.Errors)
		writeDiagnostics(&b, "Warnings", "diagnostics-warnings", report.ProcessingResult.Warnings)

		b.WriteString(`</section>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func writeDiagnostics(b *strings.Builder, title, class string, diags []importer.Diagnostic) {
	if len(diags) == 0 {
		return
	}
	fmt.Fprintf(b, `<h4>%s</h4><ul class="%s">`, title, class)
	for i, d := range diags {
		if i == maxListedDiagnostics {
			fmt.Fprintf(b, `<li class="more">and %d more</li>`, len(diags)-i)
			break
		}
		where := "File"
		if d.RowIndex > 0 {
			where = fmt.Sprintf("Row %d", d.RowIndex)
		}
		fmt.Fprintf(b, `<li>%s, %s: %s</li>`, where, templ.EscapeString(d.Field), templ.EscapeString(d.Message))
	}
	b.WriteString(`</ul>`)
}
