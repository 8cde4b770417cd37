package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/JonMunkholm/virex/internal/core"
	"github.com/JonMunkholm/virex/internal/importer"
	"github.com/JonMunkholm/virex/internal/inbox"
)

// maxListed caps diagnostics and operations printed per section.
const maxListed = 20

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00CC66")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#E0A800"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4040")).Bold(true)
	boxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)

	opStyles = map[importer.OperationType]lipgloss.Style{
		importer.OpInsert: successStyle,
		importer.OpUpdate: warnStyle,
		importer.OpSkip:   mutedStyle,
	}
)

func renderPlan(w io.Writer, plan *core.Plan) {
	counts := fmt.Sprintf("insert %d  update %d  skip %d",
		plan.Summary.Inserts, plan.Summary.Updates, plan.Summary.Skips)

	header := []string{
		titleStyle.Render("Plan " + plan.ID),
		fmt.Sprintf("%s → %s", plan.FileName, plan.Target.Table),
		fmt.Sprintf("%d rows  %s", plan.TotalRows, counts),
		mutedStyle.Render("expires " + plan.ExpiresAt.Format("2006-01-02 15:04 MST")),
	}
	if plan.ProcessingResult.DetectedCategory != "" {
		header = append(header, "detected category: "+plan.ProcessingResult.DetectedCategory)
	}
	fmt.Fprintln(w, boxStyle.Render(strings.Join(header, "\n")))

	for i, op := range plan.Operations {
		if i == maxListed {
			fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("  ... and %d more operations", len(plan.Operations)-maxListed)))
			break
		}
		style, ok := opStyles[op.Type]
		if !ok {
			style = mutedStyle
		}
		line := fmt.Sprintf("  %-6s row %-5d %s", style.Render(string(op.Type)), op.SourceRow, op.PartNumber)
		if op.Reason != "" {
			line += mutedStyle.Render("  " + op.Reason)
		}
		fmt.Fprintln(w, line)
	}

	renderDiagnostics(w, plan.ProcessingResult)
}

func renderReport(w io.Writer, fileName string, report *core.ImportReport) {
	status := successStyle.Render("imported")
	if !report.Success {
		status = errorStyle.Render("imported with problems")
	}

	s := report.Summary
	lines := []string{
		titleStyle.Render(fileName) + "  " + status,
		fmt.Sprintf("%d rows  inserted %d  updated %d  skipped %d  errors %d",
			s.TotalRows, s.Inserted, s.Updated, s.Skipped, s.Errors),
	}
	if report.ProcessingResult.DetectedCategory != "" {
		lines = append(lines, "detected category: "+report.ProcessingResult.DetectedCategory)
	}
	fmt.Fprintln(w, boxStyle.Render(strings.Join(lines, "\n")))

	for i, oe := range report.OperationErrors {
		if i == maxListed {
			fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("  ... and %d more failed writes", len(report.OperationErrors)-maxListed)))
			break
		}
		fmt.Fprintf(w, "  %s row %d %s: %s\n", errorStyle.Render(string(oe.Type)), oe.Row, oe.PartNumber, oe.Error)
	}

	renderDiagnostics(w, report.ProcessingResult)
}

func renderDiagnostics(w io.Writer, result core.ProcessingReport) {
	section := func(title string, style lipgloss.Style, diags []importer.Diagnostic) {
		if len(diags) == 0 {
			return
		}
		fmt.Fprintln(w, style.Render(fmt.Sprintf("%s (%d)", title, len(diags))))
		for i, d := range diags {
			if i == maxListed {
				fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("  ... and %d more", len(diags)-maxListed)))
				break
			}
			fmt.Fprintf(w, "  row %d, %s: %s\n", d.RowIndex, d.Field, d.Message)
		}
	}
	section("Errors", errorStyle, result.Errors)
	section("Warnings", warnStyle, result.Warnings)
}

func renderInboxResult(w io.Writer, res inbox.Result, err error) {
	if err != nil {
		fmt.Fprintln(w, errorStyle.Render("✗ ")+err.Error())
		return
	}
	s := res.Report.Summary
	line := fmt.Sprintf("%s %s  inserted %d  updated %d  skipped %d",
		successStyle.Render("✓"), res.File, s.Inserted, s.Updated, s.Skipped)
	if res.FailedRows > 0 {
		line += warnStyle.Render(fmt.Sprintf("  %d failed rows → %s", res.FailedRows, res.FailedFile))
	}
	fmt.Fprintln(w, line)
}
