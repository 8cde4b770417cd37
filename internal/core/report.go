package core

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/virex/internal/importer"
)

const (
	operationsSheet  = "Operations"
	diagnosticsSheet = "Diagnostics"
)

// ExportPlanXLSX renders a stored plan as a workbook for offline review.
func (s *Service) ExportPlanXLSX(ctx context.Context, planID string) ([]byte, error) {
	plan, err := s.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	return WritePlanXLSX(plan)
}

// WritePlanXLSX writes a plan's operations and diagnostics to two sheets.
func WritePlanXLSX(plan *Plan) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#305496"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	if err := f.SetSheetName("Sheet1", operationsSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	opRows := make([][]any, 0, len(plan.Operations))
	for _, op := range plan.Operations {
		opRows = append(opRows, []any{op.SourceRow, op.PartNumber, string(op.Type), op.Reason, op.Selected, op.ID})
	}
	if err := writeSheet(f, operationsSheet, headerStyle,
		[]string{"Row", "Part Number", "Type", "Reason", "Selected", "Operation ID"}, opRows); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet(diagnosticsSheet); err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	var diagRows [][]any
	for _, group := range [][]importer.Diagnostic{plan.ProcessingResult.Errors, plan.ProcessingResult.Warnings} {
		for _, d := range group {
			diagRows = append(diagRows, []any{d.RowIndex, d.Field, string(d.Severity), d.Message})
		}
	}
	if err := writeSheet(f, diagnosticsSheet, headerStyle,
		[]string{"Row", "Field", "Severity", "Message"}, diagRows); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sheet string, headerStyle int, header []string, rows [][]any) error {
	for i, h := range header {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("write %s header: %w", sheet, err)
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("style %s header: %w", sheet, err)
	}

	for r, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, r+2, err)
		}
	}
	return nil
}
