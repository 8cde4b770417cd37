// Package inbox imports CSV files dropped into a directory.
//
// Each file runs through the import pipeline. Rows that failed validation
// or could not be written are copied to "<name> - failed.csv" next to the
// source, with the reason in the first column, and the source file moves to
// the Uploaded subdirectory. Files that fail as a whole stay where they are.
package inbox

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/JonMunkholm/virex/internal/core"
	"github.com/JonMunkholm/virex/internal/importer"
)

const (
	// UploadedDir receives processed files.
	UploadedDir = "Uploaded"

	failedSuffix = " - failed.csv"
)

// ImportFunc runs one CSV through the pipeline.
// core.Service.ImportGeneric and ImportCategory satisfy it.
type ImportFunc func(ctx context.Context, req core.ImportRequest) (*core.ImportReport, error)

// Result is the outcome of one processed file.
type Result struct {
	File       string
	Report     *core.ImportReport
	FailedRows int
	FailedFile string
}

// Processor imports files from one directory.
type Processor struct {
	dir        string
	importFn   ImportFunc
	categoryID *int64
	logger     *slog.Logger
}

// NewProcessor creates a Processor for dir. categoryID is passed on every
// import request and may be nil.
func NewProcessor(dir string, importFn ImportFunc, categoryID *int64) *Processor {
	return &Processor{
		dir:        dir,
		importFn:   importFn,
		categoryID: categoryID,
		logger:     slog.Default().With("component", "inbox", "dir", dir),
	}
}

// ProcessDir imports every pending CSV in the directory in name order.
// A failing file is logged and skipped; the error of the first failure is
// returned after all files were tried.
func (p *Processor) ProcessDir(ctx context.Context) ([]Result, error) {
	entries, err := os.ReadDir(p.dir)
	if err != nil {
		return nil, fmt.Errorf("read inbox: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && isPending(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var (
		results  []Result
		firstErr error
	)
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := p.ProcessFile(ctx, name)
		if err != nil {
			p.logger.Error("inbox file failed", "file", name, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		results = append(results, res)
	}
	return results, firstErr
}

// ProcessFile imports one file of the directory by name.
func (p *Processor) ProcessFile(ctx context.Context, name string) (Result, error) {
	name = filepath.Base(name)
	if !isPending(name) {
		return Result{}, fmt.Errorf("invalid filename: %q", name)
	}
	path := filepath.Join(p.dir, name)

	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("read %s: %w", name, err)
	}

	report, err := p.importFn(ctx, core.ImportRequest{
		FileName:   name,
		Data:       data,
		CategoryID: p.categoryID,
	})
	if err != nil {
		return Result{}, fmt.Errorf("import %s: %s", name, core.FormatUserError(err))
	}
	if msg := fileLevelError(report); msg != "" {
		return Result{}, fmt.Errorf("import %s: %s", name, msg)
	}

	res := Result{File: name, Report: report}

	failed := failedRecords(data, report)
	if len(failed) > 1 {
		res.FailedRows = len(failed) - 1
		res.FailedFile = filepath.Join(p.dir, strings.TrimSuffix(name, filepath.Ext(name))+failedSuffix)
		if err := writeCSV(res.FailedFile, failed); err != nil {
			return Result{}, fmt.Errorf("failed writing failure file: %w", err)
		}
	}

	uploaded := filepath.Join(p.dir, UploadedDir)
	if err := os.MkdirAll(uploaded, 0o755); err != nil {
		return Result{}, fmt.Errorf("failed to create %s directory: %w", UploadedDir, err)
	}
	if err := os.Rename(path, filepath.Join(uploaded, name)); err != nil {
		return Result{}, fmt.Errorf("failed moving file %s: %w", name, err)
	}

	p.logger.Info("inbox file imported",
		"file", name,
		"inserted", report.Summary.Inserted,
		"updated", report.Summary.Updated,
		"skipped", report.Summary.Skipped,
		"failed_rows", res.FailedRows,
	)
	return res, nil
}

// isPending reports whether name is a CSV waiting to be imported.
func isPending(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".csv") &&
		!strings.HasSuffix(name, failedSuffix) &&
		!strings.HasPrefix(name, ".")
}

// fileLevelError returns the message of a diagnostic that rejected the
// whole file.
func fileLevelError(report *core.ImportReport) string {
	for _, d := range report.ProcessingResult.Errors {
		if d.RowIndex == 0 {
			return d.Message
		}
	}
	return ""
}

// failedRecords rebuilds the rows the import could not take, prefixed with
// the reason. The first record is the header.
func failedRecords(data []byte, report *core.ImportReport) [][]string {
	reasons := map[int][]string{}
	for _, d := range report.ProcessingResult.Errors {
		if d.RowIndex > 0 {
			reasons[d.RowIndex] = append(reasons[d.RowIndex], d.Message)
		}
	}
	for _, oe := range report.OperationErrors {
		reasons[oe.Row] = append(reasons[oe.Row], oe.Error)
	}
	if len(reasons) == 0 {
		return nil
	}

	rows, err := importer.ParseCSV(importer.DecodeText(data))
	if err != nil {
		return nil
	}

	indexes := make([]int, 0, len(reasons))
	for idx := range reasons {
		if idx >= 2 && idx <= len(rows) {
			indexes = append(indexes, idx)
		}
	}
	sort.Ints(indexes)

	records := [][]string{rowFailed("error", rows[0])}
	for _, idx := range indexes {
		records = append(records, rowFailed(strings.Join(reasons[idx], "; "), rows[idx-1]))
	}
	return records
}

func rowFailed(reason string, row []string) []string {
	return append([]string{reason}, row...)
}

func writeCSV(path string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
