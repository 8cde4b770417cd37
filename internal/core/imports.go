package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/JonMunkholm/virex/internal/catalog"
	"github.com/JonMunkholm/virex/internal/importer"
	"github.com/JonMunkholm/virex/internal/logging"
	"github.com/JonMunkholm/virex/internal/observability"
	"github.com/JonMunkholm/virex/internal/store"
	"github.com/JonMunkholm/virex/internal/telemetry"
)

var tracer = telemetry.Tracer("github.com/JonMunkholm/virex/internal/core")

// prepared is a file that went through the pipeline up to planning.
type prepared struct {
	target importer.Target
	table  catalog.CategoryTable // zero for generic imports
	result *importer.ProcessingResult
	ops    []importer.SyncOperation
}

// ImportGeneric runs a products CSV through the pipeline and executes every
// selected operation.
func (s *Service) ImportGeneric(ctx context.Context, req ImportRequest) (*ImportReport, error) {
	return s.runImport(ctx, req, importer.TargetProducts)
}

// ImportCategory runs a category CSV through the pipeline and executes every
// selected operation against the category's table. req.CategoryID is required.
func (s *Service) ImportCategory(ctx context.Context, req ImportRequest) (*ImportReport, error) {
	return s.runImport(ctx, req, importer.TargetCategory)
}

func (s *Service) runImport(ctx context.Context, req ImportRequest, kind importer.TargetKind) (report *ImportReport, err error) {
	ctx, span := tracer.Start(ctx, "import.execute", trace.WithAttributes(
		attribute.String("import.kind", string(kind)),
		attribute.String("import.file", req.FileName),
	))
	defer endSpan(span, &err)

	ctx, release, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	start := time.Now()
	p, err := s.prepare(ctx, req, kind)
	if err != nil {
		return nil, err
	}
	s.archiveUpload(ctx, req, p.target)

	report = s.execute(ctx, p.target, p.table, p.ops)
	report.Summary.TotalRows = len(p.result.Data)
	report.ProcessingResult = processingReport(p.result)
	report.finish()

	observability.ImportDuration.WithLabelValues(string(kind), "direct").Observe(time.Since(start).Seconds())
	s.auditImport(ctx, req.FileName, p.target, report)

	logging.FromContext(ctx).Info("import completed",
		slog.String("target", p.target.String()),
		slog.String("file", req.FileName),
		slog.Int("rows", report.Summary.TotalRows),
		slog.Int("inserted", report.Summary.Inserted),
		slog.Int("updated", report.Summary.Updated),
		slog.Int("skipped", report.Summary.Skipped),
		slog.Int("errors", report.Summary.Errors),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return report, nil
}

// begin takes a limiter slot and applies the import timeout. The returned
// release must be called when the import is done.
func (s *Service) begin(ctx context.Context) (context.Context, func(), error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.importTimeout)
	return ctx, func() {
		cancel()
		s.limiter.Release()
	}, nil
}

// prepare parses, resolves, validates and plans one file. File-level problems
// come back inside the result, not as an error; errors are reserved for bad
// requests and infrastructure failures.
func (s *Service) prepare(ctx context.Context, req ImportRequest, kind importer.TargetKind) (*prepared, error) {
	if int64(len(req.Data)) > s.maxFileSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds the %d byte limit", ErrFileTooLarge, len(req.Data), s.maxFileSize)
	}

	p := &prepared{target: importer.GenericProductsTable()}
	if kind == importer.TargetCategory {
		table, err := s.categoryTable(ctx, req.CategoryID)
		if err != nil {
			return nil, err
		}
		p.table = table
		p.target = importer.CategoryTable(table.Table)
	}

	refs, err := s.store.LoadReferences(ctx)
	if err != nil {
		return nil, fmt.Errorf("load references: %w", err)
	}
	cache := importer.NewReferenceCache(refs, s.store)

	var proc *importer.Processor
	if kind == importer.TargetCategory {
		proc = importer.NewCategoryProcessor(cache, p.table, *req.CategoryID)
	} else {
		proc = importer.NewGenericProcessor(cache)
		if req.CategoryID != nil {
			proc.WithDefaultCategory(*req.CategoryID)
		}
	}

	p.result = proc.Process(ctx, req.Data)
	recordDiagnostics(p.result)
	if kind == importer.TargetCategory {
		// Columns the file does not carry are neither compared nor written.
		p.table = p.table.Subset(p.result.SpecKeys)
	}
	if created := cache.Created(); len(created) > 0 {
		observability.SeriesCreatedTotal.Add(float64(len(created)))
		logging.FromContext(ctx).Info("created series during import", slog.Int("count", len(created)))
	}

	existing, err := s.existing(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("load existing products: %w", err)
	}

	p.ops = importer.Planner{Strict: s.strict}.Plan(p.result, existing, p.target)
	return p, nil
}

func (s *Service) categoryTable(ctx context.Context, categoryID *int64) (catalog.CategoryTable, error) {
	if categoryID == nil {
		return catalog.CategoryTable{}, fmt.Errorf("%w: categoryId is required", ErrUnknownCategory)
	}
	cat, err := s.store.GetCategory(ctx, *categoryID)
	if errors.Is(err, store.ErrNotFound) {
		return catalog.CategoryTable{}, fmt.Errorf("%w: no category with id %d", ErrUnknownCategory, *categoryID)
	}
	if err != nil {
		return catalog.CategoryTable{}, fmt.Errorf("get category: %w", err)
	}
	table, ok := catalog.ByCategoryName(cat.Name)
	if !ok {
		return catalog.CategoryTable{}, fmt.Errorf("%w: %q has no category table", ErrUnknownCategory, cat.Name)
	}
	return table, nil
}

func (s *Service) existing(ctx context.Context, p *prepared) ([]importer.ExistingRecord, error) {
	partNumbers := make([]string, 0, len(p.result.Data))
	seen := make(map[string]bool, len(p.result.Data))
	for _, row := range p.result.Data {
		if pn := row.PartNumber(); pn != "" && !seen[pn] {
			seen[pn] = true
			partNumbers = append(partNumbers, pn)
		}
	}
	if len(partNumbers) == 0 {
		return nil, nil
	}
	if p.target.Kind == importer.TargetCategory {
		return s.store.ExistingCategoryProducts(ctx, p.table, partNumbers)
	}
	return s.store.ExistingProducts(ctx, partNumbers)
}

func recordDiagnostics(result *importer.ProcessingResult) {
	if n := len(result.Errors); n > 0 {
		observability.ImportDiagnosticsTotal.WithLabelValues(string(importer.SeverityError)).Add(float64(n))
	}
	if n := len(result.Warnings); n > 0 {
		observability.ImportDiagnosticsTotal.WithLabelValues(string(importer.SeverityWarning)).Add(float64(n))
	}
}

func processingReport(result *importer.ProcessingResult) ProcessingReport {
	return ProcessingReport{
		Success:          result.Success,
		Errors:           nonNil(result.Errors),
		Warnings:         nonNil(result.Warnings),
		DetectedCategory: result.DetectedCategory,
	}
}

func nonNil(d []importer.Diagnostic) []importer.Diagnostic {
	if d == nil {
		return []importer.Diagnostic{}
	}
	return d
}

// finish derives the totals that depend on both halves of the report.
// Summary.Errors counts error diagnostics plus failed writes.
func (r *ImportReport) finish() {
	r.Summary.Errors = len(r.ProcessingResult.Errors) + len(r.OperationErrors)
	r.Success = r.ProcessingResult.Success && len(r.OperationErrors) == 0
}

func (s *Service) auditImport(ctx context.Context, fileName string, target importer.Target, report *ImportReport) {
	action := ActionImportGeneric
	if target.Kind == importer.TargetCategory {
		action = ActionImportCategory
	}
	s.LogAudit(ctx, AuditLogParams{
		Action:       action,
		Target:       target.Table,
		FileName:     fileName,
		RowsAffected: report.Summary.Inserted + report.Summary.Updated,
		Details: map[string]any{
			"total_rows": report.Summary.TotalRows,
			"inserted":   report.Summary.Inserted,
			"updated":    report.Summary.Updated,
			"skipped":    report.Summary.Skipped,
			"errors":     report.Summary.Errors,
			"plan_id":    report.PlanID,
		},
	})
}

func endSpan(span trace.Span, err *error) {
	if *err != nil {
		span.RecordError(*err)
		span.SetStatus(codes.Error, (*err).Error())
	}
	span.End()
}
