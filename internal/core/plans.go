package core

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/JonMunkholm/virex/internal/catalog"
	"github.com/JonMunkholm/virex/internal/importer"
	"github.com/JonMunkholm/virex/internal/logging"
	"github.com/JonMunkholm/virex/internal/observability"
)

// PreviewGeneric plans a products CSV without writing products and stores
// the plan for later execution.
func (s *Service) PreviewGeneric(ctx context.Context, req ImportRequest) (*Plan, error) {
	return s.preview(ctx, req, importer.TargetProducts)
}

// PreviewCategory plans a category CSV without writing products and stores
// the plan for later execution. req.CategoryID is required.
func (s *Service) PreviewCategory(ctx context.Context, req ImportRequest) (*Plan, error) {
	return s.preview(ctx, req, importer.TargetCategory)
}

func (s *Service) preview(ctx context.Context, req ImportRequest, kind importer.TargetKind) (plan *Plan, err error) {
	ctx, span := tracer.Start(ctx, "import.preview", trace.WithAttributes(
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

	now := s.now().UTC()
	plan = &Plan{
		ID:               uuid.NewString(),
		FileName:         req.FileName,
		Target:           p.target,
		CategoryID:       req.CategoryID,
		Columns:          p.table.ColumnNames(),
		TotalRows:        len(p.result.Data),
		Summary:          importer.Summarize(p.ops),
		ProcessingResult: processingReport(p.result),
		Operations:       p.ops,
		CreatedAt:        now,
		ExpiresAt:        now.Add(s.planTTL),
	}
	if err := s.savePlan(ctx, plan); err != nil {
		return nil, err
	}

	observability.PlansCreatedTotal.Inc()
	observability.ImportDuration.WithLabelValues(string(kind), "preview").Observe(time.Since(start).Seconds())
	s.LogAudit(ctx, AuditLogParams{
		Action:   ActionImportPreview,
		Target:   p.target.Table,
		FileName: req.FileName,
		Details:  map[string]any{"plan_id": plan.ID, "operations": len(plan.Operations)},
	})

	logging.FromContext(ctx).Info("import plan created",
		slog.String("plan_id", plan.ID),
		slog.String("target", p.target.String()),
		slog.Int("inserts", plan.Summary.Inserts),
		slog.Int("updates", plan.Summary.Updates),
		slog.Int("skips", plan.Summary.Skips),
	)
	return plan, nil
}

func (s *Service) savePlan(ctx context.Context, plan *Plan) error {
	data, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("encode plan: %w", err)
	}
	if err := s.plans.Put(ctx, plan.ID, data, s.planTTL); err != nil {
		return fmt.Errorf("store plan: %w", err)
	}
	return nil
}

// GetPlan returns a stored plan, or ErrPlanNotFound once it has expired or
// been executed.
func (s *Service) GetPlan(ctx context.Context, planID string) (*Plan, error) {
	data, err := s.plans.Get(ctx, planID)
	if err != nil {
		return nil, err
	}
	var plan Plan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("decode plan %s: %w", planID, err)
	}
	return &plan, nil
}

// ExecutePlan applies selections to a stored plan and executes it. Each
// selection maps an operation id to its new Selected flag; operations not
// named keep the flag they were planned with. A plan executes at most once.
func (s *Service) ExecutePlan(ctx context.Context, planID string, selections map[string]bool) (report *ImportReport, err error) {
	ctx, span := tracer.Start(ctx, "import.execute_plan", trace.WithAttributes(
		attribute.String("import.plan_id", planID),
	))
	defer endSpan(span, &err)

	plan, err := s.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if err := applySelections(plan.Operations, selections); err != nil {
		return nil, err
	}

	var table catalog.CategoryTable
	if plan.Target.Kind == importer.TargetCategory {
		if table, err = s.categoryTable(ctx, plan.CategoryID); err != nil {
			return nil, err
		}
		table = table.Subset(plan.Columns)
	}

	ctx, release, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	// Claim the plan before writing so a repeated request cannot replay it.
	if err := s.plans.Delete(ctx, planID); err != nil {
		return nil, fmt.Errorf("claim plan: %w", err)
	}

	start := time.Now()
	report = s.execute(ctx, plan.Target, table, plan.Operations)
	report.PlanID = plan.ID
	report.Summary.TotalRows = plan.TotalRows
	report.ProcessingResult = plan.ProcessingResult
	report.finish()

	observability.ImportDuration.WithLabelValues(string(plan.Target.Kind), "plan").Observe(time.Since(start).Seconds())
	s.auditImport(ctx, plan.FileName, plan.Target, report)

	logging.FromContext(ctx).Info("import plan executed",
		slog.String("plan_id", plan.ID),
		slog.Int("inserted", report.Summary.Inserted),
		slog.Int("updated", report.Summary.Updated),
		slog.Int("errors", report.Summary.Errors),
	)
	return report, nil
}

func applySelections(ops []importer.SyncOperation, selections map[string]bool) error {
	index := make(map[string]int, len(ops))
	for i, op := range ops {
		index[op.ID] = i
	}
	for id, selected := range selections {
		i, ok := index[id]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownOperation, id)
		}
		ops[i].Selected = selected
	}
	return nil
}
