package core

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JonMunkholm/virex/internal/catalog"
	"github.com/JonMunkholm/virex/internal/importer"
	"github.com/JonMunkholm/virex/internal/logging"
	"github.com/JonMunkholm/virex/internal/objstore"
	"github.com/JonMunkholm/virex/internal/observability"
)

// execute writes every selected INSERT and UPDATE in plan order. Each write
// stands alone: a failure is recorded and the batch moves on, and nothing
// already written is undone.
func (s *Service) execute(ctx context.Context, target importer.Target, table catalog.CategoryTable, ops []importer.SyncOperation) *ImportReport {
	report := &ImportReport{OperationErrors: []OperationError{}}
	logger := logging.FromContext(ctx)

	for _, op := range ops {
		if !op.Selected || op.Type == importer.OpSkip {
			report.Summary.Skipped++
			continue
		}

		if err := s.apply(ctx, target, table, op); err != nil {
			observability.ImportOperationErrorsTotal.WithLabelValues(string(target.Kind), string(op.Type)).Inc()
			logger.Warn("import operation failed",
				slog.Int("row", op.SourceRow),
				slog.String("part_number", op.PartNumber),
				slog.String("type", string(op.Type)),
				slog.Any("error", err),
			)
			report.OperationErrors = append(report.OperationErrors, OperationError{
				Row:        op.SourceRow,
				PartNumber: op.PartNumber,
				Type:       op.Type,
				Error:      FormatUserError(err),
			})
			continue
		}

		switch op.Type {
		case importer.OpInsert:
			report.Summary.Inserted++
		case importer.OpUpdate:
			report.Summary.Updated++
		}
	}

	kind := string(target.Kind)
	observability.ImportRowsTotal.WithLabelValues(kind, "inserted").Add(float64(report.Summary.Inserted))
	observability.ImportRowsTotal.WithLabelValues(kind, "updated").Add(float64(report.Summary.Updated))
	observability.ImportRowsTotal.WithLabelValues(kind, "skipped").Add(float64(report.Summary.Skipped))
	return report
}

func (s *Service) apply(ctx context.Context, target importer.Target, table catalog.CategoryTable, op importer.SyncOperation) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if target.Kind == importer.TargetCategory {
		if op.Type == importer.OpUpdate {
			return s.store.UpdateCategoryProduct(ctx, table, op.ExistingID, op.Data)
		}
		_, err := s.store.InsertCategoryProduct(ctx, table, op.PartNumber, op.Data)
		return err
	}

	if op.Type == importer.OpUpdate {
		return s.store.UpdateProduct(ctx, op.ExistingID, op.Data)
	}
	id, err := s.store.InsertProduct(ctx, op.PartNumber, op.Data)
	if err != nil {
		return err
	}
	s.attachDefaultImage(ctx, id, op.Data)
	return nil
}

// attachDefaultImage gives a new product its category's default image.
// Failures are logged and otherwise ignored.
func (s *Service) attachDefaultImage(ctx context.Context, productID int64, data map[string]any) {
	categoryID, ok := importer.AsInt64(data["category_id"])
	if !ok || categoryID <= 0 {
		return
	}
	if err := s.store.AttachDefaultImage(ctx, productID, categoryID); err != nil {
		logging.FromContext(ctx).Debug("default image not attached",
			slog.Int64("product_id", productID),
			slog.Any("error", err),
		)
	}
}

// archiveUpload copies the raw CSV to object storage when archiving is on.
// It is best effort: failures are logged and the import proceeds.
func (s *Service) archiveUpload(ctx context.Context, req ImportRequest, target importer.Target) {
	if !s.archive {
		return
	}
	key := objstore.ObjectKey("imports/"+target.Table, uuid.NewString(), req.FileName, s.now())
	if err := s.objects.Put(ctx, key, req.Data, "text/csv"); err != nil {
		logging.FromContext(ctx).Warn("import archive failed", slog.String("key", key), slog.Any("error", err))
		return
	}
	logging.FromContext(ctx).Debug("import archived", slog.String("key", key))
}
