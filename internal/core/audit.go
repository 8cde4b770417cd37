package core

import (
	"context"
	"log/slog"

	"github.com/JonMunkholm/virex/internal/logging"
	"github.com/JonMunkholm/virex/internal/store"
)

// AuditAction represents the type of action being audited.
type AuditAction string

const (
	ActionImportGeneric  AuditAction = "import_generic"
	ActionImportCategory AuditAction = "import_category"
	ActionImportPreview  AuditAction = "import_preview"
	ActionDownloadUpload AuditAction = "download_upload"
	ActionAuditPurge     AuditAction = "audit_purge"
)

// AuditSeverity represents the severity level of an audit entry.
type AuditSeverity string

const (
	SeverityLow      AuditSeverity = "low"
	SeverityMedium   AuditSeverity = "medium"
	SeverityHigh     AuditSeverity = "high"
	SeverityCritical AuditSeverity = "critical"
)

// AuditLogParams contains parameters for creating an audit log entry.
type AuditLogParams struct {
	Action       AuditAction
	Target       string
	FileName     string
	RowsAffected int
	Details      map[string]any
}

// determineSeverity returns the appropriate severity for an action.
func determineSeverity(action AuditAction) AuditSeverity {
	switch action {
	case ActionImportGeneric, ActionImportCategory:
		return SeverityHigh
	case ActionAuditPurge:
		return SeverityCritical
	case ActionImportPreview:
		return SeverityLow
	default:
		return SeverityMedium
	}
}

// LogAudit records an audit entry. The client IP and user agent come from
// ctx. Failures are logged and never fail the audited operation.
func (s *Service) LogAudit(ctx context.Context, params AuditLogParams) {
	rec := store.AuditRecord{
		Action:       string(params.Action),
		Severity:     string(determineSeverity(params.Action)),
		Target:       params.Target,
		FileName:     params.FileName,
		IPAddress:    GetIPAddressFromContext(ctx),
		UserAgent:    GetUserAgentFromContext(ctx),
		RowsAffected: params.RowsAffected,
		Details:      params.Details,
	}

	// The audited work may have consumed the request deadline.
	if _, err := s.store.InsertAudit(context.WithoutCancel(ctx), rec); err != nil {
		logging.FromContext(ctx).Error("audit log write failed",
			slog.String("action", rec.Action),
			slog.String("target", rec.Target),
			slog.Any("error", err),
		)
	}
}

// RecentAudit returns the newest audit entries.
func (s *Service) RecentAudit(ctx context.Context, limit int) ([]store.AuditRecord, error) {
	return s.store.ListAudit(ctx, limit)
}
