package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/virex/internal/catalog"
)

// AuditRecord is one row of audit_log.
type AuditRecord struct {
	ID           uuid.UUID      `json:"id"`
	Action       string         `json:"action"`
	Severity     string         `json:"severity"`
	Target       string         `json:"target"`
	FileName     string         `json:"fileName,omitempty"`
	IPAddress    string         `json:"ipAddress,omitempty"`
	UserAgent    string         `json:"userAgent,omitempty"`
	RowsAffected int            `json:"rowsAffected"`
	Details      map[string]any `json:"details,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
}

// InsertAudit writes an audit entry. A zero ID is replaced with a new UUID.
func (q *Queries) InsertAudit(ctx context.Context, rec AuditRecord) (AuditRecord, error) {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}

	var details []byte
	if rec.Details != nil {
		var err error
		if details, err = json.Marshal(rec.Details); err != nil {
			details = nil
		}
	}

	err := q.db.QueryRow(ctx, `
		INSERT INTO audit_log (id, action, severity, target, file_name, ip_address, user_agent, rows_affected, details)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at`,
		rec.ID, rec.Action, rec.Severity, rec.Target,
		catalog.ToPgText(rec.FileName), catalog.ToPgText(rec.IPAddress), catalog.ToPgText(rec.UserAgent),
		rec.RowsAffected, details,
	).Scan(&rec.CreatedAt)
	if err != nil {
		return AuditRecord{}, err
	}
	return rec, nil
}

// ListAudit returns the most recent audit entries.
func (q *Queries) ListAudit(ctx context.Context, limit int) ([]AuditRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := q.db.Query(ctx, `
		SELECT id, action, severity, target, file_name, ip_address, user_agent, rows_affected, details, created_at
		FROM audit_log ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit log: %w", err)
	}
	defer rows.Close()

	records := []AuditRecord{}
	for rows.Next() {
		var (
			rec                 AuditRecord
			fileName, ip, agent pgtype.Text
			details             []byte
		)
		if err := rows.Scan(&rec.ID, &rec.Action, &rec.Severity, &rec.Target, &fileName, &ip, &agent, &rec.RowsAffected, &details, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		rec.FileName, rec.IPAddress, rec.UserAgent = fileName.String, ip.String, agent.String
		if len(details) > 0 {
			_ = json.Unmarshal(details, &rec.Details)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// PurgeAuditBefore deletes audit entries created before cutoff.
func (q *Queries) PurgeAuditBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := q.db.Exec(ctx, `DELETE FROM audit_log WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
