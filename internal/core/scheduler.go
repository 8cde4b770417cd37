package core

// scheduler.go runs background maintenance. Currently it enforces audit log
// retention: entries older than the retention window are deleted on a fixed
// interval. Failures are logged and the scheduler keeps running.

import (
	"context"
	"log/slog"
	"time"

	"github.com/JonMunkholm/virex/internal/observability"
)

// RetentionConfig holds configuration for the audit retention scheduler.
type RetentionConfig struct {
	RetentionDays int           // Days to keep audit entries (default: 365)
	CheckInterval time.Duration // How often to run (default: 24h)
}

func (c RetentionConfig) withDefaults() RetentionConfig {
	if c.RetentionDays <= 0 {
		c.RetentionDays = 365
	}
	if c.CheckInterval <= 0 {
		c.CheckInterval = 24 * time.Hour
	}
	return c
}

// StartRetentionScheduler periodically purges old audit entries.
// It runs immediately on start, then every CheckInterval, until ctx is done.
func (s *Service) StartRetentionScheduler(ctx context.Context, cfg RetentionConfig) {
	cfg = cfg.withDefaults()
	slog.Info("audit retention scheduler started",
		"retention_days", cfg.RetentionDays,
		"check_interval", cfg.CheckInterval.String(),
	)

	s.runRetentionJob(ctx, cfg)

	ticker := time.NewTicker(cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("audit retention scheduler stopped")
			return
		case <-ticker.C:
			s.runRetentionJob(ctx, cfg)
		}
	}
}

// runRetentionJob performs one purge cycle and returns the rows deleted.
func (s *Service) runRetentionJob(ctx context.Context, cfg RetentionConfig) int64 {
	start := time.Now()
	cutoff := s.now().AddDate(0, 0, -cfg.RetentionDays)

	purged, err := s.store.PurgeAuditBefore(ctx, cutoff)
	if err != nil {
		slog.Error("audit purge failed", "error", err)
		return 0
	}

	observability.AuditPurgedTotal.Add(float64(purged))
	slog.Info("audit purge completed",
		"entries_purged", purged,
		"cutoff", cutoff.Format(time.RFC3339),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if purged > 0 {
		s.LogAudit(ctx, AuditLogParams{
			Action:       ActionAuditPurge,
			Target:       "audit_log",
			RowsAffected: int(purged),
			Details:      map[string]any{"cutoff": cutoff.Format(time.RFC3339)},
		})
	}
	return purged
}
