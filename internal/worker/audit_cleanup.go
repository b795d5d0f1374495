package worker

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Cleaner deletes audit entries older than retention.
type Cleaner interface {
	Cleanup(ctx context.Context, retention time.Duration) (int64, error)
}

type AuditCleanupWorker struct {
	cleaner         Cleaner
	retention       time.Duration
	cleanupInterval time.Duration
	logger          *zap.Logger
}

func NewAuditCleanupWorker(cleaner Cleaner, retentionDays int, cleanupInterval time.Duration, logger *zap.Logger) *AuditCleanupWorker {
	return &AuditCleanupWorker{
		cleaner:         cleaner,
		retention:       time.Duration(retentionDays) * 24 * time.Hour,
		cleanupInterval: cleanupInterval,
		logger:          logger,
	}
}

// Start cleans once immediately and then on every interval until ctx ends.
func (w *AuditCleanupWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cleanupInterval)
	defer ticker.Stop()

	for {
		if err := w.RunOnce(ctx); err != nil {
			w.logger.Error("audit cleanup failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (w *AuditCleanupWorker) RunOnce(ctx context.Context) error {
	rows, err := w.cleaner.Cleanup(ctx, w.retention)
	if err != nil {
		return fmt.Errorf("failed to cleanup audit logs: %w", err)
	}

	w.logger.Info("audit logs cleaned up",
		zap.Int64("deleted", rows),
		zap.Duration("retention", w.retention),
	)
	return nil
}
