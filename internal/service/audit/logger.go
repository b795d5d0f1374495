package audit

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// AuditLogger writes entries off the request path.
type AuditLogger struct {
	service *Service
	wg      sync.WaitGroup
}

func NewAuditLogger(service *Service) *AuditLogger {
	return &AuditLogger{
		service: service,
	}
}

// Log writes e in the background. The write outlives the request context.
func (l *AuditLogger) Log(ctx context.Context, e Entry) {
	ctx = context.WithoutCancel(ctx)
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		if err := l.service.Log(ctx, e); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).
				Str("action", e.Action).
				Str("entity_type", e.EntityType).
				Msg("failed to write audit log")
		}
	}()
}

func (l *AuditLogger) LogSync(ctx context.Context, e Entry) error {
	return l.service.Log(ctx, e)
}

// Wait blocks until every pending write has finished.
func (l *AuditLogger) Wait() {
	l.wg.Wait()
}
