package inmem

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/training-api/internal/model"
	"github.com/jwalitptl/training-api/internal/repository"
)

type auditRepository struct{ db *DB }

func NewAuditRepository(db *DB) repository.AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Create(_ context.Context, log *model.AuditLog) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	r.db.audit = append(r.db.audit, clone(log))
	return nil
}

func (r *auditRepository) List(_ context.Context, f *model.AuditFilters) ([]*model.AuditLog, int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	all := cloneAll(reversed(r.db.audit), func(l *model.AuditLog) bool {
		return (f.ActorID == "" || l.ActorID == f.ActorID) &&
			(f.EntityType == "" || l.EntityType == f.EntityType) &&
			(f.Action == "" || l.Action == f.Action)
	})
	return page(all, f.Pagination), int64(len(all)), nil
}

func (r *auditRepository) Cleanup(_ context.Context, before time.Time) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	kept := r.db.audit[:0]
	var removed int64
	for _, l := range r.db.audit {
		if l.CreatedAt.Before(before) {
			removed++
			continue
		}
		kept = append(kept, l)
	}
	r.db.audit = kept
	return removed, nil
}
