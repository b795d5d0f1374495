package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/training-api/internal/model"
	"github.com/jwalitptl/training-api/internal/repository"
)

type Service struct {
	repo repository.AuditRepository
	now  func() time.Time
}

func NewService(repo repository.AuditRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Entry describes one audited call.
type Entry struct {
	ActorID    string
	ActorRole  string
	Action     string
	EntityType string
	EntityID   string
	IPAddress  string
	UserAgent  string
	StatusCode int
	Metadata   interface{}
}

// Log creates an audit log entry
func (s *Service) Log(ctx context.Context, e Entry) error {
	metadata := json.RawMessage(`{}`)
	if e.Metadata != nil {
		raw, err := json.Marshal(e.Metadata)
		if err != nil {
			return fmt.Errorf("failed to encode audit metadata: %w", err)
		}
		metadata = raw
	}

	return s.repo.Create(ctx, &model.AuditLog{
		ID:         uuid.New(),
		ActorID:    e.ActorID,
		ActorRole:  e.ActorRole,
		Action:     e.Action,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		Metadata:   metadata,
		IPAddress:  e.IPAddress,
		UserAgent:  e.UserAgent,
		StatusCode: e.StatusCode,
		CreatedAt:  s.now().UTC(),
	})
}

func (s *Service) List(ctx context.Context, filters *model.AuditFilters) ([]*model.AuditLog, int64, error) {
	filters.Pagination = filters.Pagination.Normalize()
	logs, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return logs, total, nil
}

// Cleanup deletes entries older than retention.
func (s *Service) Cleanup(ctx context.Context, retention time.Duration) (int64, error) {
	return s.repo.Cleanup(ctx, s.now().Add(-retention))
}
