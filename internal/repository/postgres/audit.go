package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/training-api/internal/model"
	"github.com/jwalitptl/training-api/internal/repository"
)

const auditColumns = `id, actor_id, actor_role, action, entity_type, entity_id,
    metadata, ip_address, user_agent, status_code, created_at`

type auditRepository struct {
	BaseRepository
}

func NewAuditRepository(base BaseRepository) repository.AuditRepository {
	return &auditRepository{base}
}

func (r *auditRepository) Create(ctx context.Context, log *model.AuditLog) error {
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	if len(log.Metadata) == 0 {
		log.Metadata = json.RawMessage("{}")
	}

	query := `
        INSERT INTO audit_logs (
            id, actor_id, actor_role, action, entity_type, entity_id,
            metadata, ip_address, user_agent, status_code, created_at
        ) VALUES (
            :id, :actor_id, :actor_role, :action, :entity_type, :entity_id,
            :metadata, :ip_address, :user_agent, :status_code, :created_at
        )
    `

	ctx, cancel := r.bounded(ctx)
	defer cancel()

	if _, err := r.db.NamedExecContext(ctx, query, log); err != nil {
		return fmt.Errorf("failed to insert audit log: %w", err)
	}
	return nil
}

func (r *auditRepository) List(ctx context.Context, filters *model.AuditFilters) ([]*model.AuditLog, int64, error) {
	var (
		conditions []string
		args       []interface{}
	)

	if filters.ActorID != "" {
		args = append(args, filters.ActorID)
		conditions = append(conditions, fmt.Sprintf("actor_id = $%d", len(args)))
	}
	if filters.EntityType != "" {
		args = append(args, filters.EntityType)
		conditions = append(conditions, fmt.Sprintf("entity_type = $%d", len(args)))
	}
	if filters.Action != "" {
		args = append(args, filters.Action)
		conditions = append(conditions, fmt.Sprintf("action = $%d", len(args)))
	}

	ctx, cancel := r.bounded(ctx)
	defer cancel()

	baseQuery := "FROM audit_logs"
	if len(conditions) > 0 {
		baseQuery += " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+baseQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to get total count: %w", err)
	}

	page := filters.Pagination.Normalize()
	args = append(args, page.PageSize, page.Skip())
	query := "SELECT " + auditColumns + " " + baseQuery +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	logs := []*model.AuditLog{}
	if err := r.db.SelectContext(ctx, &logs, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list audit logs: %w", err)
	}

	return logs, total, nil
}

func (r *auditRepository) Cleanup(ctx context.Context, before time.Time) (int64, error) {
	query := `
        DELETE FROM audit_logs
        WHERE created_at < $1
    `

	// A timed-out cleanup rolls back as a whole.
	var deleted int64
	err := r.inTx(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, query, before)
		if err != nil {
			return err
		}
		deleted, err = result.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup audit logs: %w", err)
	}
	return deleted, nil
}
