package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

const defaultQueryTimeout = 10 * time.Second

// BaseRepository is embedded by the Postgres repositories. Every statement
// runs under queryTimeout on top of the caller's deadline.
type BaseRepository struct {
	db           *sqlx.DB
	queryTimeout time.Duration
}

func NewBaseRepository(db *sqlx.DB) BaseRepository {
	return BaseRepository{db: db, queryTimeout: defaultQueryTimeout}
}

func (r BaseRepository) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.queryTimeout)
}

// inTx runs fn in one transaction, rolling back on error or panic.
func (r BaseRepository) inTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	ctx, cancel := r.bounded(ctx)
	defer cancel()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
