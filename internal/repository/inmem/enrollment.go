package inmem

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/jwalitptl/training-api/internal/model"
	"github.com/jwalitptl/training-api/internal/repository"
)

type enrollmentRepository struct{ db *DB }

func NewEnrollmentRepository(db *DB) repository.EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (r *enrollmentRepository) Create(_ context.Context, e *model.Enrollment) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if e.ID.IsZero() {
		e.ID = bson.NewObjectID()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	e.UpdatedAt = e.CreatedAt
	r.db.enrollments = append(r.db.enrollments, clone(e))
	return nil
}

func (r *enrollmentRepository) Get(_ context.Context, id bson.ObjectID) (*model.Enrollment, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	for _, e := range r.db.enrollments {
		if e.ID == id {
			return clone(e), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *enrollmentRepository) Update(_ context.Context, e *model.Enrollment) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for i, existing := range r.db.enrollments {
		if existing.ID == e.ID {
			e.UpdatedAt = time.Now().UTC()
			r.db.enrollments[i] = clone(e)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *enrollmentRepository) ListByUser(_ context.Context, userID bson.ObjectID) ([]*model.Enrollment, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	if err := r.db.fail("enrollments.list_by_user"); err != nil {
		return nil, err
	}
	return cloneAll(r.db.enrollments, func(e *model.Enrollment) bool { return e.UserID == userID }), nil
}

func (r *enrollmentRepository) FindActive(_ context.Context, userID, targetID bson.ObjectID) (*model.Enrollment, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	for _, e := range r.db.enrollments {
		if e.UserID == userID && e.EventID == targetID && e.Status != model.EnrollmentStatusCancelled {
			return clone(e), nil
		}
	}
	return nil, repository.ErrNotFound
}
