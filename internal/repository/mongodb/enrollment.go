package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/jwalitptl/training-api/internal/model"
	"github.com/jwalitptl/training-api/internal/repository"
)

type enrollmentRepository struct {
	s    *Store
	coll *mongo.Collection
}

func NewEnrollmentRepository(s *Store) repository.EnrollmentRepository {
	return &enrollmentRepository{s: s, coll: s.collection(repository.CollEnrollments)}
}

func (r *enrollmentRepository) Create(ctx context.Context, e *model.Enrollment) error {
	if e.ID.IsZero() {
		e.ID = bson.NewObjectID()
	}
	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now
	return r.s.exec(ctx, repository.CollEnrollments, "create", func(ctx context.Context) error {
		_, err := r.coll.InsertOne(ctx, e)
		return err
	})
}

func (r *enrollmentRepository) Get(ctx context.Context, id bson.ObjectID) (*model.Enrollment, error) {
	var e *model.Enrollment
	err := r.s.exec(ctx, repository.CollEnrollments, "get", func(ctx context.Context) (err error) {
		e, err = findOne[model.Enrollment](ctx, r.coll, bson.M{"_id": id})
		return err
	})
	return e, err
}

func (r *enrollmentRepository) Update(ctx context.Context, e *model.Enrollment) error {
	e.UpdatedAt = time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"status":          e.Status,
		"progress":        e.Progress,
		"completion_date": e.CompletionDate,
		"updated_at":      e.UpdatedAt,
	}}
	return r.s.exec(ctx, repository.CollEnrollments, "update", func(ctx context.Context) error {
		return requireMatch(r.coll.UpdateOne(ctx, bson.M{"_id": e.ID}, update))
	})
}

func (r *enrollmentRepository) ListByUser(ctx context.Context, userID bson.ObjectID) ([]*model.Enrollment, error) {
	var list []*model.Enrollment
	err := r.s.exec(ctx, repository.CollEnrollments, "list_by_user", func(ctx context.Context) (err error) {
		opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
		list, err = findAll[model.Enrollment](ctx, r.coll, bson.M{"user_id": userID}, opts)
		return err
	})
	return list, err
}

func (r *enrollmentRepository) FindActive(ctx context.Context, userID, targetID bson.ObjectID) (*model.Enrollment, error) {
	filter := bson.M{
		"user_id":  userID,
		"event_id": targetID,
		"status":   bson.M{"$ne": model.EnrollmentStatusCancelled},
	}
	var e *model.Enrollment
	err := r.s.exec(ctx, repository.CollEnrollments, "find_active", func(ctx context.Context) (err error) {
		e, err = findOne[model.Enrollment](ctx, r.coll, filter)
		return err
	})
	return e, err
}
