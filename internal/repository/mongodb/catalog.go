package mongodb

import (
	"context"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/jwalitptl/training-api/internal/model"
	"github.com/jwalitptl/training-api/internal/repository"
)

// catalog holds the reads courses and events share; only the document type
// differs.
type catalog[T any] struct {
	s    *Store
	name string
	coll *mongo.Collection
}

func newCatalog[T any](s *Store, name string) catalog[T] {
	return catalog[T]{s: s, name: name, coll: s.collection(name)}
}

func (c catalog[T]) insert(ctx context.Context, doc interface{}) error {
	return c.s.exec(ctx, c.name, "create", func(ctx context.Context) error {
		_, err := c.coll.InsertOne(ctx, doc)
		return err
	})
}

func (c catalog[T]) replace(ctx context.Context, id bson.ObjectID, fields bson.M) error {
	return c.s.exec(ctx, c.name, "update", func(ctx context.Context) error {
		return requireMatch(c.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields}))
	})
}

func (c catalog[T]) Get(ctx context.Context, id bson.ObjectID) (*T, error) {
	var doc *T
	err := c.s.exec(ctx, c.name, "get", func(ctx context.Context) (err error) {
		doc, err = findOne[T](ctx, c.coll, bson.M{"_id": id})
		return err
	})
	return doc, err
}

func (c catalog[T]) Delete(ctx context.Context, id bson.ObjectID) error {
	return c.s.exec(ctx, c.name, "delete", func(ctx context.Context) error {
		res, err := c.coll.DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			return err
		}
		if res.DeletedCount == 0 {
			return repository.ErrNotFound
		}
		return nil
	})
}

func (c catalog[T]) List(ctx context.Context, filters *model.CatalogFilters) ([]*T, int64, error) {
	filter := bson.M{}
	if filters.Status != "" {
		filter["status"] = filters.Status
	}
	if filters.Category != "" {
		filter["category"] = filters.Category
	}
	if q := strings.TrimSpace(filters.Search); q != "" {
		filter["title"] = bson.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}
	}

	var (
		docs  []*T
		total int64
	)
	err := c.s.exec(ctx, c.name, "list", func(ctx context.Context) (err error) {
		total, err = c.coll.CountDocuments(ctx, filter)
		if err != nil {
			return err
		}
		opts := paging(filters.Pagination).SetSort(bson.D{{Key: "created_at", Value: -1}})
		docs, err = findAll[T](ctx, c.coll, filter, opts)
		return err
	})
	return docs, total, err
}

// FindByIDs is the membership probe used to classify enrollments.
func (c catalog[T]) FindByIDs(ctx context.Context, ids []bson.ObjectID) ([]*T, error) {
	if len(ids) == 0 {
		return []*T{}, nil
	}
	var docs []*T
	err := c.s.exec(ctx, c.name, "find_by_ids", func(ctx context.Context) (err error) {
		docs, err = findAll[T](ctx, c.coll, bson.M{"_id": bson.M{"$in": ids}})
		return err
	})
	return docs, err
}

func (c catalog[T]) CountByCreator(ctx context.Context, userID bson.ObjectID) (int64, error) {
	var n int64
	err := c.s.exec(ctx, c.name, "count_by_creator", func(ctx context.Context) (err error) {
		n, err = c.coll.CountDocuments(ctx, bson.M{"created_by": userID})
		return err
	})
	return n, err
}

type courseRepository struct {
	catalog[model.Course]
}

func NewCourseRepository(s *Store) repository.CourseRepository {
	return &courseRepository{newCatalog[model.Course](s, repository.CollCourses)}
}

func (r *courseRepository) Create(ctx context.Context, course *model.Course) error {
	if course.ID.IsZero() {
		course.ID = bson.NewObjectID()
	}
	now := time.Now().UTC()
	course.CreatedAt = now
	course.UpdatedAt = now
	return r.insert(ctx, course)
}

func (r *courseRepository) Update(ctx context.Context, course *model.Course) error {
	course.UpdatedAt = time.Now().UTC()
	return r.replace(ctx, course.ID, bson.M{
		"title":       course.Title,
		"description": course.Description,
		"status":      course.Status,
		"price":       course.Price,
		"access":      course.Access,
		"category":    course.Category,
		"duration":    course.Duration,
		"updated_at":  course.UpdatedAt,
	})
}

type eventRepository struct {
	catalog[model.Event]
}

func NewEventRepository(s *Store) repository.EventRepository {
	return &eventRepository{newCatalog[model.Event](s, repository.CollEvents)}
}

func (r *eventRepository) Create(ctx context.Context, event *model.Event) error {
	if event.ID.IsZero() {
		event.ID = bson.NewObjectID()
	}
	now := time.Now().UTC()
	event.CreatedAt = now
	event.UpdatedAt = now
	return r.insert(ctx, event)
}

func (r *eventRepository) Update(ctx context.Context, event *model.Event) error {
	event.UpdatedAt = time.Now().UTC()
	return r.replace(ctx, event.ID, bson.M{
		"title":       event.Title,
		"description": event.Description,
		"status":      event.Status,
		"price":       event.Price,
		"access":      event.Access,
		"category":    event.Category,
		"location":    event.Location,
		"start_date":  event.StartDate,
		"end_date":    event.EndDate,
		"updated_at":  event.UpdatedAt,
	})
}
