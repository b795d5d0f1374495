package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/jwalitptl/training-api/internal/config"
	"github.com/jwalitptl/training-api/internal/model"
	"github.com/jwalitptl/training-api/internal/repository"
	"github.com/jwalitptl/training-api/pkg/metrics"
)

// Store owns the client and applies the per-operation timeout and metrics
// shared by every repository in this package.
type Store struct {
	client  *mongo.Client
	db      *mongo.Database
	timeout time.Duration
	metrics *metrics.Metrics
}

// Connect opens the client and verifies the primary is reachable.
func Connect(ctx context.Context, cfg config.MongoConfig, m *metrics.Metrics) (*Store, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1)).
		SetConnectTimeout(cfg.ConnectTimeout)

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	return &Store{
		client:  client,
		db:      client.Database(cfg.Database),
		timeout: cfg.QueryTimeout,
		metrics: m,
	}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) collection(name string) *mongo.Collection {
	return s.db.Collection(name)
}

// exec runs fn under the store's query timeout, records it and translates
// driver errors into repository errors.
func (s *Store) exec(ctx context.Context, coll, op string, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	err := translate(fn(ctx))
	if errors.Is(err, repository.ErrNotFound) {
		s.metrics.ObserveStore(coll, op, start, nil)
	} else {
		s.metrics.ObserveStore(coll, op, start, err)
	}
	if err != nil && !errors.Is(err, repository.ErrNotFound) && !errors.Is(err, repository.ErrDuplicate) {
		return fmt.Errorf("%s.%s: %w", coll, op, err)
	}
	return err
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return repository.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", repository.ErrDuplicate, err)
	}
	return err
}

// EnsureIndexes creates the indexes the queries in this package rely on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		repository.CollUsers: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "role", Value: 1}}},
		},
		repository.CollIndividualProfiles: {
			{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		repository.CollCorporateProfiles: {
			{Keys: bson.D{{Key: "owner_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		repository.CollCorporateStaff: {
			{Keys: bson.D{{Key: "corporate_id", Value: 1}}},
			{Keys: bson.D{{Key: "user_id", Value: 1}}},
		},
		repository.CollCourses: {
			{Keys: bson.D{{Key: "created_by", Value: 1}}},
		},
		repository.CollEvents: {
			{Keys: bson.D{{Key: "created_by", Value: 1}}},
		},
		repository.CollEnrollments: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "event_id", Value: 1}}},
		},
		repository.CollMemberships: {
			{Keys: bson.D{{Key: "subject_type", Value: 1}, {Key: "subject_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		repository.CollMessages: {
			{Keys: bson.D{{Key: "sender_id", Value: 1}, {Key: "recipient_id", Value: 1}, {Key: "created_at", Value: 1}}},
			{Keys: bson.D{{Key: "recipient_id", Value: 1}, {Key: "read_at", Value: 1}}},
		},
		repository.CollNotifications: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "status", Value: 1}}},
		},
	}

	for name, models := range indexes {
		err := s.exec(ctx, name, "ensure_indexes", func(ctx context.Context) error {
			_, err := s.collection(name).Indexes().CreateMany(ctx, models)
			return err
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter interface{}, opts ...options.Lister[options.FindOptions]) ([]*T, error) {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	out := make([]*T, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, filter interface{}, opts ...options.Lister[options.FindOneOptions]) (*T, error) {
	var out T
	if err := coll.FindOne(ctx, filter, opts...).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// requireMatch turns an update that matched nothing into ErrNotFound.
func requireMatch(res *mongo.UpdateResult, err error) error {
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func paging(p model.Pagination) *options.FindOptionsBuilder {
	p = p.Normalize()
	return options.Find().SetSkip(p.Skip()).SetLimit(int64(p.PageSize))
}

// dateFilter bounds field by r, leaving open ends unbounded.
func dateFilter(r model.DateRange) bson.M {
	f := bson.M{}
	if !r.Start.IsZero() {
		f["$gte"] = r.Start
	}
	if !r.End.IsZero() {
		f["$lte"] = r.End
	}
	return f
}
