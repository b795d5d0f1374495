package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/jwalitptl/training-api/internal/model"
	"github.com/jwalitptl/training-api/internal/repository"
)

type statsRepository struct {
	s *Store
}

func NewStatsRepository(s *Store) repository.StatsRepository {
	return &statsRepository{s: s}
}

func criteriaFilter(q repository.Criteria) bson.M {
	filter := bson.M{}
	for k, v := range q.Match {
		filter[k] = v
	}
	if q.DateField != "" {
		bounds := dateFilter(q.Range)
		if !q.Since.IsZero() {
			bounds["$gte"] = q.Since
		}
		if len(bounds) > 0 {
			filter[q.DateField] = bounds
		}
	}
	return filter
}

func (r *statsRepository) Count(ctx context.Context, collection string, q repository.Criteria) (int64, error) {
	var n int64
	err := r.s.exec(ctx, collection, "count", func(ctx context.Context) (err error) {
		n, err = r.s.collection(collection).CountDocuments(ctx, criteriaFilter(q))
		return err
	})
	return n, err
}

func (r *statsRepository) GroupCount(ctx context.Context, collection, field string, q repository.Criteria) (map[string]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: criteriaFilter(q)}},
		{{Key: "$group", Value: bson.M{"_id": "$" + field, "count": bson.M{"$sum": 1}}}},
	}
	var rows []struct {
		ID    interface{} `bson:"_id"`
		Count int64       `bson:"count"`
	}
	err := r.s.exec(ctx, collection, "group_count", func(ctx context.Context) error {
		cursor, err := r.s.collection(collection).Aggregate(ctx, pipeline)
		if err != nil {
			return err
		}
		return cursor.All(ctx, &rows)
	})
	if err != nil {
		return nil, err
	}

	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		key := "unknown"
		if row.ID != nil {
			key = fmt.Sprint(row.ID)
		}
		out[key] += row.Count
	}
	return out, nil
}

func (r *statsRepository) Sum(ctx context.Context, collection, field string, q repository.Criteria) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: criteriaFilter(q)}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$" + field}}}},
	}
	var rows []struct {
		Total float64 `bson:"total"`
	}
	err := r.s.exec(ctx, collection, "sum", func(ctx context.Context) error {
		cursor, err := r.s.collection(collection).Aggregate(ctx, pipeline)
		if err != nil {
			return err
		}
		return cursor.All(ctx, &rows)
	})
	if err != nil || len(rows) == 0 {
		return 0, err
	}
	return rows[0].Total, nil
}

// TopTargets joins enrollments onto collection, so only ids that live in
// that collection are counted.
func (r *statsRepository) TopTargets(ctx context.Context, collection string, limit int, rng model.DateRange) ([]model.TargetCount, error) {
	match := bson.M{}
	if bounds := dateFilter(rng); len(bounds) > 0 {
		match["created_at"] = bounds
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id":         "$event_id",
			"enrollments": bson.M{"$sum": 1},
			"completed": bson.M{"$sum": bson.M{
				"$cond": bson.A{bson.M{"$eq": bson.A{"$status", model.EnrollmentStatusCompleted}}, 1, 0},
			}},
		}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         collection,
			"localField":   "_id",
			"foreignField": "_id",
			"as":           "target",
		}}},
		{{Key: "$unwind", Value: "$target"}},
		{{Key: "$sort", Value: bson.D{{Key: "enrollments", Value: -1}}}},
		{{Key: "$limit", Value: limit}},
	}

	var rows []struct {
		ID          bson.ObjectID `bson:"_id"`
		Enrollments int64         `bson:"enrollments"`
		Completed   int64         `bson:"completed"`
		Target      struct {
			Title string `bson:"title"`
		} `bson:"target"`
	}
	err := r.s.exec(ctx, repository.CollEnrollments, "top_targets", func(ctx context.Context) error {
		cursor, err := r.s.collection(repository.CollEnrollments).Aggregate(ctx, pipeline)
		if err != nil {
			return err
		}
		return cursor.All(ctx, &rows)
	})
	if err != nil {
		return nil, err
	}

	out := make([]model.TargetCount, 0, len(rows))
	for _, row := range rows {
		out = append(out, model.TargetCount{
			ID:          row.ID.Hex(),
			Title:       row.Target.Title,
			Enrollments: row.Enrollments,
			Completed:   row.Completed,
		})
	}
	return out, nil
}
