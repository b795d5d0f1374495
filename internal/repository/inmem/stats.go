package inmem

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/jwalitptl/training-api/internal/model"
	"github.com/jwalitptl/training-api/internal/repository"
)

// statsRepository evaluates Criteria against the bson encoding of each
// record, so field names match the document store's.
type statsRepository struct{ db *DB }

func NewStatsRepository(db *DB) repository.StatsRepository {
	return &statsRepository{db: db}
}

func toDocs[T any](in []*T) ([]bson.M, error) {
	out := make([]bson.M, 0, len(in))
	for _, v := range in {
		raw, err := bson.Marshal(v)
		if err != nil {
			return nil, err
		}
		var doc bson.M
		if err := bson.Unmarshal(raw, &doc); err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, nil
}

func (r *statsRepository) docs(collection string) ([]bson.M, error) {
	if err := r.db.fail(collection + ".stats"); err != nil {
		return nil, err
	}
	switch collection {
	case repository.CollUsers:
		return toDocs(r.db.users)
	case repository.CollCorporateProfiles:
		return toDocs(r.db.corporates)
	case repository.CollCorporateStaff:
		return toDocs(r.db.staff)
	case repository.CollCourses:
		return toDocs(r.db.courses)
	case repository.CollEvents:
		return toDocs(r.db.events)
	case repository.CollEnrollments:
		return toDocs(r.db.enrollments)
	case repository.CollMemberships:
		return toDocs(r.db.memberships)
	case repository.CollPayments:
		return toDocs(r.db.payments)
	}
	return nil, fmt.Errorf("inmem: no stats for collection %q", collection)
}

func matches(doc bson.M, q repository.Criteria) bool {
	for k, v := range q.Match {
		if fmt.Sprint(doc[k]) != fmt.Sprint(v) {
			return false
		}
	}
	if q.DateField == "" {
		return true
	}
	start := q.Range.Start
	if q.Since.After(start) {
		start = q.Since
	}
	if start.IsZero() && q.Range.End.IsZero() {
		return true
	}
	dt, ok := doc[q.DateField].(bson.DateTime)
	if !ok {
		return false
	}
	return inRange(dt.Time(), start, q.Range.End)
}

func inRange(t, start, end time.Time) bool {
	if !start.IsZero() && t.Before(start) {
		return false
	}
	if !end.IsZero() && t.After(end) {
		return false
	}
	return true
}

func (r *statsRepository) filtered(collection string, q repository.Criteria) ([]bson.M, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	docs, err := r.docs(collection)
	if err != nil {
		return nil, err
	}
	out := docs[:0]
	for _, d := range docs {
		if matches(d, q) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *statsRepository) Count(_ context.Context, collection string, q repository.Criteria) (int64, error) {
	docs, err := r.filtered(collection, q)
	return int64(len(docs)), err
}

func (r *statsRepository) GroupCount(_ context.Context, collection, field string, q repository.Criteria) (map[string]int64, error) {
	docs, err := r.filtered(collection, q)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64)
	for _, d := range docs {
		key := "unknown"
		if v, ok := d[field]; ok && v != nil {
			key = fmt.Sprint(v)
		}
		out[key]++
	}
	return out, nil
}

func (r *statsRepository) Sum(_ context.Context, collection, field string, q repository.Criteria) (float64, error) {
	docs, err := r.filtered(collection, q)
	if err != nil {
		return 0, err
	}
	var total float64
	for _, d := range docs {
		switch v := d[field].(type) {
		case float64:
			total += v
		case int32:
			total += float64(v)
		case int64:
			total += float64(v)
		}
	}
	return total, nil
}

func (r *statsRepository) TopTargets(_ context.Context, collection string, limit int, rng model.DateRange) ([]model.TargetCount, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	titles := make(map[bson.ObjectID]string)
	switch collection {
	case repository.CollCourses:
		for _, c := range r.db.courses {
			titles[c.ID] = c.Title
		}
	case repository.CollEvents:
		for _, e := range r.db.events {
			titles[e.ID] = e.Title
		}
	default:
		return nil, fmt.Errorf("inmem: cannot rank targets in %q", collection)
	}

	counts := make(map[bson.ObjectID]*model.TargetCount)
	for _, e := range r.db.enrollments {
		title, ok := titles[e.EventID]
		if !ok || !inRange(e.CreatedAt, rng.Start, rng.End) {
			continue
		}
		tc, ok := counts[e.EventID]
		if !ok {
			tc = &model.TargetCount{ID: e.EventID.Hex(), Title: title}
			counts[e.EventID] = tc
		}
		tc.Enrollments++
		if e.Status == model.EnrollmentStatusCompleted {
			tc.Completed++
		}
	}

	out := make([]model.TargetCount, 0, len(counts))
	for _, tc := range counts {
		out = append(out, *tc)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Enrollments != out[j].Enrollments {
			return out[i].Enrollments > out[j].Enrollments
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
