package inmem

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/jwalitptl/training-api/internal/model"
	"github.com/jwalitptl/training-api/internal/repository"
)

type courseRepository struct{ db *DB }

func NewCourseRepository(db *DB) repository.CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) Create(_ context.Context, c *model.Course) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if c.ID.IsZero() {
		c.ID = bson.NewObjectID()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	c.UpdatedAt = c.CreatedAt
	r.db.courses = append(r.db.courses, clone(c))
	return nil
}

func (r *courseRepository) index(id bson.ObjectID) int {
	for i, c := range r.db.courses {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (r *courseRepository) Get(_ context.Context, id bson.ObjectID) (*model.Course, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	if i := r.index(id); i >= 0 {
		return clone(r.db.courses[i]), nil
	}
	return nil, repository.ErrNotFound
}

func (r *courseRepository) Update(_ context.Context, c *model.Course) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	i := r.index(c.ID)
	if i < 0 {
		return repository.ErrNotFound
	}
	c.UpdatedAt = time.Now().UTC()
	r.db.courses[i] = clone(c)
	return nil
}

func (r *courseRepository) Delete(_ context.Context, id bson.ObjectID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	i := r.index(id)
	if i < 0 {
		return repository.ErrNotFound
	}
	r.db.courses = append(r.db.courses[:i], r.db.courses[i+1:]...)
	return nil
}

func (r *courseRepository) List(_ context.Context, f *model.CatalogFilters) ([]*model.Course, int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	all := cloneAll(reversed(r.db.courses), func(c *model.Course) bool {
		return catalogMatch(f, c.Status, c.Category, c.Title)
	})
	return page(all, f.Pagination), int64(len(all)), nil
}

func (r *courseRepository) FindByIDs(_ context.Context, ids []bson.ObjectID) ([]*model.Course, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	if err := r.db.fail("courses.find_by_ids"); err != nil {
		return nil, err
	}
	set := idSet(ids)
	return cloneAll(r.db.courses, func(c *model.Course) bool { return set[c.ID] }), nil
}

func (r *courseRepository) CountByCreator(_ context.Context, userID bson.ObjectID) (int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	var n int64
	for _, c := range r.db.courses {
		if c.CreatedBy == userID {
			n++
		}
	}
	return n, nil
}

type eventRepository struct{ db *DB }

func NewEventRepository(db *DB) repository.EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Create(_ context.Context, e *model.Event) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if e.ID.IsZero() {
		e.ID = bson.NewObjectID()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	e.UpdatedAt = e.CreatedAt
	r.db.events = append(r.db.events, clone(e))
	return nil
}

func (r *eventRepository) index(id bson.ObjectID) int {
	for i, e := range r.db.events {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func (r *eventRepository) Get(_ context.Context, id bson.ObjectID) (*model.Event, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	if i := r.index(id); i >= 0 {
		return clone(r.db.events[i]), nil
	}
	return nil, repository.ErrNotFound
}

func (r *eventRepository) Update(_ context.Context, e *model.Event) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	i := r.index(e.ID)
	if i < 0 {
		return repository.ErrNotFound
	}
	e.UpdatedAt = time.Now().UTC()
	r.db.events[i] = clone(e)
	return nil
}

func (r *eventRepository) Delete(_ context.Context, id bson.ObjectID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	i := r.index(id)
	if i < 0 {
		return repository.ErrNotFound
	}
	r.db.events = append(r.db.events[:i], r.db.events[i+1:]...)
	return nil
}

func (r *eventRepository) List(_ context.Context, f *model.CatalogFilters) ([]*model.Event, int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	all := cloneAll(reversed(r.db.events), func(e *model.Event) bool {
		return catalogMatch(f, e.Status, e.Category, e.Title)
	})
	return page(all, f.Pagination), int64(len(all)), nil
}

func (r *eventRepository) FindByIDs(_ context.Context, ids []bson.ObjectID) ([]*model.Event, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	if err := r.db.fail("events.find_by_ids"); err != nil {
		return nil, err
	}
	set := idSet(ids)
	return cloneAll(r.db.events, func(e *model.Event) bool { return set[e.ID] }), nil
}

func (r *eventRepository) CountByCreator(_ context.Context, userID bson.ObjectID) (int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	var n int64
	for _, e := range r.db.events {
		if e.CreatedBy == userID {
			n++
		}
	}
	return n, nil
}

func catalogMatch(f *model.CatalogFilters, status model.CatalogStatus, category, title string) bool {
	if f.Status != "" && status != f.Status {
		return false
	}
	if f.Category != "" && category != f.Category {
		return false
	}
	if q := strings.TrimSpace(f.Search); q != "" && !strings.Contains(strings.ToLower(title), strings.ToLower(q)) {
		return false
	}
	return true
}
