// Package inmem is a mutex-guarded, slice-backed implementation of the
// repository interfaces. Records keep insertion order, which stands in for
// created_at ordering.
package inmem

import (
	"sync"

	"github.com/jwalitptl/training-api/internal/model"
)

type DB struct {
	mu sync.RWMutex

	users         []*model.User
	individuals   []*model.IndividualProfile
	corporates    []*model.CorporateProfile
	staff         []*model.CorporateStaff
	courses       []*model.Course
	events        []*model.Event
	enrollments   []*model.Enrollment
	memberships   []*model.Membership
	plans         []*model.Plan
	payments      []*model.Payment
	messages      []*model.Message
	announcements []*model.Announcement
	notifications []*model.Notification
	content       map[string]*model.SiteContent
	audit         []*model.AuditLog

	failures map[string]error
}

func New() *DB {
	return &DB{
		content:  make(map[string]*model.SiteContent),
		failures: make(map[string]error),
	}
}

// FailOn makes every later call of op ("collection.operation") return err.
func (db *DB) FailOn(op string, err error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.failures[op] = err
}

func (db *DB) fail(op string) error {
	return db.failures[op]
}

func clone[T any](v *T) *T {
	c := *v
	return &c
}

func cloneAll[T any](in []*T, keep func(*T) bool) []*T {
	out := make([]*T, 0, len(in))
	for _, v := range in {
		if keep == nil || keep(v) {
			out = append(out, clone(v))
		}
	}
	return out
}

func page[T any](in []*T, p model.Pagination) []*T {
	p = p.Normalize()
	start := int(p.Skip())
	if start >= len(in) {
		return []*T{}
	}
	end := start + p.PageSize
	if end > len(in) {
		end = len(in)
	}
	return in[start:end]
}

// reversed returns a newest-first copy of a slice kept in insertion order.
func reversed[T any](in []*T) []*T {
	out := make([]*T, len(in))
	for i, v := range in {
		out[len(in)-1-i] = v
	}
	return out
}
