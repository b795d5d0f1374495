package inmem

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/jwalitptl/training-api/internal/model"
	"github.com/jwalitptl/training-api/internal/repository"
)

type membershipRepository struct{ db *DB }

func NewMembershipRepository(db *DB) repository.MembershipRepository {
	return &membershipRepository{db: db}
}

// AddMembership seeds a membership record as-is.
func (db *DB) AddMembership(m *model.Membership) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if m.ID.IsZero() {
		m.ID = bson.NewObjectID()
	}
	db.memberships = append(db.memberships, clone(m))
}

// AddPlan seeds a plan.
func (db *DB) AddPlan(p *model.Plan) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = bson.NewObjectID()
	}
	db.plans = append(db.plans, clone(p))
}

// Payments returns every stored payment.
func (db *DB) Payments() []*model.Payment {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return cloneAll(db.payments, nil)
}

// Memberships returns a copy of every membership record, oldest first.
func (db *DB) Memberships() []*model.Membership {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return cloneAll(db.memberships, nil)
}

func (r *membershipRepository) Latest(_ context.Context, subjectType model.SubjectType, subjectID bson.ObjectID) (*model.Membership, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	if err := r.db.fail("memberships.latest"); err != nil {
		return nil, err
	}
	var latest *model.Membership
	for _, m := range r.db.memberships {
		if m.SubjectType != subjectType || m.SubjectID != subjectID {
			continue
		}
		if latest == nil || !m.CreatedAt.Before(latest.CreatedAt) {
			latest = m
		}
	}
	if latest == nil {
		return nil, repository.ErrNotFound
	}
	return clone(latest), nil
}

func (r *membershipRepository) ListPlans(_ context.Context, audience model.SubjectType) ([]*model.Plan, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return cloneAll(r.db.plans, func(p *model.Plan) bool {
		return p.IsActive && (audience == "" || p.Audience == audience)
	}), nil
}

func (r *membershipRepository) GetPlan(_ context.Context, id bson.ObjectID) (*model.Plan, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	for _, p := range r.db.plans {
		if p.ID == id {
			return clone(p), nil
		}
	}
	return nil, repository.ErrNotFound
}

// Purchase applies both writes or neither, like the transactional store.
func (r *membershipRepository) Purchase(_ context.Context, payment *model.Payment, membership *model.Membership) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.fail("memberships.purchase"); err != nil {
		return err
	}

	now := time.Now().UTC()
	if payment.ID.IsZero() {
		payment.ID = bson.NewObjectID()
	}
	payment.CreatedAt = now

	for _, m := range r.db.memberships {
		if m.SubjectType == membership.SubjectType && m.SubjectID == membership.SubjectID &&
			m.Status == model.MembershipActive {
			m.Status = model.MembershipExpired
			m.UpdatedAt = now
		}
	}
	membership.ID = bson.NewObjectID()
	membership.CreatedAt = now
	membership.UpdatedAt = now
	r.db.memberships = append(r.db.memberships, clone(membership))
	r.db.payments = append(r.db.payments, clone(payment))
	return nil
}
