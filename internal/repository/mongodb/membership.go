package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/jwalitptl/training-api/internal/model"
	"github.com/jwalitptl/training-api/internal/repository"
)

type membershipRepository struct {
	s           *Store
	memberships *mongo.Collection
	plans       *mongo.Collection
	payments    *mongo.Collection
}

func NewMembershipRepository(s *Store) repository.MembershipRepository {
	return &membershipRepository{
		s:           s,
		memberships: s.collection(repository.CollMemberships),
		plans:       s.collection(repository.CollPlans),
		payments:    s.collection(repository.CollPayments),
	}
}

func (r *membershipRepository) Latest(ctx context.Context, subjectType model.SubjectType, subjectID bson.ObjectID) (*model.Membership, error) {
	var m *model.Membership
	err := r.s.exec(ctx, repository.CollMemberships, "latest", func(ctx context.Context) (err error) {
		opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
		m, err = findOne[model.Membership](ctx, r.memberships, bson.M{
			"subject_type": subjectType,
			"subject_id":   subjectID,
		}, opts)
		return err
	})
	return m, err
}

func (r *membershipRepository) ListPlans(ctx context.Context, audience model.SubjectType) ([]*model.Plan, error) {
	filter := bson.M{"is_active": true}
	if audience != "" {
		filter["audience"] = audience
	}
	var plans []*model.Plan
	err := r.s.exec(ctx, repository.CollPlans, "list", func(ctx context.Context) (err error) {
		opts := options.Find().SetSort(bson.D{{Key: "price", Value: 1}})
		plans, err = findAll[model.Plan](ctx, r.plans, filter, opts)
		return err
	})
	return plans, err
}

func (r *membershipRepository) GetPlan(ctx context.Context, id bson.ObjectID) (*model.Plan, error) {
	var p *model.Plan
	err := r.s.exec(ctx, repository.CollPlans, "get", func(ctx context.Context) (err error) {
		p, err = findOne[model.Plan](ctx, r.plans, bson.M{"_id": id})
		return err
	})
	return p, err
}

// Purchase writes the payment, expires the subject's active memberships and
// inserts membership as the new current one, inside one transaction.
func (r *membershipRepository) Purchase(ctx context.Context, payment *model.Payment, membership *model.Membership) error {
	if payment.ID.IsZero() {
		payment.ID = bson.NewObjectID()
	}
	now := time.Now().UTC()
	payment.CreatedAt = now

	stored := *membership
	stored.ID = bson.NewObjectID()
	stored.CreatedAt = now
	stored.UpdatedAt = now

	active := bson.M{
		"subject_type": membership.SubjectType,
		"subject_id":   membership.SubjectID,
		"status":       model.MembershipActive,
	}
	expire := bson.M{"$set": bson.M{"status": model.MembershipExpired, "updated_at": now}}

	err := r.s.exec(ctx, repository.CollMemberships, "purchase", func(ctx context.Context) error {
		sess, err := r.s.client.StartSession()
		if err != nil {
			return fmt.Errorf("failed to start session: %w", err)
		}
		defer sess.EndSession(ctx)

		_, err = sess.WithTransaction(ctx, func(ctx context.Context) (any, error) {
			if _, err := r.payments.InsertOne(ctx, payment); err != nil {
				return nil, err
			}
			if _, err := r.memberships.UpdateMany(ctx, active, expire); err != nil {
				return nil, err
			}
			if _, err := r.memberships.InsertOne(ctx, &stored); err != nil {
				return nil, err
			}
			return nil, nil
		})
		return err
	})
	if err != nil {
		return err
	}
	*membership = stored
	return nil
}
