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

type staffRepository struct {
	s    *Store
	coll *mongo.Collection
}

func NewStaffRepository(s *Store) repository.StaffRepository {
	return &staffRepository{s: s, coll: s.collection(repository.CollCorporateStaff)}
}

func (r *staffRepository) Create(ctx context.Context, staff *model.CorporateStaff) error {
	if staff.ID.IsZero() {
		staff.ID = bson.NewObjectID()
	}
	now := time.Now().UTC()
	staff.CreatedAt = now
	if staff.JoinDate.IsZero() {
		staff.JoinDate = now
	}
	return r.s.exec(ctx, repository.CollCorporateStaff, "create", func(ctx context.Context) error {
		_, err := r.coll.InsertOne(ctx, staff)
		return err
	})
}

func (r *staffRepository) Get(ctx context.Context, id bson.ObjectID) (*model.CorporateStaff, error) {
	var staff *model.CorporateStaff
	err := r.s.exec(ctx, repository.CollCorporateStaff, "get", func(ctx context.Context) (err error) {
		staff, err = findOne[model.CorporateStaff](ctx, r.coll, bson.M{"_id": id})
		return err
	})
	return staff, err
}

func (r *staffRepository) GetByUser(ctx context.Context, userID bson.ObjectID) (*model.CorporateStaff, error) {
	var staff *model.CorporateStaff
	err := r.s.exec(ctx, repository.CollCorporateStaff, "get_by_user", func(ctx context.Context) (err error) {
		opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
		staff, err = findOne[model.CorporateStaff](ctx, r.coll, bson.M{"user_id": userID}, opts)
		return err
	})
	return staff, err
}

func (r *staffRepository) ListByCorporate(ctx context.Context, corporateID bson.ObjectID) ([]*model.CorporateStaff, error) {
	var roster []*model.CorporateStaff
	err := r.s.exec(ctx, repository.CollCorporateStaff, "list_by_corporate", func(ctx context.Context) (err error) {
		opts := options.Find().SetSort(bson.D{{Key: "join_date", Value: 1}})
		roster, err = findAll[model.CorporateStaff](ctx, r.coll, bson.M{"corporate_id": corporateID}, opts)
		return err
	})
	return roster, err
}

func (r *staffRepository) Update(ctx context.Context, staff *model.CorporateStaff) error {
	update := bson.M{"$set": bson.M{
		"role":       staff.Role,
		"department": staff.Department,
		"status":     staff.Status,
	}}
	return r.s.exec(ctx, repository.CollCorporateStaff, "update", func(ctx context.Context) error {
		return requireMatch(r.coll.UpdateOne(ctx, bson.M{"_id": staff.ID}, update))
	})
}

func (r *staffRepository) SetApproval(ctx context.Context, id bson.ObjectID, status model.ApprovalStatus) error {
	return r.s.exec(ctx, repository.CollCorporateStaff, "set_approval", func(ctx context.Context) error {
		return requireMatch(r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"approval_status": status}}))
	})
}
