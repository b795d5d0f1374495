package mongodb

import (
	"context"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/jwalitptl/training-api/internal/model"
	"github.com/jwalitptl/training-api/internal/repository"
)

type userRepository struct {
	s    *Store
	coll *mongo.Collection
}

func NewUserRepository(s *Store) repository.UserRepository {
	return &userRepository{s: s, coll: s.collection(repository.CollUsers)}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	if user.ID.IsZero() {
		user.ID = bson.NewObjectID()
	}
	now := time.Now().UTC()
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.CreatedAt = now
	user.UpdatedAt = now

	return r.s.exec(ctx, repository.CollUsers, "create", func(ctx context.Context) error {
		_, err := r.coll.InsertOne(ctx, user)
		return err
	})
}

func (r *userRepository) Get(ctx context.Context, id bson.ObjectID) (*model.User, error) {
	var user *model.User
	err := r.s.exec(ctx, repository.CollUsers, "get", func(ctx context.Context) (err error) {
		user, err = findOne[model.User](ctx, r.coll, bson.M{"_id": id})
		return err
	})
	return user, err
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user *model.User
	err := r.s.exec(ctx, repository.CollUsers, "get_by_email", func(ctx context.Context) (err error) {
		user, err = findOne[model.User](ctx, r.coll, bson.M{"email": strings.ToLower(strings.TrimSpace(email))})
		return err
	})
	return user, err
}

func (r *userRepository) FindByIDs(ctx context.Context, ids []bson.ObjectID) ([]*model.User, error) {
	if len(ids) == 0 {
		return []*model.User{}, nil
	}
	var users []*model.User
	err := r.s.exec(ctx, repository.CollUsers, "find_by_ids", func(ctx context.Context) (err error) {
		users, err = findAll[model.User](ctx, r.coll, bson.M{"_id": bson.M{"$in": ids}})
		return err
	})
	return users, err
}

func (r *userRepository) List(ctx context.Context, filters *model.UserFilters) ([]*model.User, int64, error) {
	filter := bson.M{}
	if filters.Role != "" {
		filter["role"] = filters.Role
	}
	if filters.Status != "" {
		filter["status"] = filters.Status
	}
	if q := strings.TrimSpace(filters.Search); q != "" {
		pattern := bson.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}
		filter["$or"] = []bson.M{{"email": pattern}, {"name": pattern}}
	}

	var (
		users []*model.User
		total int64
	)
	err := r.s.exec(ctx, repository.CollUsers, "list", func(ctx context.Context) (err error) {
		total, err = r.coll.CountDocuments(ctx, filter)
		if err != nil {
			return err
		}
		opts := paging(filters.Pagination).SetSort(bson.D{{Key: "created_at", Value: -1}})
		users, err = findAll[model.User](ctx, r.coll, filter, opts)
		return err
	})
	return users, total, err
}

func (r *userRepository) ListByRole(ctx context.Context, role model.Role) ([]*model.User, error) {
	filter := bson.M{}
	if role != "" {
		filter["role"] = role
	}
	var users []*model.User
	err := r.s.exec(ctx, repository.CollUsers, "list_by_role", func(ctx context.Context) (err error) {
		opts := options.Find().SetProjection(bson.M{"_id": 1, "email": 1, "name": 1, "role": 1})
		users, err = findAll[model.User](ctx, r.coll, filter, opts)
		return err
	})
	return users, err
}

func (r *userRepository) UpdateStatus(ctx context.Context, id bson.ObjectID, status model.UserStatus) error {
	return r.set(ctx, "update_status", id, bson.M{"status": status})
}

func (r *userRepository) TouchLogin(ctx context.Context, id bson.ObjectID, at time.Time) error {
	return r.set(ctx, "touch_login", id, bson.M{"last_login": at, "last_activity": at})
}

func (r *userRepository) TouchActivity(ctx context.Context, id bson.ObjectID, at time.Time) error {
	return r.set(ctx, "touch_activity", id, bson.M{"last_activity": at})
}

func (r *userRepository) set(ctx context.Context, op string, id bson.ObjectID, fields bson.M) error {
	fields["updated_at"] = time.Now().UTC()
	return r.s.exec(ctx, repository.CollUsers, op, func(ctx context.Context) error {
		return requireMatch(r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields}))
	})
}

func (r *userRepository) Delete(ctx context.Context, id bson.ObjectID) error {
	return r.s.exec(ctx, repository.CollUsers, "delete", func(ctx context.Context) error {
		res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			return err
		}
		if res.DeletedCount == 0 {
			return repository.ErrNotFound
		}
		return nil
	})
}
