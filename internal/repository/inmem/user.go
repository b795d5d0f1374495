package inmem

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/jwalitptl/training-api/internal/model"
	"github.com/jwalitptl/training-api/internal/repository"
)

type userRepository struct{ db *DB }

func NewUserRepository(db *DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(_ context.Context, user *model.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.fail("users.create"); err != nil {
		return err
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	for _, u := range r.db.users {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	if user.ID.IsZero() {
		user.ID = bson.NewObjectID()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	user.UpdatedAt = user.CreatedAt
	r.db.users = append(r.db.users, clone(user))
	return nil
}

func (r *userRepository) find(id bson.ObjectID) *model.User {
	for _, u := range r.db.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func (r *userRepository) Get(_ context.Context, id bson.ObjectID) (*model.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	if err := r.db.fail("users.get"); err != nil {
		return nil, err
	}
	if u := r.find(id); u != nil {
		return clone(u), nil
	}
	return nil, repository.ErrNotFound
}

func (r *userRepository) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range r.db.users {
		if u.Email == email {
			return clone(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *userRepository) FindByIDs(_ context.Context, ids []bson.ObjectID) ([]*model.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	if err := r.db.fail("users.find_by_ids"); err != nil {
		return nil, err
	}
	set := idSet(ids)
	return cloneAll(r.db.users, func(u *model.User) bool { return set[u.ID] }), nil
}

func (r *userRepository) List(_ context.Context, f *model.UserFilters) ([]*model.User, int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	q := strings.ToLower(strings.TrimSpace(f.Search))
	all := cloneAll(reversed(r.db.users), func(u *model.User) bool {
		if f.Role != "" && u.Role != f.Role {
			return false
		}
		if f.Status != "" && u.Status != f.Status {
			return false
		}
		if q != "" && !strings.Contains(strings.ToLower(u.Email), q) && !strings.Contains(strings.ToLower(u.Name), q) {
			return false
		}
		return true
	})
	return page(all, f.Pagination), int64(len(all)), nil
}

func (r *userRepository) ListByRole(_ context.Context, role model.Role) ([]*model.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	if err := r.db.fail("users.list_by_role"); err != nil {
		return nil, err
	}
	return cloneAll(r.db.users, func(u *model.User) bool { return role == "" || u.Role == role }), nil
}

func (r *userRepository) update(id bson.ObjectID, fn func(*model.User)) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u := r.find(id)
	if u == nil {
		return repository.ErrNotFound
	}
	fn(u)
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *userRepository) UpdateStatus(_ context.Context, id bson.ObjectID, status model.UserStatus) error {
	return r.update(id, func(u *model.User) { u.Status = status })
}

func (r *userRepository) TouchLogin(_ context.Context, id bson.ObjectID, at time.Time) error {
	return r.update(id, func(u *model.User) {
		u.LastLogin = &at
		u.LastActivity = &at
	})
}

func (r *userRepository) TouchActivity(_ context.Context, id bson.ObjectID, at time.Time) error {
	return r.update(id, func(u *model.User) { u.LastActivity = &at })
}

func (r *userRepository) Delete(_ context.Context, id bson.ObjectID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for i, u := range r.db.users {
		if u.ID == id {
			r.db.users = append(r.db.users[:i], r.db.users[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func idSet(ids []bson.ObjectID) map[bson.ObjectID]bool {
	set := make(map[bson.ObjectID]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
