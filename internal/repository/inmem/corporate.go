package inmem

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/jwalitptl/training-api/internal/model"
	"github.com/jwalitptl/training-api/internal/repository"
)

type profileRepository struct{ db *DB }

func NewProfileRepository(db *DB) repository.ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) CreateIndividual(_ context.Context, p *model.IndividualProfile) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = bson.NewObjectID()
	}
	p.CreatedAt = time.Now().UTC()
	r.db.individuals = append(r.db.individuals, clone(p))
	return nil
}

func (r *profileRepository) GetIndividualByUser(_ context.Context, userID bson.ObjectID) (*model.IndividualProfile, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	if err := r.db.fail("individual_profiles.get_by_user"); err != nil {
		return nil, err
	}
	for _, p := range r.db.individuals {
		if p.UserID == userID {
			return clone(p), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *profileRepository) CreateCorporate(_ context.Context, p *model.CorporateProfile) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, existing := range r.db.corporates {
		if existing.OwnerID == p.OwnerID {
			return repository.ErrDuplicate
		}
	}
	if p.ID.IsZero() {
		p.ID = bson.NewObjectID()
	}
	p.CreatedAt = time.Now().UTC()
	r.db.corporates = append(r.db.corporates, clone(p))
	return nil
}

func (r *profileRepository) GetCorporate(_ context.Context, id bson.ObjectID) (*model.CorporateProfile, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	for _, p := range r.db.corporates {
		if p.ID == id {
			return clone(p), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *profileRepository) GetCorporateByOwner(_ context.Context, ownerID bson.ObjectID) (*model.CorporateProfile, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	if err := r.db.fail("corporate_profiles.get_by_owner"); err != nil {
		return nil, err
	}
	for _, p := range r.db.corporates {
		if p.OwnerID == ownerID {
			return clone(p), nil
		}
	}
	return nil, repository.ErrNotFound
}

type staffRepository struct{ db *DB }

func NewStaffRepository(db *DB) repository.StaffRepository {
	return &staffRepository{db: db}
}

func (r *staffRepository) Create(_ context.Context, s *model.CorporateStaff) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if s.ID.IsZero() {
		s.ID = bson.NewObjectID()
	}
	now := time.Now().UTC()
	s.CreatedAt = now
	if s.JoinDate.IsZero() {
		s.JoinDate = now
	}
	r.db.staff = append(r.db.staff, clone(s))
	return nil
}

func (r *staffRepository) find(id bson.ObjectID) *model.CorporateStaff {
	for _, s := range r.db.staff {
		if s.ID == id {
			return s
		}
	}
	return nil
}

func (r *staffRepository) Get(_ context.Context, id bson.ObjectID) (*model.CorporateStaff, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	if s := r.find(id); s != nil {
		return clone(s), nil
	}
	return nil, repository.ErrNotFound
}

func (r *staffRepository) GetByUser(_ context.Context, userID bson.ObjectID) (*model.CorporateStaff, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	for _, s := range reversed(r.db.staff) {
		if s.UserID == userID {
			return clone(s), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *staffRepository) ListByCorporate(_ context.Context, corporateID bson.ObjectID) ([]*model.CorporateStaff, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	if err := r.db.fail("corporate_staff.list_by_corporate"); err != nil {
		return nil, err
	}
	return cloneAll(r.db.staff, func(s *model.CorporateStaff) bool { return s.CorporateID == corporateID }), nil
}

func (r *staffRepository) Update(_ context.Context, s *model.CorporateStaff) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	existing := r.find(s.ID)
	if existing == nil {
		return repository.ErrNotFound
	}
	existing.Role = s.Role
	existing.Department = s.Department
	existing.Status = s.Status
	return nil
}

func (r *staffRepository) SetApproval(_ context.Context, id bson.ObjectID, status model.ApprovalStatus) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	existing := r.find(id)
	if existing == nil {
		return repository.ErrNotFound
	}
	existing.ApprovalStatus = status
	return nil
}
