package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/jwalitptl/training-api/internal/model"
	"github.com/jwalitptl/training-api/internal/repository"
)

type profileRepository struct {
	s          *Store
	individual *mongo.Collection
	corporate  *mongo.Collection
}

func NewProfileRepository(s *Store) repository.ProfileRepository {
	return &profileRepository{
		s:          s,
		individual: s.collection(repository.CollIndividualProfiles),
		corporate:  s.collection(repository.CollCorporateProfiles),
	}
}

func (r *profileRepository) CreateIndividual(ctx context.Context, p *model.IndividualProfile) error {
	if p.ID.IsZero() {
		p.ID = bson.NewObjectID()
	}
	p.CreatedAt = time.Now().UTC()
	return r.s.exec(ctx, repository.CollIndividualProfiles, "create", func(ctx context.Context) error {
		_, err := r.individual.InsertOne(ctx, p)
		return err
	})
}

func (r *profileRepository) GetIndividualByUser(ctx context.Context, userID bson.ObjectID) (*model.IndividualProfile, error) {
	var p *model.IndividualProfile
	err := r.s.exec(ctx, repository.CollIndividualProfiles, "get_by_user", func(ctx context.Context) (err error) {
		p, err = findOne[model.IndividualProfile](ctx, r.individual, bson.M{"user_id": userID})
		return err
	})
	return p, err
}

func (r *profileRepository) CreateCorporate(ctx context.Context, p *model.CorporateProfile) error {
	if p.ID.IsZero() {
		p.ID = bson.NewObjectID()
	}
	p.CreatedAt = time.Now().UTC()
	return r.s.exec(ctx, repository.CollCorporateProfiles, "create", func(ctx context.Context) error {
		_, err := r.corporate.InsertOne(ctx, p)
		return err
	})
}

func (r *profileRepository) GetCorporate(ctx context.Context, id bson.ObjectID) (*model.CorporateProfile, error) {
	var p *model.CorporateProfile
	err := r.s.exec(ctx, repository.CollCorporateProfiles, "get", func(ctx context.Context) (err error) {
		p, err = findOne[model.CorporateProfile](ctx, r.corporate, bson.M{"_id": id})
		return err
	})
	return p, err
}

func (r *profileRepository) GetCorporateByOwner(ctx context.Context, ownerID bson.ObjectID) (*model.CorporateProfile, error) {
	var p *model.CorporateProfile
	err := r.s.exec(ctx, repository.CollCorporateProfiles, "get_by_owner", func(ctx context.Context) (err error) {
		p, err = findOne[model.CorporateProfile](ctx, r.corporate, bson.M{"owner_id": ownerID})
		return err
	})
	return p, err
}
