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

type announcementRepository struct {
	s    *Store
	coll *mongo.Collection
}

func NewAnnouncementRepository(s *Store) repository.AnnouncementRepository {
	return &announcementRepository{s: s, coll: s.collection(repository.CollAnnouncements)}
}

func (r *announcementRepository) Create(ctx context.Context, a *model.Announcement) error {
	if a.ID.IsZero() {
		a.ID = bson.NewObjectID()
	}
	if a.ReadBy == nil {
		a.ReadBy = []bson.ObjectID{}
	}
	a.CreatedAt = time.Now().UTC()
	return r.s.exec(ctx, repository.CollAnnouncements, "create", func(ctx context.Context) error {
		_, err := r.coll.InsertOne(ctx, a)
		return err
	})
}

func (r *announcementRepository) Get(ctx context.Context, id bson.ObjectID) (*model.Announcement, error) {
	var a *model.Announcement
	err := r.s.exec(ctx, repository.CollAnnouncements, "get", func(ctx context.Context) (err error) {
		a, err = findOne[model.Announcement](ctx, r.coll, bson.M{"_id": id})
		return err
	})
	return a, err
}

func (r *announcementRepository) ListActive(ctx context.Context, audiences []model.Audience) ([]*model.Announcement, error) {
	filter := bson.M{"is_active": true}
	if len(audiences) > 0 {
		filter["target_audience"] = bson.M{"$in": audiences}
	}
	var list []*model.Announcement
	err := r.s.exec(ctx, repository.CollAnnouncements, "list_active", func(ctx context.Context) (err error) {
		opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
		list, err = findAll[model.Announcement](ctx, r.coll, filter, opts)
		return err
	})
	return list, err
}

func (r *announcementRepository) MarkRead(ctx context.Context, id, userID bson.ObjectID) error {
	return r.s.exec(ctx, repository.CollAnnouncements, "mark_read", func(ctx context.Context) error {
		return requireMatch(r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$addToSet": bson.M{"read_by": userID}}))
	})
}
