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

type contentRepository struct {
	s    *Store
	coll *mongo.Collection
}

func NewContentRepository(s *Store) repository.ContentRepository {
	return &contentRepository{s: s, coll: s.collection(repository.CollSiteContent)}
}

func (r *contentRepository) Get(ctx context.Context, key string) (*model.SiteContent, error) {
	var c *model.SiteContent
	err := r.s.exec(ctx, repository.CollSiteContent, "get", func(ctx context.Context) (err error) {
		c, err = findOne[model.SiteContent](ctx, r.coll, bson.M{"_id": key})
		return err
	})
	return c, err
}

func (r *contentRepository) Upsert(ctx context.Context, c *model.SiteContent) error {
	c.UpdatedAt = time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"title":      c.Title,
		"body":       c.Body,
		"updated_by": c.UpdatedBy,
		"updated_at": c.UpdatedAt,
	}}
	return r.s.exec(ctx, repository.CollSiteContent, "upsert", func(ctx context.Context) error {
		_, err := r.coll.UpdateOne(ctx, bson.M{"_id": c.Key}, update, options.UpdateOne().SetUpsert(true))
		return err
	})
}
