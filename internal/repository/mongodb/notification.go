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

type notificationRepository struct {
	s    *Store
	coll *mongo.Collection
}

func NewNotificationRepository(s *Store) repository.NotificationRepository {
	return &notificationRepository{s: s, coll: s.collection(repository.CollNotifications)}
}

func (r *notificationRepository) CreateMany(ctx context.Context, notifications []*model.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	now := time.Now().UTC()
	docs := make([]interface{}, 0, len(notifications))
	for _, n := range notifications {
		if n.ID.IsZero() {
			n.ID = bson.NewObjectID()
		}
		n.CreatedAt = now
		docs = append(docs, n)
	}
	return r.s.exec(ctx, repository.CollNotifications, "create_many", func(ctx context.Context) error {
		_, err := r.coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
		return err
	})
}

func (r *notificationRepository) List(ctx context.Context, userID bson.ObjectID, status model.NotificationStatus) ([]*model.Notification, error) {
	filter := bson.M{"user_id": userID}
	if status != "" {
		filter["status"] = status
	}
	var list []*model.Notification
	err := r.s.exec(ctx, repository.CollNotifications, "list", func(ctx context.Context) (err error) {
		opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(200)
		list, err = findAll[model.Notification](ctx, r.coll, filter, opts)
		return err
	})
	return list, err
}

func (r *notificationRepository) UpdateStatus(ctx context.Context, id, userID bson.ObjectID, status model.NotificationStatus, at time.Time) error {
	set := bson.M{"status": status}
	if status == model.NotificationRead {
		set["read_at"] = at
	}
	return r.s.exec(ctx, repository.CollNotifications, "update_status", func(ctx context.Context) error {
		return requireMatch(r.coll.UpdateOne(ctx, bson.M{"_id": id, "user_id": userID}, bson.M{"$set": set}))
	})
}
