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

type messageRepository struct {
	s    *Store
	coll *mongo.Collection
}

func NewMessageRepository(s *Store) repository.MessageRepository {
	return &messageRepository{s: s, coll: s.collection(repository.CollMessages)}
}

func (r *messageRepository) Create(ctx context.Context, msg *model.Message) error {
	if msg.ID.IsZero() {
		msg.ID = bson.NewObjectID()
	}
	msg.CreatedAt = time.Now().UTC()
	return r.s.exec(ctx, repository.CollMessages, "create", func(ctx context.Context) error {
		_, err := r.coll.InsertOne(ctx, msg)
		return err
	})
}

func (r *messageRepository) Get(ctx context.Context, id bson.ObjectID) (*model.Message, error) {
	var msg *model.Message
	err := r.s.exec(ctx, repository.CollMessages, "get", func(ctx context.Context) (err error) {
		msg, err = findOne[model.Message](ctx, r.coll, bson.M{"_id": id})
		return err
	})
	return msg, err
}

func (r *messageRepository) Thread(ctx context.Context, a, b bson.ObjectID) ([]*model.Message, error) {
	filter := bson.M{"$or": []bson.M{
		{"sender_id": a, "recipient_id": b},
		{"sender_id": b, "recipient_id": a},
	}}
	var msgs []*model.Message
	err := r.s.exec(ctx, repository.CollMessages, "thread", func(ctx context.Context) (err error) {
		opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
		msgs, err = findAll[model.Message](ctx, r.coll, filter, opts)
		return err
	})
	return msgs, err
}

// MarkRead stamps every unread message from sender to recipient. Messages
// already read keep their original timestamp.
func (r *messageRepository) MarkRead(ctx context.Context, recipientID, senderID bson.ObjectID, at time.Time) (int64, error) {
	filter := bson.M{
		"sender_id":    senderID,
		"recipient_id": recipientID,
		"read_at":      bson.M{"$exists": false},
	}
	var n int64
	err := r.s.exec(ctx, repository.CollMessages, "mark_read", func(ctx context.Context) error {
		res, err := r.coll.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"read_at": at}})
		if err != nil {
			return err
		}
		n = res.ModifiedCount
		return nil
	})
	return n, err
}

func (r *messageRepository) UpdateContent(ctx context.Context, id bson.ObjectID, content string, editedAt time.Time) error {
	update := bson.M{"$set": bson.M{"content": content, "edited_at": editedAt}}
	return r.s.exec(ctx, repository.CollMessages, "update_content", func(ctx context.Context) error {
		return requireMatch(r.coll.UpdateOne(ctx, bson.M{"_id": id}, update))
	})
}

func (r *messageRepository) CountUnread(ctx context.Context, recipientID bson.ObjectID) (int64, error) {
	var n int64
	err := r.s.exec(ctx, repository.CollMessages, "count_unread", func(ctx context.Context) (err error) {
		n, err = r.coll.CountDocuments(ctx, bson.M{
			"recipient_id": recipientID,
			"read_at":      bson.M{"$exists": false},
		})
		return err
	})
	return n, err
}
