package inmem

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/jwalitptl/training-api/internal/model"
	"github.com/jwalitptl/training-api/internal/repository"
)

type messageRepository struct{ db *DB }

func NewMessageRepository(db *DB) repository.MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(_ context.Context, msg *model.Message) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if msg.ID.IsZero() {
		msg.ID = bson.NewObjectID()
	}
	msg.CreatedAt = time.Now().UTC()
	r.db.messages = append(r.db.messages, clone(msg))
	return nil
}

func (r *messageRepository) Get(_ context.Context, id bson.ObjectID) (*model.Message, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	for _, m := range r.db.messages {
		if m.ID == id {
			return clone(m), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *messageRepository) Thread(_ context.Context, a, b bson.ObjectID) ([]*model.Message, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return cloneAll(r.db.messages, func(m *model.Message) bool {
		return (m.SenderID == a && m.RecipientID == b) || (m.SenderID == b && m.RecipientID == a)
	}), nil
}

func (r *messageRepository) MarkRead(_ context.Context, recipientID, senderID bson.ObjectID, at time.Time) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var n int64
	for _, m := range r.db.messages {
		if m.SenderID == senderID && m.RecipientID == recipientID && m.ReadAt == nil {
			stamp := at
			m.ReadAt = &stamp
			n++
		}
	}
	return n, nil
}

func (r *messageRepository) UpdateContent(_ context.Context, id bson.ObjectID, content string, editedAt time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, m := range r.db.messages {
		if m.ID == id {
			m.Content = content
			m.EditedAt = &editedAt
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *messageRepository) CountUnread(_ context.Context, recipientID bson.ObjectID) (int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	var n int64
	for _, m := range r.db.messages {
		if m.RecipientID == recipientID && m.ReadAt == nil {
			n++
		}
	}
	return n, nil
}
