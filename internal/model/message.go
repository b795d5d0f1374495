package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Message is a directed 1:1 chat message. ReadAt is a timestamp so marking
// read is idempotent.
type Message struct {
	ID          bson.ObjectID `json:"id" bson:"_id,omitempty"`
	SenderID    bson.ObjectID `json:"senderId" bson:"sender_id"`
	RecipientID bson.ObjectID `json:"recipientId" bson:"recipient_id"`
	Content     string        `json:"content" bson:"content"`
	ReadAt      *time.Time    `json:"readAt,omitempty" bson:"read_at,omitempty"`
	EditedAt    *time.Time    `json:"editedAt,omitempty" bson:"edited_at,omitempty"`
	CreatedAt   time.Time     `json:"createdAt" bson:"created_at"`
}

type SendMessageRequest struct {
	Content string `json:"content" binding:"required,max=4000"`
}

type EditMessageRequest struct {
	Content string `json:"content" binding:"required,max=4000"`
}
