package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// SiteContent is an editable block of site copy addressed by key.
type SiteContent struct {
	Key       string        `json:"key" bson:"_id"`
	Title     string        `json:"title" bson:"title"`
	Body      string        `json:"body" bson:"body"`
	UpdatedBy bson.ObjectID `json:"updatedBy" bson:"updated_by"`
	UpdatedAt time.Time     `json:"updatedAt" bson:"updated_at"`
}

type UpsertContentRequest struct {
	Title string `json:"title" binding:"required,max=200"`
	Body  string `json:"body" binding:"required"`
}
