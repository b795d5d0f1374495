package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type CatalogStatus string

const (
	CatalogStatusDraft     CatalogStatus = "draft"
	CatalogStatusPublished CatalogStatus = "published"
	CatalogStatusArchived  CatalogStatus = "archived"
)

func (s CatalogStatus) Valid() bool {
	switch s {
	case CatalogStatusDraft, CatalogStatusPublished, CatalogStatusArchived:
		return true
	}
	return false
}

type Access string

const (
	AccessFree    Access = "free"
	AccessPaid    Access = "paid"
	AccessMembers Access = "members"
)

type Course struct {
	ID          bson.ObjectID `json:"id" bson:"_id,omitempty"`
	Title       string        `json:"title" bson:"title"`
	Description string        `json:"description,omitempty" bson:"description,omitempty"`
	Status      CatalogStatus `json:"status" bson:"status"`
	Price       *float64      `json:"price,omitempty" bson:"price,omitempty"`
	Access      Access        `json:"access" bson:"access"`
	Category    string        `json:"category,omitempty" bson:"category,omitempty"`
	Duration    string        `json:"duration,omitempty" bson:"duration,omitempty"`
	CreatedBy   bson.ObjectID `json:"createdBy" bson:"created_by"`
	CreatedAt   time.Time     `json:"createdAt" bson:"created_at"`
	UpdatedAt   time.Time     `json:"updatedAt" bson:"updated_at"`
}

type Event struct {
	ID          bson.ObjectID `json:"id" bson:"_id,omitempty"`
	Title       string        `json:"title" bson:"title"`
	Description string        `json:"description,omitempty" bson:"description,omitempty"`
	Status      CatalogStatus `json:"status" bson:"status"`
	Price       *float64      `json:"price,omitempty" bson:"price,omitempty"`
	Access      Access        `json:"access" bson:"access"`
	Category    string        `json:"category,omitempty" bson:"category,omitempty"`
	Location    string        `json:"location,omitempty" bson:"location,omitempty"`
	StartDate   *time.Time    `json:"startDate,omitempty" bson:"start_date,omitempty"`
	EndDate     *time.Time    `json:"endDate,omitempty" bson:"end_date,omitempty"`
	CreatedBy   bson.ObjectID `json:"createdBy" bson:"created_by"`
	CreatedAt   time.Time     `json:"createdAt" bson:"created_at"`
	UpdatedAt   time.Time     `json:"updatedAt" bson:"updated_at"`
}

type CatalogFilters struct {
	Status   CatalogStatus
	Category string
	Search   string
	Pagination
}

// CatalogRequest is shared by course and event writes.
type CatalogRequest struct {
	Title       string        `json:"title" binding:"required,max=200"`
	Description string        `json:"description" binding:"omitempty,max=5000"`
	Status      CatalogStatus `json:"status" binding:"omitempty,oneof=draft published archived"`
	Price       *float64      `json:"price" binding:"omitempty,gte=0"`
	Access      Access        `json:"access" binding:"omitempty,oneof=free paid members"`
	Category    string        `json:"category" binding:"omitempty,max=80"`
	Duration    string        `json:"duration" binding:"omitempty,max=80"`
	Location    string        `json:"location" binding:"omitempty,max=200"`
	StartDate   *time.Time    `json:"startDate"`
	EndDate     *time.Time    `json:"endDate"`
}
