package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type SubjectType string

const (
	SubjectUser      SubjectType = "USER"
	SubjectCorporate SubjectType = "CORPORATE"
)

type MembershipStatus string

const (
	MembershipActive    MembershipStatus = "active"
	MembershipInactive  MembershipStatus = "inactive"
	MembershipCancelled MembershipStatus = "cancelled"
	MembershipExpired   MembershipStatus = "expired"
	MembershipPending   MembershipStatus = "pending"
)

// Membership records a subject's plan. A subject may hold many over time;
// the current one is the most recently created.
type Membership struct {
	ID          bson.ObjectID    `json:"id" bson:"_id,omitempty"`
	SubjectType SubjectType      `json:"subjectType" bson:"subject_type"`
	SubjectID   bson.ObjectID    `json:"subjectId" bson:"subject_id"`
	PlanID      bson.ObjectID    `json:"planId" bson:"plan_id"`
	Status      MembershipStatus `json:"status" bson:"status"`
	StartDate   *time.Time       `json:"startDate,omitempty" bson:"start_date,omitempty"`
	EndDate     *time.Time       `json:"endDate,omitempty" bson:"end_date,omitempty"`
	CreatedAt   time.Time        `json:"createdAt" bson:"created_at"`
	UpdatedAt   time.Time        `json:"updatedAt" bson:"updated_at"`
}

type Plan struct {
	ID           bson.ObjectID `json:"id" bson:"_id,omitempty"`
	Name         string        `json:"name" bson:"name"`
	Price        float64       `json:"price" bson:"price"`
	Currency     string        `json:"currency" bson:"currency"`
	DurationDays int           `json:"durationDays" bson:"duration_days"`
	Audience     SubjectType   `json:"audience" bson:"audience"`
	IsActive     bool          `json:"isActive" bson:"is_active"`
}

type PaymentStatus string

const (
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

type Payment struct {
	ID          bson.ObjectID `json:"id" bson:"_id,omitempty"`
	SubjectType SubjectType   `json:"subjectType" bson:"subject_type"`
	SubjectID   bson.ObjectID `json:"subjectId" bson:"subject_id"`
	PlanID      bson.ObjectID `json:"planId" bson:"plan_id"`
	Amount      float64       `json:"amount" bson:"amount"`
	Currency    string        `json:"currency" bson:"currency"`
	Status      PaymentStatus `json:"status" bson:"status"`
	CreatedAt   time.Time     `json:"createdAt" bson:"created_at"`
}

type PurchaseRequest struct {
	PlanID string `json:"planId" binding:"required,objectid"`
}

type PurchaseResult struct {
	Payment    *Payment    `json:"payment"`
	Membership *Membership `json:"membership"`
}
