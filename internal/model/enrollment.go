package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type EnrollmentStatus string

const (
	EnrollmentStatusEnrolled   EnrollmentStatus = "enrolled"
	EnrollmentStatusInProgress EnrollmentStatus = "in_progress"
	EnrollmentStatusCompleted  EnrollmentStatus = "completed"
	EnrollmentStatusCancelled  EnrollmentStatus = "cancelled"
)

func (s EnrollmentStatus) Valid() bool {
	switch s {
	case EnrollmentStatusEnrolled, EnrollmentStatusInProgress, EnrollmentStatusCompleted, EnrollmentStatusCancelled:
		return true
	}
	return false
}

// Enrollment links a user to a course or an event. EventID may point into
// either collection; see EnrollmentTarget.
type Enrollment struct {
	ID             bson.ObjectID    `json:"id" bson:"_id,omitempty"`
	UserID         bson.ObjectID    `json:"userId" bson:"user_id"`
	EventID        bson.ObjectID    `json:"eventId" bson:"event_id"`
	Status         EnrollmentStatus `json:"status" bson:"status"`
	Progress       int              `json:"progress" bson:"progress"`
	CompletionDate *time.Time       `json:"completionDate,omitempty" bson:"completion_date,omitempty"`
	CreatedAt      time.Time        `json:"createdAt" bson:"created_at"`
	UpdatedAt      time.Time        `json:"updatedAt" bson:"updated_at"`
}

type TargetKind string

const (
	TargetCourse     TargetKind = "course"
	TargetEvent      TargetKind = "event"
	TargetUnresolved TargetKind = "unresolved"
)

// EnrollmentTarget is the resolved target of an enrollment. Exactly one of
// Course and Event is set unless Kind is TargetUnresolved.
type EnrollmentTarget struct {
	Kind   TargetKind `json:"kind"`
	Course *Course    `json:"course,omitempty"`
	Event  *Event     `json:"event,omitempty"`
}

type ClassifiedEnrollment struct {
	Enrollment
	Target EnrollmentTarget `json:"target"`
}

// Title of the resolved target, empty when unresolved.
func (c ClassifiedEnrollment) Title() string {
	switch c.Target.Kind {
	case TargetCourse:
		return c.Target.Course.Title
	case TargetEvent:
		return c.Target.Event.Title
	}
	return ""
}

// CompletionStats summarizes one subject's enrollments.
type CompletionStats struct {
	EnrolledCount   int `json:"enrolledCount"`
	CompletedCount  int `json:"completedCount"`
	InProgressCount int `json:"inProgressCount"`
	CompletionRate  int `json:"completionRate"`
}

type EnrollRequest struct {
	TargetID string `json:"targetId" binding:"required,objectid"`
}

type UpdateEnrollmentRequest struct {
	Status   *EnrollmentStatus `json:"status" binding:"omitempty,oneof=enrolled in_progress completed cancelled"`
	Progress *int              `json:"progress" binding:"omitempty,gte=0,lte=100"`
}

// EnrollmentSummary is a learner's own classified enrollments.
type EnrollmentSummary struct {
	Courses         []ClassifiedEnrollment `json:"courses"`
	Events          []ClassifiedEnrollment `json:"events"`
	CompletionStats CompletionStats        `json:"completionStats"`
}
