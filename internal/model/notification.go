package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Audience string

const (
	AudienceAll        Audience = "all"
	AudienceIndividual Audience = "individual"
	AudienceCorporate  Audience = "corporate"
	AudienceSubAdmin   Audience = "subadmin"
)

func (a Audience) Valid() bool {
	switch a {
	case AudienceAll, AudienceIndividual, AudienceCorporate, AudienceSubAdmin:
		return true
	}
	return false
}

// Role returns the user role an audience targets. ok is false for
// AudienceAll, which matches every role.
func (a Audience) Role() (role Role, ok bool) {
	switch a {
	case AudienceIndividual:
		return RoleIndividual, true
	case AudienceCorporate:
		return RoleCorporate, true
	case AudienceSubAdmin:
		return RoleSubAdmin, true
	}
	return "", false
}

// Matches reports whether a viewer with role r sees the announcement.
func (a Audience) Matches(r Role) bool {
	target, ok := a.Role()
	return !ok || target == r
}

type Announcement struct {
	ID             bson.ObjectID   `json:"id" bson:"_id,omitempty"`
	Title          string          `json:"title" bson:"title"`
	Content        string          `json:"content" bson:"content"`
	TargetAudience Audience        `json:"targetAudience" bson:"target_audience"`
	IsActive       bool            `json:"isActive" bson:"is_active"`
	ReadBy         []bson.ObjectID `json:"-" bson:"read_by"`
	CreatedBy      bson.ObjectID   `json:"createdBy" bson:"created_by"`
	CreatedAt      time.Time       `json:"createdAt" bson:"created_at"`
}

// ReadByUser reports whether id is in ReadBy.
func (a *Announcement) ReadByUser(id bson.ObjectID) bool {
	for _, r := range a.ReadBy {
		if r == id {
			return true
		}
	}
	return false
}

// AnnouncementView is an announcement as seen by one viewer.
type AnnouncementView struct {
	*Announcement
	IsRead bool `json:"isRead"`
}

type CreateAnnouncementRequest struct {
	Title          string   `json:"title" binding:"required,max=200"`
	Content        string   `json:"content" binding:"required,max=10000"`
	TargetAudience Audience `json:"targetAudience" binding:"required,oneof=all individual corporate subadmin"`
}

type NotificationStatus string

const (
	NotificationUnread   NotificationStatus = "unread"
	NotificationRead     NotificationStatus = "read"
	NotificationArchived NotificationStatus = "archived"
)

func (s NotificationStatus) Valid() bool {
	switch s {
	case NotificationUnread, NotificationRead, NotificationArchived:
		return true
	}
	return false
}

const NotificationTypeAnnouncement = "announcement"

type Notification struct {
	ID        bson.ObjectID      `json:"id" bson:"_id,omitempty"`
	UserID    bson.ObjectID      `json:"userId" bson:"user_id"`
	Type      string             `json:"type" bson:"type"`
	Title     string             `json:"title" bson:"title"`
	Body      string             `json:"body" bson:"body"`
	Status    NotificationStatus `json:"status" bson:"status"`
	ReadAt    *time.Time         `json:"readAt,omitempty" bson:"read_at,omitempty"`
	CreatedAt time.Time          `json:"createdAt" bson:"created_at"`
}

type UpdateNotificationRequest struct {
	Status NotificationStatus `json:"status" binding:"required,oneof=unread read archived"`
}

// AnnouncementEvent is published on the broker after an announcement fan-out.
type AnnouncementEvent struct {
	AnnouncementID string   `json:"announcementId"`
	Title          string   `json:"title"`
	Content        string   `json:"content"`
	Recipients     []string `json:"recipients"`
}
