package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/jwalitptl/training-api/internal/model"
)

var (
	// ErrNotFound is returned when a lookup by id or key matches nothing.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique index rejects a write.
	ErrDuplicate = errors.New("duplicate record")
)

// All repository interfaces in one file
type (
	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id bson.ObjectID) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		FindByIDs(ctx context.Context, ids []bson.ObjectID) ([]*model.User, error)
		List(ctx context.Context, filters *model.UserFilters) ([]*model.User, int64, error)
		// ListByRole returns every user holding role, or all users when role is empty.
		ListByRole(ctx context.Context, role model.Role) ([]*model.User, error)
		UpdateStatus(ctx context.Context, id bson.ObjectID, status model.UserStatus) error
		TouchLogin(ctx context.Context, id bson.ObjectID, at time.Time) error
		TouchActivity(ctx context.Context, id bson.ObjectID, at time.Time) error
		Delete(ctx context.Context, id bson.ObjectID) error
	}

	ProfileRepository interface {
		CreateIndividual(ctx context.Context, profile *model.IndividualProfile) error
		GetIndividualByUser(ctx context.Context, userID bson.ObjectID) (*model.IndividualProfile, error)
		CreateCorporate(ctx context.Context, profile *model.CorporateProfile) error
		GetCorporate(ctx context.Context, id bson.ObjectID) (*model.CorporateProfile, error)
		GetCorporateByOwner(ctx context.Context, ownerID bson.ObjectID) (*model.CorporateProfile, error)
	}

	StaffRepository interface {
		Create(ctx context.Context, staff *model.CorporateStaff) error
		Get(ctx context.Context, id bson.ObjectID) (*model.CorporateStaff, error)
		GetByUser(ctx context.Context, userID bson.ObjectID) (*model.CorporateStaff, error)
		ListByCorporate(ctx context.Context, corporateID bson.ObjectID) ([]*model.CorporateStaff, error)
		Update(ctx context.Context, staff *model.CorporateStaff) error
		SetApproval(ctx context.Context, id bson.ObjectID, status model.ApprovalStatus) error
	}

	CourseRepository interface {
		Create(ctx context.Context, course *model.Course) error
		Get(ctx context.Context, id bson.ObjectID) (*model.Course, error)
		Update(ctx context.Context, course *model.Course) error
		Delete(ctx context.Context, id bson.ObjectID) error
		List(ctx context.Context, filters *model.CatalogFilters) ([]*model.Course, int64, error)
		FindByIDs(ctx context.Context, ids []bson.ObjectID) ([]*model.Course, error)
		CountByCreator(ctx context.Context, userID bson.ObjectID) (int64, error)
	}

	EventRepository interface {
		Create(ctx context.Context, event *model.Event) error
		Get(ctx context.Context, id bson.ObjectID) (*model.Event, error)
		Update(ctx context.Context, event *model.Event) error
		Delete(ctx context.Context, id bson.ObjectID) error
		List(ctx context.Context, filters *model.CatalogFilters) ([]*model.Event, int64, error)
		FindByIDs(ctx context.Context, ids []bson.ObjectID) ([]*model.Event, error)
		CountByCreator(ctx context.Context, userID bson.ObjectID) (int64, error)
	}

	EnrollmentRepository interface {
		Create(ctx context.Context, enrollment *model.Enrollment) error
		Get(ctx context.Context, id bson.ObjectID) (*model.Enrollment, error)
		Update(ctx context.Context, enrollment *model.Enrollment) error
		ListByUser(ctx context.Context, userID bson.ObjectID) ([]*model.Enrollment, error)
		// FindActive returns the user's non-cancelled enrollment in target.
		FindActive(ctx context.Context, userID, targetID bson.ObjectID) (*model.Enrollment, error)
	}

	MembershipRepository interface {
		// Latest returns the most recently created membership of the subject.
		Latest(ctx context.Context, subjectType model.SubjectType, subjectID bson.ObjectID) (*model.Membership, error)
		ListPlans(ctx context.Context, audience model.SubjectType) ([]*model.Plan, error)
		GetPlan(ctx context.Context, id bson.ObjectID) (*model.Plan, error)
		// Purchase inserts payment and membership and expires the subject's
		// other active memberships, in one transaction.
		Purchase(ctx context.Context, payment *model.Payment, membership *model.Membership) error
	}

	MessageRepository interface {
		Create(ctx context.Context, msg *model.Message) error
		Get(ctx context.Context, id bson.ObjectID) (*model.Message, error)
		// Thread lists messages between a and b in both directions, oldest first.
		Thread(ctx context.Context, a, b bson.ObjectID) ([]*model.Message, error)
		MarkRead(ctx context.Context, recipientID, senderID bson.ObjectID, at time.Time) (int64, error)
		UpdateContent(ctx context.Context, id bson.ObjectID, content string, editedAt time.Time) error
		CountUnread(ctx context.Context, recipientID bson.ObjectID) (int64, error)
	}

	AnnouncementRepository interface {
		Create(ctx context.Context, a *model.Announcement) error
		Get(ctx context.Context, id bson.ObjectID) (*model.Announcement, error)
		ListActive(ctx context.Context, audiences []model.Audience) ([]*model.Announcement, error)
		MarkRead(ctx context.Context, id, userID bson.ObjectID) error
	}

	NotificationRepository interface {
		CreateMany(ctx context.Context, notifications []*model.Notification) error
		List(ctx context.Context, userID bson.ObjectID, status model.NotificationStatus) ([]*model.Notification, error)
		UpdateStatus(ctx context.Context, id, userID bson.ObjectID, status model.NotificationStatus, at time.Time) error
	}

	ContentRepository interface {
		Get(ctx context.Context, key string) (*model.SiteContent, error)
		Upsert(ctx context.Context, content *model.SiteContent) error
	}

	// StatsRepository answers the analytics count queries.
	StatsRepository interface {
		Count(ctx context.Context, collection string, q Criteria) (int64, error)
		GroupCount(ctx context.Context, collection, field string, q Criteria) (map[string]int64, error)
		Sum(ctx context.Context, collection, field string, q Criteria) (float64, error)
		// TopTargets ranks enrollment targets in collection ("courses" or
		// "events") by enrollment count.
		TopTargets(ctx context.Context, collection string, limit int, r model.DateRange) ([]model.TargetCount, error)
	}

	AuditRepository interface {
		Create(ctx context.Context, log *model.AuditLog) error
		List(ctx context.Context, filters *model.AuditFilters) ([]*model.AuditLog, int64, error)
		Cleanup(ctx context.Context, before time.Time) (int64, error)
	}
)

// Criteria narrows a stats query. Match holds field equality filters; when
// DateField is set, Range bounds it. Since additionally bounds DateField
// from below.
type Criteria struct {
	Match     map[string]interface{}
	DateField string
	Range     model.DateRange
	Since     time.Time
}
