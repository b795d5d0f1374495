// Package notification publishes announcements and manages the per-user
// notifications they fan out to.
package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/jwalitptl/training-api/internal/model"
	"github.com/jwalitptl/training-api/internal/repository"
	apperrors "github.com/jwalitptl/training-api/pkg/errors"
	"github.com/jwalitptl/training-api/pkg/messaging"
	"github.com/jwalitptl/training-api/pkg/metrics"
)

// EventAnnouncementCreated is the broker message type for AnnouncementEvent.
const EventAnnouncementCreated = "announcement.created"

type NotificationServicer interface {
	Announce(ctx context.Context, author model.Viewer, req *model.CreateAnnouncementRequest) (*model.Announcement, error)
	Announcements(ctx context.Context, viewer model.Viewer) ([]model.AnnouncementView, error)
	MarkAnnouncementRead(ctx context.Context, viewer model.Viewer, id bson.ObjectID) error
	Notifications(ctx context.Context, viewer model.Viewer, status model.NotificationStatus) ([]*model.Notification, error)
	UpdateNotification(ctx context.Context, viewer model.Viewer, id bson.ObjectID, status model.NotificationStatus) error
}

type Service struct {
	announcements repository.AnnouncementRepository
	notifications repository.NotificationRepository
	users         repository.UserRepository
	broker        messaging.Broker
	metrics       *metrics.Metrics
	now           func() time.Time
}

func NewService(announcements repository.AnnouncementRepository, notifications repository.NotificationRepository,
	users repository.UserRepository, broker messaging.Broker, m *metrics.Metrics) *Service {
	return &Service{
		announcements: announcements,
		notifications: notifications,
		users:         users,
		broker:        broker,
		metrics:       m,
		now:           time.Now,
	}
}

// Announce stores the announcement, then fans it out to one notification
// per targeted user. Fan-out is best effort: a failure is logged and the
// announcement still succeeds.
func (s *Service) Announce(ctx context.Context, author model.Viewer, req *model.CreateAnnouncementRequest) (*model.Announcement, error) {
	if !req.TargetAudience.Valid() {
		return nil, apperrors.BadRequest(fmt.Sprintf("invalid target audience %q", req.TargetAudience), nil)
	}

	a := &model.Announcement{
		Title:          strings.TrimSpace(req.Title),
		Content:        req.Content,
		TargetAudience: req.TargetAudience,
		IsActive:       true,
		CreatedBy:      author.ID,
	}
	if err := s.announcements.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to create announcement: %w", err)
	}

	recipients, err := s.fanOut(ctx, a)
	if err != nil {
		if s.metrics != nil {
			s.metrics.NotificationFanoutFail.Inc()
		}
		zerolog.Ctx(ctx).Error().Err(err).
			Str("announcement_id", a.ID.Hex()).
			Str("audience", string(a.TargetAudience)).
			Msg("announcement fan-out failed")
		return a, nil
	}

	s.publish(ctx, a, recipients)
	return a, nil
}

func (s *Service) fanOut(ctx context.Context, a *model.Announcement) ([]*model.User, error) {
	role, _ := a.TargetAudience.Role()
	users, err := s.users.ListByRole(ctx, role)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipients: %w", err)
	}
	if len(users) == 0 {
		return nil, nil
	}

	batch := make([]*model.Notification, 0, len(users))
	for _, u := range users {
		batch = append(batch, &model.Notification{
			UserID: u.ID,
			Type:   model.NotificationTypeAnnouncement,
			Title:  a.Title,
			Body:   a.Content,
			Status: model.NotificationUnread,
		})
	}
	if err := s.notifications.CreateMany(ctx, batch); err != nil {
		return nil, fmt.Errorf("failed to create notifications: %w", err)
	}
	if s.metrics != nil {
		s.metrics.NotificationsCreated.Add(float64(len(batch)))
	}
	return users, nil
}

func (s *Service) publish(ctx context.Context, a *model.Announcement, recipients []*model.User) {
	emails := make([]string, 0, len(recipients))
	for _, u := range recipients {
		emails = append(emails, u.Email)
	}
	msg, err := messaging.NewMessage(EventAnnouncementCreated, model.AnnouncementEvent{
		AnnouncementID: a.ID.Hex(),
		Title:          a.Title,
		Content:        a.Content,
		Recipients:     emails,
	})
	if err == nil {
		err = s.broker.Publish(ctx, messaging.ChannelAnnouncements, msg)
	}
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("announcement_id", a.ID.Hex()).Msg("failed to publish announcement event")
	}
}

// audiencesFor lists the audiences a role sees. Admins and sub-admins see
// every announcement.
func audiencesFor(role model.Role) []model.Audience {
	if role.IsAdmin() {
		return nil
	}
	switch role {
	case model.RoleIndividual:
		return []model.Audience{model.AudienceAll, model.AudienceIndividual}
	case model.RoleCorporate:
		return []model.Audience{model.AudienceAll, model.AudienceCorporate}
	}
	return []model.Audience{model.AudienceAll}
}

func (s *Service) Announcements(ctx context.Context, viewer model.Viewer) ([]model.AnnouncementView, error) {
	list, err := s.announcements.ListActive(ctx, audiencesFor(viewer.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to list announcements: %w", err)
	}
	views := make([]model.AnnouncementView, 0, len(list))
	for _, a := range list {
		views = append(views, model.AnnouncementView{Announcement: a, IsRead: a.ReadByUser(viewer.ID)})
	}
	return views, nil
}

func (s *Service) MarkAnnouncementRead(ctx context.Context, viewer model.Viewer, id bson.ObjectID) error {
	a, err := s.announcements.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("announcement", err)
		}
		return fmt.Errorf("failed to get announcement: %w", err)
	}
	if !viewer.Role.IsAdmin() && !a.TargetAudience.Matches(viewer.Role) {
		return apperrors.NotFound("announcement", repository.ErrNotFound)
	}
	if err := s.announcements.MarkRead(ctx, id, viewer.ID); err != nil {
		return fmt.Errorf("failed to mark announcement read: %w", err)
	}
	return nil
}

func (s *Service) Notifications(ctx context.Context, viewer model.Viewer, status model.NotificationStatus) ([]*model.Notification, error) {
	if status != "" && !status.Valid() {
		return nil, apperrors.BadRequest(fmt.Sprintf("invalid status %q", status), nil)
	}
	list, err := s.notifications.List(ctx, viewer.ID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return list, nil
}

func (s *Service) UpdateNotification(ctx context.Context, viewer model.Viewer, id bson.ObjectID, status model.NotificationStatus) error {
	if !status.Valid() {
		return apperrors.BadRequest(fmt.Sprintf("invalid status %q", status), nil)
	}
	if err := s.notifications.UpdateStatus(ctx, id, viewer.ID, status, s.now().UTC()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("notification", err)
		}
		return fmt.Errorf("failed to update notification: %w", err)
	}
	return nil
}
