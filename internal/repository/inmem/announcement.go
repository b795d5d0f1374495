package inmem

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/jwalitptl/training-api/internal/model"
	"github.com/jwalitptl/training-api/internal/repository"
)

type announcementRepository struct{ db *DB }

func NewAnnouncementRepository(db *DB) repository.AnnouncementRepository {
	return &announcementRepository{db: db}
}

func (r *announcementRepository) Create(_ context.Context, a *model.Announcement) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.fail("announcements.create"); err != nil {
		return err
	}
	if a.ID.IsZero() {
		a.ID = bson.NewObjectID()
	}
	if a.ReadBy == nil {
		a.ReadBy = []bson.ObjectID{}
	}
	a.CreatedAt = time.Now().UTC()
	r.db.announcements = append(r.db.announcements, clone(a))
	return nil
}

func (r *announcementRepository) Get(_ context.Context, id bson.ObjectID) (*model.Announcement, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	for _, a := range r.db.announcements {
		if a.ID == id {
			c := clone(a)
			c.ReadBy = append([]bson.ObjectID(nil), a.ReadBy...)
			return c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *announcementRepository) ListActive(_ context.Context, audiences []model.Audience) ([]*model.Announcement, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	want := make(map[model.Audience]bool, len(audiences))
	for _, a := range audiences {
		want[a] = true
	}
	out := cloneAll(reversed(r.db.announcements), func(a *model.Announcement) bool {
		return a.IsActive && (len(want) == 0 || want[a.TargetAudience])
	})
	for _, a := range out {
		a.ReadBy = append([]bson.ObjectID(nil), a.ReadBy...)
	}
	return out, nil
}

func (r *announcementRepository) MarkRead(_ context.Context, id, userID bson.ObjectID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, a := range r.db.announcements {
		if a.ID != id {
			continue
		}
		if !a.ReadByUser(userID) {
			a.ReadBy = append(a.ReadBy, userID)
		}
		return nil
	}
	return repository.ErrNotFound
}

type notificationRepository struct{ db *DB }

func NewNotificationRepository(db *DB) repository.NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) CreateMany(_ context.Context, notifications []*model.Notification) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.fail("notifications.create_many"); err != nil {
		return err
	}
	now := time.Now().UTC()
	for _, n := range notifications {
		if n.ID.IsZero() {
			n.ID = bson.NewObjectID()
		}
		n.CreatedAt = now
		r.db.notifications = append(r.db.notifications, clone(n))
	}
	return nil
}

func (r *notificationRepository) List(_ context.Context, userID bson.ObjectID, status model.NotificationStatus) ([]*model.Notification, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return cloneAll(reversed(r.db.notifications), func(n *model.Notification) bool {
		return n.UserID == userID && (status == "" || n.Status == status)
	}), nil
}

func (r *notificationRepository) UpdateStatus(_ context.Context, id, userID bson.ObjectID, status model.NotificationStatus, at time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, n := range r.db.notifications {
		if n.ID == id && n.UserID == userID {
			n.Status = status
			if status == model.NotificationRead {
				n.ReadAt = &at
			}
			return nil
		}
	}
	return repository.ErrNotFound
}

type contentRepository struct{ db *DB }

func NewContentRepository(db *DB) repository.ContentRepository {
	return &contentRepository{db: db}
}

func (r *contentRepository) Get(_ context.Context, key string) (*model.SiteContent, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	if c, ok := r.db.content[key]; ok {
		return clone(c), nil
	}
	return nil, repository.ErrNotFound
}

func (r *contentRepository) Upsert(_ context.Context, c *model.SiteContent) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c.UpdatedAt = time.Now().UTC()
	r.db.content[c.Key] = clone(c)
	return nil
}
