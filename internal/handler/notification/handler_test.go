package notification

import (
	"context"
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/training-api/internal/handler/handlertest"
	"github.com/jwalitptl/training-api/internal/model"
	"github.com/jwalitptl/training-api/internal/repository/inmem"
	"github.com/jwalitptl/training-api/internal/service/notification"
	"github.com/jwalitptl/training-api/pkg/messaging"
	"github.com/jwalitptl/training-api/pkg/metrics"
)

func TestAnnouncementFlow(t *testing.T) {
	db := inmem.New()
	users := inmem.NewUserRepository(db)
	admin := &model.User{Email: "admin@example.com", Name: "Admin", Role: model.RoleAdmin}
	learner := &model.User{Email: "learner@example.com", Name: "Learner", Role: model.RoleIndividual}
	corp := &model.User{Email: "corp@example.com", Name: "Corp", Role: model.RoleCorporate}
	for _, u := range []*model.User{admin, learner, corp} {
		require.NoError(t, users.Create(context.Background(), u))
	}

	auth := &handlertest.Auth{}
	auth.Add("admin", admin.ID, admin.Role)
	auth.Add("learner", learner.ID, learner.Role)
	auth.Add("corp", corp.ID, corp.Role)

	svc := notification.NewService(inmem.NewAnnouncementRepository(db), inmem.NewNotificationRepository(db),
		users, messaging.NopBroker{}, metrics.NewMetrics("test", prometheus.NewRegistry()))
	r := handlertest.Engine(auth, NewHandler(svc))

	w := handlertest.Do(t, r, http.MethodPost, "/api/announcements", "learner", map[string]string{
		"title": "x", "content": "y", "targetAudience": "all",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = handlertest.Do(t, r, http.MethodPost, "/api/announcements", "admin", map[string]string{
		"title": "x", "content": "y", "targetAudience": "everyone",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = handlertest.Do(t, r, http.MethodPost, "/api/announcements", "admin", map[string]string{
		"title": "New courses", "content": "Spring catalog is live", "targetAudience": "individual",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var a model.Announcement
	handlertest.Decode(t, w, &a)

	var views []model.AnnouncementView
	w = handlertest.Do(t, r, http.MethodGet, "/api/announcements", "corp", nil)
	handlertest.Decode(t, w, &views)
	assert.Empty(t, views)

	w = handlertest.Do(t, r, http.MethodGet, "/api/announcements", "learner", nil)
	handlertest.Decode(t, w, &views)
	require.Len(t, views, 1)
	assert.False(t, views[0].IsRead)

	w = handlertest.Do(t, r, http.MethodPost, "/api/announcements/"+a.ID.Hex()+"/read", "learner", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = handlertest.Do(t, r, http.MethodGet, "/api/announcements", "learner", nil)
	handlertest.Decode(t, w, &views)
	require.Len(t, views, 1)
	assert.True(t, views[0].IsRead)

	var notes []model.Notification
	w = handlertest.Do(t, r, http.MethodGet, "/api/notifications?status=unread", "learner", nil)
	require.Equal(t, http.StatusOK, w.Code)
	handlertest.Decode(t, w, &notes)
	require.Len(t, notes, 1)
	assert.Equal(t, "New courses", notes[0].Title)

	w = handlertest.Do(t, r, http.MethodPatch, "/api/notifications/"+notes[0].ID.Hex(), "learner", map[string]string{"status": "gone"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = handlertest.Do(t, r, http.MethodPatch, "/api/notifications/"+notes[0].ID.Hex(), "corp", map[string]string{"status": "read"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = handlertest.Do(t, r, http.MethodPatch, "/api/notifications/"+notes[0].ID.Hex(), "learner", map[string]string{"status": "read"})
	require.Equal(t, http.StatusOK, w.Code)

	w = handlertest.Do(t, r, http.MethodGet, "/api/notifications?status=bogus", "learner", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
