package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jwalitptl/training-api/internal/model"
	"github.com/jwalitptl/training-api/internal/service/auth"
	"github.com/jwalitptl/training-api/internal/service/notification"
	"github.com/jwalitptl/training-api/pkg/messaging"
	"github.com/jwalitptl/training-api/pkg/metrics"
)

type fakeMailer struct {
	welcomes      []string
	announcements [][]string
	failAfter     int
}

func (f *fakeMailer) SendWelcome(_ context.Context, email string, _ string) error {
	f.welcomes = append(f.welcomes, email)
	return nil
}

func (f *fakeMailer) SendAnnouncement(_ context.Context, recipients []string, _ string, _ string) (int, error) {
	f.announcements = append(f.announcements, recipients)
	if f.failAfter > 0 && len(recipients) > f.failAfter {
		return f.failAfter, errors.New("smtp hiccup")
	}
	return len(recipients), nil
}

func encode(t *testing.T, eventType string, payload interface{}) []byte {
	t.Helper()
	msg, err := messaging.NewMessage(eventType, payload)
	require.NoError(t, err)
	data, err := json.Marshal(msg)
	require.NoError(t, err)
	return data
}

func TestNotificationMailer_Handle(t *testing.T) {
	m := metrics.NewMetrics("test", prometheus.NewRegistry())
	mailer := &fakeMailer{failAfter: 2}
	w := NewNotificationMailer(messaging.NopBroker{}, mailer, m, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, w.Handle(ctx, encode(t, auth.EventUserRegistered, model.UserRegisteredEvent{
		UserID: "u1", Email: "ada@example.com", Name: "Ada",
	})))
	assert.Equal(t, []string{"ada@example.com"}, mailer.welcomes)

	require.NoError(t, w.Handle(ctx, encode(t, notification.EventAnnouncementCreated, model.AnnouncementEvent{
		AnnouncementID: "a1", Title: "Hi", Recipients: []string{"a@example.com", "b@example.com"},
	})))

	err := w.Handle(ctx, encode(t, notification.EventAnnouncementCreated, model.AnnouncementEvent{
		AnnouncementID: "a2", Title: "Hi", Recipients: []string{"a@example.com", "b@example.com", "c@example.com"},
	}))
	require.Error(t, err)

	assert.Equal(t, 5.0, testutil.ToFloat64(m.MailsSent.WithLabelValues("sent")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MailsSent.WithLabelValues("failed")))

	require.NoError(t, w.Handle(ctx, encode(t, "something.else", map[string]string{})))
	assert.Error(t, w.Handle(ctx, []byte("not json")))
}

func TestNotificationMailer_RunStopsWithContext(t *testing.T) {
	w := NewNotificationMailer(messaging.NopBroker{}, &fakeMailer{}, nil, zap.NewNop())
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, w.Run(ctx), context.DeadlineExceeded)
}

type fakeCleaner struct {
	calls     int
	retention time.Duration
	err       error
}

func (f *fakeCleaner) Cleanup(_ context.Context, retention time.Duration) (int64, error) {
	f.calls++
	f.retention = retention
	return 3, f.err
}

func TestAuditCleanupWorker(t *testing.T) {
	c := &fakeCleaner{}
	w := NewAuditCleanupWorker(c, 30, time.Hour, zap.NewNop())

	require.NoError(t, w.RunOnce(context.Background()))
	assert.Equal(t, 30*24*time.Hour, c.retention)

	c.err = errors.New("db down")
	assert.Error(t, w.RunOnce(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w.Start(ctx)
	assert.Equal(t, 3, c.calls)
}
