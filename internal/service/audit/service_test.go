package audit

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/training-api/internal/model"
	"github.com/jwalitptl/training-api/internal/repository/inmem"
)

func TestLog_DefaultsMetadata(t *testing.T) {
	svc := NewService(inmem.NewAuditRepository(inmem.New()))
	ctx := context.Background()

	require.NoError(t, svc.Log(ctx, Entry{ActorID: "u1", Action: model.AuditActionCreate, EntityType: "courses"}))
	require.NoError(t, svc.Log(ctx, Entry{ActorID: "u1", Action: model.AuditActionDelete, EntityType: "courses",
		Metadata: map[string]string{"path": "/api/courses/1"}}))

	logs, total, err := svc.List(ctx, &model.AuditFilters{EntityType: "courses"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.JSONEq(t, `{"path":"/api/courses/1"}`, string(logs[0].Metadata))
	assert.Equal(t, json.RawMessage(`{}`), logs[1].Metadata)
}

func TestCleanup_RemovesExpired(t *testing.T) {
	svc := NewService(inmem.NewAuditRepository(inmem.New()))
	ctx := context.Background()
	now := time.Now()

	svc.now = func() time.Time { return now.Add(-40 * 24 * time.Hour) }
	require.NoError(t, svc.Log(ctx, Entry{Action: "old"}))
	svc.now = func() time.Time { return now }
	require.NoError(t, svc.Log(ctx, Entry{Action: "fresh"}))

	removed, err := svc.Cleanup(ctx, 30*24*time.Hour)
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	logs, _, err := svc.List(ctx, &model.AuditFilters{})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "fresh", logs[0].Action)
}

func TestAuditLogger_AsyncSurvivesCancelledRequest(t *testing.T) {
	svc := NewService(inmem.NewAuditRepository(inmem.New()))
	logger := NewAuditLogger(svc)

	ctx, cancel := context.WithCancel(context.Background())
	logger.Log(ctx, Entry{Action: model.AuditActionUpdate})
	cancel()
	logger.Wait()

	_, total, err := svc.List(context.Background(), &model.AuditFilters{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}
