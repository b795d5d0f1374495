package message

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/jwalitptl/training-api/internal/model"
	"github.com/jwalitptl/training-api/internal/repository/inmem"
	apperrors "github.com/jwalitptl/training-api/pkg/errors"
)

type fixture struct {
	svc        *Service
	alice, bob model.Viewer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := inmem.New()
	users := inmem.NewUserRepository(db)
	f := &fixture{svc: NewService(inmem.NewMessageRepository(db), users)}
	for _, v := range []*model.Viewer{&f.alice, &f.bob} {
		u := &model.User{Email: bson.NewObjectID().Hex() + "@x.io", Role: model.RoleIndividual}
		require.NoError(t, users.Create(context.Background(), u))
		*v = model.Viewer{ID: u.ID, Role: u.Role}
	}
	return f
}

func TestThread_MarksIncomingReadOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Send(ctx, f.alice, f.bob.ID, &model.SendMessageRequest{Content: "hi bob"})
	require.NoError(t, err)
	_, err = f.svc.Send(ctx, f.bob, f.alice.ID, &model.SendMessageRequest{Content: "hi alice"})
	require.NoError(t, err)

	n, err := f.svc.UnreadCount(ctx, f.bob)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	first := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return first }
	thread, err := f.svc.Thread(ctx, f.bob, f.alice.ID)
	require.NoError(t, err)
	require.Len(t, thread, 2)
	assert.Equal(t, "hi bob", thread[0].Content)
	require.NotNil(t, thread[0].ReadAt)
	assert.Equal(t, first, *thread[0].ReadAt)
	assert.Nil(t, thread[1].ReadAt, "bob's own message stays unread until alice opens the thread")

	f.svc.now = func() time.Time { return first.Add(time.Hour) }
	thread, err = f.svc.Thread(ctx, f.bob, f.alice.ID)
	require.NoError(t, err)
	assert.Equal(t, first, *thread[0].ReadAt)

	n, err = f.svc.UnreadCount(ctx, f.bob)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestEdit_SenderOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	msg, err := f.svc.Send(ctx, f.alice, f.bob.ID, &model.SendMessageRequest{Content: "helo"})
	require.NoError(t, err)

	_, err = f.svc.Edit(ctx, f.bob, msg.ID, &model.EditMessageRequest{Content: "hacked"})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrForbidden))

	edited, err := f.svc.Edit(ctx, f.alice, msg.ID, &model.EditMessageRequest{Content: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "hello", edited.Content)
	assert.NotNil(t, edited.EditedAt)

	_, err = f.svc.Edit(ctx, f.alice, bson.NewObjectID(), &model.EditMessageRequest{Content: "x"})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrNotFound))
}

func TestSend_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Send(ctx, f.alice, f.alice.ID, &model.SendMessageRequest{Content: "me"})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrBadRequest))

	_, err = f.svc.Send(ctx, f.alice, f.bob.ID, &model.SendMessageRequest{Content: "   "})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrBadRequest))

	_, err = f.svc.Send(ctx, f.alice, bson.NewObjectID(), &model.SendMessageRequest{Content: "anyone?"})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrNotFound))
}
