package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/training-api/internal/model"
	"github.com/jwalitptl/training-api/internal/repository/inmem"
	apperrors "github.com/jwalitptl/training-api/pkg/errors"
	"github.com/jwalitptl/training-api/pkg/security"
)

func newService() *Service {
	return NewService(inmem.NewUserRepository(inmem.New()), security.NewBcryptHasher(bcrypt.MinCost))
}

func TestCreateUser_SubAdmin(t *testing.T) {
	svc := newService()

	u, err := svc.CreateUser(context.Background(), &model.CreateUserRequest{
		Email: "Sub@Admin.io", Name: "Sub", Password: "longenough", Role: model.RoleSubAdmin,
	})
	require.NoError(t, err)
	assert.Equal(t, "sub@admin.io", u.Email)
	assert.Equal(t, model.RoleSubAdmin, u.Role)
	assert.NotEqual(t, "longenough", u.PasswordHash)
}

func TestCreateUser_DuplicateEmailIsBadRequest(t *testing.T) {
	svc := newService()
	req := &model.CreateUserRequest{Email: "a@b.io", Name: "A", Password: "longenough", Role: model.RoleStaff}

	_, err := svc.CreateUser(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.CreateUser(context.Background(), req)
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, 400, appErr.StatusCode())
	assert.Contains(t, appErr.Message, "already exists")
}

func TestUpdateStatus(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	u, err := svc.CreateUser(ctx, &model.CreateUserRequest{Email: "a@b.io", Name: "A", Password: "longenough", Role: model.RoleIndividual})
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(ctx, u.ID, model.UserStatusSubscribed)
	require.NoError(t, err)
	assert.Equal(t, model.UserStatusSubscribed, updated.Status)

	_, err = svc.UpdateStatus(ctx, u.ID, "gold")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrBadRequest))

	_, err = svc.UpdateStatus(ctx, bson.NewObjectID(), model.UserStatusSubscribed)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrNotFound))
}

func TestListUsers_FiltersAndPages(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	for _, email := range []string{"a@x.io", "b@x.io", "c@x.io"} {
		_, err := svc.CreateUser(ctx, &model.CreateUserRequest{Email: email, Name: email, Password: "longenough", Role: model.RoleIndividual})
		require.NoError(t, err)
	}
	_, err := svc.CreateUser(ctx, &model.CreateUserRequest{Email: "admin@x.io", Name: "Admin", Password: "longenough", Role: model.RoleAdmin})
	require.NoError(t, err)

	users, total, err := svc.ListUsers(ctx, &model.UserFilters{
		Role:       model.RoleIndividual,
		Pagination: model.Pagination{Page: 1, PageSize: 2},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, users, 2)

	_, _, err = svc.ListUsers(ctx, &model.UserFilters{Role: "ROOT"})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrBadRequest))
}

func TestDeleteUser_Unknown(t *testing.T) {
	err := newService().DeleteUser(context.Background(), bson.NewObjectID())
	assert.True(t, apperrors.HasCode(err, apperrors.ErrNotFound))
}
