package catalog

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

func newService() *Service {
	db := inmem.New()
	return NewService(inmem.NewCourseRepository(db), inmem.NewEventRepository(db))
}

func TestCourseLifecycle(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	author := bson.NewObjectID()

	course, err := svc.CreateCourse(ctx, author, &model.CatalogRequest{Title: "  Go 101 ", Category: "dev"})
	require.NoError(t, err)
	assert.Equal(t, "Go 101", course.Title)
	assert.Equal(t, model.CatalogStatusDraft, course.Status)
	assert.Equal(t, model.AccessFree, course.Access)
	assert.Equal(t, author, course.CreatedBy)

	updated, err := svc.UpdateCourse(ctx, course.ID, &model.CatalogRequest{Title: "Go 102", Status: model.CatalogStatusPublished})
	require.NoError(t, err)
	assert.Equal(t, model.CatalogStatusPublished, updated.Status)

	got, err := svc.GetCourse(ctx, course.ID)
	require.NoError(t, err)
	assert.Equal(t, "Go 102", got.Title)

	list, total, err := svc.ListCourses(ctx, &model.CatalogFilters{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, list, 1)

	require.NoError(t, svc.DeleteCourse(ctx, course.ID))
	_, err = svc.GetCourse(ctx, course.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrNotFound))
}

func TestCreateEvent_RejectsInvertedSchedule(t *testing.T) {
	svc := newService()
	start := time.Now()
	end := start.Add(-time.Hour)

	_, err := svc.CreateEvent(context.Background(), bson.NewObjectID(), &model.CatalogRequest{
		Title: "Summit", StartDate: &start, EndDate: &end,
	})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrBadRequest))
}

func TestUpdateEvent_Unknown(t *testing.T) {
	svc := newService()

	_, err := svc.UpdateEvent(context.Background(), bson.NewObjectID(), &model.CatalogRequest{Title: "x"})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrNotFound))
}
