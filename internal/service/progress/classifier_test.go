package progress

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/jwalitptl/training-api/internal/model"
	"github.com/jwalitptl/training-api/internal/repository/inmem"
)

type fixture struct {
	db         *inmem.DB
	classifier *Classifier
}

func newFixture() *fixture {
	db := inmem.New()
	return &fixture{
		db:         db,
		classifier: NewClassifier(inmem.NewCourseRepository(db), inmem.NewEventRepository(db)),
	}
}

func (f *fixture) course(t *testing.T, title string) *model.Course {
	t.Helper()
	c := &model.Course{Title: title, Status: model.CatalogStatusPublished}
	require.NoError(t, inmem.NewCourseRepository(f.db).Create(context.Background(), c))
	return c
}

func (f *fixture) event(t *testing.T, title string) *model.Event {
	t.Helper()
	e := &model.Event{Title: title, Status: model.CatalogStatusPublished}
	require.NoError(t, inmem.NewEventRepository(f.db).Create(context.Background(), e))
	return e
}

func enrollment(target bson.ObjectID, status model.EnrollmentStatus) *model.Enrollment {
	return &model.Enrollment{ID: bson.NewObjectID(), UserID: bson.NewObjectID(), EventID: target, Status: status}
}

func ids(list []model.ClassifiedEnrollment) []bson.ObjectID {
	out := make([]bson.ObjectID, 0, len(list))
	for _, e := range list {
		out = append(out, e.ID)
	}
	return out
}

func TestClassify_PartitionsByCollection(t *testing.T) {
	f := newFixture()
	x := f.course(t, "Course X")
	y := f.course(t, "Course Y")
	z := f.event(t, "Event Z")

	list := []*model.Enrollment{
		enrollment(x.ID, model.EnrollmentStatusCompleted),
		enrollment(z.ID, model.EnrollmentStatusEnrolled),
		enrollment(y.ID, model.EnrollmentStatusInProgress),
	}

	got, err := f.classifier.Classify(context.Background(), list)
	require.NoError(t, err)

	assert.Equal(t, []bson.ObjectID{list[0].ID, list[2].ID}, ids(got.Courses))
	assert.Equal(t, []bson.ObjectID{list[1].ID}, ids(got.Events))
	assert.Empty(t, got.Unresolved)
	assert.Empty(t, got.Ambiguous)

	assert.Equal(t, model.TargetCourse, got.Courses[0].Target.Kind)
	assert.Equal(t, "Course X", got.Courses[0].Title())
	assert.Nil(t, got.Courses[0].Target.Event)
	assert.Equal(t, model.TargetEvent, got.Events[0].Target.Kind)
	assert.Equal(t, "Event Z", got.Events[0].Title())
}

func TestClassify_UnresolvedDroppedFromBuckets(t *testing.T) {
	f := newFixture()
	x := f.course(t, "Course X")
	orphan := enrollment(bson.NewObjectID(), model.EnrollmentStatusEnrolled)

	got, err := f.classifier.Classify(context.Background(), []*model.Enrollment{
		enrollment(x.ID, model.EnrollmentStatusEnrolled),
		orphan,
	})
	require.NoError(t, err)

	assert.Len(t, got.Courses, 1)
	assert.Empty(t, got.Events)
	require.Len(t, got.Unresolved, 1)
	assert.Equal(t, orphan.ID, got.Unresolved[0].ID)
	assert.Equal(t, model.TargetUnresolved, got.Unresolved[0].Target.Kind)
	assert.Empty(t, got.Unresolved[0].Title())
	assert.Len(t, got.All, 2)
}

func TestClassify_RoundTrip(t *testing.T) {
	f := newFixture()
	var targets []bson.ObjectID
	for i := 0; i < 4; i++ {
		targets = append(targets, f.course(t, "c").ID, f.event(t, "e").ID)
	}
	targets = append(targets, bson.NewObjectID())

	statuses := []model.EnrollmentStatus{
		model.EnrollmentStatusEnrolled,
		model.EnrollmentStatusInProgress,
		model.EnrollmentStatusCompleted,
		model.EnrollmentStatusCancelled,
	}
	var list []*model.Enrollment
	for i := 0; i < 25; i++ {
		list = append(list, enrollment(targets[i%len(targets)], statuses[i%len(statuses)]))
	}

	got, err := f.classifier.Classify(context.Background(), list)
	require.NoError(t, err)

	merged := map[bson.ObjectID]int{}
	for _, bucket := range [][]model.ClassifiedEnrollment{got.Courses, got.Events, got.Unresolved} {
		for _, e := range bucket {
			merged[e.ID]++
		}
	}
	require.Len(t, merged, len(list))
	for _, e := range list {
		assert.Equal(t, 1, merged[e.ID], "enrollment %s must land in exactly one bucket", e.ID.Hex())
	}
}

func TestClassify_IDInBothCollectionsIsFlagged(t *testing.T) {
	f := newFixture()
	shared := bson.NewObjectID()
	require.NoError(t, inmem.NewCourseRepository(f.db).Create(context.Background(), &model.Course{ID: shared, Title: "c"}))
	require.NoError(t, inmem.NewEventRepository(f.db).Create(context.Background(), &model.Event{ID: shared, Title: "e"}))

	got, err := f.classifier.Classify(context.Background(), []*model.Enrollment{
		enrollment(shared, model.EnrollmentStatusEnrolled),
		enrollment(shared, model.EnrollmentStatusCompleted),
	})
	require.NoError(t, err)

	assert.Len(t, got.Courses, 2)
	assert.Empty(t, got.Events)
	assert.Equal(t, []bson.ObjectID{shared}, got.Ambiguous)
}

func TestClassify_LookupFailureFailsWhole(t *testing.T) {
	f := newFixture()
	x := f.course(t, "Course X")
	f.db.FailOn("events.find_by_ids", errors.New("connection reset"))

	got, err := f.classifier.Classify(context.Background(), []*model.Enrollment{
		enrollment(x.ID, model.EnrollmentStatusEnrolled),
	})
	require.Error(t, err)
	assert.Nil(t, got)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestClassify_Empty(t *testing.T) {
	f := newFixture()

	got, err := f.classifier.Classify(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got.All)
	assert.NotNil(t, got.Courses)
	assert.NotNil(t, got.Events)
}
