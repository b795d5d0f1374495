package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/jwalitptl/training-api/internal/model"
	"github.com/jwalitptl/training-api/internal/repository/inmem"
	apperrors "github.com/jwalitptl/training-api/pkg/errors"
	"github.com/jwalitptl/training-api/pkg/metrics"
)

type fixture struct {
	db  *inmem.DB
	svc *Service
	now time.Time
}

func newFixture(ttl time.Duration) *fixture {
	db := inmem.New()
	f := &fixture{
		db:  db,
		now: time.Now().UTC(),
	}
	f.svc = NewService(inmem.NewStatsRepository(db), ttl, metrics.NewMetrics("test", prometheus.NewRegistry()))
	f.svc.now = func() time.Time { return f.now }
	return f
}

func (f *fixture) seed(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	users := inmem.NewUserRepository(f.db)
	courses := inmem.NewCourseRepository(f.db)
	events := inmem.NewEventRepository(f.db)
	enrollments := inmem.NewEnrollmentRepository(f.db)

	recent := f.now.Add(-2 * time.Minute)
	old := f.now.Add(-10 * 24 * time.Hour)
	for _, u := range []*model.User{
		{Email: "a@x.io", Role: model.RoleIndividual, Status: model.UserStatusSubscribed, LastActivity: &recent},
		{Email: "b@x.io", Role: model.RoleIndividual, Status: model.UserStatusNotSubscribed, LastActivity: &old},
		{Email: "c@x.io", Role: model.RoleCorporate, Status: model.UserStatusSubscribed},
	} {
		require.NoError(t, users.Create(ctx, u))
	}

	go101 := &model.Course{Title: "Go 101", Status: model.CatalogStatusPublished, Category: "dev"}
	k8s := &model.Course{Title: "K8s", Status: model.CatalogStatusDraft, Category: "ops"}
	meetup := &model.Event{Title: "Meetup", Status: model.CatalogStatusPublished}
	require.NoError(t, courses.Create(ctx, go101))
	require.NoError(t, courses.Create(ctx, k8s))
	require.NoError(t, events.Create(ctx, meetup))

	for _, e := range []*model.Enrollment{
		{UserID: bson.NewObjectID(), EventID: go101.ID, Status: model.EnrollmentStatusCompleted},
		{UserID: bson.NewObjectID(), EventID: go101.ID, Status: model.EnrollmentStatusInProgress},
		{UserID: bson.NewObjectID(), EventID: k8s.ID, Status: model.EnrollmentStatusEnrolled},
		{UserID: bson.NewObjectID(), EventID: meetup.ID, Status: model.EnrollmentStatusCompleted},
	} {
		require.NoError(t, enrollments.Create(ctx, e))
	}

	f.db.AddMembership(&model.Membership{SubjectType: model.SubjectUser, Status: model.MembershipActive, CreatedAt: f.now})
	f.db.AddMembership(&model.Membership{SubjectType: model.SubjectCorporate, Status: model.MembershipExpired, CreatedAt: f.now})
}

func TestMetric_RejectsUnknownMetric(t *testing.T) {
	f := newFixture(0)

	_, err := f.svc.Metric(context.Background(), "revenueByMoon", model.DateRange{})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrBadRequest))
}

func TestMetric_RejectsInvertedRange(t *testing.T) {
	f := newFixture(0)
	r := model.DateRange{Start: f.now, End: f.now.Add(-time.Hour)}

	_, err := f.svc.Metric(context.Background(), model.MetricOverview, r)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrBadRequest))
}

func TestMetric_Overview(t *testing.T) {
	f := newFixture(0)
	f.seed(t)

	got, err := f.svc.Metric(context.Background(), model.MetricOverview, model.DateRange{})
	require.NoError(t, err)

	overview, ok := got.(*model.OverviewMetrics)
	require.True(t, ok)
	assert.EqualValues(t, 3, overview.TotalUsers)
	assert.EqualValues(t, 2, overview.UsersByRole["INDIVIDUAL"])
	assert.EqualValues(t, 2, overview.TotalCourses)
	assert.EqualValues(t, 1, overview.TotalEvents)
	assert.EqualValues(t, 4, overview.TotalEnrollments)
	assert.EqualValues(t, 1, overview.ActiveMemberships)
	assert.Equal(t, 50, overview.CompletionRate)
}

func TestMetric_CoursesRanksTopCourses(t *testing.T) {
	f := newFixture(0)
	f.seed(t)

	got, err := f.svc.Metric(context.Background(), model.MetricCourses, model.DateRange{})
	require.NoError(t, err)

	courses := got.(*model.CatalogMetrics)
	assert.EqualValues(t, 2, courses.Total)
	assert.EqualValues(t, 1, courses.ByStatus["draft"])
	assert.EqualValues(t, 1, courses.ByCategory["dev"])
	require.Len(t, courses.Top, 2)
	assert.Equal(t, "Go 101", courses.Top[0].Title)
	assert.EqualValues(t, 2, courses.Top[0].Enrollments)
	assert.EqualValues(t, 1, courses.Top[0].Completed)
}

func TestMetric_UserBehavior(t *testing.T) {
	f := newFixture(0)
	f.seed(t)

	got, err := f.svc.Metric(context.Background(), model.MetricUserBehavior, model.DateRange{})
	require.NoError(t, err)

	behavior := got.(*model.UserBehaviorMetrics)
	assert.EqualValues(t, 1, behavior.ActiveNow)
	assert.EqualValues(t, 1, behavior.ActiveLast7d)
	assert.EqualValues(t, 2, behavior.ActiveLast30d)
}

func TestMetric_Memberships(t *testing.T) {
	f := newFixture(0)
	f.seed(t)

	got, err := f.svc.Metric(context.Background(), model.MetricMemberships, model.DateRange{})
	require.NoError(t, err)

	m := got.(*model.MembershipMetrics)
	assert.EqualValues(t, 1, m.ByStatus["active"])
	assert.EqualValues(t, 1, m.BySubjectType["CORPORATE"])
}

func TestMetric_CachesResults(t *testing.T) {
	f := newFixture(time.Minute)
	f.seed(t)
	ctx := context.Background()

	first, err := f.svc.Metric(ctx, model.MetricCorporates, model.DateRange{})
	require.NoError(t, err)

	// A cached result is served even when the store is down.
	f.db.FailOn("corporate_profiles.stats", errors.New("down"))
	second, err := f.svc.Metric(ctx, model.MetricCorporates, model.DateRange{})
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.svc.metrics.CacheLookups.WithLabelValues("analytics", "hit")))

	_, err = f.svc.Metric(ctx, model.MetricCorporates, model.DateRange{Start: f.now.Add(-time.Hour)})
	assert.Error(t, err)
}

func TestMetric_StoreFailureIsInternal(t *testing.T) {
	f := newFixture(0)
	f.db.FailOn("users.stats", errors.New("timeout"))

	_, err := f.svc.Metric(context.Background(), model.MetricIndividuals, model.DateRange{})
	require.Error(t, err)
	_, isApp := apperrors.As(err)
	assert.False(t, isApp)
}
