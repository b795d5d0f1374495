package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/jwalitptl/training-api/internal/model"
)

func member(name string, courses []*model.Course, statuses ...model.EnrollmentStatus) StaffProgress {
	var list []*model.Enrollment
	for i, s := range statuses {
		list = append(list, enrollment(courses[i%len(courses)].ID, s))
	}
	cls := Partition(list, courses, nil)
	return StaffProgress{
		Staff:          &model.CorporateStaff{ID: bson.NewObjectID(), Role: "Analyst"},
		User:           &model.User{ID: bson.NewObjectID(), Name: name},
		Classification: cls,
		Stats:          Summarize(list),
	}
}

func TestRollup_EmptyRoster(t *testing.T) {
	stats := Rollup(Partition(nil, nil, nil), nil)

	assert.Equal(t, 0, stats.TotalStaff)
	assert.Equal(t, 0, stats.AverageCompletionRate)
	assert.NotNil(t, stats.StaffCoursesBreakdown)
	assert.Empty(t, stats.StaffCoursesBreakdown)
}

func TestRollup_AveragesStaffRates(t *testing.T) {
	courses := []*model.Course{{ID: bson.NewObjectID()}, {ID: bson.NewObjectID()}}

	staff1 := member("Ada", courses, model.EnrollmentStatusCompleted)
	staff2 := member("Grace", courses, model.EnrollmentStatusCompleted, model.EnrollmentStatusInProgress)
	require.Equal(t, 100, staff1.Stats.CompletionRate)
	require.Equal(t, 50, staff2.Stats.CompletionRate)

	stats := Rollup(Partition(nil, nil, nil), []StaffProgress{staff1, staff2})

	assert.Equal(t, 2, stats.TotalStaff)
	assert.Equal(t, 75, stats.AverageCompletionRate)
	require.Len(t, stats.StaffCoursesBreakdown, 2)
	assert.Equal(t, model.StaffBreakdown{
		StaffID:           staff2.Staff.ID.Hex(),
		Name:              "Grace",
		TotalCourses:      2,
		CompletedCourses:  1,
		InProgressCourses: 1,
	}, stats.StaffCoursesBreakdown[1])
}

func TestRollup_TotalsComeFromCorporateOwnEnrollments(t *testing.T) {
	course := &model.Course{ID: bson.NewObjectID()}
	event := &model.Event{ID: bson.NewObjectID()}
	own := Partition([]*model.Enrollment{
		enrollment(course.ID, model.EnrollmentStatusEnrolled),
		enrollment(event.ID, model.EnrollmentStatusEnrolled),
		enrollment(event.ID, model.EnrollmentStatusCompleted),
		enrollment(bson.NewObjectID(), model.EnrollmentStatusEnrolled),
	}, []*model.Course{course}, []*model.Event{event})

	busy := member("Staff", []*model.Course{{ID: bson.NewObjectID()}},
		model.EnrollmentStatusCompleted, model.EnrollmentStatusCompleted, model.EnrollmentStatusCompleted)

	stats := Rollup(own, []StaffProgress{busy})

	assert.Equal(t, 1, stats.TotalCourses)
	assert.Equal(t, 2, stats.TotalEvents)
	assert.Equal(t, 4, stats.TotalEnrollments)
}

func TestRollup_BreakdownUsesCourseBucketOnly(t *testing.T) {
	course := &model.Course{ID: bson.NewObjectID()}
	event := &model.Event{ID: bson.NewObjectID()}
	list := []*model.Enrollment{
		enrollment(course.ID, model.EnrollmentStatusInProgress),
		enrollment(event.ID, model.EnrollmentStatusCompleted),
		enrollment(event.ID, model.EnrollmentStatusCompleted),
	}
	m := StaffProgress{
		Staff:          &model.CorporateStaff{ID: bson.NewObjectID(), Role: "Trainer"},
		Classification: Partition(list, []*model.Course{course}, []*model.Event{event}),
		Stats:          Summarize(list),
	}

	stats := Rollup(nil, []StaffProgress{m})

	require.Len(t, stats.StaffCoursesBreakdown, 1)
	row := stats.StaffCoursesBreakdown[0]
	assert.Equal(t, "Trainer", row.Name)
	assert.Equal(t, 1, row.TotalCourses)
	assert.Equal(t, 0, row.CompletedCourses)
	assert.Equal(t, 1, row.InProgressCourses)
	assert.Equal(t, 67, stats.AverageCompletionRate)
}
