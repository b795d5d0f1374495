package progress

import (
	"math"

	"github.com/jwalitptl/training-api/internal/model"
)

// StaffProgress is one roster member after classification.
type StaffProgress struct {
	Staff          *model.CorporateStaff
	User           *model.User
	Classification *Classification
	Stats          model.CompletionStats
}

// DisplayName falls back to the e-mail when the user has no name, and to
// the roster title when the user record is gone.
func (p StaffProgress) DisplayName() string {
	switch {
	case p.User == nil:
		return p.Staff.Role
	case p.User.Name != "":
		return p.User.Name
	}
	return p.User.Email
}

// Rollup composes the corporate account's own classified enrollments and
// its staff's progress into corporate-wide statistics.
//
// Course and event totals come from the corporate's own enrollments, not
// the staff's. The average is over staff completion rates, 0 for an empty
// roster.
func Rollup(own *Classification, staff []StaffProgress) model.CorporateStats {
	stats := model.CorporateStats{
		TotalStaff:            len(staff),
		StaffCoursesBreakdown: make([]model.StaffBreakdown, 0, len(staff)),
	}
	if own != nil {
		stats.TotalCourses = len(own.Courses)
		stats.TotalEvents = len(own.Events)
		stats.TotalEnrollments = len(own.All)
	}

	sum := 0
	for _, member := range staff {
		sum += member.Stats.CompletionRate

		var courses model.CompletionStats
		if member.Classification != nil {
			courses = SummarizeClassified(member.Classification.Courses)
		}
		stats.StaffCoursesBreakdown = append(stats.StaffCoursesBreakdown, model.StaffBreakdown{
			StaffID:           member.Staff.ID.Hex(),
			Name:              member.DisplayName(),
			TotalCourses:      courses.EnrolledCount,
			CompletedCourses:  courses.CompletedCount,
			InProgressCourses: courses.InProgressCount,
		})
	}
	if len(staff) > 0 {
		stats.AverageCompletionRate = int(math.Round(float64(sum) / float64(len(staff))))
	}
	return stats
}
