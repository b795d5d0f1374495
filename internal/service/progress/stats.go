package progress

import (
	"math"

	"github.com/jwalitptl/training-api/internal/model"
)

// Rate is completed as a whole percentage of total, 0 when total is 0.
func Rate(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(completed) * 100 / float64(total)))
}

// Summarize counts a subject's enrollments. Cancelled enrollments count
// towards EnrolledCount.
func Summarize(enrollments []*model.Enrollment) model.CompletionStats {
	return summarize(len(enrollments), func(i int) model.EnrollmentStatus {
		return enrollments[i].Status
	})
}

// SummarizeClassified is Summarize over one classified bucket.
func SummarizeClassified(enrollments []model.ClassifiedEnrollment) model.CompletionStats {
	return summarize(len(enrollments), func(i int) model.EnrollmentStatus {
		return enrollments[i].Status
	})
}

func summarize(n int, status func(i int) model.EnrollmentStatus) model.CompletionStats {
	stats := model.CompletionStats{EnrolledCount: n}
	for i := 0; i < n; i++ {
		switch status(i) {
		case model.EnrollmentStatusCompleted:
			stats.CompletedCount++
		case model.EnrollmentStatusInProgress:
			stats.InProgressCount++
		}
	}
	stats.CompletionRate = Rate(stats.CompletedCount, stats.EnrolledCount)
	return stats
}
