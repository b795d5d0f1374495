package progress

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/jwalitptl/training-api/internal/model"
)

var allStatuses = []model.EnrollmentStatus{
	model.EnrollmentStatusEnrolled,
	model.EnrollmentStatusInProgress,
	model.EnrollmentStatusCompleted,
	model.EnrollmentStatusCancelled,
}

func TestSummarize_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 200; i++ {
		n := rng.Intn(30)
		list := make([]*model.Enrollment, n)
		for j := range list {
			list[j] = enrollment(bson.NewObjectID(), allStatuses[rng.Intn(len(allStatuses))])
		}

		stats := Summarize(list)

		assert.Equal(t, n, stats.EnrolledCount)
		assert.LessOrEqual(t, stats.CompletedCount+stats.InProgressCount, stats.EnrolledCount)
		assert.GreaterOrEqual(t, stats.CompletionRate, 0)
		assert.LessOrEqual(t, stats.CompletionRate, 100)
		if n == 0 {
			assert.Equal(t, 0, stats.CompletionRate)
		}
	}
}

func TestSummarize_CancelledCountsAsEnrolled(t *testing.T) {
	stats := Summarize([]*model.Enrollment{
		enrollment(bson.NewObjectID(), model.EnrollmentStatusCompleted),
		enrollment(bson.NewObjectID(), model.EnrollmentStatusCancelled),
		enrollment(bson.NewObjectID(), model.EnrollmentStatusCancelled),
		enrollment(bson.NewObjectID(), model.EnrollmentStatusCancelled),
	})

	assert.Equal(t, model.CompletionStats{
		EnrolledCount:   4,
		CompletedCount:  1,
		InProgressCount: 0,
		CompletionRate:  25,
	}, stats)
}

func TestRate(t *testing.T) {
	tests := []struct {
		completed, total, want int
	}{
		{0, 0, 0},
		{1, 3, 33},
		{2, 3, 67},
		{1, 2, 50},
		{1, 8, 13},
		{3, 3, 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Rate(tt.completed, tt.total), "%d/%d", tt.completed, tt.total)
	}
}
