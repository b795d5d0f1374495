// Package enrollment manages learner enrollments into courses and events.
package enrollment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/jwalitptl/training-api/internal/model"
	"github.com/jwalitptl/training-api/internal/repository"
	"github.com/jwalitptl/training-api/internal/service/progress"
	apperrors "github.com/jwalitptl/training-api/pkg/errors"
)

type EnrollmentServicer interface {
	Enroll(ctx context.Context, userID bson.ObjectID, req *model.EnrollRequest) (*model.Enrollment, error)
	Mine(ctx context.Context, userID bson.ObjectID) (*model.EnrollmentSummary, error)
	Update(ctx context.Context, viewer model.Viewer, id bson.ObjectID, req *model.UpdateEnrollmentRequest) (*model.Enrollment, error)
}

type Service struct {
	repo       repository.EnrollmentRepository
	courses    repository.CourseRepository
	events     repository.EventRepository
	classifier *progress.Classifier
	now        func() time.Time
}

func NewService(repo repository.EnrollmentRepository, courses repository.CourseRepository,
	events repository.EventRepository, classifier *progress.Classifier) *Service {
	return &Service{
		repo:       repo,
		courses:    courses,
		events:     events,
		classifier: classifier,
		now:        time.Now,
	}
}

// Enroll requires the target to exist in either catalog and refuses a
// second non-cancelled enrollment into the same target.
func (s *Service) Enroll(ctx context.Context, userID bson.ObjectID, req *model.EnrollRequest) (*model.Enrollment, error) {
	targetID, err := bson.ObjectIDFromHex(req.TargetID)
	if err != nil {
		return nil, apperrors.BadRequest("invalid targetId", err)
	}
	if err := s.resolve(ctx, targetID); err != nil {
		return nil, err
	}

	_, err = s.repo.FindActive(ctx, userID, targetID)
	switch {
	case err == nil:
		return nil, apperrors.BadRequest("already enrolled", nil)
	case !errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("failed to check enrollment: %w", err)
	}

	enrollment := &model.Enrollment{
		UserID:  userID,
		EventID: targetID,
		Status:  model.EnrollmentStatusEnrolled,
	}
	if err := s.repo.Create(ctx, enrollment); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.BadRequest("already enrolled", err)
		}
		return nil, fmt.Errorf("failed to create enrollment: %w", err)
	}
	return enrollment, nil
}

func (s *Service) resolve(ctx context.Context, id bson.ObjectID) error {
	_, err := s.courses.Get(ctx, id)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("failed to get course: %w", err)
	}
	_, err = s.events.Get(ctx, id)
	if err == nil {
		return nil
	}
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound("course or event", err)
	}
	return fmt.Errorf("failed to get event: %w", err)
}

func (s *Service) Mine(ctx context.Context, userID bson.ObjectID) (*model.EnrollmentSummary, error) {
	enrollments, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}
	cls, err := s.classifier.Classify(ctx, enrollments)
	if err != nil {
		return nil, err
	}
	return &model.EnrollmentSummary{
		Courses:         cls.Courses,
		Events:          cls.Events,
		CompletionStats: progress.Summarize(enrollments),
	}, nil
}

// Update lets the owner or an admin move status and progress freely.
// Completing sets the completion date; leaving completed clears it.
func (s *Service) Update(ctx context.Context, viewer model.Viewer, id bson.ObjectID, req *model.UpdateEnrollmentRequest) (*model.Enrollment, error) {
	enrollment, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("enrollment", err)
		}
		return nil, fmt.Errorf("failed to get enrollment: %w", err)
	}
	if enrollment.UserID != viewer.ID && !viewer.Role.IsAdmin() {
		return nil, apperrors.Forbidden("not your enrollment")
	}

	if req.Progress != nil {
		if *req.Progress < 0 || *req.Progress > 100 {
			return nil, apperrors.BadRequest("progress must be between 0 and 100", nil)
		}
		enrollment.Progress = *req.Progress
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, apperrors.BadRequest(fmt.Sprintf("invalid status %q", *req.Status), nil)
		}
		enrollment.Status = *req.Status
		if *req.Status == model.EnrollmentStatusCompleted {
			now := s.now().UTC()
			enrollment.CompletionDate = &now
		} else {
			enrollment.CompletionDate = nil
		}
	}

	if err := s.repo.Update(ctx, enrollment); err != nil {
		return nil, fmt.Errorf("failed to update enrollment: %w", err)
	}
	return enrollment, nil
}
