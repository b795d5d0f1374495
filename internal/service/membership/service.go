// Package membership sells plans and reports a subject's current membership.
package membership

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/jwalitptl/training-api/internal/model"
	"github.com/jwalitptl/training-api/internal/repository"
	apperrors "github.com/jwalitptl/training-api/pkg/errors"
)

type MembershipServicer interface {
	Plans(ctx context.Context, viewer model.Viewer) ([]*model.Plan, error)
	Purchase(ctx context.Context, viewer model.Viewer, req *model.PurchaseRequest) (*model.PurchaseResult, error)
	Current(ctx context.Context, viewer model.Viewer) (*model.Membership, error)
}

type Service struct {
	repo     repository.MembershipRepository
	profiles repository.ProfileRepository
	now      func() time.Time
}

func NewService(repo repository.MembershipRepository, profiles repository.ProfileRepository) *Service {
	return &Service{
		repo:     repo,
		profiles: profiles,
		now:      time.Now,
	}
}

// subject resolves who holds memberships for the viewer: the corporate
// profile for corporate accounts, the user otherwise.
func (s *Service) subject(ctx context.Context, viewer model.Viewer) (model.SubjectType, bson.ObjectID, error) {
	if viewer.Role != model.RoleCorporate {
		return model.SubjectUser, viewer.ID, nil
	}
	corp, err := s.profiles.GetCorporateByOwner(ctx, viewer.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", bson.NilObjectID, apperrors.NotFound("corporate profile", err)
		}
		return "", bson.NilObjectID, fmt.Errorf("failed to get corporate profile: %w", err)
	}
	return model.SubjectCorporate, corp.ID, nil
}

func (s *Service) Plans(ctx context.Context, viewer model.Viewer) ([]*model.Plan, error) {
	audience := model.SubjectUser
	if viewer.Role == model.RoleCorporate {
		audience = model.SubjectCorporate
	}
	if viewer.Role.IsAdmin() {
		audience = ""
	}
	plans, err := s.repo.ListPlans(ctx, audience)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	return plans, nil
}

// Purchase records a completed payment for the plan price and makes a new
// membership of that plan the subject's current one, atomically. Any other
// active membership of the subject is expired.
func (s *Service) Purchase(ctx context.Context, viewer model.Viewer, req *model.PurchaseRequest) (*model.PurchaseResult, error) {
	planID, err := bson.ObjectIDFromHex(req.PlanID)
	if err != nil {
		return nil, apperrors.BadRequest("invalid planId", err)
	}
	plan, err := s.repo.GetPlan(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("plan", err)
		}
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	if !plan.IsActive {
		return nil, apperrors.BadRequest("plan is not available", nil)
	}

	subjectType, subjectID, err := s.subject(ctx, viewer)
	if err != nil {
		return nil, err
	}
	if plan.Audience != "" && plan.Audience != subjectType {
		return nil, apperrors.BadRequest("plan is not offered to this account type", nil)
	}

	start := s.now().UTC()
	membership := &model.Membership{
		SubjectType: subjectType,
		SubjectID:   subjectID,
		PlanID:      plan.ID,
		Status:      model.MembershipActive,
		StartDate:   &start,
	}
	if plan.DurationDays > 0 {
		end := start.AddDate(0, 0, plan.DurationDays)
		membership.EndDate = &end
	}
	payment := &model.Payment{
		SubjectType: subjectType,
		SubjectID:   subjectID,
		PlanID:      plan.ID,
		Amount:      plan.Price,
		Currency:    plan.Currency,
		Status:      model.PaymentCompleted,
	}

	if err := s.repo.Purchase(ctx, payment, membership); err != nil {
		return nil, fmt.Errorf("failed to purchase membership: %w", err)
	}
	return &model.PurchaseResult{Payment: payment, Membership: membership}, nil
}

// Current is the subject's most recent membership, nil when it never held one.
func (s *Service) Current(ctx context.Context, viewer model.Viewer) (*model.Membership, error) {
	subjectType, subjectID, err := s.subject(ctx, viewer)
	if err != nil {
		return nil, err
	}
	m, err := s.repo.Latest(ctx, subjectType, subjectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	return m, nil
}
