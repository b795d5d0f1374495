// Package corporate manages a corporate account's staff roster.
package corporate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/jwalitptl/training-api/internal/model"
	"github.com/jwalitptl/training-api/internal/repository"
	"github.com/jwalitptl/training-api/internal/service/user"
	apperrors "github.com/jwalitptl/training-api/pkg/errors"
)

type StaffServicer interface {
	AddStaff(ctx context.Context, owner model.Viewer, req *model.AddStaffRequest) (*model.CorporateStaff, error)
	UpdateStaff(ctx context.Context, viewer model.Viewer, id bson.ObjectID, req *model.UpdateStaffRequest) (*model.CorporateStaff, error)
	SetApproval(ctx context.Context, id bson.ObjectID, status model.ApprovalStatus) (*model.CorporateStaff, error)
}

type Service struct {
	staff    repository.StaffRepository
	profiles repository.ProfileRepository
	users    user.UserServicer
}

func NewService(staff repository.StaffRepository, profiles repository.ProfileRepository, users user.UserServicer) *Service {
	return &Service{
		staff:    staff,
		profiles: profiles,
		users:    users,
	}
}

func (s *Service) corporateOf(ctx context.Context, ownerID bson.ObjectID) (*model.CorporateProfile, error) {
	corp, err := s.profiles.GetCorporateByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("corporate profile", err)
		}
		return nil, fmt.Errorf("failed to get corporate profile: %w", err)
	}
	return corp, nil
}

// AddStaff creates a STAFF user and its roster entry. New staff wait for
// admin approval.
func (s *Service) AddStaff(ctx context.Context, owner model.Viewer, req *model.AddStaffRequest) (*model.CorporateStaff, error) {
	corp, err := s.corporateOf(ctx, owner.ID)
	if err != nil {
		return nil, err
	}

	u, err := s.users.CreateUser(ctx, &model.CreateUserRequest{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
		Role:     model.RoleStaff,
	})
	if err != nil {
		return nil, err
	}

	staff := &model.CorporateStaff{
		UserID:         u.ID,
		CorporateID:    corp.ID,
		Role:           strings.TrimSpace(req.Role),
		Department:     strings.TrimSpace(req.Department),
		Status:         model.StaffStatusActive,
		ApprovalStatus: model.ApprovalPending,
	}
	if err := s.staff.Create(ctx, staff); err != nil {
		if delErr := s.users.DeleteUser(ctx, u.ID); delErr != nil {
			zerolog.Ctx(ctx).Error().Err(delErr).Str("user_id", u.ID.Hex()).Msg("failed to remove orphaned staff user")
		}
		return nil, fmt.Errorf("failed to create staff record: %w", err)
	}
	return staff, nil
}

// UpdateStaff is allowed to the owning corporate and to admins.
func (s *Service) UpdateStaff(ctx context.Context, viewer model.Viewer, id bson.ObjectID, req *model.UpdateStaffRequest) (*model.CorporateStaff, error) {
	staff, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !viewer.Role.IsAdmin() {
		corp, err := s.corporateOf(ctx, viewer.ID)
		if err != nil && !apperrors.HasCode(err, apperrors.ErrNotFound) {
			return nil, err
		}
		if err != nil || corp.ID != staff.CorporateID {
			return nil, apperrors.Forbidden("staff member belongs to another corporation")
		}
	}

	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, apperrors.BadRequest(fmt.Sprintf("invalid staff status %q", *req.Status), nil)
		}
		staff.Status = *req.Status
	}
	if req.Role != nil {
		staff.Role = strings.TrimSpace(*req.Role)
	}
	if req.Department != nil {
		staff.Department = strings.TrimSpace(*req.Department)
	}

	if err := s.staff.Update(ctx, staff); err != nil {
		return nil, fmt.Errorf("failed to update staff: %w", err)
	}
	return staff, nil
}

func (s *Service) SetApproval(ctx context.Context, id bson.ObjectID, status model.ApprovalStatus) (*model.CorporateStaff, error) {
	switch status {
	case model.ApprovalPending, model.ApprovalApproved, model.ApprovalRejected:
	default:
		return nil, apperrors.BadRequest(fmt.Sprintf("invalid approval status %q", status), nil)
	}
	if err := s.staff.SetApproval(ctx, id, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("staff member", err)
		}
		return nil, fmt.Errorf("failed to set approval: %w", err)
	}
	return s.get(ctx, id)
}

func (s *Service) get(ctx context.Context, id bson.ObjectID) (*model.CorporateStaff, error) {
	staff, err := s.staff.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("staff member", err)
		}
		return nil, fmt.Errorf("failed to get staff member: %w", err)
	}
	return staff, nil
}
