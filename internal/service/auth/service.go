package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/jwalitptl/training-api/internal/model"
	"github.com/jwalitptl/training-api/internal/repository"
	"github.com/jwalitptl/training-api/pkg/auth"
	apperrors "github.com/jwalitptl/training-api/pkg/errors"
	"github.com/jwalitptl/training-api/pkg/messaging"
	"github.com/jwalitptl/training-api/pkg/security"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// EventUserRegistered is published on the notifications channel after a
// successful self-signup.
const EventUserRegistered = "user.registered"

type AuthServicer interface {
	Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error)
	Register(ctx context.Context, req *model.RegisterRequest) (*model.TokenResponse, error)
	Authenticate(token string) (*model.Viewer, error)
}

type Service struct {
	users    repository.UserRepository
	profiles repository.ProfileRepository
	jwtSvc   auth.JWTService
	hasher   security.PasswordHasher
	broker   messaging.Broker
	now      func() time.Time
}

func NewService(users repository.UserRepository, profiles repository.ProfileRepository,
	jwtSvc auth.JWTService, hasher security.PasswordHasher, broker messaging.Broker) *Service {
	return &Service{
		users:    users,
		profiles: profiles,
		jwtSvc:   jwtSvc,
		hasher:   hasher,
		broker:   broker,
		now:      time.Now,
	}
}

func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Unauthorized(ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		return nil, apperrors.Unauthorized(ErrInvalidCredentials)
	}

	now := s.now().UTC()
	if err := s.users.TouchLogin(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}
	user.LastLogin = &now
	user.LastActivity = &now

	return s.issue(user)
}

// Register signs up an INDIVIDUAL or CORPORATE account. Corporate signups
// also get their corporate profile.
func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*model.TokenResponse, error) {
	if req.Role != model.RoleIndividual && req.Role != model.RoleCorporate {
		return nil, apperrors.BadRequest("only individual and corporate accounts can sign up", nil)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		if errors.Is(err, security.ErrPasswordTooShort) {
			return nil, apperrors.BadRequest("password is too short", err)
		}
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now().UTC()
	user := &model.User{
		Email:        normalizeEmail(req.Email),
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: hash,
		Role:         req.Role,
		Status:       model.UserStatusNotSubscribed,
		LastLogin:    &now,
		LastActivity: &now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.BadRequest("a user with this email already exists", err)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := s.createProfile(ctx, user, req); err != nil {
		return nil, err
	}

	if msg, err := messaging.NewMessage(EventUserRegistered, model.UserRegisteredEvent{
		UserID: user.ID.Hex(),
		Email:  user.Email,
		Name:   user.Name,
	}); err == nil {
		if err := s.broker.Publish(ctx, messaging.ChannelNotifications, msg); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("user_id", user.ID.Hex()).Msg("failed to publish registration event")
		}
	}

	return s.issue(user)
}

func (s *Service) createProfile(ctx context.Context, user *model.User, req *model.RegisterRequest) error {
	switch user.Role {
	case model.RoleCorporate:
		profile := &model.CorporateProfile{
			OwnerID:     user.ID,
			CompanyName: strings.TrimSpace(req.CompanyName),
			Status:      model.CorporateStatusActive,
		}
		if err := s.profiles.CreateCorporate(ctx, profile); err != nil {
			return fmt.Errorf("failed to create corporate profile: %w", err)
		}
	case model.RoleIndividual:
		first, last, _ := strings.Cut(strings.TrimSpace(req.Name), " ")
		profile := &model.IndividualProfile{
			UserID:    user.ID,
			FirstName: first,
			LastName:  strings.TrimSpace(last),
		}
		if err := s.profiles.CreateIndividual(ctx, profile); err != nil {
			return fmt.Errorf("failed to create individual profile: %w", err)
		}
	}
	return nil
}

// Authenticate turns a bearer token into the request's viewer.
func (s *Service) Authenticate(token string) (*model.Viewer, error) {
	claims, err := s.jwtSvc.ValidateToken(token)
	if err != nil {
		return nil, apperrors.Unauthorized(err)
	}
	id, err := bson.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, apperrors.Unauthorized(auth.ErrInvalidToken)
	}
	role := model.Role(claims.Role)
	if !role.Valid() {
		return nil, apperrors.Unauthorized(auth.ErrInvalidToken)
	}
	return &model.Viewer{ID: id, Email: claims.Email, Role: role}, nil
}

func (s *Service) issue(user *model.User) (*model.TokenResponse, error) {
	token, expiresAt, err := s.jwtSvc.GenerateAccessToken(user.ID.Hex(), user.Email, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &model.TokenResponse{
		AccessToken: token,
		ExpiresAt:   expiresAt.Unix(),
		User:        user,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
