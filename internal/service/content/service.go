// Package content serves editable site copy.
package content

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jwalitptl/training-api/internal/model"
	"github.com/jwalitptl/training-api/internal/repository"
	apperrors "github.com/jwalitptl/training-api/pkg/errors"
)

var keyPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,63}$`)

type ContentServicer interface {
	Get(ctx context.Context, key string) (*model.SiteContent, error)
	Put(ctx context.Context, editor model.Viewer, key string, req *model.UpsertContentRequest) (*model.SiteContent, error)
}

type Service struct {
	repo repository.ContentRepository
}

func NewService(repo repository.ContentRepository) *Service {
	return &Service{repo: repo}
}

func normalizeKey(key string) (string, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	if !keyPattern.MatchString(key) {
		return "", apperrors.BadRequest(fmt.Sprintf("invalid content key %q", key), nil)
	}
	return key, nil
}

func (s *Service) Get(ctx context.Context, key string) (*model.SiteContent, error) {
	key, err := normalizeKey(key)
	if err != nil {
		return nil, err
	}
	c, err := s.repo.Get(ctx, key)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("content", err)
		}
		return nil, fmt.Errorf("failed to get content: %w", err)
	}
	return c, nil
}

func (s *Service) Put(ctx context.Context, editor model.Viewer, key string, req *model.UpsertContentRequest) (*model.SiteContent, error) {
	key, err := normalizeKey(key)
	if err != nil {
		return nil, err
	}
	c := &model.SiteContent{
		Key:       key,
		Title:     strings.TrimSpace(req.Title),
		Body:      req.Body,
		UpdatedBy: editor.ID,
	}
	if err := s.repo.Upsert(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to save content: %w", err)
	}
	return c, nil
}
