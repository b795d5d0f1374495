// Package message implements 1:1 messaging threads.
package message

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/jwalitptl/training-api/internal/model"
	"github.com/jwalitptl/training-api/internal/repository"
	apperrors "github.com/jwalitptl/training-api/pkg/errors"
)

type MessageServicer interface {
	Thread(ctx context.Context, viewer model.Viewer, otherID bson.ObjectID) ([]*model.Message, error)
	Send(ctx context.Context, viewer model.Viewer, otherID bson.ObjectID, req *model.SendMessageRequest) (*model.Message, error)
	Edit(ctx context.Context, viewer model.Viewer, id bson.ObjectID, req *model.EditMessageRequest) (*model.Message, error)
	UnreadCount(ctx context.Context, viewer model.Viewer) (int64, error)
}

type Service struct {
	repo  repository.MessageRepository
	users repository.UserRepository
	now   func() time.Time
}

func NewService(repo repository.MessageRepository, users repository.UserRepository) *Service {
	return &Service{
		repo:  repo,
		users: users,
		now:   time.Now,
	}
}

func (s *Service) counterpart(ctx context.Context, viewer model.Viewer, otherID bson.ObjectID) error {
	if otherID == viewer.ID {
		return apperrors.BadRequest("cannot open a thread with yourself", nil)
	}
	if _, err := s.users.Get(ctx, otherID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("user", err)
		}
		return fmt.Errorf("failed to get user: %w", err)
	}
	return nil
}

// Thread returns the conversation oldest first. Fetching it marks every
// unread message from the other user as read; repeated fetches change
// nothing.
func (s *Service) Thread(ctx context.Context, viewer model.Viewer, otherID bson.ObjectID) ([]*model.Message, error) {
	if err := s.counterpart(ctx, viewer, otherID); err != nil {
		return nil, err
	}
	if _, err := s.repo.MarkRead(ctx, viewer.ID, otherID, s.now().UTC()); err != nil {
		return nil, fmt.Errorf("failed to mark thread read: %w", err)
	}
	messages, err := s.repo.Thread(ctx, viewer.ID, otherID)
	if err != nil {
		return nil, fmt.Errorf("failed to load thread: %w", err)
	}
	return messages, nil
}

func (s *Service) Send(ctx context.Context, viewer model.Viewer, otherID bson.ObjectID, req *model.SendMessageRequest) (*model.Message, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, apperrors.BadRequest("content is required", nil)
	}
	if err := s.counterpart(ctx, viewer, otherID); err != nil {
		return nil, err
	}

	msg := &model.Message{
		SenderID:    viewer.ID,
		RecipientID: otherID,
		Content:     content,
	}
	if err := s.repo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}
	return msg, nil
}

// Edit lets the sender rewrite a message's content.
func (s *Service) Edit(ctx context.Context, viewer model.Viewer, id bson.ObjectID, req *model.EditMessageRequest) (*model.Message, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, apperrors.BadRequest("content is required", nil)
	}

	msg, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("message", err)
		}
		return nil, fmt.Errorf("failed to get message: %w", err)
	}
	if msg.SenderID != viewer.ID {
		return nil, apperrors.Forbidden("only the sender can edit a message")
	}

	editedAt := s.now().UTC()
	if err := s.repo.UpdateContent(ctx, id, content, editedAt); err != nil {
		return nil, fmt.Errorf("failed to edit message: %w", err)
	}
	msg.Content = content
	msg.EditedAt = &editedAt
	return msg, nil
}

func (s *Service) UnreadCount(ctx context.Context, viewer model.Viewer) (int64, error) {
	n, err := s.repo.CountUnread(ctx, viewer.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread messages: %w", err)
	}
	return n, nil
}
