// Package catalog manages the course and event catalogs.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/jwalitptl/training-api/internal/model"
	"github.com/jwalitptl/training-api/internal/repository"
	apperrors "github.com/jwalitptl/training-api/pkg/errors"
)

type CatalogServicer interface {
	ListCourses(ctx context.Context, filters *model.CatalogFilters) ([]*model.Course, int64, error)
	GetCourse(ctx context.Context, id bson.ObjectID) (*model.Course, error)
	CreateCourse(ctx context.Context, author bson.ObjectID, req *model.CatalogRequest) (*model.Course, error)
	UpdateCourse(ctx context.Context, id bson.ObjectID, req *model.CatalogRequest) (*model.Course, error)
	DeleteCourse(ctx context.Context, id bson.ObjectID) error

	ListEvents(ctx context.Context, filters *model.CatalogFilters) ([]*model.Event, int64, error)
	GetEvent(ctx context.Context, id bson.ObjectID) (*model.Event, error)
	CreateEvent(ctx context.Context, author bson.ObjectID, req *model.CatalogRequest) (*model.Event, error)
	UpdateEvent(ctx context.Context, id bson.ObjectID, req *model.CatalogRequest) (*model.Event, error)
	DeleteEvent(ctx context.Context, id bson.ObjectID) error
}

type Service struct {
	courses repository.CourseRepository
	events  repository.EventRepository
}

func NewService(courses repository.CourseRepository, events repository.EventRepository) *Service {
	return &Service{
		courses: courses,
		events:  events,
	}
}

func notFound(resource string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound(resource, err)
	}
	return fmt.Errorf("failed to load %s: %w", resource, err)
}

func defaults(req *model.CatalogRequest) (model.CatalogStatus, model.Access) {
	status, access := req.Status, req.Access
	if status == "" {
		status = model.CatalogStatusDraft
	}
	if access == "" {
		access = model.AccessFree
	}
	return status, access
}

func normalizeFilters(f *model.CatalogFilters) {
	f.Pagination = f.Pagination.Normalize()
	f.Search = strings.TrimSpace(f.Search)
}

func (s *Service) ListCourses(ctx context.Context, filters *model.CatalogFilters) ([]*model.Course, int64, error) {
	normalizeFilters(filters)
	courses, total, err := s.courses.List(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list courses: %w", err)
	}
	return courses, total, nil
}

func (s *Service) GetCourse(ctx context.Context, id bson.ObjectID) (*model.Course, error) {
	course, err := s.courses.Get(ctx, id)
	if err != nil {
		return nil, notFound("course", err)
	}
	return course, nil
}

func (s *Service) CreateCourse(ctx context.Context, author bson.ObjectID, req *model.CatalogRequest) (*model.Course, error) {
	status, access := defaults(req)
	course := &model.Course{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Status:      status,
		Price:       req.Price,
		Access:      access,
		Category:    req.Category,
		Duration:    req.Duration,
		CreatedBy:   author,
	}
	if err := s.courses.Create(ctx, course); err != nil {
		return nil, fmt.Errorf("failed to create course: %w", err)
	}
	return course, nil
}

func (s *Service) UpdateCourse(ctx context.Context, id bson.ObjectID, req *model.CatalogRequest) (*model.Course, error) {
	course, err := s.GetCourse(ctx, id)
	if err != nil {
		return nil, err
	}
	status, access := defaults(req)
	course.Title = strings.TrimSpace(req.Title)
	course.Description = req.Description
	course.Status = status
	course.Price = req.Price
	course.Access = access
	course.Category = req.Category
	course.Duration = req.Duration
	if err := s.courses.Update(ctx, course); err != nil {
		return nil, notFound("course", err)
	}
	return course, nil
}

func (s *Service) DeleteCourse(ctx context.Context, id bson.ObjectID) error {
	if err := s.courses.Delete(ctx, id); err != nil {
		return notFound("course", err)
	}
	return nil
}

func (s *Service) ListEvents(ctx context.Context, filters *model.CatalogFilters) ([]*model.Event, int64, error) {
	normalizeFilters(filters)
	events, total, err := s.events.List(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list events: %w", err)
	}
	return events, total, nil
}

func (s *Service) GetEvent(ctx context.Context, id bson.ObjectID) (*model.Event, error) {
	event, err := s.events.Get(ctx, id)
	if err != nil {
		return nil, notFound("event", err)
	}
	return event, nil
}

func validateSchedule(req *model.CatalogRequest) error {
	if req.StartDate != nil && req.EndDate != nil && req.EndDate.Before(*req.StartDate) {
		return apperrors.BadRequest("endDate must not be before startDate", nil)
	}
	return nil
}

func (s *Service) CreateEvent(ctx context.Context, author bson.ObjectID, req *model.CatalogRequest) (*model.Event, error) {
	if err := validateSchedule(req); err != nil {
		return nil, err
	}
	status, access := defaults(req)
	event := &model.Event{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Status:      status,
		Price:       req.Price,
		Access:      access,
		Category:    req.Category,
		Location:    req.Location,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		CreatedBy:   author,
	}
	if err := s.events.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return event, nil
}

func (s *Service) UpdateEvent(ctx context.Context, id bson.ObjectID, req *model.CatalogRequest) (*model.Event, error) {
	if err := validateSchedule(req); err != nil {
		return nil, err
	}
	event, err := s.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	status, access := defaults(req)
	event.Title = strings.TrimSpace(req.Title)
	event.Description = req.Description
	event.Status = status
	event.Price = req.Price
	event.Access = access
	event.Category = req.Category
	event.Location = req.Location
	event.StartDate = req.StartDate
	event.EndDate = req.EndDate
	if err := s.events.Update(ctx, event); err != nil {
		return nil, notFound("event", err)
	}
	return event, nil
}

func (s *Service) DeleteEvent(ctx context.Context, id bson.ObjectID) error {
	if err := s.events.Delete(ctx, id); err != nil {
		return notFound("event", err)
	}
	return nil
}
