package progress

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"golang.org/x/sync/errgroup"

	"github.com/jwalitptl/training-api/internal/model"
	"github.com/jwalitptl/training-api/internal/repository"
)

// Classification partitions one subject's enrollments by target collection.
// All keeps the input order; each bucket keeps the relative input order.
type Classification struct {
	All        []model.ClassifiedEnrollment
	Courses    []model.ClassifiedEnrollment
	Events     []model.ClassifiedEnrollment
	Unresolved []model.ClassifiedEnrollment
	// Ambiguous lists target ids found in both collections. They are
	// classified as courses.
	Ambiguous []bson.ObjectID
}

type Classifier struct {
	courses repository.CourseRepository
	events  repository.EventRepository
}

func NewClassifier(courses repository.CourseRepository, events repository.EventRepository) *Classifier {
	return &Classifier{courses: courses, events: events}
}

// Classify resolves every enrollment's target with one course lookup and
// one event lookup over the distinct target ids. The two lookups run
// concurrently; either failing fails the classification.
func (c *Classifier) Classify(ctx context.Context, enrollments []*model.Enrollment) (*Classification, error) {
	ids := distinctTargets(enrollments)

	var (
		courses []*model.Course
		events  []*model.Event
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		courses, err = c.courses.FindByIDs(gctx, ids)
		if err != nil {
			return fmt.Errorf("failed to look up courses: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		events, err = c.events.FindByIDs(gctx, ids)
		if err != nil {
			return fmt.Errorf("failed to look up events: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return Partition(enrollments, courses, events), nil
}

// Partition classifies enrollments against already-fetched targets. A
// target present in both sets resolves to the course.
func Partition(enrollments []*model.Enrollment, courses []*model.Course, events []*model.Event) *Classification {
	courseByID := make(map[bson.ObjectID]*model.Course, len(courses))
	for _, course := range courses {
		courseByID[course.ID] = course
	}
	eventByID := make(map[bson.ObjectID]*model.Event, len(events))
	for _, event := range events {
		eventByID[event.ID] = event
	}

	out := &Classification{
		All:        make([]model.ClassifiedEnrollment, 0, len(enrollments)),
		Courses:    []model.ClassifiedEnrollment{},
		Events:     []model.ClassifiedEnrollment{},
		Unresolved: []model.ClassifiedEnrollment{},
	}
	flagged := make(map[bson.ObjectID]bool)

	for _, e := range enrollments {
		ce := model.ClassifiedEnrollment{Enrollment: *e}
		course, isCourse := courseByID[e.EventID]
		event, isEvent := eventByID[e.EventID]

		switch {
		case isCourse:
			if isEvent && !flagged[e.EventID] {
				flagged[e.EventID] = true
				out.Ambiguous = append(out.Ambiguous, e.EventID)
			}
			ce.Target = model.EnrollmentTarget{Kind: model.TargetCourse, Course: course}
			out.Courses = append(out.Courses, ce)
		case isEvent:
			ce.Target = model.EnrollmentTarget{Kind: model.TargetEvent, Event: event}
			out.Events = append(out.Events, ce)
		default:
			ce.Target = model.EnrollmentTarget{Kind: model.TargetUnresolved}
			out.Unresolved = append(out.Unresolved, ce)
		}
		out.All = append(out.All, ce)
	}
	return out
}

func distinctTargets(enrollments []*model.Enrollment) []bson.ObjectID {
	seen := make(map[bson.ObjectID]bool, len(enrollments))
	ids := make([]bson.ObjectID, 0, len(enrollments))
	for _, e := range enrollments {
		if !seen[e.EventID] {
			seen[e.EventID] = true
			ids = append(ids, e.EventID)
		}
	}
	return ids
}
