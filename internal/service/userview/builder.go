// Package userview assembles the role-scoped views dashboards render: the
// admin user detail, a corporate's team, and the caller's own dashboard.
package userview

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/jwalitptl/training-api/internal/model"
	"github.com/jwalitptl/training-api/internal/repository"
	"github.com/jwalitptl/training-api/internal/service/engagement"
	"github.com/jwalitptl/training-api/internal/service/progress"
	apperrors "github.com/jwalitptl/training-api/pkg/errors"
)

// OverviewProvider supplies the platform overview for admin dashboards.
type OverviewProvider interface {
	Overview(ctx context.Context, r model.DateRange) (*model.OverviewMetrics, error)
}

type Repositories struct {
	Users       repository.UserRepository
	Profiles    repository.ProfileRepository
	Staff       repository.StaffRepository
	Courses     repository.CourseRepository
	Events      repository.EventRepository
	Enrollments repository.EnrollmentRepository
	Memberships repository.MembershipRepository
	Messages    repository.MessageRepository
}

type Builder struct {
	repos      Repositories
	classifier *progress.Classifier
	overview   OverviewProvider
	now        func() time.Time
}

func NewBuilder(repos Repositories, classifier *progress.Classifier, overview OverviewProvider) *Builder {
	return &Builder{
		repos:      repos,
		classifier: classifier,
		overview:   overview,
		now:        time.Now,
	}
}

// subject is one user's classified enrollments with their stats.
type subject struct {
	enrollments    []*model.Enrollment
	classification *progress.Classification
	stats          model.CompletionStats
}

func (b *Builder) loadSubject(ctx context.Context, userID bson.ObjectID) (*subject, error) {
	enrollments, err := b.repos.Enrollments.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}
	cls, err := b.classifier.Classify(ctx, enrollments)
	if err != nil {
		return nil, err
	}
	return &subject{
		enrollments:    enrollments,
		classification: cls,
		stats:          progress.Summarize(enrollments),
	}, nil
}

// UserDetail builds the admin view of one user. Any failing sub-query fails
// the whole view.
func (b *Builder) UserDetail(ctx context.Context, id bson.ObjectID) (*model.UserDetail, error) {
	user, err := b.repos.Users.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("user", err)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	var (
		profile   interface{}
		corporate *model.CorporateProfile
	)
	switch user.Role {
	case model.RoleIndividual:
		p, err := b.repos.Profiles.GetIndividualByUser(ctx, user.ID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("failed to get individual profile: %w", err)
		}
		if p != nil {
			profile = p
		}
	case model.RoleCorporate:
		corporate, err = b.corporateOf(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		if corporate != nil {
			profile = corporate
		}
	}

	own, err := b.loadSubject(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	membership, err := b.membershipOf(ctx, user, corporate)
	if err != nil {
		return nil, err
	}

	detail := &model.UserDetail{
		Success:         true,
		User:            user,
		Profile:         profile,
		Enrollments:     own.classification.All,
		Courses:         own.classification.Courses,
		Events:          own.classification.Events,
		Membership:      membership,
		CompletionStats: own.stats,
		Engagement:      engagement.Describe(user, b.now()),
	}

	switch user.Role {
	case model.RoleCorporate:
		members, staff, err := b.team(ctx, corporate)
		if err != nil {
			return nil, err
		}
		stats := progress.Rollup(own.classification, staff)
		detail.CorporateTeam = members
		detail.CorporateStats = &stats
	case model.RoleStaff:
		corp, err := b.staffCorporation(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		content, err := b.staffContent(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		detail.StaffCorporation = corp
		detail.StaffContent = content
	}

	return detail, nil
}

// CorporateTeam is the roster view a corporate account sees of itself.
func (b *Builder) CorporateTeam(ctx context.Context, ownerID bson.ObjectID) (*model.Team, error) {
	corp, err := b.corporateOf(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if corp == nil {
		return nil, apperrors.NotFound("corporate profile", repository.ErrNotFound)
	}

	own, err := b.loadSubject(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	members, staff, err := b.team(ctx, corp)
	if err != nil {
		return nil, err
	}
	return &model.Team{
		Corporation: corp,
		Members:     members,
		Stats:       progress.Rollup(own.classification, staff),
	}, nil
}

// Dashboard is the caller's own landing view, shaped by role.
func (b *Builder) Dashboard(ctx context.Context, viewer model.Viewer) (*model.Dashboard, error) {
	user, err := b.repos.Users.Get(ctx, viewer.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("user", err)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	unread, err := b.repos.Messages.CountUnread(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count unread messages: %w", err)
	}
	dash := &model.Dashboard{Role: user.Role, UnreadMessages: unread}

	switch user.Role {
	case model.RoleAdmin, model.RoleSubAdmin:
		overview, err := b.overview.Overview(ctx, model.DateRange{})
		if err != nil {
			return nil, err
		}
		dash.Overview = overview
		return dash, nil

	case model.RoleCorporate:
		team, err := b.CorporateTeam(ctx, user.ID)
		if err != nil && !apperrors.HasCode(err, apperrors.ErrNotFound) {
			return nil, err
		}
		dash.Team = team
		membership, err := b.membershipOf(ctx, user, teamCorporation(team))
		if err != nil {
			return nil, err
		}
		dash.Membership = membership
		return dash, nil
	}

	own, err := b.loadSubject(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	membership, err := b.membershipOf(ctx, user, nil)
	if err != nil {
		return nil, err
	}
	e := engagement.Describe(user, b.now())
	dash.Courses = own.classification.Courses
	dash.Events = own.classification.Events
	dash.CompletionStats = &own.stats
	dash.Engagement = &e
	dash.Membership = membership
	return dash, nil
}

func teamCorporation(t *model.Team) *model.CorporateProfile {
	if t == nil {
		return nil
	}
	return t.Corporation
}

// team enriches every roster entry with its user and progress.
func (b *Builder) team(ctx context.Context, corp *model.CorporateProfile) ([]model.TeamMember, []progress.StaffProgress, error) {
	if corp == nil {
		return []model.TeamMember{}, nil, nil
	}

	roster, err := b.repos.Staff.ListByCorporate(ctx, corp.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list corporate staff: %w", err)
	}

	userIDs := make([]bson.ObjectID, 0, len(roster))
	for _, s := range roster {
		userIDs = append(userIDs, s.UserID)
	}
	users, err := b.repos.Users.FindByIDs(ctx, userIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load staff users: %w", err)
	}
	byID := make(map[bson.ObjectID]*model.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	now := b.now()
	members := make([]model.TeamMember, 0, len(roster))
	staff := make([]progress.StaffProgress, 0, len(roster))
	for _, s := range roster {
		sub, err := b.loadSubject(ctx, s.UserID)
		if err != nil {
			return nil, nil, err
		}
		user := byID[s.UserID]

		member := model.TeamMember{
			Staff:           s,
			User:            user,
			Courses:         sub.classification.Courses,
			Events:          sub.classification.Events,
			CompletionStats: sub.stats,
		}
		if user != nil {
			member.Engagement = engagement.Describe(user, now)
		} else {
			member.Engagement = model.Engagement{Status: "Never", Tier: model.TierInactive}
		}
		members = append(members, member)
		staff = append(staff, progress.StaffProgress{
			Staff:          s,
			User:           user,
			Classification: sub.classification,
			Stats:          sub.stats,
		})
	}
	return members, staff, nil
}

// corporateOf returns the corporate profile owned by userID, or nil.
func (b *Builder) corporateOf(ctx context.Context, userID bson.ObjectID) (*model.CorporateProfile, error) {
	corp, err := b.repos.Profiles.GetCorporateByOwner(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get corporate profile: %w", err)
	}
	return corp, nil
}

// membershipOf returns the current membership. Corporate accounts hold
// memberships through their profile, everyone else through the user.
func (b *Builder) membershipOf(ctx context.Context, user *model.User, corp *model.CorporateProfile) (*model.Membership, error) {
	subjectType, subjectID := model.SubjectUser, user.ID
	if user.Role == model.RoleCorporate {
		if corp == nil {
			return nil, nil
		}
		subjectType, subjectID = model.SubjectCorporate, corp.ID
	}

	m, err := b.repos.Memberships.Latest(ctx, subjectType, subjectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	return m, nil
}

func (b *Builder) staffCorporation(ctx context.Context, userID bson.ObjectID) (*model.CorporateProfile, error) {
	record, err := b.repos.Staff.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get staff record: %w", err)
	}
	corp, err := b.repos.Profiles.GetCorporate(ctx, record.CorporateID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get staff corporation: %w", err)
	}
	return corp, nil
}

func (b *Builder) staffContent(ctx context.Context, userID bson.ObjectID) (*model.StaffContent, error) {
	courses, err := b.repos.Courses.CountByCreator(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count authored courses: %w", err)
	}
	events, err := b.repos.Events.CountByCreator(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count authored events: %w", err)
	}
	return &model.StaffContent{CoursesCreated: courses, EventsCreated: events}, nil
}
