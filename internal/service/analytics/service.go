// Package analytics computes the admin dashboard metrics from store counts.
package analytics

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"

	"github.com/jwalitptl/training-api/internal/model"
	"github.com/jwalitptl/training-api/internal/repository"
	"github.com/jwalitptl/training-api/internal/service/progress"
	apperrors "github.com/jwalitptl/training-api/pkg/errors"
	"github.com/jwalitptl/training-api/pkg/metrics"
)

const topTargets = 5

type AnalyticsServicer interface {
	Metric(ctx context.Context, metric model.Metric, r model.DateRange) (interface{}, error)
	Overview(ctx context.Context, r model.DateRange) (*model.OverviewMetrics, error)
}

type Service struct {
	stats   repository.StatsRepository
	cache   *cache.Cache
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewService caches computed metrics for ttl. A zero ttl disables caching.
func NewService(stats repository.StatsRepository, ttl time.Duration, m *metrics.Metrics) *Service {
	s := &Service{
		stats:   stats,
		metrics: m,
		now:     time.Now,
	}
	if ttl > 0 {
		s.cache = cache.New(ttl, 2*ttl)
	}
	return s
}

func (s *Service) Metric(ctx context.Context, metric model.Metric, r model.DateRange) (interface{}, error) {
	if !metric.Valid() {
		return nil, apperrors.BadRequest(fmt.Sprintf("unknown metric %q", metric), nil)
	}
	if !r.Start.IsZero() && !r.End.IsZero() && r.End.Before(r.Start) {
		return nil, apperrors.BadRequest("endDate must not be before startDate", nil)
	}

	key := cacheKey(metric, r)
	if s.cache != nil {
		if v, ok := s.cache.Get(key); ok {
			s.metrics.ObserveCache("analytics", true)
			return v, nil
		}
		s.metrics.ObserveCache("analytics", false)
	}

	var (
		result interface{}
		err    error
	)
	switch metric {
	case model.MetricOverview:
		result, err = s.overview(ctx, r)
	case model.MetricCourses:
		result, err = s.catalog(ctx, repository.CollCourses, r)
	case model.MetricEvents:
		result, err = s.catalog(ctx, repository.CollEvents, r)
	case model.MetricUserBehavior:
		result, err = s.userBehavior(ctx, r)
	case model.MetricIndividuals:
		result, err = s.individuals(ctx, r)
	case model.MetricMemberships:
		result, err = s.memberships(ctx, r)
	case model.MetricCorporates:
		result, err = s.corporates(ctx, r)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to compute %s metrics: %w", metric, err)
	}

	if s.cache != nil {
		s.cache.SetDefault(key, result)
	}
	return result, nil
}

// Overview is the uncached platform summary admin dashboards embed.
func (s *Service) Overview(ctx context.Context, r model.DateRange) (*model.OverviewMetrics, error) {
	out, err := s.overview(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("failed to compute overview: %w", err)
	}
	return out, nil
}

func cacheKey(metric model.Metric, r model.DateRange) string {
	return fmt.Sprintf("%s|%d|%d", metric, unix(r.Start), unix(r.End))
}

func unix(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

func created(r model.DateRange) repository.Criteria {
	return repository.Criteria{DateField: "created_at", Range: r}
}

func matching(field string, value interface{}) repository.Criteria {
	return repository.Criteria{Match: map[string]interface{}{field: value}}
}

func (s *Service) overview(ctx context.Context, r model.DateRange) (*model.OverviewMetrics, error) {
	out := &model.OverviewMetrics{}
	var completed, enrollments int64

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.TotalUsers, err = s.stats.Count(ctx, repository.CollUsers, created(r))
		return err
	})
	g.Go(func() (err error) {
		out.UsersByRole, err = s.stats.GroupCount(ctx, repository.CollUsers, "role", created(r))
		return err
	})
	g.Go(func() (err error) {
		out.TotalCourses, err = s.stats.Count(ctx, repository.CollCourses, created(r))
		return err
	})
	g.Go(func() (err error) {
		out.TotalEvents, err = s.stats.Count(ctx, repository.CollEvents, created(r))
		return err
	})
	g.Go(func() (err error) {
		enrollments, err = s.stats.Count(ctx, repository.CollEnrollments, created(r))
		return err
	})
	g.Go(func() (err error) {
		q := matching("status", model.EnrollmentStatusCompleted)
		q.DateField, q.Range = "created_at", r
		completed, err = s.stats.Count(ctx, repository.CollEnrollments, q)
		return err
	})
	g.Go(func() (err error) {
		out.ActiveMemberships, err = s.stats.Count(ctx, repository.CollMemberships, matching("status", model.MembershipActive))
		return err
	})
	g.Go(func() (err error) {
		out.Revenue, err = s.revenue(ctx, r)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out.TotalEnrollments = enrollments
	out.CompletionRate = progress.Rate(int(completed), int(enrollments))
	return out, nil
}

func (s *Service) revenue(ctx context.Context, r model.DateRange) (float64, error) {
	q := matching("status", model.PaymentCompleted)
	q.DateField, q.Range = "created_at", r
	return s.stats.Sum(ctx, repository.CollPayments, "amount", q)
}

func (s *Service) catalog(ctx context.Context, collection string, r model.DateRange) (*model.CatalogMetrics, error) {
	out := &model.CatalogMetrics{}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.Total, err = s.stats.Count(ctx, collection, repository.Criteria{})
		return err
	})
	g.Go(func() (err error) {
		out.NewInRange, err = s.stats.Count(ctx, collection, created(r))
		return err
	})
	g.Go(func() (err error) {
		out.ByStatus, err = s.stats.GroupCount(ctx, collection, "status", repository.Criteria{})
		return err
	})
	g.Go(func() (err error) {
		out.ByCategory, err = s.stats.GroupCount(ctx, collection, "category", repository.Criteria{})
		return err
	})
	g.Go(func() (err error) {
		out.Top, err = s.stats.TopTargets(ctx, collection, topTargets, r)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// userBehavior counts users by recency of lastActivity. Logins default to
// the last 30 days when no range is given.
func (s *Service) userBehavior(ctx context.Context, r model.DateRange) (*model.UserBehaviorMetrics, error) {
	now := s.now()
	out := &model.UserBehaviorMetrics{}
	logins := r
	if logins.IsZero() {
		logins = model.DateRange{Start: now.Add(-30 * 24 * time.Hour)}
	}

	g, ctx := errgroup.WithContext(ctx)
	activeSince := func(dst *int64, d time.Duration) func() error {
		return func() (err error) {
			*dst, err = s.stats.Count(ctx, repository.CollUsers, repository.Criteria{
				DateField: "last_activity",
				Since:     now.Add(-d),
			})
			return err
		}
	}
	g.Go(activeSince(&out.ActiveNow, 5*time.Minute))
	g.Go(activeSince(&out.ActiveLast24h, 24*time.Hour))
	g.Go(activeSince(&out.ActiveLast7d, 7*24*time.Hour))
	g.Go(activeSince(&out.ActiveLast30d, 30*24*time.Hour))
	g.Go(func() (err error) {
		out.NewUsers, err = s.stats.Count(ctx, repository.CollUsers, created(r))
		return err
	})
	g.Go(func() (err error) {
		out.LoginsInRange, err = s.stats.Count(ctx, repository.CollUsers, repository.Criteria{
			DateField: "last_login",
			Range:     logins,
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) individuals(ctx context.Context, r model.DateRange) (*model.IndividualMetrics, error) {
	now := s.now()
	out := &model.IndividualMetrics{}
	role := func() repository.Criteria { return matching("role", model.RoleIndividual) }

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.Total, err = s.stats.Count(ctx, repository.CollUsers, role())
		return err
	})
	g.Go(func() (err error) {
		out.ByStatus, err = s.stats.GroupCount(ctx, repository.CollUsers, "status", role())
		return err
	})
	g.Go(func() (err error) {
		q := role()
		q.DateField, q.Range = "created_at", r
		out.NewInRange, err = s.stats.Count(ctx, repository.CollUsers, q)
		return err
	})
	g.Go(func() (err error) {
		q := role()
		q.DateField, q.Since = "last_activity", now.Add(-30*24*time.Hour)
		out.ActiveLast30d, err = s.stats.Count(ctx, repository.CollUsers, q)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) memberships(ctx context.Context, r model.DateRange) (*model.MembershipMetrics, error) {
	out := &model.MembershipMetrics{}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.ByStatus, err = s.stats.GroupCount(ctx, repository.CollMemberships, "status", created(r))
		return err
	})
	g.Go(func() (err error) {
		out.BySubjectType, err = s.stats.GroupCount(ctx, repository.CollMemberships, "subject_type", created(r))
		return err
	})
	g.Go(func() (err error) {
		out.Payments, err = s.stats.Count(ctx, repository.CollPayments, created(r))
		return err
	})
	g.Go(func() (err error) {
		out.Revenue, err = s.revenue(ctx, r)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) corporates(ctx context.Context, r model.DateRange) (*model.CorporateMetrics, error) {
	out := &model.CorporateMetrics{}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.Total, err = s.stats.Count(ctx, repository.CollCorporateProfiles, created(r))
		return err
	})
	g.Go(func() (err error) {
		out.ByStatus, err = s.stats.GroupCount(ctx, repository.CollCorporateProfiles, "status", created(r))
		return err
	})
	g.Go(func() (err error) {
		out.TotalStaff, err = s.stats.Count(ctx, repository.CollCorporateStaff, created(r))
		return err
	})
	g.Go(func() (err error) {
		out.StaffByApproval, err = s.stats.GroupCount(ctx, repository.CollCorporateStaff, "approval_status", created(r))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if out.Total > 0 {
		out.AverageStaffSize = math.Round(float64(out.TotalStaff)/float64(out.Total)*10) / 10
	}
	return out, nil
}
