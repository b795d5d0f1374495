// Package engagement turns a user's activity timestamps into the status
// line and display tier dashboards show.
package engagement

import (
	"fmt"
	"time"

	"github.com/jwalitptl/training-api/internal/model"
)

// Breakpoints. Dashboards key colour-coding off these, keep them exact.
const (
	ActiveWindow = 5 * time.Minute
	hourWindow   = time.Hour
	dayWindow    = 24 * time.Hour
	yesterday    = 2 * 24 * time.Hour
	weekWindow   = 7 * 24 * time.Hour
	monthWindow  = 30 * 24 * time.Hour
)

// LastSeen is the reference time for a user: last activity, then last
// login, then account creation. ok is false when none is set.
func LastSeen(u *model.User) (t time.Time, ok bool) {
	switch {
	case u.LastActivity != nil && !u.LastActivity.IsZero():
		return *u.LastActivity, true
	case u.LastLogin != nil && !u.LastLogin.IsZero():
		return *u.LastLogin, true
	case !u.CreatedAt.IsZero():
		return u.CreatedAt, true
	}
	return time.Time{}, false
}

// Describe formats u's engagement as of now. Timestamps in the future
// count as active now.
func Describe(u *model.User, now time.Time) model.Engagement {
	ref, ok := LastSeen(u)
	if !ok {
		return model.Engagement{Status: "Never", Tier: model.TierInactive}
	}

	elapsed := now.Sub(ref)
	if elapsed < 0 {
		elapsed = 0
	}
	minutes := int(elapsed / time.Minute)

	e := model.Engagement{
		LastSeenAt:         &ref,
		MinutesSinceActive: &minutes,
	}
	e.Status, e.Tier = Tier(elapsed)
	e.IsCurrentlyActive = e.Tier == model.TierActive
	return e
}

// Tier maps an elapsed duration onto its status line and tier.
func Tier(elapsed time.Duration) (string, model.EngagementTier) {
	switch {
	case elapsed < ActiveWindow:
		return "Active now", model.TierActive
	case elapsed < hourWindow:
		return ago(int(elapsed/time.Minute), "minute"), model.TierMinutes
	case elapsed < dayWindow:
		return ago(int(elapsed/time.Hour), "hour"), model.TierHours
	case elapsed < yesterday:
		return "Yesterday", model.TierYesterday
	case elapsed < weekWindow:
		return ago(int(elapsed/dayWindow), "day"), model.TierDays
	case elapsed < monthWindow:
		// Still phrased in days; the tier is what distinguishes it.
		return ago(int(elapsed/dayWindow), "day"), model.TierWeeks
	}
	return "Over a month ago", model.TierInactive
}

func ago(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
