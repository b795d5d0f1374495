package model

import "time"

// EngagementTier is the display bucket dashboards key colour-coding off.
type EngagementTier string

const (
	TierActive    EngagementTier = "active"
	TierMinutes   EngagementTier = "minutes"
	TierHours     EngagementTier = "hours"
	TierYesterday EngagementTier = "yesterday"
	TierDays      EngagementTier = "days"
	TierWeeks     EngagementTier = "weeks"
	TierInactive  EngagementTier = "inactive"
)

type Engagement struct {
	Status             string         `json:"status"`
	Tier               EngagementTier `json:"tier"`
	IsCurrentlyActive  bool           `json:"isCurrentlyActive"`
	LastSeenAt         *time.Time     `json:"lastSeenAt,omitempty"`
	MinutesSinceActive *int           `json:"minutesSinceActive,omitempty"`
}

type StaffBreakdown struct {
	StaffID           string `json:"staffId"`
	Name              string `json:"name"`
	TotalCourses      int    `json:"totalCourses"`
	CompletedCourses  int    `json:"completedCourses"`
	InProgressCourses int    `json:"inProgressCourses"`
}

type CorporateStats struct {
	TotalStaff            int              `json:"totalStaff"`
	TotalCourses          int              `json:"totalCourses"`
	TotalEvents           int              `json:"totalEvents"`
	TotalEnrollments      int              `json:"totalEnrollments"`
	AverageCompletionRate int              `json:"averageCompletionRate"`
	StaffCoursesBreakdown []StaffBreakdown `json:"staffCoursesBreakdown"`
}

// TeamMember is one roster entry enriched with its user and progress.
type TeamMember struct {
	Staff           *CorporateStaff        `json:"staff"`
	User            *User                  `json:"user"`
	Courses         []ClassifiedEnrollment `json:"courses"`
	Events          []ClassifiedEnrollment `json:"events"`
	CompletionStats CompletionStats        `json:"completionStats"`
	Engagement      Engagement             `json:"engagement"`
}

type StaffContent struct {
	CoursesCreated int64 `json:"coursesCreated"`
	EventsCreated  int64 `json:"eventsCreated"`
}

// UserDetail is the admin user-detail payload. Role-specific fields are
// omitted for other roles.
type UserDetail struct {
	Success          bool                   `json:"success"`
	User             *User                  `json:"user"`
	Profile          interface{}            `json:"profile"`
	Enrollments      []ClassifiedEnrollment `json:"enrollments"`
	Events           []ClassifiedEnrollment `json:"events"`
	Courses          []ClassifiedEnrollment `json:"courses"`
	Membership       *Membership            `json:"membership"`
	CompletionStats  CompletionStats        `json:"completionStats"`
	Engagement       Engagement             `json:"engagement"`
	CorporateTeam    []TeamMember           `json:"corporateTeam,omitempty"`
	CorporateStats   *CorporateStats        `json:"corporateStats,omitempty"`
	StaffContent     *StaffContent          `json:"staffContent,omitempty"`
	StaffCorporation *CorporateProfile      `json:"staffCorporation,omitempty"`
}

// Team is a corporate's roster with its rollup.
type Team struct {
	Corporation *CorporateProfile `json:"corporation"`
	Members     []TeamMember      `json:"members"`
	Stats       CorporateStats    `json:"stats"`
}

// Dashboard is the caller's own role-scoped landing view.
type Dashboard struct {
	Role            Role                   `json:"role"`
	Courses         []ClassifiedEnrollment `json:"courses,omitempty"`
	Events          []ClassifiedEnrollment `json:"events,omitempty"`
	CompletionStats *CompletionStats       `json:"completionStats,omitempty"`
	Engagement      *Engagement            `json:"engagement,omitempty"`
	Membership      *Membership            `json:"membership,omitempty"`
	Team            *Team                  `json:"team,omitempty"`
	Overview        *OverviewMetrics       `json:"overview,omitempty"`
	UnreadMessages  int64                  `json:"unreadMessages"`
}
