package model

type Metric string

const (
	MetricOverview     Metric = "overview"
	MetricCourses      Metric = "courses"
	MetricEvents       Metric = "events"
	MetricUserBehavior Metric = "userBehavior"
	MetricIndividuals  Metric = "individuals"
	MetricMemberships  Metric = "memberships"
	MetricCorporates   Metric = "corporates"
)

func (m Metric) Valid() bool {
	switch m {
	case MetricOverview, MetricCourses, MetricEvents, MetricUserBehavior,
		MetricIndividuals, MetricMemberships, MetricCorporates:
		return true
	}
	return false
}

type OverviewMetrics struct {
	TotalUsers        int64            `json:"totalUsers"`
	UsersByRole       map[string]int64 `json:"usersByRole"`
	TotalCourses      int64            `json:"totalCourses"`
	TotalEvents       int64            `json:"totalEvents"`
	TotalEnrollments  int64            `json:"totalEnrollments"`
	ActiveMemberships int64            `json:"activeMemberships"`
	Revenue           float64          `json:"revenue"`
	CompletionRate    int              `json:"completionRate"`
}

type TargetCount struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Enrollments int64  `json:"enrollments"`
	Completed   int64  `json:"completed"`
}

// CatalogMetrics serves both the courses and the events metric.
type CatalogMetrics struct {
	Total      int64            `json:"total"`
	NewInRange int64            `json:"newInRange"`
	ByStatus   map[string]int64 `json:"byStatus"`
	ByCategory map[string]int64 `json:"byCategory"`
	Top        []TargetCount    `json:"top"`
}

type UserBehaviorMetrics struct {
	ActiveNow     int64 `json:"activeNow"`
	ActiveLast24h int64 `json:"activeLast24h"`
	ActiveLast7d  int64 `json:"activeLast7d"`
	ActiveLast30d int64 `json:"activeLast30d"`
	NewUsers      int64 `json:"newUsers"`
	LoginsInRange int64 `json:"loginsInRange"`
}

type IndividualMetrics struct {
	Total         int64            `json:"total"`
	ByStatus      map[string]int64 `json:"byStatus"`
	NewInRange    int64            `json:"newInRange"`
	ActiveLast30d int64            `json:"activeLast30d"`
}

type MembershipMetrics struct {
	ByStatus      map[string]int64 `json:"byStatus"`
	BySubjectType map[string]int64 `json:"bySubjectType"`
	Payments      int64            `json:"payments"`
	Revenue       float64          `json:"revenue"`
}

type CorporateMetrics struct {
	Total            int64            `json:"total"`
	ByStatus         map[string]int64 `json:"byStatus"`
	TotalStaff       int64            `json:"totalStaff"`
	StaffByApproval  map[string]int64 `json:"staffByApproval"`
	AverageStaffSize float64          `json:"averageStaffSize"`
}
