package repository

// Document store collection names.
const (
	CollUsers              = "users"
	CollIndividualProfiles = "individual_profiles"
	CollCorporateProfiles  = "corporate_profiles"
	CollCorporateStaff     = "corporate_staff"
	CollCourses            = "courses"
	CollEvents             = "events"
	CollEnrollments        = "enrollments"
	CollMemberships        = "memberships"
	CollPlans              = "plans"
	CollPayments           = "payments"
	CollMessages           = "messages"
	CollAnnouncements      = "announcements"
	CollNotifications      = "notifications"
	CollSiteContent        = "site_content"
)
