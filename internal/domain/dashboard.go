package domain

// MembershipStats aggregates user counts for the admin dashboard.
type MembershipStats struct {
	TotalMembers        int32 `json:"total_members"`
	TotalActiveMembers  int32 `json:"total_active_members"`
	TotalAlumni         int32 `json:"total_alumni"`
	PendingApplications int32 `json:"pending_applications"`
}

// MemberDashboard is the self-service view for a logged-in member.
type MemberDashboard struct {
	ProfileStatus     ProfileStatus     `json:"profile_status"`
	ApplicationStatus ApplicationStatus `json:"application_status"`
	IsVerified        bool              `json:"is_verified"`
	Role              Role              `json:"role"`
	FastVerification  FastVerification  `json:"fast_verification"`
}

// FastVerification reports remaining quota for the escalation request.
type FastVerification struct {
	RequestsToday int32 `json:"requests_today"`
	DailyCap      int32 `json:"daily_cap"`
}
