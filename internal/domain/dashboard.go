package domain

type DashboardStats struct {
	TotalEmployees   int      `json:"totalEmployees"`
	ActiveEmployees  int      `json:"activeEmployees"`
	ActiveSurveys    int      `json:"activeSurveys"`
	PendingResponses int      `json:"pendingResponses"`
	CompletionRate   float64  `json:"completionRate"`
	AverageWellness  float64  `json:"averageWellness"`
	Alerts           []Alert  `json:"alerts"`
	RecentReports    []Report `json:"recentReports"`
}

type ManagerDashboardStats struct {
	SectorName      string   `json:"sectorName"`
	TotalEmployees  int      `json:"totalEmployees"`
	ResponseRate    float64  `json:"responseRate"`
	AverageWellness float64  `json:"averageWellness"`
	Alerts          []Alert  `json:"alerts"`
	RecentReports   []Report `json:"recentReports"`
}

type EmployeeDashboardStats struct {
	PendingSurveys       int                  `json:"pendingSurveys"`
	CompletedSurveys     int                  `json:"completedSurveys"`
	AvailableVideos      int                  `json:"availableVideos"`
	GamificationProgress GamificationProgress `json:"gamificationProgress"`
	Notifications        []Notification       `json:"notifications"`
}
