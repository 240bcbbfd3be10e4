package domain

type NotificationType string

const (
	NotificationSurveyPending       NotificationType = "survey_pending"
	NotificationDeadlineApproaching NotificationType = "deadline_approaching"
	NotificationReportReady         NotificationType = "report_ready"
	NotificationCycleClosed         NotificationType = "cycle_closed"
	NotificationWelcome             NotificationType = "welcome"
	NotificationBadgeEarned         NotificationType = "badge_earned"
)

type Notification struct {
	Base
	UserID  string           `json:"userId"`
	Type    NotificationType `json:"type"`
	Title   string           `json:"title"`
	Message string           `json:"message"`
	IsRead  bool             `json:"isRead"`
	Link    string           `json:"link,omitempty"`
}
