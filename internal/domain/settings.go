package domain

// Settings are per company and stored with ID equal to CompanyID
type Settings struct {
	Base
	CompanyID             string        `json:"companyId"`
	BusinessHours         BusinessHours `json:"businessHours"`
	AllowOutsideHours     bool          `json:"allowOutsideHours"`
	EnableReminders       bool          `json:"enableReminders"`
	ReminderFrequency     int           `json:"reminderFrequency"` // days
	MinResponsesForReport int           `json:"minResponsesForReport"`
	AutoGenerateReports   bool          `json:"autoGenerateReports"`
}

// DefaultSettings seeds a company's settings on first read
func DefaultSettings(companyID string, hours *BusinessHours) Settings {
	bh := DefaultBusinessHours()
	if hours != nil {
		bh = *hours
	}
	return Settings{
		Base:                  Base{ID: companyID},
		CompanyID:             companyID,
		BusinessHours:         bh,
		EnableReminders:       true,
		ReminderFrequency:     7,
		MinResponsesForReport: 10,
		AutoGenerateReports:   true,
	}
}

func (s *Settings) Validate() error {
	if s.CompanyID == "" {
		return Invalid("companyId is required")
	}
	if s.ReminderFrequency < 0 || s.MinResponsesForReport < 0 {
		return Invalid("reminderFrequency and minResponsesForReport cannot be negative")
	}
	return s.BusinessHours.Validate()
}
