package domain

import (
	"strconv"
	"strings"
	"time"
)

// SurveyStatus only moves forward: draft -> active -> closed
type SurveyStatus string

const (
	SurveyDraft  SurveyStatus = "draft"
	SurveyActive SurveyStatus = "active"
	SurveyClosed SurveyStatus = "closed"
)

func (s SurveyStatus) rank() int {
	switch s {
	case SurveyDraft:
		return 0
	case SurveyActive:
		return 1
	case SurveyClosed:
		return 2
	}
	return -1
}

func (s SurveyStatus) Valid() bool { return s.rank() >= 0 }

// CanMoveTo allows staying put or moving forward, never backwards
func (s SurveyStatus) CanMoveTo(next SurveyStatus) bool {
	return s.Valid() && next.Valid() && next.rank() >= s.rank()
}

// Survey is an ordered list of question ids with a run window
type Survey struct {
	Base
	Title             string       `json:"title"`
	Description       string       `json:"description"`
	CompanyID         string       `json:"companyId"`
	Questions         []string     `json:"questions"`
	Status            SurveyStatus `json:"status"`
	StartDate         time.Time    `json:"startDate"`
	EndDate           time.Time    `json:"endDate"`
	ReminderFrequency int          `json:"reminderFrequency"` // days
	MinResponses      int          `json:"minResponses"`
	DeletedAt         *time.Time   `json:"deletedAt,omitempty"`
}

func (s *Survey) Validate() error {
	if strings.TrimSpace(s.Title) == "" {
		return Invalid("survey title is required")
	}
	if s.CompanyID == "" {
		return Invalid("companyId is required")
	}
	if !s.Status.Valid() {
		return Invalidf("unknown survey status %q", s.Status)
	}
	if !s.StartDate.IsZero() && !s.EndDate.IsZero() && !s.EndDate.After(s.StartDate) {
		return Invalid("endDate must be after startDate")
	}
	if s.ReminderFrequency < 0 || s.MinResponses < 0 {
		return Invalid("reminderFrequency and minResponses cannot be negative")
	}
	return nil
}

// InWindow reports whether t is inside [StartDate, EndDate]. Zero bounds are open.
func (s *Survey) InWindow(t time.Time) bool {
	if !s.StartDate.IsZero() && t.Before(s.StartDate) {
		return false
	}
	if !s.EndDate.IsZero() && t.After(s.EndDate) {
		return false
	}
	return true
}

func (s *Survey) HasQuestion(id string) bool {
	for _, q := range s.Questions {
		if q == id {
			return true
		}
	}
	return false
}

// SurveyCycle is one bounded run of a survey
type SurveyCycle struct {
	Base
	SurveyID      string       `json:"surveyId"`
	CompanyID     string       `json:"companyId"`
	StartDate     time.Time    `json:"startDate"`
	EndDate       time.Time    `json:"endDate"`
	Status        SurveyStatus `json:"status"`
	ResponseCount int          `json:"responseCount"`
	TargetCount   int          `json:"targetCount"`
}

// Progress is ResponseCount/TargetCount as a percentage, 0 when no target is set
func (c *SurveyCycle) Progress() float64 {
	if c.TargetCount <= 0 {
		return 0
	}
	return float64(c.ResponseCount) * 100 / float64(c.TargetCount)
}

// Answer holds a string or a number; JSON numbers decode as float64
type Answer struct {
	QuestionID string `json:"questionId"`
	Value      any    `json:"value"`
}

// Number returns the numeric value of the answer. Numeric strings count.
func (a Answer) Number() (float64, bool) {
	switch v := a.Value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}
	return 0, false
}

// YesNo reads booleans and yes/no words in English or Portuguese
func (a Answer) YesNo() (bool, bool) {
	switch v := a.Value.(type) {
	case bool:
		return v, true
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "yes", "sim", "true":
			return true, true
		case "no", "não", "nao", "false":
			return false, true
		}
	}
	return false, false
}

// Text returns the answer as a string when it is one
func (a Answer) Text() (string, bool) {
	s, ok := a.Value.(string)
	return s, ok
}

// SurveyResponse is anonymised: only the sector is kept, never the employee
type SurveyResponse struct {
	Base
	SurveyID    string    `json:"surveyId"`
	CycleID     string    `json:"cycleId"`
	CompanyID   string    `json:"companyId"`
	Sector      string    `json:"sector"`
	Answers     []Answer  `json:"answers"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// Completion records that a user answered a cycle, kept apart from the
// anonymous response so answers cannot be joined back to a person
type Completion struct {
	Base
	UserID   string `json:"userId"`
	SurveyID string `json:"surveyId"`
	CycleID  string `json:"cycleId"`
}

// SurveyStats counts visible surveys per status
type SurveyStats struct {
	Total  int `json:"total"`
	Active int `json:"active"`
	Draft  int `json:"draft"`
	Closed int `json:"closed"`
}
