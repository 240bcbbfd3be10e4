package domain

import "time"

// ReportStatus progresses pending -> generating -> ready, or error
type ReportStatus string

const (
	ReportPending    ReportStatus = "pending"
	ReportGenerating ReportStatus = "generating"
	ReportReady      ReportStatus = "ready"
	ReportError      ReportStatus = "error"
)

func (s ReportStatus) Valid() bool {
	switch s {
	case ReportPending, ReportGenerating, ReportReady, ReportError:
		return true
	}
	return false
}

// Score categories aggregated per sector
const (
	CategoryStress       = "stress"
	CategorySatisfaction = "satisfaction"
	CategoryBurnout      = "burnout"
)

type AlertType string

const (
	AlertStress          AlertType = "stress"
	AlertBurnout         AlertType = "burnout"
	AlertDissatisfaction AlertType = "dissatisfaction"
)

type AlertLevel string

const (
	AlertWarning  AlertLevel = "warning"
	AlertCritical AlertLevel = "critical"
)

type Alert struct {
	Type    AlertType  `json:"type"`
	Level   AlertLevel `json:"level"`
	Message string     `json:"message"`
}

type InsightLevel string

const (
	InsightLow      InsightLevel = "low"
	InsightMedium   InsightLevel = "medium"
	InsightHigh     InsightLevel = "high"
	InsightCritical InsightLevel = "critical"
)

type Insight struct {
	Category        string       `json:"category"`
	Level           InsightLevel `json:"level"`
	Message         string       `json:"message"`
	AffectedSectors []string     `json:"affectedSectors"`
}

// SectorReport holds 0-10 averages keyed by question category
type SectorReport struct {
	Sector        string             `json:"sector"`
	ResponseCount int                `json:"responseCount"`
	AverageScores map[string]float64 `json:"averageScores"`
	Alerts        []Alert            `json:"alerts"`
}

type ChartData struct {
	Type  string `json:"type"` // bar, line, pie, radar
	Title string `json:"title"`
	Data  any    `json:"data"`
}

type ReportData struct {
	TotalResponses int            `json:"totalResponses"`
	ResponseRate   float64        `json:"responseRate"`
	Sectors        []SectorReport `json:"sectors"`
	Insights       []Insight      `json:"insights"`
	Charts         []ChartData    `json:"charts"`
}

// Report aggregates one survey cycle. An empty Sector means a company-wide report.
type Report struct {
	Base
	SurveyID    string       `json:"surveyId"`
	CycleID     string       `json:"cycleId"`
	CompanyID   string       `json:"companyId"`
	Sector      string       `json:"sector,omitempty"`
	Title       string       `json:"title"`
	RequestedBy string       `json:"requestedBy,omitempty"`
	Status      ReportStatus `json:"status"`
	Data        ReportData   `json:"data"`
	Error       string       `json:"error,omitempty"`
	GeneratedAt *time.Time   `json:"generatedAt,omitempty"`
	DeletedAt   *time.Time   `json:"deletedAt,omitempty"`
}

func (r *Report) Validate() error {
	if r.SurveyID == "" || r.CompanyID == "" {
		return Invalid("surveyId and companyId are required")
	}
	if !r.Status.Valid() {
		return Invalidf("unknown report status %q", r.Status)
	}
	return nil
}

// VisibleToSector is true for the sector's own reports and company-wide ones
func (r *Report) VisibleToSector(sector string) bool {
	return r.Sector == "" || r.Sector == sector
}

type ReportStats struct {
	Total      int `json:"total"`
	Ready      int `json:"ready"`
	Generating int `json:"generating"`
	Error      int `json:"error"`
}
