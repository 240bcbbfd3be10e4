package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/aryan0dhankhar/wellpulse/internal/domain"
	"github.com/aryan0dhankhar/wellpulse/internal/repository"
	"github.com/aryan0dhankhar/wellpulse/pkg/cache"
)

const (
	recentReports    = 5
	maxAlerts        = 10
	maxNotifications = 5
)

// DashboardService assembles the per-role home screens
type DashboardService struct {
	employees     domain.Collection[domain.Employee]
	surveys       *SurveyService
	reports       *ReportService
	videos        *VideoService
	gamification  *GamificationService
	notifications *NotificationService
	stats         *cache.Cache[any]
	logger        *slog.Logger
}

func NewDashboardService(
	store *repository.Store,
	surveys *SurveyService,
	reports *ReportService,
	videos *VideoService,
	gamification *GamificationService,
	notifications *NotificationService,
	ttl time.Duration,
	logger *slog.Logger,
) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardService{
		employees:     store.Employees,
		surveys:       surveys,
		reports:       reports,
		videos:        videos,
		gamification:  gamification,
		notifications: notifications,
		stats:         cache.New[any](ttl),
		logger:        logger,
	}
}

// Invalidate drops cached dashboard figures
func (s *DashboardService) Invalidate() {
	s.stats.Clear()
}

func cached[V any](c *cache.Cache[any], key string, load func() (V, error)) (V, error) {
	v, err := c.GetOrLoad(key, func() (any, error) { return load() })
	if err != nil {
		var zero V
		return zero, err
	}
	return v.(V), nil
}

// wellness scores a sector 0-10 where higher is healthier
func wellness(avg map[string]float64) (float64, bool) {
	var sum float64
	n := 0
	if v, ok := avg[domain.CategorySatisfaction]; ok {
		sum += v
		n++
	}
	if v, ok := avg[domain.CategoryStress]; ok {
		sum += 10 - v
		n++
	}
	if v, ok := avg[domain.CategoryBurnout]; ok {
		sum += 10 - v
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// readyReports returns visible reports newest first, filtered by keep
func (s *DashboardService) readyReports(ctx context.Context, keep func(*domain.Report) bool) ([]domain.Report, error) {
	items, err := s.reports.filter(ctx, keep)
	if err != nil {
		return nil, err
	}
	slices.Reverse(items)
	return items, nil
}

func summarise(reports []domain.Report, sector string) (avg float64, alerts []domain.Alert) {
	alerts = []domain.Alert{}
	var sum float64
	n := 0
	for _, r := range reports {
		if r.Status != domain.ReportReady {
			continue
		}
		for _, sr := range r.Data.Sectors {
			if sector != "" && sr.Sector != sector {
				continue
			}
			if w, ok := wellness(sr.AverageScores); ok {
				sum += w
				n++
			}
			for _, a := range sr.Alerts {
				if len(alerts) < maxAlerts {
					alerts = append(alerts, a)
				}
			}
		}
	}
	if n > 0 {
		avg = round1(sum / float64(n))
	}
	return avg, alerts
}

func head[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}

// Admin summarises every company
func (s *DashboardService) Admin(ctx context.Context) (domain.DashboardStats, error) {
	return cached(s.stats, "admin", func() (domain.DashboardStats, error) {
		var stats domain.DashboardStats
		employees, err := s.employees.List(ctx)
		if err != nil {
			return stats, fmt.Errorf("failed to list employees: %w", err)
		}
		stats.TotalEmployees = len(employees)
		for _, e := range employees {
			if e.IsActive {
				stats.ActiveEmployees++
			}
		}

		surveyStats, err := s.surveys.Stats(ctx)
		if err != nil {
			return stats, err
		}
		stats.ActiveSurveys = surveyStats.Active

		cycles, err := s.surveys.AllCycles(ctx)
		if err != nil {
			return stats, err
		}
		responses, targets := 0, 0
		for _, c := range cycles {
			if c.Status != domain.SurveyActive {
				continue
			}
			responses += c.ResponseCount
			targets += c.TargetCount
			if c.TargetCount > c.ResponseCount {
				stats.PendingResponses += c.TargetCount - c.ResponseCount
			}
		}
		if targets > 0 {
			stats.CompletionRate = round1(float64(responses) * 100 / float64(targets))
		}

		reports, err := s.readyReports(ctx, func(*domain.Report) bool { return true })
		if err != nil {
			return stats, err
		}
		stats.AverageWellness, stats.Alerts = summarise(reports, "")
		stats.RecentReports = head(reports, recentReports)
		return stats, nil
	})
}

// Manager summarises one sector of a company
func (s *DashboardService) Manager(ctx context.Context, companyID, sector string) (domain.ManagerDashboardStats, error) {
	return cached(s.stats, "manager:"+companyID+":"+sector, func() (domain.ManagerDashboardStats, error) {
		stats := domain.ManagerDashboardStats{SectorName: sector}
		employees, err := s.employees.List(ctx)
		if err != nil {
			return stats, fmt.Errorf("failed to list employees: %w", err)
		}
		for _, e := range employees {
			if e.IsActive && e.CompanyID == companyID && e.Sector == sector {
				stats.TotalEmployees++
			}
		}

		cycles, err := s.surveys.AllCycles(ctx)
		if err != nil {
			return stats, err
		}
		answered := 0
		for _, c := range cycles {
			if c.Status != domain.SurveyActive || c.CompanyID != companyID {
				continue
			}
			responses, err := s.surveys.Responses(ctx, c.ID)
			if err != nil {
				return stats, err
			}
			for _, r := range responses {
				if r.Sector == sector {
					answered++
				}
			}
		}
		if stats.TotalEmployees > 0 {
			stats.ResponseRate = round1(math100(answered, stats.TotalEmployees))
		}

		reports, err := s.readyReports(ctx, func(r *domain.Report) bool {
			return r.CompanyID == companyID && r.VisibleToSector(sector)
		})
		if err != nil {
			return stats, err
		}
		stats.AverageWellness, stats.Alerts = summarise(reports, sector)
		stats.RecentReports = head(reports, recentReports)
		return stats, nil
	})
}

func math100(part, whole int) float64 {
	v := float64(part) * 100 / float64(whole)
	if v > 100 {
		return 100
	}
	return v
}

// Employee shows a user's pending work and progress. Not cached: it changes
// with every submission.
func (s *DashboardService) Employee(ctx context.Context, userID, companyID string) (domain.EmployeeDashboardStats, error) {
	var stats domain.EmployeeDashboardStats

	pending, err := s.PendingSurveys(ctx, userID, companyID)
	if err != nil {
		return stats, err
	}
	stats.PendingSurveys = len(pending)

	done, err := s.surveys.Completions(ctx, userID)
	if err != nil {
		return stats, err
	}
	stats.CompletedSurveys = len(done)

	videos, err := s.videos.ListActive(ctx)
	if err != nil {
		return stats, err
	}
	stats.AvailableVideos = len(videos)

	progress, err := s.gamification.Progress(ctx, userID)
	if err != nil {
		return stats, err
	}
	stats.GamificationProgress = *progress

	notes, err := s.notifications.List(ctx, userID)
	if err != nil {
		return stats, err
	}
	stats.Notifications = head(notes, maxNotifications)
	return stats, nil
}

// PendingSurveys returns the company's active surveys the user has not yet
// answered in their current cycle
func (s *DashboardService) PendingSurveys(ctx context.Context, userID, companyID string) ([]domain.Survey, error) {
	surveys, err := s.surveys.filter(ctx, func(sv *domain.Survey) bool {
		return sv.Status == domain.SurveyActive && sv.CompanyID == companyID
	})
	if err != nil {
		return nil, err
	}
	out := []domain.Survey{}
	for _, sv := range surveys {
		c, err := s.surveys.activeCycle(ctx, sv.ID)
		if domain.IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		answered, err := s.surveys.answered(ctx, userID, c.ID)
		if err != nil {
			return nil, err
		}
		if !answered {
			out = append(out, sv)
		}
	}
	return out, nil
}
