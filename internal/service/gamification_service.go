package service

import (
	"context"
	"log/slog"
	"sort"

	"github.com/aryan0dhankhar/wellpulse/internal/domain"
	"github.com/aryan0dhankhar/wellpulse/internal/repository"
)

type badgeRule struct {
	badge  domain.Badge
	earned func(p *domain.GamificationProgress) bool
}

var badgeRules = []badgeRule{
	{
		badge:  domain.Badge{ID: "first-survey", Name: "Primeira Voz", Description: "Respondeu o primeiro questionário", Icon: "message-circle"},
		earned: func(p *domain.GamificationProgress) bool { return p.SurveysCompleted >= 1 },
	},
	{
		badge:  domain.Badge{ID: "video-watcher", Name: "Maratonista", Description: "Assistiu 10 vídeos", Icon: "play-circle"},
		earned: func(p *domain.GamificationProgress) bool { return p.VideosWatched >= 10 },
	},
	{
		badge:  domain.Badge{ID: "quiz-master", Name: "Mestre dos Quizzes", Description: "Passou em 5 quizzes", Icon: "award"},
		earned: func(p *domain.GamificationProgress) bool { return p.QuizzesCompleted >= 5 },
	},
	{
		badge:  domain.Badge{ID: "survey-champion", Name: "Participante Assíduo", Description: "Respondeu 20 questionários", Icon: "trophy"},
		earned: func(p *domain.GamificationProgress) bool { return p.SurveysCompleted >= 20 },
	},
	{
		badge:  domain.Badge{ID: "legend", Name: "Lenda", Description: "Alcançou o nível máximo", Icon: "crown"},
		earned: func(p *domain.GamificationProgress) bool { return p.Level >= 6 },
	},
}

// GamificationService awards points and badges per user
type GamificationService struct {
	items         *crud[domain.GamificationProgress, *domain.GamificationProgress]
	notifications *NotificationService
	cfg           Config
	logger        *slog.Logger
}

func NewGamificationService(store *repository.Store, notifications *NotificationService, cfg Config, logger *slog.Logger) *GamificationService {
	if logger == nil {
		logger = slog.Default()
	}
	items := newCrud[domain.GamificationProgress]("gamification", store.Gamification, hooks[domain.GamificationProgress]{}, cfg, logger)
	return &GamificationService{items: items, notifications: notifications, cfg: cfg, logger: logger}
}

func newProgress(userID string) domain.GamificationProgress {
	return domain.GamificationProgress{
		Base:   domain.Base{ID: userID},
		UserID: userID,
		Level:  domain.LevelFor(0).Number,
		Badges: []domain.Badge{},
	}
}

// Progress returns the user's progress; users with no activity start at level 1
func (s *GamificationService) Progress(ctx context.Context, userID string) (*domain.GamificationProgress, error) {
	if err := s.items.wait(ctx); err != nil {
		return nil, err
	}
	p, err := s.items.find(ctx, userID)
	if domain.IsNotFound(err) {
		fresh := newProgress(userID)
		return &fresh, nil
	}
	return p, err
}

// AddPoints credits an activity and returns the progress and any new badges
func (s *GamificationService) AddPoints(ctx context.Context, userID string, activity domain.Activity) (*domain.GamificationProgress, []domain.Badge, error) {
	points := activity.Points()
	if userID == "" || points == 0 {
		return nil, nil, domain.Invalidf("unknown activity %q", activity)
	}

	s.items.mu.Lock()
	p, err := s.items.find(ctx, userID)
	if domain.IsNotFound(err) {
		fresh := newProgress(userID)
		fresh.CreatedAt = s.cfg.now()
		p, err = &fresh, nil
	}
	if err != nil {
		s.items.mu.Unlock()
		return nil, nil, err
	}

	p.TotalPoints += points
	switch activity {
	case domain.ActivitySurvey:
		p.SurveysCompleted++
	case domain.ActivityVideo:
		p.VideosWatched++
	case domain.ActivityQuiz:
		p.QuizzesCompleted++
	}
	p.Level = domain.LevelFor(p.TotalPoints).Number

	now := s.cfg.now()
	var earned []domain.Badge
	for _, rule := range badgeRules {
		if !p.HasBadge(rule.badge.ID) && rule.earned(p) {
			b := rule.badge
			b.EarnedAt = now
			p.Badges = append(p.Badges, b)
			earned = append(earned, b)
		}
	}
	p.UpdatedAt = now
	err = s.items.store(ctx, p)
	s.items.mu.Unlock()
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("points awarded",
		slog.String("user_id", userID),
		slog.String("activity", string(activity)),
		slog.Int("points", points),
		slog.Int("total", p.TotalPoints),
	)
	for _, b := range earned {
		if _, err := s.notifications.Notify(ctx, userID, domain.NotificationBadgeEarned,
			"Nova conquista: "+b.Name, b.Description, "/funcionario/gamificacao"); err != nil {
			s.logger.Warn("failed to send badge notification", slog.String("error", err.Error()))
		}
	}
	return p, earned, nil
}

// Leaderboard ranks users by points, ties broken by user id
func (s *GamificationService) Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	if err := s.items.wait(ctx); err != nil {
		return nil, err
	}
	all, err := s.items.list(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].TotalPoints != all[j].TotalPoints {
			return all[i].TotalPoints > all[j].TotalPoints
		}
		return all[i].UserID < all[j].UserID
	})
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	out := make([]domain.LeaderboardEntry, len(all))
	for i, p := range all {
		out[i] = domain.LeaderboardEntry{UserID: p.UserID, Points: p.TotalPoints, Level: p.Level, Rank: i + 1}
	}
	return out, nil
}
