package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/aryan0dhankhar/wellpulse/internal/domain"
	"github.com/aryan0dhankhar/wellpulse/internal/repository"
)

// QuizResult is the outcome of a quiz submission
type QuizResult struct {
	QuizID       string `json:"quizId"`
	Score        int    `json:"score"`
	PassingScore int    `json:"passingScore"`
	Passed       bool   `json:"passed"`
	PointsEarned int    `json:"pointsEarned"`
}

// VideoService manages educational videos, their quizzes and watch progress
type VideoService struct {
	*crud[domain.Video, *domain.Video]
	quizzes      domain.Collection[domain.Quiz]
	progress     domain.Collection[domain.VideoProgress]
	gamification *GamificationService
	progressMu   sync.Mutex
	logger       *slog.Logger
}

func NewVideoService(store *repository.Store, gamification *GamificationService, cfg Config, logger *slog.Logger) *VideoService {
	if logger == nil {
		logger = slog.Default()
	}
	return &VideoService{
		crud: newCrud[domain.Video]("video", store.Videos, hooks[domain.Video]{
			defaults: func(v *domain.Video) {
				v.IsActive = true
			},
			validate: func(_ context.Context, v, _ *domain.Video) error {
				return v.Validate()
			},
			remove: func(v *domain.Video, _ time.Time) error {
				v.IsActive = false
				return nil
			},
		}, cfg, logger),
		quizzes:      store.Quizzes,
		progress:     store.VideoProgress,
		gamification: gamification,
		logger:       logger,
	}
}

func (s *VideoService) ListActive(ctx context.Context) ([]domain.Video, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return s.filter(ctx, func(v *domain.Video) bool { return v.IsActive })
}

func (s *VideoService) ListByCategory(ctx context.Context, category string) ([]domain.Video, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return s.filter(ctx, func(v *domain.Video) bool { return v.Category == category })
}

// Categories returns the distinct categories, sorted
func (s *VideoService) Categories(ctx context.Context) ([]string, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	items, err := s.list(ctx)
	if err != nil {
		return nil, err
	}
	out := []string{}
	for _, v := range items {
		if v.Category != "" && !slices.Contains(out, v.Category) {
			out = append(out, v.Category)
		}
	}
	slices.Sort(out)
	return out, nil
}

// Quiz returns the quiz attached to a video
func (s *VideoService) Quiz(ctx context.Context, videoID string) (*domain.Quiz, error) {
	v, err := s.GetByID(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if v.QuizID == "" {
		return nil, domain.NotFound("quiz")
	}
	return s.quiz(ctx, v.QuizID)
}

func (s *VideoService) quiz(ctx context.Context, quizID string) (*domain.Quiz, error) {
	q, err := s.quizzes.Get(ctx, quizID)
	if errors.Is(err, domain.ErrRecordNotFound) {
		return nil, domain.NotFound("quiz")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz %s: %w", quizID, err)
	}
	return &q, nil
}

func (s *VideoService) loadProgress(ctx context.Context, userID, videoID string) (*domain.VideoProgress, bool, error) {
	p, err := s.progress.Get(ctx, domain.ProgressID(userID, videoID))
	if errors.Is(err, domain.ErrRecordNotFound) {
		return &domain.VideoProgress{
			Base:    domain.Base{ID: domain.ProgressID(userID, videoID)},
			UserID:  userID,
			VideoID: videoID,
		}, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load progress: %w", err)
	}
	return &p, true, nil
}

// MarkWatched records that the user finished a video. Points are awarded
// only the first time.
func (s *VideoService) MarkWatched(ctx context.Context, userID, videoID string) (*domain.VideoProgress, error) {
	v, err := s.GetByID(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if !v.IsActive {
		return nil, domain.NotFound("video")
	}

	s.progressMu.Lock()
	p, _, err := s.loadProgress(ctx, userID, videoID)
	if err != nil {
		s.progressMu.Unlock()
		return nil, err
	}
	first := !p.Completed
	now := s.cfg.now()
	if first {
		p.Completed = true
		p.WatchedAt = now
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
	}
	p.UpdatedAt = now
	err = s.progress.Put(ctx, p.ID, *p)
	s.progressMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("failed to store progress: %w", err)
	}

	if first {
		if _, _, err := s.gamification.AddPoints(ctx, userID, domain.ActivityVideo); err != nil {
			s.logger.Warn("failed to award video points", slog.String("error", err.Error()))
		}
	}
	return p, nil
}

// SubmitQuiz scores the answers; passing awards quiz points
func (s *VideoService) SubmitQuiz(ctx context.Context, userID, quizID string, answers []int) (*QuizResult, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	q, err := s.quiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	score := q.Score(answers)
	result := &QuizResult{QuizID: q.ID, Score: score, PassingScore: q.PassingScore, Passed: score >= q.PassingScore}

	if q.VideoID != "" {
		s.progressMu.Lock()
		p, _, err := s.loadProgress(ctx, userID, q.VideoID)
		if err == nil {
			now := s.cfg.now()
			if p.CreatedAt.IsZero() {
				p.CreatedAt = now
			}
			p.UpdatedAt = now
			p.QuizScore = &score
			err = s.progress.Put(ctx, p.ID, *p)
		}
		s.progressMu.Unlock()
		if err != nil {
			return nil, fmt.Errorf("failed to store quiz score: %w", err)
		}
	}

	if result.Passed {
		if _, _, err := s.gamification.AddPoints(ctx, userID, domain.ActivityQuiz); err != nil {
			return nil, err
		}
		result.PointsEarned = domain.ActivityQuiz.Points()
	}
	s.logger.Info("quiz submitted",
		slog.String("user_id", userID),
		slog.String("quiz_id", quizID),
		slog.Int("score", score),
		slog.Bool("passed", result.Passed),
	)
	return result, nil
}

// Progress lists the user's progress across videos
func (s *VideoService) Progress(ctx context.Context, userID string) ([]domain.VideoProgress, error) {
	all, err := s.progress.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list progress: %w", err)
	}
	out := []domain.VideoProgress{}
	for _, p := range all {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}
