package service

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/aryan0dhankhar/wellpulse/internal/domain"
	"github.com/aryan0dhankhar/wellpulse/internal/repository"
)

// QuestionService manages the question bank
type QuestionService struct {
	*crud[domain.Question, *domain.Question]
}

func NewQuestionService(store *repository.Store, cfg Config, logger *slog.Logger) *QuestionService {
	return &QuestionService{crud: newCrud[domain.Question]("question", store.Questions, hooks[domain.Question]{
		defaults: func(q *domain.Question) {
			q.IsActive = true
		},
		validate: func(_ context.Context, q, _ *domain.Question) error {
			return q.Validate()
		},
		remove: func(q *domain.Question, _ time.Time) error {
			q.IsActive = false
			return nil
		},
	}, cfg, logger)}
}

func (s *QuestionService) ListActive(ctx context.Context) ([]domain.Question, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return s.filter(ctx, func(q *domain.Question) bool { return q.IsActive })
}

func (s *QuestionService) ListByCategory(ctx context.Context, category string) ([]domain.Question, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return s.filter(ctx, func(q *domain.Question) bool { return q.Category == category })
}

func (s *QuestionService) ListByType(ctx context.Context, typ domain.QuestionType) ([]domain.Question, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return s.filter(ctx, func(q *domain.Question) bool { return q.Type == typ })
}

// Categories returns the distinct categories, sorted
func (s *QuestionService) Categories(ctx context.Context) ([]string, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	items, err := s.list(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(items))
	for _, q := range items {
		if !slices.Contains(out, q.Category) {
			out = append(out, q.Category)
		}
	}
	slices.Sort(out)
	return out, nil
}

// byID indexes the given questions, used by surveys and reports
func (s *QuestionService) byID(ctx context.Context, ids []string) (map[string]domain.Question, error) {
	out := make(map[string]domain.Question, len(ids))
	for _, id := range ids {
		q, err := s.find(ctx, id)
		if domain.IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out[id] = *q
	}
	return out, nil
}
