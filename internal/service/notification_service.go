package service

import (
	"context"
	"log/slog"
	"slices"

	"github.com/aryan0dhankhar/wellpulse/internal/domain"
	"github.com/aryan0dhankhar/wellpulse/internal/repository"
)

// Publisher pushes notifications to live subscribers
type Publisher interface {
	Publish(n domain.Notification)
}

// NotificationService stores per-user notifications and pushes them live
type NotificationService struct {
	items     *crud[domain.Notification, *domain.Notification]
	publisher Publisher
	logger    *slog.Logger
}

func NewNotificationService(store *repository.Store, publisher Publisher, cfg Config, logger *slog.Logger) *NotificationService {
	if logger == nil {
		logger = slog.Default()
	}
	items := newCrud[domain.Notification]("notification", store.Notifications, hooks[domain.Notification]{
		validate: func(_ context.Context, n, _ *domain.Notification) error {
			if n.UserID == "" || n.Title == "" {
				return domain.Invalid("userId and title are required")
			}
			return nil
		},
	}, Config{Now: cfg.Now}, logger)
	return &NotificationService{items: items, publisher: publisher, logger: logger}
}

// Notify stores a notification and pushes it. A nil service is a no-op.
func (s *NotificationService) Notify(ctx context.Context, userID string, typ domain.NotificationType, title, message, link string) (*domain.Notification, error) {
	if s == nil {
		return nil, nil
	}
	n, err := s.items.Create(ctx, domain.Notification{
		UserID:  userID,
		Type:    typ,
		Title:   title,
		Message: message,
		Link:    link,
	})
	if err != nil {
		return nil, err
	}
	if s.publisher != nil {
		s.publisher.Publish(*n)
	}
	s.logger.Debug("notification sent",
		slog.String("user_id", userID),
		slog.String("type", string(typ)),
	)
	return n, nil
}

// List returns the user's notifications, newest first
func (s *NotificationService) List(ctx context.Context, userID string) ([]domain.Notification, error) {
	items, err := s.items.filter(ctx, func(n *domain.Notification) bool { return n.UserID == userID })
	if err != nil {
		return nil, err
	}
	slices.Reverse(items)
	return items, nil
}

// MarkRead flags one of the user's notifications as read
func (s *NotificationService) MarkRead(ctx context.Context, userID, id string) (*domain.Notification, error) {
	return s.items.mutate(ctx, id, func(n *domain.Notification) error {
		if n.UserID != userID {
			return domain.NotFound("notification")
		}
		n.IsRead = true
		return nil
	})
}

// UnreadCount counts the user's unread notifications
func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	items, err := s.items.filter(ctx, func(n *domain.Notification) bool { return n.UserID == userID && !n.IsRead })
	if err != nil {
		return 0, err
	}
	return len(items), nil
}
