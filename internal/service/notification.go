package service

import (
	"context"
	"fmt"
	"log/slog"

	"team-manager/internal/domain/models"
	"team-manager/internal/lib/logger/sl"
)

type NotificationService struct {
	log       *slog.Logger
	notifRepo NotificationListProvider
}

type NotificationListProvider interface {
	ListByRecipient(ctx context.Context, userID string) ([]models.Notification, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, notificationID, userID string) error
}

func NewNotificationService(
	log *slog.Logger,
	notifRepo NotificationListProvider) *NotificationService {
	return &NotificationService{
		log:       log,
		notifRepo: notifRepo,
	}
}

func (s *NotificationService) List(ctx context.Context, userID string) ([]models.Notification, error) {
	const op = "service.notification.List"

	log := s.log.With(
		slog.String("op", op),
		slog.String("user_id", userID),
	)

	notifications, err := s.notifRepo.ListByRecipient(ctx, userID)
	if err != nil {
		log.Error("failed to list notifications", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return notifications, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	const op = "service.notification.UnreadCount"

	log := s.log.With(
		slog.String("op", op),
		slog.String("user_id", userID),
	)

	count, err := s.notifRepo.CountUnread(ctx, userID)
	if err != nil {
		log.Error("failed to count unread notifications", sl.Err(err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return count, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	const op = "service.notification.MarkRead"

	log := s.log.With(
		slog.String("op", op),
		slog.String("user_id", userID),
		slog.String("notification_id", notificationID),
	)

	if err := s.notifRepo.MarkRead(ctx, notificationID, userID); err != nil {
		log.Error("failed to mark notification read", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
