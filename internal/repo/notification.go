package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"team-manager/internal/apperrors"
	"team-manager/internal/domain/models"
)

type NotificationRepo struct {
	storage *sqlx.DB
}

func NewNotificationRepo(storage *sqlx.DB) *NotificationRepo {
	return &NotificationRepo{storage: storage}
}

func (r *NotificationRepo) Enqueue(ctx context.Context, n models.Notification) error {
	const op = "repo.notification.Enqueue"

	query := `INSERT INTO notifications
		(id, user_id, kind, title, message, action_required, team_id, actor_id, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.storage.ExecContext(ctx, query,
		n.ID, n.UserID, n.Kind, n.Title, n.Message, n.ActionRequired,
		n.TeamID, n.ActorID, n.Read, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Consume deletes the notification addressed to the recipient and returns
// it. A second consume of the same id, or a consume by the wrong recipient,
// finds no row. Deletion-as-consumption makes accept/decline idempotent.
func (r *NotificationRepo) Consume(ctx context.Context, notificationID, recipientID string) (*models.Notification, error) {
	const op = "repo.notification.Consume"

	query := `DELETE FROM notifications WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, kind, title, message, action_required, team_id, actor_id, read, created_at`

	var n models.Notification
	err := r.storage.GetContext(ctx, &n, query, notificationID, recipientID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, apperrors.ErrNotificationNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &n, nil
}

func (r *NotificationRepo) ListByRecipient(ctx context.Context, userID string) ([]models.Notification, error) {
	const op = "repo.notification.ListByRecipient"

	query := `SELECT id, user_id, kind, title, message, action_required, team_id, actor_id, read, created_at
		FROM notifications WHERE user_id = $1
		ORDER BY created_at DESC LIMIT 50`

	var notifications []models.Notification
	err := r.storage.SelectContext(ctx, &notifications, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return notifications, nil
}

func (r *NotificationRepo) CountUnread(ctx context.Context, userID string) (int, error) {
	const op = "repo.notification.CountUnread"

	query := `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND read = false`

	var count int
	err := r.storage.GetContext(ctx, &count, query, userID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return count, nil
}

func (r *NotificationRepo) MarkRead(ctx context.Context, notificationID, userID string) error {
	const op = "repo.notification.MarkRead"

	query := `UPDATE notifications SET read = true WHERE id = $1 AND user_id = $2`

	result, err := r.storage.ExecContext(ctx, query, notificationID, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", op, apperrors.ErrNotificationNotFound)
	}

	return nil
}

// HasPendingInvite reports whether an unconsumed team_invite for the
// (team, candidate) pair is still queued.
func (r *NotificationRepo) HasPendingInvite(ctx context.Context, teamID, candidateID string) (bool, error) {
	const op = "repo.notification.HasPendingInvite"

	query := `SELECT COUNT(*) FROM notifications
		WHERE user_id = $1 AND team_id = $2 AND kind = $3 AND action_required = true`

	var count int
	err := r.storage.GetContext(ctx, &count, query, candidateID, teamID, models.NotificationKindTeamInvite)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return count > 0, nil
}
