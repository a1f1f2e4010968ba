package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"

	"team-manager/internal/apperrors"
	"team-manager/internal/domain/models"
	"team-manager/internal/repo/memory"
)

func newNotificationService() (*NotificationService, *memory.Store) {
	store := memory.NewStore()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewNotificationService(log, store), store
}

func enqueueNote(t *testing.T, store *memory.Store, userID, title string) models.Notification {
	t.Helper()

	n := models.Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Kind:      models.NotificationKindTeamInfo,
		Title:     title,
		Message:   title,
		CreatedAt: time.Now().UTC(),
	}
	if err := store.Enqueue(context.Background(), n); err != nil {
		t.Fatalf("failed to enqueue: %v", err)
	}
	return n
}

func TestListScopedToRecipient(t *testing.T) {
	svc, store := newNotificationService()
	ctx := context.Background()

	enqueueNote(t, store, "user-a", "for a")
	enqueueNote(t, store, "user-a", "also for a")
	enqueueNote(t, store, "user-b", "for b")

	got, err := svc.List(ctx, "user-a")
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(got))
	}
	for _, n := range got {
		if n.UserID != "user-a" {
			t.Fatalf("listing leaked another recipient's notification: %+v", n)
		}
	}
}

func TestUnreadCountAndMarkRead(t *testing.T) {
	svc, store := newNotificationService()
	ctx := context.Background()

	first := enqueueNote(t, store, "user-a", "one")
	enqueueNote(t, store, "user-a", "two")

	count, err := svc.UnreadCount(ctx, "user-a")
	if err != nil {
		t.Fatalf("failed to count: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 unread, got %d", count)
	}

	if err := svc.MarkRead(ctx, "user-a", first.ID); err != nil {
		t.Fatalf("failed to mark read: %v", err)
	}

	count, err = svc.UnreadCount(ctx, "user-a")
	if err != nil {
		t.Fatalf("failed to count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 unread after mark, got %d", count)
	}
}

func TestMarkReadWrongRecipient(t *testing.T) {
	svc, store := newNotificationService()
	ctx := context.Background()

	n := enqueueNote(t, store, "user-a", "one")

	err := svc.MarkRead(ctx, "user-b", n.ID)
	if !errors.Is(err, apperrors.ErrNotificationNotFound) {
		t.Fatalf("expected ErrNotificationNotFound, got %v", err)
	}
}
