package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"team-manager/internal/apperrors"
	"team-manager/internal/repo/memory"
)

func newProfileService() (*ProfileService, *memory.Store) {
	store := memory.NewStore()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewProfileService(log, store), store
}

func TestRegister(t *testing.T) {
	svc, store := newProfileService()
	ctx := context.Background()

	profile, err := svc.Register(ctx, "Alpha", "123456789")
	if err != nil {
		t.Fatalf("failed to register: %v", err)
	}
	if profile.ID == "" {
		t.Fatalf("profile should get a generated id")
	}
	if profile.TeamID != nil || profile.IsTeamAdmin {
		t.Fatalf("fresh profile must be unaffiliated: %+v", profile)
	}

	got, err := store.FindProfileByUID(ctx, "123456789")
	if err != nil {
		t.Fatalf("failed to find by uid: %v", err)
	}
	if got.ID != profile.ID {
		t.Fatalf("uid lookup returned wrong profile")
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newProfileService()
	ctx := context.Background()

	tests := []struct {
		name    string
		ign     string
		uid     string
		wantErr error
	}{
		{"blank ign", "   ", "123456789", apperrors.ErrIGNRequired},
		{"uid too short", "Alpha", "12345678", apperrors.ErrInvalidUID},
		{"uid too long", "Alpha", "12345678901", apperrors.ErrInvalidUID},
		{"uid with letters", "Alpha", "12345678a", apperrors.ErrInvalidUID},
		{"ten digit uid ok", "Alpha", "1234567890", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.ign, tt.uid)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestRegisterUIDTaken(t *testing.T) {
	svc, _ := newProfileService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "Alpha", "123456789"); err != nil {
		t.Fatalf("failed to register: %v", err)
	}

	_, err := svc.Register(ctx, "Bravo", "123456789")
	if !errors.Is(err, apperrors.ErrUIDTaken) {
		t.Fatalf("expected ErrUIDTaken, got %v", err)
	}
}

func TestGetProfileNotFound(t *testing.T) {
	svc, _ := newProfileService()

	_, err := svc.GetProfile(context.Background(), "missing")
	if !errors.Is(err, apperrors.ErrPlayerNotFound) {
		t.Fatalf("expected ErrPlayerNotFound, got %v", err)
	}
}
