package service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"team-manager/internal/apperrors"
	"team-manager/internal/domain/models"
	"team-manager/internal/lib/logger/sl"
)

type ProfileService struct {
	log      *slog.Logger
	profiles ProfileStoreProvider
}

type ProfileStoreProvider interface {
	CreateProfile(ctx context.Context, profile models.Profile) error
	GetProfile(ctx context.Context, profileID string) (*models.Profile, error)
	FindProfileByUID(ctx context.Context, uid string) (*models.Profile, error)
}

func NewProfileService(
	log *slog.Logger,
	profiles ProfileStoreProvider) *ProfileService {
	return &ProfileService{
		log:      log,
		profiles: profiles,
	}
}

// uidPattern matches the public in-game UID: 9 or 10 digits.
var uidPattern = regexp.MustCompile(`^\d{9,10}$`)

func (s *ProfileService) Register(ctx context.Context, ign, uid string) (*models.Profile, error) {
	const op = "service.profile.Register"

	log := s.log.With(
		slog.String("op", op),
		slog.String("uid", uid),
	)

	log.Info("attempting to register profile")

	ign = strings.TrimSpace(ign)
	uid = strings.TrimSpace(uid)

	if ign == "" {
		log.Error("ign is required")
		return nil, fmt.Errorf("%s: %w", op, apperrors.ErrIGNRequired)
	}

	if !uidPattern.MatchString(uid) {
		log.Error("invalid uid format")
		return nil, fmt.Errorf("%s: %w", op, apperrors.ErrInvalidUID)
	}

	profile := models.Profile{
		ID:        uuid.NewString(),
		UID:       uid,
		IGN:       ign,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.profiles.CreateProfile(ctx, profile); err != nil {
		log.Error("failed to create profile", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("profile registered", slog.String("profile_id", profile.ID))

	return &profile, nil
}

func (s *ProfileService) GetProfile(ctx context.Context, profileID string) (*models.Profile, error) {
	const op = "service.profile.GetProfile"

	log := s.log.With(
		slog.String("op", op),
		slog.String("profile_id", profileID),
	)

	profile, err := s.profiles.GetProfile(ctx, profileID)
	if err != nil {
		log.Error("failed to get profile", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return profile, nil
}
