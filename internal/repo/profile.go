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

type ProfileRepo struct {
	storage *sqlx.DB
}

func NewProfileRepo(storage *sqlx.DB) *ProfileRepo {
	return &ProfileRepo{storage: storage}
}

func (r *ProfileRepo) CreateProfile(ctx context.Context, profile models.Profile) error {
	const op = "repo.profile.CreateProfile"

	query := `INSERT INTO profiles (id, uid, ign, team_id, is_team_admin, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.storage.ExecContext(ctx, query,
		profile.ID, profile.UID, profile.IGN, profile.TeamID, profile.IsTeamAdmin, profile.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%s: %w", op, apperrors.ErrUIDTaken)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *ProfileRepo) GetProfile(ctx context.Context, profileID string) (*models.Profile, error) {
	const op = "repo.profile.GetProfile"

	query := `SELECT id, uid, ign, team_id, is_team_admin, created_at
		FROM profiles WHERE id = $1`

	var profile models.Profile
	err := r.storage.GetContext(ctx, &profile, query, profileID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, apperrors.ErrPlayerNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &profile, nil
}

func (r *ProfileRepo) FindProfileByUID(ctx context.Context, uid string) (*models.Profile, error) {
	const op = "repo.profile.FindProfileByUID"

	query := `SELECT id, uid, ign, team_id, is_team_admin, created_at
		FROM profiles WHERE uid = $1`

	var profile models.Profile
	err := r.storage.GetContext(ctx, &profile, query, uid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, apperrors.ErrPlayerNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &profile, nil
}

// ClearTeam drops the profile's membership unconditionally. Used for
// voluntary leave and for orphan reconciliation.
func (r *ProfileRepo) ClearTeam(ctx context.Context, profileID string) error {
	const op = "repo.profile.ClearTeam"

	query := `UPDATE profiles SET team_id = NULL, is_team_admin = false WHERE id = $1`

	result, err := r.storage.ExecContext(ctx, query, profileID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", op, apperrors.ErrPlayerNotFound)
	}

	return nil
}
