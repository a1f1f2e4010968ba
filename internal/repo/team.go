package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"team-manager/internal/apperrors"
	"team-manager/internal/domain/models"
)

type TeamRepo struct {
	storage *sqlx.DB
}

func NewTeamRepo(storage *sqlx.DB) *TeamRepo {
	return &TeamRepo{storage: storage}
}

// CreateTeamWithAdmin inserts the team and promotes the admin profile in one
// transaction. The profile update is conditional on the player still being
// unaffiliated, so a concurrent join elsewhere rolls the whole thing back.
func (r *TeamRepo) CreateTeamWithAdmin(ctx context.Context, team models.Team) error {
	const op = "repo.team.CreateTeamWithAdmin"

	tx, err := r.storage.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback()

	teamQuery := `INSERT INTO teams (id, name, team_code, admin_id, max_members, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err = tx.ExecContext(ctx, teamQuery,
		team.ID, team.Name, team.TeamCode, team.AdminID, team.MaxMembers, team.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%s: %w", op, apperrors.ErrCodeCollision)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	adminQuery := `UPDATE profiles SET team_id = $1, is_team_admin = true
		WHERE id = $2 AND team_id IS NULL`

	result, err := tx.ExecContext(ctx, adminQuery, team.ID, team.AdminID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", op, apperrors.ErrAlreadyInTeam)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	return nil
}

func (r *TeamRepo) GetTeamByID(ctx context.Context, teamID string) (*models.Team, error) {
	const op = "repo.team.GetTeamByID"

	query := `SELECT id, name, team_code, admin_id, max_members, created_at
		FROM teams WHERE id = $1`

	var team models.Team
	err := r.storage.GetContext(ctx, &team, query, teamID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, apperrors.ErrTeamNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &team, nil
}

func (r *TeamRepo) GetTeamByCode(ctx context.Context, code string) (*models.Team, error) {
	const op = "repo.team.GetTeamByCode"

	query := `SELECT id, name, team_code, admin_id, max_members, created_at
		FROM teams WHERE team_code = $1`

	var team models.Team
	err := r.storage.GetContext(ctx, &team, query, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, apperrors.ErrTeamNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &team, nil
}

func (r *TeamRepo) GetTeamWithMembers(ctx context.Context, teamID string) (*models.Team, error) {
	const op = "repo.team.GetTeamWithMembers"

	team, err := r.GetTeamByID(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query := `SELECT id, uid, ign, team_id, is_team_admin, created_at
		FROM profiles WHERE team_id = $1`

	var members []models.Profile
	err = r.storage.SelectContext(ctx, &members, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get team members: %w", op, err)
	}

	team.Members = members
	return team, nil
}

func (r *TeamRepo) CodeInUse(ctx context.Context, code string) (bool, error) {
	const op = "repo.team.CodeInUse"

	query := `SELECT COUNT(*) FROM teams WHERE team_code = $1`

	var count int
	err := r.storage.GetContext(ctx, &count, query, code)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return count > 0, nil
}

func (r *TeamRepo) MemberCount(ctx context.Context, teamID string) (int, error) {
	const op = "repo.team.MemberCount"

	query := `SELECT COUNT(*) FROM profiles WHERE team_id = $1`

	var count int
	err := r.storage.GetContext(ctx, &count, query, teamID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return count, nil
}

// JoinTeam adds the profile to the team, re-validating capacity and the
// single-membership invariant against the live rows. The team row is locked
// for the duration so two concurrent accepts cannot both pass the capacity
// check.
func (r *TeamRepo) JoinTeam(ctx context.Context, profileID, teamID string) error {
	const op = "repo.team.JoinTeam"

	tx, err := r.storage.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback()

	var maxMembers int
	err = tx.GetContext(ctx, &maxMembers,
		`SELECT max_members FROM teams WHERE id = $1 FOR UPDATE`, teamID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%s: %w", op, apperrors.ErrTeamNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	var count int
	err = tx.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM profiles WHERE team_id = $1`, teamID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if count >= maxMembers {
		return fmt.Errorf("%s: %w", op, apperrors.ErrTeamFull)
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE profiles SET team_id = $1, is_team_admin = false
			WHERE id = $2 AND team_id IS NULL`, teamID, profileID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", op, apperrors.ErrAlreadyInTeam)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	return nil
}

// RemoveMember clears membership for a non-admin member of the given team.
func (r *TeamRepo) RemoveMember(ctx context.Context, teamID, profileID string) error {
	const op = "repo.team.RemoveMember"

	query := `UPDATE profiles SET team_id = NULL, is_team_admin = false
		WHERE id = $1 AND team_id = $2 AND is_team_admin = false`

	result, err := r.storage.ExecContext(ctx, query, profileID, teamID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", op, apperrors.ErrNotInTeam)
	}

	return nil
}

// DissolveTeam clears every member's membership and deletes the team,
// returning the former members so the caller can notify them.
func (r *TeamRepo) DissolveTeam(ctx context.Context, teamID string) ([]models.Profile, error) {
	const op = "repo.team.DissolveTeam"

	tx, err := r.storage.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback()

	var members []models.Profile
	err = tx.SelectContext(ctx, &members,
		`SELECT id, uid, ign, team_id, is_team_admin, created_at
			FROM profiles WHERE team_id = $1 FOR UPDATE`, teamID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE profiles SET team_id = NULL, is_team_admin = false WHERE team_id = $1`, teamID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM teams WHERE id = $1`, teamID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if rows == 0 {
		return nil, fmt.Errorf("%s: %w", op, apperrors.ErrTeamNotFound)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	return members, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
