package apperrors

import "errors"

var (
	ErrTeamNotFound     = errors.New("team not found")
	ErrTeamFull         = errors.New("team is full")
	ErrAlreadyInTeam    = errors.New("player is already in a team")
	ErrNotInTeam        = errors.New("player is not in a team")
	ErrNotAuthorized    = errors.New("operation requires team admin rights")
	ErrSelfInvite       = errors.New("cannot invite yourself")
	ErrDuplicateInvite  = errors.New("invitation already pending for this player")
	ErrCodeCollision    = errors.New("team code already in use")
	ErrTeamNameRequired = errors.New("team name is required")
)
