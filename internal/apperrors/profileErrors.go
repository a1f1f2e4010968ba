package apperrors

import "errors"

var (
	ErrPlayerNotFound = errors.New("player not found")
	ErrUIDTaken       = errors.New("this UID is already taken")
	ErrIGNRequired    = errors.New("in-game name is required")
	ErrInvalidUID     = errors.New("invalid UID format")
)
