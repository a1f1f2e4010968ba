package apperrors

import "errors"

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrNotActionable        = errors.New("notification does not require an action")
)
