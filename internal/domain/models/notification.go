package models

import "time"

const (
	NotificationKindTeamInvite  = "team_invite"
	NotificationKindTeamRequest = "team_request"
	NotificationKindTeamInfo    = "team"
)

// Notification is a recipient-owned queued message. Actionable kinds
// (team_invite, team_request) carry a pending decision and reference the
// team and the initiating player; accepting or declining deletes the record.
type Notification struct {
	ID             string    `db:"id" json:"id"`
	UserID         string    `db:"user_id" json:"user_id"`
	Kind           string    `db:"kind" json:"kind"`
	Title          string    `db:"title" json:"title"`
	Message        string    `db:"message" json:"message"`
	ActionRequired bool      `db:"action_required" json:"action_required"`
	TeamID         *string   `db:"team_id" json:"team_id,omitempty"`
	ActorID        *string   `db:"actor_id" json:"actor_id,omitempty"`
	Read           bool      `db:"read" json:"read"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
