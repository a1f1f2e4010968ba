package models

import "time"

// Profile is the per-player account record. TeamID is nil while the player
// is unaffiliated; IsTeamAdmin may be true only when TeamID is set.
type Profile struct {
	ID          string    `db:"id" json:"id"`
	UID         string    `db:"uid" json:"uid"`
	IGN         string    `db:"ign" json:"ign"`
	TeamID      *string   `db:"team_id" json:"team_id,omitempty"`
	IsTeamAdmin bool      `db:"is_team_admin" json:"is_team_admin"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
