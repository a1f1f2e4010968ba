package models

import "time"

type Team struct {
	ID         string    `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	TeamCode   string    `db:"team_code" json:"team_code"`
	AdminID    string    `db:"admin_id" json:"admin_id"`
	MaxMembers int       `db:"max_members" json:"max_members"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	Members    []Profile `db:"-" json:"members,omitempty"`
}
