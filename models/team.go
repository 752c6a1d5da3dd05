package models

import "time"

type Team struct {
	ID           int       `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	Name         string    `json:"name" db:"name"`
	Pool         *string   `json:"pool,omitempty" db:"pool"`
	Colors       *string   `json:"colors,omitempty" db:"colors"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`

	PhotoKey *string `json:"-" db:"photo_key"`
	PhotoURL *string `json:"photo_url,omitempty" db:"-"`

	Players []Player `json:"players,omitempty" db:"-"`
}

// Player is one roster entry. Roster size is bounded by the tournament's
// min/max players-per-team and frozen once fixtures have been generated.
type Player struct {
	ID             int     `json:"id" db:"id"`
	TeamID         int     `json:"team_id" db:"team_id"`
	FullName       string  `json:"full_name" db:"full_name"`
	IDNumber       string  `json:"id_number" db:"id_number"`
	ShirtNumber    *int    `json:"shirt_number,omitempty" db:"shirt_number"`
	Position       *string `json:"position,omitempty" db:"position"`
	RegistrationID *int    `json:"registration_id,omitempty" db:"registration_id"`
}
