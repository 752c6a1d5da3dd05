package models

import "time"

// TournamentStatus mirrors the tournament_status ENUM in the database.
type TournamentStatus string

const (
	StatusSoon         TournamentStatus = "soon"
	StatusRegistration TournamentStatus = "registration"
	StatusActive       TournamentStatus = "active"
	StatusCompleted    TournamentStatus = "completed"
	StatusCanceled     TournamentStatus = "canceled"
)

// TournamentType selects the fixture generation algorithm.
type TournamentType string

const (
	TypeRoundRobin  TournamentType = "round_robin"
	TypeKnockout    TournamentType = "knockout"
	TypePoolPlayoff TournamentType = "pool_playoff"
	TypeLeague      TournamentType = "league"
)

type Tournament struct {
	ID                int              `json:"id" db:"id"`
	Name              string           `json:"name" db:"name"`
	Description       *string          `json:"description,omitempty" db:"description"`
	SportCode         string           `json:"sport_code" db:"sport_code"`
	Type              TournamentType   `json:"tournament_type" db:"tournament_type"`
	OrganizerID       int              `json:"organizer_id" db:"organizer_id"`
	RegDate           time.Time        `json:"reg_date" db:"reg_date"`
	StartDate         time.Time        `json:"start_date" db:"start_date"`
	EndDate           time.Time        `json:"end_date" db:"end_date"`
	Location          *string          `json:"location,omitempty" db:"location"`
	Status            TournamentStatus `json:"status" db:"status"`
	MinPlayersPerTeam int              `json:"min_players_per_team" db:"min_players_per_team"`
	MaxPlayersPerTeam int              `json:"max_players_per_team" db:"max_players_per_team"`
	CreatedAt         time.Time        `json:"created_at" db:"created_at"`
	LogoKey           *string          `json:"-" db:"logo_key"`
	LogoURL           *string          `json:"logo_url,omitempty" db:"-"`

	// Optional linked entities, populated by services when requested.
	Sport    *SportRuleSet `json:"sport,omitempty" db:"-"`
	Teams    []Team        `json:"teams,omitempty" db:"-"`
	Fixtures []Fixture     `json:"fixtures,omitempty" db:"-"`
}

// Venue returns the tournament's default venue string for scheduling.
func (t *Tournament) Venue() string {
	if t.Location != nil && *t.Location != "" {
		return *t.Location
	}
	return "TBC"
}
