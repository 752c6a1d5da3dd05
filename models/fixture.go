package models

import "time"

type FixtureStatus string

const (
	FixtureScheduled  FixtureStatus = "scheduled"
	FixtureInProgress FixtureStatus = "in_progress"
	FixtureCompleted  FixtureStatus = "completed"
	FixturePostponed  FixtureStatus = "postponed"
	FixtureCancelled  FixtureStatus = "cancelled"
)

// Fixture is a single scheduled match between two teams of one tournament.
// Score fields are populated only once Status becomes completed.
type Fixture struct {
	ID           int           `json:"id" db:"id"`
	TournamentID int           `json:"tournament_id" db:"tournament_id"`
	HomeTeamID   int           `json:"home_team_id" db:"home_team_id"`
	AwayTeamID   int           `json:"away_team_id" db:"away_team_id"`
	MatchDate    time.Time     `json:"match_date" db:"match_date"`
	Venue        string        `json:"venue" db:"venue"`
	Pool         *string       `json:"pool,omitempty" db:"pool"`
	Round        *int          `json:"round,omitempty" db:"round"`
	RoundName    *string       `json:"round_name,omitempty" db:"round_name"`
	Status       FixtureStatus `json:"status" db:"status"`

	HomeScore    *int `json:"home_score,omitempty" db:"home_score"`
	AwayScore    *int `json:"away_score,omitempty" db:"away_score"`
	HomeScoreET  *int `json:"home_score_et,omitempty" db:"home_score_et"`
	AwayScoreET  *int `json:"away_score_et,omitempty" db:"away_score_et"`
	HomePenalty  *int `json:"home_penalty,omitempty" db:"home_penalty"`
	AwayPenalty  *int `json:"away_penalty,omitempty" db:"away_penalty"`
	WinnerTeamID *int `json:"winner_team_id,omitempty" db:"winner_team_id"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`

	HomeTeam *Team `json:"home_team,omitempty" db:"-"`
	AwayTeam *Team `json:"away_team,omitempty" db:"-"`
}

// TotalHomeGoals and TotalAwayGoals fold extra time into the regular score.
// Penalty shoot-out goals decide a winner but never count as goals scored.
func (f *Fixture) TotalHomeGoals() int {
	total := 0
	if f.HomeScore != nil {
		total += *f.HomeScore
	}
	if f.HomeScoreET != nil {
		total += *f.HomeScoreET
	}
	return total
}

func (f *Fixture) TotalAwayGoals() int {
	total := 0
	if f.AwayScore != nil {
		total += *f.AwayScore
	}
	if f.AwayScoreET != nil {
		total += *f.AwayScoreET
	}
	return total
}
