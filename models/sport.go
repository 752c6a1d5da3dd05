package models

// SportRuleSet holds the per-sport parameters used by fixture generation
// and standings calculation. Rows are reference data: created once during
// setup and never mutated while tournaments reference them.
type SportRuleSet struct {
	Code                 string `json:"code" db:"code"`
	Name                 string `json:"name" db:"name"`
	PlayersPerTeam       int    `json:"players_per_team" db:"players_per_team"`
	MatchDurationMinutes int    `json:"match_duration_minutes" db:"match_duration_minutes"`
	ExtraTimeAllowed     bool   `json:"extra_time_allowed" db:"extra_time_allowed"`
	PenaltiesAllowed     bool   `json:"penalties_allowed" db:"penalties_allowed"`
	WinPoints            int    `json:"win_points" db:"win_points"`
	DrawPoints           int    `json:"draw_points" db:"draw_points"`
	LossPoints           int    `json:"loss_points" db:"loss_points"`
}
