package standings

import (
	"sort"

	"github.com/safaconnect/tournament-engine/models"
)

// Calculate rebuilds a tournament's standings table from its completed
// fixtures. It is a pure function of (rules, teams, fixtures): running it
// twice over the same inputs yields identical output.
//
// Teams are ranked within their pool by points, then goal difference, then
// goals for, then team name ascending. The two trailing keys are the
// deterministic tiebreak this engine commits to; head-to-head records are
// deliberately not consulted.
func Calculate(rules *models.SportRuleSet, teams []*models.Team, fixtures []*models.Fixture) []*models.Standing {
	byTeam := make(map[int]*models.Standing, len(teams))
	names := make(map[int]string, len(teams))
	rows := make([]*models.Standing, 0, len(teams))

	// UpdatedAt is stamped by the repository on save so that the
	// calculation itself stays a pure, repeatable function.
	for _, t := range teams {
		s := &models.Standing{
			TournamentID: t.TournamentID,
			TeamID:       t.ID,
			Pool:         t.Pool,
		}
		byTeam[t.ID] = s
		names[t.ID] = t.Name
		rows = append(rows, s)
	}

	for _, f := range fixtures {
		if f.Status != models.FixtureCompleted {
			continue
		}
		home, homeOK := byTeam[f.HomeTeamID]
		away, awayOK := byTeam[f.AwayTeamID]
		if !homeOK || !awayOK {
			continue
		}

		homeGoals := f.TotalHomeGoals()
		awayGoals := f.TotalAwayGoals()

		home.Played++
		away.Played++
		home.GoalsFor += homeGoals
		home.GoalsAgainst += awayGoals
		away.GoalsFor += awayGoals
		away.GoalsAgainst += homeGoals

		switch {
		case decidedWinner(f) == f.HomeTeamID:
			home.Wins++
			away.Losses++
		case decidedWinner(f) == f.AwayTeamID:
			away.Wins++
			home.Losses++
		default:
			home.Draws++
			away.Draws++
		}
	}

	for _, s := range rows {
		s.GoalDifference = s.GoalsFor - s.GoalsAgainst
		s.Points = s.Wins*rules.WinPoints + s.Draws*rules.DrawPoints + s.Losses*rules.LossPoints
	}

	rank(rows, names)
	return rows
}

// decidedWinner resolves the winning team of a completed fixture, honouring
// penalty shoot-outs where the aggregate score is level. Returns 0 for a
// draw.
func decidedWinner(f *models.Fixture) int {
	if f.WinnerTeamID != nil {
		return *f.WinnerTeamID
	}
	homeGoals := f.TotalHomeGoals()
	awayGoals := f.TotalAwayGoals()
	switch {
	case homeGoals > awayGoals:
		return f.HomeTeamID
	case awayGoals > homeGoals:
		return f.AwayTeamID
	}
	if f.HomePenalty != nil && f.AwayPenalty != nil {
		switch {
		case *f.HomePenalty > *f.AwayPenalty:
			return f.HomeTeamID
		case *f.AwayPenalty > *f.HomePenalty:
			return f.AwayTeamID
		}
	}
	return 0
}

// rank orders the rows and assigns positions. Pools rank independently:
// position 1..n is restarted inside each pool.
func rank(rows []*models.Standing, names map[int]string) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if pl := poolLabel(a); pl != poolLabel(b) {
			return pl < poolLabel(b)
		}
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.GoalDifference != b.GoalDifference {
			return a.GoalDifference > b.GoalDifference
		}
		if a.GoalsFor != b.GoalsFor {
			return a.GoalsFor > b.GoalsFor
		}
		return names[a.TeamID] < names[b.TeamID]
	})

	pos := 0
	currentPool := "\x00"
	for _, s := range rows {
		if poolLabel(s) != currentPool {
			currentPool = poolLabel(s)
			pos = 0
		}
		pos++
		s.Position = pos
	}
}

func poolLabel(s *models.Standing) string {
	if s.Pool == nil {
		return ""
	}
	return *s.Pool
}
