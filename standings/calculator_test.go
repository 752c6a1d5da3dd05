package standings

import (
	"reflect"
	"testing"

	"github.com/safaconnect/tournament-engine/models"
)

var soccerRules = &models.SportRuleSet{
	Code:       "soccer",
	WinPoints:  3,
	DrawPoints: 1,
	LossPoints: 0,
}

func team(id int, name string) *models.Team {
	return &models.Team{ID: id, TournamentID: 1, Name: name}
}

func pooledTeam(id int, name, pool string) *models.Team {
	t := team(id, name)
	t.Pool = &pool
	return t
}

func result(home, away, homeGoals, awayGoals int) *models.Fixture {
	return &models.Fixture{
		TournamentID: 1,
		HomeTeamID:   home,
		AwayTeamID:   away,
		Status:       models.FixtureCompleted,
		HomeScore:    &homeGoals,
		AwayScore:    &awayGoals,
	}
}

func findRow(t *testing.T, rows []*models.Standing, teamID int) *models.Standing {
	t.Helper()
	for _, s := range rows {
		if s.TeamID == teamID {
			return s
		}
	}
	t.Fatalf("no standing row for team %d", teamID)
	return nil
}

func TestCalculateBasicTable(t *testing.T) {
	teams := []*models.Team{team(1, "Ajax CT"), team(2, "Sundowns"), team(3, "Pirates")}
	fixtures := []*models.Fixture{
		result(1, 2, 2, 0), // Ajax beats Sundowns
		result(2, 3, 1, 1), // draw
		result(3, 1, 0, 3), // Ajax beats Pirates
	}

	rows := Calculate(soccerRules, teams, fixtures)
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}

	ajax := findRow(t, rows, 1)
	if ajax.Points != 6 || ajax.Wins != 2 || ajax.Position != 1 {
		t.Errorf("ajax: points=%d wins=%d position=%d, want 6/2/1", ajax.Points, ajax.Wins, ajax.Position)
	}
	if ajax.GoalsFor != 5 || ajax.GoalsAgainst != 0 || ajax.GoalDifference != 5 {
		t.Errorf("ajax goals: %d/%d/%d, want 5/0/5", ajax.GoalsFor, ajax.GoalsAgainst, ajax.GoalDifference)
	}

	sundowns := findRow(t, rows, 2)
	if sundowns.Points != 1 || sundowns.Draws != 1 || sundowns.Losses != 1 {
		t.Errorf("sundowns: points=%d draws=%d losses=%d, want 1/1/1", sundowns.Points, sundowns.Draws, sundowns.Losses)
	}

	// Every row must satisfy the bookkeeping identities.
	for _, s := range rows {
		if s.Played != s.Wins+s.Draws+s.Losses {
			t.Errorf("team %d: played %d != W+D+L %d", s.TeamID, s.Played, s.Wins+s.Draws+s.Losses)
		}
		if s.GoalDifference != s.GoalsFor-s.GoalsAgainst {
			t.Errorf("team %d: GD %d != GF-GA %d", s.TeamID, s.GoalDifference, s.GoalsFor-s.GoalsAgainst)
		}
		if s.Points != s.Wins*3+s.Draws*1 {
			t.Errorf("team %d: points %d inconsistent with record", s.TeamID, s.Points)
		}
	}
}

func TestCalculateIsRepeatable(t *testing.T) {
	teams := []*models.Team{team(1, "A"), team(2, "B"), team(3, "C"), team(4, "D")}
	fixtures := []*models.Fixture{
		result(1, 2, 3, 1),
		result(3, 4, 0, 0),
		result(1, 3, 2, 2),
		result(2, 4, 1, 0),
	}

	first := Calculate(soccerRules, teams, fixtures)
	second := Calculate(soccerRules, teams, fixtures)

	if !reflect.DeepEqual(first, second) {
		t.Error("two runs over identical input produced different tables")
	}
}

func TestCalculateSkipsUnfinishedFixtures(t *testing.T) {
	teams := []*models.Team{team(1, "A"), team(2, "B")}
	pending := result(1, 2, 4, 0)
	pending.Status = models.FixtureScheduled

	rows := Calculate(soccerRules, teams, []*models.Fixture{pending})
	for _, s := range rows {
		if s.Played != 0 || s.Points != 0 || s.GoalsFor != 0 {
			t.Errorf("team %d accumulated stats from a scheduled fixture", s.TeamID)
		}
	}
}

func TestCalculateTiebreakOrder(t *testing.T) {
	// All three finish level on points; goal difference, then goals for,
	// then name break the ties.
	teams := []*models.Team{team(1, "Zebras"), team(2, "Aces"), team(3, "Mids")}
	fixtures := []*models.Fixture{
		result(1, 2, 2, 1), // Zebras +1
		result(2, 3, 3, 1), // Aces +2
		result(3, 1, 2, 1), // Mids +1
	}

	rows := Calculate(soccerRules, teams, fixtures)

	// Aces: GD +1 (4-3). Zebras: GD 0 (3-3). Mids: GD -1 (3-4).
	wantOrder := []int{2, 1, 3}
	for i, want := range wantOrder {
		if rows[i].TeamID != want {
			t.Errorf("position %d: team %d, want %d", i+1, rows[i].TeamID, want)
		}
		if rows[i].Position != i+1 {
			t.Errorf("row %d: position = %d, want %d", i, rows[i].Position, i+1)
		}
	}
}

func TestCalculateTiebreakGoalsForThenName(t *testing.T) {
	teams := []*models.Team{team(1, "Bees"), team(2, "Ants")}
	// Two draws leave both teams level on points and goal difference, but
	// the second game's scoreline gives each side equal goals for as well,
	// so name ascending decides.
	fixtures := []*models.Fixture{
		result(1, 2, 1, 1),
		result(2, 1, 2, 2),
	}

	rows := Calculate(soccerRules, teams, fixtures)
	if rows[0].TeamID != 2 {
		t.Errorf("first place team %d, want Ants (2) by name", rows[0].TeamID)
	}
}

func TestCalculateTiebreakGoalsForBeatsName(t *testing.T) {
	// Zed and Yak finish level on points and goal difference. Zed scored
	// more, so goals for must rank Zed first despite the later name.
	teams := []*models.Team{team(1, "Zed"), team(2, "Yak"), team(3, "Wol")}
	fixtures := []*models.Fixture{
		result(1, 3, 4, 2),
		result(2, 3, 2, 0),
	}

	rows := Calculate(soccerRules, teams, fixtures)
	if rows[0].TeamID != 1 {
		t.Fatalf("first place team %d, want Zed (1) on goals for", rows[0].TeamID)
	}
	if rows[1].TeamID != 2 {
		t.Errorf("second place team %d, want Yak (2)", rows[1].TeamID)
	}
}

func TestCalculatePoolsRankIndependently(t *testing.T) {
	teams := []*models.Team{
		pooledTeam(1, "A1", "A"), pooledTeam(2, "A2", "A"),
		pooledTeam(3, "B1", "B"), pooledTeam(4, "B2", "B"),
	}
	fixtures := []*models.Fixture{
		result(1, 2, 1, 0),
		result(3, 4, 2, 0),
	}

	rows := Calculate(soccerRules, teams, fixtures)
	if len(rows) != 4 {
		t.Fatalf("got %d rows, want 4", len(rows))
	}

	// Pool A ranks before pool B, and positions restart inside each pool.
	wantPools := []string{"A", "A", "B", "B"}
	wantPositions := []int{1, 2, 1, 2}
	for i, s := range rows {
		if s.Pool == nil || *s.Pool != wantPools[i] {
			t.Errorf("row %d: pool = %v, want %s", i, s.Pool, wantPools[i])
		}
		if s.Position != wantPositions[i] {
			t.Errorf("row %d: position = %d, want %d", i, s.Position, wantPositions[i])
		}
	}
}

func TestCalculatePenaltyShootoutDecidesWinner(t *testing.T) {
	teams := []*models.Team{team(1, "Home"), team(2, "Away")}

	f := result(1, 2, 1, 1)
	et := 0
	homePens, awayPens := 4, 3
	f.HomeScoreET, f.AwayScoreET = &et, &et
	f.HomePenalty, f.AwayPenalty = &homePens, &awayPens

	rows := Calculate(soccerRules, teams, []*models.Fixture{f})

	home := findRow(t, rows, 1)
	away := findRow(t, rows, 2)

	if home.Wins != 1 || home.Draws != 0 {
		t.Errorf("home record W%d D%d, want shoot-out counted as a win", home.Wins, home.Draws)
	}
	if away.Losses != 1 || away.Draws != 0 {
		t.Errorf("away record L%d D%d, want shoot-out counted as a loss", away.Losses, away.Draws)
	}

	// Shoot-out goals never count towards goals for or against.
	if home.GoalsFor != 1 || home.GoalsAgainst != 1 {
		t.Errorf("home goals %d/%d, want 1/1 (penalties excluded)", home.GoalsFor, home.GoalsAgainst)
	}
}

func TestCalculateHonoursRecordedWinner(t *testing.T) {
	teams := []*models.Team{team(1, "Home"), team(2, "Away")}

	f := result(1, 2, 0, 0)
	winner := 2
	f.WinnerTeamID = &winner

	rows := Calculate(soccerRules, teams, []*models.Fixture{f})
	away := findRow(t, rows, 2)
	if away.Wins != 1 {
		t.Errorf("recorded winner not honoured: away wins = %d", away.Wins)
	}
}

func TestCalculateIgnoresFixturesForUnknownTeams(t *testing.T) {
	teams := []*models.Team{team(1, "A"), team(2, "B")}
	fixtures := []*models.Fixture{
		result(1, 2, 1, 0),
		result(1, 99, 5, 0), // stale fixture referencing a deleted team
	}

	rows := Calculate(soccerRules, teams, fixtures)
	a := findRow(t, rows, 1)
	if a.Played != 1 || a.GoalsFor != 1 {
		t.Errorf("fixture with unknown team affected the table: %+v", a)
	}
}
