package fixtures

import (
	"context"
	"testing"
	"time"

	"github.com/safaconnect/tournament-engine/models"
)

var testStart = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func testTournament(tt models.TournamentType, durationMinutes int) *models.Tournament {
	loc := "Cape Town Stadium"
	return &models.Tournament{
		ID:        1,
		Name:      "Test Cup",
		SportCode: "soccer",
		Type:      tt,
		StartDate: testStart,
		EndDate:   testStart.AddDate(0, 1, 0),
		Location:  &loc,
		Status:    models.StatusActive,
		Sport: &models.SportRuleSet{
			Code:                 "soccer",
			MatchDurationMinutes: durationMinutes,
			WinPoints:            3,
			DrawPoints:           1,
		},
	}
}

func testTeams(names ...string) []*models.Team {
	teams := make([]*models.Team, 0, len(names))
	for i, name := range names {
		teams = append(teams, &models.Team{ID: i + 1, TournamentID: 1, Name: name})
	}
	return teams
}

func TestForType(t *testing.T) {
	tests := []struct {
		tt       models.TournamentType
		wantName string
	}{
		{models.TypeRoundRobin, "RoundRobin"},
		{models.TypeKnockout, "Knockout"},
		{models.TypePoolPlayoff, "PoolPlayoff"},
		{models.TypeLeague, "League"},
	}
	for _, tc := range tests {
		g, err := ForType(tc.tt)
		if err != nil {
			t.Fatalf("ForType(%s): unexpected error: %v", tc.tt, err)
		}
		if g.GetName() != tc.wantName {
			t.Errorf("ForType(%s).GetName() = %q, want %q", tc.tt, g.GetName(), tc.wantName)
		}
	}

	if _, err := ForType("swiss"); err == nil {
		t.Error("ForType(swiss): expected error for unsupported type")
	}
}

// Every generator must treat fewer than two teams as a valid, empty
// schedule rather than an error.
func TestGenerateDegenerateTeamCounts(t *testing.T) {
	types := []models.TournamentType{
		models.TypeRoundRobin, models.TypeKnockout, models.TypePoolPlayoff, models.TypeLeague,
	}
	for _, tt := range types {
		for _, teams := range [][]*models.Team{nil, {}, testTeams("Lonely FC")} {
			g, err := ForType(tt)
			if err != nil {
				t.Fatalf("ForType(%s): %v", tt, err)
			}
			fixtures, err := g.Generate(context.Background(), GenerateParams{
				Tournament: testTournament(tt, 90),
				Teams:      teams,
			})
			if err != nil {
				t.Errorf("%s with %d teams: unexpected error: %v", tt, len(teams), err)
			}
			if fixtures == nil {
				t.Errorf("%s with %d teams: got nil, want empty slice", tt, len(teams))
			}
			if len(fixtures) != 0 {
				t.Errorf("%s with %d teams: got %d fixtures, want 0", tt, len(teams), len(fixtures))
			}
		}
	}
}

func TestSlotSchedulerFallbackDuration(t *testing.T) {
	tournament := testTournament(models.TypeRoundRobin, 90)
	tournament.Sport = nil

	sched := newSlotScheduler(tournament)
	first := sched.take()
	second := sched.take()

	if !first.Equal(testStart) {
		t.Errorf("first slot = %v, want %v", first, testStart)
	}
	if got, want := second.Sub(first), 120*time.Minute; got != want {
		t.Errorf("slot gap without sport rules = %v, want %v", got, want)
	}
}

func TestSlotSchedulerAtContinuesAfter(t *testing.T) {
	tournament := testTournament(models.TypeKnockout, 60)
	after := testStart.Add(5 * time.Hour)

	sched := newSlotSchedulerAt(tournament, after)
	if got := sched.take(); !got.Equal(after) {
		t.Errorf("first slot = %v, want %v", got, after)
	}

	// A point before the start date must not move scheduling backwards.
	sched = newSlotSchedulerAt(tournament, testStart.Add(-time.Hour))
	if got := sched.take(); !got.Equal(testStart) {
		t.Errorf("first slot = %v, want start date %v", got, testStart)
	}
}

func TestGeneratedFixtureDefaults(t *testing.T) {
	g := NewRoundRobinGenerator()
	fixtures, err := g.Generate(context.Background(), GenerateParams{
		Tournament: testTournament(models.TypeRoundRobin, 60),
		Teams:      testTeams("Ajax CT", "Sundowns"),
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(fixtures) != 1 {
		t.Fatalf("got %d fixtures, want 1", len(fixtures))
	}

	f := fixtures[0]
	if f.Status != models.FixtureScheduled {
		t.Errorf("status = %s, want %s", f.Status, models.FixtureScheduled)
	}
	if f.Venue != "Cape Town Stadium" {
		t.Errorf("venue = %q, want tournament location", f.Venue)
	}
	if f.TournamentID != 1 {
		t.Errorf("tournament id = %d, want 1", f.TournamentID)
	}
}

func TestGeneratedFixtureVenueFallback(t *testing.T) {
	tournament := testTournament(models.TypeRoundRobin, 60)
	tournament.Location = nil

	g := NewRoundRobinGenerator()
	fixtures, err := g.Generate(context.Background(), GenerateParams{
		Tournament: tournament,
		Teams:      testTeams("Ajax CT", "Sundowns"),
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if fixtures[0].Venue != "TBC" {
		t.Errorf("venue = %q, want TBC when location is unset", fixtures[0].Venue)
	}
}
