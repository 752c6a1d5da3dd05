package fixtures

import (
	"context"
	"testing"

	"github.com/safaconnect/tournament-engine/models"
)

func TestLeagueDoubleRoundRobinCount(t *testing.T) {
	tests := []struct {
		teams int
		want  int
	}{
		{2, 2},
		{3, 6},
		{4, 12},
		{6, 30},
	}

	g := NewLeagueGenerator()
	for _, tc := range tests {
		names := make([]string, tc.teams)
		for i := range names {
			names[i] = string(rune('A' + i))
		}
		fixtures, err := g.Generate(context.Background(), GenerateParams{
			Tournament: testTournament(models.TypeLeague, 60),
			Teams:      testTeams(names...),
		})
		if err != nil {
			t.Fatalf("%d teams: %v", tc.teams, err)
		}
		if len(fixtures) != tc.want {
			t.Errorf("%d teams: got %d fixtures, want %d", tc.teams, len(fixtures), tc.want)
		}
	}
}

func TestLeagueHalvesMirrorHomeAndAway(t *testing.T) {
	teams := testTeams("A", "B", "C", "D")
	g := NewLeagueGenerator()

	fixtures, err := g.Generate(context.Background(), GenerateParams{
		Tournament: testTournament(models.TypeLeague, 60),
		Teams:      teams,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	half := len(fixtures) / 2
	for i := 0; i < half; i++ {
		first, second := fixtures[i], fixtures[half+i]

		if first.HomeTeamID != second.AwayTeamID || first.AwayTeamID != second.HomeTeamID {
			t.Errorf("leg %d: second half %d vs %d does not mirror first half %d vs %d",
				i, second.HomeTeamID, second.AwayTeamID, first.HomeTeamID, first.AwayTeamID)
		}
		if *first.RoundName != "First Half" {
			t.Errorf("leg %d: first half label = %q", i, *first.RoundName)
		}
		if *second.RoundName != "Second Half" {
			t.Errorf("leg %d: second half label = %q", i, *second.RoundName)
		}
		if *first.Round != 1 || *second.Round != 2 {
			t.Errorf("leg %d: rounds = %d/%d, want 1/2", i, *first.Round, *second.Round)
		}
	}

	// The entire second half is scheduled after the first.
	lastFirstHalf := fixtures[half-1].MatchDate
	for _, f := range fixtures[half:] {
		if !f.MatchDate.After(lastFirstHalf) {
			t.Errorf("second half fixture at %v not after first half end %v", f.MatchDate, lastFirstHalf)
		}
	}
}
