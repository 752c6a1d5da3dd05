package fixtures

import (
	"context"
	"testing"
	"time"

	"github.com/safaconnect/tournament-engine/models"
)

func TestRoundRobinPairCount(t *testing.T) {
	tests := []struct {
		teams int
		want  int
	}{
		{2, 1},
		{3, 3},
		{4, 6},
		{5, 10},
		{8, 28},
		{16, 120},
	}

	g := NewRoundRobinGenerator()
	for _, tc := range tests {
		names := make([]string, tc.teams)
		for i := range names {
			names[i] = string(rune('A' + i))
		}
		fixtures, err := g.Generate(context.Background(), GenerateParams{
			Tournament: testTournament(models.TypeRoundRobin, 60),
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

// Five teams with a 60 minute match duration produce ten fixtures in pair
// enumeration order, kicking off 90 minutes apart.
func TestRoundRobinFiveTeamSchedule(t *testing.T) {
	teams := testTeams("A", "B", "C", "D", "E")
	g := NewRoundRobinGenerator()

	fixtures, err := g.Generate(context.Background(), GenerateParams{
		Tournament: testTournament(models.TypeRoundRobin, 60),
		Teams:      teams,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	wantPairs := [][2]string{
		{"A", "B"}, {"A", "C"}, {"A", "D"}, {"A", "E"},
		{"B", "C"}, {"B", "D"}, {"B", "E"},
		{"C", "D"}, {"C", "E"},
		{"D", "E"},
	}
	if len(fixtures) != len(wantPairs) {
		t.Fatalf("got %d fixtures, want %d", len(fixtures), len(wantPairs))
	}

	nameByID := map[int]string{}
	for _, team := range teams {
		nameByID[team.ID] = team.Name
	}

	for i, f := range fixtures {
		home, away := nameByID[f.HomeTeamID], nameByID[f.AwayTeamID]
		if home != wantPairs[i][0] || away != wantPairs[i][1] {
			t.Errorf("fixture %d: %s vs %s, want %s vs %s", i, home, away, wantPairs[i][0], wantPairs[i][1])
		}

		wantKickoff := testStart.Add(time.Duration(i) * 90 * time.Minute)
		if !f.MatchDate.Equal(wantKickoff) {
			t.Errorf("fixture %d: kickoff %v, want %v", i, f.MatchDate, wantKickoff)
		}
	}
}

// Every team must meet every other team exactly once, no self-pairings.
func TestRoundRobinPairCompleteness(t *testing.T) {
	teams := testTeams("A", "B", "C", "D", "E", "F", "G")
	g := NewRoundRobinGenerator()

	fixtures, err := g.Generate(context.Background(), GenerateParams{
		Tournament: testTournament(models.TypeRoundRobin, 60),
		Teams:      teams,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	seen := map[[2]int]int{}
	for _, f := range fixtures {
		if f.HomeTeamID == f.AwayTeamID {
			t.Fatalf("fixture pairs team %d with itself", f.HomeTeamID)
		}
		a, b := f.HomeTeamID, f.AwayTeamID
		if a > b {
			a, b = b, a
		}
		seen[[2]int{a, b}]++
	}

	for i := 0; i < len(teams); i++ {
		for j := i + 1; j < len(teams); j++ {
			key := [2]int{teams[i].ID, teams[j].ID}
			if seen[key] != 1 {
				t.Errorf("pair %v appears %d times, want exactly once", key, seen[key])
			}
		}
	}
}
