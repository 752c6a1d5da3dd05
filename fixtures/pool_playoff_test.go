package fixtures

import (
	"context"
	"testing"

	"github.com/safaconnect/tournament-engine/models"
)

func TestPoolCount(t *testing.T) {
	tests := []struct {
		teams int
		want  int
	}{
		{2, 2},
		{4, 2},
		{6, 2},
		{7, 2},
		{8, 2},
		{9, 3},
		{12, 3},
		{13, 4},
		{20, 4},
	}
	for _, tc := range tests {
		if got := PoolCount(tc.teams); got != tc.want {
			t.Errorf("PoolCount(%d) = %d, want %d", tc.teams, got, tc.want)
		}
	}
}

func TestAssignPoolsSizes(t *testing.T) {
	tests := []struct {
		teams     int
		wantSizes map[string]int
	}{
		{6, map[string]int{"A": 3, "B": 3}},
		{7, map[string]int{"A": 4, "B": 3}},
		{9, map[string]int{"A": 3, "B": 3, "C": 3}},
		{10, map[string]int{"A": 4, "B": 3, "C": 3}},
		{13, map[string]int{"A": 4, "B": 3, "C": 3, "D": 3}},
	}

	for _, tc := range tests {
		names := make([]string, tc.teams)
		for i := range names {
			names[i] = string(rune('A' + i))
		}
		pools := AssignPools(testTeams(names...))

		if len(pools) != len(tc.wantSizes) {
			t.Errorf("%d teams: got %d pools, want %d", tc.teams, len(pools), len(tc.wantSizes))
		}
		for label, wantSize := range tc.wantSizes {
			if got := len(pools[label]); got != wantSize {
				t.Errorf("%d teams: pool %s has %d teams, want %d", tc.teams, label, got, wantSize)
			}
		}
	}
}

func TestAssignPoolsPreservesListOrder(t *testing.T) {
	teams := testTeams("A", "B", "C", "D", "E", "F", "G")
	pools := AssignPools(teams)

	// 7 teams split 4/3: the first four in list order form pool A.
	wantA := []int{1, 2, 3, 4}
	for i, team := range pools["A"] {
		if team.ID != wantA[i] {
			t.Errorf("pool A[%d] = team %d, want %d", i, team.ID, wantA[i])
		}
	}
	wantB := []int{5, 6, 7}
	for i, team := range pools["B"] {
		if team.ID != wantB[i] {
			t.Errorf("pool B[%d] = team %d, want %d", i, team.ID, wantB[i])
		}
	}
}

func TestPoolPlayoffGeneratesRoundRobinPerPool(t *testing.T) {
	teams := testTeams("A", "B", "C", "D", "E", "F")
	g := NewPoolPlayoffGenerator()

	fixtures, err := g.Generate(context.Background(), GenerateParams{
		Tournament: testTournament(models.TypePoolPlayoff, 60),
		Teams:      teams,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	// Two pools of three teams, three matches each.
	if len(fixtures) != 6 {
		t.Fatalf("got %d fixtures, want 6", len(fixtures))
	}

	for i, f := range fixtures {
		if f.Pool == nil {
			t.Fatalf("fixture %d has no pool label", i)
		}
		wantPool := "A"
		if i >= 3 {
			wantPool = "B"
		}
		if *f.Pool != wantPool {
			t.Errorf("fixture %d in pool %s, want %s (pool A schedules first)", i, *f.Pool, wantPool)
		}
		if *f.RoundName != "Pool "+wantPool {
			t.Errorf("fixture %d round name = %q", i, *f.RoundName)
		}
	}

	// No fixture may cross pool boundaries.
	pools := AssignPools(teams)
	poolOf := map[int]string{}
	for label, poolTeams := range pools {
		for _, team := range poolTeams {
			poolOf[team.ID] = label
		}
	}
	for _, f := range fixtures {
		if poolOf[f.HomeTeamID] != poolOf[f.AwayTeamID] {
			t.Errorf("fixture %d vs %d crosses pools %s and %s",
				f.HomeTeamID, f.AwayTeamID, poolOf[f.HomeTeamID], poolOf[f.AwayTeamID])
		}
	}
}

func TestPoolPlayoffDeterministicOrder(t *testing.T) {
	teams := testTeams("A", "B", "C", "D", "E", "F", "G", "H", "I")
	g := NewPoolPlayoffGenerator()
	params := GenerateParams{Tournament: testTournament(models.TypePoolPlayoff, 60), Teams: teams}

	first, err := g.Generate(context.Background(), params)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	for run := 0; run < 5; run++ {
		again, err := g.Generate(context.Background(), params)
		if err != nil {
			t.Fatalf("Generate run %d: %v", run, err)
		}
		if len(again) != len(first) {
			t.Fatalf("run %d: %d fixtures, want %d", run, len(again), len(first))
		}
		for i := range first {
			if first[i].HomeTeamID != again[i].HomeTeamID ||
				first[i].AwayTeamID != again[i].AwayTeamID ||
				!first[i].MatchDate.Equal(again[i].MatchDate) {
				t.Fatalf("run %d: fixture %d differs between runs", run, i)
			}
		}
	}
}
