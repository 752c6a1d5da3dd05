package fixtures

import (
	"context"
	"fmt"
	"time"

	"github.com/safaconnect/tournament-engine/models"
)

type KnockoutGenerator struct{}

func NewKnockoutGenerator() Generator {
	return &KnockoutGenerator{}
}

func (g *KnockoutGenerator) GetName() string {
	return "Knockout"
}

// Generate produces only the first round of a single-elimination bracket:
// adjacent teams in list order are paired (team[0] vs team[1], team[2] vs
// team[3], ...) and an odd team out receives a bye by being carried forward
// unpaired. Later rounds depend on real results and are built through
// NextRound once the previous round has completed.
func (g *KnockoutGenerator) Generate(ctx context.Context, params GenerateParams) ([]*models.Fixture, error) {
	teams := params.Teams
	if len(teams) < 2 {
		return []*models.Fixture{}, nil
	}

	sched := newSlotScheduler(params.Tournament)
	matches := make([]*models.Fixture, 0, len(teams)/2)

	for i := 0; i+1 < len(teams); i += 2 {
		f := newFixture(params.Tournament, teams[i], teams[i+1], sched.take())
		f.Round = intPtr(1)
		f.RoundName = strPtr(roundName(1, len(teams)))
		matches = append(matches, f)
	}

	return matches, nil
}

// NextRoundEntrants resolves which team IDs advance out of a completed
// knockout round. Entrants are the IDs that entered the round in pairing
// order; fixtures are that round's matches. The result is the winners in
// fixture order, with a trailing bye entrant (if any) appended unpaired.
// Every fixture must be completed with a recorded winner.
func NextRoundEntrants(entrants []int, fixtures []*models.Fixture) ([]int, error) {
	paired := make(map[int]bool, len(fixtures)*2)
	advancing := make([]int, 0, len(fixtures)+1)

	for _, f := range fixtures {
		if f.Status != models.FixtureCompleted {
			return nil, fmt.Errorf("fixture %d is not completed", f.ID)
		}
		if f.WinnerTeamID == nil {
			return nil, fmt.Errorf("fixture %d has no winner recorded", f.ID)
		}
		paired[f.HomeTeamID] = true
		paired[f.AwayTeamID] = true
		advancing = append(advancing, *f.WinnerTeamID)
	}

	for _, id := range entrants {
		if !paired[id] {
			advancing = append(advancing, id)
		}
	}

	return advancing, nil
}

// NextRound pairs the advancing teams of round number `round-1` into round
// `round` fixtures, continuing slot assignment after the latest scheduled
// fixture. A single advancing team means the bracket is decided and no
// further fixtures are produced.
func NextRound(t *models.Tournament, entrants []*models.Team, round int, after time.Time) []*models.Fixture {
	if len(entrants) < 2 {
		return []*models.Fixture{}
	}

	sched := newSlotSchedulerAt(t, after)
	matches := make([]*models.Fixture, 0, len(entrants)/2)

	for i := 0; i+1 < len(entrants); i += 2 {
		f := newFixture(t, entrants[i], entrants[i+1], sched.take())
		f.Round = intPtr(round)
		f.RoundName = strPtr(roundName(round, 0))
		matches = append(matches, f)
	}

	return matches
}

// roundName labels knockout rounds. With the total entrant count known it
// names the familiar stages; otherwise it falls back to "Round N".
func roundName(round, totalTeams int) string {
	if totalTeams > 0 {
		remaining := totalTeams
		for i := 1; i < round; i++ {
			remaining = (remaining + 1) / 2
		}
		switch {
		case remaining == 2:
			return "Final"
		case remaining <= 4:
			return "Semi Final"
		case remaining <= 8:
			return "Quarter Final"
		}
	}
	return fmt.Sprintf("Round %d", round)
}
