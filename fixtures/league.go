package fixtures

import (
	"context"

	"github.com/safaconnect/tournament-engine/models"
)

type LeagueGenerator struct{}

func NewLeagueGenerator() Generator {
	return &LeagueGenerator{}
}

func (g *LeagueGenerator) GetName() string {
	return "League"
}

// Generate produces a double round-robin: every unordered pair plays twice
// with home and away reversed, N*(N-1) fixtures in total. The first leg of
// every pair is labelled "First Half", the reverse leg "Second Half", and
// the whole second half is scheduled after the first.
func (g *LeagueGenerator) Generate(ctx context.Context, params GenerateParams) ([]*models.Fixture, error) {
	teams := params.Teams
	if len(teams) < 2 {
		return []*models.Fixture{}, nil
	}

	sched := newSlotScheduler(params.Tournament)
	matches := make([]*models.Fixture, 0, len(teams)*(len(teams)-1))

	for i := 0; i < len(teams); i++ {
		for j := i + 1; j < len(teams); j++ {
			f := newFixture(params.Tournament, teams[i], teams[j], sched.take())
			f.Round = intPtr(1)
			f.RoundName = strPtr("First Half")
			matches = append(matches, f)
		}
	}
	for i := 0; i < len(teams); i++ {
		for j := i + 1; j < len(teams); j++ {
			f := newFixture(params.Tournament, teams[j], teams[i], sched.take())
			f.Round = intPtr(2)
			f.RoundName = strPtr("Second Half")
			matches = append(matches, f)
		}
	}

	return matches, nil
}
