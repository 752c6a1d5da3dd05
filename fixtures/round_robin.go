package fixtures

import (
	"context"

	"github.com/safaconnect/tournament-engine/models"
)

type RoundRobinGenerator struct{}

func NewRoundRobinGenerator() Generator {
	return &RoundRobinGenerator{}
}

func (g *RoundRobinGenerator) GetName() string {
	return "RoundRobin"
}

// Generate produces every unordered pair of teams exactly once: N*(N-1)/2
// fixtures enumerated by a double loop over team indices i < j. The
// schedule is intentionally not balanced for home/away fairness or rest
// days; the contract is pair completeness, not calendar quality.
func (g *RoundRobinGenerator) Generate(ctx context.Context, params GenerateParams) ([]*models.Fixture, error) {
	teams := params.Teams
	if len(teams) < 2 {
		return []*models.Fixture{}, nil
	}

	sched := newSlotScheduler(params.Tournament)
	matches := make([]*models.Fixture, 0, len(teams)*(len(teams)-1)/2)

	for i := 0; i < len(teams); i++ {
		for j := i + 1; j < len(teams); j++ {
			f := newFixture(params.Tournament, teams[i], teams[j], sched.take())
			f.Round = intPtr(1)
			f.RoundName = strPtr("Round Robin")
			matches = append(matches, f)
		}
	}

	return matches, nil
}
