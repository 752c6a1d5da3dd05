package fixtures

import (
	"context"

	"github.com/safaconnect/tournament-engine/models"
)

var poolLabels = []string{"A", "B", "C", "D"}

type PoolPlayoffGenerator struct{}

func NewPoolPlayoffGenerator() Generator {
	return &PoolPlayoffGenerator{}
}

func (g *PoolPlayoffGenerator) GetName() string {
	return "PoolPlayoff"
}

// Generate partitions the teams into pools and runs a round-robin within
// each pool. The playoff stage is seeded from pool standings by an
// operator once group play completes; it is not generated here.
func (g *PoolPlayoffGenerator) Generate(ctx context.Context, params GenerateParams) ([]*models.Fixture, error) {
	teams := params.Teams
	if len(teams) < 2 {
		return []*models.Fixture{}, nil
	}

	sched := newSlotScheduler(params.Tournament)
	matches := make([]*models.Fixture, 0)

	pools := AssignPools(teams)
	for _, label := range PoolLabels(len(teams)) {
		pool := pools[label]
		for i := 0; i < len(pool); i++ {
			for j := i + 1; j < len(pool); j++ {
				f := newFixture(params.Tournament, pool[i], pool[j], sched.take())
				f.Pool = strPtr(label)
				f.Round = intPtr(1)
				f.RoundName = strPtr("Pool " + label)
				matches = append(matches, f)
			}
		}
	}

	return matches, nil
}

// PoolCount picks how many pools a team count splits into: up to 8 teams
// play in 2 pools, up to 12 in 3, anything larger in 4.
func PoolCount(teams int) int {
	switch {
	case teams <= 6:
		return 2
	case teams <= 8:
		return 2
	case teams <= 12:
		return 3
	default:
		return 4
	}
}

// AssignPools splits teams into labelled pools in list order. Remainder
// teams go to the first pools, so pool sizes differ by at most one.
// Callers that need deterministic order should range over
// PoolLabels(len(teams)) rather than over the returned map.
func AssignPools(teams []*models.Team) map[string][]*models.Team {
	count := PoolCount(len(teams))
	base := len(teams) / count
	rem := len(teams) % count

	pools := make(map[string][]*models.Team, count)
	idx := 0
	for p := 0; p < count; p++ {
		size := base
		if p < rem {
			size++
		}
		label := poolLabels[p]
		pools[label] = teams[idx : idx+size]
		idx += size
	}
	return pools
}

// PoolLabels returns the labels in use for a given team count, in order.
func PoolLabels(teams int) []string {
	return poolLabels[:PoolCount(teams)]
}
