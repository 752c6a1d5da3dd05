package fixtures

import (
	"context"
	"fmt"
	"time"

	"github.com/safaconnect/tournament-engine/models"
)

// slotGapMinutes is the fixed turnaround between consecutive slots.
const slotGapMinutes = 30

type GenerateParams struct {
	Tournament *models.Tournament
	// Teams in the order returned by storage. Generators must not assume
	// any particular sorting.
	Teams []*models.Team
}

// Generator produces a complete, time-slotted fixture list for one
// tournament. Fewer than two teams is a degenerate but valid input: every
// generator returns an empty list and no error.
type Generator interface {
	Generate(ctx context.Context, params GenerateParams) ([]*models.Fixture, error)

	GetName() string
}

// ForType returns the generator matching a tournament type.
func ForType(t models.TournamentType) (Generator, error) {
	switch t {
	case models.TypeRoundRobin:
		return NewRoundRobinGenerator(), nil
	case models.TypeKnockout:
		return NewKnockoutGenerator(), nil
	case models.TypePoolPlayoff:
		return NewPoolPlayoffGenerator(), nil
	case models.TypeLeague:
		return NewLeagueGenerator(), nil
	default:
		return nil, fmt.Errorf("unsupported tournament type %q", t)
	}
}

// slotScheduler hands out sequential kick-off times starting at the
// tournament start date. Each slot lasts the sport's match duration plus a
// fixed gap. There is no day-boundary or venue-conflict awareness; this is
// a linear scheduler, not a constraint solver.
type slotScheduler struct {
	next time.Time
	slot time.Duration
}

func newSlotScheduler(t *models.Tournament) *slotScheduler {
	duration := 90 // fallback when the sport rule set was not preloaded
	if t.Sport != nil && t.Sport.MatchDurationMinutes > 0 {
		duration = t.Sport.MatchDurationMinutes
	}
	return &slotScheduler{
		next: t.StartDate,
		slot: time.Duration(duration+slotGapMinutes) * time.Minute,
	}
}

// NewSlotSchedulerAt continues slot assignment from an arbitrary point,
// used when appending knockout rounds after already-scheduled fixtures.
func newSlotSchedulerAt(t *models.Tournament, from time.Time) *slotScheduler {
	s := newSlotScheduler(t)
	if from.After(s.next) {
		s.next = from
	}
	return s
}

func (s *slotScheduler) take() time.Time {
	at := s.next
	s.next = s.next.Add(s.slot)
	return at
}

func newFixture(t *models.Tournament, home, away *models.Team, at time.Time) *models.Fixture {
	return &models.Fixture{
		TournamentID: t.ID,
		HomeTeamID:   home.ID,
		AwayTeamID:   away.ID,
		MatchDate:    at,
		Venue:        t.Venue(),
		Status:       models.FixtureScheduled,
	}
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
