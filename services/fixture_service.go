package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/safaconnect/tournament-engine/fixtures"
	"github.com/safaconnect/tournament-engine/live"
	"github.com/safaconnect/tournament-engine/models"
	"github.com/safaconnect/tournament-engine/repositories"
	"github.com/safaconnect/tournament-engine/standings"
)

var ErrKnockoutNeedsWinner = errors.New("knockout fixture must produce a winner")

// RegenerateSummary reports what a fixture regeneration did.
type RegenerateSummary struct {
	Generator string            `json:"generator"`
	Deleted   int               `json:"deleted"`
	Created   int               `json:"created"`
	Fixtures  []*models.Fixture `json:"fixtures"`
}

// ResultInput carries a recorded match result. Extra time and penalty
// fields stay nil when they did not occur.
type ResultInput struct {
	HomeScore   int  `json:"home_score"`
	AwayScore   int  `json:"away_score"`
	HomeScoreET *int `json:"home_score_et,omitempty"`
	AwayScoreET *int `json:"away_score_et,omitempty"`
	HomePenalty *int `json:"home_penalty,omitempty"`
	AwayPenalty *int `json:"away_penalty,omitempty"`
}

type FixtureService interface {
	RegenerateFixtures(ctx context.Context, tournamentID int) (*RegenerateSummary, error)
	ListFixtures(ctx context.Context, tournamentID int, round *int, status *models.FixtureStatus) ([]*models.Fixture, error)
	RecordResult(ctx context.Context, fixtureID int, input ResultInput) (*models.Fixture, error)
	UpdateFixtureStatus(ctx context.Context, fixtureID int, status models.FixtureStatus) error
	AdvanceKnockoutRound(ctx context.Context, tournamentID int) ([]*models.Fixture, error)
}

type fixtureService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	sportRepo      repositories.SportRepository
	teamRepo       repositories.TeamRepository
	fixtureRepo    repositories.FixtureRepository
	standingRepo   repositories.StandingRepository
	hub            *live.Hub
	logger         *slog.Logger

	// One mutex per tournament keeps concurrent regenerations and result
	// recordings from interleaving their delete-then-insert transactions.
	locks sync.Map
}

func NewFixtureService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	sportRepo repositories.SportRepository,
	teamRepo repositories.TeamRepository,
	fixtureRepo repositories.FixtureRepository,
	standingRepo repositories.StandingRepository,
	hub *live.Hub,
	logger *slog.Logger,
) FixtureService {
	return &fixtureService{
		db:             db,
		tournamentRepo: tournamentRepo,
		sportRepo:      sportRepo,
		teamRepo:       teamRepo,
		fixtureRepo:    fixtureRepo,
		standingRepo:   standingRepo,
		hub:            hub,
		logger:         logger,
	}
}

func (s *fixtureService) lockTournament(tournamentID int) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(tournamentID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// RegenerateFixtures wipes and rebuilds the full fixture list of a
// tournament in one transaction. Existing results block regeneration; a
// schedule that has started playing cannot be silently discarded.
func (s *fixtureService) RegenerateFixtures(ctx context.Context, tournamentID int) (*RegenerateSummary, error) {
	mu := s.lockTournament(tournamentID)
	mu.Lock()
	defer mu.Unlock()

	tournament, err := s.loadTournamentWithSport(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if tournament.Status == models.StatusCompleted || tournament.Status == models.StatusCanceled {
		return nil, ErrTournamentNotEditable
	}

	existing, err := s.fixtureRepo.ListByTournament(ctx, tournamentID, nil, nil)
	if err != nil {
		return nil, err
	}
	for _, f := range existing {
		if f.Status == models.FixtureCompleted || f.Status == models.FixtureInProgress {
			return nil, ErrFixturesLocked
		}
	}

	teams, err := s.teamRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	generator, err := fixtures.ForType(tournament.Type)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	generated, err := generator.Generate(ctx, fixtures.GenerateParams{
		Tournament: tournament,
		Teams:      teams,
	})
	if err != nil {
		return nil, fmt.Errorf("fixture generation failed: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	deleted, err := s.fixtureRepo.DeleteByTournament(ctx, tx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to clear fixtures: %w", err)
	}

	if err = s.persistPools(ctx, tx, tournament.Type, teams); err != nil {
		return nil, err
	}

	for _, f := range generated {
		if err = s.fixtureRepo.Create(ctx, tx, f); err != nil {
			return nil, fmt.Errorf("failed to insert fixture %d vs %d: %w", f.HomeTeamID, f.AwayTeamID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit fixture regeneration: %w", err)
	}

	summary := &RegenerateSummary{
		Generator: generator.GetName(),
		Deleted:   deleted,
		Created:   len(generated),
		Fixtures:  generated,
	}

	s.logger.Info("fixtures regenerated",
		slog.Int("tournament_id", tournamentID),
		slog.String("generator", summary.Generator),
		slog.Int("deleted", deleted),
		slog.Int("created", len(generated)))

	s.broadcast(tournamentID, live.EventFixturesRegenerated, summary)
	return summary, nil
}

// persistPools stores pool labels assigned during generation, or clears
// stale labels when the tournament type has no pools.
func (s *fixtureService) persistPools(ctx context.Context, tx *sql.Tx, tt models.TournamentType, teams []*models.Team) error {
	if tt != models.TypePoolPlayoff {
		for _, team := range teams {
			if team.Pool == nil {
				continue
			}
			team.Pool = nil
			if err := s.teamRepo.UpdatePool(ctx, tx, team.ID, nil); err != nil {
				return fmt.Errorf("failed to clear pool for team %d: %w", team.ID, err)
			}
		}
		return nil
	}

	pools := fixtures.AssignPools(teams)
	for _, label := range fixtures.PoolLabels(len(teams)) {
		label := label
		for _, team := range pools[label] {
			team.Pool = &label
			if err := s.teamRepo.UpdatePool(ctx, tx, team.ID, &label); err != nil {
				return fmt.Errorf("failed to assign pool %s to team %d: %w", label, team.ID, err)
			}
		}
	}
	return nil
}

func (s *fixtureService) ListFixtures(ctx context.Context, tournamentID int, round *int, status *models.FixtureStatus) ([]*models.Fixture, error) {
	return s.fixtureRepo.ListByTournament(ctx, tournamentID, round, status)
}

// RecordResult stores a final score, resolves the winner, and rebuilds the
// tournament standings in the same transaction.
func (s *fixtureService) RecordResult(ctx context.Context, fixtureID int, input ResultInput) (*models.Fixture, error) {
	fixture, err := s.fixtureRepo.GetByID(ctx, fixtureID)
	if err != nil {
		return nil, err
	}

	mu := s.lockTournament(fixture.TournamentID)
	mu.Lock()
	defer mu.Unlock()

	switch fixture.Status {
	case models.FixtureScheduled, models.FixtureInProgress:
	default:
		return nil, ErrFixtureNotScheduled
	}

	tournament, err := s.loadTournamentWithSport(ctx, fixture.TournamentID)
	if err != nil {
		return nil, err
	}

	if err := validateResult(tournament.Sport, input); err != nil {
		return nil, err
	}

	applyResult(fixture, input)
	if tournament.Type == models.TypeKnockout && fixture.WinnerTeamID == nil {
		return nil, ErrKnockoutNeedsWinner
	}

	teams, err := s.teamRepo.ListByTournament(ctx, fixture.TournamentID)
	if err != nil {
		return nil, err
	}
	all, err := s.fixtureRepo.ListByTournament(ctx, fixture.TournamentID, nil, nil)
	if err != nil {
		return nil, err
	}
	// The update has not committed yet, so splice it into the in-memory
	// fixture list before recalculating.
	for i, f := range all {
		if f.ID == fixture.ID {
			all[i] = fixture
		}
	}
	table := standings.Calculate(tournament.Sport, teams, all)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.fixtureRepo.UpdateResult(ctx, tx, fixture); err != nil {
		return nil, err
	}
	if err = s.standingRepo.ReplaceForTournament(ctx, tx, fixture.TournamentID, table); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit result: %w", err)
	}

	s.logger.Info("result recorded",
		slog.Int("tournament_id", fixture.TournamentID),
		slog.Int("fixture_id", fixture.ID),
		slog.Int("home_score", input.HomeScore),
		slog.Int("away_score", input.AwayScore))

	s.broadcast(fixture.TournamentID, live.EventResultRecorded, fixture)
	s.broadcast(fixture.TournamentID, live.EventStandingsUpdated, table)
	return fixture, nil
}

func (s *fixtureService) UpdateFixtureStatus(ctx context.Context, fixtureID int, status models.FixtureStatus) error {
	switch status {
	case models.FixtureScheduled, models.FixtureInProgress, models.FixturePostponed, models.FixtureCancelled:
	default:
		return fmt.Errorf("%w: results must be recorded through the result endpoint", ErrValidationFailed)
	}
	return s.fixtureRepo.UpdateStatus(ctx, fixtureID, status)
}

// AdvanceKnockoutRound pairs the winners of the latest completed knockout
// round into the next one. The entrant list of each round is replayed from
// round one so byes carry forward correctly.
func (s *fixtureService) AdvanceKnockoutRound(ctx context.Context, tournamentID int) ([]*models.Fixture, error) {
	mu := s.lockTournament(tournamentID)
	mu.Lock()
	defer mu.Unlock()

	tournament, err := s.loadTournamentWithSport(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if tournament.Type != models.TypeKnockout {
		return nil, ErrNotKnockoutTournament
	}

	teams, err := s.teamRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	teamsByID := make(map[int]*models.Team, len(teams))
	entrants := make([]int, 0, len(teams))
	for _, team := range teams {
		teamsByID[team.ID] = team
		entrants = append(entrants, team.ID)
	}

	maxRound, err := s.fixtureRepo.MaxRound(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if maxRound == 0 {
		return nil, fmt.Errorf("%w: generate fixtures first", ErrValidationFailed)
	}

	var latest time.Time
	for round := 1; round <= maxRound; round++ {
		round := round
		roundFixtures, err := s.fixtureRepo.ListByTournament(ctx, tournamentID, &round, nil)
		if err != nil {
			return nil, err
		}
		for _, f := range roundFixtures {
			if f.MatchDate.After(latest) {
				latest = f.MatchDate
			}
		}
		entrants, err = fixtures.NextRoundEntrants(entrants, roundFixtures)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrKnockoutRoundNotDone, err)
		}
	}

	if len(entrants) < 2 {
		return nil, ErrKnockoutAlreadyWon
	}

	advancing := make([]*models.Team, 0, len(entrants))
	for _, id := range entrants {
		team, ok := teamsByID[id]
		if !ok {
			return nil, fmt.Errorf("advancing team %d no longer exists", id)
		}
		advancing = append(advancing, team)
	}

	next := fixtures.NextRound(tournament, advancing, maxRound+1, latest)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, f := range next {
		if err = s.fixtureRepo.Create(ctx, tx, f); err != nil {
			return nil, fmt.Errorf("failed to insert round %d fixture: %w", maxRound+1, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit knockout round: %w", err)
	}

	s.logger.Info("knockout round advanced",
		slog.Int("tournament_id", tournamentID),
		slog.Int("round", maxRound+1),
		slog.Int("fixtures", len(next)))

	s.broadcast(tournamentID, live.EventFixturesRegenerated, next)
	return next, nil
}

func (s *fixtureService) loadTournamentWithSport(ctx context.Context, tournamentID int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	sport, err := s.sportRepo.GetByCode(ctx, tournament.SportCode)
	if err != nil {
		return nil, err
	}
	tournament.Sport = sport
	return tournament, nil
}

func validateResult(sport *models.SportRuleSet, input ResultInput) error {
	if input.HomeScore < 0 || input.AwayScore < 0 {
		return fmt.Errorf("%w: scores must not be negative", ErrValidationFailed)
	}
	if (input.HomeScoreET == nil) != (input.AwayScoreET == nil) {
		return ErrResultScoresRequired
	}
	if (input.HomePenalty == nil) != (input.AwayPenalty == nil) {
		return ErrResultScoresRequired
	}
	if input.HomeScoreET != nil && !sport.ExtraTimeAllowed {
		return ErrExtraTimeNotAllowed
	}
	if input.HomePenalty != nil && !sport.PenaltiesAllowed {
		return ErrPenaltiesNotAllowed
	}
	return nil
}

// applyResult writes the input onto the fixture and resolves the winner
// from aggregate goals, falling back to penalties when level.
func applyResult(f *models.Fixture, input ResultInput) {
	f.HomeScore = &input.HomeScore
	f.AwayScore = &input.AwayScore
	f.HomeScoreET = input.HomeScoreET
	f.AwayScoreET = input.AwayScoreET
	f.HomePenalty = input.HomePenalty
	f.AwayPenalty = input.AwayPenalty
	f.Status = models.FixtureCompleted

	homeGoals := f.TotalHomeGoals()
	awayGoals := f.TotalAwayGoals()

	f.WinnerTeamID = nil
	switch {
	case homeGoals > awayGoals:
		f.WinnerTeamID = &f.HomeTeamID
	case awayGoals > homeGoals:
		f.WinnerTeamID = &f.AwayTeamID
	default:
		if f.HomePenalty != nil && f.AwayPenalty != nil {
			switch {
			case *f.HomePenalty > *f.AwayPenalty:
				f.WinnerTeamID = &f.HomeTeamID
			case *f.AwayPenalty > *f.HomePenalty:
				f.WinnerTeamID = &f.AwayTeamID
			}
		}
	}
}

func (s *fixtureService) broadcast(tournamentID int, event string, payload interface{}) {
	if s.hub != nil {
		s.hub.BroadcastToRoom(strconv.Itoa(tournamentID), event, payload)
	}
}
