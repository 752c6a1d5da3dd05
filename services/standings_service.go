package services

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/safaconnect/tournament-engine/live"
	"github.com/safaconnect/tournament-engine/models"
	"github.com/safaconnect/tournament-engine/repositories"
	"github.com/safaconnect/tournament-engine/standings"
)

type StandingsService interface {
	GetStandings(ctx context.Context, tournamentID int) ([]*models.Standing, error)
	// RecalculateStandings rebuilds the table from completed fixtures.
	// Normally results keep the table current; this is the repair path
	// after manual data fixes.
	RecalculateStandings(ctx context.Context, tournamentID int) ([]*models.Standing, error)
}

type standingsService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	sportRepo      repositories.SportRepository
	teamRepo       repositories.TeamRepository
	fixtureRepo    repositories.FixtureRepository
	standingRepo   repositories.StandingRepository
	hub            *live.Hub
}

func NewStandingsService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	sportRepo repositories.SportRepository,
	teamRepo repositories.TeamRepository,
	fixtureRepo repositories.FixtureRepository,
	standingRepo repositories.StandingRepository,
	hub *live.Hub,
) StandingsService {
	return &standingsService{
		db:             db,
		tournamentRepo: tournamentRepo,
		sportRepo:      sportRepo,
		teamRepo:       teamRepo,
		fixtureRepo:    fixtureRepo,
		standingRepo:   standingRepo,
		hub:            hub,
	}
}

func (s *standingsService) GetStandings(ctx context.Context, tournamentID int) ([]*models.Standing, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		return nil, err
	}
	return s.standingRepo.ListByTournament(ctx, tournamentID)
}

func (s *standingsService) RecalculateStandings(ctx context.Context, tournamentID int) ([]*models.Standing, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	sport, err := s.sportRepo.GetByCode(ctx, tournament.SportCode)
	if err != nil {
		return nil, err
	}
	teams, err := s.teamRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	fixtures, err := s.fixtureRepo.ListByTournament(ctx, tournamentID, nil, nil)
	if err != nil {
		return nil, err
	}

	table := standings.Calculate(sport, teams, fixtures)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.standingRepo.ReplaceForTournament(ctx, tx, tournamentID, table); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit standings: %w", err)
	}

	if s.hub != nil {
		s.hub.BroadcastToRoom(strconv.Itoa(tournamentID), live.EventStandingsUpdated, table)
	}
	return table, nil
}
