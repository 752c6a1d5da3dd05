package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/safaconnect/tournament-engine/models"
)

var ErrStandingNotFound = errors.New("standing not found")

type StandingRepository interface {
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Standing, error)
	// ReplaceForTournament deletes all standings of a tournament and
	// inserts the freshly calculated set, inside the caller's transaction.
	ReplaceForTournament(ctx context.Context, exec SQLExecutor, tournamentID int, standings []*models.Standing) error
}

type postgresStandingRepository struct {
	db *sql.DB
}

func NewPostgresStandingRepository(db *sql.DB) StandingRepository {
	return &postgresStandingRepository{db: db}
}

func (r *postgresStandingRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Standing, error) {
	query := `
		SELECT id, tournament_id, team_id, pool, played, wins, draws, losses,
		       goals_for, goals_against, goal_difference, points, position, updated_at
		FROM standings
		WHERE tournament_id = $1
		ORDER BY pool ASC NULLS FIRST, position ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list standings for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	standings := make([]*models.Standing, 0)
	for rows.Next() {
		s := &models.Standing{}
		if scanErr := rows.Scan(
			&s.ID, &s.TournamentID, &s.TeamID, &s.Pool, &s.Played, &s.Wins, &s.Draws, &s.Losses,
			&s.GoalsFor, &s.GoalsAgainst, &s.GoalDifference, &s.Points, &s.Position, &s.UpdatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		standings = append(standings, s)
	}
	return standings, rows.Err()
}

func (r *postgresStandingRepository) ReplaceForTournament(ctx context.Context, exec SQLExecutor, tournamentID int, standings []*models.Standing) error {
	executor := SQLExecutor(r.db)
	if exec != nil {
		executor = exec
	}

	if _, err := executor.ExecContext(ctx,
		`DELETE FROM standings WHERE tournament_id = $1`, tournamentID); err != nil {
		return fmt.Errorf("failed to clear standings for tournament %d: %w", tournamentID, err)
	}

	query := `
		INSERT INTO standings
			(tournament_id, team_id, pool, played, wins, draws, losses,
			 goals_for, goals_against, goal_difference, points, position, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`

	now := time.Now()
	for _, s := range standings {
		s.UpdatedAt = now
		if err := executor.QueryRowContext(ctx, query,
			s.TournamentID, s.TeamID, s.Pool, s.Played, s.Wins, s.Draws, s.Losses,
			s.GoalsFor, s.GoalsAgainst, s.GoalDifference, s.Points, s.Position, s.UpdatedAt,
		).Scan(&s.ID); err != nil {
			return fmt.Errorf("failed to insert standing for team %d: %w", s.TeamID, err)
		}
	}
	return nil
}
