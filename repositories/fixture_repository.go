package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"github.com/safaconnect/tournament-engine/models"
)

var (
	ErrFixtureNotFound          = errors.New("fixture not found")
	ErrFixtureTeamInvalid       = errors.New("fixture references an unknown team")
	ErrFixtureTournamentInvalid = errors.New("fixture references an unknown tournament")
	ErrFixtureDuplicate         = errors.New("fixture already exists for this pairing and date")
)

type FixtureRepository interface {
	Create(ctx context.Context, exec SQLExecutor, fixture *models.Fixture) error
	GetByID(ctx context.Context, id int) (*models.Fixture, error)
	ListByTournament(ctx context.Context, tournamentID int, round *int, status *models.FixtureStatus) ([]*models.Fixture, error)
	UpdateResult(ctx context.Context, exec SQLExecutor, fixture *models.Fixture) error
	UpdateStatus(ctx context.Context, id int, status models.FixtureStatus) error
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error)
	MaxRound(ctx context.Context, tournamentID int) (int, error)
}

type postgresFixtureRepository struct {
	db *sql.DB
}

func NewPostgresFixtureRepository(db *sql.DB) FixtureRepository {
	return &postgresFixtureRepository{db: db}
}

const fixtureColumns = `id, tournament_id, home_team_id, away_team_id, match_date, venue,
	pool, round, round_name, status, home_score, away_score,
	home_score_et, away_score_et, home_penalty, away_penalty,
	winner_team_id, created_at`

func (r *postgresFixtureRepository) scan(row interface{ Scan(...interface{}) error }) (*models.Fixture, error) {
	f := &models.Fixture{}
	err := row.Scan(
		&f.ID, &f.TournamentID, &f.HomeTeamID, &f.AwayTeamID, &f.MatchDate, &f.Venue,
		&f.Pool, &f.Round, &f.RoundName, &f.Status, &f.HomeScore, &f.AwayScore,
		&f.HomeScoreET, &f.AwayScoreET, &f.HomePenalty, &f.AwayPenalty,
		&f.WinnerTeamID, &f.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFixtureNotFound
		}
		return nil, err
	}
	return f, nil
}

func (r *postgresFixtureRepository) Create(ctx context.Context, exec SQLExecutor, f *models.Fixture) error {
	executor := SQLExecutor(r.db)
	if exec != nil {
		executor = exec
	}

	query := `
		INSERT INTO fixtures
			(tournament_id, home_team_id, away_team_id, match_date, venue,
			 pool, round, round_name, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		f.TournamentID, f.HomeTeamID, f.AwayTeamID, f.MatchDate, f.Venue,
		f.Pool, f.Round, f.RoundName, f.Status,
	).Scan(&f.ID, &f.CreatedAt)

	return r.handleError(err)
}

func (r *postgresFixtureRepository) GetByID(ctx context.Context, id int) (*models.Fixture, error) {
	query := `SELECT ` + fixtureColumns + ` FROM fixtures WHERE id = $1`
	f, err := r.scan(r.db.QueryRowContext(ctx, query, id))
	if err != nil && !errors.Is(err, ErrFixtureNotFound) {
		return nil, fmt.Errorf("failed to scan fixture %d: %w", id, err)
	}
	return f, err
}

func (r *postgresFixtureRepository) ListByTournament(ctx context.Context, tournamentID int, round *int, status *models.FixtureStatus) ([]*models.Fixture, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + fixtureColumns + ` FROM fixtures WHERE tournament_id = $1`)

	args := []interface{}{tournamentID}
	if round != nil {
		args = append(args, *round)
		queryBuilder.WriteString(" AND round = $" + strconv.Itoa(len(args)))
	}
	if status != nil {
		args = append(args, *status)
		queryBuilder.WriteString(" AND status = $" + strconv.Itoa(len(args)))
	}
	queryBuilder.WriteString(" ORDER BY match_date ASC, id ASC")

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query fixtures for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	matches := make([]*models.Fixture, 0)
	for rows.Next() {
		f, scanErr := r.scan(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		matches = append(matches, f)
	}
	return matches, rows.Err()
}

func (r *postgresFixtureRepository) UpdateResult(ctx context.Context, exec SQLExecutor, f *models.Fixture) error {
	executor := SQLExecutor(r.db)
	if exec != nil {
		executor = exec
	}

	query := `
		UPDATE fixtures SET
			status = $1, home_score = $2, away_score = $3,
			home_score_et = $4, away_score_et = $5,
			home_penalty = $6, away_penalty = $7, winner_team_id = $8
		WHERE id = $9`

	result, err := executor.ExecContext(ctx, query,
		f.Status, f.HomeScore, f.AwayScore,
		f.HomeScoreET, f.AwayScoreET,
		f.HomePenalty, f.AwayPenalty, f.WinnerTeamID,
		f.ID,
	)
	if err != nil {
		return r.handleError(err)
	}
	return checkAffectedRows(result, ErrFixtureNotFound)
}

func (r *postgresFixtureRepository) UpdateStatus(ctx context.Context, id int, status models.FixtureStatus) error {
	result, err := r.db.ExecContext(ctx, `UPDATE fixtures SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrFixtureNotFound)
}

// DeleteByTournament clears all fixtures of a tournament and reports how
// many were removed. Regeneration calls this inside the same transaction
// that inserts the replacement set.
func (r *postgresFixtureRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error) {
	executor := SQLExecutor(r.db)
	if exec != nil {
		executor = exec
	}
	result, err := executor.ExecContext(ctx, `DELETE FROM fixtures WHERE tournament_id = $1`, tournamentID)
	if err != nil {
		return 0, err
	}
	affected, err := result.RowsAffected()
	return int(affected), err
}

func (r *postgresFixtureRepository) MaxRound(ctx context.Context, tournamentID int) (int, error) {
	var round sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		`SELECT MAX(round) FROM fixtures WHERE tournament_id = $1`, tournamentID,
	).Scan(&round)
	if err != nil {
		return 0, err
	}
	if !round.Valid {
		return 0, nil
	}
	return int(round.Int64), nil
}

func (r *postgresFixtureRepository) handleError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "fixtures_tournament_id_fkey":
			return ErrFixtureTournamentInvalid
		case "fixtures_home_team_id_fkey", "fixtures_away_team_id_fkey", "fixtures_winner_team_id_fkey":
			return ErrFixtureTeamInvalid
		case "fixtures_tournament_pairing_date_key":
			return ErrFixtureDuplicate
		}
	}
	return err
}
