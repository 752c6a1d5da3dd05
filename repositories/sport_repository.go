package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/safaconnect/tournament-engine/models"
)

var (
	ErrSportNotFound     = errors.New("sport rule set not found")
	ErrSportCodeConflict = errors.New("sport code already exists")
)

type SportRepository interface {
	Create(ctx context.Context, sport *models.SportRuleSet) error
	GetByCode(ctx context.Context, code string) (*models.SportRuleSet, error)
	List(ctx context.Context) ([]*models.SportRuleSet, error)
}

type postgresSportRepository struct {
	db *sql.DB
}

func NewPostgresSportRepository(db *sql.DB) SportRepository {
	return &postgresSportRepository{db: db}
}

const sportColumns = `code, name, players_per_team, match_duration_minutes,
	extra_time_allowed, penalties_allowed, win_points, draw_points, loss_points`

func (r *postgresSportRepository) Create(ctx context.Context, sport *models.SportRuleSet) error {
	query := `
		INSERT INTO sport_rule_sets (` + sportColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.ExecContext(ctx, query,
		sport.Code, sport.Name, sport.PlayersPerTeam, sport.MatchDurationMinutes,
		sport.ExtraTimeAllowed, sport.PenaltiesAllowed,
		sport.WinPoints, sport.DrawPoints, sport.LossPoints,
	)
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		return ErrSportCodeConflict
	}
	return err
}

func (r *postgresSportRepository) GetByCode(ctx context.Context, code string) (*models.SportRuleSet, error) {
	query := `SELECT ` + sportColumns + ` FROM sport_rule_sets WHERE code = $1`

	sport := &models.SportRuleSet{}
	err := r.db.QueryRowContext(ctx, query, code).Scan(
		&sport.Code, &sport.Name, &sport.PlayersPerTeam, &sport.MatchDurationMinutes,
		&sport.ExtraTimeAllowed, &sport.PenaltiesAllowed,
		&sport.WinPoints, &sport.DrawPoints, &sport.LossPoints,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSportNotFound
		}
		return nil, fmt.Errorf("failed to scan sport %s: %w", code, err)
	}
	return sport, nil
}

func (r *postgresSportRepository) List(ctx context.Context) ([]*models.SportRuleSet, error) {
	query := `SELECT ` + sportColumns + ` FROM sport_rule_sets ORDER BY code ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sports := make([]*models.SportRuleSet, 0)
	for rows.Next() {
		sport := &models.SportRuleSet{}
		if err := rows.Scan(
			&sport.Code, &sport.Name, &sport.PlayersPerTeam, &sport.MatchDurationMinutes,
			&sport.ExtraTimeAllowed, &sport.PenaltiesAllowed,
			&sport.WinPoints, &sport.DrawPoints, &sport.LossPoints,
		); err != nil {
			return nil, err
		}
		sports = append(sports, sport)
	}
	return sports, rows.Err()
}
