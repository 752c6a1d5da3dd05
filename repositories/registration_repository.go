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
	ErrRegistrationNotFound  = errors.New("registration not found")
	ErrRegistrationDuplicate = errors.New("registration already exists for this id number")
)

type RegistrationRepository interface {
	Create(ctx context.Context, registration *models.Registration) error
	GetByID(ctx context.Context, id int) (*models.Registration, error)
	ExistsByTournamentAndIDNumber(ctx context.Context, tournamentID int, idNumber string) (bool, error)
	ListByTournament(ctx context.Context, tournamentID int, status *models.VerificationStatus) ([]*models.Registration, error)
	UpdateReferencePhotoKey(ctx context.Context, id int, key string) error
	// MirrorVerificationState copies the latest log payload onto the
	// registration row, inside the caller's transaction.
	MirrorVerificationState(ctx context.Context, exec SQLExecutor, registration *models.Registration) error
}

type postgresRegistrationRepository struct {
	db *sql.DB
}

func NewPostgresRegistrationRepository(db *sql.DB) RegistrationRepository {
	return &postgresRegistrationRepository{db: db}
}

const registrationColumns = `id, tournament_id, team_id, id_number, full_name,
	live_photo_key, reference_photo_key, confidence, status, notes,
	verified_at, verified_by_id, created_at`

func (r *postgresRegistrationRepository) scan(row interface{ Scan(...interface{}) error }) (*models.Registration, error) {
	reg := &models.Registration{}
	err := row.Scan(
		&reg.ID, &reg.TournamentID, &reg.TeamID, &reg.IDNumber, &reg.FullName,
		&reg.LivePhotoKey, &reg.ReferencePhotoKey, &reg.Confidence, &reg.Status, &reg.Notes,
		&reg.VerifiedAt, &reg.VerifiedByID, &reg.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRegistrationNotFound
		}
		return nil, err
	}
	return reg, nil
}

func (r *postgresRegistrationRepository) Create(ctx context.Context, reg *models.Registration) error {
	query := `
		INSERT INTO registrations
			(tournament_id, team_id, id_number, full_name,
			 live_photo_key, reference_photo_key, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		reg.TournamentID, reg.TeamID, reg.IDNumber, reg.FullName,
		reg.LivePhotoKey, reg.ReferencePhotoKey, reg.Status,
	).Scan(&reg.ID, &reg.CreatedAt)

	if pqErr, ok := err.(*pq.Error); ok && pqErr.Constraint == "registrations_tournament_id_id_number_key" {
		return ErrRegistrationDuplicate
	}
	return err
}

func (r *postgresRegistrationRepository) GetByID(ctx context.Context, id int) (*models.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE id = $1`
	reg, err := r.scan(r.db.QueryRowContext(ctx, query, id))
	if err != nil && !errors.Is(err, ErrRegistrationNotFound) {
		return nil, fmt.Errorf("failed to scan registration %d: %w", id, err)
	}
	return reg, err
}

func (r *postgresRegistrationRepository) ExistsByTournamentAndIDNumber(ctx context.Context, tournamentID int, idNumber string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM registrations WHERE tournament_id = $1 AND id_number = $2)`,
		tournamentID, idNumber,
	).Scan(&exists)
	return exists, err
}

func (r *postgresRegistrationRepository) ListByTournament(ctx context.Context, tournamentID int, status *models.VerificationStatus) ([]*models.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE tournament_id = $1`
	args := []interface{}{tournamentID}
	if status != nil {
		query += ` AND status = $2`
		args = append(args, *status)
	}
	query += ` ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	registrations := make([]*models.Registration, 0)
	for rows.Next() {
		reg, scanErr := r.scan(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		registrations = append(registrations, reg)
	}
	return registrations, rows.Err()
}

func (r *postgresRegistrationRepository) UpdateReferencePhotoKey(ctx context.Context, id int, key string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE registrations SET reference_photo_key = $1 WHERE id = $2`, key, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrRegistrationNotFound)
}

func (r *postgresRegistrationRepository) MirrorVerificationState(ctx context.Context, exec SQLExecutor, reg *models.Registration) error {
	executor := SQLExecutor(r.db)
	if exec != nil {
		executor = exec
	}

	query := `
		UPDATE registrations SET
			confidence = $1, status = $2, notes = $3,
			verified_at = $4, verified_by_id = $5
		WHERE id = $6`

	result, err := executor.ExecContext(ctx, query,
		reg.Confidence, reg.Status, reg.Notes,
		reg.VerifiedAt, reg.VerifiedByID, reg.ID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrRegistrationNotFound)
}
