package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/safaconnect/tournament-engine/models"
)

// VerificationLogRepository is append-only by design: there is no update
// or delete. History reads back in insertion order.
type VerificationLogRepository interface {
	Append(ctx context.Context, exec SQLExecutor, entry *models.VerificationLog) error
	ListByRegistration(ctx context.Context, registrationID int) ([]*models.VerificationLog, error)
	NextAttempt(ctx context.Context, exec SQLExecutor, registrationID int) (int, error)
}

type postgresVerificationLogRepository struct {
	db *sql.DB
}

func NewPostgresVerificationLogRepository(db *sql.DB) VerificationLogRepository {
	return &postgresVerificationLogRepository{db: db}
}

func (r *postgresVerificationLogRepository) Append(ctx context.Context, exec SQLExecutor, entry *models.VerificationLog) error {
	executor := SQLExecutor(r.db)
	if exec != nil {
		executor = exec
	}

	query := `
		INSERT INTO verification_logs
			(registration_id, attempt, confidence, status, notes, processed_by_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		entry.RegistrationID, entry.Attempt, entry.Confidence,
		entry.Status, entry.Notes, entry.ProcessedByID,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append verification log for registration %d: %w", entry.RegistrationID, err)
	}
	return nil
}

func (r *postgresVerificationLogRepository) ListByRegistration(ctx context.Context, registrationID int) ([]*models.VerificationLog, error) {
	query := `
		SELECT id, registration_id, attempt, confidence, status, notes, processed_by_id, created_at
		FROM verification_logs
		WHERE registration_id = $1
		ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, registrationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*models.VerificationLog, 0)
	for rows.Next() {
		entry := &models.VerificationLog{}
		if scanErr := rows.Scan(
			&entry.ID, &entry.RegistrationID, &entry.Attempt, &entry.Confidence,
			&entry.Status, &entry.Notes, &entry.ProcessedByID, &entry.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (r *postgresVerificationLogRepository) NextAttempt(ctx context.Context, exec SQLExecutor, registrationID int) (int, error) {
	executor := SQLExecutor(r.db)
	if exec != nil {
		executor = exec
	}

	var max sql.NullInt64
	err := executor.QueryRowContext(ctx,
		`SELECT MAX(attempt) FROM verification_logs WHERE registration_id = $1`, registrationID,
	).Scan(&max)
	if err != nil {
		return 0, err
	}
	if !max.Valid {
		return 1, nil
	}
	return int(max.Int64) + 1, nil
}
