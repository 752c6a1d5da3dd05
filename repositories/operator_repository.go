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
	ErrOperatorNotFound      = errors.New("operator not found")
	ErrOperatorEmailConflict = errors.New("operator email already in use")
)

type OperatorRepository interface {
	Create(ctx context.Context, operator *models.Operator) error
	GetByID(ctx context.Context, id int) (*models.Operator, error)
	GetByEmail(ctx context.Context, email string) (*models.Operator, error)
}

type postgresOperatorRepository struct {
	db *sql.DB
}

func NewPostgresOperatorRepository(db *sql.DB) OperatorRepository {
	return &postgresOperatorRepository{db: db}
}

func (r *postgresOperatorRepository) Create(ctx context.Context, op *models.Operator) error {
	query := `
		INSERT INTO operators (email, password_hash, first_name, last_name, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		op.Email, op.PasswordHash, op.FirstName, op.LastName, op.Role,
	).Scan(&op.ID, &op.CreatedAt)

	if pqErr, ok := err.(*pq.Error); ok && pqErr.Constraint == "operators_email_key" {
		return ErrOperatorEmailConflict
	}
	return err
}

func (r *postgresOperatorRepository) get(ctx context.Context, where string, arg interface{}) (*models.Operator, error) {
	query := `
		SELECT id, email, password_hash, first_name, last_name, role, created_at
		FROM operators WHERE ` + where

	op := &models.Operator{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&op.ID, &op.Email, &op.PasswordHash, &op.FirstName, &op.LastName, &op.Role, &op.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOperatorNotFound
		}
		return nil, fmt.Errorf("failed to scan operator: %w", err)
	}
	return op, nil
}

func (r *postgresOperatorRepository) GetByID(ctx context.Context, id int) (*models.Operator, error) {
	return r.get(ctx, "id = $1", id)
}

func (r *postgresOperatorRepository) GetByEmail(ctx context.Context, email string) (*models.Operator, error) {
	return r.get(ctx, "email = $1", email)
}
