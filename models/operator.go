package models

import "time"

type OperatorRole string

const (
	RoleAdmin    OperatorRole = "admin"
	RoleOperator OperatorRole = "operator"
)

// Operator is a federation staff account. Operators trigger fixture
// regeneration and make manual verification decisions.
type Operator struct {
	ID           int          `json:"id" db:"id"`
	Email        string       `json:"email" db:"email"`
	PasswordHash string       `json:"-" db:"password_hash"`
	FirstName    string       `json:"first_name" db:"first_name"`
	LastName     string       `json:"last_name" db:"last_name"`
	Role         OperatorRole `json:"role" db:"role"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
}
