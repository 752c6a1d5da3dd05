package models

import "time"

// VerificationLog is the append-only audit trail of verification attempts.
// Rows are never updated or deleted; ordering by created_at (and attempt
// number) reconstructs the full history of a registration. The log is the
// source of truth, the Registration row mirrors the latest entry.
type VerificationLog struct {
	ID             int                `json:"id" db:"id"`
	RegistrationID int                `json:"registration_id" db:"registration_id"`
	Attempt        int                `json:"attempt" db:"attempt"`
	Confidence     *float64           `json:"confidence,omitempty" db:"confidence"`
	Status         VerificationStatus `json:"status" db:"status"`
	Notes          *string            `json:"notes,omitempty" db:"notes"`
	ProcessedByID  *int               `json:"processed_by_id,omitempty" db:"processed_by_id"`
	CreatedAt      time.Time          `json:"created_at" db:"created_at"`
}
