package models

import "time"

// VerificationStatus is the current disposition of a registration's
// identity check.
type VerificationStatus string

const (
	VerificationPending      VerificationStatus = "pending"
	VerificationVerified     VerificationStatus = "verified"
	VerificationFailed       VerificationStatus = "failed"
	VerificationManualReview VerificationStatus = "manual_review"
	VerificationRejected     VerificationStatus = "rejected"
)

// Registration is one person entering one tournament. The pair
// (tournament_id, id_number) is unique, which blocks duplicate entries
// before any photo is processed. After submission only the verification
// workflow mutates the row; the mirrored status/confidence/notes fields
// always reflect the latest VerificationLog entry.
type Registration struct {
	ID           int     `json:"id" db:"id"`
	TournamentID int     `json:"tournament_id" db:"tournament_id"`
	TeamID       *int    `json:"team_id,omitempty" db:"team_id"`
	IDNumber     string  `json:"id_number" db:"id_number"`
	FullName     string  `json:"full_name" db:"full_name"`
	LivePhotoKey string  `json:"-" db:"live_photo_key"`
	LivePhotoURL *string `json:"live_photo_url,omitempty" db:"-"`

	ReferencePhotoKey *string `json:"-" db:"reference_photo_key"`
	ReferencePhotoURL *string `json:"reference_photo_url,omitempty" db:"-"`

	Confidence   *float64           `json:"confidence,omitempty" db:"confidence"`
	Status       VerificationStatus `json:"status" db:"status"`
	Notes        *string            `json:"notes,omitempty" db:"notes"`
	VerifiedAt   *time.Time         `json:"verified_at,omitempty" db:"verified_at"`
	VerifiedByID *int               `json:"verified_by_id,omitempty" db:"verified_by_id"`
	CreatedAt    time.Time          `json:"created_at" db:"created_at"`
}
