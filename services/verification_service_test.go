package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/safaconnect/tournament-engine/models"
)

func TestStatusForConfidence(t *testing.T) {
	tests := []struct {
		confidence float64
		want       models.VerificationStatus
	}{
		{0.0, models.VerificationFailed},
		{0.3, models.VerificationFailed},
		{0.5, models.VerificationFailed}, // boundary stays in the lower band
		{0.51, models.VerificationManualReview},
		{0.69, models.VerificationManualReview},
		{0.7, models.VerificationManualReview}, // boundary stays in the lower band
		{0.71, models.VerificationVerified},
		{1.0, models.VerificationVerified},
	}

	for _, tc := range tests {
		got := StatusForConfidence(tc.confidence, DefaultAutoThreshold, DefaultReviewThreshold)
		if got != tc.want {
			t.Errorf("StatusForConfidence(%v) = %s, want %s", tc.confidence, got, tc.want)
		}
	}
}

func TestStatusForConfidenceCustomThresholds(t *testing.T) {
	if got := StatusForConfidence(0.85, 0.9, 0.6); got != models.VerificationManualReview {
		t.Errorf("0.85 with auto 0.9 = %s, want manual review", got)
	}
	if got := StatusForConfidence(0.95, 0.9, 0.6); got != models.VerificationVerified {
		t.Errorf("0.95 with auto 0.9 = %s, want verified", got)
	}
	if got := StatusForConfidence(0.6, 0.9, 0.6); got != models.VerificationFailed {
		t.Errorf("0.6 with review 0.6 = %s, want failed", got)
	}
}

func TestVerificationConfigDefaults(t *testing.T) {
	cfg := VerificationConfig{}.withDefaults()
	if cfg.AutoThreshold != DefaultAutoThreshold {
		t.Errorf("auto threshold = %v, want %v", cfg.AutoThreshold, DefaultAutoThreshold)
	}
	if cfg.ReviewThreshold != DefaultReviewThreshold {
		t.Errorf("review threshold = %v, want %v", cfg.ReviewThreshold, DefaultReviewThreshold)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", cfg.Timeout)
	}

	custom := VerificationConfig{AutoThreshold: 0.9, ReviewThreshold: 0.4, Timeout: time.Minute}.withDefaults()
	if custom.AutoThreshold != 0.9 || custom.ReviewThreshold != 0.4 || custom.Timeout != time.Minute {
		t.Errorf("explicit values overridden: %+v", custom)
	}
}

func TestManualDecisionRejectsInvalidDecision(t *testing.T) {
	svc := NewVerificationService(nil, &fakeRegistrationRepo{}, nil, nil, nil, VerificationConfig{}, nil, nil, quietLogger())

	for _, decision := range []models.VerificationStatus{
		models.VerificationPending, models.VerificationManualReview, models.VerificationFailed,
	} {
		_, err := svc.ManualDecision(context.Background(), 1, 7, decision, nil)
		if !errors.Is(err, ErrManualDecisionInvalid) {
			t.Errorf("decision %s: error = %v, want %v", decision, err, ErrManualDecisionInvalid)
		}
	}
}

// Terminal decisions stay put: once an operator has verified or rejected a
// registration, a second decision must not overwrite the first.
func TestManualDecisionRefusesTerminalStates(t *testing.T) {
	for _, current := range []models.VerificationStatus{
		models.VerificationVerified, models.VerificationRejected,
	} {
		repo := &fakeRegistrationRepo{byID: &models.Registration{ID: 1, TournamentID: 1, Status: current}}
		svc := NewVerificationService(nil, repo, nil, nil, nil, VerificationConfig{}, nil, nil, quietLogger())

		_, err := svc.ManualDecision(context.Background(), 1, 7, models.VerificationRejected, nil)
		if !errors.Is(err, ErrVerificationNotPending) {
			t.Errorf("from %s: error = %v, want %v", current, err, ErrVerificationNotPending)
		}
	}
}
