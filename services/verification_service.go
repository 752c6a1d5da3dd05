package services

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/safaconnect/tournament-engine/faceverify"
	"github.com/safaconnect/tournament-engine/live"
	"github.com/safaconnect/tournament-engine/models"
	"github.com/safaconnect/tournament-engine/repositories"
	"github.com/safaconnect/tournament-engine/storage"
)

// Confidence cut points for the automatic verification decision. Above the
// auto threshold the registration verifies without operator involvement;
// between the two it queues for manual review; at or below the review
// threshold it fails outright.
const (
	DefaultAutoThreshold   = 0.7
	DefaultReviewThreshold = 0.5
)

// StatusForConfidence maps a comparison confidence onto a verification
// status. Both boundaries are exclusive upward: a confidence exactly at a
// threshold falls into the lower band.
func StatusForConfidence(confidence, autoThreshold, reviewThreshold float64) models.VerificationStatus {
	switch {
	case confidence > autoThreshold:
		return models.VerificationVerified
	case confidence > reviewThreshold:
		return models.VerificationManualReview
	default:
		return models.VerificationFailed
	}
}

// VerificationConfig tunes the automatic decision and processing limits.
type VerificationConfig struct {
	AutoThreshold   float64
	ReviewThreshold float64
	Timeout         time.Duration
}

func (c VerificationConfig) withDefaults() VerificationConfig {
	if c.AutoThreshold <= 0 {
		c.AutoThreshold = DefaultAutoThreshold
	}
	if c.ReviewThreshold <= 0 {
		c.ReviewThreshold = DefaultReviewThreshold
	}
	if c.Timeout <= 0 {
		c.Timeout = 5 * time.Second
	}
	return c
}

// TeamPhotoEnqueuer schedules a rebuild of a team's composite photo. The
// photojobs queue implements it; a nil enqueuer disables compositing.
type TeamPhotoEnqueuer interface {
	EnqueueTeam(teamID int) bool
}

type VerificationService interface {
	// ProcessRegistration runs the automatic facial comparison for one
	// registration and records the outcome. Safe to call repeatedly; each
	// call appends a new attempt.
	ProcessRegistration(ctx context.Context, registrationID int) (*models.Registration, error)

	// ManualDecision records an operator override: verified or rejected.
	ManualDecision(ctx context.Context, registrationID, operatorID int, decision models.VerificationStatus, notes *string) (*models.Registration, error)

	History(ctx context.Context, registrationID int) ([]*models.VerificationLog, error)
}

type verificationService struct {
	db               *sql.DB
	registrationRepo repositories.RegistrationRepository
	logRepo          repositories.VerificationLogRepository
	uploader         storage.FileUploader
	verifier         *faceverify.Verifier
	cfg              VerificationConfig
	hub              *live.Hub
	teamPhotos       TeamPhotoEnqueuer
	logger           *slog.Logger

	// Per-registration locks serialize concurrent attempts so the log's
	// attempt numbers stay strictly increasing.
	locks sync.Map
}

func NewVerificationService(
	db *sql.DB,
	registrationRepo repositories.RegistrationRepository,
	logRepo repositories.VerificationLogRepository,
	uploader storage.FileUploader,
	verifier *faceverify.Verifier,
	cfg VerificationConfig,
	hub *live.Hub,
	teamPhotos TeamPhotoEnqueuer,
	logger *slog.Logger,
) VerificationService {
	return &verificationService{
		db:               db,
		registrationRepo: registrationRepo,
		logRepo:          logRepo,
		uploader:         uploader,
		verifier:         verifier,
		cfg:              cfg.withDefaults(),
		hub:              hub,
		teamPhotos:       teamPhotos,
		logger:           logger,
	}
}

func (s *verificationService) lockRegistration(id int) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func (s *verificationService) ProcessRegistration(ctx context.Context, registrationID int) (*models.Registration, error) {
	mu := s.lockRegistration(registrationID)
	mu.Lock()
	defer mu.Unlock()

	registration, err := s.registrationRepo.GetByID(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	if registration.Status == models.VerificationVerified || registration.Status == models.VerificationRejected {
		// Terminal states are operator decisions; the automatic path
		// never overrides them.
		return registration, nil
	}

	status, confidence, note := s.compare(ctx, registration)

	if err := s.recordOutcome(ctx, registration, status, confidence, note, nil); err != nil {
		return nil, err
	}

	s.logger.Info("verification attempt processed",
		slog.Int("registration_id", registrationID),
		slog.String("status", string(status)))

	s.broadcast(registration)
	s.scheduleTeamPhoto(registration)
	return registration, nil
}

// compare downloads both photos and runs the facial comparison, translating
// the engine result into a workflow status.
func (s *verificationService) compare(ctx context.Context, registration *models.Registration) (models.VerificationStatus, *float64, *string) {
	if registration.ReferencePhotoKey == nil || *registration.ReferencePhotoKey == "" {
		note := "no reference photo on file"
		return models.VerificationFailed, nil, &note
	}

	var livePhoto, referencePhoto []byte
	g, downloadCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		livePhoto, err = s.uploader.Download(downloadCtx, registration.LivePhotoKey)
		if err != nil {
			return fmt.Errorf("could not fetch live photo: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		referencePhoto, err = s.uploader.Download(downloadCtx, *registration.ReferencePhotoKey)
		if err != nil {
			return fmt.Errorf("could not fetch reference photo: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		note := err.Error()
		return models.VerificationFailed, nil, &note
	}

	verifyCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	result := s.verifier.Verify(verifyCtx, livePhoto, referencePhoto)
	if result.Error != "" {
		return models.VerificationFailed, nil, &result.Error
	}

	confidence := result.Confidence
	status := StatusForConfidence(confidence, s.cfg.AutoThreshold, s.cfg.ReviewThreshold)
	return status, &confidence, nil
}

func (s *verificationService) ManualDecision(ctx context.Context, registrationID, operatorID int, decision models.VerificationStatus, notes *string) (*models.Registration, error) {
	if decision != models.VerificationVerified && decision != models.VerificationRejected {
		return nil, ErrManualDecisionInvalid
	}

	mu := s.lockRegistration(registrationID)
	mu.Lock()
	defer mu.Unlock()

	registration, err := s.registrationRepo.GetByID(ctx, registrationID)
	if err != nil {
		return nil, err
	}

	switch registration.Status {
	case models.VerificationPending, models.VerificationManualReview, models.VerificationFailed:
	default:
		return nil, ErrVerificationNotPending
	}

	if err := s.recordOutcome(ctx, registration, decision, registration.Confidence, notes, &operatorID); err != nil {
		return nil, err
	}

	s.logger.Info("manual verification decision recorded",
		slog.Int("registration_id", registrationID),
		slog.Int("operator_id", operatorID),
		slog.String("decision", string(decision)))

	s.broadcast(registration)
	s.scheduleTeamPhoto(registration)
	return registration, nil
}

// scheduleTeamPhoto queues a composite rebuild once a team member becomes
// verified. Best effort: a full queue just defers the rebuild to the next
// verified member.
func (s *verificationService) scheduleTeamPhoto(registration *models.Registration) {
	if s.teamPhotos == nil || registration.Status != models.VerificationVerified || registration.TeamID == nil {
		return
	}
	if !s.teamPhotos.EnqueueTeam(*registration.TeamID) {
		s.logger.Warn("team photo queue full, composite rebuild skipped",
			slog.Int("team_id", *registration.TeamID))
	}
}

func (s *verificationService) History(ctx context.Context, registrationID int) ([]*models.VerificationLog, error) {
	if _, err := s.registrationRepo.GetByID(ctx, registrationID); err != nil {
		return nil, err
	}
	return s.logRepo.ListByRegistration(ctx, registrationID)
}

// recordOutcome appends one log entry and mirrors it onto the registration
// row atomically. The log is the source of truth; the registration only
// ever reflects its latest entry.
func (s *verificationService) recordOutcome(
	ctx context.Context,
	registration *models.Registration,
	status models.VerificationStatus,
	confidence *float64,
	notes *string,
	operatorID *int,
) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	attempt, err := s.logRepo.NextAttempt(ctx, tx, registration.ID)
	if err != nil {
		return fmt.Errorf("failed to number verification attempt: %w", err)
	}

	entry := &models.VerificationLog{
		RegistrationID: registration.ID,
		Attempt:        attempt,
		Confidence:     confidence,
		Status:         status,
		Notes:          notes,
		ProcessedByID:  operatorID,
	}
	if err = s.logRepo.Append(ctx, tx, entry); err != nil {
		return err
	}

	registration.Status = status
	registration.Confidence = confidence
	registration.Notes = notes
	registration.VerifiedByID = operatorID
	if status == models.VerificationVerified {
		now := time.Now()
		registration.VerifiedAt = &now
	} else {
		registration.VerifiedAt = nil
	}

	if err = s.registrationRepo.MirrorVerificationState(ctx, tx, registration); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit verification outcome: %w", err)
	}
	return nil
}

func (s *verificationService) broadcast(registration *models.Registration) {
	if s.hub != nil {
		s.hub.BroadcastToRoom(strconv.Itoa(registration.TournamentID), live.EventRegistrationUpdated, registration)
	}
}
