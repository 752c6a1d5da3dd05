package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/safaconnect/tournament-engine/models"
	"github.com/safaconnect/tournament-engine/repositories"
	"github.com/safaconnect/tournament-engine/storage"
	"github.com/safaconnect/tournament-engine/utils"
)

// VerificationEnqueuer hands registrations to the background verification
// workers. Enqueue reports whether the job was accepted.
type VerificationEnqueuer interface {
	Enqueue(registrationID int) bool
}

// SubmitRegistrationInput is one person's entry into a tournament. The
// reference photo is optional at submission; without it the automatic
// check cannot pass and the attempt is logged as failed.
type SubmitRegistrationInput struct {
	TournamentID       int
	TeamID             *int
	IDNumber           string
	FullName           string
	LivePhoto          []byte
	LivePhotoType      string
	ReferencePhoto     []byte
	ReferencePhotoType string
}

type RegistrationService interface {
	SubmitRegistration(ctx context.Context, input SubmitRegistrationInput) (*models.Registration, error)
	GetRegistration(ctx context.Context, id int) (*models.Registration, error)
	ListRegistrations(ctx context.Context, tournamentID int, status *models.VerificationStatus) ([]*models.Registration, error)
	UploadReferencePhoto(ctx context.Context, id int, contentType string, photo io.Reader) (*models.Registration, error)
}

type registrationService struct {
	registrationRepo repositories.RegistrationRepository
	tournamentRepo   repositories.TournamentRepository
	uploader         storage.FileUploader
	queue            VerificationEnqueuer
	logger           *slog.Logger
}

func NewRegistrationService(
	registrationRepo repositories.RegistrationRepository,
	tournamentRepo repositories.TournamentRepository,
	uploader storage.FileUploader,
	queue VerificationEnqueuer,
	logger *slog.Logger,
) RegistrationService {
	return &registrationService{
		registrationRepo: registrationRepo,
		tournamentRepo:   tournamentRepo,
		uploader:         uploader,
		queue:            queue,
		logger:           logger,
	}
}

func (s *registrationService) SubmitRegistration(ctx context.Context, input SubmitRegistrationInput) (*models.Registration, error) {
	input.IDNumber = strings.TrimSpace(input.IDNumber)
	input.FullName = strings.TrimSpace(input.FullName)
	if input.IDNumber == "" || input.FullName == "" {
		return nil, fmt.Errorf("%w: id number and full name are required", ErrValidationFailed)
	}
	if len(input.LivePhoto) == 0 {
		return nil, ErrLivePhotoRequired
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, input.TournamentID)
	if err != nil {
		return nil, err
	}
	if tournament.Status != models.StatusRegistration {
		return nil, ErrRegistrationClosed
	}

	// Duplicate detection runs before any photo leaves the request so a
	// rejected entry never uploads anything.
	exists, err := s.registrationRepo.ExistsByTournamentAndIDNumber(ctx, input.TournamentID, input.IDNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to check for duplicate registration: %w", err)
	}
	if exists {
		return nil, ErrDuplicateRegistration
	}

	liveKey, err := s.uploadPhoto(ctx, "registrations/live", input.LivePhotoType, input.LivePhoto)
	if err != nil {
		return nil, err
	}

	var referenceKey *string
	if len(input.ReferencePhoto) > 0 {
		key, err := s.uploadPhoto(ctx, "registrations/reference", input.ReferencePhotoType, input.ReferencePhoto)
		if err != nil {
			_ = s.uploader.Delete(ctx, liveKey)
			return nil, err
		}
		referenceKey = &key
	}

	registration := &models.Registration{
		TournamentID:      input.TournamentID,
		TeamID:            input.TeamID,
		IDNumber:          input.IDNumber,
		FullName:          input.FullName,
		LivePhotoKey:      liveKey,
		ReferencePhotoKey: referenceKey,
		Status:            models.VerificationPending,
	}

	if err := s.registrationRepo.Create(ctx, registration); err != nil {
		_ = s.uploader.Delete(ctx, liveKey)
		if referenceKey != nil {
			_ = s.uploader.Delete(ctx, *referenceKey)
		}
		return nil, err
	}

	if !s.queue.Enqueue(registration.ID) {
		// The registration stays pending; a later sweep or manual
		// re-trigger picks it up.
		s.logger.Warn("verification queue full, registration left pending",
			slog.Int("registration_id", registration.ID))
	}

	s.populatePhotoURLs(registration)
	return registration, nil
}

func (s *registrationService) GetRegistration(ctx context.Context, id int) (*models.Registration, error) {
	registration, err := s.registrationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.populatePhotoURLs(registration)
	return registration, nil
}

func (s *registrationService) ListRegistrations(ctx context.Context, tournamentID int, status *models.VerificationStatus) ([]*models.Registration, error) {
	registrations, err := s.registrationRepo.ListByTournament(ctx, tournamentID, status)
	if err != nil {
		return nil, err
	}
	for _, registration := range registrations {
		s.populatePhotoURLs(registration)
	}
	return registrations, nil
}

// UploadReferencePhoto attaches or replaces the stored reference photo and
// queues a fresh verification attempt against it.
func (s *registrationService) UploadReferencePhoto(ctx context.Context, id int, contentType string, photo io.Reader) (*models.Registration, error) {
	registration, err := s.registrationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(photo)
	if err != nil {
		return nil, fmt.Errorf("failed to read reference photo: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: reference photo is empty", ErrValidationFailed)
	}

	key, err := s.uploadPhoto(ctx, "registrations/reference", contentType, data)
	if err != nil {
		return nil, err
	}

	oldKey := registration.ReferencePhotoKey
	if err := s.registrationRepo.UpdateReferencePhotoKey(ctx, id, key); err != nil {
		_ = s.uploader.Delete(ctx, key)
		return nil, err
	}
	if oldKey != nil {
		_ = s.uploader.Delete(ctx, *oldKey)
	}
	registration.ReferencePhotoKey = &key

	if !s.queue.Enqueue(registration.ID) {
		s.logger.Warn("verification queue full after reference photo update",
			slog.Int("registration_id", registration.ID))
	}

	s.populatePhotoURLs(registration)
	return registration, nil
}

func (s *registrationService) uploadPhoto(ctx context.Context, prefix, contentType string, data []byte) (string, error) {
	ext, err := utils.ExtensionFromContentType(contentType)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	key := storage.PhotoKey(prefix, ext)
	result, err := s.uploader.Upload(ctx, key, contentType, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to upload photo: %w", err)
	}
	return result.Key, nil
}

func (s *registrationService) populatePhotoURLs(registration *models.Registration) {
	if s.uploader == nil {
		return
	}
	if url := s.uploader.GetPublicURL(registration.LivePhotoKey); url != "" {
		registration.LivePhotoURL = &url
	}
	if registration.ReferencePhotoKey != nil {
		if url := s.uploader.GetPublicURL(*registration.ReferencePhotoKey); url != "" {
			registration.ReferencePhotoURL = &url
		}
	}
}
