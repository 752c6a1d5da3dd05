package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/safaconnect/tournament-engine/models"
	"github.com/safaconnect/tournament-engine/repositories"
	"github.com/safaconnect/tournament-engine/storage"
)

type fakeRegistrationRepo struct {
	repositories.RegistrationRepository

	exists  bool
	byID    *models.Registration
	created []*models.Registration
}

func (f *fakeRegistrationRepo) ExistsByTournamentAndIDNumber(ctx context.Context, tournamentID int, idNumber string) (bool, error) {
	return f.exists, nil
}

func (f *fakeRegistrationRepo) Create(ctx context.Context, registration *models.Registration) error {
	registration.ID = len(f.created) + 1
	f.created = append(f.created, registration)
	return nil
}

func (f *fakeRegistrationRepo) GetByID(ctx context.Context, id int) (*models.Registration, error) {
	if f.byID == nil {
		return nil, repositories.ErrRegistrationNotFound
	}
	return f.byID, nil
}

type fakeTournamentRepo struct {
	repositories.TournamentRepository

	tournament *models.Tournament
}

func (f *fakeTournamentRepo) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	if f.tournament == nil {
		return nil, repositories.ErrTournamentNotFound
	}
	return f.tournament, nil
}

// countingUploader records traffic so tests can assert nothing was stored.
type countingUploader struct {
	uploads int
	deletes int
}

func (u *countingUploader) Upload(ctx context.Context, key, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	u.uploads++
	return &storage.UploadResult{Key: key}, nil
}

func (u *countingUploader) Download(ctx context.Context, key string) ([]byte, error) {
	return nil, errors.New("not available")
}

func (u *countingUploader) Delete(ctx context.Context, key string) error {
	u.deletes++
	return nil
}

func (u *countingUploader) GetPublicURL(key string) string { return "" }

type recordingQueue struct {
	ids []int
}

func (q *recordingQueue) Enqueue(registrationID int) bool {
	q.ids = append(q.ids, registrationID)
	return true
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openTournament() *models.Tournament {
	return &models.Tournament{ID: 1, Status: models.StatusRegistration}
}

func submission() SubmitRegistrationInput {
	return SubmitRegistrationInput{
		TournamentID:  1,
		IDNumber:      "9001014800086",
		FullName:      "Thandi Mokoena",
		LivePhoto:     []byte("jpeg bytes"),
		LivePhotoType: "image/jpeg",
	}
}

func TestSubmitRegistrationRejectsDuplicateBeforeUpload(t *testing.T) {
	regRepo := &fakeRegistrationRepo{exists: true}
	uploader := &countingUploader{}
	queue := &recordingQueue{}
	svc := NewRegistrationService(regRepo, &fakeTournamentRepo{tournament: openTournament()}, uploader, queue, quietLogger())

	_, err := svc.SubmitRegistration(context.Background(), submission())
	if !errors.Is(err, ErrDuplicateRegistration) {
		t.Fatalf("error = %v, want %v", err, ErrDuplicateRegistration)
	}
	if uploader.uploads != 0 {
		t.Errorf("%d photos uploaded for a rejected duplicate, want 0", uploader.uploads)
	}
	if len(regRepo.created) != 0 {
		t.Errorf("%d registrations created for a rejected duplicate, want 0", len(regRepo.created))
	}
	if len(queue.ids) != 0 {
		t.Errorf("duplicate registration reached the verification queue: %v", queue.ids)
	}
}

func TestSubmitRegistrationUploadsAndEnqueues(t *testing.T) {
	regRepo := &fakeRegistrationRepo{}
	uploader := &countingUploader{}
	queue := &recordingQueue{}
	svc := NewRegistrationService(regRepo, &fakeTournamentRepo{tournament: openTournament()}, uploader, queue, quietLogger())

	registration, err := svc.SubmitRegistration(context.Background(), submission())
	if err != nil {
		t.Fatalf("SubmitRegistration: %v", err)
	}
	if registration.Status != models.VerificationPending {
		t.Errorf("status = %s, want pending", registration.Status)
	}
	if uploader.uploads != 1 {
		t.Errorf("%d uploads, want 1 (live photo only)", uploader.uploads)
	}
	if len(queue.ids) != 1 || queue.ids[0] != registration.ID {
		t.Errorf("queued %v, want [%d]", queue.ids, registration.ID)
	}
}

func TestSubmitRegistrationClosedTournament(t *testing.T) {
	active := openTournament()
	active.Status = models.StatusActive
	uploader := &countingUploader{}
	svc := NewRegistrationService(&fakeRegistrationRepo{}, &fakeTournamentRepo{tournament: active}, uploader, &recordingQueue{}, quietLogger())

	_, err := svc.SubmitRegistration(context.Background(), submission())
	if !errors.Is(err, ErrRegistrationClosed) {
		t.Fatalf("error = %v, want %v", err, ErrRegistrationClosed)
	}
	if uploader.uploads != 0 {
		t.Errorf("%d photos uploaded after registration closed, want 0", uploader.uploads)
	}
}

func TestSubmitRegistrationValidation(t *testing.T) {
	svc := NewRegistrationService(&fakeRegistrationRepo{}, &fakeTournamentRepo{tournament: openTournament()}, &countingUploader{}, &recordingQueue{}, quietLogger())

	blank := submission()
	blank.IDNumber = "   "
	if _, err := svc.SubmitRegistration(context.Background(), blank); !errors.Is(err, ErrValidationFailed) {
		t.Errorf("blank id number: error = %v, want %v", err, ErrValidationFailed)
	}

	noPhoto := submission()
	noPhoto.LivePhoto = nil
	if _, err := svc.SubmitRegistration(context.Background(), noPhoto); !errors.Is(err, ErrLivePhotoRequired) {
		t.Errorf("missing live photo: error = %v, want %v", err, ErrLivePhotoRequired)
	}
}
