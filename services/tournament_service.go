package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/safaconnect/tournament-engine/models"
	"github.com/safaconnect/tournament-engine/repositories"
	"github.com/safaconnect/tournament-engine/storage"
)

// validStatusTransitions is the tournament lifecycle: soon -> registration
// -> active -> completed, with cancellation possible from any non-terminal
// state.
var validStatusTransitions = map[models.TournamentStatus][]models.TournamentStatus{
	models.StatusSoon:         {models.StatusRegistration, models.StatusCanceled},
	models.StatusRegistration: {models.StatusActive, models.StatusCanceled},
	models.StatusActive:       {models.StatusCompleted, models.StatusCanceled},
	models.StatusCompleted:    {},
	models.StatusCanceled:     {},
}

type TournamentService interface {
	CreateTournament(ctx context.Context, tournament *models.Tournament) error
	GetTournamentByID(ctx context.Context, id int) (*models.Tournament, error)
	ListTournaments(ctx context.Context, filter repositories.ListTournamentsFilter) ([]*models.Tournament, error)
	UpdateTournament(ctx context.Context, id int, operatorID int, tournament *models.Tournament) error
	UpdateTournamentStatus(ctx context.Context, id int, status models.TournamentStatus) (*models.Tournament, error)
	DeleteTournament(ctx context.Context, id int) error
	RollForwardStatuses(ctx context.Context) (int, error)
}

type tournamentService struct {
	tournamentRepo repositories.TournamentRepository
	sportRepo      repositories.SportRepository
	uploader       storage.FileUploader
	logger         *slog.Logger
}

func NewTournamentService(
	tournamentRepo repositories.TournamentRepository,
	sportRepo repositories.SportRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		tournamentRepo: tournamentRepo,
		sportRepo:      sportRepo,
		uploader:       uploader,
		logger:         logger,
	}
}

func (s *tournamentService) CreateTournament(ctx context.Context, t *models.Tournament) error {
	if err := s.validate(t); err != nil {
		return err
	}

	sport, err := s.sportRepo.GetByCode(ctx, t.SportCode)
	if err != nil {
		return err
	}
	t.Sport = sport
	t.Status = models.StatusSoon
	if time.Now().After(t.RegDate) {
		t.Status = models.StatusRegistration
	}

	return s.tournamentRepo.Create(ctx, t)
}

func (s *tournamentService) GetTournamentByID(ctx context.Context, id int) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if sport, sportErr := s.sportRepo.GetByCode(ctx, t.SportCode); sportErr == nil {
		t.Sport = sport
	}
	s.populateLogoURL(t)
	return t, nil
}

func (s *tournamentService) ListTournaments(ctx context.Context, filter repositories.ListTournamentsFilter) ([]*models.Tournament, error) {
	tournaments, err := s.tournamentRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	for _, t := range tournaments {
		s.populateLogoURL(t)
	}
	return tournaments, nil
}

func (s *tournamentService) UpdateTournament(ctx context.Context, id int, operatorID int, update *models.Tournament) error {
	current, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if current.Status == models.StatusCompleted || current.Status == models.StatusCanceled {
		return ErrTournamentNotEditable
	}

	update.ID = id
	update.OrganizerID = current.OrganizerID
	update.Status = current.Status
	update.LogoKey = current.LogoKey
	if err := s.validate(update); err != nil {
		return err
	}

	if update.SportCode != current.SportCode {
		if _, err := s.sportRepo.GetByCode(ctx, update.SportCode); err != nil {
			return err
		}
	}

	return s.tournamentRepo.Update(ctx, update)
}

// UpdateTournamentStatus applies a manual status change, enforcing the
// lifecycle transition table.
func (s *tournamentService) UpdateTournamentStatus(ctx context.Context, id int, status models.TournamentStatus) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !transitionAllowed(t.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrTournamentInvalidStatusTransition, t.Status, status)
	}

	if err := s.tournamentRepo.UpdateStatus(ctx, nil, id, status); err != nil {
		return nil, err
	}
	t.Status = status
	return t, nil
}

func (s *tournamentService) DeleteTournament(ctx context.Context, id int) error {
	t, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if t.Status == models.StatusActive {
		return fmt.Errorf("%w: active tournaments must be canceled first", ErrTournamentNotEditable)
	}
	return s.tournamentRepo.Delete(ctx, id)
}

// RollForwardStatuses moves tournaments whose dates have passed into their
// next lifecycle stage. Called periodically by the scheduler; returns how
// many tournaments changed state.
func (s *tournamentService) RollForwardStatuses(ctx context.Context) (int, error) {
	due, err := s.tournamentRepo.ListDueForStatusChange(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list tournaments due for status change: %w", err)
	}

	changed := 0
	for _, t := range due {
		var next models.TournamentStatus
		switch t.Status {
		case models.StatusSoon:
			next = models.StatusRegistration
		case models.StatusRegistration:
			next = models.StatusActive
		case models.StatusActive:
			next = models.StatusCompleted
		default:
			continue
		}

		if err := s.tournamentRepo.UpdateStatus(ctx, nil, t.ID, next); err != nil {
			s.logger.Error("failed to roll tournament status forward",
				slog.Int("tournament_id", t.ID),
				slog.String("from", string(t.Status)),
				slog.String("to", string(next)),
				slog.Any("error", err))
			continue
		}
		s.logger.Info("tournament status rolled forward",
			slog.Int("tournament_id", t.ID),
			slog.String("from", string(t.Status)),
			slog.String("to", string(next)))
		changed++
	}
	return changed, nil
}

func (s *tournamentService) validate(t *models.Tournament) error {
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		return fmt.Errorf("%w: tournament name is required", ErrValidationFailed)
	}
	if t.SportCode == "" {
		return fmt.Errorf("%w: sport code is required", ErrValidationFailed)
	}
	if _, err := typeSupported(t.Type); err != nil {
		return err
	}
	if t.RegDate.After(t.StartDate) {
		return ErrTournamentInvalidRegDate
	}
	if !t.EndDate.After(t.StartDate) {
		return ErrTournamentInvalidDateRange
	}
	if t.MinPlayersPerTeam <= 0 || t.MaxPlayersPerTeam < t.MinPlayersPerTeam {
		return fmt.Errorf("%w: player bounds must satisfy 0 < min <= max", ErrValidationFailed)
	}
	return nil
}

func typeSupported(tt models.TournamentType) (models.TournamentType, error) {
	switch tt {
	case models.TypeRoundRobin, models.TypeKnockout, models.TypePoolPlayoff, models.TypeLeague:
		return tt, nil
	default:
		return "", fmt.Errorf("%w: unsupported tournament type %q", ErrValidationFailed, tt)
	}
}

func transitionAllowed(from, to models.TournamentStatus) bool {
	for _, allowed := range validStatusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func (s *tournamentService) populateLogoURL(t *models.Tournament) {
	if t.LogoKey != nil && s.uploader != nil {
		if url := s.uploader.GetPublicURL(*t.LogoKey); url != "" {
			t.LogoURL = &url
		}
	}
}
