package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/safaconnect/tournament-engine/models"
	"github.com/safaconnect/tournament-engine/repositories"
	"github.com/safaconnect/tournament-engine/storage"
	"github.com/safaconnect/tournament-engine/utils"
)

type TeamService interface {
	CreateTeam(ctx context.Context, team *models.Team) error
	GetTeamByID(ctx context.Context, id int) (*models.Team, error)
	ListTeamsByTournament(ctx context.Context, tournamentID int) ([]*models.Team, error)
	AddPlayer(ctx context.Context, player *models.Player) error
	UploadTeamPhoto(ctx context.Context, teamID int, contentType string, photo io.Reader) (string, error)
	DeleteTeam(ctx context.Context, id int) error
}

type teamService struct {
	teamRepo         repositories.TeamRepository
	tournamentRepo   repositories.TournamentRepository
	fixtureRepo      repositories.FixtureRepository
	registrationRepo repositories.RegistrationRepository
	uploader         storage.FileUploader
}

func NewTeamService(
	teamRepo repositories.TeamRepository,
	tournamentRepo repositories.TournamentRepository,
	fixtureRepo repositories.FixtureRepository,
	registrationRepo repositories.RegistrationRepository,
	uploader storage.FileUploader,
) TeamService {
	return &teamService{
		teamRepo:         teamRepo,
		tournamentRepo:   tournamentRepo,
		fixtureRepo:      fixtureRepo,
		registrationRepo: registrationRepo,
		uploader:         uploader,
	}
}

func (s *teamService) CreateTeam(ctx context.Context, team *models.Team) error {
	team.Name = strings.TrimSpace(team.Name)
	if team.Name == "" {
		return ErrTeamNameRequired
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, team.TournamentID)
	if err != nil {
		return err
	}
	if tournament.Status != models.StatusRegistration {
		return ErrRegistrationClosed
	}

	return s.teamRepo.Create(ctx, team)
}

func (s *teamService) GetTeamByID(ctx context.Context, id int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	players, err := s.teamRepo.ListPlayers(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load roster for team %d: %w", id, err)
	}
	team.Players = players
	s.populatePhotoURL(team)
	return team, nil
}

func (s *teamService) ListTeamsByTournament(ctx context.Context, tournamentID int) ([]*models.Team, error) {
	teams, err := s.teamRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	for _, team := range teams {
		s.populatePhotoURL(team)
	}
	return teams, nil
}

// AddPlayer appends one roster entry. The roster is bounded by the
// tournament's max players per team and freezes once fixtures exist. A
// linked registration must be verified, belong to the same tournament, and
// carry the same id number as the player.
func (s *teamService) AddPlayer(ctx context.Context, player *models.Player) error {
	player.FullName = strings.TrimSpace(player.FullName)
	player.IDNumber = strings.TrimSpace(player.IDNumber)
	if player.FullName == "" || player.IDNumber == "" {
		return fmt.Errorf("%w: player full name and id number are required", ErrValidationFailed)
	}

	team, err := s.teamRepo.GetByID(ctx, player.TeamID)
	if err != nil {
		return err
	}
	tournament, err := s.tournamentRepo.GetByID(ctx, team.TournamentID)
	if err != nil {
		return err
	}

	fixtures, err := s.fixtureRepo.ListByTournament(ctx, tournament.ID, nil, nil)
	if err != nil {
		return err
	}
	if len(fixtures) > 0 {
		return ErrRosterLocked
	}

	roster, err := s.teamRepo.ListPlayers(ctx, player.TeamID)
	if err != nil {
		return err
	}
	if len(roster) >= tournament.MaxPlayersPerTeam {
		return ErrRosterFull
	}

	if player.RegistrationID != nil {
		registration, err := s.registrationRepo.GetByID(ctx, *player.RegistrationID)
		if err != nil {
			return err
		}
		if registration.TournamentID != tournament.ID {
			return ErrRegistrationMismatch
		}
		if registration.IDNumber != player.IDNumber {
			return ErrRegistrationNotLinked
		}
		if registration.Status != models.VerificationVerified {
			return ErrPlayerNotVerified
		}
	}

	return s.teamRepo.AddPlayer(ctx, player)
}

func (s *teamService) UploadTeamPhoto(ctx context.Context, teamID int, contentType string, photo io.Reader) (string, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return "", err
	}

	ext, err := utils.ExtensionFromContentType(contentType)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	key := storage.PhotoKey("teams", ext)
	result, err := s.uploader.Upload(ctx, key, contentType, photo)
	if err != nil {
		return "", fmt.Errorf("failed to upload team photo: %w", err)
	}

	oldKey := team.PhotoKey
	if err := s.teamRepo.UpdatePhotoKey(ctx, teamID, &result.Key); err != nil {
		_ = s.uploader.Delete(ctx, result.Key)
		return "", err
	}
	if oldKey != nil {
		// Old photo removal is best effort; an orphaned object is harmless.
		_ = s.uploader.Delete(ctx, *oldKey)
	}

	return result.Location, nil
}

func (s *teamService) DeleteTeam(ctx context.Context, id int) error {
	team, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	fixtures, err := s.fixtureRepo.ListByTournament(ctx, team.TournamentID, nil, nil)
	if err != nil {
		return err
	}
	for _, f := range fixtures {
		if f.HomeTeamID == id || f.AwayTeamID == id {
			return errors.New("team has fixtures; regenerate fixtures after removing it")
		}
	}

	return s.teamRepo.Delete(ctx, id)
}

func (s *teamService) populatePhotoURL(team *models.Team) {
	if team.PhotoKey != nil && s.uploader != nil {
		if url := s.uploader.GetPublicURL(*team.PhotoKey); url != "" {
			team.PhotoURL = &url
		}
	}
}
