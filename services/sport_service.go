package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/safaconnect/tournament-engine/models"
	"github.com/safaconnect/tournament-engine/repositories"
)

type SportService interface {
	CreateSport(ctx context.Context, sport *models.SportRuleSet) error
	GetSportByCode(ctx context.Context, code string) (*models.SportRuleSet, error)
	ListSports(ctx context.Context) ([]*models.SportRuleSet, error)
}

type sportService struct {
	sportRepo repositories.SportRepository
}

func NewSportService(sportRepo repositories.SportRepository) SportService {
	return &sportService{sportRepo: sportRepo}
}

func (s *sportService) CreateSport(ctx context.Context, sport *models.SportRuleSet) error {
	sport.Code = strings.ToLower(strings.TrimSpace(sport.Code))
	sport.Name = strings.TrimSpace(sport.Name)

	if sport.Code == "" {
		return fmt.Errorf("%w: sport code is required", ErrValidationFailed)
	}
	if sport.Name == "" {
		return fmt.Errorf("%w: sport name is required", ErrValidationFailed)
	}
	if sport.PlayersPerTeam <= 0 {
		return fmt.Errorf("%w: players per team must be positive", ErrValidationFailed)
	}
	if sport.MatchDurationMinutes <= 0 {
		return fmt.Errorf("%w: match duration must be positive", ErrValidationFailed)
	}
	if sport.WinPoints < sport.DrawPoints || sport.DrawPoints < sport.LossPoints {
		return fmt.Errorf("%w: points must not reward worse outcomes more", ErrValidationFailed)
	}

	return s.sportRepo.Create(ctx, sport)
}

func (s *sportService) GetSportByCode(ctx context.Context, code string) (*models.SportRuleSet, error) {
	return s.sportRepo.GetByCode(ctx, strings.ToLower(strings.TrimSpace(code)))
}

func (s *sportService) ListSports(ctx context.Context) ([]*models.SportRuleSet, error) {
	return s.sportRepo.List(ctx)
}
