package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/safaconnect/tournament-engine/models"
	"github.com/safaconnect/tournament-engine/repositories"
	"github.com/safaconnect/tournament-engine/utils"
)

const (
	minPasswordLength = 8
	tokenTTL          = 24 * time.Hour
)

var ErrOperatorEmailTaken = errors.New("email address is already in use")

type AuthService interface {
	CreateOperator(ctx context.Context, input CreateOperatorInput) (*models.Operator, error)
	Login(ctx context.Context, input LoginInput) (*models.Operator, string, error)
}

type CreateOperatorInput struct {
	Email     string              `json:"email"`
	Password  string              `json:"password"`
	FirstName string              `json:"first_name"`
	LastName  string              `json:"last_name"`
	Role      models.OperatorRole `json:"role"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authService struct {
	operatorRepo repositories.OperatorRepository
	jwtSecret    []byte
}

func NewAuthService(operatorRepo repositories.OperatorRepository, jwtSecret string) AuthService {
	return &authService{
		operatorRepo: operatorRepo,
		jwtSecret:    []byte(jwtSecret),
	}
}

func (s *authService) CreateOperator(ctx context.Context, input CreateOperatorInput) (*models.Operator, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if input.Email == "" || !strings.Contains(input.Email, "@") {
		return nil, fmt.Errorf("%w: a valid email is required", ErrValidationFailed)
	}
	if len(input.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}
	switch input.Role {
	case models.RoleAdmin, models.RoleOperator:
	case "":
		input.Role = models.RoleOperator
	default:
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidationFailed, input.Role)
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	operator := &models.Operator{
		Email:        input.Email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Role:         input.Role,
	}

	if err := s.operatorRepo.Create(ctx, operator); err != nil {
		if errors.Is(err, repositories.ErrOperatorEmailConflict) {
			return nil, ErrOperatorEmailTaken
		}
		return nil, fmt.Errorf("failed to create operator: %w", err)
	}

	operator.PasswordHash = ""
	return operator, nil
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*models.Operator, string, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	operator, err := s.operatorRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrOperatorNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to find operator by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(operator.PasswordHash), []byte(input.Password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to compare password hash: %w", err)
	}

	token, err := s.issueToken(operator)
	if err != nil {
		return nil, "", err
	}

	operator.PasswordHash = ""
	return operator, token, nil
}

func (s *authService) issueToken(operator *models.Operator) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"operator_id": operator.ID,
		"role":        string(operator.Role),
		"iat":         now.Unix(),
		"exp":         now.Add(tokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
