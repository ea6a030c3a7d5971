package services

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/vladimiradmaev/macro-tracker/internal/auth"
	"github.com/vladimiradmaev/macro-tracker/internal/domain"
	apperrors "github.com/vladimiradmaev/macro-tracker/internal/errors"
	"github.com/vladimiradmaev/macro-tracker/internal/logger"
)

type AuthService struct {
	users  domain.UserRepository
	tokens *auth.TokenManager
}

func NewAuthService(users domain.UserRepository, tokens *auth.TokenManager) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// AuthResult is returned after a successful signup or login
type AuthResult struct {
	Token   string              `json:"token"`
	Profile *domain.UserProfile `json:"profile"`
}

// Signup creates the account and its profile with default goals
func (s *AuthService) Signup(ctx context.Context, email, password, displayName string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	displayName = strings.TrimSpace(displayName)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperrors.NewValidationError("a valid email is required")
	}
	if len(password) < auth.MinPasswordLength {
		return nil, apperrors.NewValidationError("password must be at least 6 characters")
	}
	if displayName == "" {
		return nil, apperrors.NewValidationError("display name is required")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	profile := &domain.UserProfile{
		ID:          uuid.NewString(),
		Email:       email,
		DisplayName: displayName,
		Goals:       domain.DefaultGoals,
	}
	if err := s.users.CreateWithCredentials(ctx, profile, hash); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, apperrors.ErrEmailTaken
		}
		return nil, apperrors.NewDatabaseError(err)
	}

	logger.Info("User signed up", "user_id", profile.ID)
	return s.issue(profile)
}

// Login checks the password and issues a token
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	creds, err := s.users.GetCredentials(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.NewDatabaseError(err)
	}
	if creds.PasswordHash == "" || !auth.CheckPassword(creds.PasswordHash, password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	profile, err := s.users.GetByID(ctx, creds.UserID)
	if err != nil {
		return nil, repoError(err, apperrors.ErrUserNotFound)
	}
	return s.issue(profile)
}

// Authenticate validates a bearer token and returns the user id
func (s *AuthService) Authenticate(token string) (string, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return "", apperrors.ErrUnauthorized
	}
	return claims.Subject, nil
}

func (s *AuthService) issue(profile *domain.UserProfile) (*AuthResult, error) {
	token, err := s.tokens.Generate(profile.ID, profile.Email)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &AuthResult{Token: token, Profile: profile}, nil
}
