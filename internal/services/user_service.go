package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vladimiradmaev/macro-tracker/internal/domain"
	apperrors "github.com/vladimiradmaev/macro-tracker/internal/errors"
	"github.com/vladimiradmaev/macro-tracker/internal/logger"
	"github.com/vladimiradmaev/macro-tracker/internal/utils"
)

type UserService struct {
	users   domain.UserRepository
	weights domain.WeightRepository
	loc     *time.Location
	now     func() time.Time
}

func NewUserService(users domain.UserRepository, weights domain.WeightRepository, loc *time.Location) *UserService {
	return &UserService{users: users, weights: weights, loc: loc, now: time.Now}
}

// ProfileUpdate carries the editable settings. Nil measurements stay unchanged.
type ProfileUpdate struct {
	DisplayName string
	Height      *float64
	Weight      *float64
}

// EnsureProfile returns the user's profile, creating it with default goals first if needed
func (s *UserService) EnsureProfile(ctx context.Context, userID, email, displayName string) (*domain.UserProfile, error) {
	profile, err := s.users.GetByID(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, apperrors.NewDatabaseError(err)
	}

	profile = &domain.UserProfile{
		ID:          userID,
		Email:       email,
		DisplayName: displayName,
		Goals:       domain.DefaultGoals,
	}
	if err := s.users.Create(ctx, profile); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			// created concurrently
			return s.GetProfile(ctx, userID)
		}
		return nil, apperrors.NewDatabaseError(err)
	}
	logger.Info("Profile created", "user_id", userID)
	return profile, nil
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	profile, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, repoError(err, apperrors.ErrUserNotFound)
	}
	return profile, nil
}

// UpdateProfile saves the settings form. A weight also becomes today's weigh-in.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) (*domain.UserProfile, error) {
	upd.DisplayName = strings.TrimSpace(upd.DisplayName)
	if upd.DisplayName == "" {
		return nil, apperrors.NewValidationError("display name is required")
	}
	if upd.Height != nil && *upd.Height <= 0 {
		return nil, apperrors.NewValidationError("height must be positive")
	}
	if upd.Weight != nil && *upd.Weight <= 0 {
		return nil, apperrors.NewValidationError("weight must be positive")
	}

	var weighIn *domain.WeightEntry
	if upd.Weight != nil {
		weighIn = &domain.WeightEntry{UserID: userID, Date: s.today(), Weight: *upd.Weight}
	}
	if err := s.users.UpdateProfile(ctx, userID, upd.DisplayName, upd.Height, weighIn); err != nil {
		return nil, repoError(err, apperrors.ErrUserNotFound)
	}
	return s.GetProfile(ctx, userID)
}

// UpdateGoals replaces the daily targets; every goal must be at least 1
func (s *UserService) UpdateGoals(ctx context.Context, userID string, goals domain.Goals) (*domain.UserProfile, error) {
	if err := validateGoals(goals); err != nil {
		return nil, err
	}
	if err := s.users.UpdateGoals(ctx, userID, goals); err != nil {
		return nil, repoError(err, apperrors.ErrUserNotFound)
	}
	return s.GetProfile(ctx, userID)
}

func validateGoals(goals domain.Goals) error {
	if err := goals.Validate(); err != nil {
		return apperrors.NewValidationError(err.Error())
	}
	for _, f := range goals.Fields() {
		if f.Value < 1 {
			return apperrors.NewValidationError(fmt.Sprintf("%s goal must be at least 1", f.Name))
		}
	}
	return nil
}

// AddWeight records a weigh-in; an empty date means today
func (s *UserService) AddWeight(ctx context.Context, userID, date string, weight float64) (*domain.WeightEntry, error) {
	if weight <= 0 {
		return nil, apperrors.NewValidationError("weight must be positive")
	}
	if date == "" {
		date = s.today()
	} else if _, err := utils.ParseDay(date, s.loc); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	entry := domain.WeightEntry{UserID: userID, Date: date, Weight: weight}
	if err := s.weights.Upsert(ctx, entry); err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return &entry, nil
}

// WeightHistory lists weigh-ins oldest first
func (s *UserService) WeightHistory(ctx context.Context, userID string) ([]domain.WeightEntry, error) {
	entries, err := s.weights.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	if entries == nil {
		entries = []domain.WeightEntry{}
	}
	return entries, nil
}

// GetOrCreateByTelegram resolves the profile linked to a Telegram account
func (s *UserService) GetOrCreateByTelegram(ctx context.Context, telegramID int64, displayName string) (*domain.UserProfile, error) {
	profile, err := s.users.GetByTelegramID(ctx, telegramID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, apperrors.NewDatabaseError(err)
	}

	id := telegramID
	profile = &domain.UserProfile{
		ID:          uuid.NewString(),
		DisplayName: displayName,
		Goals:       domain.DefaultGoals,
		TelegramID:  &id,
	}
	if err := s.users.Create(ctx, profile); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return s.GetOrCreateByTelegram(ctx, telegramID, displayName)
		}
		return nil, apperrors.NewDatabaseError(err)
	}
	logger.Info("Telegram user registered", "user_id", profile.ID, "telegram_id", telegramID)
	return profile, nil
}

func (s *UserService) today() string {
	return utils.FormatDay(s.now().In(s.loc))
}
