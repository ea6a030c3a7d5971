package interfaces

import (
	"context"

	"github.com/vladimiradmaev/macro-tracker/internal/domain"
	"github.com/vladimiradmaev/macro-tracker/internal/services"
	"github.com/vladimiradmaev/macro-tracker/internal/state"
)

// AuthServiceInterface defines the contract for account operations
type AuthServiceInterface interface {
	Signup(ctx context.Context, email, password, displayName string) (*services.AuthResult, error)
	Login(ctx context.Context, email, password string) (*services.AuthResult, error)
	Authenticate(token string) (string, error)
}

// UserServiceInterface defines the contract for profile operations
type UserServiceInterface interface {
	EnsureProfile(ctx context.Context, userID, email, displayName string) (*domain.UserProfile, error)
	GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error)
	UpdateProfile(ctx context.Context, userID string, upd services.ProfileUpdate) (*domain.UserProfile, error)
	UpdateGoals(ctx context.Context, userID string, goals domain.Goals) (*domain.UserProfile, error)
	AddWeight(ctx context.Context, userID, date string, weight float64) (*domain.WeightEntry, error)
	WeightHistory(ctx context.Context, userID string) ([]domain.WeightEntry, error)
	GetOrCreateByTelegram(ctx context.Context, telegramID int64, displayName string) (*domain.UserProfile, error)
}

// MealServiceInterface defines the contract for meal operations
type MealServiceInterface interface {
	Create(ctx context.Context, userID string, in services.MealInput, photo *domain.Image) (*domain.Meal, error)
	Update(ctx context.Context, userID, mealID string, edit services.MealEdit) (*domain.Meal, error)
	Delete(ctx context.Context, userID, mealID string) error
	Get(ctx context.Context, userID, mealID string) (*domain.Meal, error)
	ListByDate(ctx context.Context, userID, date string) ([]domain.Meal, error)
}

// AnalyticsServiceInterface defines the contract for dashboard aggregates
type AnalyticsServiceInterface interface {
	Daily(ctx context.Context, userID, date string) (*services.DailySummary, error)
	Weekly(ctx context.Context, userID, anchor string) ([]services.DayTotals, error)
}

// IdentifyServiceInterface defines the contract for photo identification
type IdentifyServiceInterface interface {
	Start(ctx context.Context, userID string, img domain.Image, servingSize string) (*state.Session, error)
	Current(ctx context.Context, userID string) (*state.Session, error)
	Wait(ctx context.Context, userID, sessionID string) (*state.Session, error)
	Reset(ctx context.Context, userID string) error
	SaveSession(ctx context.Context, userID string, in services.MealInput) (*domain.Meal, error)
	Lookup(ctx context.Context, name, servingSize string) (*domain.FoodItem, error)
}

// Compile-time checks
var (
	_ AuthServiceInterface      = (*services.AuthService)(nil)
	_ UserServiceInterface      = (*services.UserService)(nil)
	_ MealServiceInterface      = (*services.MealService)(nil)
	_ AnalyticsServiceInterface = (*services.AnalyticsService)(nil)
	_ IdentifyServiceInterface  = (*services.IdentifyService)(nil)
)
