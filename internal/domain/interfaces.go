package domain

import (
	"context"
	"errors"
	"io"

	"github.com/vladimiradmaev/macro-tracker/internal/nutrition"
)

// ErrNotFound is returned by repositories when a record does not exist
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned by repositories on unique key violations
var ErrDuplicate = errors.New("duplicate record")

// UserRepository persists profiles and credentials
type UserRepository interface {
	CreateWithCredentials(ctx context.Context, profile *UserProfile, passwordHash string) error
	Create(ctx context.Context, profile *UserProfile) error
	GetByID(ctx context.Context, userID string) (*UserProfile, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*UserProfile, error)
	GetCredentials(ctx context.Context, email string) (*Credentials, error)
	// UpdateProfile saves the settings form. A non-nil weighIn sets the
	// profile weight and upserts the entry in the same transaction.
	UpdateProfile(ctx context.Context, userID string, displayName string, height *float64, weighIn *WeightEntry) error
	UpdateGoals(ctx context.Context, userID string, goals Goals) error
}

// MealRepository persists meals together with their food items
type MealRepository interface {
	Create(ctx context.Context, meal *Meal) error
	Get(ctx context.Context, mealID string) (*Meal, error)
	// Replace overwrites the meal row and its items in a single transaction.
	Replace(ctx context.Context, meal *Meal) error
	Delete(ctx context.Context, mealID, userID string) error
	// ListByDate returns the user's meals for one day, newest first.
	ListByDate(ctx context.Context, userID, date string) ([]Meal, error)
	// ListByDateRange returns meals with from <= date <= to, oldest first.
	ListByDateRange(ctx context.Context, userID, from, to string) ([]Meal, error)
}

// WeightRepository keeps the weight history
type WeightRepository interface {
	Upsert(ctx context.Context, entry WeightEntry) error
	ListByUser(ctx context.Context, userID string) ([]WeightEntry, error)
}

// PhotoStorage stores meal photos
type PhotoStorage interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	// Delete reports storage.ErrObjectNotFound when the object is absent.
	Delete(ctx context.Context, key string) error
}

// Image is an uploaded picture handed to the AI collaborators
type Image struct {
	Data     []byte
	MIMEType string
}

// FoodIdentifier names the foods visible in an image
type FoodIdentifier interface {
	IdentifyFoods(ctx context.Context, img Image) ([]string, error)
}

// NutritionEstimator estimates macros for a food and serving size
type NutritionEstimator interface {
	LookupMacros(ctx context.Context, foodName, servingSize string) (nutrition.Nutrients, error)
}
