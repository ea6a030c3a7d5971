package domain

import (
	"strings"
	"time"

	"github.com/vladimiradmaev/macro-tracker/internal/nutrition"
)

// MealCategory is the fixed set of meal slots
type MealCategory string

const (
	CategoryBreakfast MealCategory = "Breakfast"
	CategoryLunch     MealCategory = "Lunch"
	CategoryDinner    MealCategory = "Dinner"
	CategorySnacks    MealCategory = "Snacks"
)

// MealCategories lists the categories in display order
var MealCategories = []MealCategory{CategoryBreakfast, CategoryLunch, CategoryDinner, CategorySnacks}

// Valid reports whether c is one of the known categories
func (c MealCategory) Valid() bool {
	for _, known := range MealCategories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseMealCategory matches a category name case-insensitively
func ParseMealCategory(s string) (MealCategory, bool) {
	for _, known := range MealCategories {
		if strings.EqualFold(strings.TrimSpace(s), string(known)) {
			return known, true
		}
	}
	return "", false
}

// Goals are a user's daily nutrient targets
type Goals = nutrition.Nutrients

// DefaultGoals are applied when a profile is created
var DefaultGoals = Goals{
	Calories: 2000,
	Protein:  150,
	Carbs:    250,
	Fat:      67,
	Fiber:    25,
}

// FoodItem is one food inside a meal
type FoodItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ServingSize string `json:"servingSize"`
	nutrition.Nutrients
}

// NutrientValues implements nutrition.Nutritional
func (f FoodItem) NutrientValues() nutrition.Nutrients {
	return f.Nutrients
}

// Meal is a logged eating event. Totals always equal the sum of FoodItems.
type Meal struct {
	ID        string              `json:"id"`
	UserID    string              `json:"userId"`
	Date      string              `json:"date"` // YYYY-MM-DD
	Name      string              `json:"name"`
	Category  MealCategory        `json:"category"`
	FoodItems []FoodItem          `json:"foodItems"`
	Totals    nutrition.Nutrients `json:"totals"`
	PhotoURL  string              `json:"photoUrl,omitempty"`
	PhotoKey  string              `json:"-"`
	CreatedAt time.Time           `json:"createdAt"`
	UpdatedAt time.Time           `json:"updatedAt"`
}

// NutrientValues implements nutrition.Nutritional
func (m Meal) NutrientValues() nutrition.Nutrients {
	return m.Totals
}

// HasPhoto reports whether the meal references a stored photo
func (m Meal) HasPhoto() bool {
	return m.PhotoKey != ""
}

// UserProfile is the per-user settings record
type UserProfile struct {
	ID          string    `json:"uid"`
	Email       string    `json:"email,omitempty"`
	DisplayName string    `json:"displayName,omitempty"`
	PhotoURL    string    `json:"photoURL,omitempty"`
	Height      *float64  `json:"height"`
	Weight      *float64  `json:"weight"`
	Goals       Goals     `json:"goals"`
	TelegramID  *int64    `json:"-"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Credentials is the login record kept alongside a profile
type Credentials struct {
	UserID       string
	Email        string
	PasswordHash string
}

// WeightEntry is one weigh-in; at most one per user and date
type WeightEntry struct {
	UserID string  `json:"userId"`
	Date   string  `json:"date"` // YYYY-MM-DD
	Weight float64 `json:"weight"`
}
