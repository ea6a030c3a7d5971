package database

import (
	"time"

	"github.com/vladimiradmaev/macro-tracker/internal/nutrition"
)

type User struct {
	ID           string  `gorm:"primaryKey;type:uuid"`
	Email        *string `gorm:"uniqueIndex"`
	PasswordHash string
	DisplayName  string
	PhotoURL     string
	Height       *float64
	Weight       *float64
	TelegramID   *int64              `gorm:"uniqueIndex"`
	Goals        nutrition.Nutrients `gorm:"embedded;embeddedPrefix:goal_"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Meal struct {
	ID        string              `gorm:"primaryKey;type:uuid"`
	UserID    string              `gorm:"type:uuid;not null;index"`
	Date      string              `gorm:"type:char(10);not null"` // YYYY-MM-DD
	Name      string              `gorm:"not null"`
	Category  string              `gorm:"not null"`
	Totals    nutrition.Nutrients `gorm:"embedded;embeddedPrefix:total_"`
	PhotoURL  string
	PhotoKey  string
	FoodItems []MealFoodItem `gorm:"foreignKey:MealID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time      `gorm:"index"`
	UpdatedAt time.Time
}

// MealFoodItem rows keep the order of the meal's food list in Position.
type MealFoodItem struct {
	MealID      string `gorm:"primaryKey;type:uuid"`
	Position    int    `gorm:"primaryKey"`
	ItemID      string `gorm:"not null"`
	Name        string `gorm:"not null"`
	ServingSize string
	Nutrients   nutrition.Nutrients `gorm:"embedded"`
}

type WeightEntry struct {
	UserID    string `gorm:"primaryKey;type:uuid"`
	Date      string `gorm:"primaryKey;type:char(10)"`
	Weight    float64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Models lists every table managed by AutoMigrate
func Models() []interface{} {
	return []interface{}{&User{}, &Meal{}, &MealFoodItem{}, &WeightEntry{}}
}
