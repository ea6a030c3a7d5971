package repository

import (
	"context"

	"github.com/vladimiradmaev/macro-tracker/internal/database"
	"github.com/vladimiradmaev/macro-tracker/internal/domain"
	"gorm.io/gorm"
)

// MealRepository stores meals and their food items
type MealRepository struct {
	db *gorm.DB
}

func NewMealRepository(db *gorm.DB) *MealRepository {
	return &MealRepository{db: db}
}

func toMealRow(m *domain.Meal) *database.Meal {
	row := &database.Meal{
		ID:        m.ID,
		UserID:    m.UserID,
		Date:      m.Date,
		Name:      m.Name,
		Category:  string(m.Category),
		Totals:    m.Totals,
		PhotoURL:  m.PhotoURL,
		PhotoKey:  m.PhotoKey,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	row.FoodItems = toItemRows(m)
	return row
}

func toItemRows(m *domain.Meal) []database.MealFoodItem {
	items := make([]database.MealFoodItem, len(m.FoodItems))
	for i, f := range m.FoodItems {
		items[i] = database.MealFoodItem{
			MealID:      m.ID,
			Position:    i,
			ItemID:      f.ID,
			Name:        f.Name,
			ServingSize: f.ServingSize,
			Nutrients:   f.Nutrients,
		}
	}
	return items
}

func toMeal(row *database.Meal) domain.Meal {
	m := domain.Meal{
		ID:        row.ID,
		UserID:    row.UserID,
		Date:      row.Date,
		Name:      row.Name,
		Category:  domain.MealCategory(row.Category),
		Totals:    row.Totals,
		PhotoURL:  row.PhotoURL,
		PhotoKey:  row.PhotoKey,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
		FoodItems: make([]domain.FoodItem, len(row.FoodItems)),
	}
	for i, it := range row.FoodItems {
		m.FoodItems[i] = domain.FoodItem{
			ID:          it.ItemID,
			Name:        it.Name,
			ServingSize: it.ServingSize,
			Nutrients:   it.Nutrients,
		}
	}
	return m
}

func toMeals(rows []database.Meal) []domain.Meal {
	meals := make([]domain.Meal, len(rows))
	for i := range rows {
		meals[i] = toMeal(&rows[i])
	}
	return meals
}

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// Create inserts the meal and its items
func (r *MealRepository) Create(ctx context.Context, meal *domain.Meal) error {
	row := toMealRow(meal)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return translate(err, "create meal")
	}
	meal.CreatedAt = row.CreatedAt
	meal.UpdatedAt = row.UpdatedAt
	return nil
}

// Get loads one meal with its items
func (r *MealRepository) Get(ctx context.Context, mealID string) (*domain.Meal, error) {
	var row database.Meal
	if err := r.db.WithContext(ctx).
		Preload("FoodItems", preloadItems).
		Where("id = ?", mealID).
		First(&row).Error; err != nil {
		return nil, translate(err, "get meal")
	}
	meal := toMeal(&row)
	return &meal, nil
}

// Replace swaps the meal's items and totals inside one transaction
func (r *MealRepository) Replace(ctx context.Context, meal *domain.Meal) error {
	row := toMealRow(meal)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&database.Meal{}).
			Where("id = ? AND user_id = ?", row.ID, row.UserID).
			Updates(map[string]interface{}{
				"name":           row.Name,
				"category":       row.Category,
				"total_calories": row.Totals.Calories,
				"total_protein":  row.Totals.Protein,
				"total_carbs":    row.Totals.Carbs,
				"total_fat":      row.Totals.Fat,
				"total_fiber":    row.Totals.Fiber,
			})
		if result.Error != nil {
			return translate(result.Error, "update meal")
		}
		if result.RowsAffected == 0 {
			return domain.ErrNotFound
		}

		if err := tx.Where("meal_id = ?", row.ID).Delete(&database.MealFoodItem{}).Error; err != nil {
			return translate(err, "delete meal items")
		}
		if len(row.FoodItems) > 0 {
			if err := tx.Create(&row.FoodItems).Error; err != nil {
				return translate(err, "insert meal items")
			}
		}
		return nil
	})
}

// Delete removes the meal owned by userID; items cascade
func (r *MealRepository) Delete(ctx context.Context, mealID, userID string) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", mealID, userID).
		Delete(&database.Meal{})
	if result.Error != nil {
		return translate(result.Error, "delete meal")
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByDate returns one day's meals, newest first
func (r *MealRepository) ListByDate(ctx context.Context, userID, date string) ([]domain.Meal, error) {
	var rows []database.Meal
	if err := r.db.WithContext(ctx).
		Preload("FoodItems", preloadItems).
		Where("user_id = ? AND date = ?", userID, date).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, translate(err, "list meals by date")
	}
	return toMeals(rows), nil
}

// ListByDateRange returns meals whose date lies in [from, to], oldest first
func (r *MealRepository) ListByDateRange(ctx context.Context, userID, from, to string) ([]domain.Meal, error) {
	var rows []database.Meal
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND date BETWEEN ? AND ?", userID, from, to).
		Order("date ASC, created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, translate(err, "list meals by date range")
	}
	return toMeals(rows), nil
}
