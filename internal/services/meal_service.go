package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vladimiradmaev/macro-tracker/internal/domain"
	apperrors "github.com/vladimiradmaev/macro-tracker/internal/errors"
	"github.com/vladimiradmaev/macro-tracker/internal/logger"
	"github.com/vladimiradmaev/macro-tracker/internal/nutrition"
	"github.com/vladimiradmaev/macro-tracker/internal/storage"
	"github.com/vladimiradmaev/macro-tracker/internal/utils"
)

const (
	defaultMealName = "Manual Meal"
	editedMealName  = "Edited Meal"
	defaultCategory = domain.CategorySnacks
	defaultServing  = "1 serving"
	maxFoodItems    = 50
)

// MealInput is a new meal as submitted by a client
type MealInput struct {
	Name      string
	Category  domain.MealCategory
	Date      string
	FoodItems []domain.FoodItem
}

// MealEdit is the edit dialog's result. An empty Category keeps the original.
type MealEdit struct {
	Name      string
	Category  domain.MealCategory
	FoodItems []domain.FoodItem
}

type MealService struct {
	meals  domain.MealRepository
	photos domain.PhotoStorage
	loc    *time.Location
	now    func() time.Time
}

func NewMealService(meals domain.MealRepository, photos domain.PhotoStorage, loc *time.Location) *MealService {
	return &MealService{meals: meals, photos: photos, loc: loc, now: time.Now}
}

// Create validates and stores a meal. The optional photo is uploaded first
// and removed again when the record cannot be written.
func (s *MealService) Create(ctx context.Context, userID string, in MealInput, photo *domain.Image) (*domain.Meal, error) {
	items, err := normalizeItems(in.FoodItems)
	if err != nil {
		return nil, err
	}

	category := in.Category
	if category == "" {
		category = defaultCategory
	}
	if !category.Valid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown meal category %q", category))
	}

	date := in.Date
	if date == "" {
		date = utils.FormatDay(s.now().In(s.loc))
	} else if _, err := utils.ParseDay(date, s.loc); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = defaultMealName
	}

	meal := &domain.Meal{
		ID:        uuid.NewString(),
		UserID:    userID,
		Date:      date,
		Name:      name,
		Category:  category,
		FoodItems: items,
		Totals:    nutrition.Sum(items),
	}

	if photo != nil && len(photo.Data) > 0 {
		key := fmt.Sprintf("meals/%s/%s%s", userID, meal.ID, storage.Extension(photo.MIMEType))
		url, err := s.photos.Upload(ctx, key, bytes.NewReader(photo.Data), photo.MIMEType)
		if err != nil {
			return nil, apperrors.NewExternalAPIError(err, "photo storage")
		}
		meal.PhotoKey = key
		meal.PhotoURL = url
	}

	if err := s.meals.Create(ctx, meal); err != nil {
		if meal.HasPhoto() {
			if delErr := s.photos.Delete(ctx, meal.PhotoKey); delErr != nil && !errors.Is(delErr, storage.ErrObjectNotFound) {
				logger.Warn("Failed to remove orphaned meal photo", "key", meal.PhotoKey, "error", delErr)
			}
		}
		return nil, apperrors.NewDatabaseError(err)
	}

	logger.Info("Meal created", "user_id", userID, "meal_id", meal.ID, "items", len(items))
	return meal, nil
}

// Update replaces the meal's food items and recomputes its totals. The
// edited list is validated before anything is read or written.
func (s *MealService) Update(ctx context.Context, userID, mealID string, edit MealEdit) (*domain.Meal, error) {
	items, err := normalizeItems(edit.FoodItems)
	if err != nil {
		return nil, err
	}
	if edit.Category != "" && !edit.Category.Valid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown meal category %q", edit.Category))
	}
	edit.FoodItems = items

	original, err := s.owned(ctx, userID, mealID)
	if err != nil {
		return nil, err
	}

	updated := Reconcile(*original, edit)
	if err := s.meals.Replace(ctx, &updated); err != nil {
		return nil, repoError(err, apperrors.ErrMealNotFound)
	}

	logger.Info("Meal updated", "user_id", userID, "meal_id", mealID, "items", len(items))
	return s.owned(ctx, userID, mealID)
}

// Reconcile merges an edit into the original meal. Identity, date and photo
// are kept; items and totals come from the edit.
func Reconcile(original domain.Meal, edit MealEdit) domain.Meal {
	updated := original
	updated.FoodItems = append([]domain.FoodItem(nil), edit.FoodItems...)
	updated.Totals = nutrition.Sum(updated.FoodItems)

	updated.Name = strings.TrimSpace(edit.Name)
	if updated.Name == "" {
		updated.Name = editedMealName
	}
	if edit.Category != "" {
		updated.Category = edit.Category
	}
	return updated
}

// Delete removes a meal and its photo. A photo that is already gone is not
// an error; other storage failures are logged and the record is still removed.
func (s *MealService) Delete(ctx context.Context, userID, mealID string) error {
	meal, err := s.owned(ctx, userID, mealID)
	if err != nil {
		return err
	}

	if meal.HasPhoto() {
		if err := s.photos.Delete(ctx, meal.PhotoKey); err != nil {
			if errors.Is(err, storage.ErrObjectNotFound) {
				logger.Debug("Meal photo already removed", "key", meal.PhotoKey)
			} else {
				logger.Warn("Failed to delete meal photo", "meal_id", mealID, "key", meal.PhotoKey, "error", err)
			}
		}
	}

	if err := s.meals.Delete(ctx, mealID, userID); err != nil {
		return repoError(err, apperrors.ErrMealNotFound)
	}

	logger.Info("Meal deleted", "user_id", userID, "meal_id", mealID)
	return nil
}

// Get returns one of the user's meals
func (s *MealService) Get(ctx context.Context, userID, mealID string) (*domain.Meal, error) {
	return s.owned(ctx, userID, mealID)
}

// ListByDate returns the user's meals for date, newest first
func (s *MealService) ListByDate(ctx context.Context, userID, date string) ([]domain.Meal, error) {
	if _, err := utils.ParseDay(date, s.loc); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	meals, err := s.meals.ListByDate(ctx, userID, date)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	if meals == nil {
		meals = []domain.Meal{}
	}
	return meals, nil
}

// owned loads a meal and hides meals of other users behind the same error
// as missing ones
func (s *MealService) owned(ctx context.Context, userID, mealID string) (*domain.Meal, error) {
	meal, err := s.meals.Get(ctx, mealID)
	if err != nil {
		return nil, repoError(err, apperrors.ErrMealNotFound)
	}
	if meal.UserID != userID {
		return nil, apperrors.ErrMealNotFound
	}
	return meal, nil
}

// normalizeItems checks an item list and fills in ids and serving sizes
func normalizeItems(items []domain.FoodItem) ([]domain.FoodItem, error) {
	if len(items) == 0 {
		return nil, apperrors.ErrEmptyMeal
	}
	if len(items) > maxFoodItems {
		return nil, apperrors.NewValidationError(fmt.Sprintf("a meal can hold at most %d food items", maxFoodItems))
	}

	out := make([]domain.FoodItem, len(items))
	for i, item := range items {
		item.Name = strings.TrimSpace(item.Name)
		if item.Name == "" {
			return nil, apperrors.NewValidationError(fmt.Sprintf("food item %d: name is required", i+1))
		}
		if err := item.Nutrients.Validate(); err != nil {
			return nil, apperrors.NewValidationError(fmt.Sprintf("food item %q: %v", item.Name, err))
		}
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		item.ServingSize = strings.TrimSpace(item.ServingSize)
		if item.ServingSize == "" {
			item.ServingSize = defaultServing
		}
		out[i] = item
	}
	return out, nil
}
