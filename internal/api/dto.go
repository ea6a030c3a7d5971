package api

import (
	"github.com/vladimiradmaev/macro-tracker/internal/domain"
	"github.com/vladimiradmaev/macro-tracker/internal/nutrition"
	"github.com/vladimiradmaev/macro-tracker/internal/services"
)

type signupRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6"`
	DisplayName string `json:"displayName" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type profileRequest struct {
	DisplayName string   `json:"displayName" binding:"required"`
	Height      *float64 `json:"height" binding:"omitempty,gt=0"`
	Weight      *float64 `json:"weight" binding:"omitempty,gt=0"`
}

type goalsRequest struct {
	Calories *float64 `json:"calories" binding:"required,gte=1"`
	Protein  *float64 `json:"protein" binding:"required,gte=1"`
	Carbs    *float64 `json:"carbs" binding:"required,gte=1"`
	Fat      *float64 `json:"fat" binding:"required,gte=1"`
	Fiber    *float64 `json:"fiber" binding:"required,gte=1"`
}

func (r goalsRequest) goals() domain.Goals {
	return domain.Goals{Calories: *r.Calories, Protein: *r.Protein, Carbs: *r.Carbs, Fat: *r.Fat, Fiber: *r.Fiber}
}

type weightRequest struct {
	Date   string  `json:"date"`
	Weight float64 `json:"weight" binding:"required,gt=0"`
}

// nutrientFields are pointers so a missing number fails binding instead of
// turning into zero
type nutrientFields struct {
	Calories *float64 `json:"calories" binding:"required,gte=0"`
	Protein  *float64 `json:"protein" binding:"required,gte=0"`
	Carbs    *float64 `json:"carbs" binding:"required,gte=0"`
	Fat      *float64 `json:"fat" binding:"required,gte=0"`
	Fiber    *float64 `json:"fiber" binding:"required,gte=0"`
}

func (n nutrientFields) nutrients() nutrition.Nutrients {
	return nutrition.Nutrients{Calories: *n.Calories, Protein: *n.Protein, Carbs: *n.Carbs, Fat: *n.Fat, Fiber: *n.Fiber}
}

type foodItemRequest struct {
	ID          string `json:"id"`
	Name        string `json:"name" binding:"required"`
	ServingSize string `json:"servingSize"`
	nutrientFields
}

func toFoodItems(in []foodItemRequest) []domain.FoodItem {
	items := make([]domain.FoodItem, len(in))
	for i, it := range in {
		items[i] = domain.FoodItem{
			ID:          it.ID,
			Name:        it.Name,
			ServingSize: it.ServingSize,
			Nutrients:   it.nutrients(),
		}
	}
	return items
}

type createMealRequest struct {
	Name         string            `json:"name"`
	Category     string            `json:"category"`
	Date         string            `json:"date"`
	FoodItems    []foodItemRequest `json:"foodItems" binding:"dive"`
	PhotoDataURI string            `json:"photoDataUri"`
}

func (r createMealRequest) input() services.MealInput {
	return services.MealInput{
		Name:      r.Name,
		Category:  parseCategory(r.Category),
		Date:      r.Date,
		FoodItems: toFoodItems(r.FoodItems),
	}
}

type updateMealRequest struct {
	Name      string            `json:"name"`
	Category  string            `json:"category"`
	FoodItems []foodItemRequest `json:"foodItems" binding:"dive"`
}

type saveIdentifyRequest struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Date     string `json:"date"`
}

type identifyRequest struct {
	PhotoDataURI string `json:"photoDataUri" binding:"required"`
	ServingSize  string `json:"servingSize"`
}

type lookupRequest struct {
	Name        string `json:"name" binding:"required"`
	ServingSize string `json:"servingSize"`
}

// parseCategory accepts any casing; unknown names pass through so the
// service can reject them
func parseCategory(s string) domain.MealCategory {
	if category, ok := domain.ParseMealCategory(s); ok {
		return category
	}
	return domain.MealCategory(s)
}
