package services

import (
	"context"
	"errors"
	"time"

	"github.com/vladimiradmaev/macro-tracker/internal/domain"
	apperrors "github.com/vladimiradmaev/macro-tracker/internal/errors"
	"github.com/vladimiradmaev/macro-tracker/internal/nutrition"
	"github.com/vladimiradmaev/macro-tracker/internal/utils"
)

// WeekLength is the number of days in the weekly trend
const WeekLength = 7

// DailySummary is one day of meals against the user's goals
type DailySummary struct {
	Date     string                   `json:"date"`
	Meals    []domain.Meal            `json:"meals"`
	Totals   nutrition.Nutrients      `json:"totals"`
	Goals    domain.Goals             `json:"goals"`
	Progress nutrition.ProgressReport `json:"progress"`
}

// DayTotals is one bucket of the weekly trend
type DayTotals struct {
	Date string `json:"date"`
	nutrition.Nutrients
}

type AnalyticsService struct {
	meals domain.MealRepository
	users domain.UserRepository
	loc   *time.Location
	now   func() time.Time
}

func NewAnalyticsService(meals domain.MealRepository, users domain.UserRepository, loc *time.Location) *AnalyticsService {
	return &AnalyticsService{meals: meals, users: users, loc: loc, now: time.Now}
}

// Daily sums the meals logged for date. An empty date means today.
func (s *AnalyticsService) Daily(ctx context.Context, userID, date string) (*DailySummary, error) {
	day, err := s.resolveDay(date)
	if err != nil {
		return nil, err
	}

	goals, err := s.goals(ctx, userID)
	if err != nil {
		return nil, err
	}

	meals, err := s.meals.ListByDate(ctx, userID, day)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	if meals == nil {
		meals = []domain.Meal{}
	}

	totals := nutrition.Sum(meals)
	return &DailySummary{
		Date:     day,
		Meals:    meals,
		Totals:   totals,
		Goals:    goals,
		Progress: nutrition.Progress(totals, goals),
	}, nil
}

// Weekly returns seven day buckets ending at anchor, oldest first
func (s *AnalyticsService) Weekly(ctx context.Context, userID, anchor string) ([]DayTotals, error) {
	day, err := s.resolveDay(anchor)
	if err != nil {
		return nil, err
	}
	anchorTime, _ := utils.ParseDay(day, s.loc)
	days := utils.WindowDays(anchorTime, WeekLength, s.loc)

	meals, err := s.meals.ListByDateRange(ctx, userID, days[0], days[len(days)-1])
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return BucketByDay(days, meals, s.loc), nil
}

// BucketByDay adds each meal's totals into the bucket of its day. Meals
// falling outside days are ignored, and every day gets a bucket.
func BucketByDay(days []string, meals []domain.Meal, loc *time.Location) []DayTotals {
	buckets := make([]DayTotals, len(days))
	index := make(map[string]int, len(days))
	for i, d := range days {
		buckets[i] = DayTotals{Date: d}
		index[d] = i
	}

	for _, m := range meals {
		i, ok := index[mealDay(m, loc)]
		if !ok {
			continue
		}
		buckets[i].Nutrients = buckets[i].Nutrients.Add(m.Totals)
	}
	return buckets
}

// mealDay is the day a meal counts towards: its logged date, or the day it
// was created when the date is missing
func mealDay(m domain.Meal, loc *time.Location) string {
	if m.Date != "" {
		if _, err := utils.ParseDay(m.Date, loc); err == nil {
			return m.Date
		}
	}
	if m.CreatedAt.IsZero() {
		return ""
	}
	return utils.FormatDay(m.CreatedAt.In(loc))
}

func (s *AnalyticsService) resolveDay(date string) (string, error) {
	if date == "" {
		return utils.FormatDay(s.now().In(s.loc)), nil
	}
	if _, err := utils.ParseDay(date, s.loc); err != nil {
		return "", apperrors.NewValidationError(err.Error())
	}
	return date, nil
}

// goals falls back to the defaults for users without a stored profile
func (s *AnalyticsService) goals(ctx context.Context, userID string) (domain.Goals, error) {
	profile, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.DefaultGoals, nil
	}
	if err != nil {
		return domain.Goals{}, apperrors.NewDatabaseError(err)
	}
	return profile.Goals, nil
}
