package services

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/vladimiradmaev/macro-tracker/internal/domain"
	apperrors "github.com/vladimiradmaev/macro-tracker/internal/errors"
	"github.com/vladimiradmaev/macro-tracker/internal/nutrition"
)

func newAnalytics(meals *fakeMealRepo, users *fakeUserRepo) *AnalyticsService {
	s := NewAnalyticsService(meals, users, time.UTC)
	s.now = clock
	return s
}

func mealOn(id, userID, date string, totals nutrition.Nutrients) domain.Meal {
	return domain.Meal{ID: id, UserID: userID, Date: date, Totals: totals}
}

func TestDailySummaryExample(t *testing.T) {
	users := newFakeUserRepo()
	users.profiles["u1"] = &domain.UserProfile{ID: "u1", Goals: domain.Goals{Calories: 2000, Protein: 150, Carbs: 200, Fat: 60, Fiber: 30}}
	meals := newFakeMealRepo(
		mealOn("m1", "u1", "2024-01-05", nutrition.Nutrients{Calories: 300, Protein: 20, Carbs: 30, Fat: 10, Fiber: 5}),
		mealOn("m2", "u1", "2024-01-05", nutrition.Nutrients{Calories: 500, Protein: 40, Carbs: 50, Fat: 20, Fiber: 8}),
		mealOn("m3", "u1", "2024-01-04", nutrition.Nutrients{Calories: 900}),
		mealOn("m4", "u2", "2024-01-05", nutrition.Nutrients{Calories: 900}),
	)

	summary, err := newAnalytics(meals, users).Daily(context.Background(), "u1", "2024-01-05")
	if err != nil {
		t.Fatalf("Daily: %v", err)
	}

	if want := (nutrition.Nutrients{Calories: 800, Protein: 60, Carbs: 80, Fat: 30, Fiber: 13}); summary.Totals != want {
		t.Errorf("Totals = %+v, want %+v", summary.Totals, want)
	}
	wantRatios := map[string]float64{"calories": 0.40, "protein": 0.40, "carbs": 0.40, "fat": 0.50, "fiber": 0.43}
	for name, want := range wantRatios {
		if got := summary.Progress[name].Ratio; math.Abs(got-want) > 0.005 {
			t.Errorf("%s ratio = %.3f, want %.2f", name, got, want)
		}
	}
	if len(summary.Meals) != 2 {
		t.Errorf("expected 2 meals, got %d", len(summary.Meals))
	}
}

func TestDailyEmptyDay(t *testing.T) {
	summary, err := newAnalytics(newFakeMealRepo(), newFakeUserRepo()).Daily(context.Background(), "u1", "")
	if err != nil {
		t.Fatalf("Daily: %v", err)
	}
	if summary.Meals == nil || len(summary.Meals) != 0 {
		t.Errorf("expected empty non-nil meals, got %#v", summary.Meals)
	}
	if !summary.Totals.IsZero() {
		t.Errorf("Totals = %+v", summary.Totals)
	}
	if summary.Date != "2024-01-05" || summary.Goals != domain.DefaultGoals {
		t.Errorf("unexpected summary %+v", summary)
	}
}

func TestDailyReportsPersistenceFailure(t *testing.T) {
	meals := newFakeMealRepo()
	meals.err = errors.New("timeout")

	summary, err := newAnalytics(meals, newFakeUserRepo()).Daily(context.Background(), "u1", "2024-01-05")
	if summary != nil || apperrors.TypeOf(err) != apperrors.ErrorTypeDatabase {
		t.Fatalf("expected database error and no summary, got %v, %v", summary, err)
	}
}

func TestWeeklyAlwaysSevenDays(t *testing.T) {
	svc := newAnalytics(newFakeMealRepo(), newFakeUserRepo())

	for _, anchor := range []string{"2024-01-05", "2024-03-01", "2023-12-31", ""} {
		days, err := svc.Weekly(context.Background(), "u1", anchor)
		if err != nil {
			t.Fatalf("Weekly(%q): %v", anchor, err)
		}
		if len(days) != WeekLength {
			t.Fatalf("Weekly(%q) returned %d days", anchor, len(days))
		}
		for i := 1; i < len(days); i++ {
			if days[i-1].Date >= days[i].Date {
				t.Errorf("Weekly(%q) not ascending: %s then %s", anchor, days[i-1].Date, days[i].Date)
			}
		}
	}
}

func TestWeeklyBuckets(t *testing.T) {
	meals := newFakeMealRepo(
		mealOn("a", "u1", "2024-01-05", nutrition.Nutrients{Calories: 300}),
		mealOn("b", "u1", "2024-01-05", nutrition.Nutrients{Calories: 500}),
		mealOn("c", "u1", "2023-12-30", nutrition.Nutrients{Calories: 100, Protein: 7}),
		mealOn("d", "u1", "2023-12-29", nutrition.Nutrients{Calories: 1000}),
	)

	days, err := newAnalytics(meals, newFakeUserRepo()).Weekly(context.Background(), "u1", "2024-01-05")
	if err != nil {
		t.Fatalf("Weekly: %v", err)
	}
	if days[0].Date != "2023-12-30" || days[6].Date != "2024-01-05" {
		t.Fatalf("unexpected window %s..%s", days[0].Date, days[6].Date)
	}
	if days[0].Calories != 100 || days[0].Protein != 7 {
		t.Errorf("first bucket = %+v", days[0])
	}
	if days[6].Calories != 800 {
		t.Errorf("anchor bucket = %+v", days[6])
	}
	for _, d := range days[1:6] {
		if !d.Nutrients.IsZero() {
			t.Errorf("%s should be empty, got %+v", d.Date, d.Nutrients)
		}
	}
}

func TestBucketByDayFallsBackToCreatedAt(t *testing.T) {
	days := []string{"2024-01-04", "2024-01-05"}
	meals := []domain.Meal{
		{Date: "2024-01-04", Totals: nutrition.Nutrients{Calories: 10}, CreatedAt: fixedNow},
		{Date: "", Totals: nutrition.Nutrients{Calories: 20}, CreatedAt: fixedNow},
		{Date: "garbage", Totals: nutrition.Nutrients{Calories: 40}, CreatedAt: fixedNow},
		{Date: "2024-02-01", Totals: nutrition.Nutrients{Calories: 80}},
	}

	got := BucketByDay(days, meals, time.UTC)
	if got[0].Calories != 10 || got[1].Calories != 60 {
		t.Errorf("buckets = %+v", got)
	}
}

func TestWeeklyRejectsBadAnchor(t *testing.T) {
	_, err := newAnalytics(newFakeMealRepo(), newFakeUserRepo()).Weekly(context.Background(), "u1", "yesterday")
	if apperrors.TypeOf(err) != apperrors.ErrorTypeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
