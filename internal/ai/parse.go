package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/vladimiradmaev/macro-tracker/internal/nutrition"
)

// extractJSON attempts to extract a JSON object from s, which the model may
// wrap in a code block or other text.
func extractJSON(s string) string {
	start := strings.Index(s, "{")
	if start == -1 {
		return ""
	}
	end := strings.LastIndex(s, "}")
	if end == -1 || end <= start {
		return ""
	}
	return s[start : end+1]
}

var errNoJSON = errors.New("no valid JSON found in response")

func parseFoodItems(text string) ([]string, error) {
	jsonStr := extractJSON(text)
	if jsonStr == "" {
		return nil, errNoJSON
	}

	var out struct {
		FoodItems []string `json:"foodItems"`
	}
	if err := json.Unmarshal([]byte(jsonStr), &out); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	names := make([]string, 0, len(out.FoodItems))
	for _, name := range out.FoodItems {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

// parseMacros requires all five numbers. A missing field is an error rather
// than a zero.
func parseMacros(text string) (nutrition.Nutrients, error) {
	jsonStr := extractJSON(text)
	if jsonStr == "" {
		return nutrition.Nutrients{}, errNoJSON
	}

	var out struct {
		Calories *float64 `json:"calories"`
		Protein  *float64 `json:"protein"`
		Carbs    *float64 `json:"carbs"`
		Fat      *float64 `json:"fat"`
		Fiber    *float64 `json:"fiber"`
	}
	if err := json.Unmarshal([]byte(jsonStr), &out); err != nil {
		return nutrition.Nutrients{}, fmt.Errorf("failed to parse response: %w", err)
	}

	fields := []struct {
		name  string
		value *float64
	}{
		{"calories", out.Calories},
		{"protein", out.Protein},
		{"carbs", out.Carbs},
		{"fat", out.Fat},
		{"fiber", out.Fiber},
	}
	var missing []string
	for _, f := range fields {
		if f.value == nil {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return nutrition.Nutrients{}, fmt.Errorf("response is missing %s", strings.Join(missing, ", "))
	}

	n := nutrition.Nutrients{
		Calories: *out.Calories,
		Protein:  *out.Protein,
		Carbs:    *out.Carbs,
		Fat:      *out.Fat,
		Fiber:    *out.Fiber,
	}
	if err := n.Validate(); err != nil {
		return nutrition.Nutrients{}, fmt.Errorf("invalid estimate: %w", err)
	}
	return n, nil
}
