package menus

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/vladimiradmaev/macro-tracker/internal/domain"
	"github.com/vladimiradmaev/macro-tracker/internal/nutrition"
	"github.com/vladimiradmaev/macro-tracker/internal/services"
	"github.com/vladimiradmaev/macro-tracker/internal/state"
	"github.com/vladimiradmaev/macro-tracker/internal/utils"
)

// Telegram rejects captions and messages above this length
const maxMessageLength = 4000

const mainMenuText = `🥗 *Macro Tracker*

📷 Send a photo of your meal and I will:
• Identify the foods on the plate
• Estimate calories, protein, carbs, fat and fiber
• Log the meal when you press "Save meal"

💡 Put a portion size in the caption (for example "200" or "1 bowl") for better estimates.

Choose an action:`

const helpText = `Available commands:
/start - Show the main menu
/today - Today's totals against your goals
/week - Calories and macros of the last 7 days
/help - Show this message`

// MainMenuText is the greeting shown by /start
func MainMenuText() string {
	return mainMenuText
}

// HelpText lists the bot commands
func HelpText() string {
	return helpText
}

// EscapeMarkdown escapes the characters legacy Markdown treats as markup
func EscapeMarkdown(s string) string {
	r := strings.NewReplacer("_", "\\_", "*", "\\*", "[", "\\[", "]", "\\]", "`", "\\`")
	return strings.ToValidUTF8(r.Replace(s), "")
}

func truncate(s string) string {
	if len(s) <= maxMessageLength {
		return s
	}
	return strings.ToValidUTF8(s[:maxMessageLength-3], "") + "..."
}

// ServingFromCaption turns a photo caption into a serving size. A bare
// number is read as grams.
func ServingFromCaption(caption string) string {
	caption = strings.TrimSpace(caption)
	if grams, err := strconv.ParseFloat(caption, 64); err == nil && grams > 0 {
		return fmt.Sprintf("%g g", grams)
	}
	return caption
}

// DailySummary renders one day of totals against the goals
func DailySummary(s *services.DailySummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📅 *%s*\n\n", s.Date)
	for _, f := range s.Totals.Fields() {
		p := s.Progress[f.Name]
		fmt.Fprintf(&b, "%s %s: %.0f / %.0f %s (%.0f%%)\n",
			progressMark(p), strings.ToUpper(f.Name[:1])+f.Name[1:], p.Consumed, p.Goal, f.Unit, p.Ratio*100)
	}

	if len(s.Meals) == 0 {
		b.WriteString("\nNo meals logged yet.")
		return b.String()
	}
	b.WriteString("\n🍽️ *Meals:*\n")
	for _, m := range s.Meals {
		fmt.Fprintf(&b, "• %s (%s): %.0f kcal\n", EscapeMarkdown(m.Name), m.Category, m.Totals.Calories)
	}
	return truncate(b.String())
}

func progressMark(p nutrition.MacroProgress) string {
	switch {
	case p.Ratio > 1:
		return "🔴"
	case p.Ratio >= 0.8:
		return "🟢"
	default:
		return "⚪"
	}
}

// WeeklyTrend renders the seven-day calorie and macro trend
func WeeklyTrend(days []services.DayTotals) string {
	var b strings.Builder
	b.WriteString("📈 *Last 7 days*\n\n")
	for _, d := range days {
		label := d.Date
		if t, err := utils.ParseDay(d.Date, time.UTC); err == nil {
			label = t.Format("Mon 02 Jan")
		}
		fmt.Fprintf(&b, "%s: %.0f kcal · P %.0f · C %.0f · F %.0f\n",
			label, d.Calories, d.Protein, d.Carbs, d.Fat)
	}
	return b.String()
}

// IdentifySession renders the per-item results of a photo
func IdentifySession(s *state.Session) string {
	var b strings.Builder
	b.WriteString("🍽️ *Foods on the photo*\n\n")
	for _, it := range s.Items {
		name := EscapeMarkdown(it.Name)
		switch it.Status {
		case state.StatusLoaded:
			n := it.Nutrients
			fmt.Fprintf(&b, "✅ *%s*: %.0f kcal, P %.1f g, C %.1f g, F %.1f g, Fiber %.1f g\n",
				name, n.Calories, n.Protein, n.Carbs, n.Fat, n.Fiber)
		case state.StatusError:
			fmt.Fprintf(&b, "❌ *%s*: %s\n", name, EscapeMarkdown(it.Error))
		default:
			fmt.Fprintf(&b, "⏳ *%s*: still estimating\n", name)
		}
	}

	if loaded := s.Loaded(); len(loaded) > 0 {
		total := nutrition.Sum(itemNutrients(loaded))
		fmt.Fprintf(&b, "\n📊 *Total:* %.0f kcal", total.Calories)
	} else {
		b.WriteString("\nNo nutrition data could be estimated for this photo.")
	}
	return truncate(b.String())
}

func itemNutrients(items []state.ItemState) []nutrition.Nutrients {
	out := make([]nutrition.Nutrients, len(items))
	for i, it := range items {
		out[i] = it.Nutrients
	}
	return out
}

// SavedMeal confirms a logged meal
func SavedMeal(m *domain.Meal) string {
	return fmt.Sprintf("✅ Saved *%s* with %d item(s): %.0f kcal, P %.1f g, C %.1f g, F %.1f g",
		EscapeMarkdown(m.Name), len(m.FoodItems), m.Totals.Calories, m.Totals.Protein, m.Totals.Carbs, m.Totals.Fat)
}
