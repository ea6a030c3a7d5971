package keyboards

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Callback data understood by the callback handler
const (
	ActionToday    = "today"
	ActionWeek     = "week"
	ActionMainMenu = "main_menu"
	ActionSaveMeal = "save_meal"
	ActionDiscard  = "discard_meal"
	ActionNewPhoto = "new_photo"
)

// MainMenu creates the main menu keyboard
func MainMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📷 Log a meal", ActionNewPhoto),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📅 Today", ActionToday),
			tgbotapi.NewInlineKeyboardButtonData("📈 Week", ActionWeek),
		),
	)
}

// IdentifyResult is shown under the per-item results of a photo
func IdentifyResult(canSave bool) tgbotapi.InlineKeyboardMarkup {
	var row []tgbotapi.InlineKeyboardButton
	if canSave {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("✅ Save meal", ActionSaveMeal))
	}
	row = append(row, tgbotapi.NewInlineKeyboardButtonData("🗑️ Discard", ActionDiscard))
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

// BackToMenu creates a single-button keyboard that returns to the main menu
func BackToMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🏠 Main menu", ActionMainMenu),
		),
	)
}
