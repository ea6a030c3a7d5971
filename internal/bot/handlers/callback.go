package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/macro-tracker/internal/bot/keyboards"
	"github.com/vladimiradmaev/macro-tracker/internal/bot/menus"
	"github.com/vladimiradmaev/macro-tracker/internal/domain"
	"github.com/vladimiradmaev/macro-tracker/internal/logger"
	"github.com/vladimiradmaev/macro-tracker/internal/services"
)

// CallbackHandler handles callback query messages
type CallbackHandler struct {
	api  BotAPI
	deps Dependencies
}

// NewCallbackHandler creates a new callback handler
func NewCallbackHandler(api BotAPI, deps Dependencies) *CallbackHandler {
	return &CallbackHandler{
		api:  api,
		deps: deps,
	}
}

// Handle processes a callback query
func (h *CallbackHandler) Handle(ctx context.Context, query *tgbotapi.CallbackQuery, user *domain.UserProfile) error {
	// Answer the callback query first
	if _, err := h.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		logger.Warn("Failed to answer callback query", "error", err)
	}
	if query.Message == nil {
		return nil
	}

	chatID := query.Message.Chat.ID
	switch query.Data {
	case keyboards.ActionSaveMeal:
		return h.handleSaveMeal(ctx, chatID, user)
	case keyboards.ActionDiscard:
		return h.handleDiscard(ctx, chatID, user)
	case keyboards.ActionToday:
		return sendToday(ctx, h.api, h.deps, chatID, user)
	case keyboards.ActionWeek:
		return sendWeek(ctx, h.api, h.deps, chatID, user)
	case keyboards.ActionNewPhoto:
		return sendMarkdown(h.api, chatID, "📷 Send a photo of your meal. You can put the portion size in the caption.", keyboards.BackToMenu())
	case keyboards.ActionMainMenu:
		return sendMarkdown(h.api, chatID, menus.MainMenuText(), keyboards.MainMenu())
	default:
		_, err := h.api.Send(tgbotapi.NewMessage(chatID, "Unknown action. Use /start to open the menu."))
		return err
	}
}

func (h *CallbackHandler) handleSaveMeal(ctx context.Context, chatID int64, user *domain.UserProfile) error {
	meal, err := h.deps.Identify.SaveSession(ctx, user.ID, services.MealInput{})
	if err != nil {
		logger.Warn("Failed to save identified meal", "user_id", user.ID, "error", err)
		return sendMarkdown(h.api, chatID, userMessage(err, "Could not save the meal. Please try again."), keyboards.BackToMenu())
	}
	logger.Info("Meal saved from Telegram", "user_id", user.ID, "meal_id", meal.ID)
	return sendMarkdown(h.api, chatID, menus.SavedMeal(meal), keyboards.MainMenu())
}

func (h *CallbackHandler) handleDiscard(ctx context.Context, chatID int64, user *domain.UserProfile) error {
	if err := h.deps.Identify.Reset(ctx, user.ID); err != nil {
		logger.Error("Failed to discard identification", "user_id", user.ID, "error", err)
		return sendMarkdown(h.api, chatID, "Could not discard the results. Please try again.", keyboards.BackToMenu())
	}
	return sendMarkdown(h.api, chatID, "🗑️ Discarded. Send another photo whenever you are ready.", keyboards.MainMenu())
}
