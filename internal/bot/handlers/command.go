package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/macro-tracker/internal/bot/keyboards"
	"github.com/vladimiradmaev/macro-tracker/internal/bot/menus"
	"github.com/vladimiradmaev/macro-tracker/internal/domain"
	"github.com/vladimiradmaev/macro-tracker/internal/logger"
)

// CommandHandler handles bot commands
type CommandHandler struct {
	api  BotAPI
	deps Dependencies
}

// NewCommandHandler creates a new command handler
func NewCommandHandler(api BotAPI, deps Dependencies) *CommandHandler {
	return &CommandHandler{
		api:  api,
		deps: deps,
	}
}

// Handle processes a command message
func (h *CommandHandler) Handle(ctx context.Context, message *tgbotapi.Message, user *domain.UserProfile) error {
	logger.Info("Handling command", "command", message.Command(), "user_id", user.ID)

	chatID := message.Chat.ID
	switch message.Command() {
	case "start":
		return sendMarkdown(h.api, chatID, menus.MainMenuText(), keyboards.MainMenu())
	case "today":
		return sendToday(ctx, h.api, h.deps, chatID, user)
	case "week":
		return sendWeek(ctx, h.api, h.deps, chatID, user)
	case "help":
		_, err := h.api.Send(tgbotapi.NewMessage(chatID, menus.HelpText()))
		return err
	default:
		_, err := h.api.Send(tgbotapi.NewMessage(chatID, "Unknown command. Use /help to see the available commands."))
		return err
	}
}

func sendToday(ctx context.Context, api BotAPI, deps Dependencies, chatID int64, user *domain.UserProfile) error {
	summary, err := deps.Analytics.Daily(ctx, user.ID, "")
	if err != nil {
		logger.Error("Failed to build daily summary", "user_id", user.ID, "error", err)
		return sendMarkdown(api, chatID, userMessage(err, "Could not load today's totals. Please try again."), keyboards.BackToMenu())
	}
	return sendMarkdown(api, chatID, menus.DailySummary(summary), keyboards.MainMenu())
}

func sendWeek(ctx context.Context, api BotAPI, deps Dependencies, chatID int64, user *domain.UserProfile) error {
	days, err := deps.Analytics.Weekly(ctx, user.ID, "")
	if err != nil {
		logger.Error("Failed to build weekly trend", "user_id", user.ID, "error", err)
		return sendMarkdown(api, chatID, userMessage(err, "Could not load the weekly trend. Please try again."), keyboards.BackToMenu())
	}
	return sendMarkdown(api, chatID, menus.WeeklyTrend(days), keyboards.MainMenu())
}
