package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/macro-tracker/internal/bot/keyboards"
	"github.com/vladimiradmaev/macro-tracker/internal/domain"
)

// TextHandler answers free text, which the bot does not interpret
type TextHandler struct {
	api BotAPI
}

// NewTextHandler creates a new text handler
func NewTextHandler(api BotAPI) *TextHandler {
	return &TextHandler{api: api}
}

// Handle processes a text message
func (h *TextHandler) Handle(ctx context.Context, message *tgbotapi.Message, user *domain.UserProfile) error {
	msg := tgbotapi.NewMessage(message.Chat.ID, "Send me a photo of your meal, or use /today and /week to see your totals.")
	msg.ReplyMarkup = keyboards.MainMenu()
	_, err := h.api.Send(msg)
	return err
}
