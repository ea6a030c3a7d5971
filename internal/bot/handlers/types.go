package handlers

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/macro-tracker/internal/interfaces"
)

// BotAPI is the part of *tgbotapi.BotAPI the handlers use
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

// Dependencies holds all service dependencies for handlers
type Dependencies struct {
	Users     interfaces.UserServiceInterface
	Analytics interfaces.AnalyticsServiceInterface
	Identify  interfaces.IdentifyServiceInterface
}

// sendMarkdown sends text as Markdown and retries as plain text when
// Telegram rejects the markup.
func sendMarkdown(api BotAPI, chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	if _, err := api.Send(msg); err != nil {
		msg.ParseMode = ""
		if _, err := api.Send(msg); err != nil {
			return err
		}
	}
	return nil
}
