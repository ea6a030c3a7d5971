package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/macro-tracker/internal/bot/keyboards"
	"github.com/vladimiradmaev/macro-tracker/internal/bot/menus"
	"github.com/vladimiradmaev/macro-tracker/internal/domain"
	"github.com/vladimiradmaev/macro-tracker/internal/logger"
)

const (
	maxPhotoBytes = 10 << 20
	waitTimeout   = 60 * time.Second
)

// PhotoHandler handles photo messages
type PhotoHandler struct {
	api      BotAPI
	deps     Dependencies
	download func(ctx context.Context, url string) ([]byte, error)
}

// NewPhotoHandler creates a new photo handler
func NewPhotoHandler(api BotAPI, deps Dependencies) *PhotoHandler {
	client := &http.Client{Timeout: 30 * time.Second}
	return &PhotoHandler{
		api:  api,
		deps: deps,
		download: func(ctx context.Context, url string) ([]byte, error) {
			return downloadFile(ctx, client, url)
		},
	}
}

func downloadFile(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxPhotoBytes))
}

// Handle identifies the foods on the largest version of the photo and
// replies once every lookup finished.
func (h *PhotoHandler) Handle(ctx context.Context, message *tgbotapi.Message, user *domain.UserProfile) error {
	chatID := message.Chat.ID
	photo := message.Photo[len(message.Photo)-1]

	fileURL, err := h.api.GetFileDirectURL(photo.FileID)
	if err != nil {
		return fmt.Errorf("failed to get file: %w", err)
	}
	data, err := h.download(ctx, fileURL)
	if err != nil {
		logger.Error("Failed to download photo", "user_id", user.ID, "error", err)
		return sendMarkdown(h.api, chatID, "Could not download the photo. Please send it again.", keyboards.BackToMenu())
	}

	processing, err := h.api.Send(tgbotapi.NewMessage(chatID, "🔍 Identifying foods..."))
	if err != nil {
		return fmt.Errorf("failed to send processing message: %w", err)
	}
	defer func() {
		if _, err := h.api.Request(tgbotapi.NewDeleteMessage(chatID, processing.MessageID)); err != nil {
			logger.Debug("Failed to delete processing message", "error", err)
		}
	}()

	img := domain.Image{Data: data, MIMEType: http.DetectContentType(data)}
	if !strings.HasPrefix(img.MIMEType, "image/") {
		img.MIMEType = "image/jpeg"
	}

	servingSize := menus.ServingFromCaption(message.Caption)
	session, err := h.deps.Identify.Start(ctx, user.ID, img, servingSize)
	if err != nil {
		logger.Warn("Photo identification failed", "user_id", user.ID, "error", err)
		return sendMarkdown(h.api, chatID, userMessage(err, "Sorry, the photo could not be analyzed. Please try again in a few minutes."), keyboards.BackToMenu())
	}

	waitCtx, cancel := context.WithTimeout(ctx, waitTimeout)
	defer cancel()
	if done, err := h.deps.Identify.Wait(waitCtx, user.ID, session.ID); err == nil {
		session = done
	} else {
		logger.Warn("Stopped waiting for lookups", "user_id", user.ID, "session_id", session.ID, "error", err)
	}

	return sendMarkdown(h.api, chatID, menus.IdentifySession(session), keyboards.IdentifyResult(len(session.Loaded()) > 0))
}
