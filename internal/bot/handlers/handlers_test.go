package handlers

import (
	"context"
	"strings"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/macro-tracker/internal/bot/keyboards"
	"github.com/vladimiradmaev/macro-tracker/internal/domain"
	apperrors "github.com/vladimiradmaev/macro-tracker/internal/errors"
	"github.com/vladimiradmaev/macro-tracker/internal/interfaces"
	"github.com/vladimiradmaev/macro-tracker/internal/nutrition"
	"github.com/vladimiradmaev/macro-tracker/internal/services"
	"github.com/vladimiradmaev/macro-tracker/internal/state"
)

type fakeAPI struct {
	mu       sync.Mutex
	sent     []tgbotapi.MessageConfig
	requests int
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{MessageID: len(f.sent)}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests++
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetFileDirectURL(fileID string) (string, error) {
	return "https://files.test/" + fileID, nil
}

func (f *fakeAPI) last(t *testing.T) tgbotapi.MessageConfig {
	t.Helper()
	if len(f.sent) == 0 {
		t.Fatal("no message sent")
	}
	return f.sent[len(f.sent)-1]
}

type fakeUsers struct {
	interfaces.UserServiceInterface
}

func (fakeUsers) GetOrCreateByTelegram(ctx context.Context, telegramID int64, name string) (*domain.UserProfile, error) {
	return &domain.UserProfile{ID: "u1", DisplayName: name, Goals: domain.DefaultGoals}, nil
}

type fakeAnalytics struct{}

func (fakeAnalytics) Daily(ctx context.Context, userID, date string) (*services.DailySummary, error) {
	totals := nutrition.Nutrients{Calories: 1000, Protein: 75, Carbs: 125, Fat: 30, Fiber: 10}
	return &services.DailySummary{
		Date:     "2024-01-05",
		Totals:   totals,
		Goals:    domain.DefaultGoals,
		Progress: nutrition.Progress(totals, domain.DefaultGoals),
	}, nil
}

func (fakeAnalytics) Weekly(ctx context.Context, userID, anchor string) ([]services.DayTotals, error) {
	return []services.DayTotals{{Date: "2024-01-05"}}, nil
}

type fakeIdentify struct {
	interfaces.IdentifyServiceInterface
	startErr error
	started  []string
	saved    int
	resets   int
}

func (f *fakeIdentify) Start(ctx context.Context, userID string, img domain.Image, servingSize string) (*state.Session, error) {
	if f.startErr != nil {
		return nil, f.startErr
	}
	f.started = append(f.started, servingSize)
	return &state.Session{ID: "s1", UserID: userID, Items: []state.ItemState{
		{Index: 0, Name: "Toast", Status: state.StatusLoading},
		{Index: 1, Name: "Jam", Status: state.StatusLoading},
	}}, nil
}

func (f *fakeIdentify) Wait(ctx context.Context, userID, sessionID string) (*state.Session, error) {
	return &state.Session{ID: sessionID, UserID: userID, Items: []state.ItemState{
		{Index: 0, Name: "Toast", Status: state.StatusLoaded, Nutrients: nutrition.Nutrients{Calories: 150, Carbs: 28}},
		{Index: 1, Name: "Jam", Status: state.StatusError, Error: "lookup timed out"},
	}}, nil
}

func (f *fakeIdentify) SaveSession(ctx context.Context, userID string, in services.MealInput) (*domain.Meal, error) {
	f.saved++
	return &domain.Meal{ID: "m1", Name: "Identified Meal", FoodItems: make([]domain.FoodItem, 1), Totals: nutrition.Nutrients{Calories: 150}}, nil
}

func (f *fakeIdentify) Reset(ctx context.Context, userID string) error {
	f.resets++
	return nil
}

func newHandler(identify *fakeIdentify) (*UpdateHandler, *fakeAPI) {
	api := &fakeAPI{}
	h := NewUpdateHandler(api, Dependencies{Users: fakeUsers{}, Analytics: fakeAnalytics{}, Identify: identify})
	h.photoHandler.download = func(ctx context.Context, url string) ([]byte, error) {
		return []byte("\xff\xd8\xff\xe0 jpeg"), nil
	}
	return h, api
}

func commandUpdate(text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		From:     &tgbotapi.User{ID: 42, FirstName: "Ann"},
		Chat:     &tgbotapi.Chat{ID: 7},
		Text:     text,
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(text)}},
	}}
}

func photoUpdate(caption string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		From:    &tgbotapi.User{ID: 42, FirstName: "Ann"},
		Chat:    &tgbotapi.Chat{ID: 7},
		Caption: caption,
		Photo:   []tgbotapi.PhotoSize{{FileID: "small"}, {FileID: "large"}},
	}}
}

func callbackUpdate(data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb1",
		From:    &tgbotapi.User{ID: 42},
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 7}},
		Data:    data,
	}}
}

func hasButton(markup interface{}, data string) bool {
	kb, ok := markup.(tgbotapi.InlineKeyboardMarkup)
	if !ok {
		return false
	}
	for _, row := range kb.InlineKeyboard {
		for _, b := range row {
			if b.CallbackData != nil && *b.CallbackData == data {
				return true
			}
		}
	}
	return false
}

func TestStartCommandShowsMenu(t *testing.T) {
	h, api := newHandler(&fakeIdentify{})
	if err := h.Handle(context.Background(), commandUpdate("/start")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	msg := api.last(t)
	if !strings.Contains(msg.Text, "Macro Tracker") || !hasButton(msg.ReplyMarkup, keyboards.ActionToday) {
		t.Errorf("unexpected menu %q", msg.Text)
	}
}

func TestTodayCommand(t *testing.T) {
	h, api := newHandler(&fakeIdentify{})
	if err := h.Handle(context.Background(), commandUpdate("/today")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text := api.last(t).Text; !strings.Contains(text, "Calories: 1000 / 2000 kcal (50%)") {
		t.Errorf("unexpected summary %q", text)
	}
}

func TestPhotoRepliesWithResults(t *testing.T) {
	identify := &fakeIdentify{}
	h, api := newHandler(identify)
	var url string
	h.photoHandler.download = func(ctx context.Context, u string) ([]byte, error) {
		url = u
		return []byte("\xff\xd8\xff\xe0 jpeg"), nil
	}

	if err := h.Handle(context.Background(), photoUpdate("150")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if url != "https://files.test/large" {
		t.Errorf("largest photo not used, got %q", url)
	}
	if len(identify.started) != 1 || identify.started[0] != "150 g" {
		t.Errorf("unexpected serving sizes %v", identify.started)
	}

	msg := api.last(t)
	if !strings.Contains(msg.Text, "Toast") || !strings.Contains(msg.Text, "lookup timed out") {
		t.Errorf("unexpected results %q", msg.Text)
	}
	if !hasButton(msg.ReplyMarkup, keyboards.ActionSaveMeal) {
		t.Error("save button missing")
	}
	if api.requests == 0 {
		t.Error("processing message was not deleted")
	}
}

func TestPhotoWithoutFood(t *testing.T) {
	identify := &fakeIdentify{startErr: apperrors.New(apperrors.ErrorTypeExternal, "NO_FOOD_IDENTIFIED", "no food items could be identified in the photo")}
	h, api := newHandler(identify)

	if err := h.Handle(context.Background(), photoUpdate("")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	msg := api.last(t)
	if msg.Text != "no food items could be identified in the photo" {
		t.Errorf("unexpected message %q", msg.Text)
	}
	if hasButton(msg.ReplyMarkup, keyboards.ActionSaveMeal) {
		t.Error("save button offered without a session")
	}
}

func TestSaveAndDiscardCallbacks(t *testing.T) {
	identify := &fakeIdentify{}
	h, api := newHandler(identify)

	if err := h.Handle(context.Background(), callbackUpdate(keyboards.ActionSaveMeal)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if identify.saved != 1 || !strings.Contains(api.last(t).Text, "Identified Meal") {
		t.Errorf("meal not saved: %q", api.last(t).Text)
	}

	if err := h.Handle(context.Background(), callbackUpdate(keyboards.ActionDiscard)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if identify.resets != 1 {
		t.Errorf("expected one reset, got %d", identify.resets)
	}
}

func TestUpdateWithoutSenderIgnored(t *testing.T) {
	h, api := newHandler(&fakeIdentify{})
	if err := h.Handle(context.Background(), tgbotapi.Update{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(api.sent) != 0 {
		t.Error("nothing should be sent")
	}
}
