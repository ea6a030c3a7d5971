package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vladimiradmaev/macro-tracker/internal/domain"
	apperrors "github.com/vladimiradmaev/macro-tracker/internal/errors"
	"github.com/vladimiradmaev/macro-tracker/internal/logger"
	"github.com/vladimiradmaev/macro-tracker/internal/state"
)

const identifiedMealName = "Identified Meal"

// Publisher receives every item update of a session
type Publisher interface {
	Publish(userID string, payload any)
}

type mealCreator interface {
	Create(ctx context.Context, userID string, in MealInput, photo *domain.Image) (*domain.Meal, error)
}

// lookupRun tracks the background lookups of one session
type lookupRun struct {
	sessionID string
	cancel    context.CancelFunc
	done      chan struct{}
}

type IdentifyService struct {
	identifier    domain.FoodIdentifier
	estimator     domain.NutritionEstimator
	sessions      state.SessionStore
	meals         mealCreator
	publisher     Publisher
	lookupTimeout time.Duration
	now           func() time.Time

	mu     sync.Mutex
	byUser map[string]*lookupRun
	byID   map[string]*lookupRun
}

func NewIdentifyService(
	identifier domain.FoodIdentifier,
	estimator domain.NutritionEstimator,
	sessions state.SessionStore,
	meals *MealService,
	publisher Publisher,
	lookupTimeout time.Duration,
) *IdentifyService {
	if lookupTimeout <= 0 {
		lookupTimeout = 20 * time.Second
	}
	return &IdentifyService{
		identifier:    identifier,
		estimator:     estimator,
		sessions:      sessions,
		meals:         meals,
		publisher:     publisher,
		lookupTimeout: lookupTimeout,
		now:           time.Now,
		byUser:        make(map[string]*lookupRun),
		byID:          make(map[string]*lookupRun),
	}
}

// LookupAll estimates every name concurrently and blocks until all are done.
// Each lookup has its own timeout; a failure only marks its own item.
func (s *IdentifyService) LookupAll(ctx context.Context, names []string, servingSize string, onUpdate func(state.ItemState)) {
	if servingSize == "" {
		servingSize = defaultServing
	}

	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			onUpdate(s.lookupOne(ctx, i, name, servingSize))
		}(i, name)
	}
	wg.Wait()
}

func (s *IdentifyService) lookupOne(ctx context.Context, index int, name, servingSize string) state.ItemState {
	item := state.ItemState{Index: index, Name: name, ServingSize: servingSize, Status: state.StatusError}

	lookupCtx, cancel := context.WithTimeout(ctx, s.lookupTimeout)
	defer cancel()

	nutrients, err := s.estimator.LookupMacros(lookupCtx, name, servingSize)
	if err == nil {
		if verr := nutrients.Validate(); verr != nil {
			item.Error = verr.Error()
			return item
		}
		item.Status = state.StatusLoaded
		item.Nutrients = nutrients
		return item
	}

	switch {
	case errors.Is(lookupCtx.Err(), context.DeadlineExceeded):
		item.Error = "lookup timed out"
	case ctx.Err() != nil:
		item.Error = "lookup cancelled"
	default:
		logger.Warn("Macro lookup failed", "food", name, "error", err)
		item.Error = "could not estimate nutrition"
	}
	return item
}

// Start identifies the foods in img and begins looking them up in the
// background. Any earlier session of the user is reset first.
func (s *IdentifyService) Start(ctx context.Context, userID string, img domain.Image, servingSize string) (*state.Session, error) {
	if len(img.Data) == 0 {
		return nil, apperrors.NewValidationError("an image is required")
	}
	if !strings.HasPrefix(img.MIMEType, "image/") {
		return nil, apperrors.NewValidationError("file must be an image")
	}
	if servingSize = strings.TrimSpace(servingSize); servingSize == "" {
		servingSize = defaultServing
	}

	names, err := s.identifier.IdentifyFoods(ctx, img)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperrors.NewTimeoutError("food identification")
		}
		return nil, apperrors.NewExternalAPIError(err, "food identification")
	}
	if len(names) == 0 {
		return nil, apperrors.New(apperrors.ErrorTypeExternal, "NO_FOOD_IDENTIFIED", "no food items could be identified in the photo")
	}

	if err := s.Reset(ctx, userID); err != nil {
		return nil, err
	}

	session := &state.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Image:     &img,
		CreatedAt: s.now(),
		Items:     make([]state.ItemState, len(names)),
	}
	for i, name := range names {
		session.Items[i] = state.ItemState{
			SessionID:   session.ID,
			Index:       i,
			Name:        name,
			ServingSize: servingSize,
			Status:      state.StatusLoading,
		}
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	// lookups outlive the request that started them
	runCtx, cancel := context.WithCancel(context.Background())
	run := &lookupRun{sessionID: session.ID, cancel: cancel, done: make(chan struct{})}
	s.mu.Lock()
	s.byUser[userID] = run
	s.byID[session.ID] = run
	s.mu.Unlock()

	log := logger.WithFields("user_id", userID, "session_id", session.ID)
	go func() {
		defer close(run.done)
		defer s.forget(userID, run)
		defer cancel()

		s.LookupAll(runCtx, names, servingSize, func(item state.ItemState) {
			item.SessionID = session.ID
			s.record(log, userID, item)
		})
		log.Debug("Identification finished", "cancelled", runCtx.Err() != nil)
	}()

	log.Info("Identification started", "items", len(names))
	return session, nil
}

// record writes one item result; results for a cleared session are dropped
func (s *IdentifyService) record(log *slog.Logger, userID string, item state.ItemState) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.sessions.UpdateItem(ctx, item.SessionID, item); err != nil {
		if errors.Is(err, state.ErrNoSession) {
			log.Debug("Dropping result for discarded session", "index", item.Index)
			return
		}
		log.Error("Failed to store lookup result", "index", item.Index, "error", err)
		return
	}
	if s.publisher != nil {
		s.publisher.Publish(userID, item)
	}
}

func (s *IdentifyService) forget(userID string, run *lookupRun) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.byUser[userID] == run {
		delete(s.byUser, userID)
	}
	delete(s.byID, run.sessionID)
}

// Reset cancels the user's in-flight lookups and discards the session
func (s *IdentifyService) Reset(ctx context.Context, userID string) error {
	s.mu.Lock()
	if run, ok := s.byUser[userID]; ok {
		run.cancel()
		delete(s.byUser, userID)
	}
	s.mu.Unlock()

	if err := s.sessions.Clear(ctx, userID); err != nil {
		return apperrors.NewInternalError(err)
	}
	return nil
}

// Current returns a snapshot of the user's session
func (s *IdentifyService) Current(ctx context.Context, userID string) (*state.Session, error) {
	session, err := s.sessions.Current(ctx, userID)
	if err != nil {
		if errors.Is(err, state.ErrNoSession) {
			return nil, apperrors.ErrNoSession
		}
		return nil, apperrors.NewInternalError(err)
	}
	return session, nil
}

// Wait blocks until no item of the session is loading any more
func (s *IdentifyService) Wait(ctx context.Context, userID, sessionID string) (*state.Session, error) {
	s.mu.Lock()
	run := s.byID[sessionID]
	s.mu.Unlock()

	if run != nil {
		select {
		case <-run.done:
		case <-ctx.Done():
			return nil, apperrors.NewTimeoutError("identification")
		}
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, state.ErrNoSession) {
			return nil, apperrors.ErrNoSession
		}
		return nil, apperrors.NewInternalError(err)
	}
	if session.UserID != userID {
		return nil, apperrors.ErrNoSession
	}
	return session, nil
}

// SaveSession turns the loaded items of the current session into a meal.
// Failed and unfinished items are left out.
func (s *IdentifyService) SaveSession(ctx context.Context, userID string, in MealInput) (*domain.Meal, error) {
	session, err := s.Current(ctx, userID)
	if err != nil {
		return nil, err
	}

	loaded := session.Loaded()
	if len(loaded) == 0 {
		return nil, apperrors.NewValidationError("no identified food item has nutrition data yet")
	}

	in.FoodItems = make([]domain.FoodItem, len(loaded))
	for i, it := range loaded {
		in.FoodItems[i] = domain.FoodItem{
			ID:          uuid.NewString(),
			Name:        it.Name,
			ServingSize: it.ServingSize,
			Nutrients:   it.Nutrients,
		}
	}
	if strings.TrimSpace(in.Name) == "" {
		in.Name = identifiedMealName
	}

	meal, err := s.meals.Create(ctx, userID, in, session.Image)
	if err != nil {
		return nil, err
	}

	if err := s.Reset(ctx, userID); err != nil {
		logger.Warn("Failed to clear saved identification session", "user_id", userID, "error", err)
	}
	return meal, nil
}

// Lookup estimates a single manually entered food
func (s *IdentifyService) Lookup(ctx context.Context, name, servingSize string) (*domain.FoodItem, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("food name is required")
	}
	if servingSize = strings.TrimSpace(servingSize); servingSize == "" {
		servingSize = defaultServing
	}

	lookupCtx, cancel := context.WithTimeout(ctx, s.lookupTimeout)
	defer cancel()

	nutrients, err := s.estimator.LookupMacros(lookupCtx, name, servingSize)
	if err != nil {
		if errors.Is(lookupCtx.Err(), context.DeadlineExceeded) {
			return nil, apperrors.NewTimeoutError("nutrition lookup")
		}
		return nil, apperrors.NewExternalAPIError(err, "nutrition lookup")
	}
	if err := nutrients.Validate(); err != nil {
		return nil, apperrors.NewExternalAPIError(err, "nutrition lookup")
	}

	return &domain.FoodItem{
		ID:          uuid.NewString(),
		Name:        name,
		ServingSize: servingSize,
		Nutrients:   nutrients,
	}, nil
}
