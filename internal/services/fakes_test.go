package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/vladimiradmaev/macro-tracker/internal/domain"
	"github.com/vladimiradmaev/macro-tracker/internal/nutrition"
	"github.com/vladimiradmaev/macro-tracker/internal/storage"
)

var fixedNow = time.Date(2024, 1, 5, 18, 30, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

type fakeUserRepo struct {
	mu       sync.Mutex
	profiles map[string]*domain.UserProfile
	hashes   map[string]string
	err      error
	// weights receives weigh-ins from UpdateProfile, committed together
	// with the profile or not at all
	weights *fakeWeightRepo
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{profiles: map[string]*domain.UserProfile{}, hashes: map[string]string{}}
}

func (r *fakeUserRepo) CreateWithCredentials(ctx context.Context, p *domain.UserProfile, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	for _, existing := range r.profiles {
		if p.Email != "" && existing.Email == p.Email {
			return domain.ErrDuplicate
		}
		if p.TelegramID != nil && existing.TelegramID != nil && *existing.TelegramID == *p.TelegramID {
			return domain.ErrDuplicate
		}
	}
	c := *p
	r.profiles[p.ID] = &c
	if hash != "" {
		r.hashes[p.Email] = hash
	}
	return nil
}

func (r *fakeUserRepo) Create(ctx context.Context, p *domain.UserProfile) error {
	return r.CreateWithCredentials(ctx, p, "")
}

func (r *fakeUserRepo) GetByID(ctx context.Context, userID string) (*domain.UserProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	p, ok := r.profiles[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *p
	return &c, nil
}

func (r *fakeUserRepo) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.UserProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.profiles {
		if p.TelegramID != nil && *p.TelegramID == telegramID {
			c := *p
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeUserRepo) GetCredentials(ctx context.Context, email string) (*domain.Credentials, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.profiles {
		if p.Email == email {
			return &domain.Credentials{UserID: p.ID, Email: email, PasswordHash: r.hashes[email]}, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeUserRepo) UpdateProfile(ctx context.Context, userID, displayName string, height *float64, weighIn *domain.WeightEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return domain.ErrNotFound
	}
	if weighIn != nil && r.weights != nil {
		if err := r.weights.Upsert(ctx, *weighIn); err != nil {
			return err
		}
	}
	p.DisplayName = displayName
	if height != nil {
		p.Height = height
	}
	if weighIn != nil {
		w := weighIn.Weight
		p.Weight = &w
	}
	return nil
}

func (r *fakeUserRepo) UpdateGoals(ctx context.Context, userID string, goals domain.Goals) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return domain.ErrNotFound
	}
	p.Goals = goals
	return nil
}

type fakeMealRepo struct {
	mu     sync.Mutex
	meals  map[string]domain.Meal
	calls  []string
	err    error
	nextAt time.Time
}

func newFakeMealRepo(meals ...domain.Meal) *fakeMealRepo {
	r := &fakeMealRepo{meals: map[string]domain.Meal{}, nextAt: fixedNow}
	for _, m := range meals {
		r.meals[m.ID] = m
	}
	return r
}

func (r *fakeMealRepo) record(call string) error {
	r.calls = append(r.calls, call)
	return r.err
}

func (r *fakeMealRepo) Create(ctx context.Context, m *domain.Meal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("Create"); err != nil {
		return err
	}
	r.nextAt = r.nextAt.Add(time.Minute)
	m.CreatedAt = r.nextAt
	m.UpdatedAt = r.nextAt
	r.meals[m.ID] = *m
	return nil
}

func (r *fakeMealRepo) Get(ctx context.Context, id string) (*domain.Meal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("Get"); err != nil {
		return nil, err
	}
	m, ok := r.meals[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &m, nil
}

func (r *fakeMealRepo) Replace(ctx context.Context, m *domain.Meal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("Replace"); err != nil {
		return err
	}
	r.meals[m.ID] = *m
	return nil
}

func (r *fakeMealRepo) Delete(ctx context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("Delete"); err != nil {
		return err
	}
	m, ok := r.meals[id]
	if !ok || m.UserID != userID {
		return domain.ErrNotFound
	}
	delete(r.meals, id)
	return nil
}

func (r *fakeMealRepo) ListByDate(ctx context.Context, userID, date string) ([]domain.Meal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("ListByDate"); err != nil {
		return nil, err
	}
	var out []domain.Meal
	for _, m := range r.meals {
		if m.UserID == userID && m.Date == date {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeMealRepo) ListByDateRange(ctx context.Context, userID, from, to string) ([]domain.Meal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("ListByDateRange"); err != nil {
		return nil, err
	}
	var out []domain.Meal
	for _, m := range r.meals {
		if m.UserID == userID && m.Date >= from && m.Date <= to {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type fakeWeightRepo struct {
	entries map[string]domain.WeightEntry
	err     error
}

func newFakeWeightRepo() *fakeWeightRepo {
	return &fakeWeightRepo{entries: map[string]domain.WeightEntry{}}
}

func (r *fakeWeightRepo) Upsert(ctx context.Context, e domain.WeightEntry) error {
	if r.err != nil {
		return r.err
	}
	r.entries[e.UserID+"|"+e.Date] = e
	return nil
}

func (r *fakeWeightRepo) ListByUser(ctx context.Context, userID string) ([]domain.WeightEntry, error) {
	var out []domain.WeightEntry
	for _, e := range r.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

type fakeStorage struct {
	mu        sync.Mutex
	objects   map[string][]byte
	deleted   []string
	deleteErr error
	uploadErr error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}}
}

func (s *fakeStorage) Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	var buf bytes.Buffer
	_, _ = io.Copy(&buf, body)
	s.objects[key] = buf.Bytes()
	return "https://cdn.test/" + key, nil
}

func (s *fakeStorage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, key)
	if s.deleteErr != nil {
		return s.deleteErr
	}
	if _, ok := s.objects[key]; !ok {
		return storage.ErrObjectNotFound
	}
	delete(s.objects, key)
	return nil
}

type fakeIdentifier struct {
	names []string
	err   error
}

func (f *fakeIdentifier) IdentifyFoods(ctx context.Context, img domain.Image) ([]string, error) {
	return f.names, f.err
}

// scriptedEstimator answers per food name. A name with a gate blocks until
// the gate is closed or the context ends.
type scriptedEstimator struct {
	results map[string]nutrition.Nutrients
	gates   map[string]chan struct{}
}

var errUnknownFood = errors.New("unknown food")

func (e *scriptedEstimator) LookupMacros(ctx context.Context, name, serving string) (nutrition.Nutrients, error) {
	if gate, ok := e.gates[name]; ok {
		select {
		case <-gate:
		case <-ctx.Done():
			return nutrition.Nutrients{}, ctx.Err()
		}
	}
	n, ok := e.results[name]
	if !ok {
		return nutrition.Nutrients{}, errUnknownFood
	}
	return n, nil
}

func item(name string, n nutrition.Nutrients) domain.FoodItem {
	return domain.FoodItem{Name: name, ServingSize: "1 serving", Nutrients: n}
}
