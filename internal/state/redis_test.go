package state

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/vladimiradmaev/macro-tracker/internal/config"
	"github.com/vladimiradmaev/macro-tracker/internal/domain"
	"github.com/vladimiradmaev/macro-tracker/internal/nutrition"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	store, err := NewRedisStore(config.RedisConfig{Addr: mr.Addr()}, time.Hour)
	if err != nil {
		t.Fatalf("NewRedisStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store, mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	r, mr := newTestRedisStore(t)

	s := newSession("s1", "u1", "rice", "beans", "salsa")
	s.Image = &domain.Image{Data: []byte{0xff, 0xd8}, MIMEType: "image/jpeg"}
	if err := r.Create(ctx, s); err != nil {
		t.Fatalf("Create: %v", err)
	}

	beans := ItemState{SessionID: "s1", Index: 1, Name: "beans", Status: StatusLoaded, Nutrients: nutrition.Nutrients{Calories: 120, Protein: 8}}
	salsa := ItemState{SessionID: "s1", Index: 2, Name: "salsa", Status: StatusError, Error: "lookup timed out"}
	if err := r.UpdateItem(ctx, "s1", beans); err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	if err := r.UpdateItem(ctx, "s1", salsa); err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}

	got, err := r.Current(ctx, "u1")
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if len(got.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(got.Items))
	}
	if got.Items[0].Status != StatusLoading || got.Items[0].Name != "rice" {
		t.Errorf("untouched item changed: %+v", got.Items[0])
	}
	if got.Items[1].Status != StatusLoaded || got.Items[1].Nutrients.Calories != 120 {
		t.Errorf("item 1 = %+v", got.Items[1])
	}
	if got.Items[2].Status != StatusError || got.Items[2].Error != "lookup timed out" {
		t.Errorf("item 2 = %+v", got.Items[2])
	}
	if got.Image == nil || got.Image.MIMEType != "image/jpeg" || len(got.Image.Data) != 2 {
		t.Errorf("image not kept: %+v", got.Image)
	}

	if ttl := mr.TTL(metaKey("s1")); ttl != time.Hour {
		t.Errorf("session ttl = %v", ttl)
	}
}

func TestRedisStoreClearRejectsLateUpdates(t *testing.T) {
	ctx := context.Background()
	r, mr := newTestRedisStore(t)

	if err := r.Create(ctx, newSession("s1", "u1", "rice")); err != nil {
		t.Fatal(err)
	}
	if err := r.Clear(ctx, "u1"); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	late := ItemState{SessionID: "s1", Index: 0, Name: "rice", Status: StatusLoaded}
	if err := r.UpdateItem(ctx, "s1", late); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
	if mr.Exists(itemsKey("s1")) {
		t.Error("late update recreated the items hash")
	}
	if _, err := r.Current(ctx, "u1"); !errors.Is(err, ErrNoSession) {
		t.Errorf("expected no current session, got %v", err)
	}
	if err := r.Clear(ctx, "u1"); err != nil {
		t.Errorf("clearing twice should be a no-op, got %v", err)
	}
}

func TestRedisStoreCreateReplacesPrevious(t *testing.T) {
	ctx := context.Background()
	r, mr := newTestRedisStore(t)

	if err := r.Create(ctx, newSession("s1", "u1", "rice")); err != nil {
		t.Fatal(err)
	}
	if err := r.Create(ctx, newSession("s2", "u1", "toast", "jam")); err != nil {
		t.Fatal(err)
	}

	if _, err := r.Get(ctx, "s1"); !errors.Is(err, ErrNoSession) {
		t.Errorf("previous session still readable: %v", err)
	}
	if mr.Exists(itemsKey("s1")) {
		t.Error("previous items left behind")
	}
	if err := r.UpdateItem(ctx, "s1", ItemState{Index: 0, Status: StatusLoaded}); !errors.Is(err, ErrNoSession) {
		t.Errorf("expected ErrNoSession for replaced session, got %v", err)
	}

	got, err := r.Current(ctx, "u1")
	if err != nil || got.ID != "s2" || len(got.Items) != 2 {
		t.Fatalf("Current = %+v, %v", got, err)
	}
}

func TestRedisStoreExpiredSession(t *testing.T) {
	ctx := context.Background()
	r, mr := newTestRedisStore(t)

	if err := r.Create(ctx, newSession("s1", "u1", "rice")); err != nil {
		t.Fatal(err)
	}
	mr.FastForward(2 * time.Hour)

	if _, err := r.Current(ctx, "u1"); !errors.Is(err, ErrNoSession) {
		t.Errorf("expected ErrNoSession after ttl, got %v", err)
	}
	if err := r.UpdateItem(ctx, "s1", ItemState{Index: 0, Status: StatusLoaded}); !errors.Is(err, ErrNoSession) {
		t.Errorf("expected ErrNoSession after ttl, got %v", err)
	}
}
