// Package state keeps in-progress photo identification sessions.
package state

import (
	"context"
	"errors"
	"time"

	"github.com/vladimiradmaev/macro-tracker/internal/domain"
	"github.com/vladimiradmaev/macro-tracker/internal/nutrition"
)

// ErrNoSession is returned when a user or session id has nothing stored
var ErrNoSession = errors.New("identification session not found")

// ItemStatus is the lookup state of one identified food
type ItemStatus string

const (
	StatusLoading ItemStatus = "loading"
	StatusLoaded  ItemStatus = "loaded"
	StatusError   ItemStatus = "error"
)

// ItemState is one food of a session. Nutrients are set only when loaded.
type ItemState struct {
	SessionID   string              `json:"sessionId"`
	Index       int                 `json:"index"`
	Name        string              `json:"name"`
	ServingSize string              `json:"servingSize"`
	Status      ItemStatus          `json:"status"`
	Nutrients   nutrition.Nutrients `json:"nutrients"`
	Error       string              `json:"error,omitempty"`
}

// Session is one identification round-trip for a user
type Session struct {
	ID        string        `json:"id"`
	UserID    string        `json:"userId"`
	Items     []ItemState   `json:"items"`
	Image     *domain.Image `json:"-"`
	CreatedAt time.Time     `json:"createdAt"`
}

// Pending reports whether any item is still loading
func (s *Session) Pending() bool {
	for _, it := range s.Items {
		if it.Status == StatusLoading {
			return true
		}
	}
	return false
}

// Loaded returns the items whose lookup succeeded, in index order
func (s *Session) Loaded() []ItemState {
	var out []ItemState
	for _, it := range s.Items {
		if it.Status == StatusLoaded {
			out = append(out, it)
		}
	}
	return out
}

// SessionStore persists sessions and the per-user pointer to the current one.
type SessionStore interface {
	// Create stores s and makes it the user's current session.
	Create(ctx context.Context, s *Session) error
	Current(ctx context.Context, userID string) (*Session, error)
	Get(ctx context.Context, sessionID string) (*Session, error)
	// UpdateItem replaces Items[item.Index] only. Writes to a session that
	// was cleared return ErrNoSession.
	UpdateItem(ctx context.Context, sessionID string, item ItemState) error
	// Clear drops the user's current session.
	Clear(ctx context.Context, userID string) error
}
