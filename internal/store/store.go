// Package store persists tabs and preferences in SQLite.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/0xlemi/harptabs/internal/model"
)

// ErrNotFound is returned when no tab has the requested id
var ErrNotFound = errors.New("tab not found")

// Query filters and orders List results. Nil Key or Difficulty means any.
type Query struct {
	Text          string
	Key           *string
	Difficulty    *string
	FavoritesOnly bool
	Sort          model.SortOption
}

// TabStore defines tab persistence
type TabStore interface {
	// Create inserts a tab and returns its id. A non-zero ID replaces the
	// existing row with that id.
	Create(ctx context.Context, tab model.Tab) (int64, error)
	// Update overwrites every field of an existing tab.
	Update(ctx context.Context, tab model.Tab) error
	// Delete removes a tab by its id.
	Delete(ctx context.Context, id int64) error
	// Get retrieves a tab by its id.
	Get(ctx context.Context, id int64) (model.Tab, error)
	// SetFavorite changes only the favorite flag and the update time.
	SetFavorite(ctx context.Context, id int64, favorite bool, updatedAt time.Time) error
	// Count returns the number of stored tabs.
	Count(ctx context.Context) (int64, error)
	// List returns the tabs matching q in its sort order.
	List(ctx context.Context, q Query) ([]model.Tab, error)
}

// PreferenceStore is a string key-value store
type PreferenceStore interface {
	GetPreference(ctx context.Context, key string) (string, bool, error)
	SetPreference(ctx context.Context, key, value string) error
}

// Store combines all storage interfaces.
type Store interface {
	TabStore
	PreferenceStore
	// Close releases any resources held by the store.
	Close() error
}

// StringPtr returns a pointer to s, or nil when s is empty
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
