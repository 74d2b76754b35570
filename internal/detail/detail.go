// Package detail holds the state of the tab detail screen.
package detail

import (
	"context"
	"time"

	"github.com/0xlemi/harptabs/internal/model"
	"github.com/0xlemi/harptabs/internal/notation"
	"github.com/0xlemi/harptabs/internal/store"
)

// Detail shows one tab
type Detail struct {
	store     store.TabStore
	frequency notation.FrequencyProvider
	now       func() time.Time
	tab       model.Tab
}

// New creates an empty detail view
func New(s store.TabStore, frequency notation.FrequencyProvider) *Detail {
	return &Detail{store: s, frequency: frequency, now: time.Now}
}

// Load fetches the tab with id
func (d *Detail) Load(ctx context.Context, id int64) error {
	tab, err := d.store.Get(ctx, id)
	if err != nil {
		return err
	}
	d.tab = tab
	return nil
}

// Tab returns the loaded tab
func (d *Detail) Tab() model.Tab {
	return d.tab
}

// Notation returns the parsed notation, or nil for legacy free-text content
func (d *Detail) Notation() *notation.Notation {
	return notation.Parse(d.tab.Content)
}

// Text renders the content for display, falling back to the raw content
// when it is not notation
func (d *Detail) Text() string {
	if n := d.Notation(); n != nil {
		return notation.FormatText(*n)
	}
	return d.tab.Content
}

// ToggleFavorite flips the flag locally before writing it to the store
func (d *Detail) ToggleFavorite(ctx context.Context) error {
	now := d.now()
	d.tab.Favorite = !d.tab.Favorite
	d.tab.UpdatedAt = now
	return d.store.SetFavorite(ctx, d.tab.ID, d.tab.Favorite, now)
}

// Remove deletes the loaded tab
func (d *Detail) Remove(ctx context.Context) error {
	return d.store.Delete(ctx, d.tab.ID)
}

// FrequencyFor returns the pitch of note for tone playback
func (d *Detail) FrequencyFor(note notation.Note) (float64, bool) {
	return d.frequency.FrequencyFor(note)
}
