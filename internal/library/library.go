// Package library holds the state of the tab list: filters, the filtered
// tabs and the tags available for filtering.
package library

import (
	"context"
	"sort"
	"time"

	"github.com/0xlemi/harptabs/internal/model"
	"github.com/0xlemi/harptabs/internal/store"
)

// Filters narrows the tab list. Nil Key or Difficulty means any.
type Filters struct {
	Query         string
	Key           *string
	Difficulty    *string
	Sort          model.SortOption
	FavoritesOnly bool
	Tags          map[string]struct{}
}

// DefaultFilters shows every tab, newest first
func DefaultFilters() Filters {
	return Filters{Sort: model.DefaultSort, Tags: map[string]struct{}{}}
}

// HasTag reports whether tag is selected
func (f Filters) HasTag(tag string) bool {
	_, ok := f.Tags[tag]
	return ok
}

// SelectedTags returns the selected tags in sorted order
func (f Filters) SelectedTags() []string {
	tags := make([]string, 0, len(f.Tags))
	for tag := range f.Tags {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

func (f Filters) query() store.Query {
	return store.Query{
		Text:          f.Query,
		Key:           f.Key,
		Difficulty:    f.Difficulty,
		FavoritesOnly: f.FavoritesOnly,
		Sort:          f.Sort,
	}
}

// State is one rendering of the list
type State struct {
	Tabs          []model.Tab
	Filters       Filters
	AvailableTags []string
}

// Library keeps the current filters and queries the store with them
type Library struct {
	store   store.TabStore
	filters Filters
	now     func() time.Time
}

// New creates a library with default filters
func New(s store.TabStore) *Library {
	return &Library{store: s, filters: DefaultFilters(), now: time.Now}
}

// Filters returns the current filters
func (l *Library) Filters() Filters {
	return l.filters
}

// Refresh loads the list with the current filters
func (l *Library) Refresh(ctx context.Context) (State, error) {
	return l.Load(ctx, l.filters)
}

// Load queries the store with f. AvailableTags come from the queried tabs
// before the tag filter is applied; a tab passes the tag filter when any of
// its tags is selected.
func (l *Library) Load(ctx context.Context, f Filters) (State, error) {
	if f.Sort == "" {
		f.Sort = model.DefaultSort
	}
	tabs, err := l.store.List(ctx, f.query())
	if err != nil {
		return State{}, err
	}

	return State{
		Tabs:          filterByTags(tabs, f.Tags),
		Filters:       f,
		AvailableTags: availableTags(tabs),
	}, nil
}

func availableTags(tabs []model.Tab) []string {
	var all []string
	for _, tab := range tabs {
		all = append(all, tab.TagList()...)
	}
	tags := model.Distinct(all)
	sort.Strings(tags)
	return tags
}

func filterByTags(tabs []model.Tab, selected map[string]struct{}) []model.Tab {
	if len(selected) == 0 {
		return tabs
	}
	out := make([]model.Tab, 0, len(tabs))
	for _, tab := range tabs {
		for _, tag := range tab.TagList() {
			if _, ok := selected[tag]; ok {
				out = append(out, tab)
				break
			}
		}
	}
	return out
}

func (l *Library) SetQuery(q string) { l.filters.Query = q }

func (l *Library) SetKey(key *string) { l.filters.Key = key }

func (l *Library) SetDifficulty(difficulty *string) { l.filters.Difficulty = difficulty }

func (l *Library) SetSort(s model.SortOption) { l.filters.Sort = s }

func (l *Library) ToggleFavoritesOnly() { l.filters.FavoritesOnly = !l.filters.FavoritesOnly }

// ToggleTag selects or deselects tag
func (l *Library) ToggleTag(tag string) {
	tags := make(map[string]struct{}, len(l.filters.Tags)+1)
	for t := range l.filters.Tags {
		tags[t] = struct{}{}
	}
	if _, ok := tags[tag]; ok {
		delete(tags, tag)
	} else {
		tags[tag] = struct{}{}
	}
	l.filters.Tags = tags
}

// ClearTags deselects every tag
func (l *Library) ClearTags() {
	l.filters.Tags = map[string]struct{}{}
}

// ToggleFavorite flips the favorite flag of tab in the store
func (l *Library) ToggleFavorite(ctx context.Context, tab model.Tab) error {
	return l.store.SetFavorite(ctx, tab.ID, !tab.Favorite, l.now())
}

// Cycle returns the option after current in options, going from nil to the
// first option and from the last option back to nil
func Cycle(current *string, options []string) *string {
	if current == nil {
		if len(options) == 0 {
			return nil
		}
		return &options[0]
	}
	for i, opt := range options {
		if opt == *current && i+1 < len(options) {
			return &options[i+1]
		}
	}
	return nil
}

// NextSort cycles through the sort options in display order
func NextSort(current model.SortOption) model.SortOption {
	opts := model.SortOptions()
	for i, opt := range opts {
		if opt == current {
			return opts[(i+1)%len(opts)]
		}
	}
	return model.DefaultSort
}
