package library

import (
	"context"
	"testing"
	"time"

	"github.com/0xlemi/harptabs/internal/model"
	"github.com/0xlemi/harptabs/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLibrary(t *testing.T) (*Library, *store.SQLiteStore) {
	t.Helper()
	s, err := store.Open(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	base := time.UnixMilli(1_700_000_000_000)
	tabs := []model.Tab{
		{Title: "Autumn Leaves", Key: "G", Difficulty: "Medium", Tags: "jazz ballad", CreatedAt: base},
		{Title: "Amazing Grace", Key: "D", Difficulty: "Easy", Tags: "hymn slow", CreatedAt: base.Add(time.Minute)},
		{Title: "Blue Bossa", Key: "C", Difficulty: "Medium", Tags: "latin jazz", Favorite: true, CreatedAt: base.Add(2 * time.Minute)},
		{Title: "Untagged", Key: "C", Difficulty: "Hard", CreatedAt: base.Add(3 * time.Minute)},
	}
	for _, tab := range tabs {
		_, err := s.Create(context.Background(), tab)
		require.NoError(t, err)
	}
	return New(s), s
}

func titles(tabs []model.Tab) []string {
	out := make([]string, len(tabs))
	for i, tab := range tabs {
		out[i] = tab.Title
	}
	return out
}

func TestLoadDefault(t *testing.T) {
	l, _ := newLibrary(t)

	state, err := l.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Untagged", "Blue Bossa", "Amazing Grace", "Autumn Leaves"}, titles(state.Tabs))
	assert.Equal(t, []string{"ballad", "hymn", "jazz", "latin", "slow"}, state.AvailableTags)
	assert.Equal(t, model.SortNewest, state.Filters.Sort)
}

func TestTagFilterMatchesAnySelectedTag(t *testing.T) {
	ctx := context.Background()
	l, _ := newLibrary(t)

	l.ToggleTag("ballad")
	l.ToggleTag("hymn")
	state, err := l.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Amazing Grace", "Autumn Leaves"}, titles(state.Tabs))
	// available tags ignore the tag filter
	assert.Len(t, state.AvailableTags, 5)
	assert.Equal(t, []string{"ballad", "hymn"}, state.Filters.SelectedTags())

	l.ToggleTag("hymn")
	state, err = l.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Autumn Leaves"}, titles(state.Tabs))

	l.ClearTags()
	state, err = l.Refresh(ctx)
	require.NoError(t, err)
	assert.Len(t, state.Tabs, 4)
}

func TestAvailableTagsFollowStoreFilters(t *testing.T) {
	l, _ := newLibrary(t)

	key := "C"
	l.SetKey(&key)
	l.SetSort(model.SortTitle)
	state, err := l.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Blue Bossa", "Untagged"}, titles(state.Tabs))
	assert.Equal(t, []string{"jazz", "latin"}, state.AvailableTags)
}

func TestQueryDifficultyAndFavorites(t *testing.T) {
	ctx := context.Background()
	l, _ := newLibrary(t)

	medium := "Medium"
	f := DefaultFilters()
	f.Difficulty = &medium
	f.Query = "a"
	state, err := l.Load(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, []string{"Blue Bossa", "Autumn Leaves"}, titles(state.Tabs))

	l.ToggleFavoritesOnly()
	state, err = l.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Blue Bossa"}, titles(state.Tabs))
}

func TestToggleFavorite(t *testing.T) {
	ctx := context.Background()
	l, s := newLibrary(t)
	now := time.UnixMilli(1_800_000_000_000)
	l.now = func() time.Time { return now }

	state, err := l.Refresh(ctx)
	require.NoError(t, err)
	tab := state.Tabs[3]
	require.False(t, tab.Favorite)

	require.NoError(t, l.ToggleFavorite(ctx, tab))
	got, err := s.Get(ctx, tab.ID)
	require.NoError(t, err)
	assert.True(t, got.Favorite)
	assert.Equal(t, now.UnixMilli(), got.UpdatedAt.UnixMilli())

	require.NoError(t, l.ToggleFavorite(ctx, got))
	got, err = s.Get(ctx, tab.ID)
	require.NoError(t, err)
	assert.False(t, got.Favorite)
}

func TestCycle(t *testing.T) {
	opts := []string{"Easy", "Medium", "Hard"}

	v := Cycle(nil, opts)
	require.NotNil(t, v)
	assert.Equal(t, "Easy", *v)
	v = Cycle(v, opts)
	assert.Equal(t, "Medium", *v)
	v = Cycle(v, opts)
	assert.Equal(t, "Hard", *v)
	assert.Nil(t, Cycle(v, opts))

	assert.Equal(t, model.SortArtist, NextSort(model.SortTitle))
	assert.Equal(t, model.SortTitle, NextSort(model.SortOldest))
}
