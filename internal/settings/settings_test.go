package settings

import (
	"context"
	"testing"

	"github.com/0xlemi/harptabs/internal/model"
	"github.com/0xlemi/harptabs/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T) (*Repository, *store.SQLiteStore) {
	t.Helper()
	s, err := store.Open(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return NewRepository(s), s
}

func TestDefaults(t *testing.T) {
	r, _ := newRepo(t)

	got, err := r.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Defaults(), got)
}

func TestLegacyDarkThemeFlag(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		stored string
		want   model.ThemeMode
	}{
		{"true", model.ThemeDark},
		{"false", model.ThemeLight},
		{"garbage", model.ThemeSystem},
	}
	for _, tt := range tests {
		r, s := newRepo(t)
		require.NoError(t, s.SetPreference(ctx, KeyLegacyDarkTheme, tt.stored))

		got, err := r.ThemeMode(ctx)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "legacy value %q", tt.stored)
	}
}

func TestThemeModeOverridesLegacyFlag(t *testing.T) {
	ctx := context.Background()
	r, s := newRepo(t)
	require.NoError(t, s.SetPreference(ctx, KeyLegacyDarkTheme, "true"))
	require.NoError(t, r.SetThemeMode(ctx, model.ThemeLight))

	got, err := r.ThemeMode(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.ThemeLight, got)

	require.NoError(t, s.SetPreference(ctx, KeyThemeMode, "neon"))
	got, err = r.ThemeMode(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.ThemeSystem, got)
}

func TestSettersPersist(t *testing.T) {
	ctx := context.Background()
	r, _ := newRepo(t)

	require.NoError(t, r.SetOnboardingCompleted(ctx, true))
	require.NoError(t, r.SetHapticsEnabled(ctx, false))
	require.NoError(t, r.SetThemeMode(ctx, model.ThemeDark))

	got, err := r.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, Settings{ThemeMode: model.ThemeDark, OnboardingCompleted: true, HapticsEnabled: false}, got)
}

func TestSubscribe(t *testing.T) {
	ctx := context.Background()
	r, _ := newRepo(t)

	var seen []Settings
	unsubscribe := r.Subscribe(func(s Settings) { seen = append(seen, s) })

	require.NoError(t, r.SetHapticsEnabled(ctx, false))
	require.NoError(t, r.SetThemeMode(ctx, model.ThemeDark))
	require.Len(t, seen, 2)
	assert.False(t, seen[0].HapticsEnabled)
	assert.Equal(t, model.ThemeSystem, seen[0].ThemeMode)
	assert.Equal(t, model.ThemeDark, seen[1].ThemeMode)
	assert.False(t, seen[1].HapticsEnabled)

	unsubscribe()
	unsubscribe()
	require.NoError(t, r.SetOnboardingCompleted(ctx, true))
	assert.Len(t, seen, 2)
}
