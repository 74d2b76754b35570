// Package settings exposes the user preferences kept in the preference store.
package settings

import (
	"context"
	"strconv"
	"sync"

	"github.com/0xlemi/harptabs/internal/model"
	"github.com/0xlemi/harptabs/internal/store"
)

// Preference keys
const (
	KeyThemeMode           = "theme_mode"
	KeyLegacyDarkTheme     = "dark_theme_enabled"
	KeyOnboardingCompleted = "onboarding_completed"
	KeyHapticsEnabled      = "haptics_enabled"
)

// Settings is a snapshot of every preference
type Settings struct {
	ThemeMode           model.ThemeMode `json:"theme_mode"`
	OnboardingCompleted bool            `json:"onboarding_completed"`
	HapticsEnabled      bool            `json:"haptics_enabled"`
}

// Defaults returns the settings of a fresh install
func Defaults() Settings {
	return Settings{
		ThemeMode:           model.ThemeSystem,
		OnboardingCompleted: false,
		HapticsEnabled:      true,
	}
}

// Repository reads and writes preferences and notifies subscribers of changes
type Repository struct {
	prefs store.PreferenceStore

	mu          sync.Mutex
	nextID      int
	subscribers map[int]func(Settings)
}

// NewRepository creates a repository over prefs
func NewRepository(prefs store.PreferenceStore) *Repository {
	return &Repository{
		prefs:       prefs,
		subscribers: make(map[int]func(Settings)),
	}
}

// Load returns the current settings
func (r *Repository) Load(ctx context.Context) (Settings, error) {
	theme, err := r.ThemeMode(ctx)
	if err != nil {
		return Settings{}, err
	}
	onboarded, err := r.OnboardingCompleted(ctx)
	if err != nil {
		return Settings{}, err
	}
	haptics, err := r.HapticsEnabled(ctx)
	if err != nil {
		return Settings{}, err
	}
	return Settings{ThemeMode: theme, OnboardingCompleted: onboarded, HapticsEnabled: haptics}, nil
}

// ThemeMode returns the stored theme, falling back to the legacy dark theme
// flag and then to system
func (r *Repository) ThemeMode(ctx context.Context) (model.ThemeMode, error) {
	stored, ok, err := r.prefs.GetPreference(ctx, KeyThemeMode)
	if err != nil {
		return model.ThemeSystem, err
	}
	if ok {
		return model.ThemeModeFromStorage(stored), nil
	}

	dark, ok, err := r.boolPreference(ctx, KeyLegacyDarkTheme)
	if err != nil || !ok {
		return model.ThemeSystem, err
	}
	if dark {
		return model.ThemeDark, nil
	}
	return model.ThemeLight, nil
}

// OnboardingCompleted defaults to false
func (r *Repository) OnboardingCompleted(ctx context.Context) (bool, error) {
	v, ok, err := r.boolPreference(ctx, KeyOnboardingCompleted)
	if err != nil || !ok {
		return false, err
	}
	return v, nil
}

// HapticsEnabled defaults to true
func (r *Repository) HapticsEnabled(ctx context.Context) (bool, error) {
	v, ok, err := r.boolPreference(ctx, KeyHapticsEnabled)
	if err != nil || !ok {
		return true, err
	}
	return v, nil
}

func (r *Repository) SetThemeMode(ctx context.Context, mode model.ThemeMode) error {
	return r.set(ctx, KeyThemeMode, string(mode))
}

func (r *Repository) SetOnboardingCompleted(ctx context.Context, completed bool) error {
	return r.set(ctx, KeyOnboardingCompleted, strconv.FormatBool(completed))
}

func (r *Repository) SetHapticsEnabled(ctx context.Context, enabled bool) error {
	return r.set(ctx, KeyHapticsEnabled, strconv.FormatBool(enabled))
}

// Subscribe registers fn to receive the full settings after every successful
// change. The returned func unsubscribes.
func (r *Repository) Subscribe(fn func(Settings)) (unsubscribe func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextID
	r.nextID++
	r.subscribers[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			delete(r.subscribers, id)
		})
	}
}

func (r *Repository) set(ctx context.Context, key, value string) error {
	if err := r.prefs.SetPreference(ctx, key, value); err != nil {
		return err
	}

	current, err := r.Load(ctx)
	if err != nil {
		return err
	}

	r.mu.Lock()
	fns := make([]func(Settings), 0, len(r.subscribers))
	for _, fn := range r.subscribers {
		fns = append(fns, fn)
	}
	r.mu.Unlock()

	for _, fn := range fns {
		fn(current)
	}
	return nil
}

// boolPreference treats unparsable values as unset
func (r *Repository) boolPreference(ctx context.Context, key string) (value, ok bool, err error) {
	raw, ok, err := r.prefs.GetPreference(ctx, key)
	if err != nil || !ok {
		return false, false, err
	}
	v, perr := strconv.ParseBool(raw)
	if perr != nil {
		return false, false, nil
	}
	return v, true, nil
}
