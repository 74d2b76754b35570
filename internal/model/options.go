package model

import (
	"fmt"
	"strings"
)

// ThemeMode is the persisted UI theme preference
type ThemeMode string

const (
	ThemeSystem ThemeMode = "system"
	ThemeLight  ThemeMode = "light"
	ThemeDark   ThemeMode = "dark"
)

// ThemeModeFromStorage maps a stored value to a ThemeMode, falling back to system
func ThemeModeFromStorage(value string) ThemeMode {
	switch ThemeMode(value) {
	case ThemeLight:
		return ThemeLight
	case ThemeDark:
		return ThemeDark
	default:
		return ThemeSystem
	}
}

// Next cycles system -> light -> dark -> system
func (m ThemeMode) Next() ThemeMode {
	switch m {
	case ThemeSystem:
		return ThemeLight
	case ThemeLight:
		return ThemeDark
	default:
		return ThemeSystem
	}
}

// SortOption selects the ordering of the tab list
type SortOption string

const (
	SortTitle  SortOption = "title"
	SortArtist SortOption = "artist"
	SortNewest SortOption = "newest"
	SortOldest SortOption = "oldest"
)

// DefaultSort is used when no sort option was chosen
const DefaultSort = SortNewest

// SortOptions returns every sort option in display order
func SortOptions() []SortOption {
	return []SortOption{SortTitle, SortArtist, SortNewest, SortOldest}
}

// ParseSortOption parses a case-insensitive sort option name.
// An empty string yields DefaultSort.
func ParseSortOption(value string) (SortOption, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return DefaultSort, nil
	}
	for _, opt := range SortOptions() {
		if string(opt) == v {
			return opt, nil
		}
	}
	return DefaultSort, fmt.Errorf("unknown sort option: %q", value)
}

// Label returns the display label of the option
func (s SortOption) Label() string {
	switch s {
	case SortTitle:
		return "Title"
	case SortArtist:
		return "Artist"
	case SortOldest:
		return "Oldest"
	default:
		return "Newest"
	}
}
