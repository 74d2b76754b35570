// Package model holds the plain records shared by the storage, screen and API
// layers: tabs, theme modes, sort options and the tag helpers.
package model

import "time"

// Tab is a saved harmonica tablature entry
type Tab struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Artist     string    `json:"artist"`
	Key        string    `json:"key"`
	Difficulty string    `json:"difficulty"`
	Tags       string    `json:"tags"`    // space separated, lower case
	Content    string    `json:"content"` // JSON notation or legacy free text
	Favorite   bool      `json:"favorite"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TagList returns the parsed tags of the tab
func (t Tab) TagList() []string {
	return ParseTags(t.Tags)
}

// Difficulty options offered by the editor and filters
const (
	DifficultyEasy   = "Easy"
	DifficultyMedium = "Medium"
	DifficultyHard   = "Hard"
)

// DifficultyOptions returns the selectable difficulties in display order
func DifficultyOptions() []string {
	return []string{DifficultyEasy, DifficultyMedium, DifficultyHard}
}

// KeyOptions returns the selectable harmonica keys in chromatic order
func KeyOptions() []string {
	return []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}
}
