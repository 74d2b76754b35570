// Package editor holds the state of the tab editor and validates it on save.
package editor

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/0xlemi/harptabs/internal/model"
	"github.com/0xlemi/harptabs/internal/notation"
	"github.com/0xlemi/harptabs/internal/store"
)

// Validation errors, shown inline to the user
var (
	ErrMissingTitle = errors.New("a title is required")
	ErrMissingNotes = errors.New("add at least one note")
	ErrInvalidHole  = errors.New("hole must be between 1 and 12")
)

// State is the editable form of a tab. ID 0 is a new tab.
type State struct {
	ID         int64
	Title      string
	Artist     string
	Key        string
	Difficulty string
	Tags       []string
	TagsInput  string
	Lines      [][]notation.Note
	Favorite   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Err        error
}

type snapshot struct {
	title, artist, key, difficulty string
	tags                           []string
	tagsInput                      string
	lines                          notation.Notation
}

func (s State) snapshot() snapshot {
	return snapshot{
		title:      s.Title,
		artist:     s.Artist,
		key:        s.Key,
		difficulty: s.Difficulty,
		tags:       slices.Clone(s.Tags),
		tagsInput:  s.TagsInput,
		lines:      notation.Notation{Lines: s.Lines}.Clone(),
	}
}

func (a snapshot) equal(b snapshot) bool {
	return a.title == b.title &&
		a.artist == b.artist &&
		a.key == b.key &&
		a.difficulty == b.difficulty &&
		slices.Equal(a.tags, b.tags) &&
		a.tagsInput == b.tagsInput &&
		a.lines.Equal(b.lines)
}

// Editor edits one tab at a time
type Editor struct {
	store    store.TabStore
	now      func() time.Time
	state    State
	baseline snapshot
}

// New creates an editor for a new, blank tab
func New(s store.TabStore) *Editor {
	e := &Editor{store: s, now: time.Now}
	e.reset(State{Tags: []string{}})
	return e
}

func (e *Editor) reset(s State) {
	e.state = s
	e.baseline = s.snapshot()
}

// Load replaces the editor contents with the stored tab id, or a blank tab
// when id is 0. Legacy free-text content loads as no lines.
func (e *Editor) Load(ctx context.Context, id int64) error {
	if id == 0 {
		e.reset(State{Tags: []string{}})
		return nil
	}

	tab, err := e.store.Get(ctx, id)
	if err != nil {
		return err
	}

	var lines [][]notation.Note
	if n := notation.Parse(tab.Content); n != nil {
		lines = n.Clone().Lines
	}
	e.reset(State{
		ID:         tab.ID,
		Title:      tab.Title,
		Artist:     tab.Artist,
		Key:        tab.Key,
		Difficulty: tab.Difficulty,
		Tags:       tab.TagList(),
		Lines:      lines,
		Favorite:   tab.Favorite,
		CreatedAt:  tab.CreatedAt,
		UpdatedAt:  tab.UpdatedAt,
	})
	return nil
}

// State returns a copy of the current state
func (e *Editor) State() State {
	s := e.state
	s.Tags = slices.Clone(s.Tags)
	s.Lines = notation.Notation{Lines: s.Lines}.Clone().Lines
	return s
}

// Err returns the last validation error, cleared by any edit
func (e *Editor) Err() error {
	return e.state.Err
}

// Dirty reports whether the state differs from what was loaded or saved
func (e *Editor) Dirty() bool {
	return !e.state.snapshot().equal(e.baseline)
}

func (e *Editor) SetTitle(v string) {
	e.state.Title = v
	e.state.Err = nil
}

func (e *Editor) SetArtist(v string) {
	e.state.Artist = v
	e.state.Err = nil
}

func (e *Editor) SetKey(v string) {
	e.state.Key = v
	e.state.Err = nil
}

func (e *Editor) SetDifficulty(v string) {
	e.state.Difficulty = v
	e.state.Err = nil
}

// SetTagsInput takes the raw tag field. Completed tokens become tags; the
// last token stays pending unless the input ends with a space or comma.
func (e *Editor) SetTagsInput(v string) {
	normalized := model.NormalizeTagsInput(v)
	complete := strings.HasSuffix(v, " ") || strings.HasSuffix(v, ",")
	tokens := strings.Fields(normalized)

	switch {
	case len(tokens) == 0:
		e.state.TagsInput = ""
	case complete:
		e.state.Tags = model.Distinct(append(slices.Clone(e.state.Tags), tokens...))
		e.state.TagsInput = ""
	default:
		last := len(tokens) - 1
		e.state.Tags = model.Distinct(append(slices.Clone(e.state.Tags), tokens[:last]...))
		e.state.TagsInput = tokens[last]
	}
	e.state.Err = nil
}

// RemoveTag drops tag from the tag list
func (e *Editor) RemoveTag(tag string) {
	e.state.Tags = slices.DeleteFunc(slices.Clone(e.state.Tags), func(t string) bool { return t == tag })
	e.state.Err = nil
}

// SetTags replaces the tag list and clears the pending input
func (e *Editor) SetTags(tags []string) {
	e.state.Tags = model.ParseTags(model.JoinTags(tags))
	e.state.TagsInput = ""
	e.state.Err = nil
}

func (e *Editor) SetFavorite(v bool) {
	e.state.Favorite = v
}

// SetLines replaces the whole notation. Nothing changes if any hole is out
// of range.
func (e *Editor) SetLines(lines [][]notation.Note) error {
	for _, line := range lines {
		for _, note := range line {
			if err := checkHole(note.Hole); err != nil {
				return err
			}
		}
	}
	e.state.Lines = notation.Notation{Lines: lines}.Clone().Lines
	e.state.Err = nil
	return nil
}

// updateLines applies fn to a copy of the lines; fn returns false to leave
// the state untouched
func (e *Editor) updateLines(fn func(lines [][]notation.Note) ([][]notation.Note, bool)) {
	lines := notation.Notation{Lines: e.state.Lines}.Clone().Lines
	updated, ok := fn(lines)
	if !ok {
		return
	}
	e.state.Lines = updated
	e.state.Err = nil
}

func noteInRange(lines [][]notation.Note, line, note int) bool {
	return line >= 0 && line < len(lines) && note >= 0 && note < len(lines[line])
}

func newNote(hole int) notation.Note {
	return notation.Note{Hole: hole, Blow: true, Slide: false}
}

func checkHole(hole int) error {
	if !notation.ValidHole(hole) {
		return fmt.Errorf("%w: %d", ErrInvalidHole, hole)
	}
	return nil
}

// AddNote appends a blow note to line
func (e *Editor) AddNote(line, hole int) error {
	if err := checkHole(hole); err != nil {
		return err
	}
	e.updateLines(func(lines [][]notation.Note) ([][]notation.Note, bool) {
		if line < 0 || line >= len(lines) {
			return nil, false
		}
		lines[line] = append(lines[line], newNote(hole))
		return lines, true
	})
	return nil
}

// AddLineWithNote appends a new line holding one blow note
func (e *Editor) AddLineWithNote(hole int) error {
	if err := checkHole(hole); err != nil {
		return err
	}
	e.updateLines(func(lines [][]notation.Note) ([][]notation.Note, bool) {
		return append(lines, []notation.Note{newNote(hole)}), true
	})
	return nil
}

// SetHole changes the hole of one note
func (e *Editor) SetHole(line, note, hole int) error {
	if err := checkHole(hole); err != nil {
		return err
	}
	e.updateLines(func(lines [][]notation.Note) ([][]notation.Note, bool) {
		if !noteInRange(lines, line, note) {
			return nil, false
		}
		lines[line][note].Hole = hole
		return lines, true
	})
	return nil
}

func (e *Editor) RemoveNote(line, note int) {
	e.updateLines(func(lines [][]notation.Note) ([][]notation.Note, bool) {
		if !noteInRange(lines, line, note) {
			return nil, false
		}
		lines[line] = slices.Delete(lines[line], note, note+1)
		return lines, true
	})
}

func (e *Editor) RemoveLine(line int) {
	e.updateLines(func(lines [][]notation.Note) ([][]notation.Note, bool) {
		if line < 0 || line >= len(lines) {
			return nil, false
		}
		return slices.Delete(lines, line, line+1), true
	})
}

// MoveNote moves a note within its line to index to
func (e *Editor) MoveNote(line, from, to int) {
	e.updateLines(func(lines [][]notation.Note) ([][]notation.Note, bool) {
		if !noteInRange(lines, line, from) || !noteInRange(lines, line, to) || from == to {
			return nil, false
		}
		n := lines[line][from]
		l := slices.Delete(lines[line], from, from+1)
		lines[line] = slices.Insert(l, to, n)
		return lines, true
	})
}

func (e *Editor) ToggleBlow(line, note int) {
	e.updateLines(func(lines [][]notation.Note) ([][]notation.Note, bool) {
		if !noteInRange(lines, line, note) {
			return nil, false
		}
		lines[line][note].Blow = !lines[line][note].Blow
		return lines, true
	})
}

func (e *Editor) ToggleSlide(line, note int) {
	e.updateLines(func(lines [][]notation.Note) ([][]notation.Note, bool) {
		if !noteInRange(lines, line, note) {
			return nil, false
		}
		lines[line][note].Slide = !lines[line][note].Slide
		return lines, true
	})
}

// Save validates and stores the tab, returning its id. Validation failures
// are also kept in Err.
func (e *Editor) Save(ctx context.Context) (int64, error) {
	s := e.state
	title := strings.TrimSpace(s.Title)
	n := notation.Notation{Lines: s.Lines}

	if title == "" {
		e.state.Err = ErrMissingTitle
		return 0, ErrMissingTitle
	}
	if !n.HasNotes() {
		e.state.Err = ErrMissingNotes
		return 0, ErrMissingNotes
	}

	content, err := notation.Encode(n)
	if err != nil {
		return 0, err
	}

	now := e.now()
	tags := model.Distinct(append(slices.Clone(s.Tags), model.ParseTags(s.TagsInput)...))
	tab := model.Tab{
		ID:         s.ID,
		Title:      title,
		Artist:     strings.TrimSpace(s.Artist),
		Key:        strings.TrimSpace(s.Key),
		Difficulty: s.Difficulty,
		Tags:       model.JoinTags(tags),
		Content:    content,
		Favorite:   s.Favorite,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  now,
	}

	if s.ID == 0 {
		tab.CreatedAt = now
		id, err := e.store.Create(ctx, tab)
		if err != nil {
			return 0, err
		}
		tab.ID = id
	} else if err := e.store.Update(ctx, tab); err != nil {
		return 0, err
	}

	e.reset(State{
		ID:         tab.ID,
		Title:      tab.Title,
		Artist:     tab.Artist,
		Key:        tab.Key,
		Difficulty: tab.Difficulty,
		Tags:       tags,
		Lines:      n.Clone().Lines,
		Favorite:   tab.Favorite,
		CreatedAt:  tab.CreatedAt,
		UpdatedAt:  tab.UpdatedAt,
	})
	return tab.ID, nil
}
