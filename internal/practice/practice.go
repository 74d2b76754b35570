// Package practice follows a player through a tab using live pitch readings.
package practice

import (
	"context"
	"math"

	"github.com/0xlemi/harptabs/internal/notation"
	"github.com/0xlemi/harptabs/internal/pitch"
	"github.com/0xlemi/harptabs/internal/store"
)

// ToleranceCents is how far a reading may be from the target and still count
const ToleranceCents = 50.0

// Options are the practice toggles
type Options struct {
	MicEnabled         bool `yaml:"mic_enabled"`
	AutoAdvanceLine    bool `yaml:"auto_advance_line"`
	AdvanceOnNoteStart bool `yaml:"advance_on_note_start"`
	RepeatLine         bool `yaml:"repeat_line"`
}

// DefaultOptions starts with the microphone off and line auto-advance on
func DefaultOptions() Options {
	return Options{
		MicEnabled:         false,
		AutoAdvanceLine:    true,
		AdvanceOnNoteStart: true,
		RepeatLine:         false,
	}
}

// State is the position of the player in the tab
type State struct {
	Title                     string
	Lines                     [][]notation.Note // never empty
	CurrentLine               int
	CurrentNote               int
	TargetPlaying             bool
	WrongNotePlaying          bool
	SuppressNextLineHighlight bool
}

// Session tracks one practice run
type Session struct {
	state     State
	frequency notation.FrequencyProvider
}

// NewSession starts at the first note of n. A nil or empty notation
// practices a single empty line.
func NewSession(title string, n *notation.Notation, frequency notation.FrequencyProvider) *Session {
	lines := [][]notation.Note{{}}
	if n != nil && len(n.Lines) > 0 {
		lines = n.Clone().Lines
	}
	return &Session{
		state:     State{Title: title, Lines: lines},
		frequency: frequency,
	}
}

// Load starts a session for the stored tab id
func Load(ctx context.Context, s store.TabStore, id int64, frequency notation.FrequencyProvider) (*Session, error) {
	tab, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewSession(tab.Title, notation.Parse(tab.Content), frequency), nil
}

// State returns the current state
func (s *Session) State() State {
	return s.state
}

// CurrentLine returns the notes of the current line
func (s *Session) CurrentLine() []notation.Note {
	return s.state.Lines[s.state.CurrentLine]
}

// Target returns the note the player should play next
func (s *Session) Target() (notation.Note, bool) {
	line := s.CurrentLine()
	if s.state.CurrentNote < 0 || s.state.CurrentNote >= len(line) {
		return notation.Note{}, false
	}
	return line[s.state.CurrentNote], true
}

func (s *Session) goToLine(index int) {
	s.state.CurrentLine = index
	s.resetNote()
}

func (s *Session) resetNote() {
	s.state.CurrentNote = 0
	s.state.TargetPlaying = false
	s.state.WrongNotePlaying = false
	s.state.SuppressNextLineHighlight = false
}

// NextLine moves to the next line, staying on the last one
func (s *Session) NextLine() {
	s.goToLine(min(s.state.CurrentLine+1, len(s.state.Lines)-1))
}

// PreviousLine moves to the previous line, staying on the first one
func (s *Session) PreviousLine() {
	s.goToLine(max(s.state.CurrentLine-1, 0))
}

// MicDisabled restarts the current line
func (s *Session) MicDisabled() {
	s.resetNote()
}

// OnPitch advances the session with one reading. A note counts as played
// when the correct pitch starts and then stops; with AdvanceOnNoteStart the
// last note of a line advances as soon as it starts.
func (s *Session) OnPitch(r pitch.Reading, opts Options) {
	if !opts.MicEnabled {
		return
	}

	st := &s.state
	line := s.CurrentLine()
	if len(line) == 0 {
		st.CurrentNote = 0
		st.TargetPlaying = false
		st.WrongNotePlaying = false
		return
	}
	if st.CurrentNote >= len(line) {
		return
	}

	heard := r.OK && !math.IsNaN(r.Frequency) && !math.IsInf(r.Frequency, 0)
	if st.SuppressNextLineHighlight && heard {
		// the note that advanced the line is still sounding
		st.TargetPlaying = false
		st.WrongNotePlaying = false
		return
	}

	target, ok := s.Target()
	if !ok {
		return
	}
	targetFreq, ok := s.frequency.FrequencyFor(target)
	if !ok {
		return
	}

	lastNote := len(line) - 1
	hasNextLine := st.CurrentLine < len(st.Lines)-1
	correct := heard && math.Abs(notation.CentsBetween(r.Frequency, targetFreq)) <= ToleranceCents

	if correct {
		if opts.AutoAdvanceLine && opts.AdvanceOnNoteStart && st.CurrentNote == lastNote && hasNextLine {
			s.goToLine(st.CurrentLine + 1)
			st.SuppressNextLineHighlight = true
			return
		}
		st.TargetPlaying = true
		st.WrongNotePlaying = false
		st.SuppressNextLineHighlight = false
		return
	}

	note := st.CurrentNote
	if st.TargetPlaying {
		note++
		switch {
		case opts.AutoAdvanceLine && note > lastNote && hasNextLine:
			s.goToLine(st.CurrentLine + 1)
			return
		case !opts.AutoAdvanceLine && opts.RepeatLine && note > lastNote:
			note = 0
		}
	}
	st.CurrentNote = note
	st.TargetPlaying = false
	st.WrongNotePlaying = heard
	st.SuppressNextLineHighlight = false
}

// Finished reports whether every note of the last line has been played
func (s *Session) Finished() bool {
	return s.state.CurrentLine == len(s.state.Lines)-1 && s.state.CurrentNote >= len(s.CurrentLine())
}
