// Package notation holds the in-memory tab notation (lines of harmonica
// notes), its versioned JSON codec, the plain-text form used by the CLI and
// terminal UI, and the hole-to-frequency table of a 12-hole C chromatic.
package notation

import "fmt"

// Hole bounds of a 12-hole chromatic harmonica
const (
	MinHole = 1
	MaxHole = 12
)

// Note is a single harmonica note: a hole, blow or draw, slide in or out
type Note struct {
	Hole  int
	Blow  bool // false means draw
	Slide bool // slide button pressed, one half-step up
}

// Notation is an ordered sequence of lines, each an ordered sequence of notes
type Notation struct {
	Lines [][]Note
}

// ValidHole reports whether hole is a playable hole index
func ValidHole(hole int) bool {
	return hole >= MinHole && hole <= MaxHole
}

// String renders the note in text form: "4", "-4", "4'", "-4'"
func (n Note) String() string {
	s := fmt.Sprintf("%d", n.Hole)
	if !n.Blow {
		s = "-" + s
	}
	if n.Slide {
		s += "'"
	}
	return s
}

// NoteCount returns the total number of notes across all lines
func (n Notation) NoteCount() int {
	count := 0
	for _, line := range n.Lines {
		count += len(line)
	}
	return count
}

// HasNotes reports whether at least one line holds a note
func (n Notation) HasNotes() bool {
	for _, line := range n.Lines {
		if len(line) > 0 {
			return true
		}
	}
	return false
}

// Clone returns a deep copy, so editors can mutate lines without aliasing
func (n Notation) Clone() Notation {
	lines := make([][]Note, len(n.Lines))
	for i, line := range n.Lines {
		lines[i] = append([]Note(nil), line...)
	}
	return Notation{Lines: lines}
}

// Equal compares two notations note by note
func (n Notation) Equal(other Notation) bool {
	if len(n.Lines) != len(other.Lines) {
		return false
	}
	for i := range n.Lines {
		if len(n.Lines[i]) != len(other.Lines[i]) {
			return false
		}
		for j := range n.Lines[i] {
			if n.Lines[i][j] != other.Lines[i][j] {
				return false
			}
		}
	}
	return true
}
