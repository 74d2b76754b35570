package notation

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatText renders the notation one line per row, notes separated by spaces
func FormatText(n Notation) string {
	rows := make([]string, 0, len(n.Lines))
	for _, line := range n.Lines {
		rows = append(rows, FormatLine(line))
	}
	return strings.Join(rows, "\n")
}

// FormatLine renders a single line of notes
func FormatLine(line []Note) string {
	parts := make([]string, 0, len(line))
	for _, note := range line {
		parts = append(parts, note.String())
	}
	return strings.Join(parts, " ")
}

// ParseText reads the text form. Lines are separated by newlines or "|";
// blank lines are dropped.
func ParseText(s string) (Notation, error) {
	s = strings.ReplaceAll(s, "|", "\n")
	var n Notation
	for _, row := range strings.Split(s, "\n") {
		fields := strings.Fields(row)
		if len(fields) == 0 {
			continue
		}
		line := make([]Note, 0, len(fields))
		for _, field := range fields {
			note, err := ParseNote(field)
			if err != nil {
				return Notation{}, err
			}
			line = append(line, note)
		}
		n.Lines = append(n.Lines, line)
	}
	return n, nil
}

// ParseNote reads a single note token such as "4", "-4" or "-4'"
func ParseNote(token string) (Note, error) {
	t := strings.TrimSpace(token)
	note := Note{Blow: true}
	if strings.HasPrefix(t, "-") {
		note.Blow = false
		t = t[1:]
	}
	if strings.HasSuffix(t, "'") {
		note.Slide = true
		t = t[:len(t)-1]
	}
	hole, err := strconv.Atoi(t)
	if err != nil {
		return Note{}, fmt.Errorf("%w: bad note %q", ErrMalformed, token)
	}
	if !ValidHole(hole) {
		return Note{}, fmt.Errorf("%w: hole %d out of range", ErrMalformed, hole)
	}
	note.Hole = hole
	return note, nil
}
