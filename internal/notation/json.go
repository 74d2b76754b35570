package notation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Version is written into every encoded document
const Version = 1

const (
	fieldLines = "lines"
	fieldHole  = "hole"
	fieldBlow  = "blow"
	fieldSlide = "slide"
)

// Errors
var (
	ErrNoNotation = errors.New("no notation")
	ErrMalformed  = errors.New("malformed notation")
)

type noteJSON struct {
	Hole  int  `json:"hole"`
	Blow  bool `json:"blow"`
	Slide bool `json:"slide"`
}

type documentJSON struct {
	Version int          `json:"version"`
	Lines   [][]noteJSON `json:"lines"`
}

// Encode serializes the notation as a version 1 document
func Encode(n Notation) (string, error) {
	doc := documentJSON{
		Version: Version,
		Lines:   make([][]noteJSON, 0, len(n.Lines)),
	}
	for _, line := range n.Lines {
		out := make([]noteJSON, 0, len(line))
		for _, note := range line {
			out = append(out, noteJSON{Hole: note.Hole, Blow: note.Blow, Slide: note.Slide})
		}
		doc.Lines = append(doc.Lines, out)
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode notation: %w", err)
	}
	return string(data), nil
}

// MustEncode is Encode for notations built in code, where encoding cannot fail
func MustEncode(n Notation) string {
	s, err := Encode(n)
	if err != nil {
		panic(err)
	}
	return s
}

// Parse decodes content and returns nil when it holds no structured notation.
// Callers show the raw content as plain text in that case.
func Parse(content string) *Notation {
	n, err := Decode(content)
	if err != nil {
		return nil
	}
	return n
}

// Decode parses a notation document. Missing blow/slide flags default to
// blow and no slide; any structural problem rejects the whole document.
func Decode(content string) (*Notation, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrNoNotation
	}

	var root map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoNotation, err)
	}
	rawLines, ok := root[fieldLines]
	if !ok || isNull(rawLines) {
		return nil, fmt.Errorf("%w: missing %q", ErrNoNotation, fieldLines)
	}

	var lines []json.RawMessage
	if err := json.Unmarshal(rawLines, &lines); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	n := &Notation{Lines: make([][]Note, 0, len(lines))}
	for i, rawLine := range lines {
		line, err := decodeLine(rawLine)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformed, i, err)
		}
		n.Lines = append(n.Lines, line)
	}
	return n, nil
}

func decodeLine(raw json.RawMessage) ([]Note, error) {
	if isNull(raw) {
		return nil, errors.New("null line")
	}
	var notes []json.RawMessage
	if err := json.Unmarshal(raw, &notes); err != nil {
		return nil, err
	}

	line := make([]Note, 0, len(notes))
	for j, rawNote := range notes {
		note, err := decodeNote(rawNote)
		if err != nil {
			return nil, fmt.Errorf("note %d: %v", j, err)
		}
		line = append(line, note)
	}
	return line, nil
}

func decodeNote(raw json.RawMessage) (Note, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Note{}, err
	}
	rawHole, ok := fields[fieldHole]
	if !ok {
		return Note{}, errors.New("missing hole")
	}
	hole, err := intValue(rawHole)
	if err != nil {
		return Note{}, err
	}
	if !ValidHole(hole) {
		return Note{}, fmt.Errorf("hole %d out of range", hole)
	}

	return Note{
		Hole:  hole,
		Blow:  boolValue(fields[fieldBlow], true),
		Slide: boolValue(fields[fieldSlide], false),
	}, nil
}

// intValue accepts numbers and numeric strings, truncating fractions
func intValue(raw json.RawMessage) (int, error) {
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return int(f), nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return int(f), nil
		}
	}
	return 0, fmt.Errorf("hole is not a number: %s", string(raw))
}

// boolValue accepts booleans and "true"/"false" strings; missing, null and
// anything else give the fallback
func boolValue(raw json.RawMessage, fallback bool) bool {
	if len(raw) == 0 || isNull(raw) {
		return fallback
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		switch strings.ToLower(s) {
		case "true":
			return true
		case "false":
			return false
		}
	}
	return fallback
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
