// Package export writes tabs as Standard MIDI Files and rendered clips as WAV.
package export

import (
	"errors"
	"fmt"
	"io"

	"github.com/0xlemi/harptabs/internal/notation"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// MIDI layout
const (
	TicksPerQuarter = 480
	DefaultTempo    = 100.0
	noteVelocity    = 100
	channel         = 0
)

// ErrInvalidTempo is returned for tempos that are not positive
var ErrInvalidTempo = errors.New("tempo must be positive")

// WriteMIDI writes n as a single-track SMF: one quarter note per tab note
// and a quarter rest between lines. Notes without a frequency become rests.
func WriteMIDI(w io.Writer, n notation.Notation, provider notation.FrequencyProvider, tempo float64) error {
	if tempo <= 0 {
		return ErrInvalidTempo
	}

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(TicksPerQuarter)

	var track smf.Track
	track.Add(0, smf.MetaTempo(tempo))
	track.Add(0, smf.MetaMeter(4, 4))

	var rest uint32
	for i, line := range n.Lines {
		if i > 0 {
			rest += TicksPerQuarter
		}
		for _, note := range line {
			freq, ok := provider.FrequencyFor(note)
			if !ok {
				rest += TicksPerQuarter
				continue
			}
			key := uint8(notation.MIDIKey(freq))
			track.Add(rest, midi.NoteOn(channel, key, noteVelocity))
			track.Add(TicksPerQuarter, midi.NoteOff(channel, key))
			rest = 0
		}
	}
	track.Close(rest)

	if err := s.Add(track); err != nil {
		return fmt.Errorf("add track: %w", err)
	}
	if _, err := s.WriteTo(w); err != nil {
		return fmt.Errorf("write midi: %w", err)
	}
	return nil
}
