// Package pitch estimates the fundamental frequency of microphone input.
package pitch

import (
	"math"
	"strconv"

	"github.com/0xlemi/harptabs/internal/audio"
)

// Detector defines the interface for pitch detection
type Detector interface {
	// Detect returns the fundamental frequency of samples, or false when
	// there is no clear pitch
	Detect(samples []int16) (float64, bool)
}

// Default detection parameters, tuned for a 12 hole chromatic harmonica
const (
	DefaultMinFrequency       = 200.0
	DefaultMaxFrequency       = 2500.0
	DefaultAmplitudeThreshold = 0.02
)

// Note represents a musical note
type Note struct {
	Name      string  // e.g., "A", "A#", "B"
	Octave    int     // e.g., 4 for middle C (C4)
	Frequency float64 // Frequency in Hz
	Cents     float64 // Cents deviation from perfect pitch (-50 to +50)
}

// All note names in chromatic order
var noteNames = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// AutocorrelationDetector picks the lag with the strongest self similarity
// inside the configured frequency band
type AutocorrelationDetector struct {
	SampleRate         int
	MinFrequency       float64
	MaxFrequency       float64
	AmplitudeThreshold float64 // RMS of the normalized signal
}

// NewAutocorrelationDetector creates a detector with the default band and threshold
func NewAutocorrelationDetector(sampleRate int) *AutocorrelationDetector {
	return &AutocorrelationDetector{
		SampleRate:         sampleRate,
		MinFrequency:       DefaultMinFrequency,
		MaxFrequency:       DefaultMaxFrequency,
		AmplitudeThreshold: DefaultAmplitudeThreshold,
	}
}

// Detect implements Detector
func (d *AutocorrelationDetector) Detect(samples []int16) (float64, bool) {
	if len(samples) == 0 {
		return 0, false
	}

	rms, _ := audio.Level(samples)
	if rms < d.AmplitudeThreshold {
		return 0, false
	}

	minLag, maxLag := d.lagRange()
	n := len(samples)

	bestLag := -1
	bestCorrelation := 0.0
	for lag := minLag; lag <= maxLag; lag++ {
		correlation := 0.0
		for i := 0; i < n-lag; i++ {
			correlation += float64(samples[i]) * float64(samples[i+lag])
		}
		// strictly greater keeps the smallest lag on ties
		if correlation > bestCorrelation {
			bestCorrelation = correlation
			bestLag = lag
		}
	}

	if bestLag <= 0 || bestCorrelation <= 0 {
		return 0, false
	}
	return float64(d.SampleRate) / float64(bestLag), true
}

func (d *AutocorrelationDetector) lagRange() (minLag, maxLag int) {
	sr := float64(d.SampleRate)
	minLag = max(1, int(sr/d.MaxFrequency))
	maxLag = max(minLag+1, int(sr/d.MinFrequency))
	return minLag, maxLag
}

// ToNote converts a frequency to the nearest equal tempered note (A4 = 440Hz)
func ToNote(frequency float64) Note {
	// A4 = 440Hz, calculate semitones from A4
	semitones := 12 * math.Log2(frequency/440.0)
	roundedSemitones := math.Round(semitones)
	cents := 100 * (semitones - roundedSemitones)

	// A4 is 9 semitones above C4
	noteIndex := int(math.Mod(roundedSemitones+9, 12))
	if noteIndex < 0 {
		noteIndex += 12
	}
	octave := 4 + int(math.Floor((roundedSemitones+9)/12))

	return Note{
		Name:      noteNames[noteIndex],
		Octave:    octave,
		Frequency: frequency,
		Cents:     cents,
	}
}

// String formats the note as name and octave, e.g. "C#5"
func (n Note) String() string {
	return n.Name + strconv.Itoa(n.Octave)
}
