// Package audio abstracts the microphone and speaker as mono 16-bit PCM
// streams, with PortAudio-backed implementations.
package audio

import (
	"errors"
	"math"
)

// Errors
var (
	ErrAlreadyStarted    = errors.New("audio stream already started")
	ErrNotStarted        = errors.New("audio stream not started")
	ErrDeviceUnavailable = errors.New("audio device unavailable")
	ErrPermissionDenied  = errors.New("microphone permission denied")
)

// DefaultSampleRate is used by capture and playback unless configured otherwise
const DefaultSampleRate = 44100

// Source is a mono 16-bit PCM input such as a microphone
type Source interface {
	// Start opens the device and begins capture
	Start() error

	// Read blocks until samples are available and copies them into buf
	Read(buf []int16) (int, error)

	// Stop ends capture and releases the device
	Stop() error
}

// Sink is a mono 16-bit PCM output such as a speaker
type Sink interface {
	// Start opens the device and begins playback
	Start() error

	// Write blocks until all samples have been queued for playback
	Write(samples []int16) error

	// Stop ends playback and releases the device
	Stop() error
}

// NormalizeInt16 converts a PCM sample to the range [-1, 1]
func NormalizeInt16(sample int16) float64 {
	return float64(sample) / math.MaxInt16
}

// Level calculates the RMS of the normalized samples and its dB value
func Level(samples []int16) (rms, db float64) {
	if len(samples) == 0 {
		return 0, -100
	}

	sumSquares := 0.0
	for _, sample := range samples {
		v := NormalizeInt16(sample)
		sumSquares += v * v
	}
	rms = math.Sqrt(sumSquares / float64(len(samples)))

	// Avoid log(0)
	if rms > 0.0000001 {
		db = 20 * math.Log10(rms)
	} else {
		db = -100
	}
	return rms, db
}

// ToInt16 converts a float sample in [-1, 1] to PCM, clipping out of range values
func ToInt16(v float32) int16 {
	if v > 1 {
		v = 1
	} else if v < -1 {
		v = -1
	}
	return int16(v * math.MaxInt16)
}
