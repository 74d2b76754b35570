package notation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHarmonicaMapCoversEveryNote(t *testing.T) {
	for hole := MinHole; hole <= MaxHole; hole++ {
		for _, blow := range []bool{true, false} {
			for _, slide := range []bool{true, false} {
				f, ok := HarmonicaMap.FrequencyFor(Note{Hole: hole, Blow: blow, Slide: slide})
				assert.True(t, ok)
				assert.Greater(t, f, 200.0)
				assert.Less(t, f, 2500.0)
			}
		}
	}

	_, ok := HarmonicaMap.FrequencyFor(Note{Hole: 13, Blow: true})
	assert.False(t, ok)
}

func TestHarmonicaMapSamples(t *testing.T) {
	f, _ := HarmonicaMap.FrequencyFor(Note{Hole: 1, Blow: true})
	assert.Equal(t, 261.63, f)
	f, _ = HarmonicaMap.FrequencyFor(Note{Hole: 3, Blow: false})
	assert.Equal(t, 440.0, f)
	f, _ = HarmonicaMap.FrequencyFor(Note{Hole: 12, Blow: false, Slide: true})
	assert.Equal(t, 2093.0, f)
}

func TestCentsBetween(t *testing.T) {
	assert.InDelta(t, 0, CentsBetween(440, 440), 1e-9)
	assert.InDelta(t, 1200, CentsBetween(880, 440), 1e-9)
	assert.InDelta(t, 100, CentsBetween(466.16, 440), 0.1)
}

func TestMIDIKey(t *testing.T) {
	assert.Equal(t, 69, MIDIKey(440))
	assert.Equal(t, 60, MIDIKey(261.63))
	assert.Equal(t, 72, MIDIKey(523.25))
}
