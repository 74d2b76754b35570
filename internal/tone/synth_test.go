package tone

import (
	"math"
	"testing"
	"time"

	"github.com/0xlemi/harptabs/internal/audio"
	"github.com/0xlemi/harptabs/internal/notation"
	"github.com/0xlemi/harptabs/internal/pitch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWavetableIsNormalized(t *testing.T) {
	table := NewWavetable()
	require.Len(t, table, TableSize)

	peak := 0.0
	for _, v := range table {
		peak = math.Max(peak, math.Abs(float64(v)))
	}
	assert.InDelta(t, 1.0, peak, 1e-6)
	assert.InDelta(t, 0.0, table[0], 1e-6)
}

func TestSynthEnvelope(t *testing.T) {
	s := NewSynth(44100, 1)
	assert.True(t, s.Idle())

	s.SetFrequency(440)
	s.SetTarget(1)
	assert.False(t, s.Idle())

	// attack is 8ms, about 353 samples at 44.1kHz
	s.Render(make([]float32, 100))
	assert.InDelta(t, 100.0/352.8, s.Amplitude(), 1e-3)
	s.Render(make([]float32, 300))
	assert.Equal(t, 1.0, s.Amplitude())

	// release is 60ms, about 2646 samples
	s.SetTarget(0)
	s.Render(make([]float32, 1000))
	assert.InDelta(t, 1-1000.0/2646, s.Amplitude(), 1e-3)
	assert.False(t, s.Idle())
	s.Render(make([]float32, 2000))
	assert.True(t, s.Idle())
}

func TestSynthOutputRange(t *testing.T) {
	s := NewSynth(44100, 7)
	s.SetFrequency(2093)
	s.SetTarget(1)

	buf := make([]float32, 8192)
	s.Render(buf)
	for _, v := range buf {
		assert.LessOrEqual(t, math.Abs(float64(v)), OutputGain*(1+NoiseLevel)+1e-6)
	}
}

func TestSynthPitchIsDetectable(t *testing.T) {
	detector := pitch.NewAutocorrelationDetector(44100)

	for _, freq := range []float64{441, 523.25, 880} {
		s := NewSynth(44100, 3)
		s.SetFrequency(freq)
		s.SetTarget(1)

		buf := make([]float32, 4096)
		s.Render(buf)
		pcm := make([]int16, 2048)
		for i, v := range buf[2048:] {
			pcm[i] = audio.ToInt16(v)
		}

		got, ok := detector.Detect(pcm)
		require.True(t, ok, "freq %v", freq)
		assert.InDelta(t, freq, got, freq*0.02, "freq %v", freq)
	}
}

func TestRenderNotation(t *testing.T) {
	n := notation.Notation{Lines: [][]notation.Note{
		{{Hole: 1, Blow: true}, {Hole: 3, Blow: false}},
		{{Hole: 4, Blow: true}},
	}}

	clip := RenderNotation(n, notation.HarmonicaMap, 8000, 250*time.Millisecond, 50*time.Millisecond)
	assert.Equal(t, 8000, clip.SampleRate)

	// three notes of 2000+400 samples plus one 400 sample line gap
	assert.Len(t, clip.Samples, 3*2400+400)
	assert.Equal(t, 950*time.Millisecond, clip.Duration())

	// the 60ms release (480 samples) ends inside the line gap, then silence
	for _, v := range clip.Samples[4400+480 : 4800+400] {
		assert.Equal(t, int16(0), v)
	}

	empty := RenderNotation(notation.Notation{}, notation.HarmonicaMap, 8000, time.Second, 0)
	assert.Empty(t, empty.Samples)
}

func TestSynthIgnoresInvalidFrequency(t *testing.T) {
	for _, freq := range []float64{-440, math.NaN(), math.Inf(-1)} {
		s := NewSynth(8000, 1)
		s.SetFrequency(freq)
		s.SetTarget(1)
		buf := make([]float32, 256)
		assert.NotPanics(t, func() { s.Render(buf) }, "freq %v", freq)
	}
}
