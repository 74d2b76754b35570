package tone

import (
	"math"
	"math/rand/v2"
	"sync/atomic"
	"time"
)

// Synth parameters
const (
	NoiseLevel  = 0.01
	OutputGain  = 0.25
	AttackTime  = 8 * time.Millisecond
	ReleaseTime = 60 * time.Millisecond
)

const silenceLevel = 1e-4

// Synth renders a wavetable oscillator with a linear attack/release envelope.
// SetFrequency and SetTarget are safe to call from any goroutine; Render and
// Idle belong to the rendering goroutine.
type Synth struct {
	sampleRate int
	table      []float32

	frequency atomic.Uint64 // float64 bits
	target    atomic.Uint64 // float64 bits

	phase       float64
	amplitude   float64
	attackStep  float64
	releaseStep float64
	noise       *rand.Rand
}

// NewSynth creates a silent synth; seed drives the noise generator
func NewSynth(sampleRate int, seed uint64) *Synth {
	sr := float64(sampleRate)
	return &Synth{
		sampleRate:  sampleRate,
		table:       NewWavetable(),
		attackStep:  1 / (sr * AttackTime.Seconds()),
		releaseStep: 1 / (sr * ReleaseTime.Seconds()),
		noise:       rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// SampleRate returns the output rate in Hz
func (s *Synth) SampleRate() int { return s.sampleRate }

// SetFrequency changes the oscillator pitch in Hz
func (s *Synth) SetFrequency(freq float64) {
	s.frequency.Store(math.Float64bits(freq))
}

// Frequency returns the current oscillator pitch
func (s *Synth) Frequency() float64 {
	return math.Float64frombits(s.frequency.Load())
}

// SetTarget sets the amplitude the envelope slews toward (0 or 1)
func (s *Synth) SetTarget(amplitude float64) {
	s.target.Store(math.Float64bits(amplitude))
}

// Target returns the envelope target
func (s *Synth) Target() float64 {
	return math.Float64frombits(s.target.Load())
}

// Amplitude returns the current envelope level
func (s *Synth) Amplitude() float64 {
	return s.amplitude
}

// Render fills buf with the next block of output in [-1, 1]
func (s *Synth) Render(buf []float32) {
	target := s.Target()
	step := s.Frequency() * TableSize / float64(s.sampleRate)
	if !(step >= 0) || math.IsInf(step, 1) {
		step = 0
	}

	for i := range buf {
		switch {
		case s.amplitude < target:
			s.amplitude = math.Min(target, s.amplitude+s.attackStep)
		case s.amplitude > target:
			s.amplitude = math.Max(target, s.amplitude-s.releaseStep)
		}

		idx := int(s.phase)
		frac := float32(s.phase - float64(idx))
		a := s.table[idx%TableSize]
		b := s.table[(idx+1)%TableSize]
		sample := a + (b-a)*frac

		noise := float32((s.noise.Float64()*2 - 1) * NoiseLevel)
		buf[i] = (sample + noise) * float32(s.amplitude*OutputGain)

		s.phase += step
		for s.phase >= TableSize {
			s.phase -= TableSize
		}
	}
}

// Silence drops the envelope to zero without a release
func (s *Synth) Silence() {
	s.amplitude = 0
}

// Idle reports whether the synth is released and fully decayed
func (s *Synth) Idle() bool {
	return s.Target() == 0 && s.amplitude < silenceLevel
}
