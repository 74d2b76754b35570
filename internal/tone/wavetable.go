// Package tone synthesizes harmonica-like reference tones.
package tone

import "math"

// TableSize is the number of samples in one wavetable cycle
const TableSize = 2048

// harmonicAmplitudes weights the fundamental and the next five partials
var harmonicAmplitudes = []float64{1, 0.5, 0.33, 0.25, 0.12, 0.08}

// NewWavetable builds one cycle of the additive waveform, normalized to peak 1
func NewWavetable() []float32 {
	raw := make([]float64, TableSize)
	peak := 0.0
	for i := range raw {
		x := 2 * math.Pi * float64(i) / TableSize
		v := 0.0
		for h, amp := range harmonicAmplitudes {
			v += amp * math.Sin(float64(h+1)*x)
		}
		raw[i] = v
		peak = math.Max(peak, math.Abs(v))
	}

	table := make([]float32, TableSize)
	for i, v := range raw {
		table[i] = float32(v / peak)
	}
	return table
}
