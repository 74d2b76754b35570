package pitch

import (
	"math"
	"math/cmplx"
	"sort"

	"github.com/0xlemi/harptabs/internal/audio"
	"github.com/mjibson/go-dsp/fft"
)

// FFTDetector implements pitch detection using the strongest spectral peak
type FFTDetector struct {
	sampleRate      int
	minFrequency    float64 // Lowest frequency to detect (Hz)
	maxFrequency    float64 // Highest frequency to detect (Hz)
	noiseFloor      float64 // Minimum spectral magnitude
	peakThreshold   float64 // Minimum peak height as fraction of highest peak
	volumeThreshold float64 // Minimum RMS volume level for note detection
}

// NewFFTDetector creates a new FFT-based pitch detector
func NewFFTDetector(sampleRate int, minFrequency, maxFrequency, volumeThreshold float64) *FFTDetector {
	return &FFTDetector{
		sampleRate:      sampleRate,
		minFrequency:    minFrequency,
		maxFrequency:    maxFrequency,
		noiseFloor:      0.01,
		peakThreshold:   0.2,
		volumeThreshold: volumeThreshold,
	}
}

// Detect implements Detector
func (d *FFTDetector) Detect(samples []int16) (float64, bool) {
	if len(samples) == 0 {
		return 0, false
	}

	rms, db := audio.Level(samples)
	if rms < d.volumeThreshold || db < -50.0 {
		return 0, false
	}

	// Apply windowing function (Hann window)
	windowed := applyHannWindow(samples)

	complexSamples := make([]complex128, len(windowed))
	for i, sample := range windowed {
		complexSamples[i] = complex(sample, 0)
	}
	spectrum := fft.FFT(complexSamples)

	peakFreq, ok := d.findFundamentalFrequency(spectrum)
	if !ok || peakFreq < d.minFrequency || peakFreq > d.maxFrequency {
		return 0, false
	}
	return peakFreq, true
}

// applyHannWindow normalizes and windows the audio samples
func applyHannWindow(samples []int16) []float64 {
	windowed := make([]float64, len(samples))
	if len(samples) == 1 {
		windowed[0] = audio.NormalizeInt16(samples[0])
		return windowed
	}
	for i, sample := range samples {
		windowCoeff := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(len(samples)-1)))
		windowed[i] = audio.NormalizeInt16(sample) * windowCoeff
	}
	return windowed
}

// Peak represents a peak in the frequency spectrum
type Peak struct {
	Bin       int
	Magnitude float64
	Frequency float64
}

// findFundamentalFrequency returns the interpolated frequency of the highest peak
func (d *FFTDetector) findFundamentalFrequency(spectrum []complex128) (float64, bool) {
	// We only need to look at the first half of the spectrum (Nyquist theorem)
	spectrumHalf := spectrum[:len(spectrum)/2]
	binSizeHz := float64(d.sampleRate) / float64(len(spectrum))

	minBin := int(d.minFrequency / binSizeHz)
	if minBin < 1 {
		minBin = 1 // Avoid DC component
	}
	maxBin := int(d.maxFrequency/binSizeHz) + 1
	if maxBin >= len(spectrumHalf) {
		maxBin = len(spectrumHalf) - 1
	}
	if maxBin-minBin < 2 {
		return 0, false
	}

	maxMagnitude := 0.0
	for i := minBin; i <= maxBin; i++ {
		if magnitude := cmplx.Abs(spectrumHalf[i]); magnitude > maxMagnitude {
			maxMagnitude = magnitude
		}
	}
	if maxMagnitude < d.noiseFloor {
		return 0, false
	}

	var peaks []Peak
	for i := minBin + 1; i < maxBin; i++ {
		prev := cmplx.Abs(spectrumHalf[i-1])
		current := cmplx.Abs(spectrumHalf[i])
		next := cmplx.Abs(spectrumHalf[i+1])

		if current <= prev || current <= next || current <= maxMagnitude*d.peakThreshold {
			continue
		}

		// Quadratic interpolation for a more accurate peak location
		freq := float64(i) * binSizeHz
		if denom := prev - 2*current + next; denom != 0 {
			delta := 0.5 * (prev - next) / denom
			freq = (float64(i) + delta) * binSizeHz
		}
		peaks = append(peaks, Peak{Bin: i, Magnitude: current, Frequency: freq})
	}
	if len(peaks) == 0 {
		return 0, false
	}

	sort.Slice(peaks, func(i, j int) bool {
		return peaks[i].Magnitude > peaks[j].Magnitude
	})
	return peaks[0].Frequency, true
}
