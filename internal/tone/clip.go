package tone

import (
	"context"
	"time"

	"github.com/0xlemi/harptabs/internal/audio"
	"github.com/0xlemi/harptabs/internal/notation"
)

// Clip is mono 16-bit PCM audio
type Clip struct {
	SampleRate int
	Samples    []int16
}

// Duration returns the playing time of the clip
func (c Clip) Duration() time.Duration {
	if c.SampleRate == 0 {
		return 0
	}
	return time.Duration(len(c.Samples)) * time.Second / time.Duration(c.SampleRate)
}

// RenderNotation plays every note of n for noteDuration followed by gap,
// with an extra gap between lines. Notes without a frequency render silence.
func RenderNotation(n notation.Notation, provider notation.FrequencyProvider, sampleRate int, noteDuration, gap time.Duration) Clip {
	synth := NewSynth(sampleRate, 1)
	noteSamples := samplesFor(noteDuration, sampleRate)
	gapSamples := samplesFor(gap, sampleRate)

	var out []int16
	render := func(count int) {
		buf := make([]float32, count)
		synth.Render(buf)
		for _, v := range buf {
			out = append(out, audio.ToInt16(v))
		}
	}

	for i, line := range n.Lines {
		if i > 0 {
			render(gapSamples)
		}
		for _, note := range line {
			if freq, ok := provider.FrequencyFor(note); ok {
				synth.SetFrequency(freq)
				synth.SetTarget(1)
			}
			render(noteSamples)
			synth.SetTarget(0)
			render(gapSamples)
		}
	}
	return Clip{SampleRate: sampleRate, Samples: out}
}

func samplesFor(d time.Duration, sampleRate int) int {
	return int(d.Seconds() * float64(sampleRate))
}

// BeatTiming splits one beat at tempo (beats per minute) into a sounding
// note and the silence after it
func BeatTiming(tempo float64) (note, gap time.Duration) {
	beat := time.Duration(float64(time.Minute) / tempo)
	note = beat * 4 / 5
	return note, beat - note
}

// Play starts sink, writes the clip in blocks of blockSize samples and stops
// the sink. It returns ctx.Err() when cancelled between blocks.
func Play(ctx context.Context, sink audio.Sink, clip Clip, blockSize int) error {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	if err := sink.Start(); err != nil {
		return err
	}
	defer sink.Stop()

	for samples := clip.Samples; len(samples) > 0; {
		if err := ctx.Err(); err != nil {
			return err
		}
		n := min(blockSize, len(samples))
		if err := sink.Write(samples[:n]); err != nil {
			return err
		}
		samples = samples[n:]
	}
	return nil
}
