package tone

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/0xlemi/harptabs/internal/audio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBeatTiming(t *testing.T) {
	note, gap := BeatTiming(100)
	assert.Equal(t, 480*time.Millisecond, note)
	assert.Equal(t, 120*time.Millisecond, gap)

	note, gap = BeatTiming(60)
	assert.Equal(t, time.Second, note+gap)
}

func TestPlayWritesBlocks(t *testing.T) {
	sink := &fakeSink{}
	clip := Clip{SampleRate: 8000, Samples: make([]int16, 1100)}

	require.NoError(t, Play(context.Background(), sink, clip, 512))
	started, stopped, writes := sink.counts()
	assert.Equal(t, 1, started)
	assert.Equal(t, 1, stopped)
	assert.Equal(t, 3, writes)
}

func TestPlayCancelled(t *testing.T) {
	sink := &fakeSink{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Play(ctx, sink, Clip{SampleRate: 8000, Samples: make([]int16, 100)}, 10)
	assert.ErrorIs(t, err, context.Canceled)
	_, stopped, writes := sink.counts()
	assert.Equal(t, 1, stopped)
	assert.Zero(t, writes)
}

func TestPlayStartFailure(t *testing.T) {
	sink := &fakeSink{startErr: audio.ErrDeviceUnavailable}
	err := Play(context.Background(), sink, Clip{Samples: make([]int16, 10)}, 0)
	assert.True(t, errors.Is(err, audio.ErrDeviceUnavailable))
	_, stopped, _ := sink.counts()
	assert.Zero(t, stopped)
}
