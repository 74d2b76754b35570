package pitch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/0xlemi/harptabs/internal/audio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mu       sync.Mutex
	startErr error
	readErr  error
	block    []int16
	open     bool
	started  int
	stopped  int
}

func (f *fakeSource) Start() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.startErr != nil {
		return f.startErr
	}
	if f.open {
		return audio.ErrAlreadyStarted
	}
	f.open = true
	f.started++
	return nil
}

func (f *fakeSource) Read(buf []int16) (int, error) {
	time.Sleep(time.Millisecond)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return 0, f.readErr
	}
	return copy(buf, f.block), nil
}

func (f *fakeSource) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.open = false
	f.stopped++
	return nil
}

func (f *fakeSource) setReadErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readErr = err
}

func (f *fakeSource) counts() (started, stopped int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.started, f.stopped
}

func TestListenerDeliversReadings(t *testing.T) {
	src := &fakeSource{block: sine(441, 0.5, 44100, 1024)}
	l := NewListener(src, NewAutocorrelationDetector(44100), 0, nil)

	readings := make(chan Reading, 64)
	l.Start(context.Background(), func(r Reading) {
		select {
		case readings <- r:
		default:
		}
	})
	defer l.Stop()

	select {
	case r := <-readings:
		assert.True(t, r.OK)
		assert.Equal(t, 441.0, r.Frequency)
		assert.Greater(t, r.Level, 0.3)
	case <-time.After(2 * time.Second):
		t.Fatal("no reading delivered")
	}
	assert.True(t, l.Running())
}

func TestListenerStartIsIdempotent(t *testing.T) {
	src := &fakeSource{block: make([]int16, 1024)}
	l := NewListener(src, NewAutocorrelationDetector(44100), 4096, nil)
	assert.Equal(t, 2048, l.bufferSize)

	l.Start(context.Background(), func(Reading) {})
	l.Start(context.Background(), func(Reading) {})
	l.Stop()

	assert.Equal(t, 1, src.started)
	assert.Equal(t, 1, src.stopped)
	assert.False(t, l.Running())

	// stopping again does not touch the source
	l.Stop()
	assert.Equal(t, 1, src.stopped)
}

func TestListenerPermissionDenied(t *testing.T) {
	src := &fakeSource{startErr: audio.ErrPermissionDenied}
	l := NewListener(src, NewAutocorrelationDetector(44100), 0, nil)

	var got []Reading
	l.Start(context.Background(), func(r Reading) { got = append(got, r) })

	require.Len(t, got, 1)
	assert.False(t, got[0].OK)
	assert.False(t, l.Running())
}

func TestListenerOtherStartFailureIsSilent(t *testing.T) {
	src := &fakeSource{startErr: errors.New("no device")}
	l := NewListener(src, NewAutocorrelationDetector(44100), 0, nil)

	called := false
	l.Start(context.Background(), func(Reading) { called = true })

	assert.False(t, called)
	assert.False(t, l.Running())
	l.Stop()
	assert.Equal(t, 0, src.stopped)
}

func TestListenerStopsWithContext(t *testing.T) {
	src := &fakeSource{block: make([]int16, 1024)}
	l := NewListener(src, NewAutocorrelationDetector(44100), 0, nil)

	ctx, cancel := context.WithCancel(context.Background())
	l.Start(ctx, func(Reading) {})
	cancel()

	assert.Eventually(t, func() bool { return !l.Running() }, time.Second, 5*time.Millisecond)
	l.Stop()
	assert.Equal(t, 1, src.stopped)
}

func TestListenerRestartsAfterReadError(t *testing.T) {
	src := &fakeSource{block: make([]int16, 1024), readErr: errors.New("device unplugged")}
	l := NewListener(src, NewAutocorrelationDetector(44100), 0, nil)

	l.Start(context.Background(), func(Reading) {})
	assert.Eventually(t, func() bool { return !l.Running() }, time.Second, 5*time.Millisecond)

	src.setReadErr(nil)
	readings := make(chan Reading, 1)
	l.Start(context.Background(), func(r Reading) {
		select {
		case readings <- r:
		default:
		}
	})
	defer l.Stop()

	assert.True(t, l.Running())
	started, stopped := src.counts()
	assert.Equal(t, 2, started)
	assert.Equal(t, 1, stopped, "the failed capture releases the source before reopening")

	select {
	case <-readings:
	case <-time.After(2 * time.Second):
		t.Fatal("no reading after restart")
	}
}
