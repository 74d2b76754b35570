package pitch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/0xlemi/harptabs/internal/audio"
	"github.com/sirupsen/logrus"
)

// DefaultBufferBytes is the minimum capture buffer in bytes of 16-bit PCM
const DefaultBufferBytes = 2048

const joinTimeout = 200 * time.Millisecond

// Reading is one analysed capture block
type Reading struct {
	Frequency float64
	OK        bool    // false means no pitch
	Level     float64 // RMS of the block, for meters
}

// Listener runs one capture goroutine that feeds a Detector
type Listener struct {
	source     audio.Source
	detector   Detector
	bufferSize int
	log        logrus.FieldLogger

	mu      sync.Mutex
	running atomic.Bool
	started bool
	done    chan struct{}
}

// NewListener creates a listener reading bufferBytes worth of samples per
// block; values below DefaultBufferBytes are raised to it
func NewListener(source audio.Source, detector Detector, bufferBytes int, log logrus.FieldLogger) *Listener {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Listener{
		source:     source,
		detector:   detector,
		bufferSize: max(bufferBytes, DefaultBufferBytes) / 2,
		log:        log,
	}
}

// Start opens the source and delivers a Reading per captured block to
// onReading from the capture goroutine. Calling Start while running is a no-op.
func (l *Listener) Start(ctx context.Context, onReading func(Reading)) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.running.Load() {
		return
	}
	// a loop that ended on a read error still holds the source open
	l.teardown()

	if err := l.source.Start(); err != nil {
		if errors.Is(err, audio.ErrPermissionDenied) {
			onReading(Reading{})
			return
		}
		l.log.WithError(err).Debug("pitch detection disabled")
		return
	}

	l.started = true
	l.running.Store(true)
	done := make(chan struct{})
	l.done = done
	go l.loop(ctx, done, onReading)
}

func (l *Listener) loop(ctx context.Context, done chan struct{}, onReading func(Reading)) {
	defer close(done)

	buf := make([]int16, l.bufferSize)
	for l.running.Load() && ctx.Err() == nil {
		n, err := l.source.Read(buf)
		if err != nil {
			if l.running.Load() {
				l.log.WithError(err).Debug("capture read failed")
			}
			l.running.Store(false)
			return
		}
		if n <= 0 {
			continue
		}
		block := buf[:n]
		freq, ok := l.detector.Detect(block)
		rms, _ := audio.Level(block)
		onReading(Reading{Frequency: freq, OK: ok, Level: rms})
	}
	l.running.Store(false)
}

// Running reports whether the capture goroutine is active
func (l *Listener) Running() bool {
	return l.running.Load()
}

// Stop ends capture, waits up to 200ms for the goroutine and closes the source
func (l *Listener) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.running.Store(false)
	l.teardown()
}

// teardown joins the capture goroutine and stops the source; l.mu is held
func (l *Listener) teardown() {
	if l.done != nil {
		select {
		case <-l.done:
		case <-time.After(joinTimeout):
			l.log.Debug("capture goroutine did not exit in time")
		}
		l.done = nil
	}
	if l.started {
		l.started = false
		if err := l.source.Stop(); err != nil {
			l.log.WithError(err).Debug("stop capture")
		}
	}
}
