package tone

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/0xlemi/harptabs/internal/audio"
	"github.com/sirupsen/logrus"
)

// DefaultBlockSize is the number of samples rendered per sink write
const DefaultBlockSize = 512

const joinTimeout = 200 * time.Millisecond

// ErrInvalidFrequency is returned by Start for non-positive or non-finite pitches
var ErrInvalidFrequency = errors.New("frequency must be a positive number")

// Player drives a Synth into a Sink from one render goroutine
type Player struct {
	synth     *Synth
	sink      audio.Sink
	blockSize int
	log       logrus.FieldLogger

	mu      sync.Mutex
	started bool
	wake    chan struct{}
	quit    chan struct{}
	done    chan struct{}
}

// NewPlayer creates a player; the sink is opened on the first Start
func NewPlayer(synth *Synth, sink audio.Sink, blockSize int, log logrus.FieldLogger) *Player {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Player{
		synth:     synth,
		sink:      sink,
		blockSize: blockSize,
		log:       log,
	}
}

// Start plays freq, retuning in place if a tone is already sounding
func (p *Player) Start(freq float64) error {
	if !(freq > 0) || math.IsInf(freq, 1) {
		return fmt.Errorf("%w: %v", ErrInvalidFrequency, freq)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.synth.SetFrequency(freq)
	p.synth.SetTarget(1)

	if !p.started {
		if err := p.sink.Start(); err != nil {
			p.synth.SetTarget(0)
			return fmt.Errorf("start tone output: %w", err)
		}
		p.wake = make(chan struct{}, 1)
		p.quit = make(chan struct{})
		p.done = make(chan struct{})
		p.started = true
		go p.loop(p.wake, p.quit, p.done)
	}

	select {
	case p.wake <- struct{}{}:
	default:
	}
	return nil
}

// Stop releases the tone; it fades out over the release time
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.synth.SetTarget(0)
}

// Playing reports whether a tone is held
func (p *Player) Playing() bool {
	return p.synth.Target() > 0
}

// Release stops playback, joins the render goroutine and closes the sink
func (p *Player) Release() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.synth.SetTarget(0)
	if !p.started {
		return
	}
	p.started = false

	close(p.quit)
	select {
	case <-p.done:
	case <-time.After(joinTimeout):
		p.log.Debug("render goroutine did not exit in time")
	}
	if err := p.sink.Stop(); err != nil {
		p.log.WithError(err).Debug("stop tone output")
	}
}

func (p *Player) loop(wake, quit, done chan struct{}) {
	defer close(done)

	block := make([]float32, p.blockSize)
	pcm := make([]int16, p.blockSize)
	for {
		select {
		case <-quit:
			return
		default:
		}

		if p.synth.Idle() {
			select {
			case <-quit:
				return
			case <-wake:
			}
			continue
		}

		p.synth.Render(block)
		for i, v := range block {
			pcm[i] = audio.ToInt16(v)
		}
		if err := p.sink.Write(pcm); err != nil {
			// drop the note and wait for the next Start
			p.log.WithError(err).Warn("tone write failed")
			p.synth.SetTarget(0)
			p.synth.Silence()
		}
	}
}
