package audio

import (
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
)

var (
	paMutex sync.Mutex
	paRefs  int
)

// acquirePortAudio initializes PortAudio for the first user
func acquirePortAudio() error {
	paMutex.Lock()
	defer paMutex.Unlock()

	if paRefs == 0 {
		if err := portaudio.Initialize(); err != nil {
			return fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
		}
	}
	paRefs++
	return nil
}

// releasePortAudio terminates PortAudio after the last user is done
func releasePortAudio() {
	paMutex.Lock()
	defer paMutex.Unlock()

	if paRefs == 0 {
		return
	}
	paRefs--
	if paRefs == 0 {
		_ = portaudio.Terminate()
	}
}

// PortAudioSource captures the default input device with a blocking stream
type PortAudioSource struct {
	mu              sync.Mutex
	stream          *portaudio.Stream
	buffer          []int16
	sampleRate      int
	framesPerBuffer int
	capturing       bool
}

// NewPortAudioSource creates a capture source; the device is opened on Start
func NewPortAudioSource(sampleRate, framesPerBuffer int) *PortAudioSource {
	return &PortAudioSource{
		sampleRate:      sampleRate,
		framesPerBuffer: framesPerBuffer,
	}
}

// Start opens the default input stream
func (s *PortAudioSource) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.capturing {
		return ErrAlreadyStarted
	}
	if err := acquirePortAudio(); err != nil {
		return err
	}

	s.buffer = make([]int16, s.framesPerBuffer)
	stream, err := portaudio.OpenDefaultStream(1, 0, float64(s.sampleRate), s.framesPerBuffer, s.buffer)
	if err != nil {
		releasePortAudio()
		return fmt.Errorf("%w: open input: %v", ErrDeviceUnavailable, err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		releasePortAudio()
		return fmt.Errorf("%w: start input: %v", ErrDeviceUnavailable, err)
	}

	s.stream = stream
	s.capturing = true
	return nil
}

// Read fills buf with the next block of captured samples.
// Input overflows are not errors; the block is still delivered.
func (s *PortAudioSource) Read(buf []int16) (int, error) {
	s.mu.Lock()
	stream := s.stream
	capturing := s.capturing
	s.mu.Unlock()

	if !capturing {
		return 0, ErrNotStarted
	}
	if err := stream.Read(); err != nil && err != portaudio.InputOverflowed {
		return 0, err
	}
	return copy(buf, s.buffer), nil
}

// Stop closes the stream
func (s *PortAudioSource) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.capturing {
		return ErrNotStarted
	}
	s.capturing = false
	defer releasePortAudio()

	if err := s.stream.Stop(); err != nil {
		s.stream.Close()
		return err
	}
	return s.stream.Close()
}

// PortAudioSink plays to the default output device with a blocking stream
type PortAudioSink struct {
	mu              sync.Mutex
	stream          *portaudio.Stream
	buffer          []int16
	sampleRate      int
	framesPerBuffer int
	playing         bool
}

// NewPortAudioSink creates a playback sink; the device is opened on Start
func NewPortAudioSink(sampleRate, framesPerBuffer int) *PortAudioSink {
	return &PortAudioSink{
		sampleRate:      sampleRate,
		framesPerBuffer: framesPerBuffer,
	}
}

// Start opens the default output stream
func (s *PortAudioSink) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.playing {
		return ErrAlreadyStarted
	}
	if err := acquirePortAudio(); err != nil {
		return err
	}

	s.buffer = make([]int16, s.framesPerBuffer)
	stream, err := portaudio.OpenDefaultStream(0, 1, float64(s.sampleRate), s.framesPerBuffer, s.buffer)
	if err != nil {
		releasePortAudio()
		return fmt.Errorf("%w: open output: %v", ErrDeviceUnavailable, err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		releasePortAudio()
		return fmt.Errorf("%w: start output: %v", ErrDeviceUnavailable, err)
	}

	s.stream = stream
	s.playing = true
	return nil
}

// Write plays samples in buffer-sized chunks, zero padding the last one
func (s *PortAudioSink) Write(samples []int16) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.playing {
		return ErrNotStarted
	}
	for len(samples) > 0 {
		n := copy(s.buffer, samples)
		for i := n; i < len(s.buffer); i++ {
			s.buffer[i] = 0
		}
		samples = samples[n:]
		if err := s.stream.Write(); err != nil && err != portaudio.OutputUnderflowed {
			return err
		}
	}
	return nil
}

// Stop closes the stream
func (s *PortAudioSink) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.playing {
		return ErrNotStarted
	}
	s.playing = false
	defer releasePortAudio()

	if err := s.stream.Stop(); err != nil {
		s.stream.Close()
		return err
	}
	return s.stream.Close()
}
