package ui

import (
	"fmt"
	"time"

	"github.com/0xlemi/harptabs/internal/pitch"
	tea "github.com/charmbracelet/bubbletea"
)

// Constants for note display behavior
const (
	// How long a note needs to be present to be considered stable
	noteStabilityThreshold = 300 * time.Millisecond

	// How long to keep displaying a stable note after it changes
	noteDisplayDuration = 500 * time.Millisecond

	tickInterval = 100 * time.Millisecond
)

// PitchMsg carries one listener reading into the program
type PitchMsg pitch.Reading

// TickMsg represents a timer tick
type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// noteTracker smooths readings into a displayable note
type noteTracker struct {
	current        *pitch.Note
	stable         *pitch.Note
	candidate      string
	candidateSince time.Time
	stableAt       time.Time
	level          float64
}

func (t *noteTracker) observe(r pitch.Reading, now time.Time) {
	t.level = r.Level
	if !r.OK {
		t.current = nil
		t.candidate = ""
		return
	}

	n := pitch.ToNote(r.Frequency)
	t.current = &n
	if name := n.String(); name != t.candidate {
		t.candidate = name
		t.candidateSince = now
	}
	if now.Sub(t.candidateSince) >= noteStabilityThreshold {
		t.stable = &n
		t.stableAt = now
	}
}

// display returns the note to show, preferring a recent stable note
func (t *noteTracker) display(now time.Time) *pitch.Note {
	if t.stable != nil && now.Sub(t.stableAt) < noteDisplayDuration {
		return t.stable
	}
	return t.current
}

func (t *noteTracker) reset() {
	*t = noteTracker{}
}

// Tuner is a standalone program showing the detected note
type Tuner struct {
	theme   Theme
	now     func() time.Time
	tracker noteTracker
	width   int
	height  int
}

// NewTuner creates the tuner readout
func NewTuner(theme Theme) Tuner {
	return Tuner{theme: theme, now: time.Now}
}

// Init implements tea.Model
func (m Tuner) Init() tea.Cmd {
	return tick()
}

// Update implements tea.Model
func (m Tuner) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case TickMsg:
		return m, tick()

	case PitchMsg:
		m.tracker.observe(pitch.Reading(msg), m.now())
	}
	return m, nil
}

// View implements tea.Model
func (m Tuner) View() string {
	s := m.theme.Title.Render("harptabs tuner")
	s += "\n"
	s += pitchReadout(m.theme, m.tracker.display(m.now()), nil)
	s += "\n\n"
	s += m.theme.Muted.Render(levelMeter(m.tracker.level))
	s += "\n\n"
	s += m.theme.Muted.Render("Press q to quit")
	return s
}

// pitchReadout renders the detected note, and its offset from target when
// one is given
func pitchReadout(t Theme, n *pitch.Note, target *float64) string {
	if n == nil {
		return t.Muted.Render("Listening for audio...")
	}
	s := t.RenderPitch(*n) + "\n"
	info := fmt.Sprintf("Frequency: %.2f Hz | Cents: %+.1f", n.Frequency, n.Cents)
	if target != nil {
		info += fmt.Sprintf(" | Target: %.2f Hz", *target)
	}
	return s + t.Info.Render(info)
}

// levelMeter draws an RMS bar
func levelMeter(rms float64) string {
	const width = 30
	filled := min(width, int(rms*width*4))
	bar := make([]rune, width)
	for i := range bar {
		if i < filled {
			bar[i] = '█'
		} else {
			bar[i] = '░'
		}
	}
	return "Level " + string(bar)
}
