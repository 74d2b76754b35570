// Package ui implements the harptabs terminal screens with bubbletea.
package ui

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/0xlemi/harptabs/internal/notation"
	"github.com/0xlemi/harptabs/internal/pitch"
	"github.com/0xlemi/harptabs/internal/practice"
	"github.com/0xlemi/harptabs/internal/settings"
	"github.com/0xlemi/harptabs/internal/store"
	"github.com/0xlemi/harptabs/internal/tone"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
)

// toneDuration is how long a key press sounds; terminals report no key release
const toneDuration = 350 * time.Millisecond

type screen int

const (
	screenOnboarding screen = iota
	screenLibrary
	screenDetail
	screenEditor
	screenPractice
	screenHarmonica
	screenSettings
)

// Deps are the services behind the screens. A nil Player or Listener
// disables tones or the microphone.
type Deps struct {
	Store             store.TabStore
	Settings          *settings.Repository
	Player            *tone.Player
	Listener          *pitch.Listener
	Frequency         notation.FrequencyProvider
	Practice          practice.Options
	Log               logrus.FieldLogger
	Bell              io.Writer
	HasDarkBackground bool
}

// sender forwards messages from background goroutines into the program
type sender struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

func (s *sender) set(fn func(tea.Msg)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.send = fn
}

func (s *sender) Send(msg tea.Msg) {
	s.mu.Lock()
	fn := s.send
	s.mu.Unlock()
	if fn != nil {
		fn(msg)
	}
}

type settingsLoadedMsg struct {
	settings settings.Settings
	err      error
}

type settingsChangedMsg settings.Settings

type errMsg struct{ err error }

type toneOffMsg struct{ seq int }

// Model is the root program switching between screens
type Model struct {
	ctx    context.Context
	deps   Deps
	sender *sender
	now    func() time.Time

	screen   screen
	ready    bool
	settings settings.Settings
	theme    Theme
	width    int
	height   int
	status   string
	toneSeq  int

	library    libraryView
	detail     detailView
	editor     editorView
	practice   practiceView
	harmonica  harmonicaView
	prefs      settingsView
	onboarding onboardingView
}

// New creates the root model
func New(ctx context.Context, deps Deps) Model {
	if deps.Frequency == nil {
		deps.Frequency = notation.HarmonicaMap
	}
	if deps.Log == nil {
		deps.Log = logrus.StandardLogger()
	}
	s := settings.Defaults()
	return Model{
		ctx:      ctx,
		deps:     deps,
		sender:   &sender{},
		now:      time.Now,
		settings: s,
		theme:    NewTheme(s.ThemeMode, deps.HasDarkBackground),
		library:  newLibraryView(deps.Store),
	}
}

// Run starts the program and blocks until the user quits
func Run(ctx context.Context, deps Deps, opts ...tea.ProgramOption) error {
	m := New(ctx, deps)
	p := tea.NewProgram(m, append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)...)
	m.sender.set(p.Send)

	unsubscribe := deps.Settings.Subscribe(func(s settings.Settings) {
		m.sender.Send(settingsChangedMsg(s))
	})
	defer unsubscribe()
	defer func() {
		if deps.Listener != nil {
			deps.Listener.Stop()
		}
		if deps.Player != nil {
			deps.Player.Release()
		}
	}()

	_, err := p.Run()
	return err
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadSettings(), tick())
}

func (m Model) loadSettings() tea.Cmd {
	ctx, repo := m.ctx, m.deps.Settings
	return func() tea.Msg {
		s, err := repo.Load(ctx)
		return settingsLoadedMsg{settings: s, err: err}
	}
}

// setting runs a preference write off the event loop; subscribers are
// notified from there
func (m Model) setting(fn func(ctx context.Context, repo *settings.Repository) error) tea.Cmd {
	ctx, repo := m.ctx, m.deps.Settings
	return func() tea.Msg {
		if err := fn(ctx, repo); err != nil {
			return errMsg{err}
		}
		s, err := repo.Load(ctx)
		if err != nil {
			return errMsg{err}
		}
		return settingsChangedMsg(s)
	}
}

func (m *Model) applySettings(s settings.Settings) {
	m.settings = s
	m.theme = NewTheme(s.ThemeMode, m.deps.HasDarkBackground)
}

// haptic rings the terminal bell when haptics are enabled
func (m Model) haptic() tea.Cmd {
	if !m.settings.HapticsEnabled || m.deps.Bell == nil {
		return nil
	}
	bell := m.deps.Bell
	return func() tea.Msg {
		_, _ = io.WriteString(bell, "\a")
		return nil
	}
}

// playTone sounds freq for toneDuration
func (m Model) playTone(freq float64) (Model, tea.Cmd) {
	if m.deps.Player == nil {
		m.status = "tone output unavailable"
		return m, nil
	}
	if err := m.deps.Player.Start(freq); err != nil {
		m.deps.Log.WithError(err).Warn("play tone")
		m.status = "tone output unavailable"
		return m, nil
	}
	m.toneSeq++
	seq := m.toneSeq
	return m, tea.Tick(toneDuration, func(time.Time) tea.Msg {
		return toneOffMsg{seq: seq}
	})
}

func (m Model) fail(err error) Model {
	m.deps.Log.WithError(err).Warn("ui")
	m.status = err.Error()
	return m
}

func (m Model) quit() tea.Cmd {
	return tea.Sequence(m.stopListening(), tea.Quit)
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, m.quit()
		}
		if !m.ready {
			return m, nil
		}
		m.status = ""
		return m.updateKey(msg)

	case TickMsg:
		return m, tick()

	case settingsLoadedMsg:
		if msg.err != nil {
			m = m.fail(msg.err)
		} else {
			m.applySettings(msg.settings)
		}
		m.ready = true
		if !m.settings.OnboardingCompleted {
			return m.openOnboarding(screenLibrary), nil
		}
		return m.openLibrary()

	case settingsChangedMsg:
		m.applySettings(settings.Settings(msg))
		return m, nil

	case errMsg:
		return m.fail(msg.err), nil

	case toneOffMsg:
		if msg.seq == m.toneSeq && m.deps.Player != nil {
			m.deps.Player.Stop()
			m.harmonica.active = 0
		}
		return m, nil

	case PitchMsg:
		if m.screen == screenPractice {
			m = m.onPitch(pitch.Reading(msg))
		}
		return m, nil

	case libraryLoadedMsg:
		return m.onLibraryLoaded(msg), nil

	case detailLoadedMsg:
		return m.onDetailLoaded(msg), nil

	case editorLoadedMsg:
		return m.onEditorLoaded(msg), nil

	case practiceLoadedMsg:
		return m.onPracticeLoaded(msg)
	}

	if m.screen == screenEditor {
		return m.updateEditorInput(msg)
	}
	if m.screen == screenLibrary && m.library.searching {
		var cmd tea.Cmd
		m.library.search, cmd = m.library.search.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.screen {
	case screenOnboarding:
		return m.updateOnboarding(msg)
	case screenLibrary:
		return m.updateLibrary(msg)
	case screenDetail:
		return m.updateDetail(msg)
	case screenEditor:
		return m.updateEditor(msg)
	case screenPractice:
		return m.updatePractice(msg)
	case screenHarmonica:
		return m.updateHarmonica(msg)
	case screenSettings:
		return m.updateSettings(msg)
	}
	return m, nil
}

// View implements tea.Model
func (m Model) View() string {
	if !m.ready {
		return m.theme.Muted.Render("Loading...")
	}

	var body string
	switch m.screen {
	case screenOnboarding:
		body = m.viewOnboarding()
	case screenLibrary:
		body = m.viewLibrary()
	case screenDetail:
		body = m.viewDetail()
	case screenEditor:
		body = m.viewEditor()
	case screenPractice:
		body = m.viewPractice()
	case screenHarmonica:
		body = m.viewHarmonica()
	case screenSettings:
		body = m.viewSettings()
	}
	if m.status != "" {
		body += "\n" + m.theme.Bad.Render(m.status)
	}
	return body
}
