package ui

import (
	"fmt"
	"strings"

	"github.com/0xlemi/harptabs/internal/pitch"
	"github.com/0xlemi/harptabs/internal/practice"
	tea "github.com/charmbracelet/bubbletea"
)

type practiceView struct {
	id      int64
	session *practice.Session
	opts    practice.Options
	tracker noteTracker
}

type practiceLoadedMsg struct {
	id      int64
	session *practice.Session
	err     error
}

func (m Model) openPractice(id int64) (Model, tea.Cmd) {
	ctx, s, freq := m.ctx, m.deps.Store, m.deps.Frequency
	return m, func() tea.Msg {
		session, err := practice.Load(ctx, s, id, freq)
		return practiceLoadedMsg{id: id, session: session, err: err}
	}
}

func (m Model) onPracticeLoaded(msg practiceLoadedMsg) (Model, tea.Cmd) {
	if msg.err != nil {
		return m.fail(msg.err), nil
	}
	m.screen = screenPractice
	m.practice = practiceView{id: msg.id, session: msg.session, opts: m.deps.Practice}
	if !m.practice.opts.MicEnabled {
		return m, nil
	}
	return m.startListening()
}

// startListening opens the microphone from a command; the listener may
// deliver its first reading before Start returns
func (m Model) startListening() (Model, tea.Cmd) {
	l := m.deps.Listener
	if l == nil {
		m.practice.opts.MicEnabled = false
		m.status = "microphone unavailable"
		return m, nil
	}
	ctx, send := m.ctx, m.sender.Send
	return m, func() tea.Msg {
		l.Start(ctx, func(r pitch.Reading) {
			send(PitchMsg(r))
		})
		return nil
	}
}

func (m Model) stopListening() tea.Cmd {
	l := m.deps.Listener
	if l == nil {
		return nil
	}
	return func() tea.Msg {
		l.Stop()
		return nil
	}
}

func (m Model) onPitch(r pitch.Reading) Model {
	v := &m.practice
	if v.session == nil || !v.opts.MicEnabled {
		return m
	}
	v.tracker.observe(r, m.now())
	v.session.OnPitch(r, v.opts)
	return m
}

func (m Model) updatePractice(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v := &m.practice
	switch msg.String() {
	case "esc", "backspace":
		v.session.MicDisabled()
		v.tracker.reset()
		next, cmd := m.openDetail(v.id)
		return next, tea.Batch(m.stopListening(), cmd)
	case "q":
		return m, m.quit()
	case "left", "h":
		v.session.PreviousLine()
	case "right", "l":
		v.session.NextLine()
	case "m":
		v.opts.MicEnabled = !v.opts.MicEnabled
		if v.opts.MicEnabled {
			next, cmd := m.startListening()
			return next, tea.Batch(m.haptic(), cmd)
		}
		v.session.MicDisabled()
		v.tracker.reset()
		return m, tea.Batch(m.haptic(), m.stopListening())
	case "a":
		v.opts.AutoAdvanceLine = !v.opts.AutoAdvanceLine
		return m, m.haptic()
	case "s":
		v.opts.AdvanceOnNoteStart = !v.opts.AdvanceOnNoteStart
		return m, m.haptic()
	case "r":
		v.opts.RepeatLine = !v.opts.RepeatLine
		return m, m.haptic()
	case " ", "enter":
		target, ok := v.session.Target()
		if !ok {
			return m, nil
		}
		if freq, ok := m.deps.Frequency.FrequencyFor(target); ok {
			return m.playTone(freq)
		}
	}
	return m, nil
}

func checkbox(label string, on bool) string {
	if on {
		return "[x] " + label
	}
	return "[ ] " + label
}

func (m Model) viewPractice() string {
	t := m.theme
	v := m.practice
	st := v.session.State()

	var b strings.Builder
	b.WriteString(t.Title.Render("Practice: " + st.Title))
	b.WriteString("\n")
	b.WriteString(t.Muted.Render(fmt.Sprintf("Line %d of %d", st.CurrentLine+1, len(st.Lines))))
	b.WriteString("\n\n")

	line := st.Lines[st.CurrentLine]
	if len(line) == 0 {
		b.WriteString(t.Muted.Render("This line has no notes."))
	}
	cells := make([]string, 0, len(line))
	for i, note := range line {
		style := t.Note
		switch {
		case i < st.CurrentNote:
			style = t.Played
		case i == st.CurrentNote && st.TargetPlaying:
			style = t.Target.Background(t.Palette.Good)
		case i == st.CurrentNote && st.WrongNotePlaying:
			style = t.Target.Background(t.Palette.Bad)
		case i == st.CurrentNote:
			style = t.Target
		}
		cells = append(cells, style.Render(note.String()))
	}
	b.WriteString(t.Box.Render(strings.Join(cells, "")))
	b.WriteString("\n")

	if next := st.CurrentLine + 1; next < len(st.Lines) {
		preview := make([]string, 0, len(st.Lines[next]))
		for _, note := range st.Lines[next] {
			preview = append(preview, note.String())
		}
		b.WriteString(t.Muted.Render("Next: " + strings.Join(preview, " ")))
		b.WriteString("\n")
	}
	if v.session.Finished() {
		b.WriteString(t.Good.Render("Finished! Press ← to go back or esc to leave."))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if v.opts.MicEnabled {
		var target *float64
		if note, ok := v.session.Target(); ok {
			if freq, ok := m.deps.Frequency.FrequencyFor(note); ok {
				target = &freq
			}
		}
		b.WriteString(pitchReadout(t, v.tracker.display(m.now()), target))
		b.WriteString("\n")
		b.WriteString(t.Muted.Render(levelMeter(v.tracker.level)))
		b.WriteString("\n\n")
	}

	b.WriteString(t.Info.Render(strings.Join([]string{
		checkbox("Mic (m)", v.opts.MicEnabled),
		checkbox("Auto-advance (a)", v.opts.AutoAdvanceLine),
		checkbox("Advance on note start (s)", v.opts.AdvanceOnNoteStart),
		checkbox("Repeat line (r)", v.opts.RepeatLine),
	}, "  ")))
	b.WriteString("\n")
	b.WriteString(t.Muted.Render("←/→ line · space play target · esc back"))
	return b.String()
}
