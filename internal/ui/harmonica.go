package ui

import (
	"fmt"
	"strings"

	"github.com/0xlemi/harptabs/internal/notation"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// holeKeys maps the number row to holes 1 to 12
var holeKeys = []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "0", "-", "="}

type harmonicaView struct {
	draw   bool
	slide  bool
	active int
	last   *notation.Note
}

func holeForKey(key string) (int, bool) {
	for i, k := range holeKeys {
		if k == key {
			return i + 1, true
		}
	}
	return 0, false
}

func (m Model) updateHarmonica(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v := &m.harmonica
	key := msg.String()
	switch key {
	case "esc", "backspace":
		return m.openLibrary()
	case "q":
		return m, m.quit()
	case "d", "tab":
		v.draw = !v.draw
		return m, m.haptic()
	case "s", "'":
		v.slide = !v.slide
		return m, m.haptic()
	}

	hole, ok := holeForKey(key)
	if !ok {
		return m, nil
	}
	note := notation.Note{Hole: hole, Blow: !v.draw, Slide: v.slide}
	freq, ok := m.deps.Frequency.FrequencyFor(note)
	if !ok {
		return m, nil
	}
	v.active = hole
	v.last = &note
	return m.playTone(freq)
}

func (m Model) viewHarmonica() string {
	t := m.theme
	v := m.harmonica

	var b strings.Builder
	b.WriteString(t.Title.Render("Virtual Harmonica"))
	b.WriteString("\n")

	holes := make([]string, 0, len(holeKeys))
	for i, key := range holeKeys {
		hole := i + 1
		style := t.Box.Width(4).Align(lipgloss.Center)
		if hole == v.active {
			style = style.Foreground(lipgloss.Color("#FAFAFA")).Background(t.Palette.Accent)
		}
		holes = append(holes, style.Render(fmt.Sprintf("%d\n%s", hole, key)))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, holes...))
	b.WriteString("\n\n")

	b.WriteString(t.Info.Render(checkbox("Draw (d)", v.draw) + "  " + checkbox("Slide (s)", v.slide)))
	b.WriteString("\n")
	if v.last != nil {
		if freq, ok := m.deps.Frequency.FrequencyFor(*v.last); ok {
			b.WriteString(t.Muted.Render(fmt.Sprintf("%s · %.2f Hz", v.last.String(), freq)))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(t.Muted.Render("1-9 0 - = play holes 1-12 · esc back"))
	return b.String()
}
