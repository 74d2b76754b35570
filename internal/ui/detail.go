package ui

import (
	"fmt"
	"strings"

	"github.com/0xlemi/harptabs/internal/detail"
	"github.com/0xlemi/harptabs/internal/notation"
	tea "github.com/charmbracelet/bubbletea"
)

type detailView struct {
	d             *detail.Detail
	notation      *notation.Notation
	line          int
	note          int
	confirmDelete bool
}

type detailLoadedMsg struct {
	d   *detail.Detail
	err error
}

// current returns the note under the cursor
func (v detailView) current() (notation.Note, bool) {
	if v.notation == nil || v.line >= len(v.notation.Lines) {
		return notation.Note{}, false
	}
	line := v.notation.Lines[v.line]
	if v.note >= len(line) {
		return notation.Note{}, false
	}
	return line[v.note], true
}

func (m Model) openDetail(id int64) (Model, tea.Cmd) {
	ctx, s, freq := m.ctx, m.deps.Store, m.deps.Frequency
	return m, func() tea.Msg {
		d := detail.New(s, freq)
		err := d.Load(ctx, id)
		return detailLoadedMsg{d: d, err: err}
	}
}

func (m Model) onDetailLoaded(msg detailLoadedMsg) Model {
	if msg.err != nil {
		return m.fail(msg.err)
	}
	m.screen = screenDetail
	m.detail = detailView{d: msg.d, notation: msg.d.Notation()}
	return m
}

func (m Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v := &m.detail
	if v.confirmDelete {
		v.confirmDelete = false
		if msg.String() != "y" {
			return m, nil
		}
		if err := v.d.Remove(m.ctx); err != nil {
			return m.fail(err), nil
		}
		return m.openLibrary()
	}

	var lines [][]notation.Note
	if v.notation != nil {
		lines = v.notation.Lines
	}
	switch msg.String() {
	case "esc", "backspace":
		return m.openLibrary()
	case "q":
		return m, m.quit()
	case "up", "k":
		if v.line > 0 {
			v.line--
			v.note = clamp(v.note, 0, len(lines[v.line])-1)
		}
	case "down", "j":
		if v.line < len(lines)-1 {
			v.line++
			v.note = clamp(v.note, 0, len(lines[v.line])-1)
		}
	case "left", "h":
		v.note = max(v.note-1, 0)
	case "right", "l":
		if v.line < len(lines) {
			v.note = clamp(v.note+1, 0, len(lines[v.line])-1)
		}
	case "enter", " ":
		note, ok := v.current()
		if !ok {
			return m, nil
		}
		freq, ok := v.d.FrequencyFor(note)
		if !ok {
			return m, nil
		}
		return m.playTone(freq)
	case "f":
		if err := v.d.ToggleFavorite(m.ctx); err != nil {
			return m.fail(err), nil
		}
		return m, m.haptic()
	case "d":
		v.confirmDelete = true
	case "e":
		return m.openEditor(v.d.Tab().ID)
	case "p":
		return m.openPractice(v.d.Tab().ID)
	}
	return m, nil
}

func (m Model) viewDetail() string {
	t := m.theme
	v := m.detail
	tab := v.d.Tab()

	var b strings.Builder
	title := tab.Title
	if tab.Favorite {
		title += " ★"
	}
	b.WriteString(t.Title.Render(title))
	b.WriteString("\n")
	if tab.Artist != "" {
		b.WriteString(t.Info.Render(tab.Artist))
		b.WriteString("\n")
	}
	if meta := nonEmpty(keyLabel(tab.Key), tab.Difficulty); len(meta) > 0 {
		b.WriteString(t.Muted.Render(strings.Join(meta, " · ")))
		b.WriteString("\n")
	}
	if tags := tab.TagList(); len(tags) > 0 {
		for _, tag := range tags {
			b.WriteString(t.Chip.Render("#" + tag))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if v.notation == nil {
		b.WriteString(t.Box.Render(tab.Content))
	} else {
		rows := make([]string, 0, len(v.notation.Lines))
		for i, line := range v.notation.Lines {
			cells := make([]string, 0, len(line))
			for j, note := range line {
				style := t.Note
				if i == v.line && j == v.note {
					style = t.Target
				}
				cells = append(cells, style.Render(note.String()))
			}
			rows = append(rows, strings.Join(cells, ""))
		}
		b.WriteString(t.Box.Render(strings.Join(rows, "\n")))
		if note, ok := v.current(); ok {
			if freq, ok := v.d.FrequencyFor(note); ok {
				b.WriteString("\n")
				b.WriteString(t.Muted.Render(fmt.Sprintf("Hole %d %s%s · %.2f Hz", note.Hole, blowLabel(note.Blow), slideLabel(note.Slide), freq)))
			}
		}
	}
	b.WriteString("\n\n")

	if v.confirmDelete {
		b.WriteString(t.Bad.Render(fmt.Sprintf("Delete %q? Press y to confirm.", tab.Title)))
		return b.String()
	}
	b.WriteString(t.Muted.Render("arrows move · enter play note · p practice · e edit · f favorite · d delete · esc back"))
	return b.String()
}

func keyLabel(key string) string {
	if key == "" {
		return ""
	}
	return "Key of " + key
}

func blowLabel(blow bool) string {
	if blow {
		return "blow"
	}
	return "draw"
}

func slideLabel(slide bool) string {
	if slide {
		return " + slide"
	}
	return ""
}
