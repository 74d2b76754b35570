package ui

import (
	"fmt"
	"strings"

	"github.com/0xlemi/harptabs/internal/library"
	"github.com/0xlemi/harptabs/internal/model"
	"github.com/0xlemi/harptabs/internal/store"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type libraryView struct {
	lib       *library.Library
	state     library.State
	cursor    int
	tagCursor int
	search    textinput.Model
	searching bool
}

type libraryLoadedMsg struct {
	state library.State
	err   error
}

func newLibraryView(s store.TabStore) libraryView {
	search := textinput.New()
	search.Placeholder = "Search title or artist"
	search.Prompt = "/ "
	search.CharLimit = 80
	return libraryView{lib: library.New(s), search: search}
}

// selected returns the tab under the cursor
func (v libraryView) selected() (model.Tab, bool) {
	if v.cursor < 0 || v.cursor >= len(v.state.Tabs) {
		return model.Tab{}, false
	}
	return v.state.Tabs[v.cursor], true
}

func (m Model) openLibrary() (Model, tea.Cmd) {
	m.screen = screenLibrary
	return m, m.loadLibrary()
}

// loadLibrary queries with a snapshot of the filters so the command does not
// share state with the event loop
func (m Model) loadLibrary() tea.Cmd {
	ctx, lib, f := m.ctx, m.library.lib, m.library.lib.Filters()
	return func() tea.Msg {
		state, err := lib.Load(ctx, f)
		return libraryLoadedMsg{state: state, err: err}
	}
}

func (m Model) onLibraryLoaded(msg libraryLoadedMsg) Model {
	if msg.err != nil {
		return m.fail(msg.err)
	}
	v := &m.library
	v.state = msg.state
	v.cursor = clamp(v.cursor, 0, len(v.state.Tabs)-1)
	v.tagCursor = clamp(v.tagCursor, 0, len(v.state.AvailableTags)-1)
	return m
}

func (m Model) updateLibrary(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v := &m.library
	if v.searching {
		switch msg.String() {
		case "enter", "esc":
			v.searching = false
			v.search.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		v.search, cmd = v.search.Update(msg)
		if v.search.Value() != v.lib.Filters().Query {
			v.lib.SetQuery(v.search.Value())
			v.cursor = 0
			return m, tea.Batch(cmd, m.loadLibrary())
		}
		return m, cmd
	}

	f := v.lib.Filters()
	switch msg.String() {
	case "q":
		return m, m.quit()
	case "up", "k":
		v.cursor = max(v.cursor-1, 0)
	case "down", "j":
		v.cursor = min(v.cursor+1, max(len(v.state.Tabs)-1, 0))
	case "/":
		v.searching = true
		return m, v.search.Focus()
	case "enter":
		if tab, ok := v.selected(); ok {
			return m.openDetail(tab.ID)
		}
	case "f":
		tab, ok := v.selected()
		if !ok {
			return m, nil
		}
		if err := v.lib.ToggleFavorite(m.ctx, tab); err != nil {
			return m.fail(err), nil
		}
		return m, tea.Batch(m.haptic(), m.loadLibrary())
	case "K":
		v.lib.SetKey(library.Cycle(f.Key, model.KeyOptions()))
	case "D":
		v.lib.SetDifficulty(library.Cycle(f.Difficulty, model.DifficultyOptions()))
	case "s":
		v.lib.SetSort(library.NextSort(f.Sort))
	case "F":
		v.lib.ToggleFavoritesOnly()
		return m, tea.Batch(m.haptic(), m.loadLibrary())
	case "[":
		v.tagCursor = max(v.tagCursor-1, 0)
		return m, nil
	case "]":
		v.tagCursor = min(v.tagCursor+1, max(len(v.state.AvailableTags)-1, 0))
		return m, nil
	case "t":
		if v.tagCursor < len(v.state.AvailableTags) {
			v.lib.ToggleTag(v.state.AvailableTags[v.tagCursor])
			return m, tea.Batch(m.haptic(), m.loadLibrary())
		}
		return m, nil
	case "T":
		v.lib.ClearTags()
	case "n":
		return m.openEditor(0)
	case "h":
		m.screen = screenHarmonica
		return m, nil
	case ",":
		m.screen = screenSettings
		return m, nil
	default:
		return m, nil
	}

	switch msg.String() {
	case "K", "D", "s", "T":
		v.cursor = 0
		return m, m.loadLibrary()
	}
	return m, nil
}

func optionLabel(v *string) string {
	if v == nil {
		return "Any"
	}
	return *v
}

func (m Model) viewLibrary() string {
	t := m.theme
	v := m.library
	f := v.lib.Filters()

	var b strings.Builder
	b.WriteString(t.Title.Render("Harmonica Tabs"))
	b.WriteString("\n")
	b.WriteString(v.search.View())
	b.WriteString("\n")

	chip := func(label string, on bool) string {
		if on {
			return t.ChipOn.Render(label)
		}
		return t.Chip.Render(label)
	}
	b.WriteString(chip("Key: "+optionLabel(f.Key), f.Key != nil))
	b.WriteString(chip("Difficulty: "+optionLabel(f.Difficulty), f.Difficulty != nil))
	b.WriteString(chip("Sort: "+f.Sort.Label(), f.Sort != model.DefaultSort))
	b.WriteString(chip("★ Favorites", f.FavoritesOnly))
	b.WriteString("\n")

	if len(v.state.AvailableTags) > 0 {
		for i, tag := range v.state.AvailableTags {
			label := "#" + tag
			if i == v.tagCursor {
				label = "[" + label + "]"
			}
			b.WriteString(chip(label, f.HasTag(tag)))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if len(v.state.Tabs) == 0 {
		b.WriteString(t.Muted.Render("No tabs match. Press n to add one."))
		b.WriteString("\n")
	}
	for i, tab := range v.state.Tabs {
		star := "  "
		if tab.Favorite {
			star = t.Favorite.Render("★") + " "
		}
		line := tab.Title
		if tab.Artist != "" {
			line += " · " + tab.Artist
		}
		meta := strings.Join(nonEmpty(tab.Key, tab.Difficulty), " · ")
		if meta != "" {
			line += t.Muted.Render(fmt.Sprintf("  [%s]", meta))
		}
		if i == v.cursor {
			b.WriteString(t.Selected.Render("> ") + star + t.Selected.Render(line))
		} else {
			b.WriteString("  " + star + t.Info.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(t.Muted.Render("enter open · / search · f favorite · K key · D difficulty · s sort · F favorites only"))
	b.WriteString("\n")
	b.WriteString(t.Muted.Render("[ ] tags · t toggle tag · T clear tags · n new · h harmonica · , settings · q quit"))
	return b.String()
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return min(max(v, lo), hi)
}
