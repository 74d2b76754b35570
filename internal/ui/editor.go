package ui

import (
	"errors"
	"strings"

	"github.com/0xlemi/harptabs/internal/editor"
	"github.com/0xlemi/harptabs/internal/library"
	"github.com/0xlemi/harptabs/internal/model"
	"github.com/0xlemi/harptabs/internal/notation"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	fieldTitle = iota
	fieldArtist
	fieldKey
	fieldDifficulty
	fieldTags
	fieldNotes
	fieldCount
)

var fieldLabels = [fieldCount]string{"Title", "Artist", "Key", "Difficulty", "Tags", "Notes"}

type editorView struct {
	ed           *editor.Editor
	inputs       [fieldCount]textinput.Model
	focus        int
	notesErr     error
	confirmLeave bool
}

type editorLoadedMsg struct {
	ed  *editor.Editor
	err error
}

func (m Model) openEditor(id int64) (Model, tea.Cmd) {
	ctx, s := m.ctx, m.deps.Store
	return m, func() tea.Msg {
		ed := editor.New(s)
		err := ed.Load(ctx, id)
		return editorLoadedMsg{ed: ed, err: err}
	}
}

func newInput(placeholder, value string) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.Prompt = ""
	in.CharLimit = 500
	in.SetValue(value)
	return in
}

func (m Model) onEditorLoaded(msg editorLoadedMsg) Model {
	if msg.err != nil {
		return m.fail(msg.err)
	}
	s := msg.ed.State()
	v := editorView{ed: msg.ed}
	v.inputs[fieldTitle] = newInput("Song title", s.Title)
	v.inputs[fieldArtist] = newInput("Artist", s.Artist)
	v.inputs[fieldTags] = newInput("jazz, ballad", s.TagsInput)
	v.inputs[fieldNotes] = newInput("4 -4 5 | -5 6'", strings.ReplaceAll(notation.FormatText(notation.Notation{Lines: s.Lines}), "\n", " | "))
	v.inputs[fieldTitle].Focus()

	m.screen = screenEditor
	m.editor = v
	return m
}

func (v *editorView) setFocus(i int) tea.Cmd {
	v.inputs[v.focus].Blur()
	v.focus = (i + fieldCount) % fieldCount
	if v.focus == fieldKey || v.focus == fieldDifficulty {
		return nil
	}
	return v.inputs[v.focus].Focus()
}

// sync pushes the focused input into the editor
func (v *editorView) sync() {
	value := v.inputs[v.focus].Value()
	switch v.focus {
	case fieldTitle:
		v.ed.SetTitle(value)
	case fieldArtist:
		v.ed.SetArtist(value)
	case fieldTags:
		v.ed.SetTagsInput(value)
		if pending := v.ed.State().TagsInput; pending != value {
			v.inputs[fieldTags].SetValue(pending)
		}
	case fieldNotes:
		n, err := notation.ParseText(value)
		if err != nil {
			v.notesErr = err
			return
		}
		v.notesErr = v.ed.SetLines(n.Lines)
	}
}

func cycleOption(current string, options []string, forward bool) string {
	var cur *string
	if current != "" {
		cur = &current
	}
	if !forward {
		// walk backwards by cycling len(options) times
		for range options {
			cur = library.Cycle(cur, options)
		}
	} else {
		cur = library.Cycle(cur, options)
	}
	if cur == nil {
		return ""
	}
	return *cur
}

func (m Model) updateEditor(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v := &m.editor
	key := msg.String()
	if key != "esc" {
		v.confirmLeave = false
	}

	switch key {
	case "esc":
		if v.ed.Dirty() && !v.confirmLeave {
			v.confirmLeave = true
			return m, nil
		}
		if id := v.ed.State().ID; id != 0 {
			return m.openDetail(id)
		}
		return m.openLibrary()
	case "tab", "down":
		return m, v.setFocus(v.focus + 1)
	case "shift+tab", "up":
		return m, v.setFocus(v.focus - 1)
	case "ctrl+s":
		if v.notesErr != nil {
			return m, nil
		}
		id, err := v.ed.Save(m.ctx)
		if err != nil {
			if errors.Is(err, editor.ErrMissingTitle) || errors.Is(err, editor.ErrMissingNotes) {
				return m, nil
			}
			return m.fail(err), nil
		}
		next, cmd := m.openDetail(id)
		return next, tea.Batch(m.haptic(), cmd)
	}

	switch v.focus {
	case fieldKey, fieldDifficulty:
		options, current := model.KeyOptions(), v.ed.State().Key
		set := v.ed.SetKey
		if v.focus == fieldDifficulty {
			options, current = model.DifficultyOptions(), v.ed.State().Difficulty
			set = v.ed.SetDifficulty
		}
		switch key {
		case "right", "l", " ":
			set(cycleOption(current, options, true))
		case "left", "h":
			set(cycleOption(current, options, false))
		}
		return m, nil
	case fieldTags:
		if key == "backspace" && v.inputs[fieldTags].Value() == "" {
			if tags := v.ed.State().Tags; len(tags) > 0 {
				v.ed.RemoveTag(tags[len(tags)-1])
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	v.inputs[v.focus], cmd = v.inputs[v.focus].Update(msg)
	v.sync()
	return m, cmd
}

// updateEditorInput forwards non-key messages such as cursor blinks
func (m Model) updateEditorInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	v := &m.editor
	var cmd tea.Cmd
	v.inputs[v.focus], cmd = v.inputs[v.focus].Update(msg)
	return m, cmd
}

func (m Model) viewEditor() string {
	t := m.theme
	v := m.editor
	s := v.ed.State()

	var b strings.Builder
	heading := "New tab"
	if s.ID != 0 {
		heading = "Edit tab"
	}
	b.WriteString(t.Title.Render(heading))
	b.WriteString("\n")

	for i := range fieldCount {
		label := fieldLabels[i] + ":"
		if i == v.focus {
			b.WriteString(t.Selected.Render("> " + label))
		} else {
			b.WriteString(t.Info.Render("  " + label))
		}
		b.WriteString(" ")
		switch i {
		case fieldKey:
			b.WriteString(optionValue(s.Key))
		case fieldDifficulty:
			b.WriteString(optionValue(s.Difficulty))
		case fieldTags:
			for _, tag := range s.Tags {
				b.WriteString(t.ChipOn.Render("#" + tag))
				b.WriteString(" ")
			}
			b.WriteString(v.inputs[i].View())
		default:
			b.WriteString(v.inputs[i].View())
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if len(s.Lines) > 0 {
		b.WriteString(t.Box.Render(notation.FormatText(notation.Notation{Lines: s.Lines})))
		b.WriteString("\n")
	}
	switch {
	case v.notesErr != nil:
		b.WriteString(t.Bad.Render(v.notesErr.Error()))
		b.WriteString("\n")
	case s.Err != nil:
		b.WriteString(t.Bad.Render(s.Err.Error()))
		b.WriteString("\n")
	}
	if v.confirmLeave {
		b.WriteString(t.Bad.Render("Unsaved changes. Press esc again to discard."))
		b.WriteString("\n")
	}
	b.WriteString(t.Muted.Render("tab next field · ←/→ change key and difficulty · notes: 4 blow, -4 draw, ' slide, | new line · ctrl+s save · esc cancel"))
	return b.String()
}

func optionValue(v string) string {
	if v == "" {
		return "None"
	}
	return v
}
