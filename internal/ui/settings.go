package ui

import (
	"context"
	"strings"

	"github.com/0xlemi/harptabs/internal/settings"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	rowTheme = iota
	rowHaptics
	rowOnboarding
	rowCount
)

type settingsView struct {
	cursor int
}

func (m Model) updateSettings(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v := &m.prefs
	switch msg.String() {
	case "esc", "backspace":
		return m.openLibrary()
	case "q":
		return m, m.quit()
	case "up", "k":
		v.cursor = max(v.cursor-1, 0)
	case "down", "j":
		v.cursor = min(v.cursor+1, rowCount-1)
	case "enter", " ":
		switch v.cursor {
		case rowTheme:
			mode := m.settings.ThemeMode.Next()
			return m, tea.Batch(m.haptic(), m.setting(func(ctx context.Context, r *settings.Repository) error {
				return r.SetThemeMode(ctx, mode)
			}))
		case rowHaptics:
			enabled := !m.settings.HapticsEnabled
			return m, tea.Batch(m.haptic(), m.setting(func(ctx context.Context, r *settings.Repository) error {
				return r.SetHapticsEnabled(ctx, enabled)
			}))
		case rowOnboarding:
			return m.openOnboarding(screenSettings), nil
		}
	}
	return m, nil
}

func (m Model) viewSettings() string {
	t := m.theme
	s := m.settings

	rows := [rowCount]string{
		"Theme: " + string(s.ThemeMode),
		checkbox("Haptic feedback", s.HapticsEnabled),
		"View onboarding",
	}

	var b strings.Builder
	b.WriteString(t.Title.Render("Settings"))
	b.WriteString("\n")
	for i, row := range rows {
		if i == m.prefs.cursor {
			b.WriteString(t.Selected.Render("> " + row))
		} else {
			b.WriteString(t.Info.Render("  " + row))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(t.Muted.Render("enter change · esc back"))
	return b.String()
}
