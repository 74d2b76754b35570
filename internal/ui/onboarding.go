package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/0xlemi/harptabs/internal/settings"
	tea "github.com/charmbracelet/bubbletea"
)

type onboardingPage struct {
	title string
	body  string
}

var onboardingPages = []onboardingPage{
	{
		title: "Welcome to harptabs",
		body:  "Keep your chromatic harmonica tabs in one place.\nSearch, filter by key, difficulty and tags, and mark favorites.",
	},
	{
		title: "Reading tabs",
		body:  "4 is hole 4 blow, -4 is hole 4 draw.\nA trailing ' means the slide is pressed: -4' is hole 4 draw with slide.",
	},
	{
		title: "Practice",
		body:  "Open a tab and press p. Turn on the microphone with m and play along:\nthe current note lights up when you hit it and the tab follows you.",
	},
	{
		title: "Virtual harmonica",
		body:  "Press h in the library to play any hole from the keyboard\nand hear how a note should sound.",
	},
}

type onboardingView struct {
	page int
	back screen
}

// openOnboarding shows the intro pages and returns to back when done
func (m Model) openOnboarding(back screen) Model {
	m.screen = screenOnboarding
	m.onboarding = onboardingView{back: back}
	return m
}

func (m Model) finishOnboarding() (tea.Model, tea.Cmd) {
	if m.onboarding.back == screenSettings {
		m.screen = screenSettings
		return m, nil
	}
	next, cmd := m.openLibrary()
	return next, tea.Batch(cmd, m.setting(func(ctx context.Context, r *settings.Repository) error {
		return r.SetOnboardingCompleted(ctx, true)
	}))
}

func (m Model) updateOnboarding(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v := &m.onboarding
	switch msg.String() {
	case "q":
		return m, m.quit()
	case "right", "l", "enter", " ":
		if v.page == len(onboardingPages)-1 {
			return m.finishOnboarding()
		}
		v.page++
	case "left", "h":
		v.page = max(v.page-1, 0)
	case "esc", "s":
		return m.finishOnboarding()
	}
	return m, nil
}

func (m Model) viewOnboarding() string {
	t := m.theme
	p := onboardingPages[m.onboarding.page]

	var b strings.Builder
	b.WriteString(t.Title.Render(p.title))
	b.WriteString("\n")
	b.WriteString(t.Box.Render(p.body))
	b.WriteString("\n\n")

	dots := make([]string, len(onboardingPages))
	for i := range dots {
		if i == m.onboarding.page {
			dots[i] = t.Selected.Render("●")
		} else {
			dots[i] = t.Muted.Render("○")
		}
	}
	b.WriteString(strings.Join(dots, " "))
	b.WriteString("\n\n")

	action := "next"
	if m.onboarding.page == len(onboardingPages)-1 {
		action = "get started"
	}
	b.WriteString(t.Muted.Render(fmt.Sprintf("enter %s · ← back · s skip", action)))
	return b.String()
}
