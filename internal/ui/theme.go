package ui

import (
	"strings"

	"github.com/0xlemi/harptabs/internal/model"
	"github.com/0xlemi/harptabs/internal/pitch"
	"github.com/charmbracelet/lipgloss"
)

// Palette is one set of theme colors
type Palette struct {
	Accent  lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Surface lipgloss.Color
	Good    lipgloss.Color
	Bad     lipgloss.Color
	Border  lipgloss.Color
}

var (
	lightPalette = Palette{
		Accent:  lipgloss.Color("#7D56F4"),
		Text:    lipgloss.Color("#1A1A1A"),
		Muted:   lipgloss.Color("#6B6B6B"),
		Surface: lipgloss.Color("#E9E3FF"),
		Good:    lipgloss.Color("#1E8E3E"),
		Bad:     lipgloss.Color("#C62828"),
		Border:  lipgloss.Color("#BBBBBB"),
	}
	darkPalette = Palette{
		Accent:  lipgloss.Color("#7D56F4"),
		Text:    lipgloss.Color("#FAFAFA"),
		Muted:   lipgloss.Color("#CCCCCC"),
		Surface: lipgloss.Color("#2D2745"),
		Good:    lipgloss.Color("#00C853"),
		Bad:     lipgloss.Color("#FF5252"),
		Border:  lipgloss.Color("#333333"),
	}

	// Note colors
	noteColors = map[string]string{
		"C": "#E8D6B0", // Beige
		"D": "#A020F0", // Purple
		"E": "#FFFF00", // Yellow
		"F": "#FFA500", // Orange
		"G": "#00FF00", // Green
		"A": "#FF0000", // Red
		"B": "#0000FF", // Blue
	}
)

// Theme holds the styles of every screen
type Theme struct {
	Dark bool
	Palette

	Title    lipgloss.Style
	Info     lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style
	Good     lipgloss.Style
	Bad      lipgloss.Style
	Favorite lipgloss.Style
	Chip     lipgloss.Style
	ChipOn   lipgloss.Style
	Note     lipgloss.Style
	Target   lipgloss.Style
	Played   lipgloss.Style
	Box      lipgloss.Style
}

// IsDark resolves a theme mode; system follows the terminal background
func IsDark(mode model.ThemeMode, hasDarkBackground bool) bool {
	switch mode {
	case model.ThemeDark:
		return true
	case model.ThemeLight:
		return false
	default:
		return hasDarkBackground
	}
}

// NewTheme builds the styles for mode
func NewTheme(mode model.ThemeMode, hasDarkBackground bool) Theme {
	dark := IsDark(mode, hasDarkBackground)
	p := lightPalette
	if dark {
		p = darkPalette
	}

	base := lipgloss.NewStyle().Foreground(p.Text)
	return Theme{
		Dark:    dark,
		Palette: p,
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(p.Accent).
			PaddingLeft(2).
			PaddingRight(2).
			MarginBottom(1),
		Info:     base,
		Muted:    lipgloss.NewStyle().Foreground(p.Muted),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(p.Accent),
		Good:     lipgloss.NewStyle().Bold(true).Foreground(p.Good),
		Bad:      lipgloss.NewStyle().Bold(true).Foreground(p.Bad),
		Favorite: lipgloss.NewStyle().Foreground(lipgloss.Color("#F5B400")),
		Chip:     lipgloss.NewStyle().Foreground(p.Muted).Padding(0, 1),
		ChipOn:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA")).Background(p.Accent).Padding(0, 1),
		Note:     base.Padding(0, 1),
		Target:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FAFAFA")).Background(p.Accent).Padding(0, 1),
		Played:   lipgloss.NewStyle().Foreground(p.Muted).Padding(0, 1),
		Box: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(p.Border).
			Padding(0, 1),
	}
}

// noteBox returns the style of a detected natural note
func (t Theme) noteBox(noteName string) lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FAFAFA")).
		Background(lipgloss.Color(noteColors[noteName])).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Padding(1, 3)
}

// nextNatural returns the natural note above note, used for sharp colors
func nextNatural(note string) string {
	switch note {
	case "C":
		return "D"
	case "D":
		return "E"
	case "E":
		return "F"
	case "F":
		return "G"
	case "G":
		return "A"
	case "A":
		return "B"
	default:
		return "C"
	}
}

// RenderPitch draws a detected note as a colored box; sharps are split
// between the colors of their neighbouring naturals
func (t Theme) RenderPitch(n pitch.Note) string {
	text := n.String()
	if !strings.HasSuffix(n.Name, "#") {
		return t.noteBox(n.Name).Render(text)
	}

	base := string(n.Name[0])
	half := func(color string, left bool) lipgloss.Style {
		s := lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color(color)).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			BorderTop(true).
			BorderBottom(true).
			PaddingTop(1).
			PaddingBottom(1)
		if left {
			return s.BorderLeft(true).BorderRight(false).PaddingLeft(3).PaddingRight(0)
		}
		return s.BorderLeft(false).BorderRight(true).PaddingLeft(0).PaddingRight(3)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		half(noteColors[base], true).Render(base),
		half(noteColors[nextNatural(base)], false).Render(text[1:]))
}
