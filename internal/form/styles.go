package form

import (
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Theme is a palette for the form.
type Theme struct {
	Name        string
	Text        lipgloss.Color
	Border      lipgloss.Color
	Accent      lipgloss.Color
	Placeholder lipgloss.Color
	Error       lipgloss.Color
}

var (
	LightTheme = Theme{
		Name:        "light",
		Text:        lipgloss.Color("#000000"),
		Border:      lipgloss.Color("#dddddd"),
		Accent:      lipgloss.Color("#1976d2"),
		Placeholder: lipgloss.Color("#777777"),
		Error:       lipgloss.Color("#ff5252"),
	}
	DarkTheme = Theme{
		Name:        "dark",
		Text:        lipgloss.Color("#ffffff"),
		Border:      lipgloss.Color("#333333"),
		Accent:      lipgloss.Color("#90caf9"),
		Placeholder: lipgloss.Color("#aaaaaa"),
		Error:       lipgloss.Color("#ff5252"),
	}
)

// ThemeByName returns the named theme, defaulting to LightTheme.
func ThemeByName(name string) Theme {
	if name == DarkTheme.Name {
		return DarkTheme
	}
	return LightTheme
}

// toggle returns the other theme.
func (t Theme) toggle() Theme {
	if t.Name == DarkTheme.Name {
		return LightTheme
	}
	return DarkTheme
}

func (t Theme) title() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(t.Text)
}

func (t Theme) text() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Text)
}

func (t Theme) muted() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Placeholder).Italic(true)
}

func (t Theme) errorText() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error)
}

func (t Theme) button() lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#ffffff")).
		Background(t.Accent).
		Padding(0, 2)
}

func (t Theme) avatar() lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#ffffff")).
		Background(LightTheme.Accent).
		Padding(0, 1)
}

func (t Theme) section() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Padding(0, 1)
}

func (t Theme) focusedSection() lipgloss.Style {
	return t.section().BorderForeground(t.Accent)
}

// photoMarker is shown in place of the initial when a record has a photo.
const photoMarker = "▣"

// Initial returns the upper-cased first letter of name, or "?" when empty.
func Initial(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if size == 0 || r == utf8.RuneError {
		return "?"
	}
	return cases.Upper(language.Und).String(string(r))
}
