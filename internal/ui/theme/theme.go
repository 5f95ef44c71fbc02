package theme

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dori/homeroom/internal/model"
	"github.com/dori/homeroom/internal/stats"
)

// Theme defines the color scheme for the UI
type Theme struct {
	Name string

	// Base colors
	Background lipgloss.Color
	Foreground lipgloss.Color
	Subtle     lipgloss.Color
	Highlight  lipgloss.Color
	Border     lipgloss.Color

	// Semantic colors
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Success   lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color
	Info      lipgloss.Color

	// Trend segment colors
	TrendUp   lipgloss.Color
	TrendDown lipgloss.Color
	TrendFlat lipgloss.Color

	// Task kinds
	KindHomework lipgloss.Color
	KindReminder lipgloss.Color

	Pinned lipgloss.Color
}

// Styles holds pre-computed lipgloss styles based on theme
type Styles struct {
	Header lipgloss.Style

	// Task rows
	TaskNormal   lipgloss.Style
	TaskSelected lipgloss.Style
	TaskDone     lipgloss.Style
	TaskOverdue  lipgloss.Style
	DueDate      lipgloss.Style
	DueOverdue   lipgloss.Style
	Pinned       lipgloss.Style
	Recurrence   lipgloss.Style

	// Messages and prompts
	Status  lipgloss.Style
	Confirm lipgloss.Style
	Muted   lipgloss.Style
	Empty   lipgloss.Style
	Prompt  lipgloss.Style

	InputFocused lipgloss.Style

	// Stats cards and charts
	Section   lipgloss.Style
	Card      lipgloss.Style
	CardValue lipgloss.Style
	CardLabel lipgloss.Style

	// Help and key hints
	HelpKey       lipgloss.Style
	HelpDesc      lipgloss.Style
	HelpSeparator lipgloss.Style
}

// NewStyles creates styles from a theme
func NewStyles(t Theme) Styles {
	return Styles{
		Header: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true).
			Padding(0, 1),

		TaskNormal: lipgloss.NewStyle().
			Foreground(t.Foreground),

		TaskSelected: lipgloss.NewStyle().
			Foreground(t.Foreground).
			Background(t.Highlight),

		TaskDone: lipgloss.NewStyle().
			Foreground(t.Subtle).
			Strikethrough(true),

		TaskOverdue: lipgloss.NewStyle().
			Foreground(t.Error),

		DueDate: lipgloss.NewStyle().
			Foreground(t.Warning),

		DueOverdue: lipgloss.NewStyle().
			Foreground(t.Error).
			Bold(true),

		Pinned: lipgloss.NewStyle().
			Foreground(t.Pinned).
			Bold(true),

		Recurrence: lipgloss.NewStyle().
			Foreground(t.Secondary),

		Status: lipgloss.NewStyle().
			Foreground(t.Info).
			Italic(true),

		Confirm: lipgloss.NewStyle().
			Foreground(t.Warning).
			Bold(true),

		Muted: lipgloss.NewStyle().
			Foreground(t.Subtle),

		Empty: lipgloss.NewStyle().
			Foreground(t.Subtle).
			Italic(true).
			Padding(2, 0),

		Prompt: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true),

		InputFocused: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(t.Primary).
			Padding(0, 1),

		Section: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Secondary),

		Card: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 2).
			Width(18),

		CardValue: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Primary),

		CardLabel: lipgloss.NewStyle().
			Foreground(t.Subtle),

		HelpKey: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true),

		HelpDesc: lipgloss.NewStyle().
			Foreground(t.Subtle),

		HelpSeparator: lipgloss.NewStyle().
			Foreground(t.Border),
	}
}

// KindColor returns the accent for a task kind
func (t Theme) KindColor(k model.Kind) lipgloss.Color {
	if k == model.KindReminder {
		return t.KindReminder
	}
	return t.KindHomework
}

// TrendColor returns the color of a chart segment moving in direction d
func (t Theme) TrendColor(d stats.Direction) lipgloss.Color {
	switch d {
	case stats.Up:
		return t.TrendUp
	case stats.Down:
		return t.TrendDown
	default:
		return t.TrendFlat
	}
}

// BarColors colors each trend point by the segment leading into it; the
// first point has no incoming segment and is drawn flat.
func (t Theme) BarColors(points []stats.Point) []lipgloss.Color {
	colors := make([]lipgloss.Color, len(points))
	dirs := stats.Directions(points)
	for i := range points {
		if i == 0 {
			colors[i] = t.TrendFlat
			continue
		}
		colors[i] = t.TrendColor(dirs[i-1])
	}
	return colors
}

// SubjectColor converts a stored subject color for the terminal
func SubjectColor(c model.Color) lipgloss.Color {
	return lipgloss.Color(c.Hex())
}

// Current holds the current active theme and styles
var Current = struct {
	Theme  Theme
	Styles Styles
}{
	Theme:  Nord,
	Styles: NewStyles(Nord),
}

// SetTheme changes the current theme
func SetTheme(t Theme) {
	Current.Theme = t
	Current.Styles = NewStyles(t)
}

// Available returns all available themes
func Available() []Theme {
	return []Theme{Nord, Dracula, Gruvbox, Catppuccin}
}

// ByName returns a theme by its name, ignoring case
func ByName(name string) (Theme, bool) {
	for _, t := range Available() {
		if strings.EqualFold(t.Name, name) {
			return t, true
		}
	}
	return Theme{}, false
}

// Next returns the theme after the named one, wrapping around
func Next(name string) Theme {
	themes := Available()
	for i, t := range themes {
		if t.Name == name {
			return themes[(i+1)%len(themes)]
		}
	}
	return themes[0]
}
