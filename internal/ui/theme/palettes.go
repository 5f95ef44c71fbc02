package theme

import "github.com/charmbracelet/lipgloss"

// palette lists a theme's colors in Theme field order, minus the name
type palette [17]string

func fromPalette(name string, p palette) Theme {
	c := func(i int) lipgloss.Color { return lipgloss.Color(p[i]) }
	return Theme{
		Name:         name,
		Background:   c(0),
		Foreground:   c(1),
		Subtle:       c(2),
		Highlight:    c(3),
		Border:       c(4),
		Primary:      c(5),
		Secondary:    c(6),
		Success:      c(7),
		Warning:      c(8),
		Error:        c(9),
		Info:         c(10),
		TrendUp:      c(11),
		TrendDown:    c(12),
		TrendFlat:    c(13),
		KindHomework: c(14),
		KindReminder: c(15),
		Pinned:       c(16),
	}
}

// Nord: https://www.nordtheme.com/
var Nord = fromPalette("nord", palette{
	"#2E3440", "#ECEFF4", "#4C566A", "#3B4252", "#4C566A",
	"#88C0D0", "#81A1C1", "#A3BE8C", "#EBCB8B", "#BF616A", "#5E81AC",
	"#A3BE8C", "#BF616A", "#4C566A",
	"#81A1C1", "#B48EAD",
	"#EBCB8B",
})

// Dracula: https://draculatheme.com/
var Dracula = fromPalette("dracula", palette{
	"#282A36", "#F8F8F2", "#6272A4", "#44475A", "#6272A4",
	"#BD93F9", "#8BE9FD", "#50FA7B", "#F1FA8C", "#FF5555", "#8BE9FD",
	"#50FA7B", "#FF5555", "#6272A4",
	"#8BE9FD", "#FF79C6",
	"#F1FA8C",
})

// Gruvbox dark
var Gruvbox = fromPalette("gruvbox", palette{
	"#282828", "#EBDBB2", "#928374", "#3C3836", "#504945",
	"#83A598", "#8EC07C", "#B8BB26", "#FABD2F", "#FB4934", "#83A598",
	"#B8BB26", "#FB4934", "#928374",
	"#83A598", "#D3869B",
	"#FABD2F",
})

// Catppuccin Mocha: https://github.com/catppuccin/catppuccin
var Catppuccin = fromPalette("catppuccin", palette{
	"#1E1E2E", "#CDD6F4", "#6C7086", "#313244", "#45475A",
	"#89B4FA", "#CBA6F7", "#A6E3A1", "#F9E2AF", "#F38BA8", "#74C7EC",
	"#A6E3A1", "#F38BA8", "#6C7086",
	"#89B4FA", "#F5C2E7",
	"#F9E2AF",
})
