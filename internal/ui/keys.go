package ui

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap holds the root bindings plus the per-view bindings shown in the
// footer and help overlay. The views match their own keys directly.
type KeyMap struct {
	Quit       key.Binding
	Help       key.Binding
	Back       key.Binding
	ThemeCycle key.Binding
	ListView   key.Binding
	StatsView  key.Binding

	Navigate []key.Binding
	Tasks    []key.Binding
	Stats    []key.Binding
	Prompt   []key.Binding
}

func bind(help, desc string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(help, desc))
}

// DefaultKeyMap returns the default keybindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit:       bind("q", "quit", "q", "ctrl+c"),
		Help:       bind("?", "help", "?"),
		Back:       bind("esc", "close", "esc"),
		ThemeCycle: bind("ctrl+t", "theme", "ctrl+t"),
		ListView:   bind("1", "tasks", "1"),
		StatsView:  bind("2", "stats", "2"),

		Navigate: []key.Binding{
			bind("↑/k ↓/j", "move", "up", "k", "down", "j"),
			bind("g/G", "top/bottom", "g", "G"),
			bind("pgup/pgdn", "page", "pgup", "pgdown"),
		},
		Tasks: []key.Binding{
			bind("a", "add", "a"),
			bind("enter", "edit", "enter"),
			bind("tab", "done", "tab", " "),
			bind("p", "pin", "p"),
			bind("d", "del", "d"),
			bind("h", "hide done", "h"),
			bind("/", "search", "/"),
			bind(":", "cmd", ":"),
		},
		Stats: []key.Binding{
			bind("w", "week", "w"),
			bind("m", "month", "m"),
			bind("r", "reset", "r"),
			bind("b", "rebuild", "b"),
			bind("R", "refresh", "R"),
		},
		Prompt: []key.Binding{
			bind("enter", "confirm", "enter"),
			bind("esc", "cancel", "esc"),
		},
	}
}

// ShortHelp returns the bindings available from every view
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.ListView, k.StatsView, k.ThemeCycle, k.Help, k.Quit}
}

// FullHelp returns every binding grouped by column
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.Navigate, k.Tasks, k.Stats, k.ShortHelp()}
}
