package ui

import "fmt"

// View is a top-level screen of the TUI
type View int

const (
	ViewList View = iota
	ViewStats
)

// String returns the name used by --view and the header
func (v View) String() string {
	switch v {
	case ViewList:
		return "list"
	case ViewStats:
		return "stats"
	default:
		return "unknown"
	}
}

// ParseView maps a --view flag value to a View; empty means the list
func ParseView(name string) (View, error) {
	switch name {
	case "", "list":
		return ViewList, nil
	case "stats":
		return ViewStats, nil
	default:
		return ViewList, fmt.Errorf("unknown view %q (want list or stats)", name)
	}
}

// ErrorMsg reports a failure in the footer
type ErrorMsg struct {
	Err error
}

// StatusMsg shows a transient line in the footer
type StatusMsg struct {
	Message string
}
