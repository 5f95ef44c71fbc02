package ui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dori/homeroom/internal/app"
	"github.com/dori/homeroom/internal/config"
	"github.com/dori/homeroom/internal/ui/theme"
)

func newTestRoot(t *testing.T) RootModel {
	t.Helper()
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	cfg.Notifications = false

	a, err := app.New(cfg, app.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })

	m, _ := NewRootModel(a).Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m.(RootModel)
}

func press(m RootModel, keys ...string) RootModel {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "ctrl+t":
			msg = tea.KeyMsg{Type: tea.KeyCtrlT}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(RootModel)
	}
	return m
}

func TestParseView(t *testing.T) {
	v, err := ParseView("")
	require.NoError(t, err)
	assert.Equal(t, ViewList, v)

	v, err = ParseView("stats")
	require.NoError(t, err)
	assert.Equal(t, ViewStats, v)
	assert.Equal(t, "stats", v.String())

	_, err = ParseView("kanban")
	assert.Error(t, err)
}

func TestSwitchViews(t *testing.T) {
	m := newTestRoot(t)
	assert.Contains(t, m.View(), "[list]")

	m = press(m, "2")
	assert.Equal(t, ViewStats, m.currentView)
	assert.Contains(t, m.View(), "Statistics")

	m = press(m, "1")
	assert.Equal(t, ViewList, m.currentView)
}

func TestHelpOverlay(t *testing.T) {
	m := newTestRoot(t)
	m = press(m, "?")
	require.True(t, m.helpVisible)
	out := m.View()
	assert.Contains(t, out, "Command palette")
	assert.Contains(t, out, ":every")

	m = press(m, "esc")
	assert.False(t, m.helpVisible)
}

func TestThemeCycle(t *testing.T) {
	theme.SetTheme(theme.Nord)
	t.Cleanup(func() { theme.SetTheme(theme.Nord) })

	m := press(newTestRoot(t), "ctrl+t")
	assert.Equal(t, "dracula", theme.Current.Theme.Name)
	assert.Equal(t, "Theme: dracula", m.statusMsg)
}

func TestQuitIsTextWhileTyping(t *testing.T) {
	m := newTestRoot(t)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())

	m = press(m, "a", "q")
	assert.True(t, m.inputMode())
}

func TestErrorMsgShowsInFooter(t *testing.T) {
	m := newTestRoot(t)
	next, _ := m.Update(ErrorMsg{Err: errors.New("disk full")})
	out := next.(RootModel).View()
	assert.True(t, strings.Contains(out, "disk full"))
}
