package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dori/homeroom/internal/app"
	applog "github.com/dori/homeroom/internal/log"
	"github.com/dori/homeroom/internal/planner"
	"github.com/dori/homeroom/internal/ui/theme"
	"github.com/dori/homeroom/internal/ui/views"
)

// header and two hint lines
const chromeHeight = 4

// RootModel switches between the task list and the stats view and owns
// the header, footer and help overlay
type RootModel struct {
	app    *app.App
	keys   KeyMap
	help   help.Model
	width  int
	height int

	currentView View
	listView    views.ListView
	statsView   views.StatsView
	helpVisible bool

	statusMsg string
	errorMsg  string
}

// NewRootModel creates a new root model
func NewRootModel(application *app.App) RootModel {
	return RootModel{
		app:         application,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		currentView: ViewList,
		listView:    views.NewListView(application.Planner, application.Attachments),
		statsView:   views.NewStatsView(application.Planner),
	}
}

// StartIn sets the view shown first
func (m RootModel) StartIn(v View) RootModel {
	m.currentView = v
	return m
}

// Init loads the starting view
func (m RootModel) Init() tea.Cmd {
	if m.currentView == ViewStats {
		return m.statsView.Init()
	}
	return m.listView.Init()
}

func (m RootModel) inputMode() bool {
	if m.currentView == ViewStats {
		return m.statsView.IsInputMode()
	}
	return m.listView.IsInputMode()
}

// Update handles messages
func (m RootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

		contentHeight := m.height - chromeHeight
		m.listView = m.listView.SetSize(m.width, contentHeight)
		m.statsView = m.statsView.SetSize(m.width, contentHeight)

	case tea.KeyMsg:
		m.statusMsg = ""
		m.errorMsg = ""
		typing := m.inputMode()

		switch {
		case key.Matches(msg, m.keys.Quit):
			// q is text while a prompt is open
			if msg.String() == "ctrl+c" || !typing {
				return m, tea.Quit
			}
		case key.Matches(msg, m.keys.ThemeCycle):
			next := theme.Next(theme.Current.Theme.Name)
			theme.SetTheme(next)
			m.statusMsg = "Theme: " + next.Name
			return m, nil
		}

		if typing {
			break
		}

		switch {
		case key.Matches(msg, m.keys.Help):
			m.helpVisible = !m.helpVisible
			return m, nil
		case m.helpVisible && key.Matches(msg, m.keys.Back):
			m.helpVisible = false
			return m, nil
		case key.Matches(msg, m.keys.ListView):
			m.currentView = ViewList
			m.helpVisible = false
			return m, m.listView.Init()
		case key.Matches(msg, m.keys.StatsView):
			m.currentView = ViewStats
			m.helpVisible = false
			return m, m.statsView.Init()
		}

	case ErrorMsg:
		applog.Log.WithError(msg.Err).Warn("ui error")
		m.errorMsg = msg.Err.Error()
		return m, nil

	case StatusMsg:
		m.statusMsg = msg.Message
		return m, nil
	}

	var cmd tea.Cmd
	var next tea.Model
	switch m.currentView {
	case ViewList:
		next, cmd = m.listView.Update(msg)
		m.listView = next.(views.ListView)
	case ViewStats:
		next, cmd = m.statsView.Update(msg)
		m.statsView = next.(views.StatsView)
	}
	return m, cmd
}

// View renders the UI
func (m RootModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	contentHeight := m.height - chromeHeight
	if m.errorMsg != "" || m.statusMsg != "" {
		contentHeight--
	}

	var content string
	switch {
	case m.helpVisible:
		content = m.renderHelp()
	case m.currentView == ViewStats:
		content = m.statsView.View()
	default:
		content = m.listView.View()
	}
	if lines := strings.Count(content, "\n") + 1; lines < contentHeight {
		content += strings.Repeat("\n", contentHeight-lines)
	}

	return strings.Join([]string{m.renderHeader(), content, m.renderFooter()}, "\n")
}

func (m RootModel) renderHeader() string {
	styles := theme.Current.Styles
	dim := styles.Muted.Padding(0, 1)

	left := lipgloss.JoinHorizontal(lipgloss.Center,
		styles.Header.Render("homeroom"),
		dim.Render("["+m.currentView.String()+"]"))
	right := dim.Render(fmt.Sprintf("%s · %d open", theme.Current.Theme.Name, m.app.Planner.Count(planner.Filter{})))

	gap := max(0, m.width-lipgloss.Width(left)-lipgloss.Width(right))
	return left + strings.Repeat(" ", gap) + right
}

// hintStyles themes the bubbles help renderer
func hintStyles() help.Styles {
	s := theme.Current.Styles
	return help.Styles{
		ShortKey:       s.HelpKey,
		ShortDesc:      s.HelpDesc,
		ShortSeparator: s.HelpSeparator,
		Ellipsis:       s.HelpSeparator,
		FullKey:        s.HelpKey,
		FullDesc:       s.HelpDesc,
		FullSeparator:  s.HelpSeparator,
	}
}

func (m RootModel) renderFooter() string {
	h := m.help
	h.Styles = hintStyles()
	h.ShortSeparator = " │ "

	var lines []string
	switch {
	case m.errorMsg != "":
		lines = append(lines, theme.Current.Styles.DueOverdue.Render(m.errorMsg))
	case m.statusMsg != "":
		lines = append(lines, theme.Current.Styles.Status.Render(m.statusMsg))
	}

	switch {
	case m.inputMode():
		lines = append(lines, h.ShortHelpView(m.keys.Prompt))
	case m.currentView == ViewStats:
		lines = append(lines, h.ShortHelpView(m.keys.Stats))
	default:
		lines = append(lines, h.ShortHelpView(m.keys.Tasks))
	}
	lines = append(lines, h.ShortHelpView(m.keys.ShortHelp()))
	return strings.Join(lines, "\n")
}

func (m RootModel) renderHelp() string {
	styles := theme.Current.Styles
	keyCol := styles.HelpKey.Width(12)
	cmdCol := styles.HelpKey.Width(28)

	var b strings.Builder
	group := func(title string, col lipgloss.Style, rows [][2]string) {
		b.WriteString(styles.Section.Render(title))
		b.WriteString("\n")
		for _, r := range rows {
			b.WriteString(col.Render(r[0]) + styles.HelpDesc.Render(r[1]) + "\n")
		}
		b.WriteString("\n")
	}
	bindings := func(bs ...key.Binding) [][2]string {
		rows := make([][2]string, 0, len(bs))
		for _, kb := range bs {
			rows = append(rows, [2]string{kb.Help().Key, kb.Help().Desc})
		}
		return rows
	}

	b.WriteString(styles.Prompt.Render("homeroom help"))
	b.WriteString("\n\n")
	group("Navigate", keyCol, bindings(m.keys.Navigate...))
	group("Tasks", keyCol, bindings(m.keys.Tasks...))
	group("Quick add", keyCol, [][2]string{
		{"#subject", "file under an existing subject"},
		{"due: at:", "due:fri due:2026-01-15 at:17:30 (default today 23:59)"},
		{"every:", "daily weekly monthly yearly"},
		{"!pin !rem", "pin, or make it a reminder"},
	})
	group("Stats", keyCol, bindings(m.keys.Stats...))
	group("General", keyCol, bindings(m.keys.ShortHelp()...))

	var palette [][2]string
	for _, c := range views.Commands() {
		palette = append(palette, [2]string{":" + c.Usage, c.Description})
	}
	group("Command palette", cmdCol, palette)

	b.WriteString(styles.Muted.Render("? or esc to close"))
	return b.String()
}
