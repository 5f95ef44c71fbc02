package views

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dori/homeroom/internal/model"
	"github.com/dori/homeroom/internal/planner"
	"github.com/dori/homeroom/internal/stats"
	"github.com/dori/homeroom/internal/ui/theme"
)

// TrendPeriod selects which trend chart is shown
type TrendPeriod int

const (
	PeriodWeek TrendPeriod = iota
	PeriodMonth
)

// StatsView shows the completion report for the current scoring window
type StatsView struct {
	planner *planner.Planner
	width   int
	height  int

	period       TrendPeriod
	report       stats.Report
	confirmReset bool

	statusMsg string
}

// NewStatsView creates a new stats view
func NewStatsView(p *planner.Planner) StatsView {
	return StatsView{
		planner: p,
		period:  PeriodWeek,
	}
}

// Init initializes the stats view
func (v StatsView) Init() tea.Cmd {
	return v.loadStats()
}

// SetSize sets the view dimensions
func (v StatsView) SetSize(width, height int) StatsView {
	v.width = width
	v.height = height
	return v
}

type statsLoadedMsg struct {
	report stats.Report
	status string
}

func (v StatsView) loadStats() tea.Cmd {
	return v.statsCmd("")
}

func (v StatsView) statsCmd(status string) tea.Cmd {
	p := v.planner
	return func() tea.Msg {
		return statsLoadedMsg{report: p.Report(), status: status}
	}
}

func (v StatsView) resetStats() tea.Cmd {
	p := v.planner
	return func() tea.Msg {
		cp := p.ResetStats()
		return statsLoadedMsg{
			report: p.Report(),
			status: "Stats reset at " + cp.Since.Format("Jan 2 15:04"),
		}
	}
}

func (v StatsView) rebuildStats() tea.Cmd {
	p := v.planner
	return func() tea.Msg {
		p.RebuildStats()
		return statsLoadedMsg{report: p.Report(), status: "Stats rebuilt from all tasks"}
	}
}

// Update handles messages for the stats view
func (v StatsView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case statsLoadedMsg:
		v.report = msg.report
		v.statusMsg = msg.status
		return v, nil

	case tea.KeyMsg:
		if v.confirmReset {
			v.confirmReset = false
			switch msg.String() {
			case "y", "Y":
				return v, v.resetStats()
			default:
				v.statusMsg = "Reset cancelled"
				return v, nil
			}
		}

		v.statusMsg = ""
		switch msg.String() {
		case "w":
			v.period = PeriodWeek
		case "m":
			v.period = PeriodMonth
		case "r":
			v.confirmReset = true
		case "b":
			return v, v.rebuildStats()
		case "R":
			return v, v.loadStats()
		}
	}

	return v, nil
}

// View renders the stats view
func (v StatsView) View() string {
	if v.width == 0 || v.height == 0 {
		return "Loading..."
	}

	styles := theme.Current.Styles
	r := v.report

	var sections []string

	window := "all tasks"
	if r.Checkpoint.IsSet() {
		window = "since " + r.Checkpoint.Since.Format("Jan 2, 2006 15:04")
	}
	sections = append(sections, styles.Prompt.Render("Statistics")+styles.Muted.Render(" ─ "+window))
	sections = append(sections, "")

	if v.confirmReset {
		sections = append(sections, styles.Confirm.Render("Reset stats? Only tasks created from now on will count. (y/n)"), "")
	} else if v.statusMsg != "" {
		sections = append(sections, styles.Status.Render(v.statusMsg), "")
	}

	card := func(value, label string) string {
		return styles.Card.Render(styles.CardValue.Render(value) + "\n" + styles.CardLabel.Render(label))
	}

	m := r.Overall
	cardRow := lipgloss.JoinHorizontal(lipgloss.Top,
		card(fmt.Sprintf("%d%%", m.Percent), "Score"),
		card(fmt.Sprintf("%d/%d", m.Completed, m.Total), "Completed"),
		card(fmt.Sprintf("%d", m.OnTime), "On Time"),
		card(fmt.Sprintf("%d", m.Missed), "Missed"),
	)
	sections = append(sections, cardRow)
	sections = append(sections, v.renderKinds(), "")

	if v.period == PeriodWeek {
		sections = append(sections, v.renderTrend("This Week", r.Weekly))
	} else {
		sections = append(sections, v.renderTrend("Upcoming Months", r.Monthly))
	}
	sections = append(sections, "")

	if len(r.Subjects) > 0 {
		sections = append(sections, v.renderSubjects(), "")
	}

	hints := styles.Muted.Render("w: week • m: month • r: reset • b: rebuild • R: refresh")
	sections = append(sections, hints)

	return strings.Join(sections, "\n")
}

func (v StatsView) renderKinds() string {
	t := theme.Current.Theme
	hw, rem := v.report.ByKind.Homework, v.report.ByKind.Reminder
	hwStyle := lipgloss.NewStyle().Foreground(t.KindColor(model.KindHomework))
	remStyle := lipgloss.NewStyle().Foreground(t.KindColor(model.KindReminder))
	return hwStyle.Render(fmt.Sprintf("Homework %d%% (%d/%d)", hw.Percent, hw.Completed, hw.Total)) +
		"   " +
		remStyle.Render(fmt.Sprintf("Reminders %d%% (%d/%d)", rem.Percent, rem.Completed, rem.Total))
}

// renderTrend draws one bar per point. Each bar takes the color of the
// segment that leads into it; the first bar is neutral.
func (v StatsView) renderTrend(title string, points []stats.Point) string {
	t := theme.Current.Theme
	styles := theme.Current.Styles

	lines := []string{styles.Section.Render(title)}
	if len(points) == 0 {
		lines = append(lines, styles.Muted.Italic(true).Render("No tasks due yet"))
		return strings.Join(lines, "\n")
	}

	colors := t.BarColors(points)

	chartHeight := 5
	barWidth := 4

	for row := chartHeight; row >= 1; row-- {
		var rowStr strings.Builder
		threshold := float64(row) / float64(chartHeight)

		for i, p := range points {
			ratio := float64(p.Score) / 100
			var block string
			switch {
			case ratio >= threshold:
				block = lipgloss.NewStyle().Foreground(colors[i]).Render(strings.Repeat("█", barWidth))
			case ratio >= threshold-0.2 && ratio > 0:
				block = lipgloss.NewStyle().Foreground(colors[i]).Render(strings.Repeat("▄", barWidth))
			default:
				block = strings.Repeat(" ", barWidth)
			}
			rowStr.WriteString(block)
			if i < len(points)-1 {
				rowStr.WriteString(" ")
			}
		}
		lines = append(lines, rowStr.String())
	}

	var labelStr, scoreStr strings.Builder
	cell := lipgloss.NewStyle().Width(barWidth).Align(lipgloss.Center)
	for i, p := range points {
		labelStr.WriteString(cell.Foreground(t.Subtle).Render(p.Label))
		scoreStr.WriteString(cell.Foreground(t.Foreground).Render(fmt.Sprintf("%d", p.Score)))
		if i < len(points)-1 {
			labelStr.WriteString(" ")
			scoreStr.WriteString(" ")
		}
	}
	lines = append(lines, labelStr.String(), scoreStr.String())

	return strings.Join(lines, "\n")
}

// renderSubjects renders the subject leaderboard
func (v StatsView) renderSubjects() string {
	lines := []string{theme.Current.Styles.Section.Render("Subjects")}

	barMaxWidth := 30
	for i, rank := range v.report.Subjects {
		barWidth := int(rank.Ranking * float64(barMaxWidth))
		if barWidth < 1 && rank.Metrics.Completed > 0 {
			barWidth = 1
		}

		color := theme.SubjectColor(rank.Subject.Color)
		name := lipgloss.NewStyle().Foreground(color).Width(15).Render(truncate(rank.Subject.Name, 14))
		bar := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", barWidth))
		pad := strings.Repeat(" ", barMaxWidth-barWidth)
		detail := fmt.Sprintf("%3.0f%% done  %3.0f%% on time  (%d)",
			rank.CompletionRate*100, rank.OnTimeRate*100, rank.Metrics.Total)

		lines = append(lines, fmt.Sprintf("%d. %s %s%s %s", i+1, name, bar, pad, detail))
	}

	return strings.Join(lines, "\n")
}

// IsInputMode returns whether the view is in input mode
func (v StatsView) IsInputMode() bool {
	return v.confirmReset
}
