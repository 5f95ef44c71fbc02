package views

import (
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	applog "github.com/dori/homeroom/internal/log"
	"github.com/dori/homeroom/internal/model"
	"github.com/dori/homeroom/internal/planner"
	"github.com/dori/homeroom/internal/recur"
)

func init() {
	applog.Discard()
}

var now = time.Date(2026, 3, 18, 10, 15, 0, 0, time.UTC)

func newPlanner() *planner.Planner {
	return planner.New(planner.WithClock(func() time.Time { return now }))
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// settle runs cmd and feeds its message back until the view stops asking
func settle(t *testing.T, m tea.Model, cmd tea.Cmd) tea.Model {
	t.Helper()
	for i := 0; cmd != nil && i < 10; i++ {
		msg := cmd()
		switch msg.(type) {
		case tasksLoadedMsg, taskChangedMsg, statsLoadedMsg:
		default:
			return m
		}
		m, cmd = m.Update(msg)
	}
	return m
}

func loadedList(t *testing.T, p *planner.Planner) ListView {
	t.Helper()
	v := NewListView(p, nil).SetSize(120, 40)
	return settle(t, v, v.Init()).(ListView)
}

func TestListQuickAddCreatesSeries(t *testing.T) {
	p := newPlanner()
	_, err := p.AddSubject("English", model.Color{R: 1, A: 1})
	require.NoError(t, err)
	v := loadedList(t, p)

	m, _ := v.Update(runes("a"))
	v = m.(ListView)
	require.True(t, v.IsInputMode())

	m, _ = v.Update(runes("Essay #english every:weekly"))
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	v = settle(t, m, cmd).(ListView)

	assert.False(t, v.IsInputMode())
	assert.Len(t, v.tasks, recur.OccurrenceCap(model.RecurWeekly))
	assert.Equal(t, "Essay", v.tasks[0].Title)
	assert.Equal(t, "English", p.SubjectName(v.tasks[0].SubjectID))
	assert.Contains(t, v.View(), "[English]")
}

func TestListUnknownSubjectReportsError(t *testing.T) {
	v := loadedList(t, newPlanner())

	m, _ := v.Update(runes("a"))
	m, _ = m.Update(runes("Essay #nope"))
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	v = settle(t, m, cmd).(ListView)

	assert.Empty(t, v.tasks)
	assert.Contains(t, v.statusMsg, "nope")
}

func TestListToggleDoneAndPin(t *testing.T) {
	p := newPlanner()
	_, err := p.CreateTask(recur.Template{Title: "Quiz", DueDate: now.Add(time.Hour)}, model.RecurNone)
	require.NoError(t, err)
	v := loadedList(t, p)

	m, cmd := v.Update(tea.KeyMsg{Type: tea.KeyTab})
	v = settle(t, m, cmd).(ListView)
	require.Len(t, v.tasks, 1)
	assert.True(t, v.tasks[0].IsDone)
	assert.Contains(t, v.View(), "[x]")

	m, cmd = v.Update(runes("p"))
	v = settle(t, m, cmd).(ListView)
	assert.True(t, v.tasks[0].IsPinned)
}

func TestListHideDone(t *testing.T) {
	p := newPlanner()
	created, err := p.CreateTask(recur.Template{Title: "Quiz", DueDate: now.Add(time.Hour)}, model.RecurNone)
	require.NoError(t, err)
	_, err = p.ToggleDone(created[0].ID)
	require.NoError(t, err)
	v := loadedList(t, p)
	require.Len(t, v.tasks, 1)

	m, cmd := v.Update(runes("h"))
	v = settle(t, m, cmd).(ListView)
	assert.Empty(t, v.tasks)
}

func TestListDeleteOccurrenceThenSeries(t *testing.T) {
	p := newPlanner()
	_, err := p.CreateTask(recur.Template{Title: "Reading", DueDate: now.Add(time.Hour)}, model.RecurDaily)
	require.NoError(t, err)
	total := recur.OccurrenceCap(model.RecurDaily)
	v := loadedList(t, p)
	require.Len(t, v.tasks, total)

	m, _ := v.Update(runes("d"))
	v = m.(ListView)
	assert.Contains(t, v.View(), fmt.Sprintf("all %d in series", total))

	m, cmd := v.Update(runes("o"))
	v = settle(t, m, cmd).(ListView)
	assert.Len(t, v.tasks, total-1)

	m, _ = v.Update(runes("d"))
	m, cmd = m.Update(runes("s"))
	v = settle(t, m, cmd).(ListView)
	assert.Empty(t, v.tasks)
	assert.Empty(t, p.Tasks())
}

func TestListDeleteCancel(t *testing.T) {
	p := newPlanner()
	_, err := p.CreateTask(recur.Template{Title: "Quiz", DueDate: now.Add(time.Hour)}, model.RecurNone)
	require.NoError(t, err)
	v := loadedList(t, p)

	m, _ := v.Update(runes("d"))
	m, _ = m.Update(runes("s"))
	v = m.(ListView)
	// no series, so "s" does nothing and the prompt stays up
	assert.True(t, v.IsInputMode())

	m, _ = v.Update(runes("n"))
	v = m.(ListView)
	assert.False(t, v.IsInputMode())
	assert.Len(t, p.Tasks(), 1)
}

func TestListCommands(t *testing.T) {
	p := newPlanner()
	created, err := p.CreateTask(recur.Template{Title: "Lab", DueDate: now.Add(time.Hour)}, model.RecurNone)
	require.NoError(t, err)
	v := loadedList(t, p)

	exec := func(v ListView, line string) ListView {
		m, cmd := v.executeCommand(line)
		return settle(t, m, cmd).(ListView)
	}

	v = exec(v, "newsubject Bio #00ff00")
	s, err := p.SubjectByName("bio")
	require.NoError(t, err)
	assert.Equal(t, "#00ff00", s.Color.Hex())

	v = exec(v, "subject bio")
	got, _ := p.Task(created[0].ID)
	assert.Equal(t, s.ID, *got.SubjectID)

	v = exec(v, "due tomorrow 8:30")
	got, _ = p.Task(created[0].ID)
	assert.Equal(t, time.Date(2026, 3, 19, 8, 30, 0, 0, time.UTC), got.DueDate)

	v = exec(v, "kind reminder")
	got, _ = p.Task(created[0].ID)
	assert.Equal(t, model.KindReminder, got.Kind)

	v = exec(v, "every weekly")
	got, _ = p.Task(created[0].ID)
	assert.Equal(t, model.RecurWeekly, got.Recurrence)
	assert.NotNil(t, got.SeriesID)

	v = exec(v, "subject none")
	got, _ = p.Task(created[0].ID)
	assert.Nil(t, got.SubjectID)

	v = exec(v, "bogus")
	assert.Contains(t, v.statusMsg, "Unknown command")
}

func TestCommandSuggestions(t *testing.T) {
	v := NewListView(newPlanner(), nil)
	v.input.SetValue("de")
	v.updateCommandSuggestions()
	require.NotEmpty(t, v.cmdSuggestions)
	assert.Equal(t, "delete", v.cmdSuggestions[0].Name)

	v.input.SetValue("due tom")
	v.updateCommandSuggestions()
	assert.Empty(t, v.cmdSuggestions)
}

func TestStatsResetAndRebuild(t *testing.T) {
	p := newPlanner()
	created, err := p.CreateTask(recur.Template{Title: "Quiz", DueDate: now.Add(time.Hour)}, model.RecurNone)
	require.NoError(t, err)
	_, err = p.ToggleDone(created[0].ID)
	require.NoError(t, err)

	v := NewStatsView(p).SetSize(120, 40)
	v = settle(t, v, v.Init()).(StatsView)
	assert.Equal(t, 1, v.report.Overall.Completed)
	assert.Contains(t, v.View(), "This Week")

	m, _ := v.Update(runes("r"))
	v = m.(StatsView)
	require.True(t, v.IsInputMode())

	m, cmd := v.Update(runes("y"))
	v = settle(t, m, cmd).(StatsView)
	assert.True(t, p.Checkpoint().IsSet())
	assert.Equal(t, 1, v.report.Overall.Total)

	m, cmd = v.Update(runes("b"))
	v = settle(t, m, cmd).(StatsView)
	assert.False(t, p.Checkpoint().IsSet())
	assert.Equal(t, 1, v.report.Overall.Total)
}

func TestStatsResetCancelled(t *testing.T) {
	p := newPlanner()
	v := NewStatsView(p).SetSize(120, 40)

	m, _ := v.Update(runes("r"))
	m, _ = m.Update(runes("n"))
	v = m.(StatsView)
	assert.False(t, v.IsInputMode())
	assert.False(t, p.Checkpoint().IsSet())
}
