package views

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	applog "github.com/dori/homeroom/internal/log"
	"github.com/dori/homeroom/internal/model"
	"github.com/dori/homeroom/internal/planner"
	"github.com/dori/homeroom/internal/quickadd"
	"github.com/dori/homeroom/internal/recur"
	"github.com/dori/homeroom/internal/ui/theme"
)

// ListMode represents the current input mode of the list view
type ListMode int

const (
	ListModeNormal ListMode = iota
	ListModeAdd
	ListModeEdit
	ListModeSearch
	ListModeCommand
	ListModeConfirmDelete
)

// Importer copies external files into the attachment store
type Importer interface {
	ImportAll(ctx context.Context, sources []string) []model.Attachment
}

// CommandDef defines a command for the command palette
type CommandDef struct {
	Name        string   // Primary command name
	Aliases     []string // Alternative names
	Description string   // What the command does
	Usage       string   // Usage example
	HasArgs     bool     // Whether it takes arguments
}

// allCommands is the list of available commands
var allCommands = []CommandDef{
	{Name: "due", Aliases: []string{"d"}, Description: "Set due date", Usage: "due friday 17:00", HasArgs: true},
	{Name: "every", Aliases: []string{"repeat"}, Description: "Set recurrence", Usage: "every weekly", HasArgs: true},
	{Name: "subject", Aliases: []string{"s"}, Description: "Set subject (none clears)", Usage: "subject math", HasArgs: true},
	{Name: "kind", Aliases: []string{"k"}, Description: "Set kind", Usage: "kind reminder", HasArgs: true},
	{Name: "newsubject", Aliases: []string{"ns"}, Description: "Create subject", Usage: "newsubject Math #4c8bf5", HasArgs: true},
	{Name: "attach", Aliases: []string{"a"}, Description: "Attach files", Usage: "attach ~/scan.pdf", HasArgs: true},
	{Name: "detach", Aliases: []string{}, Description: "Remove all attachments", Usage: "detach", HasArgs: false},
	{Name: "done", Aliases: []string{"complete"}, Description: "Toggle done status", Usage: "done", HasArgs: false},
	{Name: "pin", Aliases: []string{}, Description: "Toggle pinned", Usage: "pin", HasArgs: false},
	{Name: "delete", Aliases: []string{"del", "rm"}, Description: "Delete task", Usage: "delete", HasArgs: false},
	{Name: "filter", Aliases: []string{"f"}, Description: "Filter tasks by text", Usage: "filter essay", HasArgs: true},
	{Name: "only", Aliases: []string{"fs"}, Description: "Show one subject", Usage: "only math", HasArgs: true},
	{Name: "clear", Aliases: []string{}, Description: "Clear all filters", Usage: "clear", HasArgs: false},
	{Name: "theme", Aliases: []string{}, Description: "Change theme", Usage: "theme nord", HasArgs: true},
	{Name: "help", Aliases: []string{"h", "?"}, Description: "Show available commands", Usage: "help", HasArgs: false},
}

// ListView displays tasks in a list format
type ListView struct {
	planner  *planner.Planner
	importer Importer
	width    int
	height   int

	tasks        []model.Task
	subjects     []model.Subject
	cursor       int
	scrollOffset int

	mode      ListMode
	input     textinput.Model
	editingID string
	deleteID  string

	hideDone      bool
	searchFilter  string
	filterSubject string
	statusMsg     string

	cmdSuggestions []CommandDef
	cmdCursor      int
}

// NewListView creates a new list view
func NewListView(p *planner.Planner, importer Importer) ListView {
	ti := textinput.New()
	ti.Placeholder = "Essay draft #english due:fri at:17 every:weekly !pin"
	ti.CharLimit = 256

	return ListView{
		planner:  p,
		importer: importer,
		input:    ti,
	}
}

// Init initializes the list view
func (v ListView) Init() tea.Cmd {
	return v.loadTasks
}

// IsInputMode returns true when the view is capturing text input
func (v ListView) IsInputMode() bool {
	return v.mode != ListModeNormal
}

// SetSize updates the view dimensions
func (v ListView) SetSize(width, height int) ListView {
	v.width = width
	v.height = height
	v.input.Width = width - 4
	return v
}

// visibleTaskCount returns how many tasks can fit in the viewport
func (v ListView) visibleTaskCount() int {
	return max(1, v.height-4)
}

// ensureCursorVisible adjusts scrollOffset to keep cursor in view
func (v *ListView) ensureCursorVisible() {
	visible := v.visibleTaskCount()

	if v.cursor < v.scrollOffset {
		v.scrollOffset = v.cursor
	}
	if v.cursor >= v.scrollOffset+visible {
		v.scrollOffset = v.cursor - visible + 1
	}

	maxOffset := max(0, len(v.tasks)-visible)
	if v.scrollOffset > maxOffset {
		v.scrollOffset = maxOffset
	}
	if v.scrollOffset < 0 {
		v.scrollOffset = 0
	}
}

// currentTask returns the task under the cursor
func (v ListView) currentTask() (model.Task, bool) {
	if v.cursor < 0 || v.cursor >= len(v.tasks) {
		return model.Task{}, false
	}
	return v.tasks[v.cursor], true
}

// Update handles messages for the list view
func (v ListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tasksLoadedMsg:
		v.tasks = msg.tasks
		v.subjects = msg.subjects
		if msg.focusID != "" {
			for i, t := range v.tasks {
				if t.ID == msg.focusID {
					v.cursor = i
					break
				}
			}
		}
		if v.cursor >= len(v.tasks) {
			v.cursor = max(0, len(v.tasks)-1)
		}
		v.ensureCursorVisible()
		return v, nil

	case taskChangedMsg:
		if msg.err != nil {
			applog.Log.WithError(msg.err).Debug("task action failed")
			v.statusMsg = msg.err.Error()
			return v, nil
		}
		if msg.status != "" {
			v.statusMsg = msg.status
		}
		return v, v.reload(msg.focusID)

	case tea.KeyMsg:
		switch v.mode {
		case ListModeAdd:
			return v.handleAddMode(msg)
		case ListModeEdit:
			return v.handleEditMode(msg)
		case ListModeSearch:
			return v.handleSearchMode(msg)
		case ListModeCommand:
			return v.handleCommandMode(msg)
		case ListModeConfirmDelete:
			return v.handleDeleteConfirm(msg)
		default:
			return v.handleNormalMode(msg)
		}
	}

	if v.mode != ListModeNormal && v.mode != ListModeConfirmDelete {
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}
	return v, nil
}

// handleNormalMode handles keypresses in normal mode
func (v ListView) handleNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v.statusMsg = ""

	switch msg.String() {
	case "up", "k":
		if v.cursor > 0 {
			v.cursor--
		}
	case "down", "j":
		if v.cursor < len(v.tasks)-1 {
			v.cursor++
		}
	case "g":
		v.cursor = 0
	case "G":
		v.cursor = max(0, len(v.tasks)-1)
	case "pgup", "ctrl+u":
		v.cursor = max(0, v.cursor-v.visibleTaskCount())
	case "pgdown", "ctrl+d":
		v.cursor = max(0, min(len(v.tasks)-1, v.cursor+v.visibleTaskCount()))

	case "a":
		v.mode = ListModeAdd
		v.input.Reset()
		v.input.Placeholder = "Essay draft #english due:fri at:17 every:weekly !pin"
		v.input.Focus()
		return v, textinput.Blink

	case "enter":
		if task, ok := v.currentTask(); ok {
			v.mode = ListModeEdit
			v.editingID = task.ID
			v.input.SetValue(task.Title)
			v.input.CursorEnd()
			v.input.Focus()
			return v, textinput.Blink
		}

	case "tab", " ":
		if task, ok := v.currentTask(); ok {
			return v, v.toggleDone(task.ID)
		}

	case "p":
		if task, ok := v.currentTask(); ok {
			return v, v.togglePinned(task.ID)
		}

	case "d", "delete":
		if task, ok := v.currentTask(); ok {
			v.mode = ListModeConfirmDelete
			v.deleteID = task.ID
		}

	case "h":
		v.hideDone = !v.hideDone
		if v.hideDone {
			v.statusMsg = "Hiding completed tasks"
		} else {
			v.statusMsg = "Showing all tasks"
		}
		return v, v.loadTasks

	case "/":
		v.mode = ListModeSearch
		v.input.SetValue(v.searchFilter)
		v.input.Placeholder = "filter..."
		v.input.CursorEnd()
		v.input.Focus()
		return v, textinput.Blink

	case ":":
		v.mode = ListModeCommand
		v.input.Reset()
		v.input.Placeholder = "command"
		v.input.Focus()
		v.updateCommandSuggestions()
		return v, textinput.Blink

	case "esc":
		if v.hasActiveFilters() {
			v.searchFilter = ""
			v.filterSubject = ""
			return v, v.loadTasks
		}
	}

	v.ensureCursorVisible()
	return v, nil
}

// handleAddMode handles keypresses when adding a task
func (v ListView) handleAddMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		line := strings.TrimSpace(v.input.Value())
		if line != "" {
			v.mode = ListModeNormal
			v.input.Blur()
			return v, v.createTask(line)
		}
	case "esc":
		v.mode = ListModeNormal
		v.input.Blur()
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// handleEditMode handles keypresses in edit mode
func (v ListView) handleEditMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		title := strings.TrimSpace(v.input.Value())
		if title != "" {
			v.mode = ListModeNormal
			v.input.Blur()
			return v, v.edit(v.editingID, planner.TaskEdit{Title: &title}, "")
		}
	case "esc":
		v.mode = ListModeNormal
		v.input.Blur()
		v.editingID = ""
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// handleSearchMode handles keypresses in search mode
func (v ListView) handleSearchMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		v.searchFilter = strings.TrimSpace(v.input.Value())
		v.mode = ListModeNormal
		v.input.Blur()
		return v, v.loadTasks
	case "esc":
		v.mode = ListModeNormal
		v.input.Blur()
		v.input.SetValue(v.searchFilter)
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	v.searchFilter = v.input.Value()
	return v, tea.Batch(cmd, v.loadTasks)
}

// handleCommandMode handles keypresses in command mode
func (v ListView) handleCommandMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		command := strings.TrimSpace(v.input.Value())
		if len(v.cmdSuggestions) > 0 && v.cmdCursor < len(v.cmdSuggestions) {
			selected := v.cmdSuggestions[v.cmdCursor]
			if !strings.Contains(command, " ") {
				command = selected.Name
			}
		}
		v.mode = ListModeNormal
		v.input.Blur()
		v.cmdSuggestions = nil
		v.cmdCursor = 0
		if command != "" {
			return v.executeCommand(command)
		}
		return v, nil

	case "esc":
		v.mode = ListModeNormal
		v.input.Blur()
		v.cmdSuggestions = nil
		v.cmdCursor = 0
		return v, nil

	case "tab":
		if len(v.cmdSuggestions) > 0 && v.cmdCursor < len(v.cmdSuggestions) {
			cmd := v.cmdSuggestions[v.cmdCursor]
			if cmd.HasArgs {
				v.input.SetValue(cmd.Name + " ")
			} else {
				v.input.SetValue(cmd.Name)
			}
			v.input.CursorEnd()
			v.updateCommandSuggestions()
		}
		return v, nil

	case "up", "ctrl+p":
		if v.cmdCursor > 0 {
			v.cmdCursor--
		}
		return v, nil

	case "down", "ctrl+n":
		if v.cmdCursor < len(v.cmdSuggestions)-1 {
			v.cmdCursor++
		}
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	v.updateCommandSuggestions()
	return v, cmd
}

// updateCommandSuggestions filters commands based on current input
func (v *ListView) updateCommandSuggestions() {
	input := strings.TrimSpace(strings.ToLower(v.input.Value()))

	// Typing arguments
	if strings.Contains(input, " ") {
		v.cmdSuggestions = nil
		v.cmdCursor = 0
		return
	}

	var matches []CommandDef
	for _, cmd := range allCommands {
		if strings.HasPrefix(cmd.Name, input) {
			matches = append(matches, cmd)
			continue
		}
		for _, alias := range cmd.Aliases {
			if strings.HasPrefix(alias, input) {
				matches = append(matches, cmd)
				break
			}
		}
	}

	v.cmdSuggestions = matches
	if v.cmdCursor >= len(v.cmdSuggestions) {
		v.cmdCursor = 0
	}
}

// executeCommand parses and executes a command
func (v ListView) executeCommand(command string) (tea.Model, tea.Cmd) {
	parts := strings.Fields(command)
	if len(parts) == 0 {
		return v, nil
	}

	name := strings.ToLower(parts[0])
	args := parts[1:]

	// Commands that don't need a task
	switch name {
	case "newsubject", "ns":
		return v.cmdNewSubject(args)
	case "filter", "f":
		v.searchFilter = strings.Join(args, " ")
		return v, v.loadTasks
	case "only", "fs":
		return v.cmdOnlySubject(args)
	case "clear":
		v.searchFilter = ""
		v.filterSubject = ""
		v.statusMsg = "Filters cleared"
		return v, v.loadTasks
	case "theme":
		return v.cmdSetTheme(args)
	case "help", "h", "?":
		var names []string
		for _, c := range allCommands {
			names = append(names, c.Name)
		}
		v.statusMsg = "Commands: " + strings.Join(names, ", ")
		return v, nil
	}

	task, ok := v.currentTask()
	if !ok {
		v.statusMsg = "No task selected"
		return v, nil
	}

	switch name {
	case "due", "d":
		return v.cmdSetDue(task, args)
	case "every", "repeat":
		return v.cmdSetRecurrence(task, args)
	case "subject", "s":
		return v.cmdSetSubject(task, args)
	case "kind", "k":
		return v.cmdSetKind(task, args)
	case "attach", "a":
		return v.cmdAttach(task, args)
	case "detach":
		none := []model.Attachment{}
		return v, v.edit(task.ID, planner.TaskEdit{Attachments: &none}, "Attachments removed")
	case "done", "complete":
		return v, v.toggleDone(task.ID)
	case "pin":
		return v, v.togglePinned(task.ID)
	case "delete", "del", "rm":
		v.mode = ListModeConfirmDelete
		v.deleteID = task.ID
		return v, nil
	default:
		v.statusMsg = fmt.Sprintf("Unknown command: %s", name)
		return v, nil
	}
}

// cmdSetDue moves the task to a new date, keeping its time unless one is given
func (v ListView) cmdSetDue(task model.Task, args []string) (tea.Model, tea.Cmd) {
	if len(args) == 0 {
		v.statusMsg = "Usage: due <date> [HH:MM] (e.g., due tomorrow, due fri 17:00)"
		return v, nil
	}

	now := v.planner.Now()
	date, ok := quickadd.ParseDate(args[0], now)
	if !ok {
		v.statusMsg = fmt.Sprintf("Unknown date: %s", args[0])
		return v, nil
	}
	clock := task.DueDate.Format("15:04")
	if len(args) > 1 {
		clock = args[1]
	}
	due, ok := quickadd.At(date, clock)
	if !ok {
		v.statusMsg = fmt.Sprintf("Unknown time: %s", clock)
		return v, nil
	}
	return v, v.edit(task.ID, planner.TaskEdit{DueDate: &due}, "Due "+quickadd.FormatDue(due, now))
}

// cmdSetRecurrence changes the cadence of one occurrence
func (v ListView) cmdSetRecurrence(task model.Task, args []string) (tea.Model, tea.Cmd) {
	if len(args) == 0 {
		v.statusMsg = "Usage: every <none|daily|weekly|monthly|yearly>"
		return v, nil
	}
	r, ok := model.ParseRecurrence(args[0])
	if !ok {
		v.statusMsg = fmt.Sprintf("Unknown cadence: %s", args[0])
		return v, nil
	}
	return v, v.edit(task.ID, planner.TaskEdit{Recurrence: &r}, "Repeats "+string(r))
}

// cmdSetSubject assigns a subject by name, or clears it with "none"
func (v ListView) cmdSetSubject(task model.Task, args []string) (tea.Model, tea.Cmd) {
	if len(args) == 0 {
		v.statusMsg = "Usage: subject <name|none>"
		return v, nil
	}
	name := strings.Join(args, " ")
	if strings.EqualFold(name, "none") {
		empty := ""
		return v, v.edit(task.ID, planner.TaskEdit{Subject: &empty}, "Subject cleared")
	}
	s, err := v.planner.SubjectByName(name)
	if err != nil {
		v.statusMsg = fmt.Sprintf("Subject not found: %s (use :newsubject)", name)
		return v, nil
	}
	return v, v.edit(task.ID, planner.TaskEdit{Subject: &s.ID}, "Subject: "+s.Name)
}

func (v ListView) cmdSetKind(task model.Task, args []string) (tea.Model, tea.Cmd) {
	if len(args) == 0 {
		v.statusMsg = "Usage: kind <homework|reminder>"
		return v, nil
	}
	var kind model.Kind
	switch strings.ToLower(args[0]) {
	case "homework", "hw":
		kind = model.KindHomework
	case "reminder", "rem", "r":
		kind = model.KindReminder
	default:
		v.statusMsg = fmt.Sprintf("Unknown kind: %s", args[0])
		return v, nil
	}
	return v, v.edit(task.ID, planner.TaskEdit{Kind: &kind}, "Kind: "+string(kind))
}

// cmdNewSubject creates a subject; a trailing #rrggbb sets its color
func (v ListView) cmdNewSubject(args []string) (tea.Model, tea.Cmd) {
	if len(args) == 0 {
		v.statusMsg = "Usage: newsubject <name> [#rrggbb]"
		return v, nil
	}

	color := model.Color{R: 0.5, G: 0.5, B: 0.5, A: 1}
	if last := args[len(args)-1]; strings.HasPrefix(last, "#") && len(args) > 1 {
		c, err := model.ParseHexColor(last)
		if err != nil {
			v.statusMsg = fmt.Sprintf("Bad color: %s", last)
			return v, nil
		}
		color = c
		args = args[:len(args)-1]
	}

	name := strings.Join(args, " ")
	p := v.planner
	return v, func() tea.Msg {
		s, err := p.AddSubject(name, color)
		if err != nil {
			return taskChangedMsg{err: err}
		}
		return taskChangedMsg{status: fmt.Sprintf("Created subject: %s", s.Name)}
	}
}

// cmdOnlySubject limits the list to one subject
func (v ListView) cmdOnlySubject(args []string) (tea.Model, tea.Cmd) {
	if len(args) == 0 {
		v.filterSubject = ""
		return v, v.loadTasks
	}
	s, err := v.planner.SubjectByName(strings.Join(args, " "))
	if err != nil {
		v.statusMsg = fmt.Sprintf("Subject not found: %s", strings.Join(args, " "))
		return v, nil
	}
	v.filterSubject = s.ID
	v.cursor = 0
	return v, v.loadTasks
}

// cmdAttach copies files into the attachment store and appends them
func (v ListView) cmdAttach(task model.Task, args []string) (tea.Model, tea.Cmd) {
	if len(args) == 0 {
		v.statusMsg = "Usage: attach <path> [path...]"
		return v, nil
	}
	if v.importer == nil {
		v.statusMsg = "Attachments unavailable"
		return v, nil
	}

	p, importer, id := v.planner, v.importer, task.ID
	return v, func() tea.Msg {
		added := importer.ImportAll(context.Background(), args)
		if len(added) == 0 {
			return taskChangedMsg{err: fmt.Errorf("no files could be attached")}
		}
		current, err := p.Task(id)
		if err != nil {
			return taskChangedMsg{err: err}
		}
		all := append(current.Attachments, added...)
		if _, err := p.EditTask(id, planner.TaskEdit{Attachments: &all}); err != nil {
			return taskChangedMsg{err: err}
		}
		return taskChangedMsg{focusID: id, status: fmt.Sprintf("Attached %d of %d file(s)", len(added), len(args))}
	}
}

// cmdSetTheme changes the color theme
func (v ListView) cmdSetTheme(args []string) (tea.Model, tea.Cmd) {
	if len(args) == 0 {
		var names []string
		for _, t := range theme.Available() {
			names = append(names, t.Name)
		}
		v.statusMsg = "Themes: " + strings.Join(names, ", ")
		return v, nil
	}

	t, ok := theme.ByName(args[0])
	if !ok {
		v.statusMsg = fmt.Sprintf("Unknown theme: %s", args[0])
		return v, nil
	}
	theme.SetTheme(t)
	v.statusMsg = fmt.Sprintf("Theme: %s", t.Name)
	return v, nil
}

// handleDeleteConfirm asks whether to delete one occurrence or the whole series
func (v ListView) handleDeleteConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	task, err := v.planner.Task(v.deleteID)
	if err != nil {
		v.mode = ListModeNormal
		v.deleteID = ""
		return v, nil
	}

	switch msg.String() {
	case "y", "Y", "o", "O":
		v.mode = ListModeNormal
		return v, v.deleteOccurrence(task.ID)
	case "s", "S":
		if task.SeriesID == nil {
			return v, nil
		}
		v.mode = ListModeNormal
		return v, v.deleteSeries(task.ID)
	case "n", "N", "esc":
		v.mode = ListModeNormal
		v.deleteID = ""
	}
	return v, nil
}

func (v ListView) hasActiveFilters() bool {
	return v.searchFilter != "" || v.filterSubject != ""
}

func (v ListView) formatActiveFilters() string {
	var parts []string
	if v.filterSubject != "" {
		parts = append(parts, "subject: "+v.planner.SubjectName(&v.filterSubject))
	}
	if v.searchFilter != "" {
		parts = append(parts, fmt.Sprintf("search: %q", v.searchFilter))
	}
	return "Filter: " + strings.Join(parts, ", ")
}

// View renders the list view
func (v ListView) View() string {
	styles := theme.Current.Styles

	var b strings.Builder

	if v.mode == ListModeAdd || v.mode == ListModeEdit {
		b.WriteString(styles.InputFocused.Render(v.input.View()))
		b.WriteString("\n\n")
	}

	if v.mode == ListModeSearch {
		b.WriteString(styles.Prompt.Render("/"))
		b.WriteString(v.input.View())
		b.WriteString("\n\n")
	} else if v.hasActiveFilters() {
		b.WriteString(styles.Status.Render(v.formatActiveFilters()))
		b.WriteString(styles.Muted.Render(" (esc to reset)"))
		b.WriteString("\n\n")
	}

	if v.mode == ListModeCommand {
		b.WriteString(v.renderCommandBar())
	}

	if v.mode == ListModeConfirmDelete {
		b.WriteString(v.renderDeleteConfirm())
		b.WriteString("\n\n")
	}

	if v.statusMsg != "" {
		b.WriteString(styles.Status.Render(v.statusMsg))
		b.WriteString("\n\n")
	}

	if len(v.tasks) == 0 {
		if v.hasActiveFilters() {
			b.WriteString(styles.Empty.Render("No tasks match current filters. Press esc to reset."))
		} else {
			b.WriteString(styles.Empty.Render("No tasks. Press 'a' to add one."))
		}
		return b.String()
	}

	visible := v.visibleTaskCount()
	endIdx := min(v.scrollOffset+visible, len(v.tasks))
	scrollStyle := styles.Muted

	if v.scrollOffset > 0 {
		b.WriteString(scrollStyle.Render(fmt.Sprintf("  ↑ %d more above", v.scrollOffset)))
		b.WriteString("\n")
	}

	now := v.planner.Now()
	for i := v.scrollOffset; i < endIdx; i++ {
		b.WriteString(v.renderTask(v.tasks[i], i == v.cursor, now))
		b.WriteString("\n")
	}

	if remaining := len(v.tasks) - endIdx; remaining > 0 {
		b.WriteString(scrollStyle.Render(fmt.Sprintf("  ↓ %d more below", remaining)))
		b.WriteString("\n")
	}

	return b.String()
}

func (v ListView) renderCommandBar() string {
	t := theme.Current.Theme
	styles := theme.Current.Styles
	var b strings.Builder

	b.WriteString(styles.Prompt.Render(":"))
	b.WriteString(v.input.View())
	b.WriteString("\n")

	if len(v.cmdSuggestions) > 0 {
		suggestionBox := lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 1).
			Width(max(20, v.width-4))

		var suggestions []string
		maxShow := 8
		for i, cmd := range v.cmdSuggestions {
			if i >= maxShow {
				suggestions = append(suggestions, styles.Muted.Render(fmt.Sprintf("  ... +%d more", len(v.cmdSuggestions)-maxShow)))
				break
			}

			nameStyle := lipgloss.NewStyle().Bold(true).Width(12)
			descStyle := lipgloss.NewStyle().Foreground(t.Subtle)
			usageStyle := lipgloss.NewStyle().Foreground(t.Info).Italic(true)
			if i == v.cmdCursor {
				nameStyle = nameStyle.Background(t.Highlight).Foreground(t.Foreground)
				descStyle = descStyle.Background(t.Highlight)
			}

			line := nameStyle.Render(cmd.Name) + descStyle.Render(" "+cmd.Description)
			if cmd.HasArgs {
				line += usageStyle.Render("  " + cmd.Usage)
			}
			suggestions = append(suggestions, line)
		}

		b.WriteString(suggestionBox.Render(strings.Join(suggestions, "\n")))
		b.WriteString("\n")
		b.WriteString(styles.Muted.Italic(true).Render("↑/↓ select • tab complete • enter execute"))
	}
	b.WriteString("\n")
	return b.String()
}

func (v ListView) renderDeleteConfirm() string {
	confirmStyle := theme.Current.Styles.Confirm

	task, err := v.planner.Task(v.deleteID)
	if err != nil {
		return ""
	}
	if task.SeriesID == nil {
		return confirmStyle.Render(fmt.Sprintf("Delete %q? (y/n)", task.Title))
	}
	members, _ := v.planner.SeriesMembers(task.ID)
	return confirmStyle.Render(fmt.Sprintf(
		"Delete %q: (o) this occurrence, (s) all %d in series, (n) cancel", task.Title, len(members)))
}

// renderTask renders a single task line
func (v ListView) renderTask(task model.Task, isCursor bool, now time.Time) string {
	t := theme.Current.Theme
	styles := theme.Current.Styles

	checkbox := "[ ]"
	if task.IsDone {
		checkbox = "[x]"
	}

	pin := " "
	if task.IsPinned {
		pin = styles.Pinned.Render("★")
	}

	kindChar := "hw "
	if task.Kind == model.KindReminder {
		kindChar = "rem"
	}
	kind := lipgloss.NewStyle().Foreground(t.KindColor(task.Kind)).Render(kindChar)

	titleStyle := styles.TaskNormal
	if task.IsDone {
		titleStyle = styles.TaskDone
	} else if task.IsOverdue(now) {
		titleStyle = styles.TaskOverdue
	}

	var extras []string
	if s, ok := model.FindSubject(v.subjects, task.SubjectID); ok {
		extras = append(extras, lipgloss.NewStyle().Foreground(theme.SubjectColor(s.Color)).Render("["+s.Name+"]"))
	}
	if task.IsRecurring() {
		extras = append(extras, styles.Recurrence.Render("↻ "+string(task.Recurrence)))
	}
	if n := len(task.Attachments); n > 0 {
		extras = append(extras, styles.Muted.Render(fmt.Sprintf("+%d file(s)", n)))
	}

	dueStyle := styles.DueDate
	if !task.IsDone && task.IsOverdue(now) {
		dueStyle = styles.DueOverdue
	}
	due := dueStyle.Render(quickadd.FormatDue(task.DueDate, now))

	prefix := fmt.Sprintf("%s %s %s ", checkbox, pin, kind)
	suffix := " " + strings.Join(append(extras, due), " ")

	title := task.Title
	if v.width > 0 {
		room := v.width - lipgloss.Width(prefix) - lipgloss.Width(suffix) - 4
		title = truncate(title, max(8, room))
	}

	line := prefix + titleStyle.Render(title) + suffix
	if isCursor {
		return styles.TaskSelected.Render("> " + line)
	}
	return "  " + line
}

// truncate shortens s to at most n runes, marking the cut with an ellipsis
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// Message types

type tasksLoadedMsg struct {
	tasks    []model.Task
	subjects []model.Subject
	focusID  string
}

type taskChangedMsg struct {
	focusID string
	status  string
	err     error
}

func (v ListView) filter() planner.Filter {
	return planner.Filter{
		IncludeDone: !v.hideDone,
		SubjectID:   v.filterSubject,
	}
}

func (v ListView) loadTasks() tea.Msg {
	return v.reload("")()
}

// reload rereads the planner, optionally moving the cursor to focusID
func (v ListView) reload(focusID string) tea.Cmd {
	p, f, search := v.planner, v.filter(), strings.ToLower(strings.TrimSpace(v.searchFilter))
	return func() tea.Msg {
		tasks := p.List(f)
		if search != "" {
			matched := tasks[:0]
			for _, t := range tasks {
				if strings.Contains(strings.ToLower(t.Title), search) ||
					strings.Contains(strings.ToLower(p.SubjectName(t.SubjectID)), search) {
					matched = append(matched, t)
				}
			}
			tasks = matched
		}
		return tasksLoadedMsg{tasks: tasks, subjects: p.Subjects(), focusID: focusID}
	}
}

func (v ListView) createTask(line string) tea.Cmd {
	p := v.planner
	return func() tea.Msg {
		res, err := quickadd.Parse(line, p.Now())
		if err != nil {
			return taskChangedMsg{err: err}
		}
		tpl := recur.Template{
			Title:    res.Title,
			Kind:     res.Kind,
			DueDate:  res.DueDate,
			IsPinned: res.Pinned,
		}
		if res.Subject != "" {
			s, err := p.SubjectByName(res.Subject)
			if err != nil {
				return taskChangedMsg{err: fmt.Errorf("subject %q not found", res.Subject)}
			}
			tpl.SubjectID = &s.ID
		}
		created, err := p.CreateTask(tpl, res.Cadence)
		if err != nil {
			return taskChangedMsg{err: err}
		}
		status := fmt.Sprintf("Added %q", res.Title)
		if len(created) > 1 {
			status = fmt.Sprintf("Added %q (%d occurrences)", res.Title, len(created))
		}
		return taskChangedMsg{focusID: created[0].ID, status: status}
	}
}

func (v ListView) edit(id string, edit planner.TaskEdit, status string) tea.Cmd {
	p := v.planner
	return func() tea.Msg {
		if _, err := p.EditTask(id, edit); err != nil {
			return taskChangedMsg{err: err}
		}
		return taskChangedMsg{focusID: id, status: status}
	}
}

func (v ListView) toggleDone(id string) tea.Cmd {
	p := v.planner
	return func() tea.Msg {
		t, err := p.ToggleDone(id)
		if err != nil {
			return taskChangedMsg{err: err}
		}
		status := "Marked open"
		if t.IsDone {
			status = "Completed"
		}
		return taskChangedMsg{focusID: id, status: status}
	}
}

func (v ListView) togglePinned(id string) tea.Cmd {
	p := v.planner
	return func() tea.Msg {
		t, err := p.TogglePinned(id)
		if err != nil {
			return taskChangedMsg{err: err}
		}
		status := "Unpinned"
		if t.IsPinned {
			status = "Pinned"
		}
		return taskChangedMsg{focusID: id, status: status}
	}
}

func (v ListView) deleteOccurrence(id string) tea.Cmd {
	p := v.planner
	return func() tea.Msg {
		if err := p.DeleteOccurrence(id); err != nil {
			return taskChangedMsg{err: err}
		}
		return taskChangedMsg{status: "Deleted occurrence"}
	}
}

func (v ListView) deleteSeries(id string) tea.Cmd {
	p := v.planner
	return func() tea.Msg {
		n, err := p.DeleteSeries(id)
		if err != nil {
			return taskChangedMsg{err: err}
		}
		return taskChangedMsg{status: fmt.Sprintf("Deleted %d task(s) in series", n)}
	}
}

// Commands returns the command palette entries
func Commands() []CommandDef {
	return allCommands
}
