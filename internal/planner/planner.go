// Package planner owns the task and subject collections and applies every
// mutation to them: creation through recurrence expansion, single and
// series-wide deletion, edits, toggles and the stats checkpoint.
package planner

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	applog "github.com/dori/homeroom/internal/log"
	"github.com/dori/homeroom/internal/model"
	"github.com/dori/homeroom/internal/recur"
	"github.com/dori/homeroom/internal/stats"
	"github.com/dori/homeroom/internal/store"
)

var (
	ErrTaskNotFound    = errors.New("task not found")
	ErrSubjectNotFound = errors.New("subject not found")
	ErrAmbiguousID     = errors.New("id prefix matches more than one task")
	ErrEmptyTitle      = errors.New("title is required")
	ErrEmptyName       = errors.New("subject name is required")
)

// Reminders schedules and cancels due-time reminders, keyed by task id
type Reminders interface {
	Schedule(task model.Task)
	Cancel(taskID string)
}

// Blobs deletes stored attachment files
type Blobs interface {
	Delete(a model.Attachment)
}

// Saver persists snapshots, usually debounced
type Saver interface {
	Save(snap store.Snapshot)
}

type nopReminders struct{}

func (nopReminders) Schedule(model.Task) {}
func (nopReminders) Cancel(string)       {}

type nopBlobs struct{}

func (nopBlobs) Delete(model.Attachment) {}

type nopSaver struct{}

func (nopSaver) Save(store.Snapshot) {}

// Planner holds the in-memory state. Every mutation builds the next
// collection aside and swaps it in under the lock, so readers see either
// the old or the new state.
type Planner struct {
	mu         sync.RWMutex
	tasks      []model.Task
	subjects   []model.Subject
	checkpoint stats.Checkpoint

	reminders Reminders
	blobs     Blobs
	saver     Saver
	now       func() time.Time
}

// Option configures a Planner
type Option func(*Planner)

// WithReminders sets the reminder service
func WithReminders(r Reminders) Option {
	return func(p *Planner) { p.reminders = r }
}

// WithBlobs sets the attachment blob store
func WithBlobs(b Blobs) Option {
	return func(p *Planner) { p.blobs = b }
}

// WithSaver sets where snapshots go after each mutation
func WithSaver(s Saver) Option {
	return func(p *Planner) { p.saver = s }
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(p *Planner) { p.now = now }
}

// New creates an empty planner
func New(opts ...Option) *Planner {
	p := &Planner{
		tasks:     []model.Task{},
		subjects:  []model.Subject{},
		reminders: nopReminders{},
		blobs:     nopBlobs{},
		saver:     nopSaver{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Load replaces the state with snap and schedules reminders for open tasks.
// It does not save.
func (p *Planner) Load(snap store.Snapshot) {
	snap = snap.Clone()

	p.mu.Lock()
	defer p.mu.Unlock()

	p.tasks = snap.Tasks
	p.subjects = snap.Subjects
	p.checkpoint = snap.Checkpoint

	for _, t := range p.tasks {
		if !t.IsDone {
			p.reminders.Schedule(t)
		}
	}
	applog.Log.WithField("tasks", len(p.tasks)).WithField("subjects", len(p.subjects)).Debug("planner loaded")
}

// Snapshot returns a copy of the current state
func (p *Planner) Snapshot() store.Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snapshotLocked().Clone()
}

func (p *Planner) snapshotLocked() store.Snapshot {
	return store.Snapshot{Tasks: p.tasks, Subjects: p.subjects, Checkpoint: p.checkpoint}
}

// save hands the current state to the saver. Callers hold p.mu.
func (p *Planner) save() {
	p.saver.Save(p.snapshotLocked())
}

// Now returns the planner's clock reading
func (p *Planner) Now() time.Time {
	return p.now()
}

// Tasks returns a copy of every task in stored order
func (p *Planner) Tasks() []model.Task {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]model.Task, len(p.tasks))
	for i, t := range p.tasks {
		out[i] = t.Clone()
	}
	return out
}

// Task returns the task with id
func (p *Planner) Task(id string) (model.Task, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	i := p.indexLocked(id)
	if i < 0 {
		return model.Task{}, ErrTaskNotFound
	}
	return p.tasks[i].Clone(), nil
}

// FindByPrefix returns the task whose id is prefix, or the only task whose
// id starts with prefix
func (p *Planner) FindByPrefix(prefix string) (model.Task, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return model.Task{}, ErrTaskNotFound
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if i := p.indexLocked(prefix); i >= 0 {
		return p.tasks[i].Clone(), nil
	}

	found := -1
	for i, t := range p.tasks {
		if strings.HasPrefix(t.ID, prefix) {
			if found >= 0 {
				return model.Task{}, ErrAmbiguousID
			}
			found = i
		}
	}
	if found < 0 {
		return model.Task{}, ErrTaskNotFound
	}
	return p.tasks[found].Clone(), nil
}

// SeriesMembers returns every task sharing id's series, in stored order.
// A task without a series is its own only member.
func (p *Planner) SeriesMembers(id string) ([]model.Task, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	i := p.indexLocked(id)
	if i < 0 {
		return nil, ErrTaskNotFound
	}
	target := p.tasks[i]
	if target.SeriesID == nil {
		return []model.Task{target.Clone()}, nil
	}

	var out []model.Task
	for _, t := range p.tasks {
		if sameSeries(t, target) {
			out = append(out, t.Clone())
		}
	}
	return out, nil
}

// CreateTask expands tpl over cadence and adds every occurrence
func (p *Planner) CreateTask(tpl recur.Template, cadence model.Recurrence) ([]model.Task, error) {
	tpl.Title = strings.TrimSpace(tpl.Title)
	if tpl.Title == "" {
		return nil, ErrEmptyTitle
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if tpl.SubjectID != nil {
		if _, ok := model.FindSubject(p.subjects, tpl.SubjectID); !ok {
			return nil, ErrSubjectNotFound
		}
	}

	created := recur.Expand(tpl, cadence, p.now())

	next := make([]model.Task, 0, len(p.tasks)+len(created))
	next = append(next, p.tasks...)
	next = append(next, created...)
	p.tasks = next

	for _, t := range created {
		p.reminders.Schedule(t)
	}
	p.save()

	applog.Log.WithField("title", tpl.Title).WithField("cadence", cadence).WithField("occurrences", len(created)).Info("task created")

	out := make([]model.Task, len(created))
	for i, t := range created {
		out[i] = t.Clone()
	}
	return out, nil
}

// TaskEdit lists the fields an edit changes. Nil fields are left alone.
// Subject set to "" clears the subject.
type TaskEdit struct {
	Title       *string
	Kind        *model.Kind
	DueDate     *time.Time
	Subject     *string
	Recurrence  *model.Recurrence
	IsPinned    *bool
	Attachments *[]model.Attachment
}

// EditTask changes one task. Siblings in the same series are not touched.
func (p *Planner) EditTask(id string, edit TaskEdit) (model.Task, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	i := p.indexLocked(id)
	if i < 0 {
		return model.Task{}, ErrTaskNotFound
	}
	before := p.tasks[i]
	t := before.Clone()

	if edit.Title != nil {
		title := strings.TrimSpace(*edit.Title)
		if title == "" {
			return model.Task{}, ErrEmptyTitle
		}
		t.Title = title
	}
	if edit.Kind != nil && edit.Kind.Valid() {
		t.Kind = *edit.Kind
	}
	if edit.DueDate != nil {
		t.DueDate = *edit.DueDate
	}
	if edit.Subject != nil {
		if *edit.Subject == "" {
			t.SubjectID = nil
		} else {
			if _, ok := model.FindSubject(p.subjects, edit.Subject); !ok {
				return model.Task{}, ErrSubjectNotFound
			}
			t.SubjectID = model.StringPtr(*edit.Subject)
		}
	}
	if edit.Recurrence != nil {
		applyRecurrence(&t, *edit.Recurrence)
	}
	if edit.IsPinned != nil {
		t.IsPinned = *edit.IsPinned
	}
	if edit.Attachments != nil {
		t.Attachments = make([]model.Attachment, len(*edit.Attachments))
		copy(t.Attachments, *edit.Attachments)
	}

	next := make([]model.Task, len(p.tasks))
	copy(next, p.tasks)
	next[i] = t
	p.tasks = next

	p.collectGarbage([]model.Task{droppedAttachments(before, t)}, next)

	p.reminders.Cancel(t.ID)
	if !t.IsDone {
		p.reminders.Schedule(t)
	}
	p.save()
	return t.Clone(), nil
}

// applyRecurrence changes the cadence of one task. It never expands:
// none to a cadence starts a new series of one, a cadence to none leaves
// the series.
func applyRecurrence(t *model.Task, r model.Recurrence) {
	r, ok := model.ParseRecurrence(string(r))
	if !ok {
		return
	}
	t.Recurrence = r
	switch {
	case r == model.RecurNone:
		t.SeriesID = nil
	case t.SeriesID == nil:
		t.SeriesID = model.StringPtr(uuid.NewString())
	}
}

// droppedAttachments returns a task holding the attachments before had
// that after no longer has
func droppedAttachments(before, after model.Task) model.Task {
	out := model.Task{ID: before.ID}
	for _, a := range before.Attachments {
		if !after.References(a.StoredFileName) {
			out.Attachments = append(out.Attachments, a)
		}
	}
	return out
}

// ToggleDone flips the done state. Completing a task cancels its reminder,
// reopening it schedules the reminder again.
func (p *Planner) ToggleDone(id string) (model.Task, error) {
	return p.update(id, func(t *model.Task) {
		t.SetDone(!t.IsDone, p.now())
	})
}

// TogglePinned flips the pinned flag. Pinned state changes the reminder's
// urgency, so the reminder is rescheduled.
func (p *Planner) TogglePinned(id string) (model.Task, error) {
	return p.update(id, func(t *model.Task) {
		t.IsPinned = !t.IsPinned
	})
}

func (p *Planner) update(id string, fn func(t *model.Task)) (model.Task, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	i := p.indexLocked(id)
	if i < 0 {
		return model.Task{}, ErrTaskNotFound
	}
	t := p.tasks[i].Clone()
	fn(&t)

	next := make([]model.Task, len(p.tasks))
	copy(next, p.tasks)
	next[i] = t
	p.tasks = next

	p.reminders.Cancel(t.ID)
	if !t.IsDone {
		p.reminders.Schedule(t)
	}
	p.save()
	return t.Clone(), nil
}

// DeleteOccurrence removes exactly one task
func (p *Planner) DeleteOccurrence(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.indexLocked(id) < 0 {
		return ErrTaskNotFound
	}
	p.removeLocked(func(t model.Task) bool { return t.ID == id })
	return nil
}

// DeleteSeries removes every task sharing id's series and returns how many
// went. A task without a series is removed alone.
func (p *Planner) DeleteSeries(id string) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	i := p.indexLocked(id)
	if i < 0 {
		return 0, ErrTaskNotFound
	}
	target := p.tasks[i]
	if target.SeriesID == nil {
		return p.removeLocked(func(t model.Task) bool { return t.ID == id }), nil
	}
	return p.removeLocked(func(t model.Task) bool { return sameSeries(t, target) }), nil
}

// removeLocked drops the tasks matching gone, deletes attachment blobs no
// survivor references and cancels their reminders
func (p *Planner) removeLocked(gone func(t model.Task) bool) int {
	remaining := make([]model.Task, 0, len(p.tasks))
	var removed []model.Task
	for _, t := range p.tasks {
		if gone(t) {
			removed = append(removed, t)
		} else {
			remaining = append(remaining, t)
		}
	}
	if len(removed) == 0 {
		return 0
	}
	p.tasks = remaining

	p.collectGarbage(removed, remaining)
	for _, t := range removed {
		p.reminders.Cancel(t.ID)
	}
	p.save()

	applog.Log.WithField("removed", len(removed)).Info("tasks deleted")
	return len(removed)
}

// collectGarbage deletes each attachment blob of removed that no task in
// survivors still references. References are found by scanning, keyed by
// stored file name.
func (p *Planner) collectGarbage(removed, survivors []model.Task) {
	checked := make(map[string]bool)
	for _, t := range removed {
		for _, a := range t.Attachments {
			if a.StoredFileName == "" || checked[a.StoredFileName] {
				continue
			}
			checked[a.StoredFileName] = true
			if referenced(survivors, a.StoredFileName) {
				continue
			}
			p.blobs.Delete(a)
		}
	}
}

func referenced(tasks []model.Task, storedFileName string) bool {
	for i := range tasks {
		if tasks[i].References(storedFileName) {
			return true
		}
	}
	return false
}

func sameSeries(a, b model.Task) bool {
	return a.SeriesID != nil && b.SeriesID != nil && *a.SeriesID == *b.SeriesID
}

func (p *Planner) indexLocked(id string) int {
	for i, t := range p.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}
