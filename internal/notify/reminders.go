package notify

import (
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	applog "github.com/dori/homeroom/internal/log"
	"github.com/dori/homeroom/internal/model"
)

// SubjectNamer resolves a subject reference to a display name, "" if none
type SubjectNamer func(id *string) string

type reminder struct {
	fireAt time.Time
	task   model.Task
}

// Reminders keeps one pending reminder per task id and delivers each through
// a Sender when its minute arrives. A cron entry checks once a minute.
type Reminders struct {
	sender Sender
	namer  SubjectNamer
	now    func() time.Time

	mu      sync.Mutex
	pending map[string]reminder

	cron *cron.Cron
}

// NewReminders creates a reminder service. namer may be nil.
func NewReminders(sender Sender, namer SubjectNamer) *Reminders {
	if namer == nil {
		namer = func(*string) string { return "" }
	}
	return &Reminders{
		sender:  sender,
		namer:   namer,
		now:     time.Now,
		pending: make(map[string]reminder),
	}
}

// Schedule sets the reminder for task, replacing any earlier one for the
// same id. Done tasks and due times already in the past are not scheduled.
func (r *Reminders) Schedule(task model.Task) {
	fireAt := task.DueDate.Truncate(time.Minute)

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.pending, task.ID)
	if task.IsDone || fireAt.Before(r.now().Truncate(time.Minute)) {
		return
	}
	r.pending[task.ID] = reminder{fireAt: fireAt, task: task.Clone()}
}

// Cancel drops the pending reminder for taskID, if any
func (r *Reminders) Cancel(taskID string) {
	r.mu.Lock()
	delete(r.pending, taskID)
	r.mu.Unlock()
}

// Pending returns when the reminder for taskID fires
func (r *Reminders) Pending(taskID string) (time.Time, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rem, ok := r.pending[taskID]
	return rem.fireAt, ok
}

// Len returns the number of pending reminders
func (r *Reminders) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

// Start begins the minute tick
func (r *Reminders) Start() error {
	r.cron = cron.New()
	if _, err := r.cron.AddFunc("* * * * *", func() { r.deliver(r.now()) }); err != nil {
		return err
	}
	r.cron.Start()
	applog.Log.Debug("reminder tick started")
	return nil
}

// Stop halts the tick and waits for a running delivery to finish
func (r *Reminders) Stop() {
	if r.cron == nil {
		return
	}
	<-r.cron.Stop().Done()
	r.cron = nil
}

// deliver sends every reminder whose minute is at or before now
func (r *Reminders) deliver(now time.Time) int {
	r.mu.Lock()
	var due []reminder
	for id, rem := range r.pending {
		if !rem.fireAt.After(now) {
			due = append(due, rem)
			delete(r.pending, id)
		}
	}
	r.mu.Unlock()

	sort.Slice(due, func(i, j int) bool { return due[i].fireAt.Before(due[j].fireAt) })

	for _, rem := range due {
		n := DueNotification(rem.task.Title, r.namer(rem.task.SubjectID), string(rem.task.Kind), rem.task.IsPinned)
		if err := r.sender.Send(n); err != nil {
			applog.Log.WithError(err).WithField("task", rem.task.ID).Warn("failed to send reminder")
		}
	}
	return len(due)
}
