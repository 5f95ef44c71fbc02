package notify

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	applog "github.com/dori/homeroom/internal/log"
	"github.com/dori/homeroom/internal/model"
)

func init() {
	applog.Discard()
}

type fakeSender struct {
	mu   sync.Mutex
	sent []Notification
	err  error
}

func (f *fakeSender) Send(n Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, n)
	return f.err
}

var now = time.Date(2026, 3, 18, 12, 0, 30, 0, time.UTC)

func newReminders(sender Sender) *Reminders {
	r := NewReminders(sender, func(id *string) string {
		if id != nil && *id == "bio" {
			return "Biology"
		}
		return ""
	})
	r.now = func() time.Time { return now }
	return r
}

func TestArgs(t *testing.T) {
	n := NewNotifier()
	args := n.Args(Notification{Title: "Quiz", Body: "Biology", Urgency: UrgencyCritical, Timeout: 2 * time.Second})
	assert.Equal(t, []string{"-a", "homeroom", "-u", "critical", "-t", "2000", "Quiz", "Biology"}, args)

	args = n.Args(Notification{Title: "Quiz"})
	assert.Equal(t, []string{"-a", "homeroom", "-u", "normal", "Quiz"}, args)
}

func TestDisabledNotifierIsSilent(t *testing.T) {
	n := NewNotifier()
	n.SetEnabled(false)
	assert.False(t, n.IsEnabled())
	assert.NoError(t, n.Send(Notification{Title: "x"}))
}

func TestDueNotification(t *testing.T) {
	n := DueNotification("Lab report", "Biology", "homework", true)
	assert.Equal(t, "Lab report", n.Title)
	assert.Equal(t, "Homework due now · Biology", n.Body)
	assert.Equal(t, UrgencyCritical, n.Urgency)

	n = DueNotification("Call mom", "", "reminder", false)
	assert.Equal(t, "Due now", n.Body)
	assert.Equal(t, UrgencyNormal, n.Urgency)
}

func TestScheduleTruncatesToMinute(t *testing.T) {
	r := newReminders(&fakeSender{})
	r.Schedule(model.Task{ID: "a", DueDate: time.Date(2026, 3, 18, 15, 42, 59, 0, time.UTC)})

	at, ok := r.Pending("a")
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 3, 18, 15, 42, 0, 0, time.UTC), at)
}

func TestScheduleIsIdempotentPerID(t *testing.T) {
	r := newReminders(&fakeSender{})
	task := model.Task{ID: "a", DueDate: now.Add(time.Hour)}
	r.Schedule(task)
	r.Schedule(task)
	task.DueDate = now.Add(2 * time.Hour)
	r.Schedule(task)

	assert.Equal(t, 1, r.Len())
	at, _ := r.Pending("a")
	assert.Equal(t, now.Add(2*time.Hour).Truncate(time.Minute), at)
}

func TestScheduleSkipsPastAndDone(t *testing.T) {
	r := newReminders(&fakeSender{})
	r.Schedule(model.Task{ID: "past", DueDate: now.Add(-time.Hour)})
	r.Schedule(model.Task{ID: "done", DueDate: now.Add(time.Hour), IsDone: true})
	// the current minute still counts
	r.Schedule(model.Task{ID: "now", DueDate: now.Add(-20 * time.Second)})

	assert.Equal(t, 1, r.Len())
	_, ok := r.Pending("now")
	assert.True(t, ok)
}

func TestCancel(t *testing.T) {
	r := newReminders(&fakeSender{})
	r.Schedule(model.Task{ID: "a", DueDate: now.Add(time.Hour)})
	r.Cancel("a")
	r.Cancel("missing")
	assert.Equal(t, 0, r.Len())
}

func TestDeliverSendsDueReminders(t *testing.T) {
	sender := &fakeSender{}
	r := newReminders(sender)
	r.Schedule(model.Task{ID: "soon", Title: "Quiz", Kind: model.KindHomework, SubjectID: model.StringPtr("bio"), DueDate: now.Add(5 * time.Minute), IsPinned: true})
	r.Schedule(model.Task{ID: "later", Title: "Essay", DueDate: now.Add(time.Hour)})

	assert.Equal(t, 0, r.deliver(now))
	assert.Equal(t, 1, r.deliver(now.Add(5*time.Minute)))
	assert.Equal(t, 0, r.deliver(now.Add(6*time.Minute)), "delivered reminders are not repeated")

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "Quiz", sender.sent[0].Title)
	assert.Equal(t, "Homework due now · Biology", sender.sent[0].Body)
	assert.Equal(t, UrgencyCritical, sender.sent[0].Urgency)
	assert.Equal(t, 1, r.Len())
}

func TestDeliverSurvivesSendErrors(t *testing.T) {
	sender := &fakeSender{err: errors.New("no dbus")}
	r := newReminders(sender)
	r.Schedule(model.Task{ID: "a", DueDate: now.Add(time.Minute)})
	r.Schedule(model.Task{ID: "b", DueDate: now.Add(2 * time.Minute)})

	assert.Equal(t, 2, r.deliver(now.Add(time.Hour)))
	assert.Len(t, sender.sent, 2)
	assert.Equal(t, 0, r.Len())
}

func TestStartStop(t *testing.T) {
	r := newReminders(&fakeSender{})
	require.NoError(t, r.Start())
	r.Stop()
	r.Stop()
}

func TestSenderFunc(t *testing.T) {
	var got []string
	s := SenderFunc(func(n Notification) error {
		got = append(got, n.Title)
		return nil
	})
	require.NoError(t, s.Send(Notification{Title: "Quiz"}))
	assert.Equal(t, []string{"Quiz"}, got)
}
