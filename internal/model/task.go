package model

import (
	"encoding/json"
	"time"
)

// Kind distinguishes graded work from plain reminders
type Kind string

const (
	KindHomework Kind = "homework"
	KindReminder Kind = "reminder"
)

// Valid reports whether k is a known kind
func (k Kind) Valid() bool {
	return k == KindHomework || k == KindReminder
}

// Recurrence is one of the fixed cadences a task can repeat on
type Recurrence string

const (
	RecurNone    Recurrence = "none"
	RecurDaily   Recurrence = "daily"
	RecurWeekly  Recurrence = "weekly"
	RecurMonthly Recurrence = "monthly"
	RecurYearly  Recurrence = "yearly"
)

// Recurrences lists every cadence in menu order
var Recurrences = []Recurrence{RecurNone, RecurDaily, RecurWeekly, RecurMonthly, RecurYearly}

// ParseRecurrence maps user input to a cadence
func ParseRecurrence(s string) (Recurrence, bool) {
	switch Recurrence(s) {
	case RecurNone, RecurDaily, RecurWeekly, RecurMonthly, RecurYearly:
		return Recurrence(s), true
	case "":
		return RecurNone, true
	}
	return RecurNone, false
}

// Task represents one assignment or reminder. Recurring tasks are stored as
// independent occurrences linked by SeriesID.
type Task struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Kind        Kind         `json:"kind"`
	DueDate     time.Time    `json:"due_date"`
	CreatedAt   time.Time    `json:"created_at"`
	SubjectID   *string      `json:"subject_id,omitempty"`
	IsDone      bool         `json:"is_done"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
	IsPinned    bool         `json:"is_pinned"`
	Recurrence  Recurrence   `json:"recurrence"`
	SeriesID    *string      `json:"series_id,omitempty"`
	Attachments []Attachment `json:"attachments"`
}

// UnmarshalJSON fills defaults for fields older records do not carry.
func (t *Task) UnmarshalJSON(data []byte) error {
	type plain Task
	aux := struct {
		*plain
		CreatedAt *time.Time `json:"created_at"`
	}{plain: (*plain)(t)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	if !t.Kind.Valid() {
		t.Kind = KindHomework
	}
	if t.Recurrence == "" {
		t.Recurrence = RecurNone
	}
	if t.Attachments == nil {
		t.Attachments = []Attachment{}
	}
	if aux.CreatedAt != nil && !aux.CreatedAt.IsZero() {
		t.CreatedAt = *aux.CreatedAt
	} else {
		t.CreatedAt = t.DueDate
	}
	t.RepairCompletion()
	return nil
}

// RepairCompletion restores CompletedAt-iff-IsDone on records that broke
// it. A done task missing its completion time is taken as completed when
// it was created; an open task drops a stray completion time.
func (t *Task) RepairCompletion() {
	switch {
	case t.IsDone && t.CompletedAt == nil:
		completed := t.CreatedAt
		t.CompletedAt = &completed
	case !t.IsDone && t.CompletedAt != nil:
		t.CompletedAt = nil
	}
}

// IsRecurring returns true if the task belongs to a series
func (t *Task) IsRecurring() bool {
	return t.Recurrence != RecurNone && t.Recurrence != ""
}

// IsOverdue returns true if the task is open and past its due date
func (t *Task) IsOverdue(now time.Time) bool {
	return !t.IsDone && t.DueDate.Before(now)
}

// IsDueOn returns true if the task is due on the same calendar day as day
func (t *Task) IsDueOn(day time.Time) bool {
	return SameDay(t.DueDate, day)
}

// SetDone moves the task in or out of the done state, keeping
// CompletedAt in step with IsDone.
func (t *Task) SetDone(done bool, now time.Time) {
	t.IsDone = done
	if done {
		at := now
		t.CompletedAt = &at
		return
	}
	t.CompletedAt = nil
}

// HasSubject reports whether the task references subjectID
func (t *Task) HasSubject(subjectID string) bool {
	return t.SubjectID != nil && *t.SubjectID == subjectID
}

// References reports whether any attachment of the task points at storedFileName
func (t *Task) References(storedFileName string) bool {
	for _, a := range t.Attachments {
		if a.StoredFileName == storedFileName {
			return true
		}
	}
	return false
}

// Clone returns a deep copy. Attachment records are copied; the blobs they
// name stay shared.
func (t Task) Clone() Task {
	out := t
	out.SubjectID = cloneString(t.SubjectID)
	out.SeriesID = cloneString(t.SeriesID)
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		out.CompletedAt = &at
	}
	out.Attachments = make([]Attachment, len(t.Attachments))
	copy(out.Attachments, t.Attachments)
	return out
}

// SameDay reports whether a and b fall on the same calendar day in a's location
func SameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// StartOfDay returns midnight of t's day in t's location
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// StringPtr returns a pointer to a copy of s, or nil when s is empty
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
