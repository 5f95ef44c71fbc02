// Package recur materializes recurring task templates into dated occurrences.
package recur

import (
	"time"

	"github.com/google/uuid"
	"github.com/teambition/rrule-go"

	applog "github.com/dori/homeroom/internal/log"
	"github.com/dori/homeroom/internal/model"
)

// occurrenceCaps bounds how many occurrences one expansion may create.
// Recurring tasks are stored pre-expanded, so these caps also bound storage.
var occurrenceCaps = map[model.Recurrence]int{
	model.RecurNone:    1,
	model.RecurDaily:   120,
	model.RecurWeekly:  104,
	model.RecurMonthly: 36,
	model.RecurYearly:  8,
}

// OccurrenceCap returns the number of occurrences created for a cadence
func OccurrenceCap(r model.Recurrence) int {
	if n, ok := occurrenceCaps[r]; ok {
		return n
	}
	return 1
}

// Template is the user-entered part of a task, before expansion
type Template struct {
	Title       string
	Kind        model.Kind
	SubjectID   *string
	DueDate     time.Time
	IsPinned    bool
	Attachments []model.Attachment
}

// Expand turns a template into one task per occurrence. All occurrences of
// a recurring cadence share one new series id; RecurNone yields a single
// task without a series.
func Expand(tpl Template, cadence model.Recurrence, now time.Time) []model.Task {
	if _, ok := occurrenceCaps[cadence]; !ok {
		cadence = model.RecurNone
	}

	kind := tpl.Kind
	if !kind.Valid() {
		kind = model.KindHomework
	}

	base := model.Task{
		Title:       tpl.Title,
		Kind:        kind,
		DueDate:     tpl.DueDate,
		CreatedAt:   now,
		SubjectID:   tpl.SubjectID,
		IsPinned:    tpl.IsPinned,
		Recurrence:  cadence,
		Attachments: tpl.Attachments,
	}
	if cadence != model.RecurNone {
		base.SeriesID = model.StringPtr(uuid.NewString())
	}

	dates := Dates(tpl.DueDate, cadence)
	tasks := make([]model.Task, 0, len(dates))
	for _, due := range dates {
		t := base.Clone()
		t.ID = uuid.NewString()
		t.DueDate = due
		tasks = append(tasks, t)
	}
	return tasks
}

// Dates returns the due dates of every occurrence starting at start,
// capped by OccurrenceCap. The first date is always start itself.
func Dates(start time.Time, cadence model.Recurrence) []time.Time {
	limit := OccurrenceCap(cadence)
	if cadence == model.RecurNone || limit <= 1 {
		return []time.Time{start}
	}

	rule, err := rrule.NewRRule(ruleOption(start, cadence, limit))
	if err != nil {
		applog.Log.WithError(err).
			WithField("cadence", cadence).
			Warn("recurrence rule rejected, keeping single occurrence")
		return []time.Time{start}
	}

	dates := rule.All()
	if len(dates) == 0 {
		return []time.Time{start}
	}
	if len(dates) > limit {
		dates = dates[:limit]
	}
	// rrule drops sub-second precision; keep the template's exact instant
	// for the anchor occurrence.
	dates[0] = start
	return dates
}

func ruleOption(start time.Time, cadence model.Recurrence, count int) rrule.ROption {
	opt := rrule.ROption{
		Dtstart: start,
		Count:   count,
	}

	switch cadence {
	case model.RecurDaily:
		opt.Freq = rrule.DAILY
	case model.RecurWeekly:
		opt.Freq = rrule.WEEKLY
	case model.RecurMonthly:
		opt.Freq = rrule.MONTHLY
		clampMonthDay(&opt, start)
	case model.RecurYearly:
		opt.Freq = rrule.YEARLY
		opt.Bymonth = []int{int(start.Month())}
		clampMonthDay(&opt, start)
	}
	return opt
}

// clampMonthDay makes days past the 28th land on the last day of shorter
// months instead of being skipped: BYMONTHDAY=28..d with BYSETPOS=-1 picks
// the latest existing day not after d.
func clampMonthDay(opt *rrule.ROption, start time.Time) {
	day := start.Day()
	if day <= 28 {
		opt.Bymonthday = []int{day}
		return
	}
	days := make([]int, 0, day-27)
	for d := 28; d <= day; d++ {
		days = append(days, d)
	}
	opt.Bymonthday = days
	opt.Bysetpos = []int{-1}
}
