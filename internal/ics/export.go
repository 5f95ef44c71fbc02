// Package ics exports tasks as an iCalendar feed.
package ics

import (
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/dori/homeroom/internal/model"
)

const (
	propSeries    = ical.ComponentProperty("X-HOMEROOM-SERIES")
	propKind      = ical.ComponentProperty("X-HOMEROOM-KIND")
	propCompleted = ical.ComponentProperty("X-HOMEROOM-COMPLETED")

	// events get a nominal length so calendars draw them
	eventLength = 30 * time.Minute
)

// Resolver maps an attachment to a location a calendar client can open
type Resolver func(a model.Attachment) string

// Export writes one VEVENT per task. resolve may be nil, in which case
// attachments are left out.
func Export(w io.Writer, tasks []model.Task, subjects []model.Subject, resolve Resolver, now time.Time) error {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//homeroom//planner//EN")
	cal.SetXWRCalName("homeroom")

	for _, t := range tasks {
		addEvent(cal, t, subjects, resolve, now)
	}
	return cal.SerializeTo(w)
}

func addEvent(cal *ical.Calendar, t model.Task, subjects []model.Subject, resolve Resolver, now time.Time) {
	ev := cal.AddEvent(t.ID + "@homeroom")
	ev.SetDtStampTime(now)
	ev.SetCreatedTime(t.CreatedAt)
	ev.SetStartAt(t.DueDate)
	ev.SetEndAt(t.DueDate.Add(eventLength))
	ev.SetSummary(t.Title)
	ev.SetProperty(propKind, string(t.Kind))

	if s, ok := model.FindSubject(subjects, t.SubjectID); ok {
		ev.SetProperty(ical.ComponentPropertyCategories, s.Name)
		ev.SetProperty(ical.ComponentPropertyColor, s.Color.Hex())
	}

	ev.SetProperty(ical.ComponentPropertyStatus, "CONFIRMED")
	if t.IsDone && t.CompletedAt != nil {
		ev.SetProperty(propCompleted, t.CompletedAt.UTC().Format("20060102T150405Z"))
	}
	if t.IsPinned {
		ev.SetProperty(ical.ComponentPropertyPriority, "1")
	}
	if t.SeriesID != nil {
		ev.SetProperty(propSeries, *t.SeriesID)
	}

	if resolve == nil {
		return
	}
	for _, a := range t.Attachments {
		loc := resolve(a)
		if loc == "" {
			continue
		}
		if !strings.Contains(loc, "://") {
			loc = "file://" + loc
		}
		ev.AddProperty(ical.ComponentPropertyAttach, loc)
	}
}
