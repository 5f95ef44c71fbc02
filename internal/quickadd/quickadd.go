// Package quickadd parses one-line task entry such as
// "Lab report #bio due:fri at:9:00 every:weekly !pin".
package quickadd

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/dori/homeroom/internal/model"
)

// ErrEmptyTitle is returned when nothing but modifiers was entered
var ErrEmptyTitle = errors.New("title is required")

// Result is a parsed quick-add line
type Result struct {
	Title   string
	Kind    model.Kind
	Subject string // subject name or id, "" for none
	Pinned  bool
	Cadence model.Recurrence
	DueDate time.Time
}

// Parse reads text relative to now. Words it does not understand stay in
// the title. A task with no due date is due at the end of today.
func Parse(text string, now time.Time) (Result, error) {
	res := Result{
		Kind:    model.KindHomework,
		Cadence: model.RecurNone,
	}

	day := endOfDay(now)
	var clock *[2]int
	var titleParts []string

	for _, word := range strings.Fields(text) {
		lower := strings.ToLower(word)
		switch {
		// Subject (#bio, #math)
		case strings.HasPrefix(word, "#") && len(word) > 1:
			res.Subject = strings.TrimPrefix(word, "#")

		// Flags (!pin, !reminder)
		case strings.HasPrefix(word, "!"):
			switch strings.TrimPrefix(lower, "!") {
			case "pin", "p":
				res.Pinned = true
			case "reminder", "rem", "r":
				res.Kind = model.KindReminder
			case "homework", "hw":
				res.Kind = model.KindHomework
			default:
				titleParts = append(titleParts, word)
			}

		// Cadence (every:weekly)
		case strings.HasPrefix(lower, "every:"):
			if r, ok := parseCadence(strings.TrimPrefix(lower, "every:")); ok {
				res.Cadence = r
			} else {
				titleParts = append(titleParts, word)
			}

		// Due date (due:tomorrow, due:friday, due:2026-01-15)
		case strings.HasPrefix(lower, "due:"):
			if parsed, ok := ParseDate(strings.TrimPrefix(lower, "due:"), now); ok {
				day = parsed
			} else {
				titleParts = append(titleParts, word)
			}

		// Time of day (at:9:30, at:17:00)
		case strings.HasPrefix(lower, "at:"):
			if hm, ok := parseClock(strings.TrimPrefix(lower, "at:")); ok {
				clock = &hm
			} else {
				titleParts = append(titleParts, word)
			}

		default:
			titleParts = append(titleParts, word)
		}
	}

	res.Title = strings.Join(titleParts, " ")
	if res.Title == "" {
		return Result{}, ErrEmptyTitle
	}

	res.DueDate = day
	if clock != nil {
		res.DueDate = time.Date(day.Year(), day.Month(), day.Day(), clock[0], clock[1], 0, 0, day.Location())
	}
	return res, nil
}

func parseCadence(s string) (model.Recurrence, bool) {
	switch s {
	case "day", "daily":
		return model.RecurDaily, true
	case "week", "weekly":
		return model.RecurWeekly, true
	case "month", "monthly":
		return model.RecurMonthly, true
	case "year", "yearly":
		return model.RecurYearly, true
	case "none", "once":
		return model.RecurNone, true
	}
	return model.RecurNone, false
}

// ParseDate understands today, tomorrow, weekday names, nextweek and a few
// numeric layouts. The result is the end of that day in now's location.
func ParseDate(s string, now time.Time) (time.Time, bool) {
	today := endOfDay(now)

	switch strings.ToLower(s) {
	case "today":
		return today, true
	case "tomorrow", "tom":
		return today.AddDate(0, 0, 1), true
	case "monday", "mon":
		return nextWeekday(now, time.Monday), true
	case "tuesday", "tue":
		return nextWeekday(now, time.Tuesday), true
	case "wednesday", "wed":
		return nextWeekday(now, time.Wednesday), true
	case "thursday", "thu":
		return nextWeekday(now, time.Thursday), true
	case "friday", "fri":
		return nextWeekday(now, time.Friday), true
	case "saturday", "sat":
		return nextWeekday(now, time.Saturday), true
	case "sunday", "sun":
		return nextWeekday(now, time.Sunday), true
	case "nextweek":
		return today.AddDate(0, 0, 7), true
	}

	formats := []string{
		"2006-01-02",
		"01/02/2006",
		"01-02-2006",
		"01/02",
	}
	for _, format := range formats {
		t, err := time.ParseInLocation(format, s, now.Location())
		if err != nil {
			continue
		}
		year := t.Year()
		// no year given
		if year == 0 {
			year = now.Year()
		}
		return time.Date(year, t.Month(), t.Day(), 23, 59, 0, 0, now.Location()), true
	}
	return time.Time{}, false
}

// nextWeekday returns the end of the next day falling on day, never today
func nextWeekday(now time.Time, day time.Weekday) time.Time {
	daysUntil := int(day - now.Weekday())
	if daysUntil <= 0 {
		daysUntil += 7
	}
	return endOfDay(now).AddDate(0, 0, daysUntil)
}

func parseClock(s string) ([2]int, bool) {
	h, m, found := strings.Cut(s, ":")
	if !found {
		m = "0"
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return [2]int{}, false
	}
	minute, err := strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 {
		return [2]int{}, false
	}
	return [2]int{hour, minute}, true
}

// At moves day to the wall-clock time given as H or H:MM
func At(day time.Time, clock string) (time.Time, bool) {
	hm, ok := parseClock(clock)
	if !ok {
		return time.Time{}, false
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hm[0], hm[1], 0, 0, day.Location()), true
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 0, 0, t.Location())
}

// FormatDue renders a due date relative to now
func FormatDue(t, now time.Time) string {
	days := int(model.StartOfDay(t).Sub(model.StartOfDay(now)).Hours() / 24)
	clock := t.Format("15:04")

	switch {
	case days == 0:
		return "today " + clock
	case days == 1:
		return "tomorrow " + clock
	case days == -1:
		return "yesterday " + clock
	case days > 1 && days < 7:
		return t.Format("Mon") + " " + clock
	case t.Year() == now.Year():
		return t.Format("Jan 2") + " " + clock
	default:
		return t.Format("Jan 2, 2006") + " " + clock
	}
}
