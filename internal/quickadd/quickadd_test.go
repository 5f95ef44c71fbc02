package quickadd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dori/homeroom/internal/model"
)

// a Wednesday
var now = time.Date(2026, 3, 18, 10, 15, 0, 0, time.UTC)

func TestParsePlainTitle(t *testing.T) {
	res, err := Parse("Read chapter 4", now)
	require.NoError(t, err)
	assert.Equal(t, "Read chapter 4", res.Title)
	assert.Equal(t, model.KindHomework, res.Kind)
	assert.Equal(t, model.RecurNone, res.Cadence)
	assert.False(t, res.Pinned)
	assert.Equal(t, time.Date(2026, 3, 18, 23, 59, 0, 0, time.UTC), res.DueDate)
}

func TestParseModifiers(t *testing.T) {
	res, err := Parse("Lab report #bio due:fri at:9:30 every:weekly !pin", now)
	require.NoError(t, err)
	assert.Equal(t, "Lab report", res.Title)
	assert.Equal(t, "bio", res.Subject)
	assert.True(t, res.Pinned)
	assert.Equal(t, model.RecurWeekly, res.Cadence)
	assert.Equal(t, time.Date(2026, 3, 20, 9, 30, 0, 0, time.UTC), res.DueDate)
}

func TestParseReminderKind(t *testing.T) {
	res, err := Parse("!reminder Bring calculator due:tomorrow at:7", now)
	require.NoError(t, err)
	assert.Equal(t, model.KindReminder, res.Kind)
	assert.Equal(t, "Bring calculator", res.Title)
	assert.Equal(t, time.Date(2026, 3, 19, 7, 0, 0, 0, time.UTC), res.DueDate)
}

func TestParseUnknownTokensStayInTitle(t *testing.T) {
	res, err := Parse("Fix !bang due:someday every:fortnight at:25:00 #", now)
	require.NoError(t, err)
	assert.Equal(t, "Fix !bang due:someday every:fortnight at:25:00 #", res.Title)
	assert.Equal(t, model.RecurNone, res.Cadence)
}

func TestParseEmptyTitle(t *testing.T) {
	_, err := Parse("#bio !pin due:today", now)
	assert.ErrorIs(t, err, ErrEmptyTitle)

	_, err = Parse("   ", now)
	assert.ErrorIs(t, err, ErrEmptyTitle)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"today", time.Date(2026, 3, 18, 23, 59, 0, 0, time.UTC)},
		{"tom", time.Date(2026, 3, 19, 23, 59, 0, 0, time.UTC)},
		{"wed", time.Date(2026, 3, 25, 23, 59, 0, 0, time.UTC)},
		{"mon", time.Date(2026, 3, 23, 23, 59, 0, 0, time.UTC)},
		{"nextweek", time.Date(2026, 3, 25, 23, 59, 0, 0, time.UTC)},
		{"2026-05-01", time.Date(2026, 5, 1, 23, 59, 0, 0, time.UTC)},
		{"05/01/2027", time.Date(2027, 5, 1, 23, 59, 0, 0, time.UTC)},
		{"12/24", time.Date(2026, 12, 24, 23, 59, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseDate(tt.in, now)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := ParseDate("someday", now)
	assert.False(t, ok)
}

func TestFormatDue(t *testing.T) {
	assert.Equal(t, "today 17:00", FormatDue(time.Date(2026, 3, 18, 17, 0, 0, 0, time.UTC), now))
	assert.Equal(t, "tomorrow 09:00", FormatDue(time.Date(2026, 3, 19, 9, 0, 0, 0, time.UTC), now))
	assert.Equal(t, "yesterday 09:00", FormatDue(time.Date(2026, 3, 17, 9, 0, 0, 0, time.UTC), now))
	assert.Equal(t, "Sat 09:00", FormatDue(time.Date(2026, 3, 21, 9, 0, 0, 0, time.UTC), now))
	assert.Equal(t, "Apr 30 09:00", FormatDue(time.Date(2026, 4, 30, 9, 0, 0, 0, time.UTC), now))
	assert.Equal(t, "Jan 5, 2027 09:00", FormatDue(time.Date(2027, 1, 5, 9, 0, 0, 0, time.UTC), now))
}

func TestAt(t *testing.T) {
	got, ok := At(now, "7:05")
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 3, 18, 7, 5, 0, 0, time.UTC), got)

	got, ok = At(now, "17")
	require.True(t, ok)
	assert.Equal(t, 17, got.Hour())
	assert.Equal(t, 0, got.Minute())

	_, ok = At(now, "25:00")
	assert.False(t, ok)
}
