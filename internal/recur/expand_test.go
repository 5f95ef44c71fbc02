package recur

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dori/homeroom/internal/model"
)

var now = time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)

func template(due time.Time) Template {
	return Template{
		Title:     "Lab report",
		Kind:      model.KindHomework,
		SubjectID: model.StringPtr("chem"),
		DueDate:   due,
		IsPinned:  true,
		Attachments: []model.Attachment{
			{ID: "a1", OriginalName: "rubric.pdf", StoredFileName: "blob-1.pdf", Kind: model.AttachmentFile},
		},
	}
}

func TestExpandCountsMatchCaps(t *testing.T) {
	due := time.Date(2026, 1, 12, 17, 0, 0, 0, time.UTC)

	for _, cadence := range []model.Recurrence{model.RecurDaily, model.RecurWeekly, model.RecurMonthly, model.RecurYearly} {
		t.Run(string(cadence), func(t *testing.T) {
			tasks := Expand(template(due), cadence, now)
			require.Len(t, tasks, OccurrenceCap(cadence))

			series := tasks[0].SeriesID
			require.NotNil(t, series)
			ids := map[string]bool{}
			for i, task := range tasks {
				require.NotNil(t, task.SeriesID)
				assert.Equal(t, *series, *task.SeriesID)
				assert.Equal(t, cadence, task.Recurrence)
				assert.True(t, task.CreatedAt.Equal(now))
				assert.False(t, ids[task.ID], "duplicate id")
				ids[task.ID] = true
				if i > 0 {
					assert.True(t, task.DueDate.After(tasks[i-1].DueDate), "occurrences ascend")
				}
			}
		})
	}
}

func TestExpandNoneHasNoSeries(t *testing.T) {
	due := time.Date(2026, 1, 12, 17, 0, 0, 0, time.UTC)

	tasks := Expand(template(due), model.RecurNone, now)
	require.Len(t, tasks, 1)
	assert.Nil(t, tasks[0].SeriesID)
	assert.True(t, tasks[0].DueDate.Equal(due))
	assert.Equal(t, "Lab report", tasks[0].Title)
	assert.True(t, tasks[0].IsPinned)
}

func TestExpandUnknownCadenceActsAsNone(t *testing.T) {
	tasks := Expand(template(now), model.Recurrence("hourly"), now)
	require.Len(t, tasks, 1)
	assert.Nil(t, tasks[0].SeriesID)
	assert.Equal(t, model.RecurNone, tasks[0].Recurrence)
}

func TestExpandSteps(t *testing.T) {
	due := time.Date(2026, 1, 12, 17, 30, 0, 0, time.UTC)

	daily := Expand(template(due), model.RecurDaily, now)
	assert.Equal(t, due.AddDate(0, 0, 1), daily[1].DueDate)
	assert.Equal(t, due.AddDate(0, 0, 119), daily[119].DueDate)

	weekly := Expand(template(due), model.RecurWeekly, now)
	assert.Equal(t, due.AddDate(0, 0, 7), weekly[1].DueDate)
	assert.Equal(t, due.AddDate(0, 0, 7*103), weekly[103].DueDate)
	for _, task := range weekly {
		assert.Equal(t, time.Monday, task.DueDate.Weekday())
		assert.Equal(t, 17, task.DueDate.Hour())
		assert.Equal(t, 30, task.DueDate.Minute())
	}
}

func TestMonthlyClampsToShortMonths(t *testing.T) {
	due := time.Date(2026, 1, 31, 9, 0, 0, 0, time.UTC)

	dates := Dates(due, model.RecurMonthly)
	require.Len(t, dates, 36)
	assert.Equal(t, time.Date(2026, 2, 28, 9, 0, 0, 0, time.UTC), dates[1])
	assert.Equal(t, time.Date(2026, 3, 31, 9, 0, 0, 0, time.UTC), dates[2])
	assert.Equal(t, time.Date(2026, 4, 30, 9, 0, 0, 0, time.UTC), dates[3])
	// 2028 is a leap year
	assert.Equal(t, time.Date(2028, 2, 29, 9, 0, 0, 0, time.UTC), dates[25])
}

func TestMonthlyKeepsShortDays(t *testing.T) {
	due := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)

	dates := Dates(due, model.RecurMonthly)
	for i, d := range dates {
		assert.Equal(t, 15, d.Day(), "occurrence %d", i)
	}
	assert.Equal(t, time.Date(2028, 12, 15, 9, 0, 0, 0, time.UTC), dates[35])
}

func TestYearlyClampsLeapDay(t *testing.T) {
	due := time.Date(2028, 2, 29, 12, 0, 0, 0, time.UTC)

	dates := Dates(due, model.RecurYearly)
	require.Len(t, dates, 8)
	assert.Equal(t, time.Date(2029, 2, 28, 12, 0, 0, 0, time.UTC), dates[1])
	assert.Equal(t, time.Date(2032, 2, 29, 12, 0, 0, 0, time.UTC), dates[4])
}

func TestExpandCopiesAttachmentsPerOccurrence(t *testing.T) {
	due := time.Date(2026, 1, 12, 17, 0, 0, 0, time.UTC)
	tasks := Expand(template(due), model.RecurWeekly, now)

	tasks[0].Attachments[0].OriginalName = "edited.pdf"
	assert.Equal(t, "rubric.pdf", tasks[1].Attachments[0].OriginalName)
	for _, task := range tasks {
		assert.Equal(t, "blob-1.pdf", task.Attachments[0].StoredFileName)
	}

	*tasks[0].SubjectID = "bio"
	assert.Equal(t, "chem", *tasks[1].SubjectID)
}
