package stats

import (
	"time"

	"github.com/dori/homeroom/internal/model"
)

// Report is everything the stats screen shows, computed in one pass over
// the tasks inside the checkpoint window.
type Report struct {
	GeneratedAt time.Time     `json:"generated_at"`
	Checkpoint  Checkpoint    `json:"checkpoint"`
	Overall     Metrics       `json:"overall"`
	ByKind      KindMetrics   `json:"by_kind"`
	Subjects    []SubjectRank `json:"subjects"`
	Monthly     []Point       `json:"monthly"`
	Weekly      []Point       `json:"weekly"`
}

// KindMetrics splits the overall score by task kind
type KindMetrics struct {
	Homework Metrics `json:"homework"`
	Reminder Metrics `json:"reminder"`
}

// Build scopes tasks to the checkpoint and computes every metric and trend
func Build(tasks []model.Task, subjects []model.Subject, cp Checkpoint, now time.Time) Report {
	scoped := cp.Scope(tasks)

	var homework, reminders []model.Task
	for _, t := range scoped {
		if t.Kind == model.KindReminder {
			reminders = append(reminders, t)
		} else {
			homework = append(homework, t)
		}
	}

	return Report{
		GeneratedAt: now,
		Checkpoint:  cp,
		Overall:     Compute(scoped, now),
		ByKind: KindMetrics{
			Homework: Compute(homework, now),
			Reminder: Compute(reminders, now),
		},
		Subjects: RankSubjects(scoped, subjects, now),
		Monthly:  MonthlyTrend(scoped, now),
		Weekly:   WeeklyTrend(scoped, now),
	}
}
