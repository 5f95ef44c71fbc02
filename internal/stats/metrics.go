// Package stats derives completion metrics and trends from a task snapshot.
// Every function here is pure: the current time is always passed in.
package stats

import (
	"math"
	"time"

	"github.com/dori/homeroom/internal/model"
)

// onTimeBonus is the most that on-time completion can add to a score
const onTimeBonus = 12.0

// Metrics summarizes one scope of tasks
type Metrics struct {
	Total     int `json:"total"`
	Missed    int `json:"missed"`
	Completed int `json:"completed"`
	OnTime    int `json:"on_time"`
	Percent   int `json:"percent"`
}

// Compute scores tasks at instant now.
//
// A task counts as on time when it was completed on the calendar day it was
// created, regardless of its due date. Missed tasks are open tasks whose due
// date has passed.
func Compute(tasks []model.Task, now time.Time) Metrics {
	m := Metrics{Total: len(tasks)}
	for i := range tasks {
		t := &tasks[i]
		if t.IsDone {
			m.Completed++
			if IsOnTime(t) {
				m.OnTime++
			}
			continue
		}
		if t.DueDate.Before(now) {
			m.Missed++
		}
	}
	m.Percent = score(m)
	return m
}

// IsOnTime reports whether a done task was completed on its creation day
func IsOnTime(t *model.Task) bool {
	if !t.IsDone || t.CompletedAt == nil {
		return false
	}
	return model.SameDay(t.CreatedAt, *t.CompletedAt)
}

func score(m Metrics) int {
	if m.Total == 0 {
		return 0
	}
	base := 100 * float64(m.Completed) / float64(m.Total)
	bonusShare := 0.0
	if m.Completed > 0 {
		bonusShare = float64(m.OnTime) / float64(m.Completed)
	}
	return int(math.Round(math.Min(100, base+bonusShare*onTimeBonus)))
}
