package stats

import (
	"sort"
	"strings"
	"time"

	"github.com/dori/homeroom/internal/model"
)

// maxMonthlyPoints caps the monthly chart
const maxMonthlyPoints = 6

// Ranking weights for RankSubjects
const (
	completionWeight = 0.72
	onTimeWeight     = 0.28
)

// Point is one bucket of a trend chart
type Point struct {
	Label string    `json:"label"`
	Start time.Time `json:"start"`
	Count int       `json:"count"`
	Score int       `json:"score"`
}

// Direction describes how a chart moves between two points
type Direction int

const (
	Flat Direction = iota
	Up
	Down
)

// String returns the direction name
func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return "flat"
	}
}

// Directions returns one direction per segment between consecutive points
func Directions(points []Point) []Direction {
	if len(points) < 2 {
		return nil
	}
	dirs := make([]Direction, len(points)-1)
	for i := 1; i < len(points); i++ {
		switch {
		case points[i].Score > points[i-1].Score:
			dirs[i-1] = Up
		case points[i].Score < points[i-1].Score:
			dirs[i-1] = Down
		default:
			dirs[i-1] = Flat
		}
	}
	return dirs
}

// StartOfMonth returns midnight on the first of t's month
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// StartOfWeek returns midnight on the Monday of t's week
func StartOfWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	day := model.StartOfDay(t)
	return day.AddDate(0, 0, -offset)
}

// MonthlyTrend buckets tasks by due month. Months before the current one
// are dropped, as are months without tasks; at most the last six months
// are returned, oldest first.
func MonthlyTrend(tasks []model.Task, now time.Time) []Point {
	current := StartOfMonth(now)
	buckets := map[time.Time][]model.Task{}
	for _, t := range tasks {
		month := StartOfMonth(t.DueDate.In(now.Location()))
		if month.Before(current) {
			continue
		}
		buckets[month] = append(buckets[month], t)
	}

	months := make([]time.Time, 0, len(buckets))
	for m := range buckets {
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })
	if len(months) > maxMonthlyPoints {
		months = months[len(months)-maxMonthlyPoints:]
	}

	points := make([]Point, 0, len(months))
	for _, m := range months {
		bucket := buckets[m]
		points = append(points, Point{
			Label: m.Format("Jan"),
			Start: m,
			Count: len(bucket),
			Score: Compute(bucket, now).Percent,
		})
	}
	return points
}

// WeeklyTrend returns exactly seven points, Monday through Sunday of the
// current week. Days without tasks score zero.
func WeeklyTrend(tasks []model.Task, now time.Time) []Point {
	monday := StartOfWeek(now)
	points := make([]Point, 7)
	buckets := make([][]model.Task, 7)

	for _, t := range tasks {
		due := model.StartOfDay(t.DueDate.In(now.Location()))
		for i := 0; i < 7; i++ {
			if due.Equal(monday.AddDate(0, 0, i)) {
				buckets[i] = append(buckets[i], t)
				break
			}
		}
	}

	for i := range points {
		day := monday.AddDate(0, 0, i)
		points[i] = Point{
			Label: day.Format("Mon"),
			Start: day,
			Count: len(buckets[i]),
			Score: Compute(buckets[i], now).Percent,
		}
	}
	return points
}

// SubjectRank is one row of the subject leaderboard
type SubjectRank struct {
	Subject        model.Subject `json:"subject"`
	Metrics        Metrics       `json:"metrics"`
	CompletionRate float64       `json:"completion_rate"`
	OnTimeRate     float64       `json:"on_time_rate"`
	Ranking        float64       `json:"ranking"`
}

// RankSubjects scores every subject that has at least one task. Tasks
// without a subject, or pointing at a deleted one, are not ranked.
func RankSubjects(tasks []model.Task, subjects []model.Subject, now time.Time) []SubjectRank {
	bySubject := map[string][]model.Task{}
	for _, t := range tasks {
		if t.SubjectID == nil {
			continue
		}
		bySubject[*t.SubjectID] = append(bySubject[*t.SubjectID], t)
	}

	ranks := make([]SubjectRank, 0, len(subjects))
	for _, s := range subjects {
		scoped := bySubject[s.ID]
		if len(scoped) == 0 {
			continue
		}
		m := Compute(scoped, now)
		completion := float64(m.Completed) / float64(m.Total)
		onTime := float64(m.OnTime) / float64(max(m.Completed, 1))
		ranks = append(ranks, SubjectRank{
			Subject:        s,
			Metrics:        m,
			CompletionRate: completion,
			OnTimeRate:     onTime,
			Ranking:        completionWeight*completion + onTimeWeight*onTime,
		})
	}

	sort.SliceStable(ranks, func(i, j int) bool {
		a, b := ranks[i], ranks[j]
		if a.Ranking != b.Ranking {
			return a.Ranking > b.Ranking
		}
		if a.Metrics.Completed != b.Metrics.Completed {
			return a.Metrics.Completed > b.Metrics.Completed
		}
		return strings.ToLower(a.Subject.Name) < strings.ToLower(b.Subject.Name)
	})
	return ranks
}
