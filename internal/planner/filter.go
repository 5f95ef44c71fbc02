package planner

import (
	"sort"
	"time"

	"github.com/dori/homeroom/internal/model"
)

// Filter narrows a task listing. The zero value matches open tasks.
type Filter struct {
	IncludeDone bool
	SubjectID   string
	Kind        model.Kind
	DueOn       *time.Time
	PinnedOnly  bool
}

// Match reports whether t passes the filter
func (f Filter) Match(t *model.Task) bool {
	if t.IsDone && !f.IncludeDone {
		return false
	}
	if f.SubjectID != "" && !t.HasSubject(f.SubjectID) {
		return false
	}
	if f.Kind != "" && t.Kind != f.Kind {
		return false
	}
	if f.DueOn != nil && !t.IsDueOn(*f.DueOn) {
		return false
	}
	if f.PinnedOnly && !t.IsPinned {
		return false
	}
	return true
}

// List returns the tasks passing f in display order
func (p *Planner) List(f Filter) []model.Task {
	var out []model.Task
	for _, t := range p.Tasks() {
		if f.Match(&t) {
			out = append(out, t)
		}
	}
	SortForDisplay(out)
	return out
}

// SortForDisplay orders tasks open first, then pinned, then by due date
func SortForDisplay(tasks []model.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if a.IsDone != b.IsDone {
			return !a.IsDone
		}
		if a.IsPinned != b.IsPinned {
			return a.IsPinned
		}
		if !a.DueDate.Equal(b.DueDate) {
			return a.DueDate.Before(b.DueDate)
		}
		return a.Title < b.Title
	})
}

// Count returns how many tasks pass f
func (p *Planner) Count(f Filter) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	n := 0
	for i := range p.tasks {
		if f.Match(&p.tasks[i]) {
			n++
		}
	}
	return n
}
