// Package store persists planner snapshots.
package store

import (
	"context"

	"github.com/dori/homeroom/internal/model"
	"github.com/dori/homeroom/internal/stats"
)

// Snapshot is the full persisted state: two flat collections plus the
// stats checkpoint.
type Snapshot struct {
	Tasks      []model.Task
	Subjects   []model.Subject
	Checkpoint stats.Checkpoint
}

// Clone returns a deep copy so a snapshot can be handed to a background writer
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Tasks:      make([]model.Task, len(s.Tasks)),
		Subjects:   make([]model.Subject, len(s.Subjects)),
		Checkpoint: s.Checkpoint,
	}
	for i, t := range s.Tasks {
		out.Tasks[i] = t.Clone()
	}
	copy(out.Subjects, s.Subjects)
	return out
}

// Store loads and saves snapshots.
//
// Load never fails: a collection that is missing or unreadable comes back
// empty, and the problem is logged.
type Store interface {
	Load(ctx context.Context) Snapshot
	Save(ctx context.Context, snap Snapshot) error
	Close() error
}
