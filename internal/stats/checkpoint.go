package stats

import (
	"encoding/json"
	"time"

	"github.com/dori/homeroom/internal/model"
)

// Checkpoint narrows scoring to tasks created at or after a reset.
// The zero value includes all history.
type Checkpoint struct {
	Since time.Time
}

// ResetAt returns a checkpoint starting exactly at now
func ResetAt(now time.Time) Checkpoint {
	return Checkpoint{Since: now.Round(0)}
}

// IsSet returns true if a reset is in effect
func (c Checkpoint) IsSet() bool {
	return !c.Since.IsZero()
}

// Includes reports whether t falls inside the scoring window
func (c Checkpoint) Includes(t *model.Task) bool {
	return !c.IsSet() || !t.CreatedAt.Before(c.Since)
}

// Scope returns the tasks inside the scoring window. The input is not modified.
func (c Checkpoint) Scope(tasks []model.Task) []model.Task {
	if !c.IsSet() {
		return tasks
	}
	out := make([]model.Task, 0, len(tasks))
	for i := range tasks {
		if c.Includes(&tasks[i]) {
			out = append(out, tasks[i])
		}
	}
	return out
}

// UnixNano returns the checkpoint as epoch nanoseconds, 0 when unset
func (c Checkpoint) UnixNano() int64 {
	if !c.IsSet() {
		return 0
	}
	return c.Since.UnixNano()
}

// FromUnixNano is the inverse of UnixNano
func FromUnixNano(ns int64) Checkpoint {
	if ns <= 0 {
		return Checkpoint{}
	}
	return Checkpoint{Since: time.Unix(0, ns)}
}

// checkpointJSON carries nanoseconds; Since is the older whole-second field
type checkpointJSON struct {
	SinceNano int64 `json:"since_ns"`
	Since     int64 `json:"since,omitempty"`
}

// MarshalJSON stores the checkpoint as epoch nanoseconds
func (c Checkpoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(checkpointJSON{SinceNano: c.UnixNano()})
}

// UnmarshalJSON reads epoch nanoseconds, falling back to epoch seconds
// written by older versions; 0 means no checkpoint
func (c *Checkpoint) UnmarshalJSON(data []byte) error {
	var raw checkpointJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.SinceNano == 0 && raw.Since > 0 {
		*c = Checkpoint{Since: time.Unix(raw.Since, 0)}
		return nil
	}
	*c = FromUnixNano(raw.SinceNano)
	return nil
}
