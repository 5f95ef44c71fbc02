package store

import (
	"context"
	"sync"
	"time"

	applog "github.com/dori/homeroom/internal/log"
)

// DefaultDebounce is how long the saver waits after the last change
const DefaultDebounce = 200 * time.Millisecond

// Saver collapses bursts of save requests into one write. Each request
// replaces the pending snapshot and restarts the delay; the write runs on
// the timer goroutine so callers never block on disk.
type Saver struct {
	store Store
	delay time.Duration

	mu      sync.Mutex
	pending *Snapshot
	timer   *time.Timer
	closed  bool

	// held while taking and writing the pending snapshot, so an older
	// snapshot is never written after a newer one
	writeMu sync.Mutex
}

// NewSaver creates a saver writing to store after delay
func NewSaver(store Store, delay time.Duration) *Saver {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Saver{store: store, delay: delay}
}

// Save schedules snap to be written. A newer call supersedes it.
func (s *Saver) Save(snap Snapshot) {
	snap = snap.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.pending = &snap
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, s.write)
}

// Flush writes any pending snapshot now and stops accepting new ones
func (s *Saver) Flush(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.closed = true
	snap := s.take()
	s.mu.Unlock()

	if snap == nil {
		return nil
	}
	return s.store.Save(ctx, *snap)
}

func (s *Saver) take() *Snapshot {
	snap := s.pending
	s.pending = nil
	return snap
}

func (s *Saver) write() {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	snap := s.take()
	s.mu.Unlock()

	if snap == nil {
		return
	}
	if err := s.store.Save(context.Background(), *snap); err != nil {
		applog.Log.WithError(err).Error("failed to save snapshot")
		return
	}
	applog.Log.WithField("tasks", len(snap.Tasks)).Debug("snapshot saved")
}
