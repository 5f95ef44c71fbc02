package planner

import (
	applog "github.com/dori/homeroom/internal/log"
	"github.com/dori/homeroom/internal/stats"
)

// Checkpoint returns the current stats checkpoint
func (p *Planner) Checkpoint() stats.Checkpoint {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.checkpoint
}

// ResetStats starts a new scoring window at the current time. No task is
// deleted.
func (p *Planner) ResetStats() stats.Checkpoint {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.checkpoint = stats.ResetAt(p.now())
	p.save()
	applog.Log.WithField("since", p.checkpoint.Since).Info("stats reset")
	return p.checkpoint
}

// RebuildStats clears the checkpoint so scoring covers all history again
func (p *Planner) RebuildStats() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.checkpoint = stats.Checkpoint{}
	p.save()
	applog.Log.Info("stats rebuilt from full history")
}

// Report computes the stats report for the current state
func (p *Planner) Report() stats.Report {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return stats.Build(p.tasks, p.subjects, p.checkpoint, p.now())
}
