// Package tracker keeps the outcome state of the most recent
// prediction between cycles.
package tracker

import (
	"sync"
	"time"

	"bigsmall-bot/internal/feed"
)

// Status reports the fate of a tracked prediction.
type Status string

const (
	StatusPending Status = "PENDING ⏳"
	StatusWin     Status = "WIN ✅"
	StatusLoss    Status = "LOSS ❌"
)

// State is one recorded prediction. The zero value means no prediction
// has been made yet.
type State struct {
	Period     string
	Prediction feed.Label
	RecordedAt time.Time
}

// Tracker serializes access to the single prediction record shared
// across cycles, so overlapping requests cannot lose updates.
type Tracker struct {
	mu    sync.RWMutex
	state State
}

func New() *Tracker {
	return &Tracker{}
}

// Resolve compares the tracked prediction against fresh history. The
// outcome stays PENDING until the predicted period shows up in the
// feed.
func (t *Tracker) Resolve(draws []feed.DrawRecord) Status {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.state.Period == "" {
		return StatusPending
	}

	// the predicted period, once drawn, sits near the end
	for i := len(draws) - 1; i >= 0; i-- {
		if draws[i].Period != t.state.Period {
			continue
		}
		if draws[i].Label == t.state.Prediction {
			return StatusWin
		}
		return StatusLoss
	}
	return StatusPending
}

// Record overwrites the tracked prediction.
func (t *Tracker) Record(period string, prediction feed.Label) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = State{Period: period, Prediction: prediction, RecordedAt: time.Now()}
}

// Snapshot returns a copy of the tracked state.
func (t *Tracker) Snapshot() State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}
