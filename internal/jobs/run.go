package jobs

import (
	"errors"
	"fmt"
	"sync"

	"handsynth/internal/domain"
)

// ErrRunActive is returned when starting a second concurrent run.
var ErrRunActive = errors.New("run already active")

// ErrNoActiveRun is returned when cancel is requested while idle.
var ErrNoActiveRun = errors.New("no active run")

// Run stores the current run identity and lifecycle status.
type Run struct {
	JobID  string           `json:"jobId"`
	Status domain.RunStatus `json:"status"`
}

// Tracker guards the single allowed active run and its stage transitions.
// It is the per-run state machine: exactly one run may be between
// initializing and a terminal status at any time.
type Tracker struct {
	mu      sync.RWMutex
	current Run
}

// NewTracker creates a tracker in idle state.
func NewTracker() *Tracker {
	return &Tracker{
		current: Run{Status: domain.RunStatusIdle},
	}
}

// Start claims the tracker for a new run.
func (t *Tracker) Start(jobID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if isActive(t.current.Status) {
		return ErrRunActive
	}

	t.current = Run{JobID: jobID, Status: domain.RunStatusInitializing}
	return nil
}

// Transition validates and applies a stage transition for the current run.
func (t *Tracker) Transition(status domain.RunStatus) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.current.JobID == "" && status != domain.RunStatusIdle {
		return fmt.Errorf("cannot transition without an active run")
	}
	if status == t.current.Status {
		return nil
	}
	if !isValidTransition(t.current.Status, status) {
		return fmt.Errorf("invalid transition: %s -> %s", t.current.Status, status)
	}

	t.current.Status = status
	return nil
}

// Current returns a snapshot of the current run.
func (t *Tracker) Current() Run {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.current
}

// IsActive reports whether a run is between start and a terminal status.
func (t *Tracker) IsActive() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return isActive(t.current.Status)
}

// Cancel moves an active run to cancelled state.
func (t *Tracker) Cancel() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !isActive(t.current.Status) {
		return ErrNoActiveRun
	}
	t.current.Status = domain.RunStatusCancelled
	return nil
}

// isActive checks if a status represents in-flight pipeline execution.
func isActive(status domain.RunStatus) bool {
	switch status {
	case domain.RunStatusInitializing,
		domain.RunStatusSynthesizing,
		domain.RunStatusRasterizing,
		domain.RunStatusComposing,
		domain.RunStatusEncoding:
		return true
	default:
		return false
	}
}

// isValidTransition enforces the run stage machine edges. Cancellation and
// failure are reachable from every active stage; stages otherwise advance
// strictly forward.
func isValidTransition(from, to domain.RunStatus) bool {
	if isActive(from) && (to == domain.RunStatusCancelled || to == domain.RunStatusFailed) {
		return true
	}

	switch from {
	case domain.RunStatusIdle:
		return to == domain.RunStatusInitializing
	case domain.RunStatusInitializing:
		return to == domain.RunStatusSynthesizing
	case domain.RunStatusSynthesizing:
		return to == domain.RunStatusRasterizing
	case domain.RunStatusRasterizing:
		return to == domain.RunStatusComposing
	case domain.RunStatusComposing:
		return to == domain.RunStatusEncoding
	case domain.RunStatusEncoding:
		return to == domain.RunStatusDone
	case domain.RunStatusDone, domain.RunStatusFailed, domain.RunStatusCancelled:
		return to == domain.RunStatusInitializing || to == domain.RunStatusIdle
	default:
		return false
	}
}
