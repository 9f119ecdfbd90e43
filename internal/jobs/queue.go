package jobs

import (
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"

	"handsynth/internal/domain"
)

// ErrQueueEmpty is returned when starting a queue with no items.
var ErrQueueEmpty = errors.New("queue is empty")

// ErrQueueProcessing is returned for operations illegal mid-drain.
var ErrQueueProcessing = errors.New("queue is processing")

// ErrJobProcessing is returned when removing the in-flight item.
var ErrJobProcessing = errors.New("job is currently processing")

// ErrJobNotFound is returned for unknown job identifiers.
var ErrJobNotFound = errors.New("job not found")

// QueueState is the queue machine state: idle or draining.
type QueueState string

const (
	QueueIdle       QueueState = "idle"
	QueueProcessing QueueState = "processing"
)

// displayNamePreviewLen bounds the auto-generated display name.
const displayNamePreviewLen = 20

// NewJob builds a queued job from a submission. An empty display name falls
// back to a short preview of the text.
func NewJob(text, displayName string) domain.QueuedJob {
	name := strings.TrimSpace(displayName)
	if name == "" {
		preview := []rune(strings.TrimSpace(text))
		if len(preview) > displayNamePreviewLen {
			name = string(preview[:displayNamePreviewLen]) + "..."
		} else {
			name = string(preview)
		}
	}

	return domain.QueuedJob{
		ID:          uuid.NewString(),
		Text:        text,
		DisplayName: name,
	}
}

// Queue is the FIFO state machine driving sequential pipeline runs. Items
// are processed strictly by queue position; cancellation is scoped to the
// current run and never discards the remainder of the queue.
type Queue struct {
	mu      sync.Mutex
	state   QueueState
	items   []domain.QueuedJob
	index   int
	order   int
	results map[string]domain.RunResult
}

// NewQueue creates an idle empty queue.
func NewQueue() *Queue {
	return &Queue{
		state:   QueueIdle,
		results: map[string]domain.RunResult{},
	}
}

// Enqueue appends a job. Legal in any state, including mid-drain.
func (q *Queue) Enqueue(job domain.QueuedJob) domain.QueuedJob {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.order++
	job.Order = q.order
	q.items = append(q.items, job)
	return job
}

// Remove deletes a job by id. The in-flight item cannot be removed.
func (q *Queue) Remove(id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, job := range q.items {
		if job.ID != id {
			continue
		}
		if q.state == QueueProcessing && i == q.index {
			return ErrJobProcessing
		}

		q.items = append(q.items[:i], q.items[i+1:]...)
		if q.state == QueueProcessing && i < q.index {
			q.index--
		}
		return nil
	}
	return ErrJobNotFound
}

// Clear discards all pending items. Illegal while draining.
func (q *Queue) Clear() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.state == QueueProcessing {
		return ErrQueueProcessing
	}
	q.items = nil
	q.index = 0
	return nil
}

// Start transitions to Processing(0) and returns the first job.
func (q *Queue) Start() (domain.QueuedJob, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.state == QueueProcessing {
		return domain.QueuedJob{}, ErrQueueProcessing
	}
	if len(q.items) == 0 {
		return domain.QueuedJob{}, ErrQueueEmpty
	}

	q.state = QueueProcessing
	q.index = 0
	q.results = map[string]domain.RunResult{}
	return q.items[0], nil
}

// Current returns the in-flight job and its position while processing.
func (q *Queue) Current() (domain.QueuedJob, int, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.state != QueueProcessing || q.index >= len(q.items) {
		return domain.QueuedJob{}, 0, false
	}
	return q.items[q.index], q.index, true
}

// RecordResult stores the outcome of one item's run.
func (q *Queue) RecordResult(id string, result domain.RunResult) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.results[id] = result
}

// Result returns the recorded outcome for a job from the current drain.
func (q *Queue) Result(id string) (domain.RunResult, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	result, ok := q.results[id]
	return result, ok
}

// Advance moves to the next position after a run concludes, regardless of
// its outcome. It returns the next job, or ok=false once the queue has
// drained and returned to idle.
func (q *Queue) Advance() (domain.QueuedJob, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.state != QueueProcessing {
		return domain.QueuedJob{}, false
	}

	q.index++
	if q.index >= len(q.items) {
		// Drained. Processed items are consumed; recorded results stay
		// readable until the next Start.
		q.state = QueueIdle
		q.index = 0
		q.items = nil
		return domain.QueuedJob{}, false
	}
	return q.items[q.index], true
}

// IsLast reports whether the in-flight item is the final queue position.
func (q *Queue) IsLast() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state == QueueProcessing && q.index == len(q.items)-1
}

// State returns the current machine state.
func (q *Queue) State() QueueState {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state
}

// Len returns the number of queued items.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Snapshot returns the queued items in processing order.
func (q *Queue) Snapshot() []domain.QueuedJob {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]domain.QueuedJob(nil), q.items...)
}

// Summary aggregates the most recent drain's per-item outcomes.
func (q *Queue) Summary() domain.QueueSummary {
	q.mu.Lock()
	defer q.mu.Unlock()

	summary := domain.QueueSummary{Processed: len(q.results), AllClean: true}
	for _, result := range q.results {
		if !result.Clean() {
			summary.AllClean = false
		}
		if result.Cancelled {
			summary.Cancelled++
			continue
		}
		if len(result.Warnings) > 0 {
			summary.WithWarnings++
		}
	}
	return summary
}
