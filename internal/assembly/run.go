// Package assembly keeps a record of every assembly run in the process and
// serialises runs against the single host project.
package assembly

import (
	"errors"
	"sync"
	"time"

	"github.com/maauso/stillcut/internal/assembly/id"
	"github.com/maauso/stillcut/internal/notify"
	"github.com/maauso/stillcut/internal/pipeline"
)

// Status represents where a Run is in its lifecycle.
type Status string

const (
	// StatusPending indicates the run was accepted but has not touched the host.
	StatusPending Status = "PENDING"
	// StatusRunning indicates the pipeline is driving the host.
	StatusRunning Status = "RUNNING"
	// StatusQueued indicates the export job was handed to the encoder.
	StatusQueued Status = "EXPORT_QUEUED"
	// StatusAborted indicates a pipeline gate failed.
	StatusAborted Status = "ABORTED"
)

// ErrInvalidTransition is returned when an invalid status transition is attempted.
var ErrInvalidTransition = errors.New("assembly: invalid status transition")

var validTransitions = map[Status][]Status{
	StatusPending: {StatusRunning, StatusAborted},
	StatusRunning: {StatusQueued, StatusAborted},
	StatusQueued:  {},
	StatusAborted: {},
}

func canTransition(from, to Status) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Run is the record of one assembly.
type Run struct {
	mu sync.RWMutex

	// ID is the unique identifier for this run.
	ID string `json:"id"`
	// Params are the inputs the run was started with.
	Params pipeline.Params `json:"params"`
	// Status is the current lifecycle status.
	Status Status `json:"status"`
	// Trace lists the pipeline states entered.
	Trace []pipeline.State `json:"trace"`
	// Reached is the last state whose postcondition held.
	Reached pipeline.State `json:"reached,omitempty"`
	// Kind is the failure class when the run aborted.
	Kind pipeline.Kind `json:"kind,omitempty"`
	// Error is the failure text when the run aborted.
	Error string `json:"error,omitempty"`
	// Message is the text shown to the operator.
	Message string `json:"message"`
	// SequenceID is the host sequence created by the run, if any.
	SequenceID string `json:"sequence_id,omitempty"`
	// Duration is the matched audio duration.
	Duration time.Duration `json:"duration_ns,omitempty"`
	// CreatedAt is when the run was accepted.
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is when the run was last updated.
	UpdatedAt time.Time `json:"updated_at"`
	// StartedAt is when the pipeline started.
	StartedAt time.Time `json:"started_at,omitzero"`
	// CompletedAt is when the run reached a terminal status.
	CompletedAt time.Time `json:"completed_at,omitzero"`
}

// NewRun creates a pending Run with a generated ID.
func NewRun(params pipeline.Params) *Run {
	return NewRunWithID(id.Generate(), params)
}

// NewRunWithID creates a pending Run with the given ID.
func NewRunWithID(runID string, params pipeline.Params) *Run {
	now := time.Now()
	return &Run{
		ID:        runID,
		Params:    params,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TransitionTo changes the run status.
// Returns ErrInvalidTransition if the transition is not allowed.
func (r *Run) TransitionTo(status Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.transitionLocked(status)
}

func (r *Run) transitionLocked(status Status) error {
	if !canTransition(r.Status, status) {
		return ErrInvalidTransition
	}
	r.Status = status
	r.UpdatedAt = time.Now()

	switch status {
	case StatusRunning:
		r.StartedAt = r.UpdatedAt
	case StatusQueued, StatusAborted:
		r.CompletedAt = r.UpdatedAt
	}
	return nil
}

// Start transitions the run from PENDING to RUNNING.
func (r *Run) Start() error {
	return r.TransitionTo(StatusRunning)
}

// Finish records the pipeline outcome and moves the run to its terminal status.
func (r *Run) Finish(res pipeline.Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Trace = append([]pipeline.State(nil), res.Trace...)
	r.Reached = res.Reached()
	r.Message = notify.Message(res)
	r.Duration = res.Duration
	if res.Sequence != nil {
		r.SequenceID = string(res.Sequence.ID)
	}
	if res.OK() {
		return r.transitionLocked(StatusQueued)
	}
	if res.Failure != nil {
		r.Kind = res.Failure.Kind
		r.Error = res.Failure.Error()
	}
	return r.transitionLocked(StatusAborted)
}

// GetStatus returns the current status (thread-safe).
func (r *Run) GetStatus() Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.Status
}

// IsTerminal returns true once the run is queued or aborted.
func (r *Run) IsTerminal() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.Status == StatusQueued || r.Status == StatusAborted
}

// Clone creates a deep copy of the run for safe reads.
func (r *Run) Clone() *Run {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return &Run{
		ID:          r.ID,
		Params:      r.Params,
		Status:      r.Status,
		Trace:       append([]pipeline.State(nil), r.Trace...),
		Reached:     r.Reached,
		Kind:        r.Kind,
		Error:       r.Error,
		Message:     r.Message,
		SequenceID:  r.SequenceID,
		Duration:    r.Duration,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		StartedAt:   r.StartedAt,
		CompletedAt: r.CompletedAt,
	}
}
