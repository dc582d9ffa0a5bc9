// Package pipeline assembles a still-image video in the host and queues its
// export.
//
// A run walks a fixed chain of gated stages. Each gate checks the host state
// the next stage depends on; the first gate that fails aborts the run with a
// tagged Failure and no later host call is made. Host artifacts created
// before the abort are left in place.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/maauso/stillcut/internal/host"
	"github.com/maauso/stillcut/internal/preset"
	"github.com/maauso/stillcut/internal/storage"
)

// Result is the outcome of one run.
type Result struct {
	// State is EXPORT_QUEUED or ABORTED.
	State State `json:"state"`
	// Trace lists every state entered, starting at INIT.
	Trace []State `json:"trace"`

	Sequence *host.Sequence     `json:"sequence,omitempty"`
	Image    *host.MediaItem    `json:"image,omitempty"`
	Audio    *host.MediaItem    `json:"audio,omitempty"`
	Duration time.Duration      `json:"duration,omitempty"`
	Preset   *preset.Descriptor `json:"preset,omitempty"`
	Job      *host.ExportJob    `json:"job,omitempty"`

	// Failure is set when State is ABORTED.
	Failure *Failure `json:"-"`
}

// OK reports whether the export was queued.
func (r Result) OK() bool {
	return r.State == StateExportQueued
}

// Err returns the failure as an error, or nil.
func (r Result) Err() error {
	if r.Failure == nil {
		return nil
	}
	return r.Failure
}

// Reached returns the last state whose postcondition held.
func (r Result) Reached() State {
	for i := len(r.Trace) - 1; i >= 0; i-- {
		if r.Trace[i] != StateAborted {
			return r.Trace[i]
		}
	}
	return StateInit
}

// Pipeline runs assemblies against a host.
type Pipeline struct {
	host       host.Host
	stager     storage.Stager
	logger     *slog.Logger
	importOpts host.ImportOptions
	workArea   host.WorkArea
	removeDone bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithStager resolves input references to local paths before import.
// Without a stager the references are handed to the host unchanged.
func WithStager(s storage.Stager) Option {
	return func(p *Pipeline) {
		p.stager = s
	}
}

// WithImportOptions overrides the options passed to the host import call.
func WithImportOptions(opts host.ImportOptions) Option {
	return func(p *Pipeline) {
		p.importOpts = opts
	}
}

// WithExportDefaults overrides the work area and queue removal of export jobs.
func WithExportDefaults(area host.WorkArea, removeOnCompletion bool) Option {
	return func(p *Pipeline) {
		p.workArea = area
		p.removeDone = removeOnCompletion
	}
}

// New creates a Pipeline. Export jobs default to the in/out work area and
// are removed from the host queue when they finish.
func New(h host.Host, logger *slog.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pipeline{
		host:       h,
		logger:     logger,
		importOpts: host.ImportOptions{SuppressUI: true},
		workArea:   host.WorkAreaInToOut,
		removeDone: true,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// assembly is the per-run context threaded through the stages.
type assembly struct {
	params   Params
	state    State
	trace    []State
	staged   []string
	sequence *host.Sequence
	image    host.MediaItem
	audio    host.MediaItem
	duration time.Duration
	preset   preset.Descriptor
	job      *host.ExportJob
}

func (a *assembly) advance(to State) {
	a.state = to
	a.trace = append(a.trace, to)
}

// stage pairs a gate with the work that must succeed to enter it. The gates
// follow the success path of the state machine in order.
type stage struct {
	gate State
	run  func(context.Context, *assembly) *Failure
}

func (p *Pipeline) stages() []stage {
	return []stage{
		{StateSequenceCreated, p.createSequence},
		{StateMediaImported, p.importMedia},
		{StateClipsPlaced, p.placeClips},
		{StateDurationMatched, p.matchDuration},
		{StateScaled, p.fitToFrame},
		{StatePresetResolved, p.resolvePreset},
		{StateExportQueued, p.queueExport},
	}
}

// Run performs one assembly. It never retries a host call; the returned
// Result is either EXPORT_QUEUED or ABORTED with the first failing gate.
func (p *Pipeline) Run(ctx context.Context, params Params) Result {
	a := &assembly{params: params, state: StateInit, trace: []State{StateInit}}
	log := p.logger.With(slog.String("sequence_name", params.SequenceName))

	if err := params.Validate(); err != nil {
		f := newFailure(KindInvalidParams, err.Error(), nil)
		f.Stage = StateInit
		return p.abort(log, a, f)
	}

	log.Info("assembly started",
		slog.String("image", params.ImagePath),
		slog.String("audio", params.AudioPath),
		slog.String("preset", params.PresetName),
	)

	for _, s := range p.stages() {
		if f := s.run(ctx, a); f != nil {
			f.Stage = s.gate
			return p.abort(log, a, f)
		}
		a.advance(s.gate)
		log.Debug("stage complete", slog.String("state", string(s.gate)))
	}

	log.Info("export queued",
		slog.String("sequence_id", string(a.sequence.ID)),
		slog.String("output", params.OutputPath),
		slog.Duration("duration", a.duration),
	)
	return a.result()
}

func (p *Pipeline) abort(log *slog.Logger, a *assembly, f *Failure) Result {
	a.state = StateAborted
	a.trace = append(a.trace, StateAborted)
	log.Error("assembly aborted",
		slog.String("kind", string(f.Kind)),
		slog.String("stage", string(f.Stage)),
		slog.String("error", f.Error()),
	)
	r := a.result()
	r.Failure = f
	return r
}

func (a *assembly) result() Result {
	r := Result{
		State:    a.state,
		Trace:    a.trace,
		Sequence: a.sequence,
		Duration: a.duration,
		Job:      a.job,
	}
	if reached(a.trace, StateMediaImported) {
		image, audio := a.image, a.audio
		r.Image, r.Audio = &image, &audio
	}
	if reached(a.trace, StatePresetResolved) {
		d := a.preset
		r.Preset = &d
	}
	return r
}

func reached(trace []State, s State) bool {
	for _, t := range trace {
		if t == s {
			return true
		}
	}
	return false
}
