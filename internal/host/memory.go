package host

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"sync"
	"time"
)

// ErrNotFound is returned by MemoryHost when a handle does not resolve.
var ErrNotFound = errors.New("host: handle not found")

// DefaultStillDuration is the intrinsic duration MemoryHost gives imported stills.
const DefaultStillDuration = 5 * time.Second

// Compile-time check that MemoryHost implements Host.
var _ Host = (*MemoryHost)(nil)

// Faults makes MemoryHost misbehave the way a real host can.
type Faults struct {
	// SkipActivate leaves no active sequence after CreateSequence.
	SkipActivate bool
	// RejectImport makes ImportFiles return false without adding items.
	RejectImport bool
	// DropVideoInsert makes inserts on video tracks silently do nothing.
	DropVideoInsert bool
	// HideDuration makes MediaDuration report zero.
	HideDuration bool
	// RejectEncode makes EncodeSequence fail.
	RejectEncode bool
}

type memSequence struct {
	seq    Sequence
	tracks map[TrackRef][]ClipID
}

type memItem struct {
	item     MediaItem
	duration time.Duration
	outPoint time.Duration
}

type memClip struct {
	id           ClipID
	item         ItemID
	scaleToFrame bool
}

// MemoryHost is an in-process model of a host project. It keeps the active
// sequence pointer, media pool, tracks and encoder queue, and records every
// call in order. It is safe for concurrent use.
type MemoryHost struct {
	mu sync.Mutex

	faults          Faults
	presets         []string
	durations       map[string]time.Duration
	defaultDuration time.Duration

	sequences map[SequenceID]*memSequence
	active    SequenceID
	pool      []ItemID
	items     map[ItemID]*memItem
	clips     map[ClipID]*memClip
	jobs      []ExportJob
	alerts    []string
	calls     []string
	nextID    int
}

// MemoryOption configures a MemoryHost.
type MemoryOption func(*MemoryHost)

// WithPresets sets the encoder preset registry, in index order.
func WithPresets(names ...string) MemoryOption {
	return func(h *MemoryHost) {
		h.presets = append([]string(nil), names...)
	}
}

// WithMediaDuration sets the intrinsic duration reported for an imported path.
func WithMediaDuration(path string, d time.Duration) MemoryOption {
	return func(h *MemoryHost) {
		h.durations[path] = d
	}
}

// WithDefaultDuration sets the duration of imported paths that have no explicit
// duration and are not stills.
func WithDefaultDuration(d time.Duration) MemoryOption {
	return func(h *MemoryHost) {
		h.defaultDuration = d
	}
}

// WithFaults injects failures.
func WithFaults(f Faults) MemoryOption {
	return func(h *MemoryHost) {
		h.faults = f
	}
}

// WithPoolItems pre-populates the root bin, simulating a non-empty project.
func WithPoolItems(names ...string) MemoryOption {
	return func(h *MemoryHost) {
		for _, n := range names {
			h.addItem(n, 0)
		}
	}
}

// NewMemoryHost creates an empty in-memory host project.
func NewMemoryHost(opts ...MemoryOption) *MemoryHost {
	h := &MemoryHost{
		durations: make(map[string]time.Duration),
		sequences: make(map[SequenceID]*memSequence),
		items:     make(map[ItemID]*memItem),
		clips:     make(map[ClipID]*memClip),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// CreateSequence creates an empty sequence and makes it active.
func (h *MemoryHost) CreateSequence(_ context.Context, name string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.record(MethodCreateSequence)

	id := SequenceID(h.newID("seq"))
	h.sequences[id] = &memSequence{
		seq:    Sequence{ID: id, Name: name},
		tracks: make(map[TrackRef][]ClipID),
	}
	if !h.faults.SkipActivate {
		h.active = id
	}
	return nil
}

// ActiveSequence returns the active sequence or nil.
func (h *MemoryHost) ActiveSequence(_ context.Context) (*Sequence, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.record(MethodActiveSequence)

	s, ok := h.sequences[h.active]
	if !ok {
		return nil, nil
	}
	seq := s.seq
	return &seq, nil
}

// ImportFiles appends one root item per path, in order.
func (h *MemoryHost) ImportFiles(_ context.Context, paths []string, _ ImportOptions) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.record(MethodImportFiles)

	if h.faults.RejectImport {
		return false, nil
	}
	for _, p := range paths {
		h.addItem(p, h.durationFor(p))
	}
	return true, nil
}

// RootItems lists the root bin.
func (h *MemoryHost) RootItems(_ context.Context) ([]MediaItem, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.record(MethodRootItems)

	out := make([]MediaItem, 0, len(h.pool))
	for _, id := range h.pool {
		out = append(out, h.items[id].item)
	}
	return out, nil
}

// InsertClip places item on a track. Clips on a track are ordered by insertion.
func (h *MemoryHost) InsertClip(_ context.Context, seq SequenceID, track TrackRef, item ItemID, _ time.Duration) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.record(MethodInsertClip)

	s, ok := h.sequences[seq]
	if !ok {
		return fmt.Errorf("%w: sequence %s", ErrNotFound, seq)
	}
	if _, ok := h.items[item]; !ok {
		return fmt.Errorf("%w: item %s", ErrNotFound, item)
	}
	if track.Kind == TrackVideo && h.faults.DropVideoInsert {
		return nil
	}
	id := ClipID(h.newID("clip"))
	h.clips[id] = &memClip{id: id, item: item}
	s.tracks[track] = append(s.tracks[track], id)
	return nil
}

// Clips lists the clips on a track. A clip's out-point follows its item's.
func (h *MemoryHost) Clips(_ context.Context, seq SequenceID, track TrackRef) ([]Clip, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.record(MethodClips)

	s, ok := h.sequences[seq]
	if !ok {
		return nil, fmt.Errorf("%w: sequence %s", ErrNotFound, seq)
	}
	out := make([]Clip, 0, len(s.tracks[track]))
	for _, id := range s.tracks[track] {
		out = append(out, h.clipView(h.clips[id]))
	}
	return out, nil
}

// SetScaleToFrameSize flags a clip as scaled to frame.
func (h *MemoryHost) SetScaleToFrameSize(_ context.Context, _ SequenceID, clip ClipID) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.record(MethodScaleToFrame)

	c, ok := h.clips[clip]
	if !ok {
		return fmt.Errorf("%w: clip %s", ErrNotFound, clip)
	}
	c.scaleToFrame = true
	return nil
}

// MediaDuration reports an item's intrinsic duration.
func (h *MemoryHost) MediaDuration(_ context.Context, item ItemID) (time.Duration, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.record(MethodMediaDuration)

	it, ok := h.items[item]
	if !ok {
		return 0, fmt.Errorf("%w: item %s", ErrNotFound, item)
	}
	if h.faults.HideDuration {
		return 0, nil
	}
	return it.duration, nil
}

// SetOutPoint sets an item's out-point.
func (h *MemoryHost) SetOutPoint(_ context.Context, item ItemID, d time.Duration) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.record(MethodSetOutPoint)

	it, ok := h.items[item]
	if !ok {
		return fmt.Errorf("%w: item %s", ErrNotFound, item)
	}
	it.outPoint = d
	return nil
}

// PresetCount returns the registry size.
func (h *MemoryHost) PresetCount(_ context.Context) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.record(MethodPresetCount)
	return len(h.presets), nil
}

// PresetName returns the preset at index.
func (h *MemoryHost) PresetName(_ context.Context, index int) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.record(MethodPresetName)

	if index < 0 || index >= len(h.presets) {
		return "", fmt.Errorf("%w: preset %d", ErrNotFound, index)
	}
	return h.presets[index], nil
}

// EncodeSequence queues job.
func (h *MemoryHost) EncodeSequence(_ context.Context, job ExportJob) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.record(MethodEncodeSequence)

	if h.faults.RejectEncode {
		return fmt.Errorf("%w: encoder rejected job", ErrCallFailed)
	}
	if _, ok := h.sequences[job.Sequence]; !ok {
		return fmt.Errorf("%w: sequence %s", ErrNotFound, job.Sequence)
	}
	h.jobs = append(h.jobs, job)
	return nil
}

// Alert records a modal message.
func (h *MemoryHost) Alert(_ context.Context, message string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.record(MethodAlert)
	h.alerts = append(h.alerts, message)
	return nil
}

// Calls returns the bridge method names invoked so far, in order.
func (h *MemoryHost) Calls() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.calls)
}

// CallCount returns how many times method was invoked.
func (h *MemoryHost) CallCount(method string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, c := range h.calls {
		if c == method {
			n++
		}
	}
	return n
}

// Jobs returns the queued export jobs.
func (h *MemoryHost) Jobs() []ExportJob {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.jobs)
}

// Alerts returns the modal messages raised so far.
func (h *MemoryHost) Alerts() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.alerts)
}

// Sequences returns the number of sequences created in the project.
func (h *MemoryHost) Sequences() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sequences)
}

func (h *MemoryHost) record(method string) {
	h.calls = append(h.calls, method)
}

func (h *MemoryHost) newID(prefix string) string {
	h.nextID++
	return fmt.Sprintf("%s-%d", prefix, h.nextID)
}

func (h *MemoryHost) addItem(path string, d time.Duration) {
	id := ItemID(h.newID("item"))
	h.items[id] = &memItem{
		item:     MediaItem{ID: id, Name: filepath.Base(path), Path: path},
		duration: d,
	}
	h.pool = append(h.pool, id)
}

func (h *MemoryHost) durationFor(path string) time.Duration {
	if d, ok := h.durations[path]; ok {
		return d
	}
	switch filepath.Ext(path) {
	case ".png", ".jpg", ".jpeg", ".tif", ".tiff", ".bmp", ".gif", ".psd":
		return DefaultStillDuration
	}
	return h.defaultDuration
}

func (h *MemoryHost) clipView(c *memClip) Clip {
	it := h.items[c.item]
	out := it.outPoint
	if out == 0 {
		out = it.duration
	}
	return Clip{
		ID:           c.id,
		Item:         c.item,
		OutPoint:     out,
		ScaleToFrame: c.scaleToFrame,
	}
}
