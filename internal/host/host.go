// Package host defines the ports through which stillcut drives an external
// video-editing application, plus two adapters: an HTTP client for a scripting
// bridge running inside the editor, and an in-memory host for dry runs and tests.
//
// All entities behind these ports (project, sequences, media pool, encoder) are
// owned by the host. Callers only hold transient handles for one run.
package host

import (
	"context"
	"time"
)

// SequenceID identifies a sequence inside the host project.
type SequenceID string

// ItemID identifies an item in the project's media pool.
type ItemID string

// ClipID identifies a clip placed on a track.
type ClipID string

// TrackKind distinguishes video tracks from audio tracks.
type TrackKind string

const (
	// TrackVideo selects the sequence's video tracks.
	TrackVideo TrackKind = "video"
	// TrackAudio selects the sequence's audio tracks.
	TrackAudio TrackKind = "audio"
)

// TrackRef addresses one track of a sequence by kind and index.
type TrackRef struct {
	Kind  TrackKind `json:"kind"`
	Index int       `json:"index"`
}

// VideoTrack returns a reference to the video track at index i.
func VideoTrack(i int) TrackRef { return TrackRef{Kind: TrackVideo, Index: i} }

// AudioTrack returns a reference to the audio track at index i.
func AudioTrack(i int) TrackRef { return TrackRef{Kind: TrackAudio, Index: i} }

// Sequence is a handle to a timeline container.
type Sequence struct {
	ID   SequenceID
	Name string
}

// MediaItem is a handle to an imported asset in the media pool.
type MediaItem struct {
	ID   ItemID
	Name string
	Path string
}

// Clip is a placed instance of a media item on a track.
type Clip struct {
	ID           ClipID
	Item         ItemID
	InPoint      time.Duration
	OutPoint     time.Duration
	ScaleToFrame bool
}

// ImportOptions mirrors the host's importFiles arguments.
type ImportOptions struct {
	// AsType is the host's import type selector (1 imports stills as single items).
	AsType int
	// Destination is the target bin. Empty means the project root.
	Destination ItemID
	// SuppressUI hides host warning dialogs during import.
	SuppressUI bool
}

// WorkArea selects which part of a sequence the encoder renders.
type WorkArea int

const (
	// WorkAreaEntireSequence renders the whole sequence.
	WorkAreaEntireSequence WorkArea = 0
	// WorkAreaInToOut renders between the sequence in and out points.
	WorkAreaInToOut WorkArea = 1
)

// ExportJob is a one-way command handed to the host's encoder queue.
// The host either accepts it or reports a failure; completion is never observed.
type ExportJob struct {
	Sequence           SequenceID
	OutputPath         string
	Preset             string
	WorkArea           WorkArea
	RemoveOnCompletion bool
}

// Project exposes the currently open project.
type Project interface {
	// CreateSequence registers a new empty sequence. The host makes it active.
	CreateSequence(ctx context.Context, name string) error

	// ActiveSequence returns the host's active sequence, or nil when none is set.
	ActiveSequence(ctx context.Context) (*Sequence, error)

	// ImportFiles imports paths into the media pool. The boolean is the host's
	// own success signal.
	ImportFiles(ctx context.Context, paths []string, opts ImportOptions) (bool, error)

	// RootItems lists the children of the project's root bin in host order.
	RootItems(ctx context.Context) ([]MediaItem, error)
}

// Timeline places and transforms clips on a sequence's tracks.
type Timeline interface {
	InsertClip(ctx context.Context, seq SequenceID, track TrackRef, item ItemID, at time.Duration) error
	Clips(ctx context.Context, seq SequenceID, track TrackRef) ([]Clip, error)
	SetScaleToFrameSize(ctx context.Context, seq SequenceID, clip ClipID) error
}

// Media reads and edits media pool items.
type Media interface {
	// MediaDuration returns the intrinsic duration of an item. Zero means the
	// host could not report one.
	MediaDuration(ctx context.Context, item ItemID) (time.Duration, error)
	SetOutPoint(ctx context.Context, item ItemID, d time.Duration) error
}

// Encoder exposes the host's preset registry and export queue.
type Encoder interface {
	PresetCount(ctx context.Context) (int, error)
	PresetName(ctx context.Context, index int) (string, error)
	EncodeSequence(ctx context.Context, job ExportJob) error
}

// Alerter raises a modal message inside the host application.
type Alerter interface {
	Alert(ctx context.Context, message string) error
}

// Host aggregates every port stillcut consumes.
type Host interface {
	Project
	Timeline
	Media
	Encoder
	Alerter
}
