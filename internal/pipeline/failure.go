package pipeline

import (
	"errors"
	"fmt"
)

// Kind classifies why an assembly aborted.
type Kind string

const (
	// KindInvalidParams means the run parameters failed validation before any host call.
	KindInvalidParams Kind = "INVALID_PARAMS"
	// KindMissingActiveSequence means no active sequence was retrievable after creation.
	KindMissingActiveSequence Kind = "MISSING_ACTIVE_SEQUENCE"
	// KindImportFailure means the import failed or produced fewer than two items.
	KindImportFailure Kind = "IMPORT_FAILURE"
	// KindDurationUnavailable means the audio duration could not be read or applied.
	KindDurationUnavailable Kind = "DURATION_UNAVAILABLE"
	// KindClipResolutionFailure means the placed video clip could not be referenced.
	KindClipResolutionFailure Kind = "CLIP_RESOLUTION_FAILURE"
	// KindPresetNotFound means the requested preset is not in the registry.
	KindPresetNotFound Kind = "PRESET_NOT_FOUND"
	// KindExportRejected means the encoder refused to queue the export job.
	KindExportRejected Kind = "EXPORT_REJECTED"
)

// Sentinel errors matched by Failure through errors.Is.
var (
	ErrInvalidParams         = errors.New("pipeline: invalid parameters")
	ErrMissingActiveSequence = errors.New("pipeline: no active sequence after creation")
	ErrImportFailure         = errors.New("pipeline: media import failed")
	ErrDurationUnavailable   = errors.New("pipeline: audio duration unavailable")
	ErrClipResolution        = errors.New("pipeline: video clip could not be resolved")
	ErrPresetNotFound        = errors.New("pipeline: export preset not found")
	ErrExportRejected        = errors.New("pipeline: export job rejected")
)

var sentinels = map[Kind]error{
	KindInvalidParams:         ErrInvalidParams,
	KindMissingActiveSequence: ErrMissingActiveSequence,
	KindImportFailure:         ErrImportFailure,
	KindDurationUnavailable:   ErrDurationUnavailable,
	KindClipResolutionFailure: ErrClipResolution,
	KindPresetNotFound:        ErrPresetNotFound,
	KindExportRejected:        ErrExportRejected,
}

// Failure is the tagged reason an assembly aborted.
type Failure struct {
	// Kind is the failure class.
	Kind Kind
	// Stage is the gate that did not open.
	Stage State
	// Detail names the failed precondition, e.g. the missing preset name.
	Detail string
	// Err is the underlying host or staging error, if any.
	Err error
}

func newFailure(kind Kind, detail string, err error) *Failure {
	return &Failure{Kind: kind, Detail: detail, Err: err}
}

// Error implements error.
func (f *Failure) Error() string {
	msg := fmt.Sprintf("%s (at %s)", sentinels[f.Kind], f.Stage)
	if f.Detail != "" {
		msg += ": " + f.Detail
	}
	if f.Err != nil {
		msg += ": " + f.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error.
func (f *Failure) Unwrap() error {
	return f.Err
}

// Is matches the sentinel error of the failure's kind.
func (f *Failure) Is(target error) bool {
	s, ok := sentinels[f.Kind]
	return ok && target == s
}

// Kinds returns every failure kind.
func Kinds() []Kind {
	return []Kind{
		KindInvalidParams,
		KindMissingActiveSequence,
		KindImportFailure,
		KindDurationUnavailable,
		KindClipResolutionFailure,
		KindPresetNotFound,
		KindExportRejected,
	}
}
