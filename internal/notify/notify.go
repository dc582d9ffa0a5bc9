// Package notify reports assembly outcomes to the operator.
package notify

import (
	"context"
	"errors"
	"log/slog"

	"github.com/maauso/stillcut/internal/host"
	"github.com/maauso/stillcut/internal/pipeline"
)

// Notifier delivers the outcome of one run.
type Notifier interface {
	Notify(ctx context.Context, res pipeline.Result) error
}

// Message renders res as the text shown to the operator.
func Message(res pipeline.Result) string {
	if res.OK() {
		out := ""
		if res.Job != nil {
			out = res.Job.OutputPath
		}
		return "Export started: " + out
	}
	f := res.Failure
	if f == nil {
		return "Assembly did not complete."
	}
	switch f.Kind {
	case pipeline.KindMissingActiveSequence:
		return "Failed to create or access the sequence."
	case pipeline.KindImportFailure:
		return "Failed to import media files. Please check the file paths."
	case pipeline.KindDurationUnavailable:
		return "Failed to retrieve the audio duration."
	case pipeline.KindClipResolutionFailure:
		return "Failed to access the video clip."
	case pipeline.KindPresetNotFound:
		return "Export preset not found: " + f.Detail
	case pipeline.KindExportRejected:
		return "Failed to queue export: " + errorDetail(f)
	case pipeline.KindInvalidParams:
		return "Invalid assembly parameters: " + f.Detail
	default:
		return f.Error()
	}
}

func errorDetail(f *pipeline.Failure) string {
	if f.Err != nil {
		return f.Err.Error()
	}
	return f.Detail
}

// HostNotifier raises a modal alert inside the host application.
type HostNotifier struct {
	alerter host.Alerter
}

// NewHostNotifier creates a HostNotifier.
func NewHostNotifier(a host.Alerter) *HostNotifier {
	return &HostNotifier{alerter: a}
}

// Notify implements Notifier.
func (n *HostNotifier) Notify(ctx context.Context, res pipeline.Result) error {
	return n.alerter.Alert(ctx, Message(res))
}

// LogNotifier writes the outcome as a structured log line.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a LogNotifier. A nil logger uses slog.Default().
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

// Notify implements Notifier.
func (n *LogNotifier) Notify(ctx context.Context, res pipeline.Result) error {
	attrs := []any{
		slog.String("state", string(res.State)),
		slog.String("reached", string(res.Reached())),
	}
	if res.OK() {
		n.logger.InfoContext(ctx, Message(res), attrs...)
		return nil
	}
	if res.Failure != nil {
		attrs = append(attrs, slog.String("kind", string(res.Failure.Kind)))
	}
	n.logger.ErrorContext(ctx, Message(res), attrs...)
	return nil
}

// Multi fans out to every notifier and joins their errors.
type Multi []Notifier

// Notify implements Notifier. Every notifier is called even if one fails.
func (m Multi) Notify(ctx context.Context, res pipeline.Result) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, res); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
