package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/maauso/stillcut/internal/host"
	"github.com/maauso/stillcut/internal/preset"
)

// mediaItems is the number of root items the import must yield. The first
// is taken as the image and the second as the audio.
const mediaItems = 2

// createSequence creates the sequence and confirms the host made it active.
func (p *Pipeline) createSequence(ctx context.Context, a *assembly) *Failure {
	if err := p.host.CreateSequence(ctx, a.params.SequenceName); err != nil {
		return newFailure(KindMissingActiveSequence, "create sequence", err)
	}
	seq, err := p.host.ActiveSequence(ctx)
	if err != nil {
		return newFailure(KindMissingActiveSequence, "read active sequence", err)
	}
	if seq == nil {
		return newFailure(KindMissingActiveSequence, "no active sequence", nil)
	}
	a.sequence = seq
	return nil
}

// importMedia stages both references and imports them into the root bin.
func (p *Pipeline) importMedia(ctx context.Context, a *assembly) *Failure {
	paths := make([]string, 0, mediaItems)
	for _, ref := range []string{a.params.ImagePath, a.params.AudioPath} {
		path, err := p.stageRef(ctx, ref)
		if err != nil {
			p.release(ctx, a)
			return newFailure(KindImportFailure, "stage "+ref, err)
		}
		if path != ref {
			a.staged = append(a.staged, path)
		}
		paths = append(paths, path)
	}

	ok, err := p.host.ImportFiles(ctx, paths, p.importOpts)
	if err != nil {
		p.release(ctx, a)
		return newFailure(KindImportFailure, "import files", err)
	}
	if !ok {
		p.release(ctx, a)
		return newFailure(KindImportFailure, "host rejected import", nil)
	}

	items, err := p.host.RootItems(ctx)
	if err != nil {
		return newFailure(KindImportFailure, "list root items", err)
	}
	if len(items) < mediaItems {
		return newFailure(KindImportFailure,
			fmt.Sprintf("expected %d root items, found %d", mediaItems, len(items)), nil)
	}
	a.image, a.audio = items[0], items[1]
	return nil
}

func (p *Pipeline) stageRef(ctx context.Context, ref string) (string, error) {
	if p.stager == nil {
		return ref, nil
	}
	return p.stager.Stage(ctx, ref)
}

func (p *Pipeline) release(ctx context.Context, a *assembly) {
	if p.stager == nil || len(a.staged) == 0 {
		return
	}
	if err := p.stager.Release(ctx, a.staged); err != nil {
		p.logger.Warn("failed to release staged media", slog.String("error", err.Error()))
	}
	a.staged = nil
}

// placeClips inserts the image on video track 0 and the audio on audio
// track 0, both at the sequence start.
func (p *Pipeline) placeClips(ctx context.Context, a *assembly) *Failure {
	if err := p.host.InsertClip(ctx, a.sequence.ID, host.VideoTrack(0), a.image.ID, 0); err != nil {
		return newFailure(KindClipResolutionFailure, "insert image on video track 0", err)
	}
	if err := p.host.InsertClip(ctx, a.sequence.ID, host.AudioTrack(0), a.audio.ID, 0); err != nil {
		return newFailure(KindClipResolutionFailure, "insert audio on audio track 0", err)
	}
	return nil
}

// matchDuration sets the image out-point to the audio's intrinsic duration.
func (p *Pipeline) matchDuration(ctx context.Context, a *assembly) *Failure {
	d, err := p.host.MediaDuration(ctx, a.audio.ID)
	if err != nil {
		return newFailure(KindDurationUnavailable, "read duration of "+a.audio.Name, err)
	}
	if d <= 0 {
		return newFailure(KindDurationUnavailable, "no duration for "+a.audio.Name, nil)
	}
	if err := p.host.SetOutPoint(ctx, a.image.ID, d); err != nil {
		return newFailure(KindDurationUnavailable, "set out-point of "+a.image.Name, err)
	}
	a.duration = d
	return nil
}

// fitToFrame scales the first clip on video track 0 to the frame size.
func (p *Pipeline) fitToFrame(ctx context.Context, a *assembly) *Failure {
	clips, err := p.host.Clips(ctx, a.sequence.ID, host.VideoTrack(0))
	if err != nil {
		return newFailure(KindClipResolutionFailure, "list video track 0", err)
	}
	if len(clips) == 0 {
		return newFailure(KindClipResolutionFailure, "no clip on video track 0", nil)
	}
	if err := p.host.SetScaleToFrameSize(ctx, a.sequence.ID, clips[0].ID); err != nil {
		return newFailure(KindClipResolutionFailure, "scale clip "+string(clips[0].ID), err)
	}
	return nil
}

func (p *Pipeline) resolvePreset(ctx context.Context, a *assembly) *Failure {
	d, err := preset.Resolve(ctx, p.host, a.params.PresetName)
	if err != nil {
		return newFailure(KindPresetNotFound, a.params.PresetName, err)
	}
	a.preset = d
	return nil
}

func (p *Pipeline) queueExport(ctx context.Context, a *assembly) *Failure {
	job := host.ExportJob{
		Sequence:           a.sequence.ID,
		OutputPath:         a.params.OutputPath,
		Preset:             a.preset.Name,
		WorkArea:           p.workArea,
		RemoveOnCompletion: p.removeDone,
	}
	if err := p.host.EncodeSequence(ctx, job); err != nil {
		return newFailure(KindExportRejected, "encode "+a.params.OutputPath, err)
	}
	a.job = &job
	return nil
}
