package host

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryHost_CreateSequenceActivates(t *testing.T) {
	h := NewMemoryHost()
	ctx := context.Background()

	seq, err := h.ActiveSequence(ctx)
	require.NoError(t, err)
	assert.Nil(t, seq)

	require.NoError(t, h.CreateSequence(ctx, "Automated Video"))
	seq, err = h.ActiveSequence(ctx)
	require.NoError(t, err)
	require.NotNil(t, seq)
	assert.Equal(t, "Automated Video", seq.Name)
	assert.Equal(t, 1, h.Sequences())
}

func TestMemoryHost_SkipActivate(t *testing.T) {
	h := NewMemoryHost(WithFaults(Faults{SkipActivate: true}))
	ctx := context.Background()

	require.NoError(t, h.CreateSequence(ctx, "x"))
	seq, err := h.ActiveSequence(ctx)
	require.NoError(t, err)
	assert.Nil(t, seq)
}

func TestMemoryHost_ImportPreservesOrder(t *testing.T) {
	h := NewMemoryHost(WithMediaDuration("/in/voice.m4a", 125*time.Second))
	ctx := context.Background()

	ok, err := h.ImportFiles(ctx, []string{"/in/cover.png", "/in/voice.m4a"}, ImportOptions{})
	require.NoError(t, err)
	require.True(t, ok)

	items, err := h.RootItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "cover.png", items[0].Name)
	assert.Equal(t, "voice.m4a", items[1].Name)

	d, err := h.MediaDuration(ctx, items[1].ID)
	require.NoError(t, err)
	assert.Equal(t, 125*time.Second, d)

	d, err = h.MediaDuration(ctx, items[0].ID)
	require.NoError(t, err)
	assert.Equal(t, DefaultStillDuration, d)
}

func TestMemoryHost_RejectImport(t *testing.T) {
	h := NewMemoryHost(WithFaults(Faults{RejectImport: true}))
	ctx := context.Background()

	ok, err := h.ImportFiles(ctx, []string{"/in/a.png"}, ImportOptions{})
	require.NoError(t, err)
	assert.False(t, ok)

	items, _ := h.RootItems(ctx)
	assert.Empty(t, items)
}

func TestMemoryHost_ClipOutPointFollowsItem(t *testing.T) {
	h := NewMemoryHost()
	ctx := context.Background()

	require.NoError(t, h.CreateSequence(ctx, "s"))
	seq, _ := h.ActiveSequence(ctx)
	_, _ = h.ImportFiles(ctx, []string{"/in/cover.png"}, ImportOptions{})
	items, _ := h.RootItems(ctx)

	require.NoError(t, h.InsertClip(ctx, seq.ID, VideoTrack(0), items[0].ID, 0))
	require.NoError(t, h.SetOutPoint(ctx, items[0].ID, 42*time.Second))

	clips, err := h.Clips(ctx, seq.ID, VideoTrack(0))
	require.NoError(t, err)
	require.Len(t, clips, 1)
	assert.Equal(t, 42*time.Second, clips[0].OutPoint)
	assert.False(t, clips[0].ScaleToFrame)

	require.NoError(t, h.SetScaleToFrameSize(ctx, seq.ID, clips[0].ID))
	clips, _ = h.Clips(ctx, seq.ID, VideoTrack(0))
	assert.True(t, clips[0].ScaleToFrame)
}

func TestMemoryHost_DropVideoInsert(t *testing.T) {
	h := NewMemoryHost(WithFaults(Faults{DropVideoInsert: true}))
	ctx := context.Background()

	require.NoError(t, h.CreateSequence(ctx, "s"))
	seq, _ := h.ActiveSequence(ctx)
	_, _ = h.ImportFiles(ctx, []string{"/in/cover.png", "/in/voice.wav"}, ImportOptions{})
	items, _ := h.RootItems(ctx)

	require.NoError(t, h.InsertClip(ctx, seq.ID, VideoTrack(0), items[0].ID, 0))
	require.NoError(t, h.InsertClip(ctx, seq.ID, AudioTrack(0), items[1].ID, 0))

	video, _ := h.Clips(ctx, seq.ID, VideoTrack(0))
	audio, _ := h.Clips(ctx, seq.ID, AudioTrack(0))
	assert.Empty(t, video)
	assert.Len(t, audio, 1)
}

func TestMemoryHost_InsertUnknownHandles(t *testing.T) {
	h := NewMemoryHost()
	ctx := context.Background()

	err := h.InsertClip(ctx, "nope", VideoTrack(0), "item", 0)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryHost_Presets(t *testing.T) {
	h := NewMemoryHost(WithPresets("a", "b"))
	ctx := context.Background()

	n, err := h.PresetCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	name, err := h.PresetName(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "b", name)

	_, err = h.PresetName(ctx, 2)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryHost_EncodeAndAlert(t *testing.T) {
	h := NewMemoryHost()
	ctx := context.Background()

	require.NoError(t, h.CreateSequence(ctx, "s"))
	seq, _ := h.ActiveSequence(ctx)

	job := ExportJob{Sequence: seq.ID, OutputPath: "/out.mp4", Preset: "p"}
	require.NoError(t, h.EncodeSequence(ctx, job))
	assert.Equal(t, []ExportJob{job}, h.Jobs())

	require.NoError(t, h.Alert(ctx, "done"))
	assert.Equal(t, []string{"done"}, h.Alerts())

	assert.Equal(t, 1, h.CallCount(MethodEncodeSequence))
	assert.Equal(t, []string{
		MethodCreateSequence,
		MethodActiveSequence,
		MethodEncodeSequence,
		MethodAlert,
	}, h.Calls())
}

func TestMemoryHost_RejectEncode(t *testing.T) {
	h := NewMemoryHost(WithFaults(Faults{RejectEncode: true}))
	ctx := context.Background()

	require.NoError(t, h.CreateSequence(ctx, "s"))
	seq, _ := h.ActiveSequence(ctx)

	err := h.EncodeSequence(ctx, ExportJob{Sequence: seq.ID})
	assert.ErrorIs(t, err, ErrCallFailed)
	assert.Empty(t, h.Jobs())
}

func TestMemoryHost_PoolItemsComeFirst(t *testing.T) {
	h := NewMemoryHost(WithPoolItems("old.mov"))
	ctx := context.Background()

	_, _ = h.ImportFiles(ctx, []string{"/in/cover.png", "/in/voice.wav"}, ImportOptions{})
	items, _ := h.RootItems(ctx)
	require.Len(t, items, 3)
	assert.Equal(t, "old.mov", items[0].Name)
}
