package pipeline

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/maauso/stillcut/internal/host"
)

// mockHost implements host.Host for testing.
type mockHost struct {
	mock.Mock
}

func (m *mockHost) CreateSequence(ctx context.Context, name string) error {
	return m.Called(ctx, name).Error(0)
}

func (m *mockHost) ActiveSequence(ctx context.Context) (*host.Sequence, error) {
	args := m.Called(ctx)
	seq, _ := args.Get(0).(*host.Sequence)
	return seq, args.Error(1)
}

func (m *mockHost) ImportFiles(ctx context.Context, paths []string, opts host.ImportOptions) (bool, error) {
	args := m.Called(ctx, paths, opts)
	return args.Bool(0), args.Error(1)
}

func (m *mockHost) RootItems(ctx context.Context) ([]host.MediaItem, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]host.MediaItem)
	return items, args.Error(1)
}

func (m *mockHost) InsertClip(ctx context.Context, seq host.SequenceID, track host.TrackRef, item host.ItemID, at time.Duration) error {
	return m.Called(ctx, seq, track, item, at).Error(0)
}

func (m *mockHost) Clips(ctx context.Context, seq host.SequenceID, track host.TrackRef) ([]host.Clip, error) {
	args := m.Called(ctx, seq, track)
	clips, _ := args.Get(0).([]host.Clip)
	return clips, args.Error(1)
}

func (m *mockHost) SetScaleToFrameSize(ctx context.Context, seq host.SequenceID, clip host.ClipID) error {
	return m.Called(ctx, seq, clip).Error(0)
}

func (m *mockHost) MediaDuration(ctx context.Context, item host.ItemID) (time.Duration, error) {
	args := m.Called(ctx, item)
	d, _ := args.Get(0).(time.Duration)
	return d, args.Error(1)
}

func (m *mockHost) SetOutPoint(ctx context.Context, item host.ItemID, d time.Duration) error {
	return m.Called(ctx, item, d).Error(0)
}

func (m *mockHost) PresetCount(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *mockHost) PresetName(ctx context.Context, index int) (string, error) {
	args := m.Called(ctx, index)
	return args.String(0), args.Error(1)
}

func (m *mockHost) EncodeSequence(ctx context.Context, job host.ExportJob) error {
	return m.Called(ctx, job).Error(0)
}

func (m *mockHost) Alert(ctx context.Context, message string) error {
	return m.Called(ctx, message).Error(0)
}

// mockStager implements storage.Stager for testing.
type mockStager struct {
	mock.Mock
}

func (m *mockStager) Stage(ctx context.Context, ref string) (string, error) {
	args := m.Called(ctx, ref)
	return args.String(0), args.Error(1)
}

func (m *mockStager) Release(ctx context.Context, paths []string) error {
	return m.Called(ctx, paths).Error(0)
}
