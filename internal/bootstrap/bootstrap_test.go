package bootstrap

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maauso/stillcut/internal/assembly"
	"github.com/maauso/stillcut/internal/config"
	"github.com/maauso/stillcut/internal/host"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewDependencies_Memory(t *testing.T) {
	cfg := &config.Config{
		HostMode:               config.HostModeMemory,
		MemoryPresets:          []string{"YT-1080p"},
		MemoryMediaDurationSec: 42,
		TempDir:                t.TempDir(),
	}

	deps, err := NewDependencies(cfg, quietLogger())
	require.NoError(t, err)

	mem, ok := deps.Host.(*host.MemoryHost)
	require.True(t, ok, "expected memory host, got %T", deps.Host)

	run, err := deps.Service.Assemble(context.Background(), cfg.Params())
	require.NoError(t, err)
	assert.Equal(t, assembly.StatusAborted, run.Status, "params are empty")

	cfg.ImagePath = "/in/cover.png"
	cfg.AudioPath = "/in/voice.m4a"
	cfg.SequenceName = "Automated Video"
	cfg.ExportPreset = "YT-1080p"
	cfg.OutputPath = "/out/output.mp4"

	run, err = deps.Service.Assemble(context.Background(), cfg.Params())
	require.NoError(t, err)
	assert.Equal(t, assembly.StatusQueued, run.Status)
	assert.Equal(t, 42*time.Second, run.Duration)
	assert.Equal(t, []string{
		"Invalid assembly parameters: missing ImagePath, AudioPath, SequenceName, PresetName, OutputPath",
		"Export started: /out/output.mp4",
	}, mem.Alerts())
}

func TestNewDependencies_Bridge(t *testing.T) {
	cfg := &config.Config{
		HostMode:       config.HostModeBridge,
		HostBridgeURL:  "http://127.0.0.1:17420",
		HostTimeoutSec: 5,
		TempDir:        t.TempDir(),
	}

	deps, err := NewDependencies(cfg, quietLogger())
	require.NoError(t, err)
	assert.IsType(t, &host.BridgeClient{}, deps.Host)
}

func TestNewDependencies_BridgeWithoutURL(t *testing.T) {
	cfg := &config.Config{HostMode: config.HostModeBridge, TempDir: t.TempDir()}

	_, err := NewDependencies(cfg, quietLogger())
	assert.ErrorIs(t, err, host.ErrBaseURLRequired)
}

func TestNewDependencies_S3(t *testing.T) {
	cfg := &config.Config{
		HostMode:           config.HostModeMemory,
		TempDir:            t.TempDir(),
		S3Region:           "us-east-1",
		S3Endpoint:         "http://127.0.0.1:9000",
		AWSAccessKeyID:     "key",
		AWSSecretAccessKey: "secret",
	}

	deps, err := NewDependencies(cfg, quietLogger())
	require.NoError(t, err)
	assert.NotNil(t, deps.Pipeline)
}
