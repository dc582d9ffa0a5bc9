package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maauso/stillcut/internal/assembly"
	"github.com/maauso/stillcut/internal/config"
	"github.com/maauso/stillcut/internal/preset"
)

// memoryConfig returns a loader for a dry-run configuration.
func memoryConfig(t *testing.T, mutate func(*config.Config)) func() (*config.Config, error) {
	t.Helper()
	return func() (*config.Config, error) {
		cfg := &config.Config{
			ImagePath:              "/in/cover.png",
			AudioPath:              "/in/voice.m4a",
			SequenceName:           "Automated Video",
			ExportPreset:           "My YouTube video preset",
			OutputPath:             "/out/output.mp4",
			HostMode:               config.HostModeMemory,
			MemoryPresets:          []string{"H.264", "My YouTube video preset"},
			MemoryMediaDurationSec: 60,
			TempDir:                t.TempDir(),
			LogLevel:               "error",
		}
		if mutate != nil {
			mutate(cfg)
		}
		return cfg, nil
	}
}

func execute(t *testing.T, load func() (*config.Config, error), args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand(load)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRunCommand_Queued(t *testing.T) {
	out, err := execute(t, memoryConfig(t, nil), "run")
	require.NoError(t, err)
	assert.Equal(t, "Export started: /out/output.mp4\n", out)
}

func TestRunCommand_AbortedReturnsError(t *testing.T) {
	load := memoryConfig(t, func(c *config.Config) { c.ExportPreset = "4K Master" })

	out, err := execute(t, load, "run")
	assert.ErrorIs(t, err, ErrAborted)
	assert.Contains(t, err.Error(), "SCALED")
	assert.Equal(t, "Export preset not found: 4K Master\n", out)
}

func TestRunCommand_JSON(t *testing.T) {
	out, err := execute(t, memoryConfig(t, nil), "run", "--json")
	require.NoError(t, err)

	var run struct {
		ID     string          `json:"id"`
		Status assembly.Status `json:"status"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &run))
	assert.True(t, strings.HasPrefix(run.ID, "run-"))
	assert.Equal(t, assembly.StatusQueued, run.Status)
}

func TestPresetsCommand(t *testing.T) {
	out, err := execute(t, memoryConfig(t, nil), "presets")
	require.NoError(t, err)
	assert.Equal(t, "  0  H.264\n  1  My YouTube video preset\n", out)

	out, err = execute(t, memoryConfig(t, nil), "presets", "--json")
	require.NoError(t, err)
	var list []preset.Descriptor
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	assert.Len(t, list, 2)

	out, err = execute(t, memoryConfig(t, func(c *config.Config) { c.MemoryPresets = nil }), "presets")
	require.NoError(t, err)
	assert.Equal(t, "No export presets found.\n", out)
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	srv := &http.Server{Addr: addr, Handler: mux}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, srv, discardLogger()) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
