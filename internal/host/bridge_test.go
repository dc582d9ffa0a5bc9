package host

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bridgeStub answers bridge calls from a method → result table and records requests.
type bridgeStub struct {
	mu      sync.Mutex
	results map[string]any
	errors  map[string]string
	calls   []callRequest
	auth    []string
}

func (s *bridgeStub) handler(t *testing.T) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/call" || r.Method != http.MethodPost {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var req struct {
			Method string          `json:"method"`
			Params json.RawMessage `json:"params"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		s.mu.Lock()
		s.calls = append(s.calls, callRequest{Method: req.Method, Params: req.Params})
		s.auth = append(s.auth, r.Header.Get("Authorization"))
		s.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if msg, ok := s.errors[req.Method]; ok {
			_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]string{"code": "HOST", "message": msg}})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"result": s.results[req.Method]})
	}
}

func newStubClient(t *testing.T, stub *bridgeStub, opts ...BridgeOption) *BridgeClient {
	t.Helper()
	srv := httptest.NewServer(stub.handler(t))
	t.Cleanup(srv.Close)

	c, err := NewBridgeClient(srv.URL, opts...)
	require.NoError(t, err)
	return c
}

func (s *bridgeStub) call(i int) callRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[i]
}

func paramsOf(t *testing.T, call callRequest, v any) {
	t.Helper()
	raw, ok := call.Params.(json.RawMessage)
	require.True(t, ok)
	require.NoError(t, json.Unmarshal(raw, v))
}

func TestNewBridgeClient_MissingBaseURL(t *testing.T) {
	_, err := NewBridgeClient("")
	assert.ErrorIs(t, err, ErrBaseURLRequired)
}

func TestNewBridgeClient_TokenFromEnv(t *testing.T) {
	t.Setenv("HOST_BRIDGE_TOKEN", "env-token")

	c, err := NewBridgeClient("http://127.0.0.1:17420/")
	require.NoError(t, err)
	assert.Equal(t, "env-token", c.token)
	assert.Equal(t, "http://127.0.0.1:17420", c.baseURL)

	c, err = NewBridgeClient("http://127.0.0.1:17420", WithToken("explicit"))
	require.NoError(t, err)
	assert.Equal(t, "explicit", c.token)
}

func TestBridgeClient_SendsBearerToken(t *testing.T) {
	stub := &bridgeStub{}
	c := newStubClient(t, stub, WithToken("secret"))

	require.NoError(t, c.Alert(context.Background(), "hello"))

	stub.mu.Lock()
	auth := stub.auth
	stub.mu.Unlock()
	require.Len(t, auth, 1)
	assert.Equal(t, "Bearer secret", auth[0])

	var p alertParams
	paramsOf(t, stub.call(0), &p)
	assert.Equal(t, "hello", p.Message)
}

func TestBridgeClient_CreateAndActiveSequence(t *testing.T) {
	stub := &bridgeStub{results: map[string]any{
		MethodActiveSequence: map[string]string{"id": "seq-1", "name": "Automated Video"},
	}}
	c := newStubClient(t, stub)
	ctx := context.Background()

	require.NoError(t, c.CreateSequence(ctx, "Automated Video"))
	seq, err := c.ActiveSequence(ctx)
	require.NoError(t, err)
	require.NotNil(t, seq)
	assert.Equal(t, SequenceID("seq-1"), seq.ID)

	var p createSequenceParams
	paramsOf(t, stub.call(0), &p)
	assert.Equal(t, "Automated Video", p.Name)
	assert.NotNil(t, p.Clips)
	assert.Empty(t, p.Clips)
}

func TestBridgeClient_ActiveSequenceNull(t *testing.T) {
	stub := &bridgeStub{results: map[string]any{MethodActiveSequence: nil}}
	c := newStubClient(t, stub)

	seq, err := c.ActiveSequence(context.Background())
	require.NoError(t, err)
	assert.Nil(t, seq)
}

func TestBridgeClient_ImportAndRootItems(t *testing.T) {
	stub := &bridgeStub{results: map[string]any{
		MethodImportFiles: true,
		MethodRootItems: []map[string]string{
			{"id": "i1", "name": "cover.png"},
			{"id": "i2", "name": "voice.m4a"},
		},
	}}
	c := newStubClient(t, stub)
	ctx := context.Background()

	ok, err := c.ImportFiles(ctx, []string{"/a/cover.png", "/a/voice.m4a"}, ImportOptions{AsType: 1, SuppressUI: true})
	require.NoError(t, err)
	assert.True(t, ok)

	var p importFilesParams
	paramsOf(t, stub.call(0), &p)
	assert.Equal(t, []string{"/a/cover.png", "/a/voice.m4a"}, p.Paths)
	assert.Equal(t, 1, p.AsType)
	assert.True(t, p.SuppressUI)

	items, err := c.RootItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, ItemID("i1"), items[0].ID)
	assert.Equal(t, ItemID("i2"), items[1].ID)
}

func TestBridgeClient_MediaDuration(t *testing.T) {
	tests := []struct {
		name   string
		result any
		want   time.Duration
	}{
		{"seconds", 125.0, 125 * time.Second},
		{"fractional", 1.5, 1500 * time.Millisecond},
		{"null", nil, 0},
		{"false", false, 0},
		{"empty string", "", 0},
		{"zero", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &bridgeStub{results: map[string]any{MethodMediaDuration: tt.result}}
			c := newStubClient(t, stub)

			got, err := c.MediaDuration(context.Background(), "i2")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBridgeClient_ClipsAndScale(t *testing.T) {
	stub := &bridgeStub{results: map[string]any{
		MethodClips: []map[string]any{
			{"id": "c1", "item": "i1", "inPoint": 0, "outPoint": 125.0},
		},
	}}
	c := newStubClient(t, stub)
	ctx := context.Background()

	require.NoError(t, c.InsertClip(ctx, "seq-1", VideoTrack(0), "i1", 0))
	clips, err := c.Clips(ctx, "seq-1", VideoTrack(0))
	require.NoError(t, err)
	require.Len(t, clips, 1)
	assert.Equal(t, 125*time.Second, clips[0].OutPoint)

	require.NoError(t, c.SetScaleToFrameSize(ctx, "seq-1", clips[0].ID))

	var ins insertClipParams
	paramsOf(t, stub.call(0), &ins)
	assert.Equal(t, TrackRef{Kind: TrackVideo, Index: 0}, ins.Track)
	assert.Equal(t, "i1", ins.Item)
	assert.Zero(t, ins.Position)

	var sc clipParams
	paramsOf(t, stub.call(2), &sc)
	assert.Equal(t, "c1", sc.Clip)
}

func TestBridgeClient_PresetsAndEncode(t *testing.T) {
	stub := &bridgeStub{results: map[string]any{
		MethodPresetCount: 2,
		MethodPresetName:  "YT-1080p",
	}}
	c := newStubClient(t, stub)
	ctx := context.Background()

	n, err := c.PresetCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	name, err := c.PresetName(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "YT-1080p", name)

	err = c.EncodeSequence(ctx, ExportJob{
		Sequence:           "seq-1",
		OutputPath:         "/out/video.mp4",
		Preset:             "YT-1080p",
		WorkArea:           WorkAreaInToOut,
		RemoveOnCompletion: true,
	})
	require.NoError(t, err)

	var p encodeParams
	paramsOf(t, stub.call(2), &p)
	assert.Equal(t, "seq-1", p.Sequence)
	assert.Equal(t, "/out/video.mp4", p.OutputPath)
	assert.Equal(t, "YT-1080p", p.Preset)
	assert.Equal(t, 1, p.WorkAreaType)
	assert.True(t, p.RemoveOnCompletion)
}

func TestBridgeClient_HostError(t *testing.T) {
	stub := &bridgeStub{errors: map[string]string{MethodEncodeSequence: "preset file missing"}}
	c := newStubClient(t, stub)

	err := c.EncodeSequence(context.Background(), ExportJob{Sequence: "seq-1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCallFailed)
	assert.Contains(t, err.Error(), "preset file missing")
}

func TestBridgeClient_StatusErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"server error", http.StatusBadGateway, ErrServerError},
		{"unauthorized", http.StatusUnauthorized, ErrRequestFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hits atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			c, err := NewBridgeClient(srv.URL)
			require.NoError(t, err)

			err = c.CreateSequence(context.Background(), "x")
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.Equal(t, int32(1), hits.Load(), "calls must not be retried")
		})
	}
}

func TestBridgeClient_ContextCancelled(t *testing.T) {
	stub := &bridgeStub{}
	c := newStubClient(t, stub)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.CreateSequence(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSeconds(t *testing.T) {
	assert.Equal(t, 125*time.Second, seconds(125))
	assert.Equal(t, time.Duration(0), seconds(-1))
	assert.Equal(t, 2.5, toSeconds(2500*time.Millisecond))
}
