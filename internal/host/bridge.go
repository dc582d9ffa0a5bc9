package host

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// Static errors for bridge client operations.
var (
	// ErrBaseURLRequired is returned when the bridge base URL is not provided.
	ErrBaseURLRequired = errors.New("host: bridge base URL is required")
	// ErrServerError is returned when the bridge returns a 5xx status code.
	ErrServerError = errors.New("host: bridge server error")
	// ErrRequestFailed is returned when the bridge returns any other non-2xx status code.
	ErrRequestFailed = errors.New("host: bridge request failed")
	// ErrCallFailed is returned when the host reports a failure for a call.
	ErrCallFailed = errors.New("host: call failed")
)

// Compile-time check that BridgeClient implements Host.
var _ Host = (*BridgeClient)(nil)

// BridgeClient talks to a scripting bridge that executes host API calls inside
// the editor and returns their results as JSON.
//
// The client never retries: sequence creation and export enqueueing are not
// idempotent, and a repeated call could create duplicates in the project.
type BridgeClient struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

// BridgeOption is a function that configures a BridgeClient.
type BridgeOption func(*BridgeClient)

// WithToken sets the bearer token sent with every call.
func WithToken(token string) BridgeOption {
	return func(c *BridgeClient) {
		c.token = token
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) BridgeOption {
	return func(c *BridgeClient) {
		c.httpClient = hc
	}
}

// WithTimeout bounds every call. Zero leaves calls unbounded.
func WithTimeout(d time.Duration) BridgeOption {
	return func(c *BridgeClient) {
		c.httpClient = &http.Client{Timeout: d}
	}
}

// NewBridgeClient creates a client for the bridge listening at baseURL.
// If no token is given via WithToken, HOST_BRIDGE_TOKEN is read from the environment.
func NewBridgeClient(baseURL string, opts ...BridgeOption) (*BridgeClient, error) {
	if baseURL == "" {
		return nil, ErrBaseURLRequired
	}

	c := &BridgeClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.token == "" {
		c.token = os.Getenv("HOST_BRIDGE_TOKEN")
	}

	return c, nil
}

// CreateSequence asks the host to create an empty sequence named name.
func (c *BridgeClient) CreateSequence(ctx context.Context, name string) error {
	return c.call(ctx, MethodCreateSequence, createSequenceParams{Name: name, Clips: []string{}}, nil)
}

// ActiveSequence returns the host's active sequence, or nil if the host reports none.
func (c *BridgeClient) ActiveSequence(ctx context.Context) (*Sequence, error) {
	var dto *sequenceDTO
	if err := c.call(ctx, MethodActiveSequence, nil, &dto); err != nil {
		return nil, err
	}
	if dto == nil || dto.ID == "" {
		return nil, nil
	}
	return &Sequence{ID: SequenceID(dto.ID), Name: dto.Name}, nil
}

// ImportFiles imports paths into the media pool and returns the host's success flag.
func (c *BridgeClient) ImportFiles(ctx context.Context, paths []string, opts ImportOptions) (bool, error) {
	var ok bool
	params := importFilesParams{
		Paths:       paths,
		AsType:      opts.AsType,
		Destination: string(opts.Destination),
		SuppressUI:  opts.SuppressUI,
	}
	if err := c.call(ctx, MethodImportFiles, params, &ok); err != nil {
		return false, err
	}
	return ok, nil
}

// RootItems lists the root bin's children in host order.
func (c *BridgeClient) RootItems(ctx context.Context) ([]MediaItem, error) {
	var dtos []itemDTO
	if err := c.call(ctx, MethodRootItems, nil, &dtos); err != nil {
		return nil, err
	}
	items := make([]MediaItem, 0, len(dtos))
	for _, d := range dtos {
		items = append(items, MediaItem{ID: ItemID(d.ID), Name: d.Name, Path: d.Path})
	}
	return items, nil
}

// InsertClip places item on the given track at position at.
func (c *BridgeClient) InsertClip(ctx context.Context, seq SequenceID, track TrackRef, item ItemID, at time.Duration) error {
	params := insertClipParams{
		Sequence: string(seq),
		Track:    track,
		Item:     string(item),
		Position: toSeconds(at),
	}
	return c.call(ctx, MethodInsertClip, params, nil)
}

// Clips lists the clips on a track in timeline order.
func (c *BridgeClient) Clips(ctx context.Context, seq SequenceID, track TrackRef) ([]Clip, error) {
	var dtos []clipDTO
	if err := c.call(ctx, MethodClips, trackParams{Sequence: string(seq), Track: track}, &dtos); err != nil {
		return nil, err
	}
	clips := make([]Clip, 0, len(dtos))
	for _, d := range dtos {
		clips = append(clips, Clip{
			ID:           ClipID(d.ID),
			Item:         ItemID(d.Item),
			InPoint:      seconds(d.InPoint),
			OutPoint:     seconds(d.OutPoint),
			ScaleToFrame: d.ScaleToFrame,
		})
	}
	return clips, nil
}

// SetScaleToFrameSize scales a clip to fill the sequence frame.
func (c *BridgeClient) SetScaleToFrameSize(ctx context.Context, seq SequenceID, clip ClipID) error {
	return c.call(ctx, MethodScaleToFrame, clipParams{Sequence: string(seq), Clip: string(clip)}, nil)
}

// MediaDuration returns the item's intrinsic duration. A null, false or
// non-numeric result from the host is reported as zero.
func (c *BridgeClient) MediaDuration(ctx context.Context, item ItemID) (time.Duration, error) {
	var raw any
	if err := c.call(ctx, MethodMediaDuration, itemParams{Item: string(item)}, &raw); err != nil {
		return 0, err
	}
	s, ok := raw.(float64)
	if !ok {
		return 0, nil
	}
	return seconds(s), nil
}

// SetOutPoint sets the item's out-point.
func (c *BridgeClient) SetOutPoint(ctx context.Context, item ItemID, d time.Duration) error {
	return c.call(ctx, MethodSetOutPoint, setOutPointParams{Item: string(item), Seconds: toSeconds(d)}, nil)
}

// PresetCount returns the number of encoder presets.
func (c *BridgeClient) PresetCount(ctx context.Context) (int, error) {
	var n int
	if err := c.call(ctx, MethodPresetCount, nil, &n); err != nil {
		return 0, err
	}
	return n, nil
}

// PresetName returns the display name of the preset at index.
func (c *BridgeClient) PresetName(ctx context.Context, index int) (string, error) {
	var name string
	if err := c.call(ctx, MethodPresetName, presetNameParams{Index: index}, &name); err != nil {
		return "", err
	}
	return name, nil
}

// EncodeSequence enqueues an export job. It returns once the host accepted the job.
func (c *BridgeClient) EncodeSequence(ctx context.Context, job ExportJob) error {
	params := encodeParams{
		Sequence:           string(job.Sequence),
		OutputPath:         job.OutputPath,
		Preset:             job.Preset,
		WorkAreaType:       int(job.WorkArea),
		RemoveOnCompletion: job.RemoveOnCompletion,
	}
	return c.call(ctx, MethodEncodeSequence, params, nil)
}

// Alert raises a modal message in the host.
func (c *BridgeClient) Alert(ctx context.Context, message string) error {
	return c.call(ctx, MethodAlert, alertParams{Message: message}, nil)
}

// call performs one bridge round trip and decodes the result into out when non-nil.
func (c *BridgeClient) call(ctx context.Context, method string, params, out any) error {
	body, err := json.Marshal(callRequest{Method: method, Params: params})
	if err != nil {
		return fmt.Errorf("host: marshal %s: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/call", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("host: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("host: %s: %w", method, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("host: read response: %w", err)
	}

	if resp.StatusCode >= 500 {
		return fmt.Errorf("%w %d: %s", ErrServerError, resp.StatusCode, string(respBody))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w with status %d: %s", ErrRequestFailed, resp.StatusCode, string(respBody))
	}

	var envelope callResponse
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return fmt.Errorf("host: unmarshal response: %w", err)
	}
	if envelope.Error != nil {
		return fmt.Errorf("%w: %s: %s", ErrCallFailed, method, envelope.Error.Message)
	}

	if out != nil && len(envelope.Result) > 0 {
		if err := json.Unmarshal(envelope.Result, out); err != nil {
			return fmt.Errorf("host: decode %s result: %w", method, err)
		}
	}
	return nil
}
