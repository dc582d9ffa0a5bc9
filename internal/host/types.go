package host

import (
	"encoding/json"
	"math"
	"time"
)

// Bridge method names understood by the scripting bridge.
const (
	MethodCreateSequence = "project.createSequence"
	MethodActiveSequence = "project.activeSequence"
	MethodImportFiles    = "project.importFiles"
	MethodRootItems      = "project.rootItems"
	MethodInsertClip     = "sequence.insertClip"
	MethodClips          = "sequence.clips"
	MethodScaleToFrame   = "clip.setScaleToFrameSize"
	MethodMediaDuration  = "item.mediaDuration"
	MethodSetOutPoint    = "item.setOutPoint"
	MethodPresetCount    = "encoder.presetCount"
	MethodPresetName     = "encoder.presetName"
	MethodEncodeSequence = "encoder.encodeSequence"
	MethodAlert          = "app.alert"
)

// callRequest is the body posted to the bridge's /v1/call endpoint.
type callRequest struct {
	Method string `json:"method"`
	Params any    `json:"params,omitempty"`
}

// callResponse is the envelope returned by the bridge.
type callResponse struct {
	Result json.RawMessage `json:"result,omitempty"`
	Error  *callError      `json:"error,omitempty"`
}

// callError is a host-side failure reported inside a 2xx response.
type callError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type createSequenceParams struct {
	Name  string   `json:"name"`
	Clips []string `json:"clips"`
}

type importFilesParams struct {
	Paths       []string `json:"paths"`
	AsType      int      `json:"importAsType"`
	Destination string   `json:"destination,omitempty"`
	SuppressUI  bool     `json:"suppressUI"`
}

type insertClipParams struct {
	Sequence string   `json:"sequence"`
	Track    TrackRef `json:"track"`
	Item     string   `json:"item"`
	Position float64  `json:"position"`
}

type trackParams struct {
	Sequence string   `json:"sequence"`
	Track    TrackRef `json:"track"`
}

type clipParams struct {
	Sequence string `json:"sequence"`
	Clip     string `json:"clip"`
}

type itemParams struct {
	Item string `json:"item"`
}

type setOutPointParams struct {
	Item    string  `json:"item"`
	Seconds float64 `json:"seconds"`
}

type presetNameParams struct {
	Index int `json:"index"`
}

type encodeParams struct {
	Sequence           string `json:"sequence"`
	OutputPath         string `json:"outputPath"`
	Preset             string `json:"preset"`
	WorkAreaType       int    `json:"workAreaType"`
	RemoveOnCompletion bool   `json:"removeOnCompletion"`
}

type alertParams struct {
	Message string `json:"message"`
}

type sequenceDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type itemDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Path string `json:"path,omitempty"`
}

type clipDTO struct {
	ID           string  `json:"id"`
	Item         string  `json:"item"`
	InPoint      float64 `json:"inPoint"`
	OutPoint     float64 `json:"outPoint"`
	ScaleToFrame bool    `json:"scaleToFrame"`
}

// seconds converts a wire value in seconds to a time.Duration.
func seconds(s float64) time.Duration {
	if s <= 0 || math.IsNaN(s) || math.IsInf(s, 0) {
		return 0
	}
	return time.Duration(math.Round(s * float64(time.Second)))
}

// toSeconds converts a duration to the wire representation.
func toSeconds(d time.Duration) float64 {
	return d.Seconds()
}
