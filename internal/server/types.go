// Package server provides the HTTP surface for assembly runs.
// Request and response DTOs are kept separate from the domain types.
package server

import "time"

// CreateAssemblyRequest is the HTTP request body for starting an assembly.
// Empty optional fields fall back to the configured defaults.
type CreateAssemblyRequest struct {
	// ImagePath is the still image: a path on the host machine or an s3:// URI.
	ImagePath string `json:"image_path" validate:"required"`
	// AudioPath is the soundtrack: a path on the host machine or an s3:// URI.
	AudioPath string `json:"audio_path" validate:"required"`
	// SequenceName names the sequence created in the host project.
	SequenceName string `json:"sequence_name,omitempty" validate:"omitempty,max=255"`
	// PresetName is the exact name of the export preset.
	PresetName string `json:"preset_name,omitempty" validate:"omitempty,max=255"`
	// OutputPath is the export target on the host machine.
	OutputPath string `json:"output_path,omitempty"`
}

// RunResponse is the HTTP response describing one assembly run.
type RunResponse struct {
	ID           string    `json:"id"`
	Status       string    `json:"status"`
	Trace        []string  `json:"trace"`
	Reached      string    `json:"reached,omitempty"`
	Message      string    `json:"message,omitempty"`
	Kind         string    `json:"kind,omitempty"`
	Error        string    `json:"error,omitempty"`
	SequenceID   string    `json:"sequence_id,omitempty"`
	DurationSec  float64   `json:"duration_sec,omitempty"`
	ImagePath    string    `json:"image_path"`
	AudioPath    string    `json:"audio_path"`
	SequenceName string    `json:"sequence_name"`
	PresetName   string    `json:"preset_name"`
	OutputPath   string    `json:"output_path"`
	CreatedAt    time.Time `json:"created_at"`
	CompletedAt  time.Time `json:"completed_at,omitzero"`
}

// ListRunsResponse is the HTTP response for listing runs.
type ListRunsResponse struct {
	Runs []RunResponse `json:"runs"`
}

// PresetResponse is one entry of the encoder's preset registry.
type PresetResponse struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
}

// ListPresetsResponse is the HTTP response for listing presets.
type ListPresetsResponse struct {
	Presets []PresetResponse `json:"presets"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	// Error is the human-readable error message.
	Error string `json:"error"`
	// Code is the error code for programmatic handling.
	Code string `json:"code"`
}

// HealthResponse is the HTTP response for the health check endpoint.
type HealthResponse struct {
	// Status is the health status of the service.
	Status string `json:"status"`
}
