package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/maauso/stillcut/internal/assembly"
	"github.com/maauso/stillcut/internal/pipeline"
)

// Handlers contains the HTTP handlers for the API.
type Handlers struct {
	service   *assembly.Service
	validator *validator.Validate
	logger    *slog.Logger
	defaults  pipeline.Params
}

// HandlerOption is a function that configures a Handlers instance.
type HandlerOption func(*Handlers)

// WithDefaults sets the sequence name, preset and output path used when a
// request leaves them empty.
func WithDefaults(p pipeline.Params) HandlerOption {
	return func(h *Handlers) {
		h.defaults = p
	}
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(service *assembly.Service, logger *slog.Logger, opts ...HandlerOption) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handlers{
		service:   service,
		validator: validator.New(),
		logger:    logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Health handles GET /health requests.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// CreateAssembly handles POST /assemblies requests. The assembly runs to
// completion before the response is written: 201 when the export was
// queued, 422 when a gate aborted the run, 409 when another run holds the host.
// The run is detached from the request's cancellation: a client that hangs up
// must not abort the host halfway through a sequence.
func (h *Handlers) CreateAssembly(w http.ResponseWriter, r *http.Request) {
	var req CreateAssemblyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode request body",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadRequest, "invalid JSON body", "INVALID_JSON")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		h.logger.Warn("request validation failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
		return
	}

	run, err := h.service.Assemble(context.WithoutCancel(r.Context()), h.params(req))
	if err != nil {
		if errors.Is(err, assembly.ErrBusy) {
			writeError(w, http.StatusConflict, "another assembly is in progress", "ASSEMBLY_BUSY")
			return
		}
		h.logger.Error("failed to run assembly",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to run assembly", "ASSEMBLY_FAILED")
		return
	}

	status := http.StatusCreated
	if run.Status == assembly.StatusAborted {
		status = http.StatusUnprocessableEntity
	}
	w.Header().Set(RunIDHeader, run.ID)
	writeJSON(w, status, toRunResponse(run))
}

func (h *Handlers) params(req CreateAssemblyRequest) pipeline.Params {
	p := pipeline.Params{
		ImagePath:    req.ImagePath,
		AudioPath:    req.AudioPath,
		SequenceName: req.SequenceName,
		PresetName:   req.PresetName,
		OutputPath:   req.OutputPath,
	}
	if p.SequenceName == "" {
		p.SequenceName = h.defaults.SequenceName
	}
	if p.PresetName == "" {
		p.PresetName = h.defaults.PresetName
	}
	if p.OutputPath == "" {
		p.OutputPath = h.defaults.OutputPath
	}
	return p
}

// GetAssembly handles GET /assemblies/{id} requests.
func (h *Handlers) GetAssembly(w http.ResponseWriter, r *http.Request) {
	runID := r.PathValue("id")
	if runID == "" {
		writeError(w, http.StatusBadRequest, "run ID is required", "MISSING_RUN_ID")
		return
	}

	run, err := h.service.Get(r.Context(), runID)
	if err != nil {
		if errors.Is(err, assembly.ErrRunNotFound) {
			writeError(w, http.StatusNotFound, "run not found", "RUN_NOT_FOUND")
			return
		}
		h.logger.Error("failed to get run",
			slog.String("run_id", runID),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to get run", "RUN_FETCH_FAILED")
		return
	}

	w.Header().Set(RunIDHeader, run.ID)
	writeJSON(w, http.StatusOK, toRunResponse(run))
}

// ListAssemblies handles GET /assemblies requests.
func (h *Handlers) ListAssemblies(w http.ResponseWriter, r *http.Request) {
	runs, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list runs", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to list runs", "RUN_LIST_FAILED")
		return
	}

	resp := ListRunsResponse{Runs: make([]RunResponse, 0, len(runs))}
	for _, run := range runs {
		resp.Runs = append(resp.Runs, toRunResponse(run))
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListPresets handles GET /presets requests.
func (h *Handlers) ListPresets(w http.ResponseWriter, r *http.Request) {
	presets, err := h.service.Presets(r.Context())
	if err != nil {
		h.logger.Error("failed to list presets", slog.String("error", err.Error()))
		writeError(w, http.StatusBadGateway, "failed to read preset registry", "PRESET_LIST_FAILED")
		return
	}

	resp := ListPresetsResponse{Presets: make([]PresetResponse, 0, len(presets))}
	for _, p := range presets {
		resp.Presets = append(resp.Presets, PresetResponse{Index: p.Index, Name: p.Name})
	}
	writeJSON(w, http.StatusOK, resp)
}

func toRunResponse(run *assembly.Run) RunResponse {
	trace := make([]string, 0, len(run.Trace))
	for _, s := range run.Trace {
		trace = append(trace, string(s))
	}
	return RunResponse{
		ID:           run.ID,
		Status:       string(run.Status),
		Trace:        trace,
		Reached:      string(run.Reached),
		Message:      run.Message,
		Kind:         string(run.Kind),
		Error:        run.Error,
		SequenceID:   run.SequenceID,
		DurationSec:  run.Duration.Seconds(),
		ImagePath:    run.Params.ImagePath,
		AudioPath:    run.Params.AudioPath,
		SequenceName: run.Params.SequenceName,
		PresetName:   run.Params.PresetName,
		OutputPath:   run.Params.OutputPath,
		CreatedAt:    run.CreatedAt,
		CompletedAt:  run.CompletedAt,
	}
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}

// writeError writes an error response in the standard format.
func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}
