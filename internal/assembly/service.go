package assembly

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/maauso/stillcut/internal/notify"
	"github.com/maauso/stillcut/internal/pipeline"
	"github.com/maauso/stillcut/internal/preset"
)

var (
	// ErrBusy is returned when an assembly is requested while another one runs.
	ErrBusy = errors.New("assembly: another assembly is in progress")
	// ErrNoRegistry is returned by Presets when the service has no preset registry.
	ErrNoRegistry = errors.New("assembly: no preset registry configured")
)

// Runner executes one assembly.
type Runner interface {
	Run(ctx context.Context, params pipeline.Params) pipeline.Result
}

// Service runs assemblies one at a time and records their outcome.
type Service struct {
	runner   Runner
	repo     Repository
	notifier notify.Notifier
	registry preset.Registry
	logger   *slog.Logger

	// busy guards the host project; only one run may drive it.
	busy sync.Mutex
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithNotifier reports each finished run to the operator.
func WithNotifier(n notify.Notifier) ServiceOption {
	return func(s *Service) {
		s.notifier = n
	}
}

// WithRegistry enables Presets.
func WithRegistry(reg preset.Registry) ServiceOption {
	return func(s *Service) {
		s.registry = reg
	}
}

// NewService creates a new Service.
func NewService(runner Runner, repo Repository, logger *slog.Logger, opts ...ServiceOption) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		runner: runner,
		repo:   repo,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Assemble runs one assembly to completion and returns its record. It returns
// ErrBusy without touching the host if another assembly is running. An
// aborted assembly is not an error: the record carries the failure.
func (s *Service) Assemble(ctx context.Context, params pipeline.Params) (*Run, error) {
	if !s.busy.TryLock() {
		return nil, ErrBusy
	}
	defer s.busy.Unlock()

	run := NewRun(params)
	logger := s.logger.With(slog.String("run_id", run.ID))

	if err := run.Start(); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, run); err != nil {
		logger.Error("failed to save run", slog.String("error", err.Error()))
		return nil, err
	}

	res := s.runner.Run(ctx, params)
	if err := run.Finish(res); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, res); err != nil {
			logger.Warn("failed to notify operator", slog.String("error", err.Error()))
		}
	}

	if err := s.repo.Save(ctx, run); err != nil {
		logger.Error("failed to save run", slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("assembly finished",
		slog.String("status", string(run.Status)),
		slog.String("message", run.Message),
	)
	return run.Clone(), nil
}

// Get retrieves a run by ID.
func (s *Service) Get(ctx context.Context, id string) (*Run, error) {
	return s.repo.FindByID(ctx, id)
}

// List returns all runs, newest first.
func (s *Service) List(ctx context.Context) ([]*Run, error) {
	return s.repo.List(ctx)
}

// Presets lists the encoder's preset registry in index order.
func (s *Service) Presets(ctx context.Context) ([]preset.Descriptor, error) {
	if s.registry == nil {
		return nil, ErrNoRegistry
	}
	return preset.List(ctx, s.registry)
}
