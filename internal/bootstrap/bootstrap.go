// Package bootstrap wires the host, staging, pipeline and run service from configuration.
package bootstrap

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/maauso/stillcut/internal/assembly"
	"github.com/maauso/stillcut/internal/config"
	"github.com/maauso/stillcut/internal/host"
	"github.com/maauso/stillcut/internal/notify"
	"github.com/maauso/stillcut/internal/pipeline"
	"github.com/maauso/stillcut/internal/storage"
)

// Dependencies holds all initialized dependencies for the commands.
type Dependencies struct {
	Host     host.Host
	Pipeline *pipeline.Pipeline
	Notifier notify.Notifier
	Service  *assembly.Service
}

// NewDependencies creates and initializes all dependencies for the application.
func NewDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	h, err := initHost(cfg, logger)
	if err != nil {
		return nil, err
	}

	stager, err := initStorage(cfg, logger)
	if err != nil {
		return nil, err
	}

	p := pipeline.New(h, logger, pipeline.WithStager(stager))

	notifier := notify.Multi{
		notify.NewHostNotifier(h),
		notify.NewLogNotifier(logger),
	}

	svc := assembly.NewService(
		p,
		assembly.NewMemoryRepository(),
		logger,
		assembly.WithNotifier(notifier),
		assembly.WithRegistry(h),
	)

	return &Dependencies{
		Host:     h,
		Pipeline: p,
		Notifier: notifier,
		Service:  svc,
	}, nil
}

// initHost creates the host adapter selected by HOST_MODE.
func initHost(cfg *config.Config, logger *slog.Logger) (host.Host, error) {
	if strings.EqualFold(cfg.HostMode, config.HostModeMemory) {
		logger.Info("memory host configured",
			slog.Int("presets", len(cfg.MemoryPresets)),
			slog.Duration("media_duration", cfg.MemoryMediaDuration()),
		)
		return host.NewMemoryHost(
			host.WithPresets(cfg.MemoryPresets...),
			host.WithDefaultDuration(cfg.MemoryMediaDuration()),
		), nil
	}

	opts := []host.BridgeOption{host.WithToken(cfg.HostBridgeToken)}
	if t := cfg.HostTimeout(); t > 0 {
		opts = append(opts, host.WithTimeout(t))
	}
	client, err := host.NewBridgeClient(cfg.HostBridgeURL, opts...)
	if err != nil {
		return nil, fmt.Errorf("create bridge client: %w", err)
	}
	logger.Info("bridge host configured",
		slog.String("url", cfg.HostBridgeURL),
		slog.Duration("timeout", cfg.HostTimeout()),
	)
	return client, nil
}

// initStorage creates the staging backend. s3:// inputs are only accepted
// when S3 is configured.
func initStorage(cfg *config.Config, logger *slog.Logger) (storage.Stager, error) {
	if cfg.S3Enabled() {
		s3Cfg := storage.S3Config{
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		}
		s3Store, err := storage.NewS3Storage(cfg.TempDir, s3Cfg)
		if err != nil {
			return nil, fmt.Errorf("create S3 storage: %w", err)
		}
		logger.Info("S3 staging configured",
			slog.String("region", cfg.S3Region),
			slog.String("temp_dir", cfg.TempDir),
		)
		return s3Store, nil
	}

	localStore, err := storage.NewLocalStorage(cfg.TempDir)
	if err != nil {
		return nil, fmt.Errorf("create local storage: %w", err)
	}
	logger.Info("local staging configured",
		slog.String("temp_dir", cfg.TempDir),
	)
	return localStore, nil
}
