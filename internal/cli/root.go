// Package cli implements the cobra commands of the stillcut binary.
//
// Every command reads its settings from the environment through config.Load;
// flags only control output format.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/maauso/stillcut/internal/bootstrap"
	"github.com/maauso/stillcut/internal/config"
)

// Version, Commit and Date are set from main at build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// app carries state shared by the subcommands.
type app struct {
	jsonOutput bool
	load       func() (*config.Config, error)
}

// setup loads configuration, installs the logger and wires dependencies.
func (a *app) setup() (*config.Config, *slog.Logger, *bootstrap.Dependencies, error) {
	cfg, err := a.load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	logger := cfg.NewLogger()
	slog.SetDefault(logger)
	logger.Debug("configuration loaded", slog.String("config", cfg.String()))

	deps, err := bootstrap.NewDependencies(cfg, logger)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("initialize dependencies: %w", err)
	}
	return cfg, logger, deps, nil
}

// printJSON writes v to w as indented JSON.
func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// NewRootCommand creates the root command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	return newRootCommand(config.Load)
}

func newRootCommand(load func() (*config.Config, error)) *cobra.Command {
	a := &app{load: load}

	rootCmd := &cobra.Command{
		Use:   "stillcut",
		Short: "Assemble a still-image video in the editor and queue its export",
		Long: `stillcut drives a video editor through its scripting bridge: it creates a
sequence, imports an image and an audio file, lays them out so the image
lasts as long as the audio, and queues the export with a named preset.

Inputs come from the environment (IMAGE_PATH, AUDIO_PATH, SEQUENCE_NAME,
EXPORT_PRESET, OUTPUT_PATH). Set HOST_MODE=memory for a dry run.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),
	}

	rootCmd.PersistentFlags().BoolVar(&a.jsonOutput, "json", false, "Output in JSON format")

	rootCmd.AddCommand(newRunCommand(a))
	rootCmd.AddCommand(newServeCommand(a))
	rootCmd.AddCommand(newPresetsCommand(a))

	return rootCmd
}

// Execute runs rootCmd until it returns or the process is interrupted,
// then exits with status 1 on error.
func Execute(rootCmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
