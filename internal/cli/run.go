package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maauso/stillcut/internal/assembly"
)

// ErrAborted is returned by the run command when the assembly did not queue an export.
var ErrAborted = errors.New("assembly aborted")

func newRunCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run one assembly with the parameters from the environment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, deps, err := a.setup()
			if err != nil {
				return err
			}

			run, err := deps.Service.Assemble(cmd.Context(), cfg.Params())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if a.jsonOutput {
				if err := printJSON(out, run); err != nil {
					return err
				}
			} else {
				fmt.Fprintln(out, run.Message)
			}

			if run.Status != assembly.StatusQueued {
				return fmt.Errorf("%w after %s: %s", ErrAborted, run.Reached, run.Kind)
			}
			return nil
		},
	}
}

