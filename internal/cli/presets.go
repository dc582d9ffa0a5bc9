package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maauso/stillcut/internal/preset"
)

func newPresetsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List the encoder's export presets in registry order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, _, deps, err := a.setup()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if a.jsonOutput {
				list, err := preset.List(cmd.Context(), deps.Host)
				if err != nil {
					return err
				}
				if list == nil {
					list = []preset.Descriptor{}
				}
				return printJSON(out, list)
			}

			n := 0
			for d, err := range preset.All(cmd.Context(), deps.Host) {
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%3d  %s\n", d.Index, d.Name)
				n++
			}
			if n == 0 {
				fmt.Fprintln(out, "No export presets found.")
			}
			return nil
		},
	}
}
