package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/echosign/pkg/echosign"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the echosign version",
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), map[string]string{
					"version": echosign.Version,
					"module":  echosign.ModulePath,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "echosign v%s\nmodule: %s\n", echosign.Version, echosign.ModulePath)
			return nil
		},
	}
}
