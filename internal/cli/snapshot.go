package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/echosign/internal/storage"
)

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <file.jsonl>",
		Short: "Export the store to a JSONL snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			n, err := storage.Export(cmdContext(cmd), a.store, args[0])
			if err != nil {
				return sysError(err)
			}
			return printCount(cmd, "exported", "to", n, args[0])
		},
	}
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.jsonl>",
		Short: "Import a JSONL snapshot into the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			n, err := storage.Import(cmdContext(cmd), a.store, args[0])
			if err != nil {
				return sysError(err)
			}
			return printCount(cmd, "imported", "from", n, args[0])
		},
	}
}

func printCount(cmd *cobra.Command, verb, prep string, n int, path string) error {
	if flags.jsonMode {
		return printJSON(cmd.OutOrStdout(), map[string]any{verb: n, "path": path})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %d record(s) %s %s\n", verb, n, prep, path)
	return nil
}
