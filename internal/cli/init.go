package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize echosign storage",
		Long:  "Create the configuration file and data directory, then open and close the configured backend.",
		RunE:  runInit,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	a.close()

	dataDir, err := resolveDataDir()
	if err != nil {
		return sysError(err)
	}
	if flags.jsonMode {
		return printJSON(cmd.OutOrStdout(), map[string]string{
			"backend": settings.Backend,
			"dataDir": dataDir,
		})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "echosign initialized (backend %s, data dir %s)\n", settings.Backend, dataDir)
	return nil
}
