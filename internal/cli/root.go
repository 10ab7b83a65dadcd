// Package cli implements the echosign command-line interface.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/echosign/internal/paths"
	"github.com/mesh-intelligence/echosign/pkg/echosign"
	"github.com/mesh-intelligence/echosign/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// DefaultSessionID is the session the CLI acts as when --session is not
// given.
const DefaultSessionID = "cli"

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
	session   string
}

var flags rootFlags

// settings is loaded from config.yaml by the root PersistentPreRunE.
var settings Settings

// NewRootCmd creates the top-level "echosign" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "echosign",
		Short:   "Multi-tenant signature walls",
		Long:    "echosign manages tenants, spaces and signature entries, and serves\nthe signature-wall HTTP API.",
		Version: echosign.Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			configDir, err := paths.ResolveConfigDir(flags.configDir)
			if err != nil {
				return sysError(err)
			}
			s, err := loadSettings(configDir)
			if err != nil {
				return sysError(err)
			}
			settings = s
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&flags.dataDir, "data-dir", "", "data directory (default: $(CWD)/.echosign-db)")
	root.PersistentFlags().BoolVar(&flags.jsonMode, "json", false, "output in JSON format")
	root.PersistentFlags().StringVar(&flags.session, "session", DefaultSessionID, "session id the command acts as")

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(),
		newServeCmd(),
		newResolveHostCmd(),
		newExportCmd(),
		newImportCmd(),
		newSignupCmd(),
		newLogoutCmd(),
		newTenantCmd(),
		newSpaceCmd(),
		newSignCmd(),
		newEntryCmd(),
		newFeaturedCmd(),
		newEventsCmd(),
		newStatsCmd(),
	)

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "echosign:", err)
		os.Exit(exitCode(err))
	}
}

// cliError carries the exit code of a failed command.
type cliError struct {
	code int
	err  error
}

func (e *cliError) Error() string { return e.err.Error() }
func (e *cliError) Unwrap() error { return e.err }

// sysError marks err as an environment failure (storage, filesystem,
// network) rather than a bad invocation.
func sysError(err error) error {
	if err == nil {
		return nil
	}
	return &cliError{code: exitSysError, err: err}
}

// exitCode maps err to a process exit code. Directory rule violations and
// flag errors are user errors; errors marked by sysError are system errors.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var ce *cliError
	if errors.As(err, &ce) {
		return ce.code
	}
	switch {
	case errors.Is(err, types.ErrCorruptedState), errors.Is(err, types.ErrStoreDetached):
		return exitSysError
	default:
		return exitUserError
	}
}

// resolveDataDir returns the data directory: --data-dir flag > config.yaml
// data_dir > ECHOSIGN_DATA_DIR > default.
func resolveDataDir() (string, error) {
	return paths.ResolveDataDir(flags.dataDir, settings.DataDir)
}
