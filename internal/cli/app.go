// Shared helpers for echosign CLI commands.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/echosign/internal/directory"
	"github.com/mesh-intelligence/echosign/internal/logging"
	"github.com/mesh-intelligence/echosign/internal/storage"
	"github.com/mesh-intelligence/echosign/pkg/types"
)

// app is the opened runtime of one command: logger, store and directory.
type app struct {
	logger *zap.Logger
	store  types.Store
	dir    *directory.Directory
	sess   types.SessionContext
}

// openApp resolves the data directory, opens the configured store and
// loads the --session pointers. The caller must defer a.close().
func openApp(cmd *cobra.Command) (*app, error) {
	ctx := cmdContext(cmd)

	logger, err := logging.New(settings.Log)
	if err != nil {
		return nil, sysError(fmt.Errorf("create logger: %w", err))
	}

	cfg := settings.Config
	dataDir, err := resolveDataDir()
	if err != nil {
		return nil, sysError(fmt.Errorf("resolve data dir: %w", err))
	}
	cfg.DataDir = dataDir

	store, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		return nil, sysError(fmt.Errorf("open store: %w", err))
	}

	dir := directory.New(store, directory.WithLogger(logger))
	sess, err := dir.Session(ctx, flags.session)
	if err != nil {
		_ = store.Close()
		return nil, sysError(fmt.Errorf("load session: %w", err))
	}
	return &app{logger: logger, store: store, dir: dir, sess: sess}, nil
}

func (a *app) close() {
	_ = a.store.Close()
	_ = a.logger.Sync()
}

// tenant returns the tenant named by subdomain, or the session's current
// tenant when subdomain is empty.
func (a *app) tenant(ctx context.Context, subdomain string) (*types.Tenant, error) {
	if subdomain == "" {
		t, err := a.dir.CurrentTenant(ctx, a.sess.SessionID)
		if err != nil {
			return nil, err
		}
		if t == nil {
			return nil, fmt.Errorf("%w: no current tenant; run signup or pass --tenant", types.ErrValidation)
		}
		return t, nil
	}
	t, err := a.dir.FindTenantBySubdomain(ctx, subdomain)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("%w: tenant %q", types.ErrNotFound, subdomain)
	}
	return t, nil
}

// ownedTenant is tenant plus a check that the session user owns it.
func (a *app) ownedTenant(ctx context.Context, subdomain string) (*types.Tenant, error) {
	t, err := a.tenant(ctx, subdomain)
	if err != nil {
		return nil, err
	}
	user, err := a.dir.CurrentUser(ctx, a.sess.SessionID)
	if err != nil {
		return nil, err
	}
	if !directory.IsOwner(user, t) {
		return nil, fmt.Errorf("%w: session %q does not own tenant %q", types.ErrForbidden, a.sess.SessionID, t.Subdomain)
	}
	return t, nil
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	fmt.Fprintln(w, string(output))
	return nil
}

// printTable writes a header and rows as aligned columns, trimming
// trailing whitespace from each line.
func printTable(w io.Writer, header []string, rows [][]string) {
	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	_ = tw.Flush()

	for _, line := range strings.Split(strings.TrimRight(sb.String(), "\n"), "\n") {
		fmt.Fprintln(w, strings.TrimRight(line, " "))
	}
}

// truncate shortens s to n runes with an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// optionalString returns a pointer to the flag's value when the flag was
// set on the command line, else nil.
func optionalString(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetString(name)
	return &v
}

// ownedSpace loads the space with id and checks that the session user owns
// its tenant.
func (a *app) ownedSpace(ctx context.Context, id string) (*types.Space, error) {
	space, err := a.dir.GetSpace(ctx, id)
	if err != nil {
		return nil, err
	}
	t, err := a.dir.GetTenant(ctx, space.TenantID)
	if err != nil {
		return nil, err
	}
	if _, err := a.ownedTenant(ctx, t.Subdomain); err != nil {
		return nil, err
	}
	return space, nil
}
