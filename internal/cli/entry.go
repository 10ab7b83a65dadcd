// Entry commands: sign, and the entry list/delete subcommands.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/echosign/internal/directory"
	"github.com/mesh-intelligence/echosign/pkg/types"
)

func newSignCmd() *cobra.Command {
	var req directory.SignRequest
	var visibility, signatureFile string
	cmd := &cobra.Command{
		Use:   "sign <space-id>",
		Short: "Sign a space as the session's user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.SpaceID = args[0]
			req.Visibility = types.Visibility(visibility)
			if signatureFile != "" {
				data, err := os.ReadFile(signatureFile)
				if err != nil {
					return err
				}
				req.SignatureData = strings.TrimSpace(string(data))
			}

			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			res, err := a.dir.Sign(cmdContext(cmd), a.sess, req)
			if err != nil {
				return err
			}
			if flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), res)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "signed %s as %s (entry %s)\n", res.Entry.SpaceID, res.User.Name, res.Entry.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Name, "name", "", "signer name (required)")
	cmd.Flags().StringVar(&req.Email, "email", "", "signer email")
	cmd.Flags().StringVar(&req.SignatureData, "signature", "", "encoded signature image")
	cmd.Flags().StringVar(&signatureFile, "signature-file", "", "read the encoded signature image from a file")
	cmd.Flags().StringVar(&req.MemoryText, "memory", "", "memory text")
	cmd.Flags().StringVar(&visibility, "visibility", "", "public, unlisted or private (default: public)")
	return cmd
}

func newEntryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entry",
		Short: "List and delete signature entries",
	}
	cmd.AddCommand(newEntryListCmd(), newEntryDeleteCmd())
	return cmd
}

func newEntryListCmd() *cobra.Command {
	var subdomain, spaceID string
	var public bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List entries of a space, or of the whole tenant",
		Long: "With --space, list the entries of that space the session user may see.\n" +
			"Otherwise list the tenant's entries: public ones with --public, all of them\n" +
			"(owner only) without.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			ctx := cmdContext(cmd)
			var entries []types.SignatureEntry
			switch {
			case spaceID != "":
				entries, err = a.dir.ListEntriesForViewer(ctx, spaceID, a.sess.UserID)
			case public:
				var t *types.Tenant
				if t, err = a.tenant(ctx, subdomain); err == nil {
					entries, err = a.dir.ListPublicEntriesByTenant(ctx, t.ID)
				}
			default:
				var t *types.Tenant
				if t, err = a.ownedTenant(ctx, subdomain); err == nil {
					entries, err = a.dir.ListEntriesByTenant(ctx, t.ID)
				}
			}
			if err != nil {
				return err
			}
			return printEntries(cmd, entries)
		},
	}
	cmd.Flags().StringVar(&subdomain, "tenant", "", "tenant subdomain (default: session tenant)")
	cmd.Flags().StringVar(&spaceID, "space", "", "space id")
	cmd.Flags().BoolVar(&public, "public", false, "only public entries")
	return cmd
}

func newEntryDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <entry-id>",
		Short: "Soft-delete an entry (owner only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			ctx := cmdContext(cmd)
			entry, err := a.dir.LookupEntry(ctx, args[0])
			if err != nil {
				return err
			}
			t, err := a.dir.GetTenant(ctx, entry.TenantID)
			if err != nil {
				return err
			}
			if _, err := a.ownedTenant(ctx, t.Subdomain); err != nil {
				return err
			}
			if err := a.dir.SoftDeleteEntry(ctx, entry.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted entry %s\n", entry.ID)
			return nil
		},
	}
}

func printEntries(cmd *cobra.Command, entries []types.SignatureEntry) error {
	out := cmd.OutOrStdout()
	if flags.jsonMode {
		return printJSON(out, entries)
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "No entries found.")
		return nil
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.ID,
			e.SpaceID,
			truncate(e.UserName, 24),
			string(e.Visibility),
			truncate(e.MemoryText, 40),
			e.CreatedAt.Format("2006-01-02 15:04"),
		})
	}
	printTable(out, []string{"ID", "SPACE", "SIGNER", "VISIBILITY", "MEMORY", "SIGNED"}, rows)
	fmt.Fprintf(out, "Total: %d entry(s)\n", len(entries))
	return nil
}
