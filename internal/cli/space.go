package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/echosign/pkg/types"
)

func newSpaceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "space",
		Short: "Manage the tenant's spaces",
	}
	cmd.AddCommand(newSpaceCreateCmd(), newSpaceListCmd(), newSpaceUpdateCmd(), newSpaceDeleteCmd(), newSpaceStatsCmd())
	return cmd
}

func newSpaceCreateCmd() *cobra.Command {
	var subdomain, slug, visibility, description string
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a space (owner only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vis, err := types.ParseVisibility(visibility, types.VisibilityPublic)
			if err != nil {
				return err
			}

			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			ctx := cmdContext(cmd)
			t, err := a.ownedTenant(ctx, subdomain)
			if err != nil {
				return err
			}
			space, err := a.dir.CreateSpace(ctx, t.ID, args[0], slug, vis, description)
			if err != nil {
				return err
			}
			if flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), space)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created space %s (%s) slug %s\n", space.Name, space.ID, space.Slug)
			return nil
		},
	}
	cmd.Flags().StringVar(&subdomain, "tenant", "", "tenant subdomain (default: session tenant)")
	cmd.Flags().StringVar(&slug, "slug", "", "URL slug (default: derived from name)")
	cmd.Flags().StringVar(&visibility, "visibility", "", "public, unlisted or private (default: public)")
	cmd.Flags().StringVar(&description, "description", "", "description")
	return cmd
}

func newSpaceListCmd() *cobra.Command {
	var subdomain, visibility string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the tenant's spaces",
		RunE: func(cmd *cobra.Command, args []string) error {
			vis, err := types.ParseVisibility(visibility, "")
			if err != nil {
				return err
			}

			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			ctx := cmdContext(cmd)
			t, err := a.tenant(ctx, subdomain)
			if err != nil {
				return err
			}
			spaces, err := a.dir.ListSpacesByTenant(ctx, t.ID, vis)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if flags.jsonMode {
				return printJSON(out, spaces)
			}
			if len(spaces) == 0 {
				fmt.Fprintln(out, "No spaces found.")
				return nil
			}
			rows := make([][]string, 0, len(spaces))
			for _, s := range spaces {
				rows = append(rows, []string{s.ID, s.Slug, truncate(s.Name, 40), string(s.Visibility), s.CreatedAt.Format("2006-01-02")})
			}
			printTable(out, []string{"ID", "SLUG", "NAME", "VISIBILITY", "CREATED"}, rows)
			fmt.Fprintf(out, "Total: %d space(s)\n", len(spaces))
			return nil
		},
	}
	cmd.Flags().StringVar(&subdomain, "tenant", "", "tenant subdomain (default: session tenant)")
	cmd.Flags().StringVar(&visibility, "visibility", "", "only spaces with this visibility")
	return cmd
}

func newSpaceUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <space-id>",
		Short: "Edit a space's name, description or visibility (owner only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			upd := types.SpaceUpdate{
				Name:        optionalString(cmd, "name"),
				Description: optionalString(cmd, "description"),
			}
			if v := optionalString(cmd, "visibility"); v != nil {
				vis, err := types.ParseVisibility(*v, types.VisibilityPublic)
				if err != nil {
					return err
				}
				upd.Visibility = &vis
			}

			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			ctx := cmdContext(cmd)
			if _, err := a.ownedSpace(ctx, args[0]); err != nil {
				return err
			}
			space, err := a.dir.UpdateSpace(ctx, args[0], upd)
			if err != nil {
				return err
			}
			if flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), space)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated space %s (%s)\n", space.Name, space.ID)
			return nil
		},
	}
	cmd.Flags().String("name", "", "new name")
	cmd.Flags().String("description", "", "new description")
	cmd.Flags().String("visibility", "", "public, unlisted or private")
	return cmd
}

func newSpaceDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <space-id>",
		Short: "Delete a space (owner only); its entries stay in storage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			ctx := cmdContext(cmd)
			if _, err := a.ownedSpace(ctx, args[0]); err != nil {
				return err
			}
			if err := a.dir.DeleteSpace(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted space %s\n", args[0])
			return nil
		},
	}
}

func newSpaceStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <space-id>",
		Short: "Count a space's live and public entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			stats, err := a.dir.ComputeSpaceStats(cmdContext(cmd), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if flags.jsonMode {
				return printJSON(out, stats)
			}
			printTable(out, []string{"SPACE", "SIGNATURES", "PUBLIC"}, [][]string{
				{stats.SpaceID, strconv.Itoa(stats.SignatureCount), strconv.Itoa(stats.PublicCount)},
			})
			return nil
		},
	}
}
