// Tenant commands: signup, logout and the tenant subcommands.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/echosign/internal/directory"
	"github.com/mesh-intelligence/echosign/pkg/types"
)

func newSignupCmd() *cobra.Command {
	var req directory.SignupRequest
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create a tenant and its owner, and make them current for the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			res, err := a.dir.Signup(cmdContext(cmd), a.sess, req)
			if err != nil {
				return err
			}
			if flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), res)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created tenant %s (%s) owned by %s (%s)\n",
				res.Tenant.Subdomain, res.Tenant.ID, res.Owner.Name, res.Owner.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.OwnerName, "name", "", "owner name (required)")
	cmd.Flags().StringVar(&req.OwnerEmail, "email", "", "owner email")
	cmd.Flags().StringVar(&req.Subdomain, "subdomain", "", "tenant subdomain (required)")
	cmd.Flags().StringVar(&req.DisplayName, "display-name", "", "tenant display name (default: subdomain)")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the session's current user and tenant",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.dir.Logout(cmdContext(cmd), a.sess.SessionID); err != nil {
				return sysError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "session %s logged out\n", a.sess.SessionID)
			return nil
		},
	}
}

func newTenantCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tenant",
		Short: "Inspect and edit tenants",
	}
	cmd.AddCommand(newTenantShowCmd(), newTenantListCmd(), newTenantCheckCmd(), newTenantUpdateCmd())
	return cmd
}

func newTenantShowCmd() *cobra.Command {
	var subdomain string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the session's tenant, or the one named by --tenant",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			t, err := a.tenant(cmdContext(cmd), subdomain)
			if err != nil {
				return err
			}
			return printTenant(cmd, t)
		},
	}
	cmd.Flags().StringVar(&subdomain, "tenant", "", "tenant subdomain")
	return cmd
}

func newTenantListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every tenant",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			tenants, err := a.dir.ListTenants(cmdContext(cmd))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if flags.jsonMode {
				return printJSON(out, tenants)
			}
			if len(tenants) == 0 {
				fmt.Fprintln(out, "No tenants found.")
				return nil
			}
			rows := make([][]string, 0, len(tenants))
			for _, t := range tenants {
				rows = append(rows, []string{t.ID, t.Subdomain, truncate(t.DisplayName, 40), t.CreatedAt.Format("2006-01-02")})
			}
			printTable(out, []string{"ID", "SUBDOMAIN", "NAME", "CREATED"}, rows)
			fmt.Fprintf(out, "Total: %d tenant(s)\n", len(tenants))
			return nil
		},
	}
}

func newTenantCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <subdomain>",
		Short: "Report whether a subdomain can be claimed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			sub, available, err := a.dir.CheckSubdomain(cmdContext(cmd), args[0])
			if err != nil {
				return err
			}
			if flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), map[string]any{"subdomain": sub, "available": available})
			}
			state := "taken"
			if available {
				state = "available"
			} else if len(sub) < directory.MinSubdomainLength {
				state = "too short"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", sub, state)
			return nil
		},
	}
}

func newTenantUpdateCmd() *cobra.Command {
	var subdomain string
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Edit the tenant profile and branding (owner only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			upd := types.TenantUpdate{
				DisplayName: optionalString(cmd, "display-name"),
				Description: optionalString(cmd, "description"),
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
			if brandingChanged(cmd) {
				var base types.TenantBranding
				if t.Branding != nil {
					base = *t.Branding
				}
				upd.Branding = mergeBranding(base, cmd)
			}
			updated, err := a.dir.UpdateTenant(ctx, a.sess, t.ID, upd)
			if err != nil {
				return err
			}
			return printTenant(cmd, updated)
		},
	}
	cmd.Flags().StringVar(&subdomain, "tenant", "", "tenant subdomain (default: session tenant)")
	cmd.Flags().String("display-name", "", "display name")
	cmd.Flags().String("description", "", "description")
	for _, f := range brandingFlags {
		cmd.Flags().String(f.name, "", f.usage)
	}
	return cmd
}

// brandingFlags maps tenant update flags to branding fields.
var brandingFlags = []struct {
	name  string
	usage string
	field func(*types.TenantBranding) *string
}{
	{"cover-image", "cover image URL", func(b *types.TenantBranding) *string { return &b.CoverImage }},
	{"logo-image", "logo image URL", func(b *types.TenantBranding) *string { return &b.LogoImage }},
	{"primary-color", "primary color", func(b *types.TenantBranding) *string { return &b.PrimaryColor }},
	{"secondary-color", "secondary color", func(b *types.TenantBranding) *string { return &b.SecondaryColor }},
	{"text-color", "text color", func(b *types.TenantBranding) *string { return &b.TextColor }},
	{"tagline", "homepage tagline", func(b *types.TenantBranding) *string { return &b.Tagline }},
	{"footer-text", "homepage footer text", func(b *types.TenantBranding) *string { return &b.FooterText }},
}

func brandingChanged(cmd *cobra.Command) bool {
	for _, f := range brandingFlags {
		if cmd.Flags().Changed(f.name) {
			return true
		}
	}
	return false
}

// mergeBranding overlays the changed branding flags on base.
func mergeBranding(base types.TenantBranding, cmd *cobra.Command) *types.TenantBranding {
	for _, f := range brandingFlags {
		if v := optionalString(cmd, f.name); v != nil {
			*f.field(&base) = *v
		}
	}
	return &base
}

func printTenant(cmd *cobra.Command, t *types.Tenant) error {
	out := cmd.OutOrStdout()
	if flags.jsonMode {
		return printJSON(out, t)
	}
	fmt.Fprintf(out, "ID:          %s\n", t.ID)
	fmt.Fprintf(out, "Subdomain:   %s\n", t.Subdomain)
	fmt.Fprintf(out, "Name:        %s\n", t.DisplayName)
	fmt.Fprintf(out, "Owner:       %s\n", t.OwnerID)
	fmt.Fprintf(out, "Created:     %s\n", t.CreatedAt.Format("2006-01-02 15:04:05"))
	if t.Description != "" {
		fmt.Fprintf(out, "Description: %s\n", t.Description)
	}
	if t.Branding != nil && t.Branding.Tagline != "" {
		fmt.Fprintf(out, "Tagline:     %s\n", t.Branding.Tagline)
	}
	return nil
}
