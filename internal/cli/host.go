package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/echosign/internal/hostname"
	"github.com/mesh-intelligence/echosign/pkg/types"
)

// hostResolution is the output of resolve-host.
type hostResolution struct {
	Host      string        `json:"host"`
	Subdomain string        `json:"subdomain"`
	Tenant    *types.Tenant `json:"tenant"`
}

func newResolveHostCmd() *cobra.Command {
	var devSuffix string
	cmd := &cobra.Command{
		Use:   "resolve-host <host>",
		Short: "Resolve a request host to its subdomain and tenant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			suffix := devSuffix
			if suffix == "" {
				suffix = settings.Server.DevSuffix
			}
			res := hostResolution{
				Host:      args[0],
				Subdomain: hostname.Resolve(args[0], suffix),
			}

			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			res.Tenant, err = a.dir.ResolveHostToTenant(cmdContext(cmd), a.sess, res.Subdomain)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if flags.jsonMode {
				return printJSON(out, res)
			}
			sub := res.Subdomain
			if sub == "" {
				sub = "(none)"
			}
			fmt.Fprintf(out, "subdomain: %s\n", sub)
			if res.Tenant == nil {
				fmt.Fprintln(out, "tenant: (none)")
			} else {
				fmt.Fprintf(out, "tenant: %s (%s)\n", res.Tenant.Subdomain, res.Tenant.ID)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&devSuffix, "dev-suffix", "", "development wildcard suffix (default: server.dev_suffix)")
	return cmd
}
