// Read-only insight commands: featured, events and stats.
package cli

import (
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/echosign/internal/directory"
	"github.com/mesh-intelligence/echosign/pkg/types"
)

const dateLayout = "2006-01-02"

func newFeaturedCmd() *cobra.Command {
	var subdomain, date string
	cmd := &cobra.Command{
		Use:   "featured",
		Short: "Show the featured memory of the day",
		RunE: func(cmd *cobra.Command, args []string) error {
			asOf := time.Now().UTC()
			if date != "" {
				d, err := time.Parse(dateLayout, date)
				if err != nil {
					return fmt.Errorf("%w: --date must be YYYY-MM-DD", types.ErrValidation)
				}
				asOf = d
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
			entry, err := a.dir.PickFeaturedMemory(ctx, t.ID, asOf)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if flags.jsonMode {
				return printJSON(out, map[string]any{"date": asOf.Format(dateLayout), "featured": entry})
			}
			if entry == nil {
				fmt.Fprintln(out, "No featured memory.")
				return nil
			}
			fmt.Fprintf(out, "%q\n  by %s, %s (entry %s)\n", entry.MemoryText, entry.UserName, entry.CreatedAt.Format(dateLayout), entry.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&subdomain, "tenant", "", "tenant subdomain (default: session tenant)")
	cmd.Flags().StringVar(&date, "date", "", "pick for this date, YYYY-MM-DD (default: today in UTC)")
	return cmd
}

func newEventsCmd() *cobra.Command {
	var subdomain, eventType string
	cmd := &cobra.Command{
		Use:   "events",
		Short: "List the tenant's analytics events (owner only)",
		RunE: func(cmd *cobra.Command, args []string) error {
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
			events, err := a.dir.QueryEventsByTenant(ctx, t.ID)
			if err != nil {
				return err
			}
			if eventType != "" {
				events = slices.DeleteFunc(events, func(e types.AnalyticsEvent) bool { return e.Type != eventType })
			}

			out := cmd.OutOrStdout()
			if flags.jsonMode {
				return printJSON(out, events)
			}
			if len(events) == 0 {
				fmt.Fprintln(out, "No events found.")
				return nil
			}
			rows := make([][]string, 0, len(events))
			for _, e := range events {
				rows = append(rows, []string{e.Timestamp.Format(time.RFC3339), e.Type, e.SpaceID()})
			}
			printTable(out, []string{"TIME", "TYPE", "SPACE"}, rows)
			fmt.Fprintf(out, "Total: %d event(s)\n", len(events))
			return nil
		},
	}
	cmd.Flags().StringVar(&subdomain, "tenant", "", "tenant subdomain (default: session tenant)")
	cmd.Flags().StringVar(&eventType, "type", "", "only events of this type")
	return cmd
}

func newStatsCmd() *cobra.Command {
	var subdomain string
	var perSpace bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show the tenant dashboard summary (owner only)",
		RunE: func(cmd *cobra.Command, args []string) error {
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
			if perSpace {
				report, err := a.dir.SpaceAnalytics(ctx, t.ID)
				if err != nil {
					return err
				}
				return printAnalytics(cmd, report)
			}

			stats, err := a.dir.TenantStats(ctx, t.ID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if flags.jsonMode {
				return printJSON(out, stats)
			}
			fmt.Fprintf(out, "Spaces:      %d\n", stats.TotalSpaces)
			fmt.Fprintf(out, "Signatures:  %d\n", stats.TotalSignatures)
			fmt.Fprintf(out, "Wall views:  %d\n", stats.TotalViews)
			fmt.Fprintf(out, "Signs:       %d\n", stats.TotalSigns)
			if stats.LastEntry != nil {
				fmt.Fprintf(out, "Last entry:  %s by %s\n", stats.LastEntry.CreatedAt.Format("2006-01-02 15:04"), stats.LastEntry.UserName)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&subdomain, "tenant", "", "tenant subdomain (default: session tenant)")
	cmd.Flags().BoolVar(&perSpace, "spaces", false, "per-space analytics")
	return cmd
}

func printAnalytics(cmd *cobra.Command, report *directory.AnalyticsReport) error {
	out := cmd.OutOrStdout()
	if flags.jsonMode {
		return printJSON(out, report)
	}
	rows := make([][]string, 0, len(report.Spaces))
	for _, s := range report.Spaces {
		last := "-"
		if s.LastSigned != nil {
			last = s.LastSigned.Format("2006-01-02 15:04")
		}
		rows = append(rows, []string{
			truncate(s.SpaceName, 32),
			strconv.Itoa(s.SignatureCount),
			strconv.Itoa(s.PublicCount),
			strconv.Itoa(s.Views),
			strconv.Itoa(s.Signs),
			last,
		})
	}
	printTable(out, []string{"SPACE", "SIGNATURES", "PUBLIC", "VIEWS", "SIGNS", "LAST SIGNED"}, rows)
	fmt.Fprintf(out, "Spaces: %d  Signatures: %d  Views: %d  Signs: %d  Avg/space: %.1f\n",
		report.TotalSpaces, report.TotalSignatures, report.TotalViews, report.TotalSigns, report.AvgSignaturesPerSpace)
	return nil
}
