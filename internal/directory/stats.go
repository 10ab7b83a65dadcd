// This file implements the dashboard aggregates. Everything is computed
// live from the entries collection and the analytics log.

package directory

import (
	"cmp"
	"context"
	"math"
	"slices"
	"time"

	"github.com/mesh-intelligence/echosign/pkg/types"
)

// TenantStats is the dashboard summary of one tenant.
type TenantStats struct {
	TotalSpaces     int                   `json:"totalSpaces"`
	TotalSignatures int                   `json:"totalSignatures"`
	TotalViews      int                   `json:"totalViews"`
	TotalSigns      int                   `json:"totalSigns"`
	LastEntry       *types.SignatureEntry `json:"lastEntry,omitempty"`
}

// SpaceActivity is the per-space row of SpaceAnalytics.
type SpaceActivity struct {
	SpaceID        string     `json:"spaceId"`
	SpaceName      string     `json:"spaceName"`
	SignatureCount int        `json:"signatureCount"`
	PublicCount    int        `json:"publicCount"`
	Views          int        `json:"views"`
	Signs          int        `json:"signs"`
	LastSigned     *time.Time `json:"lastSigned,omitempty"`
}

// AnalyticsReport is the tenant's per-space activity and totals.
type AnalyticsReport struct {
	Spaces                []SpaceActivity `json:"spaces"`
	TotalSpaces           int             `json:"totalSpaces"`
	TotalSignatures       int             `json:"totalSignatures"`
	TotalViews            int             `json:"totalViews"`
	TotalSigns            int             `json:"totalSigns"`
	AvgSignaturesPerSpace float64         `json:"avgSignaturesPerSpace"`
}

// TenantStats summarizes the tenant: spaces, live signatures, wall views,
// sign events and the newest live entry.
func (d *Directory) TenantStats(ctx context.Context, tenantID string) (*TenantStats, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	spaces, err := d.spacesByTenant(ctx, tenantID, "")
	if err != nil {
		return nil, err
	}
	entries, err := d.liveEntries(ctx, func(e types.SignatureEntry) bool { return e.TenantID == tenantID })
	if err != nil {
		return nil, err
	}
	events, err := d.eventsByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return &TenantStats{
		TotalSpaces:     len(spaces),
		TotalSignatures: len(entries),
		TotalViews:      countEvents(events, types.EventViewWall, nil),
		TotalSigns:      countEvents(events, types.EventSignSpace, nil),
		LastEntry:       lastEntry(entries),
	}, nil
}

// SpaceAnalytics reports per-space counts, view_space and sign_space
// events, ordered by signature count descending. Entries of deleted spaces
// count toward TotalSignatures but appear in no row.
func (d *Directory) SpaceAnalytics(ctx context.Context, tenantID string) (*AnalyticsReport, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	spaces, err := d.spacesByTenant(ctx, tenantID, "")
	if err != nil {
		return nil, err
	}
	entries, err := d.liveEntries(ctx, func(e types.SignatureEntry) bool { return e.TenantID == tenantID })
	if err != nil {
		return nil, err
	}
	events, err := d.eventsByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	report := &AnalyticsReport{
		Spaces:          make([]SpaceActivity, 0, len(spaces)),
		TotalSpaces:     len(spaces),
		TotalSignatures: len(entries),
		TotalViews:      countEvents(events, types.EventViewSpace, nil),
		TotalSigns:      countEvents(events, types.EventSignSpace, nil),
	}
	for _, s := range spaces {
		var own []types.SignatureEntry
		for _, e := range entries {
			if e.SpaceID == s.ID {
				own = append(own, e)
			}
		}
		stats := spaceStats(s.ID, own)
		report.Spaces = append(report.Spaces, SpaceActivity{
			SpaceID:        s.ID,
			SpaceName:      s.Name,
			SignatureCount: stats.SignatureCount,
			PublicCount:    stats.PublicCount,
			Views:          countEvents(events, types.EventViewSpace, &s.ID),
			Signs:          countEvents(events, types.EventSignSpace, &s.ID),
			LastSigned:     lastSigned(own),
		})
	}
	slices.SortStableFunc(report.Spaces, func(a, b SpaceActivity) int {
		return cmp.Compare(b.SignatureCount, a.SignatureCount)
	})
	if len(spaces) > 0 {
		avg := float64(len(entries)) / float64(len(spaces))
		report.AvgSignaturesPerSpace = math.Round(avg*10) / 10
	}
	return report, nil
}
