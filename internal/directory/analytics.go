// This file implements the append-only analytics log. Aggregates are
// always derived by filtering the full log at query time.

package directory

import (
	"context"
	"maps"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/echosign/pkg/types"
)

// RecordEvent appends an event for tenantID. Metadata is merged over a
// default {spaceId: ""}. Persistence failures are logged and the event is
// dropped; the caller never sees an error.
func (d *Directory) RecordEvent(ctx context.Context, tenantID, eventType string, metadata map[string]any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.recordEvent(ctx, tenantID, eventType, metadata)
}

func (d *Directory) recordEvent(ctx context.Context, tenantID, eventType string, metadata map[string]any) {
	meta := map[string]any{types.MetaSpaceID: ""}
	maps.Copy(meta, metadata)

	id, err := d.id()
	if err == nil {
		err = d.analytics.Append(ctx, types.AnalyticsEvent{
			ID:        id,
			TenantID:  tenantID,
			Type:      eventType,
			Timestamp: d.timestamp(),
			Metadata:  meta,
		})
	}
	if err != nil {
		d.logger.Warn("dropping analytics event",
			zap.String("tenant", tenantID),
			zap.String("type", eventType),
			zap.Error(err))
	}
}

// QueryEventsByTenant returns the tenant's events in the order recorded.
func (d *Directory) QueryEventsByTenant(ctx context.Context, tenantID string) ([]types.AnalyticsEvent, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.eventsByTenant(ctx, tenantID)
}

func (d *Directory) eventsByTenant(ctx context.Context, tenantID string) ([]types.AnalyticsEvent, error) {
	return d.analytics.Filter(ctx, func(e types.AnalyticsEvent) bool {
		return e.TenantID == tenantID
	})
}

// CountEventsByType returns the number of the tenant's events per type.
func (d *Directory) CountEventsByType(ctx context.Context, tenantID string) (map[string]int, error) {
	events, err := d.QueryEventsByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, e := range events {
		counts[e.Type]++
	}
	return counts, nil
}

// CountEvents returns how many of the tenant's events have eventType.
func (d *Directory) CountEvents(ctx context.Context, tenantID, eventType string) (int, error) {
	events, err := d.QueryEventsByTenant(ctx, tenantID)
	if err != nil {
		return 0, err
	}
	return countEvents(events, eventType, nil), nil
}

// CountSpaceEvents returns how many of the tenant's events have eventType
// and metadata.spaceId equal to spaceID.
func (d *Directory) CountSpaceEvents(ctx context.Context, tenantID, eventType, spaceID string) (int, error) {
	events, err := d.QueryEventsByTenant(ctx, tenantID)
	if err != nil {
		return 0, err
	}
	return countEvents(events, eventType, &spaceID), nil
}

// countEvents counts events of eventType, restricted to spaceID when it is
// non-nil.
func countEvents(events []types.AnalyticsEvent, eventType string, spaceID *string) int {
	n := 0
	for _, e := range events {
		if e.Type != eventType {
			continue
		}
		if spaceID != nil && e.SpaceID() != *spaceID {
			continue
		}
		n++
	}
	return n
}
