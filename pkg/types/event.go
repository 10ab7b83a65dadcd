package types

import "time"

// Analytics event types recorded by the directory and the HTTP surface.
const (
	EventTenantCreated = "tenant_created"
	EventViewWall      = "view_wall"
	EventViewSpace     = "view_space"
	EventSignSpace     = "sign_space"
	EventCreateSpace   = "create_space"
	EventUpdateSpace   = "update_space"
	EventDeleteSpace   = "delete_space"
	EventDeleteEntry   = "delete_entry"
)

// MetaSpaceID is the metadata field every event carries.
const MetaSpaceID = "spaceId"

// AnalyticsEvent is an append-only log record. Events are never mutated;
// aggregates are derived by filtering the log.
type AnalyticsEvent struct {
	ID        string         `json:"id"`
	TenantID  string         `json:"tenantId"`
	Type      string         `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata"`
}

// EntityID returns the event id.
func (e AnalyticsEvent) EntityID() string { return e.ID }

// SpaceID returns metadata.spaceId, or "" when absent or not a string.
func (e AnalyticsEvent) SpaceID() string {
	s, _ := e.Metadata[MetaSpaceID].(string)
	return s
}
