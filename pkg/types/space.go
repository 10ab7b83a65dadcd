package types

import "time"

// Space is a named wall belonging to one tenant. (TenantID, Slug) is unique.
type Space struct {
	ID          string     `json:"id"`
	TenantID    string     `json:"tenantId"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Description string     `json:"description,omitempty"`
	Visibility  Visibility `json:"visibility"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

// EntityID returns the space id.
func (s Space) EntityID() string { return s.ID }

// SpaceUpdate is a partial edit of a space. Nil fields keep their value.
type SpaceUpdate struct {
	Name        *string     `json:"name,omitempty"`
	Description *string     `json:"description,omitempty"`
	Visibility  *Visibility `json:"visibility,omitempty"`
}

// SpaceStats counts the live entries of a space.
type SpaceStats struct {
	SpaceID        string `json:"spaceId"`
	SignatureCount int    `json:"signatureCount"`
	PublicCount    int    `json:"publicCount"`
}
