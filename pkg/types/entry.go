package types

import "time"

// SignatureEntry is one visitor's mark on a space. SignatureData is an
// opaque encoded image; the directory never interprets it.
//
// An entry with DeletedAt set is soft-deleted: it stays in storage but is
// excluded from every read path.
type SignatureEntry struct {
	ID            string     `json:"id"`
	TenantID      string     `json:"tenantId"`
	SpaceID       string     `json:"spaceId"`
	UserID        string     `json:"userId,omitempty"`
	UserName      string     `json:"userName"`
	UserEmail     string     `json:"userEmail,omitempty"`
	SignatureData string     `json:"signatureData"`
	MemoryText    string     `json:"memoryText,omitempty"`
	Visibility    Visibility `json:"visibility"`
	CreatedAt     time.Time  `json:"createdAt"`
	DeletedAt     *time.Time `json:"deletedAt,omitempty"`
}

// EntityID returns the entry id.
func (e SignatureEntry) EntityID() string { return e.ID }

// Live reports whether the entry has not been soft-deleted.
func (e SignatureEntry) Live() bool { return e.DeletedAt == nil }

// VisibleTo reports whether viewerUserID may see the entry. Private entries
// are visible only to the signer; an empty viewer never matches, so private
// entries of anonymous signers are visible to nobody.
func (e SignatureEntry) VisibleTo(viewerUserID string) bool {
	if !e.Live() {
		return false
	}
	if e.Visibility != VisibilityPrivate {
		return true
	}
	return viewerUserID != "" && viewerUserID == e.UserID
}
