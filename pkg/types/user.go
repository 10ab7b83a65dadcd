package types

import "time"

// User is either a tenant owner or a guest who signed a wall.
// Each tenant has exactly one owner and Tenant.OwnerID points at it.
type User struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenantId"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// EntityID returns the user id.
func (u User) EntityID() string { return u.ID }

// Complete reports whether the user carries the fields a session pointer
// needs to be usable.
func (u *User) Complete() bool {
	return u != nil && u.ID != "" && u.TenantID != ""
}

// SessionContext identifies the caller of a directory operation. It
// replaces the process-wide "current user/tenant" pointers so that several
// sessions can run side by side.
type SessionContext struct {
	SessionID string `json:"sessionId"`
	TenantID  string `json:"tenantId,omitempty"`
	UserID    string `json:"userId,omitempty"`
}
