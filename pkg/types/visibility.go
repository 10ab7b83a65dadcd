package types

import "fmt"

// Visibility controls who can see a space or a signature entry.
type Visibility string

// Visibility values. The wire format is lowercase.
const (
	VisibilityPublic   Visibility = "public"
	VisibilityUnlisted Visibility = "unlisted"
	VisibilityPrivate  Visibility = "private"
)

// Valid reports whether v is one of the known visibility values.
func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilityUnlisted, VisibilityPrivate:
		return true
	}
	return false
}

// ParseVisibility converts s to a Visibility. An empty string yields
// defaultVis.
func ParseVisibility(s string, defaultVis Visibility) (Visibility, error) {
	if s == "" {
		return defaultVis, nil
	}
	v := Visibility(s)
	if !v.Valid() {
		return "", fmt.Errorf("%w: unknown visibility %q", ErrValidation, s)
	}
	return v, nil
}

// Role distinguishes the tenant owner from visitors who signed a wall.
type Role string

// Role values.
const (
	RoleOwner Role = "owner"
	RoleGuest Role = "guest"
)
