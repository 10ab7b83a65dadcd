// This file implements signature entries: creation, signing, soft delete
// and the visibility-enforcing read paths.

package directory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/mesh-intelligence/echosign/pkg/types"
)

// liveEntries is the single read path over the entries collection. It
// drops soft-deleted entries before keep sees them and returns the rest
// newest first.
func (d *Directory) liveEntries(ctx context.Context, keep func(types.SignatureEntry) bool) ([]types.SignatureEntry, error) {
	entries, err := d.entries.Filter(ctx, func(e types.SignatureEntry) bool {
		return e.Live() && keep(e)
	})
	if err != nil {
		return nil, err
	}
	return newestFirst(entries), nil
}

// newestFirst orders entries by CreatedAt descending. Entries with equal
// timestamps keep reverse insertion order, so the later insert comes first.
func newestFirst(entries []types.SignatureEntry) []types.SignatureEntry {
	slices.Reverse(entries)
	slices.SortStableFunc(entries, func(a, b types.SignatureEntry) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return entries
}

// CreateEntry appends entry with a fresh id and CreatedAt. UserID may be
// empty for an anonymous signer. An empty visibility means public.
func (d *Directory) CreateEntry(ctx context.Context, entry types.SignatureEntry) (*types.SignatureEntry, error) {
	if err := validateEntry(&entry); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	return d.createEntry(ctx, entry)
}

func validateEntry(entry *types.SignatureEntry) error {
	if entry.TenantID == "" || entry.SpaceID == "" {
		return fmt.Errorf("%w: entry needs tenant and space", types.ErrValidation)
	}
	if entry.Visibility == "" {
		entry.Visibility = types.VisibilityPublic
	}
	if !entry.Visibility.Valid() {
		return fmt.Errorf("%w: unknown visibility %q", types.ErrValidation, entry.Visibility)
	}
	return nil
}

func (d *Directory) createEntry(ctx context.Context, entry types.SignatureEntry) (*types.SignatureEntry, error) {
	id, err := d.id()
	if err != nil {
		return nil, err
	}
	entry.ID = id
	entry.CreatedAt = d.timestamp()
	entry.DeletedAt = nil
	if err := d.entries.Append(ctx, entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// SoftDeleteEntry stamps DeletedAt on the entry and records delete_entry.
// Deleting an already deleted entry changes nothing. An unknown id is
// ErrNotFound.
func (d *Directory) SoftDeleteEntry(ctx context.Context, entryID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	entry, ok, err := d.entries.Get(ctx, entryID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: entry %q", types.ErrNotFound, entryID)
	}
	if !entry.Live() {
		return nil
	}

	now := d.timestamp()
	if _, err := d.entries.Update(ctx, entryID, func(e *types.SignatureEntry) error {
		e.DeletedAt = &now
		return nil
	}); err != nil {
		return err
	}
	d.recordEvent(ctx, entry.TenantID, types.EventDeleteEntry, map[string]any{
		"entryId":         entryID,
		types.MetaSpaceID: entry.SpaceID,
	})
	return nil
}

// GetEntry returns the live entry with id. Soft-deleted and unknown
// entries are ErrNotFound. Entries of deleted spaces are still returned.
func (d *Directory) GetEntry(ctx context.Context, entryID string) (*types.SignatureEntry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	entry, ok, err := d.entries.Get(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if !ok || !entry.Live() {
		return nil, fmt.Errorf("%w: entry %q", types.ErrNotFound, entryID)
	}
	return &entry, nil
}

// LookupEntry returns the stored entry with id whether or not it is
// soft-deleted. Unknown ids are ErrNotFound. It serves owner commands such
// as deletion; read paths use GetEntry.
func (d *Directory) LookupEntry(ctx context.Context, entryID string) (*types.SignatureEntry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	entry, ok, err := d.entries.Get(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: entry %q", types.ErrNotFound, entryID)
	}
	return &entry, nil
}

// ListEntriesForViewer returns the entries of a space that viewerUserID
// may see, newest first. Private entries are included only for their
// signer; an empty viewer sees no private entries.
func (d *Directory) ListEntriesForViewer(ctx context.Context, spaceID, viewerUserID string) ([]types.SignatureEntry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.liveEntries(ctx, func(e types.SignatureEntry) bool {
		return e.SpaceID == spaceID && e.VisibleTo(viewerUserID)
	})
}

// ListPublicEntriesByTenant returns the tenant's live public entries
// across all spaces, newest first.
func (d *Directory) ListPublicEntriesByTenant(ctx context.Context, tenantID string) ([]types.SignatureEntry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.publicEntriesByTenant(ctx, tenantID)
}

func (d *Directory) publicEntriesByTenant(ctx context.Context, tenantID string) ([]types.SignatureEntry, error) {
	return d.liveEntries(ctx, func(e types.SignatureEntry) bool {
		return e.TenantID == tenantID && e.Visibility == types.VisibilityPublic
	})
}

// ListEntriesByTenant returns every live entry of the tenant, including
// entries whose space was deleted, newest first. It is the owner's
// dashboard view and applies no visibility filter.
func (d *Directory) ListEntriesByTenant(ctx context.Context, tenantID string) ([]types.SignatureEntry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.liveEntries(ctx, func(e types.SignatureEntry) bool {
		return e.TenantID == tenantID
	})
}

// SignRequest is a visitor's signing of a space.
type SignRequest struct {
	SpaceID       string           `json:"spaceId"`
	Name          string           `json:"name"`
	Email         string           `json:"email,omitempty"`
	SignatureData string           `json:"signatureData"`
	MemoryText    string           `json:"memoryText,omitempty"`
	Visibility    types.Visibility `json:"visibility,omitempty"`
}

// SignResult is the entry created by Sign and the user it is attributed to.
type SignResult struct {
	Entry types.SignatureEntry `json:"entry"`
	User  types.User           `json:"user"`
}

// Sign records a visitor's signature on a space. The session's current
// user is reused when the name matches; otherwise a guest user is created
// and becomes the session's current user. sign_space is recorded with the
// space id and visibility. Only the tenant owner may sign a private space;
// anyone else gets ErrForbidden.
func (d *Directory) Sign(ctx context.Context, sess types.SessionContext, req SignRequest) (*SignResult, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: signer name is required", types.ErrValidation)
	}
	if req.SignatureData == "" {
		return nil, fmt.Errorf("%w: signature is required", types.ErrValidation)
	}
	visibility, err := types.ParseVisibility(string(req.Visibility), types.VisibilityPublic)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	space, err := d.getSpace(ctx, req.SpaceID)
	if err != nil {
		return nil, err
	}

	user, err := d.currentUser(ctx, sess.SessionID)
	if err != nil {
		return nil, err
	}
	if space.Visibility == types.VisibilityPrivate {
		tenant, ok, err := d.tenants.Get(ctx, space.TenantID)
		if err != nil {
			return nil, err
		}
		if !ok || !IsOwner(user, &tenant) {
			return nil, fmt.Errorf("%w: space %q is private", types.ErrForbidden, space.ID)
		}
	}
	if user == nil || user.Name != name {
		user, err = d.newGuest(ctx, space.TenantID, name, strings.TrimSpace(req.Email))
		if err != nil {
			return nil, err
		}
		if sess.SessionID != "" {
			if err := d.setCurrentUser(ctx, sess.SessionID, *user); err != nil {
				return nil, err
			}
		}
	}

	entry, err := d.createEntry(ctx, types.SignatureEntry{
		TenantID:      space.TenantID,
		SpaceID:       space.ID,
		UserID:        user.ID,
		UserName:      name,
		UserEmail:     strings.TrimSpace(req.Email),
		SignatureData: req.SignatureData,
		MemoryText:    strings.TrimSpace(req.MemoryText),
		Visibility:    visibility,
	})
	if err != nil {
		return nil, err
	}
	d.recordEvent(ctx, space.TenantID, types.EventSignSpace, map[string]any{
		types.MetaSpaceID: space.ID,
		"visibility":      string(visibility),
	})
	return &SignResult{Entry: *entry, User: *user}, nil
}

func (d *Directory) newGuest(ctx context.Context, tenantID, name, email string) (*types.User, error) {
	id, err := d.id()
	if err != nil {
		return nil, err
	}
	user := types.User{
		ID:        id,
		TenantID:  tenantID,
		Name:      name,
		Email:     email,
		Role:      types.RoleGuest,
		CreatedAt: d.timestamp(),
	}
	if err := d.users.Upsert(ctx, user); err != nil {
		return nil, err
	}
	return &user, nil
}

// lastEntry returns the newest of entries, or nil. entries must already be
// newest first.
func lastEntry(entries []types.SignatureEntry) *types.SignatureEntry {
	if len(entries) == 0 {
		return nil
	}
	e := entries[0]
	return &e
}

// lastSigned returns the CreatedAt of the newest entry, or nil.
func lastSigned(entries []types.SignatureEntry) *time.Time {
	if e := lastEntry(entries); e != nil {
		t := e.CreatedAt
		return &t
	}
	return nil
}
