// This file implements per-session "current user" and "current tenant"
// pointers. Each session id owns its own pair of keys in the store, so
// sessions never observe each other's pointers.

package directory

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/echosign/internal/storage"
	"github.com/mesh-intelligence/echosign/pkg/types"
)

const (
	pointerCurrentUser   = "current_user"
	pointerCurrentTenant = "current_tenant"
)

func sessionKey(sessionID, pointer string) string {
	return types.KeySessionPrefix + sessionID + "/" + pointer
}

// NewSessionID returns a fresh opaque session id.
func (d *Directory) NewSessionID() (string, error) {
	return d.id()
}

// Session resolves the pointers stored for sessionID into a
// SessionContext. An unknown or empty session yields a context with only
// SessionID set.
func (d *Directory) Session(ctx context.Context, sessionID string) (types.SessionContext, error) {
	sess := types.SessionContext{SessionID: sessionID}
	if sessionID == "" {
		return sess, nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	user, err := d.currentUser(ctx, sessionID)
	if err != nil {
		return sess, err
	}
	if user != nil {
		sess.UserID = user.ID
	}
	tenant, err := d.currentTenant(ctx, sessionID)
	if err != nil {
		return sess, err
	}
	if tenant != nil {
		sess.TenantID = tenant.ID
	}
	return sess, nil
}

// UpsertUser inserts user, or replaces the stored user with the same id in
// place. Calling it twice with one id never creates a duplicate.
func (d *Directory) UpsertUser(ctx context.Context, user types.User) error {
	if user.ID == "" {
		return fmt.Errorf("%w: user id is required", types.ErrValidation)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.users.Upsert(ctx, user)
}

// GetUser returns the user with id, or ErrNotFound.
func (d *Directory) GetUser(ctx context.Context, id string) (*types.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	user, ok, err := d.users.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: user %q", types.ErrNotFound, id)
	}
	return &user, nil
}

// CurrentUser returns the session's current user, or nil. A stored
// pointer missing its id or tenant id is treated as corrupted: it is
// cleared and nil is returned.
func (d *Directory) CurrentUser(ctx context.Context, sessionID string) (*types.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.currentUser(ctx, sessionID)
}

func (d *Directory) currentUser(ctx context.Context, sessionID string) (*types.User, error) {
	if sessionID == "" {
		return nil, nil
	}
	key := sessionKey(sessionID, pointerCurrentUser)
	data, ok, err := d.store.Load(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("loading current user: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var user *types.User
	if err := json.Unmarshal(data, &user); err != nil || !user.Complete() {
		return nil, d.clearCorrupted(ctx, sessionID, pointerCurrentUser, err)
	}
	return user, nil
}

// clearCorrupted removes an unusable session pointer. The pointer then
// reads as absent.
func (d *Directory) clearCorrupted(ctx context.Context, sessionID, pointer string, cause error) error {
	d.logger.Warn("clearing corrupted session pointer",
		zap.String("session", sessionID),
		zap.String("pointer", pointer),
		zap.Error(cause))
	if err := d.store.Remove(ctx, sessionKey(sessionID, pointer)); err != nil {
		return fmt.Errorf("clearing %s: %w", pointer, err)
	}
	return nil
}

// SetCurrentUser points the session at user.
func (d *Directory) SetCurrentUser(ctx context.Context, sessionID string, user types.User) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.setCurrentUser(ctx, sessionID, user)
}

func (d *Directory) setCurrentUser(ctx context.Context, sessionID string, user types.User) error {
	if sessionID == "" {
		return fmt.Errorf("%w: session id is required", types.ErrValidation)
	}
	if !user.Complete() {
		return fmt.Errorf("%w: current user needs id and tenant id", types.ErrValidation)
	}
	return storage.SaveJSON(ctx, d.store, sessionKey(sessionID, pointerCurrentUser), user)
}

// ClearCurrentUser removes the session's current user pointer.
func (d *Directory) ClearCurrentUser(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.store.Remove(ctx, sessionKey(sessionID, pointerCurrentUser))
}

// CurrentTenant returns the session's current tenant as currently stored,
// or nil. A pointer to a tenant that no longer exists is cleared.
func (d *Directory) CurrentTenant(ctx context.Context, sessionID string) (*types.Tenant, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.currentTenant(ctx, sessionID)
}

func (d *Directory) currentTenant(ctx context.Context, sessionID string) (*types.Tenant, error) {
	if sessionID == "" {
		return nil, nil
	}
	data, ok, err := d.store.Load(ctx, sessionKey(sessionID, pointerCurrentTenant))
	if err != nil {
		return nil, fmt.Errorf("loading current tenant: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var pointer *types.Tenant
	if err := json.Unmarshal(data, &pointer); err != nil || pointer == nil || pointer.ID == "" {
		return nil, d.clearCorrupted(ctx, sessionID, pointerCurrentTenant, err)
	}
	tenant, found, err := d.tenants.Get(ctx, pointer.ID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, d.clearCorrupted(ctx, sessionID, pointerCurrentTenant, types.ErrNotFound)
	}
	return &tenant, nil
}

// SetCurrentTenant points the session at tenant.
func (d *Directory) SetCurrentTenant(ctx context.Context, sessionID string, tenant types.Tenant) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.setCurrentTenant(ctx, sessionID, tenant)
}

func (d *Directory) setCurrentTenant(ctx context.Context, sessionID string, tenant types.Tenant) error {
	if sessionID == "" {
		return fmt.Errorf("%w: session id is required", types.ErrValidation)
	}
	if tenant.ID == "" {
		return fmt.Errorf("%w: tenant id is required", types.ErrValidation)
	}
	return storage.SaveJSON(ctx, d.store, sessionKey(sessionID, pointerCurrentTenant), tenant)
}

// Logout clears both session pointers.
func (d *Directory) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.store.Remove(ctx, sessionKey(sessionID, pointerCurrentUser)); err != nil {
		return fmt.Errorf("clearing current user: %w", err)
	}
	if err := d.store.Remove(ctx, sessionKey(sessionID, pointerCurrentTenant)); err != nil {
		return fmt.Errorf("clearing current tenant: %w", err)
	}
	return nil
}

// IsOwner reports whether user owns tenant.
func IsOwner(user *types.User, tenant *types.Tenant) bool {
	return user != nil && tenant != nil && user.ID != "" && user.ID == tenant.OwnerID
}
