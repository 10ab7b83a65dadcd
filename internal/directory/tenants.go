// This file implements tenant identity, lookup, signup and profile edits.

package directory

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/mesh-intelligence/echosign/pkg/types"
)

// MinSubdomainLength is the shortest accepted normalized subdomain.
const MinSubdomainLength = 3

var subdomainInvalid = regexp.MustCompile(`[^a-z0-9-]`)

// NormalizeSubdomain lowercases raw and strips every character outside
// [a-z0-9-].
func NormalizeSubdomain(raw string) string {
	return subdomainInvalid.ReplaceAllString(strings.ToLower(raw), "")
}

// validateSubdomain normalizes raw and checks length and uniqueness
// against tenants.
func validateSubdomain(raw string, tenants []types.Tenant) (string, error) {
	sub := NormalizeSubdomain(raw)
	if len(sub) < MinSubdomainLength {
		return sub, fmt.Errorf("%w: subdomain %q must be at least %d characters", types.ErrValidation, sub, MinSubdomainLength)
	}
	if findBySubdomain(tenants, sub) != nil {
		return sub, fmt.Errorf("%w: subdomain %q is taken", types.ErrConflict, sub)
	}
	return sub, nil
}

func findBySubdomain(tenants []types.Tenant, sub string) *types.Tenant {
	for i := range tenants {
		if strings.EqualFold(tenants[i].Subdomain, sub) {
			return &tenants[i]
		}
	}
	return nil
}

// CreateTenant registers a tenant owned by ownerID and makes it the
// session's current tenant. It fails with ErrValidation when the
// normalized subdomain is shorter than MinSubdomainLength and with
// ErrConflict when another tenant already holds it.
func (d *Directory) CreateTenant(ctx context.Context, sess types.SessionContext, subdomain, displayName, ownerID string) (*types.Tenant, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	id, err := d.id()
	if err != nil {
		return nil, err
	}
	return d.createTenant(ctx, sess, id, subdomain, displayName, ownerID)
}

func (d *Directory) createTenant(ctx context.Context, sess types.SessionContext, id, subdomain, displayName, ownerID string) (*types.Tenant, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner id is required", types.ErrValidation)
	}
	tenants, err := d.tenants.All(ctx)
	if err != nil {
		return nil, err
	}
	sub, err := validateSubdomain(subdomain, tenants)
	if err != nil {
		return nil, err
	}
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		displayName = sub
	}

	tenant := types.Tenant{
		ID:          id,
		Subdomain:   sub,
		DisplayName: displayName,
		OwnerID:     ownerID,
		CreatedAt:   d.timestamp(),
	}
	if err := d.tenants.Replace(ctx, append(tenants, tenant)); err != nil {
		return nil, err
	}
	if sess.SessionID != "" {
		if err := d.setCurrentTenant(ctx, sess.SessionID, tenant); err != nil {
			return nil, err
		}
	}
	return &tenant, nil
}

// FindTenantBySubdomain returns the tenant whose subdomain matches
// case-insensitively, or nil.
func (d *Directory) FindTenantBySubdomain(ctx context.Context, subdomain string) (*types.Tenant, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.findTenantBySubdomain(ctx, subdomain)
}

func (d *Directory) findTenantBySubdomain(ctx context.Context, subdomain string) (*types.Tenant, error) {
	sub := strings.ToLower(strings.TrimSpace(subdomain))
	if sub == "" {
		return nil, nil
	}
	tenants, err := d.tenants.All(ctx)
	if err != nil {
		return nil, err
	}
	return findBySubdomain(tenants, sub), nil
}

// GetTenant returns the tenant with id, or ErrNotFound.
func (d *Directory) GetTenant(ctx context.Context, id string) (*types.Tenant, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	tenant, ok, err := d.tenants.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: tenant %q", types.ErrNotFound, id)
	}
	return &tenant, nil
}

// ListTenants returns every tenant in creation order.
func (d *Directory) ListTenants(ctx context.Context) ([]types.Tenant, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.tenants.All(ctx)
}

// ResolveHostToTenant maps a host label to a tenant. An empty label falls
// back to the session's current tenant.
func (d *Directory) ResolveHostToTenant(ctx context.Context, sess types.SessionContext, hostLabel string) (*types.Tenant, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if hostLabel == "" {
		return d.currentTenant(ctx, sess.SessionID)
	}
	return d.findTenantBySubdomain(ctx, hostLabel)
}

// CheckSubdomain normalizes raw and reports whether it could be claimed.
func (d *Directory) CheckSubdomain(ctx context.Context, raw string) (string, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	tenants, err := d.tenants.All(ctx)
	if err != nil {
		return "", false, err
	}
	sub := NormalizeSubdomain(raw)
	if len(sub) < MinSubdomainLength {
		return sub, false, nil
	}
	return sub, findBySubdomain(tenants, sub) == nil, nil
}

// SignupRequest is the input of Signup.
type SignupRequest struct {
	OwnerName   string `json:"ownerName"`
	OwnerEmail  string `json:"ownerEmail,omitempty"`
	Subdomain   string `json:"subdomain"`
	DisplayName string `json:"displayName,omitempty"`
}

// SignupResult is the tenant and owner created by Signup.
type SignupResult struct {
	Tenant types.Tenant `json:"tenant"`
	Owner  types.User   `json:"owner"`
}

// Signup creates an owner user and its tenant, makes both current for the
// session and records tenant_created. All validation happens before the
// first write.
func (d *Directory) Signup(ctx context.Context, sess types.SessionContext, req SignupRequest) (*SignupResult, error) {
	ownerName := strings.TrimSpace(req.OwnerName)
	if ownerName == "" {
		return nil, fmt.Errorf("%w: owner name is required", types.ErrValidation)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	tenants, err := d.tenants.All(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := validateSubdomain(req.Subdomain, tenants); err != nil {
		return nil, err
	}

	tenantID, err := d.id()
	if err != nil {
		return nil, err
	}
	ownerID, err := d.id()
	if err != nil {
		return nil, err
	}
	owner := types.User{
		ID:        ownerID,
		TenantID:  tenantID,
		Name:      ownerName,
		Email:     strings.TrimSpace(req.OwnerEmail),
		Role:      types.RoleOwner,
		CreatedAt: d.timestamp(),
	}
	if err := d.users.Upsert(ctx, owner); err != nil {
		return nil, err
	}
	tenant, err := d.createTenant(ctx, sess, tenantID, req.Subdomain, req.DisplayName, ownerID)
	if err != nil {
		return nil, err
	}
	if sess.SessionID != "" {
		if err := d.setCurrentUser(ctx, sess.SessionID, owner); err != nil {
			return nil, err
		}
	}
	d.recordEvent(ctx, tenant.ID, types.EventTenantCreated, map[string]any{"subdomain": tenant.Subdomain})

	return &SignupResult{Tenant: *tenant, Owner: owner}, nil
}

// UpdateTenant merges upd into the tenant's profile. Only the owner named
// by sess.UserID may edit; the subdomain never changes.
func (d *Directory) UpdateTenant(ctx context.Context, sess types.SessionContext, tenantID string, upd types.TenantUpdate) (*types.Tenant, error) {
	if upd.DisplayName != nil && strings.TrimSpace(*upd.DisplayName) == "" {
		return nil, fmt.Errorf("%w: display name must not be empty", types.ErrValidation)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	tenant, err := d.tenants.Update(ctx, tenantID, func(t *types.Tenant) error {
		if sess.UserID == "" || sess.UserID != t.OwnerID {
			return fmt.Errorf("%w: only the owner may edit tenant %q", types.ErrForbidden, t.ID)
		}
		if upd.DisplayName != nil {
			t.DisplayName = strings.TrimSpace(*upd.DisplayName)
		}
		if upd.Description != nil {
			t.Description = *upd.Description
		}
		if upd.Branding != nil {
			b := *upd.Branding
			t.Branding = &b
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}
