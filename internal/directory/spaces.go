// This file implements space creation, edits, deletion and live stats.

package directory

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/mesh-intelligence/echosign/pkg/types"
)

var slugSeparators = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases s, collapses every run of non-alphanumerics into a
// single hyphen and trims hyphens from both ends.
func Slugify(s string) string {
	return strings.Trim(slugSeparators.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

// CreateSpace adds a space to tenantID. An empty slug is derived from
// name. It fails with ErrConflict when the tenant already has a space with
// the slug.
func (d *Directory) CreateSpace(ctx context.Context, tenantID, name, slug string, visibility types.Visibility, description string) (*types.Space, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: space name is required", types.ErrValidation)
	}
	if slug == "" {
		slug = name
	}
	slug = Slugify(slug)
	if slug == "" {
		return nil, fmt.Errorf("%w: space slug is empty", types.ErrValidation)
	}
	if visibility == "" {
		visibility = types.VisibilityPublic
	}
	if !visibility.Valid() {
		return nil, fmt.Errorf("%w: unknown visibility %q", types.ErrValidation, visibility)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok, err := d.tenants.Get(ctx, tenantID); err != nil {
		return nil, err
	} else if !ok {
		return nil, fmt.Errorf("%w: tenant %q", types.ErrNotFound, tenantID)
	}

	spaces, err := d.spaces.All(ctx)
	if err != nil {
		return nil, err
	}
	for _, s := range spaces {
		if s.TenantID == tenantID && s.Slug == slug {
			return nil, fmt.Errorf("%w: space slug %q already exists", types.ErrConflict, slug)
		}
	}

	id, err := d.id()
	if err != nil {
		return nil, err
	}
	space := types.Space{
		ID:          id,
		TenantID:    tenantID,
		Name:        name,
		Slug:        slug,
		Description: strings.TrimSpace(description),
		Visibility:  visibility,
		CreatedAt:   d.timestamp(),
	}
	if err := d.spaces.Replace(ctx, append(spaces, space)); err != nil {
		return nil, err
	}
	d.recordEvent(ctx, tenantID, types.EventCreateSpace, map[string]any{types.MetaSpaceID: id})
	return &space, nil
}

// UpdateSpace merges upd into the space and bumps UpdatedAt. Fields left
// nil keep their value; the slug never changes.
func (d *Directory) UpdateSpace(ctx context.Context, spaceID string, upd types.SpaceUpdate) (*types.Space, error) {
	if upd.Name != nil && strings.TrimSpace(*upd.Name) == "" {
		return nil, fmt.Errorf("%w: space name must not be empty", types.ErrValidation)
	}
	if upd.Visibility != nil && !upd.Visibility.Valid() {
		return nil, fmt.Errorf("%w: unknown visibility %q", types.ErrValidation, *upd.Visibility)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	space, err := d.spaces.Update(ctx, spaceID, func(s *types.Space) error {
		if upd.Name != nil {
			s.Name = strings.TrimSpace(*upd.Name)
		}
		if upd.Description != nil {
			s.Description = strings.TrimSpace(*upd.Description)
		}
		if upd.Visibility != nil {
			s.Visibility = *upd.Visibility
		}
		now := d.timestamp()
		s.UpdatedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	d.recordEvent(ctx, space.TenantID, types.EventUpdateSpace, map[string]any{types.MetaSpaceID: space.ID})
	return &space, nil
}

// DeleteSpace removes the space record. Its entries stay in storage and
// remain reachable by id.
func (d *Directory) DeleteSpace(ctx context.Context, spaceID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	space, ok, err := d.spaces.Get(ctx, spaceID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: space %q", types.ErrNotFound, spaceID)
	}
	if _, err := d.spaces.Delete(ctx, spaceID); err != nil {
		return err
	}
	d.recordEvent(ctx, space.TenantID, types.EventDeleteSpace, map[string]any{types.MetaSpaceID: spaceID})
	return nil
}

// GetSpace returns the space with id, or ErrNotFound.
func (d *Directory) GetSpace(ctx context.Context, spaceID string) (*types.Space, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.getSpace(ctx, spaceID)
}

func (d *Directory) getSpace(ctx context.Context, spaceID string) (*types.Space, error) {
	space, ok, err := d.spaces.Get(ctx, spaceID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: space %q", types.ErrNotFound, spaceID)
	}
	return &space, nil
}

// FindSpaceBySlug returns the tenant's space with slug, or nil.
func (d *Directory) FindSpaceBySlug(ctx context.Context, tenantID, slug string) (*types.Space, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	slug = Slugify(slug)
	spaces, err := d.spaces.Filter(ctx, func(s types.Space) bool {
		return s.TenantID == tenantID && s.Slug == slug
	})
	if err != nil || len(spaces) == 0 {
		return nil, err
	}
	return &spaces[0], nil
}

// ListSpacesByTenant returns the tenant's spaces in creation order. A
// non-empty visibility restricts the result to that visibility.
func (d *Directory) ListSpacesByTenant(ctx context.Context, tenantID string, visibility types.Visibility) ([]types.Space, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.spacesByTenant(ctx, tenantID, visibility)
}

func (d *Directory) spacesByTenant(ctx context.Context, tenantID string, visibility types.Visibility) ([]types.Space, error) {
	return d.spaces.Filter(ctx, func(s types.Space) bool {
		return s.TenantID == tenantID && (visibility == "" || s.Visibility == visibility)
	})
}

// ComputeSpaceStats counts the live entries of a space and the public ones
// among them.
func (d *Directory) ComputeSpaceStats(ctx context.Context, spaceID string) (types.SpaceStats, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	entries, err := d.liveEntries(ctx, func(e types.SignatureEntry) bool { return e.SpaceID == spaceID })
	if err != nil {
		return types.SpaceStats{}, err
	}
	return spaceStats(spaceID, entries), nil
}

func spaceStats(spaceID string, entries []types.SignatureEntry) types.SpaceStats {
	stats := types.SpaceStats{SpaceID: spaceID}
	for _, e := range entries {
		if e.SpaceID != spaceID || !e.Live() {
			continue
		}
		stats.SignatureCount++
		if e.Visibility == types.VisibilityPublic {
			stats.PublicCount++
		}
	}
	return stats
}
