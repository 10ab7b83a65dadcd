// This file implements the date-seeded featured memory pick.

package directory

import (
	"context"
	"time"

	"github.com/mesh-intelligence/echosign/pkg/types"
)

// dateLayout is the canonical date string the seed is computed from.
const dateLayout = "2006-01-02"

// DateSeed sums the character codes of t's UTC calendar date formatted as
// YYYY-MM-DD. Neither the time of day nor t's location affects it, so every
// process observing the same instant computes the same seed.
func DateSeed(t time.Time) int {
	seed := 0
	for _, r := range t.UTC().Format(dateLayout) {
		seed += int(r)
	}
	return seed
}

// FeaturedIndex returns seed mod n, or -1 when n is zero.
func FeaturedIndex(seed, n int) int {
	if n <= 0 {
		return -1
	}
	return seed % n
}

// FeaturedPool returns the candidates for the featured memory: the
// tenant's live public entries with memory text, newest first.
func (d *Directory) FeaturedPool(ctx context.Context, tenantID string) ([]types.SignatureEntry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.featuredPool(ctx, tenantID)
}

func (d *Directory) featuredPool(ctx context.Context, tenantID string) ([]types.SignatureEntry, error) {
	public, err := d.publicEntriesByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	pool := public[:0]
	for _, e := range public {
		if e.MemoryText != "" {
			pool = append(pool, e)
		}
	}
	return pool, nil
}

// PickFeaturedMemory deterministically picks one entry from the featured
// pool for the calendar date of asOf. It returns nil when the pool is
// empty. The same pool and date always yield the same entry.
func (d *Directory) PickFeaturedMemory(ctx context.Context, tenantID string, asOf time.Time) (*types.SignatureEntry, error) {
	pool, err := d.FeaturedPool(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return pickFeatured(pool, asOf), nil
}

func pickFeatured(pool []types.SignatureEntry, asOf time.Time) *types.SignatureEntry {
	i := FeaturedIndex(DateSeed(asOf), len(pool))
	if i < 0 {
		return nil
	}
	e := pool[i]
	return &e
}
