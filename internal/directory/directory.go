// Package directory implements the tenant directory: tenants, users,
// spaces, signature entries and the analytics log of a multi-tenant
// signature wall, persisted through a types.Store.
//
// Every collection is a single JSON array in the store. Operations load
// the collection, apply their change and write it back immediately; there
// are no transactions spanning collections. Within one Directory a mutex
// serializes read-modify-write cycles. Separate processes sharing a store
// are last-write-wins per collection.
package directory

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/echosign/pkg/types"
)

// Directory is the tenant directory. Create one with New.
type Directory struct {
	mu     sync.Mutex
	store  types.Store
	logger *zap.Logger
	now    func() time.Time
	newID  func() (string, error)

	tenants   *Collection[types.Tenant]
	users     *Collection[types.User]
	spaces    *Collection[types.Space]
	entries   *Collection[types.SignatureEntry]
	analytics *Collection[types.AnalyticsEvent]
}

// Option configures a Directory.
type Option func(*Directory)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(d *Directory) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(d *Directory) { d.now = now }
}

// WithIDGenerator replaces the UUID v7 generator, for tests.
func WithIDGenerator(newID func() (string, error)) Option {
	return func(d *Directory) { d.newID = newID }
}

// New returns a Directory reading and writing through store.
func New(store types.Store, opts ...Option) *Directory {
	d := &Directory{
		store:  store,
		logger: zap.NewNop(),
		now:    time.Now,
		newID:  newUUIDv7,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.tenants = NewCollection[types.Tenant](store, types.KeyTenants)
	d.users = NewCollection[types.User](store, types.KeyUsers)
	d.spaces = NewCollection[types.Space](store, types.KeySpaces)
	d.entries = NewCollection[types.SignatureEntry](store, types.KeyEntries)
	d.analytics = NewCollection[types.AnalyticsEvent](store, types.KeyAnalytics)
	return d
}

// Store returns the underlying store.
func (d *Directory) Store() types.Store { return d.store }

func (d *Directory) timestamp() time.Time { return d.now().UTC() }

func (d *Directory) id() (string, error) {
	id, err := d.newID()
	if err != nil {
		return "", fmt.Errorf("generating id: %w", err)
	}
	return id, nil
}

func newUUIDv7() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
