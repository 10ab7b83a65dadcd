package types

import "context"

// Store is the persistence adapter the directory reads and writes through.
// Values are opaque JSON documents keyed by string. Implementations must be
// reachable from every subdomain of the deployment, so a shared backend
// (SQLite file, Redis, Postgres) is used rather than per-origin storage.
type Store interface {
	// Load returns the value stored under key. ok is false when the key has
	// never been saved or was removed; that is not an error.
	Load(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Save stores value under key, replacing any previous value.
	Save(ctx context.Context, key string, value []byte) error

	// Remove deletes key. Removing a missing key succeeds.
	Remove(ctx context.Context, key string) error

	// Close releases backend resources. Idempotent.
	Close() error
}

// Storage keys for the directory collections. The whole collection is one
// JSON array per key; concurrent writers from separate processes are
// last-write-wins at this granularity.
const (
	KeyTenants   = "sig_dir_tenants"
	KeyUsers     = "sig_dir_users"
	KeySpaces    = "sig_dir_spaces"
	KeyEntries   = "sig_dir_entries"
	KeyAnalytics = "sig_dir_analytics"

	// KeySessionPrefix namespaces per-session pointers:
	// sig_dir_session/<session id>/current_user and .../current_tenant.
	KeySessionPrefix = "sig_dir_session/"
)

// CollectionKeys lists every collection key, in the order snapshots are
// exported.
var CollectionKeys = []string{
	KeyTenants,
	KeyUsers,
	KeySpaces,
	KeyEntries,
	KeyAnalytics,
}
