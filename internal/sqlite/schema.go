// This file holds the SQLite schema for the key/value store.
package sqlite

// Schema DDL. Values are JSON documents stored as TEXT so they stay
// readable with the sqlite3 shell.
const (
	createKV = `CREATE TABLE IF NOT EXISTS kv (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	idxKVUpdated = `CREATE INDEX IF NOT EXISTS idx_kv_updated_at ON kv(updated_at);`
)

// schemaDDL lists all statements executed on Attach, in order.
var schemaDDL = []string{
	createKV,
	idxKVUpdated,
}

// Queries used by the backend.
const (
	selectValue = `SELECT value FROM kv WHERE key = ?`
	upsertValue = `INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	deleteValue = `DELETE FROM kv WHERE key = ?`
	selectAll   = `SELECT key, value, updated_at FROM kv ORDER BY key`
)
