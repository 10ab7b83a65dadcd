// This file implements JSONL snapshot export and import for any Store.
// Backends with a native snapshot (SQLite) are used directly; the others
// are walked key by key.

package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/mesh-intelligence/echosign/pkg/types"
)

// Snapshotter is implemented by backends that export and import JSONL
// snapshots natively.
type Snapshotter interface {
	Export(ctx context.Context, path string) (int, error)
	Import(ctx context.Context, path string) (int, error)
}

// KeyLister is implemented by backends that can enumerate their keys.
type KeyLister interface {
	Keys() []string
}

// snapshotRecord is one line of a snapshot file. The layout matches the
// SQLite backend's native snapshot, so files move freely between backends.
type snapshotRecord struct {
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	UpdatedAt string          `json:"updated_at,omitempty"`
}

// Export writes store's contents to path as JSONL and returns the number
// of records written. Stores that cannot enumerate keys export the
// directory collections only.
func Export(ctx context.Context, store types.Store, path string) (int, error) {
	if s, ok := store.(Snapshotter); ok {
		return s.Export(ctx, path)
	}

	keys := types.CollectionKeys
	if l, ok := store.(KeyLister); ok {
		keys = l.Keys()
	}
	keys = slices.Sorted(slices.Values(keys))

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("creating snapshot dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("creating snapshot: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	written := 0
	for _, key := range keys {
		value, ok, err := store.Load(ctx, key)
		if err != nil {
			return written, fmt.Errorf("loading %s: %w", key, err)
		}
		if !ok {
			continue
		}
		if !json.Valid(value) {
			if value, err = json.Marshal(string(value)); err != nil {
				return written, fmt.Errorf("quoting %s: %w", key, err)
			}
		}
		if err := enc.Encode(snapshotRecord{Key: key, Value: value}); err != nil {
			return written, fmt.Errorf("writing %s: %w", key, err)
		}
		written++
	}
	if err := w.Flush(); err != nil {
		return written, fmt.Errorf("flushing snapshot: %w", err)
	}
	return written, f.Sync()
}

// Import loads a JSONL snapshot from path into store, replacing the keys
// it names. Malformed lines are skipped. Returns the number of records
// applied.
func Import(ctx context.Context, store types.Store, path string) (int, error) {
	if s, ok := store.(Snapshotter); ok {
		return s.Import(ctx, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	applied := 0
	for scanner.Scan() {
		var rec snapshotRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil || rec.Key == "" || len(rec.Value) == 0 {
			continue
		}
		if err := store.Save(ctx, rec.Key, rec.Value); err != nil {
			return applied, fmt.Errorf("importing %s: %w", rec.Key, err)
		}
		applied++
	}
	if err := scanner.Err(); err != nil {
		return applied, fmt.Errorf("scanning %s: %w", path, err)
	}
	return applied, nil
}
