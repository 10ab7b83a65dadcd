// This file implements snapshot export and import between the database and
// a JSONL file, one key per line.
package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mesh-intelligence/echosign/pkg/types"
)

// Export writes every key to path as JSONL, ordered by key. Returns the
// number of records written.
func (b *Backend) Export(ctx context.Context, path string) (int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return 0, types.ErrStoreDetached
	}

	rows, err := b.db.QueryContext(ctx, selectAll)
	if err != nil {
		return 0, fmt.Errorf("query snapshot: %w", err)
	}
	defer rows.Close()

	var records []json.RawMessage
	for rows.Next() {
		var rec recordJSON
		var value string
		if err := rows.Scan(&rec.Key, &value, &rec.UpdatedAt); err != nil {
			return 0, fmt.Errorf("scanning row: %w", err)
		}
		if !json.Valid([]byte(value)) {
			// Values written by Save are always JSON; quote anything else
			// rather than corrupt the snapshot line.
			quoted, err := json.Marshal(value)
			if err != nil {
				return 0, fmt.Errorf("quoting %s: %w", rec.Key, err)
			}
			value = string(quoted)
		}
		rec.Value = json.RawMessage(value)
		line, err := json.Marshal(rec)
		if err != nil {
			return 0, fmt.Errorf("marshal %s: %w", rec.Key, err)
		}
		records = append(records, line)
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("iterating rows: %w", err)
	}

	if err := writeJSONL(path, records); err != nil {
		return 0, err
	}
	return len(records), nil
}

// Import loads a JSONL snapshot into the database, replacing the keys it
// names. Loading is transactional: either every record is applied or none.
// Malformed lines and records without a key are skipped. Returns the
// number of records applied.
func (b *Backend) Import(ctx context.Context, path string) (int, error) {
	records, err := readJSONL(path)
	if err != nil {
		return 0, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return 0, types.ErrStoreDetached
	}

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning import transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertValue)
	if err != nil {
		return 0, fmt.Errorf("preparing import: %w", err)
	}
	defer stmt.Close()

	applied := 0
	for _, raw := range records {
		var rec recordJSON
		if err := json.Unmarshal(raw, &rec); err != nil || rec.Key == "" || len(rec.Value) == 0 {
			continue
		}
		updatedAt := rec.UpdatedAt
		if updatedAt == "" {
			updatedAt = b.now().UTC().Format(time.RFC3339Nano)
		}
		if _, err := stmt.ExecContext(ctx, rec.Key, string(rec.Value), updatedAt); err != nil {
			return 0, fmt.Errorf("importing %s: %w", rec.Key, err)
		}
		applied++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing import: %w", err)
	}
	return applied, nil
}
