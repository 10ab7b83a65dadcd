// This file defines the JSONL snapshot record format.
package sqlite

import "encoding/json"

// recordJSON is one line of a snapshot file. Value is embedded as raw JSON
// so the snapshot stays human-readable.
type recordJSON struct {
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	UpdatedAt string          `json:"updated_at"`
}
