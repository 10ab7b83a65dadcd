package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mesh-intelligence/echosign/pkg/types"
)

// LoadJSON decodes the value under key into a T. ok is false when the key
// is absent.
func LoadJSON[T any](ctx context.Context, s types.Store, key string) (T, bool, error) {
	var v T
	data, ok, err := s.Load(ctx, key)
	if err != nil || !ok {
		return v, false, err
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, false, fmt.Errorf("decoding %s: %w", key, err)
	}
	return v, true, nil
}

// SaveJSON encodes v and stores it under key.
func SaveJSON[T any](ctx context.Context, s types.Store, key string, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return s.Save(ctx, key, data)
}
