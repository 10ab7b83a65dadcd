// This file implements the generic collection accessor over a types.Store.

package directory

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mesh-intelligence/echosign/pkg/types"
)

// Entity is anything stored in a Collection.
type Entity interface {
	EntityID() string
}

// Collection is one entity collection stored as a JSON array under a
// single key. It holds no cache: every call reads the store.
type Collection[T Entity] struct {
	store types.Store
	key   string
}

// NewCollection binds a collection to key in store.
func NewCollection[T Entity](store types.Store, key string) *Collection[T] {
	return &Collection[T]{store: store, key: key}
}

// All returns every item in insertion order. A missing key is an empty
// collection; an undecodable one is ErrCorruptedState.
func (c *Collection[T]) All(ctx context.Context) ([]T, error) {
	data, ok, err := c.store.Load(ctx, c.key)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", c.key, err)
	}
	if !ok || len(data) == 0 {
		return nil, nil
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %v", types.ErrCorruptedState, c.key, err)
	}
	return items, nil
}

// Replace writes items as the whole collection.
func (c *Collection[T]) Replace(ctx context.Context, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", c.key, err)
	}
	if err := c.store.Save(ctx, c.key, data); err != nil {
		return fmt.Errorf("saving %s: %w", c.key, err)
	}
	return nil
}

// Append adds item at the end.
func (c *Collection[T]) Append(ctx context.Context, item T) error {
	items, err := c.All(ctx)
	if err != nil {
		return err
	}
	return c.Replace(ctx, append(items, item))
}

// Get returns the item with id. ok is false when absent.
func (c *Collection[T]) Get(ctx context.Context, id string) (T, bool, error) {
	var zero T
	items, err := c.All(ctx)
	if err != nil {
		return zero, false, err
	}
	for _, item := range items {
		if item.EntityID() == id {
			return item, true, nil
		}
	}
	return zero, false, nil
}

// Upsert replaces the item with the same id in place, or appends it.
func (c *Collection[T]) Upsert(ctx context.Context, item T) error {
	items, err := c.All(ctx)
	if err != nil {
		return err
	}
	for i := range items {
		if items[i].EntityID() == item.EntityID() {
			items[i] = item
			return c.Replace(ctx, items)
		}
	}
	return c.Replace(ctx, append(items, item))
}

// Update applies fn to the item with id and writes the collection back.
// It returns ErrNotFound when no item has id.
func (c *Collection[T]) Update(ctx context.Context, id string, fn func(*T) error) (T, error) {
	var zero T
	items, err := c.All(ctx)
	if err != nil {
		return zero, err
	}
	for i := range items {
		if items[i].EntityID() != id {
			continue
		}
		if err := fn(&items[i]); err != nil {
			return zero, err
		}
		if err := c.Replace(ctx, items); err != nil {
			return zero, err
		}
		return items[i], nil
	}
	return zero, fmt.Errorf("%w: %s %q", types.ErrNotFound, c.key, id)
}

// Delete removes the item with id. ok is false when it was absent.
func (c *Collection[T]) Delete(ctx context.Context, id string) (bool, error) {
	items, err := c.All(ctx)
	if err != nil {
		return false, err
	}
	for i := range items {
		if items[i].EntityID() == id {
			return true, c.Replace(ctx, append(items[:i], items[i+1:]...))
		}
	}
	return false, nil
}

// Filter returns the items for which keep is true, in insertion order.
func (c *Collection[T]) Filter(ctx context.Context, keep func(T) bool) ([]T, error) {
	items, err := c.All(ctx)
	if err != nil {
		return nil, err
	}
	var out []T
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out, nil
}
