package directory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/echosign/internal/memory"
	"github.com/mesh-intelligence/echosign/pkg/types"
)

func TestCollection(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	c := NewCollection[types.User](store, types.KeyUsers)

	items, err := c.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	require.NoError(t, c.Append(ctx, types.User{ID: "a", Name: "A"}))
	require.NoError(t, c.Upsert(ctx, types.User{ID: "b", Name: "B"}))
	require.NoError(t, c.Upsert(ctx, types.User{ID: "a", Name: "A2"}))

	items, err = c.All(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "A2", items[0].Name, "upsert replaces in place")

	got, err := c.Update(ctx, "b", func(u *types.User) error { u.Email = "b@x"; return nil })
	require.NoError(t, err)
	assert.Equal(t, "b@x", got.Email)

	_, err = c.Update(ctx, "missing", func(*types.User) error { return nil })
	assert.ErrorIs(t, err, types.ErrNotFound)

	ok, err := c.Delete(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = c.Delete(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = c.Get(ctx, "b")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCollection_Corrupted(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, store.Save(ctx, types.KeySpaces, []byte(`{"not":"an array"}`)))

	_, err := NewCollection[types.Space](store, types.KeySpaces).All(ctx)
	assert.ErrorIs(t, err, types.ErrCorruptedState)
}

func TestCollection_EmptyIsArray(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, NewCollection[types.Space](store, types.KeySpaces).Replace(ctx, nil))

	data, ok, err := store.Load(ctx, types.KeySpaces)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "[]", string(data))
}
