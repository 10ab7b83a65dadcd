package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/echosign/internal/memory"
	"github.com/mesh-intelligence/echosign/internal/sqlite"
	"github.com/mesh-intelligence/echosign/pkg/types"
)

func TestSnapshot_MemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := memory.New()
	require.NoError(t, src.Save(ctx, types.KeyTenants, []byte(`[{"id":"t1","subdomain":"acme"}]`)))
	require.NoError(t, src.Save(ctx, types.KeySessionPrefix+"s1/current_user", []byte(`{"id":"u1","tenantId":"t1"}`)))

	path := filepath.Join(t.TempDir(), "snap", "echosign.jsonl")
	n, err := Export(ctx, src, path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	dst := memory.New()
	n, err = Import(ctx, dst, path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, ok, err := dst.Load(ctx, types.KeyTenants)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `[{"id":"t1","subdomain":"acme"}]`, string(got))
}

func TestSnapshot_MemoryToSQLite(t *testing.T) {
	ctx := context.Background()
	src := memory.New()
	require.NoError(t, src.Save(ctx, types.KeySpaces, []byte(`[{"id":"s1","slug":"launch"}]`)))

	path := filepath.Join(t.TempDir(), "echosign.jsonl")
	_, err := Export(ctx, src, path)
	require.NoError(t, err)

	db := sqlite.NewBackend()
	require.NoError(t, db.Attach(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}))
	t.Cleanup(func() { _ = db.Close() })

	n, err := Import(ctx, db, path)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, ok, err := db.Load(ctx, types.KeySpaces)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `[{"id":"s1","slug":"launch"}]`, string(got))
}

func TestSnapshot_ChainExportsCollections(t *testing.T) {
	ctx := context.Background()
	chain := NewChain(brokenStore{}, memory.New(), nil)
	require.NoError(t, chain.Save(ctx, types.KeyUsers, []byte(`[]`)))
	require.NoError(t, chain.Save(ctx, "unrelated", []byte(`1`)))

	n, err := Export(ctx, chain, filepath.Join(t.TempDir(), "chain.jsonl"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestImport_MissingFile(t *testing.T) {
	_, err := Import(context.Background(), memory.New(), filepath.Join(t.TempDir(), "nope.jsonl"))
	assert.Error(t, err)
}
