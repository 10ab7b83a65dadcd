package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/echosign/internal/memory"
	"github.com/mesh-intelligence/echosign/pkg/types"
)

var errBroken = errors.New("broken store")

// brokenStore fails every operation.
type brokenStore struct{}

func (brokenStore) Load(context.Context, string) ([]byte, bool, error) { return nil, false, errBroken }
func (brokenStore) Save(context.Context, string, []byte) error         { return errBroken }
func (brokenStore) Remove(context.Context, string) error               { return errBroken }
func (brokenStore) Close() error                                       { return nil }

func TestOpen(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name    string
		cfg     types.Config
		wantErr error
	}{
		{"memory", types.Config{Backend: types.BackendMemory}, nil},
		{"sqlite", types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}, nil},
		{"jsonfile", types.Config{Backend: types.BackendJSONFile, DataDir: t.TempDir()}, nil},
		{"sqlite with memory fallback", types.Config{Backend: types.BackendSQLite, FallbackBackend: types.BackendMemory, DataDir: t.TempDir()}, nil},
		{"empty backend", types.Config{}, types.ErrBackendEmpty},
		{"unknown backend", types.Config{Backend: "floppy"}, types.ErrBackendUnknown},
		{"redis without addr", types.Config{Backend: types.BackendRedis}, types.ErrRedisAddrEmpty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Open(ctx, tt.cfg, zap.NewNop())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			defer s.Close()

			require.NoError(t, SaveJSON(ctx, s, types.KeyTenants, []string{"a", "b"}))
			got, ok, err := LoadJSON[[]string](ctx, s, types.KeyTenants)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, []string{"a", "b"}, got)
		})
	}
}

func TestOpen_FallbackIsChain(t *testing.T) {
	s, err := Open(context.Background(), types.Config{Backend: types.BackendMemory, FallbackBackend: types.BackendJSONFile, DataDir: t.TempDir()}, nil)
	require.NoError(t, err)
	defer s.Close()
	assert.IsType(t, &Chain{}, s)
}

func TestChain_WritesBothReadsPrimaryFirst(t *testing.T) {
	ctx := context.Background()
	primary, secondary := memory.New(), memory.New()
	c := NewChain(primary, secondary, zap.NewNop())

	require.NoError(t, c.Save(ctx, "k", []byte("v1")))
	for _, s := range []types.Store{primary, secondary} {
		v, ok, err := s.Load(ctx, "k")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "v1", string(v))
	}

	require.NoError(t, secondary.Save(ctx, "k", []byte("stale")))
	v, _, err := c.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v1", string(v))

	require.NoError(t, primary.Remove(ctx, "k"))
	v, ok, err := c.Load(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "stale", string(v), "falls back to secondary when primary misses")

	require.NoError(t, c.Remove(ctx, "k"))
	_, ok, err = c.Load(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestChain_ToleratesOneFailingLeg(t *testing.T) {
	ctx := context.Background()
	good := memory.New()

	c := NewChain(brokenStore{}, good, zap.NewNop())
	require.NoError(t, c.Save(ctx, "k", []byte("v")))
	v, ok, err := c.Load(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v", string(v))
	require.NoError(t, c.Remove(ctx, "k"))

	c = NewChain(good, brokenStore{}, zap.NewNop())
	require.NoError(t, c.Save(ctx, "k", []byte("v")))
	_, ok, err = c.Load(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	_, ok, err = c.Load(ctx, "missing")
	require.NoError(t, err, "secondary failure after a primary miss reads as absent")
	assert.False(t, ok)
}

func TestChain_BothLegsFail(t *testing.T) {
	ctx := context.Background()
	c := NewChain(brokenStore{}, brokenStore{}, zap.NewNop())
	assert.ErrorIs(t, c.Save(ctx, "k", nil), errBroken)
	_, _, err := c.Load(ctx, "k")
	assert.ErrorIs(t, err, errBroken)
}

func TestLoadJSON_Corrupt(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	require.NoError(t, s.Save(ctx, "k", []byte("{not json")))
	_, ok, err := LoadJSON[map[string]any](ctx, s, "k")
	assert.Error(t, err)
	assert.False(t, ok)
}
