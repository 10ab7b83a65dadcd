package redisstore

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/echosign/pkg/types"
)

func TestOpen_EmptyAddr(t *testing.T) {
	_, err := Open(context.Background(), types.RedisConfig{})
	assert.ErrorIs(t, err, types.ErrRedisAddrEmpty)
}

func TestStore_Redis(t *testing.T) {
	addr := os.Getenv("ECHOSIGN_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("ECHOSIGN_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()

	s, err := Open(ctx, types.RedisConfig{Addr: addr, Prefix: "echosign-test:" + uuid.NewString() + ":"})
	require.NoError(t, err)
	defer s.Close()

	_, ok, err := s.Load(ctx, types.KeyTenants)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Save(ctx, types.KeyTenants, []byte(`[]`)))
	got, ok, err := s.Load(ctx, types.KeyTenants)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `[]`, string(got))

	require.NoError(t, s.Remove(ctx, types.KeyTenants))
	_, ok, err = s.Load(ctx, types.KeyTenants)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Close())
	assert.ErrorIs(t, s.Save(ctx, "k", nil), types.ErrStoreDetached)
}
