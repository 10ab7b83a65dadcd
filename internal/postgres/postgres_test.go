package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/echosign/pkg/types"
)

func TestOpen_EmptyDSN(t *testing.T) {
	_, err := Open(context.Background(), types.PostgresConfig{})
	assert.ErrorIs(t, err, types.ErrPostgresDSNEmpty)
}

func TestStore_Postgres(t *testing.T) {
	dsn := os.Getenv("ECHOSIGN_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("ECHOSIGN_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()

	s, err := Open(ctx, types.PostgresConfig{DSN: dsn})
	require.NoError(t, err)
	defer s.Close()

	key := "test/" + uuid.NewString()
	_, ok, err := s.Load(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Save(ctx, key, []byte(`[1]`)))
	require.NoError(t, s.Save(ctx, key, []byte(`[2]`)))
	got, ok, err := s.Load(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `[2]`, string(got))

	require.NoError(t, s.Remove(ctx, key))
	_, ok, err = s.Load(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}
