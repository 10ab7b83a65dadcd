package directory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/echosign/internal/storage"
	"github.com/mesh-intelligence/echosign/pkg/types"
)

func TestUpsertUser_ReplacesByID(t *testing.T) {
	ctx := context.Background()
	dir, store := newTestDirectory(t)

	require.NoError(t, dir.UpsertUser(ctx, types.User{ID: "u1", TenantID: "t1", Name: "First", Role: types.RoleGuest}))
	require.NoError(t, dir.UpsertUser(ctx, types.User{ID: "u1", TenantID: "t1", Name: "Second", Role: types.RoleGuest}))

	users, ok, err := storage.LoadJSON[[]types.User](ctx, store, types.KeyUsers)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, users, 1)
	assert.Equal(t, "Second", users[0].Name)

	got, err := dir.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Second", got.Name)

	_, err = dir.GetUser(ctx, "u2")
	assert.ErrorIs(t, err, types.ErrNotFound)

	assert.ErrorIs(t, dir.UpsertUser(ctx, types.User{Name: "no id"}), types.ErrValidation)
}

func TestCurrentUser_Lifecycle(t *testing.T) {
	ctx := context.Background()
	dir, _ := newTestDirectory(t)
	user := types.User{ID: "u1", TenantID: "t1", Name: "Ada"}

	got, err := dir.CurrentUser(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, dir.SetCurrentUser(ctx, "s1", user))
	got, err = dir.CurrentUser(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, user.ID, got.ID)

	require.NoError(t, dir.ClearCurrentUser(ctx, "s1"))
	got, err = dir.CurrentUser(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.ErrorIs(t, dir.SetCurrentUser(ctx, "s1", types.User{ID: "u2"}), types.ErrValidation)
	assert.ErrorIs(t, dir.SetCurrentUser(ctx, "", user), types.ErrValidation)
}

func TestCurrentUser_SelfHealsCorruptedPointer(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"missing id", `{"tenantId":"t1","name":"Ada"}`},
		{"missing tenant id", `{"id":"u1","name":"Ada"}`},
		{"null", `null`},
		{"not json", `{{{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			dir, store := newTestDirectory(t)
			key := sessionKey("s1", pointerCurrentUser)
			require.NoError(t, store.Save(ctx, key, []byte(tt.raw)))

			got, err := dir.CurrentUser(ctx, "s1")
			require.NoError(t, err)
			assert.Nil(t, got)

			_, ok, err := store.Load(ctx, key)
			require.NoError(t, err)
			assert.False(t, ok, "corrupted pointer is cleared")
		})
	}
}

func TestCurrentTenant_StalePointerCleared(t *testing.T) {
	ctx := context.Background()
	dir, store := newTestDirectory(t)

	require.NoError(t, dir.SetCurrentTenant(ctx, "s1", types.Tenant{ID: "gone"}))
	got, err := dir.CurrentTenant(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, ok, err := store.Load(ctx, sessionKey("s1", pointerCurrentTenant))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCurrentTenant_ReturnsFreshCopy(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	name := "Renamed"
	_, err := f.dir.UpdateTenant(ctx, f.sess, f.tenant.ID, types.TenantUpdate{DisplayName: &name})
	require.NoError(t, err)

	got, err := f.dir.CurrentTenant(ctx, f.sess.SessionID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Renamed", got.DisplayName)
}

func TestSessions_AreIsolated(t *testing.T) {
	ctx := context.Background()
	dir, _ := newTestDirectory(t)

	require.NoError(t, dir.SetCurrentUser(ctx, "a", types.User{ID: "ua", TenantID: "t"}))
	require.NoError(t, dir.SetCurrentUser(ctx, "b", types.User{ID: "ub", TenantID: "t"}))

	a, err := dir.CurrentUser(ctx, "a")
	require.NoError(t, err)
	b, err := dir.CurrentUser(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "ua", a.ID)
	assert.Equal(t, "ub", b.ID)

	require.NoError(t, dir.Logout(ctx, "a"))
	a, err = dir.CurrentUser(ctx, "a")
	require.NoError(t, err)
	assert.Nil(t, a)
	b, err = dir.CurrentUser(ctx, "b")
	require.NoError(t, err)
	assert.NotNil(t, b)
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.dir.Logout(ctx, f.sess.SessionID))
	sess, err := f.dir.Session(ctx, f.sess.SessionID)
	require.NoError(t, err)
	assert.Equal(t, types.SessionContext{SessionID: f.sess.SessionID}, sess)

	require.NoError(t, f.dir.Logout(ctx, ""))
}

func TestIsOwner(t *testing.T) {
	tenant := &types.Tenant{ID: "t1", OwnerID: "u1"}
	assert.True(t, IsOwner(&types.User{ID: "u1"}, tenant))
	assert.False(t, IsOwner(&types.User{ID: "u2"}, tenant))
	assert.False(t, IsOwner(nil, tenant))
	assert.False(t, IsOwner(&types.User{ID: "u1"}, nil))
	assert.False(t, IsOwner(&types.User{}, &types.Tenant{}))
}
