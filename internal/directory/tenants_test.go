package directory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/echosign/pkg/types"
)

func TestNormalizeSubdomain(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"acme", "acme"},
		{"ACME", "acme"},
		{"Acme Corp!", "acmecorp"},
		{"my-wall_2", "my-wall2"},
		{"  a.b  ", "ab"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeSubdomain(tt.raw))
		})
	}
}

func TestCreateTenant(t *testing.T) {
	ctx := context.Background()
	dir, _ := newTestDirectory(t)
	sess := types.SessionContext{SessionID: "s1"}

	tenant, err := dir.CreateTenant(ctx, sess, "Acme", "Acme Inc", "owner-1")
	require.NoError(t, err)
	assert.Equal(t, "acme", tenant.Subdomain)
	assert.Equal(t, "owner-1", tenant.OwnerID)
	assert.False(t, tenant.CreatedAt.IsZero())

	current, err := dir.CurrentTenant(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, tenant.ID, current.ID, "new tenant becomes the session's current tenant")

	t.Run("duplicate subdomain is a conflict regardless of case", func(t *testing.T) {
		_, err := dir.CreateTenant(ctx, sess, "ACME", "Other", "owner-2")
		assert.ErrorIs(t, err, types.ErrConflict)
	})

	t.Run("two characters is a validation error", func(t *testing.T) {
		_, err := dir.CreateTenant(ctx, sess, "ab", "Short", "owner-3")
		assert.ErrorIs(t, err, types.ErrValidation)
	})

	t.Run("length counts after normalization", func(t *testing.T) {
		_, err := dir.CreateTenant(ctx, sess, "a!!b", "Short", "owner-3")
		assert.ErrorIs(t, err, types.ErrValidation)
	})

	t.Run("owner is required", func(t *testing.T) {
		_, err := dir.CreateTenant(ctx, sess, "ownerless", "X", "")
		assert.ErrorIs(t, err, types.ErrValidation)
	})

	tenants, err := dir.ListTenants(ctx)
	require.NoError(t, err)
	assert.Len(t, tenants, 1, "failed creates write nothing")
}

func TestFindTenantBySubdomain(t *testing.T) {
	ctx := context.Background()
	dir, _ := newTestDirectory(t)
	created, err := dir.CreateTenant(ctx, types.SessionContext{}, "acme", "Acme", "owner-1")
	require.NoError(t, err)

	for _, q := range []string{"acme", "ACME", " Acme "} {
		got, err := dir.FindTenantBySubdomain(ctx, q)
		require.NoError(t, err)
		require.NotNil(t, got, q)
		assert.Equal(t, created.ID, got.ID)
	}

	got, err := dir.FindTenantBySubdomain(ctx, "globex")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestResolveHostToTenant(t *testing.T) {
	ctx := context.Background()
	dir, _ := newTestDirectory(t)
	sess := types.SessionContext{SessionID: "s1"}
	acme, err := dir.CreateTenant(ctx, sess, "acme", "Acme", "owner-1")
	require.NoError(t, err)
	globex, err := dir.CreateTenant(ctx, types.SessionContext{}, "globex", "Globex", "owner-2")
	require.NoError(t, err)

	got, err := dir.ResolveHostToTenant(ctx, sess, "globex")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, globex.ID, got.ID)

	got, err = dir.ResolveHostToTenant(ctx, sess, "")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, acme.ID, got.ID, "empty label falls back to the session's current tenant")

	got, err = dir.ResolveHostToTenant(ctx, types.SessionContext{SessionID: "other"}, "")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = dir.ResolveHostToTenant(ctx, sess, "initech")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCheckSubdomain(t *testing.T) {
	ctx := context.Background()
	dir, _ := newTestDirectory(t)
	_, err := dir.CreateTenant(ctx, types.SessionContext{}, "acme", "Acme", "owner-1")
	require.NoError(t, err)

	tests := []struct {
		raw       string
		want      string
		available bool
	}{
		{"Acme", "acme", false},
		{"Globex!", "globex", true},
		{"ab", "ab", false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			sub, ok, err := dir.CheckSubdomain(ctx, tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, sub)
			assert.Equal(t, tt.available, ok)
		})
	}
}

func TestSignup(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	assert.Equal(t, "acme", f.tenant.Subdomain)
	assert.Equal(t, "Acme", f.tenant.DisplayName)
	assert.Equal(t, f.owner.ID, f.tenant.OwnerID)
	assert.Equal(t, f.tenant.ID, f.owner.TenantID)
	assert.Equal(t, types.RoleOwner, f.owner.Role)

	user, err := f.dir.CurrentUser(ctx, f.sess.SessionID)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, f.owner.ID, user.ID)

	sess, err := f.dir.Session(ctx, f.sess.SessionID)
	require.NoError(t, err)
	assert.Equal(t, f.sess, sess)

	events, err := f.dir.QueryEventsByTenant(ctx, f.tenant.ID)
	require.NoError(t, err)
	require.NotEmpty(t, events)
	assert.Equal(t, types.EventTenantCreated, events[0].Type)
	assert.Equal(t, "acme", events[0].Metadata["subdomain"])
	assert.Equal(t, "", events[0].SpaceID())
}

func TestSignup_ValidatesBeforeWriting(t *testing.T) {
	ctx := context.Background()
	dir, store := newTestDirectory(t)

	_, err := dir.Signup(ctx, types.SessionContext{SessionID: "s"}, SignupRequest{OwnerName: " ", Subdomain: "acme"})
	assert.ErrorIs(t, err, types.ErrValidation)

	_, err = dir.Signup(ctx, types.SessionContext{SessionID: "s"}, SignupRequest{OwnerName: "Ada", Subdomain: "a"})
	assert.ErrorIs(t, err, types.ErrValidation)

	assert.Empty(t, store.Keys())
}

func TestUpdateTenant(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	name := "Acme Worldwide"
	desc := "Signatures from everywhere"
	updated, err := f.dir.UpdateTenant(ctx, f.sess, f.tenant.ID, types.TenantUpdate{
		DisplayName: &name,
		Description: &desc,
		Branding:    &types.TenantBranding{PrimaryColor: "#112233", Tagline: "hi"},
	})
	require.NoError(t, err)
	assert.Equal(t, name, updated.DisplayName)
	assert.Equal(t, desc, updated.Description)
	assert.Equal(t, "acme", updated.Subdomain)
	require.NotNil(t, updated.Branding)
	assert.Equal(t, "#112233", updated.Branding.PrimaryColor)

	updated, err = f.dir.UpdateTenant(ctx, f.sess, f.tenant.ID, types.TenantUpdate{})
	require.NoError(t, err)
	assert.Equal(t, name, updated.DisplayName, "nil fields are kept")
	assert.Equal(t, desc, updated.Description)

	_, err = f.dir.UpdateTenant(ctx, types.SessionContext{UserID: "stranger"}, f.tenant.ID, types.TenantUpdate{DisplayName: &name})
	assert.ErrorIs(t, err, types.ErrForbidden)

	_, err = f.dir.UpdateTenant(ctx, f.sess, "missing", types.TenantUpdate{})
	assert.ErrorIs(t, err, types.ErrNotFound)

	empty := " "
	_, err = f.dir.UpdateTenant(ctx, f.sess, f.tenant.ID, types.TenantUpdate{DisplayName: &empty})
	assert.ErrorIs(t, err, types.ErrValidation)
}
