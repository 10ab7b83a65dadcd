package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/echosign/internal/directory"
	"github.com/mesh-intelligence/echosign/pkg/echosign"
	"github.com/mesh-intelligence/echosign/pkg/types"
)

// testEnv is an isolated config and data directory pair.
type testEnv struct {
	t         *testing.T
	configDir string
	dataDir   string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv("ECHOSIGN_LOG_LEVEL", "error")
	return &testEnv{
		t:         t,
		configDir: filepath.Join(t.TempDir(), "config"),
		dataDir:   filepath.Join(t.TempDir(), "data"),
	}
}

// run executes one CLI invocation and returns its stdout.
func (e *testEnv) run(args ...string) (string, error) {
	e.t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config-dir", e.configDir, "--data-dir", e.dataDir}, args...))
	err := root.Execute()
	return out.String(), err
}

func (e *testEnv) mustRun(args ...string) string {
	e.t.Helper()
	out, err := e.run(args...)
	require.NoError(e.t, err, "echosign %v: %s", args, out)
	return out
}

func runJSON[T any](e *testEnv, args ...string) T {
	e.t.Helper()
	out := e.mustRun(append([]string{"--json"}, args...)...)
	var v T
	require.NoError(e.t, json.Unmarshal([]byte(out), &v), out)
	return v
}

func TestVersion(t *testing.T) {
	env := newTestEnv(t)
	out := env.mustRun("version")
	assert.Contains(t, out, "echosign v"+echosign.Version)
	assert.Contains(t, out, echosign.ModulePath)
}

func TestInit_WritesDefaultConfig(t *testing.T) {
	env := newTestEnv(t)
	out := env.mustRun("init")
	assert.Contains(t, out, "echosign initialized")

	data, err := os.ReadFile(filepath.Join(env.configDir, "config.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "backend: sqlite")

	s, err := loadSettings(env.configDir)
	require.NoError(t, err)
	assert.Equal(t, types.BackendSQLite, s.Backend)
	assert.Equal(t, "lvh.me", s.Server.DevSuffix)
	assert.Equal(t, 24*time.Hour, s.Reflection.CacheTTL)
	assert.Equal(t, "error", s.Log.Level)

	_, err = os.Stat(filepath.Join(env.dataDir))
	assert.NoError(t, err)
}

func TestLoadSettings_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"),
		[]byte("backend: sqlite\ndata_dir: /from/config\nserver:\n  addr: \":9000\"\n"), 0o644))

	t.Setenv("ECHOSIGN_BACKEND", "memory")
	t.Setenv("ECHOSIGN_SERVER_DEV_SUFFIX", "nip.io")
	t.Setenv("ECHOSIGN_REFLECTION_CACHE_TTL", "1h")
	t.Setenv("ECHOSIGN_DATA_DIR", "/from/env")

	s, err := loadSettings(dir)
	require.NoError(t, err)
	assert.Equal(t, types.BackendMemory, s.Backend)
	assert.Equal(t, "nip.io", s.Server.DevSuffix)
	assert.Equal(t, ":9000", s.Server.Addr)
	assert.Equal(t, time.Hour, s.Reflection.CacheTTL)
	assert.Equal(t, "/from/config", s.DataDir, "config.yaml data_dir outranks ECHOSIGN_DATA_DIR")
}

func TestWorkflow(t *testing.T) {
	env := newTestEnv(t)

	signup := runJSON[directory.SignupResult](env, "signup", "--name", "Ada", "--subdomain", "Acme")
	assert.Equal(t, "acme", signup.Tenant.Subdomain)
	assert.Equal(t, types.RoleOwner, signup.Owner.Role)

	shown := runJSON[types.Tenant](env, "tenant", "show")
	assert.Equal(t, signup.Tenant.ID, shown.ID)

	space := runJSON[types.Space](env, "space", "create", "Launch Party")
	assert.Equal(t, "launch-party", space.Slug)

	signed := runJSON[directory.SignResult](env, "--session", "visitor", "sign", space.ID,
		"--name", "Bob", "--signature", "data:image/png;base64,AAAA", "--memory", "we danced")
	assert.Equal(t, types.RoleGuest, signed.User.Role)

	entries := runJSON[[]types.SignatureEntry](env, "entry", "list", "--space", space.ID)
	require.Len(t, entries, 1)
	assert.Equal(t, "Bob", entries[0].UserName)

	stats := runJSON[directory.TenantStats](env, "stats")
	assert.Equal(t, 1, stats.TotalSpaces)
	assert.Equal(t, 1, stats.TotalSignatures)
	assert.Equal(t, 1, stats.TotalSigns)

	report := runJSON[directory.AnalyticsReport](env, "stats", "--spaces")
	require.Len(t, report.Spaces, 1)
	assert.Equal(t, "Launch Party", report.Spaces[0].SpaceName)

	featured := runJSON[struct {
		Featured *types.SignatureEntry `json:"featured"`
	}](env, "featured", "--date", "2024-03-15")
	require.NotNil(t, featured.Featured)
	assert.Equal(t, "we danced", featured.Featured.MemoryText)

	events := runJSON[[]types.AnalyticsEvent](env, "events", "--type", types.EventSignSpace)
	require.Len(t, events, 1)
	assert.Equal(t, space.ID, events[0].SpaceID())

	_, err := env.run("--session", "visitor", "entry", "delete", signed.Entry.ID)
	require.ErrorIs(t, err, types.ErrForbidden)
	assert.Equal(t, exitUserError, exitCode(err))

	env.mustRun("entry", "delete", signed.Entry.ID)
	env.mustRun("entry", "delete", signed.Entry.ID)
	entries = runJSON[[]types.SignatureEntry](env, "entry", "list")
	assert.Empty(t, entries)

	resolved := runJSON[hostResolution](env, "resolve-host", "www.acme.lvh.me:3000")
	assert.Equal(t, "acme", resolved.Subdomain)
	require.NotNil(t, resolved.Tenant)
	assert.Equal(t, signup.Tenant.ID, resolved.Tenant.ID)
}

func TestSignup_Conflict(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("signup", "--name", "Ada", "--subdomain", "acme")

	_, err := env.run("--session", "other", "signup", "--name", "Eve", "--subdomain", "ACME")
	require.ErrorIs(t, err, types.ErrConflict)
	assert.Equal(t, exitUserError, exitCode(err))
}

func TestSpaceCreate_RequiresOwner(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("signup", "--name", "Ada", "--subdomain", "acme")

	_, err := env.run("--session", "other", "space", "create", "Hijack", "--tenant", "acme")
	assert.ErrorIs(t, err, types.ErrForbidden)

	_, err = env.run("--session", "other", "space", "create", "Hijack")
	assert.ErrorIs(t, err, types.ErrValidation, "a session without a current tenant must name one")
}

func TestSign_PrivateSpaceRequiresOwner(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("signup", "--name", "Ada", "--subdomain", "acme")
	space := runJSON[types.Space](env, "space", "create", "Staff Board", "--visibility", "private")

	_, err := env.run("--session", "visitor", "sign", space.ID, "--name", "Bob", "--signature", "x")
	require.ErrorIs(t, err, types.ErrForbidden)
	assert.Equal(t, exitUserError, exitCode(err))

	signed := runJSON[directory.SignResult](env, "sign", space.ID, "--name", "Ada", "--signature", "x")
	assert.Equal(t, types.RoleOwner, signed.User.Role)
}

func TestTenantUpdate(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("signup", "--name", "Ada", "--subdomain", "acme")

	tenant := runJSON[types.Tenant](env, "tenant", "update", "--display-name", "Acme Events", "--tagline", "Sign in")
	assert.Equal(t, "Acme Events", tenant.DisplayName)
	require.NotNil(t, tenant.Branding)
	assert.Equal(t, "Sign in", tenant.Branding.Tagline)

	tenant = runJSON[types.Tenant](env, "tenant", "update", "--primary-color", "#112233")
	require.NotNil(t, tenant.Branding)
	assert.Equal(t, "Sign in", tenant.Branding.Tagline, "unchanged branding fields are kept")
	assert.Equal(t, "#112233", tenant.Branding.PrimaryColor)
}

func TestExportImport(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("signup", "--name", "Ada", "--subdomain", "acme")

	snapshot := filepath.Join(t.TempDir(), "echosign.jsonl")
	out := env.mustRun("export", snapshot)
	assert.Contains(t, out, "exported")

	fresh := newTestEnv(t)
	fresh.mustRun("import", snapshot)
	tenants := runJSON[[]types.Tenant](fresh, "tenant", "list")
	require.Len(t, tenants, 1)
	assert.Equal(t, "acme", tenants[0].Subdomain)
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, exitSuccess},
		{"validation", fmt.Errorf("%w: name", types.ErrValidation), exitUserError},
		{"not found", types.ErrNotFound, exitUserError},
		{"flag error", errors.New("unknown flag: --nope"), exitUserError},
		{"system", sysError(errors.New("disk full")), exitSysError},
		{"corrupted", fmt.Errorf("load: %w", types.ErrCorruptedState), exitSysError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}
