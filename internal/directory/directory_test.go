package directory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/mesh-intelligence/echosign/internal/memory"
	"github.com/mesh-intelligence/echosign/pkg/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// stepClock returns a clock that advances one second per call, starting
// just after start.
func stepClock(start time.Time) func() time.Time {
	t := start
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

// sequentialIDs returns an id generator yielding id-001, id-002, ...
func sequentialIDs() func() (string, error) {
	n := 0
	return func() (string, error) {
		n++
		return fmt.Sprintf("id-%03d", n), nil
	}
}

var epoch = time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)

func newTestDirectory(t *testing.T, opts ...Option) (*Directory, *memory.Store) {
	t.Helper()
	store := memory.New()
	t.Cleanup(func() { _ = store.Close() })
	base := []Option{WithClock(stepClock(epoch)), WithIDGenerator(sequentialIDs())}
	return New(store, append(base, opts...)...), store
}

// fixture is a tenant with an owner and one public space.
type fixture struct {
	dir    *Directory
	store  *memory.Store
	owner  types.User
	tenant types.Tenant
	space  types.Space
	sess   types.SessionContext
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	dir, store := newTestDirectory(t)
	sess := types.SessionContext{SessionID: "owner-session"}

	res, err := dir.Signup(ctx, sess, SignupRequest{OwnerName: "Ada", OwnerEmail: "ada@example.com", Subdomain: "acme", DisplayName: "Acme"})
	require.NoError(t, err)
	sess.UserID = res.Owner.ID
	sess.TenantID = res.Tenant.ID

	space, err := dir.CreateSpace(ctx, res.Tenant.ID, "Launch Party", "launch", types.VisibilityPublic, "")
	require.NoError(t, err)

	return &fixture{dir: dir, store: store, owner: res.Owner, tenant: res.Tenant, space: *space, sess: sess}
}

// addEntry creates an entry in the fixture's space.
func (f *fixture) addEntry(t *testing.T, userID string, vis types.Visibility, memoryText string) types.SignatureEntry {
	t.Helper()
	e, err := f.dir.CreateEntry(context.Background(), types.SignatureEntry{
		TenantID:      f.tenant.ID,
		SpaceID:       f.space.ID,
		UserID:        userID,
		UserName:      "signer",
		SignatureData: "data:image/png;base64,AAAA",
		MemoryText:    memoryText,
		Visibility:    vis,
	})
	require.NoError(t, err)
	return *e
}

func entryIDs(entries []types.SignatureEntry) []string {
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	return ids
}
