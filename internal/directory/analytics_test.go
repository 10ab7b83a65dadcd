package directory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mesh-intelligence/echosign/internal/memory"
	"github.com/mesh-intelligence/echosign/pkg/types"
)

// failingSaves wraps a store and rejects writes to one key.
type failingSaves struct {
	*memory.Store
	key string
}

func (f failingSaves) Save(ctx context.Context, key string, value []byte) error {
	if key == f.key {
		return errors.New("disk full")
	}
	return f.Store.Save(ctx, key, value)
}

func TestRecordEvent_DefaultsSpaceID(t *testing.T) {
	ctx := context.Background()
	dir, _ := newTestDirectory(t)

	dir.RecordEvent(ctx, "t1", types.EventViewWall, nil)
	dir.RecordEvent(ctx, "t1", types.EventViewSpace, map[string]any{types.MetaSpaceID: "s1", "ref": "qr"})
	dir.RecordEvent(ctx, "t2", types.EventViewWall, nil)

	events, err := dir.QueryEventsByTenant(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, map[string]any{types.MetaSpaceID: ""}, events[0].Metadata)
	assert.Equal(t, "s1", events[1].SpaceID())
	assert.Equal(t, "qr", events[1].Metadata["ref"])
	assert.False(t, events[0].Timestamp.IsZero())
	assert.NotEqual(t, events[0].ID, events[1].ID)
}

func TestRecordEvent_FailureIsSwallowed(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zap.WarnLevel)
	store := failingSaves{Store: memory.New(), key: types.KeyAnalytics}
	dir := New(store, WithLogger(zap.New(core)))

	assert.NotPanics(t, func() { dir.RecordEvent(ctx, "t1", types.EventViewWall, nil) })
	assert.Equal(t, 1, logs.FilterMessage("dropping analytics event").Len())

	tenant, err := dir.CreateTenant(ctx, types.SessionContext{}, "acme", "Acme", "owner")
	require.NoError(t, err, "other collections still work")
	assert.Equal(t, "acme", tenant.Subdomain)
}

func TestCountEvents(t *testing.T) {
	ctx := context.Background()
	dir, _ := newTestDirectory(t)
	dir.RecordEvent(ctx, "t1", types.EventViewWall, nil)
	dir.RecordEvent(ctx, "t1", types.EventViewWall, nil)
	dir.RecordEvent(ctx, "t1", types.EventViewSpace, map[string]any{types.MetaSpaceID: "s1"})
	dir.RecordEvent(ctx, "t1", types.EventViewSpace, map[string]any{types.MetaSpaceID: "s2"})
	dir.RecordEvent(ctx, "t2", types.EventViewWall, nil)

	byType, err := dir.CountEventsByType(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{types.EventViewWall: 2, types.EventViewSpace: 2}, byType)

	n, err := dir.CountEvents(ctx, "t1", types.EventViewWall)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = dir.CountSpaceEvents(ctx, "t1", types.EventViewSpace, "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = dir.CountSpaceEvents(ctx, "t1", types.EventViewWall, "")
	require.NoError(t, err)
	assert.Equal(t, 2, n, "default spaceId is the empty string")
}

func TestTenantStats(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addEntry(t, "", types.VisibilityPublic, "")
	last := f.addEntry(t, "", types.VisibilityPrivate, "")
	gone := f.addEntry(t, "", types.VisibilityPublic, "")
	require.NoError(t, f.dir.SoftDeleteEntry(ctx, gone.ID))
	f.dir.RecordEvent(ctx, f.tenant.ID, types.EventViewWall, nil)
	f.dir.RecordEvent(ctx, f.tenant.ID, types.EventViewSpace, map[string]any{types.MetaSpaceID: f.space.ID})
	_, err := f.dir.Sign(ctx, types.SessionContext{}, SignRequest{SpaceID: f.space.ID, Name: "Grace", SignatureData: "x"})
	require.NoError(t, err)

	stats, err := f.dir.TenantStats(ctx, f.tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalSpaces)
	assert.Equal(t, 3, stats.TotalSignatures)
	assert.Equal(t, 1, stats.TotalViews)
	assert.Equal(t, 1, stats.TotalSigns)
	require.NotNil(t, stats.LastEntry)
	assert.NotEqual(t, last.ID, stats.LastEntry.ID, "signed entry is newer")
	assert.Equal(t, "Grace", stats.LastEntry.UserName)

	empty, err := f.dir.TenantStats(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, empty.LastEntry)
	assert.Zero(t, empty.TotalSignatures)
}

func TestSpaceAnalytics(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	quiet, err := f.dir.CreateSpace(ctx, f.tenant.ID, "Quiet", "", types.VisibilityPublic, "")
	require.NoError(t, err)
	f.addEntry(t, "", types.VisibilityPublic, "")
	f.addEntry(t, "", types.VisibilityPrivate, "")
	f.dir.RecordEvent(ctx, f.tenant.ID, types.EventViewSpace, map[string]any{types.MetaSpaceID: f.space.ID})
	f.dir.RecordEvent(ctx, f.tenant.ID, types.EventViewSpace, map[string]any{types.MetaSpaceID: quiet.ID})
	f.dir.RecordEvent(ctx, f.tenant.ID, types.EventViewSpace, map[string]any{types.MetaSpaceID: quiet.ID})

	report, err := f.dir.SpaceAnalytics(ctx, f.tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, report.TotalSpaces)
	assert.Equal(t, 2, report.TotalSignatures)
	assert.Equal(t, 3, report.TotalViews)
	assert.Equal(t, 1.0, report.AvgSignaturesPerSpace)
	require.Len(t, report.Spaces, 2)

	busy := report.Spaces[0]
	assert.Equal(t, f.space.ID, busy.SpaceID, "ordered by signature count")
	assert.Equal(t, "Launch Party", busy.SpaceName)
	assert.Equal(t, 2, busy.SignatureCount)
	assert.Equal(t, 1, busy.PublicCount)
	assert.Equal(t, 1, busy.Views)
	assert.NotNil(t, busy.LastSigned)

	assert.Equal(t, quiet.ID, report.Spaces[1].SpaceID)
	assert.Equal(t, 2, report.Spaces[1].Views)
	assert.Nil(t, report.Spaces[1].LastSigned)
}
