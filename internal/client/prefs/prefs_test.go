package prefs

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "prefs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSQLiteRepository(db)
}

func TestGetMissingKey(t *testing.T) {
	r := newTestRepo(t)
	v, err := r.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.Equal(t, "", v)
}

func TestSetGetOverwrite(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)

	require.NoError(t, r.Set(ctx, KeyMemberProfileTab, "events"))
	v, err := r.Get(ctx, KeyMemberProfileTab)
	require.NoError(t, err)
	assert.Equal(t, "events", v)

	require.NoError(t, r.Set(ctx, KeyMemberProfileTab, "calendar"))
	v, err = r.Get(ctx, KeyMemberProfileTab)
	require.NoError(t, err)
	assert.Equal(t, "calendar", v)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)

	require.NoError(t, r.Set(ctx, KeyOrganizationProfileTab, "events"))
	require.NoError(t, r.Delete(ctx, KeyOrganizationProfileTab))

	v, err := r.Get(ctx, KeyOrganizationProfileTab)
	require.NoError(t, err)
	assert.Equal(t, "", v)
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)

	require.NoError(t, r.Set(ctx, KeyMemberProfileTab, "events"))
	require.NoError(t, r.Set(ctx, KeyOrganizationProfileTab, "calendar"))
	require.NoError(t, r.Clear(ctx))

	for _, key := range []string{KeyMemberProfileTab, KeyOrganizationProfileTab} {
		v, err := r.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "", v)
	}
}

func TestActiveProfileTabDefault(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)

	tab, err := ActiveProfileTab(ctx, r, KeyMemberProfileTab)
	require.NoError(t, err)
	assert.Equal(t, DefaultProfileTab, tab)

	require.NoError(t, r.Set(ctx, KeyMemberProfileTab, "calendar"))
	tab, err = ActiveProfileTab(ctx, r, KeyMemberProfileTab)
	require.NoError(t, err)
	assert.Equal(t, "calendar", tab)
}
