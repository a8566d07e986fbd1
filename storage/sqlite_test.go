package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"newsbot/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteStore(t *testing.T) *SQLiteSeenStore {
	t.Helper()
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "news.db"), 10, discardLogger())
	require.NoError(t, err)
	t.Cleanup(store.Close)
	require.NoError(t, store.Init(context.Background()))
	return store
}

func TestSQLiteSeenStore_InitIsIdempotent(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	_, err := store.Insert(ctx, domain.SeenRecord{Feed: "a", Title: "T1", Link: "u1"})
	require.NoError(t, err)
	require.NoError(t, store.Init(ctx))

	ok, err := store.Exists(ctx, "a", "u1")
	require.NoError(t, err)
	assert.True(t, ok, "second Init must not drop existing records")
}

func TestSQLiteSeenStore_ExistsAndInsert(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	ok, err := store.Exists(ctx, "a", "u1")
	require.NoError(t, err)
	assert.False(t, ok)

	inserted, err := store.Insert(ctx, domain.SeenRecord{Feed: "a", Title: "T1", Link: "u1"})
	require.NoError(t, err)
	assert.True(t, inserted)

	ok, err = store.Exists(ctx, "a", "u1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Exists(ctx, "b", "u1")
	require.NoError(t, err)
	assert.False(t, ok, "same link in another feed is a different key")
}

func TestSQLiteSeenStore_DuplicateInsertIsNoop(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	inserted, err := store.Insert(ctx, domain.SeenRecord{Feed: "a", Title: "T1", Link: "u1"})
	require.NoError(t, err)
	require.True(t, inserted)

	inserted, err = store.Insert(ctx, domain.SeenRecord{Feed: "a", Title: "T1 (updated)", Link: "u1"})
	require.NoError(t, err)
	assert.False(t, inserted)

	records, err := store.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "T1", records[0].Title, "records are never updated")
}

func TestSQLiteSeenStore_RecentNewestFirst(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

	for i, link := range []string{"u1", "u2", "u3"} {
		_, err := store.Insert(ctx, domain.SeenRecord{
			Feed:   "a",
			Title:  "T",
			Link:   link,
			SeenAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	records, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "u3", records[0].Link)
	assert.Equal(t, "u2", records[1].Link)
	assert.True(t, records[0].SeenAt.Equal(base.Add(2*time.Minute)))
}
