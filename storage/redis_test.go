package storage

import (
	"context"
	"testing"

	"newsbot/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*RedisSeenStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisSeenStore(client, 10, discardLogger())
	t.Cleanup(store.Close)
	require.NoError(t, store.Init(context.Background()))
	return store, mr
}

func TestRedisSeenStore_InsertIsAtomicPerKey(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	inserted, err := store.Insert(ctx, domain.SeenRecord{Feed: "a", Title: "T1", Link: "u1"})
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = store.Insert(ctx, domain.SeenRecord{Feed: "a", Title: "other", Link: "u1"})
	require.NoError(t, err)
	assert.False(t, inserted)

	assert.Equal(t, "T1", mr.HGet(feedKey("a"), "u1"))

	ok, err := store.Exists(ctx, "a", "u1")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = store.Exists(ctx, "b", "u1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisSeenStore_Recent(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()

	for _, link := range []string{"u1", "u2", "u3"} {
		_, err := store.Insert(ctx, domain.SeenRecord{Feed: "a", Title: "T " + link, Link: link})
		require.NoError(t, err)
	}

	records, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "u3", records[0].Link)
	assert.Equal(t, "u2", records[1].Link)
	assert.False(t, records[0].SeenAt.IsZero())
}

func TestRedisSeenStore_InitFailsWhenUnavailable(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	store := NewRedisSeenStore(client, 10, discardLogger())
	t.Cleanup(store.Close)

	err := store.Init(context.Background())
	require.Error(t, err)
	var storeErr *domain.StoreError
	assert.ErrorAs(t, err, &storeErr)
}
