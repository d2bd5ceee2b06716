package resultstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStoreFromClient(client, ttl, "")
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func storesUnderTest(t *testing.T) map[string]Store {
	redisStore, _ := newRedisStore(t, 0)
	return map[string]Store{
		"memory": NewMemoryStore(),
		"redis":  redisStore,
	}
}

func TestStoreGetSetClear(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := store.Get(ctx, "missing")
			require.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, store.Set(ctx,
				Entry{Key: "a", Value: []byte(`{"score":25}`)},
				Entry{Key: "b", Value: []byte("id-1")},
			))

			got, err := store.Get(ctx, "a")
			require.NoError(t, err)
			assert.JSONEq(t, `{"score":25}`, string(got))

			require.NoError(t, store.Set(ctx, Entry{Key: "a", Value: []byte(`{"score":80}`)}))
			got, err = store.Get(ctx, "a")
			require.NoError(t, err)
			assert.JSONEq(t, `{"score":80}`, string(got))

			require.NoError(t, store.Clear(ctx, "a", "b", "never-set"))
			_, err = store.Get(ctx, "b")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	value := []byte("abc")
	require.NoError(t, store.Set(ctx, Entry{Key: "k", Value: value}))
	value[0] = 'z'

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))

	got[1] = 'z'
	again, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(again))
}

func TestRedisStoreAppliesTTLAndPrefix(t *testing.T) {
	store, mr := newRedisStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, Entry{Key: "visitor:analysisResult", Value: []byte("{}")}))
	assert.True(t, mr.Exists("zc:visitor:analysisResult"))
	assert.Equal(t, time.Hour, mr.TTL("zc:visitor:analysisResult"))

	mr.FastForward(2 * time.Hour)
	_, err := store.Get(ctx, "visitor:analysisResult")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStorePing(t *testing.T) {
	store, mr := newRedisStore(t, 0)
	require.NoError(t, store.Ping(context.Background()))
	mr.Close()
	assert.Error(t, store.Ping(context.Background()))
}

func TestStoreGetManyAlignsWithKeys(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, store.Set(ctx,
				Entry{Key: "a", Value: []byte(`{"score":25}`)},
				Entry{Key: "c", Value: []byte("id-1")},
			))

			got, err := store.GetMany(ctx, "a", "b", "c")
			require.NoError(t, err)
			require.Len(t, got, 3)
			assert.JSONEq(t, `{"score":25}`, string(got[0]))
			assert.Nil(t, got[1])
			assert.Equal(t, "id-1", string(got[2]))

			empty, err := store.GetMany(ctx)
			require.NoError(t, err)
			assert.Empty(t, empty)
		})
	}
}

func TestRedisStoreGetManyUsesPrefix(t *testing.T) {
	store, mr := newRedisStore(t, 0)
	require.NoError(t, mr.Set("zc:k", "v"))
	require.NoError(t, mr.Set("k", "unprefixed"))

	got, err := store.GetMany(context.Background(), "k", "missing")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got[0]))
	assert.Nil(t, got[1])
}
