package recordstore

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	store, err := NewRedisStore("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store, mr
}

func TestRedisStore_Contract(t *testing.T) {
	runStoreContract(t, func(t *testing.T) Store {
		store, _ := newRedisStore(t)
		return store
	})
}

func TestRedisStore_KeyLayout(t *testing.T) {
	store, mr := newRedisStore(t)

	id, err := store.Insert(context.Background(), CollectionSessions, Record{IDField: "sess-1", "stage": "COMPLETED"})
	require.NoError(t, err)
	assert.Equal(t, "sess-1", id)

	raw, err := mr.Get("dockload:sessions:sess-1")
	require.NoError(t, err)
	assert.Contains(t, raw, `"stage":"COMPLETED"`)

	members, err := mr.ZMembers("dockload:sessions:ids")
	require.NoError(t, err)
	assert.Equal(t, []string{"sess-1"}, members)
}

func TestRedisStore_SkipsDanglingIndexEntries(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	_, err := store.Insert(ctx, CollectionCartons, Record{IDField: "a", "carton_id": "A"})
	require.NoError(t, err)
	mr.Del("dockload:cartons:a")

	recs, err := store.Select(ctx, CollectionCartons, Filter{}, Order{})
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestRedisStore_WrongTypeIsRejection(t *testing.T) {
	store, mr := newRedisStore(t)

	// The index key holds a plain string, so ZRANGE answers WRONGTYPE.
	require.NoError(t, mr.Set("dockload:cartons:ids", "not-a-zset"))

	_, err := store.Select(context.Background(), CollectionCartons, Filter{}, Order{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRejected))
	var remote *RemoteError
	require.True(t, errors.As(err, &remote))
	assert.Equal(t, "WRONGTYPE", remote.Code)
}

func TestRedisStore_UnreachableIsConnectivity(t *testing.T) {
	store, mr := newRedisStore(t)
	mr.Close()

	err := store.Ping(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConnectivity))
}

func TestRedisStore_InvalidURL(t *testing.T) {
	_, err := NewRedisStore("invalid://url")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse Redis URL")
}
