package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withTestRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetClient(nil) })
	return mr
}

type cachedThing struct {
	Name string `json:"name"`
}

func TestAsideFetchesOnMissAndCaches(t *testing.T) {
	withTestRedis(t)
	ctx := context.Background()

	fetches := 0
	fetch := func(dest *cachedThing) func() error {
		return func() error {
			fetches++
			dest.Name = "from the database"
			return nil
		}
	}

	var first cachedThing
	require.NoError(t, Aside(ctx, "thing:1", &first, time.Minute, fetch(&first)))
	assert.Equal(t, "from the database", first.Name)
	assert.Equal(t, 1, fetches)

	var second cachedThing
	require.NoError(t, Aside(ctx, "thing:1", &second, time.Minute, fetch(&second)))
	assert.Equal(t, "from the database", second.Name)
	assert.Equal(t, 1, fetches, "second read must be served from cache")
}

func TestAsideExpiry(t *testing.T) {
	mr := withTestRedis(t)
	ctx := context.Background()

	fetches := 0
	var v cachedThing
	fetch := func() error {
		fetches++
		v.Name = "fresh"
		return nil
	}

	require.NoError(t, Aside(ctx, "thing:2", &v, time.Minute, fetch))
	mr.FastForward(2 * time.Minute)
	require.NoError(t, Aside(ctx, "thing:2", &v, time.Minute, fetch))
	assert.Equal(t, 2, fetches)
}

func TestInvalidatePost(t *testing.T) {
	withTestRedis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, PostKey(7), cachedThing{Name: "post"}, time.Minute))
	require.NoError(t, SetJSON(ctx, PostsListKey(), []cachedThing{{Name: "post"}}, time.Minute))

	InvalidatePost(ctx, 7)

	var v cachedThing
	found, err := GetJSON(ctx, PostKey(7), &v)
	require.NoError(t, err)
	assert.False(t, found)

	var list []cachedThing
	found, err = GetJSON(ctx, PostsListKey(), &list)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestHelpersAreNoOpsWithoutRedis(t *testing.T) {
	SetClient(nil)
	ctx := context.Background()

	var v cachedThing
	found, err := GetJSON(ctx, "whatever", &v)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, SetJSON(ctx, "whatever", v, time.Minute))
	Invalidate(ctx, "whatever")

	called := false
	require.NoError(t, Aside(ctx, "whatever", &v, time.Minute, func() error {
		called = true
		return nil
	}))
	assert.True(t, called)
}
