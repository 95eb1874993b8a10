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

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

type slotList struct {
	Slots []time.Time `json:"slots"`
}

func TestRedisCache_SetGetDel(t *testing.T) {
	mr, rdb := newRedis(t)
	c := NewRedisCache(rdb)
	ctx := context.Background()

	want := slotList{Slots: []time.Time{time.Date(2025, 3, 10, 3, 30, 0, 0, time.UTC)}}
	require.NoError(t, c.SetJSON(ctx, "slots:m1", want, time.Minute))

	var got slotList
	hit, err := c.GetJSON(ctx, "slots:m1", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.True(t, want.Slots[0].Equal(got.Slots[0]))

	mr.FastForward(2 * time.Minute)
	hit, err = c.GetJSON(ctx, "slots:m1", &got)
	require.NoError(t, err)
	assert.False(t, hit, "expired")

	require.NoError(t, c.SetJSON(ctx, "slots:m1", want, time.Minute))
	require.NoError(t, c.Del(ctx, "slots:m1"))
	assert.False(t, mr.Exists("slots:m1"))
}

func TestRedisCache_CorruptValueIsMiss(t *testing.T) {
	mr, rdb := newRedis(t)
	c := NewRedisCache(rdb)
	require.NoError(t, mr.Set("slots:m1", "{not json"))

	var got slotList
	hit, err := c.GetJSON(context.Background(), "slots:m1", &got)

	require.NoError(t, err)
	assert.False(t, hit)
	assert.False(t, mr.Exists("slots:m1"))
}

func TestRedisLocker_Exclusive(t *testing.T) {
	mr, rdb := newRedis(t)
	l := NewRedisLocker(rdb)
	ctx := context.Background()

	release, ok, err := l.Acquire(ctx, "lock:sweep", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = l.Acquire(ctx, "lock:sweep", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, release(ctx))
	assert.False(t, mr.Exists("lock:sweep"))

	_, ok, err = l.Acquire(ctx, "lock:sweep", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLocker_ReleaseAfterExpiryKeepsNewHolder(t *testing.T) {
	mr, rdb := newRedis(t)
	l := NewRedisLocker(rdb)
	ctx := context.Background()

	staleRelease, ok, err := l.Acquire(ctx, "lock:sweep", time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Second)
	_, ok, err = l.Acquire(ctx, "lock:sweep", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, staleRelease(ctx))
	assert.True(t, mr.Exists("lock:sweep"), "stale holder must not delete the new lease")
}

func TestLocalLocker(t *testing.T) {
	l := NewLocalLocker()
	ctx := context.Background()

	release, ok, err := l.Acquire(ctx, "k", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, _ = l.Acquire(ctx, "k", time.Minute)
	assert.False(t, ok)

	require.NoError(t, release(ctx))
	_, ok, _ = l.Acquire(ctx, "k", time.Minute)
	assert.True(t, ok)
}

func TestRedisCache_ZeroTTLSkipsWrite(t *testing.T) {
	mr, rdb := newRedis(t)
	c := NewRedisCache(rdb)

	require.NoError(t, c.SetJSON(context.Background(), "slots:m1", slotList{}, 0))
	assert.False(t, mr.Exists("slots:m1"))
}
