package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/subscriptions/pkg/redis"
)

type payload struct {
	ID    string `json:"id"`
	Level int    `json:"level"`
}

func newClient(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestJSONRoundTrip(t *testing.T) {
	t.Parallel()

	mr, client := newClient(t)
	ctx := context.Background()

	var got payload
	found, err := redis.GetJSON(ctx, client, "k", &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, redis.SetJSON(ctx, client, "k", payload{ID: "prod_1", Level: 2}, time.Minute))
	assert.Equal(t, time.Minute, mr.TTL("k"))

	found, err = redis.GetJSON(ctx, client, "k", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, payload{ID: "prod_1", Level: 2}, got)

	mr.FastForward(2 * time.Minute)
	found, err = redis.GetJSON(ctx, client, "k", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGetJSON_Corrupt(t *testing.T) {
	t.Parallel()

	mr, client := newClient(t)
	require.NoError(t, mr.Set("k", "{not json"))

	var got payload
	_, err := redis.GetJSON(context.Background(), client, "k", &got)
	require.ErrorIs(t, err, redis.ErrCacheDecode)
}

func TestGetJSON_ServerDown(t *testing.T) {
	t.Parallel()

	mr, client := newClient(t)
	mr.Close()

	var got payload
	_, err := redis.GetJSON(context.Background(), client, "k", &got)
	require.ErrorIs(t, err, redis.ErrCacheRead)
}

func TestDeleteByPrefix(t *testing.T) {
	t.Parallel()

	mr, client := newClient(t)
	require.NoError(t, mr.Set("catalog:all", "1"))
	require.NoError(t, mr.Set("catalog:prod_1", "1"))
	require.NoError(t, mr.Set("other", "1"))

	require.NoError(t, redis.DeleteByPrefix(context.Background(), client, "catalog:"))
	assert.False(t, mr.Exists("catalog:all"))
	assert.False(t, mr.Exists("catalog:prod_1"))
	assert.True(t, mr.Exists("other"))
}

func TestConnectAndHealthcheck(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	client, err := redis.Connect(context.Background(), redis.Config{
		ConnectionURL:  "redis://" + mr.Addr() + "/0",
		RetryAttempts:  1,
		ConnectTimeout: time.Second,
	})
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, redis.Healthcheck(client)(context.Background()))

	mr.Close()
	require.ErrorIs(t, redis.Healthcheck(client)(context.Background()), redis.ErrHealthcheckFailed)
}

func TestConnect_InvalidURL(t *testing.T) {
	t.Parallel()

	_, err := redis.Connect(context.Background(), redis.Config{ConnectionURL: "http://nope"})
	require.ErrorIs(t, err, redis.ErrFailedToParseRedisConnString)

	_, err = redis.Connect(context.Background(), redis.Config{})
	require.ErrorIs(t, err, redis.ErrEmptyConnectionURL)
}
