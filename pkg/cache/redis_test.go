package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a test Redis client using miniredis
func setupTestRedis(t *testing.T) (*Client, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := &Client{Redis: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func TestNewClient_ParsesURL(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient("redis://" + mr.Addr())
	require.NoError(t, err)
	defer client.Close()

	assert.NoError(t, client.Ping(context.Background()))
}

func TestNewClient_Errors(t *testing.T) {
	_, err := NewClient("not a url")
	assert.Error(t, err)

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	_, err = NewClient("redis://" + addr)
	assert.ErrorContains(t, err, "failed connecting to redis")
}

func TestClient_CounterMissingIsZero(t *testing.T) {
	client, _ := setupTestRedis(t)

	n, err := client.Counter(context.Background(), "missing")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestClient_IncrThenCounter(t *testing.T) {
	client, mr := setupTestRedis(t)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		n, err := client.Incr(ctx, "quota:generations:user-1")
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}

	n, err := client.Counter(ctx, "quota:generations:user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	got, err := mr.Get("quota:generations:user-1")
	require.NoError(t, err)
	assert.Equal(t, "3", got)
}

func TestClient_CounterRejectsNonInteger(t *testing.T) {
	client, mr := setupTestRedis(t)
	require.NoError(t, mr.Set("quota:generations:user-1", "many"))

	_, err := client.Counter(context.Background(), "quota:generations:user-1")
	assert.Error(t, err)
}

func TestClient_PingAfterServerStops(t *testing.T) {
	client, mr := setupTestRedis(t)
	require.NoError(t, client.Ping(context.Background()))

	mr.Close()
	assert.Error(t, client.Ping(context.Background()))
}
