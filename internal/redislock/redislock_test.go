package redislock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// fakeClient keeps keys in a map and runs the release script natively.
type fakeClient struct {
	mu   sync.Mutex
	keys map[string]string
}

func newFakeClient() *fakeClient {
	return &fakeClient{keys: make(map[string]string)}
}

func (c *fakeClient) SetNX(_ context.Context, key string, value interface{}, _ time.Duration) *redis.BoolCmd {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.keys[key]; ok {
		return redis.NewBoolResult(false, nil)
	}

	c.keys[key] = value.(string)

	return redis.NewBoolResult(true, nil)
}

func (c *fakeClient) release(keys []string, args []interface{}) *redis.Cmd {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.keys[keys[0]] == args[0].(string) {
		delete(c.keys, keys[0])
		return redis.NewCmdResult(int64(1), nil)
	}

	return redis.NewCmdResult(int64(0), nil)
}

func (c *fakeClient) Eval(_ context.Context, _ string, keys []string, args ...interface{}) *redis.Cmd {
	return c.release(keys, args)
}

func (c *fakeClient) EvalSha(_ context.Context, _ string, keys []string, args ...interface{}) *redis.Cmd {
	return c.release(keys, args)
}

func (c *fakeClient) EvalRO(_ context.Context, _ string, keys []string, args ...interface{}) *redis.Cmd {
	return c.release(keys, args)
}

func (c *fakeClient) EvalShaRO(_ context.Context, _ string, keys []string, args ...interface{}) *redis.Cmd {
	return c.release(keys, args)
}

func (c *fakeClient) ScriptExists(_ context.Context, hashes ...string) *redis.BoolSliceCmd {
	return redis.NewBoolSliceResult(make([]bool, len(hashes)), nil)
}

func (c *fakeClient) ScriptLoad(_ context.Context, _ string) *redis.StringCmd {
	return redis.NewStringResult("", nil)
}

func (c *fakeClient) holder(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.keys[keyPrefix+key]

	return v, ok
}

func TestLockUnlock(t *testing.T) {
	client := newFakeClient()
	locker := New(client, time.Second)

	unlock, err := locker.Lock(context.Background(), "USD:alice")
	require.NoError(t, err)

	_, held := client.holder("USD:alice")
	require.True(t, held)

	unlock()
	unlock()

	_, held = client.holder("USD:alice")
	require.False(t, held)
}

func TestLockWaitsForRelease(t *testing.T) {
	client := newFakeClient()
	locker := New(client, time.Second)
	locker.retryDelay = time.Millisecond

	unlock, err := locker.Lock(context.Background(), "USD:alice")
	require.NoError(t, err)

	acquired := make(chan struct{})

	go func() {
		unlock2, err := locker.Lock(context.Background(), "USD:alice")
		if err == nil {
			unlock2()
		}
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("second Lock returned while the key was held")
	case <-time.After(20 * time.Millisecond):
	}

	unlock()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second Lock did not acquire the released key")
	}
}

func TestLockContextDone(t *testing.T) {
	client := newFakeClient()
	locker := New(client, time.Second)

	unlock, err := locker.Lock(context.Background(), "EUR:bob")
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err = locker.Lock(ctx, "EUR:bob")
	require.ErrorIs(t, err, ErrNotAcquired)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestUnlockKeepsForeignToken(t *testing.T) {
	client := newFakeClient()
	locker := New(client, time.Second)

	unlock, err := locker.Lock(context.Background(), "GBP:carol")
	require.NoError(t, err)

	// The lock expired and another process took it.
	client.mu.Lock()
	client.keys[keyPrefix+"GBP:carol"] = "other-token"
	client.mu.Unlock()

	unlock()

	holder, held := client.holder("GBP:carol")
	require.True(t, held)
	require.Equal(t, "other-token", holder)
}
