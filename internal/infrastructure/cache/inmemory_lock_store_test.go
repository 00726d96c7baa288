package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryLockStore_AcquireRelease(t *testing.T) {
	store := NewInMemoryLockStore()
	defer store.Close()
	ctx := context.Background()

	ok, err := store.Acquire(ctx, "billing:sub-1:2026-10-01", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Acquire(ctx, "billing:sub-1:2026-10-01", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "second acquire must fail while held")

	ok, err = store.Acquire(ctx, "billing:sub-2:2026-10-01", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "other keys are independent")

	require.NoError(t, store.Release(ctx, "billing:sub-1:2026-10-01"))
	ok, err = store.Acquire(ctx, "billing:sub-1:2026-10-01", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestInMemoryLockStore_Expiry(t *testing.T) {
	store := NewInMemoryLockStore()
	defer store.Close()
	ctx := context.Background()

	now := time.Date(2026, 10, 1, 6, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	ok, _ := store.Acquire(ctx, "k", time.Minute)
	require.True(t, ok)

	now = now.Add(61 * time.Second)
	ok, err := store.Acquire(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "expired lock can be retaken")

	now = now.Add(2 * time.Minute)
	store.cleanup()
	assert.Equal(t, 0, store.Size())
}

func TestInMemoryLockStore_ConcurrentAcquire(t *testing.T) {
	store := NewInMemoryLockStore()
	defer store.Close()

	var winners int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := store.Acquire(context.Background(), "cycle", time.Minute); ok {
				atomic.AddInt32(&winners, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), winners)
}

func TestInMemoryLockStore_CloseIsIdempotent(t *testing.T) {
	store := NewInMemoryLockStore()
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())
}
