package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_GetOrLoad_UsesSingleFlight(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return "events", nil
	}

	const workers = 32
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)
	errCh := make(chan error, workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err := store.GetOrLoad(context.Background(), "events:3788741", loader)
			if err != nil {
				errCh <- err
				return
			}
			if got, _ := v.(string); got != "events" {
				errCh <- errUnexpectedValue
			}
		}()
	}

	close(start)
	wg.Wait()
	close(errCh)
	for err := range errCh {
		require.NoError(t, err)
	}

	assert.Equal(t, int32(1), calls.Load())
}

func TestStore_GetOrLoad_CallerCancelDoesNotFailJoinedCallers(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	var loaderCtxErr atomic.Value

	loader := func(ctx context.Context) (any, error) {
		calls.Add(1)
		close(started)
		<-release
		loaderCtxErr.Store(fmt.Sprint(ctx.Err()))
		return "events", nil
	}

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := store.GetOrLoad(firstCtx, "events:3788741", loader)
		firstErr <- err
	}()
	<-started

	type result struct {
		value any
		err   error
	}
	second := make(chan result, 1)
	go func() {
		v, err := store.GetOrLoad(context.Background(), "events:3788741", loader)
		second <- result{value: v, err: err}
	}()

	cancelFirst()
	require.ErrorIs(t, <-firstErr, context.Canceled)

	close(release)
	got := <-second
	require.NoError(t, got.err)
	assert.Equal(t, "events", got.value)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, "<nil>", loaderCtxErr.Load())

	cached, ok := store.Get(context.Background(), "events:3788741")
	require.True(t, ok)
	assert.Equal(t, "events", cached)
}

func TestStore_ExpiresEntries(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Second)
	now := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	store.Set(context.Background(), "matches:37:90", 42)
	_, ok := store.Get(context.Background(), "matches:37:90")
	require.True(t, ok)

	now = now.Add(2 * time.Second)
	_, ok = store.Get(context.Background(), "matches:37:90")
	assert.False(t, ok)
	assert.Equal(t, 0, store.Stats().Entries)
}

func TestStore_EvictsOldestWhenFull(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute, WithMaxEntries(2))
	ctx := context.Background()
	store.Set(ctx, "events:1", 1)
	store.Set(ctx, "events:2", 2)
	store.Set(ctx, "events:1", 10)
	store.Set(ctx, "events:3", 3)

	_, ok := store.Get(ctx, "events:2")
	assert.False(t, ok, "oldest key should be evicted")
	v, ok := store.Get(ctx, "events:1")
	require.True(t, ok)
	assert.Equal(t, 10, v)

	stats := store.Stats()
	assert.Equal(t, 2, stats.Entries)
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
}

func TestLoad_TypedAndNilStore(t *testing.T) {
	t.Parallel()

	var disabled *Store
	var calls int
	loader := func(context.Context) ([]int, error) {
		calls++
		return []int{1, 2}, nil
	}

	for i := 0; i < 2; i++ {
		got, err := Load(context.Background(), disabled, "k", loader)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2}, got)
	}
	assert.Equal(t, 2, calls, "nil store must not cache")

	store := NewStore(time.Minute)
	store.Set(context.Background(), "k", "not a slice")
	_, err := Load(context.Background(), store, "k", loader)
	assert.Error(t, err)
}

func TestStore_GetOrLoad_DoesNotCacheErrors(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	_, err := store.GetOrLoad(context.Background(), "k", func(context.Context) (any, error) {
		return nil, errUnexpectedValue
	})
	require.ErrorIs(t, err, errUnexpectedValue)

	_, ok := store.Get(context.Background(), "k")
	assert.False(t, ok)
}

var errUnexpectedValue = errors.New("unexpected loaded value")
