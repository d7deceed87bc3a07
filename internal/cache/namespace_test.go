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

func testConfig(name string) Config {
	return Config{
		Name:               name,
		TTL:                time.Minute,
		Capacity:           100,
		NumShards:          1,
		EvictionPercentage: 50,
	}
}

func newTestNamespace[T any](t *testing.T, name string, opts ...Option[T]) *Namespace[T] {
	t.Helper()
	n, err := New[T](testConfig(name), opts...)
	require.NoError(t, err)
	return n
}

// ============================================
// Config Tests
// ============================================

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, testConfig("ok").Validate())

	cases := map[string]func(*Config){
		"name":               func(c *Config) { c.Name = "" },
		"ttl":                func(c *Config) { c.TTL = 0 },
		"capacity":           func(c *Config) { c.Capacity = 0 },
		"numShards":          func(c *Config) { c.NumShards = 0 },
		"evictionPercentage": func(c *Config) { c.EvictionPercentage = 150 },
	}
	for field, mutate := range cases {
		t.Run(field, func(t *testing.T) {
			cfg := testConfig("bad")
			mutate(&cfg)
			var cfgErr *ConfigError
			require.ErrorAs(t, cfg.Validate(), &cfgErr)
			assert.Equal(t, field, cfgErr.Field)
		})
	}
}

func TestConfig_ShardsExceedCapacity(t *testing.T) {
	cfg := testConfig("tiny")
	cfg.Capacity = 2
	cfg.NumShards = 4

	_, err := New[string](cfg)

	assert.Error(t, err)
}

// ============================================
// GetOrCompute Tests
// ============================================

func TestNamespace_GetOrCompute_HitAfterMiss(t *testing.T) {
	n := newTestNamespace[string](t, "byId")
	ctx := context.Background()
	var calls atomic.Int32
	loader := func(ctx context.Context) (string, error) {
		calls.Add(1)
		return "value", nil
	}

	v1, err := n.GetOrCompute(ctx, "p1", loader)
	require.NoError(t, err)
	v2, err := n.GetOrCompute(ctx, "p1", loader)
	require.NoError(t, err)

	assert.Equal(t, "value", v1)
	assert.Equal(t, "value", v2)
	assert.Equal(t, int32(1), calls.Load())

	stats := n.Stats()
	assert.Equal(t, "byId", stats.Name)
	assert.Equal(t, 1, stats.Size)
	assert.Equal(t, int64(1), stats.HitCount)
	assert.Equal(t, int64(1), stats.MissCount)
	assert.InDelta(t, 0.5, stats.HitRate, 0.0001)
	assert.InDelta(t, 0.5, stats.MissRate, 0.0001)
}

func TestNamespace_GetOrCompute_LoaderErrorNotCached(t *testing.T) {
	n := newTestNamespace[string](t, "byId")
	ctx := context.Background()
	boom := errors.New("boom")

	_, err := n.GetOrCompute(ctx, "p1", func(ctx context.Context) (string, error) { return "", boom })
	require.ErrorIs(t, err, boom)

	v, err := n.GetOrCompute(ctx, "p1", func(ctx context.Context) (string, error) { return "ok", nil })
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
}

func TestNamespace_SkipWhen_EmptyNotStored(t *testing.T) {
	n := newTestNamespace(t, "listing", SkipWhen(func(v []string) bool { return len(v) == 0 }))
	ctx := context.Background()
	var calls atomic.Int32
	loader := func(ctx context.Context) ([]string, error) {
		calls.Add(1)
		return []string{}, nil
	}

	for i := 0; i < 3; i++ {
		v, err := n.GetOrCompute(ctx, "k", loader)
		require.NoError(t, err)
		assert.Empty(t, v)
	}

	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, 0, n.Size())
}

// Two concurrent misses on one key: the loader runs at least once, both
// callers see the value, and exactly one entry is stored.
func TestNamespace_ConcurrentMisses_SameKey(t *testing.T) {
	n := newTestNamespace[string](t, "allProducts")
	ctx := context.Background()
	key := Key(0, 20, "price", "asc")

	var calls atomic.Int32
	release := make(chan struct{})
	loader := func(ctx context.Context) (string, error) {
		calls.Add(1)
		<-release
		return "page-0", nil
	}

	var wg sync.WaitGroup
	results := make([]string, 2)
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = n.GetOrCompute(ctx, key, loader)
		}(i)
	}

	time.Sleep(20 * time.Millisecond)
	close(release)

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("concurrent GetOrCompute deadlocked")
	}

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.Equal(t, "page-0", results[0])
	assert.Equal(t, "page-0", results[1])
	assert.GreaterOrEqual(t, calls.Load(), int32(1))
	assert.LessOrEqual(t, calls.Load(), int32(2))
	assert.Equal(t, 1, n.Size())
}

// ============================================
// Invalidation / Eviction Tests
// ============================================

func TestNamespace_Invalidate(t *testing.T) {
	n := newTestNamespace[int](t, "byId")
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, err := n.GetOrCompute(ctx, fmt.Sprint(i), func(ctx context.Context) (int, error) { return i, nil })
		require.NoError(t, err)
	}

	n.Invalidate("3")
	_, ok := n.Get("3")
	assert.False(t, ok)
	assert.Equal(t, 4, n.Size())

	n.InvalidateAll()
	assert.Equal(t, 0, n.Size())
}

func TestNamespace_CapacityEviction(t *testing.T) {
	cfg := testConfig("small")
	cfg.Capacity = 2
	n, err := New[int](cfg)
	require.NoError(t, err)
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		_, err := n.GetOrCompute(ctx, fmt.Sprint(i), func(ctx context.Context) (int, error) { return i, nil })
		require.NoError(t, err)
	}

	assert.LessOrEqual(t, n.Size(), 2)
	assert.Positive(t, n.Stats().EvictionCount)
}

func TestStats_NoRequests(t *testing.T) {
	n := newTestNamespace[int](t, "idle")

	stats := n.Stats()

	assert.Equal(t, 1.0, stats.HitRate)
	assert.Equal(t, 0.0, stats.MissRate)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "p1::0::20", Key("p1", 0, 20))
	assert.Equal(t, "", Key())
}
