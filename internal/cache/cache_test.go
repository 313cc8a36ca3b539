package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iish/treemap-go/pkg/treemap/tabular"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func dataset(rows int) tabular.Dataset {
	return tabular.NewTable(map[string]int{"a": 0}, make([][]string, rows))
}

func newTestCache(t *testing.T, maxEntries int, ttl time.Duration) (*Cache, *Metrics, *clock) {
	t.Helper()
	clk := &clock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	m := NewMetrics(prometheus.NewRegistry())
	return New(maxEntries, ttl, WithMetrics(m), WithClock(clk.Now)), m, clk
}

func TestCache_GetPut(t *testing.T) {
	c, m, _ := newTestCache(t, 10, time.Hour)

	_, ok := c.Get("a")
	assert.False(t, ok)

	d := dataset(1)
	c.Put("a", d)
	got, ok := c.Get("a")
	require.True(t, ok)
	assert.Same(t, d, got)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Hits))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Misses))
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c, m, _ := newTestCache(t, 2, 0)

	c.Put("a", dataset(1))
	c.Put("b", dataset(2))
	_, _ = c.Get("a")
	c.Put("c", dataset(3))

	assert.Equal(t, 2, c.Len())
	_, ok := c.Get("b")
	assert.False(t, ok, "b was least recently used")
	_, ok = c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Evictions))
}

func TestCache_ExpiresIdleEntries(t *testing.T) {
	c, m, clk := newTestCache(t, 10, time.Minute)

	c.Put("a", dataset(1))
	c.Put("b", dataset(1))

	clk.Advance(40 * time.Second)
	_, ok := c.Get("a")
	require.True(t, ok)

	clk.Advance(40 * time.Second)
	_, ok = c.Get("a")
	assert.True(t, ok, "access extends the lifetime")

	assert.Equal(t, 1, c.Sweep())
	assert.Equal(t, 1, c.Len())
	_, ok = c.Get("b")
	assert.False(t, ok)

	clk.Advance(2 * time.Minute)
	_, ok = c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Evictions))
}

func TestCache_GetOrLoad(t *testing.T) {
	c, _, _ := newTestCache(t, 10, time.Hour)

	var calls atomic.Int32
	release := make(chan struct{})
	load := func(context.Context) (tabular.Dataset, error) {
		calls.Add(1)
		<-release
		return dataset(5), nil
	}

	var wg sync.WaitGroup
	results := make([]tabular.Dataset, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := c.GetOrLoad(context.Background(), "key", load)
			assert.NoError(t, err)
			results[i] = d
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.LessOrEqual(t, calls.Load(), int32(len(results)))
	for _, d := range results {
		require.NotNil(t, d)
		assert.Equal(t, 5, d.Size())
	}

	d, err := c.GetOrLoad(context.Background(), "key", func(context.Context) (tabular.Dataset, error) {
		t.Fatal("loaded a cached dataset")
		return nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 5, d.Size())
}

func TestCache_GetOrLoadError(t *testing.T) {
	c, _, _ := newTestCache(t, 10, time.Hour)
	boom := errors.New("boom")

	_, err := c.GetOrLoad(context.Background(), "key", func(context.Context) (tabular.Dataset, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len())
}

func TestCache_Purge(t *testing.T) {
	c, _, _ := newTestCache(t, 10, time.Hour)
	c.Put("a", dataset(1))
	c.Put("b", dataset(1))

	c.Purge()
	assert.Equal(t, 0, c.Len())
	_, ok := c.Get("a")
	assert.False(t, ok)
}
