package svgcache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type icon struct{ name string }

func TestConcurrentAcquire(t *testing.T) {
	const n = 32
	c := New[*icon](nil)
	var (
		builds  int32
		release = make(chan struct{})
		wg      sync.WaitGroup
		results = make([]*icon, n)
	)
	build := func(context.Context) (*icon, error) {
		atomic.AddInt32(&builds, 1)
		<-release
		return &icon{name: "a.svg"}, nil
	}
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := c.Acquire(context.Background(), "a.svg", build)
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&builds))
	for _, r := range results {
		assert.Same(t, results[0], r)
	}
	stats := c.Stats()
	assert.Equal(t, 1, stats.Entries)
	assert.Equal(t, 1, stats.Builds)

	for i := 0; i < n; i++ {
		assert.True(t, c.Release("a.svg"))
	}
	assert.Equal(t, 0, c.Len())
	assert.False(t, c.Release("a.svg"))
}

func TestFailedBuildNotCached(t *testing.T) {
	c := New[*icon](nil)
	errBroken := errors.New("broken")
	calls := 0
	build := func(context.Context) (*icon, error) {
		calls++
		if calls == 1 {
			return nil, errBroken
		}
		return &icon{name: "b.svg"}, nil
	}

	_, err := c.Acquire(context.Background(), "b.svg", build)
	require.ErrorIs(t, err, errBroken)
	assert.Equal(t, 0, c.Len())

	v, err := c.Acquire(context.Background(), "b.svg", build)
	require.NoError(t, err)
	assert.Equal(t, "b.svg", v.name)
	assert.Equal(t, 2, calls)
	assert.Equal(t, Stats{Entries: 1, Builds: 1, Failures: 1}, c.Stats())
}

func TestFailureSharedByWaiters(t *testing.T) {
	const n = 16
	c := New[*icon](nil)
	errBroken := errors.New("broken")
	var (
		builds  int32
		release = make(chan struct{})
		wg      sync.WaitGroup
		errs    = make([]error, n)
	)
	build := func(context.Context) (*icon, error) {
		atomic.AddInt32(&builds, 1)
		<-release
		return nil, errBroken
	}
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.Acquire(context.Background(), "c.svg", build)
		}(i)
	}
	require.Eventually(t, func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		return c.waiting["c.svg"] == n
	}, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&builds))
	for _, err := range errs {
		assert.ErrorIs(t, err, errBroken)
	}
	assert.Equal(t, Stats{Failures: 1}, c.Stats())
	assert.Empty(t, c.waiting)
}

func TestInterleavedAcquireRelease(t *testing.T) {
	c := New[*icon](nil)
	build := func(context.Context) (*icon, error) { return &icon{name: "d.svg"}, nil }
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				v, err := c.Acquire(context.Background(), "d.svg", build)
				if !assert.NoError(t, err) {
					return
				}
				assert.Equal(t, "d.svg", v.name)
				assert.True(t, c.Release("d.svg"))
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, c.Len())
	assert.Empty(t, c.waiting)
	assert.GreaterOrEqual(t, c.Stats().Builds, 1)
}

func TestSharedReferences(t *testing.T) {
	c := New[*icon](nil)
	build := func(context.Context) (*icon, error) { return &icon{}, nil }

	v1, err := c.Acquire(context.Background(), "k", build)
	require.NoError(t, err)
	v2, err := c.Acquire(context.Background(), "k", build)
	require.NoError(t, err)
	assert.Same(t, v1, v2)
	assert.Equal(t, 1, c.Stats().Hits)

	assert.True(t, c.Release("k"))
	assert.Equal(t, 1, c.Len()) // still held once
	assert.True(t, c.Release("k"))
	assert.Equal(t, 0, c.Len())

	v3, err := c.Acquire(context.Background(), "k", build)
	require.NoError(t, err)
	assert.NotSame(t, v1, v3)
}

func TestIndependentCaches(t *testing.T) {
	c1, c2 := New[int](nil), New[int](nil)
	assert.NotSame(t, c1.Lock(), c2.Lock())

	lock := new(TxLock)
	assert.Same(t, lock, New[int](lock).Lock())
}
