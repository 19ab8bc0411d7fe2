package query

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/athlink/cli/pkg/api"
	"github.com/athlink/cli/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counter(values ...string) (func(context.Context) (string, error), *int32) {
	var calls int32
	return func(context.Context) (string, error) {
		n := atomic.AddInt32(&calls, 1)
		if int(n) <= len(values) {
			return values[n-1], nil
		}
		return values[len(values)-1], nil
	}, &calls
}

func TestKeys(t *testing.T) {
	assert.Equal(t, Key("followers/7"), FollowersKey(7))
	assert.Equal(t, Key("following/3"), FollowingKey(3))
	assert.Equal(t, Key("follow/3/7"), FollowDetailKey(3, 7))
	assert.Equal(t, Key("posts/list/page=2/author=0"), PostListKey(api.PostFilter{Page: 2}))
	assert.Equal(t, Key("opportunities/list/page=0/type=JOB"), OpportunityListKey(api.OpportunityFilter{Type: api.OpportunityJob}))

	assert.Equal(t, "followers", FollowersKey(7).Resource())
	assert.True(t, PostListKey(api.PostFilter{}).HasPrefix(PostListsKey()))
	assert.True(t, PostListsKey().HasPrefix(PostListsKey()))
	assert.False(t, Key("postsX/list").HasPrefix(K("posts")))
}

func TestFetch_CachesWithinStaleTime(t *testing.T) {
	c := New(StaleNever, nil)
	fetch, calls := counter("a", "b")
	ctx := context.Background()

	v, err := Fetch(ctx, c, UserKey(1), fetch)
	require.NoError(t, err)
	assert.Equal(t, "a", v)

	v, err = Fetch(ctx, c, UserKey(1), fetch)
	require.NoError(t, err)
	assert.Equal(t, "a", v)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestFetch_ZeroStaleTimeAlwaysRefetches(t *testing.T) {
	c := New(0, nil)
	fetch, calls := counter("a", "b")
	ctx := context.Background()

	_, _ = Fetch(ctx, c, UserKey(1), fetch)
	v, err := Fetch(ctx, c, UserKey(1), fetch)

	require.NoError(t, err)
	assert.Equal(t, "b", v)
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
}

func TestFetch_StaleTimeExpires(t *testing.T) {
	c := New(0, nil)
	now := time.Now()
	c.now = func() time.Time { return now }
	fetch, calls := counter("a", "b")
	ctx := context.Background()

	_, _ = Fetch(ctx, c, SearchKey("kai"), fetch, WithStaleTime(5*time.Minute))
	now = now.Add(4 * time.Minute)
	v, _ := Fetch(ctx, c, SearchKey("kai"), fetch, WithStaleTime(5*time.Minute))
	assert.Equal(t, "a", v)

	now = now.Add(time.Minute)
	v, _ = Fetch(ctx, c, SearchKey("kai"), fetch, WithStaleTime(5*time.Minute))
	assert.Equal(t, "b", v)
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
}

func TestInvalidate_ForcesRefetch(t *testing.T) {
	c := New(StaleNever, nil)
	fetch, calls := counter("before", "after")
	ctx := context.Background()

	_, _ = Fetch(ctx, c, FollowersKey(7), fetch)
	assert.False(t, c.IsStale(FollowersKey(7)))

	c.Invalidate(FollowersKey(7), FollowersKey(7))
	assert.True(t, c.IsStale(FollowersKey(7)))

	v, err := Fetch(ctx, c, FollowersKey(7), fetch)
	require.NoError(t, err)
	assert.Equal(t, "after", v)
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
	assert.False(t, c.IsStale(FollowersKey(7)))
}

func TestInvalidate_UnknownKeyIsStale(t *testing.T) {
	c := New(StaleNever, nil)
	c.Invalidate(FollowingKey(3))

	assert.True(t, c.IsStale(FollowingKey(3)))
	assert.False(t, c.State(FollowingKey(3)).HasData)
}

func TestInvalidate_LeavesOtherKeysAlone(t *testing.T) {
	c := New(StaleNever, nil)
	c.Set(FollowersKey(7), "x")
	c.Set(FollowersKey(8), "y")

	c.Invalidate(FollowersKey(7))

	assert.True(t, c.IsStale(FollowersKey(7)))
	assert.False(t, c.IsStale(FollowersKey(8)))
}

func TestInvalidate_DuringFetchKeepsEntryStale(t *testing.T) {
	c := New(StaleNever, nil)
	started := make(chan struct{})
	release := make(chan struct{})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = Fetch(context.Background(), c, FollowersKey(7), func(context.Context) (string, error) {
			close(started)
			<-release
			return "old", nil
		})
	}()

	<-started
	c.Invalidate(FollowersKey(7))
	close(release)
	<-done

	assert.True(t, c.IsStale(FollowersKey(7)))
	v, ok := Get[string](c, FollowersKey(7))
	assert.True(t, ok)
	assert.Equal(t, "old", v)
}

func TestClear_DuringFetchDropsResult(t *testing.T) {
	c := New(StaleNever, nil)
	started := make(chan struct{})
	release := make(chan struct{})

	done := make(chan struct{})
	go func() {
		defer close(done)
		v, err := Fetch(context.Background(), c, UserKey(1), func(context.Context) (string, error) {
			close(started)
			<-release
			return "previous-session-user", nil
		})
		assert.NoError(t, err)
		assert.Equal(t, "previous-session-user", v)
	}()

	<-started
	c.Clear()
	close(release)
	<-done

	_, ok := Get[string](c, UserKey(1))
	assert.False(t, ok)
	assert.True(t, c.IsStale(UserKey(1)))

	fetch, calls := counter("current-user")
	v, err := Fetch(context.Background(), c, UserKey(1), fetch)
	require.NoError(t, err)
	assert.Equal(t, "current-user", v)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestRemove_DuringFetchDropsResult(t *testing.T) {
	c := New(StaleNever, nil)
	started := make(chan struct{})
	release := make(chan struct{})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = Fetch(context.Background(), c, PostKey(3), func(context.Context) (string, error) {
			close(started)
			<-release
			return "deleted post", nil
		})
	}()

	<-started
	c.Remove(PostKey(3))
	close(release)
	<-done

	_, ok := Get[string](c, PostKey(3))
	assert.False(t, ok)
}

func TestInvalidatePrefix(t *testing.T) {
	c := New(StaleNever, nil)
	first := PostListKey(api.PostFilter{Page: 1})
	second := PostListKey(api.PostFilter{Page: 1, AuthorID: 4})
	c.Set(first, "p1")
	c.Set(second, "p2")
	c.Set(PostKey(1), "post")

	keys := c.InvalidatePrefix(PostListsKey())

	assert.ElementsMatch(t, []Key{first, second}, keys)
	assert.True(t, c.IsStale(first))
	assert.True(t, c.IsStale(second))
	assert.False(t, c.IsStale(PostKey(1)))
}

func TestFetch_DeduplicatesConcurrentCalls(t *testing.T) {
	c := New(StaleNever, nil)
	var calls int32
	release := make(chan struct{})
	fetch := func(context.Context) (int, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return 42, nil
	}

	var wg sync.WaitGroup
	results := make([]int, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = Fetch(context.Background(), c, UserKey(1), fetch)
		}(i)
	}

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&calls) == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, []int{42, 42, 42, 42, 42}, results)
}

func TestFetch_RetriesOnce(t *testing.T) {
	c := New(StaleNever, nil)
	var calls int32
	fetch := func(context.Context) (string, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			return "", errors.New("boom")
		}
		return "ok", nil
	}

	v, err := Fetch(context.Background(), c, SearchKey("lee"), fetch, WithRetry(1, time.Millisecond))

	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestFetch_FailureKeepsPreviousData(t *testing.T) {
	m := metrics.New()
	c := New(0, m)
	c.Set(UserKey(1), "cached")

	_, err := Fetch(context.Background(), c, UserKey(1), func(context.Context) (string, error) {
		return "", errors.New("down")
	}, WithRetry(1, time.Millisecond))

	require.Error(t, err)
	v, ok := Get[string](c, UserKey(1))
	assert.True(t, ok)
	assert.Equal(t, "cached", v)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CacheFetchErrorsTotal.WithLabelValues("user")))
}

func TestFetch_RetryStopsOnCancel(t *testing.T) {
	c := New(0, nil)
	ctx, cancel := context.WithCancel(context.Background())
	fetch := func(context.Context) (string, error) {
		cancel()
		return "", errors.New("boom")
	}

	_, err := Fetch(ctx, c, UserKey(2), fetch, WithRetry(3, time.Hour))

	assert.ErrorIs(t, err, context.Canceled)
}

func TestFetch_TypeMismatch(t *testing.T) {
	c := New(StaleNever, nil)
	c.Set(UserKey(1), 5)

	_, err := Fetch(context.Background(), c, UserKey(1), func(context.Context) (string, error) {
		return "x", nil
	})

	assert.Error(t, err)
}

func TestSubscribe(t *testing.T) {
	c := New(StaleNever, nil)
	var mu sync.Mutex
	var keyEvents, allEvents []Event

	unsubscribe := c.Subscribe(FollowersKey(7), func(ev Event) {
		mu.Lock()
		defer mu.Unlock()
		keyEvents = append(keyEvents, ev)
	})
	c.SubscribeAll(func(ev Event) {
		mu.Lock()
		defer mu.Unlock()
		allEvents = append(allEvents, ev)
	})

	c.Set(FollowersKey(7), "x")
	c.Invalidate(FollowersKey(7), FollowingKey(3))
	unsubscribe()
	c.Remove(FollowersKey(7))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []Event{
		{Key: FollowersKey(7), Type: EventUpdated},
		{Key: FollowersKey(7), Type: EventInvalidated},
	}, keyEvents)
	assert.Len(t, allEvents, 4)
	assert.Equal(t, EventRemoved, allEvents[3].Type)
}

func TestClear(t *testing.T) {
	c := New(StaleNever, nil)
	c.Set(UserKey(1), "a")
	c.Set(UserKey(2), "b")

	c.Clear()

	_, ok := Get[string](c, UserKey(1))
	assert.False(t, ok)
	assert.True(t, c.IsStale(UserKey(2)))
}

func TestCacheMetrics(t *testing.T) {
	m := metrics.New()
	c := New(StaleNever, m)
	fetch, _ := counter("a")
	ctx := context.Background()

	_, _ = Fetch(ctx, c, UserKey(1), fetch)
	_, _ = Fetch(ctx, c, UserKey(1), fetch)
	c.Invalidate(UserKey(1))

	assert.Equal(t, float64(1), testutil.ToFloat64(m.CacheMissesTotal.WithLabelValues("user")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CacheHitsTotal.WithLabelValues("user")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CacheInvalidationsTotal.WithLabelValues("user")))
}
