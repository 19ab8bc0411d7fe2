package search

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/athlink/cli/pkg/api"
	apierrors "github.com/athlink/cli/pkg/errors"
	"github.com/athlink/cli/pkg/query"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	values []string
}

func (r *recorder) publish(q string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values = append(r.values, q)
}

func (r *recorder) get() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.values...)
}

func TestDebouncer_PublishesOncePerQuietPeriod(t *testing.T) {
	rec := &recorder{}
	d := NewDebouncer(30*time.Millisecond, rec.publish)
	defer d.Stop()

	for _, q := range []string{"s", "sp", "spr", "sprint"} {
		d.Set(q)
		time.Sleep(5 * time.Millisecond)
	}

	require.Eventually(t, func() bool { return len(rec.get()) == 1 }, time.Second, time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, []string{"sprint"}, rec.get())
	assert.Equal(t, "sprint", d.Value())
}

func TestDebouncer_SkipsUnchangedValue(t *testing.T) {
	rec := &recorder{}
	d := NewDebouncer(10*time.Millisecond, rec.publish)
	defer d.Stop()

	d.Set("kai")
	require.Eventually(t, func() bool { return len(rec.get()) == 1 }, time.Second, time.Millisecond)
	d.Set("kai")
	time.Sleep(40 * time.Millisecond)
	d.Set("lee")
	require.Eventually(t, func() bool { return len(rec.get()) == 2 }, time.Second, time.Millisecond)

	assert.Equal(t, []string{"kai", "lee"}, rec.get())
}

func TestDebouncer_StopCancelsPending(t *testing.T) {
	rec := &recorder{}
	d := NewDebouncer(20*time.Millisecond, rec.publish)

	d.Set("kai")
	d.Stop()
	d.Set("lee")
	time.Sleep(60 * time.Millisecond)

	assert.Empty(t, rec.get())
}

func TestDebouncer_FlushPublishesPending(t *testing.T) {
	rec := &recorder{}
	d := NewDebouncer(time.Hour, rec.publish)
	defer d.Stop()

	d.Flush()
	assert.Empty(t, rec.get())

	d.Set("ka")
	d.Set("kai")
	d.Flush()
	d.Flush()

	assert.Equal(t, []string{"kai"}, rec.get())
}

func TestDebouncer_DefaultInterval(t *testing.T) {
	d := NewDebouncer(0, func(string) {})
	assert.Equal(t, DefaultDebounce, d.interval)
}

type fakeSearchAPI struct {
	calls   int32
	failFor int32
	users   []api.User
}

func (f *fakeSearchAPI) SearchUsers(_ context.Context, q string) api.Envelope[api.SearchResult] {
	n := atomic.AddInt32(&f.calls, 1)
	if n <= f.failFor {
		return api.Envelope[api.SearchResult]{Failure: apierrors.ServerError(503), Error: "Server error", StatusCode: 503}
	}
	return api.Envelope[api.SearchResult]{Success: true, Data: api.SearchResult{Users: f.users, Total: len(f.users)}}
}

func (f *fakeSearchAPI) count() int {
	return int(atomic.LoadInt32(&f.calls))
}

func fastOptions() Options {
	opts := DefaultOptions()
	opts.RetryDelay = time.Millisecond
	return opts
}

func TestSearch_EmptyQueryShortCircuits(t *testing.T) {
	fake := &fakeSearchAPI{}
	s := NewSearcher(query.New(0, nil), fake, fastOptions())

	for _, q := range []string{"", "   ", "\t"} {
		res, err := s.Search(context.Background(), q)
		require.NoError(t, err)
		assert.Empty(t, res.Users)
	}
	assert.Equal(t, 0, fake.count())
	assert.False(t, Enabled(" "))
	assert.True(t, Enabled("kai"))
}

func TestSearch_CachesResults(t *testing.T) {
	fake := &fakeSearchAPI{users: []api.User{{ID: 1, Username: gofakeit.Username()}}}
	s := NewSearcher(query.New(0, nil), fake, fastOptions())

	first, err := s.Search(context.Background(), "sprint")
	require.NoError(t, err)
	second, err := s.Search(context.Background(), " sprint ")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, fake.count())
}

func TestSearch_RetriesOnce(t *testing.T) {
	fake := &fakeSearchAPI{failFor: 1}
	s := NewSearcher(query.New(0, nil), fake, fastOptions())

	_, err := s.Search(context.Background(), "kai")

	require.NoError(t, err)
	assert.Equal(t, 2, fake.count())
}

func TestSearch_FailsAfterRetry(t *testing.T) {
	fake := &fakeSearchAPI{failFor: 5}
	s := NewSearcher(query.New(0, nil), fake, fastOptions())

	_, err := s.Search(context.Background(), "kai")

	require.Error(t, err)
	assert.Equal(t, 2, fake.count())
	assert.Equal(t, apierrors.ErrorTypeServer, apierrors.CategorizeError(err).Type)
}

func TestLive(t *testing.T) {
	fake := &fakeSearchAPI{users: []api.User{{ID: 5}}}
	s := NewSearcher(query.New(0, nil), fake, fastOptions())

	outcomes := make(chan Outcome, 4)
	live := NewLive(context.Background(), s, 10*time.Millisecond, func(o Outcome) { outcomes <- o })
	defer live.Stop()

	live.Set("k")
	live.Set("ka")
	live.Set("kai")

	select {
	case o := <-outcomes:
		assert.Equal(t, "kai", o.Query)
		assert.NoError(t, o.Err)
		assert.Equal(t, 1, o.Result.Total)
	case <-time.After(time.Second):
		t.Fatal("no search outcome")
	}

	live.Set("")
	select {
	case o := <-outcomes:
		assert.Empty(t, o.Result.Users)
	case <-time.After(time.Second):
		t.Fatal("no outcome for cleared input")
	}
	assert.Equal(t, 1, fake.count())
}
