package search

import (
	"context"
	"strings"
	"time"

	"github.com/athlink/cli/pkg/api"
	"github.com/athlink/cli/pkg/logger"
	"github.com/athlink/cli/pkg/query"
)

const (
	// DefaultStaleTime keeps results for a query before searching again
	DefaultStaleTime = 5 * time.Minute
	// DefaultRetries is how many extra attempts follow a failed search
	DefaultRetries = 1
)

// UserSearcher is the slice of the API search needs
type UserSearcher interface {
	SearchUsers(ctx context.Context, q string) api.Envelope[api.SearchResult]
}

// Options tune a Searcher
type Options struct {
	StaleTime  time.Duration
	Retries    int
	RetryDelay time.Duration
}

func DefaultOptions() Options {
	return Options{StaleTime: DefaultStaleTime, Retries: DefaultRetries, RetryDelay: time.Second}
}

// Searcher runs user searches through the query cache
type Searcher struct {
	cache *query.Cache
	api   UserSearcher
	opts  Options
}

func NewSearcher(cache *query.Cache, a UserSearcher, opts Options) *Searcher {
	return &Searcher{cache: cache, api: a, opts: opts}
}

// Enabled reports whether q would reach the network
func Enabled(q string) bool {
	return strings.TrimSpace(q) != ""
}

// Search returns users matching q. Blank queries return an empty result
// without a request.
func (s *Searcher) Search(ctx context.Context, q string) (api.SearchResult, error) {
	q = strings.TrimSpace(q)
	if !Enabled(q) {
		return api.SearchResult{}, nil
	}

	return query.Fetch(ctx, s.cache, query.SearchKey(q), func(ctx context.Context) (api.SearchResult, error) {
		logger.Debug("Searching users", "query", q)
		return s.api.SearchUsers(ctx, q).Result()
	}, query.WithStaleTime(s.opts.StaleTime), query.WithRetry(s.opts.Retries, s.opts.RetryDelay))
}

// Outcome is one settled search
type Outcome struct {
	Query  string
	Result api.SearchResult
	Err    error
}

// Live debounces raw input and searches each settled query
type Live struct {
	ctx       context.Context
	searcher  *Searcher
	debouncer *Debouncer
	onResult  func(Outcome)
}

// NewLive wires a Debouncer to a Searcher. onResult runs on a timer goroutine.
func NewLive(ctx context.Context, s *Searcher, interval time.Duration, onResult func(Outcome)) *Live {
	l := &Live{ctx: ctx, searcher: s, onResult: onResult}
	l.debouncer = NewDebouncer(interval, l.run)
	return l
}

// Set feeds raw input
func (l *Live) Set(q string) {
	l.debouncer.Set(q)
}

// Flush searches pending input without waiting for the quiet period
func (l *Live) Flush() {
	l.debouncer.Flush()
}

// Stop cancels any pending search
func (l *Live) Stop() {
	l.debouncer.Stop()
}

func (l *Live) run(q string) {
	res, err := l.searcher.Search(l.ctx, q)
	l.onResult(Outcome{Query: q, Result: res, Err: err})
}
