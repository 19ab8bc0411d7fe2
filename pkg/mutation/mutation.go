package mutation

import (
	"github.com/athlink/cli/pkg/api"
	"github.com/athlink/cli/pkg/logger"
	"github.com/athlink/cli/pkg/metrics"
	"github.com/athlink/cli/pkg/notice"
	"github.com/athlink/cli/pkg/query"
)

// Result is what a mutation flow hands back to the caller
type Result[T any] struct {
	Data        T
	Notice      notice.Notice
	Invalidated []query.Key
	Err         error
}

// OK reports whether the server accepted the mutation
func (r Result[T]) OK() bool {
	return r.Err == nil
}

// Deps are the shared resources every flow needs
type Deps struct {
	Cache   *query.Cache
	Metrics *metrics.Metrics
}

// scope is what a successful mutation makes stale
type scope struct {
	keys     []query.Key
	prefixes []query.Key
}

func fixed[T any](s scope) func(T) scope {
	return func(T) scope { return s }
}

// settle turns an envelope into a Result. On success the scope is
// invalidated; on failure nothing is.
func settle[T any](d Deps, name string, env api.Envelope[T], successMsg string, scopeOf func(T) scope) Result[T] {
	if !env.Success {
		d.Metrics.Mutation(name, false)
		logger.Warn("Mutation failed", "mutation", name, "status", env.StatusCode, "error", env.FailureMessage())
		return Result[T]{
			Data:   env.Data,
			Notice: notice.Error(env.FailureMessage()),
			Err:    env.Err(),
		}
	}

	s := scopeOf(env.Data)
	d.Cache.Invalidate(s.keys...)
	invalidated := append([]query.Key(nil), s.keys...)
	for _, prefix := range s.prefixes {
		invalidated = append(invalidated, d.Cache.InvalidatePrefix(prefix)...)
	}
	d.Metrics.Mutation(name, true)
	logger.Debug("Mutation succeeded", "mutation", name, "invalidated", len(invalidated))

	msg := env.Message
	if msg == "" {
		msg = successMsg
	}
	return Result[T]{
		Data:        env.Data,
		Notice:      notice.Success(msg),
		Invalidated: invalidated,
	}
}
