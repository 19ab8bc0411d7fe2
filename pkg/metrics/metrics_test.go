package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveHTTP(t *testing.T) {
	m := New()

	m.ObserveHTTP("GET", 200, 10*time.Millisecond)
	m.ObserveHTTP("GET", 200, 20*time.Millisecond)
	m.ObserveHTTP("POST", 0, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("POST", "error")))
}

func TestCacheAndMutationCounters(t *testing.T) {
	m := New()

	m.CacheHit("posts")
	m.CacheMiss("posts")
	m.CacheMiss("posts")
	m.CacheInvalidated("followers")
	m.CacheFetchError("users")
	m.Mutation("follow", true)
	m.Mutation("follow", false)
	m.PresenceUpdate()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheHitsTotal.WithLabelValues("posts")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheMissesTotal.WithLabelValues("posts")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheInvalidationsTotal.WithLabelValues("followers")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheFetchErrorsTotal.WithLabelValues("users")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MutationsTotal.WithLabelValues("follow", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MutationsTotal.WithLabelValues("follow", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PresenceUpdatesTotal))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveHTTP("GET", 200, time.Millisecond)
		m.CacheHit("posts")
		m.Mutation("follow", true)
		m.PresenceUpdate()
	})
	samples, err := m.Snapshot()
	assert.NoError(t, err)
	assert.Nil(t, samples)
}

func TestSnapshot(t *testing.T) {
	m := New()
	m.CacheHit("posts")
	m.ObserveHTTP("GET", 404, time.Millisecond)

	samples, err := m.Snapshot()
	require.NoError(t, err)

	byName := map[string]Sample{}
	for _, s := range samples {
		byName[s.Name+"{"+s.Labels+"}"] = s
	}
	assert.Equal(t, 1.0, byName["athlink_client_cache_hits_total{resource=posts}"].Value)
	assert.Equal(t, 1.0, byName["athlink_client_http_requests_total{method=GET,status=404}"].Value)
	assert.Equal(t, 1.0, byName["athlink_client_http_request_duration_seconds{method=GET}"].Value)
}
