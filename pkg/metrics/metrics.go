package metrics

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the client-side Prometheus collectors.
// All methods are safe to call on a nil *Metrics.
type Metrics struct {
	Registry *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Cache metrics, labelled by the first key part ("followers", "posts", ...)
	CacheHitsTotal          *prometheus.CounterVec
	CacheMissesTotal        *prometheus.CounterVec
	CacheFetchErrorsTotal   *prometheus.CounterVec
	CacheInvalidationsTotal *prometheus.CounterVec

	// Mutation outcomes
	MutationsTotal *prometheus.CounterVec

	// Presence pushes delivered to watchers
	PresenceUpdatesTotal prometheus.Counter
}

// New creates a Metrics instance on its own registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "athlink_client_http_requests_total",
				Help: "HTTP requests issued by the client",
			},
			[]string{"method", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "athlink_client_http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		CacheHitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "athlink_client_cache_hits_total",
				Help: "Query cache reads served from a fresh entry",
			},
			[]string{"resource"},
		),
		CacheMissesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "athlink_client_cache_misses_total",
				Help: "Query cache reads that had to fetch",
			},
			[]string{"resource"},
		),
		CacheFetchErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "athlink_client_cache_fetch_errors_total",
				Help: "Query fetches that failed after all retries",
			},
			[]string{"resource"},
		),
		CacheInvalidationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "athlink_client_cache_invalidations_total",
				Help: "Cache keys marked stale",
			},
			[]string{"resource"},
		),
		MutationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "athlink_client_mutations_total",
				Help: "Mutation flows by outcome",
			},
			[]string{"mutation", "outcome"},
		),
		PresenceUpdatesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "athlink_client_presence_updates_total",
				Help: "Presence pushes delivered to watchers",
			},
		),
	}
}

// ObserveHTTP records a completed request. status 0 means a transport failure.
func (m *Metrics) ObserveHTTP(method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.HTTPRequestsTotal.WithLabelValues(method, label).Inc()
	m.HTTPRequestDuration.WithLabelValues(method).Observe(d.Seconds())
}

func (m *Metrics) CacheHit(resource string) {
	if m != nil {
		m.CacheHitsTotal.WithLabelValues(resource).Inc()
	}
}

func (m *Metrics) CacheMiss(resource string) {
	if m != nil {
		m.CacheMissesTotal.WithLabelValues(resource).Inc()
	}
}

func (m *Metrics) CacheFetchError(resource string) {
	if m != nil {
		m.CacheFetchErrorsTotal.WithLabelValues(resource).Inc()
	}
}

func (m *Metrics) CacheInvalidated(resource string) {
	if m != nil {
		m.CacheInvalidationsTotal.WithLabelValues(resource).Inc()
	}
}

// Mutation records a mutation outcome ("success" or "failure")
func (m *Metrics) Mutation(name string, success bool) {
	if m == nil {
		return
	}
	outcome := "failure"
	if success {
		outcome = "success"
	}
	m.MutationsTotal.WithLabelValues(name, outcome).Inc()
}

func (m *Metrics) PresenceUpdate() {
	if m != nil {
		m.PresenceUpdatesTotal.Inc()
	}
}

// Sample is one flattened metric value
type Sample struct {
	Name   string
	Labels string
	Value  float64
}

// Snapshot gathers the registry into sorted samples. Histograms report their sample count.
func (m *Metrics) Snapshot() ([]Sample, error) {
	if m == nil {
		return nil, nil
	}
	families, err := m.Registry.Gather()
	if err != nil {
		return nil, err
	}

	var samples []Sample
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			pairs := make([]string, 0, len(metric.GetLabel()))
			for _, l := range metric.GetLabel() {
				pairs = append(pairs, l.GetName()+"="+l.GetValue())
			}

			var value float64
			switch {
			case metric.GetCounter() != nil:
				value = metric.GetCounter().GetValue()
			case metric.GetGauge() != nil:
				value = metric.GetGauge().GetValue()
			case metric.GetHistogram() != nil:
				value = float64(metric.GetHistogram().GetSampleCount())
			}

			samples = append(samples, Sample{
				Name:   mf.GetName(),
				Labels: strings.Join(pairs, ","),
				Value:  value,
			})
		}
	}

	sort.Slice(samples, func(i, j int) bool {
		if samples[i].Name != samples[j].Name {
			return samples[i].Name < samples[j].Name
		}
		return samples[i].Labels < samples[j].Labels
	})
	return samples, nil
}
