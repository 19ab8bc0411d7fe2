package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/athlink/cli/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, seen *http.Header) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*seen = r.Header.Clone()
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClientDefaults(t *testing.T) {
	var headers http.Header
	srv := newTestServer(t, &headers)
	c := New(Options{BaseURL: srv.URL})

	_, err := c.R(context.Background()).Get("/ping")
	require.NoError(t, err)

	assert.Equal(t, defaultUserAgent, headers.Get("User-Agent"))
	assert.NotEmpty(t, headers.Get("X-Request-ID"))
	assert.Empty(t, headers.Get("Authorization"))
	assert.Equal(t, srv.URL, c.BaseURL())
}

func TestSetAndClearAuthToken(t *testing.T) {
	var headers http.Header
	srv := newTestServer(t, &headers)
	c := New(Options{BaseURL: srv.URL})

	c.SetAuthToken("test_token_12345")
	_, err := c.R(context.Background()).Get("/ping")
	require.NoError(t, err)
	assert.Equal(t, "Bearer test_token_12345", headers.Get("Authorization"))
	assert.Equal(t, "test_token_12345", c.AuthToken())

	c.ClearAuthToken()
	_, err = c.R(context.Background()).Get("/ping")
	require.NoError(t, err)
	assert.Empty(t, headers.Get("Authorization"))
}

func TestImpersonation(t *testing.T) {
	var headers http.Header
	srv := newTestServer(t, &headers)
	c := New(Options{BaseURL: srv.URL})

	c.SetImpersonateUser("admin@example.com")
	_, err := c.R(context.Background()).Get("/ping")
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", headers.Get("X-Impersonate-User"))

	c.ClearImpersonateUser()
	_, err = c.R(context.Background()).Get("/ping")
	require.NoError(t, err)
	assert.Empty(t, headers.Get("X-Impersonate-User"))
}

func TestRequestIDIsUniquePerRequest(t *testing.T) {
	var headers http.Header
	srv := newTestServer(t, &headers)
	c := New(Options{BaseURL: srv.URL})

	_, err := c.R(context.Background()).Get("/a")
	require.NoError(t, err)
	first := headers.Get("X-Request-ID")
	_, err = c.R(context.Background()).Get("/b")
	require.NoError(t, err)

	assert.NotEqual(t, first, headers.Get("X-Request-ID"))
}

func TestMetricsRecorded(t *testing.T) {
	var headers http.Header
	srv := newTestServer(t, &headers)
	m := metrics.New()
	c := New(Options{BaseURL: srv.URL, Metrics: m})

	_, err := c.R(context.Background()).Get("/ping")
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "204")))
}

func TestTransportErrorRecorded(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	m := metrics.New()
	c := New(Options{BaseURL: url, Metrics: m})

	_, err := c.R(context.Background()).Get("/ping")
	require.Error(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "error")))
}
