package client

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/athlink/cli/pkg/logger"
	"github.com/athlink/cli/pkg/metrics"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	json "github.com/json-iterator/go"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	defaultUserAgent = "Athlink-CLI/0.1.0"
	defaultTimeout   = 30 * time.Second
)

// Options configures a Client
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	// Transport is wrapped with otelhttp; http.DefaultTransport when nil
	Transport http.RoundTripper
	Metrics   *metrics.Metrics
}

// Client is the HTTP client shared by every API call
type Client struct {
	http *resty.Client

	mu              sync.RWMutex
	token           string
	impersonateUser string
}

// New creates a Client
func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	base := opts.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	c := &Client{http: resty.New()}
	c.http.SetTransport(otelhttp.NewTransport(base))
	c.http.SetBaseURL(opts.BaseURL)
	c.http.SetTimeout(opts.Timeout)
	c.http.SetHeader("User-Agent", opts.UserAgent)
	c.http.SetJSONMarshaler(json.Marshal)
	c.http.SetJSONUnmarshaler(json.Unmarshal)

	c.http.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		req.SetHeader("X-Request-ID", uuid.NewString())

		c.mu.RLock()
		token, impersonate := c.token, c.impersonateUser
		c.mu.RUnlock()

		if token != "" {
			req.SetAuthToken(token)
		}
		if impersonate != "" {
			req.SetHeader("X-Impersonate-User", impersonate)
			logger.Debug("Impersonating user", "email", impersonate)
		}

		logger.Debug("HTTP Request", "method", req.Method, "url", req.URL)
		return nil
	})

	c.http.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		logger.Debug("HTTP Response", "status", resp.StatusCode(), "duration", resp.Time())
		opts.Metrics.ObserveHTTP(resp.Request.Method, resp.StatusCode(), resp.Time())
		return nil
	})

	c.http.OnError(func(req *resty.Request, err error) {
		logger.Debug("HTTP Error", "method", req.Method, "url", req.URL, "error", err)
		opts.Metrics.ObserveHTTP(req.Method, 0, time.Since(req.Time))
	})

	return c
}

// R starts a request bound to ctx
func (c *Client) R(ctx context.Context) *resty.Request {
	return c.http.R().SetContext(ctx)
}

// Resty exposes the underlying resty client
func (c *Client) Resty() *resty.Client {
	return c.http
}

// BaseURL returns the configured API base URL
func (c *Client) BaseURL() string {
	return c.http.BaseURL
}

// SetAuthToken sets the bearer token sent with every request
func (c *Client) SetAuthToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// ClearAuthToken clears the bearer token
func (c *Client) ClearAuthToken() {
	c.SetAuthToken("")
}

// AuthToken returns the current bearer token
func (c *Client) AuthToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetImpersonateUser sets the user to impersonate for API requests (admin only)
func (c *Client) SetImpersonateUser(email string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.impersonateUser = email
}

// ClearImpersonateUser clears the impersonation
func (c *Client) ClearImpersonateUser() {
	c.SetImpersonateUser("")
}
