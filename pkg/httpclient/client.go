package httpclient

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	apperrors "github.com/coreforge/storefront/pkg/errors"
)

// Config holds call wrapper configuration.
type Config struct {
	// Timeout bounds each individual attempt.
	Timeout time.Duration
	// MaxAttempts is the total number of attempts for connectivity-class
	// failures. Application-class failures are never retried.
	MaxAttempts int
	// BaseDelay is multiplied by the attempt number for the wait between
	// attempts (linear backoff: 1×, 2×, ...).
	BaseDelay time.Duration
	// MaxConnsPerHost caps the connection pool per host.
	MaxConnsPerHost int
}

// DefaultConfig returns the defaults used by the storefront: 10s per attempt,
// 3 attempts, 1s base delay.
func DefaultConfig() Config {
	return Config{
		Timeout:         10 * time.Second,
		MaxAttempts:     3,
		BaseDelay:       time.Second,
		MaxConnsPerHost: 100,
	}
}

var callRetriesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "httpclient_retries_total",
		Help: "Total number of retried HTTP attempts after connectivity failures",
	},
	[]string{"host"},
)

// Doer is the minimal call interface the resource protocol consumes. Both
// Client and CircuitBreakerClient satisfy it.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Client wraps http.Client with bounded retries for connectivity-class
// failures. Retry state is scoped to each call; concurrent calls never share
// counters. Any valid HTTP response, whatever its status, is returned without
// retry: non-2xx handling is an application concern (see CheckResponse).
type Client struct {
	httpClient *http.Client
	config     Config
	notifier   Notifier
}

// New creates a call wrapper with connection pooling and the given config.
func New(cfg Config) *Client {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:   true,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: cfg.MaxConnsPerHost,
		MaxConnsPerHost:     cfg.MaxConnsPerHost,
		IdleConnTimeout:     90 * time.Second,
	}

	return &Client{
		httpClient: &http.Client{Transport: transport},
		config:     cfg,
		notifier:   NopNotifier{},
	}
}

// WithNotifier returns a copy of the client that reports retry and terminal
// failure events to the given notifier.
func (c *Client) WithNotifier(n Notifier) *Client {
	cpy := *c
	if n != nil {
		cpy.notifier = n
	}
	return &cpy
}

// Do executes the request with per-attempt timeouts and bounded retries.
// Connectivity-class failures are retried up to MaxAttempts total attempts
// with a linearly increasing delay; the final failure surfaces as
// errors.ErrUnreachable. Caller cancellation is honored between attempts but
// an issued attempt always runs to its own timeout.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	host := req.URL.Host

	var lastErr error
	for attempt := 1; attempt <= c.config.MaxAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
		attemptReq := req.Clone(attemptCtx)
		if attempt > 1 && req.GetBody != nil {
			body, bodyErr := req.GetBody()
			if bodyErr != nil {
				cancel()
				return nil, fmt.Errorf("rewind request body: %w", bodyErr)
			}
			attemptReq.Body = body
		}

		resp, err := c.httpClient.Do(attemptReq)
		if err == nil {
			// The body outlives this function; tie the attempt context to it.
			resp.Body = &cancelReadCloser{ReadCloser: resp.Body, cancel: cancel}
			return resp, nil
		}
		cancel()

		if ctx.Err() != nil {
			// The caller gave up; do not classify or retry.
			return nil, ctx.Err()
		}

		if !IsConnectivityError(err) {
			return nil, fmt.Errorf("http request failed: %w", err)
		}

		lastErr = err
		if attempt == c.config.MaxAttempts {
			break
		}

		wait := time.Duration(attempt) * c.config.BaseDelay
		c.notifier.RetryScheduled(host, attempt, c.config.MaxAttempts, wait)
		callRetriesTotal.WithLabelValues(host).Inc()

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	c.notifier.Unreachable(host, lastErr)
	return nil, apperrors.Unreachable(host, lastErr)
}

// Get performs a GET request through the wrapper.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create GET request: %w", err)
	}
	return c.Do(ctx, req)
}

// Post performs a POST request through the wrapper.
func (c *Client) Post(ctx context.Context, url, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, fmt.Errorf("create POST request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	return c.Do(ctx, req)
}

// cancelReadCloser releases the attempt context when the body is closed.
type cancelReadCloser struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelReadCloser) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}
