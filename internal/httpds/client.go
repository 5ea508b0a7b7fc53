// Package httpds dispatches outbound vendor HTTP requests: it spaces
// them through a per-adapter rate limiter, retries transient failures
// with the policy vendors in this market actually tolerate, and keeps
// a masked diagnostic trace of the latest attempt.
package httpds

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"numgate/internal/metrics"
)

// Response is a fully drained vendor response.
type Response struct {
	Status     int
	StatusText string
	Header     http.Header
	Body       []byte
}

// Options configures a Client.
type Options struct {
	// Vendor names the upstream in metrics and traces.
	Vendor string

	// MinSpacing is the minimum gap between dispatches. Zero disables
	// throttling.
	MinSpacing time.Duration

	// MaxAttempts caps attempts per call, including the first.
	// Defaults to 3.
	MaxAttempts int

	// AttemptTimeout bounds each individual attempt. Defaults to 30s.
	// Exceeding it counts as a network failure.
	AttemptTimeout time.Duration

	// BaseBackoff scales retry delays. Defaults to 1s.
	BaseBackoff time.Duration

	// Transport overrides the round tripper (tests, proxies).
	Transport http.RoundTripper

	// sleep is a test seam; production code leaves it nil.
	sleep func(ctx context.Context, d time.Duration) bool
}

// Client executes vendor requests under the rate-limit and retry
// policy. One Client belongs to one adapter instance; the limiter
// watermark is its only cross-call state.
type Client struct {
	vendor         string
	httpClient     *http.Client
	limiter        *Limiter
	maxAttempts    int
	attemptTimeout time.Duration
	baseBackoff    time.Duration

	sleep func(ctx context.Context, d time.Duration) bool

	lastTrace atomic.Pointer[Trace]
}

// NewClient builds a dispatcher for one vendor.
func NewClient(opts Options) *Client {
	maxAttempts := opts.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	attemptTimeout := opts.AttemptTimeout
	if attemptTimeout <= 0 {
		attemptTimeout = 30 * time.Second
	}
	baseBackoff := opts.BaseBackoff
	if baseBackoff <= 0 {
		baseBackoff = time.Second
	}
	transport := opts.Transport
	if transport == nil {
		transport = &http.Transport{
			IdleConnTimeout:     90 * time.Second,
			MaxIdleConns:        64,
			MaxIdleConnsPerHost: 16,
		}
	}
	sleep := opts.sleep
	if sleep == nil {
		sleep = sleepContext
	}

	return &Client{
		vendor:         opts.Vendor,
		httpClient:     &http.Client{Transport: transport},
		limiter:        NewLimiter(opts.MinSpacing),
		maxAttempts:    maxAttempts,
		attemptTimeout: attemptTimeout,
		baseBackoff:    baseBackoff,
		sleep:          sleep,
	}
}

// LastTrace returns the diagnostic snapshot of the most recent attempt
// made through this client, or nil before the first dispatch.
func (c *Client) LastTrace() *Trace {
	return c.lastTrace.Load()
}

// Do executes req under the retry policy and returns the drained
// response.
//
// Retry policy, at most MaxAttempts attempts:
//   - 429: wait Retry-After plus a 1s buffer when the header is
//     usable, otherwise exponential backoff.
//   - 5xx and network/timeout failures: linear backoff
//     (attempt x base).
//   - any other non-2xx: fail immediately, no retry.
//
// The final failure is always an *APIError; Status 0 means no response
// was received and Unwrap carries the transport cause.
func (c *Client) Do(ctx context.Context, op string, req *http.Request) (*Response, error) {
	var lastErr *APIError

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if wait := c.limiter.Reserve(time.Now()); wait > 0 {
			if !c.sleep(ctx, wait) {
				return nil, &APIError{URL: maskURL(req.URL), cause: ctx.Err()}
			}
		}

		resp, apiErr, retryAfter := c.attempt(ctx, op, req)
		if apiErr == nil {
			return resp, nil
		}
		lastErr = apiErr

		if !retriableStatus(apiErr.Status) || attempt == c.maxAttempts {
			return nil, apiErr
		}
		if !c.sleep(ctx, c.retryDelay(apiErr.Status, retryAfter, attempt)) {
			return nil, apiErr
		}
	}

	return nil, lastErr
}

// attempt performs one dispatch with an independent timeout and
// records its trace and metrics.
func (c *Client) attempt(ctx context.Context, op string, req *http.Request) (*Response, *APIError, time.Duration) {
	actx, cancel := context.WithTimeout(ctx, c.attemptTimeout)
	defer cancel()

	r := req.Clone(actx)
	tr := &Trace{
		Method:  r.Method,
		URL:     maskURL(r.URL),
		Headers: maskHeaders(r.Header),
	}

	start := time.Now()
	resp, err := c.httpClient.Do(r)
	if err != nil {
		elapsed := time.Since(start)
		tr.ElapsedMs = elapsed.Milliseconds()
		tr.Error = err.Error()
		c.lastTrace.Store(tr)
		metrics.RecordVendorHTTP(c.vendor, op, 0, err, elapsed)
		return nil, &APIError{URL: maskURL(r.URL), cause: err}, 0
	}

	body, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	elapsed := time.Since(start)

	tr.Status = resp.StatusCode
	tr.Body = string(body)
	tr.ElapsedMs = elapsed.Milliseconds()
	if readErr != nil {
		tr.Error = readErr.Error()
	}
	c.lastTrace.Store(tr)

	if readErr != nil {
		// A truncated body is a transport failure even with a 2xx line.
		metrics.RecordVendorHTTP(c.vendor, op, 0, readErr, elapsed)
		return nil, &APIError{URL: maskURL(r.URL), cause: fmt.Errorf("read body: %w", readErr)}, 0
	}

	metrics.RecordVendorHTTP(c.vendor, op, resp.StatusCode, nil, elapsed)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return &Response{
			Status:     resp.StatusCode,
			StatusText: http.StatusText(resp.StatusCode),
			Header:     resp.Header,
			Body:       body,
		}, nil, 0
	}

	apiErr := &APIError{
		Status:     resp.StatusCode,
		StatusText: http.StatusText(resp.StatusCode),
		URL:        maskURL(r.URL),
		Body:       string(body),
	}
	return nil, apiErr, parseRetryAfter(resp.Header)
}

func retriableStatus(status int) bool {
	return status == 0 || status == http.StatusTooManyRequests || status >= 500
}

func (c *Client) retryDelay(status int, retryAfter time.Duration, attempt int) time.Duration {
	if status == http.StatusTooManyRequests {
		if retryAfter > 0 {
			// Buffer past the vendor's own clock to avoid a second 429.
			return retryAfter + time.Second
		}
		return c.baseBackoff << uint(attempt-1)
	}
	// 5xx and network failures back off linearly.
	return time.Duration(attempt) * c.baseBackoff
}

func parseRetryAfter(h http.Header) time.Duration {
	ra := strings.TrimSpace(h.Get("Retry-After"))
	if ra == "" {
		return 0
	}

	// delta-seconds
	if secs, err := strconv.Atoi(ra); err == nil {
		if secs <= 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}

	// HTTP-date
	if t, err := http.ParseTime(ra); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}

	return 0
}

func sleepContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
