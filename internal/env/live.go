package env

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultUserAgent is sent with every request unless overridden.
const DefaultUserAgent = "mediacore/1"

// DefaultTimeout is the per-request timeout of the default HTTP client.
const DefaultTimeout = 30 * time.Second

// maxBodyBytes bounds how much of a response body is read.
const maxBodyBytes = 32 << 20

// Live is the production Environment: net/http for fetches, an injected
// Storage, wall-clock time and goroutines for Exec.
//
// Thread-safety: Live is safe for concurrent use.
type Live struct {
	client    *http.Client
	timeout   time.Duration
	storage   Storage
	limiter   *rate.Limiter
	userAgent string
	tasks     sync.WaitGroup
}

var _ Environment = (*Live)(nil)

// LiveOption configures a Live environment.
type LiveOption func(*Live)

// WithHTTPClient replaces the default HTTP client. The client is used as
// given: WithTimeout does not apply to it.
func WithHTTPClient(c *http.Client) LiveOption {
	return func(l *Live) {
		l.client = c
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) LiveOption {
	return func(l *Live) {
		l.timeout = d
	}
}

// WithRateLimit admits at most r fetches per second with the given burst.
// Fetches wait for admission; a cancelled context fails the fetch.
// This is admission control only: a fetch is still attempted exactly once.
func WithRateLimit(r rate.Limit, burst int) LiveOption {
	return func(l *Live) {
		l.limiter = rate.NewLimiter(r, burst)
	}
}

// WithUserAgent overrides DefaultUserAgent.
func WithUserAgent(ua string) LiveOption {
	return func(l *Live) {
		l.userAgent = ua
	}
}

// NewLive creates a Live environment backed by storage.
func NewLive(storage Storage, opts ...LiveOption) *Live {
	l := &Live{
		timeout:   DefaultTimeout,
		storage:   storage,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.client == nil {
		l.client = &http.Client{Timeout: l.timeout}
	}
	return l
}

// Fetch performs req with net/http.
//
// Error mapping:
//   - request cannot be built: ErrCodeInvalidRequest
//   - rate limiter wait or network failure: ErrCodeFetch
//   - status outside 2xx: ErrCodeStatus
func (l *Live) Fetch(ctx context.Context, req Request) ([]byte, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, NewInvalidRequestError(req.URL, fmt.Errorf("encode body: %w", err))
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		return nil, NewInvalidRequestError(req.URL, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", l.userAgent)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	if l.limiter != nil {
		if err := l.limiter.Wait(ctx); err != nil {
			return nil, NewFetchError(req.URL, fmt.Errorf("rate limit: %w", err))
		}
	}

	resp, err := l.client.Do(httpReq)
	if err != nil {
		return nil, NewFetchError(req.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, NewStatusError(req.URL, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, NewFetchError(req.URL, fmt.Errorf("read body: %w", err))
	}
	return data, nil
}

// GetRaw delegates to the configured storage.
func (l *Live) GetRaw(ctx context.Context, key string) (string, bool, error) {
	return l.storage.GetRaw(ctx, key)
}

// SetRaw delegates to the configured storage.
func (l *Live) SetRaw(ctx context.Context, key string, value *string) error {
	return l.storage.SetRaw(ctx, key, value)
}

// Now returns the wall-clock time in UTC.
func (l *Live) Now() time.Time {
	return time.Now().UTC()
}

// Exec runs task on its own goroutine.
func (l *Live) Exec(task func()) {
	l.tasks.Add(1)
	go func() {
		defer l.tasks.Done()
		task()
	}()
}

// Wait blocks until every task handed to Exec has returned.
func (l *Live) Wait() {
	l.tasks.Wait()
}
