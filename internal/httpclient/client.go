// Package httpclient is the outbound HTTP client shared by the radio-browser,
// Nominatim, homepage and icon fetchers. Responses are classified into
// foundation errors so retry.Do can tell transient failures from permanent ones.
package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	derrors "github.com/e-radio/eradio/internal/foundation/errors"
	"github.com/e-radio/eradio/internal/metrics"
	"github.com/e-radio/eradio/internal/retry"
)

// DefaultMaxBody caps response bodies read into memory.
const DefaultMaxBody = 8 << 20

// Response is a fully read HTTP response.
type Response struct {
	URL         string
	Status      int
	ContentType string
	Body        []byte
}

// Client performs GET requests with a fixed user agent and a retry policy.
type Client struct {
	http      *http.Client
	userAgent string
	policy    retry.Policy
	recorder  metrics.Recorder
	maxBody   int64
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.http = hc } }

// WithRecorder reports retries to r.
func WithRecorder(r metrics.Recorder) Option { return func(c *Client) { c.recorder = r } }

// WithMaxBody overrides DefaultMaxBody.
func WithMaxBody(n int64) Option { return func(c *Client) { c.maxBody = n } }

// New returns a Client. A zero timeout means 20s.
func New(userAgent string, timeout time.Duration, policy retry.Policy, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	c := &Client{
		http:      &http.Client{Timeout: timeout, Transport: transport},
		userAgent: userAgent,
		policy:    policy,
		recorder:  metrics.NoopRecorder{},
		maxBody:   DefaultMaxBody,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get fetches rawURL, retrying transient failures. op names the operation in
// logs and retry metrics. Non-2xx responses are returned as errors.
func (c *Client) Get(ctx context.Context, op, rawURL string, header http.Header) (*Response, error) {
	return retry.Do(ctx, c.policy, op, func(ctx context.Context) (*Response, error) {
		return c.getOnce(ctx, rawURL, header)
	}, func(int, error) { c.recorder.IncRetry(op) })
}

func (c *Client) getOnce(ctx context.Context, rawURL string, header http.Header) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryValidation, "invalid request URL").
			WithContext("url", rawURL).Build()
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, derrors.WrapError(err, derrors.CategoryNetwork, "request failed").
			Retryable().WithContext("url", rawURL).Build()
	}
	defer func() { _ = resp.Body.Close() }()

	if err := classifyStatus(resp, rawURL); err != nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryNetwork, "read response body").
			Retryable().WithContext("url", rawURL).Build()
	}
	if int64(len(body)) > c.maxBody {
		return nil, derrors.NewError(derrors.CategoryValidation, "response body too large").
			WithContext("url", rawURL).
			WithContext("limit", c.maxBody).Build()
	}

	return &Response{
		URL:         resp.Request.URL.String(),
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

func classifyStatus(resp *http.Response, rawURL string) error {
	code := resp.StatusCode
	if code >= 200 && code < 300 {
		return nil
	}
	msg := fmt.Sprintf("HTTP %d", code)
	switch {
	case code == http.StatusTooManyRequests:
		b := derrors.NetworkError(msg).RateLimit().WithContext("url", rawURL).WithContext("status", code)
		if ra := retryAfter(resp.Header.Get("Retry-After")); ra > 0 {
			b = b.WithContext(retry.RetryAfterKey, ra)
		}
		return b.Build()
	case code >= 500:
		return derrors.NetworkError(msg).WithContext("url", rawURL).WithContext("status", code).Build()
	case code == http.StatusNotFound || code == http.StatusGone:
		return derrors.NotFoundError(msg).WithContext("url", rawURL).WithContext("status", code).Build()
	default:
		return derrors.NewError(derrors.CategoryNetwork, msg).WithContext("url", rawURL).WithContext("status", code).Build()
	}
}

func retryAfter(v string) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return 0
}

// StatusOf extracts the HTTP status recorded on a classified error, or 0.
func StatusOf(err error) int {
	c, ok := derrors.AsClassified(err)
	if !ok {
		return 0
	}
	if v, ok := c.Context().Get("status"); ok {
		if n, ok := v.(int); ok {
			return n
		}
	}
	return 0
}
