// Package httpclient is the JSON transport shared by portal clients. It joins paths onto a
// base URL, carries the session (cookies and an optional bearer token), decodes JSON
// responses and turns non-2xx answers into *StatusError.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff"
	"go.uber.org/zap"
)

const defaultTimeout = 10 * time.Second

// HTTPDoer defines http.Client interface subset.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client issues requests against a single backend.
type Client struct {
	baseURL   *url.URL
	client    HTTPDoer
	jar       http.CookieJar
	token     string
	retries   uint64
	retryWait time.Duration
	logger    *zap.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithBearerToken attaches "Authorization: Bearer <token>" to every request.
func WithBearerToken(token string) Option {
	return func(c *Client) { c.token = strings.TrimSpace(token) }
}

// WithCookieJar replaces the in-memory jar.
func WithCookieJar(jar http.CookieJar) Option {
	return func(c *Client) { c.jar = jar }
}

// WithRetry retries GET requests that fail at the transport level up to maxRetries
// times, starting at initial and backing off exponentially.
func WithRetry(maxRetries uint64, initial time.Duration) Option {
	return func(c *Client) {
		c.retries = maxRetries
		c.retryWait = initial
	}
}

// WithLogger sets the logger used for per-request debug lines.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New builds a client for baseURL. A nil doer gets NewDefaultHTTPClient.
func New(baseURL string, doer HTTPDoer, opts ...Option) (*Client, error) {
	parsed, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("httpclient: parse base url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("httpclient: base url %q must be absolute", baseURL)
	}
	if doer == nil {
		doer = NewDefaultHTTPClient(defaultTimeout)
	}

	c := &Client{
		baseURL:   parsed,
		client:    doer,
		retryWait: 200 * time.Millisecond,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
		c.jar = jar
	}
	return c, nil
}

// NewDefaultHTTPClient returns *http.Client with timeout.
func NewDefaultHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

func (c *Client) buildURL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL.String() + path
}

// Get issues a GET and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.exchange(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST. A nil body sends no request body at all; anything else is JSON
// encoded. The JSON response is decoded into out.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("httpclient: encode %s body: %w", path, err)
		}
		payload = data
	}
	return c.exchange(ctx, http.MethodPost, path, payload, out)
}

func (c *Client) exchange(ctx context.Context, method, path string, payload []byte, out any) error {
	status, body, err := c.send(ctx, method, path, payload)
	if err != nil {
		return fmt.Errorf("httpclient: %s %s: %w", method, path, err)
	}
	if status < 200 || status >= 300 {
		return &StatusError{
			Method:     method,
			Path:       path,
			StatusCode: status,
			Body:       body,
		}
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("httpclient: decode %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte) (int, []byte, error) {
	if method != http.MethodGet || c.retries == 0 {
		return c.Do(ctx, method, path, payload, nil)
	}

	var (
		status int
		body   []byte
	)
	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = c.retryWait
	expo.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(expo, c.retries), ctx)

	err := backoff.RetryNotify(func() error {
		var err error
		status, body, err = c.Do(ctx, method, path, payload, nil)
		return err
	}, policy, func(err error, wait time.Duration) {
		c.logger.Debug("retrying request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	})
	return status, body, err
}

// Do executes HTTP request and returns status/body. It applies the session cookies and
// bearer token but does not interpret the status code.
func (c *Client) Do(ctx context.Context, method, path string, body []byte, headers map[string]string) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.buildURL(path), reader)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" && req.Header.Get("Authorization") == "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for _, cookie := range c.jar.Cookies(req.URL) {
		req.AddCookie(cookie)
	}

	started := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	if cookies := resp.Cookies(); len(cookies) > 0 {
		c.jar.SetCookies(req.URL, cookies)
	}

	respBody, err := io.ReadAll(resp.Body)
	c.logger.Debug("http exchange",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(started)),
	)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, respBody, nil
}

// Cookies returns the session cookies currently held for the base URL.
func (c *Client) Cookies() []*http.Cookie {
	return c.jar.Cookies(c.baseURL)
}

// SetCookies seeds the jar, typically from a persisted session.
func (c *Client) SetCookies(cookies []*http.Cookie) {
	if len(cookies) == 0 {
		return
	}
	c.jar.SetCookies(c.baseURL, cookies)
}

// IsStatus reports whether err carries an HTTP status error with the given code.
func IsStatus(err error, code int) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == code
}
