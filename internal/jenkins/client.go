// Package jenkins is a minimal client for the Jenkins JSON API.
//
// Failed calls return the failure kinds of package apierr: *apierr.StatusError
// for non-2xx responses and *apierr.TransportError when no response was
// received. Transient failures are retried with backoff before being returned.
package jenkins

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-jenkins/internal/apierr"
	"github.com/alnah/go-jenkins/internal/endpoint"
)

const (
	defaultTimeout = 30 * time.Second

	// maxBodySize caps how much of a response is read.
	maxBodySize = 8 << 20
)

// httpDoer abstracts HTTP client for testing.
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Credentials authenticate API calls with HTTP basic auth.
// Token may be a Jenkins API token or a password.
type Credentials struct {
	Username string
	Token    string
}

// IsZero reports whether no credentials are set.
func (c Credentials) IsZero() bool {
	return c.Username == "" && c.Token == ""
}

// Client calls a single Jenkins server.
type Client struct {
	base       *url.URL
	httpClient httpDoer
	creds      Credentials
	retry      apierr.Backoff
	logger     *slog.Logger

	secure     bool
	securePort *int
}

// Option configures a Client.
type Option func(*Client)

// WithCredentials sets basic auth credentials.
func WithCredentials(c Credentials) Option {
	return func(cl *Client) {
		cl.creds = c
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c httpDoer) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithRetry sets the transport retry policy.
func WithRetry(b apierr.Backoff) Option {
	return func(cl *Client) {
		cl.retry = b
	}
}

// WithLogger sets the logger for request diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(cl *Client) {
		if l != nil {
			cl.logger = l
		}
	}
}

// WithSecure switches the base URL to HTTPS on the given port.
// A nil port uses the scheme default.
func WithSecure(port *int) Option {
	return func(cl *Client) {
		cl.secure = true
		cl.securePort = port
	}
}

// NewClient creates a Client for the server at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, ErrMissingURL
	}

	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		retry:      apierr.DefaultBackoff,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}

	base, err := url.Parse(baseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("jenkins URL %q: %w", baseURL, endpoint.ErrMalformedURL)
	}
	if c.secure {
		if base, err = endpoint.Secure(baseURL, c.securePort); err != nil {
			return nil, fmt.Errorf("jenkins URL %q: %w", baseURL, err)
		}
	}
	c.base = base
	return c, nil
}

// BaseURL returns the effective server URL.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// jobPath converts "folder/job" into "job/folder/job/job".
func jobPath(name string) []string {
	segments := strings.Split(strings.Trim(name, "/"), "/")
	out := make([]string, 0, 2*len(segments))
	for _, s := range segments {
		out = append(out, "job", s)
	}
	return out
}

// get performs a GET on path with retries and returns the body.
func (c *Client) get(ctx context.Context, query string, path ...string) ([]byte, error) {
	u := c.base.JoinPath(append(path, "api", "json")...)
	u.RawQuery = query

	b := c.retry
	b.OnRetry = func(retry int, err error, wait time.Duration) {
		c.logger.Debug("retrying request", "url", u.Redacted(), "retry", retry, "wait", wait, "error", err)
	}

	return apierr.Retry(ctx, b, func(ctx context.Context) ([]byte, error) {
		return c.do(ctx, u)
	})
}

// do executes a single GET and maps failures to apierr kinds.
func (c *Client) do(ctx context.Context, u *url.URL) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if !c.creds.IsZero() {
		req.SetBasicAuth(c.creds.Username, c.creds.Token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "url", u.Redacted(), "error", err)
		return nil, &apierr.TransportError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &apierr.TransportError{Err: fmt.Errorf("failed to read response: %w", err)}
	}

	c.logger.Debug("request done", "url", u.Redacted(), "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &apierr.StatusError{
			Code:       resp.StatusCode,
			Body:       body,
			RetryAfter: retryAfter(resp.Header.Get("Retry-After"), time.Now()),
		}
	}
	return body, nil
}

// retryAfter parses a Retry-After header given in seconds or as an HTTP date.
// Unparseable or past values yield zero.
func retryAfter(v string, now time.Time) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(max(secs, 0)) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		return max(t.Sub(now), 0)
	}
	return 0
}

// buildRef is the path segment of a build: its number, or lastBuild.
func buildRef(number int) string {
	if number <= 0 {
		return "lastBuild"
	}
	return strconv.Itoa(number)
}
