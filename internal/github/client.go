package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"
)

// Default client settings.
const (
	DefaultBaseURL           = "https://api.github.com"
	DefaultUserAgent         = "ghbuster"
	DefaultAPIVersion        = "2022-11-28"
	DefaultRequestsPerSecond = 10.0
	DefaultMaxRetries        = 5
	DefaultRequestTimeout    = 30 * time.Second
	DefaultRetryWaitMin      = 1 * time.Second
	DefaultRetryWaitMax      = 2 * time.Minute

	// defaultPageSize is the largest page GitHub serves.
	defaultPageSize = 100

	// maxErrorBody bounds how much of an error payload is read.
	maxErrorBody = 64 * 1024
)

// Client is a GitHub REST API client.
//
// All network traffic shares one rate limiter and goes through a retrying
// HTTP client. The client is safe for concurrent use.
type Client struct {
	baseURL  *url.URL
	http     *retryablehttp.Client
	limiter  *rate.Limiter
	logger   *slog.Logger
	now      func() time.Time
	pageSize int
}

// settings collects option values before the client is assembled.
type settings struct {
	baseURL        string
	token          string
	userAgent      string
	proxyURL       string
	rps            float64
	maxRetries     int
	requestTimeout time.Duration
	retryWaitMin   time.Duration
	retryWaitMax   time.Duration
	logger         *slog.Logger
	transport      http.RoundTripper
	wrap           func(http.RoundTripper) http.RoundTripper
	pageSize       int
}

// Option configures a Client.
type Option func(*settings)

// WithBaseURL points the client at another API root, such as GitHub
// Enterprise or an httptest server.
func WithBaseURL(baseURL string) Option {
	return func(s *settings) {
		s.baseURL = baseURL
	}
}

// WithToken sets the token sent as a bearer credential.
func WithToken(token string) Option {
	return func(s *settings) {
		s.token = token
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(s *settings) {
		s.userAgent = ua
	}
}

// WithProxy routes API traffic through a socks5:// or http(s):// proxy.
func WithProxy(proxyURL string) Option {
	return func(s *settings) {
		s.proxyURL = proxyURL
	}
}

// WithRateLimit sets the client-side request budget in requests per second.
// Zero or a negative value disables the limiter.
func WithRateLimit(rps float64) Option {
	return func(s *settings) {
		s.rps = rps
	}
}

// WithMaxRetries sets how many times a failed request is retried.
func WithMaxRetries(n int) Option {
	return func(s *settings) {
		if n >= 0 {
			s.maxRetries = n
		}
	}
}

// WithRequestTimeout bounds a single HTTP attempt.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.requestTimeout = d
		}
	}
}

// WithRetryWait sets the backoff bounds.
func WithRetryWait(minWait, maxWait time.Duration) Option {
	return func(s *settings) {
		s.retryWaitMin = minWait
		s.retryWaitMax = maxWait
	}
}

// WithLogger sets the logger used by the client and its retry layer.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// WithTransport replaces the network transport. The proxy option is ignored
// when a transport is given.
func WithTransport(rt http.RoundTripper) Option {
	return func(s *settings) {
		s.transport = rt
	}
}

// WithTransportWrapper inserts a layer between the header injection and the
// rate limiter. The response cache plugs in here.
func WithTransportWrapper(wrap func(http.RoundTripper) http.RoundTripper) Option {
	return func(s *settings) {
		s.wrap = wrap
	}
}

// WithPageSize sets per_page for listings.
func WithPageSize(n int) Option {
	return func(s *settings) {
		if n > 0 && n <= defaultPageSize {
			s.pageSize = n
		}
	}
}

// NewClient creates a Client. The transport stack is, from the outside in:
// retries, header injection, the optional wrapper, the rate limiter and the
// network transport.
func NewClient(opts ...Option) (*Client, error) {
	s := &settings{
		baseURL:        DefaultBaseURL,
		userAgent:      DefaultUserAgent,
		rps:            DefaultRequestsPerSecond,
		maxRetries:     DefaultMaxRetries,
		requestTimeout: DefaultRequestTimeout,
		retryWaitMin:   DefaultRetryWaitMin,
		retryWaitMax:   DefaultRetryWaitMax,
		pageSize:       defaultPageSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	base, err := url.Parse(strings.TrimSuffix(s.baseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, s.baseURL)
	}

	network := s.transport
	if network == nil {
		t, err := newBaseTransport(s.proxyURL)
		if err != nil {
			return nil, err
		}
		network = t
	}

	limit := rate.Inf
	burst := 1
	if s.rps > 0 {
		limit = rate.Limit(s.rps)
		burst = max(1, int(s.rps))
	}
	limiter := rate.NewLimiter(limit, burst)

	var rt http.RoundTripper = &limitedTransport{base: network, limiter: limiter}
	if s.wrap != nil {
		rt = s.wrap(rt)
	}
	headers := map[string]string{
		"Accept":               "application/vnd.github+json",
		"X-GitHub-Api-Version": DefaultAPIVersion,
		"User-Agent":           s.userAgent,
	}
	if s.token != "" {
		headers["Authorization"] = "Bearer " + s.token
	}
	rt = &headerInjectingTransport{base: rt, headers: headers}

	c := &Client{
		baseURL:  base,
		limiter:  limiter,
		logger:   s.logger,
		now:      time.Now,
		pageSize: s.pageSize,
	}

	rc := retryablehttp.NewClient()
	rc.HTTPClient = &http.Client{Transport: rt, Timeout: s.requestTimeout}
	rc.Logger = retryLogger{s.logger}
	rc.RetryMax = s.maxRetries
	rc.RetryWaitMin = s.retryWaitMin
	rc.RetryWaitMax = s.retryWaitMax
	rc.CheckRetry = checkRetry
	rc.Backoff = c.backoff
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	c.http = rc

	return c, nil
}

// retryLogger demotes the retry layer's per-request chatter to debug.
type retryLogger struct {
	logger *slog.Logger
}

func (l retryLogger) Error(msg string, keysAndValues ...any) {
	l.logger.Error(msg, keysAndValues...)
}

func (l retryLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l retryLogger) Debug(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l retryLogger) Warn(msg string, keysAndValues ...any) {
	l.logger.Warn(msg, keysAndValues...)
}

// resolve turns an API path or an absolute pagination link into a URL.
func (c *Client) resolve(path string, query url.Values) (string, error) {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		u, err := url.Parse(path)
		if err != nil {
			return "", err
		}
		if u.Host != c.baseURL.Host {
			return "", fmt.Errorf("refusing to follow link to foreign host %q", u.Host)
		}
		return u.String(), nil
	}
	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String(), nil
}

// do sends a GET request and returns the response for 2xx statuses. Any
// other status is turned into an *UpstreamError.
func (c *Client) do(ctx context.Context, path string, query url.Values) (*http.Response, error) {
	target, err := c.resolve(path, query)
	if err != nil {
		return nil, err
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("github: build request: %w", err)
	}

	start := c.now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("github: GET %s: %w", path, err)
	}

	c.logger.Debug("github response",
		"path", path,
		"status", resp.StatusCode,
		"latency", c.now().Sub(start),
		"cached", resp.Header.Get("X-From-Cache") != "",
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody)) //nolint:errcheck // best effort diagnostics
		_ = resp.Body.Close()                                          //nolint:errcheck
		return nil, newUpstreamErrorFromBody(resp.StatusCode, body, http.MethodGet, path)
	}
	return resp, nil
}

// getJSON decodes the response body into v and returns the response headers.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, v any) (http.Header, error) {
	resp, err := c.do(ctx, path, query)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return nil, fmt.Errorf("github: decode %s: %w", path, err)
	}
	return resp.Header, nil
}

// getBody returns the raw response body and headers.
func (c *Client) getBody(ctx context.Context, path string, query url.Values) ([]byte, http.Header, error) {
	resp, err := c.do(ctx, path, query)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("github: read %s: %w", path, err)
	}
	return body, resp.Header, nil
}

// RateLimit returns the configured client-side request rate.
func (c *Client) RateLimit() rate.Limit {
	return c.limiter.Limit()
}
