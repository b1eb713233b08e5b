// ABOUTME: Standard HTTP client implementation for conditional feed requests
// ABOUTME: Never follows redirects, decompresses gzip bodies and can rate limit requests

package standard

import (
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"feedfetcher/core/interfaces"

	"golang.org/x/time/rate"
)

const userAgent = "FeedFetcher/1.0"

// StandardHTTPClient implements the HTTPClient interface using standard library
type StandardHTTPClient struct {
	client  *http.Client
	limiter *rate.Limiter
}

// ClientOption configures a StandardHTTPClient
type ClientOption func(*StandardHTTPClient)

// WithRateLimit allows at most rps requests per second with the given burst.
// A non-positive rps disables limiting.
func WithRateLimit(rps float64, burst int) ClientOption {
	return func(c *StandardHTTPClient) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithTransport replaces the underlying round tripper (proxies, custom TLS)
func WithTransport(rt http.RoundTripper) ClientOption {
	return func(c *StandardHTTPClient) {
		c.client.Transport = rt
	}
}

// NewStandardHTTPClient creates a new HTTP client with the specified timeout
func NewStandardHTTPClient(timeout time.Duration, opts ...ClientOption) *StandardHTTPClient {
	c := &StandardHTTPClient{
		client: &http.Client{
			Timeout: timeout,
			// Redirects are resolved by the fetcher so it can consult the cache per hop
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do performs the GET described by r
func (c *StandardHTTPClient) Do(ctx context.Context, r *interfaces.Request) (interfaces.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.URL, nil)
	if err != nil {
		return nil, err
	}

	for key, values := range r.Header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", userAgent)
	}
	if req.Header.Get("Accept-Encoding") == "" {
		req.Header.Set("Accept-Encoding", "gzip")
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}

	body := resp.Body
	if strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		body = &gzipBody{raw: resp.Body}
	}

	return &httpResponse{
		statusCode: resp.StatusCode,
		body:       body,
		headers:    resp.Header,
	}, nil
}

// httpResponse implements the Response interface
type httpResponse struct {
	statusCode int
	body       io.ReadCloser
	headers    http.Header
}

// StatusCode returns the HTTP status code
func (r *httpResponse) StatusCode() int {
	return r.statusCode
}

// Body returns the response body, decompressed
func (r *httpResponse) Body() io.ReadCloser {
	return r.body
}

// Header returns the value of the specified header
func (r *httpResponse) Header(key string) string {
	return r.headers.Get(key)
}

// gzipBody opens the gzip stream on first read so that empty bodies of
// 304 and error responses can still be closed without error.
type gzipBody struct {
	raw  io.ReadCloser
	once sync.Once
	zr   *gzip.Reader
	err  error
}

func (g *gzipBody) Read(p []byte) (int, error) {
	g.once.Do(func() {
		g.zr, g.err = gzip.NewReader(g.raw)
	})
	if g.err != nil {
		return 0, g.err
	}
	return g.zr.Read(p)
}

func (g *gzipBody) Close() error {
	if g.zr != nil {
		g.zr.Close()
	}
	return g.raw.Close()
}
