// Package fetch wraps outbound HTTP requests with rate limiting, proxy
// rotation, retry with exponential backoff, and block detection.
package fetch

import (
	"context"
	"io"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/proxy"
	"github.com/sells-group/leadscout/internal/ratelimit"
)

const maxBodyBytes = 2 << 20

// Options configures the fetch client.
type Options struct {
	Timeout         time.Duration
	MaxRetries      int
	BackoffBase     time.Duration
	BackoffMax      time.Duration
	UserAgents      []string
	BlockSignatures []string
}

// Client performs proxy-routed, rate-limited GETs with bounded retries.
// Every attempt waits on the rate limiter, acquires a proxy (when one is
// available), and reports the proxy outcome after the attempt completes.
type Client struct {
	limiter *ratelimit.Limiter
	proxies *proxy.Source
	opts    Options

	mu      sync.Mutex
	clients map[string]*http.Client
}

// New creates a Client. limiter and proxies must not be nil; pass a Source
// built from an empty list to run without proxies.
func New(limiter *ratelimit.Limiter, proxies *proxy.Source, opts Options) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	if opts.BackoffBase == 0 {
		opts.BackoffBase = 500 * time.Millisecond
	}
	if opts.BackoffMax == 0 {
		opts.BackoffMax = 30 * time.Second
	}
	return &Client{
		limiter: limiter,
		proxies: proxies,
		opts:    opts,
		clients: make(map[string]*http.Client),
	}
}

// TargetKey returns the rate-limit key for a URL: its lowercased host.
func TargetKey(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Hostname()
}

// Get fetches rawURL and returns the response body. The returned *Error is
// nil on success. Retries apply to timeouts, connection failures, 429 and
// 5xx; other 4xx and detected blocks are surfaced immediately.
func (c *Client) Get(ctx context.Context, rawURL, targetKey string) ([]byte, *Error) {
	var lastErr *Error

	for attempt := 0; attempt < c.opts.MaxRetries; attempt++ {
		if err := c.limiter.Wait(ctx, targetKey); err != nil {
			return nil, &Error{Kind: KindCancelled, URL: rawURL, Err: err}
		}

		identity, viaProxy := c.proxies.Acquire()

		body, ferr := c.attempt(ctx, rawURL, identity)
		if viaProxy {
			c.proxies.ReportOutcome(identity, proxyOutcome(ferr))
		}
		if ferr == nil {
			return body, nil
		}

		lastErr = ferr
		if !ferr.retryable() {
			return nil, ferr
		}

		zap.L().Warn("fetch: attempt failed, retrying",
			zap.String("url", rawURL),
			zap.Int("attempt", attempt+1),
			zap.String("kind", string(ferr.Kind)),
			zap.Int("status", ferr.StatusCode),
		)

		if attempt < c.opts.MaxRetries-1 {
			if err := c.backoff(ctx, attempt); err != nil {
				return nil, &Error{Kind: KindCancelled, URL: rawURL, Err: err}
			}
		}
	}

	return nil, lastErr
}

// attempt performs a single GET through the given proxy identity ("" = direct).
func (c *Client) attempt(ctx context.Context, rawURL, identity string) ([]byte, *Error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &Error{Kind: KindConnectionFailed, URL: rawURL, Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent())
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := c.clientFor(identity).Do(req)
	if err != nil {
		return nil, classifyTransport(ctx, rawURL, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, classifyTransport(ctx, rawURL, err)
	}

	if DetectBlock(resp.StatusCode, resp.Header, body, c.opts.BlockSignatures) {
		return nil, &Error{Kind: KindBlocked, StatusCode: resp.StatusCode, URL: rawURL}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &Error{Kind: KindHTTPStatus, StatusCode: resp.StatusCode, URL: rawURL}
	}

	return body, nil
}

// proxyOutcome decides what to report to the proxy pool. Any HTTP response
// means the proxy itself carried the request; blocks and 429s count against
// the proxy because they indicate a burned identity.
func proxyOutcome(ferr *Error) bool {
	if ferr == nil {
		return true
	}
	switch ferr.Kind {
	case KindTimeout, KindConnectionFailed, KindBlocked:
		return false
	case KindHTTPStatus:
		return ferr.StatusCode != 429
	default:
		return true
	}
}

func (c *Client) userAgent() string {
	if len(c.opts.UserAgents) == 0 {
		return "leadscout/1.0"
	}
	return c.opts.UserAgents[rand.Intn(len(c.opts.UserAgents))]
}

// clientFor returns an http.Client routed through the given proxy identity,
// or the direct client for "". Clients are cached per identity so transports
// reuse connections.
func (c *Client) clientFor(identity string) *http.Client {
	c.mu.Lock()
	defer c.mu.Unlock()

	if client, ok := c.clients[identity]; ok {
		return client
	}

	transport := &http.Transport{
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
	}
	if identity != "" {
		if proxyURL, err := url.Parse(identity); err == nil {
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}

	client := &http.Client{Timeout: c.opts.Timeout, Transport: transport}
	c.clients[identity] = client
	return client
}

func (c *Client) backoff(ctx context.Context, attempt int) error {
	d := time.Duration(float64(c.opts.BackoffBase) * math.Pow(2, float64(attempt)))
	if d > c.opts.BackoffMax {
		d = c.opts.BackoffMax
	}
	d += time.Duration(rand.Int63n(int64(d / 2)))

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
