// Package fetch performs cache-checked GET requests for API calls and page scrapes.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html/charset"

	"moviecache/cache"
)

// DefaultUserAgent is sent when no user agent is configured
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"

// FetchError reports a transport failure or a non-2xx response. It is never retried.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Payloads is the lookup/store contract the Acquirer needs from a cache
type Payloads interface {
	Lookup(key string) (string, bool)
	Put(key, payload string) error
}

// Stats counts cache hits and network fetches since the Acquirer was created
type Stats struct {
	Hits   int64
	Misses int64
}

// Acquirer is a read-through cache in front of an HTTP client. Once a
// fingerprint has been stored, the same request never touches the network.
type Acquirer struct {
	cache     Payloads
	client    *http.Client
	logger    *zap.Logger
	userAgent string

	hits   atomic.Int64
	misses atomic.Int64
}

// Option configures an Acquirer
type Option func(*Acquirer)

// WithUserAgent overrides the User-Agent header
func WithUserAgent(ua string) Option {
	return func(a *Acquirer) {
		if ua != "" {
			a.userAgent = ua
		}
	}
}

// New creates an Acquirer. A nil client gets a 30 second timeout client.
func New(payloads Payloads, client *http.Client, logger *zap.Logger, opts ...Option) *Acquirer {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Acquirer{
		cache:     payloads,
		client:    client,
		logger:    logger,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Acquire returns the payload for GET base?params, from cache when possible
func (a *Acquirer) Acquire(ctx context.Context, base string, params map[string]string) (string, error) {
	key := cache.Key(base, params)

	query := url.Values{}
	for name, value := range params {
		query.Set(name, value)
	}
	target := base
	if len(query) > 0 {
		target = base + "?" + query.Encode()
	}

	return a.get(ctx, key, target)
}

// Scrape returns the HTML for pageURL, from cache when possible
func (a *Acquirer) Scrape(ctx context.Context, pageURL string) (string, error) {
	return a.get(ctx, cache.PageKey(pageURL), pageURL)
}

// Stats returns the hit/miss counters
func (a *Acquirer) Stats() Stats {
	return Stats{Hits: a.hits.Load(), Misses: a.misses.Load()}
}

func (a *Acquirer) get(ctx context.Context, key, target string) (string, error) {
	if payload, ok := a.cache.Lookup(key); ok {
		a.hits.Add(1)
		a.logger.Debug("fetching cached data", zap.String("key", key))
		return payload, nil
	}

	a.misses.Add(1)
	a.logger.Info("making new request", zap.String("url", redact(target)))

	payload, err := a.download(ctx, target)
	if err != nil {
		return "", err
	}

	if err := a.cache.Put(key, payload); err != nil {
		// the payload is still good; the next run will just fetch it again
		a.logger.Warn("failed to store payload in cache", zap.String("key", key), zap.Error(err))
	}
	return payload, nil
}

func (a *Acquirer) download(ctx context.Context, target string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", &FetchError{URL: redact(target), Err: redactErr(err)}
	}
	req.Header.Set("User-Agent", a.userAgent)

	resp, err := a.client.Do(req)
	if err != nil {
		return "", &FetchError{URL: redact(target), Err: redactErr(err)}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			a.logger.Warn("failed to close response body", zap.Error(err))
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &FetchError{URL: redact(target), StatusCode: resp.StatusCode}
	}

	// payloads are decoded to UTF-8 once here so the JSON cache file replays them byte for byte
	body, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return "", &FetchError{URL: redact(target), Err: err}
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return "", &FetchError{URL: redact(target), Err: redactErr(err)}
	}
	return strings.ToValidUTF8(string(b), "\uFFFD"), nil
}

// redactErr hides the API key inside the request URL carried by client errors
func redactErr(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		ue.URL = redact(ue.URL)
	}
	return err
}

// redact hides the API key in log lines and errors
func redact(target string) string {
	u, err := url.Parse(target)
	if err != nil {
		return target
	}
	q := u.Query()
	if q.Get("apikey") == "" {
		return target
	}
	q.Set("apikey", "REDACTED")
	u.RawQuery = q.Encode()
	return u.String()
}
