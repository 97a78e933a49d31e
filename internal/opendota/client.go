// Package opendota implements the HTTP client for the OpenDota public API.
// All methods are context-aware, respect the shared rate limiter, retry on
// transient errors (429, 5xx), and read through an optional response cache.
package opendota

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/derickschaefer/ezdota/internal/store"
)

const (
	// DefaultBaseURL is the public OpenDota API root.
	DefaultBaseURL = "https://api.opendota.com/api/"
	// DefaultPlayerID is the account analysed when none is configured.
	DefaultPlayerID int64 = 425817633

	maxRetries = 4
	userAgent  = "ezdota-cli/1.0"
)

// Cache TTLs per response family.
const (
	TTLMatches     = 5 * time.Minute
	TTLMatchDetail = 24 * time.Hour
	TTLHeroes      = 7 * 24 * time.Hour
	TTLPlayer      = 10 * time.Minute
	TTLConstants   = 7 * 24 * time.Hour
)

// Cache is the response cache the client reads through. store.Store
// satisfies it.
type Cache interface {
	Get(key string, now time.Time) ([]byte, error)
	Put(key string, body []byte, ttl time.Duration) error
}

// CacheMode controls how the client uses its cache.
type CacheMode int

const (
	// CacheDefault reads fresh entries and writes every fetched response.
	CacheDefault CacheMode = iota
	// CacheRefresh skips reads but still writes, forcing an overwrite.
	CacheRefresh
	// CacheOff neither reads nor writes.
	CacheOff
)

// APIError is a non-retryable, non-200 response.
type APIError struct {
	StatusCode int
	Endpoint   string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("opendota: HTTP %d on %s: %s", e.StatusCode, e.Endpoint, e.Message)
}

// IsNotFound reports whether err wraps a 404 APIError.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Client is the OpenDota API HTTP client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	log        zerolog.Logger

	cache     Cache
	cacheMode CacheMode
	hits      atomic.Int64
	misses    atomic.Int64
	now       func() time.Time
}

// NewClient creates a Client. apiKey may be empty; OpenDota serves
// anonymous requests at a lower rate limit.
func NewClient(apiKey, baseURL string, timeout time.Duration, ratePerSec float64, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	burst := int(ratePerSec)
	if burst < 1 {
		burst = 1
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(ratePerSec), burst),
		log:     log.With().Str("component", "opendota").Logger(),
		now:     time.Now,
	}
}

// UseCache attaches a response cache. A nil cache disables caching.
func (c *Client) UseCache(cache Cache, mode CacheMode) {
	c.cache = cache
	c.cacheMode = mode
}

// CacheStats returns how many requests were served from and missed the
// cache since the client was created.
func (c *Client) CacheStats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// ─── Cached fetch ─────────────────────────────────────────────────────────────

// fetch decodes the response for endpoint into out, serving it from the
// cache under key when a fresh entry exists.
func (c *Client) fetch(ctx context.Context, endpoint string, params url.Values, key string, ttl time.Duration, out interface{}) error {
	if body, ok := c.cached(key); ok {
		if err := json.Unmarshal(body, out); err == nil {
			return nil
		}
		c.log.Warn().Str("key", key).Msg("discarding undecodable cache entry")
	}

	body, err := c.get(ctx, endpoint, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding %s: %w", endpoint, err)
	}
	c.remember(key, body, ttl)
	return nil
}

func (c *Client) cached(key string) ([]byte, bool) {
	if c.cache == nil || c.cacheMode != CacheDefault {
		return nil, false
	}
	body, err := c.cache.Get(key, c.now())
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			c.log.Warn().Err(err).Str("key", key).Msg("cache read failed")
		}
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	c.log.Debug().Str("key", key).Msg("cache hit")
	return body, true
}

func (c *Client) remember(key string, body []byte, ttl time.Duration) {
	if c.cache == nil || c.cacheMode == CacheOff {
		return
	}
	if err := c.cache.Put(key, body, ttl); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}

// ─── Low-level HTTP ───────────────────────────────────────────────────────────

// get performs a GET request, handling rate limiting and retries, and
// returns the raw body of a 200 response.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	if params == nil {
		params = url.Values{}
	}
	if c.apiKey != "" {
		params.Set("api_key", c.apiKey)
	}
	reqURL := c.baseURL + endpoint
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	if c.log.GetLevel() <= zerolog.DebugLevel {
		safe := reqURL
		if c.apiKey != "" {
			safe = strings.Replace(reqURL, c.apiKey, "REDACTED", 1)
		}
		c.log.Debug().Str("url", safe).Msg("opendota request")
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))*500) * time.Millisecond
			c.log.Debug().Int("attempt", attempt).Dur("backoff", backoff).Msg("retrying after backoff")
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("building request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", userAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = fmt.Errorf("http: %w", err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("reading body: %w", err)
			continue
		}

		c.log.Debug().Int("status", resp.StatusCode).Int("bytes", len(body)).Msg("opendota response")

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
			continue
		}

		if resp.StatusCode != http.StatusOK {
			return nil, &APIError{
				StatusCode: resp.StatusCode,
				Endpoint:   endpoint,
				Message:    errorMessage(body),
			}
		}
		return body, nil
	}
	return nil, fmt.Errorf("after %d attempts: %w", maxRetries, lastErr)
}

// errorMessage extracts OpenDota's {"error": "..."} message, falling back
// to the trimmed body.
func errorMessage(body []byte) string {
	var apiErr struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
		return apiErr.Error
	}
	return strings.TrimSpace(string(body))
}
