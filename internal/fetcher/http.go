package fetcher

import (
	"context"
	"io"
	"math/rand/v2"
	"net/http"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// HTTPOptions configures the HTTP fetcher.
type HTTPOptions struct {
	UserAgent   string
	Timeout     time.Duration
	MaxRetries  int
	Rate        rate.Limit    // requests per second; default 5
	Burst       int           // default 5
	BaseBackoff time.Duration // first retry delay, doubled per attempt; default 1s
}

// AdaptiveLimiter is a rate.Limiter that halves its rate on 429 responses
// (down to a quarter of the initial rate) and recovers by 20% per success
// (up to the initial rate).
type AdaptiveLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	initial rate.Limit
	current rate.Limit
}

// NewAdaptiveLimiter creates an adaptive limiter.
func NewAdaptiveLimiter(r rate.Limit, burst int) *AdaptiveLimiter {
	return &AdaptiveLimiter{limiter: rate.NewLimiter(r, burst), initial: r, current: r}
}

// Wait blocks until the limiter allows a request.
func (a *AdaptiveLimiter) Wait(ctx context.Context) error {
	return a.limiter.Wait(ctx)
}

// OnSuccess raises the rate toward the initial rate.
func (a *AdaptiveLimiter) OnSuccess() {
	a.set(min(a.Limit()*1.2, a.initial))
}

// OnRateLimit halves the rate.
func (a *AdaptiveLimiter) OnRateLimit() {
	r := max(a.Limit()*0.5, a.initial/4)
	a.set(r)
	zap.L().Warn("fetcher: reducing request rate after 429", zap.Float64("rate", float64(r)))
}

// Limit returns the current rate.
func (a *AdaptiveLimiter) Limit() rate.Limit {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

func (a *AdaptiveLimiter) set(r rate.Limit) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.current = r
	a.limiter.SetLimit(r)
}

// HTTPFetcher implements Fetcher using net/http with retry and rate limiting.
type HTTPFetcher struct {
	client  *http.Client
	opts    HTTPOptions
	limiter *AdaptiveLimiter
}

// NewHTTPFetcher creates a new HTTPFetcher with the given options.
func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "attribution-cli/1.0"
	}
	if opts.Rate == 0 {
		opts.Rate = 5
	}
	if opts.Burst == 0 {
		opts.Burst = 5
	}
	if opts.BaseBackoff == 0 {
		opts.BaseBackoff = time.Second
	}
	return &HTTPFetcher{
		client:  &http.Client{Timeout: opts.Timeout},
		opts:    opts,
		limiter: NewAdaptiveLimiter(opts.Rate, opts.Burst),
	}
}

// Download fetches the URL and returns the response body. 429 and 5xx
// responses and transport errors are retried with exponential backoff.
func (f *HTTPFetcher) Download(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "create request")
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)

	var lastErr error
	for attempt := range f.opts.MaxRetries {
		if attempt > 0 {
			if err := f.backoff(ctx, attempt-1); err != nil {
				return nil, eris.Wrap(err, "download: backoff")
			}
		}
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "rate limiter wait")
		}

		resp, err := f.client.Do(req.Clone(ctx))
		if err != nil {
			lastErr = err
			zap.L().Warn("http request failed, retrying",
				zap.String("url", rawURL),
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
			continue
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			_ = resp.Body.Close()
			f.limiter.OnRateLimit()
			lastErr = eris.Errorf("http 429 from %s", rawURL)
			continue
		case resp.StatusCode >= 500:
			_ = resp.Body.Close()
			lastErr = eris.Errorf("http %d from %s", resp.StatusCode, rawURL)
			zap.L().Warn("server error, retrying",
				zap.String("url", rawURL),
				zap.Int("status", resp.StatusCode),
				zap.Int("attempt", attempt+1),
			)
			continue
		case resp.StatusCode != http.StatusOK:
			_ = resp.Body.Close()
			return nil, eris.Errorf("download: unexpected status %d from %s", resp.StatusCode, rawURL)
		}

		f.limiter.OnSuccess()
		return resp.Body, nil
	}

	return nil, eris.Wrap(lastErr, "all retries exhausted")
}

func (f *HTTPFetcher) backoff(ctx context.Context, attempt int) error {
	d := min(f.opts.BaseBackoff<<attempt, 30*time.Second)
	d += time.Duration(rand.Int64N(int64(d)/2 + 1))

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
