package fetcher

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newTestFetcher() *HTTPFetcher {
	return NewHTTPFetcher(HTTPOptions{
		UserAgent:   "test-agent",
		Timeout:     5 * time.Second,
		MaxRetries:  3,
		Rate:        1000,
		Burst:       100,
		BaseBackoff: time.Millisecond,
	})
}

func TestDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		w.Write([]byte("hello world"))
	}))
	defer srv.Close()

	f := newTestFetcher()
	body, err := f.Download(context.Background(), srv.URL+"/data")
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))
}

func TestRetryOnServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	body, err := newTestFetcher().Download(context.Background(), srv.URL)
	require.NoError(t, err)
	defer body.Close()
	assert.Equal(t, int32(3), calls.Load())
}

func TestRetryExhausted(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestFetcher().Download(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all retries exhausted")
	assert.Equal(t, int32(3), calls.Load())
}

func TestDownload_Non200(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestFetcher().Download(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 404")
	assert.Equal(t, int32(1), calls.Load(), "client errors are not retried")
}

func TestDownload_429ReducesRate(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	f := newTestFetcher()
	body, err := f.Download(context.Background(), srv.URL)
	require.NoError(t, err)
	defer body.Close()

	assert.Equal(t, int32(2), calls.Load())
	assert.Less(t, float64(f.limiter.Limit()), 1000.0)
}

func TestDownload_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestFetcher().Download(ctx, srv.URL)
	require.Error(t, err)
}

func TestNewHTTPFetcher_Defaults(t *testing.T) {
	f := NewHTTPFetcher(HTTPOptions{})
	assert.Equal(t, 3, f.opts.MaxRetries)
	assert.Equal(t, "attribution-cli/1.0", f.opts.UserAgent)
	assert.Equal(t, 60*time.Second, f.client.Timeout)
	assert.Equal(t, rate.Limit(5), f.limiter.Limit())
}

func TestAdaptiveLimiter(t *testing.T) {
	a := NewAdaptiveLimiter(10, 10)

	a.OnRateLimit()
	assert.InDelta(t, 5.0, float64(a.Limit()), 1e-9)
	a.OnRateLimit()
	a.OnRateLimit()
	assert.InDelta(t, 2.5, float64(a.Limit()), 1e-9, "floor at a quarter of the initial rate")

	a.OnSuccess()
	assert.InDelta(t, 3.0, float64(a.Limit()), 1e-9)
	for range 20 {
		a.OnSuccess()
	}
	assert.InDelta(t, 10.0, float64(a.Limit()), 1e-9, "capped at the initial rate")

	require.NoError(t, a.Wait(context.Background()))
}
