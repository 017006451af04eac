package fetcher

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newTestFetcher() *HTTPFetcher {
	return NewHTTPFetcher(HTTPOptions{
		UserAgent:  "test-agent",
		Timeout:    5 * time.Second,
		MaxRetries: 3,
	})
}

func TestNewHTTPFetcher_Defaults(t *testing.T) {
	f := NewHTTPFetcher(HTTPOptions{})
	assert.Equal(t, "locator-cli/1.0", f.opts.UserAgent)
	assert.Equal(t, 30*time.Second, f.opts.Timeout)
	assert.Equal(t, 3, f.opts.MaxRetries)
}

func TestDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		w.Write([]byte("license_number,status\n1042778,ACTIVE\n")) //nolint:errcheck
	}))
	defer srv.Close()

	f := newTestFetcher()
	body, err := f.Download(context.Background(), srv.URL+"/export.csv")
	require.NoError(t, err)
	defer body.Close() //nolint:errcheck

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Contains(t, string(data), "1042778,ACTIVE")
}

func TestDownload_Non200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	f := newTestFetcher()
	_, err := f.Download(context.Background(), srv.URL+"/export.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 403")
}

func TestDownload_4xxNotRetried(t *testing.T) {
	for _, code := range []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusNotFound} {
		t.Run(http.StatusText(code), func(t *testing.T) {
			var attempts atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				attempts.Add(1)
				w.WriteHeader(code)
			}))
			defer srv.Close()

			_, err := newTestFetcher().Download(context.Background(), srv.URL+"/export.csv")
			require.Error(t, err)
			assert.Contains(t, err.Error(), "unexpected status")
			assert.Equal(t, int32(1), attempts.Load())
		})
	}
}

func TestDownload_InvalidURL(t *testing.T) {
	_, err := newTestFetcher().Download(context.Background(), "://bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create request")
}

func TestDownload_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok")) //nolint:errcheck
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestFetcher().Download(ctx, srv.URL+"/export.csv")
	require.Error(t, err)
}

func TestDownloadToFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("1042778,ACTIVE\n")) //nolint:errcheck
	}))
	defer srv.Close()

	f := newTestFetcher()
	path := filepath.Join(t.TempDir(), "export.csv")

	n, err := f.DownloadToFile(context.Background(), srv.URL+"/export.csv", path)
	require.NoError(t, err)
	assert.Equal(t, int64(15), n)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "1042778,ACTIVE\n", string(data))
}

func TestDownloadToFile_BadDest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("data")) //nolint:errcheck
	}))
	defer srv.Close()

	_, err := newTestFetcher().DownloadToFile(context.Background(), srv.URL+"/export.csv", "/nonexistent/dir/out.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create file")
}

func TestHeadETag(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		w.Header().Set("ETag", `"week-33"`)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	etag, err := newTestFetcher().HeadETag(context.Background(), srv.URL+"/export.csv")
	require.NoError(t, err)
	assert.Equal(t, `"week-33"`, etag)
}

func TestHeadETag_NoETagHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	etag, err := newTestFetcher().HeadETag(context.Background(), srv.URL+"/export.csv")
	require.NoError(t, err)
	assert.Empty(t, etag)
}

func TestDownloadIfChanged_NotModified(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("If-None-Match") == `"week-33"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Write([]byte("should not reach")) //nolint:errcheck
	}))
	defer srv.Close()

	body, etag, changed, err := newTestFetcher().DownloadIfChanged(context.Background(), srv.URL+"/export.csv", `"week-33"`)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Nil(t, body)
	assert.Equal(t, `"week-33"`, etag)
}

func TestDownloadIfChanged_NewExport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("ETag", `"week-34"`)
		w.Write([]byte("1042778,ACTIVE\n")) //nolint:errcheck
	}))
	defer srv.Close()

	body, etag, changed, err := newTestFetcher().DownloadIfChanged(context.Background(), srv.URL+"/export.csv", `"week-33"`)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, `"week-34"`, etag)

	data, err := io.ReadAll(body)
	body.Close() //nolint:errcheck
	require.NoError(t, err)
	assert.Equal(t, "1042778,ACTIVE\n", string(data))
}

func TestDownloadIfChanged_NoPriorETag(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("If-None-Match"))
		w.Header().Set("ETag", `"week-34"`)
		w.Write([]byte("content")) //nolint:errcheck
	}))
	defer srv.Close()

	body, etag, changed, err := newTestFetcher().DownloadIfChanged(context.Background(), srv.URL+"/export.csv", "")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, `"week-34"`, etag)
	body.Close() //nolint:errcheck
}

func TestDownloadIfChanged_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, _, _, err := newTestFetcher().DownloadIfChanged(context.Background(), srv.URL+"/export.csv", `"week-33"`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 403")
}

func TestRetryOnServerError(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("success")) //nolint:errcheck
	}))
	defer srv.Close()

	body, err := newTestFetcher().Download(context.Background(), srv.URL+"/export.csv")
	require.NoError(t, err)
	defer body.Close() //nolint:errcheck

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "success", string(data))
	assert.Equal(t, int32(3), attempts.Load())
}

func TestRetryOnNetworkError(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if attempts.Add(1) < 3 {
			if hj, ok := w.(http.Hijacker); ok {
				conn, _, _ := hj.Hijack()
				conn.Close() //nolint:errcheck
				return
			}
		}
		w.Write([]byte("ok")) //nolint:errcheck
	}))
	defer srv.Close()

	body, err := newTestFetcher().Download(context.Background(), srv.URL+"/export.csv")
	require.NoError(t, err)
	defer body.Close() //nolint:errcheck

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(data))
	assert.GreaterOrEqual(t, attempts.Load(), int32(3))
}

func TestRetryExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(HTTPOptions{
		UserAgent:  "test-agent",
		Timeout:    5 * time.Second,
		MaxRetries: 2,
	})

	_, err := f.Download(context.Background(), srv.URL+"/export.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all retries exhausted")
}

func TestBackoff_ReturnsOnCancelledContext(t *testing.T) {
	f := newTestFetcher()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	f.backoff(ctx, 0)
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestBackoff_CapRespectsContext(t *testing.T) {
	f := newTestFetcher()
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	// Attempt 20 raw would be hours without the 30s cap; the short
	// context deadline cuts the capped sleep off.
	start := time.Now()
	f.backoff(ctx, 20)
	assert.Less(t, time.Since(start), 1*time.Second)
}

func TestRateLimiting_PerHost(t *testing.T) {
	var reqTimes []time.Time
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		reqTimes = append(reqTimes, time.Now())
		w.Write([]byte("ok")) //nolint:errcheck
	}))
	defer srv.Close()

	limiters := map[string]*rate.Limiter{
		srv.Listener.Addr().String(): rate.NewLimiter(2, 1),
	}
	f := NewHTTPFetcher(HTTPOptions{
		UserAgent:    "test-agent",
		Timeout:      5 * time.Second,
		MaxRetries:   1,
		RateLimiters: limiters,
	})

	for range 3 {
		body, err := f.Download(context.Background(), srv.URL+"/export.csv")
		require.NoError(t, err)
		body.Close() //nolint:errcheck
	}

	require.GreaterOrEqual(t, len(reqTimes), 3)
	duration := reqTimes[len(reqTimes)-1].Sub(reqTimes[0])
	assert.GreaterOrEqual(t, duration.Milliseconds(), int64(500))
}

func TestRateLimiter_WaitCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok")) //nolint:errcheck
	}))
	defer srv.Close()

	// Zero burst blocks forever waiting for a token.
	limiters := map[string]*rate.Limiter{
		srv.Listener.Addr().String(): rate.NewLimiter(rate.Every(10*time.Second), 0),
	}
	f := NewHTTPFetcher(HTTPOptions{
		UserAgent:    "test-agent",
		Timeout:      5 * time.Second,
		MaxRetries:   1,
		RateLimiters: limiters,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := f.Download(ctx, srv.URL+"/export.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limiter wait")
}

func TestLimiterFor_KnownHost(t *testing.T) {
	f := NewHTTPFetcher(HTTPOptions{
		UserAgent: "test",
		RateLimiters: map[string]*rate.Limiter{
			"www.tdlr.texas.gov": rate.NewLimiter(5, 5),
		},
	})

	lim := f.limiterFor("https://www.tdlr.texas.gov/LicenseSearch/licfile.csv")
	assert.InDelta(t, 5.0, float64(lim.Limit()), 0.001)
}

func TestLimiterFor_UnknownHostUsesDefault(t *testing.T) {
	f := newTestFetcher()
	lim := f.limiterFor("https://example.com/export.csv")
	require.NotNil(t, lim)
	assert.InDelta(t, 20.0, float64(lim.Limit()), 0.001)
}

func TestLimiterFor_InvalidURL(t *testing.T) {
	lim := newTestFetcher().limiterFor("://bad")
	assert.NotNil(t, lim)
}

func TestDefaultRateLimiters_RegistryHosts(t *testing.T) {
	limiters := DefaultRateLimiters()
	assert.Contains(t, limiters, "www.cslb.ca.gov")
	assert.Contains(t, limiters, "www.tdlr.texas.gov")
	assert.Contains(t, limiters, "www2.myfloridalicense.com")
	assert.Contains(t, limiters, "data.colorado.gov")
}

func TestHTTPTransport_PoolingConfig(t *testing.T) {
	f := NewHTTPFetcher(HTTPOptions{UserAgent: "test"})
	transport, ok := f.client.Transport.(*http.Transport)
	require.True(t, ok)
	assert.Equal(t, 10, transport.MaxIdleConnsPerHost)
	assert.Equal(t, 20, transport.MaxConnsPerHost)
}

func TestAdaptiveLimiter_SuccessRampsUp(t *testing.T) {
	lim := NewAdaptiveLimiter(10, 10)

	lim.OnSuccess()
	assert.InDelta(t, 12.0, float64(lim.Limit()), 0.1)
	lim.OnSuccess()
	assert.InDelta(t, 14.4, float64(lim.Limit()), 0.1)
}

func TestAdaptiveLimiter_SuccessCapsAtDouble(t *testing.T) {
	lim := NewAdaptiveLimiter(10, 10)
	for range 20 {
		lim.OnSuccess()
	}
	assert.InDelta(t, 20.0, float64(lim.Limit()), 0.1)
}

func TestAdaptiveLimiter_RateLimitHalves(t *testing.T) {
	lim := NewAdaptiveLimiter(10, 10)

	lim.OnRateLimit()
	assert.InDelta(t, 5.0, float64(lim.Limit()), 0.1)
	lim.OnRateLimit()
	assert.InDelta(t, 2.5, float64(lim.Limit()), 0.1)
}

func TestAdaptiveLimiter_FloorAtQuarter(t *testing.T) {
	lim := NewAdaptiveLimiter(10, 10)
	for range 10 {
		lim.OnRateLimit()
	}
	assert.InDelta(t, 2.5, float64(lim.Limit()), 0.1)
}

func TestAdaptiveLimiter_Wait(t *testing.T) {
	lim := NewAdaptiveLimiter(1000, 10)
	assert.NoError(t, lim.Wait(context.Background()))
}

func TestAdaptiveLimiter_WaitCancelled(t *testing.T) {
	lim := NewAdaptiveLimiter(0.001, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, lim.Wait(ctx))
}

func TestDownload_429BacksOffAdaptively(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if attempts.Add(1) <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte("ok")) //nolint:errcheck
	}))
	defer srv.Close()

	f := NewHTTPFetcher(HTTPOptions{
		UserAgent:  "test-agent",
		Timeout:    10 * time.Second,
		MaxRetries: 3,
	})

	u, _ := url.Parse(srv.URL)
	f.adaptiveLimiters[u.Host] = NewAdaptiveLimiter(100, 100)
	initialRate := f.adaptiveLimiters[u.Host].Limit()

	body, err := f.Download(context.Background(), srv.URL+"/resource.json")
	require.NoError(t, err)
	defer body.Close() //nolint:errcheck

	assert.Equal(t, int32(3), attempts.Load())
	// Two 429 halvings then one success bump leave the rate below start.
	assert.Less(t, float64(f.adaptiveLimiters[u.Host].Limit()), float64(initialRate))
}

func TestDefaultAdaptiveLimiters_OpenDataHosts(t *testing.T) {
	limiters := DefaultAdaptiveLimiters()
	require.Contains(t, limiters, "data.colorado.gov")
	require.Contains(t, limiters, "data.wa.gov")
	assert.InDelta(t, 5.0, float64(limiters["data.wa.gov"].Limit()), 0.1)
}

func TestAdaptiveLimiterFor(t *testing.T) {
	f := NewHTTPFetcher(HTTPOptions{UserAgent: "test"})
	assert.NotNil(t, f.adaptiveLimiterFor("https://data.wa.gov/resource/contractors.json"))
	assert.Nil(t, f.adaptiveLimiterFor("https://example.com/export.csv"))
}
