package locator

import (
	"context"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

// HTTPFetcher retrieves locator endpoints over plain HTTP via colly,
// throttled by a shared rate limiter so ZIP sweeps stay polite.
type HTTPFetcher struct {
	ua      string
	timeout time.Duration
	limiter *rate.Limiter
}

// NewHTTPFetcher creates an HTTP fetcher. rps bounds requests per second
// across all ZIPs of a sweep.
func NewHTTPFetcher(ua string, timeout time.Duration, rps float64) *HTTPFetcher {
	if ua == "" {
		ua = defaultUserAgent
	}
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	if rps <= 0 {
		rps = 2
	}
	return &HTTPFetcher{
		ua:      ua,
		timeout: timeout,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// Fetch downloads one locator response body.
func (f *HTTPFetcher) Fetch(ctx context.Context, v Vendor, zip string) ([]byte, error) {
	if v.Mode != ModeHTTP {
		return nil, ErrModeUnsupported
	}
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrapf(err, "locator: rate wait for %s", v.Name)
	}

	c := colly.NewCollector(colly.UserAgent(f.ua))
	c.SetRequestTimeout(f.timeout)

	var body []byte
	var fetchErr error
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
	})
	c.OnError(func(_ *colly.Response, err error) {
		fetchErr = err
	})

	url := v.URL(zip)
	if err := c.Visit(url); err != nil {
		return nil, eris.Wrapf(err, "locator: visit %s", url)
	}
	c.Wait()
	if fetchErr != nil {
		return nil, eris.Wrapf(fetchErr, "locator: fetch %s", url)
	}
	if len(body) == 0 {
		return nil, eris.New("locator: empty response from " + url)
	}
	return body, nil
}
