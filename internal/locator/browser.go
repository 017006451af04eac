package locator

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// BrowserFetcher drives headless Chrome for locators that only render their
// dealer lists client-side.
type BrowserFetcher struct {
	timeout time.Duration
	// allocOpts lets tests point at an existing browser; nil uses defaults.
	allocOpts []chromedp.ExecAllocatorOption
}

// NewBrowserFetcher creates a browser fetcher with a per-page timeout.
func NewBrowserFetcher(timeout time.Duration) *BrowserFetcher {
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &BrowserFetcher{
		timeout: timeout,
		allocOpts: append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
		),
	}
}

// Fetch navigates to the vendor's locator URL for the ZIP, waits for the
// vendor's result selector, and returns the rendered page HTML.
func (f *BrowserFetcher) Fetch(ctx context.Context, v Vendor, zip string) ([]byte, error) {
	if v.Mode != ModeBrowser {
		return nil, ErrModeUnsupported
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, f.allocOpts...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	runCtx, runCancel := context.WithTimeout(browserCtx, f.timeout)
	defer runCancel()

	url := v.URL(zip)
	tasks := chromedp.Tasks{chromedp.Navigate(url)}
	if v.WaitSelector != "" {
		tasks = append(tasks, chromedp.WaitVisible(v.WaitSelector, chromedp.ByQuery))
	}
	var html string
	tasks = append(tasks, chromedp.OuterHTML("html", &html, chromedp.ByQuery))

	if err := chromedp.Run(runCtx, tasks); err != nil {
		return nil, eris.Wrapf(err, "locator: browser fetch %s", url)
	}

	zap.L().Debug("browser fetch complete",
		zap.String("component", "locator.browser"),
		zap.String("vendor", v.Name),
		zap.String("zip", zip),
		zap.Int("bytes", len(html)),
	)
	return []byte(html), nil
}

// ModeMux routes fetches to the HTTP or browser fetcher by vendor mode.
type ModeMux struct {
	HTTP    Fetcher
	Browser Fetcher
}

// Fetch dispatches on the vendor's declared mode.
func (m ModeMux) Fetch(ctx context.Context, v Vendor, zip string) ([]byte, error) {
	switch v.Mode {
	case ModeHTTP:
		if m.HTTP == nil {
			return nil, ErrModeUnsupported
		}
		return m.HTTP.Fetch(ctx, v, zip)
	case ModeBrowser:
		if m.Browser == nil {
			return nil, ErrModeUnsupported
		}
		return m.Browser.Fetch(ctx, v, zip)
	default:
		return nil, ErrModeUnsupported
	}
}
