package fetcher

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"SmartShop/internal/domain/service"
	applogger "SmartShop/pkg/logger"

	"github.com/chromedp/chromedp"
)

const MethodBrowser = "browser"

var asinPattern = regexp.MustCompile(`(?i)/(?:dp|product)/([A-Z0-9]{10})`)

// BrowserFetcher renders the page in headless Chrome. It is slow and needs a
// local browser binary, so only the scrape CLI uses it.
type BrowserFetcher struct {
	userAgent string
	execPath  string
	timeout   time.Duration
	scrolls   int
	log       *applogger.Logger
}

type BrowserOption func(*BrowserFetcher)

// WithExecPath points chromedp at a specific Chrome/Chromium binary.
func WithExecPath(path string) BrowserOption {
	return func(b *BrowserFetcher) { b.execPath = path }
}

func WithBrowserTimeout(d time.Duration) BrowserOption {
	return func(b *BrowserFetcher) { b.timeout = d }
}

func NewBrowserFetcher(userAgent string, l *applogger.Logger, opts ...BrowserOption) *BrowserFetcher {
	if l == nil {
		l = applogger.Nop()
	}
	b := &BrowserFetcher{
		userAgent: userAgent,
		timeout:   90 * time.Second,
		scrolls:   6,
		log:       l.With(applogger.String("component", "browser_fetcher")),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

var _ service.Fetcher = (*BrowserFetcher)(nil)

// ReviewsURL maps an Amazon product URL to its dedicated reviews listing.
// Other URLs are returned unchanged.
func ReviewsURL(pageURL string) string {
	m := asinPattern.FindStringSubmatch(pageURL)
	if m == nil {
		return pageURL
	}
	return fmt.Sprintf("https://www.amazon.com/product-reviews/%s/?pageNumber=1&sortBy=recent", m[1])
}

func (b *BrowserFetcher) Fetch(ctx context.Context, pageURL string) service.FetchResult {
	res := service.FetchResult{Method: MethodNone}
	logf := func(format string, a ...interface{}) {
		res.Logs = append(res.Logs, fmt.Sprintf(format, a...))
	}

	target := ReviewsURL(pageURL)
	if target != pageURL {
		logf("🔍 Detected ASIN, navigating to reviews page: %s", target)
	} else {
		logf("🔍 Launching headless browser: %s", target)
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(1280, 800),
		chromedp.UserAgent(b.userAgent),
	)
	if b.execPath != "" {
		opts = append(opts, chromedp.ExecPath(b.execPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelBrowser()
	runCtx, cancel := context.WithTimeout(browserCtx, b.timeout)
	defer cancel()

	actions := []chromedp.Action{
		chromedp.Navigate(target),
		chromedp.Sleep(2 * time.Second),
	}
	for i := 0; i < b.scrolls; i++ {
		actions = append(actions,
			chromedp.Evaluate(`window.scrollBy(0, window.innerHeight)`, nil),
			chromedp.Sleep(time.Second),
		)
	}
	var html string
	actions = append(actions, chromedp.OuterHTML("html", &html, chromedp.ByQuery))

	if err := chromedp.Run(runCtx, actions...); err != nil {
		logf("❌ Browser fetch failed: %v", err)
		b.log.Warn("browser fetch failed", applogger.String("url", target), applogger.Error(err))
		return res
	}

	logf("✅ Page HTML length: %d", len(html))
	res.HTML, res.Method = html, MethodBrowser
	return res
}
