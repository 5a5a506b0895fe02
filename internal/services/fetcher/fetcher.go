package fetcher

import (
	"context"
	"fmt"
	"io"

	"SmartShop/internal/domain/service"
	"SmartShop/pkg/config"
	xhttp "SmartShop/pkg/http"
	applogger "SmartShop/pkg/logger"
	"SmartShop/pkg/util"
)

const (
	MethodProxy  = "scrape.do"
	MethodDirect = "direct"
	MethodNone   = "none"

	previewLen = 1000
	maxHTML    = 8 << 20
)

// HTTPFetcher tries the rendering proxy when a token is configured, then a
// direct GET. It never returns an error: every outcome lands in the logs.
type HTTPFetcher struct {
	client     *xhttp.Client
	proxyURL   string
	proxyToken string
	renderWait int
	userAgent  string
	log        *applogger.Logger
}

type proxyRequest struct {
	Token    string `json:"token"`
	URL      string `json:"url"`
	RenderJS bool   `json:"render_js"`
	Wait     int    `json:"wait"`
}

func NewHTTPFetcher(cfg *config.Config, l *applogger.Logger) *HTTPFetcher {
	if l == nil {
		l = applogger.Nop()
	}
	return &HTTPFetcher{
		client:     xhttp.NewClient(xhttp.WithTimeout(cfg.Scrape.Timeout), xhttp.WithUserAgent(cfg.Scrape.UserAgent)),
		proxyURL:   cfg.Scrape.ProxyURL,
		proxyToken: cfg.Scrape.ProxyToken,
		renderWait: cfg.Scrape.RenderWait,
		userAgent:  cfg.Scrape.UserAgent,
		log:        l.With(applogger.String("component", "fetcher")),
	}
}

var _ service.Fetcher = (*HTTPFetcher)(nil)

func (f *HTTPFetcher) Fetch(ctx context.Context, pageURL string) service.FetchResult {
	res := service.FetchResult{Method: MethodNone}
	logf := func(format string, a ...interface{}) {
		msg := fmt.Sprintf(format, a...)
		res.Logs = append(res.Logs, msg)
		f.log.Debug(msg, applogger.String("url", pageURL))
	}

	if f.proxyToken != "" {
		logf("🔍 Scraping URL with scrape.do: %s", pageURL)
		html, status, err := f.viaProxy(ctx, pageURL)
		switch {
		case err != nil:
			logf("❌ scrape.do request failed: %v", err)
		case status < 200 || status >= 300:
			logf("❌ scrape.do fetch failed, status: %d", status)
		case html == "":
			logf("❌ scrape.do returned an empty body")
		default:
			logf("✅ scrape.do fetch successful, HTML length: %d", len(html))
			logf("📄 HTML Preview (first %d chars): %s", previewLen, util.TruncateRunes(html, previewLen))
			res.HTML, res.Method = html, MethodProxy
			return res
		}
	}

	logf("🔍 Falling back to direct fetch: %s", pageURL)
	html, status, err := f.direct(ctx, pageURL)
	switch {
	case err != nil:
		logf("❌ Direct fetch error: %v", err)
		f.log.Warn("direct fetch failed", applogger.String("url", pageURL), applogger.Error(err))
	case status < 200 || status >= 300:
		logf("❌ Direct fetch failed, status: %d", status)
	default:
		logf("✅ Direct fetch successful, HTML length: %d", len(html))
		res.HTML, res.Method = html, MethodDirect
	}
	return res
}

func (f *HTTPFetcher) viaProxy(ctx context.Context, pageURL string) (string, int, error) {
	return f.read(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodPost,
		URL:     f.proxyURL,
		Headers: map[string]string{"Content-Type": "application/json"},
		Body: proxyRequest{
			Token:    f.proxyToken,
			URL:      pageURL,
			RenderJS: true,
			Wait:     f.renderWait,
		},
	})
}

func (f *HTTPFetcher) direct(ctx context.Context, pageURL string) (string, int, error) {
	return f.read(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    pageURL,
		Headers: map[string]string{
			"User-Agent":      f.userAgent,
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
			"Accept-Language": "en-US,en;q=0.9",
		},
	})
}

func (f *HTTPFetcher) read(ctx context.Context, opts *xhttp.RequestOptions) (string, int, error) {
	resp, err := f.client.SendRequest(ctx, opts)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return "", resp.StatusCode, nil
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxHTML))
	if err != nil {
		return "", resp.StatusCode, fmt.Errorf("read body: %w", err)
	}
	return string(b), resp.StatusCode, nil
}
