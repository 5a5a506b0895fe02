package fetcher

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"SmartShop/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	return cfg
}

func joined(logs []string) string { return strings.Join(logs, "\n") }

func TestFetchDirectWithBrowserHeaders(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("User-Agent"), "Mozilla/5.0")
		assert.NotEmpty(t, r.Header.Get("Accept-Language"))
		_, _ = w.Write([]byte("<html>ok</html>"))
	}))
	defer page.Close()

	res := NewHTTPFetcher(testConfig(t), nil).Fetch(context.Background(), page.URL)
	assert.Equal(t, "<html>ok</html>", res.HTML)
	assert.Equal(t, MethodDirect, res.Method)
	assert.Contains(t, joined(res.Logs), "🔍 Falling back to direct fetch: "+page.URL)
	assert.Contains(t, joined(res.Logs), "✅ Direct fetch successful, HTML length: 15")
}

func TestFetchPrefersProxy(t *testing.T) {
	var got proxyRequest
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte("<html>rendered</html>"))
	}))
	defer proxy.Close()

	cfg := testConfig(t)
	cfg.Scrape.ProxyURL = proxy.URL
	cfg.Scrape.ProxyToken = "tok"

	res := NewHTTPFetcher(cfg, nil).Fetch(context.Background(), "https://shop.example/p/1")
	assert.Equal(t, "<html>rendered</html>", res.HTML)
	assert.Equal(t, MethodProxy, res.Method)
	assert.Equal(t, proxyRequest{Token: "tok", URL: "https://shop.example/p/1", RenderJS: true, Wait: 3000}, got)
	assert.NotContains(t, joined(res.Logs), "direct fetch")
}

func TestFetchFallsBackWhenProxyFails(t *testing.T) {
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer proxy.Close()
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<p>direct</p>"))
	}))
	defer page.Close()

	cfg := testConfig(t)
	cfg.Scrape.ProxyURL = proxy.URL
	cfg.Scrape.ProxyToken = "tok"

	res := NewHTTPFetcher(cfg, nil).Fetch(context.Background(), page.URL)
	assert.Equal(t, MethodDirect, res.Method)
	assert.Contains(t, joined(res.Logs), "❌ scrape.do fetch failed, status: 403")
}

func TestFetchExhaustionYieldsEmptyHTML(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer page.Close()

	res := NewHTTPFetcher(testConfig(t), nil).Fetch(context.Background(), page.URL)
	assert.Empty(t, res.HTML)
	assert.Equal(t, MethodNone, res.Method)
	assert.Contains(t, joined(res.Logs), "❌ Direct fetch failed, status: 503")
}

func TestFetchTransportErrorIsLogged(t *testing.T) {
	res := NewHTTPFetcher(testConfig(t), nil).Fetch(context.Background(), "http://127.0.0.1:1/unreachable")
	assert.Empty(t, res.HTML)
	assert.Contains(t, joined(res.Logs), "❌ Direct fetch error")
}

func TestReviewsURL(t *testing.T) {
	assert.Equal(t,
		"https://www.amazon.com/product-reviews/B07XG5BNC5/?pageNumber=1&sortBy=recent",
		ReviewsURL("https://www.amazon.com/Some-Thing/dp/B07XG5BNC5?th=1"))
	assert.Equal(t, "https://shop.example/item/9", ReviewsURL("https://shop.example/item/9"))
}
