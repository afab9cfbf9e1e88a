package webcontent

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"insight-agent/config"
)

func testConfig() *config.Config {
	return &config.Config{
		FetchTimeout:         5 * time.Second,
		FetchMaxURLs:         5,
		FetchMaxContentChars: 50000,
		FetchCacheSize:       16,
	}
}

func newTestFetcher(cfg *config.Config) *Fetcher {
	return NewFetcher(cfg, zap.NewNop())
}

const articleHTML = `<!DOCTYPE html>
<html>
<head>
<title>Fallback Title</title>
<meta property="og:title" content="Quarterly Revenue Report">
<meta property="og:description" content="Revenue grew 14% year over year.">
<meta name="author" content="Jane Analyst">
<meta property="article:published_time" content="2025-03-01T09:00:00Z">
<meta property="og:site_name" content="Example Research">
</head>
<body>
<nav>Home | About | Contact</nav>
<script>trackPageView();</script>
<article>
<h1>Quarterly Revenue Report</h1>
<p>Revenue grew fourteen percent year over year, driven primarily by the subscription business and continued expansion in international markets across every region we operate in.</p>
<ul><li>Subscriptions up 22%</li><li>Services down 3%</li></ul>
<blockquote>The strongest quarter in company history.</blockquote>
<p>Operating margin improved by two hundred basis points compared to the prior year period.</p>
</article>
<footer>Copyright 2025</footer>
</body>
</html>`

func TestFetchHTMLArticle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, articleHTML)
	}))
	defer server.Close()

	fetcher := newTestFetcher(testConfig())
	result := fetcher.Fetch(context.Background(), server.URL)

	require.True(t, result.Success, "fetch error: %s", result.Error)
	assert.Equal(t, "Quarterly Revenue Report", result.Title)
	assert.Equal(t, "Revenue grew 14% year over year.", result.Description)
	assert.Equal(t, "Jane Analyst", result.Author)
	assert.Equal(t, "2025-03-01T09:00:00Z", result.PublishedDate)
	assert.Equal(t, "Example Research", result.SiteName)
	assert.Contains(t, result.Content, "## Quarterly Revenue Report")
	assert.Contains(t, result.Content, "• Subscriptions up 22%")
	assert.Contains(t, result.Content, "> The strongest quarter in company history.")
	assert.NotContains(t, result.Content, "trackPageView")
	assert.NotContains(t, result.Content, "Home | About")
	assert.Positive(t, result.WordCount)
}

func TestFetchTitleFallbackChain(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><head><title>Plain Title</title></head><body><p>hello</p></body></html>`)
	}))
	defer server.Close()

	fetcher := newTestFetcher(testConfig())
	result := fetcher.Fetch(context.Background(), server.URL)

	require.True(t, result.Success)
	assert.Equal(t, "Plain Title", result.Title)
}

func TestFetchUntitledFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><body><p>no title here</p></body></html>`)
	}))
	defer server.Close()

	fetcher := newTestFetcher(testConfig())
	result := fetcher.Fetch(context.Background(), server.URL)

	require.True(t, result.Success)
	assert.Equal(t, "Untitled", result.Title)
}

func TestFetchJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status":"ok","count":3}`)
	}))
	defer server.Close()

	fetcher := newTestFetcher(testConfig())
	result := fetcher.Fetch(context.Background(), server.URL)

	require.True(t, result.Success)
	assert.Contains(t, result.Content, "\"status\": \"ok\"")
	assert.Positive(t, result.WordCount)
}

func TestFetchPlainText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprint(w, "just some plain text content")
	}))
	defer server.Close()

	fetcher := newTestFetcher(testConfig())
	result := fetcher.Fetch(context.Background(), server.URL)

	require.True(t, result.Success)
	assert.Equal(t, "just some plain text content", result.Content)
	assert.Equal(t, 5, result.WordCount)
}

func TestFetchContentTruncated(t *testing.T) {
	cfg := testConfig()
	cfg.FetchMaxContentChars = 100
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprint(w, strings.Repeat("abcde ", 200))
	}))
	defer server.Close()

	fetcher := newTestFetcher(cfg)
	result := fetcher.Fetch(context.Background(), server.URL)

	require.True(t, result.Success)
	assert.LessOrEqual(t, len(result.Content), 100)
}

func TestFetchHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	fetcher := newTestFetcher(testConfig())
	result := fetcher.Fetch(context.Background(), server.URL)

	assert.False(t, result.Success)
	assert.Empty(t, result.Content)
	assert.Contains(t, result.Error, "404")
}

func TestFetchUnsupportedContentType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		fmt.Fprint(w, "binarydata")
	}))
	defer server.Close()

	fetcher := newTestFetcher(testConfig())
	result := fetcher.Fetch(context.Background(), server.URL)

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "unsupported content type")
	assert.Contains(t, result.Error, "image/png")
}

func TestFetchRejectsNonHTTPScheme(t *testing.T) {
	fetcher := newTestFetcher(testConfig())

	for _, raw := range []string{"ftp://example.com/file", "file:///etc/passwd", "not a url"} {
		result := fetcher.Fetch(context.Background(), raw)
		assert.False(t, result.Success, "url %q should be rejected", raw)
		assert.Empty(t, result.Content)
		assert.Contains(t, result.Error, "invalid URL")
	}
}

func TestFetchTimeoutIsDistinct(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		fmt.Fprint(w, "late")
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.FetchTimeout = 50 * time.Millisecond
	fetcher := newTestFetcher(cfg)
	result := fetcher.Fetch(context.Background(), server.URL)

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "TIMEOUT")
}

func TestFetchAllGathersAllResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/bad") {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprint(w, "ok from ", r.URL.Path)
	}))
	defer server.Close()

	fetcher := newTestFetcher(testConfig())
	urls := []string{server.URL + "/a", server.URL + "/bad", server.URL + "/c"}
	results := fetcher.FetchAll(context.Background(), urls)

	require.Len(t, results, 3)
	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)
	assert.True(t, results[2].Success)
	assert.Equal(t, urls[0], results[0].URL)
	assert.Equal(t, urls[2], results[2].URL)
}

func TestFetchCachesSuccesses(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprint(w, "cached body")
	}))
	defer server.Close()

	fetcher := newTestFetcher(testConfig())
	first := fetcher.Fetch(context.Background(), server.URL)
	second := fetcher.Fetch(context.Background(), server.URL)

	require.True(t, first.Success)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, hits)
}
