package webcontent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"insight-agent/config"
	"insight-agent/types"
)

const (
	userAgent    = "Mozilla/5.0 (compatible; InsightAgent/1.0; +https://insight-agent.local)"
	acceptHeader = "text/html,application/xhtml+xml,application/json;q=0.9,text/plain;q=0.8,*/*;q=0.5"

	// maxBodyBytes bounds how much of a response is read before
	// extraction; the content cap applies to extracted text, not raw HTML.
	maxBodyBytes = 5 * 1024 * 1024

	// maxConcurrentFetches bounds the fan-out when one message carries
	// several URLs.
	maxConcurrentFetches = 5
)

// Fetcher retrieves a URL and extracts readable text and metadata from
// the response. All failure modes - bad scheme, network error, timeout,
// unsupported content type - are returned as FetchedContent values with
// Success == false, never as errors.
type Fetcher struct {
	cfg        *config.Config
	httpClient *http.Client
	cache      *lru.Cache
	logger     *zap.Logger
}

func NewFetcher(cfg *config.Config, logger *zap.Logger) *Fetcher {
	cacheSize := cfg.FetchCacheSize
	if cacheSize <= 0 {
		cacheSize = 128
	}
	cache, err := lru.New(cacheSize)
	if err != nil {
		// Only reachable with a non-positive size, which is guarded above.
		logger.Warn("Failed to create fetch cache, continuing without one", zap.Error(err))
	}

	return &Fetcher{
		cfg:        cfg,
		httpClient: &http.Client{},
		cache:      cache,
		logger:     logger,
	}
}

// Fetch retrieves a single URL. The request is raced against the
// configured timeout; a timeout produces a distinct error message from a
// generic fetch failure.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) types.FetchedContent {
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return f.failure(rawURL, fmt.Sprintf("invalid URL: only http and https schemes are supported, got %q", schemeOf(parsed, err)))
	}

	if f.cache != nil {
		if cached, ok := f.cache.Get(rawURL); ok {
			if content, ok := cached.(types.FetchedContent); ok {
				f.logger.Debug("Fetch cache hit", zap.String("url", rawURL))
				return content
			}
		}
	}

	reqCtx, cancel := context.WithTimeout(ctx, f.cfg.FetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return f.failure(rawURL, fmt.Sprintf("could not build request: %v", err))
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", acceptHeader)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return f.failure(rawURL, fmt.Sprintf("TIMEOUT: request did not complete within %s", f.cfg.FetchTimeout))
		}
		return f.failure(rawURL, fmt.Sprintf("fetch failed: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return f.failure(rawURL, fmt.Sprintf("server responded with status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return f.failure(rawURL, fmt.Sprintf("TIMEOUT: request did not complete within %s", f.cfg.FetchTimeout))
		}
		return f.failure(rawURL, fmt.Sprintf("could not read response body: %v", err))
	}

	contentType := resp.Header.Get("Content-Type")
	mediaType, _, mimeErr := mime.ParseMediaType(contentType)
	if mimeErr != nil {
		mediaType = strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	}

	var result types.FetchedContent
	switch mediaType {
	case "application/json":
		result = f.extractJSON(rawURL, parsed.Host, body)
	case "text/plain":
		result = f.extractPlainText(rawURL, parsed.Host, body)
	case "text/html", "application/xhtml+xml":
		result = f.extractHTML(rawURL, parsed.Host, bytes.NewReader(body))
	default:
		return f.failure(rawURL, fmt.Sprintf("unsupported content type %q", contentType))
	}

	if result.Success && f.cache != nil {
		f.cache.Add(rawURL, result)
	}
	return result
}

// FetchAll retrieves every URL concurrently with bounded parallelism. One
// URL's failure or timeout does not cancel or delay the others; results
// are returned in input order once all have settled.
func (f *Fetcher) FetchAll(ctx context.Context, urls []string) []types.FetchedContent {
	results := make([]types.FetchedContent, len(urls))

	var g errgroup.Group
	g.SetLimit(maxConcurrentFetches)
	for i, u := range urls {
		i, u := i, u
		g.Go(func() error {
			results[i] = f.Fetch(ctx, u)
			return nil
		})
	}
	// Fetch never returns an error; failures are values in results.
	_ = g.Wait()

	return results
}

func (f *Fetcher) extractJSON(rawURL, host string, body []byte) types.FetchedContent {
	var pretty bytes.Buffer
	content := string(body)
	if err := json.Indent(&pretty, body, "", "  "); err == nil {
		content = pretty.String()
	}
	content = truncate(content, f.cfg.FetchMaxContentChars)

	return types.FetchedContent{
		URL:       rawURL,
		Title:     host,
		Content:   content,
		SiteName:  host,
		WordCount: len(strings.Fields(content)),
		Success:   true,
	}
}

func (f *Fetcher) extractPlainText(rawURL, host string, body []byte) types.FetchedContent {
	content := truncate(strings.TrimSpace(string(body)), f.cfg.FetchMaxContentChars)

	return types.FetchedContent{
		URL:       rawURL,
		Title:     host,
		Content:   content,
		SiteName:  host,
		WordCount: len(strings.Fields(content)),
		Success:   true,
	}
}

func (f *Fetcher) failure(rawURL, message string) types.FetchedContent {
	f.logger.Debug("URL fetch failed",
		zap.String("url", rawURL),
		zap.String("reason", message))
	return types.FetchedContent{
		URL:     rawURL,
		Success: false,
		Error:   message,
	}
}

func schemeOf(parsed *url.URL, err error) string {
	if err != nil || parsed == nil {
		return ""
	}
	return parsed.Scheme
}

func truncate(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	return s[:limit]
}
