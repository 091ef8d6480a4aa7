package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"search-insight-miner/config"
)

// maxBodyBytes caps how much of a page is read into memory.
const maxBodyBytes = 8 << 20

// DefaultHeaders are sent with every page request.
var DefaultHeaders = map[string]string{
	"User-Agent":                "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Accept-Language":           "en-US,en;q=0.9",
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
	"Referer":                   "https://www.google.com/",
	"DNT":                       "1",
	"Upgrade-Insecure-Requests": "1",
	"Cache-Control":             "max-age=0",
}

// Page is a fetched document. Non-2xx responses are returned as pages, not errors.
type Page struct {
	URL        string
	StatusCode int
	Body       []byte
}

// Fetcher loads a page over HTTP.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*Page, error)
}

type HTTPFetcher struct {
	client  *http.Client
	limiter *rate.Limiter
	headers map[string]string
	logger  *zap.SugaredLogger
}

func NewHTTPFetcher(cfg *config.Config, logger *zap.SugaredLogger) (*HTTPFetcher, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if proxy := strings.TrimSpace(cfg.Scraper.ProxyURL); proxy != "" {
		u, err := url.Parse(proxy)
		if err != nil {
			return nil, fmt.Errorf("parse SCRAPER_PROXY_URL: %w", err)
		}
		transport.Proxy = http.ProxyURL(u)
	}

	timeout := cfg.Scraper.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	var limiter *rate.Limiter
	if perMinute := cfg.Scraper.RequestsPerMinute; perMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), cfg.Scraper.DetailWorkers+1)
	}

	return &HTTPFetcher{
		client:  &http.Client{Timeout: timeout, Transport: transport},
		limiter: limiter,
		headers: DefaultHeaders,
		logger:  logger,
	}, nil
}

func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rawURL, err)
	}

	f.logger.Debugw("page_fetched",
		"url", rawURL,
		"status", resp.StatusCode,
		"bytes", len(body),
		"duration", time.Since(start),
	)

	return &Page{URL: rawURL, StatusCode: resp.StatusCode, Body: body}, nil
}

// Func adapts a plain function to Fetcher.
type Func func(ctx context.Context, rawURL string) (*Page, error)

func (fn Func) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	return fn(ctx, rawURL)
}

var _ Fetcher = (*HTTPFetcher)(nil)
