package scraper

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"search-insight-miner/internal/observability"
	"search-insight-miner/internal/pkg/fetcher"
	"search-insight-miner/internal/product"
)

// StatusSuccess marks a detail page that was fetched and parsed.
const StatusSuccess = "Success"

const (
	selFeatureBullets  = "#feature-bullets"
	selReviewCollapsed = "div[data-hook='review-collapsed']"
	selAllReviewsLink  = "a[data-hook='see-all-reviews-link-foot']"
	selProductSummary  = "#product-summary"
)

// DetailResult is the outcome of one detail page fetch. On failure the four
// detail fields are nil.
type DetailResult struct {
	URL           string
	Status        string
	AboutThisItem *string
	ReviewText    []string
	AllReviewURL  *string
	ReviewSummary *string
}

// Failed reports whether the page could not be fetched.
func (r DetailResult) Failed() bool {
	return r.Status != StatusSuccess
}

// Fields returns the detail fields for merging; failed fields map to nil.
func (r DetailResult) Fields() map[string]any {
	out := map[string]any{
		"about_this_item": nil,
		"review_text":     nil,
		"all_review_url":  nil,
		"review_summary":  nil,
	}
	if r.AboutThisItem != nil {
		out["about_this_item"] = *r.AboutThisItem
	}
	if r.ReviewText != nil {
		out["review_text"] = r.ReviewText
	}
	if r.AllReviewURL != nil {
		out["all_review_url"] = *r.AllReviewURL
	}
	if r.ReviewSummary != nil {
		out["review_summary"] = *r.ReviewSummary
	}
	return out
}

func failedDetail(url, status string) DetailResult {
	return DetailResult{URL: url, Status: status}
}

type Detail struct {
	fetcher fetcher.Fetcher
	baseURL string
	workers int
	logger  *zap.SugaredLogger
	metrics *observability.Metrics
}

type DetailOptions struct {
	BaseURL string
	Workers int
	Metrics *observability.Metrics
}

func NewDetail(f fetcher.Fetcher, logger *zap.SugaredLogger, opts DetailOptions) *Detail {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultDetailWorkers
	}
	return &Detail{
		fetcher: f,
		baseURL: base,
		workers: workers,
		logger:  logger,
		metrics: opts.Metrics,
	}
}

// Extract fetches one product page. It never returns an error: failures are
// reported through Status with nil detail fields.
func (d *Detail) Extract(ctx context.Context, url string) DetailResult {
	page, err := d.fetcher.Fetch(ctx, url)
	if err != nil {
		d.metrics.DetailFetch("transport_error")
		d.logger.Warnw("detail_fetch_failed", "url", url, "err", err)
		return failedDetail(url, fmt.Sprintf("Failed - %v", err))
	}
	if page.StatusCode != http.StatusOK {
		d.metrics.DetailFetch("http_error")
		d.logger.Warnw("detail_fetch_failed", "url", url, "status", page.StatusCode)
		return failedDetail(url, fmt.Sprintf("Failed - HTTP %d", page.StatusCode))
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
	if err != nil {
		d.metrics.DetailFetch("parse_error")
		return failedDetail(url, fmt.Sprintf("Failed - %v", err))
	}
	d.metrics.DetailFetch("ok")

	about := aboutThisItem(doc)
	allReviews := product.NotAvailable
	if href, ok := doc.Find(selAllReviewsLink).First().Attr("href"); ok && strings.TrimSpace(href) != "" {
		allReviews = absolute(d.baseURL, href)
	}
	summary := reviewSummary(doc)

	return DetailResult{
		URL:           url,
		Status:        StatusSuccess,
		AboutThisItem: &about,
		ReviewText:    reviewTexts(doc),
		AllReviewURL:  &allReviews,
		ReviewSummary: &summary,
	}
}

func aboutThisItem(doc *goquery.Document) string {
	section := doc.Find(selFeatureBullets).First()
	if section.Length() == 0 {
		return product.NotAvailable
	}
	var lines []string
	section.Find("li").Each(func(_ int, li *goquery.Selection) {
		lines = append(lines, text(li))
	})
	return strings.Join(lines, "\n")
}

func reviewTexts(doc *goquery.Document) []string {
	reviews := []string{}
	doc.Find(selReviewCollapsed).Each(func(_ int, div *goquery.Selection) {
		span := div.Find("span").First()
		if span.Length() == 0 {
			return
		}
		reviews = append(reviews, text(span))
	})
	return reviews
}

func reviewSummary(doc *goquery.Document) string {
	section := doc.Find(selProductSummary).First()
	if section.Length() == 0 {
		return product.NotAvailable
	}
	return textOr(section.Find("p span").First(), product.NotAvailable)
}
