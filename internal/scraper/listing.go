package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"search-insight-miner/internal/observability"
	"search-insight-miner/internal/pkg/fetcher"
	"search-insight-miner/internal/product"
)

// DefaultListingLimit caps how many entries one search yields.
const DefaultListingLimit = 5

// ErrInvalidListing means a collected entry lost its name or detail URL.
var ErrInvalidListing = errors.New("listing entries must carry a name and detail_url")

const (
	selCarousel       = "span [data-component-type='s-searchgrid-carousel']"
	selResultItem     = ".s-result-item"
	selMainSlotItems  = ".s-main-slot .s-result-item"
	selName           = ".a-size-base-plus.a-spacing-none.a-color-base.a-text-normal"
	selSponsored      = ".puis-label-popover"
	selPriceWhole     = ".a-price-whole"
	selMRPSection     = ".a-section.aok-inline-block"
	selMRPValue       = ".a-price.a-text-price span.a-offscreen"
	selRating         = ".a-icon-star-small .a-icon-alt"
	selBoughtRecently = ".a-row.a-size-base span"
	selBadge          = ".a-badge-text"

	boughtRecentlyMarker = "bought in past month"
	sponsoredMarker      = "Sponsored"
)

// Entry is a partial product from a search page, pre-filled with the detail
// defaults so it can be merged without a detail counterpart.
type Entry struct {
	Name           string
	DetailURL      string
	ASIN           string
	Price          float64
	MRP            float64
	Rating         float64
	BoughtRecently string
	Sponsored      string
	Badge          string
	HighlyRated    string
	ReviewText     []string
	AboutThisItem  string
	AllReviewURL   string
	ReviewSummary  string
}

// Map returns the entry keyed by canonical field names.
func (e Entry) Map() map[string]any {
	reviews := e.ReviewText
	if reviews == nil {
		reviews = []string{}
	}
	return map[string]any{
		"name":            e.Name,
		"detail_url":      e.DetailURL,
		"price":           e.Price,
		"mrp":             e.MRP,
		"asin":            e.ASIN,
		"rating":          e.Rating,
		"bought_recently": e.BoughtRecently,
		"sponsored":       e.Sponsored,
		"badge":           e.Badge,
		"highly_rated":    e.HighlyRated,
		"review_text":     reviews,
		"about_this_item": e.AboutThisItem,
		"all_review_url":  e.AllReviewURL,
		"review_summary":  e.ReviewSummary,
	}
}

// ListingResult carries either entries or the fetch failure message.
type ListingResult struct {
	Entries []Entry
	Error   string
}

type Listing struct {
	fetcher fetcher.Fetcher
	baseURL string
	limit   int
	logger  *zap.SugaredLogger
	metrics *observability.Metrics
}

type ListingOptions struct {
	BaseURL string
	Limit   int
	Metrics *observability.Metrics
}

func NewListing(f fetcher.Fetcher, logger *zap.SugaredLogger, opts ListingOptions) *Listing {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultListingLimit
	}
	return &Listing{
		fetcher: f,
		baseURL: base,
		limit:   limit,
		logger:  logger,
		metrics: opts.Metrics,
	}
}

// SearchURL builds the search page URL for term; spaces become '+'.
func (l *Listing) SearchURL(term string) string {
	return l.baseURL + "/s?k=" + url.QueryEscape(term)
}

// Extract fetches the search page for term and returns at most the configured
// number of entries. A non-200 page is reported through ListingResult.Error.
func (l *Listing) Extract(ctx context.Context, term string) (ListingResult, error) {
	searchURL := l.SearchURL(term)

	page, err := l.fetcher.Fetch(ctx, searchURL)
	if err != nil {
		l.metrics.ListingFetch("transport_error")
		return ListingResult{}, fmt.Errorf("fetch listing: %w", err)
	}
	if page.StatusCode != http.StatusOK {
		l.metrics.ListingFetch("http_error")
		l.logger.Warnw("listing_fetch_failed", "url", searchURL, "status", page.StatusCode)
		return ListingResult{Error: fmt.Sprintf("Failed to fetch Amazon page: %d", page.StatusCode)}, nil
	}
	l.metrics.ListingFetch("ok")

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
	if err != nil {
		return ListingResult{}, fmt.Errorf("parse listing: %w", err)
	}

	entries := l.parse(doc)
	for i, e := range entries {
		if e.Name == "" || e.DetailURL == "" {
			return ListingResult{}, fmt.Errorf("entry %d: %w", i, ErrInvalidListing)
		}
	}

	l.logger.Infow("listing_extracted", "search_term", term, "entries", len(entries))
	return ListingResult{Entries: entries}, nil
}

func (l *Listing) parse(doc *goquery.Document) []Entry {
	carousel := doc.Find(selCarousel).First().Find(selResultItem)

	entries := make([]Entry, 0, l.limit)
	doc.Find(selMainSlotItems).EachWithBreak(func(_ int, item *goquery.Selection) bool {
		nameTag := item.Find(selName).First()
		name := text(nameTag)
		if nameTag.Length() == 0 || name == "" {
			return true
		}

		href, ok := nameTag.Parent().Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			l.logger.Infow("listing_entry_skipped", "name", name, "reason", "missing detail url")
			return true
		}

		price, _ := product.ParseDecimal(text(item.Find(selPriceWhole).First()))

		entries = append(entries, Entry{
			Name:           name,
			DetailURL:      absolute(l.baseURL, href),
			ASIN:           item.AttrOr("data-asin", product.NA),
			Price:          price,
			MRP:            mrp(item, price),
			Rating:         rating(item),
			BoughtRecently: boughtRecently(item),
			Sponsored:      yesNo(strings.Contains(item.Find(selSponsored).First().Text(), sponsoredMarker)),
			Badge:          textOr(item.Find(selBadge).First(), product.NoBadge),
			HighlyRated:    yesNo(carousel.IsSelection(item)),
			ReviewText:     []string{},
			AboutThisItem:  product.NotAvailable,
			AllReviewURL:   product.NotAvailable,
			ReviewSummary:  product.NotAvailable,
		})

		return len(entries) < l.limit
	})
	return entries
}

// mrp reads the struck-through list price, falling back to price.
func mrp(item *goquery.Selection, price float64) float64 {
	section := item.Find(selMRPSection).First()
	if section.Length() == 0 {
		return price
	}
	v, ok := product.ParseDecimal(text(section.Find(selMRPValue).First()))
	if !ok {
		return price
	}
	return v
}

// rating parses the leading number of "4.3 out of 5 stars".
func rating(item *goquery.Selection) float64 {
	fields := strings.Fields(text(item.Find(selRating).First()))
	if len(fields) == 0 {
		return 0
	}
	v, ok := product.ParseDecimal(fields[0])
	if !ok {
		return 0
	}
	return v
}

func boughtRecently(item *goquery.Selection) string {
	tag := item.Find(selBoughtRecently).First()
	if tag.Length() == 0 || !strings.Contains(tag.Text(), boughtRecentlyMarker) {
		return product.NA
	}
	return text(tag)
}

func yesNo(b bool) string {
	if b {
		return product.Yes
	}
	return product.No
}
