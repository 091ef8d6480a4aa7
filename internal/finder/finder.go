// Package finder serves products for a search term from the cache, scraping
// and persisting them on a miss.
package finder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"search-insight-miner/internal/observability"
	"search-insight-miner/internal/product"
	"search-insight-miner/internal/productstore"
	"search-insight-miner/internal/scraper"
)

// ErrNoProducts means the listing failed or yielded no entries.
var ErrNoProducts = errors.New("no products found")

type Lister interface {
	Extract(ctx context.Context, term string) (scraper.ListingResult, error)
}

type DetailFetcher interface {
	FetchDetails(ctx context.Context, urls []string) []scraper.DetailResult
}

type Exporter interface {
	Export(ctx context.Context, records []product.Record) error
}

type Outcome struct {
	Records []product.Record
	// Cached is true when Records came from the store without scraping.
	Cached    bool
	ExportURL string
}

type Finder struct {
	store     productstore.Store
	listing   Lister
	details   DetailFetcher
	exporter  Exporter
	publicURL string
	logger    *zap.SugaredLogger
	metrics   *observability.Metrics
	now       func() time.Time
}

type Options struct {
	// Exporter is optional.
	Exporter  Exporter
	PublicURL string
	Metrics   *observability.Metrics
}

func New(store productstore.Store, listing Lister, details DetailFetcher, logger *zap.SugaredLogger, opts Options) *Finder {
	return &Finder{
		store:     store,
		listing:   listing,
		details:   details,
		exporter:  opts.Exporter,
		publicURL: opts.PublicURL,
		logger:    logger,
		metrics:   opts.Metrics,
		now:       time.Now,
	}
}

// GetOrFetch returns the cached products for term, or scrapes, persists and
// exports them when the cache has none.
func (f *Finder) GetOrFetch(ctx context.Context, term string) (Outcome, error) {
	if recs, ok := f.cached(ctx, term); ok {
		return Outcome{Records: recs, Cached: true, ExportURL: f.publicURL}, nil
	}

	res, err := f.listing.Extract(ctx, term)
	if err != nil {
		return Outcome{}, fmt.Errorf("extract listing for %q: %w", term, err)
	}
	if res.Error != "" || len(res.Entries) == 0 {
		f.logger.Warnw("listing_empty", "search_term", term, "error", res.Error)
		return Outcome{}, ErrNoProducts
	}

	records := f.merge(ctx, term, res.Entries)
	f.persist(ctx, records)

	if f.exporter != nil {
		if err := f.exporter.Export(ctx, records); err != nil {
			f.logger.Warnw("export_failed", "search_term", term, "err", err)
		}
	}

	f.logger.Infow("products_fetched", "search_term", term, "records", len(records))
	return Outcome{Records: records, ExportURL: f.publicURL}, nil
}

// Lookup returns the cached products for term without scraping.
func (f *Finder) Lookup(ctx context.Context, term string) ([]product.Record, error) {
	items, err := f.store.Query(ctx, term)
	if err != nil {
		return nil, err
	}
	return product.Normalize(f.logger, productstore.Raw(items)), nil
}

func (f *Finder) cached(ctx context.Context, term string) ([]product.Record, bool) {
	items, err := f.store.Query(ctx, term)
	if err != nil {
		f.metrics.CacheLookup("error")
		f.logger.Warnw("cache_query_failed", "search_term", term, "err", err)
		return nil, false
	}
	if len(items) == 0 {
		f.metrics.CacheLookup("miss")
		return nil, false
	}
	f.metrics.CacheLookup("hit")
	f.logger.Infow("cache_hit", "search_term", term, "records", len(items))
	return product.Normalize(f.logger, productstore.Raw(items)), true
}

// missingDetail is merged into entries whose detail page produced no result.
func missingDetail() map[string]any {
	return map[string]any{
		"about_this_item": product.NA,
		"review_text":     []string{},
		"all_review_url":  product.NA,
		"review_summary":  product.NA,
	}
}

func (f *Finder) merge(ctx context.Context, term string, entries []scraper.Entry) []product.Record {
	urls := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.DetailURL == "" || e.DetailURL == product.NA || e.DetailURL == product.NotAvailable {
			continue
		}
		urls = append(urls, e.DetailURL)
	}
	byURL := scraper.IndexByURL(f.details.FetchDetails(ctx, urls))

	stamp := f.now().UTC().Format(product.TimeLayout)
	raws := make([]any, 0, len(entries))
	for _, e := range entries {
		m := e.Map()
		detail := missingDetail()
		if d, ok := byURL[e.DetailURL]; ok {
			detail = d.Fields()
		}
		for k, v := range detail {
			m[k] = v
		}
		m["search_term"] = term
		m["last_updated"] = stamp
		raws = append(raws, m)
	}
	return product.Normalize(f.logger, raws)
}

func (f *Finder) persist(ctx context.Context, records []product.Record) {
	for _, r := range records {
		if !r.HasValidASIN() {
			f.metrics.StoreWrite("skipped")
			f.logger.Debugw("cache_write_skipped", "name", r.Name, "asin", r.ASIN)
			continue
		}
		if err := f.store.Put(ctx, r); err != nil {
			f.metrics.StoreWrite("error")
			f.logger.Warnw("cache_write_failed", "asin", r.ASIN, "search_term", r.SearchTerm, "err", err)
			continue
		}
		f.metrics.StoreWrite("ok")
	}
}
