// Package insights asks a language model for market insights over the cached
// products of a search term.
package insights

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"search-insight-miner/internal/observability"
	"search-insight-miner/internal/product"
	"search-insight-miner/internal/productstore"
)

// Item is one product in the analysis payload.
type Item struct {
	Name           string   `json:"name"`
	Price          float64  `json:"price"`
	MRP            float64  `json:"mrp"`
	Rating         float64  `json:"rating"`
	BoughtRecently string   `json:"boughtRecently"`
	Badge          string   `json:"badge"`
	Sponsored      string   `json:"sponsored"`
	HighlyRated    string   `json:"highlyRated"`
	AboutThisItem  string   `json:"aboutThisItem"`
	ReviewSummary  string   `json:"reviewSummary"`
	ReviewText     []string `json:"reviewText"`
}

// Payload reshapes records into the analysis payload.
func Payload(records []product.Record) []Item {
	out := make([]Item, 0, len(records))
	for _, r := range records {
		reviews := r.ReviewText
		if reviews == nil {
			reviews = []string{}
		}
		out = append(out, Item{
			Name:           r.Name,
			Price:          r.Price,
			MRP:            r.MRP,
			Rating:         r.Rating,
			BoughtRecently: r.BoughtRecently,
			Badge:          r.Badge,
			Sponsored:      r.Sponsored,
			HighlyRated:    r.HighlyRated,
			AboutThisItem:  r.AboutThisItem,
			ReviewSummary:  r.ReviewSummary,
			ReviewText:     reviews,
		})
	}
	return out
}

// Response is returned as the insights endpoint body.
type Response struct {
	Success  bool           `json:"success,omitempty"`
	Insights map[string]any `json:"insights,omitempty"`
	Error    string         `json:"error,omitempty"`
}

type Requester struct {
	store      productstore.Store
	summarizer Summarizer
	logger     *zap.SugaredLogger
	metrics    *observability.Metrics
}

func NewRequester(store productstore.Store, summarizer Summarizer, logger *zap.SugaredLogger, metrics *observability.Metrics) *Requester {
	return &Requester{store: store, summarizer: summarizer, logger: logger, metrics: metrics}
}

// Request loads the cached products for term and returns validated insights.
// Failures are reported in Response.Error; Request never returns a Go error.
func (r *Requester) Request(ctx context.Context, term string) Response {
	items, err := r.store.Query(ctx, term)
	if err != nil {
		r.logger.Warnw("insights_cache_query_failed", "search_term", term, "err", err)
		items = nil
	}
	if len(items) == 0 {
		r.metrics.InsightRequest("no_cache")
		return Response{Error: fmt.Sprintf("No cached results found for search term: %s", term)}
	}

	records := product.Normalize(r.logger, productstore.Raw(items))
	content, err := r.summarizer.Summarize(ctx, Payload(records), Instructions(term))
	if err != nil {
		return r.fail(term, err)
	}

	insights, err := Parse(content)
	if err != nil {
		return r.fail(term, err)
	}

	r.metrics.InsightRequest("ok")
	r.logger.Infow("insights_ready", "search_term", term, "products", len(records))
	return Response{Success: true, Insights: insights}
}

func (r *Requester) fail(term string, err error) Response {
	r.logger.Warnw("insights_failed", "search_term", term, "err", err)
	switch {
	case errors.Is(err, ErrValidation):
		r.metrics.InsightRequest("invalid")
		return Response{Error: fmt.Sprintf("Failed to fetch insights: %s", err)}
	case errors.Is(err, ErrMissingAPIKey):
		r.metrics.InsightRequest("unconfigured")
		return Response{Error: err.Error()}
	default:
		r.metrics.InsightRequest("error")
		return Response{Error: err.Error()}
	}
}
