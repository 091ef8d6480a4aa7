// Package productstore persists normalized products keyed by (asin, search_term).
package productstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"search-insight-miner/internal/product"
)

// ErrInvalidKey is returned by Put for records without a usable cache key.
var ErrInvalidKey = errors.New("product cache key requires asin and search_term")

// Item is one persisted product in the capitalized cache layout.
type Item map[string]any

// Store is the product cache. Writes are per record and last-write-wins.
type Store interface {
	// Query returns every item cached for term; an unknown term yields no items.
	Query(ctx context.Context, term string) ([]Item, error)
	// Put upserts rec under (rec.ASIN, rec.SearchTerm).
	Put(ctx context.Context, rec product.Record) error
}

// Persisted field names.
const (
	FieldASIN           = "ASIN"
	FieldSearchTerm     = "SearchTerm"
	FieldName           = "Name"
	FieldPrice          = "Price"
	FieldMRP            = "MRP"
	FieldRating         = "Rating"
	FieldBoughtRecently = "BoughtRecently"
	FieldSponsored      = "Sponsored"
	FieldHighlyRated    = "HighlyRated"
	FieldBadge          = "Badge"
	FieldDetailURL      = "DetailURL"
	FieldAboutThisItem  = "AboutThisItem"
	FieldReviewText     = "ReviewText"
	FieldAllReviewURL   = "AllReviewURL"
	FieldReviewSummary  = "ReviewSummary"
	FieldLastUpdated    = "LastUpdated"
	FieldDate           = "Date"
)

type key struct {
	ASIN       string `validate:"required,ne=NA"`
	SearchTerm string `validate:"required"`
}

var validate = validator.New()

func validateKey(rec product.Record) error {
	if err := validate.Struct(key{ASIN: rec.ASIN, SearchTerm: rec.SearchTerm}); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return nil
}

// row is the flat persisted form shared by the backends. Numbers are exact
// decimal strings.
type row struct {
	ASIN           string `db:"asin"`
	SearchTerm     string `db:"search_term"`
	Name           string `db:"name"`
	Price          string `db:"price"`
	MRP            string `db:"mrp"`
	Rating         string `db:"rating"`
	BoughtRecently string `db:"bought_recently"`
	Sponsored      string `db:"sponsored"`
	HighlyRated    string `db:"highly_rated"`
	Badge          string `db:"badge"`
	DetailURL      string `db:"detail_url"`
	AboutThisItem  string `db:"about_this_item"`
	AllReviewURL   string `db:"all_review_url"`
	ReviewSummary  string `db:"review_summary"`
	LastUpdated    string `db:"last_updated"`
	Date           string `db:"date"`

	ReviewText []string `db:"-"`
}

func toRow(rec product.Record, now time.Time) row {
	stamp := now.UTC().Format(product.TimeLayout)
	lastUpdated := rec.LastUpdated
	if lastUpdated == "" {
		lastUpdated = stamp
	}
	reviews := rec.ReviewText
	if reviews == nil {
		reviews = []string{}
	}
	return row{
		ASIN:           rec.ASIN,
		SearchTerm:     rec.SearchTerm,
		Name:           rec.Name,
		Price:          FormatDecimal(rec.Price),
		MRP:            FormatDecimal(rec.MRP),
		Rating:         FormatDecimal(rec.Rating),
		BoughtRecently: rec.BoughtRecently,
		Sponsored:      rec.Sponsored,
		HighlyRated:    rec.HighlyRated,
		Badge:          rec.Badge,
		DetailURL:      rec.DetailURL,
		AboutThisItem:  rec.AboutThisItem,
		AllReviewURL:   rec.AllReviewURL,
		ReviewSummary:  rec.ReviewSummary,
		LastUpdated:    lastUpdated,
		Date:           stamp,
		ReviewText:     reviews,
	}
}

// item converts a row into the capitalized layout; decimals become float64.
func (r row) item() Item {
	reviews := r.ReviewText
	if reviews == nil {
		reviews = []string{}
	}
	it := Item{
		FieldASIN:           r.ASIN,
		FieldSearchTerm:     r.SearchTerm,
		FieldName:           r.Name,
		FieldBoughtRecently: r.BoughtRecently,
		FieldSponsored:      r.Sponsored,
		FieldHighlyRated:    r.HighlyRated,
		FieldBadge:          r.Badge,
		FieldDetailURL:      r.DetailURL,
		FieldAboutThisItem:  r.AboutThisItem,
		FieldReviewText:     reviews,
		FieldAllReviewURL:   r.AllReviewURL,
		FieldReviewSummary:  r.ReviewSummary,
		FieldLastUpdated:    r.LastUpdated,
	}
	if r.Date != "" {
		it[FieldDate] = r.Date
	}
	setDecimal(it, FieldPrice, r.Price)
	setDecimal(it, FieldMRP, r.MRP)
	setDecimal(it, FieldRating, r.Rating)
	return it
}

// setDecimal leaves malformed numbers out so the normalizer applies its default.
func setDecimal(it Item, field, raw string) {
	if v, ok := product.ParseDecimal(raw); ok {
		it[field] = v
	}
}

// FormatDecimal renders v as the shortest exact decimal string.
func FormatDecimal(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Raw converts items to the input form of product.Normalize.
func Raw(items []Item) []any {
	out := make([]any, 0, len(items))
	for _, it := range items {
		out = append(out, map[string]any(it))
	}
	return out
}
