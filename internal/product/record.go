// Package product holds the canonical product record and the normalizer that
// reconciles the field spellings produced by scrapers and by the cache.
package product

// TimeLayout is the UTC timestamp format used for last_updated.
const TimeLayout = "2006-01-02 15:04:05"

// Sentinel values for genuinely absent fields.
const (
	NotAvailable = "Not Available"
	NA           = "NA"
	Yes          = "Yes"
	No           = "No"
	NoBadge      = "None"
)

// Record is a normalized product. Field order matches the response payload.
type Record struct {
	Badge          string   `json:"badge"`
	HighlyRated    string   `json:"highly_rated"`
	SearchTerm     string   `json:"search_term"`
	MRP            float64  `json:"mrp"`
	ReviewSummary  string   `json:"review_summary"`
	AboutThisItem  string   `json:"about_this_item"`
	ASIN           string   `json:"asin"`
	LastUpdated    string   `json:"last_updated"`
	Sponsored      string   `json:"sponsored"`
	ReviewText     []string `json:"review_text"`
	Price          float64  `json:"price"`
	BoughtRecently string   `json:"bought_recently"`
	DetailURL      string   `json:"detail_url"`
	AllReviewURL   string   `json:"all_review_url"`
	Rating         float64  `json:"rating"`
	Name           string   `json:"name"`
}

// HasValidASIN reports whether the record may be persisted.
func (r Record) HasValidASIN() bool {
	return r.ASIN != "" && r.ASIN != NA
}

// Map returns the record keyed by canonical snake_case names.
func (r Record) Map() map[string]any {
	reviews := r.ReviewText
	if reviews == nil {
		reviews = []string{}
	}
	return map[string]any{
		"badge":           r.Badge,
		"highly_rated":    r.HighlyRated,
		"search_term":     r.SearchTerm,
		"mrp":             r.MRP,
		"review_summary":  r.ReviewSummary,
		"about_this_item": r.AboutThisItem,
		"asin":            r.ASIN,
		"last_updated":    r.LastUpdated,
		"sponsored":       r.Sponsored,
		"review_text":     reviews,
		"price":           r.Price,
		"bought_recently": r.BoughtRecently,
		"detail_url":      r.DetailURL,
		"all_review_url":  r.AllReviewURL,
		"rating":          r.Rating,
		"name":            r.Name,
	}
}

// Maps converts records back to the loosely typed form Normalize accepts.
func Maps(records []Record) []any {
	out := make([]any, 0, len(records))
	for _, r := range records {
		out = append(out, r.Map())
	}
	return out
}
