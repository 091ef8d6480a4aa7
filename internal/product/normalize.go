package product

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

type field struct {
	name    string
	aliases []string
	// set coerces v into the record and reports whether coercion succeeded.
	set func(r *Record, v any) bool
	def func(r *Record, now time.Time)
}

// fields lists every canonical field with its aliases in priority order.
var fields = []field{
	stringField("badge", []string{"Badge", "badge"}, NoBadge, func(r *Record) *string { return &r.Badge }),
	stringField("highly_rated", []string{"HighlyRated", "highly_rated"}, No, func(r *Record) *string { return &r.HighlyRated }),
	stringField("search_term", []string{"SearchTerm", "searchTerm", "search_term"}, "", func(r *Record) *string { return &r.SearchTerm }),
	floatField("mrp", []string{"MRP", "mrp"}, func(r *Record) *float64 { return &r.MRP }),
	stringField("review_summary", []string{"ReviewSummary", "review_summary"}, NotAvailable, func(r *Record) *string { return &r.ReviewSummary }),
	stringField("about_this_item", []string{"AboutThisItem", "about_this_item"}, NotAvailable, func(r *Record) *string { return &r.AboutThisItem }),
	stringField("asin", []string{"ASIN", "asin"}, "", func(r *Record) *string { return &r.ASIN }),
	{
		name:    "last_updated",
		aliases: []string{"LastUpdated", "last_updated", "Date"},
		set: func(r *Record, v any) bool {
			if t, ok := v.(time.Time); ok {
				r.LastUpdated = t.UTC().Format(TimeLayout)
				return true
			}
			s, ok := toString(v)
			if !ok || strings.TrimSpace(s) == "" {
				return false
			}
			r.LastUpdated = s
			return true
		},
		def: func(r *Record, now time.Time) { r.LastUpdated = now.UTC().Format(TimeLayout) },
	},
	stringField("sponsored", []string{"Sponsored", "sponsored"}, No, func(r *Record) *string { return &r.Sponsored }),
	{
		name:    "review_text",
		aliases: []string{"ReviewText", "review_text"},
		set: func(r *Record, v any) bool {
			r.ReviewText = toStrings(v)
			return true
		},
		def: func(r *Record, _ time.Time) { r.ReviewText = []string{} },
	},
	floatField("price", []string{"Price", "price"}, func(r *Record) *float64 { return &r.Price }),
	stringField("bought_recently", []string{"BoughtRecently", "bought_recently"}, NA, func(r *Record) *string { return &r.BoughtRecently }),
	stringField("detail_url", []string{"DetailURL", "detail_url"}, NotAvailable, func(r *Record) *string { return &r.DetailURL }),
	stringField("all_review_url", []string{"AllReviewURL", "all_review_url"}, NotAvailable, func(r *Record) *string { return &r.AllReviewURL }),
	floatField("rating", []string{"Rating", "rating"}, func(r *Record) *float64 { return &r.Rating }),
	stringField("name", []string{"Name", "name"}, "", func(r *Record) *string { return &r.Name }),
}

func stringField(name string, aliases []string, def string, ptr func(*Record) *string) field {
	return field{
		name:    name,
		aliases: aliases,
		set: func(r *Record, v any) bool {
			s, ok := toString(v)
			if ok {
				*ptr(r) = s
			}
			return ok
		},
		def: func(r *Record, _ time.Time) { *ptr(r) = def },
	}
}

func floatField(name string, aliases []string, ptr func(*Record) *float64) field {
	return field{
		name:    name,
		aliases: aliases,
		set: func(r *Record, v any) bool {
			f, ok := ToFloat(v)
			if ok {
				*ptr(r) = f
			}
			return ok
		},
		def: func(r *Record, _ time.Time) { *ptr(r) = 0 },
	}
}

// Normalize maps heterogeneous product mappings onto Records. Entries that are
// not mappings are skipped; everything else yields exactly one Record, in
// input order. It never fails.
func Normalize(log *zap.SugaredLogger, raws []any) []Record {
	return NormalizeAt(log, raws, time.Now())
}

// NormalizeAt is Normalize with a fixed clock for the last_updated default.
func NormalizeAt(log *zap.SugaredLogger, raws []any, now time.Time) []Record {
	out := make([]Record, 0, len(raws))
	for i, raw := range raws {
		m, ok := asMap(raw)
		if !ok {
			log.Warnw("normalize_skipped_non_mapping", "index", i, "type", fmt.Sprintf("%T", raw))
			continue
		}
		out = append(out, normalizeOne(log, i, m, now))
	}
	return out
}

func normalizeOne(log *zap.SugaredLogger, index int, m map[string]any, now time.Time) Record {
	var r Record
	for _, f := range fields {
		v, found := lookup(m, f.aliases)
		if !found {
			f.def(&r, now)
			log.Warnw("normalize_default_used", "index", index, "field", f.name)
			continue
		}
		if !f.set(&r, v) {
			f.def(&r, now)
			log.Warnw("normalize_invalid_value", "index", index, "field", f.name, "value", v)
		}
	}
	return r
}

// lookup returns the first alias present with a non-nil value. A null under an
// earlier alias falls through to the next one instead of forcing the default.
func lookup(m map[string]any, aliases []string) (any, bool) {
	for _, k := range aliases {
		v, ok := m[k]
		if !ok {
			continue
		}
		v = deref(v)
		if v == nil {
			continue
		}
		return v, true
	}
	return nil, false
}

func asMap(raw any) (map[string]any, bool) {
	switch m := raw.(type) {
	case map[string]any:
		return m, true
	case map[string]string:
		out := make(map[string]any, len(m))
		for k, v := range m {
			out[k] = v
		}
		return out, true
	case Record:
		return m.Map(), true
	case *Record:
		if m == nil {
			return nil, false
		}
		return m.Map(), true
	default:
		return nil, false
	}
}

// deref unwraps typed nil and non-nil pointers produced by optional fields.
func deref(v any) any {
	switch p := v.(type) {
	case *string:
		if p == nil {
			return nil
		}
		return *p
	case *float64:
		if p == nil {
			return nil
		}
		return *p
	case *[]string:
		if p == nil {
			return nil
		}
		return *p
	case []string:
		if p == nil {
			return nil
		}
	}
	return v
}

func toString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case []byte:
		return string(t), true
	case json.Number:
		return t.String(), true
	case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(t), true
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case fmt.Stringer:
		return t.String(), true
	default:
		return "", false
	}
}

// ToFloat coerces numbers, json.Number and numeric text such as "1,299.00" or
// "₹499" to a finite, non-negative float64.
func ToFloat(v any) (float64, bool) {
	f, ok := toFloat(v)
	if !ok || !validAmount(f) {
		return 0, false
	}
	return f, true
}

func validAmount(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0) && f >= 0
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint:
		return float64(t), true
	case uint32:
		return float64(t), true
	case uint64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		return ParseDecimal(t)
	case []byte:
		return ParseDecimal(string(t))
	default:
		return 0, false
	}
}

// ParseDecimal parses price-like text, dropping thousands separators and the
// rupee sign. NaN, infinities and negative amounts are rejected.
func ParseDecimal(s string) (float64, bool) {
	s = strings.NewReplacer(",", "", "₹", "").Replace(strings.TrimSpace(s))
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || !validAmount(f) {
		return 0, false
	}
	return f, true
}

func toStrings(v any) []string {
	switch t := v.(type) {
	case []string:
		out := make([]string, len(t))
		copy(out, t)
		return out
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if item == nil {
				continue
			}
			if s, ok := toString(item); ok {
				out = append(out, s)
			} else {
				out = append(out, fmt.Sprint(item))
			}
		}
		return out
	case string:
		if t == "" {
			return []string{}
		}
		return []string{t}
	default:
		return []string{}
	}
}
