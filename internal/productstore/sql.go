package productstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"search-insight-miner/db"
	"search-insight-miner/internal/product"
)

// SQLStore keeps products in the products table and their reviews, in order,
// in product_reviews.
type SQLStore struct {
	db     *sqlx.DB
	logger *zap.SugaredLogger
	now    func() time.Time
}

func NewSQLStore(x *sqlx.DB, logger *zap.SugaredLogger) *SQLStore {
	return &SQLStore{db: x, logger: logger, now: time.Now}
}

const upsertProductSQL = `
INSERT INTO products (
  asin,
  search_term,
  name,
  price,
  mrp,
  rating,
  bought_recently,
  sponsored,
  highly_rated,
  badge,
  detail_url,
  about_this_item,
  all_review_url,
  review_summary,
  last_updated,
  date
) VALUES (
  :asin,
  :search_term,
  :name,
  :price,
  :mrp,
  :rating,
  :bought_recently,
  :sponsored,
  :highly_rated,
  :badge,
  :detail_url,
  :about_this_item,
  :all_review_url,
  :review_summary,
  :last_updated,
  :date
)
ON CONFLICT (asin, search_term) DO UPDATE SET
  name = excluded.name,
  price = excluded.price,
  mrp = excluded.mrp,
  rating = excluded.rating,
  bought_recently = excluded.bought_recently,
  sponsored = excluded.sponsored,
  highly_rated = excluded.highly_rated,
  badge = excluded.badge,
  detail_url = excluded.detail_url,
  about_this_item = excluded.about_this_item,
  all_review_url = excluded.all_review_url,
  review_summary = excluded.review_summary,
  last_updated = excluded.last_updated,
  date = excluded.date
`

func (s *SQLStore) Put(ctx context.Context, rec product.Record) error {
	if err := validateKey(rec); err != nil {
		return err
	}
	r := toRow(rec, s.now())

	_, err := db.Tx(ctx, s.db, func(tx *sqlx.Tx) (struct{}, error) {
		if _, err := tx.NamedExecContext(ctx, upsertProductSQL, r); err != nil {
			return struct{}{}, fmt.Errorf("upsert products: %w", err)
		}
		del := tx.Rebind(`DELETE FROM product_reviews WHERE asin = ? AND search_term = ?`)
		if _, err := tx.ExecContext(ctx, del, r.ASIN, r.SearchTerm); err != nil {
			return struct{}{}, fmt.Errorf("clear product_reviews: %w", err)
		}
		ins := tx.Rebind(`INSERT INTO product_reviews (asin, search_term, position, body) VALUES (?, ?, ?, ?)`)
		for i, body := range r.ReviewText {
			if _, err := tx.ExecContext(ctx, ins, r.ASIN, r.SearchTerm, i, body); err != nil {
				return struct{}{}, fmt.Errorf("insert product_reviews: %w", err)
			}
		}
		return struct{}{}, nil
	})
	return err
}

type reviewRow struct {
	ASIN string `db:"asin"`
	Body string `db:"body"`
}

func (s *SQLStore) Query(ctx context.Context, term string) ([]Item, error) {
	var rows []row
	q := s.db.Rebind(`
SELECT asin, search_term, name, price, mrp, rating, bought_recently, sponsored,
       highly_rated, badge, detail_url, about_this_item, all_review_url,
       review_summary, last_updated, date
FROM products
WHERE search_term = ?
ORDER BY asin`)
	if err := s.db.SelectContext(ctx, &rows, q, term); err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	var reviews []reviewRow
	rq := s.db.Rebind(`
SELECT asin, body
FROM product_reviews
WHERE search_term = ?
ORDER BY asin, position`)
	if err := s.db.SelectContext(ctx, &reviews, rq, term); err != nil {
		return nil, fmt.Errorf("select product_reviews: %w", err)
	}
	byASIN := make(map[string][]string, len(rows))
	for _, rv := range reviews {
		byASIN[rv.ASIN] = append(byASIN[rv.ASIN], rv.Body)
	}

	items := make([]Item, 0, len(rows))
	for _, r := range rows {
		r.ReviewText = byASIN[r.ASIN]
		items = append(items, r.item())
	}
	return items, nil
}

var _ Store = (*SQLStore)(nil)
