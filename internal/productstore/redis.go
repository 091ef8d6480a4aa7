package productstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"search-insight-miner/internal/product"
)

// RedisStore keeps one hash per product and a set of product keys per term.
type RedisStore struct {
	client *redis.Client
	logger *zap.SugaredLogger
	now    func() time.Time
}

func NewRedisStore(client *redis.Client, logger *zap.SugaredLogger) *RedisStore {
	return &RedisStore{client: client, logger: logger, now: time.Now}
}

// productKey length-prefixes the term so terms and ASINs containing ':' cannot
// collide.
func productKey(term, asin string) string {
	return fmt.Sprintf("product:%d:%s:%s", len(term), term, asin)
}

// termKey needs no prefix: the term is the whole suffix.
func termKey(term string) string {
	return fmt.Sprintf("search_term:%s", term)
}

func (s *RedisStore) Put(ctx context.Context, rec product.Record) error {
	if err := validateKey(rec); err != nil {
		return err
	}

	r := toRow(rec, s.now())
	reviews, err := json.Marshal(r.ReviewText)
	if err != nil {
		return fmt.Errorf("encode review text: %w", err)
	}

	pk := productKey(r.SearchTerm, r.ASIN)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, pk, map[string]any{
			FieldASIN:           r.ASIN,
			FieldSearchTerm:     r.SearchTerm,
			FieldName:           r.Name,
			FieldPrice:          r.Price,
			FieldMRP:            r.MRP,
			FieldRating:         r.Rating,
			FieldBoughtRecently: r.BoughtRecently,
			FieldSponsored:      r.Sponsored,
			FieldHighlyRated:    r.HighlyRated,
			FieldBadge:          r.Badge,
			FieldDetailURL:      r.DetailURL,
			FieldAboutThisItem:  r.AboutThisItem,
			FieldReviewText:     string(reviews),
			FieldAllReviewURL:   r.AllReviewURL,
			FieldReviewSummary:  r.ReviewSummary,
			FieldLastUpdated:    r.LastUpdated,
			FieldDate:           r.Date,
		})
		pipe.SAdd(ctx, termKey(r.SearchTerm), pk)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis put %s: %w", pk, err)
	}
	return nil
}

func (s *RedisStore) Query(ctx context.Context, term string) ([]Item, error) {
	keys, err := s.client.SMembers(ctx, termKey(term)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis members %s: %w", termKey(term), err)
	}
	if len(keys) == 0 {
		return nil, nil
	}
	sort.Strings(keys)

	cmds := make([]*redis.MapStringStringCmd, len(keys))
	_, err = s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, k := range keys {
			cmds[i] = pipe.HGetAll(ctx, k)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("redis hgetall: %w", err)
	}

	items := make([]Item, 0, len(keys))
	for i, cmd := range cmds {
		h := cmd.Val()
		if len(h) == 0 {
			s.logger.Warnw("redis_index_dangling_key", "key", keys[i], "search_term", term)
			continue
		}
		items = append(items, s.hashRow(keys[i], h).item())
	}
	return items, nil
}

func (s *RedisStore) hashRow(key string, h map[string]string) row {
	r := row{
		ASIN:           h[FieldASIN],
		SearchTerm:     h[FieldSearchTerm],
		Name:           h[FieldName],
		Price:          h[FieldPrice],
		MRP:            h[FieldMRP],
		Rating:         h[FieldRating],
		BoughtRecently: h[FieldBoughtRecently],
		Sponsored:      h[FieldSponsored],
		HighlyRated:    h[FieldHighlyRated],
		Badge:          h[FieldBadge],
		DetailURL:      h[FieldDetailURL],
		AboutThisItem:  h[FieldAboutThisItem],
		AllReviewURL:   h[FieldAllReviewURL],
		ReviewSummary:  h[FieldReviewSummary],
		LastUpdated:    h[FieldLastUpdated],
		Date:           h[FieldDate],
	}
	if raw := h[FieldReviewText]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &r.ReviewText); err != nil {
			s.logger.Warnw("redis_review_text_invalid", "key", key, "err", err)
			r.ReviewText = nil
		}
	}
	return r
}

var _ Store = (*RedisStore)(nil)
