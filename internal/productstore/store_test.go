package productstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	_ "modernc.org/sqlite"

	"search-insight-miner/db"
	"search-insight-miner/internal/product"
)

var fixedNow = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

func newSQLStore(t *testing.T) *SQLStore {
	t.Helper()

	x, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err)
	x.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = x.Close() })
	require.NoError(t, db.Migrate(context.Background(), x, "up"))

	s := NewSQLStore(x, zap.NewNop().Sugar())
	s.now = func() time.Time { return fixedNow }
	return s
}

func newRedisStore(t *testing.T) *RedisStore {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	s := NewRedisStore(client, zap.NewNop().Sugar())
	s.now = func() time.Time { return fixedNow }
	return s
}

func sampleRecord(asin, term string) product.Record {
	return product.Record{
		Badge:          "Best seller",
		HighlyRated:    product.No,
		SearchTerm:     term,
		MRP:            1999,
		ReviewSummary:  "Customers like the finish.",
		AboutThisItem:  "Solid acacia wood.",
		ASIN:           asin,
		LastUpdated:    "2024-12-31 23:59:59",
		Sponsored:      product.Yes,
		ReviewText:     []string{"Great", "Sturdy", "Arrived late"},
		Price:          1299.5,
		BoughtRecently: "500+ bought in past month",
		DetailURL:      "https://www.amazon.in/dp/" + asin,
		AllReviewURL:   "https://www.amazon.in/product-reviews/" + asin,
		Rating:         4.3,
		Name:           "Wooden Coasters Set of 6",
	}
}

func eachStore(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Run("sql", func(t *testing.T) { fn(t, newSQLStore(t)) })
	t.Run("redis", func(t *testing.T) { fn(t, newRedisStore(t)) })
}

func TestStore_RoundTripThroughNormalize(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		rec := sampleRecord("B0TEST0001", "wood coasters")
		require.NoError(t, s.Put(ctx, rec))

		items, err := s.Query(ctx, "wood coasters")
		require.NoError(t, err)
		require.Len(t, items, 1)
		require.Equal(t, "2025-01-02 03:04:05", items[0][FieldDate])
		require.Equal(t, 1299.5, items[0][FieldPrice])

		got := product.NormalizeAt(zap.NewNop().Sugar(), Raw(items), fixedNow)
		require.Equal(t, []product.Record{rec}, got)
	})
}

func TestStore_UnknownTermIsEmpty(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		items, err := s.Query(context.Background(), "nothing here")
		require.NoError(t, err)
		require.Empty(t, items)
	})
}

func TestStore_LastWriteWins(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		first := sampleRecord("B0TEST0001", "wood coasters")
		require.NoError(t, s.Put(ctx, first))

		second := first
		second.Price = 999
		second.ReviewText = []string{"Only one now"}
		require.NoError(t, s.Put(ctx, second))

		items, err := s.Query(ctx, "wood coasters")
		require.NoError(t, err)
		require.Len(t, items, 1)
		require.Equal(t, float64(999), items[0][FieldPrice])
		require.Equal(t, []string{"Only one now"}, items[0][FieldReviewText])
	})
}

func TestStore_KeysAreScopedBySearchTerm(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		require.NoError(t, s.Put(ctx, sampleRecord("B0TEST0001", "wood coasters")))
		require.NoError(t, s.Put(ctx, sampleRecord("B0TEST0001", "coasters")))
		require.NoError(t, s.Put(ctx, sampleRecord("B0TEST0002", "coasters")))

		items, err := s.Query(ctx, "coasters")
		require.NoError(t, err)
		require.Len(t, items, 2)
		require.Equal(t, "B0TEST0001", items[0][FieldASIN])
		require.Equal(t, "B0TEST0002", items[1][FieldASIN])

		items, err = s.Query(ctx, "wood coasters")
		require.NoError(t, err)
		require.Len(t, items, 1)
	})
}

func TestStore_RejectsInvalidKeys(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		for _, rec := range []product.Record{
			sampleRecord("", "wood coasters"),
			sampleRecord(product.NA, "wood coasters"),
			sampleRecord("B0TEST0001", ""),
		} {
			require.ErrorIs(t, s.Put(ctx, rec), ErrInvalidKey)
		}

		items, err := s.Query(ctx, "wood coasters")
		require.NoError(t, err)
		require.Empty(t, items)
	})
}

func TestStore_EmptyReviewsStayEmpty(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		rec := sampleRecord("B0TEST0003", "wood coasters")
		rec.ReviewText = nil
		require.NoError(t, s.Put(ctx, rec))

		items, err := s.Query(ctx, "wood coasters")
		require.NoError(t, err)
		require.Len(t, items, 1)
		require.Equal(t, []string{}, items[0][FieldReviewText])
	})
}

func TestToRow_StampsMissingLastUpdated(t *testing.T) {
	rec := sampleRecord("B0TEST0001", "wood coasters")
	rec.LastUpdated = ""

	r := toRow(rec, fixedNow)
	require.Equal(t, "2025-01-02 03:04:05", r.LastUpdated)
	require.Equal(t, "2025-01-02 03:04:05", r.Date)
	require.Equal(t, "1299.5", r.Price)
	require.Equal(t, "4.3", r.Rating)
}

func TestRowItem_DropsMalformedDecimals(t *testing.T) {
	it := row{ASIN: "B0TEST0001", Price: "abc", MRP: "", Rating: "4"}.item()

	_, ok := it[FieldPrice]
	require.False(t, ok)
	_, ok = it[FieldMRP]
	require.False(t, ok)
	require.Equal(t, float64(4), it[FieldRating])
}

func TestRedisStore_SkipsDanglingIndexEntries(t *testing.T) {
	s := newRedisStore(t)
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, sampleRecord("B0TEST0001", "wood coasters")))
	require.NoError(t, s.client.SAdd(ctx, termKey("wood coasters"), productKey("wood coasters", "GONE")).Err())

	items, err := s.Query(ctx, "wood coasters")
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestStore_ColonsInKeysDoNotCollide(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		first := sampleRecord("B:2", "a")
		first.Name = "first"
		second := sampleRecord("2", "a:B")
		second.Name = "second"
		require.NoError(t, s.Put(ctx, first))
		require.NoError(t, s.Put(ctx, second))

		items, err := s.Query(ctx, "a")
		require.NoError(t, err)
		require.Len(t, items, 1)
		require.Equal(t, "first", items[0][FieldName])

		items, err = s.Query(ctx, "a:B")
		require.NoError(t, err)
		require.Len(t, items, 1)
		require.Equal(t, "second", items[0][FieldName])
	})
}

func TestRedisStore_CorruptReviewTextIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	s := newRedisStore(t)
	s.logger = zap.New(core).Sugar()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, sampleRecord("B0TEST0001", "wood coasters")))
	pk := productKey("wood coasters", "B0TEST0001")
	require.NoError(t, s.client.HSet(ctx, pk, FieldReviewText, "[not json").Err())

	items, err := s.Query(ctx, "wood coasters")
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, []string{}, items[0][FieldReviewText])

	entries := logs.FilterMessage("redis_review_text_invalid").All()
	require.Len(t, entries, 1)
	require.Equal(t, pk, entries[0].ContextMap()["key"])
}
