package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"search-insight-miner/config"
	"search-insight-miner/internal/pkg/fetcher"
)

func pageFetcher(status int, body []byte) fetcher.Fetcher {
	return fetcher.Func(func(ctx context.Context, rawURL string) (*fetcher.Page, error) {
		return &fetcher.Page{URL: rawURL, StatusCode: status, Body: body}, nil
	})
}

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	b, err := os.ReadFile("testdata/" + name)
	require.NoError(t, err)
	return b
}

func TestListing_SearchURL(t *testing.T) {
	l := NewListing(nil, zap.NewNop().Sugar(), ListingOptions{})
	require.Equal(t, "https://www.amazon.in/s?k=wood+coasters", l.SearchURL("wood coasters"))
}

func TestListing_Extract_ParsesEntries(t *testing.T) {
	l := NewListing(pageFetcher(http.StatusOK, readFixture(t, "listing.html")), zap.NewNop().Sugar(), ListingOptions{})

	res, err := l.Extract(context.Background(), "wood coasters")
	require.NoError(t, err)
	require.Empty(t, res.Error)
	require.Len(t, res.Entries, 5)

	carousel := res.Entries[0]
	require.Equal(t, "Carousel Coaster Set", carousel.Name)
	require.Equal(t, "Yes", carousel.HighlyRated)
	require.Equal(t, 399.0, carousel.Price)
	require.Equal(t, 399.0, carousel.MRP)
	require.Equal(t, 4.6, carousel.Rating)
	require.Equal(t, "NA", carousel.BoughtRecently)
	require.Equal(t, "None", carousel.Badge)
	require.Equal(t, "No", carousel.Sponsored)

	wood := res.Entries[1]
	require.Equal(t, "Wooden Coasters, Pack of 6", wood.Name)
	require.Equal(t, "https://www.amazon.in/Wood-Coasters/dp/B0WOOD0001", wood.DetailURL)
	require.Equal(t, "B0WOOD0001", wood.ASIN)
	require.Equal(t, 1299.0, wood.Price)
	require.Equal(t, 1999.0, wood.MRP)
	require.Equal(t, 4.3, wood.Rating)
	require.Equal(t, "500+ bought in past month", wood.BoughtRecently)
	require.Equal(t, "Yes", wood.Sponsored)
	require.Equal(t, "Best seller", wood.Badge)
	require.Equal(t, "No", wood.HighlyRated)
	require.Equal(t, []string{}, wood.ReviewText)
	require.Equal(t, "Not Available", wood.AboutThisItem)
	require.Equal(t, "Not Available", wood.AllReviewURL)
	require.Equal(t, "Not Available", wood.ReviewSummary)

	plain := res.Entries[2]
	require.Equal(t, "Plain Coaster", plain.Name)
	require.Equal(t, "NA", plain.BoughtRecently)

	noAsin := res.Entries[3]
	require.Equal(t, "NA", noAsin.ASIN)
	require.Zero(t, noAsin.Price)

	require.Equal(t, "Fifth Coaster", res.Entries[4].Name)
}

func TestListing_Extract_HonoursLimit(t *testing.T) {
	l := NewListing(pageFetcher(http.StatusOK, readFixture(t, "listing.html")), zap.NewNop().Sugar(), ListingOptions{Limit: 2})

	res, err := l.Extract(context.Background(), "wood coasters")
	require.NoError(t, err)
	require.Len(t, res.Entries, 2)
	for _, e := range res.Entries {
		require.NotEmpty(t, e.Name)
		require.NotEmpty(t, e.DetailURL)
		require.NotEqual(t, "NA", e.DetailURL)
	}
}

func TestListing_Extract_NonOKIsResultNotError(t *testing.T) {
	l := NewListing(pageFetcher(http.StatusServiceUnavailable, nil), zap.NewNop().Sugar(), ListingOptions{})

	res, err := l.Extract(context.Background(), "wood coasters")
	require.NoError(t, err)
	require.Equal(t, "Failed to fetch Amazon page: 503", res.Error)
	require.Empty(t, res.Entries)
}

func TestListing_Extract_TransportErrorIsWrapped(t *testing.T) {
	boom := errors.New("dial tcp: refused")
	f := fetcher.Func(func(ctx context.Context, rawURL string) (*fetcher.Page, error) { return nil, boom })
	l := NewListing(f, zap.NewNop().Sugar(), ListingOptions{})

	_, err := l.Extract(context.Background(), "wood coasters")
	require.ErrorIs(t, err, boom)
}

func TestListing_Extract_OverHTTP(t *testing.T) {
	body := readFixture(t, "listing.html")
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)

	cfg := &config.Config{}
	cfg.Scraper.Timeout = 5 * time.Second
	f, err := fetcher.NewHTTPFetcher(cfg, zap.NewNop().Sugar())
	require.NoError(t, err)

	l := NewListing(f, zap.NewNop().Sugar(), ListingOptions{BaseURL: srv.URL})
	res, err := l.Extract(context.Background(), "wood coasters")
	require.NoError(t, err)
	require.Equal(t, "k=wood+coasters", gotQuery)
	require.Len(t, res.Entries, 5)
	require.Equal(t, srv.URL+"/Wood-Coasters/dp/B0WOOD0001", res.Entries[1].DetailURL)
}

func TestListing_Parse_EmptyPage(t *testing.T) {
	l := NewListing(nil, zap.NewNop().Sugar(), ListingOptions{})
	doc, err := goquery.NewDocumentFromReader(stringsReader("<html><body></body></html>"))
	require.NoError(t, err)
	require.Empty(t, l.parse(doc))
}
