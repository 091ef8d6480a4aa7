package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"search-insight-miner/internal/pkg/fetcher"
)

func stringsReader(s string) io.Reader { return strings.NewReader(s) }

func TestDetail_Extract_ParsesPage(t *testing.T) {
	d := NewDetail(pageFetcher(http.StatusOK, readFixture(t, "detail.html")), zap.NewNop().Sugar(), DetailOptions{})

	res := d.Extract(context.Background(), "https://www.amazon.in/Wood-Coasters/dp/B0WOOD0001")
	require.Equal(t, "Success", res.Status)
	require.False(t, res.Failed())
	require.Equal(t, "Made from sheesham wood\nHeat resistant", *res.AboutThisItem)
	require.Equal(t, []string{"Lovely finish.", "Slightly smaller than expected."}, res.ReviewText)
	require.Equal(t, "https://www.amazon.in/product-reviews/B0WOOD0001", *res.AllReviewURL)
	require.Equal(t, "Customers like the build quality.", *res.ReviewSummary)
}

func TestDetail_Extract_MissingSectionsUseSentinels(t *testing.T) {
	d := NewDetail(pageFetcher(http.StatusOK, []byte("<html><body><p>empty</p></body></html>")), zap.NewNop().Sugar(), DetailOptions{})

	res := d.Extract(context.Background(), "https://www.amazon.in/dp/X")
	require.Equal(t, "Success", res.Status)
	require.Equal(t, "Not Available", *res.AboutThisItem)
	require.Equal(t, []string{}, res.ReviewText)
	require.Equal(t, "Not Available", *res.AllReviewURL)
	require.Equal(t, "Not Available", *res.ReviewSummary)
}

func TestDetail_Extract_NonOKYieldsNilFields(t *testing.T) {
	d := NewDetail(pageFetcher(http.StatusNotFound, nil), zap.NewNop().Sugar(), DetailOptions{})

	res := d.Extract(context.Background(), "https://www.amazon.in/dp/GONE")
	require.Equal(t, "Failed - HTTP 404", res.Status)
	require.True(t, res.Failed())
	require.Nil(t, res.AboutThisItem)
	require.Nil(t, res.ReviewText)
	require.Nil(t, res.AllReviewURL)
	require.Nil(t, res.ReviewSummary)

	fields := res.Fields()
	require.Len(t, fields, 4)
	for k, v := range fields {
		require.Nil(t, v, k)
	}
}

func TestDetail_Extract_TransportError(t *testing.T) {
	f := fetcher.Func(func(ctx context.Context, rawURL string) (*fetcher.Page, error) {
		return nil, errors.New("timeout")
	})
	d := NewDetail(f, zap.NewNop().Sugar(), DetailOptions{})

	res := d.Extract(context.Background(), "https://www.amazon.in/dp/SLOW")
	require.Equal(t, "Failed - timeout", res.Status)
	require.Nil(t, res.AboutThisItem)
}

func TestFetchDetails_OneFailureKeepsAllResults(t *testing.T) {
	detailHTML := readFixture(t, "detail.html")
	urls := []string{
		"https://www.amazon.in/dp/A",
		"https://www.amazon.in/dp/B",
		"https://www.amazon.in/dp/MISSING",
		"https://www.amazon.in/dp/C",
		"https://www.amazon.in/dp/D",
		"https://www.amazon.in/dp/E",
	}

	var inFlight, maxInFlight int32
	f := fetcher.Func(func(ctx context.Context, rawURL string) (*fetcher.Page, error) {
		n := atomic.AddInt32(&inFlight, 1)
		defer atomic.AddInt32(&inFlight, -1)
		for {
			m := atomic.LoadInt32(&maxInFlight)
			if n <= m || atomic.CompareAndSwapInt32(&maxInFlight, m, n) {
				break
			}
		}
		if strings.HasSuffix(rawURL, "MISSING") {
			return &fetcher.Page{URL: rawURL, StatusCode: http.StatusNotFound}, nil
		}
		return &fetcher.Page{URL: rawURL, StatusCode: http.StatusOK, Body: detailHTML}, nil
	})
	d := NewDetail(f, zap.NewNop().Sugar(), DetailOptions{})

	results := d.FetchDetails(context.Background(), urls)
	require.Len(t, results, len(urls))
	require.LessOrEqual(t, int(atomic.LoadInt32(&maxInFlight)), DefaultDetailWorkers)

	idx := IndexByURL(results)
	require.Len(t, idx, len(urls))
	for _, u := range urls {
		res, ok := idx[u]
		require.True(t, ok, u)
		if strings.HasSuffix(u, "MISSING") {
			require.Equal(t, "Failed - HTTP 404", res.Status)
			require.Nil(t, res.AboutThisItem)
			continue
		}
		require.Equal(t, "Success", res.Status, u)
	}
}

func TestFetchDetails_PanicBecomesFailedStub(t *testing.T) {
	f := fetcher.Func(func(ctx context.Context, rawURL string) (*fetcher.Page, error) {
		if strings.HasSuffix(rawURL, "BOOM") {
			panic("bad page")
		}
		return &fetcher.Page{URL: rawURL, StatusCode: http.StatusOK, Body: []byte("<html></html>")}, nil
	})
	d := NewDetail(f, zap.NewNop().Sugar(), DetailOptions{Workers: 2})

	results := d.FetchDetails(context.Background(), []string{"https://x/dp/OK", "https://x/dp/BOOM"})
	require.Len(t, results, 2)

	idx := IndexByURL(results)
	require.Equal(t, "Failed - panic: bad page", idx["https://x/dp/BOOM"].Status)
	require.Equal(t, "Success", idx["https://x/dp/OK"].Status)
}

func TestIndexByURL_FirstWins(t *testing.T) {
	idx := IndexByURL([]DetailResult{
		{URL: "u", Status: "Success"},
		{URL: "u", Status: fmt.Sprintf("Failed - HTTP %d", 500)},
	})
	require.Equal(t, "Success", idx["u"].Status)
}
