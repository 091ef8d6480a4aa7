package products

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"search-insight-miner/internal/finder"
	"search-insight-miner/internal/product"
)

type finderFunc func(ctx context.Context, term string) (finder.Outcome, error)

func (f finderFunc) GetOrFetch(ctx context.Context, term string) (finder.Outcome, error) {
	return f(ctx, term)
}

func serve(t *testing.T, f finderFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	h := newHandler(f, zap.NewNop().Sugar())
	req := httptest.NewRequest(http.MethodPost, "/v1/products/search", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.Handle(w, req)
	return w
}

func mustNotRun(t *testing.T) finderFunc {
	return func(context.Context, string) (finder.Outcome, error) {
		t.Fatal("finder must not run")
		return finder.Outcome{}, nil
	}
}

func TestHandle_MissingSearchTerm(t *testing.T) {
	for _, body := range []string{`{}`, `{"searchTerm":"  "}`, ``, `{`} {
		w := serve(t, mustNotRun(t), body)
		require.Equal(t, http.StatusBadRequest, w.Code, body)
		require.JSONEq(t, `{"message":"searchTerm is required in the request body"}`, w.Body.String())
	}
}

func TestHandle_NoProducts(t *testing.T) {
	w := serve(t, func(context.Context, string) (finder.Outcome, error) {
		return finder.Outcome{}, finder.ErrNoProducts
	}, `{"searchTerm":"wood coasters"}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.JSONEq(t, `{"message":"No products found."}`, w.Body.String())
}

func TestHandle_UnexpectedError(t *testing.T) {
	w := serve(t, func(context.Context, string) (finder.Outcome, error) {
		return finder.Outcome{}, errors.New("listing exploded")
	}, `{"searchTerm":"wood coasters"}`)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.JSONEq(t, `{"message":"An unexpected error occurred","error":"listing exploded"}`, w.Body.String())
}

func TestHandle_CachedAndFetched(t *testing.T) {
	cases := []struct {
		cached bool
		want   string
	}{
		{true, "Cached results found"},
		{false, "Execution completed successfully."},
	}
	for _, tc := range cases {
		var gotTerm string
		w := serve(t, func(_ context.Context, term string) (finder.Outcome, error) {
			gotTerm = term
			return finder.Outcome{
				Records:   []product.Record{{ASIN: "B1", Name: "One", ReviewText: []string{}}},
				Cached:    tc.cached,
				ExportURL: "https://bucket.example/index.html",
			}, nil
		}, `{"searchTerm":" wood coasters "}`)

		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "wood coasters", gotTerm)

		var resp struct {
			Message        string           `json:"message"`
			S3FileURL      string           `json:"s3_file_url"`
			ProductDetails []map[string]any `json:"product_details"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Equal(t, tc.want, resp.Message)
		require.Equal(t, "https://bucket.example/index.html", resp.S3FileURL)
		require.Len(t, resp.ProductDetails, 1)
		require.Equal(t, "B1", resp.ProductDetails[0]["asin"])
		require.Equal(t, []any{}, resp.ProductDetails[0]["review_text"])
	}
}
