package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	require.NotPanics(t, func() {
		m.CacheLookup("hit")
		m.DetailFetch("ok")
		m.InsightRequest("error")
	})
}

func TestMetrics_CountsAndExposes(t *testing.T) {
	m := NewMetrics()
	m.CacheLookup("hit")
	m.CacheLookup("hit")
	m.DetailFetch("http_error")

	srv := httptest.NewServer(m.Handler())
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `miner_cache_lookups_total{result="hit"} 2`)
	require.Contains(t, string(body), `miner_detail_fetches_total{outcome="http_error"} 1`)
}
