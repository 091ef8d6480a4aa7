package warm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"search-insight-miner/internal/finder"
	"search-insight-miner/internal/insights"
	"search-insight-miner/internal/product"
)

type finderFunc func(ctx context.Context, term string) (finder.Outcome, error)

func (f finderFunc) GetOrFetch(ctx context.Context, term string) (finder.Outcome, error) {
	return f(ctx, term)
}

type requesterFunc func(ctx context.Context, term string) insights.Response

func (f requesterFunc) Request(ctx context.Context, term string) insights.Response { return f(ctx, term) }

func TestFetch(t *testing.T) {
	boom := errors.New("listing exploded")
	w := &WarmFunction{
		logger: zap.NewNop().Sugar(),
		finder: finderFunc(func(_ context.Context, term string) (finder.Outcome, error) {
			switch term {
			case "empty":
				return finder.Outcome{}, finder.ErrNoProducts
			case "broken":
				return finder.Outcome{}, boom
			}
			return finder.Outcome{Records: make([]product.Record, 3), Cached: true}, nil
		}),
	}
	ctx := context.Background()

	got, err := w.fetch(ctx, "wood coasters")
	require.NoError(t, err)
	require.Equal(t, FetchResult{Records: 3, Cached: true}, got)

	_, err = w.fetch(ctx, "empty")
	require.ErrorIs(t, err, finder.ErrNoProducts)

	_, err = w.fetch(ctx, "broken")
	require.ErrorIs(t, err, boom)
}

func TestInsights(t *testing.T) {
	w := &WarmFunction{
		logger: zap.NewNop().Sugar(),
		requester: requesterFunc(func(_ context.Context, term string) insights.Response {
			if term == "uncached" {
				return insights.Response{Error: "No cached results found for search term: uncached"}
			}
			return insights.Response{Success: true, Insights: map[string]any{"recommended_title": "T"}}
		}),
	}

	resp, err := w.insights(context.Background(), "wood coasters")
	require.NoError(t, err)
	require.True(t, resp.Success)

	_, err = w.insights(context.Background(), "uncached")
	require.Error(t, err)
	require.Contains(t, err.Error(), "No cached results found for search term: uncached")
}

func TestEvent(t *testing.T) {
	evt := Event("  wood coasters ", true)
	require.Equal(t, "search/term.requested", evt.Name)
	require.Equal(t, "wood coasters", evt.Data["search_term"])
	require.Equal(t, true, evt.Data["insights"])
	require.NotZero(t, evt.Timestamp)
}
