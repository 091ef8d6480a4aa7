package warm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"search-insight-miner/internal/app/amqp/searchworker"
	"search-insight-miner/internal/finder"
	"search-insight-miner/internal/insights"

	"github.com/inngest/inngestgo"
	"github.com/inngest/inngestgo/step"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// FunctionID is the Inngest function that warms the cache for a search term.
const FunctionID = "warm-search-term"

type termFinder interface {
	GetOrFetch(ctx context.Context, term string) (finder.Outcome, error)
}

type insightRequester interface {
	Request(ctx context.Context, term string) insights.Response
}

type WarmFunction struct {
	finder    termFinder
	requester insightRequester
	logger    *zap.SugaredLogger
}

// FetchResult is the memoized output of the fetch-products step.
type FetchResult struct {
	Records int  `json:"records"`
	Cached  bool `json:"cached"`
}

type NewWarmFunctionParams struct {
	fx.In

	Finder    *finder.Finder
	Requester *insights.Requester `optional:"true"`
	Logger    *zap.SugaredLogger
}

func NewWarmFunction(p NewWarmFunctionParams) *WarmFunction {
	f := &WarmFunction{finder: p.Finder, logger: p.Logger}
	if p.Requester != nil {
		f.requester = p.Requester
	}
	return f
}

func (f *WarmFunction) Handle(ctx context.Context, input inngestgo.Input[searchworker.SearchRequestedEventData]) (any, error) {
	term := strings.TrimSpace(input.Event.Data.SearchTerm)
	if term == "" {
		return nil, inngestgo.NoRetryError(fmt.Errorf("missing search_term"))
	}

	fetched, err := step.Run(ctx, "fetch-products", func(ctx context.Context) (FetchResult, error) {
		f.logger.Infow("inngest_step", "step", "fetch-products", "search_term", term)
		return f.fetch(ctx, term)
	})
	if err != nil {
		return nil, err
	}

	resp := map[string]any{
		"search_term": term,
		"records":     fetched.Records,
		"cached":      fetched.Cached,
	}

	if input.Event.Data.Insights && f.requester != nil {
		out, err := step.Run(ctx, "request-insights", func(ctx context.Context) (insights.Response, error) {
			f.logger.Infow("inngest_step", "step", "request-insights", "search_term", term)
			return f.insights(ctx, term)
		})
		if err != nil {
			return nil, err
		}
		resp["insights"] = out.Insights
	}

	f.logger.Infow("inngest_warm_finished", "search_term", term, "records", fetched.Records, "cached", fetched.Cached)
	return resp, nil
}

func (f *WarmFunction) fetch(ctx context.Context, term string) (FetchResult, error) {
	out, err := f.finder.GetOrFetch(ctx, term)
	if errors.Is(err, finder.ErrNoProducts) {
		f.logger.Warnw("inngest_step_failed", "step", "fetch-products", "search_term", term, "err", err)
		return FetchResult{}, inngestgo.NoRetryError(err)
	}
	if err != nil {
		f.logger.Errorw("inngest_step_failed", "step", "fetch-products", "search_term", term, "err", err)
		return FetchResult{}, err
	}
	return FetchResult{Records: len(out.Records), Cached: out.Cached}, nil
}

func (f *WarmFunction) insights(ctx context.Context, term string) (insights.Response, error) {
	resp := f.requester.Request(ctx, term)
	if !resp.Success {
		f.logger.Errorw("inngest_step_failed", "step", "request-insights", "search_term", term, "error", resp.Error)
		return resp, inngestgo.NoRetryError(errors.New(resp.Error))
	}
	return resp, nil
}

// Event builds the trigger for the warm function.
func Event(term string, withInsights bool) inngestgo.Event {
	return inngestgo.Event{
		Name: searchworker.EventName,
		Data: map[string]any{
			"search_term": strings.TrimSpace(term),
			"insights":    withInsights,
		},
		Timestamp: inngestgo.Timestamp(time.Now()),
	}
}
