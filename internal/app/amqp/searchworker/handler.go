package searchworker

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"search-insight-miner/internal/finder"
	"search-insight-miner/internal/insights"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

type termFinder interface {
	GetOrFetch(ctx context.Context, term string) (finder.Outcome, error)
}

type insightRequester interface {
	Request(ctx context.Context, term string) insights.Response
}

// SearchHandler warms the product cache for a requested search term.
type SearchHandler struct {
	finder    termFinder
	requester insightRequester
	logger    *zap.SugaredLogger
}

type NewSearchHandlerParams struct {
	fx.In

	Finder    *finder.Finder
	Requester *insights.Requester `optional:"true"`
	Logger    *zap.SugaredLogger
}

func NewSearchHandler(p NewSearchHandlerParams) *SearchHandler {
	h := &SearchHandler{finder: p.Finder, logger: p.Logger}
	if p.Requester != nil {
		h.requester = p.Requester
	}
	return h
}

func (h *SearchHandler) Handle(ctx context.Context, msg SearchRequestedEnvelope) error {
	term := strings.TrimSpace(msg.Data.SearchTerm)
	if term == "" {
		return fmt.Errorf("missing search_term")
	}
	if strings.TrimSpace(msg.EventName) != "" && msg.EventName != EventName {
		return fmt.Errorf("unexpected event_name: %s", msg.EventName)
	}

	out, err := h.finder.GetOrFetch(ctx, term)
	if errors.Is(err, finder.ErrNoProducts) {
		// Ack: nothing to cache.
		h.logger.Warnw("searchworker_no_products", "event_id", msg.EventID, "search_term", term)
		return nil
	}
	if err != nil {
		return err
	}

	h.logger.Infow("searchworker_cache_warm",
		"event_id", msg.EventID,
		"search_term", term,
		"records", len(out.Records),
		"cached", out.Cached,
	)

	if msg.Data.Insights && h.requester != nil {
		resp := h.requester.Request(ctx, term)
		if !resp.Success {
			h.logger.Warnw("searchworker_insights_failed", "event_id", msg.EventID, "search_term", term, "error", resp.Error)
		} else {
			h.logger.Infow("searchworker_insights_ready", "event_id", msg.EventID, "search_term", term)
		}
	}
	return nil
}
