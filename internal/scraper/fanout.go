package scraper

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// DefaultDetailWorkers bounds concurrent detail fetches.
const DefaultDetailWorkers = 5

// FetchDetails runs Extract for every url with at most the configured number
// of concurrent fetches. One result is returned per url, in completion order;
// use IndexByURL to re-associate them. A failing or panicking fetch never
// affects its siblings.
func (d *Detail) FetchDetails(ctx context.Context, urls []string) []DetailResult {
	var (
		mu      sync.Mutex
		results = make([]DetailResult, 0, len(urls))
	)

	var g errgroup.Group
	g.SetLimit(d.workers)

	for _, u := range urls {
		g.Go(func() error {
			res := d.extractSafely(ctx, u)
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	d.logger.Infow("detail_fanout_finished", "urls", len(urls), "results", len(results))
	return results
}

func (d *Detail) extractSafely(ctx context.Context, url string) (res DetailResult) {
	defer func() {
		if p := recover(); p != nil {
			d.metrics.DetailFetch("panic")
			d.logger.Errorw("detail_worker_panic", "url", url, "panic", p)
			res = failedDetail(url, fmt.Sprintf("Failed - panic: %v", p))
		}
	}()
	return d.Extract(ctx, url)
}

// IndexByURL maps results by URL; the first result for a URL wins.
func IndexByURL(results []DetailResult) map[string]DetailResult {
	out := make(map[string]DetailResult, len(results))
	for _, r := range results {
		if _, ok := out[r.URL]; ok {
			continue
		}
		out[r.URL] = r
	}
	return out
}
