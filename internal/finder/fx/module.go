package fx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"search-insight-miner/config"
	"search-insight-miner/internal/finder"
	"search-insight-miner/internal/finder/export"
	"search-insight-miner/internal/observability"
	"search-insight-miner/internal/pkg/fetcher"
	"search-insight-miner/internal/pkg/objectstore"
	"search-insight-miner/internal/productstore"
	"search-insight-miner/internal/scraper"
)

var Module = fx.Module(
	"finder",
	fx.Provide(
		fx.Annotate(fetcher.NewHTTPFetcher, fx.As(new(fetcher.Fetcher))),
		NewListing,
		NewDetail,
		NewUploader,
		NewExporter,
		NewFinder,
	),
)

func NewListing(f fetcher.Fetcher, cfg *config.Config, logger *zap.SugaredLogger, m *observability.Metrics) *scraper.Listing {
	return scraper.NewListing(f, logger, scraper.ListingOptions{
		BaseURL: cfg.Scraper.BaseURL,
		Limit:   cfg.Scraper.ListingLimit,
		Metrics: m,
	})
}

func NewDetail(f fetcher.Fetcher, cfg *config.Config, logger *zap.SugaredLogger, m *observability.Metrics) *scraper.Detail {
	return scraper.NewDetail(f, logger, scraper.DetailOptions{
		BaseURL: cfg.Scraper.BaseURL,
		Workers: cfg.Scraper.DetailWorkers,
		Metrics: m,
	})
}

func NewUploader(cfg *config.Config, logger *zap.SugaredLogger) (*objectstore.Uploader, error) {
	return objectstore.NewUploader(context.Background(), cfg, logger)
}

func NewExporter(u *objectstore.Uploader, cfg *config.Config, logger *zap.SugaredLogger, m *observability.Metrics) *export.XLSX {
	return export.NewXLSX(u, logger, export.Options{
		Dir:        cfg.Export.Dir,
		ObjectName: cfg.Export.ObjectName,
		Metrics:    m,
	})
}

type finderParams struct {
	fx.In

	Store    productstore.Store
	Listing  *scraper.Listing
	Detail   *scraper.Detail
	Exporter *export.XLSX
	Cfg      *config.Config
	Logger   *zap.SugaredLogger
	Metrics  *observability.Metrics
}

func NewFinder(p finderParams) *finder.Finder {
	return finder.New(p.Store, p.Listing, p.Detail, p.Logger, finder.Options{
		Exporter:  p.Exporter,
		PublicURL: p.Cfg.Export.PublicURL,
		Metrics:   p.Metrics,
	})
}
