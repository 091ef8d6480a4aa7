package fx

import (
	"go.uber.org/fx"

	"search-insight-miner/internal/app/metrics"
	"search-insight-miner/internal/router"
)

var Module = fx.Options(
	fx.Provide(router.AsRoute(metrics.NewHandler)),
)
