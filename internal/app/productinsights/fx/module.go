package fx

import (
	"go.uber.org/fx"

	"search-insight-miner/internal/app/productinsights"
	"search-insight-miner/internal/router"
)

var Module = fx.Options(
	fx.Provide(router.AsRoute(productinsights.NewHandler)),
)
