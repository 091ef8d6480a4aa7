package fx

import (
	"go.uber.org/fx"

	"search-insight-miner/internal/app/health"
	"search-insight-miner/internal/router"
)

var Module = fx.Options(
	fx.Provide(router.AsRoute(health.NewHandler)),
)
