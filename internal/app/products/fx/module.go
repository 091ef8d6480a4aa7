package fx

import (
	"go.uber.org/fx"

	"search-insight-miner/internal/app/products"
	"search-insight-miner/internal/router"
)

var Module = fx.Options(
	fx.Provide(
		router.AsRoute(products.NewHandler),
		router.AsRoute(products.NewCachedHandler),
	),
)
