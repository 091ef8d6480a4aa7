package fx

import (
	"go.uber.org/fx"

	finderfx "search-insight-miner/internal/finder/fx"
	insightsfx "search-insight-miner/internal/insights/fx"
	productstorefx "search-insight-miner/internal/productstore/fx"
)

// MinerModule provides the product store, the finder and the insight requester.
var MinerModule = fx.Options(
	productstorefx.Module,
	finderfx.Module,
	insightsfx.Module,
)
