package fx

import (
	"go.uber.org/fx"

	cachefx "search-insight-miner/cache/fx"
	dbfx "search-insight-miner/db/fx"
	"search-insight-miner/internal/productstore"
)

var Module = fx.Module(
	"productstore",
	cachefx.Module,
	dbfx.Module,
	dbfx.SQLiteModule,
	fx.Provide(productstore.NewStore),
)
