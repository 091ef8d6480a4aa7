package fx

import (
	"search-insight-miner/config"
	"search-insight-miner/internal/logs"
	"search-insight-miner/internal/observability"

	"go.uber.org/fx"
)

var CoreAppOptions = fx.Options(
	fx.Provide(
		config.NewViper,
		config.NewConfig,
		logs.NewLogger,
		logs.NewSugaredLogger,
		observability.NewMetrics,
	),
	fx.Invoke(logs.RegisterLifecycle),
)
