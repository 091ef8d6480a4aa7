package main

import (
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	enqueuefx "search-insight-miner/internal/app/amqp/enqueue/fx"
	appfx "search-insight-miner/internal/app/fx"
	healthfx "search-insight-miner/internal/app/health/fx"
	inngestfx "search-insight-miner/internal/app/inngest/fx"
	metricsfx "search-insight-miner/internal/app/metrics/fx"
	productinsightsfx "search-insight-miner/internal/app/productinsights/fx"
	productsfx "search-insight-miner/internal/app/products/fx"
	routerfx "search-insight-miner/internal/router/fx"
	serverfx "search-insight-miner/internal/server/fx"
)

func main() {
	app := fx.New(
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger}
		}),
		serverOptions(),
	)

	app.Run()
}

func serverOptions() fx.Option {
	return fx.Options(
		appfx.CoreAppOptions,
		appfx.MinerModule,
		routerfx.CoreRouterOptions,
		serverfx.Module,
		healthfx.Module,
		metricsfx.Module,
		productsfx.Module,
		productinsightsfx.Module,
		inngestfx.Module,
		enqueuefx.Module,
	)
}
