package main

import (
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	searchworkerfx "search-insight-miner/internal/app/amqp/searchworker/fx"
	appfx "search-insight-miner/internal/app/fx"
)

func main() {
	app := fx.New(
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger}
		}),
		workerOptions(),
	)

	app.Run()
}

func workerOptions() fx.Option {
	return fx.Options(
		appfx.CoreAppOptions,
		appfx.MinerModule,
		searchworkerfx.Module,
	)
}
