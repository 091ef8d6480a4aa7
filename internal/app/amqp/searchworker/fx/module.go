package fx

import (
	"context"

	"search-insight-miner/internal/app/amqp/searchworker"
	"search-insight-miner/internal/pkg/amqpclient"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module(
	"amqp-searchworker",
	fx.Provide(
		amqpclient.NewAMQP,
		fx.Annotate(
			searchworker.NewSearchHandler,
			fx.As(new(searchworker.Handler)),
		),
		searchworker.NewConsumer,
	),
	fx.Invoke(registerLifecycleHooks),
)

type hooksParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Consumer  *searchworker.Consumer
	Logger    *zap.SugaredLogger
}

func registerLifecycleHooks(p hooksParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			p.Logger.Infow("searchworker_starting")
			return p.Consumer.Start(ctx)
		},
		OnStop: func(ctx context.Context) error {
			p.Logger.Infow("searchworker_stopping")
			return p.Consumer.Stop(ctx)
		},
	})
}
