package fx

import (
	"search-insight-miner/internal/app/amqp/enqueue"
	"search-insight-miner/internal/pkg/amqpclient"
	"search-insight-miner/internal/router"

	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(
		amqpclient.NewAMQP,
		router.AsRoute(enqueue.NewHandler),
	),
)
