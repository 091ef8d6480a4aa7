package fx

import (
	"search-insight-miner/config"
	"search-insight-miner/internal/app/amqp/searchworker"
	"search-insight-miner/internal/app/inngest"
	"search-insight-miner/internal/app/inngest/warm"
	pkginngest "search-insight-miner/internal/pkg/inngest"
	"search-insight-miner/internal/router"

	"github.com/inngest/inngestgo"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Options(
	fx.Provide(
		pkginngest.NewInngestClient,
		warm.NewWarmFunction,
	),
	fx.Invoke(registerFunctions),
	fx.Provide(router.AsRoute(inngest.NewInngestHandler)),
)

func registerFunctions(
	cfg *config.Config,
	client inngestgo.Client,
	warmFunc *warm.WarmFunction,
	logger *zap.SugaredLogger,
) error {
	if !pkginngest.Enabled(cfg) {
		logger.Infow("inngest_disabled", "reason", "missing INNGEST_APP_ID")
		return nil
	}

	_, err := inngestgo.CreateFunction(
		client,
		inngestgo.FunctionOpts{
			ID:      warm.FunctionID,
			Retries: inngestgo.IntPtr(0),
		},
		inngestgo.EventTrigger(searchworker.EventName, nil),
		warmFunc.Handle,
	)
	if err != nil {
		logger.Errorw("inngest_register_failed",
			"function", warm.FunctionID,
			"err", err,
		)
		return err
	}

	logger.Infow("inngest_enabled",
		"path", pkginngest.ServePath(cfg),
		"event", searchworker.EventName,
	)
	return nil
}
