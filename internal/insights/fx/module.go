package fx

import (
	"go.uber.org/fx"

	"search-insight-miner/internal/insights"
)

var Module = fx.Module(
	"insights",
	fx.Provide(
		fx.Annotate(insights.NewDeepSeek, fx.As(new(insights.Summarizer))),
		insights.NewRequester,
	),
)
