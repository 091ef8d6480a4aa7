package fx

import (
	"go.uber.org/fx"

	"search-insight-miner/internal/server"
)

var Module = fx.Options(
	fx.Provide(server.NewHTTPServer),
	fx.Invoke(RegisterHTTPServerLifecycle),
)
