package fx

import (
	"search-insight-miner/db"

	"go.uber.org/fx"
)

var Module = fx.Module(
	"sqlx-postgres-db",
	fx.Provide(
		fx.Annotate(
			db.NewSQLXPostgresDB,
			fx.ResultTags(`name:"postgres"`),
		),
	),
)
