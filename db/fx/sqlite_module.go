package fx

import (
	"search-insight-miner/db"

	"go.uber.org/fx"
)

var SQLiteModule = fx.Module(
	"sqlx-sqlite-db",
	fx.Provide(db.NewSQLXSQLiteDB),
)
