package productstore

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"search-insight-miner/config"
	"search-insight-miner/db"
)

type NewStoreParams struct {
	fx.In

	Lc       fx.Lifecycle
	Cfg      *config.Config
	Logger   *zap.SugaredLogger
	Redis    *redis.Client `optional:"true"`
	SQLiteDB *sqlx.DB      `name:"sqlite" optional:"true"`
	Postgres *sqlx.DB      `name:"postgres" optional:"true"`
}

// NewStore selects the backend named by STORE_DRIVER.
func NewStore(p NewStoreParams) (Store, error) {
	switch p.Cfg.StoreDriver {
	case "redis":
		if p.Redis == nil {
			return nil, fmt.Errorf("STORE_DRIVER=redis but redis is disabled")
		}
		p.Logger.Infow("product_store_selected", "driver", "redis")
		return NewRedisStore(p.Redis, p.Logger), nil
	case "sqlite", "postgres":
		x := p.SQLiteDB
		if p.Cfg.StoreDriver == "postgres" {
			x = p.Postgres
		}
		if x == nil {
			return nil, fmt.Errorf("STORE_DRIVER=%s but the database is disabled", p.Cfg.StoreDriver)
		}
		if p.Cfg.StoreAutoMigrate {
			p.Lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					if err := db.Migrate(ctx, x, "up"); err != nil {
						return err
					}
					p.Logger.Infow("product_store_migrated", "driver", p.Cfg.StoreDriver)
					return nil
				},
			})
		}
		p.Logger.Infow("product_store_selected", "driver", p.Cfg.StoreDriver)
		return NewSQLStore(x, p.Logger), nil
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", p.Cfg.StoreDriver)
	}
}
