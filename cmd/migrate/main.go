package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"search-insight-miner/config"
	"search-insight-miner/db"
	dbfx "search-insight-miner/db/fx"
	appfx "search-insight-miner/internal/app/fx"

	"github.com/jmoiron/sqlx"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

type MigrateCmd string

func main() {
	cmd := "up"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	app := fx.New(
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger}
		}),
		appfx.CoreAppOptions,
		dbfx.Module,
		dbfx.SQLiteModule,
		fx.Supply(MigrateCmd(cmd)),
		fx.Invoke(registerMigrateHook),
	)

	startCtx, startCancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer startCancel()
	if err := app.Start(startCtx); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()
	if err := app.Stop(stopCtx); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

type migrateHookParams struct {
	fx.In

	Lc       fx.Lifecycle
	Cfg      *config.Config
	Logger   *zap.SugaredLogger
	SQLiteDB *sqlx.DB `name:"sqlite" optional:"true"`
	Postgres *sqlx.DB `name:"postgres" optional:"true"`

	Cmd MigrateCmd
}

func registerMigrateHook(p migrateHookParams) {
	p.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			target := p.SQLiteDB
			if p.Cfg.StoreDriver == "postgres" {
				target = p.Postgres
			}
			if p.Cfg.StoreDriver == "redis" || target == nil {
				return errors.New("nothing to migrate: set STORE_DRIVER to sqlite or postgres")
			}

			p.Logger.Infow("goose_run_start", "cmd", string(p.Cmd), "driver", target.DriverName())
			if err := db.Migrate(ctx, target, string(p.Cmd)); err != nil {
				return err
			}
			p.Logger.Infow("goose_run_done", "cmd", string(p.Cmd))
			return nil
		},
	})
}
