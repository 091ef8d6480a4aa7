package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	appfx "search-insight-miner/internal/app/fx"
	"search-insight-miner/internal/envutil"
	"search-insight-miner/internal/finder"
	"search-insight-miner/internal/insights"
)

type miner struct {
	Finder    *finder.Finder
	Requester *insights.Requester
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "scrape",
		Short:         "Search products, cache them and ask for listing insights",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	rootCmd.AddCommand(newSearchCmd(), newInsightsCmd(), newDoctorCmd())
	return rootCmd
}

// withMiner starts the miner graph without the HTTP server, runs fn and stops it.
func withMiner(ctx context.Context, fn func(ctx context.Context, m miner) error) error {
	var m miner
	app := fx.New(
		fx.NopLogger,
		appfx.CoreAppOptions,
		appfx.MinerModule,
		fx.Populate(&m.Finder, &m.Requester),
	)

	startCtx, startCancel := context.WithTimeout(ctx, 60*time.Second)
	defer startCancel()
	if err := app.Start(startCtx); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer stopCancel()
		_ = app.Stop(stopCtx)
	}()

	timeout := time.Duration(envutil.Int(os.Getenv, "SCRAPE_TIMEOUT_SECONDS", 300)) * time.Second
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return fn(runCtx, m)
}
