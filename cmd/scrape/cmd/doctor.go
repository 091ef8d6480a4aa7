package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"search-insight-miner/config"
	"search-insight-miner/internal/envutil"
)

func newDoctorCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the marketplace, the product store and the DeepSeek/S3 settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewConfig(config.NewViper())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			status, err := checkReachable(cmd.Context(), cfg.Scraper.BaseURL, timeout)
			if err != nil {
				return fmt.Errorf("marketplace not reachable at %s: %w", cfg.Scraper.BaseURL, err)
			}
			fmt.Fprintf(out, "✅ marketplace reachable at %s (HTTP %d)\n", cfg.Scraper.BaseURL, status)

			if err := withMiner(cmd.Context(), func(context.Context, miner) error { return nil }); err != nil {
				return fmt.Errorf("product store (%s) not ready: %w", cfg.StoreDriver, err)
			}
			fmt.Fprintf(out, "✅ product store ready (%s)\n", cfg.StoreDriver)

			for _, line := range settingsReport(cfg) {
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", time.Duration(envutil.Int(os.Getenv, "DOCTOR_TIMEOUT_SECONDS", 5))*time.Second, "Marketplace request timeout")
	return cmd
}

// checkReachable reports the status code of a GET; any response counts as reachable.
func checkReachable(ctx context.Context, url string, timeout time.Duration) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, err
	}
	_ = resp.Body.Close()
	return resp.StatusCode, nil
}

func settingsReport(cfg *config.Config) []string {
	var lines []string
	if cfg.DeepSeek.APIKey == "" {
		lines = append(lines, "⚠️  DEEPSEEK_API_KEY is not set: insights will fail")
	} else {
		lines = append(lines, "✅ DeepSeek key configured ("+cfg.DeepSeek.Model+")")
	}
	if cfg.Export.Bucket == "" {
		lines = append(lines, "⚠️  EXPORT_BUCKET is not set: spreadsheets stay local")
	} else {
		lines = append(lines, "✅ exports upload to s3://"+cfg.Export.Bucket+"/"+cfg.Export.ObjectName)
	}
	return lines
}
