package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"search-insight-miner/internal/envutil"
	"search-insight-miner/internal/finder"
	"search-insight-miner/internal/insights"
)

type searchOutput struct {
	SearchTerm string             `json:"search_term"`
	Cached     bool               `json:"cached"`
	ExportURL  string             `json:"s3_file_url"`
	Products   any                `json:"product_details"`
	Insights   *insights.Response `json:"insights,omitempty"`
}

func newSearchCmd() *cobra.Command {
	var (
		term         string
		withInsights bool
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Fetch products for a search term (cache first) and print them as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			term = strings.TrimSpace(term)
			if term == "" {
				_ = cmd.Help()
				return errUsage
			}

			return withMiner(cmd.Context(), func(ctx context.Context, m miner) error {
				out, err := m.Finder.GetOrFetch(ctx, term)
				if errors.Is(err, finder.ErrNoProducts) {
					return fmt.Errorf("no products found for %q", term)
				}
				if err != nil {
					return err
				}

				res := searchOutput{
					SearchTerm: term,
					Cached:     out.Cached,
					ExportURL:  out.ExportURL,
					Products:   out.Records,
				}
				if withInsights {
					resp := m.Requester.Request(ctx, term)
					res.Insights = &resp
				}
				return writeJSON(cmd.OutOrStdout(), res)
			})
		},
	}

	cmd.Flags().StringVar(&term, "term", "", "Search term")
	cmd.Flags().BoolVar(&withInsights, "insights", envutil.Bool(os.Getenv, "SCRAPE_WITH_INSIGHTS", false), "Request listing insights after fetching")
	return cmd
}

func newInsightsCmd() *cobra.Command {
	var term string

	cmd := &cobra.Command{
		Use:   "insights",
		Short: "Request listing insights for an already cached search term",
		RunE: func(cmd *cobra.Command, args []string) error {
			term = strings.TrimSpace(term)
			if term == "" {
				_ = cmd.Help()
				return errUsage
			}

			return withMiner(cmd.Context(), func(ctx context.Context, m miner) error {
				resp := m.Requester.Request(ctx, term)
				if err := writeJSON(cmd.OutOrStdout(), resp); err != nil {
					return err
				}
				if !resp.Success {
					return errors.New(resp.Error)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&term, "term", "", "Search term")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
