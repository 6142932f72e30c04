package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sells-group/llmstxt/internal/pipeline"
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "List the sitemap and page URLs that generate would retrieve",
	Long:  "Runs sitemap discovery and resolution, applies path filters, and prints the result without calling a content backend.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate(); err != nil {
			return err
		}

		// Discover never calls the scraper.
		p, err := newPipeline(newFetcher(cfg), nil)
		if err != nil {
			return err
		}

		plan, err := p.Discover(ctx)
		if err != nil && !errors.Is(err, pipeline.ErrNoPageURLs) {
			return err
		}

		out := cmd.OutOrStdout()
		for _, s := range plan.Sitemaps {
			_, _ = fmt.Fprintf(out, "# sitemap: %s\n", s)
		}
		for _, u := range plan.URLs {
			_, _ = fmt.Fprintln(out, u)
		}
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%d page URLs (%d found, %d filtered)\n", len(plan.URLs), plan.Found, plan.Filtered)
		return err
	},
}

func init() {
	rootCmd.AddCommand(discoverCmd)
}
