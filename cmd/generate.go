package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/llmstxt/internal/config"
	"github.com/sells-group/llmstxt/internal/fetcher"
	"github.com/sells-group/llmstxt/internal/monitoring"
	"github.com/sells-group/llmstxt/internal/pipeline"
	"github.com/sells-group/llmstxt/internal/scrape"
	"github.com/sells-group/llmstxt/internal/sitemap"
	"github.com/sells-group/llmstxt/pkg/firecrawl"
	"github.com/sells-group/llmstxt/pkg/jina"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Crawl the configured domain and write llms.txt",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runGenerate(cmd)
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command) error {
	ctx := cmd.Context()

	// Pre-flight: nothing below touches the network until this passes.
	if err := cfg.Validate(); err != nil {
		return err
	}

	f := newFetcher(cfg)
	scraper, err := buildScraper(cfg, f.Client())
	if err != nil {
		return err
	}

	var opts []pipeline.Option
	if cfg.Metrics.Textfile != "" {
		opts = append(opts, pipeline.WithMetrics(monitoring.NewMetrics()))
	}
	if cfg.Store.Path != "" {
		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		opts = append(opts, pipeline.WithStore(st))
	}

	p, err := newPipeline(f, scraper, opts...)
	if err != nil {
		return err
	}

	summary, err := p.Run(ctx)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote content from %d pages to %s\n", summary.PagesWritten, summary.OutputFile)
	return nil
}

func newFetcher(c *config.Config) *fetcher.HTTPFetcher {
	return fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:    c.HTTP.UserAgent,
		Timeout:      time.Duration(c.HTTP.TimeoutSecs) * time.Second,
		MaxRedirects: c.HTTP.MaxRedirects,
	})
}

func newPipeline(f *fetcher.HTTPFetcher, scraper scrape.Scraper, opts ...pipeline.Option) (*pipeline.Pipeline, error) {
	return pipeline.New(cfg,
		sitemap.NewDiscoverer(f),
		sitemap.NewResolver(f, sitemap.WithMaxDepth(cfg.Sitemap.MaxDepth)),
		scraper,
		opts...,
	)
}

// buildScraper selects the content backend. c must already be validated.
func buildScraper(c *config.Config, hc *http.Client) (scrape.Scraper, error) {
	switch c.Backend {
	case config.BackendJina:
		client := jina.NewClient(c.JinaAPIKey,
			jina.WithBaseURL(c.Jina.BaseURL),
			jina.WithHTTPClient(hc),
		)
		return scrape.NewJinaAdapter(client), nil
	case config.BackendFirecrawl:
		client := firecrawl.NewClient(c.FirecrawlAPIKey,
			firecrawl.WithBaseURL(c.Firecrawl.BaseURL),
			firecrawl.WithHTTPClient(hc),
		)
		return scrape.NewFirecrawlAdapter(client), nil
	default:
		return nil, eris.Wrapf(config.ErrInvalidBackend, "invalid backend %q", c.Backend)
	}
}
