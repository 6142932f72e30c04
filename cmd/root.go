package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/llmstxt/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "llmstxt",
	Short: "Aggregate a website into a single llms.txt file",
	Long:  "Discovers a site's sitemap, resolves every page URL, retrieves page content through Jina Reader or Firecrawl, and writes one plain-text document.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c
		applyFlags(cmd, cfg)

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
	// Running without a subcommand behaves like generate so the binary can
	// be driven purely by INPUT_* environment variables.
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runGenerate(cmd)
	},
}

func init() {
	rootCmd.SilenceUsage = true

	pf := rootCmd.PersistentFlags()
	pf.String("domain", "", "site to crawl; a bare host gets https:// (INPUT_DOMAIN)")
	pf.String("output", "", "output file path (INPUT_OUTPUTFILE)")
	pf.String("backend", "", "content backend: jina or firecrawl (INPUT_BACKEND)")
	pf.Bool("sort", false, "order blocks by URL instead of completion order")
	pf.Int("concurrency", 0, "max concurrent page retrievals, 0 for unbounded")
	pf.StringSlice("exclude", nil, "path globs to skip, e.g. /blog/**")
	pf.StringSlice("include", nil, "path globs to keep, e.g. /docs/**")
}

// applyFlags overrides loaded configuration with explicitly set flags.
func applyFlags(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("domain") {
		c.Domain, _ = flags.GetString("domain")
	}
	if flags.Changed("output") {
		c.OutputFile, _ = flags.GetString("output")
	}
	if flags.Changed("backend") {
		c.Backend, _ = flags.GetString("backend")
	}
	if flags.Changed("sort") {
		c.Scrape.Sort, _ = flags.GetBool("sort")
	}
	if flags.Changed("concurrency") {
		c.Scrape.MaxConcurrency, _ = flags.GetInt("concurrency")
	}
	if flags.Changed("exclude") {
		c.Scrape.ExcludePaths, _ = flags.GetStringSlice("exclude")
	}
	if flags.Changed("include") {
		c.Scrape.IncludePaths, _ = flags.GetStringSlice("include")
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
