// Package pipeline sequences sitemap discovery, page retrieval and document
// output for a single domain.
package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/llmstxt/internal/config"
	"github.com/sells-group/llmstxt/internal/model"
	"github.com/sells-group/llmstxt/internal/monitoring"
	"github.com/sells-group/llmstxt/internal/scrape"
	"github.com/sells-group/llmstxt/internal/store"
)

// SitemapDiscoverer finds the sitemap URLs for a domain.
type SitemapDiscoverer interface {
	Discover(ctx context.Context, domain string) []string
}

// SitemapResolver expands sitemap URLs into page URLs.
type SitemapResolver interface {
	ResolveAll(ctx context.Context, sitemapURLs []string) model.PageURLSet
}

// Pipeline runs one domain end to end.
type Pipeline struct {
	cfg        *config.Config
	discoverer SitemapDiscoverer
	resolver   SitemapResolver
	scraper    scrape.Scraper
	matcher    *scrape.PathMatcher
	store      store.Store
	metrics    *monitoring.Metrics
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithStore records each run in the ledger.
func WithStore(st store.Store) Option {
	return func(p *Pipeline) { p.store = st }
}

// WithMetrics records run metrics.
func WithMetrics(m *monitoring.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// New creates a Pipeline. The path filters in cfg are compiled here so a bad
// pattern fails before any network activity.
func New(cfg *config.Config, discoverer SitemapDiscoverer, resolver SitemapResolver, scraper scrape.Scraper, opts ...Option) (*Pipeline, error) {
	matcher, err := scrape.NewPathMatcher(cfg.Scrape.IncludePaths, cfg.Scrape.ExcludePaths)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: build path matcher")
	}
	p := &Pipeline{
		cfg:        cfg,
		discoverer: discoverer,
		resolver:   resolver,
		scraper:    scraper,
		matcher:    matcher,
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// Plan is the result of discovery and resolution, before any content is
// retrieved.
type Plan struct {
	Sitemaps []string
	URLs     []string
	Found    int
	Filtered int
}

// Discover finds the sitemaps for the configured domain and resolves them
// into a filtered, sorted list of page URLs.
func (p *Pipeline) Discover(ctx context.Context) (*Plan, error) {
	if err := p.cfg.Validate(); err != nil {
		return nil, err
	}
	log := zap.L().With(zap.String("domain", p.cfg.Domain))

	log.Info("pipeline: discovering sitemaps")
	sitemaps := p.discoverer.Discover(ctx, p.cfg.Domain)
	if len(sitemaps) == 0 {
		return &Plan{}, ErrNoSitemap
	}
	log.Info("pipeline: found sitemaps", zap.Strings("sitemaps", sitemaps))

	set := p.resolver.ResolveAll(ctx, sitemaps)
	plan := &Plan{Sitemaps: sitemaps, Found: set.Len()}
	for _, u := range set.Sorted() {
		if !p.matcher.Allowed(u) {
			plan.Filtered++
			continue
		}
		plan.URLs = append(plan.URLs, u)
	}
	if p.metrics != nil {
		p.metrics.ObserveDiscovery(len(sitemaps), plan.Found, plan.Filtered)
	}
	if len(plan.URLs) == 0 {
		return plan, ErrNoPageURLs
	}
	return plan, nil
}

// Run discovers, retrieves and writes the aggregated document. Gate errors
// (ErrNoSitemap, ErrNoPageURLs, ErrNoContent) leave the output file untouched.
func (p *Pipeline) Run(ctx context.Context) (*model.RunSummary, error) {
	if err := p.cfg.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	summary := &model.RunSummary{
		Domain:     p.cfg.Domain,
		Backend:    p.scraper.Name(),
		OutputFile: p.cfg.OutputFile,
		StartedAt:  start.UTC(),
	}
	log := zap.L().With(zap.String("domain", p.cfg.Domain), zap.String("backend", summary.Backend))

	runID := p.beginRun(ctx, log, summary)

	err := p.run(ctx, log, summary)
	summary.Duration = time.Since(start)
	p.finishRun(ctx, log, runID, summary, err)
	return summary, err
}

func (p *Pipeline) run(ctx context.Context, log *zap.Logger, summary *model.RunSummary) error {
	plan, err := p.Discover(ctx)
	if plan != nil {
		summary.Sitemaps = plan.Sitemaps
		summary.URLsFound = plan.Found
		summary.URLsFiltered = plan.Filtered
	}
	if err != nil {
		return err
	}

	log.Info("pipeline: fetching content",
		zap.Int("urls", len(plan.URLs)),
		zap.Int("filtered", plan.Filtered),
	)

	var observer PageObserver
	if p.metrics != nil {
		observer = p.metrics
	}
	agg := NewAggregator(p.scraper, p.cfg.Scrape.MaxConcurrency, observer)
	result, err := agg.Aggregate(ctx, plan.URLs)
	summary.PagesFailed = result.Failed
	if err != nil {
		return err
	}

	doc := result.Document
	if p.cfg.Scrape.Sort {
		doc = doc.SortByURL()
	}
	if err := WriteDocument(p.cfg.OutputFile, doc); err != nil {
		return err
	}
	summary.PagesWritten = doc.Len()

	log.Info("pipeline: wrote document",
		zap.String("path", p.cfg.OutputFile),
		zap.Int("pages", summary.PagesWritten),
		zap.Int("failed", summary.PagesFailed),
	)
	return nil
}

func (p *Pipeline) beginRun(ctx context.Context, log *zap.Logger, summary *model.RunSummary) string {
	if p.store == nil {
		return ""
	}
	run, err := p.store.CreateRun(ctx, summary.Domain, summary.Backend)
	if err != nil {
		log.Warn("pipeline: failed to create run record", zap.Error(err))
		return ""
	}
	return run.ID
}

func (p *Pipeline) finishRun(ctx context.Context, log *zap.Logger, runID string, summary *model.RunSummary, runErr error) {
	status := model.RunStatusComplete
	if runErr != nil {
		status = model.RunStatusFailed
	}

	if p.metrics != nil {
		p.metrics.ObserveRun(string(status), summary.Duration)
		if path := p.cfg.Metrics.Textfile; path != "" {
			if err := p.metrics.WriteTextfile(path); err != nil {
				log.Warn("pipeline: failed to write metrics", zap.Error(err))
			}
		}
	}

	if p.store == nil || runID == "" {
		return
	}
	var err error
	if runErr != nil {
		err = p.store.FailRun(ctx, runID, summary, runErr)
	} else {
		err = p.store.CompleteRun(ctx, runID, summary)
	}
	if err != nil {
		log.Warn("pipeline: failed to update run record", zap.String("run_id", runID), zap.Error(err))
	}
}

// WriteDocument renders doc to path, creating parent directories and
// replacing any existing file.
func WriteDocument(path string, doc model.Document) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrapf(err, "pipeline: create output dir %s", dir)
		}
	}
	if err := os.WriteFile(path, []byte(doc.Render()), 0o644); err != nil {
		return eris.Wrapf(err, "pipeline: write %s", path)
	}
	return nil
}
