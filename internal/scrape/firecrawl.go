package scrape

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/llmstxt/internal/model"
	"github.com/sells-group/llmstxt/pkg/firecrawl"
)

// FirecrawlAdapter wraps a Firecrawl client as a Scraper for single-page scrapes.
type FirecrawlAdapter struct {
	client firecrawl.Client
}

// NewFirecrawlAdapter creates a FirecrawlAdapter from a Firecrawl client.
func NewFirecrawlAdapter(client firecrawl.Client) *FirecrawlAdapter {
	return &FirecrawlAdapter{client: client}
}

// Name implements Scraper.
func (f *FirecrawlAdapter) Name() string { return BackendFirecrawl }

// Scrape fetches a single URL as markdown via Firecrawl's scrape API. The
// requested URL is kept for provenance.
func (f *FirecrawlAdapter) Scrape(ctx context.Context, targetURL string) (*Result, error) {
	resp, err := f.client.Scrape(ctx, firecrawl.ScrapeRequest{
		URL:     targetURL,
		Formats: []string{"markdown"},
	})
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		if resp.Error != "" {
			return nil, eris.Errorf("firecrawl: scrape not successful: %s", resp.Error)
		}
		return nil, eris.New("firecrawl: scrape not successful")
	}
	if strings.TrimSpace(resp.Data.Markdown) == "" {
		return nil, eris.New("firecrawl: empty markdown")
	}

	return &Result{
		Page: model.PageContent{
			URL:    targetURL,
			Body:   resp.Data.Markdown,
			Source: BackendFirecrawl,
		},
		Title: resp.Data.Metadata.Title,
	}, nil
}
