// Package scrape adapts the content-extraction backends to a single
// page-level capability.
package scrape

import (
	"context"

	"github.com/sells-group/llmstxt/internal/model"
)

// Backend names accepted by configuration.
const (
	BackendJina      = "jina"
	BackendFirecrawl = "firecrawl"
)

// Result holds a scraped page with its source.
type Result struct {
	Page   model.PageContent
	Title  string
	Tokens int
}

// Scraper resolves a page URL to its extracted text content. A nil error
// always comes with a non-empty Page.Body.
type Scraper interface {
	Scrape(ctx context.Context, url string) (*Result, error)
	Name() string
}
