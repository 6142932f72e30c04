package scrape

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/llmstxt/internal/model"
	"github.com/sells-group/llmstxt/pkg/jina"
)

// JinaAdapter wraps a Jina Reader client as a Scraper.
type JinaAdapter struct {
	client jina.Client
}

// NewJinaAdapter creates a JinaAdapter from a Jina client.
func NewJinaAdapter(client jina.Client) *JinaAdapter {
	return &JinaAdapter{client: client}
}

// Name implements Scraper.
func (j *JinaAdapter) Name() string { return BackendJina }

// Scrape fetches a URL via Jina Reader. The canonical URL reported by Jina
// is used for provenance, falling back to the requested URL.
func (j *JinaAdapter) Scrape(ctx context.Context, targetURL string) (*Result, error) {
	resp, err := j.client.Read(ctx, targetURL)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(resp.Data.Content) == "" {
		return nil, eris.New("jina: empty content")
	}

	pageURL := resp.Data.URL
	if pageURL == "" {
		pageURL = targetURL
	}

	return &Result{
		Page: model.PageContent{
			URL:    pageURL,
			Body:   resp.Data.Content,
			Source: BackendJina,
		},
		Title:  resp.Data.Title,
		Tokens: resp.Data.Usage.Tokens,
	}, nil
}
