package scrape

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/llmstxt/pkg/firecrawl"
	firecrawlmocks "github.com/sells-group/llmstxt/pkg/firecrawl/mocks"
)

func scrapeReq(u string) firecrawl.ScrapeRequest {
	return firecrawl.ScrapeRequest{URL: u, Formats: []string{"markdown"}}
}

func TestFirecrawlAdapter_Name(t *testing.T) {
	t.Parallel()
	adapter := NewFirecrawlAdapter(firecrawlmocks.NewMockClient(t))
	assert.Equal(t, "firecrawl", adapter.Name())
}

func TestFirecrawlAdapter_Scrape_Success(t *testing.T) {
	t.Parallel()
	m := firecrawlmocks.NewMockClient(t)
	adapter := NewFirecrawlAdapter(m)

	m.On("Scrape", context.Background(), scrapeReq("https://acme.com/about")).Return(&firecrawl.ScrapeResponse{
		Success: true,
		Data: firecrawl.PageData{
			Markdown: "# About Us\n\nWe do things.",
			Metadata: firecrawl.Metadata{
				Title:     "About Acme",
				SourceURL: "https://acme.com/about?ref=x",
			},
		},
	}, nil)

	result, err := adapter.Scrape(context.Background(), "https://acme.com/about")
	require.NoError(t, err)
	assert.Equal(t, "https://acme.com/about", result.Page.URL)
	assert.Equal(t, "# About Us\n\nWe do things.", result.Page.Body)
	assert.Equal(t, "firecrawl", result.Page.Source)
	assert.Equal(t, "About Acme", result.Title)
}

func TestFirecrawlAdapter_Scrape_ClientError(t *testing.T) {
	t.Parallel()
	m := firecrawlmocks.NewMockClient(t)
	adapter := NewFirecrawlAdapter(m)

	m.On("Scrape", context.Background(), scrapeReq("https://fail.com")).Return(nil, errors.New("api error: rate limited"))

	_, err := adapter.Scrape(context.Background(), "https://fail.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestFirecrawlAdapter_Scrape_NotSuccessful(t *testing.T) {
	t.Parallel()
	m := firecrawlmocks.NewMockClient(t)
	adapter := NewFirecrawlAdapter(m)

	m.On("Scrape", context.Background(), scrapeReq("https://blocked.com")).Return(&firecrawl.ScrapeResponse{
		Success: false,
		Error:   "blocked by site",
	}, nil)

	_, err := adapter.Scrape(context.Background(), "https://blocked.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scrape not successful")
	assert.Contains(t, err.Error(), "blocked by site")
}

func TestFirecrawlAdapter_Scrape_EmptyMarkdown(t *testing.T) {
	t.Parallel()
	m := firecrawlmocks.NewMockClient(t)
	adapter := NewFirecrawlAdapter(m)

	m.On("Scrape", context.Background(), scrapeReq("https://empty.com")).Return(&firecrawl.ScrapeResponse{
		Success: true,
	}, nil)

	_, err := adapter.Scrape(context.Background(), "https://empty.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty markdown")
}
