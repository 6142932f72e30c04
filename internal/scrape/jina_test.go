package scrape

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/llmstxt/pkg/jina"
	jinamocks "github.com/sells-group/llmstxt/pkg/jina/mocks"
)

func TestJinaAdapter_Name(t *testing.T) {
	t.Parallel()
	adapter := NewJinaAdapter(jinamocks.NewMockClient(t))
	assert.Equal(t, "jina", adapter.Name())
}

func TestJinaAdapter_Scrape_Success(t *testing.T) {
	t.Parallel()
	m := jinamocks.NewMockClient(t)
	adapter := NewJinaAdapter(m)

	m.On("Read", context.Background(), "https://acme.com/docs").Return(&jina.ReadResponse{
		Code: 200,
		Data: jina.ReadData{
			URL:     "https://acme.com/docs/",
			Title:   "Docs",
			Content: "# Docs\n\nShort but fine.",
			Usage:   jina.ReadUsage{Tokens: 42},
		},
	}, nil)

	result, err := adapter.Scrape(context.Background(), "https://acme.com/docs")
	require.NoError(t, err)
	assert.Equal(t, "https://acme.com/docs/", result.Page.URL)
	assert.Equal(t, "# Docs\n\nShort but fine.", result.Page.Body)
	assert.Equal(t, "jina", result.Page.Source)
	assert.Equal(t, "Docs", result.Title)
	assert.Equal(t, 42, result.Tokens)
}

func TestJinaAdapter_Scrape_MissingURLFallsBackToRequest(t *testing.T) {
	t.Parallel()
	m := jinamocks.NewMockClient(t)
	adapter := NewJinaAdapter(m)

	m.On("Read", context.Background(), "https://acme.com/a").Return(&jina.ReadResponse{
		Code: 200,
		Data: jina.ReadData{Content: "body"},
	}, nil)

	result, err := adapter.Scrape(context.Background(), "https://acme.com/a")
	require.NoError(t, err)
	assert.Equal(t, "https://acme.com/a", result.Page.URL)
}

func TestJinaAdapter_Scrape_ClientError(t *testing.T) {
	t.Parallel()
	m := jinamocks.NewMockClient(t)
	adapter := NewJinaAdapter(m)

	m.On("Read", context.Background(), "https://fail.com").Return(nil, errors.New("connection refused"))

	_, err := adapter.Scrape(context.Background(), "https://fail.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestJinaAdapter_Scrape_EmptyContent(t *testing.T) {
	t.Parallel()
	m := jinamocks.NewMockClient(t)
	adapter := NewJinaAdapter(m)

	m.On("Read", context.Background(), "https://empty.com").Return(&jina.ReadResponse{
		Code: 200,
		Data: jina.ReadData{URL: "https://empty.com", Content: "  \n "},
	}, nil)

	_, err := adapter.Scrape(context.Background(), "https://empty.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty content")
}
