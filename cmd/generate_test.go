package main

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/llmstxt/internal/config"
	"github.com/sells-group/llmstxt/internal/model"
	"github.com/sells-group/llmstxt/internal/pipeline"
)

func sortedBlocks(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	b := strings.Split(string(data), model.BlockSeparator)
	sort.Strings(b)
	return b
}

func TestGenerate_Jina(t *testing.T) {
	site := siteServer(t, "/one", "/fail", "/two")
	js := newJinaServer(t)
	out := filepath.Join(t.TempDir(), "nested", "llms.txt")

	t.Setenv("INPUT_JINA_BASE_URL", js.URL)
	t.Setenv("INPUT_JINA_API_KEY", "jina-secret")

	stdout, _, err := execute(t, "generate", "--domain", site.URL, "--output", out)
	require.NoError(t, err)

	assert.Equal(t, "Wrote content from 2 pages to "+out+"\n", stdout)
	assert.Equal(t, int32(3), js.calls.Load())
	assert.Equal(t, "Bearer jina-secret", js.auth.Load())

	assert.Equal(t, []string{
		"# Source: " + site.URL + "/one\n\ncontent of " + site.URL + "/one",
		"# Source: " + site.URL + "/two\n\ncontent of " + site.URL + "/two",
	}, sortedBlocks(t, out))
}

func TestGenerate_JinaWithoutKeySendsNoAuth(t *testing.T) {
	site := siteServer(t, "/one")
	js := newJinaServer(t)
	out := filepath.Join(t.TempDir(), "llms.txt")

	t.Setenv("INPUT_JINA_BASE_URL", js.URL)

	_, _, err := execute(t, "generate", "--domain", site.URL, "--output", out)
	require.NoError(t, err)
	assert.Equal(t, "", js.auth.Load())
}

func TestGenerate_Firecrawl(t *testing.T) {
	site := siteServer(t, "/a", "/b")
	fc := firecrawlServer(t)
	out := filepath.Join(t.TempDir(), "llms.txt")

	t.Setenv("INPUT_FIRECRAWL_BASE_URL", fc.URL)
	t.Setenv("INPUT_FIRECRAWL_API_KEY", "fc-key")

	stdout, _, err := execute(t, "generate", "--domain", site.URL, "--output", out, "--backend", "FIRECRAWL", "--sort")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Wrote content from 2 pages")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t,
		"# Source: "+site.URL+"/a\n\nmarkdown of "+site.URL+"/a"+model.BlockSeparator+
			"# Source: "+site.URL+"/b\n\nmarkdown of "+site.URL+"/b",
		string(data))
}

func TestGenerate_RootWithoutSubcommand(t *testing.T) {
	site := siteServer(t, "/only")
	js := newJinaServer(t)
	out := filepath.Join(t.TempDir(), "llms.txt")

	t.Setenv("INPUT_DOMAIN", site.URL)
	t.Setenv("INPUT_OUTPUTFILE", out)
	t.Setenv("INPUT_JINA_BASE_URL", js.URL)

	stdout, _, err := execute(t)
	require.NoError(t, err)
	assert.Equal(t, "Wrote content from 1 pages to "+out+"\n", stdout)
	assert.FileExists(t, out)
}

func TestGenerate_ConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		args    []string
		wantErr error
	}{
		{"missing domain", nil, nil, config.ErrMissingDomain},
		{"invalid backend", nil, []string{"--domain", "example.com", "--backend", "scrapy"}, config.ErrInvalidBackend},
		{"firecrawl without key", nil, []string{"--domain", "example.com", "--backend", "firecrawl"}, config.ErrMissingBackendKey},
		{"invalid backend from env", map[string]string{"INPUT_DOMAIN": "example.com", "INPUT_BACKEND": "other"}, nil, config.ErrInvalidBackend},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("INPUT_DOMAIN", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			out := filepath.Join(t.TempDir(), "llms.txt")
			args := append([]string{"generate", "--output", out}, tt.args...)

			_, _, err := execute(t, args...)
			require.ErrorIs(t, err, tt.wantErr)
			assert.NoFileExists(t, out)
		})
	}
}

func TestGenerate_NoSitemap(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)
	js := newJinaServer(t)
	out := filepath.Join(t.TempDir(), "llms.txt")
	t.Setenv("INPUT_JINA_BASE_URL", js.URL)

	_, _, err := execute(t, "generate", "--domain", srv.URL, "--output", out)
	require.ErrorIs(t, err, pipeline.ErrNoSitemap)
	assert.Zero(t, js.calls.Load())
	assert.NoFileExists(t, out)
}

func TestGenerate_NoContent(t *testing.T) {
	site := siteServer(t, "/fail")
	js := newJinaServer(t)
	out := filepath.Join(t.TempDir(), "llms.txt")
	t.Setenv("INPUT_JINA_BASE_URL", js.URL)

	_, _, err := execute(t, "generate", "--domain", site.URL, "--output", out)
	require.ErrorIs(t, err, pipeline.ErrNoContent)
	assert.NoFileExists(t, out)
}

func TestGenerate_NoPageURLs(t *testing.T) {
	site := siteServer(t)
	js := newJinaServer(t)
	t.Setenv("INPUT_JINA_BASE_URL", js.URL)

	_, _, err := execute(t, "generate", "--domain", site.URL, "--output", filepath.Join(t.TempDir(), "llms.txt"))
	require.ErrorIs(t, err, pipeline.ErrNoPageURLs)
	assert.Zero(t, js.calls.Load())
}

func TestBuildScraper(t *testing.T) {
	hc := &http.Client{}

	s, err := buildScraper(&config.Config{Backend: config.BackendJina}, hc)
	require.NoError(t, err)
	assert.Equal(t, "jina", s.Name())

	s, err = buildScraper(&config.Config{Backend: config.BackendFirecrawl, FirecrawlAPIKey: "k"}, hc)
	require.NoError(t, err)
	assert.Equal(t, "firecrawl", s.Name())

	_, err = buildScraper(&config.Config{Backend: "nope"}, hc)
	require.ErrorIs(t, err, config.ErrInvalidBackend)
}
