package monitoring

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_ObservePage(t *testing.T) {
	t.Parallel()
	m := NewMetrics()

	m.ObservePage("jina", true, 200*time.Millisecond)
	m.ObservePage("jina", true, 300*time.Millisecond)
	m.ObservePage("jina", false, time.Second)

	assert.InDelta(t, 2, testutil.ToFloat64(m.pages.WithLabelValues("jina", "success")), 0.001)
	assert.InDelta(t, 1, testutil.ToFloat64(m.pages.WithLabelValues("jina", "failure")), 0.001)
	assert.Equal(t, 1, testutil.CollectAndCount(m.fetchDuration))
}

func TestMetrics_ObserveDiscoveryAndRun(t *testing.T) {
	t.Parallel()
	m := NewMetrics()

	m.ObserveDiscovery(1, 42, 2)
	m.ObserveRun("complete", 5*time.Second)

	assert.InDelta(t, 1, testutil.ToFloat64(m.sitemaps), 0.001)
	assert.InDelta(t, 42, testutil.ToFloat64(m.urlsFound), 0.001)
	assert.InDelta(t, 2, testutil.ToFloat64(m.urlsFiltered), 0.001)
	assert.InDelta(t, 1, testutil.ToFloat64(m.runs.WithLabelValues("complete")), 0.001)
	assert.InDelta(t, 5, testutil.ToFloat64(m.runDuration), 0.001)
	assert.Greater(t, testutil.ToFloat64(m.lastSuccess), float64(0))
}

func TestMetrics_FailedRunLeavesLastSuccess(t *testing.T) {
	t.Parallel()
	m := NewMetrics()

	m.ObserveRun("failed", time.Second)
	assert.InDelta(t, 0, testutil.ToFloat64(m.lastSuccess), 0.001)
	assert.InDelta(t, 1, testutil.ToFloat64(m.runs.WithLabelValues("failed")), 0.001)
}

func TestMetrics_WriteTextfile(t *testing.T) {
	t.Parallel()
	m := NewMetrics()
	m.ObserveDiscovery(1, 3, 0)
	m.ObservePage("firecrawl", true, time.Second)

	path := filepath.Join(t.TempDir(), "llmstxt.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.True(t, strings.Contains(text, "llmstxt_page_urls_found 3"), text)
	assert.Contains(t, text, `llmstxt_pages_total{backend="firecrawl",result="success"} 1`)
}

func TestMetrics_WriteTextfileBadPath(t *testing.T) {
	t.Parallel()
	m := NewMetrics()
	err := m.WriteTextfile(filepath.Join(t.TempDir(), "missing", "dir", "x.prom"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "monitoring: write textfile")
}
