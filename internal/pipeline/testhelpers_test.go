package pipeline

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/sells-group/llmstxt/internal/model"
	"github.com/sells-group/llmstxt/internal/scrape"
)

// fakeScraper returns "content of <url>" for every URL except those in fail.
type fakeScraper struct {
	fail  map[string]string
	calls atomic.Int32

	mu   sync.Mutex
	seen []string
}

func newFakeScraper(fail ...string) *fakeScraper {
	f := &fakeScraper{fail: map[string]string{}}
	for _, u := range fail {
		f.fail[u] = "jina: status 500: upstream error"
	}
	return f
}

func (f *fakeScraper) Name() string { return "fake" }

func (f *fakeScraper) Scrape(_ context.Context, u string) (*scrape.Result, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.seen = append(f.seen, u)
	f.mu.Unlock()

	if reason, ok := f.fail[u]; ok {
		return nil, eris.New(reason)
	}
	return &scrape.Result{Page: model.PageContent{URL: u, Body: "content of " + u, Source: "fake"}}, nil
}

type fakeDiscoverer struct {
	sitemaps []string
	calls    atomic.Int32
}

func (f *fakeDiscoverer) Discover(context.Context, string) []string {
	f.calls.Add(1)
	return f.sitemaps
}

type fakeResolver struct {
	urls []string
}

func (f *fakeResolver) ResolveAll(context.Context, []string) model.PageURLSet {
	return model.NewPageURLSet(f.urls...)
}

// observeLogs swaps the global logger for an observer until the test ends.
// Callers must not run in parallel.
func observeLogs(t testing.TB) *observer.ObservedLogs {
	core, logs := observer.New(zap.DebugLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	t.Cleanup(restore)
	return logs
}

// blocks splits a rendered document into its blocks.
func blocks(rendered string) []string {
	if rendered == "" {
		return nil
	}
	return strings.Split(rendered, model.BlockSeparator)
}
