package pipeline

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/llmstxt/internal/model"
	"github.com/sells-group/llmstxt/internal/resilience"
	"github.com/sells-group/llmstxt/internal/scrape"
)

// PageObserver receives one callback per page retrieval.
type PageObserver interface {
	ObservePage(backend string, ok bool, elapsed time.Duration)
}

// Aggregator fans page retrieval out across a Scraper and joins the
// successes into a Document.
type Aggregator struct {
	scraper        scrape.Scraper
	maxConcurrency int
	observer       PageObserver
}

// NewAggregator creates an Aggregator. maxConcurrency <= 0 starts one
// goroutine per URL. observer may be nil.
func NewAggregator(scraper scrape.Scraper, maxConcurrency int, observer PageObserver) *Aggregator {
	return &Aggregator{
		scraper:        scraper,
		maxConcurrency: maxConcurrency,
		observer:       observer,
	}
}

// AggregateResult is the outcome of one fan-out.
type AggregateResult struct {
	Document model.Document
	Failed   int
}

// Aggregate retrieves every URL concurrently and waits for all of them.
// Failed pages are logged and left out. Pages appear in completion order.
// ErrNoContent is returned when nothing succeeded.
func (a *Aggregator) Aggregate(ctx context.Context, urls []string) (*AggregateResult, error) {
	var mu sync.Mutex
	var failed int
	pages := make([]model.PageContent, 0, len(urls))

	g := &errgroup.Group{}
	if a.maxConcurrency > 0 {
		g.SetLimit(a.maxConcurrency)
	}

	backend := a.scraper.Name()
	for _, u := range urls {
		g.Go(func() error {
			start := time.Now()
			res, err := a.scraper.Scrape(ctx, u)
			elapsed := time.Since(start)

			ok := err == nil && res != nil
			if a.observer != nil {
				a.observer.ObservePage(backend, ok, elapsed)
			}

			mu.Lock()
			defer mu.Unlock()
			if !ok {
				failed++
				reason := "empty result"
				if err != nil {
					reason = err.Error()
				}
				zap.L().Warn("skipping page",
					zap.String("url", u),
					zap.String("reason", reason),
					zap.String("class", string(resilience.Classify(err))),
					zap.String("backend", backend),
				)
				return nil
			}
			pages = append(pages, res.Page)
			return nil
		})
	}
	_ = g.Wait()

	result := &AggregateResult{
		Document: model.Document{Pages: pages},
		Failed:   failed,
	}
	if len(pages) == 0 {
		return result, ErrNoContent
	}
	return result, nil
}
