package sitemap

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/xml"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/llmstxt/internal/fetcher"
	"github.com/sells-group/llmstxt/internal/model"
)

// DefaultMaxDepth bounds sitemap-index nesting.
const DefaultMaxDepth = 10

var gzipMagic = []byte{0x1f, 0x8b}

// entry is either a <sitemap> (index child) or a <url> (leaf) element.
type entry struct {
	XMLName xml.Name
	Loc     string `xml:"loc"`
}

// Document is the parsed content of one sitemap file.
type Document struct {
	Sitemaps []string
	Pages    []string
}

// IsIndex reports whether the document is a sitemap index.
func (d *Document) IsIndex() bool {
	return len(d.Sitemaps) > 0
}

// Resolver expands sitemaps into page URLs.
type Resolver struct {
	getter   fetcher.Getter
	maxDepth int
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithMaxDepth sets the sitemap-index nesting limit. Zero disables the limit.
func WithMaxDepth(depth int) ResolverOption {
	return func(r *Resolver) {
		if depth >= 0 {
			r.maxDepth = depth
		}
	}
}

// NewResolver creates a Resolver that fetches through getter.
func NewResolver(getter fetcher.Getter, opts ...ResolverOption) *Resolver {
	r := &Resolver{getter: getter, maxDepth: DefaultMaxDepth}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Resolve returns the deduplicated page URLs reachable from sitemapURL.
// Unreachable or unparseable branches contribute nothing; Resolve never
// fails.
func (r *Resolver) Resolve(ctx context.Context, sitemapURL string) model.PageURLSet {
	return r.resolve(ctx, sitemapURL, 0)
}

// ResolveAll resolves every sitemap in order and unions the results.
func (r *Resolver) ResolveAll(ctx context.Context, sitemapURLs []string) model.PageURLSet {
	all := model.NewPageURLSet()
	for _, u := range sitemapURLs {
		all.Union(r.Resolve(ctx, u))
	}
	return all
}

func (r *Resolver) resolve(ctx context.Context, sitemapURL string, depth int) model.PageURLSet {
	log := zap.L().With(zap.String("sitemap", sitemapURL), zap.Int("depth", depth))
	pages := model.NewPageURLSet()

	if r.maxDepth > 0 && depth > r.maxDepth {
		log.Warn("sitemap: max depth exceeded, skipping branch", zap.Int("max_depth", r.maxDepth))
		return pages
	}

	res, err := r.getter.Get(ctx, sitemapURL)
	if err != nil {
		log.Warn("sitemap: fetch failed, skipping branch", zap.Error(err))
		return pages
	}

	doc, err := Parse(ctx, res.Body)
	if err != nil {
		// Entries decoded before the error are kept.
		log.Warn("sitemap: parse failed", zap.Error(err))
	}

	if doc.IsIndex() {
		log.Debug("sitemap: resolving index", zap.Int("children", len(doc.Sitemaps)))
		results := make([]model.PageURLSet, len(doc.Sitemaps))
		var g errgroup.Group
		for i, child := range doc.Sitemaps {
			g.Go(func() error {
				results[i] = r.resolve(ctx, child, depth+1)
				return nil
			})
		}
		_ = g.Wait()
		for _, set := range results {
			pages.Union(set)
		}
		return pages
	}

	for _, p := range doc.Pages {
		pages.Add(p)
	}
	log.Debug("sitemap: resolved urlset", zap.Int("urls", pages.Len()))
	return pages
}

// Parse decodes a sitemap or sitemap index. Gzip-compressed bodies are
// decompressed first. On a decode error the entries read so far are
// returned alongside the error.
func Parse(ctx context.Context, body []byte) (*Document, error) {
	doc := &Document{}

	var r io.Reader = bytes.NewReader(body)
	if bytes.HasPrefix(body, gzipMagic) {
		gz, err := gzip.NewReader(r)
		if err != nil {
			return doc, eris.Wrap(err, "sitemap: open gzip")
		}
		defer gz.Close() //nolint:errcheck
		r = gz
	}

	entries, errs := fetcher.StreamXML[entry](ctx, r, "sitemap", "url")
	for e := range entries {
		loc := strings.TrimSpace(e.Loc)
		if loc == "" {
			continue
		}
		switch e.XMLName.Local {
		case "sitemap":
			doc.Sitemaps = append(doc.Sitemaps, loc)
		case "url":
			doc.Pages = append(doc.Pages, loc)
		}
	}
	if err := <-errs; err != nil {
		return doc, eris.Wrap(err, "sitemap: parse")
	}
	return doc, nil
}
