// Package model defines the data types shared across the sitemap, scrape and
// pipeline packages.
package model

import (
	"sort"
	"strings"
)

// NormalizeDomain coerces a bare host into an https URL and trims any
// trailing slash so paths can be appended directly.
func NormalizeDomain(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}
	return strings.TrimRight(raw, "/")
}

// PageURLSet is a deduplicated set of page URLs. Order is irrelevant; use
// Sorted when a stable listing is needed.
type PageURLSet map[string]struct{}

// NewPageURLSet creates a set holding the given URLs.
func NewPageURLSet(urls ...string) PageURLSet {
	s := make(PageURLSet, len(urls))
	for _, u := range urls {
		s.Add(u)
	}
	return s
}

// Add inserts u. Empty strings are ignored.
func (s PageURLSet) Add(u string) {
	if u == "" {
		return
	}
	s[u] = struct{}{}
}

// Union merges other into s.
func (s PageURLSet) Union(other PageURLSet) {
	for u := range other {
		s[u] = struct{}{}
	}
}

// Contains reports whether u is in the set.
func (s PageURLSet) Contains(u string) bool {
	_, ok := s[u]
	return ok
}

// Len returns the number of URLs.
func (s PageURLSet) Len() int { return len(s) }

// Sorted returns the URLs in lexical order.
func (s PageURLSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for u := range s {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}

// PageContent is a single successfully retrieved page. Body is never empty.
type PageContent struct {
	URL    string `json:"url"`
	Body   string `json:"body"`
	Source string `json:"source,omitempty"` // e.g. "jina", "firecrawl"
}

// BlockSeparator joins rendered blocks in the aggregated document.
const BlockSeparator = "\n\n---\n\n"

// Document is the aggregated output. Pages are kept in collection order.
type Document struct {
	Pages []PageContent `json:"pages"`
}

// Len returns the number of blocks in the document.
func (d Document) Len() int { return len(d.Pages) }

// Block renders a single page with its provenance header.
func Block(p PageContent) string {
	return "# Source: " + p.URL + "\n\n" + p.Body
}

// Render joins every block with BlockSeparator.
func (d Document) Render() string {
	blocks := make([]string, 0, len(d.Pages))
	for _, p := range d.Pages {
		blocks = append(blocks, Block(p))
	}
	return strings.Join(blocks, BlockSeparator)
}

// SortByURL returns a copy of the document with pages ordered by URL.
func (d Document) SortByURL() Document {
	pages := make([]PageContent, len(d.Pages))
	copy(pages, d.Pages)
	sort.SliceStable(pages, func(i, j int) bool { return pages[i].URL < pages[j].URL })
	return Document{Pages: pages}
}
