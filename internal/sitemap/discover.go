// Package sitemap locates a site's sitemap and expands it into page URLs.
package sitemap

import (
	"bufio"
	"bytes"
	"context"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/llmstxt/internal/fetcher"
)

// ProbePaths are the conventional sitemap locations tried, in order, when
// robots.txt declares nothing.
var ProbePaths = []string{"/sitemap.xml", "/sitemap_index.xml"}

const directive = "sitemap:"

// Discoverer finds the sitemap URL for a domain.
type Discoverer struct {
	getter fetcher.Getter
}

// NewDiscoverer creates a Discoverer that fetches through getter.
func NewDiscoverer(getter fetcher.Getter) *Discoverer {
	return &Discoverer{getter: getter}
}

// Discover returns at most one sitemap URL for domain. The first Sitemap
// directive in robots.txt wins; otherwise the first probe path answering 2xx
// is returned. An empty slice means no sitemap was found.
func (d *Discoverer) Discover(ctx context.Context, domain string) []string {
	log := zap.L().With(zap.String("domain", domain))

	robotsURL := rootURL(domain, "/robots.txt")
	res, err := d.getter.Get(ctx, robotsURL)
	if err != nil {
		log.Debug("sitemap: robots.txt unavailable", zap.Error(err))
	} else if loc, ok := ParseRobots(res.Body); ok {
		log.Debug("sitemap: found robots.txt directive", zap.String("sitemap", loc))
		return []string{loc}
	}

	for _, path := range ProbePaths {
		candidate := rootURL(domain, path)
		if _, err := d.getter.Get(ctx, candidate); err != nil {
			log.Debug("sitemap: probe failed",
				zap.String("url", candidate),
				zap.Error(err),
			)
			continue
		}
		return []string{candidate}
	}

	return []string{}
}

// ParseRobots returns the value of the first Sitemap directive in a
// robots.txt body. The directive key is matched case-insensitively and
// directives with an empty value are ignored.
func ParseRobots(body []byte) (string, bool) {
	scanner := bufio.NewScanner(bytes.NewReader(body))
	for scanner.Scan() {
		line := strings.TrimLeft(scanner.Text(), " \t\ufeff")
		if !strings.HasPrefix(strings.ToLower(line), directive) {
			continue
		}
		if loc := strings.TrimSpace(line[len(directive):]); loc != "" {
			return loc, true
		}
	}
	return "", false
}

// rootURL resolves an absolute path against domain, dropping any path the
// domain carries.
func rootURL(domain, path string) string {
	base, err := url.Parse(domain)
	if err != nil || base.Host == "" {
		return strings.TrimRight(domain, "/") + path
	}
	return base.ResolveReference(&url.URL{Path: path}).String()
}
