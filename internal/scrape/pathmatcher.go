package scrape

import (
	"net/url"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rotisserie/eris"
)

// PathMatcher filters page URLs by glob patterns on their path. Patterns use
// doublestar syntax ("/docs/**", "/*.pdf"); a trailing "/*" also matches
// deeper paths so "/blog/*" covers "/blog/2024/01/post". Matching is
// case-insensitive. An empty matcher allows everything.
type PathMatcher struct {
	include []string
	exclude []string
}

// NewPathMatcher validates and lower-cases the given patterns.
func NewPathMatcher(include, exclude []string) (*PathMatcher, error) {
	inc, err := normalizePatterns(include)
	if err != nil {
		return nil, err
	}
	exc, err := normalizePatterns(exclude)
	if err != nil {
		return nil, err
	}
	return &PathMatcher{include: inc, exclude: exc}, nil
}

func normalizePatterns(patterns []string) ([]string, error) {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if !doublestar.ValidatePattern(p) {
			return nil, eris.Errorf("scrape: invalid path pattern %q", p)
		}
		out = append(out, p)
	}
	return out, nil
}

// Empty reports whether the matcher has no patterns at all.
func (m *PathMatcher) Empty() bool {
	return m == nil || (len(m.include) == 0 && len(m.exclude) == 0)
}

// Allowed reports whether rawURL passes the include and exclude patterns.
// Unparseable URLs are never allowed when any pattern is set.
func (m *PathMatcher) Allowed(rawURL string) bool {
	if m.Empty() {
		return true
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	p := strings.ToLower(u.Path)
	if p == "" {
		p = "/"
	}

	if len(m.include) > 0 && !matchAny(m.include, p) {
		return false
	}
	return !matchAny(m.exclude, p)
}

func matchAny(patterns []string, urlPath string) bool {
	for _, pattern := range patterns {
		if matchSegmented(pattern, urlPath) {
			return true
		}
	}
	return false
}

// matchSegmented tries a doublestar match first, then treats a trailing "/*"
// as a directory prefix.
func matchSegmented(pattern, urlPath string) bool {
	if ok, _ := doublestar.Match(pattern, urlPath); ok {
		return true
	}

	if strings.HasSuffix(pattern, "/*") {
		prefix := strings.TrimSuffix(pattern, "/*")
		if urlPath == prefix || strings.HasPrefix(urlPath, prefix+"/") {
			return true
		}
	}
	return false
}
