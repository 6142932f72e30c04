// Package fetcher issues plain HTTP GETs for robots.txt and sitemap documents
// and classifies their failures.
package fetcher

import (
	"context"
	"fmt"

	"github.com/sells-group/llmstxt/internal/resilience"
)

// Getter retrieves a URL, following redirects. A non-nil error is always a
// *FetchError.
type Getter interface {
	Get(ctx context.Context, url string) (*Result, error)
}

// Result is a successful (2xx after redirects) response.
type Result struct {
	URL         string
	FinalURL    string
	StatusCode  int
	ContentType string
	Body        []byte
}

// ErrorKind names the stage at which a fetch failed.
type ErrorKind string

const (
	KindRequest ErrorKind = "request" // request could not be built
	KindNetwork ErrorKind = "network" // transport error, DNS, reset
	KindTimeout ErrorKind = "timeout" // overall request timeout hit
	KindStatus  ErrorKind = "status"  // non-2xx final status
	KindBody    ErrorKind = "body"    // body unreadable or over the size cap
)

// FetchError is the failure half of a fetch outcome.
type FetchError struct {
	URL        string
	Kind       ErrorKind
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Kind == KindStatus {
		return fmt.Sprintf("fetch %s: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Transient reports whether re-running might succeed.
func (e *FetchError) Transient() bool {
	switch e.Kind {
	case KindTimeout:
		return true
	case KindStatus:
		return resilience.IsTransientHTTPStatus(e.StatusCode)
	case KindNetwork:
		return resilience.IsTransient(e.Err)
	default:
		return false
	}
}
