package pipeline

import "github.com/rotisserie/eris"

// Structural gates. Each one ends the run without writing output.
var (
	ErrNoSitemap  = eris.New("pipeline: no sitemap found, cannot proceed")
	ErrNoPageURLs = eris.New("pipeline: no URLs found in sitemap(s)")
	ErrNoContent  = eris.New("pipeline: no content could be fetched for any URL")
)
