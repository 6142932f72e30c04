package fetcher

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

const (
	defaultTimeout      = 60 * time.Second
	defaultMaxRedirects = 10
	defaultMaxBodyBytes = 50 * 1024 * 1024
	defaultUserAgent    = "llmstxt/1.0 (+https://github.com/sells-group/llmstxt)"
)

// HTTPOptions configures the HTTP fetcher.
type HTTPOptions struct {
	UserAgent    string
	Timeout      time.Duration
	MaxRedirects int
	MaxBodyBytes int64
}

// HTTPFetcher implements Getter using net/http. The underlying client is
// safe for concurrent use and is shared with the content backends.
type HTTPFetcher struct {
	client *http.Client
	opts   HTTPOptions
}

// NewHTTPFetcher creates a new HTTPFetcher with the given options.
func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MaxRedirects <= 0 {
		opts.MaxRedirects = defaultMaxRedirects
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}

	maxRedirects := opts.MaxRedirects
	return &HTTPFetcher{
		client: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   10 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return eris.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		},
		opts: opts,
	}
}

// Client returns the shared HTTP client.
func (f *HTTPFetcher) Client() *http.Client {
	return f.client
}

// Get fetches rawURL and returns the body of a 2xx response.
func (f *HTTPFetcher) Get(ctx context.Context, rawURL string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Kind: KindRequest, Err: eris.Wrap(err, "create request")}
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		kind := KindNetwork
		if isTimeout(err) {
			kind = KindTimeout
		}
		zap.L().Debug("fetcher: request failed",
			zap.String("url", rawURL),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
		return nil, &FetchError{URL: rawURL, Kind: kind, Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))
		return nil, &FetchError{
			URL:        rawURL,
			Kind:       KindStatus,
			StatusCode: resp.StatusCode,
			Err:        eris.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.opts.MaxBodyBytes+1))
	if err != nil {
		kind := KindBody
		if isTimeout(err) {
			kind = KindTimeout
		}
		return nil, &FetchError{URL: rawURL, Kind: kind, StatusCode: resp.StatusCode, Err: eris.Wrap(err, "read body")}
	}
	if int64(len(body)) > f.opts.MaxBodyBytes {
		return nil, &FetchError{
			URL:        rawURL,
			Kind:       KindBody,
			StatusCode: resp.StatusCode,
			Err:        eris.Errorf("body exceeds %d bytes", f.opts.MaxBodyBytes),
		}
	}

	return &Result{
		URL:         rawURL,
		FinalURL:    resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
