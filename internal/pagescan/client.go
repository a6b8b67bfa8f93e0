package pagescan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// FetchResult is the outcome of fetching the main document. Body is
// limited to maxResponseBody and must be closed by the caller.
type FetchResult struct {
	Body        io.ReadCloser
	StatusCode  int
	ContentType string
}

// Fetcher defines how the engine retrieves the target document.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*FetchResult, error)
}

// limitedReadCloser reads from a LimitReader but closes the original body.
type limitedReadCloser struct {
	io.Reader
	io.Closer
}

// HTTPClient implements Fetcher using a real HTTP client.
type HTTPClient struct {
	client *http.Client
}

const (
	mainFetchTimeout = 20 * time.Second
	maxRedirects     = 5
	userAgent        = "ResourceInspectorBot/1.0"

	// Limit fetched bodies to 10 MB to prevent memory exhaustion from
	// extremely large or infinite responses.
	maxResponseBody = 10 << 20
)

var (
	errTooManyRedirects = errors.New("too many redirects")
	errBlockedRedirect  = errors.New("redirect to non-http(s) scheme blocked")
)

// NewHTTPClient returns a Fetcher backed by an http.Client with a 20s
// timeout, a transport that refuses connections to private/reserved IP
// ranges, and redirect validation so a redirect chain cannot smuggle the
// fetch onto a blocked scheme.
func NewHTTPClient() *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: mainFetchTimeout,
			Transport: &http.Transport{
				DialContext:         safeDialer().DialContext,
				MaxConnsPerHost:     10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
			CheckRedirect: safeRedirectPolicy,
		},
	}
}

// safeRedirectPolicy validates redirect targets and limits the chain length.
func safeRedirectPolicy(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return fmt.Errorf("%w: stopped after %d", errTooManyRedirects, maxRedirects)
	}
	if req.URL.Scheme != "http" && req.URL.Scheme != "https" {
		return fmt.Errorf("%w: %s", errBlockedRedirect, req.URL.Scheme)
	}
	return nil
}

// Fetch retrieves the document at the given URL.
func (c *HTTPClient) Fetch(ctx context.Context, targetURL string) (*FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := c.client.Do(req) //nolint:bodyclose // body is returned to caller via limitedReadCloser
	if err != nil {
		return nil, err
	}

	return &FetchResult{
		Body: &limitedReadCloser{
			Reader: io.LimitReader(resp.Body, maxResponseBody),
			Closer: resp.Body,
		},
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}
