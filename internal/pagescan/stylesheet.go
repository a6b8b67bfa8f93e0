package pagescan

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/probelab/page-resource-inspector/internal/model"
)

const stylesheetTimeout = 8 * time.Second

// StylesheetCrawler fetches linked stylesheets and feeds their url()
// references back into the candidate set. It is best-effort enrichment:
// any fetch or status failure just means fewer candidates.
type StylesheetCrawler struct {
	client  *http.Client
	blocked func(string) bool
}

// NewStylesheetCrawler returns a crawler with an 8s timeout per
// stylesheet and a transport that refuses private/reserved IP ranges.
func NewStylesheetCrawler() *StylesheetCrawler {
	return newStylesheetCrawler(&http.Transport{
		DialContext:         safeDialer().DialContext,
		MaxConnsPerHost:     4,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
	}, IsBlockedURL)
}

func newStylesheetCrawler(transport http.RoundTripper, blocked func(string) bool) *StylesheetCrawler {
	return &StylesheetCrawler{
		client: &http.Client{
			Timeout:   stylesheetTimeout,
			Transport: transport,
		},
		blocked: blocked,
	}
}

// Crawl fetches each linked stylesheet in order and inserts the url()
// references it finds under the css-url initiator, resolved against the
// stylesheet's own URL. It stops entirely once the candidate set is
// full, skips blocked stylesheet URLs, and silently skips any
// stylesheet that fails to fetch or returns a non-2xx status.
func (c *StylesheetCrawler) Crawl(ctx context.Context, links []string, set *CandidateSet) {
	for _, link := range links {
		if set.Full() {
			return
		}
		if c.blocked(link) {
			continue
		}

		cssText, base, ok := c.fetch(ctx, link)
		if !ok {
			continue
		}

		for _, u := range ExtractCSSURLs(cssText, base) {
			if set.Full() {
				return
			}
			if c.blocked(u) {
				continue
			}
			set.Add(u, model.InitiatorCSSURL)
		}
	}
}

func (c *StylesheetCrawler) fetch(ctx context.Context, link string) (string, *url.URL, bool) {
	base, err := url.Parse(link)
	if err != nil {
		return "", nil, false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return "", nil, false
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/css")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", nil, false
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", nil, false
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return "", nil, false
	}

	return string(body), base, true
}
