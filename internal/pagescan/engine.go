package pagescan

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/probelab/page-resource-inspector/internal/model"
	"github.com/probelab/page-resource-inspector/internal/platform/errs"
)

// MaxResources caps how many resource candidates a single inspection
// will discover and probe.
const MaxResources = 200

// cssCrawler defines how the engine enriches the candidate set from
// linked stylesheets.
type cssCrawler interface {
	Crawl(ctx context.Context, links []string, set *CandidateSet)
}

// prober defines how the engine checks candidate reachability.
type prober interface {
	ProbeAll(ctx context.Context, candidates []ResourceCandidate) []model.ProbeResult
}

// Engine orchestrates document fetching, resource discovery, stylesheet
// crawling, and probing into a single inspection report.
type Engine struct {
	fetcher      Fetcher
	crawler      cssCrawler
	prober       prober
	maxResources int
}

// NewEngine returns an Engine backed by the given collaborators.
func NewEngine(fetcher Fetcher, crawler cssCrawler, prober prober, maxResources int) *Engine {
	if maxResources < 1 {
		maxResources = MaxResources
	}
	return &Engine{
		fetcher:      fetcher,
		crawler:      crawler,
		prober:       prober,
		maxResources: maxResources,
	}
}

// Inspect fetches the target document, discovers every referenced
// resource, probes each one, and assembles the report. Per-resource
// failures end up as error rows in the report; only a missing/blocked
// target or a failed main-document fetch aborts the inspection.
func (e *Engine) Inspect(ctx context.Context, targetURL string) (*model.InspectionReport, error) {
	if targetURL == "" {
		return nil, &errs.AppError{
			Kind:    errs.InvalidInput,
			Message: "A target URL is required.",
		}
	}
	if IsBlockedURL(targetURL) {
		return nil, &errs.AppError{
			Kind:    errs.InvalidInput,
			Message: "The target URL is not allowed. Only public http(s) URLs can be inspected.",
		}
	}

	// IsBlockedURL already parsed it once; a URL that passed cannot
	// fail here.
	base, err := url.Parse(targetURL)
	if err != nil {
		return nil, &errs.AppError{
			Kind:    errs.InvalidInput,
			Message: "Invalid URL format. Please ensure you entered a valid URL (e.g., https://example.com).",
			Cause:   err,
		}
	}

	fetchStart := time.Now()
	fetched, err := e.fetcher.Fetch(ctx, targetURL)
	if err != nil {
		return nil, &errs.AppError{
			Kind:    errs.Unreachable,
			Message: "The target URL could not be reached. Check the address.",
			Cause:   err,
		}
	}
	defer func() { _ = fetched.Body.Close() }()

	html, err := io.ReadAll(fetched.Body)
	if err != nil {
		return nil, &errs.AppError{
			Kind:    errs.Unreachable,
			Message: "The target document could not be read.",
			Cause:   err,
		}
	}
	fetchMs := time.Since(fetchStart).Milliseconds()

	extracted, err := Extract(bytes.NewReader(html), base, e.maxResources)
	if err != nil {
		return nil, &errs.AppError{
			Kind:    errs.ParsingFailed,
			Message: "Failed to parse the HTML content.",
			Cause:   err,
		}
	}

	e.crawler.Crawl(ctx, extracted.Stylesheets, extracted.Candidates)

	// Freeze the set and drop the main document if it rediscovered
	// itself; its outcome comes from the initial fetch, never a probe.
	candidates := extracted.Candidates.List()
	filtered := candidates[:0]
	for _, cand := range candidates {
		if cand.URL == targetURL {
			continue
		}
		filtered = append(filtered, cand)
	}

	results := e.prober.ProbeAll(ctx, filtered)

	main := &model.MainResult{
		Status: fetched.StatusCode,
		OK:     fetched.StatusCode >= 200 && fetched.StatusCode < 300,
		TimeMs: fetchMs,
	}
	if fetched.ContentType != "" {
		ct := fetched.ContentType
		main.ContentType = &ct
	}

	return &model.InspectionReport{
		FetchedURL: targetURL,
		Main:       main,
		Resources:  results,
		Note:       e.note(),
	}, nil
}

func (e *Engine) note() string {
	return fmt.Sprintf(
		"Resource list is capped at %d entries. Resources injected dynamically by page JavaScript are not detected.",
		e.maxResources,
	)
}
