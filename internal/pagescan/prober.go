package pagescan

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/probelab/page-resource-inspector/internal/model"
	"github.com/probelab/page-resource-inspector/internal/platform/telemetry"
)

const (
	probeTimeout = 20 * time.Second

	// DefaultBatchSize is the number of candidates probed concurrently.
	// Each batch is awaited as a unit before the next one starts.
	DefaultBatchSize = 8
)

// Prober determines reachability and metadata for candidate URLs using
// a HEAD request with a single GET retry when the server rejects HEAD.
type Prober struct {
	client    *http.Client
	batchSize int
}

// NewProber returns a Prober with the default 20s per-request timeout
// and a transport that refuses private/reserved IP ranges. Candidates
// are probed in concurrent batches of batchSize.
func NewProber(batchSize int) *Prober {
	return newProber(batchSize, probeTimeout, &http.Transport{
		DialContext:         safeDialer().DialContext,
		MaxConnsPerHost:     batchSize,
		MaxIdleConnsPerHost: batchSize,
		IdleConnTimeout:     90 * time.Second,
	})
}

func newProber(batchSize int, timeout time.Duration, transport http.RoundTripper) *Prober {
	if batchSize < 1 {
		batchSize = 1
	}
	return &Prober{
		batchSize: batchSize,
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

// Probe checks a single candidate and always returns a terminal result:
// either a response (status, ok, content type, size) or a captured
// network error, with elapsed wall time recorded in both cases. Nothing
// propagates past this boundary; one candidate's failure cannot affect
// its siblings.
func (p *Prober) Probe(ctx context.Context, cand ResourceCandidate) model.ProbeResult {
	start := time.Now()

	method := http.MethodHead
	resp, err := p.do(ctx, method, cand.URL)
	if err == nil && (resp.StatusCode == http.StatusMethodNotAllowed || resp.StatusCode == http.StatusNotImplemented) {
		// Server rejects HEAD; retry once with GET and use that
		// response instead.
		_ = resp.Body.Close()
		method = http.MethodGet
		resp, err = p.do(ctx, method, cand.URL)
	}
	if err != nil {
		return p.failure(cand, err, start)
	}
	defer func() { _ = resp.Body.Close() }()

	size, err := responseSize(resp, method)
	if err != nil {
		return p.failure(cand, err, start)
	}

	status := resp.StatusCode
	result := model.ProbeResult{
		URL:       cand.URL,
		Status:    &status,
		OK:        status >= 200 && status < 300,
		Size:      size,
		TimeMs:    time.Since(start).Milliseconds(),
		Method:    &method,
		Initiator: cand.Initiator,
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		result.ContentType = &ct
	}

	telemetry.ObserveProbe(probeOutcome(result.OK), time.Since(start))
	return result
}

func (p *Prober) failure(cand ResourceCandidate, err error, start time.Time) model.ProbeResult {
	msg := err.Error()
	telemetry.ObserveProbe("error", time.Since(start))
	return model.ProbeResult{
		URL:       cand.URL,
		Error:     &msg,
		TimeMs:    time.Since(start).Milliseconds(),
		Initiator: cand.Initiator,
	}
}

func (p *Prober) do(ctx context.Context, method, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	return p.client.Do(req)
}

// responseSize determines the resource size: a numeric Content-Length
// header wins; failing that the full body is read purely to measure it,
// but only when the working response came from a GET. A HEAD response
// without Content-Length yields no size.
func responseSize(resp *http.Response, method string) (*int64, error) {
	if cl := resp.Header.Get("Content-Length"); cl != "" {
		if n, err := strconv.ParseInt(cl, 10, 64); err == nil {
			return &n, nil
		}
	}

	if method != http.MethodGet {
		return nil, nil
	}

	n, err := io.Copy(io.Discard, resp.Body)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func probeOutcome(ok bool) string {
	if ok {
		return "ok"
	}
	return "unreachable"
}

// ProbeAll probes candidates in fixed-size concurrent batches, waiting
// for each batch to finish before starting the next. The returned slice
// matches the input in length and order regardless of completion order
// within a batch.
func (p *Prober) ProbeAll(ctx context.Context, candidates []ResourceCandidate) []model.ProbeResult {
	results := make([]model.ProbeResult, len(candidates))

	for offset := 0; offset < len(candidates); offset += p.batchSize {
		batch := candidates[offset:min(offset+p.batchSize, len(candidates))]

		var wg sync.WaitGroup
		for i, cand := range batch {
			i, cand := i, cand
			wg.Add(1)
			go func() {
				defer wg.Done()
				results[offset+i] = p.Probe(ctx, cand)
			}()
		}
		wg.Wait()
	}

	return results
}
